package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"jobvacancies/backend/internal/models"
)

const testDocument = `{"items": [
	{"id": "101", "name": "Go developer", "alternate_url": "https://hh.ru/vacancy/101",
	 "area": {"id": "1", "name": "Moscow"},
	 "snippet": {"requirement": "Go, PostgreSQL", "responsibility": "backend"},
	 "salary": {"from": 200000, "to": 300000, "currency": "RUR", "gross": false},
	 "employer": {"id": "9", "name": "Acme"}},
	{"id": 102, "name": "Python developer", "alternate_url": "https://hh.ru/vacancy/102",
	 "area": {"name": "Saint Petersburg"},
	 "snippet": {"requirement": null},
	 "salary": null},
	{"id": 103, "name": "QA engineer", "alternate_url": "https://hh.ru/vacancy/103",
	 "area": {"name": "Moscow"}}
]}`

func writeStoreFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vacancies.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestStore(t *testing.T, content string) *VacancyStore {
	t.Helper()
	store, err := NewVacancyStore(writeStoreFile(t, content), zap.NewNop())
	require.NoError(t, err)
	return store
}

func readItems(t *testing.T, path string) []map[string]interface{} {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc struct {
		Items []map[string]interface{} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	return doc.Items
}

func ptrFloat(f float64) *float64 { return &f }
func ptrString(s string) *string  { return &s }

func TestNewVacancyStore_MissingFile(t *testing.T) {
	_, err := NewVacancyStore(filepath.Join(t.TempDir(), "absent.json"), zap.NewNop())
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}

func TestNewVacancyStore_Directory(t *testing.T) {
	_, err := NewVacancyStore(t.TempDir(), zap.NewNop())
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}

func TestVacancyStore_Count(t *testing.T) {
	store := newTestStore(t, testDocument)

	count, err := store.Count()
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestVacancyStore_BrokenFile(t *testing.T) {
	tests := map[string]struct {
		content string
	}{
		"not json":      {content: `{"items": [`},
		"missing items": {content: `{"vacancies": []}`},
		"null items":    {content: `{"items": null}`},
		"items object":  {content: `{"items": {}}`},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			store := newTestStore(t, tc.content)

			_, err := store.Count()
			assert.ErrorIs(t, err, ErrMalformedStore)

			_, err = store.Add(models.Vacancy{ID: 1})
			assert.ErrorIs(t, err, ErrMalformedStore)

			_, err = store.Query(nil)
			assert.ErrorIs(t, err, ErrMalformedStore)
		})
	}
}

func TestVacancyStore_FileRemovedAfterConstruction(t *testing.T) {
	store := newTestStore(t, testDocument)
	require.NoError(t, os.Remove(store.Path()))

	_, err := store.Count()
	assert.ErrorIs(t, err, ErrStorageUnavailable)

	_, err = store.DeleteLast()
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}

func TestVacancyStore_AddIncrementsCount(t *testing.T) {
	store := newTestStore(t, testDocument)
	before := readItems(t, store.Path())

	ok, err := store.Add(models.Vacancy{ID: 101, Name: "Duplicate id", Area: "Remote"})
	require.NoError(t, err)
	assert.True(t, ok)

	count, err := store.Count()
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	after := readItems(t, store.Path())
	assert.Equal(t, before, after[:3], "existing items must be preserved untouched")
	assert.Equal(t, float64(101), after[3]["id"])
	assert.Equal(t, map[string]interface{}{"name": "Remote"}, after[3]["area"])
}

func TestVacancyStore_AddThenDeleteRestoresDocument(t *testing.T) {
	store := newTestStore(t, testDocument)
	before := readItems(t, store.Path())

	_, err := store.Add(models.Vacancy{ID: 555, Name: "Temp"})
	require.NoError(t, err)

	ok, err := store.Delete(555)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, before, readItems(t, store.Path()))
}

func TestVacancyStore_DeleteRemovesFirstMatch(t *testing.T) {
	store := newTestStore(t, testDocument)
	_, err := store.Add(models.Vacancy{ID: 102, Name: "Second 102"})
	require.NoError(t, err)

	ok, err := store.Delete(102)
	require.NoError(t, err)
	assert.True(t, ok)

	items := readItems(t, store.Path())
	require.Len(t, items, 3)
	assert.Equal(t, "Go developer", items[0]["name"])
	assert.Equal(t, "QA engineer", items[1]["name"])
	assert.Equal(t, "Second 102", items[2]["name"])
}

func TestVacancyStore_DeleteMatchesStringID(t *testing.T) {
	store := newTestStore(t, testDocument)

	ok, err := store.Delete(101)
	require.NoError(t, err)
	assert.True(t, ok)

	count, err := store.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestVacancyStore_DeleteUnknownIDLeavesFileUnchanged(t *testing.T) {
	store := newTestStore(t, testDocument)
	info, err := os.Stat(store.Path())
	require.NoError(t, err)

	ok, err := store.Delete(999)
	require.NoError(t, err)
	assert.False(t, ok)

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Equal(t, testDocument, string(data))

	after, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, info.ModTime(), after.ModTime())
}

func TestVacancyStore_DeleteLastIsPositional(t *testing.T) {
	store := newTestStore(t, `{"items": [{"id": 9, "name": "a"}, {"id": 1, "name": "b"}, {"id": 5, "name": "c"}]}`)

	ok, err := store.DeleteLast()
	require.NoError(t, err)
	assert.True(t, ok)

	items := readItems(t, store.Path())
	require.Len(t, items, 2)
	assert.Equal(t, "a", items[0]["name"])
	assert.Equal(t, "b", items[1]["name"])
}

func TestVacancyStore_DeleteLastEmpty(t *testing.T) {
	store := newTestStore(t, `{"items": []}`)

	ok, err := store.DeleteLast()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVacancyStore_Query(t *testing.T) {
	store := newTestStore(t, testDocument)

	tests := map[string]struct {
		filter      map[string]interface{}
		expectedIDs []int
	}{
		"no filter returns all in order": {
			filter:      nil,
			expectedIDs: []int{101, 102, 103},
		},
		"empty filter returns all": {
			filter:      map[string]interface{}{},
			expectedIDs: []int{101, 102, 103},
		},
		"exact area": {
			filter:      map[string]interface{}{"area": "Moscow"},
			expectedIDs: []int{101, 103},
		},
		"area is case sensitive": {
			filter:      map[string]interface{}{"area": "moscow"},
			expectedIDs: []int{},
		},
		"no partial match": {
			filter:      map[string]interface{}{"area": "Mosc"},
			expectedIDs: []int{},
		},
		"by id": {
			filter:      map[string]interface{}{"id": 102},
			expectedIDs: []int{102},
		},
		"several fields": {
			filter:      map[string]interface{}{"area": "Moscow", "salary_currency": "RUR"},
			expectedIDs: []int{101},
		},
		"null salary": {
			filter:      map[string]interface{}{"salary_from": nil},
			expectedIDs: []int{102, 103},
		},
		"unknown field": {
			filter:      map[string]interface{}{"nonexistent_field": "x"},
			expectedIDs: []int{},
		},
		"unknown field next to matching one": {
			filter:      map[string]interface{}{"area": "Moscow", "employer": "Acme"},
			expectedIDs: []int{},
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			found, err := store.Query(tc.filter)
			require.NoError(t, err)
			require.NotNil(t, found)

			ids := make([]int, 0, len(found))
			for _, v := range found {
				ids = append(ids, v.ID)
			}
			assert.Equal(t, tc.expectedIDs, ids)
		})
	}
}

func TestVacancyStore_QueryFlattensRecords(t *testing.T) {
	store := newTestStore(t, testDocument)

	found, err := store.Query(map[string]interface{}{"id": 101})
	require.NoError(t, err)
	require.Len(t, found, 1)

	assert.Equal(t, models.Vacancy{
		ID:             101,
		Name:           "Go developer",
		URL:            "https://hh.ru/vacancy/101",
		Area:           "Moscow",
		Requirement:    "Go, PostgreSQL",
		SalaryFrom:     ptrFloat(200000),
		SalaryTo:       ptrFloat(300000),
		SalaryCurrency: ptrString("RUR"),
	}, found[0])
}

func TestVacancyStore_EndToEnd(t *testing.T) {
	store := newTestStore(t, `{"items": []}`)
	vacancy := models.Vacancy{
		ID:             1,
		Name:           "Engineer",
		URL:            "https://example.com/vacancy/1",
		Area:           "Remote",
		Requirement:    "Go",
		SalaryFrom:     ptrFloat(1000),
		SalaryTo:       nil,
		SalaryCurrency: ptrString("EUR"),
	}

	ok, err := store.Add(vacancy)
	require.NoError(t, err)
	require.True(t, ok)

	count, err := store.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	found, err := store.Query(map[string]interface{}{"id": 1})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, vacancy, found[0])

	ok, err = store.Delete(1)
	require.NoError(t, err)
	assert.True(t, ok)

	count, err = store.Count()
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestVacancyStore_Replace(t *testing.T) {
	store := newTestStore(t, testDocument)

	require.NoError(t, store.Replace([]json.RawMessage{json.RawMessage(`{"id": "7", "name": "<b>Lead</b>"}`)}))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "<b>Lead</b>")

	found, err := store.Query(nil)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, 7, found[0].ID)
}
