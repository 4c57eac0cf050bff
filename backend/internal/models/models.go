package models

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
)

// Имена полей плоского представления вакансии
const (
	FieldID             = "id"
	FieldName           = "name"
	FieldURL            = "url"
	FieldArea           = "area"
	FieldRequirement    = "requirement"
	FieldSalaryFrom     = "salary_from"
	FieldSalaryTo       = "salary_to"
	FieldSalaryCurrency = "salary_currency"
)

// VacancyFields все поля вакансии в порядке вывода
var VacancyFields = []string{
	FieldID,
	FieldName,
	FieldURL,
	FieldArea,
	FieldRequirement,
	FieldSalaryFrom,
	FieldSalaryTo,
	FieldSalaryCurrency,
}

// Vacancy вакансия в плоском виде
type Vacancy struct {
	ID             int      `json:"id" db:"id"`
	Name           string   `json:"name" db:"name"`
	URL            string   `json:"url" db:"url"`
	Area           string   `json:"area" db:"area"`
	Requirement    string   `json:"requirement" db:"requirement"`
	SalaryFrom     *float64 `json:"salary_from" db:"salary_from"`
	SalaryTo       *float64 `json:"salary_to" db:"salary_to"`
	SalaryCurrency *string  `json:"salary_currency" db:"salary_currency"`
}

// NewVacancyFromHH собирает вакансию из формата HH.ru.
// Отсутствующие area/snippet/salary дают пустые значения.
func NewVacancyFromHH(raw HHVacancy) Vacancy {
	v := Vacancy{
		ID:   int(raw.ID),
		Name: raw.Name,
		URL:  raw.AlternateURL,
	}

	if raw.Area != nil {
		v.Area = raw.Area.Name
	}

	if raw.Snippet != nil && raw.Snippet.Requirement != nil {
		v.Requirement = *raw.Snippet.Requirement
	}

	if raw.Salary != nil {
		v.SalaryFrom = raw.Salary.From
		v.SalaryTo = raw.Salary.To
		v.SalaryCurrency = raw.Salary.Currency
	}

	return v
}

// ToHH переводит вакансию в формат HH.ru для записи в файл
func (v Vacancy) ToHH() HHVacancy {
	requirement := v.Requirement

	return HHVacancy{
		ID:           VacancyID(v.ID),
		Name:         v.Name,
		AlternateURL: v.URL,
		Area:         &HHArea{Name: v.Area},
		Snippet:      &HHSnippet{Requirement: &requirement},
		Salary: &Salary{
			From:     v.SalaryFrom,
			To:       v.SalaryTo,
			Currency: v.SalaryCurrency,
		},
	}
}

// Field возвращает значение поля по имени. Второй результат false,
// если у вакансии нет такого поля.
func (v Vacancy) Field(name string) (interface{}, bool) {
	switch name {
	case FieldID:
		return v.ID, true
	case FieldName:
		return v.Name, true
	case FieldURL:
		return v.URL, true
	case FieldArea:
		return v.Area, true
	case FieldRequirement:
		return v.Requirement, true
	case FieldSalaryFrom:
		return floatOrNil(v.SalaryFrom), true
	case FieldSalaryTo:
		return floatOrNil(v.SalaryTo), true
	case FieldSalaryCurrency:
		if v.SalaryCurrency == nil {
			return nil, true
		}
		return *v.SalaryCurrency, true
	default:
		return nil, false
	}
}

// Props плоское представление вакансии
func (v Vacancy) Props() map[string]interface{} {
	props := make(map[string]interface{}, len(VacancyFields))
	for _, name := range VacancyFields {
		props[name], _ = v.Field(name)
	}
	return props
}

// FieldEquals сравнивает поле с ожидаемым значением на точное совпадение.
// Числа сравниваются по значению (1 == 1.0), строки побайтно.
func (v Vacancy) FieldEquals(name string, expected interface{}) (equal bool, known bool) {
	actual, ok := v.Field(name)
	if !ok {
		return false, false
	}
	return valuesEqual(actual, expected), true
}

// IsKnownField проверяет, есть ли у вакансии поле с таким именем
func IsKnownField(name string) bool {
	_, ok := Vacancy{}.Field(name)
	return ok
}

// ParseFieldValue переводит строковое значение фильтра в тип поля.
// Для nullable-полей литерал "null" означает отсутствие значения.
// Значения неизвестных полей остаются строками.
func ParseFieldValue(field, raw string) (interface{}, error) {
	switch field {
	case FieldID:
		id, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %q", field, raw)
		}
		return id, nil
	case FieldSalaryFrom, FieldSalaryTo:
		if raw == "null" {
			return nil, nil
		}
		amount, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %q", field, raw)
		}
		return amount, nil
	case FieldSalaryCurrency:
		if raw == "null" {
			return nil, nil
		}
		return raw, nil
	default:
		return raw, nil
	}
}

func floatOrNil(f *float64) interface{} {
	if f == nil {
		return nil
	}
	return *f
}

func valuesEqual(actual, expected interface{}) bool {
	if actual == nil || expected == nil {
		return actual == nil && isNil(expected)
	}

	af, aNum := toFloat(actual)
	ef, eNum := toFloat(expected)
	if aNum || eNum {
		return aNum && eNum && af == ef
	}

	as, aStr := actual.(string)
	es, eStr := expected.(string)
	if aStr && eStr {
		return as == es
	}

	return false
}

func isNil(v interface{}) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Ptr && rv.IsNil()
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		if math.IsNaN(n) {
			return 0, false
		}
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
