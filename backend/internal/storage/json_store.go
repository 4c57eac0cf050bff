package storage

import (
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"jobvacancies/backend/internal/models"
)

// VacancyStore хранилище вакансий поверх JSON-файла.
//
// Каждая операция заново читает файл целиком, а изменяющие операции
// целиком его перезаписывают. Кэша, индексов и блокировок нет:
// параллельные вызовы из разных мест могут потерять обновления,
// сериализацию должен обеспечить вызывающий код.
type VacancyStore struct {
	path   string
	parser *Parser
	logger *zap.Logger
}

// NewVacancyStore создает хранилище для существующего файла.
// Файл хранилище само не создает.
func NewVacancyStore(path string, logger *zap.Logger) (*VacancyStore, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrStorageUnavailable, path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrStorageUnavailable, path)
	}

	return &VacancyStore{
		path:   path,
		parser: NewParser(path, logger),
		logger: logger,
	}, nil
}

// Path путь к файлу хранилища
func (s *VacancyStore) Path() string {
	return s.path
}

// Count количество вакансий в файле
func (s *VacancyStore) Count() (int, error) {
	items, err := s.parser.ParseJSON()
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

// Add дописывает вакансию в конец файла. Уникальность id не проверяется.
func (s *VacancyStore) Add(vacancy models.Vacancy) (bool, error) {
	items, err := s.parser.ParseJSON()
	if err != nil {
		return false, err
	}

	item, err := json.Marshal(vacancy.ToHH())
	if err != nil {
		return false, fmt.Errorf("failed to encode vacancy %d: %w", vacancy.ID, err)
	}

	items = append(items, item)
	if err := s.parser.WriteJSON(items); err != nil {
		return false, err
	}

	s.logger.Debug("Vacancy added",
		zap.Int("vacancy_id", vacancy.ID),
		zap.Int("total", len(items)))

	return true, nil
}

// Delete удаляет первую вакансию с указанным id.
// Если такой нет, файл не трогается и возвращается false.
func (s *VacancyStore) Delete(id int) (bool, error) {
	items, err := s.parser.ParseJSON()
	if err != nil {
		return false, err
	}

	found := -1
	for i, item := range items {
		var ref struct {
			ID models.VacancyID `json:"id"`
		}
		if err := json.Unmarshal(item, &ref); err != nil {
			return false, fmt.Errorf("%w: item %d: %v", ErrMalformedStore, i, err)
		}
		if int(ref.ID) == id {
			found = i
			break
		}
	}

	if found < 0 {
		s.logger.Warn("Vacancy to delete not found",
			zap.String("path", s.path),
			zap.Int("vacancy_id", id))
		return false, nil
	}

	return s.removeAt(items, found)
}

// DeleteLast удаляет последнюю по порядку в файле вакансию.
// Для пустого файла возвращает false.
func (s *VacancyStore) DeleteLast() (bool, error) {
	items, err := s.parser.ParseJSON()
	if err != nil {
		return false, err
	}

	if len(items) == 0 {
		return false, nil
	}

	return s.removeAt(items, len(items)-1)
}

func (s *VacancyStore) removeAt(items []json.RawMessage, index int) (bool, error) {
	items = append(items[:index], items[index+1:]...)
	if err := s.parser.WriteJSON(items); err != nil {
		return false, err
	}

	s.logger.Debug("Vacancy removed",
		zap.Int("index", index),
		zap.Int("total", len(items)))

	return true, nil
}

// Query возвращает вакансии, у которых каждое поле фильтра точно
// совпадает с ожидаемым значением. Пустой фильтр возвращает все вакансии.
// Если в фильтре есть поле, которого у вакансии нет, результат пустой.
func (s *VacancyStore) Query(filter map[string]interface{}) ([]models.Vacancy, error) {
	items, err := s.parser.ParseJSON()
	if err != nil {
		return nil, err
	}

	vacancies, err := s.parser.ToRecords(items)
	if err != nil {
		return nil, err
	}

	if len(filter) == 0 {
		return vacancies, nil
	}

	for field := range filter {
		if !models.IsKnownField(field) {
			s.logger.Debug("Unknown filter field", zap.String("field", field))
			return []models.Vacancy{}, nil
		}
	}

	found := make([]models.Vacancy, 0)
	for _, vacancy := range vacancies {
		matching := true
		for field, expected := range filter {
			if equal, _ := vacancy.FieldEquals(field, expected); !equal {
				matching = false
				break
			}
		}
		if matching {
			found = append(found, vacancy)
		}
	}

	return found, nil
}

// Replace заменяет содержимое файла новым набором сырых вакансий
func (s *VacancyStore) Replace(items []json.RawMessage) error {
	if err := s.parser.WriteJSON(items); err != nil {
		return err
	}

	s.logger.Info("Vacancies document replaced",
		zap.String("path", s.path),
		zap.Int("total", len(items)))

	return nil
}
