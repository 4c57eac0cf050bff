package services

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"jobvacancies/backend/internal/models"
	"jobvacancies/backend/internal/storage"
)

// VacancyService доступ к хранилищу вакансий из нескольких горутин.
// Хранилище блокировок не имеет, поэтому каждый цикл
// чтение-изменение-запись выполняется под общим мьютексом.
type VacancyService struct {
	store  *storage.VacancyStore
	logger *zap.Logger
	mu     sync.Mutex
}

func NewVacancyService(store *storage.VacancyStore, logger *zap.Logger) *VacancyService {
	return &VacancyService{
		store:  store,
		logger: logger,
	}
}

func (s *VacancyService) Count() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Count()
}

func (s *VacancyService) Add(vacancy models.Vacancy) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ok, err := s.store.Add(vacancy)
	if err != nil {
		s.logger.Error("Failed to add vacancy",
			zap.Int("vacancy_id", vacancy.ID),
			zap.Error(err))
	}
	return ok, err
}

func (s *VacancyService) Delete(id int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ok, err := s.store.Delete(id)
	if err != nil {
		s.logger.Error("Failed to delete vacancy",
			zap.Int("vacancy_id", id),
			zap.Error(err))
	}
	return ok, err
}

func (s *VacancyService) DeleteLast() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ok, err := s.store.DeleteLast()
	if err != nil {
		s.logger.Error("Failed to delete last vacancy", zap.Error(err))
	}
	return ok, err
}

func (s *VacancyService) Query(filter map[string]interface{}) ([]models.Vacancy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Query(filter)
}

// Replace заменяет снимок вакансий и возвращает его в плоском виде
func (s *VacancyService) Replace(items []json.RawMessage) ([]models.Vacancy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Replace(items); err != nil {
		return nil, err
	}
	return s.store.Query(nil)
}
