package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"jobvacancies/backend/internal/models"
)

// Parser читает и пишет JSON-документ вакансий {"items": [...]}
type Parser struct {
	path   string
	logger *zap.Logger
}

// NewParser создает парсер, привязанный к файлу
func NewParser(path string, logger *zap.Logger) *Parser {
	return &Parser{
		path:   path,
		logger: logger,
	}
}

// Path путь к файлу документа
func (p *Parser) Path() string {
	return p.path
}

// ParseJSON читает файл и возвращает массив items без разбора элементов
func (p *Parser) ParseJSON() ([]json.RawMessage, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %v", ErrStorageUnavailable, p.path, err)
	}

	var doc models.VacanciesDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedStore, p.path, err)
	}

	if doc.Items == nil {
		return nil, fmt.Errorf("%w: %s: missing items", ErrMalformedStore, p.path)
	}

	p.logger.Debug("Vacancies document parsed",
		zap.String("path", p.path),
		zap.Int("items", len(*doc.Items)))

	return *doc.Items, nil
}

// ToRecords переводит сырые объекты в вакансии
func (p *Parser) ToRecords(items []json.RawMessage) ([]models.Vacancy, error) {
	vacancies := make([]models.Vacancy, 0, len(items))

	for i, item := range items {
		var raw models.HHVacancy
		if err := json.Unmarshal(item, &raw); err != nil {
			return nil, fmt.Errorf("%w: item %d: %v", ErrMalformedStore, i, err)
		}
		vacancies = append(vacancies, models.NewVacancyFromHH(raw))
	}

	return vacancies, nil
}

// WriteJSON перезаписывает файл документом {"items": items}
func (p *Parser) WriteJSON(items []json.RawMessage) error {
	if items == nil {
		items = []json.RawMessage{}
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(models.VacanciesDocument{Items: &items}); err != nil {
		return fmt.Errorf("failed to encode vacancies document: %w", err)
	}

	if err := os.WriteFile(p.path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("%w: failed to write %s: %v", ErrStorageUnavailable, p.path, err)
	}

	p.logger.Debug("Vacancies document written",
		zap.String("path", p.path),
		zap.Int("items", len(items)))

	return nil
}
