package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"jobvacancies/backend/internal/config"
	"jobvacancies/backend/internal/models"
	"jobvacancies/backend/internal/storage"
)

const (
	hhRateLimitKey  = "rate_limit:hh:app"
	hhRateWindow    = time.Hour
	hhAuditTTL      = 24 * time.Hour
	hhMaxErrorBytes = 4 << 10
)

// ErrRateLimited исчерпан лимит запросов к HH.ru
var ErrRateLimited = errors.New("HH.ru rate limit exceeded")

// SearchQuery параметры поиска вакансий
type SearchQuery struct {
	Text    string
	Area    string
	PerPage int
	Pages   int
}

// QueryFromConfig поиск по умолчанию из конфигурации
func QueryFromConfig(cfg *config.HHConfig) SearchQuery {
	return SearchQuery{
		Text:    cfg.SearchText,
		Area:    cfg.Area,
		PerPage: cfg.PerPage,
		Pages:   cfg.Pages,
	}
}

// HHService получает вакансии с HH.ru в исходном формате API
type HHService struct {
	config     *config.HHConfig
	redis      *storage.RedisClient
	logger     *zap.Logger
	httpClient *http.Client
}

// NewHHService создает сервис HH.ru. redis может быть nil,
// тогда лимиты и аудит в Redis не ведутся.
func NewHHService(cfg *config.HHConfig, redis *storage.RedisClient, logger *zap.Logger) *HHService {
	httpClient := &http.Client{Timeout: 30 * time.Second}

	// Токен приложения через client credentials, если заданы ключи
	if cfg.ClientID != "" && cfg.ClientSecret != "" {
		ccConfig := &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
		}
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
		httpClient = ccConfig.Client(ctx)
		httpClient.Timeout = 30 * time.Second
	}

	return &HHService{
		config:     cfg,
		redis:      redis,
		logger:     logger,
		httpClient: httpClient,
	}
}

// SearchVacancies получает одну страницу поиска
func (s *HHService) SearchVacancies(ctx context.Context, query SearchQuery, page int) (*models.VacanciesPage, error) {
	if err := s.checkRateLimit(ctx); err != nil {
		return nil, err
	}

	apiURL := strings.TrimRight(s.config.APIBaseURL, "/") + "/vacancies"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	params := map[string]string{
		"page":     strconv.Itoa(page),
		"per_page": strconv.Itoa(query.PerPage),
	}
	if query.Text != "" {
		params["text"] = query.Text
	}
	if query.Area != "" {
		params["area"] = query.Area
	}

	q := req.URL.Query()
	for key, value := range params {
		q.Set(key, value)
	}
	req.URL.RawQuery = q.Encode()

	req.Header.Set("User-Agent", s.config.UserAgent)
	req.Header.Set("HH-User-Agent", s.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to search vacancies: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, hhMaxErrorBytes))
		return nil, fmt.Errorf("HH.ru API error: %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result models.VacanciesPage
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode vacancies response: %w", err)
	}

	s.logAuditEvent(ctx, "search_vacancies", params, len(result.Items))

	return &result, nil
}

// FetchAll проходит по страницам поиска и собирает все вакансии
func (s *HHService) FetchAll(ctx context.Context, query SearchQuery) ([]json.RawMessage, error) {
	items := make([]json.RawMessage, 0)

	for page := 0; page < query.Pages; page++ {
		result, err := s.SearchVacancies(ctx, query, page)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}

		items = append(items, result.Items...)

		// Последняя страница выдачи
		if result.Pages <= page+1 || len(result.Items) == 0 {
			break
		}
	}

	s.logger.Info("Vacancies fetched from HH.ru",
		zap.String("text", query.Text),
		zap.String("area", query.Area),
		zap.Int("count", len(items)))

	return items, nil
}

// checkRateLimit проверка лимита запросов приложения к HH.ru
func (s *HHService) checkRateLimit(ctx context.Context) error {
	if s.redis == nil {
		return nil
	}

	allowed, wait, err := s.redis.RateLimit(ctx, hhRateLimitKey, s.config.RateLimit, hhRateWindow)
	if err != nil {
		// Redis недоступен: не блокируем поиск
		s.logger.Warn("Failed to check HH.ru rate limit", zap.Error(err))
		return nil
	}

	if !allowed {
		return fmt.Errorf("%w, wait %v", ErrRateLimited, wait)
	}

	return nil
}

// logAuditEvent логирование обращений к HH.ru для аудита
func (s *HHService) logAuditEvent(ctx context.Context, action string, params map[string]string, resultCount int) {
	s.logger.Info("HH.ru API audit",
		zap.String("action", action),
		zap.Any("params", params),
		zap.Int("result_count", resultCount))

	if s.redis == nil {
		return
	}

	auditLog := map[string]interface{}{
		"timestamp":    time.Now().Format(time.RFC3339),
		"action":       action,
		"params":       params,
		"result_count": resultCount,
		"user_agent":   s.config.UserAgent,
	}

	auditJSON, err := json.Marshal(auditLog)
	if err != nil {
		return
	}

	auditKey := fmt.Sprintf("audit:hh:%s", uuid.New().String())
	if err := s.redis.SetWithExpiry(ctx, auditKey, string(auditJSON), hhAuditTTL); err != nil {
		s.logger.Warn("Failed to store HH.ru audit entry", zap.Error(err))
	}
}
