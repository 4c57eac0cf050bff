package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"jobvacancies/backend/internal/models"
)

// ErrRefreshInProgress обновление уже выполняется
var ErrRefreshInProgress = errors.New("vacancy refresh already in progress")

// VacancyArchive внешний архив вакансий (Postgres)
type VacancyArchive interface {
	SaveVacancies(ctx context.Context, vacancies []models.Vacancy) error
}

// RefreshStatus состояние обновления файла вакансий
type RefreshStatus struct {
	Running       bool       `json:"running"`
	Scheduled     bool       `json:"scheduled"`
	Schedule      string     `json:"schedule,omitempty"`
	TotalRuns     int        `json:"total_runs"`
	LastRun       *time.Time `json:"last_run,omitempty"`
	NextRun       *time.Time `json:"next_run,omitempty"`
	LastFetched   int        `json:"last_fetched"`
	LastDuration  string     `json:"last_duration,omitempty"`
	LastError     string     `json:"last_error,omitempty"`
	ArchiveFailed bool       `json:"archive_failed"`
}

// RefreshResult итог одного обновления
type RefreshResult struct {
	Fetched  int           `json:"fetched"`
	Archived bool          `json:"archived"`
	Duration time.Duration `json:"duration"`
}

// RefreshEngine периодически перезаписывает файл вакансий свежей выдачей HH.ru
type RefreshEngine struct {
	vacancies *VacancyService
	hhService *HHService
	archive   VacancyArchive
	query     SearchQuery
	logger    *zap.Logger
	cron      *cron.Cron
	entryID   cron.EntryID
	status    RefreshStatus
	mu        sync.RWMutex
}

// NewRefreshEngine создает движок обновления. archive может быть nil.
func NewRefreshEngine(
	vacancies *VacancyService,
	hhService *HHService,
	archive VacancyArchive,
	query SearchQuery,
	logger *zap.Logger,
) *RefreshEngine {
	return &RefreshEngine{
		vacancies: vacancies,
		hhService: hhService,
		archive:   archive,
		query:     query,
		logger:    logger,
		cron:      cron.New(cron.WithSeconds()),
	}
}

// RunOnce загружает вакансии с HH.ru, заменяет ими файл и архивирует
func (e *RefreshEngine) RunOnce(ctx context.Context) (*RefreshResult, error) {
	e.mu.Lock()
	if e.status.Running {
		e.mu.Unlock()
		return nil, ErrRefreshInProgress
	}
	e.status.Running = true
	e.mu.Unlock()

	start := time.Now()
	result, err := e.refresh(ctx)

	e.mu.Lock()
	defer e.mu.Unlock()

	e.status.Running = false
	e.status.TotalRuns++
	e.status.LastRun = &start
	e.status.LastDuration = time.Since(start).String()
	e.status.LastError = ""
	e.status.ArchiveFailed = false
	if err != nil {
		e.status.LastError = err.Error()
		return nil, err
	}

	result.Duration = time.Since(start)
	e.status.LastFetched = result.Fetched
	e.status.ArchiveFailed = e.archive != nil && !result.Archived

	return result, nil
}

func (e *RefreshEngine) refresh(ctx context.Context) (*RefreshResult, error) {
	items, err := e.hhService.FetchAll(ctx, e.query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch vacancies: %w", err)
	}

	vacancies, err := e.vacancies.Replace(items)
	if err != nil {
		return nil, fmt.Errorf("failed to store vacancies: %w", err)
	}

	result := &RefreshResult{Fetched: len(items)}

	// Архив вторичен: его ошибка не отменяет обновленный файл
	if e.archive != nil {
		if err := e.archive.SaveVacancies(ctx, vacancies); err != nil {
			e.logger.Error("Failed to archive vacancies", zap.Error(err))
		} else {
			result.Archived = true
		}
	}

	e.logger.Info("Vacancies refreshed",
		zap.Int("fetched", result.Fetched),
		zap.Bool("archived", result.Archived))

	return result, nil
}

// Start планирует обновления по cron-выражению (с секундами)
func (e *RefreshEngine) Start(schedule string) error {
	entryID, err := e.cron.AddFunc(schedule, e.executeScheduledRefresh)
	if err != nil {
		return fmt.Errorf("failed to schedule refresh: %w", err)
	}

	e.mu.Lock()
	e.entryID = entryID
	e.status.Scheduled = true
	e.status.Schedule = schedule
	e.mu.Unlock()

	e.cron.Start()

	e.logger.Info("Vacancy refresh scheduled", zap.String("cron", schedule))

	return nil
}

// Stop останавливает планировщик и дожидается текущего запуска
func (e *RefreshEngine) Stop() {
	ctx := e.cron.Stop()
	<-ctx.Done()

	e.mu.Lock()
	if e.status.Scheduled {
		e.cron.Remove(e.entryID)
	}
	e.status.Scheduled = false
	e.mu.Unlock()
}

// Status текущее состояние обновления
func (e *RefreshEngine) Status() RefreshStatus {
	e.mu.RLock()
	defer e.mu.RUnlock()

	status := e.status
	if status.Scheduled {
		if next := e.cron.Entry(e.entryID).Next; !next.IsZero() {
			status.NextRun = &next
		}
	}
	return status
}

func (e *RefreshEngine) executeScheduledRefresh() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if _, err := e.RunOnce(ctx); err != nil {
		e.logger.Error("Scheduled vacancy refresh failed", zap.Error(err))
	}
}
