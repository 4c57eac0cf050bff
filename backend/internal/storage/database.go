package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"jobvacancies/backend/internal/models"
)

const createVacanciesTable = `
    CREATE TABLE IF NOT EXISTS vacancies (
        id              INTEGER PRIMARY KEY,
        name            TEXT NOT NULL,
        url             TEXT NOT NULL,
        area            TEXT NOT NULL,
        requirement     TEXT NOT NULL,
        salary_from     DOUBLE PRECISION,
        salary_to       DOUBLE PRECISION,
        salary_currency TEXT,
        archived_at     TIMESTAMPTZ NOT NULL
    )
`

const upsertVacancy = `
    INSERT INTO vacancies (id, name, url, area, requirement,
                           salary_from, salary_to, salary_currency, archived_at)
    VALUES (:id, :name, :url, :area, :requirement,
            :salary_from, :salary_to, :salary_currency, :archived_at)
    ON CONFLICT (id) DO UPDATE SET
        name = EXCLUDED.name,
        url = EXCLUDED.url,
        area = EXCLUDED.area,
        requirement = EXCLUDED.requirement,
        salary_from = EXCLUDED.salary_from,
        salary_to = EXCLUDED.salary_to,
        salary_currency = EXCLUDED.salary_currency,
        archived_at = EXCLUDED.archived_at
`

// ArchivedVacancy строка архива вакансий
type ArchivedVacancy struct {
	models.Vacancy
	ArchivedAt time.Time `json:"archived_at" db:"archived_at"`
}

// Database архив вакансий в Postgres поверх sqlx.DB
type Database struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewDatabase создает новое подключение к БД и готовит схему
func NewDatabase(dsn string, logger *zap.Logger) (*Database, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Настройка пула соединений
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	if _, err := db.ExecContext(ctx, createVacanciesTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create vacancies table: %w", err)
	}

	logger.Info("Database connection established")

	return &Database{
		db:     db,
		logger: logger,
	}, nil
}

// Close закрывает подключение к БД
func (d *Database) Close() error {
	return d.db.Close()
}

// HealthCheck проверка здоровья БД
func (d *Database) HealthCheck(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// SaveVacancies сохраняет вакансии в архив одной транзакцией.
// Повторяющиеся id перезаписываются последним вхождением.
func (d *Database) SaveVacancies(ctx context.Context, vacancies []models.Vacancy) error {
	if len(vacancies) == 0 {
		return nil
	}

	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	rows := archiveRows(vacancies, time.Now().UTC())
	for _, row := range rows {
		if _, err := tx.NamedExecContext(ctx, upsertVacancy, row); err != nil {
			return fmt.Errorf("failed to archive vacancy %d: %w", row.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit archive: %w", err)
	}

	d.logger.Info("Vacancies archived", zap.Int("count", len(rows)))

	return nil
}

// ListVacancies получает вакансии из архива, area пустая строка = все регионы
func (d *Database) ListVacancies(ctx context.Context, area string) ([]ArchivedVacancy, error) {
	var vacancies []ArchivedVacancy

	query := `SELECT * FROM vacancies ORDER BY id`
	args := []interface{}{}
	if area != "" {
		query = `SELECT * FROM vacancies WHERE area = $1 ORDER BY id`
		args = append(args, area)
	}

	if err := d.db.SelectContext(ctx, &vacancies, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list archived vacancies: %w", err)
	}

	return vacancies, nil
}

// archiveRows готовит строки для upsert, оставляя по одной на id
func archiveRows(vacancies []models.Vacancy, now time.Time) []ArchivedVacancy {
	index := make(map[int]int, len(vacancies))
	rows := make([]ArchivedVacancy, 0, len(vacancies))

	for _, v := range vacancies {
		row := ArchivedVacancy{Vacancy: v, ArchivedAt: now}
		if i, ok := index[v.ID]; ok {
			rows[i] = row
			continue
		}
		index[v.ID] = len(rows)
		rows = append(rows, row)
	}

	return rows
}
