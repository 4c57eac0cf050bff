package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Config конфигурация приложения
type Config struct {
	Environment   string
	ServerAddress string
	VacanciesFile string
	DatabaseURL   string
	RedisAddress  string
	RedisPassword string
	RedisDB       int
	JWTSecret     string
	JWTTTL        time.Duration

	// Расписание обновления файла из HH.ru, пустое значение отключает обновление
	RefreshSchedule string

	HH HHConfig
}

// HHConfig параметры доступа к HH.ru API
type HHConfig struct {
	APIBaseURL   string
	TokenURL     string
	ClientID     string
	ClientSecret string
	UserAgent    string
	SearchText   string
	Area         string
	PerPage      int
	Pages        int
	RateLimit    int
}

// Load загружает конфигурацию из окружения, предварительно подхватив .env
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	vacanciesFile, err := filepath.Abs(getEnv("VACANCIES_FILE", "data/request_vacancies.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve vacancies file path: %w", err)
	}

	cfg := &Config{
		Environment:     getEnv("ENVIRONMENT", "development"),
		ServerAddress:   getEnv("SERVER_ADDRESS", ":8080"),
		VacanciesFile:   vacanciesFile,
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		RedisAddress:    getEnv("REDIS_ADDRESS", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         getEnvAsInt("REDIS_DB", 0),
		JWTSecret:       getEnv("JWT_SECRET", ""),
		JWTTTL:          getEnvAsDuration("JWT_TTL", 24*time.Hour),
		RefreshSchedule: getEnv("REFRESH_SCHEDULE", ""),
		HH: HHConfig{
			APIBaseURL:   getEnv("HH_API_URL", "https://api.hh.ru"),
			TokenURL:     getEnv("HH_TOKEN_URL", "https://hh.ru/oauth/token"),
			ClientID:     getEnv("HH_CLIENT_ID", ""),
			ClientSecret: getEnv("HH_CLIENT_SECRET", ""),
			UserAgent:    getEnv("HH_USER_AGENT", "JobVacancies/1.0 (jobvacancies@example.com)"),
			SearchText:   getEnv("HH_SEARCH_TEXT", "golang"),
			Area:         getEnv("HH_AREA", ""),
			PerPage:      getEnvAsInt("HH_PER_PAGE", 100),
			Pages:        getEnvAsInt("HH_PAGES", 1),
			RateLimit:    getEnvAsInt("HH_RATE_LIMIT", 500),
		},
	}

	return cfg, nil
}

// Validate проверяет конфигурацию и собирает все ошибки сразу
func (c *Config) Validate() error {
	var result *multierror.Error

	if c.VacanciesFile == "" {
		result = multierror.Append(result, fmt.Errorf("VACANCIES_FILE is required"))
	}

	if c.HH.APIBaseURL == "" {
		result = multierror.Append(result, fmt.Errorf("HH_API_URL is required"))
	}

	if c.HH.UserAgent == "" {
		result = multierror.Append(result, fmt.Errorf("HH_USER_AGENT is required by HH.ru"))
	}

	// HH.ru не отдает больше 100 вакансий на страницу
	if c.HH.PerPage <= 0 || c.HH.PerPage > 100 {
		result = multierror.Append(result, fmt.Errorf("HH_PER_PAGE must be in 1..100, got %d", c.HH.PerPage))
	}

	if c.HH.Pages <= 0 {
		result = multierror.Append(result, fmt.Errorf("HH_PAGES must be positive, got %d", c.HH.Pages))
	}

	if c.HH.RateLimit <= 0 {
		result = multierror.Append(result, fmt.Errorf("HH_RATE_LIMIT must be positive, got %d", c.HH.RateLimit))
	}

	if (c.HH.ClientID == "") != (c.HH.ClientSecret == "") {
		result = multierror.Append(result, fmt.Errorf("HH_CLIENT_ID and HH_CLIENT_SECRET must be set together"))
	}

	if c.RefreshSchedule != "" {
		parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
		if _, err := parser.Parse(c.RefreshSchedule); err != nil {
			result = multierror.Append(result, fmt.Errorf("invalid REFRESH_SCHEDULE: %w", err))
		}
	}

	if c.Environment == "production" && c.JWTSecret == "" {
		result = multierror.Append(result, fmt.Errorf("JWT_SECRET is required in production"))
	}

	return result.ErrorOrNil()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
