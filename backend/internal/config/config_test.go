package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)

	assert.True(t, filepath.IsAbs(cfg.VacanciesFile))
	assert.Equal(t, "request_vacancies.json", filepath.Base(cfg.VacanciesFile))
	assert.Equal(t, "https://api.hh.ru", cfg.HH.APIBaseURL)
	assert.Equal(t, 100, cfg.HH.PerPage)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("HH_PAGES=3\nHH_AREA=113\n"), 0o644))
	t.Setenv("HH_PAGES", "")
	t.Setenv("HH_AREA", "")
	os.Unsetenv("HH_PAGES")
	os.Unsetenv("HH_AREA")

	cfg, err := Load(envFile)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.HH.Pages)
	assert.Equal(t, "113", cfg.HH.Area)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("VACANCIES_FILE", "/var/lib/vacancies.json")
	t.Setenv("HH_PER_PAGE", "20")
	t.Setenv("JWT_TTL", "90m")
	t.Setenv("REDIS_DB", "not-a-number")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/vacancies.json", cfg.VacanciesFile)
	assert.Equal(t, 20, cfg.HH.PerPage)
	assert.Equal(t, 90*time.Minute, cfg.JWTTTL)
	assert.Equal(t, 0, cfg.RedisDB)
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := &Config{
		Environment:     "production",
		VacanciesFile:   "/tmp/v.json",
		RefreshSchedule: "every tuesday",
		HH: HHConfig{
			APIBaseURL: "https://api.hh.ru",
			UserAgent:  "test",
			PerPage:    500,
			Pages:      1,
			RateLimit:  10,
			ClientID:   "id-without-secret",
		},
	}

	err := cfg.Validate()
	require.Error(t, err)

	merr, ok := err.(*multierror.Error)
	require.True(t, ok)
	assert.Len(t, merr.Errors, 4)
}

func TestValidate_Schedule(t *testing.T) {
	cfg := &Config{
		VacanciesFile:   "/tmp/v.json",
		RefreshSchedule: "0 0 */6 * * *",
		HH: HHConfig{
			APIBaseURL: "https://api.hh.ru",
			UserAgent:  "test",
			PerPage:    100,
			Pages:      2,
			RateLimit:  500,
		},
	}

	assert.NoError(t, cfg.Validate())
}
