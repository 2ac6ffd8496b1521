package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 6, cfg.Planner.PeriodsPerDay)
	assert.Equal(t, 10, cfg.Planner.CycleLength)
	assert.Equal(t, 8, cfg.Planner.FetchConcurrency)
	assert.Equal(t, 10*time.Minute, cfg.Settings.CacheTTL)
	assert.Equal(t, time.Hour, cfg.Exports.SignedURLTTL)
	assert.True(t, cfg.Exports.CSVBOM)
	assert.Equal(t, ",", cfg.Exports.CSVDelimiter)
}

func TestLoadReadsEnvironment(t *testing.T) {
	chdirTemp(t)
	t.Setenv("CYCLE_LENGTH", "12")
	t.Setenv("CYCLE_START_DATE", "2025-01-27")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test ,")
	t.Setenv("SETTINGS_CACHE_TTL", "not-a-duration")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Planner.CycleLength)
	assert.Equal(t, "2025-01-27", cfg.Planner.CycleStartDate)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 10*time.Minute, cfg.Settings.CacheTTL)
}

func TestLoadRejectsInvalidPlannerValues(t *testing.T) {
	cases := map[string]string{
		"PERIODS_PER_DAY":        "13",
		"CYCLE_LENGTH":           "0",
		"CURRENT_SEMESTER":       "3",
		"WEEK_FETCH_CONCURRENCY": "0",
		"CYCLE_START_DATE":       "27/01/2025",
		"PORT":                   "70000",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			chdirTemp(t)
			t.Setenv(key, value)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
