package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	CORS     CORSConfig
	Log      LogConfig
	Planner  PlannerConfig
	Settings SettingsCacheConfig
	Exports  ExportsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// PlannerConfig seeds the settings row the first time it is read and tunes week assembly.
type PlannerConfig struct {
	PeriodsPerDay    int
	CycleLength      int
	CycleStartDate   string
	CurrentYear      int
	CurrentSemester  int
	FetchConcurrency int
}

// SettingsCacheConfig controls caching of the cycle calendar configuration.
type SettingsCacheConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

// ExportsConfig controls rendered week-plan storage.
type ExportsConfig struct {
	StorageDir      string
	SignedURLSecret string
	SignedURLTTL    time.Duration
	CSVBOM          bool
	CSVDelimiter    string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("REDIS_ENABLED"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Planner = PlannerConfig{
		PeriodsPerDay:    v.GetInt("PERIODS_PER_DAY"),
		CycleLength:      v.GetInt("CYCLE_LENGTH"),
		CycleStartDate:   strings.TrimSpace(v.GetString("CYCLE_START_DATE")),
		CurrentYear:      v.GetInt("CURRENT_YEAR"),
		CurrentSemester:  v.GetInt("CURRENT_SEMESTER"),
		FetchConcurrency: v.GetInt("WEEK_FETCH_CONCURRENCY"),
	}

	cfg.Settings = SettingsCacheConfig{
		CacheEnabled: v.GetBool("ENABLE_SETTINGS_CACHE"),
		CacheTTL:     parseDuration(v.GetString("SETTINGS_CACHE_TTL"), 10*time.Minute),
	}

	cfg.Exports = ExportsConfig{
		StorageDir:      v.GetString("EXPORTS_STORAGE_DIR"),
		SignedURLSecret: v.GetString("EXPORTS_SIGNED_URL_SECRET"),
		SignedURLTTL:    parseDuration(v.GetString("EXPORTS_SIGNED_URL_TTL"), time.Hour),
		CSVBOM:          v.GetBool("EXPORTS_CSV_BOM"),
		CSVDelimiter:    v.GetString("EXPORTS_CSV_DELIMITER"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the server cannot start with. The cycle start date
// is only checked for format; its calendar rules are enforced by the
// settings service so a bad anchor can still be fixed through the API.
func (c *Config) Validate() error {
	var problems []string
	if c.Port <= 0 || c.Port > 65535 {
		problems = append(problems, fmt.Sprintf("PORT %d out of range", c.Port))
	}
	if c.Planner.PeriodsPerDay < 1 || c.Planner.PeriodsPerDay > 12 {
		problems = append(problems, fmt.Sprintf("PERIODS_PER_DAY must be between 1 and 12, got %d", c.Planner.PeriodsPerDay))
	}
	if c.Planner.CycleLength < 1 {
		problems = append(problems, fmt.Sprintf("CYCLE_LENGTH must be positive, got %d", c.Planner.CycleLength))
	}
	if c.Planner.CurrentSemester != 1 && c.Planner.CurrentSemester != 2 {
		problems = append(problems, fmt.Sprintf("CURRENT_SEMESTER must be 1 or 2, got %d", c.Planner.CurrentSemester))
	}
	if c.Planner.FetchConcurrency < 1 {
		problems = append(problems, "WEEK_FETCH_CONCURRENCY must be positive")
	}
	if raw := c.Planner.CycleStartDate; raw != "" {
		if _, err := time.Parse("2006-01-02", raw); err != nil {
			problems = append(problems, fmt.Sprintf("CYCLE_START_DATE %q is not YYYY-MM-DD", raw))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "teacher_planner")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("PERIODS_PER_DAY", 6)
	v.SetDefault("CYCLE_LENGTH", 10)
	v.SetDefault("CYCLE_START_DATE", "")
	v.SetDefault("CURRENT_YEAR", time.Now().Year())
	v.SetDefault("CURRENT_SEMESTER", 1)
	v.SetDefault("WEEK_FETCH_CONCURRENCY", 8)

	v.SetDefault("ENABLE_SETTINGS_CACHE", false)
	v.SetDefault("SETTINGS_CACHE_TTL", "10m")

	v.SetDefault("EXPORTS_STORAGE_DIR", "./exports")
	v.SetDefault("EXPORTS_SIGNED_URL_SECRET", "dev_exports_secret")
	v.SetDefault("EXPORTS_SIGNED_URL_TTL", "1h")
	v.SetDefault("EXPORTS_CSV_BOM", true)
	v.SetDefault("EXPORTS_CSV_DELIMITER", ",")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// SetConfigFile bypasses viper's search path, so a missing .env surfaces as a
// filesystem error rather than ConfigFileNotFoundError.
func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
