package tui

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultServerURL = "http://localhost:8080"
	defaultTimeout   = 10 * time.Second
	serverURLEnv     = "PLANNER_URL"
)

// Config models the terminal client's planner.yaml.
type Config struct {
	ServerURL      string        `yaml:"server_url"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	ActiveOnly     bool          `yaml:"active_subjects_only"`
	ExportFormat   string        `yaml:"export_format"`
}

// DefaultConfigPath returns the per-user config location.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "planner.yaml"
	}
	return filepath.Join(dir, "lesson-planner", "planner.yaml")
}

// LoadConfig reads path, applying defaults for anything missing. A missing
// file is not an error. PLANNER_URL overrides server_url.
func LoadConfig(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if env := strings.TrimSpace(os.Getenv(serverURLEnv)); env != "" {
		cfg.ServerURL = env
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	c.ServerURL = strings.TrimSpace(c.ServerURL)
	if c.ServerURL == "" {
		c.ServerURL = defaultServerURL
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = defaultTimeout
	}
	c.ExportFormat = strings.ToLower(strings.TrimSpace(c.ExportFormat))
	if c.ExportFormat == "" {
		c.ExportFormat = "pdf"
	}
}

func (c Config) validate() error {
	parsed, err := url.Parse(c.ServerURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("server_url %q is not an absolute URL", c.ServerURL)
	}
	if c.ExportFormat != "csv" && c.ExportFormat != "pdf" {
		return fmt.Errorf("export_format must be csv or pdf, got %q", c.ExportFormat)
	}
	return nil
}
