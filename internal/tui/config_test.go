package tui

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "planner.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	t.Setenv(serverURLEnv, "")
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, defaultServerURL, cfg.ServerURL)
	assert.Equal(t, defaultTimeout, cfg.RequestTimeout)
	assert.Equal(t, "pdf", cfg.ExportFormat)
	assert.False(t, cfg.ActiveOnly)
}

func TestLoadConfigReadsYAML(t *testing.T) {
	t.Setenv(serverURLEnv, "")
	path := writeConfig(t, `
server_url: https://planner.example.com
request_timeout: 3s
active_subjects_only: true
export_format: CSV
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "https://planner.example.com", cfg.ServerURL)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
	assert.True(t, cfg.ActiveOnly)
	assert.Equal(t, "csv", cfg.ExportFormat)
}

func TestLoadConfigEnvOverridesServerURL(t *testing.T) {
	t.Setenv(serverURLEnv, "http://10.0.0.5:9000")
	path := writeConfig(t, "server_url: https://planner.example.com\n")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.5:9000", cfg.ServerURL)
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	t.Setenv(serverURLEnv, "")
	cases := map[string]string{
		"relative url":   "server_url: planner.local\n",
		"bad format":     "export_format: docx\n",
		"malformed yaml": "server_url: [unterminated\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}
