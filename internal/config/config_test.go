package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestLoadConfig_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.APITimeout)
	assert.Equal(t, 30*time.Minute, cfg.DashboardTTL)
	assert.Equal(t, "prometheus", cfg.MetricsExporter)
	assert.Equal(t, "none", cfg.TracesExporter)
	assert.True(t, cfg.RateLimitEnabled)
	assert.Equal(t, language.Turkish, cfg.Language())
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	file := filepath.Join(dir, "portal.yaml")
	require.NoError(t, os.WriteFile(file, []byte("PORT: \"9090\"\nAPI_BASE_URL: https://api.file.test/\nCOLLATION_LANGUAGE: en\n"), 0o600))

	t.Setenv("API_BASE_URL", "https://api.env.test/")
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	t.Setenv("ENVIRONMENT", "production")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "https://api.env.test", cfg.APIBaseURL)
	assert.False(t, cfg.RateLimitEnabled)
	assert.Equal(t, language.English, cfg.Language())
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "https://api.env.test", cfg.DocumentsBase())
}

func TestLoadConfig_Invalid(t *testing.T) {
	chdir(t, t.TempDir())

	t.Setenv("METRICS_EXPORTER", "statsd")
	_, err := LoadConfig("")
	assert.ErrorContains(t, err, "METRICS_EXPORTER")

	t.Setenv("METRICS_EXPORTER", "none")
	t.Setenv("TRACES_EXPORTER", "jaeger")
	_, err = LoadConfig("")
	assert.ErrorContains(t, err, "TRACES_EXPORTER")
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	chdir(t, t.TempDir())
	_, err := LoadConfig("nope.yaml")
	assert.Error(t, err)
}

func TestDocumentsBase(t *testing.T) {
	cfg := &Config{APIBaseURL: "https://api.test", DocumentsOrigin: "https://files.test/"}
	assert.Equal(t, "https://files.test", cfg.DocumentsBase())
}
