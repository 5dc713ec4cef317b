package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/text/language"
)

// Config holds all configuration for the portal server and CLI
type Config struct {
	Port        string
	Environment string
	LogLevel    string

	APIBaseURL string
	APITimeout time.Duration

	DocumentsOrigin     string
	DocumentsS3Bucket   string
	DocumentsS3Prefix   string
	DocumentsPresignTTL time.Duration
	AWSRegion           string
	AWSEndpoint         string

	SessionDBPath            string
	DashboardTTL             time.Duration
	DashboardCleanupInterval time.Duration
	CollationLanguage        string

	RateLimitEnabled           bool
	RateLimitRequestsPerMinute int
	RateLimitBurst             int

	MetricsExporter string
	TracesExporter  string
	ServiceVersion  string
}

var defaults = map[string]any{
	"PORT":                           "8080",
	"ENVIRONMENT":                    "development",
	"LOG_LEVEL":                      "info",
	"API_BASE_URL":                   "http://localhost:8081",
	"API_TIMEOUT":                    "30s",
	"DOCUMENTS_ORIGIN":               "",
	"DOCUMENTS_S3_BUCKET":            "",
	"DOCUMENTS_S3_PREFIX":            "policies/",
	"DOCUMENTS_PRESIGN_TTL":          "15m",
	"AWS_REGION":                     "eu-central-1",
	"AWS_ENDPOINT_URL":               "",
	"SESSION_DB_PATH":                "data/sessions.db",
	"DASHBOARD_TTL":                  "30m",
	"DASHBOARD_CLEANUP_INTERVAL":     "1m",
	"COLLATION_LANGUAGE":             "tr",
	"RATE_LIMIT_ENABLED":             true,
	"RATE_LIMIT_REQUESTS_PER_MINUTE": 300,
	"RATE_LIMIT_BURST":               50,
	"METRICS_EXPORTER":               "prometheus",
	"TRACES_EXPORTER":                "none",
	"SERVICE_VERSION":                "1.0.0",
}

// LoadConfig loads configuration from a .env file, an optional config file and
// environment variables, in increasing order of precedence. configFile may be
// empty, in which case portal.yaml is looked up in the working directory.
func LoadConfig(configFile string) (*Config, error) {
	// .env never overrides variables already set in the environment
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file loaded, using system environment only", "error", err)
	} else {
		slog.Info("Successfully loaded .env file")
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("portal")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		Port:                       v.GetString("PORT"),
		Environment:                v.GetString("ENVIRONMENT"),
		LogLevel:                   v.GetString("LOG_LEVEL"),
		APIBaseURL:                 strings.TrimRight(v.GetString("API_BASE_URL"), "/"),
		APITimeout:                 v.GetDuration("API_TIMEOUT"),
		DocumentsOrigin:            v.GetString("DOCUMENTS_ORIGIN"),
		DocumentsS3Bucket:          v.GetString("DOCUMENTS_S3_BUCKET"),
		DocumentsS3Prefix:          v.GetString("DOCUMENTS_S3_PREFIX"),
		DocumentsPresignTTL:        v.GetDuration("DOCUMENTS_PRESIGN_TTL"),
		AWSRegion:                  v.GetString("AWS_REGION"),
		AWSEndpoint:                v.GetString("AWS_ENDPOINT_URL"),
		SessionDBPath:              v.GetString("SESSION_DB_PATH"),
		DashboardTTL:               v.GetDuration("DASHBOARD_TTL"),
		DashboardCleanupInterval:   v.GetDuration("DASHBOARD_CLEANUP_INTERVAL"),
		CollationLanguage:          v.GetString("COLLATION_LANGUAGE"),
		RateLimitEnabled:           v.GetBool("RATE_LIMIT_ENABLED"),
		RateLimitRequestsPerMinute: v.GetInt("RATE_LIMIT_REQUESTS_PER_MINUTE"),
		RateLimitBurst:             v.GetInt("RATE_LIMIT_BURST"),
		MetricsExporter:            strings.ToLower(v.GetString("METRICS_EXPORTER")),
		TracesExporter:             strings.ToLower(v.GetString("TRACES_EXPORTER")),
		ServiceVersion:             v.GetString("SERVICE_VERSION"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.APIBaseURL == "" {
		return errors.New("API_BASE_URL is required")
	}
	if c.APITimeout <= 0 {
		return fmt.Errorf("API_TIMEOUT must be positive, got %s", c.APITimeout)
	}
	if c.DashboardTTL <= 0 || c.DashboardCleanupInterval <= 0 {
		return errors.New("DASHBOARD_TTL and DASHBOARD_CLEANUP_INTERVAL must be positive")
	}
	switch c.MetricsExporter {
	case "prometheus", "otlp", "none":
	default:
		return fmt.Errorf("unknown METRICS_EXPORTER %q", c.MetricsExporter)
	}
	switch c.TracesExporter {
	case "otlp", "none":
	default:
		return fmt.Errorf("unknown TRACES_EXPORTER %q", c.TracesExporter)
	}
	return nil
}

// LogAttrs returns the loaded settings as slog attributes, without secrets
func (c *Config) LogAttrs() []any {
	return []any{
		"port", c.Port,
		"environment", c.Environment,
		"logLevel", c.LogLevel,
		"apiBaseURL", c.APIBaseURL,
		"apiTimeout", c.APITimeout.String(),
		"documentsS3Bucket", c.DocumentsS3Bucket,
		"sessionDBPath", c.SessionDBPath,
		"dashboardTTL", c.DashboardTTL.String(),
		"collationLanguage", c.CollationLanguage,
		"rateLimitEnabled", c.RateLimitEnabled,
		"metricsExporter", c.MetricsExporter,
		"tracesExporter", c.TracesExporter,
	}
}

// Language is the collation used for text columns. Unknown tags fall back to Turkish.
func (c *Config) Language() language.Tag {
	tag, err := language.Parse(c.CollationLanguage)
	if err != nil {
		return language.Turkish
	}
	return tag
}

// DocumentsBase is the origin document paths are resolved against
func (c *Config) DocumentsBase() string {
	if c.DocumentsOrigin != "" {
		return strings.TrimRight(c.DocumentsOrigin, "/")
	}
	return c.APIBaseURL
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
