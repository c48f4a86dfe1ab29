// Package config handles configuration loading from environment variables and optional YAML files.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Refresh  RefreshConfig
	Limits   LimitsConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string
	Port         int
	BaseURL      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds SQLite settings.
type DatabaseConfig struct {
	Path          string
	WALMode       bool
	BusyTimeoutMs int
}

// FeedAuthConfig holds OAuth2 client-credentials settings for ICS feeds
// that sit behind an authorization server. Left empty, feeds are fetched
// anonymously.
type FeedAuthConfig struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scopes       []string
}

// RefreshConfig holds calendar URL refresh settings.
type RefreshConfig struct {
	// Schedule is a cron expression; empty disables background refresh.
	Schedule      string
	FetchTimeout  time.Duration
	MaxFetchBytes int64
	FeedAuth      FeedAuthConfig
}

// LimitsConfig holds product ceilings enforced at the API boundary.
type LimitsConfig struct {
	MaxEventsPerCalendar int
	MaxUploadBytes       int64
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables with defaults, then
// overlays the optional YAML config file. File values win over environment
// values; environment settings the file leaves unset are kept.
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.Server = ServerConfig{
		Host:         getEnv("HOST", DefaultHost),
		Port:         getEnvInt("PORT", DefaultPort),
		BaseURL:      getEnv("BASE_URL", DefaultBaseURL),
		ReadTimeout:  getEnvDuration("READ_TIMEOUT", DefaultReadTimeout),
		WriteTimeout: getEnvDuration("WRITE_TIMEOUT", DefaultWriteTimeout),
	}

	cfg.Database = DatabaseConfig{
		Path:          getEnv("DATA_DIR", DefaultDataDir) + "/calendraft.db",
		WALMode:       true,
		BusyTimeoutMs: DefaultBusyTimeoutMs,
	}

	cfg.Refresh = RefreshConfig{
		Schedule:      getEnv("REFRESH_SCHEDULE", DefaultRefreshSchedule),
		FetchTimeout:  getEnvDuration("REFRESH_FETCH_TIMEOUT", DefaultFetchTimeout),
		MaxFetchBytes: int64(getEnvInt("REFRESH_MAX_FETCH_BYTES", DefaultMaxFetchBytes)),
		FeedAuth: FeedAuthConfig{
			TokenURL:     getEnv("FEED_OAUTH_TOKEN_URL", ""),
			ClientID:     getEnv("FEED_OAUTH_CLIENT_ID", ""),
			ClientSecret: getEnv("FEED_OAUTH_CLIENT_SECRET", ""),
			Scopes:       splitList(getEnv("FEED_OAUTH_SCOPES", "")),
		},
	}

	cfg.Limits = LimitsConfig{
		MaxEventsPerCalendar: getEnvInt("MAX_EVENTS_PER_CALENDAR", DefaultMaxEventsPerCalendar),
		MaxUploadBytes:       int64(getEnvInt("MAX_UPLOAD_BYTES", DefaultMaxUploadBytes)),
	}

	cfg.Logging = LoggingConfig{
		Level:  getEnv("LOG_LEVEL", DefaultLogLevel),
		Format: getEnv("LOG_FORMAT", "json"),
	}

	if err := loadConfigFile(cfg, GetConfigFilePath()); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that configuration fields are usable.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Limits.MaxEventsPerCalendar <= 0 {
		return fmt.Errorf("MAX_EVENTS_PER_CALENDAR must be positive")
	}
	if c.Limits.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	auth := c.Refresh.FeedAuth
	if (auth.ClientID == "") != (auth.ClientSecret == "") {
		return fmt.Errorf("feed OAuth client id and secret must be set together")
	}
	if auth.ClientID != "" && auth.TokenURL == "" {
		return fmt.Errorf("feed OAuth requires FEED_OAUTH_TOKEN_URL")
	}
	return nil
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
