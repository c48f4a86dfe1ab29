package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type fileDuration time.Duration

func (d *fileDuration) UnmarshalYAML(value *yaml.Node) error {
	if value == nil {
		return nil
	}
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!int" {
			var seconds int64
			if err := value.Decode(&seconds); err != nil {
				return err
			}
			*d = fileDuration(time.Duration(seconds) * time.Second)
			return nil
		}
		var raw string
		if err := value.Decode(&raw); err != nil {
			return err
		}
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", raw, err)
		}
		*d = fileDuration(parsed)
		return nil
	default:
		return fmt.Errorf("invalid duration type")
	}
}

type ConfigFile struct {
	Server   *ServerConfigFile   `yaml:"server"`
	Database *DatabaseConfigFile `yaml:"database"`
	Refresh  *RefreshConfigFile  `yaml:"refresh"`
	Limits   *LimitsConfigFile   `yaml:"limits"`
	Logging  *LoggingConfigFile  `yaml:"logging"`
}

type ServerConfigFile struct {
	Host         *string       `yaml:"host"`
	Port         *int          `yaml:"port"`
	BaseURL      *string       `yaml:"base_url"`
	ReadTimeout  *fileDuration `yaml:"read_timeout"`
	WriteTimeout *fileDuration `yaml:"write_timeout"`
}

type DatabaseConfigFile struct {
	Path          *string `yaml:"path"`
	WALMode       *bool   `yaml:"wal_mode"`
	BusyTimeoutMs *int    `yaml:"busy_timeout_ms"`
}

type FeedAuthConfigFile struct {
	TokenURL     *string   `yaml:"token_url"`
	ClientID     *string   `yaml:"client_id"`
	ClientSecret *string   `yaml:"client_secret"`
	Scopes       *[]string `yaml:"scopes"`
}

type RefreshConfigFile struct {
	Schedule      *string             `yaml:"schedule"`
	FetchTimeout  *fileDuration       `yaml:"fetch_timeout"`
	MaxFetchBytes *int64              `yaml:"max_fetch_bytes"`
	FeedAuth      *FeedAuthConfigFile `yaml:"feed_auth"`
}

type LimitsConfigFile struct {
	MaxEventsPerCalendar *int   `yaml:"max_events_per_calendar"`
	MaxUploadBytes       *int64 `yaml:"max_upload_bytes"`
}

type LoggingConfigFile struct {
	Level  *string `yaml:"level"`
	Format *string `yaml:"format"`
}

func loadConfigFile(cfg *Config, path string) error {
	if path == "" {
		return nil
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var file ConfigFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	applyConfigFile(cfg, &file)
	return nil
}

func applyConfigFile(cfg *Config, file *ConfigFile) {
	if cfg == nil || file == nil {
		return
	}

	if file.Server != nil {
		if file.Server.Host != nil {
			cfg.Server.Host = *file.Server.Host
		}
		if file.Server.Port != nil {
			cfg.Server.Port = *file.Server.Port
		}
		if file.Server.BaseURL != nil {
			cfg.Server.BaseURL = *file.Server.BaseURL
		}
		if file.Server.ReadTimeout != nil {
			cfg.Server.ReadTimeout = time.Duration(*file.Server.ReadTimeout)
		}
		if file.Server.WriteTimeout != nil {
			cfg.Server.WriteTimeout = time.Duration(*file.Server.WriteTimeout)
		}
	}

	if file.Database != nil {
		if file.Database.Path != nil {
			cfg.Database.Path = filepath.Clean(*file.Database.Path)
		}
		if file.Database.WALMode != nil {
			cfg.Database.WALMode = *file.Database.WALMode
		}
		if file.Database.BusyTimeoutMs != nil {
			cfg.Database.BusyTimeoutMs = *file.Database.BusyTimeoutMs
		}
	}

	if file.Refresh != nil {
		if file.Refresh.Schedule != nil {
			cfg.Refresh.Schedule = *file.Refresh.Schedule
		}
		if file.Refresh.FetchTimeout != nil {
			cfg.Refresh.FetchTimeout = time.Duration(*file.Refresh.FetchTimeout)
		}
		if file.Refresh.MaxFetchBytes != nil {
			cfg.Refresh.MaxFetchBytes = *file.Refresh.MaxFetchBytes
		}
		if auth := file.Refresh.FeedAuth; auth != nil {
			if auth.TokenURL != nil {
				cfg.Refresh.FeedAuth.TokenURL = *auth.TokenURL
			}
			if auth.ClientID != nil {
				cfg.Refresh.FeedAuth.ClientID = *auth.ClientID
			}
			if auth.ClientSecret != nil {
				cfg.Refresh.FeedAuth.ClientSecret = *auth.ClientSecret
			}
			if auth.Scopes != nil {
				cfg.Refresh.FeedAuth.Scopes = *auth.Scopes
			}
		}
	}

	if file.Limits != nil {
		if file.Limits.MaxEventsPerCalendar != nil {
			cfg.Limits.MaxEventsPerCalendar = *file.Limits.MaxEventsPerCalendar
		}
		if file.Limits.MaxUploadBytes != nil {
			cfg.Limits.MaxUploadBytes = *file.Limits.MaxUploadBytes
		}
	}

	if file.Logging != nil {
		if file.Logging.Level != nil {
			cfg.Logging.Level = *file.Logging.Level
		}
		if file.Logging.Format != nil {
			cfg.Logging.Format = *file.Logging.Format
		}
	}
}

// GetConfigFilePath returns the path to the config file based on environment variables.
func GetConfigFilePath() string {
	dataDir := getEnv("DATA_DIR", DefaultDataDir)
	return getEnv("CONFIG_FILE", filepath.Join(dataDir, "config.yaml"))
}
