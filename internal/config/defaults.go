// Package config provides default values for configuration.
package config

import "time"

// Server defaults
const (
	DefaultHost         = "0.0.0.0"
	DefaultPort         = 8080
	DefaultBaseURL      = "http://localhost:8080"
	DefaultReadTimeout  = 30 * time.Second
	DefaultWriteTimeout = 30 * time.Second
)

// Database defaults
const (
	DefaultDataDir       = "/data"
	DefaultBusyTimeoutMs = 5000
)

// Refresh defaults
const (
	// Refresh URL-backed calendars every 30 minutes.
	DefaultRefreshSchedule = "*/30 * * * *"
	DefaultFetchTimeout    = 30 * time.Second
	DefaultMaxFetchBytes   = 10 << 20
)

// Limit defaults
const (
	DefaultMaxEventsPerCalendar = 10000
	DefaultMaxUploadBytes       = 10 << 20
)

// Logging defaults
const (
	DefaultLogLevel = "info"
)
