// Package database provides shared model structs used across the application.
package database

import (
	"database/sql"
	"time"
)

// CalendarRecord represents a stored calendar's metadata row.
type CalendarRecord struct {
	ID              string
	Name            string
	Color           string
	SourceURL       string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	LastRefreshedAt sql.NullTime
	EventCount      int
}

// BundleRecord represents a stored share bundle.
type BundleRecord struct {
	ID          string
	TokenHash   string
	TokenPrefix string
	ICS         string
	EventCount  int
	CreatedAt   time.Time
}
