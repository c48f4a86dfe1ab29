// Package database handles database migrations.
package database

import (
	"fmt"
)

// migrate runs all database migrations.
func (db *DB) migrate() error {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS migrations (
			version INTEGER PRIMARY KEY,
			applied_at TEXT DEFAULT (datetime('now'))
		)
	`); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	var currentVersion int
	row := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("failed to get current migration version: %w", err)
	}

	migrations := getAllMigrations()
	for _, m := range migrations {
		if m.version > currentVersion {
			if err := db.runMigration(m); err != nil {
				return fmt.Errorf("migration %d failed: %w", m.version, err)
			}
		}
	}

	return nil
}

type migration struct {
	version int
	sql     string
}

func (db *DB) runMigration(m migration) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(m.sql); err != nil {
		return fmt.Errorf("failed to execute migration SQL: %w", err)
	}

	if _, err := tx.Exec("INSERT INTO migrations (version) VALUES (?)", m.version); err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}

	return tx.Commit()
}

func getAllMigrations() []migration {
	return []migration{
		{
			version: 1,
			sql:     migration001InitialSchema,
		},
	}
}

const migration001InitialSchema = `
-- Calendars table
CREATE TABLE IF NOT EXISTS calendars (
    id TEXT PRIMARY KEY,                    -- UUID
    name TEXT NOT NULL,
    color TEXT,                             -- '#rrggbb' or empty
    source_url TEXT,                        -- ICS feed URL; empty for uploads and merges
    created_at TEXT DEFAULT (datetime('now')),
    updated_at TEXT DEFAULT (datetime('now')),
    last_refreshed_at TEXT                  -- NULL until first URL refresh
);

-- Events table
-- Instants are stored in their wire form (YYYYMMDDTHHMMSSZ, local, or date-only)
-- so reload reproduces the decoded value exactly.
CREATE TABLE IF NOT EXISTS events (
    id TEXT PRIMARY KEY,                    -- UUID
    calendar_id TEXT NOT NULL REFERENCES calendars(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,              -- insertion order within the calendar
    uid TEXT NOT NULL,
    title TEXT NOT NULL,
    start_at TEXT NOT NULL,
    end_at TEXT NOT NULL,
    description TEXT,
    location TEXT,
    status TEXT,
    class TEXT,
    transparency TEXT,
    priority INTEGER NOT NULL DEFAULT 0,
    organizer TEXT,
    attendees TEXT,                         -- JSON array
    categories TEXT,                        -- JSON array
    resources TEXT,                         -- JSON array
    alarms TEXT,                            -- JSON array of {action, trigger}
    rrule TEXT,
    recurrence_dates TEXT,                  -- JSON array of {date, tag}
    recurrence_id TEXT,
    sequence INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_events_calendar ON events(calendar_id, position);

-- Share bundles table
-- Stores the serialized ICS alongside the SHA-256 hash of the share token.
CREATE TABLE IF NOT EXISTS bundles (
    id TEXT PRIMARY KEY,                    -- UUID
    token_hash TEXT UNIQUE NOT NULL,        -- SHA-256(token), hex
    token_prefix TEXT NOT NULL,             -- first chars for display
    ics TEXT NOT NULL,
    event_count INTEGER NOT NULL,
    created_at TEXT DEFAULT (datetime('now'))
);
`
