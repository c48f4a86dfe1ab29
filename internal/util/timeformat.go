package util

import "time"

// SQLiteTimestamp formats a time for SQLite storage (UTC).
func SQLiteTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05")
}

// ParseSQLiteTimestamp parses a SQLite timestamp.
func ParseSQLiteTimestamp(s string) (time.Time, error) {
	return time.Parse("2006-01-02 15:04:05", s)
}
