// Package calendars provides calendar and event storage.
package calendars

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Leigh-Chr/calendraft-sub003/internal/database"
	"github.com/Leigh-Chr/calendraft-sub003/internal/ical"
	"github.com/Leigh-Chr/calendraft-sub003/internal/util"
)

// Repository handles calendar storage and retrieval.
type Repository struct {
	db *database.DB
}

// NewRepository creates a new calendar repository.
func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

// Create stores a calendar and its events.
func (r *Repository) Create(ctx context.Context, cal *ical.Calendar) (*database.CalendarRecord, error) {
	tx, err := r.db.BeginTx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO calendars (id, name, color, source_url)
		VALUES (?, ?, ?, ?)
	`, cal.ID, cal.Name, cal.Color, cal.SourceURL)
	if err != nil {
		return nil, fmt.Errorf("failed to insert calendar: %w", err)
	}

	if err := insertEvents(ctx, tx, cal.ID, cal.Events); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}

	return r.GetRecord(ctx, cal.ID)
}

// Get retrieves a calendar with its events in insertion order.
// Returns nil when the calendar does not exist.
func (r *Repository) Get(ctx context.Context, id string) (*ical.Calendar, error) {
	rec, err := r.GetRecord(ctx, id)
	if err != nil || rec == nil {
		return nil, err
	}

	events, err := r.loadEvents(ctx, id)
	if err != nil {
		return nil, err
	}

	return &ical.Calendar{
		ID:        rec.ID,
		Name:      rec.Name,
		Color:     rec.Color,
		SourceURL: rec.SourceURL,
		Events:    events,
	}, nil
}

// GetRecord retrieves calendar metadata without events.
// Returns nil when the calendar does not exist.
func (r *Repository) GetRecord(ctx context.Context, id string) (*database.CalendarRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT c.id, c.name, COALESCE(c.color, ''), COALESCE(c.source_url, ''),
		       c.created_at, c.updated_at, c.last_refreshed_at,
		       (SELECT COUNT(*) FROM events e WHERE e.calendar_id = c.id)
		FROM calendars c
		WHERE c.id = ?
	`, id)

	return scanCalendarRecord(row.Scan)
}

// List retrieves all calendar records ordered by creation time.
func (r *Repository) List(ctx context.Context) ([]database.CalendarRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.id, c.name, COALESCE(c.color, ''), COALESCE(c.source_url, ''),
		       c.created_at, c.updated_at, c.last_refreshed_at,
		       (SELECT COUNT(*) FROM events e WHERE e.calendar_id = c.id)
		FROM calendars c
		ORDER BY c.created_at, c.id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query calendars: %w", err)
	}
	defer rows.Close()

	var records []database.CalendarRecord
	for rows.Next() {
		rec, err := scanCalendarRecord(rows.Scan)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// ListURLBacked retrieves records for calendars that track a source URL.
func (r *Repository) ListURLBacked(ctx context.Context) ([]database.CalendarRecord, error) {
	records, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	urlBacked := records[:0]
	for _, rec := range records {
		if rec.SourceURL != "" {
			urlBacked = append(urlBacked, rec)
		}
	}
	return urlBacked, nil
}

// UpdateMeta updates a calendar's name and color.
func (r *Repository) UpdateMeta(ctx context.Context, id, name, color string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE calendars SET name = ?, color = ?, updated_at = datetime('now')
		WHERE id = ?
	`, name, color, id)
	if err != nil {
		return fmt.Errorf("failed to update calendar: %w", err)
	}
	return requireRow(res)
}

// Delete removes a calendar and, via cascade, its events.
func (r *Repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM calendars WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete calendar: %w", err)
	}
	return requireRow(res)
}

// ReplaceEvents swaps a calendar's event set atomically and stamps the
// refresh time. Used by URL refresh so a failed fetch never leaves a
// half-replaced calendar.
func (r *Repository) ReplaceEvents(ctx context.Context, id string, events []*ical.Event, refreshedAt time.Time) error {
	tx, err := r.db.BeginTx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM events WHERE calendar_id = ?", id); err != nil {
		return fmt.Errorf("failed to clear events: %w", err)
	}

	if err := insertEvents(ctx, tx, id, events); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE calendars SET updated_at = datetime('now'), last_refreshed_at = ?
		WHERE id = ?
	`, util.SQLiteTimestamp(refreshedAt), id)
	if err != nil {
		return fmt.Errorf("failed to stamp refresh: %w", err)
	}
	if err := requireRow(res); err != nil {
		return err
	}

	return tx.Commit()
}

// AddEvent appends an event to the end of a calendar's event list.
func (r *Repository) AddEvent(ctx context.Context, calendarID string, ev *ical.Event) error {
	tx, err := r.db.BeginTx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE calendars SET updated_at = datetime('now') WHERE id = ?
	`, calendarID)
	if err != nil {
		return fmt.Errorf("failed to touch calendar: %w", err)
	}
	if err := requireRow(res); err != nil {
		return err
	}

	var pos int
	row := tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(position) + 1, 0) FROM events WHERE calendar_id = ?", calendarID)
	if err := row.Scan(&pos); err != nil {
		return fmt.Errorf("failed to compute position: %w", err)
	}

	if err := insertEventAt(ctx, tx, calendarID, pos, ev); err != nil {
		return err
	}

	return tx.Commit()
}

// UpdateEvent replaces the event with the given UID, bumping its sequence
// past the stored one. The event passed in is updated with the new sequence.
func (r *Repository) UpdateEvent(ctx context.Context, calendarID, uid string, ev *ical.Event) error {
	tx, err := r.db.BeginTx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var oldSequence int
	row := tx.QueryRowContext(ctx,
		"SELECT sequence FROM events WHERE calendar_id = ? AND uid = ?", calendarID, uid)
	if err := row.Scan(&oldSequence); err == sql.ErrNoRows {
		return ErrNotFound
	} else if err != nil {
		return fmt.Errorf("failed to load event: %w", err)
	}

	ev.UID = uid
	ev.Sequence = oldSequence + 1

	rowData, err := eventToRow(ev)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE events SET
			title = ?, start_at = ?, end_at = ?,
			description = ?, location = ?, status = ?, class = ?, transparency = ?,
			priority = ?, organizer = ?, attendees = ?, categories = ?, resources = ?,
			alarms = ?, rrule = ?, recurrence_dates = ?, recurrence_id = ?, sequence = ?
		WHERE calendar_id = ? AND uid = ?
	`,
		ev.Title, ical.FormatInstant(ev.Start), ical.FormatInstant(ev.End),
		ev.Description, ev.Location, string(ev.Status), string(ev.Class),
		string(ev.Transparency), ev.Priority, ev.Organizer,
		rowData.attendees, rowData.categories, rowData.resources, rowData.alarms,
		ev.RRule, rowData.recurrenceDates, rowData.recurrenceID, ev.Sequence,
		calendarID, uid,
	)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE calendars SET updated_at = datetime('now') WHERE id = ?", calendarID); err != nil {
		return fmt.Errorf("failed to touch calendar: %w", err)
	}

	return tx.Commit()
}

// DeleteEvent removes the event with the given UID from a calendar.
func (r *Repository) DeleteEvent(ctx context.Context, calendarID, uid string) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM events WHERE calendar_id = ? AND uid = ?", calendarID, uid)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return requireRow(res)
}

// ErrNotFound is returned by writes against a missing calendar or event.
var ErrNotFound = fmt.Errorf("not found")

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

const insertEventSQL = `
	INSERT INTO events (
		id, calendar_id, position, uid, title, start_at, end_at,
		description, location, status, class, transparency, priority,
		organizer, attendees, categories, resources, alarms,
		rrule, recurrence_dates, recurrence_id, sequence
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

func insertEvents(ctx context.Context, tx *sql.Tx, calendarID string, events []*ical.Event) error {
	stmt, err := tx.PrepareContext(ctx, insertEventSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare event insert: %w", err)
	}
	defer stmt.Close()

	for pos, ev := range events {
		if err := execInsertEvent(ctx, stmt, calendarID, pos, ev); err != nil {
			return err
		}
	}
	return nil
}

func insertEventAt(ctx context.Context, tx *sql.Tx, calendarID string, pos int, ev *ical.Event) error {
	stmt, err := tx.PrepareContext(ctx, insertEventSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare event insert: %w", err)
	}
	defer stmt.Close()
	return execInsertEvent(ctx, stmt, calendarID, pos, ev)
}

func execInsertEvent(ctx context.Context, stmt *sql.Stmt, calendarID string, pos int, ev *ical.Event) error {
	row, err := eventToRow(ev)
	if err != nil {
		return err
	}
	_, err = stmt.ExecContext(ctx,
		newEventRowID(), calendarID, pos, ev.UID, ev.Title,
		ical.FormatInstant(ev.Start), ical.FormatInstant(ev.End),
		ev.Description, ev.Location, string(ev.Status), string(ev.Class),
		string(ev.Transparency), ev.Priority, ev.Organizer,
		row.attendees, row.categories, row.resources, row.alarms,
		ev.RRule, row.recurrenceDates, row.recurrenceID, ev.Sequence,
	)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

func (r *Repository) loadEvents(ctx context.Context, calendarID string) ([]*ical.Event, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT uid, title, start_at, end_at,
		       COALESCE(description, ''), COALESCE(location, ''),
		       COALESCE(status, ''), COALESCE(class, ''), COALESCE(transparency, ''),
		       priority, COALESCE(organizer, ''),
		       COALESCE(attendees, ''), COALESCE(categories, ''), COALESCE(resources, ''),
		       COALESCE(alarms, ''), COALESCE(rrule, ''),
		       COALESCE(recurrence_dates, ''), COALESCE(recurrence_id, ''), sequence
		FROM events
		WHERE calendar_id = ?
		ORDER BY position
	`, calendarID)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []*ical.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

func newEventRowID() string {
	return uuid.NewString()
}

// serialized list columns for one event row
type eventRow struct {
	attendees       string
	categories      string
	resources       string
	alarms          string
	recurrenceDates string
	recurrenceID    string
}

type storedAlarm struct {
	Action  string `json:"action"`
	Trigger string `json:"trigger"`
}

type storedRecurrenceDate struct {
	Date string `json:"date"`
	Tag  string `json:"tag"`
}

func eventToRow(ev *ical.Event) (*eventRow, error) {
	row := &eventRow{}

	var err error
	if row.attendees, err = marshalStrings(ev.Attendees); err != nil {
		return nil, err
	}
	if row.categories, err = marshalStrings(ev.Categories); err != nil {
		return nil, err
	}
	if row.resources, err = marshalStrings(ev.Resources); err != nil {
		return nil, err
	}

	if len(ev.Alarms) > 0 {
		alarms := make([]storedAlarm, len(ev.Alarms))
		for i, a := range ev.Alarms {
			alarms[i] = storedAlarm{Action: a.Action, Trigger: ical.FormatDuration(a.Trigger)}
		}
		data, err := json.Marshal(alarms)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal alarms: %w", err)
		}
		row.alarms = string(data)
	}

	if len(ev.RecurrenceDates) > 0 {
		dates := make([]storedRecurrenceDate, len(ev.RecurrenceDates))
		for i, rd := range ev.RecurrenceDates {
			dates[i] = storedRecurrenceDate{Date: ical.FormatInstant(rd.Date), Tag: string(rd.Tag)}
		}
		data, err := json.Marshal(dates)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal recurrence dates: %w", err)
		}
		row.recurrenceDates = string(data)
	}

	if ev.RecurrenceID != nil {
		row.recurrenceID = ical.FormatInstant(*ev.RecurrenceID)
	}

	return row, nil
}

func marshalStrings(values []string) (string, error) {
	if len(values) == 0 {
		return "", nil
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("failed to marshal list: %w", err)
	}
	return string(data), nil
}

func unmarshalStrings(data string) ([]string, error) {
	if data == "" {
		return nil, nil
	}
	var values []string
	if err := json.Unmarshal([]byte(data), &values); err != nil {
		return nil, fmt.Errorf("failed to unmarshal list: %w", err)
	}
	return values, nil
}

func scanEvent(rows *sql.Rows) (*ical.Event, error) {
	var (
		ev                                  ical.Event
		startRaw, endRaw                    string
		status, class, transparency         string
		attendees, categories, resources    string
		alarms, recurrenceDates, recurrence string
	)

	err := rows.Scan(
		&ev.UID, &ev.Title, &startRaw, &endRaw,
		&ev.Description, &ev.Location,
		&status, &class, &transparency,
		&ev.Priority, &ev.Organizer,
		&attendees, &categories, &resources,
		&alarms, &ev.RRule,
		&recurrenceDates, &recurrence, &ev.Sequence,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan event: %w", err)
	}

	if ev.Start, err = ical.ParseInstant(startRaw); err != nil {
		return nil, fmt.Errorf("corrupt start instant: %w", err)
	}
	if ev.End, err = ical.ParseInstant(endRaw); err != nil {
		return nil, fmt.Errorf("corrupt end instant: %w", err)
	}

	ev.Status = ical.EventStatus(status)
	ev.Class = ical.EventClass(class)
	ev.Transparency = ical.Transparency(transparency)

	if ev.Attendees, err = unmarshalStrings(attendees); err != nil {
		return nil, err
	}
	if ev.Categories, err = unmarshalStrings(categories); err != nil {
		return nil, err
	}
	if ev.Resources, err = unmarshalStrings(resources); err != nil {
		return nil, err
	}

	if alarms != "" {
		var stored []storedAlarm
		if err := json.Unmarshal([]byte(alarms), &stored); err != nil {
			return nil, fmt.Errorf("failed to unmarshal alarms: %w", err)
		}
		for _, a := range stored {
			trigger, err := ical.ParseDuration(a.Trigger)
			if err != nil {
				return nil, fmt.Errorf("corrupt alarm trigger: %w", err)
			}
			ev.Alarms = append(ev.Alarms, ical.Alarm{Action: a.Action, Trigger: trigger})
		}
	}

	if recurrenceDates != "" {
		var stored []storedRecurrenceDate
		if err := json.Unmarshal([]byte(recurrenceDates), &stored); err != nil {
			return nil, fmt.Errorf("failed to unmarshal recurrence dates: %w", err)
		}
		for _, rd := range stored {
			date, err := ical.ParseInstant(rd.Date)
			if err != nil {
				return nil, fmt.Errorf("corrupt recurrence date: %w", err)
			}
			ev.RecurrenceDates = append(ev.RecurrenceDates, ical.RecurrenceDate{
				Date: date,
				Tag:  ical.RecurrenceTag(rd.Tag),
			})
		}
	}

	if recurrence != "" {
		id, err := ical.ParseInstant(recurrence)
		if err != nil {
			return nil, fmt.Errorf("corrupt recurrence id: %w", err)
		}
		ev.RecurrenceID = &id
	}

	return &ev, nil
}

func scanCalendarRecord(scan func(dest ...any) error) (*database.CalendarRecord, error) {
	var (
		rec                  database.CalendarRecord
		createdAt, updatedAt string
		lastRefreshedAt      sql.NullString
	)

	err := scan(&rec.ID, &rec.Name, &rec.Color, &rec.SourceURL,
		&createdAt, &updatedAt, &lastRefreshedAt, &rec.EventCount)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan calendar: %w", err)
	}

	if rec.CreatedAt, err = util.ParseSQLiteTimestamp(createdAt); err != nil {
		return nil, fmt.Errorf("corrupt created_at: %w", err)
	}
	if rec.UpdatedAt, err = util.ParseSQLiteTimestamp(updatedAt); err != nil {
		return nil, fmt.Errorf("corrupt updated_at: %w", err)
	}
	if lastRefreshedAt.Valid {
		t, err := util.ParseSQLiteTimestamp(lastRefreshedAt.String)
		if err != nil {
			return nil, fmt.Errorf("corrupt last_refreshed_at: %w", err)
		}
		rec.LastRefreshedAt = sql.NullTime{Time: t, Valid: true}
	}

	return &rec, nil
}
