package refresh

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/Leigh-Chr/calendraft-sub003/internal/database"
	"github.com/Leigh-Chr/calendraft-sub003/internal/ical"
	"github.com/Leigh-Chr/calendraft-sub003/internal/util"
)

// CalendarStore is the slice of the calendar repository the refresher needs.
type CalendarStore interface {
	ListURLBacked(ctx context.Context) ([]database.CalendarRecord, error)
	ReplaceEvents(ctx context.Context, id string, events []*ical.Event, refreshedAt time.Time) error
}

// Result summarizes one calendar refresh.
type Result struct {
	CalendarID string
	Imported   int
	Skipped    int
}

// Refresher re-fetches URL-backed calendars and replaces their events.
type Refresher struct {
	store     CalendarStore
	fetcher   *Fetcher
	maxEvents int
	now       func() time.Time
}

// NewRefresher creates a refresher. maxEvents caps how many events a feed
// may contain; feeds over the cap are rejected whole.
func NewRefresher(store CalendarStore, fetcher *Fetcher, maxEvents int) *Refresher {
	return &Refresher{
		store:     store,
		fetcher:   fetcher,
		maxEvents: maxEvents,
		now:       time.Now,
	}
}

// RefreshCalendar fetches and replaces one calendar's events.
func (r *Refresher) RefreshCalendar(ctx context.Context, rec *database.CalendarRecord) (*Result, error) {
	if rec.SourceURL == "" {
		return nil, fmt.Errorf("calendar %s has no source URL", rec.ID)
	}

	body, err := r.fetcher.Fetch(ctx, rec.SourceURL)
	if err != nil {
		return nil, err
	}

	decoded, err := ical.DecodeCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("decode feed for %s: %w", rec.ID, err)
	}

	if len(decoded.Events) > r.maxEvents {
		return nil, fmt.Errorf("feed for %s has %d events, limit is %d", rec.ID, len(decoded.Events), r.maxEvents)
	}

	if err := r.store.ReplaceEvents(ctx, rec.ID, decoded.Events, r.now()); err != nil {
		return nil, err
	}

	return &Result{
		CalendarID: rec.ID,
		Imported:   len(decoded.Events),
		Skipped:    decoded.Skipped,
	}, nil
}

// RefreshAll refreshes every URL-backed calendar, continuing past
// individual failures.
func (r *Refresher) RefreshAll(ctx context.Context) []Result {
	records, err := r.store.ListURLBacked(ctx)
	if err != nil {
		util.Error("Failed to list URL-backed calendars", "error", err)
		return nil
	}

	var results []Result
	for i := range records {
		rec := &records[i]
		res, err := r.RefreshCalendar(ctx, rec)
		if err != nil {
			util.Warn("Calendar refresh failed",
				"calendar_id", rec.ID,
				"url", rec.SourceURL,
				"error", err,
			)
			continue
		}
		util.Info("Calendar refreshed",
			"calendar_id", rec.ID,
			"imported", res.Imported,
			"skipped", res.Skipped,
		)
		results = append(results, *res)
	}
	return results
}
