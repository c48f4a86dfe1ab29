package refresh

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Leigh-Chr/calendraft-sub003/internal/config"
	"github.com/Leigh-Chr/calendraft-sub003/internal/database"
	"github.com/Leigh-Chr/calendraft-sub003/internal/ical"
)

const feedICS = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//Feed//EN\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:feed-1\r\n" +
	"SUMMARY:Planning\r\n" +
	"DTSTART:20260401T100000Z\r\n" +
	"DTEND:20260401T110000Z\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:feed-2\r\n" +
	"SUMMARY:Broken\r\n" +
	"DTSTART:not-a-date\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

type fakeStore struct {
	records  []database.CalendarRecord
	replaced map[string][]*ical.Event
}

func newFakeStore(records ...database.CalendarRecord) *fakeStore {
	return &fakeStore{records: records, replaced: make(map[string][]*ical.Event)}
}

func (s *fakeStore) ListURLBacked(ctx context.Context) ([]database.CalendarRecord, error) {
	return s.records, nil
}

func (s *fakeStore) ReplaceEvents(ctx context.Context, id string, events []*ical.Event, refreshedAt time.Time) error {
	s.replaced[id] = events
	return nil
}

func testFetcher(timeout time.Duration, maxBytes int64) *Fetcher {
	return NewFetcher(&config.RefreshConfig{
		FetchTimeout:  timeout,
		MaxFetchBytes: maxBytes,
	})
}

func TestRefreshCalendar(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Accept"); got != "text/calendar" {
			t.Errorf("unexpected Accept header: %q", got)
		}
		w.Header().Set("Content-Type", "text/calendar")
		w.Write([]byte(feedICS))
	}))
	defer srv.Close()

	store := newFakeStore()
	refresher := NewRefresher(store, testFetcher(5*time.Second, 1<<20), 100)

	rec := &database.CalendarRecord{ID: "cal-1", SourceURL: srv.URL}
	res, err := refresher.RefreshCalendar(context.Background(), rec)
	if err != nil {
		t.Fatalf("RefreshCalendar failed: %v", err)
	}

	if res.Imported != 1 || res.Skipped != 1 {
		t.Errorf("expected 1 imported / 1 skipped, got %d / %d", res.Imported, res.Skipped)
	}
	events := store.replaced["cal-1"]
	if len(events) != 1 || events[0].Title != "Planning" {
		t.Fatalf("unexpected replaced events: %+v", events)
	}
}

func TestRefreshCalendar_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	store := newFakeStore()
	refresher := NewRefresher(store, testFetcher(5*time.Second, 1<<20), 100)

	rec := &database.CalendarRecord{ID: "cal-1", SourceURL: srv.URL}
	_, err := refresher.RefreshCalendar(context.Background(), rec)
	if err == nil {
		t.Fatal("expected error for upstream failure")
	}
	fe, ok := err.(*FetchError)
	if !ok {
		t.Fatalf("expected *FetchError, got %T", err)
	}
	if fe.StatusCode != http.StatusGone {
		t.Errorf("expected status 410, got %d", fe.StatusCode)
	}
	if len(store.replaced) != 0 {
		t.Error("store should be untouched on fetch failure")
	}
}

func TestRefreshCalendar_SizeCap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("X", 2048)))
	}))
	defer srv.Close()

	store := newFakeStore()
	refresher := NewRefresher(store, testFetcher(5*time.Second, 1024), 100)

	rec := &database.CalendarRecord{ID: "cal-1", SourceURL: srv.URL}
	if _, err := refresher.RefreshCalendar(context.Background(), rec); err == nil {
		t.Fatal("expected error for oversized feed")
	}
	if len(store.replaced) != 0 {
		t.Error("store should be untouched on oversized feed")
	}
}

func TestRefreshCalendar_EventLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(feedICS))
	}))
	defer srv.Close()

	store := newFakeStore()
	refresher := NewRefresher(store, testFetcher(5*time.Second, 1<<20), 0)

	rec := &database.CalendarRecord{ID: "cal-1", SourceURL: srv.URL}
	if _, err := refresher.RefreshCalendar(context.Background(), rec); err == nil {
		t.Fatal("expected error when feed exceeds event limit")
	}
}

func TestRefreshAll_ContinuesPastFailures(t *testing.T) {
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(feedICS))
	}))
	defer good.Close()
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer bad.Close()

	store := newFakeStore(
		database.CalendarRecord{ID: "bad", SourceURL: bad.URL},
		database.CalendarRecord{ID: "good", SourceURL: good.URL},
	)
	refresher := NewRefresher(store, testFetcher(5*time.Second, 1<<20), 100)

	results := refresher.RefreshAll(context.Background())
	if len(results) != 1 || results[0].CalendarID != "good" {
		t.Fatalf("expected only the good calendar to refresh, got %+v", results)
	}
}
