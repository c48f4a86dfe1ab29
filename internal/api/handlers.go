// Package api provides REST API handlers.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/Leigh-Chr/calendraft-sub003/internal/config"
	"github.com/Leigh-Chr/calendraft-sub003/internal/database"
	"github.com/Leigh-Chr/calendraft-sub003/internal/ical"
	"github.com/Leigh-Chr/calendraft-sub003/internal/refresh"
)

// CalendarStore defines the subset of calendar repository behavior used by the API handler.
type CalendarStore interface {
	Create(ctx context.Context, cal *ical.Calendar) (*database.CalendarRecord, error)
	Get(ctx context.Context, id string) (*ical.Calendar, error)
	GetRecord(ctx context.Context, id string) (*database.CalendarRecord, error)
	List(ctx context.Context) ([]database.CalendarRecord, error)
	UpdateMeta(ctx context.Context, id, name, color string) error
	Delete(ctx context.Context, id string) error
	AddEvent(ctx context.Context, calendarID string, ev *ical.Event) error
	UpdateEvent(ctx context.Context, calendarID, uid string, ev *ical.Event) error
	DeleteEvent(ctx context.Context, calendarID, uid string) error
}

// BundleStore defines the subset of bundle repository behavior used by the API handler.
type BundleStore interface {
	Create(ctx context.Context, ics string, eventCount int) (*database.BundleRecord, string, error)
	GetByToken(ctx context.Context, token string) (*database.BundleRecord, error)
}

// Refresher re-fetches a single URL-backed calendar on demand.
type Refresher interface {
	RefreshCalendar(ctx context.Context, rec *database.CalendarRecord) (*refresh.Result, error)
}

// Handler provides REST API handlers.
type Handler struct {
	config       *config.Config
	calendarRepo CalendarStore
	bundleRepo   BundleStore
	refresher    Refresher
	now          func() time.Time
}

// NewHandler creates a new API handler.
func NewHandler(cfg *config.Config, calendarRepo CalendarStore, bundleRepo BundleStore, refresher Refresher) *Handler {
	return &Handler{
		config:       cfg,
		calendarRepo: calendarRepo,
		bundleRepo:   bundleRepo,
		refresher:    refresher,
		now:          time.Now,
	}
}

// RegisterRoutes registers API routes.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Calendar management
	mux.HandleFunc("POST /api/calendars", h.CreateCalendar)
	mux.HandleFunc("POST /api/calendars/import", h.ImportCalendar)
	mux.HandleFunc("GET /api/calendars", h.ListCalendars)
	mux.HandleFunc("GET /api/calendars/{calendarId}", h.GetCalendar)
	mux.HandleFunc("PUT /api/calendars/{calendarId}", h.UpdateCalendar)
	mux.HandleFunc("DELETE /api/calendars/{calendarId}", h.DeleteCalendar)
	mux.HandleFunc("POST /api/calendars/{calendarId}/refresh", h.RefreshCalendar)

	// Event management
	mux.HandleFunc("POST /api/calendars/{calendarId}/events", h.CreateEvent)
	mux.HandleFunc("PUT /api/calendars/{calendarId}/events/{uid}", h.UpdateEvent)
	mux.HandleFunc("DELETE /api/calendars/{calendarId}/events/{uid}", h.DeleteEvent)

	// Engine operations
	mux.HandleFunc("POST /api/merge", h.MergeCalendars)
	mux.HandleFunc("POST /api/duplicates/preview", h.PreviewDuplicates)
	mux.HandleFunc("GET /api/calendars/{calendarId}/conflicts", h.GetConflicts)

	// Share bundles
	mux.HandleFunc("POST /api/bundles", h.CreateBundle)
	mux.HandleFunc("GET /share/{token}", h.GetSharedBundle)
}
