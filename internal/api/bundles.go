package api

import (
	"fmt"
	"net/http"

	"github.com/Leigh-Chr/calendraft-sub003/internal/engine"
	"github.com/Leigh-Chr/calendraft-sub003/internal/ical"
	"github.com/Leigh-Chr/calendraft-sub003/internal/response"
	"github.com/Leigh-Chr/calendraft-sub003/internal/util"
)

// CreateBundleRequest is the POST /api/bundles body.
type CreateBundleRequest struct {
	CalendarIDs      []string `json:"calendar_ids"`
	RemoveDuplicates bool     `json:"remove_duplicates"`
}

// CreateBundle serializes the given calendars into one ICS document and
// stores it behind a share token.
func (h *Handler) CreateBundle(w http.ResponseWriter, r *http.Request) {
	var req CreateBundleRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	if len(req.CalendarIDs) == 0 {
		response.WriteValidationError(w, "calendar_ids is required", nil)
		return
	}

	sources, ok := h.loadCalendars(w, r, req.CalendarIDs)
	if !ok {
		return
	}

	ics, err := engine.SerializeBundle(sources, req.RemoveDuplicates, h.now())
	if err != nil {
		util.Error("Failed to serialize bundle", "error", err)
		response.WriteInternalError(w, "failed to serialize bundle")
		return
	}

	combined := collectEvents(sources)
	eventCount := len(combined)
	if req.RemoveDuplicates {
		part := engine.Resolve(combined, engine.Policy{RemoveDuplicates: true})
		eventCount = len(part.Kept)
	}

	rec, token, err := h.bundleRepo.Create(r.Context(), ics, eventCount)
	if err != nil {
		util.Error("Failed to store bundle", "error", err)
		response.WriteInternalError(w, "failed to store bundle")
		return
	}

	response.JSON(w, http.StatusCreated, map[string]interface{}{
		"bundle_id":   rec.ID,
		"token":       token,
		"share_url":   fmt.Sprintf("%s/share/%s", h.config.Server.BaseURL, token),
		"event_count": rec.EventCount,
	})
}

func collectEvents(sources []*ical.Calendar) []*ical.Event {
	var events []*ical.Event
	for _, cal := range sources {
		events = append(events, cal.Events...)
	}
	return events
}

// GetSharedBundle serves a stored bundle as an ICS document.
func (h *Handler) GetSharedBundle(w http.ResponseWriter, r *http.Request) {
	rec, err := h.bundleRepo.GetByToken(r.Context(), r.PathValue("token"))
	if err != nil {
		util.Error("Failed to load bundle", "error", err)
		response.WriteInternalError(w, "failed to load bundle")
		return
	}
	if rec == nil {
		response.WriteNotFound(w, "bundle not found")
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="bundle.ics"`)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(rec.ICS))
}
