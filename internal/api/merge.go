package api

import (
	"net/http"

	"github.com/Leigh-Chr/calendraft-sub003/internal/engine"
	"github.com/Leigh-Chr/calendraft-sub003/internal/ical"
	"github.com/Leigh-Chr/calendraft-sub003/internal/response"
	"github.com/Leigh-Chr/calendraft-sub003/internal/util"
)

// MergeRequest is the POST /api/merge body.
type MergeRequest struct {
	CalendarIDs      []string `json:"calendar_ids"`
	Name             string   `json:"name"`
	RemoveDuplicates bool     `json:"remove_duplicates"`
}

// MergeCalendars combines stored calendars into a new persisted calendar.
// Sources are left untouched.
func (h *Handler) MergeCalendars(w http.ResponseWriter, r *http.Request) {
	var req MergeRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	if len(req.CalendarIDs) < 2 {
		response.WritePreconditionFailed(w, "merge requires at least two calendars")
		return
	}

	sources, ok := h.loadCalendars(w, r, req.CalendarIDs)
	if !ok {
		return
	}

	name := req.Name
	if name == "" {
		name = "Merged calendar"
	}

	result := engine.Merge(sources, name, req.RemoveDuplicates)
	if len(result.Calendar.Events) > h.config.Limits.MaxEventsPerCalendar {
		response.WriteError(w, http.StatusBadRequest, response.ErrCodeLimitExceeded,
			"merged calendar exceeds the event limit")
		return
	}

	rec, err := h.calendarRepo.Create(r.Context(), result.Calendar)
	if err != nil {
		util.Error("Failed to store merged calendar", "error", err)
		response.WriteInternalError(w, "failed to store merged calendar")
		return
	}

	response.JSON(w, http.StatusCreated, map[string]interface{}{
		"calendar":           calendarRecordJSON(rec),
		"merged_events":      result.MergedEvents,
		"removed_duplicates": result.RemovedDuplicates,
	})
}

// PreviewDuplicatesRequest is the POST /api/duplicates/preview body.
type PreviewDuplicatesRequest struct {
	CalendarIDs []string `json:"calendar_ids"`
}

// PreviewDuplicates reports which events a deduplicating merge would drop,
// without writing anything.
func (h *Handler) PreviewDuplicates(w http.ResponseWriter, r *http.Request) {
	var req PreviewDuplicatesRequest
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

	combined := collectEvents(sources)
	part := engine.Resolve(combined, engine.Policy{RemoveDuplicates: true})

	removed := []EventDTO{}
	for _, ev := range part.Removed {
		removed = append(removed, eventToDTO(ev))
	}
	response.JSON(w, http.StatusOK, map[string]interface{}{
		"total_events": len(combined),
		"kept":         len(part.Kept),
		"removed":      removed,
	})
}

// GetConflicts reports overlapping event pairs within one calendar.
func (h *Handler) GetConflicts(w http.ResponseWriter, r *http.Request) {
	cal, ok := h.loadCalendar(w, r, r.PathValue("calendarId"))
	if !ok {
		return
	}

	pairs := engine.FindConflicts(cal.Events)

	conflicts := []map[string]interface{}{}
	for _, p := range pairs {
		conflicts = append(conflicts, map[string]interface{}{
			"a": eventToDTO(p.A),
			"b": eventToDTO(p.B),
		})
	}
	response.JSON(w, http.StatusOK, map[string]interface{}{
		"calendar_id": cal.ID,
		"conflicts":   conflicts,
	})
}

// loadCalendars fetches several calendars, writing the error response itself
// when any is missing.
func (h *Handler) loadCalendars(w http.ResponseWriter, r *http.Request, ids []string) ([]*ical.Calendar, bool) {
	sources := make([]*ical.Calendar, 0, len(ids))
	for _, id := range ids {
		cal, ok := h.loadCalendar(w, r, id)
		if !ok {
			return nil, false
		}
		sources = append(sources, cal)
	}
	return sources, true
}
