package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Leigh-Chr/calendraft-sub003/internal/calendars"
	"github.com/Leigh-Chr/calendraft-sub003/internal/database"
	"github.com/Leigh-Chr/calendraft-sub003/internal/ical"
	"github.com/Leigh-Chr/calendraft-sub003/internal/response"
	"github.com/Leigh-Chr/calendraft-sub003/internal/util"
)

// CreateCalendarRequest is the POST /api/calendars body.
type CreateCalendarRequest struct {
	Name      string     `json:"name"`
	Color     string     `json:"color"`
	SourceURL string     `json:"source_url"`
	Events    []EventDTO `json:"events"`
}

// CreateCalendar stores a calendar built from structured JSON events.
func (h *Handler) CreateCalendar(w http.ResponseWriter, r *http.Request) {
	var req CreateCalendarRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	if req.Name == "" {
		response.WriteValidationError(w, "name is required", nil)
		return
	}
	if len(req.Events) > h.config.Limits.MaxEventsPerCalendar {
		response.WriteError(w, http.StatusBadRequest, response.ErrCodeLimitExceeded,
			fmt.Sprintf("calendar exceeds %d events", h.config.Limits.MaxEventsPerCalendar))
		return
	}

	cal := ical.NewCalendar(req.Name)
	cal.Color = req.Color
	cal.SourceURL = req.SourceURL
	for i, dto := range req.Events {
		ev, err := eventFromDTO(dto)
		if err != nil {
			response.WriteValidationError(w, fmt.Sprintf("event %d: %v", i, err), nil)
			return
		}
		cal.Events = append(cal.Events, ev)
	}

	rec, err := h.calendarRepo.Create(r.Context(), cal)
	if err != nil {
		util.Error("Failed to create calendar", "error", err)
		response.WriteInternalError(w, "failed to create calendar")
		return
	}

	response.JSON(w, http.StatusCreated, calendarRecordJSON(rec))
}

// ImportCalendar stores a calendar decoded from an uploaded ICS document.
// The calendar name comes from the "name" query parameter.
func (h *Handler) ImportCalendar(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		response.WriteValidationError(w, "name query parameter is required", nil)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.config.Limits.MaxUploadBytes))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			response.WriteError(w, http.StatusRequestEntityTooLarge,
				response.ErrCodePayloadTooLarge,
				fmt.Sprintf("upload exceeds %d bytes", h.config.Limits.MaxUploadBytes))
			return
		}
		response.WriteValidationError(w, "failed to read request body", nil)
		return
	}

	decoded, err := ical.DecodeCalendar(bytes.NewReader(body))
	if err != nil {
		response.WriteParseError(w, "not a parsable ICS document", map[string]interface{}{
			"reason": err.Error(),
		})
		return
	}

	if len(decoded.Events) > h.config.Limits.MaxEventsPerCalendar {
		response.WriteError(w, http.StatusBadRequest, response.ErrCodeLimitExceeded,
			fmt.Sprintf("calendar exceeds %d events", h.config.Limits.MaxEventsPerCalendar))
		return
	}

	cal := ical.NewCalendar(name)
	cal.Color = r.URL.Query().Get("color")
	cal.Events = decoded.Events

	rec, err := h.calendarRepo.Create(r.Context(), cal)
	if err != nil {
		util.Error("Failed to store imported calendar", "error", err)
		response.WriteInternalError(w, "failed to store calendar")
		return
	}

	response.JSON(w, http.StatusCreated, map[string]interface{}{
		"calendar": calendarRecordJSON(rec),
		"imported": len(decoded.Events),
		"skipped":  decoded.Skipped,
		"warnings": decoded.Warnings,
	})
}

// ListCalendars returns metadata for every stored calendar.
func (h *Handler) ListCalendars(w http.ResponseWriter, r *http.Request) {
	records, err := h.calendarRepo.List(r.Context())
	if err != nil {
		util.Error("Failed to list calendars", "error", err)
		response.WriteInternalError(w, "failed to list calendars")
		return
	}

	items := []map[string]interface{}{}
	for i := range records {
		items = append(items, calendarRecordJSON(&records[i]))
	}
	response.JSON(w, http.StatusOK, map[string]interface{}{"calendars": items})
}

// GetCalendar returns a calendar with its full event set.
func (h *Handler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	cal, ok := h.loadCalendar(w, r, r.PathValue("calendarId"))
	if !ok {
		return
	}
	response.JSON(w, http.StatusOK, calendarToDTO(cal))
}

// UpdateCalendarRequest is the PUT /api/calendars/{id} body.
type UpdateCalendarRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// UpdateCalendar updates calendar metadata.
func (h *Handler) UpdateCalendar(w http.ResponseWriter, r *http.Request) {
	var req UpdateCalendarRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		response.WriteValidationError(w, "name is required", nil)
		return
	}

	err := h.calendarRepo.UpdateMeta(r.Context(), r.PathValue("calendarId"), req.Name, req.Color)
	if err == calendars.ErrNotFound {
		response.WriteNotFound(w, "calendar not found")
		return
	}
	if err != nil {
		util.Error("Failed to update calendar", "error", err)
		response.WriteInternalError(w, "failed to update calendar")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteCalendar removes a calendar and its events.
func (h *Handler) DeleteCalendar(w http.ResponseWriter, r *http.Request) {
	err := h.calendarRepo.Delete(r.Context(), r.PathValue("calendarId"))
	if err == calendars.ErrNotFound {
		response.WriteNotFound(w, "calendar not found")
		return
	}
	if err != nil {
		util.Error("Failed to delete calendar", "error", err)
		response.WriteInternalError(w, "failed to delete calendar")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RefreshCalendar re-fetches a URL-backed calendar immediately.
func (h *Handler) RefreshCalendar(w http.ResponseWriter, r *http.Request) {
	rec, err := h.calendarRepo.GetRecord(r.Context(), r.PathValue("calendarId"))
	if err != nil {
		util.Error("Failed to load calendar record", "error", err)
		response.WriteInternalError(w, "failed to load calendar")
		return
	}
	if rec == nil {
		response.WriteNotFound(w, "calendar not found")
		return
	}
	if rec.SourceURL == "" {
		response.WriteValidationError(w, "calendar has no source URL", nil)
		return
	}

	res, err := h.refresher.RefreshCalendar(r.Context(), rec)
	if err != nil {
		response.WriteError(w, http.StatusBadGateway, response.ErrCodeRefreshFailed, err.Error())
		return
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{
		"calendar_id": res.CalendarID,
		"imported":    res.Imported,
		"skipped":     res.Skipped,
	})
}

// loadCalendar fetches a calendar by ID, writing the error response itself
// when missing or on failure.
func (h *Handler) loadCalendar(w http.ResponseWriter, r *http.Request, id string) (*ical.Calendar, bool) {
	cal, err := h.calendarRepo.Get(r.Context(), id)
	if err != nil {
		util.Error("Failed to load calendar", "calendar_id", id, "error", err)
		response.WriteInternalError(w, "failed to load calendar")
		return nil, false
	}
	if cal == nil {
		response.WriteNotFound(w, "calendar not found")
		return nil, false
	}
	return cal, true
}

func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	body := http.MaxBytesReader(w, r.Body, h.config.Limits.MaxUploadBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			response.WriteError(w, http.StatusRequestEntityTooLarge,
				response.ErrCodePayloadTooLarge,
				fmt.Sprintf("body exceeds %d bytes", h.config.Limits.MaxUploadBytes))
			return false
		}
		response.WriteValidationError(w, "invalid JSON body", nil)
		return false
	}
	return true
}

func calendarRecordJSON(rec *database.CalendarRecord) map[string]interface{} {
	item := map[string]interface{}{
		"id":          rec.ID,
		"name":        rec.Name,
		"event_count": rec.EventCount,
		"created_at":  rec.CreatedAt.Format(time.RFC3339),
		"updated_at":  rec.UpdatedAt.Format(time.RFC3339),
	}
	if rec.Color != "" {
		item["color"] = rec.Color
	}
	if rec.SourceURL != "" {
		item["source_url"] = rec.SourceURL
	}
	if rec.LastRefreshedAt.Valid {
		item["last_refreshed_at"] = rec.LastRefreshedAt.Time.Format(time.RFC3339)
	}
	return item
}
