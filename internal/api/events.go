package api

import (
	"fmt"
	"net/http"

	"github.com/Leigh-Chr/calendraft-sub003/internal/calendars"
	"github.com/Leigh-Chr/calendraft-sub003/internal/response"
	"github.com/Leigh-Chr/calendraft-sub003/internal/util"
)

// CreateEvent appends a single event to a calendar.
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	calendarID := r.PathValue("calendarId")

	var dto EventDTO
	if !h.decodeBody(w, r, &dto) {
		return
	}

	ev, err := eventFromDTO(dto)
	if err != nil {
		response.WriteValidationError(w, err.Error(), nil)
		return
	}

	rec, err := h.calendarRepo.GetRecord(r.Context(), calendarID)
	if err != nil {
		util.Error("Failed to load calendar record", "error", err)
		response.WriteInternalError(w, "failed to load calendar")
		return
	}
	if rec == nil {
		response.WriteNotFound(w, "calendar not found")
		return
	}
	if rec.EventCount+1 > h.config.Limits.MaxEventsPerCalendar {
		response.WriteError(w, http.StatusBadRequest, response.ErrCodeLimitExceeded,
			fmt.Sprintf("calendar exceeds %d events", h.config.Limits.MaxEventsPerCalendar))
		return
	}

	err = h.calendarRepo.AddEvent(r.Context(), calendarID, ev)
	if err == calendars.ErrNotFound {
		response.WriteNotFound(w, "calendar not found")
		return
	}
	if err != nil {
		util.Error("Failed to add event", "calendar_id", calendarID, "error", err)
		response.WriteInternalError(w, "failed to add event")
		return
	}

	response.JSON(w, http.StatusCreated, eventToDTO(ev))
}

// UpdateEvent replaces an event identified by UID, bumping its sequence number.
func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	calendarID := r.PathValue("calendarId")
	uid := r.PathValue("uid")

	var dto EventDTO
	if !h.decodeBody(w, r, &dto) {
		return
	}

	ev, err := eventFromDTO(dto)
	if err != nil {
		response.WriteValidationError(w, err.Error(), nil)
		return
	}

	err = h.calendarRepo.UpdateEvent(r.Context(), calendarID, uid, ev)
	if err == calendars.ErrNotFound {
		response.WriteNotFound(w, "event not found")
		return
	}
	if err != nil {
		util.Error("Failed to update event", "calendar_id", calendarID, "uid", uid, "error", err)
		response.WriteInternalError(w, "failed to update event")
		return
	}

	response.JSON(w, http.StatusOK, eventToDTO(ev))
}

// DeleteEvent removes an event identified by UID.
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	calendarID := r.PathValue("calendarId")
	uid := r.PathValue("uid")

	err := h.calendarRepo.DeleteEvent(r.Context(), calendarID, uid)
	if err == calendars.ErrNotFound {
		response.WriteNotFound(w, "event not found")
		return
	}
	if err != nil {
		util.Error("Failed to delete event", "calendar_id", calendarID, "uid", uid, "error", err)
		response.WriteInternalError(w, "failed to delete event")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
