package api

import (
	"fmt"

	"github.com/Leigh-Chr/calendraft-sub003/internal/ical"
)

// EventDTO is the JSON shape of an event. Instants and durations travel in
// their wire text form so clients see exactly what an ICS export would carry.
type EventDTO struct {
	UID             string              `json:"uid,omitempty"`
	Title           string              `json:"title"`
	Start           string              `json:"start"`
	End             string              `json:"end"`
	Description     string              `json:"description,omitempty"`
	Location        string              `json:"location,omitempty"`
	Status          string              `json:"status,omitempty"`
	Class           string              `json:"class,omitempty"`
	Transparency    string              `json:"transparency,omitempty"`
	Priority        int                 `json:"priority,omitempty"`
	Organizer       string              `json:"organizer,omitempty"`
	Attendees       []string            `json:"attendees,omitempty"`
	Categories      []string            `json:"categories,omitempty"`
	Resources       []string            `json:"resources,omitempty"`
	Alarms          []AlarmDTO          `json:"alarms,omitempty"`
	RRule           string              `json:"rrule,omitempty"`
	RecurrenceDates []RecurrenceDateDTO `json:"recurrence_dates,omitempty"`
	RecurrenceID    string              `json:"recurrence_id,omitempty"`
	Sequence        int                 `json:"sequence,omitempty"`
}

// AlarmDTO is the JSON shape of a VALARM.
type AlarmDTO struct {
	Action  string `json:"action"`
	Trigger string `json:"trigger"`
}

// RecurrenceDateDTO is the JSON shape of an RDATE or EXDATE entry.
type RecurrenceDateDTO struct {
	Date string `json:"date"`
	Tag  string `json:"tag"`
}

// CalendarDTO is the JSON shape of a calendar with events.
type CalendarDTO struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Color     string     `json:"color,omitempty"`
	SourceURL string     `json:"source_url,omitempty"`
	Events    []EventDTO `json:"events"`
}

// eventToDTO converts a domain event to its JSON shape.
func eventToDTO(ev *ical.Event) EventDTO {
	dto := EventDTO{
		UID:          ev.UID,
		Title:        ev.Title,
		Start:        ical.FormatInstant(ev.Start),
		End:          ical.FormatInstant(ev.End),
		Description:  ev.Description,
		Location:     ev.Location,
		Status:       string(ev.Status),
		Class:        string(ev.Class),
		Transparency: string(ev.Transparency),
		Priority:     ev.Priority,
		Organizer:    ev.Organizer,
		Attendees:    ev.Attendees,
		Categories:   ev.Categories,
		Resources:    ev.Resources,
		RRule:        ev.RRule,
		Sequence:     ev.Sequence,
	}
	for _, a := range ev.Alarms {
		dto.Alarms = append(dto.Alarms, AlarmDTO{
			Action:  a.Action,
			Trigger: ical.FormatDuration(a.Trigger),
		})
	}
	for _, rd := range ev.RecurrenceDates {
		dto.RecurrenceDates = append(dto.RecurrenceDates, RecurrenceDateDTO{
			Date: ical.FormatInstant(rd.Date),
			Tag:  string(rd.Tag),
		})
	}
	if ev.RecurrenceID != nil {
		dto.RecurrenceID = ical.FormatInstant(*ev.RecurrenceID)
	}
	return dto
}

// eventFromDTO converts a JSON event into a validated domain event.
func eventFromDTO(dto EventDTO) (*ical.Event, error) {
	start, err := ical.ParseInstant(dto.Start)
	if err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}
	end, err := ical.ParseInstant(dto.End)
	if err != nil {
		return nil, fmt.Errorf("end: %w", err)
	}

	ev, err := ical.NewEvent(dto.Title, start, end)
	if err != nil {
		return nil, err
	}
	if dto.UID != "" {
		ev.UID = dto.UID
	}

	ev.Description = dto.Description
	ev.Location = dto.Location
	ev.Status = ical.EventStatus(dto.Status)
	ev.Class = ical.EventClass(dto.Class)
	ev.Transparency = ical.Transparency(dto.Transparency)
	ev.Priority = dto.Priority
	ev.Organizer = dto.Organizer
	ev.Attendees = dto.Attendees
	ev.Categories = dto.Categories
	ev.Resources = dto.Resources
	ev.RRule = dto.RRule
	ev.Sequence = dto.Sequence

	for _, a := range dto.Alarms {
		trigger, err := ical.ParseDuration(a.Trigger)
		if err != nil {
			return nil, fmt.Errorf("alarm trigger: %w", err)
		}
		ev.Alarms = append(ev.Alarms, ical.Alarm{Action: a.Action, Trigger: trigger})
	}
	for _, rd := range dto.RecurrenceDates {
		date, err := ical.ParseInstant(rd.Date)
		if err != nil {
			return nil, fmt.Errorf("recurrence date: %w", err)
		}
		tag := ical.RecurrenceTag(rd.Tag)
		if tag != ical.TagRDate && tag != ical.TagExDate {
			return nil, fmt.Errorf("recurrence tag %q is not RDATE or EXDATE", rd.Tag)
		}
		ev.AddRecurrenceDate(date, tag)
	}
	if dto.RecurrenceID != "" {
		rid, err := ical.ParseInstant(dto.RecurrenceID)
		if err != nil {
			return nil, fmt.Errorf("recurrence id: %w", err)
		}
		ev.RecurrenceID = &rid
	}

	if err := ev.Validate(); err != nil {
		return nil, err
	}
	return ev, nil
}

func calendarToDTO(cal *ical.Calendar) CalendarDTO {
	dto := CalendarDTO{
		ID:        cal.ID,
		Name:      cal.Name,
		Color:     cal.Color,
		SourceURL: cal.SourceURL,
		Events:    []EventDTO{},
	}
	for _, ev := range cal.Events {
		dto.Events = append(dto.Events, eventToDTO(ev))
	}
	return dto
}
