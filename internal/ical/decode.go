package ical

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	goical "github.com/emersion/go-ical"
	"github.com/google/uuid"

	"github.com/Leigh-Chr/calendraft-sub003/internal/util"
)

// DecodeResult holds the events extracted from an ICS document together
// with the counts an import preview reports. The counts are plain values,
// not shared state, so decoding is safe from concurrent callers.
type DecodeResult struct {
	Events []*Event
	// Skipped counts VEVENT blocks dropped entirely (missing or malformed
	// required fields).
	Skipped int
	// Warnings counts optional fields dropped from otherwise valid events.
	Warnings int
}

// DecodeCalendar parses an ICS document into structured events. One
// malformed VEVENT never aborts the rest of the document: the event is
// skipped, counted, and logged. Only a malformed VCALENDAR container is a
// hard error.
func DecodeCalendar(r io.Reader) (*DecodeResult, error) {
	dec := goical.NewDecoder(r)
	result := &DecodeResult{}
	parsed := 0

	for {
		cal, err := dec.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			if parsed > 0 {
				// Trailing garbage after a valid calendar; keep what we have.
				util.Warn("ics decode stopped early", "error", err)
				break
			}
			return nil, fmt.Errorf("decode ics: %w", err)
		}
		parsed++

		for _, child := range cal.Children {
			if child.Name != goical.CompEvent {
				continue
			}
			ev, err := decodeEvent(child, result)
			if err != nil {
				result.Skipped++
				util.Warn("skipping invalid vevent", "error", err)
				continue
			}
			result.Events = append(result.Events, ev)
		}
	}

	if parsed == 0 {
		return nil, &ParseError{Field: "VCALENDAR", Reason: "no calendar data"}
	}
	return result, nil
}

// decodeEvent extracts one VEVENT. Required fields (SUMMARY, DTSTART) make
// or break the event; optional fields degrade to a warning count.
func decodeEvent(comp *goical.Component, result *DecodeResult) (*Event, error) {
	ev := &Event{}

	ev.Title = strings.TrimSpace(propText(comp, goical.PropSummary))
	if ev.Title == "" {
		return nil, &ValidationError{Field: "SUMMARY", Reason: "missing or empty"}
	}

	startProp := comp.Props.Get(goical.PropDateTimeStart)
	if startProp == nil {
		return nil, &ParseError{Field: goical.PropDateTimeStart, Reason: "missing"}
	}
	start, err := ParseInstant(startProp.Value)
	if err != nil {
		return nil, fieldError(goical.PropDateTimeStart, err)
	}
	ev.Start = start

	// DTEND is optional; reminders are zero-length.
	ev.End = start
	if endProp := comp.Props.Get(goical.PropDateTimeEnd); endProp != nil {
		end, err := ParseInstant(endProp.Value)
		if err != nil {
			return nil, fieldError(goical.PropDateTimeEnd, err)
		}
		ev.End = end
	}

	// UID is preserved verbatim on import, generated when absent.
	if p := comp.Props.Get(goical.PropUID); p != nil && p.Value != "" {
		ev.UID = p.Value
	} else {
		ev.UID = uuid.NewString()
	}

	ev.Description = propText(comp, goical.PropDescription)
	ev.Location = propText(comp, goical.PropLocation)
	ev.Organizer = propText(comp, goical.PropOrganizer)

	if v := propText(comp, goical.PropStatus); v != "" {
		switch s := EventStatus(strings.ToUpper(v)); s {
		case StatusConfirmed, StatusTentative, StatusCancelled:
			ev.Status = s
		default:
			result.Warnings++
		}
	}
	if v := propText(comp, goical.PropClass); v != "" {
		switch c := EventClass(strings.ToUpper(v)); c {
		case ClassPublic, ClassPrivate, ClassConfidential:
			ev.Class = c
		default:
			result.Warnings++
		}
	}
	if v := propText(comp, goical.PropTransparency); v != "" {
		switch t := Transparency(strings.ToUpper(v)); t {
		case TranspOpaque, TranspTransparent:
			ev.Transparency = t
		default:
			result.Warnings++
		}
	}

	if v := propText(comp, goical.PropPriority); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n >= 0 && n <= 9 {
			ev.Priority = n
		} else {
			result.Warnings++
		}
	}
	if v := propText(comp, goical.PropSequence); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n >= 0 {
			ev.Sequence = n
		} else {
			result.Warnings++
		}
	}

	for _, p := range comp.Props.Values(goical.PropAttendee) {
		if p.Value != "" {
			ev.Attendees = append(ev.Attendees, p.Value)
		}
	}
	ev.Categories = decodeList(comp, goical.PropCategories, result)
	ev.Resources = decodeList(comp, goical.PropResources, result)

	// RRULE is opaque: stored and round-tripped, never expanded.
	if p := comp.Props.Get(goical.PropRecurrenceRule); p != nil {
		ev.RRule = p.Value
	}

	decodeRecurrenceDates(comp, goical.PropRecurrenceDates, TagRDate, ev, result)
	decodeRecurrenceDates(comp, goical.PropExceptionDates, TagExDate, ev, result)

	if p := comp.Props.Get(goical.PropRecurrenceID); p != nil {
		if rid, err := ParseInstant(p.Value); err == nil {
			ev.RecurrenceID = &rid
		} else {
			result.Warnings++
		}
	}

	for _, child := range comp.Children {
		if child.Name != goical.CompAlarm {
			continue
		}
		alarm := Alarm{Action: propText(child, goical.PropAction)}
		trigger := child.Props.Get(goical.PropTrigger)
		if trigger == nil {
			result.Warnings++
			continue
		}
		d, err := ParseDuration(trigger.Value)
		if err != nil {
			result.Warnings++
			continue
		}
		alarm.Trigger = d
		ev.Alarms = append(ev.Alarms, alarm)
	}

	if err := ev.Validate(); err != nil {
		return nil, err
	}
	return ev, nil
}

// decodeRecurrenceDates handles RDATE/EXDATE properties, each of which may
// appear multiple times and may hold a comma-separated date list.
func decodeRecurrenceDates(comp *goical.Component, prop string, tag RecurrenceTag, ev *Event, result *DecodeResult) {
	for _, p := range comp.Props.Values(prop) {
		for _, part := range strings.Split(p.Value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			date, err := ParseInstant(part)
			if err != nil {
				result.Warnings++
				continue
			}
			ev.AddRecurrenceDate(date, tag)
		}
	}
}

func decodeList(comp *goical.Component, prop string, result *DecodeResult) []string {
	var out []string
	for _, p := range comp.Props.Values(prop) {
		items, err := p.TextList()
		if err != nil {
			result.Warnings++
			continue
		}
		for _, item := range items {
			if item != "" {
				out = append(out, item)
			}
		}
	}
	return out
}

// propText returns the unescaped text value of a property, or "" when the
// property is absent.
func propText(comp *goical.Component, name string) string {
	p := comp.Props.Get(name)
	if p == nil {
		return ""
	}
	if v, err := p.Text(); err == nil {
		return v
	}
	return p.Value
}

// fieldError attaches the ICS property name to a codec parse error.
func fieldError(field string, err error) error {
	var pe *ParseError
	if errors.As(err, &pe) {
		return &ParseError{Field: field, Value: pe.Value, Reason: pe.Reason}
	}
	return fmt.Errorf("%s: %w", field, err)
}
