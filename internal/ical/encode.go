package ical

import (
	"io"
	"strconv"
	"strings"
	"time"

	goical "github.com/emersion/go-ical"
)

const prodID = "-//Calendraft//Calendraft Core//EN"

// EncodeCalendar renders events into a VCALENDAR document. Every date and
// duration value is produced by the codec formatters, so decoding the output
// yields the same structured events back. Absent optional fields are
// omitted, never emitted as empty strings. now supplies the DTSTAMP, which
// is always UTC.
func EncodeCalendar(w io.Writer, events []*Event, now time.Time) error {
	cal := goical.NewCalendar()
	cal.Props.SetText(goical.PropVersion, "2.0")
	cal.Props.SetText(goical.PropProductID, prodID)

	stamp := FormatInstant(InstantFromTime(now))
	for _, ev := range events {
		cal.Children = append(cal.Children, encodeEvent(ev, stamp))
	}

	return goical.NewEncoder(w).Encode(cal)
}

func encodeEvent(ev *Event, stamp string) *goical.Component {
	comp := goical.NewEvent().Component

	comp.Props.SetText(goical.PropUID, ev.UID)
	setRaw(comp, goical.PropDateTimeStamp, stamp)
	comp.Props.Add(&goical.Prop{
		Name:  goical.PropSequence,
		Value: strconv.Itoa(ev.Sequence),
	})
	comp.Props.SetText(goical.PropSummary, ev.Title)
	setInstant(comp, goical.PropDateTimeStart, ev.Start)
	setInstant(comp, goical.PropDateTimeEnd, ev.End)

	if ev.Description != "" {
		comp.Props.SetText(goical.PropDescription, ev.Description)
	}
	if ev.Location != "" {
		comp.Props.SetText(goical.PropLocation, ev.Location)
	}
	if ev.Status != "" {
		setRaw(comp, goical.PropStatus, string(ev.Status))
	}
	if ev.Class != "" {
		setRaw(comp, goical.PropClass, string(ev.Class))
	}
	if ev.Transparency != "" {
		setRaw(comp, goical.PropTransparency, string(ev.Transparency))
	}
	if ev.Priority != 0 {
		setRaw(comp, goical.PropPriority, strconv.Itoa(ev.Priority))
	}
	if ev.Organizer != "" {
		comp.Props.SetText(goical.PropOrganizer, ev.Organizer)
	}
	for _, att := range ev.Attendees {
		comp.Props.Add(&goical.Prop{Name: goical.PropAttendee, Value: att})
	}
	setTextList(comp, goical.PropCategories, ev.Categories)
	setTextList(comp, goical.PropResources, ev.Resources)

	if ev.RRule != "" {
		setRaw(comp, goical.PropRecurrenceRule, ev.RRule)
	}
	// One property per date to preserve insertion order exactly.
	for _, rd := range ev.RecurrenceDates {
		name := goical.PropRecurrenceDates
		if rd.Tag == TagExDate {
			name = goical.PropExceptionDates
		}
		prop := &goical.Prop{Name: name, Value: FormatInstant(rd.Date)}
		if rd.Date.Kind == KindDateOnly {
			prop.Params = goical.Params{}
			prop.Params.Set(goical.ParamValue, string(goical.ValueDate))
		}
		comp.Props.Add(prop)
	}
	if ev.RecurrenceID != nil {
		setInstant(comp, goical.PropRecurrenceID, *ev.RecurrenceID)
	}

	for _, alarm := range ev.Alarms {
		child := goical.NewComponent(goical.CompAlarm)
		if alarm.Action != "" {
			child.Props.SetText(goical.PropAction, alarm.Action)
		}
		setRaw(child, goical.PropTrigger, FormatDuration(alarm.Trigger))
		comp.Children = append(comp.Children, child)
	}

	return comp
}

// setInstant emits a date/time property with the codec's canonical text,
// tagging whole-day values with VALUE=DATE.
func setInstant(comp *goical.Component, name string, in Instant) {
	prop := &goical.Prop{Name: name, Value: FormatInstant(in)}
	if in.Kind == KindDateOnly {
		prop.Params = goical.Params{}
		prop.Params.Set(goical.ParamValue, string(goical.ValueDate))
	}
	comp.Props.Set(prop)
}

// setRaw emits a property value verbatim, bypassing text escaping. Used for
// enum, numeric, and recurrence values whose grammar owns its own syntax.
func setRaw(comp *goical.Component, name, value string) {
	comp.Props.Set(&goical.Prop{Name: name, Value: value})
}

// setTextList emits a comma-separated text list with per-item escaping, the
// inverse of Prop.TextList.
func setTextList(comp *goical.Component, name string, items []string) {
	if len(items) == 0 {
		return
	}
	escaped := make([]string, len(items))
	for i, item := range items {
		escaped[i] = escapeText(item)
	}
	setRaw(comp, name, strings.Join(escaped, ","))
}

// escapeText applies RFC 5545 TEXT escaping for list items.
func escapeText(s string) string {
	r := strings.NewReplacer("\\", "\\\\", ";", "\\;", ",", "\\,", "\n", "\\n")
	return r.Replace(s)
}
