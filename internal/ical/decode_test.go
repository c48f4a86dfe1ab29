package ical

import (
	"strings"
	"testing"
)

const sampleICS = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//Example//Example//EN\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:evt-1@example.com\r\n" +
	"DTSTAMP:20240101T000000Z\r\n" +
	"SUMMARY:Team Standup\r\n" +
	"DTSTART:20240115T090000Z\r\n" +
	"DTEND:20240115T093000Z\r\n" +
	"LOCATION:Room 4\r\n" +
	"DESCRIPTION:Daily sync\\, 30 minutes\r\n" +
	"STATUS:CONFIRMED\r\n" +
	"CLASS:PUBLIC\r\n" +
	"TRANSP:OPAQUE\r\n" +
	"PRIORITY:5\r\n" +
	"SEQUENCE:3\r\n" +
	"RRULE:FREQ=WEEKLY;BYDAY=MO,TU,WE,TH,FR\r\n" +
	"RDATE:20240120T090000Z\r\n" +
	"EXDATE:20240116T090000Z,20240117T090000Z\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:evt-2@example.com\r\n" +
	"DTSTAMP:20240101T000000Z\r\n" +
	"SUMMARY:Company Holiday\r\n" +
	"DTSTART;VALUE=DATE:20240201\r\n" +
	"DTEND;VALUE=DATE:20240202\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func TestDecodeCalendar(t *testing.T) {
	result, err := DecodeCalendar(strings.NewReader(sampleICS))
	if err != nil {
		t.Fatalf("DecodeCalendar failed: %v", err)
	}
	if len(result.Events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(result.Events))
	}
	if result.Skipped != 0 || result.Warnings != 0 {
		t.Errorf("unexpected skip/warning counts: %d/%d", result.Skipped, result.Warnings)
	}

	ev := result.Events[0]
	if ev.UID != "evt-1@example.com" {
		t.Errorf("UID not preserved verbatim: %q", ev.UID)
	}
	if ev.Title != "Team Standup" {
		t.Errorf("unexpected title %q", ev.Title)
	}
	if got := FormatInstant(ev.Start); got != "20240115T090000Z" {
		t.Errorf("unexpected start %q", got)
	}
	if ev.Start.Kind != KindUTC {
		t.Errorf("expected UTC start, got %v", ev.Start.Kind)
	}
	if ev.Description != "Daily sync, 30 minutes" {
		t.Errorf("text not unescaped: %q", ev.Description)
	}
	if ev.Status != StatusConfirmed || ev.Class != ClassPublic || ev.Transparency != TranspOpaque {
		t.Errorf("enum fields wrong: %v %v %v", ev.Status, ev.Class, ev.Transparency)
	}
	if ev.Priority != 5 || ev.Sequence != 3 {
		t.Errorf("numeric fields wrong: %d %d", ev.Priority, ev.Sequence)
	}
	if ev.RRule != "FREQ=WEEKLY;BYDAY=MO,TU,WE,TH,FR" {
		t.Errorf("rrule not passed through: %q", ev.RRule)
	}
	wantDates := []struct {
		text string
		tag  RecurrenceTag
	}{
		{"20240120T090000Z", TagRDate},
		{"20240116T090000Z", TagExDate},
		{"20240117T090000Z", TagExDate},
	}
	if len(ev.RecurrenceDates) != len(wantDates) {
		t.Fatalf("expected %d recurrence dates, got %d", len(wantDates), len(ev.RecurrenceDates))
	}
	for i, want := range wantDates {
		rd := ev.RecurrenceDates[i]
		if FormatInstant(rd.Date) != want.text || rd.Tag != want.tag {
			t.Errorf("recurrence date %d: got %s/%v, want %s/%v",
				i, FormatInstant(rd.Date), rd.Tag, want.text, want.tag)
		}
	}

	allDay := result.Events[1]
	if allDay.Start.Kind != KindDateOnly {
		t.Errorf("expected date-only start, got %v", allDay.Start.Kind)
	}
	if got := FormatInstant(allDay.Start); got != "20240201" {
		t.Errorf("unexpected all-day start %q", got)
	}
}

func TestDecodeSkipsInvalidEvents(t *testing.T) {
	ics := "BEGIN:VCALENDAR\r\n" +
		"VERSION:2.0\r\n" +
		"PRODID:-//Example//Example//EN\r\n" +
		"BEGIN:VEVENT\r\n" +
		"UID:bad-date@example.com\r\n" +
		"SUMMARY:Broken\r\n" +
		"DTSTART:20241315T090000Z\r\n" +
		"END:VEVENT\r\n" +
		"BEGIN:VEVENT\r\n" +
		"UID:no-title@example.com\r\n" +
		"DTSTART:20240115T090000Z\r\n" +
		"END:VEVENT\r\n" +
		"BEGIN:VEVENT\r\n" +
		"UID:good@example.com\r\n" +
		"SUMMARY:Valid\r\n" +
		"DTSTART:20240115T090000Z\r\n" +
		"DTEND:20240115T100000Z\r\n" +
		"END:VEVENT\r\n" +
		"END:VCALENDAR\r\n"

	result, err := DecodeCalendar(strings.NewReader(ics))
	if err != nil {
		t.Fatalf("DecodeCalendar failed: %v", err)
	}
	if len(result.Events) != 1 {
		t.Fatalf("expected 1 surviving event, got %d", len(result.Events))
	}
	if result.Skipped != 2 {
		t.Errorf("expected 2 skipped events, got %d", result.Skipped)
	}
	if result.Events[0].UID != "good@example.com" {
		t.Errorf("wrong event survived: %q", result.Events[0].UID)
	}
}

func TestDecodeCountsFieldWarnings(t *testing.T) {
	ics := "BEGIN:VCALENDAR\r\n" +
		"VERSION:2.0\r\n" +
		"PRODID:-//Example//Example//EN\r\n" +
		"BEGIN:VEVENT\r\n" +
		"UID:warn@example.com\r\n" +
		"SUMMARY:Mostly Fine\r\n" +
		"DTSTART:20240115T090000Z\r\n" +
		"DTEND:20240115T100000Z\r\n" +
		"PRIORITY:99\r\n" +
		"STATUS:MAYBE\r\n" +
		"EXDATE:not-a-date\r\n" +
		"END:VEVENT\r\n" +
		"END:VCALENDAR\r\n"

	result, err := DecodeCalendar(strings.NewReader(ics))
	if err != nil {
		t.Fatalf("DecodeCalendar failed: %v", err)
	}
	if len(result.Events) != 1 {
		t.Fatalf("event should survive field-level problems, got %d events", len(result.Events))
	}
	if result.Warnings != 3 {
		t.Errorf("expected 3 field warnings, got %d", result.Warnings)
	}
	ev := result.Events[0]
	if ev.Priority != 0 || ev.Status != "" || len(ev.RecurrenceDates) != 0 {
		t.Error("invalid optional fields should be dropped, not kept")
	}
}

func TestDecodeGeneratesMissingUID(t *testing.T) {
	ics := "BEGIN:VCALENDAR\r\n" +
		"VERSION:2.0\r\n" +
		"PRODID:-//Example//Example//EN\r\n" +
		"BEGIN:VEVENT\r\n" +
		"SUMMARY:Anonymous\r\n" +
		"DTSTART:20240115T090000Z\r\n" +
		"END:VEVENT\r\n" +
		"END:VCALENDAR\r\n"

	result, err := DecodeCalendar(strings.NewReader(ics))
	if err != nil {
		t.Fatalf("DecodeCalendar failed: %v", err)
	}
	if len(result.Events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(result.Events))
	}
	if result.Events[0].UID == "" {
		t.Error("missing UID should be generated")
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := DecodeCalendar(strings.NewReader("not an ics document")); err == nil {
		t.Error("expected an error for a malformed container")
	}
}
