package ical

import (
	"errors"
	"testing"
)

func TestNewEventValidation(t *testing.T) {
	start, _ := ParseInstant("20240101T090000Z")
	end, _ := ParseInstant("20240101T100000Z")

	ev, err := NewEvent("  Planning  ", start, end)
	if err != nil {
		t.Fatalf("NewEvent failed: %v", err)
	}
	if ev.Title != "Planning" {
		t.Errorf("title not trimmed: %q", ev.Title)
	}
	if ev.UID == "" {
		t.Error("UID should be generated")
	}

	// Zero-length events are permitted (reminders).
	if _, err := NewEvent("Reminder", start, start); err != nil {
		t.Errorf("zero-length event rejected: %v", err)
	}

	var ve *ValidationError
	if _, err := NewEvent("   ", start, end); !errors.As(err, &ve) {
		t.Errorf("empty title: expected ValidationError, got %v", err)
	}
	if _, err := NewEvent("Backwards", end, start); !errors.As(err, &ve) {
		t.Errorf("end before start: expected ValidationError, got %v", err)
	}
}

func TestValidateEnumFields(t *testing.T) {
	ev := mustEvent(t, "Planning", "20240101T090000Z", "20240101T100000Z")

	ev.Status = StatusTentative
	ev.Class = ClassPrivate
	ev.Transparency = TranspTransparent
	if err := ev.Validate(); err != nil {
		t.Fatalf("known enum values rejected: %v", err)
	}

	ev.Status, ev.Class, ev.Transparency = "", "", ""
	if err := ev.Validate(); err != nil {
		t.Fatalf("empty enum values rejected: %v", err)
	}

	var ve *ValidationError
	cases := []struct {
		field string
		set   func()
	}{
		{"status", func() { ev.Status = "BANANA" }},
		{"class", func() { ev.Class = "SECRET" }},
		{"transparency", func() { ev.Transparency = "SOLID" }},
	}
	for _, tc := range cases {
		ev.Status, ev.Class, ev.Transparency = "", "", ""
		tc.set()
		err := ev.Validate()
		if !errors.As(err, &ve) || ve.Field != tc.field {
			t.Errorf("%s: expected ValidationError on %s, got %v", tc.field, tc.field, err)
		}
	}
}

func TestAddRecurrenceDate(t *testing.T) {
	ev := mustEvent(t, "Weekly", "20240101T090000Z", "20240101T100000Z")
	d1, _ := ParseInstant("20240108T090000Z")
	d2, _ := ParseInstant("20240115T090000Z")

	if !ev.AddRecurrenceDate(d1, TagRDate) {
		t.Error("first insert should succeed")
	}
	if !ev.AddRecurrenceDate(d2, TagExDate) {
		t.Error("distinct tag insert should succeed")
	}
	if ev.AddRecurrenceDate(d1, TagRDate) {
		t.Error("duplicate (date, tag) pair should be rejected")
	}
	// Same date under a different tag is a distinct pair.
	if !ev.AddRecurrenceDate(d1, TagExDate) {
		t.Error("same date with different tag should be accepted")
	}

	want := []RecurrenceTag{TagRDate, TagExDate, TagExDate}
	if len(ev.RecurrenceDates) != len(want) {
		t.Fatalf("expected %d recurrence dates, got %d", len(want), len(ev.RecurrenceDates))
	}
	for i, tag := range want {
		if ev.RecurrenceDates[i].Tag != tag {
			t.Errorf("insertion order not preserved at %d: got %v", i, ev.RecurrenceDates[i].Tag)
		}
	}
}

func TestEventClone(t *testing.T) {
	ev := mustEvent(t, "Original", "20240101T090000Z", "20240101T100000Z")
	ev.Attendees = []string{"mailto:a@example.com"}
	rid, _ := ParseInstant("20240108T090000Z")
	ev.RecurrenceID = &rid

	clone := ev.Clone()
	clone.Title = "Changed"
	clone.Attendees[0] = "mailto:b@example.com"
	*clone.RecurrenceID = Instant{}

	if ev.Title != "Original" {
		t.Error("clone shares title")
	}
	if ev.Attendees[0] != "mailto:a@example.com" {
		t.Error("clone shares attendee slice")
	}
	if ev.RecurrenceID.Equal(Instant{}) {
		t.Error("clone shares recurrence id pointer")
	}
}
