package engine

import (
	"testing"

	"github.com/Leigh-Chr/calendraft-sub003/internal/ical"
)

func calendarWith(name string, events ...*ical.Event) *ical.Calendar {
	cal := ical.NewCalendar(name)
	cal.Events = events
	return cal
}

func TestMergeScenario(t *testing.T) {
	a := calendarWith("A",
		testEvent(t, "Standup", "20240101T090000Z", "20240101T093000Z"))
	b := calendarWith("B",
		testEvent(t, "Standup", "20240101T090000Z", "20240101T093000Z"),
		testEvent(t, "Lunch", "20240101T120000Z", "20240101T130000Z"))

	result := Merge([]*ical.Calendar{a, b}, "Combined", true)

	if result.MergedEvents != 2 {
		t.Errorf("merged_events = %d, want 2", result.MergedEvents)
	}
	if result.RemovedDuplicates != 1 {
		t.Errorf("removed_duplicates = %d, want 1", result.RemovedDuplicates)
	}
	titles := make(map[string]bool)
	for _, ev := range result.Calendar.Events {
		titles[ev.Title] = true
	}
	if !titles["Standup"] || !titles["Lunch"] || len(titles) != 2 {
		t.Errorf("unexpected final set: %v", titles)
	}
	if result.Calendar.Name != "Combined" {
		t.Errorf("target name = %q", result.Calendar.Name)
	}
}

func TestMergeConservation(t *testing.T) {
	a := calendarWith("A",
		testEvent(t, "One", "20240101T090000Z", "20240101T100000Z"),
		testEvent(t, "One", "20240101T090000Z", "20240101T100000Z"))
	b := calendarWith("B",
		testEvent(t, "Two", "20240102T090000Z", "20240102T100000Z"))

	result := Merge([]*ical.Calendar{a, b}, "All", false)

	if result.MergedEvents != 3 {
		t.Errorf("without dedup, merged_events must equal total input: got %d", result.MergedEvents)
	}
	if result.RemovedDuplicates != 0 {
		t.Errorf("removed_duplicates must be 0 without dedup, got %d", result.RemovedDuplicates)
	}
}

func TestMergeOrderSensitivity(t *testing.T) {
	aCopy := testEvent(t, "Standup", "20240101T090000Z", "20240101T093000Z")
	aCopy.Location = "Room A"
	bCopy := testEvent(t, "Standup", "20240101T090000Z", "20240101T093000Z")
	bCopy.Location = "Room B"

	a := calendarWith("A", aCopy)
	b := calendarWith("B", bCopy)

	result := Merge([]*ical.Calendar{a, b}, "AB", true)
	if result.Calendar.Events[0].Location != "Room A" {
		t.Error("merging A then B: A's copy should win")
	}

	result = Merge([]*ical.Calendar{b, a}, "BA", true)
	if result.Calendar.Events[0].Location != "Room B" {
		t.Error("merging B then A: B's copy should win")
	}
}

func TestMergeNeverMutatesSources(t *testing.T) {
	orig := testEvent(t, "Keep Me", "20240101T090000Z", "20240101T100000Z")
	dup := testEvent(t, "Keep Me", "20240101T090000Z", "20240101T100000Z")
	a := calendarWith("A", orig)
	b := calendarWith("B", dup)

	result := Merge([]*ical.Calendar{a, b}, "Merged", true)

	if len(a.Events) != 1 || len(b.Events) != 1 {
		t.Fatal("source calendars were modified")
	}
	// Target events are copies, not aliases into the sources.
	result.Calendar.Events[0].Title = "Changed"
	if orig.Title != "Keep Me" {
		t.Error("target aliases a source event")
	}
	if result.Calendar.ID == a.ID || result.Calendar.ID == b.ID {
		t.Error("target must have a fresh identity")
	}
}

func TestMergeDegenerateInputs(t *testing.T) {
	// The engine itself is agnostic about calendar count; the product layer
	// rejects merges of fewer than two before calling in.
	empty := Merge(nil, "Empty", true)
	if empty.MergedEvents != 0 || len(empty.Calendar.Events) != 0 {
		t.Error("merging nothing should produce an empty calendar")
	}

	single := Merge([]*ical.Calendar{
		calendarWith("Solo", testEvent(t, "Only", "20240101T090000Z", "20240101T100000Z")),
	}, "Copy", false)
	if single.MergedEvents != 1 {
		t.Errorf("single-calendar merge should copy its events, got %d", single.MergedEvents)
	}
}
