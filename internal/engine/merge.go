package engine

import (
	"github.com/Leigh-Chr/calendraft-sub003/internal/ical"
)

// MergeResult is the outcome of combining calendars into a new target.
type MergeResult struct {
	Calendar *ical.Calendar
	// MergedEvents is the size of the target's final event set.
	MergedEvents int
	// RemovedDuplicates is the number of duplicates dropped, 0 when
	// deduplication was not requested.
	RemovedDuplicates int
}

// Merge combines the events of all source calendars into a freshly
// identified target calendar named newName. Source calendars are processed
// in the order given and each one's internal event order is preserved, so
// the duplicate tie-break ("first occurrence wins") follows the caller's
// calendar ordering. Sources are never mutated: every event is deep-copied
// into the target.
//
// The engine itself accepts any number of calendars, including zero or one;
// the product layer rejects merges of fewer than two before calling in.
func Merge(calendars []*ical.Calendar, newName string, removeDuplicates bool) MergeResult {
	var combined []*ical.Event
	for _, cal := range calendars {
		for _, ev := range cal.Events {
			combined = append(combined, ev.Clone())
		}
	}

	target := ical.NewCalendar(newName)
	result := MergeResult{Calendar: target}

	partition := Resolve(combined, Policy{RemoveDuplicates: removeDuplicates})
	if removeDuplicates {
		target.Events = partition.Kept
		result.RemovedDuplicates = len(partition.Removed)
	} else {
		// Diagnostic partition only; nothing is dropped.
		target.Events = combined
	}
	result.MergedEvents = len(target.Events)
	return result
}
