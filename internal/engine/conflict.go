package engine

import (
	"sort"

	"github.com/Leigh-Chr/calendraft-sub003/internal/ical"
)

// ConflictPair reports two events whose time intervals strictly overlap.
// A appears before B in the original input order.
type ConflictPair struct {
	A *ical.Event
	B *ical.Event
}

// interval is an event lifted into sweep coordinates. All-day events span
// [midnight, next midnight); timed events keep their own bounds.
type interval struct {
	start  int64
	end    int64
	kind   ical.InstantKind
	allDay bool
	index  int
	event  *ical.Event
}

// FindConflicts returns every pair of events whose intervals strictly
// overlap (a.start < b.end && b.start < a.end). Back-to-back events sharing
// an exact boundary instant are not a conflict. Implemented as the classic
// interval sweep over start-sorted events rather than O(n^2) pairwise
// comparison; the produced set is identical to the pairwise definition.
//
// Only events with comparable instant kinds are compared: UTC against UTC,
// floating against floating, and all-day events against either side after
// promotion to a full-day span.
func FindConflicts(events []*ical.Event) []ConflictPair {
	ivs := make([]interval, len(events))
	for i, ev := range events {
		ivs[i] = interval{
			start:  ev.Start.DayStart(ev.Start.Kind).Unix(),
			end:    ev.End.DayEnd(ev.End.Kind).Unix(),
			kind:   ev.Start.Kind,
			allDay: ev.Start.Kind == ical.KindDateOnly,
			index:  i,
			event:  ev,
		}
	}

	// Stable order: by start, ties broken by original index.
	sort.Slice(ivs, func(i, j int) bool {
		if ivs[i].start != ivs[j].start {
			return ivs[i].start < ivs[j].start
		}
		return ivs[i].index < ivs[j].index
	})

	var conflicts []ConflictPair
	var active []interval

	for _, cur := range ivs {
		// Evict intervals that ended at or before the current start.
		live := active[:0]
		for _, a := range active {
			if a.end > cur.start {
				live = append(live, a)
			}
		}
		active = live

		for _, a := range active {
			if !comparable(a, cur) {
				continue
			}
			// a.start <= cur.start holds by sweep order and a.end >
			// cur.start survived eviction; the remaining half of the
			// strict-overlap test guards zero-length events.
			if a.start >= cur.end {
				continue
			}
			first, second := a, cur
			if second.index < first.index {
				first, second = second, first
			}
			conflicts = append(conflicts, ConflictPair{A: first.event, B: second.event})
		}
		active = append(active, cur)
	}
	return conflicts
}

// comparable mirrors ical.Comparable at the interval level: same kind, or
// either side is an all-day span.
func comparable(a, b interval) bool {
	return a.kind == b.kind || a.allDay || b.allDay
}
