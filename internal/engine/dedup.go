// Package engine provides the core calendar operations: duplicate
// resolution, conflict detection, merging, and share-bundle serialization.
// Every function is pure and operates on fully materialized collections, so
// concurrent callers never interfere as long as they pass their own copies.
package engine

import (
	"github.com/Leigh-Chr/calendraft-sub003/internal/ical"
)

// Policy controls how a duplicate partition is acted on. The partition
// itself is always computed; when RemoveDuplicates is false the caller uses
// it for preview and reporting only.
type Policy struct {
	RemoveDuplicates bool
}

// Partition splits events into first occurrences and later duplicates.
type Partition struct {
	Kept    []*ical.Event
	Removed []*ical.Event
}

// Resolve partitions events by fingerprint equality in a single O(n) pass
// over the input. The first event encountered with a given fingerprint is
// kept; later ones are removed. Merging is therefore order-sensitive: when
// merging calendar A then B, A's copy of a duplicate wins.
func Resolve(events []*ical.Event, policy Policy) Partition {
	seen := make(map[ical.Fingerprint]struct{}, len(events))
	p := Partition{Kept: make([]*ical.Event, 0, len(events))}

	for _, ev := range events {
		fp := ical.EventFingerprint(ev)
		if _, dup := seen[fp]; dup {
			p.Removed = append(p.Removed, ev)
			continue
		}
		seen[fp] = struct{}{}
		p.Kept = append(p.Kept, ev)
	}
	return p
}
