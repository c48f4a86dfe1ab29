package engine

import (
	"strings"
	"time"

	"github.com/Leigh-Chr/calendraft-sub003/internal/ical"
)

// SerializeBundle renders the selected calendars' events into a single ICS
// share-bundle document. Duplicate handling is identical to Merge: same
// resolver, same first-occurrence-wins tie-break. now supplies the DTSTAMP
// for every emitted event.
func SerializeBundle(calendars []*ical.Calendar, removeDuplicates bool, now time.Time) (string, error) {
	var combined []*ical.Event
	for _, cal := range calendars {
		combined = append(combined, cal.Events...)
	}

	events := combined
	if removeDuplicates {
		events = Resolve(combined, Policy{RemoveDuplicates: true}).Kept
	}

	var sb strings.Builder
	if err := ical.EncodeCalendar(&sb, events, now); err != nil {
		return "", err
	}
	return sb.String(), nil
}
