package ical

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Event status values.
type EventStatus string

const (
	StatusConfirmed EventStatus = "CONFIRMED"
	StatusTentative EventStatus = "TENTATIVE"
	StatusCancelled EventStatus = "CANCELLED"
)

// Event classification values.
type EventClass string

const (
	ClassPublic       EventClass = "PUBLIC"
	ClassPrivate      EventClass = "PRIVATE"
	ClassConfidential EventClass = "CONFIDENTIAL"
)

// Transparency values for free/busy visibility.
type Transparency string

const (
	TranspOpaque      Transparency = "OPAQUE"
	TranspTransparent Transparency = "TRANSPARENT"
)

// RecurrenceTag distinguishes additional from excluded occurrences.
type RecurrenceTag string

const (
	TagRDate  RecurrenceTag = "RDATE"
	TagExDate RecurrenceTag = "EXDATE"
)

// RecurrenceDate is a date tagged as an additional (RDATE) or excluded
// (EXDATE) occurrence of a recurring event.
type RecurrenceDate struct {
	Date Instant
	Tag  RecurrenceTag
}

// Alarm is a VALARM attached to an event. Trigger is relative to the event
// start; a negative trigger fires before the event.
type Alarm struct {
	Action  string
	Trigger Duration
}

// Event is the unit of scheduling. RRule is stored as an opaque string and
// passed through unmodified; Calendraft never expands recurrence rules.
type Event struct {
	UID          string
	Title        string
	Start        Instant
	End          Instant
	Description  string
	Location     string
	Status       EventStatus
	Class        EventClass
	Transparency Transparency
	Priority     int // 0 means undefined, otherwise 1-9
	Organizer    string
	Attendees    []string
	Categories   []string
	Resources    []string
	Alarms       []Alarm
	RRule        string
	// RecurrenceDates preserves insertion order for stable output diffing;
	// entries are unique by (date, tag).
	RecurrenceDates []RecurrenceDate
	RecurrenceID    *Instant
	Sequence        int
}

// ValidationError rejects a single event, never a whole batch.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewEvent constructs a validated event with a freshly generated UID. Titles
// are trimmed; start and end must be comparable with end >= start.
// Zero-length events are permitted.
func NewEvent(title string, start, end Instant) (*Event, error) {
	ev := &Event{
		UID:   uuid.NewString(),
		Title: strings.TrimSpace(title),
		Start: start,
		End:   end,
	}
	if err := ev.Validate(); err != nil {
		return nil, err
	}
	return ev, nil
}

// Validate checks the required-field invariants.
func (e *Event) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if !Comparable(e.Start, e.End) {
		return &ValidationError{Field: "end", Reason: "start and end kinds are not comparable"}
	}
	start := e.Start.DayStart(e.End.Kind)
	end := e.End.DayStart(e.Start.Kind)
	if end.Before(start) {
		return &ValidationError{Field: "end", Reason: "must not be before start"}
	}
	if e.Priority < 0 || e.Priority > 9 {
		return &ValidationError{Field: "priority", Reason: "must be between 0 and 9"}
	}
	switch e.Status {
	case "", StatusConfirmed, StatusTentative, StatusCancelled:
	default:
		return &ValidationError{Field: "status", Reason: fmt.Sprintf("unknown value %q", e.Status)}
	}
	switch e.Class {
	case "", ClassPublic, ClassPrivate, ClassConfidential:
	default:
		return &ValidationError{Field: "class", Reason: fmt.Sprintf("unknown value %q", e.Class)}
	}
	switch e.Transparency {
	case "", TranspOpaque, TranspTransparent:
	default:
		return &ValidationError{Field: "transparency", Reason: fmt.Sprintf("unknown value %q", e.Transparency)}
	}
	return nil
}

// AddRecurrenceDate appends a recurrence date unless the (date, tag) pair is
// already present. Returns true if the date was added.
func (e *Event) AddRecurrenceDate(date Instant, tag RecurrenceTag) bool {
	for _, rd := range e.RecurrenceDates {
		if rd.Tag == tag && rd.Date == date {
			return false
		}
	}
	e.RecurrenceDates = append(e.RecurrenceDates, RecurrenceDate{Date: date, Tag: tag})
	return true
}

// Clone returns a deep copy. Merge and bundle operations copy events into
// the target so that concurrent operations over shared sources never alias
// each other's slices.
func (e *Event) Clone() *Event {
	clone := *e
	clone.Attendees = append([]string(nil), e.Attendees...)
	clone.Categories = append([]string(nil), e.Categories...)
	clone.Resources = append([]string(nil), e.Resources...)
	clone.Alarms = append([]Alarm(nil), e.Alarms...)
	clone.RecurrenceDates = append([]RecurrenceDate(nil), e.RecurrenceDates...)
	if e.RecurrenceID != nil {
		rid := *e.RecurrenceID
		clone.RecurrenceID = &rid
	}
	return &clone
}

// Calendar is an ordered collection of events plus metadata. A calendar owns
// its events exclusively; merge and bundle read from sources and write into
// a new target.
type Calendar struct {
	ID        string
	Name      string
	Color     string
	SourceURL string
	Events    []*Event
}

// NewCalendar creates an empty calendar with a fresh identity.
func NewCalendar(name string) *Calendar {
	return &Calendar{ID: uuid.NewString(), Name: name}
}
