// Package ical implements the iCalendar (RFC 5545) data model used by
// Calendraft: instants, durations, events, and the wire codec that converts
// between ICS text and structured events.
package ical

import (
	"fmt"
	"time"
)

// InstantKind tags an Instant with its interpretation.
type InstantKind int

const (
	// KindUTC is an absolute point in time, serialized with a trailing Z.
	KindUTC InstantKind = iota
	// KindFloating is a wall-clock time with no zone, serialized without suffix.
	KindFloating
	// KindDateOnly is a whole-day date, serialized as an 8-digit date.
	KindDateOnly
)

func (k InstantKind) String() string {
	switch k {
	case KindUTC:
		return "utc"
	case KindFloating:
		return "floating"
	case KindDateOnly:
		return "date"
	default:
		return "unknown"
	}
}

// Instant is a point in time with second precision and a kind tag. The
// calendar fields are kept exactly as parsed so that FormatInstant is the
// exact inverse of ParseInstant.
type Instant struct {
	Kind InstantKind

	Year   int
	Month  int
	Day    int
	Hour   int
	Minute int
	Second int
}

// ParseError is returned for malformed date, time, or duration text. Field is
// the ICS property the text came from when known, otherwise empty.
type ParseError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("parse %q: %s", e.Value, e.Reason)
	}
	return fmt.Sprintf("parse %s %q: %s", e.Field, e.Value, e.Reason)
}

// ParseInstant parses one of the three accepted grammars:
//
//	YYYYMMDDTHHMMSSZ -> KindUTC
//	YYYYMMDDTHHMMSS  -> KindFloating
//	YYYYMMDD         -> KindDateOnly
//
// Any other length, a non-digit where a digit is expected, or an
// out-of-range component is a ParseError. Out-of-range values are never
// clamped.
func ParseInstant(s string) (Instant, error) {
	var in Instant

	switch len(s) {
	case 16:
		if s[15] != 'Z' {
			return in, &ParseError{Value: s, Reason: "expected trailing Z"}
		}
		in.Kind = KindUTC
	case 15:
		in.Kind = KindFloating
	case 8:
		in.Kind = KindDateOnly
	default:
		return in, &ParseError{Value: s, Reason: "invalid length"}
	}

	var err error
	if in.Year, err = digits(s, 0, 4); err != nil {
		return in, &ParseError{Value: s, Reason: "invalid year"}
	}
	if in.Month, err = digits(s, 4, 2); err != nil || in.Month < 1 || in.Month > 12 {
		return in, &ParseError{Value: s, Reason: "month out of range"}
	}
	if in.Day, err = digits(s, 6, 2); err != nil || in.Day < 1 || in.Day > 31 {
		return in, &ParseError{Value: s, Reason: "day out of range"}
	}
	if in.Kind == KindDateOnly {
		return in, nil
	}

	if s[8] != 'T' {
		return in, &ParseError{Value: s, Reason: "expected T separator"}
	}
	if in.Hour, err = digits(s, 9, 2); err != nil || in.Hour > 23 {
		return in, &ParseError{Value: s, Reason: "hour out of range"}
	}
	if in.Minute, err = digits(s, 11, 2); err != nil || in.Minute > 59 {
		return in, &ParseError{Value: s, Reason: "minute out of range"}
	}
	if in.Second, err = digits(s, 13, 2); err != nil || in.Second > 59 {
		return in, &ParseError{Value: s, Reason: "second out of range"}
	}
	return in, nil
}

// FormatInstant produces the canonical grammar for the instant's kind. It is
// the exact inverse of ParseInstant for all valid inputs.
func FormatInstant(in Instant) string {
	switch in.Kind {
	case KindDateOnly:
		return fmt.Sprintf("%04d%02d%02d", in.Year, in.Month, in.Day)
	case KindUTC:
		return fmt.Sprintf("%04d%02d%02dT%02d%02d%02dZ",
			in.Year, in.Month, in.Day, in.Hour, in.Minute, in.Second)
	default:
		return fmt.Sprintf("%04d%02d%02dT%02d%02d%02d",
			in.Year, in.Month, in.Day, in.Hour, in.Minute, in.Second)
	}
}

// InstantFromTime builds a UTC instant from a time.Time, truncating to
// second precision. Used for DTSTAMP generation.
func InstantFromTime(t time.Time) Instant {
	t = t.UTC()
	return Instant{
		Kind:   KindUTC,
		Year:   t.Year(),
		Month:  int(t.Month()),
		Day:    t.Day(),
		Hour:   t.Hour(),
		Minute: t.Minute(),
		Second: t.Second(),
	}
}

// Time converts the instant's wall-clock fields to a time.Time in UTC. For
// floating and date-only instants the zone carries no meaning; the value is
// only used for ordering and arithmetic between comparable instants.
func (in Instant) Time() time.Time {
	return time.Date(in.Year, time.Month(in.Month), in.Day,
		in.Hour, in.Minute, in.Second, 0, time.UTC)
}

// Unix returns the wall-clock fields as seconds since the Unix epoch.
func (in Instant) Unix() int64 {
	return in.Time().Unix()
}

// Before reports whether in is strictly earlier than other. Only meaningful
// when the two instants are comparable (same kind, or one side promoted).
func (in Instant) Before(other Instant) bool {
	return in.Unix() < other.Unix()
}

// Equal reports whether the two instants have the same kind and the same
// wall-clock fields.
func (in Instant) Equal(other Instant) bool {
	return in == other
}

// Comparable reports whether a and b may be compared directly. Instants of
// the same kind always compare; a date-only instant compares against any
// kind because it is promoted to midnight of the other side's kind first.
func Comparable(a, b Instant) bool {
	return a.Kind == b.Kind || a.Kind == KindDateOnly || b.Kind == KindDateOnly
}

// DayStart promotes a date-only instant to midnight in the given kind. For
// non-date instants it returns the instant unchanged.
func (in Instant) DayStart(kind InstantKind) Instant {
	if in.Kind != KindDateOnly {
		return in
	}
	return Instant{Kind: kind, Year: in.Year, Month: in.Month, Day: in.Day}
}

// DayEnd promotes a date-only instant to midnight of the following day in
// the given kind. For non-date instants it returns the instant unchanged.
func (in Instant) DayEnd(kind InstantKind) Instant {
	if in.Kind != KindDateOnly {
		return in
	}
	next := in.Time().AddDate(0, 0, 1)
	return Instant{
		Kind:  kind,
		Year:  next.Year(),
		Month: int(next.Month()),
		Day:   next.Day(),
	}
}

// digits parses n ASCII digits of s starting at offset.
func digits(s string, offset, n int) (int, error) {
	v := 0
	for i := offset; i < offset+n; i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("non-digit %q", c)
		}
		v = v*10 + int(c-'0')
	}
	return v, nil
}
