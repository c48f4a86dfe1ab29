package ical

import (
	"fmt"
	"strings"
)

// DurationUnit is the single unit a Duration is expressed in.
type DurationUnit int

const (
	UnitSeconds DurationUnit = iota
	UnitMinutes
	UnitHours
	UnitDays
)

func (u DurationUnit) String() string {
	switch u {
	case UnitSeconds:
		return "seconds"
	case UnitMinutes:
		return "minutes"
	case UnitHours:
		return "hours"
	case UnitDays:
		return "days"
	default:
		return "unknown"
	}
}

// Duration is a signed magnitude in a single unit. The original unit is
// retained so that formatting reproduces the granularity the caller chose
// (PT60M and PT1H compare equal but round-trip differently). The sign is
// kept as a separate flag; it is only meaningful for alarm triggers.
type Duration struct {
	Value    int64
	Unit     DurationUnit
	Negative bool
}

// Seconds returns the normalized magnitude in seconds. Comparisons between
// durations always use this value, never the raw (value, unit) pair.
func (d Duration) Seconds() int64 {
	switch d.Unit {
	case UnitDays:
		return d.Value * 86400
	case UnitHours:
		return d.Value * 3600
	case UnitMinutes:
		return d.Value * 60
	default:
		return d.Value
	}
}

// ParseDuration parses the ISO 8601 subset used by ICS duration fields:
// an optional leading '-', 'P', an optional day component, then an optional
// 'T' section with hour, minute, and second components. Calendraft only ever
// emits single-unit durations, but multi-component input from third-party
// producers is accepted and collapsed to seconds.
func ParseDuration(s string) (Duration, error) {
	var d Duration
	raw := s

	if strings.HasPrefix(s, "-") {
		d.Negative = true
		s = s[1:]
	}
	if !strings.HasPrefix(s, "P") {
		return d, &ParseError{Value: raw, Reason: "expected P prefix"}
	}
	s = s[1:]

	var days, hours, minutes, seconds int64
	var haveDays, haveHours, haveMinutes, haveSeconds bool

	// Day section.
	if i := strings.IndexByte(s, 'D'); i >= 0 {
		n, err := parseDurationValue(s[:i])
		if err != nil {
			return d, &ParseError{Value: raw, Reason: "invalid day component"}
		}
		days, haveDays = n, true
		s = s[i+1:]
	}

	// Time section.
	if strings.HasPrefix(s, "T") {
		s = s[1:]
		if s == "" {
			return d, &ParseError{Value: raw, Reason: "empty time section"}
		}
		for _, part := range []struct {
			sep  byte
			dst  *int64
			have *bool
		}{
			{'H', &hours, &haveHours},
			{'M', &minutes, &haveMinutes},
			{'S', &seconds, &haveSeconds},
		} {
			i := strings.IndexByte(s, part.sep)
			if i < 0 {
				continue
			}
			n, err := parseDurationValue(s[:i])
			if err != nil {
				return d, &ParseError{Value: raw, Reason: fmt.Sprintf("invalid %c component", part.sep)}
			}
			*part.dst, *part.have = n, true
			s = s[i+1:]
		}
	}

	if s != "" {
		return d, &ParseError{Value: raw, Reason: "trailing characters"}
	}

	populated := 0
	for _, have := range []bool{haveDays, haveHours, haveMinutes, haveSeconds} {
		if have {
			populated++
		}
	}
	switch populated {
	case 0:
		return d, &ParseError{Value: raw, Reason: "no components"}
	case 1:
		switch {
		case haveDays:
			d.Value, d.Unit = days, UnitDays
		case haveHours:
			d.Value, d.Unit = hours, UnitHours
		case haveMinutes:
			d.Value, d.Unit = minutes, UnitMinutes
		default:
			d.Value, d.Unit = seconds, UnitSeconds
		}
	default:
		// Multi-component input collapses to seconds.
		d.Value = days*86400 + hours*3600 + minutes*60 + seconds
		d.Unit = UnitSeconds
	}
	return d, nil
}

// FormatDuration emits the single-unit grammar: P<n>D for days, otherwise
// PT<n>H, PT<n>M, or PT<n>S, with a leading '-' for negative durations.
func FormatDuration(d Duration) string {
	var sign string
	if d.Negative {
		sign = "-"
	}
	switch d.Unit {
	case UnitDays:
		return fmt.Sprintf("%sP%dD", sign, d.Value)
	case UnitHours:
		return fmt.Sprintf("%sPT%dH", sign, d.Value)
	case UnitMinutes:
		return fmt.Sprintf("%sPT%dM", sign, d.Value)
	default:
		return fmt.Sprintf("%sPT%dS", sign, d.Value)
	}
}

func parseDurationValue(s string) (int64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty value")
	}
	var v int64
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("non-digit %q", c)
		}
		v = v*10 + int64(c-'0')
	}
	return v, nil
}
