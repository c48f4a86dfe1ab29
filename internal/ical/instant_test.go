package ical

import (
	"errors"
	"testing"
)

func TestParseInstantRoundTrip(t *testing.T) {
	inputs := []string{
		"20240115T140000Z",
		"20240115T140000",
		"20240115",
		"19700101T000000Z",
		"20991231T235959",
		"00010101",
	}

	for _, in := range inputs {
		parsed, err := ParseInstant(in)
		if err != nil {
			t.Fatalf("ParseInstant(%q) failed: %v", in, err)
		}
		if got := FormatInstant(parsed); got != in {
			t.Errorf("round trip mismatch: %q -> %q", in, got)
		}
	}
}

func TestParseInstantKinds(t *testing.T) {
	utc, err := ParseInstant("20240115T140000Z")
	if err != nil {
		t.Fatalf("utc parse failed: %v", err)
	}
	if utc.Kind != KindUTC {
		t.Errorf("expected KindUTC, got %v", utc.Kind)
	}

	floating, err := ParseInstant("20240115T140000")
	if err != nil {
		t.Fatalf("floating parse failed: %v", err)
	}
	if floating.Kind != KindFloating {
		t.Errorf("expected KindFloating, got %v", floating.Kind)
	}

	date, err := ParseInstant("20240115")
	if err != nil {
		t.Fatalf("date parse failed: %v", err)
	}
	if date.Kind != KindDateOnly {
		t.Errorf("expected KindDateOnly, got %v", date.Kind)
	}
	if got := FormatInstant(date); got != "20240115" {
		t.Errorf("date format mismatch: got %q", got)
	}
}

func TestParseInstantRejectsMalformed(t *testing.T) {
	bad := []string{
		"",
		"2024",
		"20240115T1400",        // truncated time
		"20240115T140000z",     // lowercase suffix
		"20240115T140000+0100", // offsets not supported
		"20240115T140000.500Z", // fractional seconds
		"2024011ST140000Z",     // non-digit
		"20241315T140000Z",     // month 13
		"20240132T140000Z",     // day 32
		"20240100T140000Z",     // day 0
		"20240115T240000Z",     // hour 24
		"20240115T146000Z",     // minute 60
		"20240115T140060Z",     // second 60
		"20240115X140000Z",     // wrong separator
	}

	for _, in := range bad {
		_, err := ParseInstant(in)
		if err == nil {
			t.Errorf("ParseInstant(%q) should have failed", in)
			continue
		}
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Errorf("ParseInstant(%q): expected ParseError, got %T", in, err)
		} else if pe.Value != in {
			t.Errorf("ParseError.Value = %q, want %q", pe.Value, in)
		}
	}
}

func TestInstantComparison(t *testing.T) {
	a, _ := ParseInstant("20240115T090000Z")
	b, _ := ParseInstant("20240115T100000Z")

	if !a.Before(b) {
		t.Error("09:00 should be before 10:00")
	}
	if b.Before(a) {
		t.Error("10:00 should not be before 09:00")
	}
	if !a.Equal(a) {
		t.Error("instant should equal itself")
	}

	// Same wall clock, different kind: not equal.
	floating, _ := ParseInstant("20240115T090000")
	if a.Equal(floating) {
		t.Error("utc and floating instants must not be equal")
	}
	if Comparable(a, floating) {
		t.Error("utc and floating should not be directly comparable")
	}
}

func TestDateOnlyPromotion(t *testing.T) {
	day, _ := ParseInstant("20240115")

	start := day.DayStart(KindFloating)
	if start.Kind != KindFloating || start.Hour != 0 || start.Day != 15 {
		t.Errorf("unexpected day start: %+v", start)
	}

	end := day.DayEnd(KindFloating)
	if end.Day != 16 || end.Hour != 0 {
		t.Errorf("unexpected day end: %+v", end)
	}

	// Month rollover.
	eom, _ := ParseInstant("20240131")
	end = eom.DayEnd(KindUTC)
	if end.Month != 2 || end.Day != 1 {
		t.Errorf("expected Feb 1, got %+v", end)
	}

	timed, _ := ParseInstant("20240115T090000Z")
	if got := timed.DayStart(KindFloating); !got.Equal(timed) {
		t.Errorf("timed instants must not be promoted, got %+v", got)
	}
}
