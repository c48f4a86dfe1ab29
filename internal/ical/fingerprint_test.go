package ical

import "testing"

func mustEvent(t *testing.T, title, start, end string) *Event {
	t.Helper()
	s, err := ParseInstant(start)
	if err != nil {
		t.Fatalf("bad start %q: %v", start, err)
	}
	e, err := ParseInstant(end)
	if err != nil {
		t.Fatalf("bad end %q: %v", end, err)
	}
	ev, err := NewEvent(title, s, e)
	if err != nil {
		t.Fatalf("NewEvent(%q) failed: %v", title, err)
	}
	return ev
}

func TestFingerprintNormalization(t *testing.T) {
	a := mustEvent(t, "Standup", "20240101T090000Z", "20240101T093000Z")
	b := mustEvent(t, "  STANDUP  ", "20240101T090000Z", "20240101T093000Z")

	if EventFingerprint(a) != EventFingerprint(b) {
		t.Error("title case and surrounding whitespace must not affect the fingerprint")
	}

	// Ignored fields do not participate.
	b.Description = "different"
	b.Location = "elsewhere"
	b.Attendees = []string{"mailto:a@example.com"}
	if EventFingerprint(a) != EventFingerprint(b) {
		t.Error("description/location/attendees must not affect the fingerprint")
	}
}

func TestFingerprintDiscriminates(t *testing.T) {
	base := mustEvent(t, "Standup", "20240101T090000Z", "20240101T093000Z")

	cases := map[string]*Event{
		"different title": mustEvent(t, "Retro", "20240101T090000Z", "20240101T093000Z"),
		"different start": mustEvent(t, "Standup", "20240101T091500Z", "20240101T093000Z"),
		"different end":   mustEvent(t, "Standup", "20240101T090000Z", "20240101T100000Z"),
		"floating start":  mustEvent(t, "Standup", "20240101T090000", "20240101T093000"),
	}

	for name, other := range cases {
		if EventFingerprint(base) == EventFingerprint(other) {
			t.Errorf("%s: fingerprints should differ", name)
		}
	}
}
