package ical

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// Fingerprint is the comparison key used for duplicate detection: a BLAKE2b
// digest of the normalized (title, start, end) tuple. Two events are "the
// same" for dedup purposes iff their fingerprints are equal. Description,
// location, and attendees are deliberately ignored: the goal is to catch
// re-imports of the identical occurrence, not semantic similarity.
type Fingerprint [blake2b.Size256]byte

// String returns the digest as lowercase hex, for preview DTOs and logs.
func (f Fingerprint) String() string {
	return hex.EncodeToString(f[:])
}

// EventFingerprint derives the fingerprint of an event. Pure, O(len(title)).
// Malformed titles are coerced (trim + lowercase) rather than rejected;
// empty-title rejection happens at event construction, not here.
func EventFingerprint(e *Event) Fingerprint {
	var b strings.Builder
	b.WriteString(strings.ToLower(strings.TrimSpace(e.Title)))
	b.WriteByte(0)
	b.WriteString(FormatInstant(e.Start))
	b.WriteByte(0)
	b.WriteString(FormatInstant(e.End))
	return blake2b.Sum256([]byte(b.String()))
}
