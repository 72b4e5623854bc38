package domain

import (
	"strings"

	"github.com/rivo/uniseg"
)

// MaxNameGraphemes is the display-name length limit, counted in user-perceived
// characters (grapheme clusters), not bytes or runes. A multi-codepoint
// character such as "ё" built from a base letter plus a combining mark counts
// as one.
const MaxNameGraphemes = 256

// forbiddenNameChars are rejected outright; they have no business appearing in
// a display name and keep names safe to embed in URLs and markup.
const forbiddenNameChars = `/()"\{}<>`

// SubscriberName is a validated display name. The zero value is invalid;
// obtain one through ParseSubscriberName.
type SubscriberName struct {
	value string
}

// ParseSubscriberName validates a raw display name. It fails when the input is
// empty after trimming, longer than MaxNameGraphemes grapheme clusters, or
// contains a forbidden character.
func ParseSubscriberName(raw string) (SubscriberName, error) {
	if strings.TrimSpace(raw) == "" {
		return SubscriberName{}, &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if strings.ContainsAny(raw, forbiddenNameChars) {
		return SubscriberName{}, &ValidationError{Field: "name", Reason: "contains a forbidden character"}
	}
	if uniseg.GraphemeClusterCount(raw) > MaxNameGraphemes {
		return SubscriberName{}, &ValidationError{Field: "name", Reason: "must be at most 256 characters"}
	}
	return SubscriberName{value: raw}, nil
}

// String returns a read-only view of the validated name.
func (n SubscriberName) String() string { return n.value }
