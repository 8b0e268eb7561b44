package util

import (
	"strings"

	"github.com/oklog/ulid/v2"
)

// NewULID returns a new lexicographically sortable identifier.
// ulid.Make is safe for concurrent use and monotonic within a millisecond.
func NewULID() string {
	return ulid.Make().String()
}

// IsValidULID reports whether s is a well-formed ULID string.
func IsValidULID(s string) bool {
	_, err := ulid.ParseStrict(strings.TrimSpace(s))
	return err == nil
}
