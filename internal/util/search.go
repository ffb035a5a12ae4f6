package util

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// MatchesQuery reports whether needle occurs in haystack ignoring case.
// The needle is trimmed and an empty needle matches everything; a nil
// haystack is treated as the empty string.
func MatchesQuery(haystack *string, needle string) bool {
	needle = strings.TrimSpace(needle)
	if needle == "" {
		return true
	}
	if haystack == nil {
		return false
	}
	// Casers carry state, so each call gets its own.
	fold := cases.Fold()
	h := fold.String(norm.NFC.String(*haystack))
	n := fold.String(norm.NFC.String(needle))
	return strings.Contains(h, n)
}
