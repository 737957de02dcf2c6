// Package sanitizer normalizes free-text and phone input before validation.
package sanitizer

import "strings"

// CleanText trims surrounding whitespace and collapses internal runs of
// whitespace to single spaces.
func CleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
