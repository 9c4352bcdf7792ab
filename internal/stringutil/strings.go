// Package stringutil provides common string manipulation utilities.
package stringutil

import (
	"strings"
	"unicode/utf8"
)

// IsNumeric checks if a string contains only digits.
// Returns false for empty strings.
func IsNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ContainsFold reports whether substr is within s, ignoring case.
// Matching is on the lowercase form of both strings, so it behaves the
// same for ASCII ("Calculus" / "calc") and passes CJK through unchanged.
//
// Example:
//
//	ContainsFold("Introduction to Calculus", "CALC") returns true
//	ContainsFold("微積分（一）", "積分") returns true
func ContainsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// IsBlank reports whether s is empty or consists only of whitespace.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// TrimBOM removes a leading UTF-8 byte order mark.
// Excel-exported CSV files commonly start with one.
func TrimBOM(b []byte) []byte {
	if len(b) >= 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		return b[3:]
	}
	return b
}

// IsUTF8 reports whether b is valid UTF-8.
func IsUTF8(b []byte) bool {
	return utf8.Valid(b)
}
