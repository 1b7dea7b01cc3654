// Package textx provides small text utilities used across the project.
package textx

import (
	"strings"
	"unicode/utf8"
)

// StripControl removes control characters except tab/newline/CR.
// Surrounding whitespace is kept.
func StripControl(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '\n' || r == '\r' || r == '\t' || (r >= 32 && r != 127) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SanitizeText removes control characters except tab/newline/CR and trims spaces.
func SanitizeText(s string) string {
	return strings.TrimSpace(StripControl(s))
}

// IsBlank reports whether s has nothing but whitespace and control characters.
func IsBlank(s string) bool {
	return SanitizeText(s) == ""
}

// Truncate returns at most n runes of s. It never splits a UTF-8 sequence.
// A non-positive n yields an empty string.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// Clip strips control characters and caps s to n runes without trimming.
func Clip(s string, n int) string {
	return Truncate(StripControl(s), n)
}
