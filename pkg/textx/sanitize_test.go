// Package textx contains tests for the text utilities.
package textx

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSanitizeText(t *testing.T) {
	in := "he\x00llo\nwo\x7frld\t!"
	got := SanitizeText(in)
	if got != "hello\nworld\t!" {
		t.Fatalf("unexpected: %q", got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"shorter", "abc", 5, "abc"},
		{"exact", "abcde", 5, "abcde"},
		{"longer", "abcdef", 3, "abc"},
		{"zero", "abc", 0, ""},
		{"negative", "abc", -1, ""},
		{"accents kept whole", "éàü", 2, "éà"},
		{"emoji kept whole", "a😀b", 2, "a😀"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Truncate(tt.in, tt.n)
			if got != tt.want {
				t.Fatalf("Truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Fatalf("invalid utf-8: %q", got)
			}
		})
	}
}

func TestClip(t *testing.T) {
	long := strings.Repeat("é", 2500)
	got := Clip("\x00  "+long, 2000)
	if utf8.RuneCountInString(got) != 2000 {
		t.Fatalf("expected 2000 runes, got %d", utf8.RuneCountInString(got))
	}
	if !strings.HasPrefix(got, "  é") {
		t.Fatalf("leading spaces must be kept: %q", got[:8])
	}
	if got := Clip("  hi\x01 \n", 10); got != "  hi \n" {
		t.Fatalf("unexpected: %q", got)
	}
}

func TestIsBlank(t *testing.T) {
	for _, s := range []string{"", "   ", "\n\t", " \x01\x00 "} {
		if !IsBlank(s) {
			t.Fatalf("expected %q to be blank", s)
		}
	}
	if IsBlank(" a ") {
		t.Fatalf("expected non-blank")
	}
}
