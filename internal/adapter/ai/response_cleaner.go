// Package ai provides response cleaning utilities for raw completion text.
package ai

import (
	"regexp"
	"strings"
	"unicode"
)

// controlMarkers matches sequence wrappers some instruct models leak into their output.
var controlMarkers = regexp.MustCompile(`(?i)<s>|</s>|\[/?OUT\]`)

// ResponseCleaner turns raw completion text into a presentable answer.
type ResponseCleaner struct {
	fallback string
	truncate bool
}

// NewResponseCleaner creates a cleaner. fallback replaces blank output;
// truncate enables the per-mode sentence budget.
func NewResponseCleaner(fallback string, truncate bool) *ResponseCleaner {
	return &ResponseCleaner{fallback: fallback, truncate: truncate}
}

// Process strips markers, substitutes the fallback for blank text and applies
// the sentence budget when enabled. The result is never empty as long as the
// fallback is not; usedFallback reports the substitution.
func (rc *ResponseCleaner) Process(raw string, budget int) (answer string, usedFallback bool) {
	clean := StripControlMarkers(raw)
	if clean == "" {
		return rc.fallback, true
	}
	if rc.truncate && budget > 0 {
		clean = TruncateSentences(clean, budget)
	}
	return clean, false
}

// StripControlMarkers removes every marker occurrence regardless of case and trims.
func StripControlMarkers(s string) string {
	return strings.TrimSpace(controlMarkers.ReplaceAllString(s, ""))
}

// TruncateSentences keeps the first budget sentences joined by single spaces.
// Text with budget sentences or fewer is returned trimmed but otherwise unchanged.
func TruncateSentences(text string, budget int) string {
	text = strings.TrimSpace(text)
	if budget <= 0 {
		return text
	}
	sentences := SplitSentences(text)
	if len(sentences) <= budget {
		return text
	}
	return strings.Join(sentences[:budget], " ")
}

// CountSentences reports how many sentences SplitSentences finds.
func CountSentences(text string) int { return len(SplitSentences(text)) }

// SplitSentences splits after each run of terminal punctuation that is followed
// by whitespace or the end of text. Punctuation stays attached to its sentence;
// a trailing fragment without punctuation counts as a sentence.
func SplitSentences(text string) []string {
	rs := []rune(text)
	var out []string
	start := 0
	for i := 0; i < len(rs); i++ {
		if !isTerminal(rs[i]) {
			continue
		}
		j := i
		for j+1 < len(rs) && isTerminal(rs[j+1]) {
			j++
		}
		if j+1 == len(rs) || unicode.IsSpace(rs[j+1]) {
			if s := strings.TrimSpace(string(rs[start : j+1])); s != "" {
				out = append(out, s)
			}
			start = j + 1
		}
		i = j
	}
	if s := strings.TrimSpace(string(rs[start:])); s != "" {
		out = append(out, s)
	}
	return out
}

func isTerminal(r rune) bool { return r == '.' || r == '!' || r == '?' }
