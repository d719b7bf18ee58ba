// Package answer checks a typed dictation against its target transcript.
package answer

import (
	"strings"
	"unicode"
)

// Result is the outcome of one submission.
type Result struct {
	Correct bool
	Input   string
	Target  string
}

// Normalize lowercases s, drops every rune that is neither an ASCII word
// character nor whitespace, and trims the ends. Internal whitespace runs
// are kept as they are.
func Normalize(s string) string {
	s = strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if isWordRune(r) || isSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.TrimFunc(b.String(), isSpace)
}

// isSpace matches the ECMAScript whitespace and line terminator set:
// Unicode White_Space without U+0085, plus the byte order mark.
func isSpace(r rune) bool {
	switch r {
	case '\u0085':
		return false
	case '\ufeff':
		return true
	}
	return unicode.IsSpace(r)
}

func isWordRune(r rune) bool {
	return r == '_' ||
		(r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9')
}

// Compare reports whether input matches target after normalization.
func Compare(input, target string) Result {
	return Result{
		Correct: Normalize(input) == Normalize(target),
		Input:   input,
		Target:  target,
	}
}

// Submittable reports whether input may be submitted at all.
func Submittable(input string) bool {
	return strings.TrimFunc(input, isSpace) != ""
}
