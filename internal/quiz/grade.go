package quiz

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Matches reports whether selected answers a question whose stored key is
// correct. Either the trimmed strings are equal ignoring case, or their
// first letters are, so "B" and "b) madrid" both match "B) Madrid".
func Matches(selected, correct string) bool {
	selected = strings.TrimSpace(selected)
	correct = strings.TrimSpace(correct)
	if selected == "" || correct == "" {
		return false
	}
	if strings.EqualFold(selected, correct) {
		return true
	}
	return firstUpper(selected) == firstUpper(correct)
}

func firstUpper(s string) rune {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.ToUpper(r)
}
