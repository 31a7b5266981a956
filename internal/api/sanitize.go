package api

import (
	"strings"
	"unicode"
)

const (
	maxIdentifierLen = 254 // longest valid email address
	maxPasswordLen   = 256
	maxQueryLen      = 64
	minQueryLen      = 2
)

// cleanText trims s, drops control characters and caps it at limit runes.
func cleanText(s string, limit int) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	s = strings.TrimSpace(s)
	if runes := []rune(s); len(runes) > limit {
		s = strings.TrimSpace(string(runes[:limit]))
	}
	return s
}

// cleanQuery keeps the characters that can appear in a name or GHIN number
// (letters, digits, spaces, apostrophes, hyphens, periods, commas) and
// collapses runs of whitespace.
func cleanQuery(s string) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			return r
		case unicode.IsSpace(r):
			return ' '
		case r == '\'', r == '-', r == '.', r == ',':
			return r
		}
		return -1
	}, s)
	return cleanText(strings.Join(strings.Fields(s), " "), maxQueryLen)
}

// isGHINNumber reports whether q is all ASCII digits.
func isGHINNumber(q string) bool {
	if q == "" {
		return false
	}
	for _, r := range q {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// splitName turns a free-form name query into first and last name. A single
// word is a last name. "Last, First" is honoured; otherwise the final word is
// the last name.
func splitName(q string) (first, last string) {
	if l, f, ok := strings.Cut(q, ","); ok {
		return strings.TrimSpace(f), strings.TrimSpace(l)
	}
	fields := strings.Fields(q)
	switch len(fields) {
	case 0:
		return "", ""
	case 1:
		return "", fields[0]
	default:
		return strings.Join(fields[:len(fields)-1], " "), fields[len(fields)-1]
	}
}
