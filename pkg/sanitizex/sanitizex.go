package sanitizex

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// CleanSingleLine NFC-normalizes s, turns control characters into spaces,
// trims it and collapses runs of whitespace into one ASCII space.
// Use it for names, usernames, phone numbers and slogans.
func CleanSingleLine(s string) string {
	if s == "" {
		return ""
	}
	s = norm.NFC.String(s)

	var b strings.Builder
	b.Grow(len(s))
	pendingSpace := false
	for _, r := range s {
		if r == '\u007f' || unicode.IsControl(r) || unicode.IsSpace(r) {
			pendingSpace = b.Len() > 0
			continue
		}
		if pendingSpace {
			b.WriteByte(' ')
			pendingSpace = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// CleanMultiline keeps newlines and tabs, drops other control characters,
// normalizes CRLF and trims every line. Use it for manifestos.
func CleanMultiline(s string) string {
	if s == "" {
		return ""
	}
	s = norm.NFC.String(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if r == '\u007f' || unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)

	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
