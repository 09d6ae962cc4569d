package logging

import (
	"strings"
	"unicode/utf8"
)

const mask = "****"

// RedactEmail keeps the first 2 runes of the local part and the whole domain,
// e.g. "mse23-jbanda@mubas.ac.mw" becomes "ms****@mubas.ac.mw".
// Malformed input and local parts shorter than 3 runes are returned trimmed but otherwise unchanged.
func RedactEmail(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	at := strings.IndexByte(s, '@')
	if at <= 0 || at == len(s)-1 {
		return s
	}

	local, domain := s[:at], s[at+1:]
	if utf8.RuneCountInString(local) < 3 {
		return s
	}

	return runePrefix(local, 2) + mask + "@" + domain
}

// RedactUsername keeps the first 2 runes of usernames of 3 runes or more.
func RedactUsername(s string) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) < 3 {
		return s
	}
	return runePrefix(s, 2) + mask
}

// RedactKeepPrefix keeps the first keep runes and masks the rest. Values that
// are not longer than keep are returned as is.
func RedactKeepPrefix(s string, keep int) string {
	s = strings.TrimSpace(s)
	if keep < 0 {
		keep = 0
	}
	if utf8.RuneCountInString(s) <= keep {
		return s
	}
	return runePrefix(s, keep) + mask
}

// RedactToken is used for activation tokens and session cookies.
func RedactToken(s string) string {
	return RedactKeepPrefix(s, 6)
}

func runePrefix(s string, n int) string {
	offset := 0
	for count := 0; count < n && offset < len(s); count++ {
		_, size := utf8.DecodeRuneInString(s[offset:])
		offset += size
	}
	return s[:offset]
}
