package sanitizex

import (
	"strings"
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
)

func TestCleanSingleLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty", input: "", expected: ""},
		{name: "basic trimming", input: "  hello world  ", expected: "hello world"},
		{name: "collapse multiple spaces", input: "hello    world", expected: "hello world"},
		{name: "newlines and tabs", input: "hello\n\tworld", expected: "hello world"},
		{name: "carriage returns", input: "hello\rworld", expected: "hello world"},
		{name: "control characters", input: "hello\x00\x01world", expected: "hello world"},
		{name: "only whitespace", input: " \t\n ", expected: ""},
		{name: "NFC normalization", input: "Chisomo Banda\u0301", expected: "Chisomo Band\u00e1"},
		{name: "phone number", input: " +265 999 123 456 ", expected: "+265 999 123 456"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := CleanSingleLine(tt.input)
			assert.Equal(t, tt.expected, got)
			assert.NotContains(t, got, "\n")
			assert.NotContains(t, got, "  ")
			assert.Equal(t, strings.TrimSpace(got), got)
		})
	}
}

func TestCleanMultiline(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty", input: "", expected: ""},
		{name: "keeps lines", input: "line1\nline2", expected: "line1\nline2"},
		{name: "trims every line", input: "  line1  \n  line2  ", expected: "line1\nline2"},
		{name: "crlf", input: "line1\r\nline2", expected: "line1\nline2"},
		{name: "drops control characters", input: "a\x00b\nc\x07d", expected: "ab\ncd"},
		{name: "trims surrounding blank lines", input: "\n\nmanifesto\n\n", expected: "manifesto"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, CleanMultiline(tt.input))
		})
	}
}

func TestCleanSingleLine_LongInput(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	for i := range 1000 {
		b.WriteString("word")
		if i%10 == 0 {
			b.WriteString(" \t ")
		} else {
			b.WriteString(" ")
		}
	}

	got := CleanSingleLine("  " + b.String() + "  ")
	assert.NotContains(t, got, "  ")
	assert.False(t, unicode.IsSpace(rune(got[0])))
	assert.False(t, unicode.IsSpace(rune(got[len(got)-1])))
}
