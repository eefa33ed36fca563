package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean_RoleTagsAndAsides(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "leading role tag stripped",
			input:    "[Narrator] Hello there.",
			expected: "Hello there.",
		},
		{
			name:     "role tag with glued punctuation",
			input:    "[Bot]! Hello.",
			expected: "Hello.",
		},
		{
			name:     "mid-string bracket content is left alone",
			input:    "Hello [Bot] there.",
			expected: "Hello [Bot] there.",
		},
		{
			name:     "action aside removed up to terminal punctuation",
			input:    "Sure! *nods* Yes.",
			expected: "Sure.",
		},
		{
			name:     "tag then aside swallows the rest of the clause",
			input:    "[Narrator] Hello! *waves* there   friend",
			expected: "Hello",
		},
		{
			name:     "double exclamation",
			input:    "[Bot] Sure!! *nods* Yes.",
			expected: "Sure.",
		},
		{
			name:     "plain text untouched",
			input:    "Nothing to clean here.",
			expected: "Nothing to clean here.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Clean(tt.input))
		})
	}
}

func TestClean_Whitespace(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "internal space runs collapsed",
			input:    "too    many   spaces",
			expected: "too many spaces",
		},
		{
			name:     "surrounding whitespace trimmed",
			input:    "  padded  ",
			expected: "padded",
		},
		{
			name:     "bare newline preserved",
			input:    "line one\nline two",
			expected: "line one\nline two",
		},
		{
			name:     "leading punctuation debris removed",
			input:    "?, - hello",
			expected: "hello",
		},
		{
			name:     "whitespace only becomes empty",
			input:    "   \t  ",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Clean(tt.input))
		})
	}
}

func TestClean_Idempotent(t *testing.T) {
	inputs := []string{
		"[Narrator] Hello! *waves* there   friend",
		"[Bot] Sure!! *nods* Yes.",
		"plain text",
		"  spaced   out  text ",
		"line one\nline two",
		"",
	}

	for _, input := range inputs {
		once := Clean(input)
		assert.Equal(t, once, Clean(once), "Clean must be idempotent for %q", input)
	}
}

func TestClean_EmptyResult(t *testing.T) {
	// An aside that consumes the whole string leaves nothing behind; the relay
	// pipeline substitutes a placeholder for this case.
	assert.Equal(t, "", Clean("!laughs out loud."))
}
