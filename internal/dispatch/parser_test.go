package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTextCommand(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected TextCommand
	}{
		{
			name:     "start command",
			content:  "!start",
			expected: TextCommand{Kind: CmdStart},
		},
		{
			name:     "nickname command with argument",
			content:  "!nickname Fox",
			expected: TextCommand{Kind: CmdNickname, Arg: "Fox"},
		},
		{
			name:     "nickname argument is trimmed",
			content:  "!nickname   Fox  ",
			expected: TextCommand{Kind: CmdNickname, Arg: "Fox"},
		},
		{
			name:     "nickname with spaces inside survives",
			content:  "!nickname Sir Fox",
			expected: TextCommand{Kind: CmdNickname, Arg: "Sir Fox"},
		},
		{
			name:     "bare nickname prefix without space is unrecognized",
			content:  "!nickname",
			expected: TextCommand{Kind: CmdUnrecognized},
		},
		{
			name:     "confirm command",
			content:  "!confirm",
			expected: TextCommand{Kind: CmdConfirm},
		},
		{
			name:     "plain chatter",
			content:  "hello bot",
			expected: TextCommand{Kind: CmdUnrecognized},
		},
		{
			name:     "command must be a prefix",
			content:  "please !start",
			expected: TextCommand{Kind: CmdUnrecognized},
		},
		{
			name:     "empty message",
			content:  "",
			expected: TextCommand{Kind: CmdUnrecognized},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseTextCommand(tt.content))
		})
	}
}
