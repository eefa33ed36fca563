package dispatch

import "strings"

// TextCommandKind enumerates the onboarding commands recognized in free text.
type TextCommandKind int

// Recognized text command kinds. Unrecognized is the zero value so an
// unparsed message defaults to it.
const (
	CmdUnrecognized TextCommandKind = iota
	CmdStart
	CmdNickname
	CmdConfirm
)

// TextCommand is the parsed form of a free-text onboarding command.
type TextCommand struct {
	Kind TextCommandKind
	Arg  string // Nickname argument for CmdNickname, empty otherwise
}

// ParseTextCommand classifies a raw message into one of the onboarding
// command variants. Anything that is not a recognized command parses as
// CmdUnrecognized.
func ParseTextCommand(content string) TextCommand {
	switch {
	case strings.HasPrefix(content, "!start"):
		return TextCommand{Kind: CmdStart}
	case strings.HasPrefix(content, "!nickname "):
		return TextCommand{Kind: CmdNickname, Arg: strings.TrimSpace(content[len("!nickname "):])}
	case strings.HasPrefix(content, "!confirm"):
		return TextCommand{Kind: CmdConfirm}
	default:
		return TextCommand{Kind: CmdUnrecognized}
	}
}
