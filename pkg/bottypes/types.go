// Package bottypes contains the shared types used across Valory components.
// It defines the persisted user model, the gateway event shapes, and the
// interfaces that keep the core decoupled from any concrete transport.
package bottypes

// ConversationEntry is one prompt/response exchange in a user's history.
// Entries are immutable once created and are only ever appended.
type ConversationEntry struct {
	Prompt    string `json:"prompt"`    // Verbatim user input
	Response  string `json:"response"`  // Sanitized backend output
	Timestamp int64  `json:"timestamp"` // Seconds since epoch
}

// UserRecord is the persisted registration record for a single user.
// A record exists if and only if the user has completed onboarding.
type UserRecord struct {
	ID            string              `json:"id"`            // Document ID, assigned at insert
	ExternalID    string              `json:"external_id"`   // Stable per-platform identifier, unique
	Nickname      string              `json:"nickname"`      // Chosen at registration, immutable
	Conversations []ConversationEntry `json:"conversations"` // Append-only history
}

// InboundMessage is a free-text chat message delivered by the gateway.
type InboundMessage struct {
	AuthorID  string // Stable identifier of the message author
	ChannelID string // Channel the message was posted in
	Content   string // Raw message text
	FromBot   bool   // True when the author is a bot (including ourselves)
}

// InboundCommand is a structured command invocation delivered by the gateway.
type InboundCommand struct {
	ID        string            // Opaque invocation identifier, used for the response
	Name      string            // Command name, e.g. "setup-bot"
	InvokerID string            // Stable identifier of the invoking user
	Args      map[string]string // Named command arguments
}

// Gateway is the messaging transport through which Valory talks back to users.
// Implementations are external collaborators; the core only sends through it.
type Gateway interface {
	// SendText posts a plain text message to a channel.
	SendText(channelID, text string) error
	// RespondToCommand answers a command invocation with a short text reply.
	RespondToCommand(commandID, text string) error
}
