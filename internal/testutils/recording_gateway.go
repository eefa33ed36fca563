// Package testutils provides shared test doubles for Valory tests.
package testutils

import (
	"sync"
)

// SentMessage is one outbound text captured by the RecordingGateway.
type SentMessage struct {
	ChannelID string
	Text      string
}

// CommandResponse is one command reply captured by the RecordingGateway.
type CommandResponse struct {
	CommandID string
	Text      string
}

// RecordingGateway is a Gateway double that records every outbound send.
// SendErr, when set, is returned from every call to simulate transport
// failures.
type RecordingGateway struct {
	mu        sync.Mutex
	messages  []SentMessage
	responses []CommandResponse

	SendErr error
}

// NewRecordingGateway creates an empty recording gateway.
func NewRecordingGateway() *RecordingGateway {
	return &RecordingGateway{}
}

// SendText records an outbound channel message.
func (g *RecordingGateway) SendText(channelID, text string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.SendErr != nil {
		return g.SendErr
	}
	g.messages = append(g.messages, SentMessage{ChannelID: channelID, Text: text})
	return nil
}

// RespondToCommand records a command response.
func (g *RecordingGateway) RespondToCommand(commandID, text string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.SendErr != nil {
		return g.SendErr
	}
	g.responses = append(g.responses, CommandResponse{CommandID: commandID, Text: text})
	return nil
}

// Messages returns a copy of all recorded channel messages.
func (g *RecordingGateway) Messages() []SentMessage {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]SentMessage(nil), g.messages...)
}

// Responses returns a copy of all recorded command responses.
func (g *RecordingGateway) Responses() []CommandResponse {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]CommandResponse(nil), g.responses...)
}
