// Package gateway provides concrete messaging transports behind the
// bottypes.Gateway interface. The real chat platform binding lives outside
// this repository; the console transport here drives the bot locally and in
// end-to-end experiments.
package gateway

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/lPotatoUwUl/discordbot-valory/pkg/bottypes"
)

// MessageHandler receives inbound messages from a transport.
type MessageHandler interface {
	HandleMessage(ctx context.Context, msg bottypes.InboundMessage)
}

// Console is a line-oriented gateway over stdin/stdout. Every line typed
// becomes an inbound message from a fixed author in a fixed channel, and
// outbound sends are printed.
type Console struct {
	in        io.Reader
	out       io.Writer
	authorID  string
	channelID string
}

// NewConsole creates a console gateway bound to the given streams.
func NewConsole(in io.Reader, out io.Writer, authorID, channelID string) *Console {
	return &Console{
		in:        in,
		out:       out,
		authorID:  authorID,
		channelID: channelID,
	}
}

// Run reads lines until EOF or context cancellation, handing each one to the
// handler as an inbound message.
func (c *Console) Run(ctx context.Context, handler MessageHandler) error {
	scanner := bufio.NewScanner(c.in)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := scanner.Text()
		if line == "" {
			continue
		}

		handler.HandleMessage(ctx, bottypes.InboundMessage{
			AuthorID:  c.authorID,
			ChannelID: c.channelID,
			Content:   line,
		})
	}
	return scanner.Err()
}

// SendText prints an outbound message.
func (c *Console) SendText(channelID, text string) error {
	_, err := fmt.Fprintf(c.out, "[%s] %s\n", channelID, text)
	return err
}

// RespondToCommand prints a command response.
func (c *Console) RespondToCommand(commandID, text string) error {
	_, err := fmt.Fprintf(c.out, "[command %s] %s\n", commandID, text)
	return err
}
