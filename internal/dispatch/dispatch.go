// Package dispatch routes inbound gateway events to the onboarding flow, the
// chat relay pipeline, or the process supervisor. It owns every user-facing
// string; the services underneath only return typed outcomes.
package dispatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/lPotatoUwUl/discordbot-valory/internal/logger"
	"github.com/lPotatoUwUl/discordbot-valory/internal/onboarding"
	"github.com/lPotatoUwUl/discordbot-valory/internal/relay"
	"github.com/lPotatoUwUl/discordbot-valory/internal/store"
	"github.com/lPotatoUwUl/discordbot-valory/internal/supervisor"
	"github.com/lPotatoUwUl/discordbot-valory/pkg/bottypes"
)

// Command names surfaced through the gateway's structured command path.
const (
	CommandSetupBot    = "setup-bot"
	CommandRunChatbot  = "run-chatbot"
	CommandStopChatbot = "stop-chatbot"
)

const (
	msgWelcome           = "Welcome! Please reply with your desired bot nickname."
	msgMustOnboard       = "You must complete onboarding first! Use !start or /setup-bot."
	msgNoPendingNickname = "No pending nickname found. Use !nickname <your_nickname> first."
	msgEmptyNickname     = "Nickname cannot be empty."
	msgRegisterFailed    = "Failed to register. Please try again later."
	msgAlreadyRegistered = "You are already registered!"
	msgNicknameUsage     = "Please provide your desired nickname as an argument, e.g., `/setup-bot nickname:YourNick`"

	msgChatbotStarted    = "Chatbot started successfully."
	msgChatbotStopped    = "Chatbot has been stopped."
	msgAlreadyRunning    = "Chatbot is already running."
	msgNotRunning        = "Chatbot is not running."
	msgScriptMissing     = "Chatbot script not found."
	msgChatbotStartError = "Failed to start the chatbot."
)

// Enqueuer accepts relay tasks for background processing.
type Enqueuer interface {
	Enqueue(task relay.Task)
}

// ProcessControl is the supervisor surface the dispatcher needs.
type ProcessControl interface {
	Start() error
	Stop() error
}

// Dispatcher routes gateway events. Messages outside the configured chat
// channel, and any message authored by a bot, are ignored entirely.
type Dispatcher struct {
	chatChannelID string
	onboarding    *onboarding.Service
	relay         Enqueuer
	processes     ProcessControl
	gateway       bottypes.Gateway
}

// New creates a dispatcher for the given chat channel.
func New(chatChannelID string, onboardingSvc *onboarding.Service, relayQueue Enqueuer, processes ProcessControl, gw bottypes.Gateway) *Dispatcher {
	return &Dispatcher{
		chatChannelID: chatChannelID,
		onboarding:    onboardingSvc,
		relay:         relayQueue,
		processes:     processes,
		gateway:       gw,
	}
}

// HandleMessage processes one inbound chat message. Registered users' texts
// are queued for the relay pipeline; everyone else is walked through
// onboarding.
func (d *Dispatcher) HandleMessage(ctx context.Context, msg bottypes.InboundMessage) {
	if msg.FromBot {
		return
	}
	if msg.ChannelID != d.chatChannelID {
		return
	}

	record, err := d.onboarding.Lookup(ctx, msg.AuthorID)
	switch {
	case err == nil:
		d.relay.Enqueue(relay.Task{
			UserID:    msg.AuthorID,
			ChannelID: msg.ChannelID,
			Nickname:  record.Nickname,
			Message:   msg.Content,
		})
	case errors.Is(err, store.ErrNotFound):
		d.handleOnboardingMessage(ctx, msg)
	default:
		// A failing store blocks access; the user is walked through
		// onboarding rather than granted a relay.
		logger.Error("registration lookup failed", "user", msg.AuthorID, "error", err)
		d.handleOnboardingMessage(ctx, msg)
	}
}

// handleOnboardingMessage runs the conversational onboarding path for an
// unregistered user.
func (d *Dispatcher) handleOnboardingMessage(ctx context.Context, msg bottypes.InboundMessage) {
	cmd := ParseTextCommand(msg.Content)

	switch cmd.Kind {
	case CmdStart:
		d.send(msg.ChannelID, msgWelcome)

	case CmdNickname:
		if err := d.onboarding.Propose(ctx, msg.AuthorID, cmd.Arg); err != nil {
			d.send(msg.ChannelID, msgEmptyNickname)
			return
		}
		d.send(msg.ChannelID, fmt.Sprintf("You chose '%s'. Type !confirm to register.", cmd.Arg))

	case CmdConfirm:
		nickname, err := d.onboarding.Confirm(ctx, msg.AuthorID)
		switch {
		case err == nil:
			d.send(msg.ChannelID, fmt.Sprintf("You have been added as '%s'. You can now chat with the AI!", nickname))
		case errors.Is(err, onboarding.ErrNoPendingNickname):
			d.send(msg.ChannelID, msgNoPendingNickname)
		case errors.Is(err, onboarding.ErrAlreadyRegistered):
			d.send(msg.ChannelID, msgAlreadyRegistered)
		default:
			logger.Error("registration failed", "user", msg.AuthorID, "error", err)
			d.send(msg.ChannelID, msgRegisterFailed)
		}

	default:
		d.send(msg.ChannelID, msgMustOnboard)
	}

	logger.Debug("chat blocked for unconfirmed user", "user", msg.AuthorID)
}

// HandleCommand processes one structured command invocation.
func (d *Dispatcher) HandleCommand(ctx context.Context, cmd bottypes.InboundCommand) {
	switch cmd.Name {
	case CommandSetupBot:
		d.handleSetupBot(ctx, cmd)
	case CommandRunChatbot:
		d.handleRunChatbot(cmd)
	case CommandStopChatbot:
		d.handleStopChatbot(cmd)
	default:
		logger.Warn("unrecognized command", "name", cmd.Name, "user", cmd.InvokerID)
	}
}

// handleSetupBot is the single-shot registration path: a nickname argument
// registers the user directly, skipping the propose/confirm round trip.
func (d *Dispatcher) handleSetupBot(ctx context.Context, cmd bottypes.InboundCommand) {
	nickname, ok := cmd.Args["nickname"]
	if !ok || nickname == "" {
		d.respond(cmd.ID, msgNicknameUsage)
		return
	}

	err := d.onboarding.Register(ctx, cmd.InvokerID, nickname)
	switch {
	case err == nil:
		d.respond(cmd.ID, fmt.Sprintf("Welcome, %s! You are now registered and can chat with the AI.", nickname))
	case errors.Is(err, onboarding.ErrAlreadyRegistered):
		d.respond(cmd.ID, msgAlreadyRegistered)
	case errors.Is(err, onboarding.ErrEmptyNickname):
		d.respond(cmd.ID, msgEmptyNickname)
	default:
		logger.Error("setup-bot registration failed", "user", cmd.InvokerID, "error", err)
		d.respond(cmd.ID, msgRegisterFailed)
	}
}

func (d *Dispatcher) handleRunChatbot(cmd bottypes.InboundCommand) {
	err := d.processes.Start()
	switch {
	case err == nil:
		d.respond(cmd.ID, msgChatbotStarted)
	case errors.Is(err, supervisor.ErrAlreadyRunning):
		d.respond(cmd.ID, msgAlreadyRunning)
	case errors.Is(err, supervisor.ErrScriptNotFound):
		d.respond(cmd.ID, msgScriptMissing)
	default:
		logger.Error("failed to start chatbot", "error", err)
		d.respond(cmd.ID, msgChatbotStartError)
	}
}

func (d *Dispatcher) handleStopChatbot(cmd bottypes.InboundCommand) {
	err := d.processes.Stop()
	switch {
	case err == nil:
		d.respond(cmd.ID, msgChatbotStopped)
	case errors.Is(err, supervisor.ErrNotRunning):
		d.respond(cmd.ID, msgNotRunning)
	default:
		logger.Error("failed to stop chatbot", "error", err)
		d.respond(cmd.ID, msgNotRunning)
	}
}

func (d *Dispatcher) send(channelID, text string) {
	if err := d.gateway.SendText(channelID, text); err != nil {
		logger.Error("failed to send message", "channel", channelID, "error", err)
	}
}

func (d *Dispatcher) respond(commandID, text string) {
	if err := d.gateway.RespondToCommand(commandID, text); err != nil {
		logger.Error("failed to respond to command", "command", commandID, "error", err)
	}
}
