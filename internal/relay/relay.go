// Package relay forwards registered users' messages to the inference backend
// and records the exchange. The pipeline runs on its own worker pool so a
// slow backend or store round trip never blocks gateway event intake.
package relay

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lPotatoUwUl/discordbot-valory/internal/logger"
	"github.com/lPotatoUwUl/discordbot-valory/internal/sanitize"
	"github.com/lPotatoUwUl/discordbot-valory/internal/store"
	"github.com/lPotatoUwUl/discordbot-valory/pkg/bottypes"
)

// EmptyReplyPlaceholder is sent and stored when the backend produces nothing.
const EmptyReplyPlaceholder = "The chatbot returned nothing."

const (
	msgBackendFailed = "Failed to reach chatbot server."
	msgSaveFailed    = "Failed to save the conversation."
)

// Backend is the inference endpoint as seen by the relay pipeline.
type Backend interface {
	// IsReachable reports whether the backend answers its healthcheck.
	IsReachable(ctx context.Context) bool
	// Chat submits a message and nickname, returning the raw reply text.
	Chat(ctx context.Context, message, nickname string) (string, error)
}

// Task is one queued relay job for a registered user's message.
type Task struct {
	UserID    string // External user ID, used for the history append
	ChannelID string // Channel to reply into
	Nickname  string // Registered nickname, forwarded to the backend
	Message   string // Verbatim user message
}

// Pipeline owns the relay worker pool and the task queue feeding it.
type Pipeline struct {
	backend Backend
	users   store.UserStore
	gateway bottypes.Gateway

	workers int
	tasks   chan Task
	group   *errgroup.Group

	now func() int64 // clock seam for tests
}

// NewPipeline creates a relay pipeline with the given number of workers.
func NewPipeline(backend Backend, users store.UserStore, gateway bottypes.Gateway, workers int) *Pipeline {
	if workers < 1 {
		workers = 1
	}
	return &Pipeline{
		backend: backend,
		users:   users,
		gateway: gateway,
		workers: workers,
		tasks:   make(chan Task, 128),
		now:     func() int64 { return time.Now().Unix() },
	}
}

// Start launches the worker pool. Workers drain the queue until Shutdown is
// called or the context is cancelled.
func (p *Pipeline) Start(ctx context.Context) {
	group, groupCtx := errgroup.WithContext(ctx)
	p.group = group

	for i := 0; i < p.workers; i++ {
		group.Go(func() error {
			for {
				select {
				case task, ok := <-p.tasks:
					if !ok {
						return nil
					}
					p.process(groupCtx, task)
				case <-groupCtx.Done():
					return groupCtx.Err()
				}
			}
		})
	}
}

// Enqueue hands a task to the worker pool without blocking the caller. When
// the queue is saturated the task is dropped and logged; the event intake
// path must never stall behind the backend.
func (p *Pipeline) Enqueue(task Task) {
	select {
	case p.tasks <- task:
	default:
		logger.Error("relay queue full, dropping message", "user", task.UserID)
	}
}

// Shutdown closes the queue and waits for in-flight tasks to finish.
func (p *Pipeline) Shutdown() error {
	close(p.tasks)
	if p.group == nil {
		return nil
	}
	err := p.group.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// process runs one relay exchange end to end.
func (p *Pipeline) process(ctx context.Context, task Task) {
	// Probe first. An unreachable backend is expected whenever it has been
	// stopped on purpose, so this failure stays silent for the user.
	if !p.backend.IsReachable(ctx) {
		logger.Debug("backend unreachable, dropping chat message", "user", task.UserID)
		return
	}

	raw, err := p.backend.Chat(ctx, task.Message, task.Nickname)
	if err != nil {
		logger.Error("chat request failed", "user", task.UserID, "error", err)
		p.send(task.ChannelID, msgBackendFailed)
		return
	}

	text := strings.TrimSpace(raw)
	if text == "" {
		text = EmptyReplyPlaceholder
	}
	text = sanitize.Clean(text)
	if text == "" {
		text = EmptyReplyPlaceholder
	}

	logger.Debug("backend reply", "user", task.UserID, "reply", text)

	entry := bottypes.ConversationEntry{
		Prompt:    task.Message,
		Response:  text,
		Timestamp: p.now(),
	}
	persistFailed := false
	if err := p.users.AppendConversation(ctx, task.UserID, entry); err != nil {
		// A lost write must not cost the user their answer.
		logger.Error("failed to save conversation", "user", task.UserID, "error", err)
		persistFailed = true
	}

	p.send(task.ChannelID, text)
	if persistFailed {
		p.send(task.ChannelID, msgSaveFailed)
	}
}

func (p *Pipeline) send(channelID, text string) {
	if err := p.gateway.SendText(channelID, text); err != nil {
		// Nothing more we can do; the channel that failed is the only way
		// to tell the user.
		logger.Error("failed to send reply", "channel", channelID, "error", err)
	}
}
