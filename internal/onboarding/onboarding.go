// Package onboarding implements the registration flow that gates access to
// the chat relay. A user moves Unregistered -> NicknamePending -> Registered;
// the Registered state is exactly "a user record exists in the store", and
// NicknamePending is exactly "a proposal sits in the in-memory pending map".
// Pending proposals are deliberately not persisted: a restart simply restarts
// onboarding from scratch.
package onboarding

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/lPotatoUwUl/discordbot-valory/internal/logger"
	"github.com/lPotatoUwUl/discordbot-valory/internal/store"
	"github.com/lPotatoUwUl/discordbot-valory/pkg/bottypes"
)

// ErrEmptyNickname is returned when a proposed nickname is empty or
// whitespace-only.
var ErrEmptyNickname = errors.New("nickname must not be empty")

// ErrNoPendingNickname is returned by Confirm when the user has no proposal
// waiting.
var ErrNoPendingNickname = errors.New("no pending nickname")

// ErrAlreadyRegistered is returned when a registered user tries to register
// again.
var ErrAlreadyRegistered = errors.New("user is already registered")

// Service tracks per-user registration progress. The pending map is owned by
// the service and guarded by its lock; the lock is never held across a store
// call.
type Service struct {
	users store.UserStore

	mu      sync.Mutex
	pending map[string]string // external user ID -> proposed nickname
}

// NewService creates an onboarding service backed by the given user store.
func NewService(users store.UserStore) *Service {
	return &Service{
		users:   users,
		pending: make(map[string]string),
	}
}

// IsRegistered reports whether the user has completed onboarding. A store
// failure is logged and treated as not registered, so errors always block
// chat access rather than grant it.
func (s *Service) IsRegistered(ctx context.Context, userID string) bool {
	_, err := s.users.FindByExternalID(ctx, userID)
	if err == nil {
		return true
	}
	if !errors.Is(err, store.ErrNotFound) {
		logger.Error("registration lookup failed, treating user as unregistered", "user", userID, "error", err)
	}
	return false
}

// Lookup returns the user's full record, or store.ErrNotFound when the user
// has not registered.
func (s *Service) Lookup(ctx context.Context, userID string) (*bottypes.UserRecord, error) {
	return s.users.FindByExternalID(ctx, userID)
}

// Register performs the single-shot registration path: it validates the
// nickname and writes the record directly, skipping the propose/confirm
// round trip. Returns ErrAlreadyRegistered or ErrEmptyNickname where they
// apply.
func (s *Service) Register(ctx context.Context, userID, nickname string) error {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return ErrEmptyNickname
	}

	if s.IsRegistered(ctx, userID) {
		return ErrAlreadyRegistered
	}

	return s.insert(ctx, userID, nickname)
}

// Propose stores a nickname proposal for the user. A new proposal overwrites
// any prior one; the last proposal wins.
func (s *Service) Propose(_ context.Context, userID, nickname string) error {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return ErrEmptyNickname
	}

	s.mu.Lock()
	s.pending[userID] = nickname
	s.mu.Unlock()

	logger.Info("pending nickname stored", "user", userID, "nickname", nickname)
	return nil
}

// Confirm consumes the user's pending proposal and creates the record. The
// proposal is removed before the store write is attempted, so a concurrent
// second confirm observes no pending entry and fails with
// ErrNoPendingNickname instead of double-inserting.
func (s *Service) Confirm(ctx context.Context, userID string) (string, error) {
	s.mu.Lock()
	nickname, exists := s.pending[userID]
	if exists {
		delete(s.pending, userID)
	}
	s.mu.Unlock()

	if !exists {
		return "", ErrNoPendingNickname
	}

	if err := s.insert(ctx, userID, nickname); err != nil {
		return "", err
	}
	return nickname, nil
}

func (s *Service) insert(ctx context.Context, userID, nickname string) error {
	record := &bottypes.UserRecord{
		ID:            uuid.New().String(),
		ExternalID:    userID,
		Nickname:      nickname,
		Conversations: []bottypes.ConversationEntry{},
	}

	if err := s.users.Insert(ctx, record); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return ErrAlreadyRegistered
		}
		return fmt.Errorf("failed to insert user %s: %w", userID, err)
	}

	logger.Info("user registered", "user", userID, "nickname", nickname)
	return nil
}
