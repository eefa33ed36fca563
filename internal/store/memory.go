package store

import (
	"context"
	"sync"

	"github.com/lPotatoUwUl/discordbot-valory/pkg/bottypes"
)

// MemoryStore is an in-process UserStore. It backs local development runs and
// tests; records are lost on restart.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]*bottypes.UserRecord
}

// NewMemoryStore creates an empty in-memory user store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*bottypes.UserRecord),
	}
}

// FindByExternalID looks up a record by external ID.
func (s *MemoryStore) FindByExternalID(_ context.Context, externalID string) (*bottypes.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, exists := s.records[externalID]
	if !exists {
		return nil, ErrNotFound
	}

	// Copy so callers cannot mutate stored state.
	out := *record
	out.Conversations = append([]bottypes.ConversationEntry(nil), record.Conversations...)
	return &out, nil
}

// Insert stores a new record, enforcing external ID uniqueness.
func (s *MemoryStore) Insert(_ context.Context, record *bottypes.UserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[record.ExternalID]; exists {
		return ErrDuplicate
	}

	stored := *record
	stored.Conversations = append([]bottypes.ConversationEntry(nil), record.Conversations...)
	s.records[record.ExternalID] = &stored
	return nil
}

// AppendConversation appends one entry to a record's history.
func (s *MemoryStore) AppendConversation(_ context.Context, externalID string, entry bottypes.ConversationEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, exists := s.records[externalID]
	if !exists {
		return ErrNotFound
	}

	record.Conversations = append(record.Conversations, entry)
	return nil
}
