// Package store defines the user persistence boundary for Valory and its
// concrete adapters. The rest of the core only sees the UserStore interface;
// whether records live in DynamoDB or in memory is a wiring decision.
package store

import (
	"context"
	"errors"

	"github.com/lPotatoUwUl/discordbot-valory/pkg/bottypes"
)

// ErrNotFound is returned when no record exists for the requested external ID.
var ErrNotFound = errors.New("user record not found")

// ErrDuplicate is returned when inserting a record whose external ID is
// already taken. Callers are expected to check existence first; a duplicate
// insert is always an error, never silently ignored.
var ErrDuplicate = errors.New("user record already exists")

// UserStore is the persistence boundary for user records.
//
// Implementations must enforce uniqueness on the external ID and provide
// AppendConversation as an atomic append, not a read-modify-write from the
// caller's perspective.
type UserStore interface {
	// FindByExternalID looks up a record by its stable platform identifier.
	// Returns ErrNotFound when the user has not registered.
	FindByExternalID(ctx context.Context, externalID string) (*bottypes.UserRecord, error)

	// Insert stores a new record. Returns ErrDuplicate when the external ID
	// is already registered.
	Insert(ctx context.Context, record *bottypes.UserRecord) error

	// AppendConversation atomically appends one entry to the record's
	// conversation history. Returns ErrNotFound when the user does not exist.
	AppendConversation(ctx context.Context, externalID string, entry bottypes.ConversationEntry) error
}
