// Package store provides persistence for sessions, turns and quota records.
package store

import (
	"context"
	"errors"

	"github.com/arjunvk/mentorloop/internal/model/chat"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrQuotaNotFound   = errors.New("quota record not found")
)

// Repository is the persistence surface consumed by the services. Quota
// mutation goes through MutateQuota so the read-modify-write happens under
// the store's per-key consistency guarantee rather than an optimistic local
// counter.
type Repository interface {
	// CreateSession persists a new session record.
	CreateSession(ctx context.Context, session chat.Session) error

	// GetSession retrieves a session by ID, ErrSessionNotFound if absent.
	GetSession(ctx context.Context, sessionID string) (chat.Session, error)

	// AppendTurn persists a turn at the end of its session's transcript.
	AppendTurn(ctx context.Context, turn chat.Turn) error

	// ListTurns returns a session's turns oldest first.
	ListTurns(ctx context.Context, sessionID string) ([]chat.Turn, error)

	// GetQuota retrieves a user's quota record, ErrQuotaNotFound if absent.
	GetQuota(ctx context.Context, userID string) (chat.QuotaRecord, error)

	// MutateQuota atomically reads the user's quota record (a zero record
	// with UserID set when none exists), applies fn, and writes the result
	// back. If fn returns an error the write is skipped and the error is
	// returned with the unmodified record.
	MutateQuota(ctx context.Context, userID string, fn func(rec *chat.QuotaRecord) error) (chat.QuotaRecord, error)

	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error

	// Close releases underlying store resources.
	Close() error
}
