package store

import (
	"context"
	"sync"

	"github.com/arjunvk/mentorloop/internal/model/chat"
)

// MemoryStore implements Repository in memory. It backs tests and the
// memory store driver used for local development.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]chat.Session
	turns    map[string][]chat.Turn
	quotas   map[string]chat.QuotaRecord
}

// NewMemory bootstraps an empty in-memory repository.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]chat.Session),
		turns:    make(map[string][]chat.Turn),
		quotas:   make(map[string]chat.QuotaRecord),
	}
}

// Ping always succeeds for the in-memory store.
func (s *MemoryStore) Ping(context.Context) error { return nil }

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error { return nil }

// CreateSession persists a new session record.
func (s *MemoryStore) CreateSession(_ context.Context, session chat.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
	s.turns[session.ID] = make([]chat.Turn, 0, 16)
	return nil
}

// GetSession retrieves a session by ID.
func (s *MemoryStore) GetSession(_ context.Context, sessionID string) (chat.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return chat.Session{}, ErrSessionNotFound
	}
	return session, nil
}

// AppendTurn persists a turn at the end of its session's transcript.
func (s *MemoryStore) AppendTurn(_ context.Context, turn chat.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[turn.SessionID]; !ok {
		return ErrSessionNotFound
	}
	s.turns[turn.SessionID] = append(s.turns[turn.SessionID], turn)
	return nil
}

// ListTurns returns a session's turns oldest first.
func (s *MemoryStore) ListTurns(_ context.Context, sessionID string) ([]chat.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	turns, ok := s.turns[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	copied := make([]chat.Turn, len(turns))
	copy(copied, turns)
	return copied, nil
}

// GetQuota retrieves a user's quota record.
func (s *MemoryStore) GetQuota(_ context.Context, userID string) (chat.QuotaRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.quotas[userID]
	if !ok {
		return chat.QuotaRecord{}, ErrQuotaNotFound
	}
	return rec, nil
}

// MutateQuota applies fn to the user's quota record under the store lock.
func (s *MemoryStore) MutateQuota(_ context.Context, userID string, fn func(rec *chat.QuotaRecord) error) (chat.QuotaRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.quotas[userID]
	if !ok {
		rec = chat.QuotaRecord{UserID: userID}
	}

	if err := fn(&rec); err != nil {
		return rec, err
	}

	s.quotas[userID] = rec
	return rec, nil
}
