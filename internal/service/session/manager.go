// Package session owns doubt-session lifecycle: lazy creation on the first
// message, turn appends and history reads.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/arjunvk/mentorloop/internal/model/chat"
	"github.com/arjunvk/mentorloop/internal/store"
)

// ErrSessionNotFound covers both a missing session and a session owned by
// another user; callers cannot distinguish the two.
var ErrSessionNotFound = errors.New("session not found")

const titleLimit = 48

// Manager implements session lifecycle over the repository.
type Manager struct {
	repo store.Repository
	now  func() time.Time
}

// NewManager builds a Manager.
func NewManager(repo store.Repository) *Manager {
	return &Manager{repo: repo, now: time.Now}
}

// EnsureSession resolves sessionID to an existing session owned by userID, or
// creates a new open session when sessionID is empty. The new session's title
// is a plain truncation of the first message.
func (m *Manager) EnsureSession(ctx context.Context, userID, sessionID, firstMessage string) (chat.Session, bool, error) {
	if sessionID != "" {
		session, err := m.repo.GetSession(ctx, sessionID)
		if errors.Is(err, store.ErrSessionNotFound) {
			return chat.Session{}, false, ErrSessionNotFound
		}
		if err != nil {
			return chat.Session{}, false, fmt.Errorf("load session: %w", err)
		}
		if session.UserID != userID {
			return chat.Session{}, false, ErrSessionNotFound
		}
		return session, false, nil
	}

	session := chat.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     deriveTitle(firstMessage),
		Status:    chat.StatusOpen,
		CreatedAt: m.now().UTC(),
	}
	if err := m.repo.CreateSession(ctx, session); err != nil {
		return chat.Session{}, false, fmt.Errorf("create session: %w", err)
	}
	return session, true, nil
}

// AppendTurn persists one turn at the end of the session transcript.
func (m *Manager) AppendTurn(ctx context.Context, sessionID, role, content string) (chat.Turn, error) {
	turn := chat.Turn{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		CreatedAt: m.now().UTC(),
	}
	if err := m.repo.AppendTurn(ctx, turn); err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			return chat.Turn{}, ErrSessionNotFound
		}
		return chat.Turn{}, fmt.Errorf("append turn: %w", err)
	}
	return turn, nil
}

// History returns the session's turns oldest first.
func (m *Manager) History(ctx context.Context, sessionID string) ([]chat.Turn, error) {
	turns, err := m.repo.ListTurns(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("list turns: %w", err)
	}
	return turns, nil
}

// Transcript returns a session with its turns for the owning user.
func (m *Manager) Transcript(ctx context.Context, userID, sessionID string) (chat.Session, []chat.Turn, error) {
	session, err := m.repo.GetSession(ctx, sessionID)
	if errors.Is(err, store.ErrSessionNotFound) {
		return chat.Session{}, nil, ErrSessionNotFound
	}
	if err != nil {
		return chat.Session{}, nil, fmt.Errorf("load session: %w", err)
	}
	if session.UserID != userID {
		return chat.Session{}, nil, ErrSessionNotFound
	}

	turns, err := m.History(ctx, sessionID)
	if err != nil {
		return chat.Session{}, nil, err
	}
	return session, turns, nil
}

// deriveTitle truncates the first message to a bounded, rune-safe prefix. No
// semantic processing.
func deriveTitle(firstMessage string) string {
	title := strings.Join(strings.Fields(firstMessage), " ")
	runes := []rune(title)
	if len(runes) <= titleLimit {
		return title
	}
	return string(runes[:titleLimit]) + "…"
}
