// Package doubt orchestrates one doubt-resolution request: quota gate,
// session bookkeeping, concurrent answer generation and resource matching,
// and fallback synthesis when every provider is down.
package doubt

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/arjunvk/mentorloop/internal/model/chat"
	"github.com/arjunvk/mentorloop/internal/model/resource"
	"github.com/arjunvk/mentorloop/internal/service/provider"
	"github.com/arjunvk/mentorloop/internal/service/quota"
	"github.com/arjunvk/mentorloop/internal/service/session"
)

var (
	ErrInvalidInput    = errors.New("message must not be empty")
	ErrQuotaExceeded   = errors.New("daily doubt limit reached")
	ErrSessionNotFound = errors.New("session not found")
	// ErrTransient covers persistence failures before the request is
	// committed to a session; past that point the service degrades into a
	// textual answer instead of failing.
	ErrTransient = errors.New("temporary failure, please retry")
)

// AnswerResolver is the answer-generation chain. Satisfied by *provider.Chain.
type AnswerResolver interface {
	Resolve(ctx context.Context, question string, history []provider.Message, mode provider.Mode) (provider.Result, error)
}

// ResourceMatcher locates a learning resource for a question. Satisfied by
// *matcher.Matcher.
type ResourceMatcher interface {
	Match(ctx context.Context, question string) *resource.Resource
}

// AskInput is one inbound doubt request with the caller already resolved to
// a user ID.
type AskInput struct {
	UserID         string
	SessionID      string
	Message        string
	SkipTopicCheck bool
}

// AskResult is the coherent response every accepted request produces.
type AskResult struct {
	Answer        string
	SessionID     string
	Resource      *resource.Resource
	FirstResponse bool
	TopicSwitch   bool
}

// Service composes the trackers, managers and chains into one request cycle.
type Service struct {
	quota    *quota.Tracker
	sessions *session.Manager
	answers  AnswerResolver
	matcher  ResourceMatcher
	now      func() time.Time
}

// NewService builds the orchestrator.
func NewService(q *quota.Tracker, sessions *session.Manager, answers AnswerResolver, m ResourceMatcher) *Service {
	return &Service{
		quota:    q,
		sessions: sessions,
		answers:  answers,
		matcher:  m,
		now:      time.Now,
	}
}

// QuotaLimit exposes the configured daily limit for rejection messages.
func (s *Service) QuotaLimit() int {
	return s.quota.Limit()
}

// Ask runs the full request cycle. Every accepted request appends exactly one
// user turn and one mentor turn to the session, even when all providers fail.
func (s *Service) Ask(ctx context.Context, in AskInput) (AskResult, error) {
	message := strings.TrimSpace(in.Message)
	if message == "" {
		return AskResult{}, ErrInvalidInput
	}

	if _, err := s.quota.CheckAndIncrement(ctx, in.UserID, s.now()); err != nil {
		if errors.Is(err, quota.ErrLimitReached) {
			return AskResult{}, ErrQuotaExceeded
		}
		// Fail closed: an unreachable store must not become unlimited quota.
		return AskResult{}, fmt.Errorf("%w: %v", ErrTransient, err)
	}

	sess, created, err := s.sessions.EnsureSession(ctx, in.UserID, in.SessionID, message)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return AskResult{}, ErrSessionNotFound
		}
		return AskResult{}, fmt.Errorf("%w: %v", ErrTransient, err)
	}

	// History strictly precedes the current user turn.
	var history []provider.Message
	if !created {
		turns, err := s.sessions.History(ctx, sess.ID)
		if err != nil {
			return AskResult{}, fmt.Errorf("%w: %v", ErrTransient, err)
		}
		history = toProviderHistory(turns)
	}

	// The user turn lands before any provider call so a concurrent reader
	// never sees a mentor turn without its question.
	if _, err := s.sessions.AppendTurn(ctx, sess.ID, chat.RoleUser, message); err != nil {
		return AskResult{}, fmt.Errorf("%w: %v", ErrTransient, err)
	}

	mode := provider.ModeStrict
	if in.SkipTopicCheck || len(history) == 0 {
		mode = provider.ModeDirect
	}

	// Fan out: answer generation and resource matching are latency-
	// independent. This is a join, not a race; each branch records its own
	// outcome and a failure in one never aborts the other.
	var (
		res        provider.Result
		resolveErr error
		match      *resource.Resource
		wg         sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		res, resolveErr = s.answers.Resolve(ctx, message, history, mode)
	}()
	go func() {
		defer wg.Done()
		match = s.matcher.Match(ctx, message)
	}()
	wg.Wait()

	var answer string
	topicSwitch := false
	switch {
	case resolveErr == nil && res.TopicSwitch:
		answer = res.Text
		topicSwitch = true
	case resolveErr == nil:
		answer = res.Text
	default:
		log.Printf("[doubt] answer chain exhausted for session=%s, synthesizing fallback: %v", sess.ID, resolveErr)
		answer = fallbackAnswer(match)
	}

	// Past this point the user gets an answer no matter what; a failed
	// append is degraded service, not a request failure.
	if _, err := s.sessions.AppendTurn(ctx, sess.ID, chat.RoleMentor, answer); err != nil {
		log.Printf("[doubt] degraded: failed to persist mentor turn for session=%s: %v", sess.ID, err)
	}

	return AskResult{
		Answer:        answer,
		SessionID:     sess.ID,
		Resource:      match,
		FirstResponse: created,
		TopicSwitch:   topicSwitch,
	}, nil
}

func toProviderHistory(turns []chat.Turn) []provider.Message {
	if len(turns) == 0 {
		return nil
	}
	history := make([]provider.Message, 0, len(turns))
	for _, turn := range turns {
		role := provider.RoleUser
		if turn.Role == chat.RoleMentor {
			role = provider.RoleAssistant
		}
		history = append(history, provider.Message{Role: role, Content: turn.Content})
	}
	return history
}

// fallbackAnswer deterministically synthesizes the reply used when the whole
// answer chain failed. It is never empty-handed.
func fallbackAnswer(match *resource.Resource) string {
	if match != nil {
		return fmt.Sprintf(
			"I couldn't work through your doubt just now, but I found the perfect resource for you: %q (%s · %s). "+
				"Go through it and ask me again afterwards if anything is still unclear.",
			match.Title, match.Subject, match.UnitTitle)
	}
	return "I couldn't work through your doubt just now. Please try again in a moment, " +
		"and include specific keywords from your chapter so I can point you to the right material."
}
