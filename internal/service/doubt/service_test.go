package doubt_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/arjunvk/mentorloop/internal/model/chat"
	"github.com/arjunvk/mentorloop/internal/model/resource"
	"github.com/arjunvk/mentorloop/internal/service/doubt"
	"github.com/arjunvk/mentorloop/internal/service/provider"
	"github.com/arjunvk/mentorloop/internal/service/quota"
	"github.com/arjunvk/mentorloop/internal/service/session"
	"github.com/arjunvk/mentorloop/internal/store"
)

type stubResolver struct {
	result   provider.Result
	err      error
	delay    time.Duration
	lastMode provider.Mode
	history  []provider.Message
}

func (s *stubResolver) Resolve(_ context.Context, _ string, history []provider.Message, mode provider.Mode) (provider.Result, error) {
	s.lastMode = mode
	s.history = history
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	return s.result, s.err
}

type stubMatcher struct {
	pick  *resource.Resource
	delay time.Duration
}

func (s *stubMatcher) Match(context.Context, string) *resource.Resource {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	return s.pick
}

func newService(repo store.Repository, resolver doubt.AnswerResolver, m doubt.ResourceMatcher) (*doubt.Service, *session.Manager) {
	sessions := session.NewManager(repo)
	tracker := quota.NewTracker(repo, 50)
	return doubt.NewService(tracker, sessions, resolver, m), sessions
}

func TestAskHappyPath(t *testing.T) {
	repo := store.NewMemory()
	resolver := &stubResolver{result: provider.Result{Text: "use a free body diagram"}}
	svc, sessions := newService(repo, resolver, &stubMatcher{})

	res, err := svc.Ask(context.Background(), doubt.AskInput{
		UserID:  "stu_1",
		Message: "why does the pulley accelerate?",
	})
	if err != nil {
		t.Fatalf("Ask err: %v", err)
	}
	if res.Answer != "use a free body diagram" {
		t.Fatalf("answer = %q", res.Answer)
	}
	if !res.FirstResponse {
		t.Fatal("first message of a new session must flag FirstResponse")
	}
	if resolver.lastMode != provider.ModeDirect {
		t.Fatal("empty history must use direct mode")
	}

	turns, err := sessions.History(context.Background(), res.SessionID)
	if err != nil {
		t.Fatalf("History err: %v", err)
	}
	if len(turns) != 2 || turns[0].Role != chat.RoleUser || turns[1].Role != chat.RoleMentor {
		t.Fatalf("expected one user turn then one mentor turn, got %v", turns)
	}
}

func TestAskEmptyMessageRejected(t *testing.T) {
	svc, _ := newService(store.NewMemory(), &stubResolver{}, &stubMatcher{})

	if _, err := svc.Ask(context.Background(), doubt.AskInput{UserID: "stu_1", Message: "   "}); !errors.Is(err, doubt.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestAskQuotaExceeded(t *testing.T) {
	repo := store.NewMemory()
	resolver := &stubResolver{result: provider.Result{Text: "ok"}}
	sessions := session.NewManager(repo)
	svc := doubt.NewService(quota.NewTracker(repo, 1), sessions, resolver, &stubMatcher{})
	ctx := context.Background()

	if _, err := svc.Ask(ctx, doubt.AskInput{UserID: "stu_1", Message: "first"}); err != nil {
		t.Fatalf("first Ask err: %v", err)
	}
	if _, err := svc.Ask(ctx, doubt.AskInput{UserID: "stu_1", Message: "second"}); !errors.Is(err, doubt.ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}
}

func TestAskStrictModeWithHistory(t *testing.T) {
	repo := store.NewMemory()
	resolver := &stubResolver{result: provider.Result{Text: "answer"}}
	svc, _ := newService(repo, resolver, &stubMatcher{})
	ctx := context.Background()

	first, err := svc.Ask(ctx, doubt.AskInput{UserID: "stu_1", Message: "what is tension?"})
	if err != nil {
		t.Fatalf("first Ask err: %v", err)
	}

	if _, err := svc.Ask(ctx, doubt.AskInput{UserID: "stu_1", SessionID: first.SessionID, Message: "and for two blocks?"}); err != nil {
		t.Fatalf("second Ask err: %v", err)
	}
	if resolver.lastMode != provider.ModeStrict {
		t.Fatal("follow-up with history must use strict mode")
	}
	// History replayed to the provider excludes the current user turn and
	// maps mentor onto the assistant role.
	if len(resolver.history) != 2 {
		t.Fatalf("history len = %d, want 2", len(resolver.history))
	}
	if resolver.history[1].Role != provider.RoleAssistant {
		t.Fatalf("mentor turn replayed as %q, want assistant", resolver.history[1].Role)
	}

	// Explicit continuation skips the check even with history present.
	if _, err := svc.Ask(ctx, doubt.AskInput{UserID: "stu_1", SessionID: first.SessionID, Message: "continue", SkipTopicCheck: true}); err != nil {
		t.Fatalf("third Ask err: %v", err)
	}
	if resolver.lastMode != provider.ModeDirect {
		t.Fatal("skipContextCheck must force direct mode")
	}
}

func TestAskTopicSwitchUsesCannedNotice(t *testing.T) {
	repo := store.NewMemory()
	resolver := &stubResolver{result: provider.Result{Text: provider.TopicSwitchNotice, TopicSwitch: true}}
	phy := &resource.Resource{ID: "phy", Title: "Pulleys", Subject: "Physics", UnitTitle: "Laws of Motion"}
	svc, sessions := newService(repo, resolver, &stubMatcher{pick: phy})

	res, err := svc.Ask(context.Background(), doubt.AskInput{UserID: "stu_1", Message: "now a chemistry doubt"})
	if err != nil {
		t.Fatalf("Ask err: %v", err)
	}
	if !res.TopicSwitch {
		t.Fatal("expected TopicSwitch")
	}
	if res.Answer != provider.TopicSwitchNotice {
		t.Fatalf("answer = %q, want the canned notice verbatim", res.Answer)
	}
	// Resource is attached but never blended into the notice text.
	if res.Resource == nil || res.Resource.ID != "phy" {
		t.Fatalf("resource = %v, want phy attached", res.Resource)
	}

	turns, _ := sessions.History(context.Background(), res.SessionID)
	if turns[1].Content != provider.TopicSwitchNotice {
		t.Fatalf("persisted mentor turn = %q, want the canned notice", turns[1].Content)
	}
}

func TestAskFallbackWithResource(t *testing.T) {
	repo := store.NewMemory()
	resolver := &stubResolver{err: provider.ErrExhausted}
	phy := &resource.Resource{ID: "phy", Title: "Pulley Systems", Subject: "Physics", UnitTitle: "Laws of Motion"}
	svc, sessions := newService(repo, resolver, &stubMatcher{pick: phy})

	res, err := svc.Ask(context.Background(), doubt.AskInput{UserID: "stu_1", Message: "pulley doubt"})
	if err != nil {
		t.Fatalf("Ask must not fail when providers are exhausted: %v", err)
	}
	if res.Answer == "" {
		t.Fatal("fallback answer must not be empty")
	}
	if !strings.Contains(res.Answer, "Pulley Systems") {
		t.Fatalf("fallback %q should embed the matched resource title", res.Answer)
	}

	// Turn pairing holds on the fallback path too.
	turns, _ := sessions.History(context.Background(), res.SessionID)
	if len(turns) != 2 {
		t.Fatalf("len(turns) = %d, want 2", len(turns))
	}
	if turns[1].Content != res.Answer {
		t.Fatal("persisted mentor turn must equal the fallback shown to the user")
	}
}

func TestAskFallbackWithoutResource(t *testing.T) {
	svc, _ := newService(store.NewMemory(), &stubResolver{err: provider.ErrExhausted}, &stubMatcher{})

	res, err := svc.Ask(context.Background(), doubt.AskInput{UserID: "stu_1", Message: "anything"})
	if err != nil {
		t.Fatalf("Ask err: %v", err)
	}
	if !strings.Contains(res.Answer, "try again") {
		t.Fatalf("generic fallback = %q, want retry guidance", res.Answer)
	}
}

func TestAskBranchesRunConcurrently(t *testing.T) {
	const branchDelay = 120 * time.Millisecond

	repo := store.NewMemory()
	resolver := &stubResolver{result: provider.Result{Text: "answer"}, delay: branchDelay}
	svc, _ := newService(repo, resolver, &stubMatcher{delay: branchDelay})

	start := time.Now()
	if _, err := svc.Ask(context.Background(), doubt.AskInput{UserID: "stu_1", Message: "timing doubt"}); err != nil {
		t.Fatalf("Ask err: %v", err)
	}
	elapsed := time.Since(start)

	if elapsed < branchDelay {
		t.Fatalf("elapsed %v, join must wait for both branches", elapsed)
	}
	if elapsed > 2*branchDelay-20*time.Millisecond {
		t.Fatalf("elapsed %v, branches ran sequentially", elapsed)
	}
}

func TestAskForeignSessionRejected(t *testing.T) {
	repo := store.NewMemory()
	resolver := &stubResolver{result: provider.Result{Text: "ok"}}
	svc, _ := newService(repo, resolver, &stubMatcher{})
	ctx := context.Background()

	first, err := svc.Ask(ctx, doubt.AskInput{UserID: "stu_owner", Message: "my doubt"})
	if err != nil {
		t.Fatalf("Ask err: %v", err)
	}

	_, err = svc.Ask(ctx, doubt.AskInput{UserID: "stu_other", SessionID: first.SessionID, Message: "hijack"})
	if !errors.Is(err, doubt.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}
