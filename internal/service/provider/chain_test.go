package provider

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type stubProvider struct {
	name       string
	text       string
	err        error
	calls      int
	lastSystem string
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Generate(_ context.Context, system string, _ []Message, _ string) (string, error) {
	s.calls++
	s.lastSystem = system
	return s.text, s.err
}

func TestResolveFallsThroughOnFailure(t *testing.T) {
	first := &stubProvider{name: "a", err: errors.New("boom")}
	second := &stubProvider{name: "b", text: "  the answer  "}
	chain := NewChain("answer", []Provider{first, second})

	res, err := chain.Resolve(context.Background(), "q", nil, ModeDirect)
	if err != nil {
		t.Fatalf("Resolve err: %v", err)
	}
	if res.Text != "the answer" {
		t.Fatalf("text = %q, want trimmed answer", res.Text)
	}
	if res.Provider != "b" {
		t.Fatalf("provider = %q, want b", res.Provider)
	}
	if first.calls != 1 || second.calls != 1 {
		t.Fatalf("calls = %d/%d, want one each (no retries)", first.calls, second.calls)
	}
}

func TestResolveSkipsEmptyPayload(t *testing.T) {
	first := &stubProvider{name: "a", text: "   "}
	second := &stubProvider{name: "b", text: "real answer"}
	chain := NewChain("answer", []Provider{first, second})

	res, err := chain.Resolve(context.Background(), "q", nil, ModeDirect)
	if err != nil {
		t.Fatalf("Resolve err: %v", err)
	}
	if res.Provider != "b" {
		t.Fatalf("empty payload should fall through, got provider %q", res.Provider)
	}
}

func TestResolveExhausted(t *testing.T) {
	chain := NewChain("answer", []Provider{
		&stubProvider{name: "a", err: errors.New("down")},
		&stubProvider{name: "b", err: errors.New("down too")},
	})

	_, err := chain.Resolve(context.Background(), "q", nil, ModeStrict)
	if !errors.Is(err, ErrExhausted) {
		t.Fatalf("expected ErrExhausted, got %v", err)
	}
}

func TestSentinelNormalizedToCannedNotice(t *testing.T) {
	p := &stubProvider{name: "a", text: "Sure thing! " + SentinelToken + " trailing chatter"}
	chain := NewChain("answer", []Provider{p})

	res, err := chain.Resolve(context.Background(), "q", nil, ModeStrict)
	if err != nil {
		t.Fatalf("Resolve err: %v", err)
	}
	if !res.TopicSwitch {
		t.Fatal("expected TopicSwitch")
	}
	if res.Text != TopicSwitchNotice {
		t.Fatalf("text = %q, want the canned notice verbatim", res.Text)
	}
}

func TestModeSelectsSystemPrompt(t *testing.T) {
	p := &stubProvider{name: "a", text: "answer"}
	chain := NewChain("answer", []Provider{p})
	ctx := context.Background()

	if _, err := chain.Resolve(ctx, "q", nil, ModeDirect); err != nil {
		t.Fatalf("direct Resolve err: %v", err)
	}
	if strings.Contains(p.lastSystem, SentinelToken) {
		t.Fatal("direct mode must not carry the classification instruction")
	}

	if _, err := chain.Resolve(ctx, "q", nil, ModeStrict); err != nil {
		t.Fatalf("strict Resolve err: %v", err)
	}
	if !strings.Contains(p.lastSystem, SentinelToken) {
		t.Fatal("strict mode must carry the classification instruction")
	}
}

func TestCompleteWithRejectsUnusablePayload(t *testing.T) {
	first := &stubProvider{name: "a", text: "garbage"}
	second := &stubProvider{name: "b", text: "42"}
	chain := NewChain("matcher", []Provider{first, second})

	got, err := chain.CompleteWith(context.Background(), "sys", "q", func(reply string) bool {
		return reply == "42"
	})
	if err != nil {
		t.Fatalf("CompleteWith err: %v", err)
	}
	if got != "42" {
		t.Fatalf("got %q, want the second provider's reply", got)
	}
	if first.calls != 1 || second.calls != 1 {
		t.Fatalf("calls = %d/%d, want one each", first.calls, second.calls)
	}
}

func TestEmptyChainIsExhausted(t *testing.T) {
	chain := NewChain("answer", nil)
	if _, err := chain.Complete(context.Background(), "sys", "q"); !errors.Is(err, ErrExhausted) {
		t.Fatalf("expected ErrExhausted from empty chain, got %v", err)
	}
}
