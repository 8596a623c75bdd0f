package provider

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
)

// SentinelToken is the reserved marker a provider emits instead of an answer
// when it judges the new question to be a topic switch.
const SentinelToken = "<<NEW_TOPIC>>"

// TopicSwitchNotice is the fixed text shown (and persisted) whenever the
// sentinel is detected. The provider's own surrounding text is discarded.
const TopicSwitchNotice = "It looks like this question starts a new topic. " +
	"I'd suggest opening a fresh doubt thread so we can keep this discussion focused. " +
	"If you'd rather continue here, resend your question with \"continue this thread\" enabled."

const answerSystemPrompt = `You are a patient study mentor helping a school student resolve a doubt.
Explain step by step in plain language, define any term the student may not know,
and end with a one-line takeaway. Keep the answer focused on the question asked.`

const strictSystemPrompt = answerSystemPrompt + `

Before answering, compare the new question against the conversation so far.
If it belongs to a different subject or a different chapter than the ongoing
discussion, reply with exactly ` + SentinelToken + ` and nothing else.
Only when the question continues the current topic should you answer it.`

// Mode selects whether the resolver performs the topic-continuity check.
type Mode int

const (
	// ModeStrict fuses topic-switch classification into the answer call.
	ModeStrict Mode = iota
	// ModeDirect skips the check; used for the first message of a session or
	// when the caller explicitly continues after a switch prompt.
	ModeDirect
)

// Result is the outcome of a successful chain resolution.
type Result struct {
	Text        string
	TopicSwitch bool
	Provider    string
}

// ErrExhausted reports that every provider in the chain failed. Callers treat
// it as an expected outcome with its own fallback path, not a hard error.
var ErrExhausted = errors.New("all providers in chain failed")

// Chain tries an ordered list of providers until one succeeds. The ordering
// encodes a cost/availability policy and comes from configuration.
type Chain struct {
	name      string
	providers []Provider
}

// NewChain builds a chain over the given providers. name tags log lines.
func NewChain(name string, providers []Provider) *Chain {
	return &Chain{name: name, providers: providers}
}

// Len reports how many providers the chain holds.
func (c *Chain) Len() int {
	return len(c.providers)
}

// Resolve obtains an answer for the question, falling through the provider
// list on any error or empty payload. In strict mode a sentinel in the raw
// output is normalized to the canned topic-switch notice.
func (c *Chain) Resolve(ctx context.Context, question string, history []Message, mode Mode) (Result, error) {
	system := answerSystemPrompt
	if mode == ModeStrict {
		system = strictSystemPrompt
	}

	text, name, err := c.complete(ctx, system, history, question, nil)
	if err != nil {
		return Result{}, err
	}

	if strings.Contains(text, SentinelToken) {
		return Result{Text: TopicSwitchNotice, TopicSwitch: true, Provider: name}, nil
	}
	return Result{Text: text, Provider: name}, nil
}

// Complete runs the raw fallback sequence with a caller-supplied system
// instruction and no sentinel handling.
func (c *Chain) Complete(ctx context.Context, system, question string) (string, error) {
	text, _, err := c.complete(ctx, system, nil, question, nil)
	return text, err
}

// CompleteWith is Complete with an acceptance predicate: a reply the caller
// cannot use counts as a failure and the sequence moves to the next provider.
// The resource matcher drives its own sub-chain through this.
func (c *Chain) CompleteWith(ctx context.Context, system, question string, accept func(reply string) bool) (string, error) {
	text, _, err := c.complete(ctx, system, nil, question, accept)
	return text, err
}

func (c *Chain) complete(ctx context.Context, system string, history []Message, question string, accept func(string) bool) (string, string, error) {
	for _, p := range c.providers {
		text, err := p.Generate(ctx, system, history, question)
		if err != nil {
			log.Printf("[%s] provider %s failed, trying next: %v", c.name, p.Name(), err)
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			log.Printf("[%s] provider %s returned empty payload, trying next", c.name, p.Name())
			continue
		}
		if accept != nil && !accept(text) {
			log.Printf("[%s] provider %s returned unusable payload, trying next", c.name, p.Name())
			continue
		}
		return text, p.Name(), nil
	}
	return "", "", fmt.Errorf("%s: %w", c.name, ErrExhausted)
}
