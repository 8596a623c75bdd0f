// Package provider abstracts answer-generation backends and the ordered
// fallback chain that resolves a doubt against them.
package provider

import "context"

// Message roles in the provider vocabulary.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of conversation context replayed to a provider.
type Message struct {
	Role    string
	Content string
}

// Provider is a single answer-generation backend. Implementations wrap one
// configured vendor endpoint and model.
type Provider interface {
	// Name identifies the backend for logging ("ark:doubao-...", "openai:gpt-...").
	Name() string

	// Generate produces a free-text answer for the question given a system
	// instruction and prior conversation.
	Generate(ctx context.Context, system string, history []Message, question string) (string, error)
}
