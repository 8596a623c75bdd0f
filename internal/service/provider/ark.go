package provider

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
)

// ArkConfig carries the credentials and endpoint for Ark-hosted models.
type ArkConfig struct {
	APIKey    string
	AccessKey string
	SecretKey string
	BaseURL   string
	Region    string
}

// Enabled reports whether the required Ark credentials are present.
func (c ArkConfig) Enabled() bool {
	return c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != "")
}

// ArkProvider generates answers through an Ark chat model via an eino chain.
type ArkProvider struct {
	name  string
	chain compose.Runnable[map[string]any, *schema.Message]
}

// NewArk builds a provider around one Ark model.
func NewArk(ctx context.Context, cfg ArkConfig, modelName string) (*ArkProvider, error) {
	chatModel, err := ark.NewChatModel(ctx, &ark.ChatModelConfig{
		BaseURL:   cfg.BaseURL,
		Region:    cfg.Region,
		APIKey:    cfg.APIKey,
		AccessKey: cfg.AccessKey,
		SecretKey: cfg.SecretKey,
		Model:     modelName,
	})
	if err != nil {
		return nil, fmt.Errorf("create ark chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("compile ark chain: %w", err)
	}

	return &ArkProvider{name: "ark:" + modelName, chain: runnable}, nil
}

// Name identifies the backend for logging.
func (p *ArkProvider) Name() string {
	return p.name
}

// Generate produces an answer for the question with the history as context.
func (p *ArkProvider) Generate(ctx context.Context, system string, history []Message, question string) (string, error) {
	input := map[string]any{
		"system":  system,
		"history": toSchemaMessages(history),
		"query":   question,
	}

	msg, err := p.chain.Invoke(ctx, input)
	if err != nil {
		return "", fmt.Errorf("invoke ark chain: %w", err)
	}
	if msg == nil {
		return "", fmt.Errorf("ark chain returned nil message")
	}
	return msg.Content, nil
}

func toSchemaMessages(history []Message) []*schema.Message {
	if len(history) == 0 {
		return nil
	}
	out := make([]*schema.Message, 0, len(history))
	for _, m := range history {
		switch m.Role {
		case RoleUser:
			out = append(out, schema.UserMessage(m.Content))
		case RoleAssistant:
			out = append(out, schema.AssistantMessage(m.Content, nil))
		}
	}
	return out
}
