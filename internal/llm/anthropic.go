package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"

	"github.com/sakif/techmind/internal/prompt"
)

const defaultAnthropicModel = "claude-3-5-haiku-latest"

// PromptProvider sends the whole composite prompt as a single user turn,
// the way a plain "generate content from text" API is used.
type PromptProvider struct {
	client anthropic.Client
	model  string
}

var _ Provider = (*PromptProvider)(nil)

// NewPromptProvider builds a PromptProvider. Use New for validated construction.
func NewPromptProvider(cfg Config) *PromptProvider {
	opts := []anthropicoption.RequestOption{
		anthropicoption.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
		anthropicoption.WithMaxRetries(0),
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		opts = append(opts, anthropicoption.WithBaseURL(strings.TrimRight(base, "/")))
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultAnthropicModel
	}

	return &PromptProvider{
		client: anthropic.NewClient(opts...),
		model:  model,
	}
}

func (p *PromptProvider) Name() string { return KindAnthropic + "/" + p.model }

func (p *PromptProvider) Complete(ctx context.Context, pr prompt.Prompt) (string, error) {
	msg, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: MaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(pr.Text())),
		},
		Temperature: anthropic.Float(Temperature),
	})
	if err != nil {
		return "", fmt.Errorf("llm/anthropic: messages: %w", err)
	}

	var out strings.Builder
	for _, block := range msg.Content {
		if block.Type != "text" {
			continue
		}
		out.WriteString(block.Text)
	}
	if out.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return out.String(), nil
}
