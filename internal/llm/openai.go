package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v2"
	openaioption "github.com/openai/openai-go/v2/option"

	"github.com/sakif/techmind/internal/prompt"
)

const defaultOpenAIModel = "gpt-3.5-turbo"

// ChatProvider calls the OpenAI chat completions API with a system message
// (persona, instructions, examples) and a user message (the question).
type ChatProvider struct {
	client openai.Client
	model  string
}

var _ Provider = (*ChatProvider)(nil)

// NewChatProvider builds a ChatProvider. Use New for validated construction.
func NewChatProvider(cfg Config) *ChatProvider {
	opts := []openaioption.RequestOption{
		openaioption.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
		openaioption.WithMaxRetries(0),
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		opts = append(opts, openaioption.WithBaseURL(base))
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultOpenAIModel
	}

	return &ChatProvider{
		client: openai.NewClient(opts...),
		model:  model,
	}
}

func (p *ChatProvider) Name() string { return KindOpenAI + "/" + p.model }

func (p *ChatProvider) Complete(ctx context.Context, pr prompt.Prompt) (string, error) {
	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(pr.System),
			openai.UserMessage(pr.User),
		},
		MaxTokens:   openai.Int(MaxTokens),
		Temperature: openai.Float(Temperature),
	})
	if err != nil {
		return "", fmt.Errorf("llm/openai: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}
