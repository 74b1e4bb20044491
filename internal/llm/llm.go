// Package llm wraps the text-completion vendors behind one small interface.
//
// The service layer only sees Provider. Which vendor sits behind it is decided
// once, at process start, by New(Config); there is no per-request choice and no
// fallback from one vendor to another.
//
// Both vendor clients are built with retries disabled: a failed call is
// reported to the caller straight away.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sakif/techmind/internal/prompt"
)

// Kinds accepted by New.
const (
	KindOpenAI    = "openai"
	KindAnthropic = "anthropic"
)

// Generation settings shared by every provider. Three words fit comfortably
// in 20 tokens; 0.7 keeps the personas playful without drifting off-format.
const (
	MaxTokens   = 20
	Temperature = 0.7
)

// ErrEmptyResponse is returned when a provider answers with no text at all.
var ErrEmptyResponse = errors.New("llm: empty response")

// Provider produces a completion for a prompt.
type Provider interface {
	// Name identifies the vendor in logs. It is never shown to API callers.
	Name() string
	// Complete returns the raw completion text (untrimmed).
	Complete(ctx context.Context, p prompt.Prompt) (string, error)
}

// Config selects and configures the provider.
type Config struct {
	Kind    string // "openai" or "anthropic"
	APIKey  string
	Model   string // optional; vendor default when empty
	BaseURL string // optional; for proxies and tests
}

// New builds the provider named by cfg.Kind.
func New(cfg Config) (Provider, error) {
	kind := normalizeKind(cfg.Kind)
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("llm: %s api key is empty", kind)
	}

	switch kind {
	case KindOpenAI:
		return NewChatProvider(cfg), nil
	case KindAnthropic:
		return NewPromptProvider(cfg), nil
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", cfg.Kind)
	}
}

func normalizeKind(raw string) string {
	k := strings.ToLower(strings.TrimSpace(raw))
	if k == "" {
		return KindOpenAI
	}
	return k
}
