package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sakif/techmind/internal/apperror"
	"github.com/sakif/techmind/internal/llm"
	"github.com/sakif/techmind/internal/model"
	"github.com/sakif/techmind/internal/prompt"
	"github.com/sakif/techmind/internal/repository"
)

const (
	// MaxTermLength bounds the term, in runes.
	MaxTermLength = 200

	// DefaultProviderLabel is shown to callers instead of the vendor name.
	DefaultProviderLabel = "TechMind"

	// recordTimeout bounds the audit write, which runs on a context detached
	// from the request.
	recordTimeout = 5 * time.Second
)

// ExplanationService asks the configured provider for a three-word
// explanation and keeps an audit record of every answer.
type ExplanationService struct {
	provider llm.Provider
	label    string
	records  repository.ExplanationRepository
	logger   *slog.Logger
}

// NewExplanationService wires the service. records may be nil to skip the
// audit trail; an empty label falls back to DefaultProviderLabel.
func NewExplanationService(
	provider llm.Provider,
	label string,
	records repository.ExplanationRepository,
	logger *slog.Logger,
) *ExplanationService {
	if strings.TrimSpace(label) == "" {
		label = DefaultProviderLabel
	}
	return &ExplanationService{
		provider: provider,
		label:    label,
		records:  records,
		logger:   logger,
	}
}

// Explain returns a one-element list with the provider's answer.
//
// Validation happens before the provider is called: a blank term never costs
// an API request. Provider failures are logged with their cause and surface
// to the caller only as apperror.ErrUpstream. The answer is trimmed but not
// checked for being exactly three words.
func (s *ExplanationService) Explain(ctx context.Context, term string, mode prompt.Mode) ([]model.Explanation, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, apperror.ValidationFailed("term", "term is required")
	}
	if utf8.RuneCountInString(term) > MaxTermLength {
		return nil, apperror.ValidationFailed("term",
			fmt.Sprintf("term must be %d characters or less", MaxTermLength))
	}
	if !mode.Valid() {
		return nil, apperror.ValidationFailed("mode", fmt.Sprintf("unknown mode %q", mode))
	}

	start := time.Now()
	text, err := s.provider.Complete(ctx, prompt.Build(mode, term))
	if err != nil {
		s.logger.Error("explanation provider failed",
			slog.String("provider", s.provider.Name()),
			slog.String("term", term),
			slog.String("mode", string(mode)),
			slog.String("error", err.Error()),
		)
		return nil, apperror.UpstreamFailed("failed to generate explanation")
	}

	result := []model.Explanation{{
		Provider:    s.label,
		Explanation: strings.TrimSpace(text),
	}}

	s.logger.Info("explanation generated",
		slog.String("provider", s.provider.Name()),
		slog.String("term", term),
		slog.String("mode", string(mode)),
		slog.Duration("took", time.Since(start)),
	)

	s.record(ctx, term, result)
	return result, nil
}

// record writes the audit row. A failure here must not fail a request whose
// answer is already in hand, so it is only logged.
func (s *ExplanationService) record(ctx context.Context, term string, result []model.Explanation) {
	if s.records == nil {
		return
	}

	body, err := json.Marshal(result)
	if err != nil {
		s.logger.Error("encoding explanation record", slog.String("error", err.Error()))
		return
	}

	// The client may hang up right after the answer is ready; the record
	// should still be written.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()

	rec := &model.ExplanationRecord{Term: term, Responses: string(body)}
	if err := s.records.SaveExplanation(ctx, rec); err != nil {
		s.logger.Error("saving explanation record",
			slog.String("term", term),
			slog.String("error", err.Error()),
		)
	}
}
