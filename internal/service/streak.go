package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/techmind/internal/apperror"
	"github.com/sakif/techmind/internal/model"
	"github.com/sakif/techmind/internal/repository"
)

// StreakService counts how often each signed-in user asks about a term.
type StreakService struct {
	repo   repository.StreakRepository
	logger *slog.Logger
}

func NewStreakService(repo repository.StreakRepository, logger *slog.Logger) *StreakService {
	return &StreakService{repo: repo, logger: logger}
}

// NormalizeTerm is the streak key for a term: trimmed and lowercased, so
// "Kubernetes" and " kubernetes " count as the same term.
func NormalizeTerm(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}

// RecordHit adds one request for term to the user's streak. The first hit
// creates the streak with count 1.
func (s *StreakService) RecordHit(ctx context.Context, userID, term string) (*model.Streak, error) {
	if userID == "" {
		return nil, apperror.Unauthorized("authentication required")
	}
	key := NormalizeTerm(term)
	if key == "" {
		return nil, apperror.ValidationFailed("term", "term is required")
	}

	streak, err := s.repo.IncrementStreak(ctx, userID, key)
	if err != nil {
		return nil, fmt.Errorf("recording streak: %w", err)
	}

	s.logger.Debug("streak recorded",
		slog.String("userID", userID),
		slog.String("term", key),
		slog.Int("count", streak.Count),
	)
	return streak, nil
}

// ListStreaks returns the user's streaks, most recently updated first. A
// user with no streaks gets an empty, non-nil slice.
func (s *StreakService) ListStreaks(ctx context.Context, userID string) ([]model.Streak, error) {
	if userID == "" {
		return nil, apperror.Unauthorized("authentication required")
	}

	streaks, err := s.repo.ListStreaks(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing streaks: %w", err)
	}
	if streaks == nil {
		streaks = []model.Streak{}
	}
	return streaks, nil
}
