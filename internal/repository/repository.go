// Package repository defines the storage interfaces the service layer
// depends on.
//
// Two backends implement them: repository/sqlite (database/sql +
// modernc.org/sqlite, the default) and repository/postgres (gorm). The
// service layer never knows which one it talks to.
package repository

import (
	"context"

	"github.com/sakif/techmind/internal/model"
)

// UserRepository stores GitHub-authenticated users.
type UserRepository interface {
	// Upsert inserts the user, or updates username/email/avatar/credential
	// of the existing row with the same GitHubID. Either way u is filled
	// with the stored row (ID, timestamps).
	Upsert(ctx context.Context, u *model.User) error
	// GetUserByID returns apperror.ErrNotFound when no such user exists.
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	// GetUserByGitHubID returns apperror.ErrNotFound when no such user exists.
	GetUserByGitHubID(ctx context.Context, githubID int64) (*model.User, error)
}

// StreakRepository counts per-user term requests.
type StreakRepository interface {
	// IncrementStreak creates the (userID, term) row with count 1, or adds 1
	// to the existing one, in a single statement. term must already be
	// normalized (lowercased, trimmed).
	IncrementStreak(ctx context.Context, userID, term string) (*model.Streak, error)
	// ListStreaks returns every streak of the user, most recently updated
	// first. Never nil.
	ListStreaks(ctx context.Context, userID string) ([]model.Streak, error)
}

// ExplanationRepository keeps the write-only explanation audit trail.
type ExplanationRepository interface {
	// SaveExplanation assigns rec.ID and rec.CreatedAt and stores the row.
	SaveExplanation(ctx context.Context, rec *model.ExplanationRecord) error
}

// Store is everything a backend provides.
type Store interface {
	UserRepository
	StreakRepository
	ExplanationRepository

	// Ping checks the database connection.
	Ping(ctx context.Context) error
	Close() error
}
