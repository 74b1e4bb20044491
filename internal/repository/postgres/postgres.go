// Package postgres implements the repository interfaces on PostgreSQL
// through gorm. It is selected with DB_DRIVER=postgres.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/sakif/techmind/internal/apperror"
	"github.com/sakif/techmind/internal/model"
	"github.com/sakif/techmind/internal/repository"
)

var _ repository.Store = (*Store)(nil)

// Store implements repository.Store using gorm + Postgres.
type Store struct {
	db  *gorm.DB
	now func() time.Time
}

// New opens the database, sizes the pool and runs auto-migrations.
func New(dsn string) (*Store, error) {
	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("postgres: opening database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("postgres: getting sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&userRow{}, &streakRow{}, &explanationRow{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("postgres: auto migrate: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) timestamp() time.Time { return s.now().UTC() }

// Ping checks the connection; used by GET /healthz.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the underlying pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Upsert inserts or refreshes the user keyed by github_id, then reads the
// stored row back so u carries the surviving id and created_at.
func (s *Store) Upsert(ctx context.Context, u *model.User) error {
	now := s.timestamp()
	row := userRow{
		ID:          xid.New().String(),
		GitHubID:    u.GitHubID,
		Username:    u.Username,
		Email:       u.Email,
		AvatarURL:   u.AvatarURL,
		AccessToken: u.AccessToken,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "github_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"username", "email", "avatar_url", "access_token", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("postgres: upserting user (githubID=%d): %w", u.GitHubID, err)
	}

	stored, err := s.GetUserByGitHubID(ctx, u.GitHubID)
	if err != nil {
		return err
	}
	*u = *stored
	return nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	var row userRow
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("postgres: getting user %s: %w", id, err)
	}
	u := row.toModel()
	return &u, nil
}

func (s *Store) GetUserByGitHubID(ctx context.Context, githubID int64) (*model.User, error) {
	var row userRow
	if err := s.db.WithContext(ctx).First(&row, "github_id = ?", githubID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user", fmt.Sprintf("github:%d", githubID))
		}
		return nil, fmt.Errorf("postgres: getting user by github id %d: %w", githubID, err)
	}
	u := row.toModel()
	return &u, nil
}

// IncrementStreak is one INSERT ... ON CONFLICT (user_id, term) DO UPDATE,
// so concurrent hits on the same term never lose a count.
func (s *Store) IncrementStreak(ctx context.Context, userID, term string) (*model.Streak, error) {
	now := s.timestamp()
	row := streakRow{
		ID:        xid.New().String(),
		UserID:    userID,
		Term:      term,
		Count:     1,
		UpdatedAt: now,
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "term"}},
		DoUpdates: clause.Assignments(map[string]any{
			"count":      gorm.Expr("term_streaks.count + 1"),
			"updated_at": now,
		}),
	}).Create(&row).Error
	if err != nil {
		return nil, fmt.Errorf("postgres: incrementing streak (user=%s term=%q): %w", userID, term, err)
	}

	var stored streakRow
	if err := s.db.WithContext(ctx).First(&stored, "user_id = ? AND term = ?", userID, term).Error; err != nil {
		return nil, fmt.Errorf("postgres: reading streak (user=%s term=%q): %w", userID, term, err)
	}
	st := stored.toModel()
	return &st, nil
}

func (s *Store) ListStreaks(ctx context.Context, userID string) ([]model.Streak, error) {
	var rows []streakRow
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Order("id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("postgres: listing streaks for %s: %w", userID, err)
	}

	res := make([]model.Streak, 0, len(rows))
	for _, r := range rows {
		res = append(res, r.toModel())
	}
	return res, nil
}

func (s *Store) SaveExplanation(ctx context.Context, rec *model.ExplanationRecord) error {
	rec.ID = xid.New().String()
	rec.CreatedAt = s.timestamp()

	row := explanationRow{ID: rec.ID, Term: rec.Term, Responses: rec.Responses, CreatedAt: rec.CreatedAt}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("postgres: saving explanation for %q: %w", rec.Term, err)
	}
	return nil
}
