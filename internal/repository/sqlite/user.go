package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/xid"

	"github.com/sakif/techmind/internal/apperror"
	"github.com/sakif/techmind/internal/model"
)

const userColumns = `id, github_id, username, email, avatar_url, access_token, created_at, updated_at`

// Upsert inserts or updates a user keyed by GitHub ID.
//
// INSERT ... ON CONFLICT(github_id) DO UPDATE keeps the existing row (and so
// its internal id and created_at) and only refreshes the profile fields.
// The candidate id generated here is simply discarded on conflict.
//
// SQLite doesn't tell us which branch ran, so the canonical row is read back
// afterwards to fill u.
func (db *DB) Upsert(ctx context.Context, u *model.User) error {
	now := db.timestamp()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(github_id) DO UPDATE SET
			username     = excluded.username,
			email        = excluded.email,
			avatar_url   = excluded.avatar_url,
			access_token = excluded.access_token,
			updated_at   = excluded.updated_at`,
		xid.New().String(),
		u.GitHubID,
		u.Username,
		u.Email,
		u.AvatarURL,
		u.AccessToken,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("sqlite: upserting user (githubID=%d): %w", u.GitHubID, err)
	}

	stored, err := db.GetUserByGitHubID(ctx, u.GitHubID)
	if err != nil {
		return err
	}
	*u = *stored
	return nil
}

// GetUserByID retrieves a user by internal id.
func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	u, err := scanUser(db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, err)
	}
	return u, nil
}

// GetUserByGitHubID retrieves a user by GitHub id.
func (db *DB) GetUserByGitHubID(ctx context.Context, githubID int64) (*model.User, error) {
	u, err := scanUser(db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE github_id = ?`, githubID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", fmt.Sprintf("github:%d", githubID))
		}
		return nil, fmt.Errorf("sqlite: getting user by github id %d: %w", githubID, err)
	}
	return u, nil
}

// scanUser reads one row selected with userColumns, in that order.
func scanUser(row *sql.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID,
		&u.GitHubID,
		&u.Username,
		&u.Email,
		&u.AvatarURL,
		&u.AccessToken,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
