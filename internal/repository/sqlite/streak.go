package sqlite

import (
	"context"
	"fmt"

	"github.com/rs/xid"

	"github.com/sakif/techmind/internal/model"
)

// IncrementStreak bumps the (userID, term) counter.
//
// ONE STATEMENT, NO RACE:
// A read-then-write ("SELECT count, then INSERT or UPDATE") lets two
// concurrent requests both see "no row" and both insert, or both read 3 and
// both write 4. The conditional upsert below is evaluated atomically by
// SQLite against the unique (user_id, term) index:
//   - no row yet  → INSERT with count 1
//   - row exists  → UPDATE count = count + 1, keeping the same id
func (db *DB) IncrementStreak(ctx context.Context, userID, term string) (*model.Streak, error) {
	now := db.timestamp()

	var s model.Streak
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO term_streaks (id, user_id, term, count, updated_at)
		 VALUES (?, ?, ?, 1, ?)
		 ON CONFLICT(user_id, term) DO UPDATE SET
			count      = term_streaks.count + 1,
			updated_at = excluded.updated_at`,
		xid.New().String(), userID, term, now,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: incrementing streak (user=%s term=%q): %w", userID, term, err)
	}

	err = db.conn.QueryRowContext(ctx,
		`SELECT id, user_id, term, count, updated_at
		 FROM term_streaks WHERE user_id = ? AND term = ?`,
		userID, term,
	).Scan(&s.ID, &s.UserID, &s.Term, &s.Count, &s.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("sqlite: reading streak (user=%s term=%q): %w", userID, term, err)
	}
	return &s, nil
}

// ListStreaks returns the user's streaks, most recently updated first.
func (db *DB) ListStreaks(ctx context.Context, userID string) ([]model.Streak, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, term, count, updated_at
		 FROM term_streaks
		 WHERE user_id = ?
		 ORDER BY updated_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing streaks for %s: %w", userID, err)
	}
	defer rows.Close()

	// Non-nil so an empty result encodes as [] rather than null.
	streaks := make([]model.Streak, 0)
	for rows.Next() {
		var s model.Streak
		if err := rows.Scan(&s.ID, &s.UserID, &s.Term, &s.Count, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning streak: %w", err)
		}
		streaks = append(streaks, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating streaks: %w", err)
	}
	return streaks, nil
}
