package sqlite

import (
	"context"
	"fmt"

	"github.com/rs/xid"

	"github.com/sakif/techmind/internal/model"
)

// SaveExplanation appends an audit row. Rows are never read back by the API.
func (db *DB) SaveExplanation(ctx context.Context, rec *model.ExplanationRecord) error {
	rec.ID = xid.New().String()
	rec.CreatedAt = db.timestamp()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO explanations (id, term, responses, created_at) VALUES (?, ?, ?, ?)`,
		rec.ID, rec.Term, rec.Responses, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: saving explanation for %q: %w", rec.Term, err)
	}
	return nil
}
