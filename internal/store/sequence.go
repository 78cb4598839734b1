package store

import (
	"context"
	"database/sql"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

// nextSequence allocates the next number in the order shared by job and
// LLM events. The dashboard and the backend may write to the same file, so
// the counter lives in the database and is bumped inside a transaction.
func nextSequence(ctx context.Context, db *sql.DB) (int64, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	b := builder()
	// Update first so the write lock is held before reading.
	query, args := b.Update("event_sequence").Add("next_val", 1).Where(entsql.EQ("id", 1)).Query()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return 0, fmt.Errorf("bump sequence: %w", err)
	}

	query, args = b.Select("next_val").From(b.Table("event_sequence")).Where(entsql.EQ("id", 1)).Query()
	var next int64
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&next); err != nil {
		return 0, fmt.Errorf("read sequence: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit sequence: %w", err)
	}
	return next - 1, nil
}
