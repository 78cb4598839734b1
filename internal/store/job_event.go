package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// eventRepo implements EventRepo with ent's SQL builder.
type eventRepo struct {
	db *sql.DB
}

func builder() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.SQLite)
}

// where turns the common QueryOpts filters into a predicate list. label is
// the column Label matches against.
func where(opts QueryOpts, label string) []*entsql.Predicate {
	var preds []*entsql.Predicate
	if opts.Label != "" {
		preds = append(preds, entsql.EQ(label, opts.Label))
	}
	if opts.After > 0 {
		preds = append(preds, entsql.GT("sequence", opts.After))
	}
	if opts.Before > 0 {
		preds = append(preds, entsql.LT("sequence", opts.Before))
	}
	if !opts.From.IsZero() {
		preds = append(preds, entsql.GTE("timestamp", opts.From.UnixMilli()))
	}
	if !opts.To.IsZero() {
		preds = append(preds, entsql.LTE("timestamp", opts.To.UnixMilli()))
	}
	return preds
}

func applyOpts(sel *entsql.Selector, opts QueryOpts, label string) *entsql.Selector {
	if preds := where(opts, label); len(preds) > 0 {
		sel = sel.Where(entsql.And(preds...))
	}
	sel = sel.OrderBy(entsql.Desc("sequence"))
	if opts.Limit > 0 {
		sel = sel.Limit(opts.Limit)
	}
	return sel
}

func (r *eventRepo) AppendJobEvent(ctx context.Context, data JobEventData) error {
	seqNum, err := nextSequence(ctx, r.db)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	query, args := builder().Insert("job_events").
		Columns("sequence", "timestamp", "job_key", "kind", "outcome", "elapsed_ms", "error_message").
		Values(seqNum, time.Now().UnixMilli(), data.Key, data.Kind, data.Outcome, data.ElapsedMs, data.ErrorMessage).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save job event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryJobEvents(ctx context.Context, opts QueryOpts) ([]JobEvent, error) {
	b := builder()
	sel := b.Select("id", "sequence", "timestamp", "job_key", "kind", "outcome", "elapsed_ms", "error_message").
		From(b.Table("job_events"))
	query, args := applyOpts(sel, opts, "kind").Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query job events: %w", err)
	}
	defer rows.Close()

	var events []JobEvent
	for rows.Next() {
		var (
			e  JobEvent
			ts int64
		)
		if err := rows.Scan(&e.ID, &e.Sequence, &ts, &e.Key, &e.Kind, &e.Outcome, &e.ElapsedMs, &e.ErrorMessage); err != nil {
			return nil, fmt.Errorf("scan job event: %w", err)
		}
		e.Timestamp = time.UnixMilli(ts)
		events = append(events, e)
	}
	return events, rows.Err()
}
