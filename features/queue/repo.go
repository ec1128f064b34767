package queue

import (
	"context"
	"database/sql"
)

type Repository interface {
	FetchPending(ctx context.Context, limit int) ([]Item, error)
	MarkProcessed(ctx context.Context, id int64) error
	RecordFailure(ctx context.Context, id int64, reason string) error
	Enqueue(ctx context.Context, item *Item) error
	Stats(ctx context.Context) (Stats, error)
}

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

// FetchPending returns up to limit unprocessed items, oldest enqueued first.
// There is no claim or skip-lock here: the single drain worker is the only
// consumer, so plain ordering is the contract.
func (r *PostgresRepo) FetchPending(ctx context.Context, limit int) ([]Item, error) {
	query := `
		SELECT id, reference, document_id, content_type, action, payload, enqueued_at, processed_at, failure_count, last_error
		FROM ingest_queue
		WHERE processed_at IS NULL
		ORDER BY enqueued_at ASC
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.Reference, &it.DocumentID, &it.ContentType, &it.Action,
			&it.Payload, &it.EnqueuedAt, &it.ProcessedAt, &it.FailureCount, &it.LastError); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *PostgresRepo) MarkProcessed(ctx context.Context, id int64) error {
	query := `UPDATE ingest_queue SET processed_at = NOW() WHERE id = $1 AND processed_at IS NULL`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

// RecordFailure bumps the failure counter and stores the last error. The
// item stays pending and will be re-fetched on the next cycle.
func (r *PostgresRepo) RecordFailure(ctx context.Context, id int64, reason string) error {
	query := `UPDATE ingest_queue SET failure_count = failure_count + 1, last_error = $2 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, reason)
	return err
}

func (r *PostgresRepo) Enqueue(ctx context.Context, item *Item) error {
	query := `
		INSERT INTO ingest_queue (reference, document_id, content_type, action, payload)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, enqueued_at
	`
	return r.db.QueryRowContext(ctx, query,
		item.Reference, item.DocumentID, item.ContentType, item.Action, item.Payload).
		Scan(&item.ID, &item.EnqueuedAt)
}

func (r *PostgresRepo) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	query := `
		SELECT
			COUNT(*) FILTER (WHERE processed_at IS NULL),
			COUNT(*) FILTER (WHERE processed_at IS NOT NULL),
			COUNT(*) FILTER (WHERE processed_at IS NULL AND failure_count > 0)
		FROM ingest_queue
	`
	err := r.db.QueryRowContext(ctx, query).Scan(&s.Pending, &s.Processed, &s.Failing)
	return s, err
}
