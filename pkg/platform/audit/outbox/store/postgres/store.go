package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"gatepass/pkg/platform/audit/outbox"
	txcontext "gatepass/pkg/platform/tx"
)

const maxBatch = 1000

// Store implements outbox.Store using PostgreSQL. Writes join the transaction
// carried in ctx when there is one.
type Store struct {
	db *sql.DB
}

// New creates a new PostgreSQL outbox store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Append adds a new entry to the outbox table.
func (s *Store) Append(ctx context.Context, entry *outbox.Entry) error {
	const query = `
		INSERT INTO outbox (id, aggregate_type, aggregate_id, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := txcontext.Pick(ctx, s.db).ExecContext(ctx, query,
		entry.ID, entry.AggregateType, entry.AggregateID, entry.EventType, json.RawMessage(entry.Payload), entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert outbox entry: %w", err)
	}
	return nil
}

// FetchUnprocessed returns up to limit entries that haven't been processed.
// Uses FOR UPDATE SKIP LOCKED so concurrent workers never block each other.
func (s *Store) FetchUnprocessed(ctx context.Context, limit int) ([]*outbox.Entry, error) {
	if limit <= 0 {
		return nil, nil
	}
	limit = min(limit, maxBatch)

	const query = `
		SELECT id, aggregate_type, aggregate_id, event_type, payload, created_at, processed_at
		FROM outbox
		WHERE processed_at IS NULL
		ORDER BY created_at ASC
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`
	rows, err := txcontext.Pick(ctx, s.db).QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch unprocessed entries: %w", err)
	}
	defer rows.Close()

	var entries []*outbox.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbox entries: %w", err)
	}
	return entries, nil
}

// MarkProcessed marks an entry as successfully published.
func (s *Store) MarkProcessed(ctx context.Context, id uuid.UUID, processedAt time.Time) error {
	const query = `UPDATE outbox SET processed_at = $2 WHERE id = $1 AND processed_at IS NULL`
	result, err := txcontext.Pick(ctx, s.db).ExecContext(ctx, query, id, processedAt)
	if err != nil {
		return fmt.Errorf("mark outbox entry processed: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("outbox entry not found or already processed: %s", id)
	}
	return nil
}

// CountPending returns the number of unprocessed entries.
func (s *Store) CountPending(ctx context.Context) (int64, error) {
	var count int64
	err := txcontext.Pick(ctx, s.db).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM outbox WHERE processed_at IS NULL`,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count pending entries: %w", err)
	}
	return count, nil
}

// OldestPending returns the created_at of the oldest pending entry.
func (s *Store) OldestPending(ctx context.Context) (time.Time, error) {
	var oldest sql.NullTime
	err := txcontext.Pick(ctx, s.db).QueryRowContext(ctx,
		`SELECT MIN(created_at) FROM outbox WHERE processed_at IS NULL`,
	).Scan(&oldest)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, fmt.Errorf("oldest pending entry: %w", err)
	}
	if !oldest.Valid {
		return time.Time{}, nil
	}
	return oldest.Time, nil
}

// DeleteProcessedBefore removes old processed entries.
func (s *Store) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	result, err := txcontext.Pick(ctx, s.db).ExecContext(ctx,
		`DELETE FROM outbox WHERE processed_at IS NOT NULL AND processed_at < $1`, before,
	)
	if err != nil {
		return 0, fmt.Errorf("delete processed entries: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}
	return rowsAffected, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*outbox.Entry, error) {
	var (
		entry       outbox.Entry
		processedAt sql.NullTime
	)
	if err := row.Scan(
		&entry.ID, &entry.AggregateType, &entry.AggregateID, &entry.EventType,
		&entry.Payload, &entry.CreatedAt, &processedAt,
	); err != nil {
		return nil, fmt.Errorf("scan outbox entry: %w", err)
	}
	if processedAt.Valid {
		entry.ProcessedAt = &processedAt.Time
	}
	return &entry, nil
}
