package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	audit "gatepass/pkg/platform/audit"
)

// Store defines the outbox persistence operations.
// Implementations must be safe for concurrent use.
type Store interface {
	// Append adds a new entry. Called inside the business transaction.
	Append(ctx context.Context, entry *Entry) error

	// FetchUnprocessed returns up to limit pending entries, oldest first.
	// SQL implementations lock rows with FOR UPDATE SKIP LOCKED.
	FetchUnprocessed(ctx context.Context, limit int) ([]*Entry, error)

	MarkProcessed(ctx context.Context, id uuid.UUID, processedAt time.Time) error

	CountPending(ctx context.Context) (int64, error)

	// OldestPending returns the creation time of the oldest pending entry,
	// or the zero time when nothing is pending.
	OldestPending(ctx context.Context) (time.Time, error)

	// DeleteProcessedBefore removes processed entries older than before.
	DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
}

// AuditStore adapts an outbox Store to audit.Store, so every emitted audit
// event becomes an outbox entry inside the caller's transaction.
type AuditStore struct {
	store Store
}

func NewAuditStore(store Store) *AuditStore {
	return &AuditStore{store: store}
}

func (a *AuditStore) Append(ctx context.Context, event audit.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	action := audit.AuditEvent(event.Action)
	entry := NewEntry(action.AggregateType(), aggregateID(event), event.Action, payload, event.Timestamp)
	return a.store.Append(ctx, entry)
}

func aggregateID(event audit.Event) string {
	if event.PassID != 0 {
		return strconv.FormatUint(event.PassID, 10)
	}
	if event.Subject != "" {
		return event.Subject
	}
	return event.Actor
}
