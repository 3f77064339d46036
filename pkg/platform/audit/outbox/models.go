package outbox

import (
	"time"

	"github.com/google/uuid"
)

// Entry is a pending audit event in the outbox table. It is written in the
// same transaction as the state change it describes and published later.
type Entry struct {
	ID            uuid.UUID
	AggregateType string     // "pass", "config" or "treasury"
	AggregateID   string     // pass ID, or the subject account for non-pass events
	EventType     string     // audit action, e.g. "pass_issued"
	Payload       []byte     // JSON-encoded audit.Event
	CreatedAt     time.Time
	ProcessedAt   *time.Time // nil until published to Kafka
}

// IsPending returns true if this entry has not been processed yet.
func (e *Entry) IsPending() bool {
	return e.ProcessedAt == nil
}

// NewEntry creates a new outbox entry with a generated UUID.
func NewEntry(aggregateType, aggregateID, eventType string, payload []byte, createdAt time.Time) *Entry {
	return &Entry{
		ID:            uuid.New(),
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Payload:       payload,
		CreatedAt:     createdAt,
	}
}
