package audit

import (
	"time"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out. Accounts are hex
// strings and amounts are base-10 strings so the JSON form is lossless.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	Actor     string    `json:"actor,omitempty"`   // account that triggered the action
	Subject   string    `json:"subject,omitempty"` // account the action applies to
	PassID    uint64    `json:"pass_id,omitempty"`
	Amount    string    `json:"amount,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
}

type AuditEvent string

const (
	EventPassIssued        AuditEvent = "pass_issued"
	EventPassAdminIssued   AuditEvent = "pass_admin_issued"
	EventPaymentRefunded   AuditEvent = "payment_refunded"
	EventRefundFailed      AuditEvent = "pass_refund_failed"
	EventPassOrphaned      AuditEvent = "pass_orphaned"
	EventPassCostSet       AuditEvent = "pass_cost_set"
	EventPassDurationSet   AuditEvent = "pass_duration_set"
	EventMaxSupplySet      AuditEvent = "max_supply_set"
	EventMetadataBaseSet   AuditEvent = "metadata_base_set"
	EventAdminTransferred  AuditEvent = "admin_transferred"
	EventTreasuryWithdrawn AuditEvent = "treasury_withdrawn"
	EventAdminCallRejected AuditEvent = "admin_call_rejected"
)

// AggregateType groups events for downstream partitioning.
func (e AuditEvent) AggregateType() string {
	switch e {
	case EventPassIssued, EventPassAdminIssued, EventPaymentRefunded, EventRefundFailed, EventPassOrphaned:
		return "pass"
	case EventTreasuryWithdrawn:
		return "treasury"
	default:
		return "config"
	}
}
