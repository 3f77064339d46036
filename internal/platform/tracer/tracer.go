// Package tracer provides a lightweight tracing abstraction for ledger calls.
//
// Callers depend on the Tracer interface instead of OpenTelemetry directly,
// so adapters can be traced in production and run span-free in tests.
//
// Implementations:
//   - NoopTracer: for tests
//   - LedgerTracer: OpenTelemetry client spans for production
package tracer

import (
	"context"
	"time"
)

// Span represents an active trace span.
type Span interface {
	// End completes the span. A non-nil err marks the span as failed.
	// End must be called exactly once, typically via defer.
	End(err error)

	SetAttributes(attrs ...Attribute)

	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	// Start creates a new span with the given name and attributes.
	//
	//   ctx, span := t.Start(ctx, tracer.SpanPaymentTransferFrom,
	//       tracer.String(tracer.AttrFrom, payer.Hex()),
	//   )
	//   defer func() { span.End(err) }()
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute represents a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

func Float64(key string, value float64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Duration creates a duration attribute in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// Span names for ledger adapters.
const (
	SpanPaymentBalanceOf     = "ledger.payment.balance_of"
	SpanPaymentAllowance     = "ledger.payment.allowance"
	SpanPaymentTransferFrom  = "ledger.payment.transfer_from"
	SpanPaymentTransfer      = "ledger.payment.transfer"
	SpanCredentialMint       = "ledger.credential.mint"
	SpanCredentialOwnerOf    = "ledger.credential.owner_of"
	SpanCredentialBalanceOf  = "ledger.credential.balance_of"
	SpanCredentialTokenByIdx = "ledger.credential.token_of_owner_by_index"
)

// Attribute keys for ledger spans.
const (
	AttrOwner   = "owner"
	AttrSpender = "spender"
	AttrFrom    = "from"
	AttrTo      = "to"
	AttrAmount  = "amount"
	AttrPassID  = "pass.id"
	AttrIndex   = "index"
	AttrBalance = "balance"
	AttrOutcome = "ledger.outcome"
	AttrMode    = "ledger.mode"
	AttrChainID = "ledger.chain_id"
)

// Event names recorded on ledger spans.
const (
	EventTransferRejected = "transfer.rejected"
)
