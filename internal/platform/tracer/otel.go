package tracer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"gatepass/internal/sentinel"
)

// InstrumentationName is the tracer name registered with the provider.
const InstrumentationName = "gatepass/ledger"

// LedgerTracer opens client spans around calls to the payment and credential
// ledgers. Every span carries the ledger-wide attributes given at construction.
type LedgerTracer struct {
	provider trace.TracerProvider
	tracer   trace.Tracer
	common   []attribute.KeyValue
}

type LedgerOption func(*LedgerTracer)

// WithTracerProvider replaces the global provider.
func WithTracerProvider(tp trace.TracerProvider) LedgerOption {
	return func(t *LedgerTracer) {
		t.provider = tp
	}
}

// WithLedgerAttributes tags every span, e.g. with the ledger mode and chain id.
func WithLedgerAttributes(attrs ...Attribute) LedgerOption {
	return func(t *LedgerTracer) {
		t.common = append(t.common, toKeyValues(attrs)...)
	}
}

func NewOTel(opts ...LedgerOption) *LedgerTracer {
	t := &LedgerTracer{}
	for _, opt := range opts {
		opt(t)
	}
	if t.provider == nil {
		t.provider = otel.GetTracerProvider()
	}
	t.tracer = t.provider.Tracer(InstrumentationName)
	return t
}

func (t *LedgerTracer) Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span) {
	kvs := make([]attribute.KeyValue, 0, len(t.common)+len(attrs))
	kvs = append(kvs, t.common...)
	kvs = append(kvs, toKeyValues(attrs)...)
	ctx, span := t.tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(kvs...),
	)
	return ctx, ledgerSpan{span: span}
}

type ledgerSpan struct {
	span trace.Span
}

// End marks the span failed unless the ledger answered with a rejection,
// which is tagged as an outcome and leaves the status unset.
func (s ledgerSpan) End(err error) {
	switch {
	case err == nil:
	case errors.Is(err, sentinel.ErrTransferRejected), errors.Is(err, sentinel.ErrAlreadyUsed):
		s.span.SetAttributes(attribute.String(AttrOutcome, "rejected"))
	default:
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, err.Error())
	}
	s.span.End()
}

func (s ledgerSpan) SetAttributes(attrs ...Attribute) {
	s.span.SetAttributes(toKeyValues(attrs)...)
}

func (s ledgerSpan) AddEvent(name string, attrs ...Attribute) {
	s.span.AddEvent(name, trace.WithAttributes(toKeyValues(attrs)...))
}

func toKeyValues(attrs []Attribute) []attribute.KeyValue {
	if len(attrs) == 0 {
		return nil
	}
	out := make([]attribute.KeyValue, 0, len(attrs))
	for _, a := range attrs {
		if kv, ok := toKeyValue(a); ok {
			out = append(out, kv)
		}
	}
	return out
}

// toKeyValue drops values it cannot represent. Amounts and addresses arrive as
// strings or Stringers; uint64 above MaxInt64 is kept as its decimal string.
func toKeyValue(a Attribute) (attribute.KeyValue, bool) {
	switch v := a.Value.(type) {
	case string:
		return attribute.String(a.Key, v), true
	case bool:
		return attribute.Bool(a.Key, v), true
	case int:
		return attribute.Int(a.Key, v), true
	case int64:
		return attribute.Int64(a.Key, v), true
	case uint64:
		if v > math.MaxInt64 {
			return attribute.String(a.Key, strconv.FormatUint(v, 10)), true
		}
		return attribute.Int64(a.Key, int64(v)), true
	case float64:
		return attribute.Float64(a.Key, v), true
	case fmt.Stringer:
		return attribute.String(a.Key, v.String()), true
	}
	return attribute.KeyValue{}, false
}

var (
	_ Tracer = (*LedgerTracer)(nil)
	_ Span   = ledgerSpan{}
)
