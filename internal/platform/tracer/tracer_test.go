package tracer_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/embedded"
	"go.opentelemetry.io/otel/trace/noop"

	"gatepass/internal/platform/tracer"
	"gatepass/internal/sentinel"
)

func TestNoopTracer_Start(t *testing.T) {
	tr := tracer.NewNoop()
	ctx := context.Background()

	newCtx, span := tr.Start(ctx, tracer.SpanCredentialMint,
		tracer.Int64(tracer.AttrPassID, 7),
		tracer.Bool("flag", true),
	)

	assert.Equal(t, ctx, newCtx)
	require.NotNil(t, span)

	span.SetAttributes(tracer.String(tracer.AttrTo, "0xabc"))
	span.AddEvent(tracer.EventTransferRejected)
	span.End(errors.New("reverted"))
}

// recordingProvider captures what the ledger tracer hands to OpenTelemetry.
type recordingProvider struct {
	embedded.TracerProvider
	tracer *recordingTracer
}

func (p *recordingProvider) Tracer(name string, _ ...trace.TracerOption) trace.Tracer {
	p.tracer.name = name
	return p.tracer
}

type recordingTracer struct {
	embedded.Tracer
	name  string
	spans []*recordingSpan
}

func (r *recordingTracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	cfg := trace.NewSpanStartConfig(opts...)
	s := &recordingSpan{name: name, kind: cfg.SpanKind(), attrs: map[attribute.Key]attribute.Value{}}
	for _, kv := range cfg.Attributes() {
		s.attrs[kv.Key] = kv.Value
	}
	r.spans = append(r.spans, s)
	return ctx, s
}

type recordingSpan struct {
	noop.Span
	name   string
	kind   trace.SpanKind
	attrs  map[attribute.Key]attribute.Value
	status codes.Code
	errs   []error
	ended  bool
}

func (s *recordingSpan) SetAttributes(kvs ...attribute.KeyValue) {
	for _, kv := range kvs {
		s.attrs[kv.Key] = kv.Value
	}
}

func (s *recordingSpan) SetStatus(code codes.Code, _ string) {
	s.status = code
}

func (s *recordingSpan) RecordError(err error, _ ...trace.EventOption) {
	s.errs = append(s.errs, err)
}

func (s *recordingSpan) End(...trace.SpanEndOption) {
	s.ended = true
}

func newRecorded(opts ...tracer.LedgerOption) (*tracer.LedgerTracer, *recordingTracer) {
	rec := &recordingTracer{}
	opts = append(opts, tracer.WithTracerProvider(&recordingProvider{tracer: rec}))
	return tracer.NewOTel(opts...), rec
}

func TestLedgerTracer_ClientSpansCarryLedgerAttributes(t *testing.T) {
	tr, rec := newRecorded(tracer.WithLedgerAttributes(
		tracer.String(tracer.AttrMode, "evm"),
		tracer.Int64(tracer.AttrChainID, 31337),
	))
	assert.Equal(t, tracer.InstrumentationName, rec.name)

	_, span := tr.Start(context.Background(), tracer.SpanPaymentTransfer,
		tracer.String(tracer.AttrAmount, "4990000"),
		tracer.Attribute{Key: tracer.AttrPassID, Value: uint64(7)},
		tracer.Attribute{Key: "skipped", Value: struct{}{}},
	)
	span.SetAttributes(tracer.Attribute{Key: tracer.AttrTo, Value: stringer("0xc0de")})
	span.End(nil)

	require.Len(t, rec.spans, 1)
	got := rec.spans[0]
	assert.Equal(t, trace.SpanKindClient, got.kind)
	assert.Equal(t, "evm", got.attrs[tracer.AttrMode].AsString())
	assert.Equal(t, int64(31337), got.attrs[tracer.AttrChainID].AsInt64())
	assert.Equal(t, int64(7), got.attrs[tracer.AttrPassID].AsInt64())
	assert.Equal(t, "0xc0de", got.attrs[tracer.AttrTo].AsString())
	assert.NotContains(t, got.attrs, attribute.Key("skipped"))
	assert.Equal(t, codes.Unset, got.status)
	assert.True(t, got.ended)
}

func TestLedgerTracer_LargeUintKeptAsString(t *testing.T) {
	tr, rec := newRecorded()
	_, span := tr.Start(context.Background(), tracer.SpanCredentialMint,
		tracer.Attribute{Key: tracer.AttrPassID, Value: uint64(math.MaxUint64)},
	)
	span.End(nil)

	assert.Equal(t, "18446744073709551615", rec.spans[0].attrs[tracer.AttrPassID].AsString())
}

func TestLedgerTracer_EndStatus(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		status   codes.Code
		recorded int
		outcome  string
	}{
		{"success", nil, codes.Unset, 0, ""},
		{"rejection is an outcome", fmt.Errorf("transfer: %w", sentinel.ErrTransferRejected), codes.Unset, 0, "rejected"},
		{"minted id is an outcome", sentinel.ErrAlreadyUsed, codes.Unset, 0, "rejected"},
		{"node failure", fmt.Errorf("dial: %w", sentinel.ErrUnavailable), codes.Error, 1, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tr, rec := newRecorded()
			_, span := tr.Start(context.Background(), tracer.SpanPaymentTransferFrom)
			span.End(tc.err)

			got := rec.spans[0]
			assert.Equal(t, tc.status, got.status)
			assert.Len(t, got.errs, tc.recorded)
			assert.Equal(t, tc.outcome, got.attrs[tracer.AttrOutcome].AsString())
		})
	}
}

func TestNewOTel_DefaultsToGlobalProvider(t *testing.T) {
	tr := tracer.NewOTel()
	_, span := tr.Start(context.Background(), tracer.SpanCredentialOwnerOf)
	span.AddEvent("done", tracer.Duration("latency", 0))
	span.End(errors.New("boom"))
}

type stringer string

func (s stringer) String() string { return string(s) }

func TestAttributeConstructors(t *testing.T) {
	t.Run("String", func(t *testing.T) {
		attr := tracer.String("key", "value")
		assert.Equal(t, "key", attr.Key)
		assert.Equal(t, "value", attr.Value)
	})

	t.Run("Int64", func(t *testing.T) {
		attr := tracer.Int64("count", 42)
		assert.Equal(t, int64(42), attr.Value)
	})

	t.Run("Duration", func(t *testing.T) {
		attr := tracer.Duration("latency", 150*1e6)
		assert.Equal(t, "latency", attr.Key)
		assert.Equal(t, int64(150), attr.Value)
	})
}
