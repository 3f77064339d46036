package audit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"gatepass/pkg/requestcontext"
)

type recordingEmitter struct {
	events []Event
	err    error
}

func (m *recordingEmitter) Emit(_ context.Context, event Event) error {
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, event)
	return nil
}

// LoggerSuite covers context enrichment and emitter failure handling.
type LoggerSuite struct {
	suite.Suite
	emitter *recordingEmitter
	logger  *Logger
}

func TestLoggerSuite(t *testing.T) {
	suite.Run(t, new(LoggerSuite))
}

func (s *LoggerSuite) SetupTest() {
	s.emitter = &recordingEmitter{}
	s.logger = NewLogger(slog.New(slog.NewTextHandler(io.Discard, nil)), s.emitter)
}

func (s *LoggerSuite) TestLogEnrichesFromContext() {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	ctx := requestcontext.WithRequestID(context.Background(), "req-12345")
	ctx = requestcontext.WithTime(ctx, at)

	s.Require().NoError(s.logger.Log(ctx, EventPassIssued, Event{Actor: "0xabc", PassID: 3}))

	s.Require().Len(s.emitter.events, 1)
	ev := s.emitter.events[0]
	s.Equal("pass_issued", ev.Action)
	s.Equal("req-12345", ev.RequestID)
	s.Equal(at, ev.Timestamp)
	s.Equal(uint64(3), ev.PassID)
}

func (s *LoggerSuite) TestExplicitFieldsWin() {
	at := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithRequestID(context.Background(), "from-ctx")

	s.Require().NoError(s.logger.Log(ctx, EventPassCostSet, Event{RequestID: "explicit", Timestamp: at}))

	s.Equal("explicit", s.emitter.events[0].RequestID)
	s.Equal(at, s.emitter.events[0].Timestamp)
}

func (s *LoggerSuite) TestEmitterErrorReturned() {
	s.emitter.err = errors.New("sink down")
	err := s.logger.Log(context.Background(), EventTreasuryWithdrawn, Event{Amount: "10"})
	s.EqualError(err, "sink down")
}

func (s *LoggerSuite) TestNilEmitterIsTextOnly() {
	l := NewLogger(slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	s.NoError(l.Log(context.Background(), EventAdminTransferred, Event{}))
}

func (s *LoggerSuite) TestAggregateType() {
	s.Equal("pass", EventPassIssued.AggregateType())
	s.Equal("pass", EventRefundFailed.AggregateType())
	s.Equal("pass", EventPassOrphaned.AggregateType())
	s.Equal("treasury", EventTreasuryWithdrawn.AggregateType())
	s.Equal("config", EventMaxSupplySet.AggregateType())
	s.Equal("config", AuditEvent("unknown").AggregateType())
}
