package audit

import (
	"context"
	"log/slog"

	"gatepass/pkg/requestcontext"
)

// Emitter is the interface for audit event emission.
// Satisfied by publisher.Publisher.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}

// Logger writes an audit event to the structured log and, when an emitter is
// configured, to the audit sink.
type Logger struct {
	textLogger *slog.Logger
	emitter    Emitter
}

// NewLogger creates an audit logger. Either argument may be nil.
func NewLogger(textLogger *slog.Logger, emitter Emitter) *Logger {
	return &Logger{
		textLogger: textLogger,
		emitter:    emitter,
	}
}

// Log records ev under action. RequestID and Timestamp are filled from ctx
// when unset. The returned error is the emitter's; text logging never fails.
//
//	err := l.Log(ctx, audit.EventPassIssued, audit.Event{Actor: payer.Hex(), PassID: 7})
func (l *Logger) Log(ctx context.Context, action AuditEvent, ev Event) error {
	ev.Action = string(action)
	if ev.RequestID == "" {
		ev.RequestID = requestcontext.RequestID(ctx)
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = requestcontext.Now(ctx)
	}

	l.logToText(ctx, ev)
	return l.emitToAudit(ctx, ev)
}

func (l *Logger) logToText(ctx context.Context, ev Event) {
	if l == nil || l.textLogger == nil {
		return
	}
	args := []any{"event", ev.Action, "log_type", "audit"}
	if ev.Actor != "" {
		args = append(args, "actor", ev.Actor)
	}
	if ev.Subject != "" {
		args = append(args, "subject", ev.Subject)
	}
	if ev.PassID != 0 {
		args = append(args, "pass_id", ev.PassID)
	}
	if ev.Amount != "" {
		args = append(args, "amount", ev.Amount)
	}
	if ev.Reason != "" {
		args = append(args, "reason", ev.Reason)
	}
	if ev.RequestID != "" {
		args = append(args, "request_id", ev.RequestID)
	}
	l.textLogger.InfoContext(ctx, ev.Action, args...)
}

func (l *Logger) emitToAudit(ctx context.Context, ev Event) error {
	if l == nil || l.emitter == nil {
		return nil
	}
	err := l.emitter.Emit(ctx, ev)
	if err != nil && l.textLogger != nil {
		l.textLogger.ErrorContext(ctx, "failed to emit audit event",
			"error", err,
			"event", ev.Action,
		)
	}
	return err
}
