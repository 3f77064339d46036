package service

import (
	"context"
	"sync"
	"time"

	dErrors "gatepass/pkg/domain-errors"
)

// StoreTx is the single-writer boundary around configuration, counter, and
// expiry state. Implementations wrap a database transaction or an in-memory lock.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

const defaultTxTimeout = 5 * time.Second

// Stager is implemented by in-memory stores that buffer a transaction's writes.
// Stage returns the context the body writes through and a commit func that is
// only called when the body succeeds.
type Stager interface {
	Stage(ctx context.Context) (context.Context, func())
}

// inMemoryStoreTx serializes mutations for in-memory stores.
type inMemoryStoreTx struct {
	mu      sync.Mutex
	timeout time.Duration
	stagers []Stager
}

// NewInMemoryTx returns a process-wide mutex boundary for in-memory stores.
// Writes to the given stagers are discarded when the body fails.
func NewInMemoryTx(stagers ...Stager) StoreTx {
	return &inMemoryStoreTx{stagers: stagers}
}

func (t *inMemoryStoreTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	commits := make([]func(), 0, len(t.stagers))
	for _, st := range t.stagers {
		var commit func()
		ctx, commit = st.Stage(ctx)
		commits = append(commits, commit)
	}
	if err := fn(ctx); err != nil {
		return err
	}
	for _, commit := range commits {
		commit()
	}
	return nil
}
