package tx

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "gatepass/pkg/domain-errors"
)

func TestWithTxAndFrom(t *testing.T) {
	ctx := context.Background()

	_, ok := From(ctx)
	assert.False(t, ok)

	assert.Equal(t, ctx, WithTx(ctx, nil), "nil tx leaves ctx untouched")

	sqlTx := &sql.Tx{}
	got, ok := From(WithTx(ctx, sqlTx))
	require.True(t, ok)
	assert.Same(t, sqlTx, got)
}

func TestPick(t *testing.T) {
	db := &sql.DB{}
	assert.Same(t, db, Pick(context.Background(), db))

	sqlTx := &sql.Tx{}
	assert.Same(t, sqlTx, Pick(WithTx(context.Background(), sqlTx), db))
}

func TestRunner_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := NewRunner(nil).RunInTx(ctx, func(context.Context) error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeTimeout))
	assert.False(t, called)
}

func TestRunner_JoinsOuterTransaction(t *testing.T) {
	outer := WithTx(context.Background(), &sql.Tx{})

	var inner context.Context
	err := NewRunner(nil).RunInTx(outer, func(ctx context.Context) error {
		inner = ctx
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, outer, inner)
}
