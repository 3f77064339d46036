// Package traced decorates ledger adapters with spans around every call.
package traced

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"gatepass/internal/pass/ports"
	"gatepass/internal/platform/tracer"
	"gatepass/internal/sentinel"
	id "gatepass/pkg/domain"
)

// PaymentLedger traces a ports.PaymentLedger.
type PaymentLedger struct {
	next   ports.PaymentLedger
	tracer tracer.Tracer
}

func NewPaymentLedger(next ports.PaymentLedger, t tracer.Tracer) *PaymentLedger {
	if t == nil {
		t = tracer.NewNoop()
	}
	return &PaymentLedger{next: next, tracer: t}
}

func (l *PaymentLedger) BalanceOf(ctx context.Context, owner common.Address) (balance *big.Int, err error) {
	ctx, span := l.tracer.Start(ctx, tracer.SpanPaymentBalanceOf,
		tracer.String(tracer.AttrOwner, owner.Hex()),
	)
	defer func() { span.End(err) }()

	balance, err = l.next.BalanceOf(ctx, owner)
	if err == nil {
		span.SetAttributes(tracer.String(tracer.AttrBalance, balance.String()))
	}
	return balance, err
}

func (l *PaymentLedger) Allowance(ctx context.Context, owner, spender common.Address) (allowance *big.Int, err error) {
	ctx, span := l.tracer.Start(ctx, tracer.SpanPaymentAllowance,
		tracer.String(tracer.AttrOwner, owner.Hex()),
		tracer.String(tracer.AttrSpender, spender.Hex()),
	)
	defer func() { span.End(err) }()

	allowance, err = l.next.Allowance(ctx, owner, spender)
	if err == nil {
		span.SetAttributes(tracer.String(tracer.AttrAmount, allowance.String()))
	}
	return allowance, err
}

func (l *PaymentLedger) TransferFrom(ctx context.Context, from, to common.Address, amount *big.Int) (err error) {
	ctx, span := l.tracer.Start(ctx, tracer.SpanPaymentTransferFrom,
		tracer.String(tracer.AttrFrom, from.Hex()),
		tracer.String(tracer.AttrTo, to.Hex()),
		tracer.String(tracer.AttrAmount, amount.String()),
	)
	defer func() { span.End(err) }()

	err = l.next.TransferFrom(ctx, from, to, amount)
	markRejected(span, err)
	return err
}

func (l *PaymentLedger) Transfer(ctx context.Context, to common.Address, amount *big.Int) (err error) {
	ctx, span := l.tracer.Start(ctx, tracer.SpanPaymentTransfer,
		tracer.String(tracer.AttrTo, to.Hex()),
		tracer.String(tracer.AttrAmount, amount.String()),
	)
	defer func() { span.End(err) }()

	err = l.next.Transfer(ctx, to, amount)
	markRejected(span, err)
	return err
}

// CredentialLedger traces a ports.CredentialLedger.
type CredentialLedger struct {
	next   ports.CredentialLedger
	tracer tracer.Tracer
}

func NewCredentialLedger(next ports.CredentialLedger, t tracer.Tracer) *CredentialLedger {
	if t == nil {
		t = tracer.NewNoop()
	}
	return &CredentialLedger{next: next, tracer: t}
}

func (l *CredentialLedger) Mint(ctx context.Context, to common.Address, passID id.PassID) (err error) {
	ctx, span := l.tracer.Start(ctx, tracer.SpanCredentialMint,
		tracer.String(tracer.AttrTo, to.Hex()),
		tracer.Int64(tracer.AttrPassID, int64(passID)),
	)
	defer func() { span.End(err) }()

	err = l.next.Mint(ctx, to, passID)
	markRejected(span, err)
	return err
}

func (l *CredentialLedger) OwnerOf(ctx context.Context, passID id.PassID) (owner common.Address, err error) {
	ctx, span := l.tracer.Start(ctx, tracer.SpanCredentialOwnerOf,
		tracer.Int64(tracer.AttrPassID, int64(passID)),
	)
	defer func() { span.End(err) }()

	owner, err = l.next.OwnerOf(ctx, passID)
	if err == nil {
		span.SetAttributes(tracer.String(tracer.AttrOwner, owner.Hex()))
	}
	return owner, err
}

func (l *CredentialLedger) BalanceOf(ctx context.Context, owner common.Address) (held uint64, err error) {
	ctx, span := l.tracer.Start(ctx, tracer.SpanCredentialBalanceOf,
		tracer.String(tracer.AttrOwner, owner.Hex()),
	)
	defer func() { span.End(err) }()

	held, err = l.next.BalanceOf(ctx, owner)
	if err == nil {
		span.SetAttributes(tracer.Int64(tracer.AttrBalance, int64(held)))
	}
	return held, err
}

func (l *CredentialLedger) TokenOfOwnerByIndex(ctx context.Context, owner common.Address, index uint64) (passID id.PassID, err error) {
	ctx, span := l.tracer.Start(ctx, tracer.SpanCredentialTokenByIdx,
		tracer.String(tracer.AttrOwner, owner.Hex()),
		tracer.Int64(tracer.AttrIndex, int64(index)),
	)
	defer func() { span.End(err) }()

	passID, err = l.next.TokenOfOwnerByIndex(ctx, owner, index)
	if err == nil {
		span.SetAttributes(tracer.Int64(tracer.AttrPassID, int64(passID)))
	}
	return passID, err
}

// markRejected distinguishes ledger refusals from transport failures on the span.
func markRejected(span tracer.Span, err error) {
	if errors.Is(err, sentinel.ErrTransferRejected) {
		span.AddEvent(tracer.EventTransferRejected)
	}
}

var (
	_ ports.PaymentLedger    = (*PaymentLedger)(nil)
	_ ports.CredentialLedger = (*CredentialLedger)(nil)
)
