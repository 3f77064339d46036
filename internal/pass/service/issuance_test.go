package service

import (
	"context"
	"errors"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"gatepass/internal/pass/models"
	"gatepass/internal/pass/store"
	id "gatepass/pkg/domain"
	dErrors "gatepass/pkg/domain-errors"
	"gatepass/pkg/platform/audit"
	fixtures "gatepass/pkg/testutil"
)

func (s *ServiceSuite) TestBootstrapDefaults() {
	cfg := s.config()

	s.Equal(int64(4_990_000), cfg.PassCost.Int64())
	s.Equal(2_592_000*time.Second, cfg.PassDuration)
	s.Equal(uint64(42), cfg.MaxSupply)
	s.Zero(cfg.TotalIssued)
	s.Empty(cfg.MetadataBase)
	s.Equal(admin, cfg.Admin)
	s.Equal(custody, cfg.Custody)
}

func (s *ServiceSuite) TestIssuePass() {
	s.fund(alice, 10_000_000, 5_000_000)

	pass, err := s.service.IssuePass(s.ctx, alice, alice)
	s.Require().NoError(err)

	s.Equal(id.PassID(1), pass.ID)
	s.Equal(alice, pass.Recipient)
	s.Equal(alice, pass.Payer)
	s.Equal(models.KindPaid, pass.Kind)
	s.Equal(int64(4_990_000), pass.PricePaid.Int64())
	s.True(pass.ExpiresAt.Equal(epoch.Add(2_592_000*time.Second)))

	s.Equal(uint64(1), s.config().TotalIssued)
	valid, err := s.service.IsPassValid(s.ctx, 1)
	s.Require().NoError(err)
	s.True(valid)

	s.Equal(int64(5_010_000), s.balance(alice))
	s.Equal(int64(4_990_000), s.balance(custody))
	allowance, _ := s.payments.Allowance(context.Background(), alice, custody)
	s.Equal(int64(10_000), allowance.Int64())

	owner, err := s.passes.OwnerOf(context.Background(), 1)
	s.Require().NoError(err)
	s.Equal(alice, owner)

	ev := s.emitter.last()
	s.Equal("pass_issued", ev.Action)
	s.Equal(alice.Hex(), ev.Actor)
	s.Equal(uint64(1), ev.PassID)
	s.Equal("4990000", ev.Amount)
	s.InDelta(1, testutil.ToFloat64(s.metrics.PassesIssued.WithLabelValues("paid")), 0)
	s.InDelta(1, testutil.ToFloat64(s.metrics.TotalIssued), 0)
}

func (s *ServiceSuite) TestIssuePassForAnotherRecipient() {
	s.fund(alice, 5_000_000, 5_000_000)

	pass, err := s.service.IssuePass(s.ctx, alice, bob)
	s.Require().NoError(err)
	s.Equal(bob, pass.Recipient)
	s.Equal(alice, pass.Payer)

	owner, _ := s.passes.OwnerOf(context.Background(), pass.ID)
	s.Equal(bob, owner)
	s.Equal(int64(10_000), s.balance(alice))
}

func (s *ServiceSuite) TestIssuePassSupplyExhausted() {
	s.setMaxSupply(1)
	s.fund(alice, 10_000_000, 5_000_000)
	s.fund(bob, 10_000_000, 5_000_000)

	_, err := s.service.IssuePass(s.ctx, alice, alice)
	s.Require().NoError(err)

	_, err = s.service.IssuePass(s.ctx, bob, bob)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeSupplyExhausted))
	s.Equal(int64(10_000_000), s.balance(bob), "no payment taken")
	s.Equal(uint64(1), s.config().TotalIssued)
	s.InDelta(1, testutil.ToFloat64(s.metrics.IssuanceRejected.WithLabelValues("supply_exhausted")), 0)
}

func (s *ServiceSuite) TestIssuePassPreconditions() {
	cases := []struct {
		name     string
		balance  int64
		approved int64
		code     dErrors.Code
	}{
		{"allowance below cost", 10_000_000, 1_000_000, dErrors.CodeInsufficientAllowance},
		{"balance below cost", 1_000_000, 5_000_000, dErrors.CodeInsufficientBalance},
		{"allowance reported before balance", 1_000_000, 1_000_000, dErrors.CodeInsufficientAllowance},
		{"one unit short", 4_989_999, 4_990_000, dErrors.CodeInsufficientBalance},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			s.SetupTest()
			s.fund(alice, tc.balance, tc.approved)

			_, err := s.service.IssuePass(s.ctx, alice, alice)
			s.Require().Error(err)
			s.Equal(tc.code, dErrors.CodeOf(err))

			s.Zero(s.config().TotalIssued)
			s.Equal(tc.balance, s.balance(alice))
			s.Zero(s.balance(custody))
			held, _ := s.passes.BalanceOf(context.Background(), alice)
			s.Zero(held)
			s.Empty(s.emitter.actions())
		})
	}
}

func (s *ServiceSuite) TestIssuePassRejectsMissingParties() {
	s.fund(alice, 10_000_000, 10_000_000)

	_, err := s.service.IssuePass(s.ctx, alice, common.Address{})
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))

	_, err = s.service.IssuePass(s.ctx, common.Address{}, alice)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))

	s.Zero(s.config().TotalIssued)
}

func (s *ServiceSuite) TestFreePassNeedsNoAllowance() {
	_, err := s.service.SetPassCost(s.ctx, admin, big.NewInt(0))
	s.Require().NoError(err)

	pass, err := s.service.IssuePass(s.ctx, alice, alice)
	s.Require().NoError(err)
	s.Zero(pass.PricePaid.Sign())
}

func (s *ServiceSuite) TestIdsAreSequentialAcrossKinds() {
	s.fund(alice, 20_000_000, 20_000_000)

	var ids []id.PassID
	p, err := s.service.IssuePass(s.ctx, alice, alice)
	s.Require().NoError(err)
	ids = append(ids, p.ID)
	p, err = s.service.AdminIssue(s.ctx, admin, bob)
	s.Require().NoError(err)
	ids = append(ids, p.ID)
	p, err = s.service.IssuePass(s.ctx, alice, carol)
	s.Require().NoError(err)
	ids = append(ids, p.ID)

	s.Equal([]id.PassID{1, 2, 3}, ids)
	s.Equal(uint64(3), s.config().TotalIssued)
	for _, passID := range ids {
		_, err := s.store.FindPass(s.ctx, passID)
		s.NoError(err)
	}
}

func (s *ServiceSuite) TestExpiryIsFixedAtIssuance() {
	s.fund(alice, 20_000_000, 20_000_000)

	first, err := s.service.IssuePass(s.ctx, alice, alice)
	s.Require().NoError(err)

	_, err = s.service.SetPassDuration(s.ctx, admin, time.Hour)
	s.Require().NoError(err)

	later := s.at(10 * time.Minute)
	second, err := s.service.IssuePass(later, alice, alice)
	s.Require().NoError(err)

	stored, err := s.store.FindPass(s.ctx, first.ID)
	s.Require().NoError(err)
	s.True(stored.ExpiresAt.Equal(epoch.Add(30*24*time.Hour)), "earlier pass keeps its expiry")
	s.True(second.ExpiresAt.Equal(epoch.Add(10*time.Minute+time.Hour)))
}

func (s *ServiceSuite) TestConcurrentIssuanceRespectsCap() {
	s.setMaxSupply(5)

	buyers := fixtures.Accounts(0x1000, 20)
	for _, buyer := range buyers {
		s.fund(buyer, 5_000_000, 5_000_000)
	}

	result := fixtures.RunConcurrentCtx(s.ctx, len(buyers), func(ctx context.Context, i int) error {
		_, err := s.service.IssuePass(ctx, buyers[i], buyers[i])
		return err
	})

	s.Equal(int32(5), result.Successes)
	s.Equal(int32(15), result.Exhausted)
	s.Zero(result.Errors)
	s.Equal(uint64(5), s.config().TotalIssued)
	s.Equal(5*models.DefaultPassCost, s.balance(custody))
	for passID := id.PassID(1); passID <= 5; passID++ {
		_, err := s.service.GetPass(s.ctx, passID)
		s.NoError(err, "pass %d", passID)
	}
}

func (s *ServiceSuite) TestAdminIssue() {
	pass, err := s.service.AdminIssue(s.ctx, admin, bob)
	s.Require().NoError(err)

	s.Equal(id.PassID(1), pass.ID)
	s.Equal(models.KindAdmin, pass.Kind)
	s.Equal(common.Address{}, pass.Payer)
	s.Zero(pass.PricePaid.Sign())
	s.Zero(s.balance(custody))

	owner, _ := s.passes.OwnerOf(context.Background(), 1)
	s.Equal(bob, owner)
	s.Equal("pass_admin_issued", s.emitter.last().Action)
	s.InDelta(1, testutil.ToFloat64(s.metrics.PassesIssued.WithLabelValues("admin")), 0)
}

func (s *ServiceSuite) TestAdminIssueRespectsCap() {
	s.setMaxSupply(0)

	_, err := s.service.AdminIssue(s.ctx, admin, bob)
	s.True(dErrors.HasCode(err, dErrors.CodeSupplyExhausted))
}

func (s *ServiceSuite) TestAdminIssueRejectsZeroRecipient() {
	_, err := s.service.AdminIssue(s.ctx, admin, common.Address{})
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func (s *ServiceSuite) TestAuditFailureAbortsIssuanceAndRefunds() {
	s.fund(alice, 10_000_000, 5_000_000)
	s.emitter.fail = true

	_, err := s.service.IssuePass(s.ctx, alice, alice)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))

	s.Zero(s.config().TotalIssued)
	s.Equal(int64(10_000_000), s.balance(alice), "payment refunded")
	s.Zero(s.balance(custody))
	s.InDelta(1, testutil.ToFloat64(s.metrics.Refunds.WithLabelValues("refunded")), 0)
}

func (s *ServiceSuite) TestIssuanceSkipsIdMintedByAbortedAttempt() {
	s.fund(alice, 20_000_000, 20_000_000)
	s.emitter.fail = true
	_, err := s.service.IssuePass(s.ctx, alice, alice)
	s.Require().Error(err)
	s.emitter.fail = false

	pass, err := s.service.IssuePass(s.ctx, alice, bob)
	s.Require().NoError(err)
	s.Equal(id.PassID(2), pass.ID)
	s.Equal(uint64(2), s.config().TotalIssued)

	orphan, err := s.service.GetPass(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal(models.KindOrphaned, orphan.Pass.Kind)
	s.Equal(alice, orphan.Owner)
	s.False(orphan.Valid)

	valid, err := s.service.IsPassValid(s.ctx, 1)
	s.Require().NoError(err)
	s.False(valid, "orphaned ids never grant access")
	s.Equal(int64(20_000_000-models.DefaultPassCost), s.balance(alice), "only the committed pass was paid for")
	s.Contains(s.emitter.actions(), "pass_orphaned")
}

// failOnceStore rejects the first RecordIssuance.
type failOnceStore struct {
	*store.InMemoryStore
	failed bool
}

func (f *failOnceStore) RecordIssuance(ctx context.Context, pass *models.Pass) error {
	if !f.failed {
		f.failed = true
		return errors.New("connection reset")
	}
	return f.InMemoryStore.RecordIssuance(ctx, pass)
}

func (s *ServiceSuite) TestIssuanceRecoversAfterStoreFailure() {
	st := &failOnceStore{InMemoryStore: store.NewInMemoryStore()}
	svc := New(st, s.payments, s.passes,
		WithLogger(discardLogger()),
		WithAuditLogger(audit.NewLogger(discardLogger(), s.emitter)),
	)
	_, err := svc.Bootstrap(s.ctx, models.DefaultConfiguration(admin, token, custody, epoch))
	s.Require().NoError(err)
	s.fund(alice, 20_000_000, 20_000_000)

	_, err = svc.IssuePass(s.ctx, alice, alice)
	s.Require().Error(err)
	s.Contains(err.Error(), "failed to record issuance")
	s.Equal(int64(20_000_000), s.balance(alice))

	pass, err := svc.IssuePass(s.ctx, alice, alice)
	s.Require().NoError(err)
	s.Equal(id.PassID(2), pass.ID)

	admins, err := svc.AdminIssue(s.ctx, admin, bob)
	s.Require().NoError(err)
	s.Equal(id.PassID(3), admins.ID)
}

func (s *ServiceSuite) TestOrphanSkipStopsAtSupplyCap() {
	s.setMaxSupply(1)
	s.Require().NoError(s.passes.Mint(context.Background(), carol, 1))
	s.fund(alice, 10_000_000, 10_000_000)

	_, err := s.service.IssuePass(s.ctx, alice, alice)
	s.True(dErrors.HasCode(err, dErrors.CodeSupplyExhausted))
	s.Equal(int64(10_000_000), s.balance(alice), "payment refunded")

	cfg := s.config()
	s.Equal(uint64(1), cfg.TotalIssued, "orphan is kept after the failed attempt")

	_, err = s.service.IssuePass(s.ctx, alice, alice)
	s.True(dErrors.HasCode(err, dErrors.CodeSupplyExhausted))
	s.Equal(int64(10_000_000), s.balance(alice), "exhausted before any pull")
}
