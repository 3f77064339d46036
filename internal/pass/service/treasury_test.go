package service

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus/testutil"

	dErrors "gatepass/pkg/domain-errors"
)

func (s *ServiceSuite) TestWithdrawAfterPaidIssuance() {
	s.fund(alice, 10_000_000, 5_000_000)
	_, err := s.service.IssuePass(s.ctx, alice, alice)
	s.Require().NoError(err)

	amount, err := s.service.Withdraw(s.ctx, admin, admin)
	s.Require().NoError(err)

	s.Equal(int64(4_990_000), amount.Int64())
	s.Equal(int64(4_990_000), s.balance(admin))
	s.Zero(s.balance(custody))

	ev := s.emitter.last()
	s.Equal("treasury_withdrawn", ev.Action)
	s.Equal(admin.Hex(), ev.Actor)
	s.Equal("4990000", ev.Amount)
	s.InDelta(1, testutil.ToFloat64(s.metrics.Withdrawals), 0)
}

func (s *ServiceSuite) TestWithdrawSweepsEverything() {
	s.fund(alice, 20_000_000, 20_000_000)
	for range 3 {
		_, err := s.service.IssuePass(s.ctx, alice, alice)
		s.Require().NoError(err)
	}

	amount, err := s.service.Withdraw(s.ctx, admin, bob)
	s.Require().NoError(err)
	s.Equal(int64(3*4_990_000), amount.Int64())
	s.Equal(int64(3*4_990_000), s.balance(bob))

	amount, err = s.service.Withdraw(s.ctx, admin, bob)
	s.Require().NoError(err)
	s.Zero(amount.Sign(), "nothing left to sweep")
}

func (s *ServiceSuite) TestWithdrawRejectsZeroTarget() {
	_, err := s.service.Withdraw(s.ctx, admin, common.Address{})
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
}
