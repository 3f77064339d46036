package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"

	"gatepass/internal/ledger/memory"
	passmetrics "gatepass/internal/pass/metrics"
	"gatepass/internal/pass/models"
	"gatepass/internal/pass/store"
	"gatepass/pkg/platform/audit"
	"gatepass/pkg/requestcontext"
)

var (
	admin   = common.HexToAddress("0x00000000000000000000000000000000000000ad")
	token   = common.HexToAddress("0x00000000000000000000000000000000000005dc")
	custody = common.HexToAddress("0x000000000000000000000000000000000000c0de")
	alice   = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	bob     = common.HexToAddress("0x00000000000000000000000000000000000000b2")
	carol   = common.HexToAddress("0x00000000000000000000000000000000000000c3")
	epoch   = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

	defaultCost = big.NewInt(models.DefaultPassCost)
)

var errEmitterDown = errors.New("outbox unavailable")

// recordingEmitter captures audit events and can be told to fail.
type recordingEmitter struct {
	mu     sync.Mutex
	events []audit.Event
	fail   bool
}

func (e *recordingEmitter) Emit(_ context.Context, ev audit.Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.fail {
		return errEmitterDown
	}
	e.events = append(e.events, ev)
	return nil
}

func (e *recordingEmitter) actions() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, 0, len(e.events))
	for _, ev := range e.events {
		out = append(out, ev.Action)
	}
	return out
}

func (e *recordingEmitter) last() audit.Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.events) == 0 {
		return audit.Event{}
	}
	return e.events[len(e.events)-1]
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ServiceSuite runs the service against the in-memory store and ledgers.
type ServiceSuite struct {
	suite.Suite
	ctx      context.Context
	store    *store.InMemoryStore
	payments *memory.PaymentToken
	passes   *memory.PassRegistry
	emitter  *recordingEmitter
	metrics  *passmetrics.Metrics
	service  *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = requestcontext.WithTime(context.Background(), epoch)
	s.store = store.NewInMemoryStore()
	s.payments = memory.NewPaymentToken(custody)
	s.passes = memory.NewPassRegistry()
	s.emitter = &recordingEmitter{}
	s.metrics = passmetrics.NewWithRegisterer(prometheus.NewRegistry())
	s.service = New(s.store, s.payments, s.passes,
		WithLogger(discardLogger()),
		WithAuditLogger(audit.NewLogger(discardLogger(), s.emitter)),
		WithMetrics(s.metrics),
	)

	_, err := s.service.Bootstrap(s.ctx, models.DefaultConfiguration(admin, token, custody, epoch))
	s.Require().NoError(err)
}

// fund credits holder and approves custody to pull approved units.
func (s *ServiceSuite) fund(holder common.Address, balance, approved int64) {
	s.payments.Credit(holder, big.NewInt(balance))
	s.payments.Approve(holder, custody, big.NewInt(approved))
}

// at returns a context whose request time is epoch+d.
func (s *ServiceSuite) at(d time.Duration) context.Context {
	return requestcontext.WithTime(context.Background(), epoch.Add(d))
}

func (s *ServiceSuite) balance(holder common.Address) int64 {
	b, err := s.payments.BalanceOf(context.Background(), holder)
	s.Require().NoError(err)
	return b.Int64()
}

func (s *ServiceSuite) config() *models.Configuration {
	cfg, err := s.service.Configuration(s.ctx)
	s.Require().NoError(err)
	return cfg
}

func (s *ServiceSuite) setMaxSupply(n uint64) {
	_, err := s.service.SetMaxSupply(s.ctx, admin, n)
	s.Require().NoError(err)
}
