// Package app wires configuration into a runnable gatepass process: stores,
// ledgers, the audit pipeline, the pass service, and the HTTP router.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	jwttoken "gatepass/internal/jwt_token"
	"gatepass/internal/ledger/evm"
	"gatepass/internal/ledger/faucet"
	"gatepass/internal/ledger/memory"
	"gatepass/internal/ledger/traced"
	passhandler "gatepass/internal/pass/handler"
	passmetrics "gatepass/internal/pass/metrics"
	"gatepass/internal/pass/models"
	"gatepass/internal/pass/ports"
	"gatepass/internal/pass/service"
	passstore "gatepass/internal/pass/store"
	"gatepass/internal/platform/config"
	"gatepass/internal/platform/database"
	"gatepass/internal/platform/health"
	"gatepass/internal/platform/kafka"
	"gatepass/internal/platform/kafka/producer"
	"gatepass/internal/platform/redis"
	"gatepass/internal/platform/tracer"
	httptransport "gatepass/internal/transport/http"
	"gatepass/pkg/platform/audit"
	"gatepass/pkg/platform/audit/outbox"
	outboxmetrics "gatepass/pkg/platform/audit/outbox/metrics"
	outboxmemory "gatepass/pkg/platform/audit/outbox/store/memory"
	outboxpostgres "gatepass/pkg/platform/audit/outbox/store/postgres"
	"gatepass/pkg/platform/audit/outbox/worker"
	"gatepass/pkg/platform/audit/publisher"
	"gatepass/pkg/platform/circuit"
	"gatepass/pkg/platform/middleware/ratelimit"
	request "gatepass/pkg/platform/middleware/request"
	"gatepass/pkg/platform/tx"
)

const (
	auditTopicPartitions  = 3
	auditTopicReplication = 1
	outboxStatsInterval   = 15 * time.Second
)

// App is a fully wired process. Metrics register with the default Prometheus
// registry, so build at most one App per process.
type App struct {
	Config  config.Server
	Router  http.Handler
	Service *service.Service
	JWT     *jwttoken.JWTService
	// Payments is set only in memory ledger mode.
	Payments *memory.PaymentToken

	logger   *slog.Logger
	limiter  *ratelimit.Limiter
	outbox   *worker.Worker
	pool     *database.Pool
	redis    *redis.Client
	producer *producer.Producer
	eth      interface{ Close() }
	closers  []func() error
}

// New connects to every configured dependency and seeds the pass configuration.
// Optional dependencies (Postgres, Redis, Kafka) fall back to in-process variants.
func New(ctx context.Context, cfg config.Server, logger *slog.Logger) (_ *App, err error) {
	a := &App{Config: cfg, logger: logger}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	healthHandler := health.New(cfg.Env)

	if a.pool, err = database.New(ctx, cfg.Database); err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	var (
		store       service.Store
		storeTx     service.StoreTx
		outboxStore outbox.Store
	)
	if a.pool != nil {
		a.closers = append(a.closers, a.pool.Close)
		prometheus.MustRegister(a.pool.StatsCollector())
		if err = database.RunMigrations(a.pool.DB()); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		store = passstore.NewPostgres(a.pool.DB())
		storeTx = tx.NewRunner(a.pool.DB())
		outboxStore = outboxpostgres.New(a.pool.DB())
		healthHandler.RegisterCheck("postgres", func() error { return a.pool.Health(context.Background()) })
		logger.Info("using postgres stores")
	} else {
		memStore := passstore.NewInMemoryStore()
		store = memStore
		storeTx = service.NewInMemoryTx(memStore)
		outboxStore = outboxmemory.New()
		logger.Warn("DATABASE_URL not set, using in-memory stores")
	}

	if a.redis, err = redis.New(ctx, cfg.Redis); err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	var revocations *jwttoken.RevocationList
	if a.redis != nil {
		a.closers = append(a.closers, a.redis.Close)
		prometheus.MustRegister(a.redis.StatsCollector())
		revocations = jwttoken.NewRevocationList(a.redis.Client)
		healthHandler.RegisterCheck("redis", func() error { return a.redis.Health(context.Background()) })
	}

	var prod worker.Producer = producer.NewNoopProducer(logger)
	if cfg.Kafka.Brokers != "" {
		if a.producer, err = producer.New(cfg.Kafka, logger); err != nil {
			return nil, err
		}
		a.closers = append(a.closers, a.producer.Close)
		if err = a.producer.EnsureTopic(ctx, cfg.Kafka.AuditTopic, auditTopicPartitions, auditTopicReplication); err != nil {
			return nil, fmt.Errorf("ensure audit topic: %w", err)
		}
		prod = a.producer
		checker := kafka.NewHealthChecker(a.producer)
		healthHandler.RegisterCheck(checker.Name(), checker.Check)
	}
	a.outbox = worker.New(outboxStore, prod,
		worker.WithTopic(cfg.Kafka.AuditTopic),
		worker.WithRetention(cfg.Kafka.OutboxRetention),
		worker.WithMetrics(outboxmetrics.New()),
		worker.WithLogger(logger),
	)
	auditPublisher := publisher.NewPublisher(outbox.NewAuditStore(outboxStore), publisher.WithPublisherLogger(logger))
	a.closers = append(a.closers, func() error { auditPublisher.Close(); return nil })

	payments, credentials, custody, err := a.ledgers(ctx, cfg.Ledger)
	if err != nil {
		return nil, err
	}
	ledgerAttrs := []tracer.Attribute{tracer.String(tracer.AttrMode, cfg.Ledger.Mode)}
	if cfg.Ledger.Mode == config.LedgerModeEVM && cfg.Ledger.ChainID != nil {
		ledgerAttrs = append(ledgerAttrs, tracer.Int64(tracer.AttrChainID, cfg.Ledger.ChainID.Int64()))
	}
	ledgerTracer := tracer.NewOTel(tracer.WithLedgerAttributes(ledgerAttrs...))

	opts := []service.Option{
		service.WithLogger(logger),
		service.WithAuditLogger(audit.NewLogger(logger, auditPublisher)),
		service.WithMetrics(passmetrics.New()),
		service.WithTx(storeTx),
	}
	if a.redis != nil {
		opts = append(opts, service.WithExpiryCache(
			passstore.NewRedisExpiryCache(a.redis.Client, cfg.ExpiryCacheTTL),
			circuit.WithFailureThreshold(5),
			circuit.WithCooldown(30*time.Second),
		))
	}
	a.Service = service.New(store,
		traced.NewPaymentLedger(payments, ledgerTracer),
		traced.NewCredentialLedger(credentials, ledgerTracer),
		opts...,
	)

	defaults := models.DefaultConfiguration(cfg.AdminAddress, cfg.Ledger.PaymentTokenAddress, custody, time.Now())
	stored, err := a.Service.Bootstrap(ctx, defaults)
	if err != nil {
		return nil, fmt.Errorf("bootstrap pass configuration: %w", err)
	}
	if stored.Custody != custody {
		return nil, fmt.Errorf("stored custody %s does not match ledger custody %s", stored.Custody.Hex(), custody.Hex())
	}

	a.JWT = jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.Issuer, cfg.Auth.Audience, cfg.Auth.TokenTTL)
	a.JWT.SetEnv(cfg.Env)

	if cfg.Limits.RequestsPerSecond > 0 {
		a.limiter = ratelimit.New(ratelimit.Config{
			RequestsPerSecond: cfg.Limits.RequestsPerSecond,
			Burst:             cfg.Limits.Burst,
		})
	}

	routes := []httptransport.Routes{passhandler.New(a.Service, logger)}
	if a.Payments != nil && cfg.IsLocal() {
		routes = append(routes, faucet.New(a.Payments, logger))
		logger.Warn("dev faucet enabled")
	}

	routerCfg := httptransport.Config{
		Logger:         logger,
		TrustedProxies: cfg.TrustedProxies,
		RequestTimeout: cfg.RequestTimeout,
		Health:         healthHandler,
		Limiter:        a.limiter,
		Latency:        request.NewMetrics(),
		Metrics:        httptransport.MetricsHandler(),
		Validator:      jwttoken.NewJWTServiceAdapter(a.JWT),
	}
	// A nil *RevocationList must not reach the middleware as a non-nil interface.
	if revocations != nil {
		routerCfg.Revocation = revocations
	}
	a.Router = httptransport.NewRouter(routerCfg, routes...)

	return a, nil
}

// ledgers builds the payment and credential ledgers for the configured mode
// and returns the custody account funds are pulled into.
func (a *App) ledgers(ctx context.Context, cfg config.LedgerConfig) (ports.PaymentLedger, ports.CredentialLedger, common.Address, error) {
	switch cfg.Mode {
	case config.LedgerModeEVM:
		client, err := evm.Dial(ctx, cfg.RPCURL)
		if err != nil {
			return nil, nil, common.Address{}, err
		}
		a.eth = client
		signer, err := evm.NewSigner(cfg.PrivateKeyHex, cfg.ChainID)
		if err != nil {
			return nil, nil, common.Address{}, err
		}
		payments, err := evm.NewPaymentToken(cfg.PaymentTokenAddress, client, signer)
		if err != nil {
			return nil, nil, common.Address{}, err
		}
		credentials, err := evm.NewPassContract(cfg.PassContractAddress, client, signer)
		if err != nil {
			return nil, nil, common.Address{}, err
		}
		if signer.Address() != cfg.CustodyAddress {
			a.logger.Warn("custody follows the signing key in evm mode",
				"configured", cfg.CustodyAddress.Hex(),
				"signer", signer.Address().Hex(),
			)
		}
		return payments, credentials, signer.Address(), nil
	default:
		a.Payments = memory.NewPaymentToken(cfg.CustodyAddress)
		return a.Payments, memory.NewPassRegistry(), cfg.CustodyAddress, nil
	}
}

// Run serves HTTP and runs background workers until ctx is cancelled or one fails.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.Config.Addr,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      a.Config.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("starting http server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		a.logger.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return a.outbox.Run(ctx)
	})
	g.Go(func() error {
		a.recordStats(ctx)
		return nil
	})
	if a.limiter != nil {
		g.Go(func() error {
			a.limiter.Run(ctx)
			return nil
		})
	}
	return g.Wait()
}

func (a *App) recordStats(ctx context.Context) {
	ticker := time.NewTicker(outboxStatsInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := a.outbox.UpdateMetrics(ctx); err != nil {
				a.logger.WarnContext(ctx, "failed to update outbox metrics", "error", err)
			}
		}
	}
}

// Close releases connections in reverse order of acquisition.
func (a *App) Close() {
	if a.eth != nil {
		a.eth.Close()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("close failed", "error", err)
		}
	}
	a.closers = nil
}
