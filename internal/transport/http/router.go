// Package httptransport assembles the chi router: shared middleware, health endpoints,
// metrics, and the pass routes split into public and caller-authenticated groups.
package httptransport

import (
	"log/slog"
	"net/http"
	"net/netip"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gatepass/internal/platform/health"
	authmw "gatepass/pkg/platform/middleware/auth"
	"gatepass/pkg/platform/middleware/ratelimit"
	request "gatepass/pkg/platform/middleware/request"
	"gatepass/pkg/platform/validation"
)

// Routes is implemented by feature handlers. Register mounts routes that need
// no identity; RegisterAuthenticated mounts routes behind caller authentication.
type Routes interface {
	Register(r chi.Router)
	RegisterAuthenticated(r chi.Router)
}

// Config carries the pieces NewRouter wires together. Nil optional fields are skipped.
type Config struct {
	Logger         *slog.Logger
	TrustedProxies []netip.Prefix
	RequestTimeout time.Duration

	Health  *health.Handler
	Limiter *ratelimit.Limiter
	Latency *request.Metrics
	// Metrics exposes /metrics when set.
	Metrics http.Handler

	Validator  authmw.JWTValidator
	Revocation authmw.TokenRevocationChecker
}

// NewRouter wires all public endpoints with middleware.
func NewRouter(cfg Config, features ...Routes) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(request.Recovery(logger))
	r.Use(request.RequestID)
	r.Use(request.RequestTime)
	r.Use(request.ClientIP(cfg.TrustedProxies))
	r.Use(request.Logger(logger))
	if cfg.Latency != nil {
		r.Use(request.LatencyMiddleware(cfg.Latency))
	}

	if cfg.Health != nil {
		cfg.Health.Register(r)
	}
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	r.Group(func(r chi.Router) {
		if cfg.Limiter != nil {
			r.Use(cfg.Limiter.Middleware)
		}
		r.Use(request.Timeout(timeout))
		r.Use(request.BodyLimit(validation.MaxBodySize))
		r.Use(request.ContentTypeJSON)

		for _, f := range features {
			f.Register(r)
		}

		r.Group(func(r chi.Router) {
			r.Use(authmw.RequireCaller(cfg.Validator, cfg.Revocation, logger))
			for _, f := range features {
				f.RegisterAuthenticated(r)
			}
		})
	})

	return r
}

// MetricsHandler serves the default Prometheus registry.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
