package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the pass service's Prometheus collectors.
type Metrics struct {
	PassesIssued     *prometheus.CounterVec
	IssuanceRejected *prometheus.CounterVec
	Refunds          *prometheus.CounterVec
	ValidityChecks   *prometheus.CounterVec
	ExpiryCache      *prometheus.CounterVec
	Withdrawals      prometheus.Counter
	TotalIssued      prometheus.Gauge
	IssueDuration    prometheus.Histogram
}

// New registers the collectors with the default registry. Call it once per process.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers the collectors with reg. Tests pass a fresh registry.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		PassesIssued: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gatepass_passes_issued_total",
			Help: "Total number of passes issued, labeled by kind (paid, admin)",
		}, []string{"kind"}),
		IssuanceRejected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gatepass_issuance_rejected_total",
			Help: "Issuance attempts that failed, labeled by domain error code",
		}, []string{"reason"}),
		Refunds: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gatepass_payment_refunds_total",
			Help: "Compensating refunds after a failed mint or commit, labeled by outcome",
		}, []string{"outcome"}),
		ValidityChecks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gatepass_validity_checks_total",
			Help: "Pass validity checks, labeled by result (valid, expired, unissued)",
		}, []string{"result"}),
		ExpiryCache: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gatepass_expiry_cache_requests_total",
			Help: "Expiry cache lookups, labeled by result (hit, miss, error, bypass)",
		}, []string{"result"}),
		Withdrawals: f.NewCounter(prometheus.CounterOpts{
			Name: "gatepass_treasury_withdrawals_total",
			Help: "Successful treasury sweeps",
		}),
		TotalIssued: f.NewGauge(prometheus.GaugeOpts{
			Name: "gatepass_total_issued",
			Help: "Passes issued so far, as last committed",
		}),
		IssueDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "gatepass_issue_duration_seconds",
			Help:    "Duration of paid and admin issuance, including ledger calls",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
	}
}

func (m *Metrics) IncrementIssued(kind string, totalIssued uint64) {
	m.PassesIssued.WithLabelValues(kind).Inc()
	m.TotalIssued.Set(float64(totalIssued))
}

func (m *Metrics) IncrementRejected(reason string) {
	m.IssuanceRejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) IncrementRefund(outcome string) {
	m.Refunds.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementValidityCheck(result string) {
	m.ValidityChecks.WithLabelValues(result).Inc()
}

func (m *Metrics) IncrementExpiryCache(result string) {
	m.ExpiryCache.WithLabelValues(result).Inc()
}

func (m *Metrics) IncrementWithdrawal() {
	m.Withdrawals.Inc()
}

func (m *Metrics) ObserveIssue(start time.Time) {
	m.IssueDuration.Observe(time.Since(start).Seconds())
}
