package kafka

import (
	"context"
	"fmt"
	"time"
)

// Pinger is satisfied by *producer.Producer.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthChecker checks Kafka broker connectivity for readiness checks.
type HealthChecker struct {
	pinger  Pinger
	timeout time.Duration
}

// NewHealthChecker creates a new Kafka health checker.
func NewHealthChecker(pinger Pinger) *HealthChecker {
	return &HealthChecker{
		pinger:  pinger,
		timeout: 5 * time.Second,
	}
}

// Check pings the brokers with a bounded timeout.
func (h *HealthChecker) Check() error {
	if h.pinger == nil {
		return fmt.Errorf("kafka brokers not configured")
	}
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()
	if err := h.pinger.Ping(ctx); err != nil {
		return fmt.Errorf("no kafka brokers reachable: %w", err)
	}
	return nil
}

// Name returns the check name for health reporting.
func (h *HealthChecker) Name() string {
	return "kafka"
}
