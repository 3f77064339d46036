// Package redis builds the shared go-redis client used by the token
// revocation list and the pass expiry cache.
package redis

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"gatepass/internal/platform/config"
)

// Client wraps the go-redis client with health checking and pool metrics.
type Client struct {
	*redis.Client
}

// New dials Redis and pings it once. It returns nil, nil when no URL is
// configured, so callers can treat Redis as optional.
func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	opts.MinIdleConns = cfg.MinIdleConns
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{Client: client}, nil
}

// Health is a readiness check.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.Client.Close()
}

// StatsCollector exposes pool statistics to Prometheus. go-redis keeps the
// counters cumulative, so they are reported as-is on every scrape.
func (c *Client) StatsCollector() prometheus.Collector {
	return &poolCollector{client: c.Client}
}

var (
	poolHitsDesc     = prometheus.NewDesc("gatepass_redis_pool_hits_total", "Times a free connection was found in the pool", nil, nil)
	poolMissesDesc   = prometheus.NewDesc("gatepass_redis_pool_misses_total", "Times a free connection was not found in the pool", nil, nil)
	poolTimeoutsDesc = prometheus.NewDesc("gatepass_redis_pool_timeouts_total", "Times a wait for a connection timed out", nil, nil)
	poolStaleDesc    = prometheus.NewDesc("gatepass_redis_pool_stale_conns_total", "Stale connections removed from the pool", nil, nil)
	poolTotalDesc    = prometheus.NewDesc("gatepass_redis_pool_total_conns", "Connections in the pool", nil, nil)
	poolIdleDesc     = prometheus.NewDesc("gatepass_redis_pool_idle_conns", "Idle connections in the pool", nil, nil)
)

type poolCollector struct {
	client *redis.Client
}

func (p *poolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- poolHitsDesc
	ch <- poolMissesDesc
	ch <- poolTimeoutsDesc
	ch <- poolStaleDesc
	ch <- poolTotalDesc
	ch <- poolIdleDesc
}

func (p *poolCollector) Collect(ch chan<- prometheus.Metric) {
	stats := p.client.PoolStats()
	ch <- prometheus.MustNewConstMetric(poolHitsDesc, prometheus.CounterValue, float64(stats.Hits))
	ch <- prometheus.MustNewConstMetric(poolMissesDesc, prometheus.CounterValue, float64(stats.Misses))
	ch <- prometheus.MustNewConstMetric(poolTimeoutsDesc, prometheus.CounterValue, float64(stats.Timeouts))
	ch <- prometheus.MustNewConstMetric(poolStaleDesc, prometheus.CounterValue, float64(stats.StaleConns))
	ch <- prometheus.MustNewConstMetric(poolTotalDesc, prometheus.GaugeValue, float64(stats.TotalConns))
	ch <- prometheus.MustNewConstMetric(poolIdleDesc, prometheus.GaugeValue, float64(stats.IdleConns))
}
