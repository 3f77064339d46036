// Command audit-tail follows the audit topic and prints each event as one
// JSON log line. It exposes a consumed-events counter on -metrics-addr.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/twmb/franz-go/pkg/kgo"

	"gatepass/internal/platform/config"
	"gatepass/internal/platform/logger"
	"gatepass/pkg/platform/audit"
)

var consumed = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "gatepass_audit_tail_events_total",
	Help: "Audit events read from the audit topic, by action",
}, []string{"action"})

func main() {
	var (
		group       = flag.String("group", "", "Consumer group; empty reads from the start without committing")
		action      = flag.String("action", "", "Only print events with this action, e.g. pass_issued")
		metricsAddr = flag.String("metrics-addr", "", "Serve /metrics on this address, e.g. :9091")
	)
	flag.Parse()

	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg.Kafka, *group, *action, *metricsAddr, log); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("audit tail failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.KafkaConfig, group, action, metricsAddr string, log *slog.Logger) error {
	if cfg.Brokers == "" {
		return errors.New("KAFKA_BROKERS is required")
	}

	opts := []kgo.Opt{
		kgo.SeedBrokers(strings.Split(cfg.Brokers, ",")...),
		kgo.ConsumeTopics(cfg.AuditTopic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	}
	if group != "" {
		opts = append(opts, kgo.ConsumerGroup(group))
	}
	client, err := kgo.NewClient(opts...)
	if err != nil {
		return fmt.Errorf("create kafka client: %w", err)
	}
	defer client.Close()

	if metricsAddr != "" {
		srv := &http.Server{Addr: metricsAddr, Handler: promhttp.Handler(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server failed", "error", err)
			}
		}()
		defer func() { _ = srv.Close() }()
	}

	log.Info("tailing audit topic", "topic", cfg.AuditTopic, "group", group)
	for {
		fetches := client.PollFetches(ctx)
		if fetches.IsClientClosed() || ctx.Err() != nil {
			return ctx.Err()
		}
		fetches.EachError(func(topic string, partition int32, err error) {
			log.Warn("fetch error", "topic", topic, "partition", partition, "error", err)
		})
		fetches.EachRecord(func(r *kgo.Record) {
			var ev audit.Event
			if err := json.Unmarshal(r.Value, &ev); err != nil {
				log.Warn("skipping undecodable record", "offset", r.Offset, "error", err)
				return
			}
			consumed.WithLabelValues(ev.Action).Inc()
			if action != "" && ev.Action != action {
				return
			}
			log.Info("audit event",
				"action", ev.Action,
				"actor", ev.Actor,
				"subject", ev.Subject,
				"pass_id", ev.PassID,
				"amount", ev.Amount,
				"reason", ev.Reason,
				"request_id", ev.RequestID,
				"at", ev.Timestamp,
				"partition", r.Partition,
				"offset", r.Offset,
			)
		})
	}
}
