package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"gatepass/internal/app"
	"gatepass/internal/platform/config"
	"gatepass/internal/platform/logger"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		logger.New("unknown").Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Env)

	log.Info("initializing gatepass",
		"addr", cfg.Addr,
		"ledger_mode", cfg.Ledger.Mode,
		"admin", cfg.AdminAddress.Hex(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	if err := a.Run(ctx); err != nil {
		log.Error("server error", "error", err)
		a.Close()
		os.Exit(1)
	}

	log.Info("server stopped")
}
