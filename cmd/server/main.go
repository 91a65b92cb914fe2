package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/janisto/argo-greeting/internal/config"
	applog "github.com/janisto/argo-greeting/internal/platform/logging"
	"github.com/janisto/argo-greeting/internal/server"
)

// Version can be overridden at build time: -ldflags "-X main.Version=1.2.3"
var Version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		stop()
		applog.LogFatal(context.Background(), "server failed", err)
	}
	// fsync on a pipe or terminal stdout returns EINVAL.
	if err := applog.Sync(); err != nil && !errors.Is(err, syscall.EINVAL) {
		fmt.Fprintf(os.Stderr, "logger sync error: %v\n", err)
	}
}

func run(ctx context.Context) error {
	if err := applog.Err(); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := applog.SetLevel(cfg.LogLevel); err != nil {
		return err
	}
	applog.LogInfo(ctx, "starting",
		zap.String("version", Version),
		zap.String("addr", cfg.Addr()),
		zap.String("metricsAddr", cfg.MetricsAddr()),
	)
	return server.New(cfg, Version).Run(ctx)
}
