package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cscs/firecrest-ui-api/internal/bootstrap"
	"github.com/cscs/firecrest-ui-api/internal/observability/errtrack"
)

func main() {
	ctx := context.Background()
	logger := bootstrap.InitLogger(slog.LevelInfo)
	if err := run(ctx, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}

	// Re-init at the configured level now that config is loaded.
	logger = bootstrap.InitLogger(cfg.Observability.SlogLevel())
	logger.InfoContext(ctx, "starting firecrest-ui-api",
		"environment", cfg.Environment,
		"addr", cfg.HTTP.Addr,
		"backend", cfg.Firecrest.BaseURL,
		"redis_sessions", cfg.Session.Redis.Active)

	reporter, err := errtrack.Init(cfg.Observability.Sentry, cfg.Environment)
	if err != nil {
		return err
	}
	defer reporter.Flush(2 * time.Second)

	services, err := bootstrap.BuildServices(ctx, &cfg, logger)
	if err != nil {
		return err
	}
	if services.RedisClient != nil {
		defer func() {
			if cerr := services.RedisClient.Close(); cerr != nil {
				logger.ErrorContext(ctx, "close redis failed", "error", cerr)
			}
		}()
	}

	server := bootstrap.StartHTTPServer(bootstrap.HTTPServerConfig{
		Config:   &cfg,
		Services: services,
		Reporter: reporter,
		Logger:   logger,
	})

	// Block until interrupted, then drain in-flight requests.
	stopCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-stopCtx.Done()

	return bootstrap.ShutdownHTTPServer(ctx, server, logger)
}
