package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jonathan/career-services/internal/config"
	"github.com/jonathan/career-services/internal/records"
	"github.com/jonathan/career-services/internal/server"
	"github.com/jonathan/career-services/internal/server/ratelimit"
	"github.com/jonathan/career-services/internal/workflow"
	"github.com/spf13/cobra"
)

var (
	servePort              int
	serveReconcileInterval time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that exposes the job, application, interview and dashboard endpoints.

JWT_SECRET must be set. When REDIS_URL is set, rate limits are shared through Redis.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default 8080)")
	serveCmd.Flags().DurationVar(&serveReconcileInterval, "reconcile-interval", 0, "Run the reconciliation pass on this interval (0 disables)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "json"
	}
	logger, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}

	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return fmt.Errorf("failed to create JWT config: %w", err)
	}

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	var backend ratelimit.Backend
	if cfg.RedisURL != "" {
		redisBackend, err := ratelimit.NewRedisBackendFromURL(ctx, cfg.RedisURL, "career:ratelimit:")
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer func() { _ = redisBackend.Close() }()
		backend = redisBackend
	}

	svc := workflow.New(records.New(store), workflow.WithLogger(logger))

	srv, err := server.New(server.Config{
		Port:             cfg.Port,
		JWT:              jwtConfig,
		RateLimitBackend: backend,
		Logger:           logger,
	}, svc)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	if serveReconcileInterval > 0 {
		reconcileCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go reconcileLoop(reconcileCtx, svc, logger, serveReconcileInterval, cfg.StaleAfter())
	}

	return srv.Start(ctx)
}

// reconcileLoop runs the reconciliation pass until ctx is cancelled.
func reconcileLoop(ctx context.Context, svc *workflow.Service, logger *slog.Logger, interval, staleAfter time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			report, err := svc.ReconcileAll(ctx, staleAfter)
			if err != nil {
				logger.Error("reconciliation pass failed", "error", err)
				continue
			}
			if report.Examined > 0 {
				logger.Info("reconciliation pass",
					"examined", report.Examined,
					"completed", len(report.Completed),
					"failed", len(report.Failed),
				)
			}
		}
	}
}
