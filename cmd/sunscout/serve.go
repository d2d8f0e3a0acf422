package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sunscout/sunscout/internal/config"
	"github.com/sunscout/sunscout/internal/feasibility"
	"github.com/sunscout/sunscout/internal/orchestrator"
	"github.com/sunscout/sunscout/internal/server/api"
	"github.com/sunscout/sunscout/internal/server/auth"
	"github.com/sunscout/sunscout/internal/server/history"
	"github.com/sunscout/sunscout/internal/server/notify"
	"github.com/sunscout/sunscout/internal/server/ws"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the evaluation HTTP server",
	Long: `Serve exposes evaluations over a REST API and streams completed reports to
WebSocket clients. Evaluations are persisted to SQLite and decision
notifications are delivered to configured webhooks.

The config file is watched for changes: edits to weights, thresholds, or
producers take effect on the next evaluation without a restart.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

// swappableEvaluator lets the config watcher replace the orchestrator without
// interrupting in-flight requests.
type swappableEvaluator struct {
	current atomic.Pointer[orchestrator.Orchestrator]
}

func (s *swappableEvaluator) Run(ctx context.Context, req feasibility.Request) *feasibility.Report {
	return s.current.Load().Run(ctx, req)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	slog.Info("sunscout server starting", "version", version, "config", configPath)

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	orch, err := buildOrchestrator(cfg)
	if err != nil {
		return err
	}

	slog.Info("config loaded",
		"http_port", cfg.Server.HTTPPort,
		"auth_mode", cfg.Server.Auth.Mode,
		"go_threshold", cfg.Evaluator.GoThreshold,
		"producers", len(cfg.Evaluator.Producers),
	)

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	eval := &swappableEvaluator{}
	eval.current.Store(orch)

	// Evaluation history with background retention sweeps.
	hist, err := history.Open(cfg.Server.Storage.Path, cfg.Server.Storage.Retention)
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer hist.Close()
	go hist.Run(ctx)

	// WebSocket hub — pushes each completed report to connected clients.
	hub := ws.New()
	go hub.Run(ctx)

	notifier := notify.New(cfg.Server)

	// Hot reload: rebuild the orchestrator whenever the config file changes.
	// A config that fails validation is logged and skipped by the watcher.
	go func() {
		err := config.Watch(ctx, configPath, func(next *config.Config) {
			nextOrch, err := buildOrchestrator(next)
			if err != nil {
				slog.Error("config reload: rebuilding evaluator failed — keeping previous", "err", err)
				return
			}
			eval.current.Store(nextOrch)
			slog.Info("evaluator rebuilt from reloaded config",
				"go_threshold", next.Evaluator.GoThreshold,
				"producers", len(next.Evaluator.Producers),
			)
		})
		if err != nil {
			slog.Error("config watcher stopped", "err", err)
		}
	}()

	mux := http.NewServeMux()
	mux.Handle("/api/", auth.APIKeyMiddleware(
		cfg.Server.Auth.Mode,
		cfg.Server.Auth.Header,
		cfg.Server.Auth.Key(),
		api.New(eval, hist, hub, notifier),
	))
	mux.Handle("/ws/stream", hub)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler: mux,
	}
	go func() {
		slog.Info("HTTP server listening", "port", cfg.Server.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server stopped", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("sunscout server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return srv.Shutdown(shutdownCtx)
}
