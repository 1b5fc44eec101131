package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/use-agent/spamsum/api"
	"github.com/use-agent/spamsum/api/handler"
	"github.com/use-agent/spamsum/cache"
	"github.com/use-agent/spamsum/cleaner"
	"github.com/use-agent/spamsum/config"
	"github.com/use-agent/spamsum/spamsum"
	"github.com/use-agent/spamsum/webhook"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	slog.Info("spamsum starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"signatureLength", cfg.Hashing.SignatureLength,
		"minBlocksize", cfg.Hashing.MinBlocksize,
	)

	// ── 3. Initialise generator and comparator ──────────────────────
	opts := spamsum.Options{
		SignatureLength: cfg.Hashing.SignatureLength,
		MinBlocksize:    cfg.Hashing.MinBlocksize,
	}
	gen, err := spamsum.NewGenerator(opts)
	if err != nil {
		slog.Error("failed to initialise generator", "error", err)
		os.Exit(1)
	}
	cmp, err := spamsum.NewComparator(opts, nil)
	if err != nil {
		slog.Error("failed to initialise comparator", "error", err)
		os.Exit(1)
	}

	// ── 4. Initialise cache (optional) ──────────────────────────────
	var cc *cache.Cache
	if cfg.Cache.MaxEntries > 0 {
		cc = cache.New(cfg.Cache.MaxEntries, cfg.Cache.TTL)
		defer cc.Close()
	}

	hasher := &handler.Hasher{
		Generator:     gen,
		Cleaner:       cleaner.NewCleaner(),
		Cache:         cc,
		MaxInputBytes: cfg.Hashing.MaxInputBytes,
	}

	// ── 5. Batch store + webhooks ───────────────────────────────────
	batches := handler.NewBatchStore(cfg.Batch.JobTTL)
	defer batches.Close()
	notifier := webhook.NewNotifier(cfg.Webhook.Secret)

	// ── 6. Setup router ─────────────────────────────────────────────
	startTime := time.Now()
	router := api.NewRouter(cfg, hasher, cmp, batches, notifier, startTime)

	// ── 7. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 8. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	slog.Info("spamsum stopped")
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
