package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"caselens/internal/adapter/gemini"
	"caselens/internal/app"
	"caselens/internal/config"
	"caselens/internal/logger"
	"caselens/internal/metrics"
)

func main() {
	handler := logger.NewContextHandler(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(slog.New(handler))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := app.Bootstrap(ctx, cfg)
	if err != nil {
		slog.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}
	defer deps.DB.Close()

	embedder, err := gemini.NewEmbedder(ctx, cfg.GeminiAPIKey, cfg.EmbedModel)
	if err != nil {
		slog.Error("failed to create embedder", "error", err)
		os.Exit(1)
	}
	defer embedder.Close()

	generator, err := gemini.NewGenerator(ctx, cfg.GeminiAPIKey, cfg.LLMModel)
	if err != nil {
		slog.Error("failed to create generator", "error", err)
		os.Exit(1)
	}
	defer generator.Close()

	extractors, err := app.BuildExtractors(cfg)
	if err != nil {
		slog.Error("failed to build extractors", "error", err)
		os.Exit(1)
	}

	a, err := app.New(
		cfg, deps.DB, deps.VectorStore, deps.ObjectStore,
		embedder, generator, extractors, metrics.New(),
	)
	if err != nil {
		slog.Error("failed to wire application", "error", err)
		os.Exit(1)
	}

	a.Scheduler.Start(ctx)
	defer a.Scheduler.Stop()

	if err := a.Run(ctx, cfg.ServerPort); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}

	slog.Info("shutdown complete")
}
