package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"docqa/internal/adapter/gemini"
	"docqa/internal/adapter/groq"
	"docqa/internal/adapter/openai"
	"docqa/internal/app"
	"docqa/internal/config"
	"docqa/internal/embed"
	"docqa/internal/logger"
)

func main() {
	log := slog.New(logger.NewContextHandler(slog.NewJSONHandler(os.Stdout, nil)))
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := app.Bootstrap(ctx, cfg)
	if err != nil {
		slog.Error("failed to bootstrap dependencies", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := deps.Close(); err != nil {
			slog.Error("failed to close store", "error", err)
		}
	}()

	embedder := newEmbedder(cfg)

	llm, err := groq.NewClient(groq.Config{
		APIKey:  cfg.GroqAPIKey,
		BaseURL: cfg.GroqBaseURL,
		Model:   cfg.GroqModel,
	})
	if err != nil {
		slog.Error("failed to create llm client", "error", err)
		os.Exit(1)
	}

	application, err := app.New(cfg, deps.DB, deps.VectorStore, embedder, llm)
	if err != nil {
		slog.Error("failed to build app", "error", err)
		os.Exit(1)
	}

	slog.Info("starting document QA service",
		"store_backend", cfg.StoreBackend,
		"embedding_provider", cfg.EmbeddingProvider,
		"collection", cfg.CollectionName,
	)
	if err := application.Run(ctx); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

// newEmbedder defers provider construction until the first embedding
// request, so the service starts even while the provider is
// unreachable.
func newEmbedder(cfg *config.Config) embed.Embedder {
	switch cfg.EmbeddingProvider {
	case "gemini":
		return embed.NewLazy(cfg.EmbeddingModel, func(ctx context.Context) (embed.Embedder, error) {
			return gemini.NewEmbedder(ctx, cfg.GeminiAPIKey, cfg.EmbeddingModel)
		})
	default:
		return embed.NewLazy(cfg.EmbeddingModel, func(ctx context.Context) (embed.Embedder, error) {
			return openai.NewEmbedder(openai.Config{
				APIKey:  cfg.EmbeddingAPIKey,
				BaseURL: cfg.EmbeddingBaseURL,
				Model:   cfg.EmbeddingModel,
			})
		})
	}
}
