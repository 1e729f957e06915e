// Package app wires configuration, adapters, services, and HTTP
// routes into a runnable server.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"docqa/features/admin"
	"docqa/features/documents"
	"docqa/features/query"
	"docqa/features/stats"
	"docqa/features/upload"
	"docqa/internal/config"
	"docqa/internal/document"
	"docqa/internal/embed"
	"docqa/internal/ingest"
	"docqa/internal/middleware"
	"docqa/internal/retrieval"
	"docqa/internal/store"
	"docqa/internal/text"
)

type App struct {
	Handler http.Handler

	port int
}

func New(
	cfg *config.Config,
	db *sql.DB,
	vecStore store.Store,
	embedder embed.Embedder,
	llm retrieval.LLM,
) (*App, error) {
	registry := documents.NewSQLiteRepo(db)

	splitter := text.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	ingestService := ingest.NewService(document.NewLoader(), splitter, embedder, vecStore, registry)

	queryLogger, err := retrieval.NewFileQueryLogger(cfg.QueryLogPath)
	if err != nil {
		slog.Warn("failed to create query logger, falling back to stdout", "error", err)
		queryLogger = retrieval.NewQueryLogger(os.Stdout)
	}
	retrievalService := retrieval.NewService(embedder, vecStore, llm, cfg.TopKResults, queryLogger)

	uploadHandler := upload.NewHandler(ingestService, cfg.UploadDir, int(cfg.MaxUploadSizeMB))
	queryHandler := query.NewHandler(retrievalService)
	statsHandler := stats.NewHandler(vecStore, cfg.CollectionName, embedder.ModelName(), llm.ModelName())
	documentsHandler := documents.NewHandler(registry)
	adminHandler := admin.NewHandler(vecStore, registry)

	enableCORS := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, DELETE")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			next(w, r)
		}
	}

	mux := http.NewServeMux()

	mux.Handle("POST /upload-pdf", middleware.CorrelationID(enableCORS(uploadHandler.UploadPDF)))
	mux.Handle("POST /upload-excel", middleware.CorrelationID(enableCORS(uploadHandler.UploadExcel)))
	mux.Handle("POST /upload-multiple", middleware.CorrelationID(enableCORS(uploadHandler.UploadMultiple)))

	mux.Handle("POST /query", middleware.CorrelationID(enableCORS(queryHandler.Query)))

	mux.Handle("GET /stats", middleware.CorrelationID(enableCORS(statsHandler.GetStats)))
	mux.Handle("GET /documents", middleware.CorrelationID(enableCORS(documentsHandler.List)))

	mux.Handle("DELETE /reset", middleware.CorrelationID(enableCORS(adminHandler.Reset)))

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy","version":"2.0.0"}`))
	})

	return &App{Handler: mux, port: cfg.ServerPort}, nil
}

func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", a.port),
		Handler: a.Handler,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutting down server...")
		if err := srv.Shutdown(context.Background()); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
	}()

	slog.Info("server starting", "port", a.port)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}
