// Package stats reports corpus counts and the active model names.
package stats

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"docqa/internal/middleware"
)

type ChunkCounter interface {
	Count(ctx context.Context) (int, error)
}

type Handler struct {
	store          ChunkCounter
	collectionName string
	embeddingModel string
	llmModel       string
}

func NewHandler(store ChunkCounter, collectionName, embeddingModel, llmModel string) *Handler {
	return &Handler{
		store:          store,
		collectionName: collectionName,
		embeddingModel: embeddingModel,
		llmModel:       llmModel,
	}
}

type StatsResponse struct {
	TotalDocuments int    `json:"total_documents"`
	CollectionName string `json:"collection_name"`
	EmbeddingModel string `json:"embedding_model"`
	LLMModel       string `json:"llm_model"`
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	count, err := h.store.Count(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to count chunks", "error", err, "correlationId", middleware.GetCorrelationID(ctx))
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := StatsResponse{
		TotalDocuments: count,
		CollectionName: h.collectionName,
		EmbeddingModel: h.embeddingModel,
		LLMModel:       h.llmModel,
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{"detail": detail}); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}
