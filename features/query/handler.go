// Package query exposes question answering over HTTP.
package query

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"docqa/internal/middleware"
	"docqa/internal/retrieval"
)

type Answerer interface {
	Answer(ctx context.Context, question string, topK int) (*retrieval.Answer, error)
}

type Handler struct {
	answerer Answerer
}

func NewHandler(answerer Answerer) *Handler {
	return &Handler{answerer: answerer}
}

type Request struct {
	Question string `json:"question"`
	TopK     int    `json:"top_k"`
}

func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeDetail(w, http.StatusBadRequest, "question is required")
		return
	}

	answer, err := h.answerer.Answer(ctx, req.Question, req.TopK)
	if err != nil {
		slog.ErrorContext(ctx, "query failed", "error", err, "correlationId", middleware.GetCorrelationID(ctx))
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(answer); err != nil {
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
