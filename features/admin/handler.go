// Package admin hosts destructive maintenance endpoints.
package admin

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"docqa/internal/middleware"
)

type Resetter interface {
	Reset(ctx context.Context) error
}

type Registry interface {
	DeleteAll(ctx context.Context) error
}

type Handler struct {
	store    Resetter
	registry Registry
}

func NewHandler(store Resetter, registry Registry) *Handler {
	return &Handler{store: store, registry: registry}
}

// Reset wipes the vector collection and the source registry together,
// so wiped files can be uploaded again without tripping dedup.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	correlationID := middleware.GetCorrelationID(ctx)

	slog.InfoContext(ctx, "resetting vector database", "correlationId", correlationID)

	if err := h.store.Reset(ctx); err != nil {
		slog.ErrorContext(ctx, "reset failed", "error", err, "correlationId", correlationID)
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := h.registry.DeleteAll(ctx); err != nil {
		slog.ErrorContext(ctx, "registry wipe failed", "error", err, "correlationId", correlationID)
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	resp := map[string]string{
		"status":  "success",
		"message": "Vector database reset successfully",
	}
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
