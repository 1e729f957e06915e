package documents

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
)

type Repo interface {
	List(ctx context.Context) ([]Source, error)
}

type Handler struct {
	repo Repo
}

func NewHandler(repo Repo) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sources, err := h.repo.List(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list documents", "error", err)
		writeDetail(w, http.StatusInternalServerError, "Failed to list documents")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"documents": sources, "total": len(sources)}); err != nil {
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
