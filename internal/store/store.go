// Package store defines the vector-store port shared by the embedded
// sqlite backend and the remote weaviate backend.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"docqa/internal/document"
)

var (
	// ErrArityMismatch reports a chunk/embedding count mismatch. It
	// indicates an internal bug, not a user error.
	ErrArityMismatch = errors.New("chunk and embedding counts differ")

	// ErrStore wraps backend failures.
	ErrStore = errors.New("vector store failure")
)

// Result is one retrieved record, closest-first within a query's
// result list.
type Result struct {
	Content string            `json:"content"`
	Meta    document.Metadata `json:"metadata"`
	Score   float32           `json:"score"`
}

// Store is a persistent named collection of (vector, text, metadata)
// records.
//
// Insert assigns each chunk a unique id and augments its metadata with
// the batch position and content length. The sqlite backend inserts
// transactionally (all-or-nothing); the weaviate backend is
// best-effort per object.
//
// Query returns the k nearest records by cosine similarity, ties
// broken by insertion order. Fewer than k records are returned when
// the collection is smaller; an empty collection yields an empty list.
type Store interface {
	Insert(ctx context.Context, chunks []document.Chunk, vectors [][]float32) error
	Query(ctx context.Context, vector []float32, topK int) ([]Result, error)
	Reset(ctx context.Context) error
	Count(ctx context.Context) (int, error)
}

// NewID produces a record id of the form doc_<8 hex chars>_<index>.
func NewID(index int) string {
	u := uuid.New()
	return fmt.Sprintf("doc_%x_%d", u[:4], index)
}
