// Package ingest runs the document pipeline: load a file, split its
// records into chunks, embed them, and persist vectors plus a registry
// entry. A file that fails at any step leaves no partial state behind.
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"docqa/features/documents"
	"docqa/internal/document"
	"docqa/internal/embed"
	"docqa/internal/store"
	"docqa/internal/text"
)

// ErrDuplicate reports a file whose content was already ingested.
var ErrDuplicate = errors.New("document already ingested")

type Loader interface {
	Load(path, fileType string) ([]document.Record, error)
}

type Registry interface {
	ExistsByHash(ctx context.Context, hash string) (bool, error)
	Save(ctx context.Context, src *documents.Source) error
}

type Result struct {
	FileName    string
	FileType    string
	RecordCount int
	ChunkCount  int
}

type Service struct {
	loader   Loader
	splitter *text.Splitter
	embedder embed.Embedder
	store    store.Store
	registry Registry
}

func NewService(l Loader, sp *text.Splitter, e embed.Embedder, st store.Store, reg Registry) *Service {
	return &Service{loader: l, splitter: sp, embedder: e, store: st, registry: reg}
}

// Ingest processes the file at path. Content dedup runs first, so a
// byte-identical re-upload is rejected before any extraction work.
func (s *Service) Ingest(ctx context.Context, path, fileType string) (*Result, error) {
	hash, err := hashFile(path)
	if err != nil {
		return nil, fmt.Errorf("hash file: %w", err)
	}

	exists, err := s.registry.ExistsByHash(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("check registry: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicate, filepath.Base(path))
	}

	records, err := s.loader.Load(path, fileType)
	if err != nil {
		return nil, err
	}

	chunks := s.splitter.SplitRecords(records)
	if len(chunks) == 0 {
		slog.InfoContext(ctx, "no text extracted, nothing to ingest", "file", filepath.Base(path))
		return &Result{FileName: filepath.Base(path), FileType: fileType, RecordCount: len(records)}, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}

	if err := s.store.Insert(ctx, chunks, vectors); err != nil {
		return nil, err
	}

	src := &documents.Source{
		FileName:    filepath.Base(path),
		FilePath:    path,
		FileType:    fileType,
		ContentHash: hash,
		RecordCount: len(records),
		ChunkCount:  len(chunks),
	}
	if err := s.registry.Save(ctx, src); err != nil {
		return nil, fmt.Errorf("save registry entry: %w", err)
	}

	slog.InfoContext(ctx, "file ingested",
		"file", src.FileName,
		"records", src.RecordCount,
		"chunks", src.ChunkCount,
	)
	return &Result{
		FileName:    src.FileName,
		FileType:    fileType,
		RecordCount: src.RecordCount,
		ChunkCount:  src.ChunkCount,
	}, nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
