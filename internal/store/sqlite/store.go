// Package sqlite implements the vector store as an embedded,
// directory-persisted sqlite database. Similarity search is a
// brute-force cosine scan over the collection, which is the right
// trade-off at this corpus size.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite" // SQLite driver

	"docqa/internal/document"
	"docqa/internal/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const dbFileName = "docqa.db"

// Store is one logical collection inside the shared database. A single
// mutex serialises insert, query and reset against one another, so a
// reset cannot interleave with an in-flight insert.
type Store struct {
	db         *sql.DB
	collection string
	mu         sync.Mutex
}

// Open creates (or reopens) the database under dataDir and migrates it
// to the current schema. State survives process restart.
func Open(dataDir, collection string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o750); err != nil {
		return nil, fmt.Errorf("%w: creating data directory: %v", store.ErrStore, err)
	}

	dbPath := filepath.Join(dataDir, dbFileName)
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("%w: opening database: %v", store.ErrStore, err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: running migrations: %v", store.ErrStore, err)
	}

	return &Store{db: db, collection: collection}, nil
}

// NewWithDB wraps an existing connection without running migrations.
// Intended for tests.
func NewWithDB(db *sql.DB, collection string) *Store {
	return &Store{db: db, collection: collection}
}

func runMigrations(db *sql.DB) error {
	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return err
	}
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return err
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying handle so the source registry can share
// the same database file.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Insert stores chunks and their embeddings transactionally: either
// the whole batch lands or none of it does.
func (s *Store) Insert(ctx context.Context, chunks []document.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("%w: %d chunks, %d embeddings", store.ErrArityMismatch, len(chunks), len(vectors))
	}
	if len(chunks) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: beginning transaction: %v", store.ErrStore, err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, collection, content, embedding, metadata, position)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("%w: preparing statement: %v", store.ErrStore, err)
	}
	defer stmt.Close()

	for i, chunk := range chunks {
		meta := chunk.Meta
		meta.DocIndex = i
		meta.ContentLength = len(chunk.Text)

		metadataJSON, err := json.Marshal(meta)
		if err != nil {
			return fmt.Errorf("%w: marshalling metadata: %v", store.ErrStore, err)
		}

		if _, err := stmt.ExecContext(ctx, store.NewID(i), s.collection, chunk.Text,
			float32SliceToBytes(vectors[i]), string(metadataJSON), i); err != nil {
			return fmt.Errorf("%w: saving chunk %d: %v", store.ErrStore, i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing transaction: %v", store.ErrStore, err)
	}
	return nil
}

// Query scans the collection and returns the topK records closest to
// the query vector by cosine similarity. Rows are visited in insertion
// order and sorted stably, so equal scores keep insertion order.
func (s *Store) Query(ctx context.Context, vector []float32, topK int) ([]store.Result, error) {
	if topK <= 0 {
		return []store.Result{}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT content, embedding, metadata
		FROM chunks WHERE collection = ?
		ORDER BY rowid
	`, s.collection)
	if err != nil {
		return nil, fmt.Errorf("%w: querying chunks: %v", store.ErrStore, err)
	}
	defer rows.Close()

	var results []store.Result
	for rows.Next() {
		var content, metadataJSON string
		var embeddingBlob []byte
		if err := rows.Scan(&content, &embeddingBlob, &metadataJSON); err != nil {
			return nil, fmt.Errorf("%w: scanning chunk: %v", store.ErrStore, err)
		}

		var meta document.Metadata
		if err := json.Unmarshal([]byte(metadataJSON), &meta); err != nil {
			return nil, fmt.Errorf("%w: unmarshalling metadata: %v", store.ErrStore, err)
		}

		results = append(results, store.Result{
			Content: content,
			Meta:    meta,
			Score:   cosineSimilarity(vector, bytesToFloat32Slice(embeddingBlob)),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating chunks: %v", store.ErrStore, err)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > topK {
		results = results[:topK]
	}
	if results == nil {
		results = []store.Result{}
	}
	return results, nil
}

// Reset deletes every record in the collection. Irreversible.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM chunks WHERE collection = ?", s.collection); err != nil {
		return fmt.Errorf("%w: resetting collection: %v", store.ErrStore, err)
	}
	return nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int
	row := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks WHERE collection = ?", s.collection)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: counting chunks: %v", store.ErrStore, err)
	}
	return count, nil
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

// float32SliceToBytes converts a vector to its little-endian blob form.
func float32SliceToBytes(floats []float32) []byte {
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a blob back to a vector.
func bytesToFloat32Slice(data []byte) []float32 {
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
