package documents

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

type SQLiteRepo struct {
	db *sql.DB
}

func NewSQLiteRepo(db *sql.DB) *SQLiteRepo {
	return &SQLiteRepo{db: db}
}

func (r *SQLiteRepo) ExistsByHash(ctx context.Context, hash string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM sources WHERE content_hash = ?)`
	if err := r.db.QueryRowContext(ctx, query, hash).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *SQLiteRepo) Save(ctx context.Context, src *Source) error {
	if src.ID == "" {
		src.ID = uuid.New().String()
	}
	query := `INSERT INTO sources (id, file_name, file_path, file_type, content_hash, record_count, chunk_count) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, src.ID, src.FileName, src.FilePath, src.FileType, src.ContentHash, src.RecordCount, src.ChunkCount)
	return err
}

func (r *SQLiteRepo) List(ctx context.Context) ([]Source, error) {
	query := `SELECT id, file_name, file_path, file_type, content_hash, record_count, chunk_count, created_at FROM sources ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sources := []Source{}
	for rows.Next() {
		var s Source
		if err := rows.Scan(&s.ID, &s.FileName, &s.FilePath, &s.FileType, &s.ContentHash, &s.RecordCount, &s.ChunkCount, &s.CreatedAt); err != nil {
			return nil, err
		}
		sources = append(sources, s)
	}
	return sources, rows.Err()
}

func (r *SQLiteRepo) Count(ctx context.Context) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM sources`
	if err := r.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// DeleteAll clears the registry. It runs alongside a vector store
// reset so re-uploading a wiped file is not flagged as a duplicate.
func (r *SQLiteRepo) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sources`)
	return err
}
