// Package documents tracks which source files have been ingested. The
// registry backs duplicate detection and the document listing endpoint.
package documents

import "time"

type Source struct {
	ID          string    `json:"id"`
	FileName    string    `json:"file_name"`
	FilePath    string    `json:"file_path"`
	FileType    string    `json:"file_type"`
	ContentHash string    `json:"content_hash"`
	RecordCount int       `json:"record_count"`
	ChunkCount  int       `json:"chunk_count"`
	CreatedAt   time.Time `json:"created_at"`
}
