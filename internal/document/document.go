// Package document loads source files (PDF pages, spreadsheet rows)
// into records ready for chunking.
package document

import "errors"

// ErrExtraction marks a source file that could not be read or parsed.
// Loaders return it wrapped with file-specific detail and never return
// partial results.
var ErrExtraction = errors.New("extraction failed")

// FileType tags where a record came from.
const (
	FileTypePDF   = "pdf"
	FileTypeExcel = "excel"
)

// Metadata carries the fixed known keys every record and chunk has,
// plus an open extension map for forward-compatible fields.
type Metadata struct {
	SourceFile    string            `json:"source_file"`
	FileName      string            `json:"file_name"`
	FileType      string            `json:"file_type"`
	Position      int               `json:"position"`
	ChunkIndex    int               `json:"chunk_index"`
	DocIndex      int               `json:"doc_index"`
	ContentLength int               `json:"content_length"`
	Extra         map[string]string `json:"extra,omitempty"`
}

// Record is one unit extracted from a source: a PDF page or a
// spreadsheet row. Records are consumed by the splitter and never
// persisted on their own.
type Record struct {
	Text string
	Meta Metadata
}

// Chunk is a bounded-length window of a record's text. It inherits the
// record's metadata plus its zero-based chunk index.
type Chunk struct {
	Text string
	Meta Metadata
}
