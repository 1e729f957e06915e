// Package text splits records into overlapping chunks bounded by a
// configured maximum length.
package text

import (
	"strings"

	"docqa/internal/document"
)

// defaultSeparators is the split priority: paragraph break, line break,
// sentence-ending punctuation, word boundary, and finally a hard
// character cut.
var defaultSeparators = []string{"\n\n", "\n", ".", "!", "?", " ", ""}

// Splitter recursively splits text on the highest-priority separator
// present, then merges the pieces back into windows of at most
// chunkSize characters where each window starts roughly overlap
// characters before the end of the previous one.
type Splitter struct {
	chunkSize  int
	overlap    int
	separators []string
}

func NewSplitter(chunkSize, overlap int) *Splitter {
	return &Splitter{
		chunkSize:  chunkSize,
		overlap:    overlap,
		separators: defaultSeparators,
	}
}

// SplitRecords chunks every record in order. Each chunk inherits its
// record's metadata and gains a zero-based chunk index and its content
// length.
func (s *Splitter) SplitRecords(records []document.Record) []document.Chunk {
	var chunks []document.Chunk
	for _, rec := range records {
		for i, piece := range s.SplitText(rec.Text) {
			meta := rec.Meta
			meta.ChunkIndex = i
			meta.ContentLength = len(piece)
			chunks = append(chunks, document.Chunk{Text: piece, Meta: meta})
		}
	}
	return chunks
}

// SplitText splits a single text into chunks of at most chunkSize
// characters. Chunks are trimmed of surrounding whitespace; empty
// pieces are dropped.
func (s *Splitter) SplitText(text string) []string {
	return s.splitRecursive(text, s.separators)
}

func (s *Splitter) splitRecursive(text string, separators []string) []string {
	// Pick the first separator that appears in the text; the empty
	// separator always matches and cuts between characters.
	sep := separators[len(separators)-1]
	var next []string
	for i, cand := range separators {
		if cand == "" {
			sep = ""
			next = nil
			break
		}
		if strings.Contains(text, cand) {
			sep = cand
			next = separators[i+1:]
			break
		}
	}

	splits := splitKeepSeparator(text, sep)

	var final []string
	var pending []string
	for _, piece := range splits {
		if len(piece) < s.chunkSize {
			pending = append(pending, piece)
			continue
		}
		if len(pending) > 0 {
			final = append(final, s.merge(pending)...)
			pending = nil
		}
		if len(next) == 0 {
			// No finer separator left; only reachable for
			// single-character pieces, kept as-is.
			final = append(final, piece)
		} else {
			final = append(final, s.splitRecursive(piece, next)...)
		}
	}
	if len(pending) > 0 {
		final = append(final, s.merge(pending)...)
	}
	return final
}

// splitKeepSeparator splits text on sep, keeping the separator attached
// to the front of the following piece so no character is lost. An empty
// sep splits into individual characters.
func splitKeepSeparator(text, sep string) []string {
	if sep == "" {
		out := make([]string, 0, len(text))
		for _, r := range text {
			out = append(out, string(r))
		}
		return out
	}

	parts := strings.Split(text, sep)
	out := make([]string, 0, len(parts))
	for i, p := range parts {
		if i > 0 {
			p = sep + p
		}
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// merge greedily packs splits into chunks of at most chunkSize
// characters. When a chunk is emitted, splits are dropped from the
// front of the window until at most overlap characters remain, so the
// next chunk repeats the tail of the previous one.
func (s *Splitter) merge(splits []string) []string {
	var chunks []string
	var window []string
	total := 0

	flush := func() {
		joined := strings.TrimSpace(strings.Join(window, ""))
		if joined != "" {
			chunks = append(chunks, joined)
		}
	}

	for _, piece := range splits {
		if total+len(piece) > s.chunkSize && len(window) > 0 {
			flush()
			for total > s.overlap || (total+len(piece) > s.chunkSize && total > 0) {
				total -= len(window[0])
				window = window[1:]
			}
		}
		window = append(window, piece)
		total += len(piece)
	}
	flush()
	return chunks
}
