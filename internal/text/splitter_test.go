package text_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/document"
	"docqa/internal/text"
)

func TestSplitText(t *testing.T) {
	t.Run("Short Text Is One Chunk", func(t *testing.T) {
		s := text.NewSplitter(500, 100)
		chunks := s.SplitText("Paris is the capital of France.")
		require.Len(t, chunks, 1)
		assert.Equal(t, "Paris is the capital of France.", chunks[0])
	})

	t.Run("Empty Text", func(t *testing.T) {
		s := text.NewSplitter(500, 100)
		assert.Empty(t, s.SplitText(""))
	})

	t.Run("Every Chunk Within Limit", func(t *testing.T) {
		s := text.NewSplitter(50, 10)
		long := strings.Repeat("one two three four five six seven eight nine ten. ", 20)
		chunks := s.SplitText(long)
		require.NotEmpty(t, chunks)
		for _, c := range chunks {
			assert.LessOrEqual(t, len(c), 50, "chunk %q exceeds limit", c)
		}
	})

	t.Run("Paragraph Break Preferred", func(t *testing.T) {
		s := text.NewSplitter(30, 0)
		chunks := s.SplitText("first paragraph here\n\nsecond paragraph here")
		require.Len(t, chunks, 2)
		assert.Equal(t, "first paragraph here", chunks[0])
		assert.Equal(t, "second paragraph here", chunks[1])
	})

	t.Run("Sliding Window Overlap", func(t *testing.T) {
		s := text.NewSplitter(15, 5)
		chunks := s.SplitText("aa bb cc dd ee ff gg")
		require.Equal(t, []string{"aa bb cc dd ee", "ee ff gg"}, chunks)
	})

	t.Run("Hard Cut Fallback", func(t *testing.T) {
		s := text.NewSplitter(5, 2)
		chunks := s.SplitText("abcdefghij")
		require.Equal(t, []string{"abcde", "defgh", "ghij"}, chunks)
	})

	t.Run("Zero Overlap Reconstructs Text", func(t *testing.T) {
		s := text.NewSplitter(5, 0)
		chunks := s.SplitText("aa bb cc dd")
		require.Equal(t, []string{"aa bb", "cc", "dd"}, chunks)
		assert.Equal(t, "aa bb cc dd", strings.Join(chunks, " "))
	})

	t.Run("Adjacent Chunks Share Tail", func(t *testing.T) {
		s := text.NewSplitter(40, 15)
		long := strings.Repeat("alpha beta gamma delta epsilon zeta ", 10)
		chunks := s.SplitText(long)
		require.Greater(t, len(chunks), 1)
		for i := 1; i < len(chunks); i++ {
			firstWord := strings.Fields(chunks[i])[0]
			assert.Contains(t, chunks[i-1], firstWord,
				"chunk %d should start inside the tail of chunk %d", i, i-1)
		}
	})
}

func TestSplitRecords(t *testing.T) {
	s := text.NewSplitter(15, 5)
	records := []document.Record{
		{
			Text: "aa bb cc dd ee ff gg",
			Meta: document.Metadata{
				SourceFile: "/tmp/a.pdf",
				FileName:   "a.pdf",
				FileType:   document.FileTypePDF,
				Position:   0,
			},
		},
		{
			Text: "short",
			Meta: document.Metadata{
				SourceFile: "/tmp/a.pdf",
				FileName:   "a.pdf",
				FileType:   document.FileTypePDF,
				Position:   1,
			},
		},
	}

	chunks := s.SplitRecords(records)
	require.Len(t, chunks, 3)

	// Chunk index restarts per record; record metadata is inherited.
	assert.Equal(t, 0, chunks[0].Meta.ChunkIndex)
	assert.Equal(t, 1, chunks[1].Meta.ChunkIndex)
	assert.Equal(t, 0, chunks[2].Meta.ChunkIndex)

	assert.Equal(t, 0, chunks[0].Meta.Position)
	assert.Equal(t, 1, chunks[2].Meta.Position)

	for _, c := range chunks {
		assert.Equal(t, len(c.Text), c.Meta.ContentLength)
		assert.Equal(t, "a.pdf", c.Meta.FileName)
	}
}
