package retrieval

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"docqa/internal/document"
	"docqa/internal/store"
)

type MockEmbedder struct {
	mock.Mock
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if v := args.Get(0); v != nil {
		return v.([]float32), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	if v := args.Get(0); v != nil {
		return v.([][]float32), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockEmbedder) ModelName() string {
	return "mock-embedder"
}

type MockStore struct {
	mock.Mock
}

func (m *MockStore) Insert(ctx context.Context, chunks []document.Chunk, vectors [][]float32) error {
	args := m.Called(ctx, chunks, vectors)
	return args.Error(0)
}

func (m *MockStore) Query(ctx context.Context, vector []float32, topK int) ([]store.Result, error) {
	args := m.Called(ctx, vector, topK)
	if v := args.Get(0); v != nil {
		return v.([]store.Result), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) Reset(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockStore) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockLLM struct {
	mock.Mock
}

func (m *MockLLM) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func (m *MockLLM) ModelName() string {
	return "mock-llm"
}

func TestAnswer_BuildsPromptFromRankedChunks(t *testing.T) {
	embedder := &MockEmbedder{}
	st := &MockStore{}
	llm := &MockLLM{}

	vector := []float32{0.1, 0.2}
	embedder.On("Embed", mock.Anything, "What is the capital of France?").Return(vector, nil)
	st.On("Query", mock.Anything, vector, 3).Return([]store.Result{
		{Content: "Paris is the capital of France.", Meta: document.Metadata{FileName: "geo.pdf"}, Score: 0.9},
		{Content: "France is in Europe.", Meta: document.Metadata{FileName: "geo.pdf"}, Score: 0.5},
	}, nil)

	var gotPrompt string
	llm.On("Generate", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		gotPrompt = args.String(1)
	}).Return("Paris.", nil)

	svc := NewService(embedder, st, llm, 3, nil)
	answer, err := svc.Answer(context.Background(), "What is the capital of France?", 0)
	require.NoError(t, err)

	assert.Equal(t, "Paris.", answer.Answer)
	require.Len(t, answer.Sources, 2)
	assert.Equal(t, 1, answer.Sources[0].Rank)
	assert.Equal(t, 2, answer.Sources[1].Rank)
	assert.Equal(t, "Paris is the capital of France.", answer.Sources[0].Content)

	expected := "Use the following context to answer the question. " +
		"If you don't know the answer based on the context, say so.\n\n" +
		"Context: Paris is the capital of France.\n\nFrance is in Europe.\n\n" +
		"Question: What is the capital of France?\n\nAnswer:"
	assert.Equal(t, expected, gotPrompt)
}

func TestAnswer_EmptyStoreSkipsLLM(t *testing.T) {
	embedder := &MockEmbedder{}
	st := &MockStore{}
	llm := &MockLLM{}

	embedder.On("Embed", mock.Anything, mock.Anything).Return([]float32{1}, nil)
	st.On("Query", mock.Anything, mock.Anything, 3).Return([]store.Result{}, nil)

	svc := NewService(embedder, st, llm, 3, nil)
	answer, err := svc.Answer(context.Background(), "anything", 3)
	require.NoError(t, err)

	assert.Equal(t, "No relevant documents found in the database.", answer.Answer)
	assert.Empty(t, answer.Sources)
	assert.NotNil(t, answer.Sources)
	llm.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestAnswer_ExplicitTopKOverridesDefault(t *testing.T) {
	embedder := &MockEmbedder{}
	st := &MockStore{}
	llm := &MockLLM{}

	embedder.On("Embed", mock.Anything, mock.Anything).Return([]float32{1}, nil)
	st.On("Query", mock.Anything, mock.Anything, 7).Return([]store.Result{
		{Content: "chunk"},
	}, nil)
	llm.On("Generate", mock.Anything, mock.Anything).Return("ok", nil)

	svc := NewService(embedder, st, llm, 3, nil)
	_, err := svc.Answer(context.Background(), "q", 7)
	require.NoError(t, err)
	st.AssertExpectations(t)
}

func TestAnswer_ErrorPropagation(t *testing.T) {
	boom := errors.New("boom")

	t.Run("embed failure", func(t *testing.T) {
		embedder := &MockEmbedder{}
		st := &MockStore{}
		embedder.On("Embed", mock.Anything, mock.Anything).Return(nil, boom)

		svc := NewService(embedder, st, &MockLLM{}, 3, nil)
		_, err := svc.Answer(context.Background(), "q", 0)
		assert.ErrorIs(t, err, boom)
		st.AssertNotCalled(t, "Query", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("store failure", func(t *testing.T) {
		embedder := &MockEmbedder{}
		st := &MockStore{}
		llm := &MockLLM{}
		embedder.On("Embed", mock.Anything, mock.Anything).Return([]float32{1}, nil)
		st.On("Query", mock.Anything, mock.Anything, mock.Anything).Return(nil, boom)

		svc := NewService(embedder, st, llm, 3, nil)
		_, err := svc.Answer(context.Background(), "q", 0)
		assert.ErrorIs(t, err, boom)
		llm.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
	})

	t.Run("llm failure", func(t *testing.T) {
		embedder := &MockEmbedder{}
		st := &MockStore{}
		llm := &MockLLM{}
		embedder.On("Embed", mock.Anything, mock.Anything).Return([]float32{1}, nil)
		st.On("Query", mock.Anything, mock.Anything, mock.Anything).Return([]store.Result{{Content: "c"}}, nil)
		llm.On("Generate", mock.Anything, mock.Anything).Return("", boom)

		svc := NewService(embedder, st, llm, 3, nil)
		_, err := svc.Answer(context.Background(), "q", 0)
		assert.ErrorIs(t, err, boom)
	})
}

func TestAnswer_LogsQuery(t *testing.T) {
	embedder := &MockEmbedder{}
	st := &MockStore{}
	llm := &MockLLM{}

	embedder.On("Embed", mock.Anything, mock.Anything).Return([]float32{1}, nil)
	st.On("Query", mock.Anything, mock.Anything, mock.Anything).Return([]store.Result{{Content: "c"}}, nil)
	llm.On("Generate", mock.Anything, mock.Anything).Return("answer", nil)

	var buf bytes.Buffer
	svc := NewService(embedder, st, llm, 3, NewQueryLogger(&buf))
	_, err := svc.Answer(context.Background(), "logged question", 0)
	require.NoError(t, err)

	var entry QueryLogEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "logged question", entry.Question)
	assert.Equal(t, 3, entry.TopK)
	assert.Equal(t, 1, entry.NumSources)
	assert.True(t, entry.Answered)
	assert.False(t, entry.Timestamp.IsZero())
}

func TestQueryLogger_ThreadSafety(t *testing.T) {
	var buf bytes.Buffer
	logger := NewQueryLogger(&buf)

	done := make(chan struct{})
	for i := 0; i < 20; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 50; j++ {
				logger.Log(QueryLogEntry{Question: "q", Duration: time.Millisecond})
			}
		}()
	}
	for i := 0; i < 20; i++ {
		<-done
	}

	decoder := json.NewDecoder(&buf)
	count := 0
	for decoder.More() {
		var entry QueryLogEntry
		require.NoError(t, decoder.Decode(&entry))
		count++
	}
	assert.Equal(t, 20*50, count)
}
