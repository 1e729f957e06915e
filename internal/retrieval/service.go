// Package retrieval answers questions over the ingested corpus:
// embed the question, fetch the nearest chunks, and ask the LLM with
// those chunks as context.
package retrieval

import (
	"context"
	"fmt"
	"strings"
	"time"

	"docqa/internal/document"
	"docqa/internal/embed"
	"docqa/internal/middleware"
	"docqa/internal/store"
)

const noResultsMessage = "No relevant documents found in the database."

const promptTemplate = "Use the following context to answer the question. " +
	"If you don't know the answer based on the context, say so.\n\n" +
	"Context: %s\n\nQuestion: %s\n\nAnswer:"

type LLM interface {
	Generate(ctx context.Context, prompt string) (string, error)
	ModelName() string
}

// Source is one retrieved chunk backing an answer, ranked 1-based by
// relevance.
type Source struct {
	Content string            `json:"content"`
	Meta    document.Metadata `json:"metadata"`
	Rank    int               `json:"relevance_rank"`
}

type Answer struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
}

type Service struct {
	embedder embed.Embedder
	store    store.Store
	llm      LLM
	topK     int
	logger   *QueryLogger
}

func NewService(e embed.Embedder, s store.Store, llm LLM, topK int, l *QueryLogger) *Service {
	return &Service{embedder: e, store: s, llm: llm, topK: topK, logger: l}
}

// Answer retrieves the topK nearest chunks for question and generates
// an answer grounded in them. topK <= 0 falls back to the configured
// default. When nothing relevant is stored the LLM is not called and a
// fixed message is returned.
func (s *Service) Answer(ctx context.Context, question string, topK int) (*Answer, error) {
	start := time.Now()
	if topK <= 0 {
		topK = s.topK
	}

	vector, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	results, err := s.store.Query(ctx, vector, topK)
	if err != nil {
		return nil, fmt.Errorf("query store: %w", err)
	}

	answer := &Answer{Sources: []Source{}}
	if len(results) == 0 {
		answer.Answer = noResultsMessage
		s.log(ctx, question, topK, answer, false, start)
		return answer, nil
	}

	contents := make([]string, len(results))
	for i, r := range results {
		contents[i] = r.Content
		answer.Sources = append(answer.Sources, Source{
			Content: r.Content,
			Meta:    r.Meta,
			Rank:    i + 1,
		})
	}

	prompt := fmt.Sprintf(promptTemplate, strings.Join(contents, "\n\n"), question)
	text, err := s.llm.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}
	answer.Answer = text

	s.log(ctx, question, topK, answer, true, start)
	return answer, nil
}

func (s *Service) log(ctx context.Context, question string, topK int, answer *Answer, answered bool, start time.Time) {
	if s.logger == nil {
		return
	}
	s.logger.Log(QueryLogEntry{
		Question:      question,
		TopK:          topK,
		NumSources:    len(answer.Sources),
		Answered:      answered,
		Duration:      time.Since(start),
		CorrelationID: middleware.GetCorrelationID(ctx),
	})
}
