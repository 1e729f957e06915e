// Package embed defines the embedding port and the load-once policy
// shared by all providers.
package embed

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrModelLoad marks an embedding backend that could not be
// initialised. Once returned, the same failure is reported on every
// subsequent call; the load is never silently retried.
var ErrModelLoad = errors.New("embedding model load failed")

// Embedder converts text into fixed-dimensionality vectors. Vectors are
// returned in input order, one per input string.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	ModelName() string
}

// Lazy defers provider construction to the first call and memoises the
// outcome, success or failure, so the process performs exactly one load
// attempt regardless of call count.
type Lazy struct {
	model   string
	factory func(ctx context.Context) (Embedder, error)

	once     sync.Once
	delegate Embedder
	loadErr  error
}

func NewLazy(model string, factory func(ctx context.Context) (Embedder, error)) *Lazy {
	return &Lazy{model: model, factory: factory}
}

func (l *Lazy) get(ctx context.Context) (Embedder, error) {
	l.once.Do(func() {
		e, err := l.factory(ctx)
		if err != nil {
			l.loadErr = fmt.Errorf("%w: %v", ErrModelLoad, err)
			return
		}
		l.delegate = e
	})
	if l.loadErr != nil {
		return nil, l.loadErr
	}
	return l.delegate, nil
}

func (l *Lazy) Embed(ctx context.Context, text string) ([]float32, error) {
	e, err := l.get(ctx)
	if err != nil {
		return nil, err
	}
	return e.Embed(ctx, text)
}

func (l *Lazy) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	e, err := l.get(ctx)
	if err != nil {
		return nil, err
	}
	return e.EmbedBatch(ctx, texts)
}

func (l *Lazy) ModelName() string {
	return l.model
}
