// Package weaviate implements the vector-store port against a remote
// weaviate instance. Ranking uses weaviate's cosine certainty; tie
// order among equal scores is whatever the server returns.
package weaviate

import (
	"context"
	"fmt"

	weaviateclient "github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"

	"docqa/internal/document"
	"docqa/internal/store"
)

type Store struct {
	client     *weaviateclient.Client
	schema     SchemaClient
	collection string
	className  string
}

func NewStore(client *weaviateclient.Client, collection string) *Store {
	return &Store{
		client:     client,
		schema:     NewClientAdapter(client),
		collection: collection,
		className:  ClassNameFor(collection),
	}
}

func (s *Store) Insert(ctx context.Context, chunks []document.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("%w: %d chunks, %d vectors", store.ErrArityMismatch, len(chunks), len(vectors))
	}
	for i, chunk := range chunks {
		meta := chunk.Meta
		meta.DocIndex = i
		meta.ContentLength = len(chunk.Text)
		_, err := s.client.Data().Creator().
			WithClassName(s.className).
			WithProperties(map[string]interface{}{
				"content":       chunk.Text,
				"sourceFile":    meta.SourceFile,
				"fileName":      meta.FileName,
				"fileType":      meta.FileType,
				"position":      meta.Position,
				"chunkIndex":    meta.ChunkIndex,
				"docIndex":      meta.DocIndex,
				"contentLength": meta.ContentLength,
			}).
			WithVector(vectors[i]).
			Do(ctx)
		if err != nil {
			return fmt.Errorf("%w: insert object %d: %v", store.ErrStore, i, err)
		}
	}
	return nil
}

func (s *Store) Query(ctx context.Context, vector []float32, topK int) ([]store.Result, error) {
	nearVector := s.client.GraphQL().NearVectorArgBuilder().WithVector(vector)

	fields := []graphql.Field{
		{Name: "content"},
		{Name: "sourceFile"},
		{Name: "fileName"},
		{Name: "fileType"},
		{Name: "position"},
		{Name: "chunkIndex"},
		{Name: "docIndex"},
		{Name: "contentLength"},
		{Name: "_additional", Fields: []graphql.Field{{Name: "certainty"}}},
	}

	res, err := s.client.GraphQL().Get().
		WithClassName(s.className).
		WithNearVector(nearVector).
		WithLimit(topK).
		WithFields(fields...).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrStore, err)
	}
	if len(res.Errors) > 0 {
		return nil, fmt.Errorf("%w: graphql error: %v", store.ErrStore, res.Errors)
	}

	results := []store.Result{}
	data, ok := res.Data["Get"].(map[string]interface{})
	if !ok {
		return results, nil
	}
	objects, ok := data[s.className].([]interface{})
	if !ok {
		return results, nil
	}
	for _, o := range objects {
		props, ok := o.(map[string]interface{})
		if !ok {
			continue
		}
		result := store.Result{}
		if content, ok := props["content"].(string); ok {
			result.Content = content
		}
		if v, ok := props["sourceFile"].(string); ok {
			result.Meta.SourceFile = v
		}
		if v, ok := props["fileName"].(string); ok {
			result.Meta.FileName = v
		}
		if v, ok := props["fileType"].(string); ok {
			result.Meta.FileType = v
		}
		if v, ok := props["position"].(float64); ok {
			result.Meta.Position = int(v)
		}
		if v, ok := props["chunkIndex"].(float64); ok {
			result.Meta.ChunkIndex = int(v)
		}
		if v, ok := props["docIndex"].(float64); ok {
			result.Meta.DocIndex = int(v)
		}
		if v, ok := props["contentLength"].(float64); ok {
			result.Meta.ContentLength = int(v)
		}
		if additional, ok := props["_additional"].(map[string]interface{}); ok {
			if certainty, ok := additional["certainty"].(float64); ok {
				// certainty is (1+cosine)/2; report raw cosine so both
				// backends score on the same scale.
				result.Score = float32(2*certainty - 1)
			}
		}
		results = append(results, result)
	}
	return results, nil
}

func (s *Store) Reset(ctx context.Context) error {
	if err := s.schema.DeleteClass(ctx, s.className); err != nil {
		return fmt.Errorf("%w: delete class: %v", store.ErrStore, err)
	}
	if err := EnsureSchema(ctx, s.schema, s.collection); err != nil {
		return fmt.Errorf("%w: recreate class: %v", store.ErrStore, err)
	}
	return nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	res, err := s.client.GraphQL().Aggregate().
		WithClassName(s.className).
		WithFields(graphql.Field{Name: "meta", Fields: []graphql.Field{{Name: "count"}}}).
		Do(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", store.ErrStore, err)
	}
	if len(res.Errors) > 0 {
		return 0, fmt.Errorf("%w: graphql error: %v", store.ErrStore, res.Errors)
	}

	aggregate, ok := res.Data["Aggregate"].(map[string]interface{})
	if !ok {
		return 0, fmt.Errorf("%w: unexpected aggregate payload", store.ErrStore)
	}
	rows, ok := aggregate[s.className].([]interface{})
	if !ok || len(rows) == 0 {
		return 0, nil
	}
	row, ok := rows[0].(map[string]interface{})
	if !ok {
		return 0, nil
	}
	meta, ok := row["meta"].(map[string]interface{})
	if !ok {
		return 0, nil
	}
	count, ok := meta["count"].(float64)
	if !ok {
		return 0, nil
	}
	return int(count), nil
}
