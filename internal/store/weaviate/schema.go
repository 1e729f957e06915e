package weaviate

import (
	"context"
	"strings"

	"github.com/weaviate/weaviate/entities/models"
)

// SchemaClient is the subset of weaviate schema operations the store
// needs, kept as an interface so schema bootstrap is testable without
// a running server.
type SchemaClient interface {
	ClassExists(ctx context.Context, className string) (bool, error)
	CreateClass(ctx context.Context, class *models.Class) error
	DeleteClass(ctx context.Context, className string) error
}

// ClassNameFor maps a collection name to a weaviate class name
// (GraphQL requires an upper-camel-case identifier).
func ClassNameFor(collection string) string {
	parts := strings.Split(collection, "_")
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}

func chunkClass(className string) *models.Class {
	return &models.Class{
		Class:       className,
		Description: "A chunk of an ingested document",
		Vectorizer:  "none",
		VectorIndexConfig: map[string]interface{}{
			"distance": "cosine",
		},
		Properties: []*models.Property{
			{Name: "content", DataType: []string{"text"}},
			{Name: "sourceFile", DataType: []string{"string"}},
			{Name: "fileName", DataType: []string{"string"}},
			{Name: "fileType", DataType: []string{"string"}},
			{Name: "position", DataType: []string{"int"}},
			{Name: "chunkIndex", DataType: []string{"int"}},
			{Name: "docIndex", DataType: []string{"int"}},
			{Name: "contentLength", DataType: []string{"int"}},
		},
	}
}

// EnsureSchema creates the collection's class if it does not exist.
func EnsureSchema(ctx context.Context, client SchemaClient, collection string) error {
	className := ClassNameFor(collection)
	exists, err := client.ClassExists(ctx, className)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return client.CreateClass(ctx, chunkClass(className))
}
