package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	weaviateclient "github.com/weaviate/weaviate-go-client/v5/weaviate"

	"docqa/internal/config"
	"docqa/internal/store"
	sqlitestore "docqa/internal/store/sqlite"
	weaviatestore "docqa/internal/store/weaviate"
)

// Dependencies holds the stateful resources the app runs on. The
// sqlite database is always opened: it carries the source registry
// even when chunk vectors live in weaviate.
type Dependencies struct {
	DB          *sql.DB
	VectorStore store.Store

	local *sqlitestore.Store
}

func Bootstrap(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	local, err := sqlitestore.Open(cfg.VectorStorePath, cfg.CollectionName)
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}

	deps := &Dependencies{DB: local.DB(), local: local}

	switch cfg.StoreBackend {
	case "weaviate":
		wCfg := weaviateclient.Config{Host: cfg.WeaviateHost, Scheme: cfg.WeaviateScheme}
		wClient, err := weaviateclient.NewClient(wCfg)
		if err != nil {
			local.Close()
			return nil, fmt.Errorf("weaviate client error: %w", err)
		}

		retryDelay := time.Duration(cfg.BootstrapRetryDelaySeconds) * time.Second
		schema := weaviatestore.NewClientAdapter(wClient)
		if err := EnsureSchemaWithRetry(ctx, schema, cfg.CollectionName, cfg.BootstrapRetryAttempts, retryDelay); err != nil {
			local.Close()
			return nil, fmt.Errorf("weaviate schema error: %w", err)
		}
		deps.VectorStore = weaviatestore.NewStore(wClient, cfg.CollectionName)
	default:
		deps.VectorStore = local
	}

	return deps, nil
}

func (d *Dependencies) Close() error {
	return d.local.Close()
}

// EnsureSchemaWithRetry retries schema bootstrap while weaviate is
// still coming up.
func EnsureSchemaWithRetry(ctx context.Context, client weaviatestore.SchemaClient, collection string, attempts int, delay time.Duration) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = weaviatestore.EnsureSchema(ctx, client, collection); err == nil {
			return nil
		}
		slog.Warn("schema bootstrap failed, retrying...", "attempt", i+1, "max_attempts", attempts)
		if i < attempts-1 {
			time.Sleep(delay)
		}
	}
	return err
}
