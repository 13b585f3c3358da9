package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/newhope/newhope-admin/internal/docstore"
	"github.com/newhope/newhope-admin/internal/platform/db"
	"github.com/newhope/newhope-admin/internal/platform/mongodb"
)

// OpenStore connects the document store selected by STORE_DRIVER. The
// returned closer releases the underlying connections.
func OpenStore(ctx context.Context, cfg *Config, logger *slog.Logger) (docstore.Store, func(), error) {
	switch cfg.StoreDriver {
	case StorePostgres:
		pool, err := db.New(ctx, cfg.PGDSN, db.PoolOptions{MaxConns: 10, MaxConnIdleTime: 5 * time.Minute})
		if err != nil {
			return nil, nil, err
		}
		store := docstore.NewPostgresStore(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("app: ensure schema: %w", err)
		}
		return store, pool.Close, nil
	case StoreMongo:
		client, database, err := mongodb.Connect(ctx, mongodb.Options{URI: cfg.MongoURI, Database: cfg.MongoDatabase})
		if err != nil {
			return nil, nil, err
		}
		closer := func() {
			if err := client.Disconnect(context.Background()); err != nil {
				logger.Warn("mongo disconnect", slog.Any("error", err))
			}
		}
		return docstore.NewMongoStore(client, database), closer, nil
	case StoreMemory:
		logger.Warn("using in-memory store, data is lost on restart")
		return docstore.NewMemoryStore(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("app: unknown store driver %q", cfg.StoreDriver)
	}
}
