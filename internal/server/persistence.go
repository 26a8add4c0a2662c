package server

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"hayat-support-backend/internal/config"
	"hayat-support-backend/internal/db"
	"hayat-support-backend/internal/store"
)

// openPersistence selects the conversation backend named by cfg.Store. The
// returned *db.DB is nil for the memory and file backends.
func openPersistence(ctx context.Context, cfg config.Config, log *zap.Logger) (store.Persistence, *db.DB, error) {
	switch cfg.Store {
	case config.StoreFile:
		log.Info("using file conversation store", zap.String("dir", cfg.StoreDir))
		return store.NewFilePersistence(cfg.StoreDir), nil, nil
	case config.StorePostgres:
		database, err := db.New(ctx, cfg.DatabaseURL, log.Named("db"))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return migrated(ctx, database, log)
	case config.StoreSQLite:
		database, err := db.OpenSQLite(ctx, cfg.SQLitePath, log.Named("db"))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		return migrated(ctx, database, log)
	default:
		log.Info("using in-memory conversation store; conversations are lost on restart")
		return store.NewMemoryPersistence(), nil, nil
	}
}

func migrated(ctx context.Context, database *db.DB, log *zap.Logger) (store.Persistence, *db.DB, error) {
	if err := database.RunMigrations(ctx); err != nil {
		database.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info("database ready", zap.String("dialect", string(database.Dialect)))
	return store.NewSQLPersistence(database), database, nil
}
