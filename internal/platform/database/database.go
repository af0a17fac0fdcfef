package database

import (
	"context"
	"errors"
	"fmt"

	"wallet_vote/internal/logger"
	"wallet_vote/internal/storage"
	"wallet_vote/internal/storage/noop"
	"wallet_vote/internal/storage/postgres"
	"wallet_vote/internal/storage/sqlite"
	"wallet_vote/internal/types"
)

var (
	// ErrUnsupportedDBType indicates that the provided database type is not supported.
	ErrUnsupportedDBType = errors.New("unsupported database type specified")
	// ErrDBConnectionFailed indicates that the attempt to connect to the database failed.
	ErrDBConnectionFailed = errors.New("database connection failed")
	// ErrMissingConnectionString indicates that the database connection string was not provided.
	ErrMissingConnectionString = errors.New("database connection string is missing")
)

// NewStorage creates the attempt logger and state storage for the given backend.
func NewStorage(ctx context.Context, log logger.Logger, dbType types.DBType, connStr, maxConnsStr string) (storage.AttemptLogger, storage.StateStorage, error) {
	switch dbType {
	case types.Postgres:
		if connStr == "" {
			return nil, nil, fmt.Errorf("postgres: %w", ErrMissingConnectionString)
		}
		log.Info("Initializing PostgreSQL attempt log...", "module", "database")
		attempts, state, err := postgres.NewStore(ctx, log, connStr, maxConnsStr)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres: %w: %w", ErrDBConnectionFailed, err)
		}
		return attempts, state, nil
	case types.SQLite:
		if connStr == "" {
			return nil, nil, fmt.Errorf("sqlite: %w", ErrMissingConnectionString)
		}
		log.Info("Initializing SQLite attempt log...", "module", "database")
		attempts, state, err := sqlite.NewStore(ctx, log, connStr)
		if err != nil {
			return nil, nil, fmt.Errorf("sqlite: %w: %w", ErrDBConnectionFailed, err)
		}
		return attempts, state, nil
	case types.None, "":
		log.Info("Database logging disabled, preferences kept in memory.", "module", "database")
		attempts, state := noop.NewStore()
		return attempts, state, nil
	default:
		return nil, nil, fmt.Errorf("%w: %s (expected '%s', '%s' or '%s')",
			ErrUnsupportedDBType, dbType, types.Postgres, types.SQLite, types.None)
	}
}
