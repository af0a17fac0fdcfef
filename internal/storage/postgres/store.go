package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"wallet_vote/internal/logger"
	"wallet_vote/internal/storage"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// store implements storage.AttemptLogger and storage.StateStorage using PostgreSQL.
type store struct {
	pool *pgxpool.Pool
	log  logger.Logger
}

var (
	_ storage.AttemptLogger = (*store)(nil)
	_ storage.StateStorage  = (*store)(nil)
)

const createAttemptTableSQL = `
CREATE TABLE IF NOT EXISTS vote_attempts (
    id SERIAL PRIMARY KEY,
    timestamp TIMESTAMPTZ NOT NULL,
    wallet_address VARCHAR(42) NOT NULL,
    category_slug VARCHAR(255) NOT NULL,
    candidate_slug VARCHAR(255) NOT NULL,
    status VARCHAR(50) NOT NULL,
    error_message TEXT
);`

const createStateTableSQL = `
CREATE TABLE IF NOT EXISTS application_state (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);`

// NewStore creates a new PostgreSQL attempt logger and state storage.
func NewStore(ctx context.Context, log logger.Logger, connectionString string, maxConnsStr string) (storage.AttemptLogger, storage.StateStorage, error) {
	config, err := pgxpool.ParseConfig(connectionString)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to parse connection string: %w", err)
	}

	if maxConnsStr != "" {
		maxConns, convErr := strconv.Atoi(maxConnsStr)
		if convErr != nil {
			log.Warn("Invalid pool_max_conns value, using default", "module", "storage", "value", maxConnsStr, "error", convErr)
		} else if maxConns > 0 {
			config.MaxConns = int32(maxConns)
			log.Info("Setting max DB connections", "module", "storage", "count", config.MaxConns)
		}
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	defer func() {
		if err != nil {
			pool.Close()
		}
	}()

	if err = pool.Ping(ctx); err != nil {
		return nil, nil, fmt.Errorf("unable to ping database: %w", err)
	}

	if _, err = pool.Exec(ctx, createAttemptTableSQL); err != nil {
		return nil, nil, fmt.Errorf("failed to create vote_attempts table: %w", err)
	}
	log.Debug("Table 'vote_attempts' ready", "module", "storage")

	if _, err = pool.Exec(ctx, createStateTableSQL); err != nil {
		return nil, nil, fmt.Errorf("failed to create application_state table: %w", err)
	}
	log.Debug("Table 'application_state' ready", "module", "storage")

	log.Success("Successfully connected to PostgreSQL.", "module", "storage")
	s := &store{pool: pool, log: log}
	return s, s, nil
}

// LogAttempt saves a vote attempt to the 'vote_attempts' table.
func (s *store) LogAttempt(ctx context.Context, record storage.AttemptRecord) error {
	query := `INSERT INTO vote_attempts (timestamp, wallet_address, category_slug, candidate_slug, status, error_message)
	           VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := s.pool.Exec(ctx, query,
		record.Timestamp,
		record.WalletAddress,
		record.CategorySlug,
		record.CandidateSlug,
		string(record.Status),
		record.Error,
	)
	if err != nil {
		s.log.Error("Failed to insert vote attempt into DB", "module", "storage", "error", err,
			"wallet", record.WalletAddress, "category", record.CategorySlug)
		return fmt.Errorf("failed to execute insert query: %w", err)
	}
	s.log.Debug("Vote attempt saved to DB", "module", "storage", "wallet", record.WalletAddress,
		"category", record.CategorySlug, "status", record.Status)
	return nil
}

// GetState retrieves a value from the application_state table.
func (s *store) GetState(ctx context.Context, key string) (string, error) {
	query := `SELECT value FROM application_state WHERE key = $1`
	var value string
	err := s.pool.QueryRow(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", storage.ErrStateNotFound
		}
		s.log.Error("Failed to query state from DB", "module", "storage", "key", key, "error", err)
		return "", fmt.Errorf("failed to query state for key '%s': %w", key, err)
	}
	return value, nil
}

// SetState saves or updates a key-value pair in the application_state table.
func (s *store) SetState(ctx context.Context, key, value string) error {
	query := `INSERT INTO application_state (key, value)
	           VALUES ($1, $2)
	           ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`
	if _, err := s.pool.Exec(ctx, query, key, value); err != nil {
		s.log.Error("Failed to set state in DB", "module", "storage", "key", key, "error", err)
		return fmt.Errorf("failed to set state for key '%s': %w", key, err)
	}
	s.log.Debug("State saved to DB", "module", "storage", "key", key)
	return nil
}

// Close closes the database connection pool.
func (s *store) Close() error {
	s.log.Info("Closing PostgreSQL connection pool...", "module", "storage")
	s.pool.Close()
	return nil
}
