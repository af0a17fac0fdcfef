package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"wallet_vote/internal/logger"
	"wallet_vote/internal/storage"

	_ "github.com/mattn/go-sqlite3"
)

// store implements storage.AttemptLogger and storage.StateStorage using SQLite.
type store struct {
	db  *sql.DB
	log logger.Logger
}

var (
	_ storage.AttemptLogger = (*store)(nil)
	_ storage.StateStorage  = (*store)(nil)
)

const createAttemptTableSQL = `
CREATE TABLE IF NOT EXISTS vote_attempts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    timestamp DATETIME NOT NULL,
    wallet_address TEXT NOT NULL,
    category_slug TEXT NOT NULL,
    candidate_slug TEXT NOT NULL,
    status TEXT NOT NULL,
    error_message TEXT
);`

const createStateTableSQL = `
CREATE TABLE IF NOT EXISTS application_state (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);`

// NewStore creates a new SQLite attempt logger and state storage.
func NewStore(ctx context.Context, log logger.Logger, dbPath string) (storage.AttemptLogger, storage.StateStorage, error) {
	log.Info("Initializing SQLite database...", "module", "storage", "path", dbPath)

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, nil, fmt.Errorf("failed to create directory for sqlite db %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open sqlite database at %s: %w", dbPath, err)
	}

	defer func() {
		if err != nil {
			db.Close()
		}
	}()

	if err = db.PingContext(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to ping sqlite database at %s: %w", dbPath, err)
	}

	if _, err = db.ExecContext(ctx, createAttemptTableSQL); err != nil {
		return nil, nil, fmt.Errorf("failed to create vote_attempts table: %w", err)
	}
	log.Debug("Table 'vote_attempts' ready", "module", "storage")

	if _, err = db.ExecContext(ctx, createStateTableSQL); err != nil {
		return nil, nil, fmt.Errorf("failed to create application_state table: %w", err)
	}
	log.Debug("Table 'application_state' ready", "module", "storage")

	log.Success("SQLite database initialized successfully.", "module", "storage", "path", dbPath)
	s := &store{db: db, log: log}
	return s, s, nil
}

// LogAttempt saves a vote attempt to the SQLite database.
func (s *store) LogAttempt(ctx context.Context, record storage.AttemptRecord) error {
	query := `INSERT INTO vote_attempts (timestamp, wallet_address, category_slug, candidate_slug, status, error_message)
               VALUES (?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		record.Timestamp.UTC(),
		record.WalletAddress,
		record.CategorySlug,
		record.CandidateSlug,
		string(record.Status),
		record.Error,
	)
	if err != nil {
		s.log.Error("Failed to insert vote attempt into SQLite DB", "module", "storage", "error", err,
			"wallet", record.WalletAddress, "category", record.CategorySlug)
		return fmt.Errorf("failed to execute insert query in sqlite: %w", err)
	}
	s.log.Debug("Vote attempt saved to SQLite DB", "module", "storage", "wallet", record.WalletAddress,
		"category", record.CategorySlug, "status", record.Status)
	return nil
}

// GetState retrieves a value from the application_state table.
func (s *store) GetState(ctx context.Context, key string) (string, error) {
	query := `SELECT value FROM application_state WHERE key = ?`
	var value string
	err := s.db.QueryRowContext(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", storage.ErrStateNotFound
		}
		s.log.Error("Failed to query state from SQLite DB", "module", "storage", "key", key, "error", err)
		return "", fmt.Errorf("failed to query state from sqlite for key '%s': %w", key, err)
	}
	return value, nil
}

// SetState saves or updates a key-value pair in the application_state table.
func (s *store) SetState(ctx context.Context, key, value string) error {
	query := `INSERT INTO application_state (key, value)
	           VALUES (?, ?)
	           ON CONFLICT (key) DO UPDATE SET value = excluded.value`
	if _, err := s.db.ExecContext(ctx, query, key, value); err != nil {
		s.log.Error("Failed to set state in SQLite DB", "module", "storage", "key", key, "error", err)
		return fmt.Errorf("failed to set state in sqlite for key '%s': %w", key, err)
	}
	s.log.Debug("State saved to SQLite DB", "module", "storage", "key", key)
	return nil
}

// Close closes the database connection.
func (s *store) Close() error {
	s.log.Info("Closing SQLite database connection...", "module", "storage")
	return s.db.Close()
}
