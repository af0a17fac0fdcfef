package storage

import (
	"context"
	"errors"
	"time"

	"wallet_vote/internal/types"
)

// ErrStateNotFound is returned by StateStorage.GetState for a key that was never set.
var ErrStateNotFound = errors.New("state not found")

// AttemptRecord represents the outcome of a single vote intent.
type AttemptRecord struct {
	Timestamp     time.Time           `json:"timestamp"`
	WalletAddress string              `json:"wallet_address"`
	CategorySlug  string              `json:"category_slug"`
	CandidateSlug string              `json:"candidate_slug"`
	Status        types.AttemptStatus `json:"status"`
	Error         string              `json:"error,omitempty"` // empty when Status is Accepted
}

// AttemptLogger defines the interface for storing the vote attempt history.
type AttemptLogger interface {
	// LogAttempt saves a record of a vote attempt.
	LogAttempt(ctx context.Context, record AttemptRecord) error
	// Close closes any underlying resources (like database connections).
	Close() error
}

// StateStorage is a small key/value store for client preferences and ballot progress.
type StateStorage interface {
	GetState(ctx context.Context, key string) (string, error)
	SetState(ctx context.Context, key, value string) error
}
