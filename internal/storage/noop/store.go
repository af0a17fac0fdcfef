package noop

import (
	"context"
	"sync"

	"wallet_vote/internal/storage"
)

// store drops attempt records and keeps state in memory for the life of the process.
// Used when database logging is disabled.
type store struct {
	mu    sync.RWMutex
	state map[string]string
}

var (
	_ storage.AttemptLogger = (*store)(nil)
	_ storage.StateStorage  = (*store)(nil)
)

// NewStore creates a new no-operation attempt logger with in-memory state.
func NewStore() (storage.AttemptLogger, storage.StateStorage) {
	s := &store{state: make(map[string]string)}
	return s, s
}

// LogAttempt does nothing.
func (s *store) LogAttempt(ctx context.Context, record storage.AttemptRecord) error {
	return nil
}

func (s *store) GetState(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.state[key]
	if !ok {
		return "", storage.ErrStateNotFound
	}
	return v, nil
}

func (s *store) SetState(ctx context.Context, key, value string) error {
	s.mu.Lock()
	s.state[key] = value
	s.mu.Unlock()
	return nil
}

// Close does nothing.
func (s *store) Close() error {
	return nil
}
