package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"wallet_vote/internal/config"
	"wallet_vote/internal/logger"
	"wallet_vote/internal/storage"
	"wallet_vote/internal/types"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openStore connects to the database named by VOTE_DB_CONNECTION, skipping
// the test when it is unset.
func openStore(t *testing.T) *store {
	t.Helper()
	conn := os.Getenv(config.EnvDBConnection)
	if conn == "" {
		t.Skipf("%s not set, skipping PostgreSQL tests", config.EnvDBConnection)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	attempts, _, err := NewStore(ctx, logger.NewNopLogger(), conn, "2")
	require.NoError(t, err)
	t.Cleanup(func() { _ = attempts.Close() })
	return attempts.(*store)
}

func TestNewStore_InvalidConnectionString(t *testing.T) {
	_, _, err := NewStore(context.Background(), logger.NewNopLogger(), "host=localhost port=notaport", "")
	assert.ErrorContains(t, err, "unable to parse connection string")
}

func TestStore_State(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	key := "test-" + uuid.NewString()
	t.Cleanup(func() {
		_, _ = s.pool.Exec(context.Background(), `DELETE FROM application_state WHERE key = $1`, key)
	})

	_, err := s.GetState(ctx, key)
	assert.ErrorIs(t, err, storage.ErrStateNotFound)

	require.NoError(t, s.SetState(ctx, key, "dark"))
	require.NoError(t, s.SetState(ctx, key, "light"))

	v, err := s.GetState(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "light", v)
}

func TestStore_LogAttempt(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	wallet := "0x" + uuid.NewString()[:8]
	t.Cleanup(func() {
		_, _ = s.pool.Exec(context.Background(), `DELETE FROM vote_attempts WHERE wallet_address = $1`, wallet)
	})

	records := []storage.AttemptRecord{
		{Timestamp: time.Now(), WalletAddress: wallet, CategorySlug: "music", CandidateSlug: "dj1", Status: types.AttemptAccepted},
		{Timestamp: time.Now(), WalletAddress: wallet, CategorySlug: "art", CandidateSlug: "p1", Status: types.AttemptRejected, Error: "API error 409"},
	}
	for _, r := range records {
		require.NoError(t, s.LogAttempt(ctx, r))
	}

	rows, err := s.pool.Query(ctx,
		`SELECT category_slug, status, COALESCE(error_message, '') FROM vote_attempts WHERE wallet_address = $1 ORDER BY id`, wallet)
	require.NoError(t, err)
	defer rows.Close()

	var got [][3]string
	for rows.Next() {
		var row [3]string
		require.NoError(t, rows.Scan(&row[0], &row[1], &row[2]))
		got = append(got, row)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, [][3]string{
		{"music", "Accepted", ""},
		{"art", "Rejected", "API error 409"},
	}, got)
}
