package ballot

import (
	"os"
	"path/filepath"
	"testing"

	"wallet_vote/internal/logger"
	"wallet_vote/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeBallot(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ballot.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	plan, err := Load(writeBallot(t, `
votes:
  - category: music
    candidate: dj1
  - {category: art, candidate: p1}
`))
	require.NoError(t, err)
	assert.Equal(t, types.OrderSequential, plan.Order)
	assert.Equal(t, []Entry{{Category: "music", Candidate: "dj1"}, {Category: "art", Candidate: "p1"}}, plan.Votes)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{name: "bad yaml", body: "votes: [", wantErr: ErrBallotParseFailed},
		{name: "empty", body: "votes: []\n", wantErr: ErrEmptyBallot},
		{name: "missing candidate", body: "votes:\n  - category: music\n", wantErr: ErrInvalidEntry},
		{name: "duplicate category", body: "votes:\n  - {category: music, candidate: a}\n  - {category: music, candidate: b}\n", wantErr: ErrInvalidEntry},
		{name: "unknown order", body: "order: reverse\nvotes:\n  - {category: music, candidate: a}\n", wantErr: ErrInvalidEntry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeBallot(t, tt.body))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.ErrorIs(t, err, ErrBallotNotFound)
}

func TestPlan_Select(t *testing.T) {
	plan := &Plan{
		Order: types.OrderSequential,
		Votes: []Entry{{"a", "1"}, {"b", "2"}, {"c", "3"}, {"d", "4"}},
	}
	log := logger.NewNopLogger()

	assert.Equal(t, plan.Votes, plan.Select(log))

	plan.Order = types.OrderRandom
	original := append([]Entry(nil), plan.Votes...)
	shuffled := plan.Select(log)
	assert.ElementsMatch(t, original, shuffled)
	assert.Equal(t, original, plan.Votes, "plan is not reordered")
}
