package vote

import (
	"context"
	"sync"
	"testing"
	"time"

	"wallet_vote/internal/api"
	"wallet_vote/internal/logger"
	"wallet_vote/internal/signing"
	"wallet_vote/internal/storage"
	"wallet_vote/internal/wallet"

	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	mu           sync.Mutex
	categories   []api.Category
	candidates   []api.Candidate
	catalogErr   error
	catalogCalls int
	votes        map[string][]api.VoteRecord
	votesErr     error
	beforeVotes  func(address string)
	submitOK     bool
	submitErr    error
	submitted    []api.VoteRecord
}

var _ api.Gateway = (*fakeGateway)(nil)

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		categories: []api.Category{{Slug: "music", Name: "Music"}},
		candidates: []api.Candidate{{Slug: "dj1", Name: "DJ One"}},
		votes:      map[string][]api.VoteRecord{},
		submitOK:   true,
	}
}

func (g *fakeGateway) FetchCategories(ctx context.Context) ([]api.Category, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.catalogCalls++
	if g.catalogErr != nil {
		return nil, g.catalogErr
	}
	return g.categories, nil
}

func (g *fakeGateway) FetchCandidates(ctx context.Context) ([]api.Candidate, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.catalogErr != nil {
		return nil, g.catalogErr
	}
	return g.candidates, nil
}

func (g *fakeGateway) FetchVotesForAddress(ctx context.Context, address string) ([]api.VoteRecord, error) {
	g.mu.Lock()
	hook := g.beforeVotes
	g.mu.Unlock()
	if hook != nil {
		hook(address)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.votesErr != nil {
		return nil, g.votesErr
	}
	return g.votes[address], nil
}

func (g *fakeGateway) SubmitVote(ctx context.Context, record api.VoteRecord) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.submitted = append(g.submitted, record)
	if g.submitErr != nil {
		return false, g.submitErr
	}
	return g.submitOK, nil
}

func (g *fakeGateway) submissions() []api.VoteRecord {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]api.VoteRecord(nil), g.submitted...)
}

type fakeSigner struct {
	mu       sync.Mutex
	result   signing.Result
	messages []string
	accounts []string
	hook     func()
}

func signedWith(sig, nonce string) *fakeSigner {
	return &fakeSigner{result: signing.Result{Signed: true, Signature: sig, Nonce: nonce}}
}

func (s *fakeSigner) Sign(ctx context.Context, address, message string) signing.Result {
	s.mu.Lock()
	s.messages = append(s.messages, message)
	s.accounts = append(s.accounts, address)
	hook := s.hook
	res := s.result
	s.mu.Unlock()
	if hook != nil {
		hook()
	}
	return res
}

type memAttempts struct {
	mu      sync.Mutex
	records []storage.AttemptRecord
}

func (m *memAttempts) LogAttempt(ctx context.Context, r storage.AttemptRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, r)
	return nil
}

func (m *memAttempts) Close() error { return nil }

func (m *memAttempts) all() []storage.AttemptRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]storage.AttemptRecord(nil), m.records...)
}

type fixture struct {
	gw       *fakeGateway
	signer   *fakeSigner
	attempts *memAttempts
	ctrl     *Controller
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		gw:       newFakeGateway(),
		signer:   signedWith("ab12", "00ff"),
		attempts: &memAttempts{},
	}
	f.ctrl = NewController(f.gw, f.signer, f.attempts, logger.NewNopLogger())
	t.Cleanup(f.ctrl.Close)
	return f
}

// ready loads the catalog and connects address.
func (f *fixture) ready(address string) {
	f.ctrl.LoadCatalog(context.Background())
	f.ctrl.HandleSession(context.Background(), wallet.Session{Connected: true, Address: address})
}

func nextUpdate(t *testing.T, ch <-chan Update) Update {
	t.Helper()
	select {
	case u, ok := <-ch:
		require.True(t, ok, "update channel closed")
		return u
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for update")
		return Update{}
	}
}

// nextNotice skips updates until one carries a notice.
func nextNotice(t *testing.T, ch <-chan Update) *Notice {
	t.Helper()
	for {
		if u := nextUpdate(t, ch); u.Notice != nil {
			return u.Notice
		}
	}
}
