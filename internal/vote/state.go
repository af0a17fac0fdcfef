package vote

import (
	"wallet_vote/internal/api"
	"wallet_vote/internal/wallet"
)

// Phase is the reconciliation state of the current wallet session epoch.
type Phase int

const (
	PhaseUninitialized Phase = iota
	PhaseReconciling
	PhaseReady
)

func (p Phase) String() string {
	switch p {
	case PhaseUninitialized:
		return "uninitialized"
	case PhaseReconciling:
		return "reconciling"
	case PhaseReady:
		return "ready"
	default:
		return "unknown"
	}
}

// VoteMap maps a category slug to the candidate slug voted for in it.
type VoteMap map[string]string

func (m VoteMap) clone() VoteMap {
	out := make(VoteMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// NoticeKind is the severity of a user-visible notice.
type NoticeKind int

const (
	NoticeInfo NoticeKind = iota
	NoticeSuccess
	NoticeError
)

// Notice is a transient message for the user.
type Notice struct {
	Kind    NoticeKind
	Message string
	Err     error
}

// State is a snapshot of the controller. It shares nothing with the
// controller, so callers may keep and read it freely.
type State struct {
	Categories     []api.Category
	Candidates     []api.Candidate
	CatalogLoaded  bool
	ActiveCategory string
	Votes          VoteMap
	Phase          Phase
	Session        wallet.Session
	SessionError   bool
	Submitting     map[string]bool
}

// Update is delivered to subscribers after every state change.
type Update struct {
	State  State
	Notice *Notice
}

// VotedFor returns the candidate voted for in category.
func (s State) VotedFor(category string) (string, bool) {
	cand, ok := s.Votes[category]
	return cand, ok
}

// CanVote reports whether a vote intent for category would pass the
// connection, readiness and duplicate checks.
func (s State) CanVote(category string) bool {
	if !s.Session.Connected || s.Phase != PhaseReady {
		return false
	}
	if _, voted := s.Votes[category]; voted {
		return false
	}
	return !s.Submitting[category]
}

// Progress returns how many catalog categories are voted, out of all of them.
func (s State) Progress() (done, total int) {
	for _, c := range s.Categories {
		if _, ok := s.Votes[c.Slug]; ok {
			done++
		}
	}
	return done, len(s.Categories)
}

// CandidatesFor returns the candidates offered in category. The backend has
// no category to candidate mapping, so every candidate is offered everywhere.
func (s State) CandidatesFor(category string) []api.Candidate {
	return s.Candidates
}
