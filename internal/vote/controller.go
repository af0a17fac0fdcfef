package vote

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"wallet_vote/internal/api"
	"wallet_vote/internal/broadcast"
	"wallet_vote/internal/logger"
	"wallet_vote/internal/signing"
	"wallet_vote/internal/storage"
	"wallet_vote/internal/types"
	"wallet_vote/internal/wallet"

	"golang.org/x/sync/errgroup"
)

// Signer produces a signed vote statement. signing.Adapter implements it.
type Signer interface {
	Sign(ctx context.Context, address, message string) signing.Result
}

var _ Signer = (*signing.Adapter)(nil)

// Controller owns the vote workflow: the catalog, the votes of the connected
// wallet and every vote intent. All state is guarded by mu; network and
// wallet round trips run without holding it.
type Controller struct {
	gateway  api.Gateway
	signer   Signer
	attempts storage.AttemptLogger
	log      logger.Logger

	catalogOnce sync.Once
	hub         *broadcast.Hub[Update]
	reconciles  sync.WaitGroup

	mu            sync.Mutex
	alive         bool
	categories    []api.Category
	candidates    []api.Candidate
	catalogLoaded bool
	active        string
	votes         VoteMap
	phase         Phase
	session       wallet.Session
	sessionErr    bool
	epoch         uint64
	submitting    map[string]uint64 // category -> epoch of the in-flight intent
}

// NewController creates a Controller with an empty catalog and no session.
// attempts may be nil.
func NewController(gateway api.Gateway, signer Signer, attempts storage.AttemptLogger, log logger.Logger) *Controller {
	return &Controller{
		gateway:    gateway,
		signer:     signer,
		attempts:   attempts,
		log:        log,
		hub:        broadcast.NewHub[Update](),
		alive:      true,
		votes:      VoteMap{},
		submitting: make(map[string]uint64),
	}
}

// Subscribe streams an Update after every state change. The channel is closed
// by the returned cancel function or by Close.
func (c *Controller) Subscribe() (<-chan Update, func()) {
	return c.hub.Subscribe()
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Close stops delivering updates. Results of operations still in flight are discarded.
func (c *Controller) Close() {
	c.mu.Lock()
	c.alive = false
	c.mu.Unlock()
	c.hub.Close()
}

// LoadCatalog fetches categories and candidates concurrently. It runs at most
// once per Controller; a failure leaves the catalog empty.
func (c *Controller) LoadCatalog(ctx context.Context) {
	c.catalogOnce.Do(func() { c.loadCatalog(ctx) })
}

func (c *Controller) loadCatalog(ctx context.Context) {
	var (
		categories []api.Category
		candidates []api.Candidate
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		categories, err = c.gateway.FetchCategories(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		candidates, err = c.gateway.FetchCandidates(gctx)
		return err
	})
	err := g.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.alive {
		c.log.Debug("Discarding catalog, controller closed", "module", "vote")
		return
	}
	c.catalogLoaded = true
	if err != nil {
		c.log.Warn("Failed to load vote catalog", "module", "vote", "error", err)
		c.categories, c.candidates = nil, nil
		c.publishLocked(nil)
		return
	}

	c.categories, c.candidates = categories, candidates
	if c.active == "" && len(categories) > 0 {
		c.active = categories[0].Slug
	}
	c.log.Info("Vote catalog loaded", "module", "vote", "categories", len(categories), "candidates", len(candidates))
	c.publishLocked(nil)
}

// SelectCategory makes slug the active category.
func (c *Controller) SelectCategory(slug string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.alive || c.active == slug {
		return
	}
	c.active = slug
	c.publishLocked(nil)
}

// CandidatesFor returns the candidates offered in category.
func (c *Controller) CandidatesFor(category string) []api.Candidate {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.candidates)
}

// HandleSession starts a new session epoch for s and, for a connected session
// with an address, reconciles its votes with the backend before returning.
func (c *Controller) HandleSession(ctx context.Context, s wallet.Session) {
	epoch, address, ok := c.beginEpoch(s)
	if ok {
		c.reconcile(ctx, epoch, address)
	}
}

// Run applies session events until events is closed or ctx is done.
// Reconciliations run concurrently; only the one for the latest epoch is applied.
func (c *Controller) Run(ctx context.Context, events <-chan wallet.Event) {
	defer c.reconciles.Wait()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, open := <-events:
			if !open {
				return
			}
			epoch, address, ok := c.beginEpoch(ev.Session)
			if !ok {
				continue
			}
			c.reconciles.Add(1)
			go func() {
				defer c.reconciles.Done()
				c.reconcile(ctx, epoch, address)
			}()
		}
	}
}

// beginEpoch resets the votes for a new session and reports whether the
// session needs reconciliation.
func (c *Controller) beginEpoch(s wallet.Session) (uint64, string, bool) {
	if !s.Connected {
		s = wallet.Disconnected
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.alive {
		return 0, "", false
	}

	wasConnected := c.session.Connected
	c.epoch++
	c.votes = VoteMap{}
	clear(c.submitting)
	c.session = s
	c.sessionErr = false

	switch {
	case !s.Connected:
		c.phase = PhaseUninitialized
		c.log.Info("Wallet disconnected, votes cleared", "module", "vote")
		var n *Notice
		if wasConnected {
			n = &Notice{Kind: NoticeInfo, Message: "Wallet disconnected"}
		}
		c.publishLocked(n)
		return 0, "", false
	case s.Validate() != nil:
		c.phase = PhaseUninitialized
		c.sessionErr = true
		c.log.Warn("Wallet connected without an address", "module", "vote")
		c.publishLocked(&Notice{Kind: NoticeError, Message: "Cannot determine wallet's address", Err: wallet.ErrSession})
		return 0, "", false
	default:
		c.phase = PhaseReconciling
		c.publishLocked(&Notice{Kind: NoticeInfo, Message: fmt.Sprintf("Wallet %s connected", s.Address)})
		return c.epoch, s.Address, true
	}
}

func (c *Controller) reconcile(ctx context.Context, epoch uint64, address string) {
	records, err := c.gateway.FetchVotesForAddress(ctx, address)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.alive || epoch != c.epoch {
		c.log.Debug("Discarding stale reconciliation", "module", "vote", "address", address)
		return
	}

	votes := VoteMap{}
	if err != nil {
		c.log.Warn("Failed to load votes for wallet", "module", "vote", "address", address, "error", err)
	} else {
		for _, r := range records {
			votes[r.CategorySlug] = r.CandidateSlug
		}
	}
	c.votes = votes
	c.phase = PhaseReady
	c.log.Info("Wallet votes reconciled", "module", "vote", "address", address, "votes", len(votes))
	c.publishLocked(nil)
}

// Vote signs and submits a vote for candidateSlug in categorySlug. The vote is
// recorded locally only after the backend accepts it. Every failure is also
// published as an error notice.
func (c *Controller) Vote(ctx context.Context, categorySlug, candidateSlug string) error {
	c.mu.Lock()
	epoch, address, err := c.checkIntentLocked(categorySlug, candidateSlug)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.submitting[categorySlug] = epoch
	c.publishLocked(nil)
	c.mu.Unlock()

	fields := []interface{}{"module", "vote", "address", address, "category", categorySlug, "candidate", candidateSlug}
	message := BuildMessage(address, candidateSlug, categorySlug)

	signed := c.signer.Sign(ctx, address, message)
	if !signed.Signed {
		c.log.Warn("Vote not signed", fields...)
		c.logAttempt(ctx, address, categorySlug, candidateSlug, types.AttemptSigningFailed, ErrSigningFailed)
		c.finishIntent(epoch, categorySlug, candidateSlug, &Notice{Kind: NoticeError, Message: "Failed signing vote message", Err: ErrSigningFailed})
		return ErrSigningFailed
	}

	record := api.VoteRecord{
		Addr:          address,
		CategorySlug:  categorySlug,
		CandidateSlug: candidateSlug,
		Msg:           signing.EncodeMessage(message),
		Random:        signed.Nonce,
		Signature:     signed.Signature,
		SigFormat:     types.SignatureBase16,
	}

	accepted, err := c.gateway.SubmitVote(ctx, record)
	if !accepted {
		rejectErr := ErrSubmissionRejected
		if err != nil {
			rejectErr = fmt.Errorf("%w: %w", ErrSubmissionRejected, err)
		}
		c.log.Warn("Vote not accepted", append(fields, "error", rejectErr)...)
		c.logAttempt(ctx, address, categorySlug, candidateSlug, types.AttemptRejected, rejectErr)
		c.finishIntent(epoch, categorySlug, candidateSlug, &Notice{Kind: NoticeError, Message: "Could not submit vote", Err: rejectErr})
		return rejectErr
	}

	c.log.Success("Vote accepted", fields...)
	c.logAttempt(ctx, address, categorySlug, candidateSlug, types.AttemptAccepted, nil)
	c.finishIntent(epoch, categorySlug, candidateSlug, nil)
	return nil
}

// checkIntentLocked runs the vote preconditions in order and returns the
// epoch and address the intent is bound to.
func (c *Controller) checkIntentLocked(category, candidate string) (uint64, string, error) {
	fail := func(err error, msg string) (uint64, string, error) {
		c.publishLocked(&Notice{Kind: NoticeError, Message: msg, Err: err})
		return 0, "", err
	}

	switch {
	case !c.alive:
		return 0, "", ErrClosed
	case !c.session.Connected:
		return fail(ErrNotConnected, "Cannot vote, wallet is not connected")
	case c.sessionErr:
		return fail(fmt.Errorf("%w: %w", ErrNotReady, wallet.ErrSession), "Cannot determine wallet's address")
	case c.phase != PhaseReady:
		return fail(ErrNotReady, "Still loading votes for this wallet")
	}
	if _, voted := c.votes[category]; voted {
		return fail(ErrAlreadyVoted, "You already voted in this category")
	}
	if _, busy := c.submitting[category]; busy {
		return fail(ErrSubmitting, "Vote is already being submitted")
	}
	if len(c.categories) > 0 && !slices.ContainsFunc(c.categories, func(x api.Category) bool { return x.Slug == category }) {
		return fail(fmt.Errorf("%w: category %q", ErrUnknownSlug, category), "Unknown category")
	}
	if len(c.candidates) > 0 && !slices.ContainsFunc(c.candidates, func(x api.Candidate) bool { return x.Slug == candidate }) {
		return fail(fmt.Errorf("%w: candidate %q", ErrUnknownSlug, candidate), "Unknown candidate")
	}
	return c.epoch, c.session.Address, nil
}

// finishIntent clears the in-flight marker and, when n is nil, commits the
// vote. Nothing is committed once the session epoch has moved on.
func (c *Controller) finishIntent(epoch uint64, category, candidate string, n *Notice) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.alive {
		return
	}
	if e, ok := c.submitting[category]; ok && e == epoch {
		delete(c.submitting, category)
	}
	if n == nil {
		if epoch != c.epoch {
			c.log.Warn("Session changed during submission, vote not recorded locally", "module", "vote", "category", category)
			c.publishLocked(nil)
			return
		}
		c.votes[category] = candidate
		n = &Notice{Kind: NoticeSuccess, Message: fmt.Sprintf("Voted for %s", c.candidateNameLocked(candidate))}
	}
	c.publishLocked(n)
}

func (c *Controller) candidateNameLocked(slug string) string {
	for _, cand := range c.candidates {
		if cand.Slug == slug && cand.Name != "" {
			return cand.Name
		}
	}
	return slug
}

func (c *Controller) logAttempt(ctx context.Context, address, category, candidate string, status types.AttemptStatus, cause error) {
	if c.attempts == nil {
		return
	}
	record := storage.AttemptRecord{
		Timestamp:     time.Now(),
		WalletAddress: address,
		CategorySlug:  category,
		CandidateSlug: candidate,
		Status:        status,
	}
	if cause != nil {
		record.Error = cause.Error()
	}
	// Recorded even when the intent's ctx was cancelled.
	if err := c.attempts.LogAttempt(context.WithoutCancel(ctx), record); err != nil {
		c.log.Warn("Failed to record vote attempt", "module", "vote", "error", err)
	}
}

func (c *Controller) snapshotLocked() State {
	submitting := make(map[string]bool, len(c.submitting))
	for k := range c.submitting {
		submitting[k] = true
	}
	return State{
		Categories:     slices.Clone(c.categories),
		Candidates:     slices.Clone(c.candidates),
		CatalogLoaded:  c.catalogLoaded,
		ActiveCategory: c.active,
		Votes:          c.votes.clone(),
		Phase:          c.phase,
		Session:        c.session,
		SessionError:   c.sessionErr,
		Submitting:     submitting,
	}
}

func (c *Controller) publishLocked(n *Notice) {
	c.hub.Publish(Update{State: c.snapshotLocked(), Notice: n})
}
