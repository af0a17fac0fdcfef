package executor

import (
	"context"
	"errors"
	"time"

	"wallet_vote/internal/ballot"
	"wallet_vote/internal/config"
	"wallet_vote/internal/logger"
	"wallet_vote/internal/utils"
	"wallet_vote/internal/vote"
)

// Voter casts one vote. vote.Controller implements it.
type Voter interface {
	Vote(ctx context.Context, categorySlug, candidateSlug string) error
}

var _ Voter = (*vote.Controller)(nil)

// Executor is responsible for casting a single planned vote with retries logic.
type Executor struct {
	cfg *config.Config
	log logger.Logger
}

// NewExecutor creates a new Executor instance.
func NewExecutor(cfg *config.Config, log logger.Logger) *Executor {
	return &Executor{
		cfg: cfg,
		log: log,
	}
}

// Retryable reports whether a failed vote may succeed when tried again.
// Signing and submission failures leave no local effect, so they can be retried.
func Retryable(err error) bool {
	return errors.Is(err, vote.ErrSigningFailed) || errors.Is(err, vote.ErrSubmissionRejected)
}

// CastWithRetries casts entry through voter, retrying retryable failures up to
// the configured number of attempts.
func (e *Executor) CastWithRetries(ctx context.Context, voter Voter, address string, entry ballot.Entry) error {
	var voteErr error
	maxAttempts := e.cfg.Delay.BetweenRetries.Attempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		e.log.Debug("Casting vote", "module", "executor", "category", entry.Category,
			"candidate", entry.Candidate, "attempt", attempt, "wallet", address)
		voteErr = voter.Vote(ctx, entry.Category, entry.Candidate)
		if voteErr == nil {
			e.log.SuccessWithBlankLine("Vote cast", "module", "executor", "category", entry.Category,
				"candidate", entry.Candidate, "attempt", attempt, "wallet", address)
			return nil
		}
		if !Retryable(voteErr) {
			e.log.Warn("Vote failed, not retrying", "module", "executor", "category", entry.Category,
				"err", voteErr, "wallet", address)
			return voteErr
		}

		e.log.Warn("Vote failed", "module", "executor", "category", entry.Category,
			"attempt", attempt, "maxAttempts", maxAttempts, "err", voteErr, "wallet", address)

		if attempt < maxAttempts {
			if err := e.pause(ctx, e.cfg.Delay.BetweenRetries.Delay, "Pause before next attempt", address); err != nil {
				return voteErr
			}
		}
	}

	e.log.ErrorWithBlankLine("Vote not cast after all attempts", "module", "executor",
		"category", entry.Category, "err", voteErr, "wallet", address)
	if e.cfg.Delay.AfterError.Min > 0 || e.cfg.Delay.AfterError.Max > 0 {
		_ = e.pause(ctx, e.cfg.Delay.AfterError, "Pause after failed vote", address)
	}
	return voteErr
}

// pause sleeps for a random duration from r, returning early with ctx's error.
func (e *Executor) pause(ctx context.Context, r config.DelayRange, message, address string) error {
	d, err := utils.RandomDuration(r)
	if err != nil {
		e.log.Error("Failed to compute delay", "module", "executor", "err", err, "wallet", address)
		return nil
	}
	if d == 0 {
		return nil
	}
	e.log.Info(message, "module", "executor", "duration", d, "wallet", address)
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		e.log.Warn("Delay interrupted (context cancelled)", "module", "executor", "wallet", address)
		return ctx.Err()
	}
}
