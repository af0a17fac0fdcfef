package processor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wallet_vote/internal/api"
	"wallet_vote/internal/ballot"
	"wallet_vote/internal/config"
	"wallet_vote/internal/executor"
	"wallet_vote/internal/keyloader"
	"wallet_vote/internal/logger"
	"wallet_vote/internal/storage"
	"wallet_vote/internal/utils"
	"wallet_vote/internal/vote"
)

// ErrWalletNotReady indicates the wallet session never reached the ready phase.
var ErrWalletNotReady = errors.New("wallet session not ready")

// Processor encapsulates the logic for voting with a single wallet.
type Processor struct {
	cfg              *config.Config
	key              *keyloader.LoadedKey
	plan             *ballot.Plan
	gateway          api.Gateway
	walletIndex      int
	currentWalletNum int
	totalWalletsNum  int
	executor         *executor.Executor
	attempts         storage.AttemptLogger
	log              logger.Logger
}

// NewProcessor creates a new Processor instance.
func NewProcessor(
	cfg *config.Config,
	key *keyloader.LoadedKey,
	plan *ballot.Plan,
	gateway api.Gateway,
	originalIndex int,
	currentNum int,
	totalNum int,
	attempts storage.AttemptLogger,
	log logger.Logger,
) *Processor {
	return &Processor{
		cfg:              cfg,
		key:              key,
		plan:             plan,
		gateway:          gateway,
		walletIndex:      originalIndex,
		currentWalletNum: currentNum,
		totalWalletsNum:  totalNum,
		executor:         executor.NewExecutor(cfg, log),
		attempts:         attempts,
		log:              log,
	}
}

// Process connects the wallet, reconciles its votes and casts every planned
// vote in a category it has not voted in yet. It returns the first failure.
func (p *Processor) Process(ctx context.Context) error {
	walletProgress := fmt.Sprintf("%d/%d", p.currentWalletNum, p.totalWalletsNum)
	address := p.key.Address.Hex()
	p.log.InfoWithBlankLine("-------------------- Wallet start --------------------",
		"module", "processor", "wallet", walletProgress, "origIdx", p.walletIndex, "addr", address)

	ctrl, err := p.openSession(ctx)
	if err != nil {
		p.log.Error("Cannot start voting session, skipping wallet", "module", "processor",
			"err", err, "wallet", walletProgress, "addr", address)
		return err
	}
	defer ctrl.Close()

	entries := p.plan.Select(p.log)
	var finalError error
	cast := 0

	for i, entry := range entries {
		voteProgress := fmt.Sprintf("%d/%d", i+1, len(entries))
		select {
		case <-ctx.Done():
			p.log.Warn("Processing interrupted (context cancelled before vote)", "module", "processor",
				"vote", voteProgress, "wallet", walletProgress, "addr", address)
			return ctx.Err()
		default:
		}

		if prior, voted := ctrl.Snapshot().VotedFor(entry.Category); voted {
			p.log.Info("Category already voted, skipping", "module", "processor", "category", entry.Category,
				"candidate", prior, "vote", voteProgress, "wallet", walletProgress, "addr", address)
			continue
		}

		voteErr := p.executor.CastWithRetries(ctx, ctrl, address, entry)
		switch {
		case voteErr == nil:
			cast++
		case errors.Is(voteErr, vote.ErrAlreadyVoted):
		case errors.Is(voteErr, context.Canceled) || errors.Is(voteErr, context.DeadlineExceeded):
			return voteErr
		default:
			if finalError == nil {
				finalError = voteErr
			}
		}

		if i < len(entries)-1 {
			if err := p.pause(ctx, walletProgress, address); err != nil {
				return err
			}
		}
	}

	status := "Success"
	if finalError != nil {
		status = "Failed"
	}
	p.log.InfoWithBlankLine("-------------------- Wallet end ---------------------",
		"module", "processor", "wallet", walletProgress, "addr", address, "cast", cast, "status", status)
	return finalError
}

// pause waits between planned votes.
func (p *Processor) pause(ctx context.Context, walletProgress, address string) error {
	d, err := utils.RandomDuration(p.cfg.Delay.BetweenVotes)
	if err != nil {
		p.log.Error("Failed to compute delay between votes", "module", "processor", "err", err,
			"wallet", walletProgress, "addr", address)
		return nil
	}
	if d == 0 {
		return nil
	}
	p.log.Info("Pause before next vote", "module", "processor", "duration", d,
		"wallet", walletProgress, "addr", address)
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		p.log.Warn("Delay between votes interrupted (context cancelled)", "module", "processor",
			"wallet", walletProgress, "addr", address)
		return ctx.Err()
	}
}
