package app

import (
	"context"
	"errors"
	"math/rand"
	"slices"
	"strconv"

	"wallet_vote/internal/keyloader"
	"wallet_vote/internal/storage"
	"wallet_vote/internal/types"
)

// prepareWalletsToProcess determines the list of wallets to process based on resume state and shuffling.
func (a *Application) prepareWalletsToProcess(ctx context.Context) []*keyloader.LoadedKey {
	processedWallets := slices.Clone(a.wallets)
	lastCompletedIndex := a.loadLastCompletedIndex(ctx)
	shouldShuffle := a.cfg.Wallet.ProcessOrder == types.OrderRandom

	if lastCompletedIndex >= 0 {
		startIndex := lastCompletedIndex + 1
		if startIndex < len(a.wallets) {
			processedWallets = processedWallets[startIndex:]
			a.log.Info("Resuming.", "module", "app", "start_index", startIndex,
				"wallets_to_process", len(processedWallets), "wallets_skipped", startIndex)
		} else {
			processedWallets = nil
			a.log.Info("All wallets were processed in a previous run.", "module", "app")
		}
		if shouldShuffle {
			a.log.Warn("Resume is active, process_order: random is ignored and wallets run in file order.", "module", "app")
			shouldShuffle = false
		}
	}

	if shouldShuffle && len(processedWallets) > 1 {
		a.log.Info("Shuffling wallet order...", "module", "app", "count", len(processedWallets))
		rand.Shuffle(len(processedWallets), func(i, j int) {
			processedWallets[i], processedWallets[j] = processedWallets[j], processedWallets[i]
		})
	}

	return processedWallets
}

// loadLastCompletedIndex returns the saved resume index, or -1 when resume is
// disabled or nothing usable is stored.
func (a *Application) loadLastCompletedIndex(ctx context.Context) int {
	if !a.cfg.State.ResumeEnabled {
		a.log.Info("State resume disabled.", "module", "app")
		return -1
	}

	a.log.Info("Checking saved state for resume...", "module", "app")
	stateValue, err := a.stateStorage.GetState(ctx, LastCompletedWalletIndexKey)
	if err != nil {
		if errors.Is(err, storage.ErrStateNotFound) {
			a.log.Info("No saved state, starting from the beginning.", "module", "app")
		} else {
			a.log.Error("Failed to read saved state, starting from the beginning.", "module", "app", "error", err)
		}
		return -1
	}

	index, convErr := strconv.Atoi(stateValue)
	if convErr != nil {
		a.log.Error("Saved index is not a number, starting from the beginning.", "module", "app",
			"value", stateValue, "error", convErr)
		return -1
	}
	a.log.Info("Found saved state.", "module", "app", LastCompletedWalletIndexKey, index)
	return index
}

// saveLastCompletedIndex records index as the resume point.
func (a *Application) saveLastCompletedIndex(index int) {
	if !a.cfg.State.ResumeEnabled {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), stateSaveTimeout)
	defer cancel()
	if err := a.stateStorage.SetState(ctx, LastCompletedWalletIndexKey, strconv.Itoa(index)); err != nil {
		a.log.Error("Failed to save state", "module", "app", "originalIndex", index, "error", err)
		return
	}
	a.log.Debug("State saved.", "module", "app", "key", LastCompletedWalletIndexKey, "value", index)
}

// resumeProgress advances the resume index only across an unbroken run of
// completed wallets, so a failed wallet stays above the saved index.
type resumeProgress struct {
	last int
	done map[int]bool
}

func newResumeProgress(lastCompleted int) *resumeProgress {
	return &resumeProgress{last: lastCompleted, done: make(map[int]bool)}
}

// complete marks originalIndex as done and returns the new resume index and
// whether it moved.
func (p *resumeProgress) complete(originalIndex int) (int, bool) {
	p.done[originalIndex] = true
	advanced := false
	for p.done[p.last+1] {
		delete(p.done, p.last+1)
		p.last++
		advanced = true
	}
	return p.last, advanced
}
