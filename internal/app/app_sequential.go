package app

import (
	"context"
	"errors"
	"time"

	"wallet_vote/internal/keyloader"
	"wallet_vote/internal/utils"
)

// runSequentially processes wallets one by one in the calling goroutine. A
// failed wallet is logged and skipped; cancellation stops the run. The resume
// index stops advancing at the first failed wallet.
func (a *Application) runSequentially(ctx context.Context, keysToProcess []*keyloader.LoadedKey) {
	total := len(keysToProcess)
	a.log.Info("Starting sequential wallet processing", "module", "app", "count", total)

	progress := newResumeProgress(a.loadLastCompletedIndex(ctx))
	failed := 0
	for i, key := range keysToProcess {
		originalIndex, findErr := a.findOriginalIndex(key.Address)
		if findErr != nil {
			a.log.Error("Original index not found for key, skipping.", "module", "app",
				"address", key.Address.Hex(), "error", findErr)
			continue
		}

		select {
		case <-ctx.Done():
			a.log.Warn("Sequential processing interrupted (context cancelled) before wallet.", "module", "app",
				"walletIndex", originalIndex)
			return
		default:
		}

		err := a.newProcessor(key, originalIndex, i+1, total).Process(ctx)
		switch {
		case err == nil:
			if index, advanced := progress.complete(originalIndex); advanced {
				a.saveLastCompletedIndex(index)
			}
		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			a.log.Warn("Wallet processing interrupted by context.", "module", "app",
				"originalIndex", originalIndex, "error", err)
			return
		default:
			failed++
			a.log.Error("Wallet processing failed.", "module", "app", "originalIndex", originalIndex, "error", err)
		}

		if i < total-1 {
			delayDuration, delayErr := utils.RandomDuration(a.cfg.Delay.BetweenWallets)
			if delayErr != nil {
				a.log.Error("Failed to compute delay between wallets", "module", "app", "err", delayErr)
			} else if delayDuration > 0 {
				a.log.Info("Pause before next wallet", "module", "app", "duration", delayDuration)
				select {
				case <-time.After(delayDuration):
				case <-ctx.Done():
					a.log.Warn("Delay between wallets interrupted (context cancelled)", "module", "app")
					return
				}
			}
		}
	}
	a.log.Info("Sequential processing finished.", "module", "app", "wallets", total, "failed", failed)
}
