package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"wallet_vote/internal/keyloader"
	"wallet_vote/internal/utils"
)

// result is used in the channel for parallel processing results.
type result struct {
	originalIndex int
	err           error
}

// processWalletWorker is the main function for a single parallel worker goroutine.
func (a *Application) processWalletWorker(
	ctx context.Context,
	key *keyloader.LoadedKey,
	originalIndex int,
	currentNum int,
	totalNum int,
	resultsChan chan<- result,
	semaphore chan struct{},
	wg *sync.WaitGroup,
) {
	defer func() {
		semaphore <- struct{}{}
		wg.Done()
		a.log.Debug("Worker slot released.", "module", "app", "wIdx", originalIndex)
	}()

	var processErr error
	defer func() {
		resultsChan <- result{originalIndex: originalIndex, err: processErr}
	}()

	select {
	case <-ctx.Done():
		processErr = ctx.Err()
		return
	default:
	}

	processErr = a.newProcessor(key, originalIndex, currentNum, totalNum).Process(ctx)
	if processErr != nil {
		return
	}

	delayDuration, delayErr := utils.RandomDuration(a.cfg.Delay.BetweenWallets)
	if delayErr != nil {
		a.log.Error("Failed to compute delay between wallets (worker)", "module", "app",
			"wIdx", originalIndex, "err", delayErr)
	} else if delayDuration > 0 {
		a.log.Info("Worker pause after wallet", "module", "app", "wIdx", originalIndex, "duration", delayDuration)
		select {
		case <-time.After(delayDuration):
		case <-ctx.Done():
		}
	}
}

// handleParallelResults listens on the results channel and advances the resume
// index over the wallets completed without a gap.
func (a *Application) handleParallelResults(ctx context.Context, resultsChan <-chan result, totalKeys int) {
	processedCount := 0
	failed := 0
	progress := newResumeProgress(a.loadLastCompletedIndex(ctx))

	for processedCount < totalKeys {
		select {
		case res := <-resultsChan:
			processedCount++
			switch {
			case res.err == nil:
				if index, advanced := progress.complete(res.originalIndex); advanced {
					a.saveLastCompletedIndex(index)
				}
			case errors.Is(res.err, context.Canceled) || errors.Is(res.err, context.DeadlineExceeded):
				a.log.Warn("Wallet processing interrupted by context.", "module", "app",
					"originalIndex", res.originalIndex, "error", res.err)
			default:
				failed++
				a.log.Error("Wallet processing failed.", "module", "app",
					"originalIndex", res.originalIndex, "error", res.err)
			}
		case <-ctx.Done():
			a.log.Warn("Context cancelled, no longer waiting for results.", "module", "app",
				"processedCount", processedCount, "totalKeys", totalKeys)
			return
		}
	}
	a.log.Info("Parallel processing finished.", "module", "app", "processedCount", processedCount, "failed", failed)
}

// runParallel handles processing wallets concurrently using worker goroutines.
func (a *Application) runParallel(ctx context.Context, keysToProcess []*keyloader.LoadedKey, numWorkers int) {
	total := len(keysToProcess)
	a.log.Info("Starting parallel wallet processing", "module", "app", "count", total, "workers", numWorkers)

	semaphore := make(chan struct{}, numWorkers)
	for i := 0; i < numWorkers; i++ {
		semaphore <- struct{}{}
	}

	resultsChan := make(chan result, total)
	launchedChan := make(chan int, 1)
	launched := 0
	collectorDone := make(chan struct{})

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		defer close(collectorDone)
		a.handleParallelResults(ctx, resultsChan, <-launchedChan)
	}()

launch:
	for i, key := range keysToProcess {
		originalIndex, findErr := a.findOriginalIndex(key.Address)
		if findErr != nil {
			a.log.Error("Original index not found for key, skipping.", "module", "app",
				"address", key.Address.Hex(), "error", findErr)
			continue
		}

		select {
		case <-semaphore:
			a.wg.Add(1)
			launched++
			go a.processWalletWorker(ctx, key, originalIndex, i+1, total, resultsChan, semaphore, a.wg)
		case <-ctx.Done():
			a.log.Warn("Parallel processing interrupted (context cancelled) while waiting for a worker slot.",
				"module", "app", "lastAttemptedOriginalIndex", originalIndex)
			break launch
		}
	}
	launchedChan <- launched

	a.log.Debug("Worker launch loop finished, waiting for workers.", "module", "app", "launched", launched)
	<-collectorDone
}
