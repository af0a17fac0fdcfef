package app

import (
	"context"
	"fmt"
	"time"

	"wallet_vote/internal/keyloader"
	"wallet_vote/internal/processor"

	"github.com/ethereum/go-ethereum/common"
)

const stateSaveTimeout = 10 * time.Second

// runProcessing determines the execution mode (sequential/parallel) and starts processing.
func (a *Application) runProcessing(ctx context.Context, keysToProcess []*keyloader.LoadedKey) {
	numWorkers := a.cfg.Concurrency.MaxParallelWallets
	isSequential := false
	if numWorkers <= 0 {
		numWorkers = 1
		isSequential = true
		a.log.Debug("max_parallel_wallets <= 0, running sequentially.", "module", "app",
			"configured_value", a.cfg.Concurrency.MaxParallelWallets)
	} else if numWorkers == 1 {
		isSequential = true
	} else if numWorkers > len(keysToProcess) {
		numWorkers = len(keysToProcess)
		a.log.Info("More workers requested than wallets, using wallet count.", "module", "app",
			"requested", a.cfg.Concurrency.MaxParallelWallets, "using", numWorkers)
	}

	if isSequential {
		a.runSequentially(ctx, keysToProcess)
	} else {
		a.runParallel(ctx, keysToProcess, numWorkers)
	}
}

// findOriginalIndex searches for the original index of a key by its address.
func (a *Application) findOriginalIndex(keyAddress common.Address) (int, error) {
	for oi, originalKey := range a.wallets {
		if originalKey.Address == keyAddress {
			return oi, nil
		}
	}
	return -1, fmt.Errorf("original index for address %s not found", keyAddress.Hex())
}

func (a *Application) newProcessor(key *keyloader.LoadedKey, originalIndex, currentNum, totalNum int) *processor.Processor {
	return processor.NewProcessor(a.cfg, key, a.plan, a.gateway, originalIndex, currentNum, totalNum, a.attempts, a.log)
}
