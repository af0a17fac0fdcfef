package app

import (
	"context"
	"sync"

	"wallet_vote/internal/api"
	"wallet_vote/internal/ballot"
	"wallet_vote/internal/config"
	"wallet_vote/internal/keyloader"
	"wallet_vote/internal/logger"
	"wallet_vote/internal/storage"
)

// LastCompletedWalletIndexKey is the state key ballot mode resumes from.
const LastCompletedWalletIndexKey = "last_completed_wallet_index"

// Application runs headless ballot mode: every loaded wallet casts the planned votes.
type Application struct {
	cfg          *config.Config
	wallets      []*keyloader.LoadedKey
	plan         *ballot.Plan
	gateway      api.Gateway
	wg           *sync.WaitGroup
	attempts     storage.AttemptLogger
	stateStorage storage.StateStorage
	log          logger.Logger
}

// NewApplication creates a new Application instance.
func NewApplication(
	cfg *config.Config,
	wallets []*keyloader.LoadedKey,
	plan *ballot.Plan,
	gateway api.Gateway,
	wg *sync.WaitGroup,
	attempts storage.AttemptLogger,
	stateStorage storage.StateStorage,
	log logger.Logger,
) *Application {
	return &Application{
		cfg:          cfg,
		wallets:      wallets,
		plan:         plan,
		gateway:      gateway,
		wg:           wg,
		attempts:     attempts,
		stateStorage: stateStorage,
		log:          log,
	}
}

// Run processes the wallets sequentially or in parallel depending on config.
// Workers started in parallel mode are tracked by the WaitGroup passed to
// NewApplication; callers wait on it before exiting.
func (a *Application) Run(ctx context.Context) {
	keysToProcess := a.prepareWalletsToProcess(ctx)
	if len(keysToProcess) == 0 {
		a.log.Info("No wallets left to process.", "module", "app")
		return
	}
	a.runProcessing(ctx, keysToProcess)
}
