package processor

import (
	"context"
	"fmt"

	"wallet_vote/internal/keyloader"
	"wallet_vote/internal/signing"
	"wallet_vote/internal/vote"
	"wallet_vote/internal/wallet"
)

// openSession gives the key its own wallet and controller, loads the catalog
// and reconciles prior votes. The controller is ready for vote intents.
func (p *Processor) openSession(ctx context.Context) (*vote.Controller, error) {
	w, err := wallet.NewLocalWallet([]*keyloader.LoadedKey{p.key}, nil, p.log)
	if err != nil {
		return nil, fmt.Errorf("creating wallet: %w", err)
	}

	adapter := signing.NewAdapter(w, p.cfg.Signing.PrefixLen(), p.log)
	ctrl := vote.NewController(p.gateway, adapter, p.attempts, p.log)
	ctrl.LoadCatalog(ctx)

	if err := w.Connect(0); err != nil {
		ctrl.Close()
		return nil, fmt.Errorf("connecting wallet: %w", err)
	}
	ctrl.HandleSession(ctx, w.Session())

	if st := ctrl.Snapshot(); st.Phase != vote.PhaseReady {
		ctrl.Close()
		return nil, fmt.Errorf("%w: phase %s", ErrWalletNotReady, st.Phase)
	}
	if err := ctx.Err(); err != nil {
		ctrl.Close()
		return nil, err
	}
	return ctrl, nil
}
