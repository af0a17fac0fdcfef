package wallet

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"sync"

	"wallet_vote/internal/evm"
	"wallet_vote/internal/keyloader"
	"wallet_vote/internal/logger"
)

const randomSize = 32

var (
	// ErrNotConnected indicates a signing request while no account is connected.
	ErrNotConnected = errors.New("wallet is not connected")
	// ErrAccountIndex indicates an account index outside the loaded keys.
	ErrAccountIndex = errors.New("account index out of range")
	// ErrBadMessage indicates the message handed to SignData is not valid hex.
	ErrBadMessage = errors.New("message is not valid hex")
)

// LocalWallet is a Connector backed by private keys loaded from disk. It plays
// the role of a browser wallet extension: one account is connected at a time,
// and every change is published on its Observer.
type LocalWallet struct {
	mu       sync.Mutex
	keys     []*keyloader.LoadedKey
	signers  []*evm.Signer
	active   int
	observer *Observer
	random   io.Reader
	log      logger.Logger
}

var _ Connector = (*LocalWallet)(nil)

// NewLocalWallet creates a disconnected wallet over keys.
func NewLocalWallet(keys []*keyloader.LoadedKey, observer *Observer, log logger.Logger) (*LocalWallet, error) {
	signers := make([]*evm.Signer, len(keys))
	for i, k := range keys {
		s, err := evm.NewSigner(k.PrivateKey)
		if err != nil {
			return nil, fmt.Errorf("key %d: %w", i, err)
		}
		signers[i] = s
	}
	if observer == nil {
		observer = NewObserver()
	}
	return &LocalWallet{
		keys:     keys,
		signers:  signers,
		active:   -1,
		observer: observer,
		random:   rand.Reader,
		log:      log,
	}, nil
}

// Observer returns the observer this wallet publishes to.
func (w *LocalWallet) Observer() *Observer {
	return w.observer
}

// Accounts returns the loaded keys.
func (w *LocalWallet) Accounts() []*keyloader.LoadedKey {
	return w.keys
}

// ActiveIndex returns the connected account index, or -1.
func (w *LocalWallet) ActiveIndex() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.active
}

// Session returns the current connection state.
func (w *LocalWallet) Session() Session {
	return w.observer.Current()
}

// Connect connects the account at index. Connecting another account while
// connected is an address change.
func (w *LocalWallet) Connect(index int) error {
	w.mu.Lock()
	if index < 0 || index >= len(w.keys) {
		w.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrAccountIndex, index)
	}
	w.active = index
	addr := w.signers[index].Address().Hex()
	w.mu.Unlock()

	if ev, changed := w.observer.Set(Session{Connected: true, Address: addr}); changed {
		w.log.Info("Wallet session changed", "module", "wallet", "event", ev.Kind.String(), "address", addr)
	}
	return nil
}

// NextAccount connects the account after the current one, wrapping around.
// When disconnected it connects the first account.
func (w *LocalWallet) NextAccount() error {
	w.mu.Lock()
	next := 0
	if w.active >= 0 && len(w.keys) > 0 {
		next = (w.active + 1) % len(w.keys)
	}
	w.mu.Unlock()
	return w.Connect(next)
}

// Disconnect drops the active account.
func (w *LocalWallet) Disconnect() {
	w.mu.Lock()
	w.active = -1
	w.mu.Unlock()

	if _, changed := w.observer.Set(Disconnected); changed {
		w.log.Info("Wallet disconnected", "module", "wallet")
	}
}

// SignData signs random || message with the active account on a separate
// goroutine. The signature is the tagged encoding from evm.Signer.SignTagged.
func (w *LocalWallet) SignData(hexMessage string, onSuccess func(SignResult), onFailure func(error)) {
	w.mu.Lock()
	var signer *evm.Signer
	if w.active >= 0 {
		signer = w.signers[w.active]
	}
	w.mu.Unlock()

	go func() {
		if signer == nil {
			onFailure(ErrNotConnected)
			return
		}
		message, err := hex.DecodeString(hexMessage)
		if err != nil {
			onFailure(fmt.Errorf("%w: %w", ErrBadMessage, err))
			return
		}
		random := make([]byte, randomSize)
		if _, err := io.ReadFull(w.random, random); err != nil {
			onFailure(fmt.Errorf("generating random: %w", err))
			return
		}

		sig, err := signer.SignTagged(append(random, message...))
		if err != nil {
			onFailure(err)
			return
		}
		w.log.Debug("Message signed", "module", "wallet", "address", signer.Address().Hex(), "bytes", len(message))
		onSuccess(SignResult{
			Signature: hex.EncodeToString(sig),
			Random:    hex.EncodeToString(random),
			Address:   signer.Address().Hex(),
		})
	}()
}
