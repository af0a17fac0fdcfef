package signing

import (
	"context"
	"strings"
	"sync"

	"wallet_vote/internal/logger"
	"wallet_vote/internal/wallet"

	"github.com/ethereum/go-ethereum/common"
)

// Result is the single completion of a signing request. Signature and Nonce
// are empty unless Signed is true.
type Result struct {
	Signed    bool
	Signature string
	Nonce     string
}

var notSigned = Result{}

// Adapter turns a vote statement into a signed payload using the wallet's
// callback-based signer.
type Adapter struct {
	wallet    wallet.Connector
	prefixLen int
	log       logger.Logger
}

// NewAdapter creates an Adapter. prefixLen is the number of leading hex
// characters of the wallet signature that carry a format tag and are dropped.
func NewAdapter(w wallet.Connector, prefixLen int, log logger.Logger) *Adapter {
	if prefixLen < 0 {
		prefixLen = 0
	}
	return &Adapter{wallet: w, prefixLen: prefixLen, log: log}
}

// EncodeMessage returns the byte-wise lowercase hex of message.
func EncodeMessage(message string) string {
	return common.Bytes2Hex([]byte(message))
}

// Sign asks the wallet to sign message with the account at address. It never
// returns an error: failures, a disconnected wallet, a different active account
// and ctx cancellation all yield Signed == false.
func (a *Adapter) Sign(ctx context.Context, address, message string) Result {
	if a.wallet == nil {
		a.log.Warn("Cannot sign, wallet is not connected", "module", "signing")
		return notSigned
	}
	session := a.wallet.Session()
	if !session.Connected {
		a.log.Warn("Cannot sign, wallet is not connected", "module", "signing")
		return notSigned
	}
	if !strings.EqualFold(session.Address, address) {
		a.log.Warn("Cannot sign, active account changed", "module", "signing",
			"expected", address, "active", session.Address)
		return notSigned
	}

	done := make(chan Result, 1)
	var once sync.Once
	complete := func(r Result) {
		once.Do(func() { done <- r })
	}

	a.log.Debug("Requesting signature", "module", "signing", "message", message)
	a.wallet.SignData(EncodeMessage(message),
		func(res wallet.SignResult) {
			if res.Address != "" && !strings.EqualFold(res.Address, address) {
				a.log.Warn("Wallet signed with a different account", "module", "signing",
					"expected", address, "signer", res.Address)
				complete(notSigned)
				return
			}
			if len(res.Signature) <= a.prefixLen {
				a.log.Error("Signature shorter than its format prefix", "module", "signing",
					"length", len(res.Signature), "prefix_len", a.prefixLen)
				complete(notSigned)
				return
			}
			complete(Result{
				Signed:    true,
				Signature: res.Signature[a.prefixLen:],
				Nonce:     res.Random,
			})
		},
		func(err error) {
			a.log.Warn("Wallet declined to sign", "module", "signing", "error", err)
			complete(notSigned)
		},
	)

	select {
	case r := <-done:
		return r
	case <-ctx.Done():
		a.log.Warn("Signing abandoned", "module", "signing", "error", ctx.Err())
		return notSigned
	}
}
