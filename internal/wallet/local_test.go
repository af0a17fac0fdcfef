package wallet

import (
	"encoding/hex"
	"testing"
	"time"

	"wallet_vote/internal/evm"
	"wallet_vote/internal/keyloader"
	"wallet_vote/internal/logger"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWallet(t *testing.T, n int) *LocalWallet {
	t.Helper()
	keys := make([]*keyloader.LoadedKey, n)
	for i := range keys {
		pk, err := crypto.GenerateKey()
		require.NoError(t, err)
		keys[i] = &keyloader.LoadedKey{PrivateKey: pk, Address: crypto.PubkeyToAddress(pk.PublicKey)}
	}
	w, err := NewLocalWallet(keys, nil, logger.NewNopLogger())
	require.NoError(t, err)
	return w
}

type signOutcome struct {
	res SignResult
	err error
}

func signSync(t *testing.T, w *LocalWallet, hexMsg string) signOutcome {
	t.Helper()
	done := make(chan signOutcome, 2)
	w.SignData(hexMsg,
		func(r SignResult) { done <- signOutcome{res: r} },
		func(err error) { done <- signOutcome{err: err} },
	)
	select {
	case out := <-done:
		return out
	case <-time.After(2 * time.Second):
		t.Fatal("signer never called back")
		return signOutcome{}
	}
}

func TestLocalWallet_ConnectSwitchDisconnect(t *testing.T) {
	w := newTestWallet(t, 2)
	events, cancel := w.Observer().Subscribe()
	defer cancel()

	assert.Equal(t, Disconnected, w.Session())
	assert.ErrorIs(t, w.Connect(5), ErrAccountIndex)

	require.NoError(t, w.Connect(0))
	ev := recv(t, events)
	assert.Equal(t, EventConnected, ev.Kind)
	assert.Equal(t, w.Accounts()[0].Address.Hex(), ev.Session.Address)

	require.NoError(t, w.NextAccount())
	ev = recv(t, events)
	assert.Equal(t, EventAddressChanged, ev.Kind)
	assert.Equal(t, w.Accounts()[1].Address.Hex(), ev.Session.Address)
	assert.Equal(t, 1, w.ActiveIndex())

	w.Disconnect()
	ev = recv(t, events)
	assert.Equal(t, EventDisconnected, ev.Kind)
	assert.Equal(t, -1, w.ActiveIndex())
}

func TestLocalWallet_SignData(t *testing.T) {
	w := newTestWallet(t, 1)
	require.NoError(t, w.Connect(0))

	msg := []byte("Voting with my address 0x1 for dj1 in category music")
	out := signSync(t, w, hex.EncodeToString(msg))
	require.NoError(t, out.err)

	raw, err := hex.DecodeString(out.res.Signature)
	require.NoError(t, err)
	require.Len(t, raw, crypto.SignatureLength+2)
	assert.Equal(t, evm.SignatureKindECDSA, raw[0])

	random, err := hex.DecodeString(out.res.Random)
	require.NoError(t, err)
	require.Len(t, random, randomSize)

	addr, err := evm.RecoverPersonalMessage(append(random, msg...), raw[2:])
	require.NoError(t, err)
	assert.Equal(t, w.Accounts()[0].Address, addr)
	assert.Equal(t, addr.Hex(), out.res.Address)
}

func TestLocalWallet_SignDataFailures(t *testing.T) {
	w := newTestWallet(t, 1)

	out := signSync(t, w, "00")
	assert.ErrorIs(t, out.err, ErrNotConnected)

	require.NoError(t, w.Connect(0))
	out = signSync(t, w, "not hex")
	assert.ErrorIs(t, out.err, ErrBadMessage)
}
