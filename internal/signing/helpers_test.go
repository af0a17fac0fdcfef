package signing

import (
	"testing"

	"wallet_vote/internal/keyloader"
	"wallet_vote/internal/logger"
	"wallet_vote/internal/wallet"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

func newConnectedLocalWallet(t *testing.T, n int) *wallet.LocalWallet {
	t.Helper()
	keys := make([]*keyloader.LoadedKey, n)
	for i := range keys {
		pk, err := crypto.GenerateKey()
		require.NoError(t, err)
		keys[i] = &keyloader.LoadedKey{PrivateKey: pk, Address: crypto.PubkeyToAddress(pk.PublicKey)}
	}
	w, err := wallet.NewLocalWallet(keys, nil, logger.NewNopLogger())
	require.NoError(t, err)
	require.NoError(t, w.Connect(0))
	return w
}
