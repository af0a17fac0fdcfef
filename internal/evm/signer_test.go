package evm

import (
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSigner(t *testing.T) *Signer {
	t.Helper()
	pk, err := crypto.GenerateKey()
	require.NoError(t, err)
	s, err := NewSigner(pk)
	require.NoError(t, err)
	return s
}

func TestSigner_PersonalMessageRoundTrip(t *testing.T) {
	s := newTestSigner(t)
	msg := []byte("Voting with my address 0xABC for cand1 in category catA")

	sig, err := s.SignPersonalMessage(msg)
	require.NoError(t, err)
	require.Len(t, sig, crypto.SignatureLength)
	assert.GreaterOrEqual(t, sig[crypto.RecoveryIDOffset], byte(27))

	addr, err := RecoverPersonalMessage(msg, sig)
	require.NoError(t, err)
	assert.Equal(t, s.Address(), addr)
}

func TestSigner_TaggedPrefix(t *testing.T) {
	s := newTestSigner(t)

	tagged, err := s.SignTagged([]byte("hello"))
	require.NoError(t, err)
	require.Len(t, tagged, crypto.SignatureLength+2)
	assert.Equal(t, SignatureKindECDSA, tagged[0])
	assert.Equal(t, byte(crypto.SignatureLength), tagged[1])

	addr, err := RecoverPersonalMessage([]byte("hello"), tagged[2:])
	require.NoError(t, err)
	assert.Equal(t, s.Address(), addr)
}

func TestNewSigner_NilKey(t *testing.T) {
	_, err := NewSigner(nil)
	assert.ErrorIs(t, err, ErrNilPrivateKey)
}

func TestRecoverPersonalMessage_BadLength(t *testing.T) {
	_, err := RecoverPersonalMessage([]byte("x"), []byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrMalformedSignature)
}
