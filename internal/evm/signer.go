package evm

import (
	"crypto/ecdsa"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// SignatureKindECDSA tags a secp256k1 personal_sign signature in the tagged encoding.
const SignatureKindECDSA byte = 0x02

var (
	// ErrNilPrivateKey indicates a signer was requested without a key.
	ErrNilPrivateKey = errors.New("private key cannot be nil")
	// ErrMalformedSignature indicates a signature of unexpected length or tag.
	ErrMalformedSignature = errors.New("malformed signature")
)

// Signer wraps an ECDSA private key to provide EIP-191 message signing.
type Signer struct {
	privateKey *ecdsa.PrivateKey
	address    common.Address
}

// NewSigner creates a new Signer instance from an ECDSA private key.
func NewSigner(pk *ecdsa.PrivateKey) (*Signer, error) {
	if pk == nil {
		return nil, ErrNilPrivateKey
	}
	return &Signer{
		privateKey: pk,
		address:    crypto.PubkeyToAddress(pk.PublicKey),
	}, nil
}

// Address returns the Ethereum address associated with the Signer's private key.
func (s *Signer) Address() common.Address {
	return s.address
}

// personalHash returns keccak256("\x19Ethereum Signed Message:\n" + len(message) + message).
func personalHash(message []byte) []byte {
	prefix := fmt.Sprintf("\x19Ethereum Signed Message:\n%d", len(message))
	return crypto.Keccak256(append([]byte(prefix), message...))
}

// SignPersonalMessage signs the given message according to the EIP-191 standard (`personal_sign`).
// The recovery byte is shifted to the 27/28 convention.
func (s *Signer) SignPersonalMessage(message []byte) ([]byte, error) {
	sig, err := crypto.Sign(personalHash(message), s.privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign message hash: %w", err)
	}
	sig[crypto.RecoveryIDOffset] += 27
	return sig, nil
}

// SignTagged signs message and prepends a two byte tag: the signature kind and
// the signature length. Hex encoded, the tag is the first four characters.
func (s *Signer) SignTagged(message []byte) ([]byte, error) {
	sig, err := s.SignPersonalMessage(message)
	if err != nil {
		return nil, err
	}
	return append([]byte{SignatureKindECDSA, byte(len(sig))}, sig...), nil
}

// RecoverPersonalMessage returns the address that produced sig over message.
// sig is the untagged 65-byte personal_sign signature.
func RecoverPersonalMessage(message, sig []byte) (common.Address, error) {
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, fmt.Errorf("%w: length %d", ErrMalformedSignature, len(sig))
	}
	normalized := make([]byte, len(sig))
	copy(normalized, sig)
	if normalized[crypto.RecoveryIDOffset] >= 27 {
		normalized[crypto.RecoveryIDOffset] -= 27
	}
	pub, err := crypto.SigToPub(personalHash(message), normalized)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %w", ErrMalformedSignature, err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}
