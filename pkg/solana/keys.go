package solana

import (
	"bytes"
	"crypto/ed25519"

	"github.com/mr-tron/base58/base58"
	"github.com/pkg/errors"
)

var (
	ErrInvalidPrivateKey = errors.New("invalid private key")
	ErrInvalidAddress    = errors.New("invalid address")
)

// ParsePrivateKey decodes a base58 64-byte secret key, seed followed by
// public key, as exported by wallets and the Solana CLI.
func ParsePrivateKey(s string) (ed25519.PrivateKey, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidPrivateKey, "not base58")
	}
	if len(raw) != ed25519.PrivateKeySize {
		return nil, errors.Wrapf(ErrInvalidPrivateKey, "expected %d bytes, got %d", ed25519.PrivateKeySize, len(raw))
	}

	derived := ed25519.NewKeyFromSeed(raw[:ed25519.SeedSize])
	if !bytes.Equal(derived[ed25519.SeedSize:], raw[ed25519.SeedSize:]) {
		return nil, errors.Wrap(ErrInvalidPrivateKey, "public half does not match seed")
	}

	return derived, nil
}

// ParseAddress decodes a base58 account address.
func ParseAddress(s string) (ed25519.PublicKey, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidAddress, "not base58")
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, errors.Wrapf(ErrInvalidAddress, "expected %d bytes, got %d", ed25519.PublicKeySize, len(raw))
	}
	return raw, nil
}

// GenerateKey creates a fresh keypair from crypto/rand.
func GenerateKey() (ed25519.PrivateKey, error) {
	_, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate key")
	}
	return priv, nil
}

// Address returns the base58 address of a key.
func Address(key ed25519.PublicKey) string {
	return base58.Encode(key)
}
