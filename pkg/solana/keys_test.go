package solana

import (
	"crypto/ed25519"
	"testing"

	"github.com/mr-tron/base58/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrivateKey(t *testing.T) {
	priv, err := GenerateKey()
	require.NoError(t, err)

	parsed, err := ParsePrivateKey(base58.Encode(priv))
	require.NoError(t, err)
	assert.Equal(t, priv, parsed)

	_, err = ParsePrivateKey("0OIl")
	assert.ErrorIs(t, err, ErrInvalidPrivateKey)

	_, err = ParsePrivateKey(base58.Encode(priv[:32]))
	assert.ErrorIs(t, err, ErrInvalidPrivateKey)

	other, err := GenerateKey()
	require.NoError(t, err)
	mismatched := append(append([]byte{}, priv[:32]...), other[32:]...)
	_, err = ParsePrivateKey(base58.Encode(mismatched))
	assert.ErrorIs(t, err, ErrInvalidPrivateKey)
}

func TestParseAddress(t *testing.T) {
	priv, err := GenerateKey()
	require.NoError(t, err)
	pub := priv.Public().(ed25519.PublicKey)

	parsed, err := ParseAddress(Address(pub))
	require.NoError(t, err)
	assert.Equal(t, pub, parsed)

	_, err = ParseAddress("not-base58!")
	assert.ErrorIs(t, err, ErrInvalidAddress)

	_, err = ParseAddress(base58.Encode([]byte{1, 2, 3}))
	assert.ErrorIs(t, err, ErrInvalidAddress)
}
