package memory

import (
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/code-minter/pkg/solana"
	"github.com/code-payments/code-minter/pkg/solana/system"
)

func TestRentExemption(t *testing.T) {
	// Mint accounts on mainnet require 0.0014616 SOL.
	assert.EqualValues(t, 1_461_600, RentExemption(82))
	assert.EqualValues(t, 890_880, RentExemption(0))
}

func TestSubmitAndStatus(t *testing.T) {
	client := NewClient()

	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	to, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	latest, err := client.GetLatestBlockhash(solana.CommitmentFinalized)
	require.NoError(t, err)
	assert.EqualValues(t, 1000+DefaultBlockValidity, latest.LastValidBlockHeight)

	txn := solana.NewTransaction(pub, system.Transfer(pub, to, 10))
	txn.SetBlockhash(latest.Blockhash)

	fee, err := client.GetFeeForMessage(txn.Message, solana.CommitmentProcessed)
	require.NoError(t, err)
	assert.EqualValues(t, DefaultLamportsPerSignature, fee)

	// Unsigned
	_, err = client.SubmitTransaction(txn, solana.CommitmentFinalized)
	txErr, ok := err.(*solana.TransactionError)
	require.True(t, ok)
	assert.Equal(t, solana.TransactionErrorSignatureFailure, txErr.ErrorKey())
	assert.Empty(t, client.Submitted())

	require.NoError(t, txn.Sign(priv))
	sig, err := client.SubmitTransaction(txn, solana.CommitmentFinalized)
	require.NoError(t, err)
	assert.Equal(t, txn.Signature(), sig)
	assert.Len(t, client.Submitted(), 1)
	assert.Equal(t, 2, client.Calls("SubmitTransaction"))

	statuses, err := client.GetSignatureStatuses([]solana.Signature{sig, {}})
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	require.NotNil(t, statuses[0])
	assert.True(t, statuses[0].Finalized())
	assert.Nil(t, statuses[1])
}

func TestLandingModes(t *testing.T) {
	client := NewClient()

	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	submit := func() solana.Signature {
		latest, err := client.GetLatestBlockhash(solana.CommitmentFinalized)
		require.NoError(t, err)

		txn := solana.NewTransaction(pub, system.Transfer(pub, pub, 1))
		txn.SetBlockhash(latest.Blockhash)
		require.NoError(t, txn.Sign(priv))

		sig, err := client.SubmitTransaction(txn, solana.CommitmentFinalized)
		require.NoError(t, err)
		return sig
	}

	client.SetLanding(LandingNever)
	statuses, err := client.GetSignatureStatuses([]solana.Signature{submit()})
	require.NoError(t, err)
	assert.Nil(t, statuses[0])

	client.SetLanding(LandingFail)
	statuses, err = client.GetSignatureStatuses([]solana.Signature{submit()})
	require.NoError(t, err)
	require.NotNil(t, statuses[0])
	require.NotNil(t, statuses[0].ErrorResult)
	assert.Equal(t, solana.TransactionErrorAccountInUse, statuses[0].ErrorResult.ErrorKey())

	client.SetBlockHeightStep(100)
	h1, err := client.GetBlockHeight(solana.CommitmentFinalized)
	require.NoError(t, err)
	h2, err := client.GetBlockHeight(solana.CommitmentFinalized)
	require.NoError(t, err)
	assert.EqualValues(t, 100, h2-h1)

	client.SetSubmitError(assert.AnError)
	_, err = client.SubmitTransaction(solana.Transaction{}, solana.CommitmentFinalized)
	assert.Equal(t, assert.AnError, err)
}
