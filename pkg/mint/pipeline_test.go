package mint

import (
	"context"
	"crypto/ed25519"
	"math/big"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/code-minter/pkg/solana"
	"github.com/code-payments/code-minter/pkg/solana/memory"
	"github.com/code-payments/code-minter/pkg/solana/token"
	"github.com/code-payments/code-minter/pkg/storage"
	storagememory "github.com/code-payments/code-minter/pkg/storage/memory"
	"github.com/code-payments/code-minter/pkg/testutil"
)

type testEnv struct {
	client    *memory.Client
	publisher *storagememory.Publisher
	pipeline  *Pipeline
	observer  *recordingObserver
	wallet    ed25519.PrivateKey
}

func setup(t *testing.T, overrides *testOverrides) testEnv {
	env := testEnv{
		client:    memory.NewClient(),
		publisher: storagememory.NewPublisher(),
		observer:  &recordingObserver{},
		wallet:    testutil.GenerateSolanaKeypair(t),
	}
	env.pipeline = NewPipeline(env.client, env.publisher, withManualTestOverrides(overrides))
	env.pipeline.SetObserver(env.observer)
	return env
}

func testParameters() *Parameters {
	return &Parameters{
		Token: &TokenParameters{
			Decimals:    9,
			TotalSupply: big.NewRat(1_000_000, 1),
		},
		Metadata: &storage.TokenMetadata{
			Name:                 "MyToken",
			Symbol:               "MTK",
			Image:                "https://example.com/image.png",
			Description:          "A test token",
			SellerFeeBasisPoints: 500,
			Decimals:             9,
			TotalSupply:          "1000000",
		},
	}
}

type recordingObserver struct {
	uri       string
	mint      ed25519.PublicKey
	signature solana.Signature
}

func (o *recordingObserver) MetadataPublished(uri string) { o.uri = uri }
func (o *recordingObserver) MintGenerated(mint ed25519.PublicKey) { o.mint = mint }
func (o *recordingObserver) TransactionSubmitted(sig solana.Signature) { o.signature = sig }

func TestRun_Finalized(t *testing.T) {
	env := setup(t, &testOverrides{})

	params := testParameters()
	result, err := env.pipeline.Run(context.Background(), env.wallet, params)
	require.NoError(t, err)

	assert.Equal(t, solana.ConfirmationFinalized, result.Outcome.Status)
	assert.Equal(t, result.MetadataURI, env.observer.uri)
	assert.EqualValues(t, result.Mint, env.observer.mint)
	assert.Equal(t, result.Signature, env.observer.signature)

	published, ok := env.publisher.Get(result.MetadataURI)
	require.True(t, ok)
	assert.Equal(t, *params.Metadata, published)

	submitted := env.client.Submitted()
	require.Len(t, submitted, 1)
	txn := submitted[0]
	assert.Equal(t, result.Signature, txn.Signature())
	assert.Empty(t, txn.MissingSignatures())
	assert.Len(t, txn.Message.Instructions, InstructionCount)

	wallet := env.wallet.Public().(ed25519.PublicKey)
	ata, err := token.GetAssociatedAccount(wallet, result.Mint)
	require.NoError(t, err)

	mintTo, err := token.DecompileMintTo(txn.Message, 3)
	require.NoError(t, err)
	assert.EqualValues(t, ata, mintTo.Dest)
	assert.EqualValues(t, result.Mint, mintTo.Authority)
	assert.EqualValues(t, 1_000_000_000_000_000, mintTo.Amount)
}

func TestRun_FreshMintPerRun(t *testing.T) {
	env := setup(t, &testOverrides{})

	first, err := env.pipeline.Run(context.Background(), env.wallet, testParameters())
	require.NoError(t, err)
	second, err := env.pipeline.Run(context.Background(), env.wallet, testParameters())
	require.NoError(t, err)

	assert.NotEqual(t, first.Mint, second.Mint)
	assert.NotEqual(t, first.MetadataURI, second.MetadataURI)
}

func TestRun_UploadFailure(t *testing.T) {
	env := setup(t, &testOverrides{})
	env.publisher.SetError(errors.New("node unavailable"))

	result, err := env.pipeline.Run(context.Background(), env.wallet, testParameters())
	assert.ErrorIs(t, err, ErrMetadataUploadFailed)
	assert.Empty(t, result.MetadataURI)
	assert.Nil(t, result.Mint)

	// Nothing was composed or submitted.
	assert.Zero(t, env.client.Calls("GetMinimumBalanceForRentExemption"))
	assert.Zero(t, env.client.Calls("GetLatestBlockhash"))
	assert.Zero(t, env.client.Calls("SubmitTransaction"))
}

func TestRun_Expired(t *testing.T) {
	env := setup(t, &testOverrides{})
	env.client.SetLanding(memory.LandingNever)
	env.client.SetBlockHeightStep(memory.DefaultBlockValidity + 1)

	result, err := env.pipeline.Run(context.Background(), env.wallet, testParameters())
	assert.ErrorIs(t, err, ErrExpired)
	assert.Equal(t, solana.ConfirmationExpired, result.Outcome.Status)
	assert.NotEqual(t, solana.Signature{}, result.Signature)

	// Expiry is terminal. The transaction is never resubmitted.
	assert.Equal(t, 1, env.client.Calls("SubmitTransaction"))
	assert.Len(t, env.client.Submitted(), 1)
}

func TestRun_FailedOnChain(t *testing.T) {
	env := setup(t, &testOverrides{})
	env.client.SetLanding(memory.LandingFail)
	env.client.SetFailure(solana.NewTransactionError(solana.TransactionErrorInsufficientFundsForFee))

	result, err := env.pipeline.Run(context.Background(), env.wallet, testParameters())
	assert.ErrorIs(t, err, ErrSubmissionFailed)
	assert.Equal(t, solana.ConfirmationFailed, result.Outcome.Status)
	require.NotNil(t, result.Outcome.Reason)
	assert.Equal(t, solana.TransactionErrorInsufficientFundsForFee, result.Outcome.Reason.ErrorKey())
}

func TestRun_SubmissionRejected(t *testing.T) {
	env := setup(t, &testOverrides{})
	env.client.SetSubmitError(solana.NewTransactionError(solana.TransactionErrorBlockhashNotFound))

	_, err := env.pipeline.Run(context.Background(), env.wallet, testParameters())
	assert.ErrorIs(t, err, ErrBlockhashExpired)

	env.client.SetSubmitError(solana.NewTransactionError(solana.TransactionErrorAccountNotFound))
	_, err = env.pipeline.Run(context.Background(), env.wallet, testParameters())
	assert.ErrorIs(t, err, ErrSubmissionFailed)

	env.client.SetSubmitError(solana.ErrSubmissionRejected)
	_, err = env.pipeline.Run(context.Background(), env.wallet, testParameters())
	assert.ErrorIs(t, err, ErrSubmissionFailed)

	assert.Empty(t, env.client.Submitted())
}

func TestRun_InvalidParameters(t *testing.T) {
	env := setup(t, &testOverrides{})

	_, err := env.pipeline.Run(context.Background(), env.wallet, nil)
	assert.ErrorIs(t, err, ErrInvalidParameters)

	_, err = env.pipeline.Run(context.Background(), nil, testParameters())
	assert.ErrorIs(t, err, ErrInvalidParameters)

	params := testParameters()
	params.Metadata.Name = ""
	_, err = env.pipeline.Run(context.Background(), env.wallet, params)
	assert.ErrorIs(t, err, ErrInvalidParameters)

	params = testParameters()
	params.Token.Decimals = 18
	params.Token.TotalSupply = big.NewRat(1_000_000, 1)
	_, err = env.pipeline.Run(context.Background(), env.wallet, params)
	assert.ErrorIs(t, err, ErrInvalidParameters)

	assert.Zero(t, env.publisher.Calls())
	assert.Zero(t, env.client.Calls("GetMinimumBalanceForRentExemption"))
}

func TestRun_ConfirmTimeout(t *testing.T) {
	env := setup(t, &testOverrides{
		confirmTimeout: 50 * time.Millisecond,
	})
	env.client.SetLanding(memory.LandingNever)

	result, err := env.pipeline.Run(context.Background(), env.wallet, testParameters())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotErrorIs(t, err, ErrExpired)
	assert.NotEqual(t, solana.Signature{}, result.Signature)
}

func TestRun_Commitment(t *testing.T) {
	env := setup(t, &testOverrides{commitment: "confirmed"})
	assert.Equal(t, solana.CommitmentConfirmed, env.pipeline.commitment(context.Background()))

	env = setup(t, &testOverrides{commitment: "eventually"})
	assert.Equal(t, solana.CommitmentFinalized, env.pipeline.commitment(context.Background()))
}
