package mint

import (
	"context"
	"crypto/ed25519"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/code-minter/pkg/metrics"
	"github.com/code-payments/code-minter/pkg/solana"
	"github.com/code-payments/code-minter/pkg/storage"
)

// Observer is notified as a mint progresses. Calls happen on the goroutine
// running the pipeline.
type Observer interface {
	MetadataPublished(uri string)
	MintGenerated(mint ed25519.PublicKey)
	TransactionSubmitted(sig solana.Signature)
}

// Result describes a mint. Fields are populated as far as the pipeline got,
// so a failed run still reports the mint and signature if they exist.
type Result struct {
	MetadataURI string
	Mint        ed25519.PublicKey
	Signature   solana.Signature
	Outcome     solana.ConfirmationOutcome
}

// Pipeline publishes metadata, then composes, signs, submits and confirms a
// single transaction that creates the token.
type Pipeline struct {
	log       *logrus.Entry
	conf      *conf
	client    solana.Client
	publisher storage.Publisher
	composer  *Composer
	observer  Observer
}

func NewPipeline(client solana.Client, publisher storage.Publisher, configProvider ConfigProvider) *Pipeline {
	return &Pipeline{
		log:       logrus.StandardLogger().WithField("type", "mint/pipeline"),
		conf:      configProvider(),
		client:    client,
		publisher: publisher,
		composer:  NewComposer(client),
	}
}

// SetObserver registers o for progress notifications.
func (p *Pipeline) SetObserver(o Observer) {
	p.observer = o
}

// Run mints a token funded and owned by wallet. A fresh mint identity is
// generated for every run and acts as both mint and update authority.
//
// The transaction is submitted once. If its blockhash expires before it
// lands, ErrExpired is returned and the caller must decide whether to mint
// again.
func (p *Pipeline) Run(ctx context.Context, wallet ed25519.PrivateKey, params *Parameters) (result *Result, err error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "Run")
	defer tracer.End()

	start := time.Now()
	result = &Result{}
	defer func() {
		tracer.OnError(err)
		p.recordOutcome(ctx, start, result, err)
	}()

	if len(wallet) != ed25519.PrivateKeySize {
		return result, errors.Wrap(ErrInvalidParameters, "wallet key is missing or malformed")
	}
	if params == nil || params.Token == nil {
		return result, errors.Wrap(ErrInvalidParameters, "token parameters are missing")
	}
	if err := params.Metadata.Validate(); err != nil {
		return result, errors.Wrap(ErrInvalidParameters, err.Error())
	}
	if _, err := SupplyBaseUnits(params.Token.TotalSupply, params.Token.Decimals); err != nil {
		return result, err
	}

	commitment := p.commitment(ctx)
	payer := wallet.Public().(ed25519.PublicKey)

	log := p.log.WithFields(logrus.Fields{
		"method": "Run",
		"payer":  solana.Address(payer),
	})

	uri, err := p.publisher.Publish(ctx, params.Metadata)
	if err != nil {
		log.WithError(err).Warn("failure publishing token metadata")
		return result, errors.Wrap(ErrMetadataUploadFailed, err.Error())
	}
	result.MetadataURI = uri
	if p.observer != nil {
		p.observer.MetadataPublished(uri)
	}

	mintKey, err := solana.GenerateKey()
	if err != nil {
		return result, err
	}
	mint := mintKey.Public().(ed25519.PublicKey)
	result.Mint = mint
	if p.observer != nil {
		p.observer.MintGenerated(mint)
	}

	log = log.WithField("mint", solana.Address(mint))

	data := params.Metadata.WithURI(uri)
	instructions, err := p.composer.Compose(params.Token, &data, payer, mint, payer, mint)
	if err != nil {
		return result, err
	}

	blockhash, err := p.client.GetLatestBlockhash(commitment)
	if err != nil {
		return result, errors.Wrap(err, "failed to get latest blockhash")
	}

	txn, err := Assemble(instructions, payer, blockhash.Blockhash)
	if err != nil {
		return result, err
	}
	if err := Sign(&txn, wallet, mintKey); err != nil {
		return result, errors.Wrap(err, "failed to sign transaction")
	}

	sig, err := p.client.SubmitTransaction(txn, commitment)
	result.Signature = sig
	if err != nil {
		log.WithError(err).Warn("failure submitting mint transaction")
		return result, submissionError(err)
	}
	if p.observer != nil {
		p.observer.TransactionSubmitted(sig)
	}

	log = log.WithField("signature", sig.String())
	log.Debug("mint transaction submitted")

	confirmCtx, cancel := context.WithTimeout(ctx, p.conf.confirmTimeout.Get(ctx))
	defer cancel()

	outcome, err := solana.ConfirmTransaction(confirmCtx, p.client, sig, blockhash.LastValidBlockHeight, commitment)
	result.Outcome = outcome
	if err != nil {
		return result, errors.Wrap(err, "mint transaction outcome unknown")
	}

	switch outcome.Status {
	case solana.ConfirmationFinalized:
		log.WithField("slot", outcome.Slot).Info("token minted")
		return result, nil
	case solana.ConfirmationExpired:
		return result, errors.Wrapf(ErrExpired, "block height %d passed %d", outcome.BlockHeight, blockhash.LastValidBlockHeight)
	default:
		return result, errors.Wrapf(ErrSubmissionFailed, "transaction failed on chain: %v", outcome.Reason)
	}
}

func (p *Pipeline) commitment(ctx context.Context) solana.Commitment {
	configured := p.conf.commitment.Get(ctx)
	commitment, err := solana.ParseCommitment(configured)
	if err != nil {
		p.log.WithError(err).Warnf("invalid commitment %q, using finalized", configured)
		return solana.CommitmentFinalized
	}
	return commitment
}

func submissionError(err error) error {
	var txErr *solana.TransactionError
	if errors.As(err, &txErr) && txErr.ErrorKey() == solana.TransactionErrorBlockhashNotFound {
		return errors.Wrap(ErrBlockhashExpired, err.Error())
	}
	return errors.Wrap(ErrSubmissionFailed, err.Error())
}

func (p *Pipeline) recordOutcome(ctx context.Context, start time.Time, result *Result, err error) {
	metrics.RecordDuration(ctx, mintPipelineDurationMetricName, time.Since(start))

	outcome := "finalized"
	switch {
	case errors.Is(err, ErrInvalidParameters):
		outcome = "invalid_parameters"
	case errors.Is(err, ErrMetadataUploadFailed):
		outcome = "upload_failed"
	case errors.Is(err, ErrBlockhashExpired), errors.Is(err, ErrExpired):
		outcome = "expired"
	case errors.Is(err, ErrSubmissionFailed):
		outcome = "failed"
	case err != nil:
		outcome = "error"
	}

	kvPairs := map[string]interface{}{
		"outcome": outcome,
	}
	if len(result.Mint) > 0 {
		kvPairs["mint"] = solana.Address(result.Mint)
	}
	if result.Signature != (solana.Signature{}) {
		kvPairs["signature"] = result.Signature.String()
	}
	metrics.RecordEvent(ctx, mintCompletedEventName, kvPairs)
}
