package solana

import (
	"bytes"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/mr-tron/base58/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/ybbus/jsonrpc"

	"github.com/code-payments/code-minter/pkg/rate"
	"github.com/code-payments/code-minter/pkg/retry"
	"github.com/code-payments/code-minter/pkg/retry/backoff"
)

const (
	// These could be read from the sysvars, but they are unlikely to change.
	ticksPerSec  = 160
	ticksPerSlot = 64
	slotsPerSec  = ticksPerSec / ticksPerSlot

	// PollRate is the rate at which blocks should be polled at.
	PollRate = (time.Second / slotsPerSec) / 2

	// Reference: https://github.com/solana-labs/solana/blob/71e9958e061493d7545bd28d4ac7a85aaed6ffbb/client/src/rpc_custom_error.rs#L11
	rpcNodeUnhealthyCode = -32005

	invalidParamCode = -32602
)

type Commitment struct {
	Commitment string `json:"commitment"`
}

const (
	confirmationStatusProcessed = "processed"
	confirmationStatusConfirmed = "confirmed"
	confirmationStatusFinalized = "finalized"
)

var (
	CommitmentProcessed = Commitment{Commitment: confirmationStatusProcessed}
	CommitmentConfirmed = Commitment{Commitment: confirmationStatusConfirmed}
	CommitmentFinalized = Commitment{Commitment: confirmationStatusFinalized}
)

// ErrUnknownCommitment is returned when parsing an unsupported commitment level.
var ErrUnknownCommitment = errors.New("unknown commitment")

// ParseCommitment parses processed, confirmed or finalized.
func ParseCommitment(s string) (Commitment, error) {
	switch s {
	case confirmationStatusProcessed:
		return CommitmentProcessed, nil
	case confirmationStatusConfirmed:
		return CommitmentConfirmed, nil
	case confirmationStatusFinalized:
		return CommitmentFinalized, nil
	}
	return Commitment{}, errors.Wrap(ErrUnknownCommitment, s)
}

var (
	ErrNoBalance          = errors.New("no balance")
	ErrFeeUnavailable     = errors.New("fee unavailable for message")
	ErrSubmissionRejected = errors.New("transaction rejected by rpc node")
)

type SignatureStatus struct {
	Slot        uint64
	ErrorResult *TransactionError

	// Confirmations will be nil if the transaction has been rooted.
	Confirmations      *int
	ConfirmationStatus string
}

func (s SignatureStatus) Confirmed() bool {
	if s.Finalized() {
		return true
	}

	if s.ConfirmationStatus == confirmationStatusConfirmed {
		return true
	}

	return *s.Confirmations >= 1
}

func (s SignatureStatus) Finalized() bool {
	return s.Confirmations == nil || s.ConfirmationStatus == confirmationStatusFinalized
}

// Reached reports whether the status satisfies the commitment level.
func (s SignatureStatus) Reached(commitment Commitment) bool {
	switch commitment.Commitment {
	case confirmationStatusFinalized:
		return s.Finalized()
	case confirmationStatusConfirmed:
		return s.Confirmed()
	default:
		return true
	}
}

// LatestBlockhash is a blockhash together with the last block height at
// which transactions referencing it are still accepted.
type LatestBlockhash struct {
	Blockhash            Blockhash
	LastValidBlockHeight uint64
}

// Client is the subset of the Solana JSON RPC API the minter needs.
//
// Reference: https://docs.solana.com/api/http
type Client interface {
	GetBalance(ed25519.PublicKey) (uint64, error)
	GetBlockHeight(Commitment) (uint64, error)
	GetFeeForMessage(Message, Commitment) (uint64, error)
	GetLatestBlockhash(Commitment) (LatestBlockhash, error)
	GetMinimumBalanceForRentExemption(size uint64) (lamports uint64, err error)
	GetSignatureStatuses([]Signature) ([]*SignatureStatus, error)
	SubmitTransaction(Transaction, Commitment) (Signature, error)
}

var (
	errRateLimited  = errors.New("rate limited")
	errServiceError = errors.New("service error")
)

type client struct {
	log     *logrus.Entry
	client  jsonrpc.RPCClient
	limiter rate.Limiter
	retrier retry.Retrier
}

// New returns a client using the specified endpoint.
func New(endpoint string) Client {
	return NewWithRPCOptions(endpoint, nil, &rate.NoLimiter{})
}

// NewWithRateLimiter returns a client that throttles itself per RPC method
// before the node does.
func NewWithRateLimiter(endpoint string, limiter rate.Limiter) Client {
	return NewWithRPCOptions(endpoint, nil, limiter)
}

// NewWithRPCOptions returns a client configured with the specified RPC options.
func NewWithRPCOptions(endpoint string, opts *jsonrpc.RPCClientOpts, limiter rate.Limiter) Client {
	return &client{
		log:     logrus.StandardLogger().WithField("type", "solana/client"),
		client:  jsonrpc.NewClientWithOpts(endpoint, opts),
		limiter: limiter,
		retrier: retry.NewRetrier(
			retry.RetriableErrors(errRateLimited, errServiceError),
			retry.Limit(3),
			retry.BackoffWithJitter(backoff.BinaryExponential(time.Second), 10*time.Second, 0.1),
		),
	}
}

func (c *client) call(out interface{}, method string, params ...interface{}) error {
	_, err := c.retrier.Retry(func() error {
		if !c.limiter.Allow(method) {
			return errRateLimited
		}

		err := c.client.CallFor(out, method, params...)
		if err == nil {
			return nil
		}

		return c.handleRpcError(method, err)
	})

	return err
}

func (c *client) handleRpcError(method string, err error) error {
	rpcErr, ok := err.(*jsonrpc.RPCError)
	if !ok {
		return err
	}
	if rpcErr.Code == 429 {
		c.log.WithField("method", method).Warn("rate limited")
		return errRateLimited
	}
	if rpcErr.Code >= 500 || rpcErr.Code == rpcNodeUnhealthyCode {
		c.log.WithField("method", method).WithError(err).Warn("rpc service error")
		return errServiceError
	}

	return err
}

func (c *client) GetMinimumBalanceForRentExemption(dataSize uint64) (lamports uint64, err error) {
	if err := c.call(&lamports, "getMinimumBalanceForRentExemption", dataSize); err != nil {
		return 0, errors.Wrapf(err, "getMinimumBalanceForRentExemption() failed to send request")
	}

	return lamports, nil
}

func (c *client) GetBlockHeight(commitment Commitment) (height uint64, err error) {
	// The commitment has to be wrapped in an []interface{}, otherwise the
	// client sends it as a by-name object, which the RPC node rejects.
	if err := c.call(&height, "getBlockHeight", []interface{}{commitment}); err != nil {
		return 0, errors.Wrapf(err, "getBlockHeight() failed to send request")
	}

	return height, nil
}

func (c *client) GetLatestBlockhash(commitment Commitment) (LatestBlockhash, error) {
	type response struct {
		Value struct {
			Blockhash            string `json:"blockhash"`
			LastValidBlockHeight uint64 `json:"lastValidBlockHeight"`
		} `json:"value"`
	}

	var resp response
	if err := c.call(&resp, "getLatestBlockhash", []interface{}{commitment}); err != nil {
		return LatestBlockhash{}, errors.Wrapf(err, "getLatestBlockhash() failed to send request")
	}

	hash, err := BlockhashFromBase58(resp.Value.Blockhash)
	if err != nil {
		return LatestBlockhash{}, errors.Wrap(err, "invalid blockhash in response")
	}

	return LatestBlockhash{
		Blockhash:            hash,
		LastValidBlockHeight: resp.Value.LastValidBlockHeight,
	}, nil
}

func (c *client) GetFeeForMessage(m Message, commitment Commitment) (uint64, error) {
	var resp struct {
		Value *uint64 `json:"value"`
	}

	encoded := base64.StdEncoding.EncodeToString(m.Marshal())
	if err := c.call(&resp, "getFeeForMessage", encoded, commitment); err != nil {
		return 0, errors.Wrapf(err, "getFeeForMessage() failed to send request")
	}

	// The node answers null when the message blockhash has expired.
	if resp.Value == nil {
		return 0, ErrFeeUnavailable
	}

	return *resp.Value, nil
}

func (c *client) GetBalance(account ed25519.PublicKey) (uint64, error) {
	var resp struct {
		Value *uint64 `json:"value"`
	}
	if err := c.call(&resp, "getBalance", base58.Encode(account[:]), CommitmentProcessed); err != nil {
		jsonRPCErr, ok := err.(*jsonrpc.RPCError)
		if ok && jsonRPCErr.Code == invalidParamCode {
			return 0, ErrNoBalance
		}

		return 0, errors.Wrapf(err, "getBalance() failed to send request")
	}

	if resp.Value == nil {
		return 0, errors.Errorf("invalid value in response")
	}

	return *resp.Value, nil
}

// SubmitTransaction sends the transaction with preflight enabled at the
// given commitment. A preflight rejection that carries a transaction error
// is returned as *TransactionError.
func (c *client) SubmitTransaction(txn Transaction, commitment Commitment) (Signature, error) {
	sig := txn.Signature()
	txnBytes := txn.Marshal()
	if len(txnBytes) > MaxTransactionSize {
		return sig, errors.Wrapf(ErrTransactionTooLarge, "%d bytes", len(txnBytes))
	}

	config := struct {
		Encoding            string `json:"encoding"`
		SkipPreflight       bool   `json:"skipPreflight"`
		PreflightCommitment string `json:"preflightCommitment"`
	}{
		Encoding:            "base64",
		SkipPreflight:       false,
		PreflightCommitment: commitment.Commitment,
	}

	var sigStr string
	err := c.call(&sigStr, "sendTransaction", base64.StdEncoding.EncodeToString(txnBytes), config)
	if err == nil {
		return sig, nil
	}

	jsonRPCErr, ok := err.(*jsonrpc.RPCError)
	if !ok {
		return sig, errors.Wrapf(err, "sendTransaction() failed to send request")
	}

	txResult, parseErr := ParseRPCError(jsonRPCErr)
	if parseErr != nil || txResult == nil {
		return sig, errors.Wrapf(ErrSubmissionRejected, "%d: %s", jsonRPCErr.Code, jsonRPCErr.Message)
	}

	c.log.WithFields(logrus.Fields{
		"method":    "SubmitTransaction",
		"signature": sig.String(),
	}).WithError(txResult).Debug("preflight rejected transaction")

	return sig, txResult
}

func (c *client) GetSignatureStatuses(sigs []Signature) ([]*SignatureStatus, error) {
	b58Sigs := make([]string, len(sigs))
	for i := range sigs {
		b58Sigs[i] = base58.Encode(sigs[i][:])
	}

	req := struct {
		SearchTransactionHistory bool `json:"searchTransactionHistory"`
	}{
		SearchTransactionHistory: false,
	}

	type signatureStatus struct {
		Slot               uint64          `json:"slot"`
		Confirmations      *int            `json:"confirmations"`
		ConfirmationStatus string          `json:"confirmationStatus"`
		Err                json.RawMessage `json:"err"`
	}

	type rpcResp struct {
		Value []*signatureStatus `json:"value"`
	}

	var resp rpcResp
	if err := c.call(&resp, "getSignatureStatuses", b58Sigs, req); err != nil {
		return nil, errors.Wrapf(err, "getSignatureStatuses() failed to send request")
	}

	statuses := make([]*SignatureStatus, len(sigs))
	for i, v := range resp.Value {
		if v == nil || i >= len(statuses) {
			continue
		}

		statuses[i] = &SignatureStatus{
			Slot:               v.Slot,
			Confirmations:      v.Confirmations,
			ConfirmationStatus: v.ConfirmationStatus,
		}

		if len(v.Err) > 0 && !bytes.Equal(v.Err, []byte("null")) {
			var txError interface{}
			d := json.NewDecoder(bytes.NewBuffer(v.Err))
			d.UseNumber()
			if err := d.Decode(&txError); err != nil {
				return nil, errors.Wrap(err, "failed to parse transaction result")
			}

			statusErr, err := ParseTransactionError(txError)
			if err != nil {
				return nil, errors.Wrap(err, "failed to parse transaction result")
			}
			statuses[i].ErrorResult = statusErr
		}
	}

	return statuses, nil
}
