package memory

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/binary"
	"sync"

	"github.com/pkg/errors"

	"github.com/code-payments/code-minter/pkg/solana"
)

const (
	// Matches the default rent parameters of a cluster.
	lamportsPerByteYear    = 3480
	exemptionThreshold     = 2
	accountStorageOverhead = 128

	DefaultLamportsPerSignature = 5000
	DefaultBlockValidity        = 150
)

// Landing controls what happens to a submitted transaction.
type Landing uint8

const (
	// LandingFinalize finalizes the transaction on the next status query.
	LandingFinalize Landing = iota
	// LandingNever never lands the transaction. Combined with block height
	// advancement, this models expiry.
	LandingNever
	// LandingFail lands the transaction with an on-chain error.
	LandingFail
)

// Client is an in-memory solana.Client.
type Client struct {
	mu sync.Mutex

	balances             map[string]uint64
	lamportsPerSignature uint64
	blockHeight          uint64
	blockHeightStep      uint64
	blockValidity        uint64
	blockhashNonce       uint64
	slot                 uint64

	landing        Landing
	failure        *solana.TransactionError
	submitErr      error
	blockhashErr   error
	rpcErr         error
	feeUnavailable bool

	submitted []solana.Transaction
	statuses  map[solana.Signature]*solana.SignatureStatus
	calls     map[string]int
}

func NewClient() *Client {
	return &Client{
		balances:             make(map[string]uint64),
		lamportsPerSignature: DefaultLamportsPerSignature,
		blockHeight:          1000,
		blockValidity:        DefaultBlockValidity,
		slot:                 1200,
		failure:              solana.NewTransactionError(solana.TransactionErrorAccountInUse),
		statuses:             make(map[solana.Signature]*solana.SignatureStatus),
		calls:                make(map[string]int),
	}
}

func (c *Client) SetBalance(account ed25519.PublicKey, lamports uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.balances[string(account)] = lamports
}

func (c *Client) SetLamportsPerSignature(lamports uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lamportsPerSignature = lamports
}

// SetBlockHeightStep makes every GetBlockHeight call advance the block
// height by step before answering.
func (c *Client) SetBlockHeightStep(step uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.blockHeightStep = step
}

func (c *Client) SetLanding(landing Landing) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.landing = landing
}

func (c *Client) SetFailure(txErr *solana.TransactionError) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.failure = txErr
}

func (c *Client) SetSubmitError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.submitErr = err
}

func (c *Client) SetBlockhashError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.blockhashErr = err
}

// SetRPCError makes every read return err.
func (c *Client) SetRPCError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.rpcErr = err
}

func (c *Client) SetFeeUnavailable(unavailable bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.feeUnavailable = unavailable
}

// Submitted returns the transactions accepted by SubmitTransaction.
func (c *Client) Submitted() []solana.Transaction {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]solana.Transaction(nil), c.submitted...)
}

// Calls returns how many times the named method was invoked.
func (c *Client) Calls(method string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.calls[method]
}

// RentExemption returns the rent exempt minimum for an account of the given
// size.
func RentExemption(size uint64) uint64 {
	return (accountStorageOverhead + size) * lamportsPerByteYear * exemptionThreshold
}

func (c *Client) GetBalance(account ed25519.PublicKey) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls["GetBalance"]++
	if c.rpcErr != nil {
		return 0, c.rpcErr
	}

	return c.balances[string(account)], nil
}

func (c *Client) GetBlockHeight(_ solana.Commitment) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls["GetBlockHeight"]++
	if c.rpcErr != nil {
		return 0, c.rpcErr
	}

	c.blockHeight += c.blockHeightStep
	return c.blockHeight, nil
}

func (c *Client) GetFeeForMessage(m solana.Message, _ solana.Commitment) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls["GetFeeForMessage"]++
	if c.rpcErr != nil {
		return 0, c.rpcErr
	}
	if c.feeUnavailable {
		return 0, solana.ErrFeeUnavailable
	}

	return uint64(m.Header.NumSignatures) * c.lamportsPerSignature, nil
}

func (c *Client) GetLatestBlockhash(_ solana.Commitment) (solana.LatestBlockhash, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls["GetLatestBlockhash"]++
	if c.blockhashErr != nil {
		return solana.LatestBlockhash{}, c.blockhashErr
	}
	if c.rpcErr != nil {
		return solana.LatestBlockhash{}, c.rpcErr
	}

	c.blockhashNonce++
	var nonce [8]byte
	binary.LittleEndian.PutUint64(nonce[:], c.blockhashNonce)

	return solana.LatestBlockhash{
		Blockhash:            solana.Blockhash(sha256.Sum256(nonce[:])),
		LastValidBlockHeight: c.blockHeight + c.blockValidity,
	}, nil
}

func (c *Client) GetMinimumBalanceForRentExemption(size uint64) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls["GetMinimumBalanceForRentExemption"]++
	if c.rpcErr != nil {
		return 0, c.rpcErr
	}

	return RentExemption(size), nil
}

func (c *Client) GetSignatureStatuses(sigs []solana.Signature) ([]*solana.SignatureStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls["GetSignatureStatuses"]++
	if c.rpcErr != nil {
		return nil, c.rpcErr
	}

	statuses := make([]*solana.SignatureStatus, len(sigs))
	for i, sig := range sigs {
		status, ok := c.statuses[sig]
		if !ok {
			continue
		}

		copied := *status
		statuses[i] = &copied
	}
	return statuses, nil
}

// SubmitTransaction verifies signatures the way a node's preflight would,
// then records the transaction and schedules its landing.
func (c *Client) SubmitTransaction(txn solana.Transaction, _ solana.Commitment) (solana.Signature, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls["SubmitTransaction"]++
	sig := txn.Signature()

	if c.submitErr != nil {
		return sig, c.submitErr
	}
	if len(txn.Marshal()) > solana.MaxTransactionSize {
		return sig, errors.Wrap(solana.ErrTransactionTooLarge, "memory client")
	}
	if len(txn.MissingSignatures()) > 0 || !txn.VerifySignatures() {
		return sig, solana.NewTransactionError(solana.TransactionErrorSignatureFailure)
	}

	c.submitted = append(c.submitted, txn)
	c.slot++

	switch c.landing {
	case LandingFinalize:
		c.statuses[sig] = &solana.SignatureStatus{
			Slot:               c.slot,
			ConfirmationStatus: "finalized",
		}
	case LandingFail:
		c.statuses[sig] = &solana.SignatureStatus{
			Slot:               c.slot,
			ErrorResult:        c.failure,
			ConfirmationStatus: "finalized",
		}
	}

	return sig, nil
}
