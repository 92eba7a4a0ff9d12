package solana

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mr-tron/base58/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/code-minter/pkg/rate"
)

func TestSignatureStatus(t *testing.T) {
	zero, one := 0, 1

	testCases := []struct {
		s         SignatureStatus
		confirmed bool
		finalized bool
	}{
		{
			s: SignatureStatus{
				Slot:               10,
				ErrorResult:        nil,
				Confirmations:      &zero,
				ConfirmationStatus: "",
			},
		},
		{
			s: SignatureStatus{
				Slot:               10,
				ErrorResult:        nil,
				Confirmations:      &zero,
				ConfirmationStatus: "random",
			},
		},
		{
			s: SignatureStatus{
				Slot:               10,
				ErrorResult:        nil,
				Confirmations:      &zero,
				ConfirmationStatus: confirmationStatusProcessed,
			},
		},
		{
			s: SignatureStatus{
				Slot:               10,
				ErrorResult:        nil,
				Confirmations:      &one,
				ConfirmationStatus: "",
			},
			confirmed: true,
		},
		{
			s: SignatureStatus{
				Slot:               10,
				ErrorResult:        nil,
				Confirmations:      &zero,
				ConfirmationStatus: confirmationStatusConfirmed,
			},
			confirmed: true,
		},
		{
			s: SignatureStatus{
				Slot:               10,
				ErrorResult:        nil,
				Confirmations:      &zero,
				ConfirmationStatus: confirmationStatusFinalized,
			},
			confirmed: true,
			finalized: true,
		},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.confirmed, tc.s.Confirmed())
		assert.Equal(t, tc.finalized, tc.s.Finalized())
	}
}

type rpcRequest struct {
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
	ID     int               `json:"id"`
}

// newTestServer answers each JSON-RPC method with the given raw response
// member, either a "result" or an "error".
func newTestServer(t *testing.T, handlers map[string]func(params []json.RawMessage) string) (Client, *[]rpcRequest) {
	return newLimitedTestServer(t, &rate.NoLimiter{}, handlers)
}

func newLimitedTestServer(t *testing.T, limiter rate.Limiter, handlers map[string]func(params []json.RawMessage) string) (Client, *[]rpcRequest) {
	var requests []rpcRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		requests = append(requests, req)

		handler, ok := handlers[req.Method]
		require.True(t, ok, req.Method)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%d,%s}`, req.ID, handler(req.Params))
	}))
	t.Cleanup(server.Close)

	return NewWithRateLimiter(server.URL, limiter), &requests
}

func TestGetLatestBlockhash(t *testing.T) {
	expected := sha256.Sum256([]byte("blockhash"))

	client, requests := newTestServer(t, map[string]func([]json.RawMessage) string{
		"getLatestBlockhash": func([]json.RawMessage) string {
			return `"result":{"context":{"slot":321},"value":{"blockhash":"` + base58.Encode(expected[:]) + `","lastValidBlockHeight":4242}}`
		},
	})

	latest, err := client.GetLatestBlockhash(CommitmentFinalized)
	require.NoError(t, err)
	assert.Equal(t, Blockhash(expected), latest.Blockhash)
	assert.EqualValues(t, 4242, latest.LastValidBlockHeight)

	require.Len(t, *requests, 1)
	require.Len(t, (*requests)[0].Params, 1)
	assert.JSONEq(t, `{"commitment":"finalized"}`, string((*requests)[0].Params[0]))
}

func TestGetFeeForMessage(t *testing.T) {
	keys := generateKeys(t, 2)
	txn := NewTransaction(public(keys[0]), NewInstruction(public(keys[1]), []byte{1}, NewAccountMeta(public(keys[0]), true)))

	var fee string
	client, requests := newTestServer(t, map[string]func([]json.RawMessage) string{
		"getFeeForMessage": func([]json.RawMessage) string {
			return `"result":{"context":{"slot":1},"value":` + fee + `}`
		},
	})

	fee = "5000"
	actual, err := client.GetFeeForMessage(txn.Message, CommitmentProcessed)
	require.NoError(t, err)
	assert.EqualValues(t, 5000, actual)

	require.Len(t, (*requests)[0].Params, 2)
	var encoded string
	require.NoError(t, json.Unmarshal((*requests)[0].Params[0], &encoded))
	assert.Equal(t, base64.StdEncoding.EncodeToString(txn.Message.Marshal()), encoded)

	fee = "null"
	_, err = client.GetFeeForMessage(txn.Message, CommitmentProcessed)
	assert.Equal(t, ErrFeeUnavailable, err)
}

func TestSubmitTransaction(t *testing.T) {
	keys := generateKeys(t, 2)
	pub, priv := public(keys[0]), keys[0]

	txn := NewTransaction(pub, NewInstruction(public(keys[1]), []byte{1}, NewAccountMeta(pub, true)))
	require.NoError(t, txn.Sign(priv))

	var response string
	client, requests := newTestServer(t, map[string]func([]json.RawMessage) string{
		"sendTransaction": func([]json.RawMessage) string {
			return response
		},
	})

	response = `"result":"` + txn.Signature().String() + `"`
	sig, err := client.SubmitTransaction(txn, CommitmentFinalized)
	require.NoError(t, err)
	assert.Equal(t, txn.Signature(), sig)

	require.Len(t, (*requests)[0].Params, 2)
	assert.JSONEq(t, `{"encoding":"base64","skipPreflight":false,"preflightCommitment":"finalized"}`, string((*requests)[0].Params[1]))

	response = `"error":{"code":-32002,"message":"Transaction simulation failed: Blockhash not found","data":{"err":"BlockhashNotFound","logs":[]}}`
	sig, err = client.SubmitTransaction(txn, CommitmentFinalized)
	assert.Equal(t, txn.Signature(), sig)
	txErr, ok := err.(*TransactionError)
	require.True(t, ok, err)
	assert.Equal(t, TransactionErrorBlockhashNotFound, txErr.ErrorKey())

	response = `"error":{"code":-32003,"message":"Transaction signature verification failure"}`
	_, err = client.SubmitTransaction(txn, CommitmentFinalized)
	assert.ErrorIs(t, err, ErrSubmissionRejected)
}

type denyingLimiter struct {
	denials map[string]int
}

func (l *denyingLimiter) Allow(key string) bool {
	if l.denials[key] > 0 {
		l.denials[key]--
		return false
	}
	return true
}

func TestRateLimitedClient(t *testing.T) {
	limiter := &denyingLimiter{denials: map[string]int{"getBlockHeight": 1}}
	client, requests := newLimitedTestServer(t, limiter, map[string]func([]json.RawMessage) string{
		"getBlockHeight": func([]json.RawMessage) string {
			return `"result":1234`
		},
	})

	// The denied attempt is retried after a backoff without reaching the node.
	height, err := client.GetBlockHeight(CommitmentFinalized)
	require.NoError(t, err)
	assert.EqualValues(t, 1234, height)
	assert.Len(t, *requests, 1)
}
