package solana

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ybbus/jsonrpc"
)

func TestParse(t *testing.T) {
	d := json.NewDecoder(bytes.NewBufferString(`{"InstructionError":[2,{"Custom":3}]}`))

	var raw interface{}
	assert.NoError(t, d.Decode(&raw))

	e, err := ParseTransactionError(raw)
	assert.NoError(t, err)

	assert.Equal(t, TransactionErrorInstructionError, e.ErrorKey())
	require.NotNil(t, e.InstructionError())
	assert.Equal(t, 2, e.InstructionError().Index)
	assert.Equal(t, InstructionErrorCustom, e.InstructionError().ErrorKey())
	require.NotNil(t, e.InstructionError().CustomError())
	assert.Equal(t, CustomError(3), *e.InstructionError().CustomError())

	d = json.NewDecoder(bytes.NewBufferString(`{"InstructionError":[0,"InvalidArgument"]}`))
	assert.NoError(t, d.Decode(&raw))

	e, err = ParseTransactionError(raw)
	assert.NoError(t, err)

	assert.Equal(t, TransactionErrorInstructionError, e.ErrorKey())
	require.NotNil(t, e.InstructionError())
	assert.Equal(t, 0, e.InstructionError().Index)
	assert.Equal(t, InstructionErrorInvalidArgument, e.InstructionError().ErrorKey())

	d = json.NewDecoder(bytes.NewBufferString(`"BlockhashNotFound"`))
	assert.NoError(t, d.Decode(&raw))

	e, err = ParseTransactionError(raw)
	assert.NoError(t, err)

	assert.Equal(t, TransactionErrorBlockhashNotFound, e.ErrorKey())
	assert.Nil(t, e.InstructionError())

	e, err = ParseTransactionError(nil)
	assert.NoError(t, err)
	assert.Nil(t, e)
}

func TestParseRPCError(t *testing.T) {
	rpcErr := &jsonrpc.RPCError{
		Code:    -32002,
		Message: "Transaction simulation failed: Blockhash not found",
		Data: map[string]interface{}{
			"err":  "BlockhashNotFound",
			"logs": []interface{}{},
		},
	}

	e, err := ParseRPCError(rpcErr)
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, TransactionErrorBlockhashNotFound, e.ErrorKey())

	e, err = ParseRPCError(&jsonrpc.RPCError{Code: -32002, Data: map[string]interface{}{}})
	assert.NoError(t, err)
	assert.Nil(t, e)

	_, err = ParseRPCError(&jsonrpc.RPCError{Code: -32002})
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	d := json.NewDecoder(bytes.NewBufferString(`"DuplicateSignature"`))
	var expected interface{}
	assert.NoError(t, d.Decode(&expected))

	e := NewTransactionError(TransactionErrorDuplicateSignature)
	assert.Equal(t, expected, e.raw)

	e = NewInstructionTransactionError(2, CustomError(3))
	s, err := e.JSONString()
	require.NoError(t, err)
	assert.JSONEq(t, `{"InstructionError":[2,{"Custom":3}]}`, s)
	assert.Equal(t, 2, e.InstructionError().Index)
	assert.Equal(t, TransactionErrorInstructionError, e.ErrorKey())
}

func TestParseJSONNumber(t *testing.T) {
	tc := []interface{}{
		"1",
		1.0,
		json.Number("1"),
		1,
	}
	for i, c := range tc {
		v, err := parseJSONNumber(c)
		assert.NoError(t, err)
		assert.Equal(t, 1, v, i)
	}

	_, err := parseJSONNumber(true)
	assert.Error(t, err)
}

func TestParse_Malformed(t *testing.T) {
	e, err := ParseTransactionError(map[string]interface{}{"A": nil, "B": nil})
	assert.Error(t, err)
	require.NotNil(t, e)
	assert.Equal(t, TransactionErrorKey("unhandled transaction error"), e.ErrorKey())

	_, err = ParseTransactionError(map[string]interface{}{
		"InstructionError": []interface{}{float64(1)},
	})
	assert.Error(t, err)

	_, err = ParseTransactionError(42)
	assert.Error(t, err)
}
