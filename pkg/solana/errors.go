package solana

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"github.com/ybbus/jsonrpc"
)

// TransactionErrorKey is the string key returned in a transaction error.
//
// Source: https://github.com/solana-labs/solana/blob/fc2bf2d3b669d1c6655ae48b0a05f470938f3676/sdk/src/transaction/mod.rs#L37
type TransactionErrorKey string

const (
	TransactionErrorInternal TransactionErrorKey = "Internal"

	TransactionErrorAccountInUse            TransactionErrorKey = "AccountInUse"
	TransactionErrorAccountLoadedTwice      TransactionErrorKey = "AccountLoadedTwice"
	TransactionErrorAccountNotFound         TransactionErrorKey = "AccountNotFound"         // The fee payer has never been credited.
	TransactionErrorProgramAccountNotFound  TransactionErrorKey = "ProgramAccountNotFound"  // A referenced program does not exist on the cluster.
	TransactionErrorInsufficientFundsForFee TransactionErrorKey = "InsufficientFundsForFee" // The fee payer cannot cover the fee.
	TransactionErrorInvalidAccountForFee    TransactionErrorKey = "InvalidAccountForFee"
	TransactionErrorAlreadyProcessed        TransactionErrorKey = "AlreadyProcessed"
	TransactionErrorDuplicateSignature      TransactionErrorKey = "DuplicateSignature"
	TransactionErrorBlockhashNotFound       TransactionErrorKey = "BlockhashNotFound" // The recent blockhash is unknown or too old.
	TransactionErrorInstructionError        TransactionErrorKey = "InstructionError"  // The first tuple element is the failing instruction index.
	TransactionErrorMissingSignatureForFee  TransactionErrorKey = "MissingSignatureForFee"
	TransactionErrorInvalidAccountIndex     TransactionErrorKey = "InvalidAccountIndex"
	TransactionErrorSignatureFailure        TransactionErrorKey = "SignatureFailure" // A required signature is absent or does not verify.
	TransactionErrorSanitizeFailure         TransactionErrorKey = "SanitizeFailure"
	TransactionErrorClusterMaintenance      TransactionErrorKey = "ClusterMaintenance"
	TransactionErrorUnsupportedVersion      TransactionErrorKey = "UnsupportedVersion"
)

// InstructionErrorKey is the string keys returned in an instruction error.
//
// Source: https://github.com/solana-labs/solana/blob/4e2754341514cd181ae3f373cc2548bd22e918b8/sdk/program/src/instruction.rs#L23
type InstructionErrorKey string

const (
	InstructionErrorGenericError              InstructionErrorKey = "GenericError"
	InstructionErrorInvalidArgument           InstructionErrorKey = "InvalidArgument"
	InstructionErrorInvalidInstructionData    InstructionErrorKey = "InvalidInstructionData"
	InstructionErrorInvalidAccountData        InstructionErrorKey = "InvalidAccountData"
	InstructionErrorAccountDataTooSmall       InstructionErrorKey = "AccountDataTooSmall"
	InstructionErrorInsufficientFunds         InstructionErrorKey = "InsufficientFunds"
	InstructionErrorIncorrectProgramID        InstructionErrorKey = "IncorrectProgramId"
	InstructionErrorMissingRequiredSignature  InstructionErrorKey = "MissingRequiredSignature"
	InstructionErrorAccountAlreadyInitialized InstructionErrorKey = "AccountAlreadyInitialized"
	InstructionErrorUninitializedAccount      InstructionErrorKey = "UninitializedAccount"
	InstructionErrorNotEnoughAccountKeys      InstructionErrorKey = "NotEnoughAccountKeys"
	InstructionErrorCustom                    InstructionErrorKey = "Custom"
	InstructionErrorInvalidSeeds              InstructionErrorKey = "InvalidSeeds"
)

// CustomError is the numerical error returned by a non-system program.
type CustomError int

func (c CustomError) Error() string {
	return fmt.Sprintf("custom program error: %x", int(c))
}

// InstructionError indicates an instruction returned an error in a transaction.
type InstructionError struct {
	Index int
	Err   error
}

// parseInstructionError decodes the [index, detail] tuple of an
// InstructionError. detail is either a bare key or {"Custom": code}.
func parseInstructionError(v interface{}) (InstructionError, error) {
	values, ok := v.([]interface{})
	if !ok || len(values) != 2 {
		return InstructionError{}, errors.Errorf("unexpected InstructionError tuple: %v", v)
	}

	index, err := parseJSONNumber(values[0])
	if err != nil {
		return InstructionError{}, err
	}
	e := InstructionError{Index: index}

	switch detail := values[1].(type) {
	case string:
		e.Err = errors.New(detail)
	case map[string]interface{}:
		key, value, err := singleEntry(detail)
		if err != nil {
			e.Err = errors.New("unhandled InstructionError")
			return e, err
		}
		if key != string(InstructionErrorCustom) {
			e.Err = errors.New(key)
			break
		}
		if code, err := parseJSONNumber(value); err == nil {
			e.Err = CustomError(code)
		} else {
			e.Err = errors.New("unhandled CustomError")
		}
	default:
		e.Err = errors.New("unhandled InstructionError")
	}

	return e, nil
}

// singleEntry unpacks a Rust enum variant serialized as a one-key object.
func singleEntry(m map[string]interface{}) (string, interface{}, error) {
	if len(m) != 1 {
		return "", nil, errors.Errorf("expected a single entry, got %d", len(m))
	}
	for k, v := range m {
		return k, v, nil
	}
	return "", nil, nil
}

func (i InstructionError) Error() string {
	return fmt.Sprintf("Error processing Instruction %d: %v", i.Index, i.Err)
}

func (i InstructionError) ErrorKey() InstructionErrorKey {
	if i.Err == nil {
		return ""
	}

	if i.CustomError() != nil {
		return InstructionErrorCustom
	}

	return InstructionErrorKey(i.Err.Error())
}

func (i InstructionError) CustomError() *CustomError {
	ce, ok := i.Err.(CustomError)
	if ok {
		return &ce
	}

	return nil
}

// TransactionError contains the transaction error details.
type TransactionError struct {
	transactionError error
	instructionError *InstructionError
	raw              interface{}
}

// ParseRPCError extracts the transaction error carried in the data of a
// jsonrpc.RPCError, as returned by a failed preflight. It returns nil when
// the RPC error carries no transaction error.
func ParseRPCError(err *jsonrpc.RPCError) (*TransactionError, error) {
	if err == nil {
		return nil, nil
	}

	data, ok := err.Data.(map[string]interface{})
	if !ok {
		return nil, errors.New("expected map type")
	}

	if txErr, ok := data["err"]; ok && txErr != nil {
		return ParseTransactionError(txErr)
	}

	return nil, nil
}

// ParseTransactionError parses the "err" field returned by signature status
// and simulation RPCs. A nil raw value means no error.
func ParseTransactionError(raw interface{}) (*TransactionError, error) {
	switch t := raw.(type) {
	case nil:
		return nil, nil
	case string:
		return &TransactionError{transactionError: errors.New(t), raw: raw}, nil
	case map[string]interface{}:
		unhandled := &TransactionError{transactionError: errors.New("unhandled transaction error"), raw: raw}

		key, value, err := singleEntry(t)
		if err != nil {
			return unhandled, errors.Wrap(err, "invalid transaction error")
		}
		if key != string(TransactionErrorInstructionError) {
			return &TransactionError{transactionError: errors.New(key), raw: raw}, nil
		}

		instructionErr, err := parseInstructionError(value)
		if err != nil {
			return unhandled, errors.Wrap(err, "failed to parse instruction error")
		}
		return &TransactionError{
			transactionError: errors.New(key),
			instructionError: &instructionErr,
			raw:              raw,
		}, nil
	default:
		return nil, errors.Errorf("unhandled error type %T", raw)
	}
}

func NewTransactionError(key TransactionErrorKey) *TransactionError {
	return &TransactionError{
		transactionError: errors.New(string(key)),
		raw:              string(key),
	}
}

// NewInstructionTransactionError builds the error reported when the
// instruction at index fails with err.
func NewInstructionTransactionError(index int, err error) *TransactionError {
	ie := &InstructionError{Index: index, Err: err}

	var detail interface{} = err.Error()
	if ce, ok := err.(CustomError); ok {
		detail = map[string]interface{}{string(InstructionErrorCustom): int(ce)}
	}

	return &TransactionError{
		transactionError: errors.New(string(TransactionErrorInstructionError)),
		instructionError: ie,
		raw: map[string]interface{}{
			string(TransactionErrorInstructionError): []interface{}{index, detail},
		},
	}
}

func (t TransactionError) Error() string {
	if t.instructionError != nil {
		return t.instructionError.Error()
	}

	if t.transactionError != nil {
		return t.transactionError.Error()
	}

	return ""
}

func (t TransactionError) ErrorKey() TransactionErrorKey {
	if t.transactionError == nil {
		return ""
	}

	return TransactionErrorKey(t.transactionError.Error())
}

func (t TransactionError) InstructionError() *InstructionError {
	return t.instructionError
}

func (t TransactionError) JSONString() (string, error) {
	b, err := json.Marshal(t.raw)
	return string(b), err
}

func parseJSONNumber(v interface{}) (int, error) {
	switch n := v.(type) {
	case json.Number:
		index, err := n.Int64()
		if err != nil {
			return 0, errors.Errorf("non int64 value in InstructionError tuple: %v", v)
		}
		return int(index), nil
	case string:
		index, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return 0, errors.Errorf("non numeric value in InstructionError tuple: %v", v)
		}
		return int(index), nil
	case float64:
		return int(n), nil
	case int:
		return n, nil
	}

	return 0, errors.Errorf("non numeric value in InstructionError tuple: %v", v)
}
