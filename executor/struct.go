package executor

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"go.dedis.ch/nova/abi"
)

// CallRequest is a wire-ready contract call: the target contract, the
// endpoint to invoke, the arguments already encoded as independent
// top-level byte slices, the attached native value and an optional gas
// limit. A CallRequest is built once per call and never mutated; the
// With* methods return a modified copy.
type CallRequest struct {
	Target    abi.Address
	Endpoint  string
	Arguments [][]byte
	Value     *big.Int
	GasLimit  uint64
}

// NewCallRequest assembles a call request from already-encoded
// arguments. A nil value is treated as zero.
func NewCallRequest(target abi.Address, endpoint string, args [][]byte,
	value *big.Int) *CallRequest {
	if value == nil {
		value = new(big.Int)
	}
	arguments := make([][]byte, len(args))
	copy(arguments, args)
	return &CallRequest{
		Target:    target,
		Endpoint:  endpoint,
		Arguments: arguments,
		Value:     new(big.Int).Set(value),
	}
}

// WithGasLimit returns a copy of the request with the given gas limit.
func (req *CallRequest) WithGasLimit(gasLimit uint64) *CallRequest {
	out := *req
	out.GasLimit = gasLimit
	return &out
}

// WithValue returns a copy of the request with the given native value
// attached.
func (req *CallRequest) WithValue(value *big.Int) *CallRequest {
	out := *req
	out.Value = new(big.Int).Set(value)
	return &out
}

// Data renders the request in the gateway transaction-data form: the
// endpoint name followed by one hex-encoded part per argument, separated
// by '@'.
func (req *CallRequest) Data() string {
	parts := make([]string, len(req.Arguments)+1)
	parts[0] = req.Endpoint
	for i, arg := range req.Arguments {
		parts[i+1] = hex.EncodeToString(arg)
	}
	return strings.Join(parts, "@")
}

func (req *CallRequest) String() string {
	return fmt.Sprintf("CallRequest[%s to %s]", req.Data(), req.Target)
}

// Status is the overall outcome of an executed call.
type Status int

const (
	// StatusSuccess means the contract accepted the call and the
	// returned data is usable.
	StatusSuccess Status = iota

	// StatusUserError means the contract logic rejected the call. This
	// outcome is definitive and is never retried.
	StatusUserError

	// StatusNetworkFailure means the call could not be settled because
	// of transport problems, after the retry budget was spent.
	StatusNetworkFailure
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusUserError:
		return "user error"
	case StatusNetworkFailure:
		return "network failure"
	default:
		return fmt.Sprintf("unknown status %d", int(s))
	}
}

// CallResult is the raw outcome of an executed call: a status, the
// returned byte slices in order, and the log entries the contract
// emitted. Log entries are opaque to this toolkit.
type CallResult struct {
	Status Status

	// Message carries the contract's rejection message when Status is
	// StatusUserError.
	Message string

	// Cause carries the underlying transport error when Status is
	// StatusNetworkFailure.
	Cause error

	ReturnData [][]byte
	Logs       [][]byte
}

// Success returns a successful result carrying the given returned byte
// slices.
func Success(returnData ...[]byte) *CallResult {
	return &CallResult{Status: StatusSuccess, ReturnData: returnData}
}

// UserError returns a result for a call the contract rejected.
func UserError(message string) *CallResult {
	return &CallResult{Status: StatusUserError, Message: message}
}

// NetworkFailure returns a result for a call that could not be settled.
func NetworkFailure(cause error) *CallResult {
	return &CallResult{Status: StatusNetworkFailure, Cause: cause}
}

func (res *CallResult) String() string {
	switch res.Status {
	case StatusSuccess:
		return fmt.Sprintf("CallResult[success, %d values]",
			len(res.ReturnData))
	case StatusUserError:
		return fmt.Sprintf("CallResult[user error: %s]", res.Message)
	default:
		return fmt.Sprintf("CallResult[network failure: %v]", res.Cause)
	}
}
