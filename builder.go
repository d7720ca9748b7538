// Package nova is a toolkit for composing and executing smart-contract
// calls. Typed arguments are encoded with the abi package into a
// wire-ready request, the request runs on any of the executor variants
// (network, simulator or mock), and the returned bytes are decoded back
// into typed values. The same call-construction logic drives all three
// executors, so code can move from unit test to simulation to a live
// chain without changes.
package nova

import (
	"math/big"

	"go.dedis.ch/nova/abi"
	"go.dedis.ch/nova/executor"
	"golang.org/x/xerrors"
)

// Argument pairs a value with the type it must be encoded as.
type Argument struct {
	Value *abi.Value
	Type  *abi.Type
}

// CallBuilder assembles a contract call out of typed arguments. It is a
// pure transformation: Build encodes every argument in top mode and
// either returns a complete CallRequest or fails with the first type
// mismatch, never constructing a partial request.
type CallBuilder struct {
	target   abi.Address
	endpoint string
	args     []Argument
	value    *big.Int
	gasLimit uint64
}

// NewCallBuilder starts a call against the given contract address.
func NewCallBuilder(target abi.Address) *CallBuilder {
	return &CallBuilder{target: target}
}

// Endpoint sets the endpoint to invoke.
func (b *CallBuilder) Endpoint(name string) *CallBuilder {
	b.endpoint = name
	return b
}

// Argument appends one typed argument. Arguments keep the order they
// are appended in.
func (b *CallBuilder) Argument(v *abi.Value, t *abi.Type) *CallBuilder {
	b.args = append(b.args, Argument{Value: v, Type: t})
	return b
}

// Value attaches an amount of native currency to the call.
func (b *CallBuilder) Value(amount *big.Int) *CallBuilder {
	b.value = amount
	return b
}

// GasLimit sets an explicit gas limit for the call.
func (b *CallBuilder) GasLimit(limit uint64) *CallBuilder {
	b.gasLimit = limit
	return b
}

// Build encodes the arguments and returns the wire-ready request.
func (b *CallBuilder) Build() (*executor.CallRequest, error) {
	if b.endpoint == "" {
		return nil, xerrors.New("call has no endpoint")
	}

	encoded := make([][]byte, len(b.args))
	for i, arg := range b.args {
		buf, err := abi.Encode(arg.Value, arg.Type, abi.ModeTop)
		if err != nil {
			return nil, xerrors.Errorf("argument %d of %s: %w",
				i, b.endpoint, err)
		}
		encoded[i] = buf
	}

	req := executor.NewCallRequest(b.target, b.endpoint, encoded, b.value)
	if b.gasLimit > 0 {
		req = req.WithGasLimit(b.gasLimit)
	}
	return req, nil
}
