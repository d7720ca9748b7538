package nova

import (
	"context"
	"math/big"

	"go.dedis.ch/nova/abi"
	"go.dedis.ch/nova/executor"
	"go.dedis.ch/onet/v3/log"
	"golang.org/x/xerrors"
)

// Client ties a deployed contract's schema to an executor and runs the
// whole call pipeline in one step: look up the endpoint signature,
// encode the arguments, execute, decode the results. The executor is
// whichever variant the caller chose; the client never depends on which
// one it is.
type Client struct {
	contract abi.Address
	schema   *abi.Schema
	exec     executor.Executor
}

// NewClient returns a client for the contract deployed at the given
// address.
func NewClient(contract abi.Address, schema *abi.Schema,
	exec executor.Executor) *Client {
	return &Client{contract: contract, schema: schema, exec: exec}
}

// Query runs a read-only call and returns the decoded results.
func (c *Client) Query(ctx context.Context, endpoint string,
	args ...*abi.Value) ([]*abi.Value, error) {
	return c.call(ctx, executor.Query, nil, 0, endpoint, args)
}

// Transact broadcasts a state-changing call with the given attached
// value and gas limit, waits for the executor to resolve finality, and
// returns the decoded results.
func (c *Client) Transact(ctx context.Context, value *big.Int,
	gasLimit uint64, endpoint string, args ...*abi.Value) (
	[]*abi.Value, error) {
	return c.call(ctx, executor.Transaction, value, gasLimit, endpoint,
		args)
}

func (c *Client) call(ctx context.Context, kind executor.CallKind,
	value *big.Int, gasLimit uint64, endpoint string,
	args []*abi.Value) ([]*abi.Value, error) {
	e, err := c.schema.Endpoint(endpoint)
	if err != nil {
		return nil, xerrors.Errorf("looking up endpoint: %w", err)
	}
	if len(args) != len(e.Inputs) {
		return nil, xerrors.Errorf("endpoint %s takes %d arguments, "+
			"got %d", endpoint, len(e.Inputs), len(args))
	}

	builder := NewCallBuilder(c.contract).
		Endpoint(endpoint).
		Value(value).
		GasLimit(gasLimit)
	for i, arg := range args {
		builder.Argument(arg, e.Inputs[i])
	}

	req, err := builder.Build()
	if err != nil {
		return nil, xerrors.Errorf("building call: %w", err)
	}

	log.Lvl2("executing", kind, "on", req)
	res, err := c.exec.Execute(ctx, req, kind)
	if err != nil {
		return nil, xerrors.Errorf("executing call: %w", err)
	}

	values, err := DecodeResult(res, e.Outputs)
	if err != nil {
		return nil, xerrors.Errorf("decoding result of %s: %w",
			endpoint, err)
	}
	return values, nil
}
