// Package executor runs wire-ready contract calls and returns their raw
// outcome. Three implementations share one behavior contract: Network
// submits to a remote gateway through an opaque transport, Simulator
// runs registered handlers against an in-process world state, and Mock
// replays pre-registered results for unit tests. Calling code depends
// only on the Executor interface, never on a variant's own state, so the
// same call-construction logic runs unchanged against all three.
package executor

import (
	"context"
)

// CallKind distinguishes read-only queries from state-changing
// transactions.
type CallKind int

const (
	// Query is a read-only call. It must not mutate remote state and
	// returns its result synchronously.
	Query CallKind = iota

	// Transaction is broadcast to the chain; its result reflects the
	// outcome only once the executor has resolved finality.
	Transaction
)

func (k CallKind) String() string {
	if k == Query {
		return "query"
	}
	return "transaction"
}

// Executor is the capability to run a contract call. Implementations
// must resolve every call to a CallResult or an error before returning:
// cancellation is expressed through the context deadline, on expiry the
// result is a network failure and any in-flight resource is released.
// The returned error is reserved for caller bugs (malformed requests,
// missing mock registrations); chain-level rejections and transport
// failures travel inside the CallResult status.
type Executor interface {
	Execute(ctx context.Context, req *CallRequest, kind CallKind) (
		*CallResult, error)
}
