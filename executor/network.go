package executor

import (
	"context"
	"encoding/hex"
	"strings"
	"time"

	"github.com/pborman/uuid"
	"go.dedis.ch/onet/v3/log"
	"golang.org/x/xerrors"
)

// okResultCode is the hex form of "ok", the gateway's result code for a
// call the contract accepted.
const okResultCode = "6f6b"

// TxID identifies a broadcast transaction on the gateway.
type TxID string

// Outcome is what the transport reports about a call. Pending is true
// while a transaction has not reached finality; once final, Data holds
// the gateway result payload ('@'-separated hex parts, the first of
// which is the result code) and Logs the emitted log entries.
type Outcome struct {
	Pending bool
	Data    string
	Logs    [][]byte
}

// Transport is the opaque collaborator that talks to the remote
// gateway. Endpoint paths and authentication live behind it; the
// network executor only relies on these three operations. Any error a
// transport returns is treated as transient and retried within the
// budget.
type Transport interface {
	// Submit broadcasts a transaction and returns its tracking ID.
	Submit(ctx context.Context, req *CallRequest) (TxID, error)

	// Status reports the current outcome of a broadcast transaction.
	Status(ctx context.Context, id TxID) (*Outcome, error)

	// Query runs a read-only call and returns its outcome
	// synchronously.
	Query(ctx context.Context, req *CallRequest) (*Outcome, error)
}

// Network is the executor variant that submits calls to a remote chain
// through a Transport. Transient transport failures are retried with
// exponential backoff up to the configured attempt budget; a contract
// rejection is definitive and never retried. Transactions are polled
// until final or until the deadline expires, in which case the result
// is a network failure carrying the timeout.
type Network struct {
	transport Transport
	cfg       Config
}

// NewNetwork returns a network executor using the given transport.
func NewNetwork(transport Transport, cfg Config) *Network {
	return &Network{transport: transport, cfg: cfg.withDefaults()}
}

// Execute implements Executor.
func (n *Network) Execute(ctx context.Context, req *CallRequest,
	kind CallKind) (*CallResult, error) {
	if req == nil {
		return nil, xerrors.New("nil call request")
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.cfg.Timeout)
		defer cancel()
	}

	// Correlation ID for the log lines of this call.
	callID := uuid.NewRandom().String()
	log.Lvlf3("[%s] executing %s %s", callID, kind, req)

	if kind == Query {
		return n.query(ctx, callID, req)
	}
	return n.transact(ctx, callID, req)
}

func (n *Network) query(ctx context.Context, callID string,
	req *CallRequest) (*CallResult, error) {
	var outcome *Outcome
	err := n.withRetries(ctx, callID, func() error {
		var err error
		outcome, err = n.transport.Query(ctx, req)
		return err
	})
	if err != nil {
		return NetworkFailure(err), nil
	}
	return parseOutcome(outcome)
}

func (n *Network) transact(ctx context.Context, callID string,
	req *CallRequest) (*CallResult, error) {
	var id TxID
	err := n.withRetries(ctx, callID, func() error {
		var err error
		id, err = n.transport.Submit(ctx, req)
		return err
	})
	if err != nil {
		return NetworkFailure(err), nil
	}

	log.Lvlf3("[%s] transaction %s broadcast, waiting for finality",
		callID, id)
	return n.waitFinal(ctx, callID, id)
}

// waitFinal polls the transaction status until it is final or the
// deadline expires. Status errors during polling are transient by
// nature and only logged: the deadline bounds the loop.
func (n *Network) waitFinal(ctx context.Context, callID string,
	id TxID) (*CallResult, error) {
	for {
		outcome, err := n.transport.Status(ctx, id)
		if err != nil {
			log.Warnf("[%s] status of %s: %v", callID, id, err)
		} else if !outcome.Pending {
			return parseOutcome(outcome)
		}

		select {
		case <-ctx.Done():
			return NetworkFailure(xerrors.Errorf(
				"timeout waiting for finality of %s: %w",
				id, ctx.Err())), nil
		case <-time.After(n.cfg.PollInterval):
		}
	}
}

// withRetries runs op up to the configured number of attempts, backing
// off in between. It never makes an attempt beyond the budget and stops
// early when the deadline expires.
func (n *Network) withRetries(ctx context.Context, callID string,
	op func() error) error {
	backoff := n.cfg.Backoff

	var err error
	for attempt := 1; attempt <= n.cfg.Attempts; attempt++ {
		if err = op(); err == nil {
			return nil
		}
		log.Warnf("[%s] attempt %d/%d failed: %v",
			callID, attempt, n.cfg.Attempts, err)

		if attempt == n.cfg.Attempts {
			break
		}
		select {
		case <-ctx.Done():
			return xerrors.Errorf("deadline expired after attempt "+
				"%d: %w", attempt, ctx.Err())
		case <-time.After(backoff):
		}
		backoff *= 2
	}

	return xerrors.Errorf("%d attempts failed, last error: %w",
		n.cfg.Attempts, err)
}

// parseOutcome maps a final gateway outcome to a CallResult. The
// payload is of the form "@<code>@<hex>@<hex>...": an ok code makes the
// remaining parts the returned byte slices, any other code is the
// contract's rejection.
func parseOutcome(outcome *Outcome) (*CallResult, error) {
	if !strings.HasPrefix(outcome.Data, "@") {
		return nil, xerrors.Errorf("malformed gateway payload %q",
			outcome.Data)
	}

	parts := strings.Split(outcome.Data, "@")[1:]
	code := parts[0]
	if code == "" {
		return nil, xerrors.Errorf("malformed gateway payload %q",
			outcome.Data)
	}
	if code != okResultCode {
		message, err := hex.DecodeString(code)
		if err != nil {
			return nil, xerrors.Errorf("malformed result code %q: %v",
				code, err)
		}
		res := UserError(string(message))
		res.Logs = outcome.Logs
		return res, nil
	}

	returnData := make([][]byte, len(parts)-1)
	for i, part := range parts[1:] {
		buf, err := hex.DecodeString(part)
		if err != nil {
			return nil, xerrors.Errorf("hex-decoding result part %d: %v",
				i, err)
		}
		returnData[i] = buf
	}

	res := Success(returnData...)
	res.Logs = outcome.Logs
	return res, nil
}
