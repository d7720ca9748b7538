package executor

import (
	"context"
	"math/big"
	"sync"

	"go.dedis.ch/nova/abi"
	"go.dedis.ch/onet/v3/log"
	"golang.org/x/xerrors"
)

// Invocation is what a contract handler receives: the parties and value
// of the call, its raw top-encoded arguments, and the world state to
// read and write. Handlers emit log entries through EmitLog.
type Invocation struct {
	Caller    abi.Address
	Target    abi.Address
	Value     *big.Int
	Arguments [][]byte
	State     *State

	logs [][]byte
}

// EmitLog records an opaque log entry for the current call.
func (inv *Invocation) EmitLog(entry []byte) {
	inv.logs = append(inv.logs, entry)
}

// Handler implements one endpoint of a simulated contract. The returned
// byte slices become the call's return data; a returned error becomes a
// user-error outcome, exactly as a rejection by a deployed contract
// would.
type Handler func(inv *Invocation) ([][]byte, error)

// Contract is a simulated contract: its endpoints by name.
type Contract map[string]Handler

// Simulator is the executor variant that runs calls against an
// in-process world state, with contracts implemented as registered Go
// handlers. It is deterministic and synchronous: queries run on a copy
// of the state and discard their writes, transactions commit them.
// There is no network, so nothing is ever retried and finality is
// immediate.
type Simulator struct {
	sync.Mutex
	caller    abi.Address
	state     *State
	contracts map[abi.Address]Contract

	// txLock serializes transactions: each one must clone the state
	// its predecessor committed, or the later commit would overwrite
	// the earlier one's writes.
	txLock sync.Mutex
}

// NewSimulator returns a simulator whose calls originate from the given
// caller address and run against the given world state.
func NewSimulator(caller abi.Address, state *State) *Simulator {
	return &Simulator{
		caller:    caller,
		state:     state,
		contracts: make(map[abi.Address]Contract),
	}
}

// Deploy registers a contract at an address.
func (s *Simulator) Deploy(addr abi.Address, contract Contract) {
	s.Lock()
	defer s.Unlock()
	s.contracts[addr] = contract
}

// State returns the committed world state.
func (s *Simulator) State() *State {
	return s.state
}

// Execute implements Executor.
func (s *Simulator) Execute(_ context.Context, req *CallRequest,
	kind CallKind) (*CallResult, error) {
	if req == nil {
		return nil, xerrors.New("nil call request")
	}

	s.Lock()
	contract, ok := s.contracts[req.Target]
	s.Unlock()
	if !ok {
		return UserError("invalid contract address"), nil
	}

	handler, ok := contract[req.Endpoint]
	if !ok {
		return UserError("invalid function: " + req.Endpoint), nil
	}

	// Every call runs on a copy of the state; only a successful
	// transaction commits its writes. Queries always discard them and
	// may run concurrently, transactions run one at a time.
	if kind == Transaction {
		s.txLock.Lock()
		defer s.txLock.Unlock()
	}
	state := s.state.clone()

	if err := state.transfer(s.caller, req.Target, req.Value); err != nil {
		return UserError(err.Error()), nil
	}

	inv := &Invocation{
		Caller:    s.caller,
		Target:    req.Target,
		Value:     new(big.Int).Set(req.Value),
		Arguments: req.Arguments,
		State:     state,
	}

	returnData, err := handler(inv)
	if err != nil {
		log.Lvl3("simulated", kind, "rejected:", err)
		return UserError(err.Error()), nil
	}

	if kind == Transaction {
		s.commit(state)
	}

	res := Success(returnData...)
	res.Logs = inv.logs
	return res, nil
}

// commit replaces the committed world state with the outcome of a
// successful transaction. The backing db handle stays untouched.
func (s *Simulator) commit(next *State) {
	s.state.Lock()
	defer s.state.Unlock()
	s.state.balances = next.balances
	s.state.storage = next.storage
}
