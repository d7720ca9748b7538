package executor

import (
	"context"
	"math/big"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/nova/abi"
	"golang.org/x/xerrors"
)

var counterKey = []byte("counter")

// counterContract increments a stored counter and returns the new
// value, top-encoded.
func counterContract() Contract {
	return Contract{
		"increment": func(inv *Invocation) ([][]byte, error) {
			count := new(big.Int).SetBytes(inv.State.Get(inv.Target,
				counterKey))
			count.Add(count, big.NewInt(1))
			inv.State.Set(inv.Target, counterKey, count.Bytes())
			inv.EmitLog([]byte("incremented"))
			return [][]byte{count.Bytes()}, nil
		},
		"get": func(inv *Invocation) ([][]byte, error) {
			return [][]byte{inv.State.Get(inv.Target, counterKey)}, nil
		},
		"fail": func(inv *Invocation) ([][]byte, error) {
			inv.State.Set(inv.Target, counterKey, []byte{0xff})
			return nil, xerrors.New("on purpose")
		},
	}
}

func Test_Simulator_TransactionCommits(t *testing.T) {
	caller := abi.RandomAddress()
	target := abi.RandomAddress()

	sim := NewSimulator(caller, NewState())
	sim.Deploy(target, counterContract())

	req := NewCallRequest(target, "increment", nil, nil)

	res, err := sim.Execute(context.Background(), req, Transaction)
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, res.Status)
	require.Equal(t, [][]byte{{0x01}}, res.ReturnData)
	require.Equal(t, [][]byte{[]byte("incremented")}, res.Logs)

	res, err = sim.Execute(context.Background(), req, Transaction)
	require.NoError(t, err)
	require.Equal(t, [][]byte{{0x02}}, res.ReturnData)
}

// Overlapping transactions must not lose updates: every increment
// commits on top of the previous one's state.
func Test_Simulator_ConcurrentTransactions(t *testing.T) {
	caller := abi.RandomAddress()
	target := abi.RandomAddress()

	sim := NewSimulator(caller, NewState())
	sim.Deploy(target, counterContract())

	req := NewCallRequest(target, "increment", nil, nil)

	n := 16
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			res, err := sim.Execute(context.Background(), req,
				Transaction)
			require.NoError(t, err)
			require.Equal(t, StatusSuccess, res.Status)
		}()
	}
	wg.Wait()

	count := new(big.Int).SetBytes(sim.State().Get(target, counterKey))
	require.Equal(t, int64(n), count.Int64())
}

// A query sees the committed state but its writes are discarded.
func Test_Simulator_QueryDiscards(t *testing.T) {
	caller := abi.RandomAddress()
	target := abi.RandomAddress()

	sim := NewSimulator(caller, NewState())
	sim.Deploy(target, counterContract())

	req := NewCallRequest(target, "increment", nil, nil)
	for i := 0; i < 3; i++ {
		res, err := sim.Execute(context.Background(), req, Query)
		require.NoError(t, err)
		require.Equal(t, [][]byte{{0x01}}, res.ReturnData)
	}

	require.Nil(t, sim.State().Get(target, counterKey))
}

// A failed transaction must not leave partial writes, value transfer
// included.
func Test_Simulator_FailedTransactionRollsBack(t *testing.T) {
	caller := abi.RandomAddress()
	target := abi.RandomAddress()

	state := NewState()
	state.Credit(caller, big.NewInt(100))

	sim := NewSimulator(caller, state)
	sim.Deploy(target, counterContract())

	req := NewCallRequest(target, "fail", nil, big.NewInt(10))
	res, err := sim.Execute(context.Background(), req, Transaction)
	require.NoError(t, err)
	require.Equal(t, StatusUserError, res.Status)
	require.Equal(t, "on purpose", res.Message)

	require.Nil(t, state.Get(target, counterKey))
	require.Equal(t, int64(100), state.Balance(caller).Int64())
}

func Test_Simulator_ValueTransfer(t *testing.T) {
	caller := abi.RandomAddress()
	target := abi.RandomAddress()

	state := NewState()
	state.Credit(caller, big.NewInt(50))

	sim := NewSimulator(caller, state)
	sim.Deploy(target, counterContract())

	req := NewCallRequest(target, "increment", nil, big.NewInt(30))
	res, err := sim.Execute(context.Background(), req, Transaction)
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, res.Status)
	require.Equal(t, int64(20), state.Balance(caller).Int64())
	require.Equal(t, int64(30), state.Balance(target).Int64())

	// Not enough left for another 30.
	res, err = sim.Execute(context.Background(), req, Transaction)
	require.NoError(t, err)
	require.Equal(t, StatusUserError, res.Status)
	require.Equal(t, int64(20), state.Balance(caller).Int64())
}

func Test_Simulator_UnknownTargets(t *testing.T) {
	sim := NewSimulator(abi.RandomAddress(), NewState())

	req := NewCallRequest(abi.RandomAddress(), "get", nil, nil)
	res, err := sim.Execute(context.Background(), req, Query)
	require.NoError(t, err)
	require.Equal(t, StatusUserError, res.Status)

	target := abi.RandomAddress()
	sim.Deploy(target, counterContract())
	req = NewCallRequest(target, "missing", nil, nil)
	res, err = sim.Execute(context.Background(), req, Query)
	require.NoError(t, err)
	require.Equal(t, StatusUserError, res.Status)
}
