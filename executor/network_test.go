package executor

import (
	"context"
	"encoding/hex"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/nova/abi"
	"go.dedis.ch/onet/v3/log"
	"golang.org/x/xerrors"
)

func TestMain(m *testing.M) {
	log.MainTest(m)
}

// fakeTransport scripts the three transport operations for the tests.
type fakeTransport struct {
	submit func(*CallRequest) (TxID, error)
	status func(TxID) (*Outcome, error)
	query  func(*CallRequest) (*Outcome, error)
}

func (f *fakeTransport) Submit(_ context.Context, req *CallRequest) (
	TxID, error) {
	return f.submit(req)
}

func (f *fakeTransport) Status(_ context.Context, id TxID) (
	*Outcome, error) {
	return f.status(id)
}

func (f *fakeTransport) Query(_ context.Context, req *CallRequest) (
	*Outcome, error) {
	return f.query(req)
}

func fastConfig(attempts int) Config {
	return Config{
		Attempts:     attempts,
		Backoff:      time.Millisecond,
		PollInterval: time.Millisecond,
		Timeout:      time.Second,
	}
}

func newRequest() *CallRequest {
	return NewCallRequest(abi.RandomAddress(), "getBalance",
		[][]byte{abi.RandomAddress().Slice()}, nil)
}

// Three transient failures followed by a success must yield the
// success.
func Test_Network_RetryThenSuccess(t *testing.T) {
	calls := 0
	transport := &fakeTransport{
		query: func(*CallRequest) (*Outcome, error) {
			calls++
			if calls <= 3 {
				return nil, xerrors.New("connection refused")
			}
			return &Outcome{Data: "@6f6b@03e8"}, nil
		},
	}

	n := NewNetwork(transport, fastConfig(4))
	res, err := n.Execute(context.Background(), newRequest(), Query)
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, res.Status)
	require.Equal(t, [][]byte{{0x03, 0xe8}}, res.ReturnData)
	require.Equal(t, 4, calls)
}

// Exhausting a budget of N attempts must yield a network failure
// without an (N+1)-th attempt ever being made.
func Test_Network_RetryBudget(t *testing.T) {
	calls := 0
	transport := &fakeTransport{
		query: func(*CallRequest) (*Outcome, error) {
			calls++
			return nil, xerrors.New("connection refused")
		},
	}

	n := NewNetwork(transport, fastConfig(3))
	res, err := n.Execute(context.Background(), newRequest(), Query)
	require.NoError(t, err)
	require.Equal(t, StatusNetworkFailure, res.Status)
	require.Error(t, res.Cause)
	require.Equal(t, 3, calls)
}

// A contract rejection is definitive: it must not be retried.
func Test_Network_UserErrorNotRetried(t *testing.T) {
	calls := 0
	transport := &fakeTransport{
		query: func(*CallRequest) (*Outcome, error) {
			calls++
			return &Outcome{
				Data: "@" + hex.EncodeToString([]byte("out of gas")),
			}, nil
		},
	}

	n := NewNetwork(transport, fastConfig(5))
	res, err := n.Execute(context.Background(), newRequest(), Query)
	require.NoError(t, err)
	require.Equal(t, StatusUserError, res.Status)
	require.Equal(t, "out of gas", res.Message)
	require.Equal(t, 1, calls)
}

// A transaction is polled until final.
func Test_Network_TransactionFinality(t *testing.T) {
	statusCalls := 0
	transport := &fakeTransport{
		submit: func(*CallRequest) (TxID, error) {
			return "deadbeef", nil
		},
		status: func(id TxID) (*Outcome, error) {
			require.Equal(t, TxID("deadbeef"), id)
			statusCalls++
			if statusCalls < 3 {
				return &Outcome{Pending: true}, nil
			}
			return &Outcome{Data: "@6f6b@01", Logs: [][]byte{
				[]byte("transferred")}}, nil
		},
	}

	n := NewNetwork(transport, fastConfig(1))
	res, err := n.Execute(context.Background(), newRequest(), Transaction)
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, res.Status)
	require.Equal(t, [][]byte{{0x01}}, res.ReturnData)
	require.Len(t, res.Logs, 1)
	require.Equal(t, 3, statusCalls)
}

// When the deadline expires before finality, the call resolves to a
// network failure carrying the timeout.
func Test_Network_FinalityTimeout(t *testing.T) {
	transport := &fakeTransport{
		submit: func(*CallRequest) (TxID, error) {
			return "deadbeef", nil
		},
		status: func(TxID) (*Outcome, error) {
			return &Outcome{Pending: true}, nil
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(),
		20*time.Millisecond)
	defer cancel()

	n := NewNetwork(transport, fastConfig(1))
	res, err := n.Execute(ctx, newRequest(), Transaction)
	require.NoError(t, err)
	require.Equal(t, StatusNetworkFailure, res.Status)
	require.True(t, xerrors.Is(res.Cause, context.DeadlineExceeded))
}

// Transient status errors while polling do not abort the wait.
func Test_Network_PollingSurvivesStatusErrors(t *testing.T) {
	statusCalls := 0
	transport := &fakeTransport{
		submit: func(*CallRequest) (TxID, error) {
			return "deadbeef", nil
		},
		status: func(TxID) (*Outcome, error) {
			statusCalls++
			if statusCalls == 1 {
				return nil, xerrors.New("gateway hiccup")
			}
			return &Outcome{Data: "@6f6b"}, nil
		},
	}

	n := NewNetwork(transport, fastConfig(1))
	res, err := n.Execute(context.Background(), newRequest(), Transaction)
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, res.Status)
	require.Empty(t, res.ReturnData)
}

func Test_Network_MalformedPayload(t *testing.T) {
	transport := &fakeTransport{
		query: func(*CallRequest) (*Outcome, error) {
			return &Outcome{Data: "6f6b"}, nil
		},
	}

	n := NewNetwork(transport, fastConfig(1))
	_, err := n.Execute(context.Background(), newRequest(), Query)
	require.Error(t, err)

	transport.query = func(*CallRequest) (*Outcome, error) {
		return &Outcome{Data: "@6f6b@zz"}, nil
	}
	_, err = n.Execute(context.Background(), newRequest(), Query)
	require.Error(t, err)

	// An empty result code is malformed, not an empty contract
	// rejection.
	transport.query = func(*CallRequest) (*Outcome, error) {
		return &Outcome{Data: "@"}, nil
	}
	_, err = n.Execute(context.Background(), newRequest(), Query)
	require.Error(t, err)
}
