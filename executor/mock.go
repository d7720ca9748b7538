package executor

import (
	"bytes"
	"context"
	"sync"

	"golang.org/x/xerrors"
)

// ErrUnregisteredCall is returned by the mock executor when no
// registered response matches the executed call.
var ErrUnregisteredCall = xerrors.New("no response registered for call")

type mockResponse struct {
	arguments [][]byte // nil matches any arguments
	result    *CallResult
}

// Mock is the executor variant for unit tests: it returns
// pre-registered results keyed by endpoint name, optionally narrowed to
// an exact argument match, and runs no execution engine at all. It also
// captures every request it sees so tests can assert on what would have
// been sent.
type Mock struct {
	sync.Mutex
	responses map[string][]mockResponse
	requests  []*CallRequest
}

// NewMock returns an empty mock executor.
func NewMock() *Mock {
	return &Mock{responses: make(map[string][]mockResponse)}
}

// RegisterResponse makes the mock return the given result for any call
// to the endpoint.
func (m *Mock) RegisterResponse(endpoint string, res *CallResult) {
	m.Lock()
	defer m.Unlock()
	m.responses[endpoint] = append(m.responses[endpoint],
		mockResponse{result: res})
}

// RegisterResponseFor makes the mock return the given result only for
// calls to the endpoint whose encoded arguments match exactly. Argument
// matches take precedence over endpoint-wide registrations.
func (m *Mock) RegisterResponseFor(endpoint string, args [][]byte,
	res *CallResult) {
	if args == nil {
		args = [][]byte{}
	}
	m.Lock()
	defer m.Unlock()
	m.responses[endpoint] = append(m.responses[endpoint],
		mockResponse{arguments: args, result: res})
}

// Requests returns the calls executed so far, in order.
func (m *Mock) Requests() []*CallRequest {
	m.Lock()
	defer m.Unlock()
	out := make([]*CallRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// Execute implements Executor.
func (m *Mock) Execute(_ context.Context, req *CallRequest,
	_ CallKind) (*CallResult, error) {
	if req == nil {
		return nil, xerrors.New("nil call request")
	}

	m.Lock()
	defer m.Unlock()

	m.requests = append(m.requests, req)

	var fallback *CallResult
	for _, response := range m.responses[req.Endpoint] {
		if response.arguments == nil {
			if fallback == nil {
				fallback = response.result
			}
			continue
		}
		if argumentsEqual(response.arguments, req.Arguments) {
			return response.result, nil
		}
	}
	if fallback != nil {
		return fallback, nil
	}

	return nil, xerrors.Errorf("endpoint %s: %w",
		req.Endpoint, ErrUnregisteredCall)
}

func argumentsEqual(a, b [][]byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !bytes.Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}
