package executor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/nova/abi"
	"golang.org/x/xerrors"
)

func Test_Mock_Responses(t *testing.T) {
	m := NewMock()
	target := abi.RandomAddress()

	m.RegisterResponse("getBalance", Success([]byte{0x03, 0xe8}))

	req := NewCallRequest(target, "getBalance",
		[][]byte{abi.RandomAddress().Slice()}, nil)
	res, err := m.Execute(context.Background(), req, Query)
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, res.Status)
	require.Equal(t, [][]byte{{0x03, 0xe8}}, res.ReturnData)

	_, err = m.Execute(context.Background(),
		NewCallRequest(target, "unknown", nil, nil), Query)
	require.Error(t, err)
	require.True(t, xerrors.Is(err, ErrUnregisteredCall))
}

// An argument-specific registration wins over the endpoint-wide one.
func Test_Mock_ArgumentMatch(t *testing.T) {
	m := NewMock()
	target := abi.RandomAddress()
	alice := abi.RandomAddress()

	m.RegisterResponse("getBalance", Success([]byte{}))
	m.RegisterResponseFor("getBalance", [][]byte{alice.Slice()},
		Success([]byte{0x64}))

	res, err := m.Execute(context.Background(), NewCallRequest(target,
		"getBalance", [][]byte{alice.Slice()}, nil), Query)
	require.NoError(t, err)
	require.Equal(t, [][]byte{{0x64}}, res.ReturnData)

	res, err = m.Execute(context.Background(), NewCallRequest(target,
		"getBalance", [][]byte{abi.RandomAddress().Slice()}, nil), Query)
	require.NoError(t, err)
	require.Equal(t, [][]byte{{}}, res.ReturnData)
}

// The mock captures the requests it saw, like a transaction recorder.
func Test_Mock_CapturesRequests(t *testing.T) {
	m := NewMock()
	target := abi.RandomAddress()
	m.RegisterResponse("transfer", UserError("not enough funds"))

	req := NewCallRequest(target, "transfer", [][]byte{{0x01}}, nil)
	res, err := m.Execute(context.Background(), req, Transaction)
	require.NoError(t, err)
	require.Equal(t, StatusUserError, res.Status)

	requests := m.Requests()
	require.Len(t, requests, 1)
	require.Equal(t, "transfer@01", requests[0].Data())
}
