package nova

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/nova/abi"
	"go.dedis.ch/nova/executor"
	"golang.org/x/xerrors"
)

func Test_DecodeResult(t *testing.T) {
	res := executor.Success([]byte{0x03, 0xe8}, []byte{0x01})

	values, err := DecodeResult(res, []*abi.Type{
		abi.TypeBigUint,
		abi.TypeBool,
	})
	require.NoError(t, err)
	require.Len(t, values, 2)
	require.True(t, values[0].Equal(abi.NewUint(1000)))
	require.True(t, values[1].Equal(abi.NewBool(true)))
}

func Test_DecodeResult_Arity(t *testing.T) {
	res := executor.Success([]byte{0x01})

	_, err := DecodeResult(res, []*abi.Type{abi.TypeBool, abi.TypeBool})
	require.Error(t, err)
	require.True(t, xerrors.Is(err, ErrArityMismatch))
}

func Test_DecodeResult_BadBytes(t *testing.T) {
	res := executor.Success([]byte{0x07})

	_, err := DecodeResult(res, []*abi.Type{abi.TypeBool})
	require.Error(t, err)
	require.True(t, xerrors.Is(err, abi.ErrDecode))
}

func Test_DecodeResult_Statuses(t *testing.T) {
	_, err := DecodeResult(executor.UserError("not enough funds"),
		[]*abi.Type{abi.TypeBool})
	require.Error(t, err)
	require.Contains(t, err.Error(), "not enough funds")

	cause := xerrors.New("gateway unreachable")
	_, err = DecodeResult(executor.NetworkFailure(cause),
		[]*abi.Type{abi.TypeBool})
	require.Error(t, err)
	require.True(t, xerrors.Is(err, cause))
}

func Test_DecodeSingleResult(t *testing.T) {
	res := executor.Success([]byte{0x03, 0xe8})

	v, err := DecodeSingleResult(res, abi.TypeBigUint)
	require.NoError(t, err)
	require.True(t, v.Equal(abi.NewUint(1000)))

	_, err = DecodeSingleResult(executor.Success(), abi.TypeBigUint)
	require.True(t, xerrors.Is(err, ErrArityMismatch))
}
