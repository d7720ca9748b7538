package abi

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Address(t *testing.T) {
	_, err := NewAddress(make([]byte, 31))
	require.Error(t, err)

	a := RandomAddress()
	require.NotEqual(t, a, RandomAddress())

	b, err := AddressFromHex(a.String())
	require.NoError(t, err)
	require.True(t, a.Equal(b))

	_, err = AddressFromHex("zz")
	require.Error(t, err)
}
