package abi

import (
	"encoding/hex"

	"go.dedis.ch/kyber/v3/util/random"
	"golang.org/x/xerrors"
)

// AddressLength is the size in bytes of an account or contract address.
const AddressLength = 32

// Address is the fixed-size identifier of an account or a deployed
// contract. It is always carried and encoded as raw bytes, without any
// length prefix.
type Address [AddressLength]byte

// NewAddress converts a byte slice into an Address, checking its length.
func NewAddress(buf []byte) (Address, error) {
	var a Address
	if len(buf) != AddressLength {
		return a, xerrors.Errorf("address must be %d bytes, got %d",
			AddressLength, len(buf))
	}
	copy(a[:], buf)
	return a, nil
}

// AddressFromHex converts a hex string into an Address.
func AddressFromHex(s string) (Address, error) {
	buf, err := hex.DecodeString(s)
	if err != nil {
		return Address{}, xerrors.Errorf("invalid address hex: %v", err)
	}
	return NewAddress(buf)
}

// RandomAddress returns a fresh random Address, useful for tests and
// local simulation.
func RandomAddress() Address {
	a, err := NewAddress(random.Bits(256, true, random.New()))
	if err != nil {
		panic("random address generation: " + err.Error())
	}
	return a
}

// Slice returns the address as a byte slice.
func (a Address) Slice() []byte {
	return a[:]
}

// Equal returns true if both addresses are the same.
func (a Address) Equal(b Address) bool {
	return a == b
}

// String returns the hexadecimal representation of the address.
func (a Address) String() string {
	return hex.EncodeToString(a[:])
}
