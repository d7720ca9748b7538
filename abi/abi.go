// Package abi implements the typed value model and the binary codec used
// to exchange values with smart contracts. A Type describes the shape of
// a value as declared in a contract ABI, a Value carries concrete data,
// and Encode/Decode translate between Values and the wire representation.
//
// Every value is encoded in one of two modes. Top mode is used for a
// call's independent argument and return slots, where the slot boundary
// makes length prefixes redundant. Nested mode is used for values
// embedded inside a composite, which must be self-describing. The mode
// is threaded explicitly through every recursive codec call.
package abi

import (
	"golang.org/x/xerrors"
)

// ErrTypeMismatch is returned when a value's runtime shape disagrees with
// the type it is being encoded against. It always indicates a caller bug
// and is never retried.
var ErrTypeMismatch = xerrors.New("type mismatch")

// ErrDecode is returned for malformed, truncated or otherwise undecodable
// byte input. A decode failure is definitive.
var ErrDecode = xerrors.New("cannot decode")

// ErrTrailingBytes is returned when a standalone top-level decode leaves
// input bytes unconsumed. It usually means the declared type does not
// match the contract's actual ABI.
var ErrTrailingBytes = xerrors.New("trailing bytes after decoding")
