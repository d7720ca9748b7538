package abi

import (
	"bytes"
	"encoding/binary"
	"math/big"

	"golang.org/x/xerrors"
)

// Mode selects the encoding form of a value.
type Mode int

const (
	// ModeTop is the form used for a call's independent argument and
	// return slots. The slot boundary is known, so no length prefixes
	// are emitted for the outermost value.
	ModeTop Mode = iota

	// ModeNested is the form used for values embedded inside a
	// composite. All variable-size information is made explicit.
	ModeNested
)

func (m Mode) String() string {
	if m == ModeTop {
		return "top"
	}
	return "nested"
}

// Encode serializes a value according to the given type and mode. It
// returns ErrTypeMismatch (wrapped with context) whenever the value's
// shape disagrees with the type.
func Encode(v *Value, t *Type, mode Mode) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeValue(&buf, v, t, mode); err != nil {
		return nil, err
	}
	if buf.Len() == 0 {
		return []byte{}, nil
	}
	return buf.Bytes(), nil
}

func encodeValue(buf *bytes.Buffer, v *Value, t *Type, mode Mode) error {
	if v == nil {
		return xerrors.Errorf("nil value for type %s: %w", t, ErrTypeMismatch)
	}
	if v.Kind != t.Kind {
		return xerrors.Errorf("value %s does not fit type %s: %w",
			v, t, ErrTypeMismatch)
	}

	switch t.Kind {
	case KindBigUint:
		if v.Int == nil {
			return xerrors.Errorf("BigUint value without integer: %w",
				ErrTypeMismatch)
		}
		if v.Int.Sign() < 0 {
			return xerrors.Errorf("negative value %s for BigUint: %w",
				v.Int, ErrTypeMismatch)
		}
		writeNumber(buf, v.Int.Bytes(), mode)

	case KindBigInt:
		if v.Int == nil {
			return xerrors.Errorf("BigInt value without integer: %w",
				ErrTypeMismatch)
		}
		writeNumber(buf, signedBytes(v.Int), mode)

	case KindBool:
		if v.Flag {
			buf.WriteByte(0x01)
		} else {
			buf.WriteByte(0x00)
		}

	case KindAddress:
		buf.Write(v.Addr[:])

	case KindBytes:
		if mode == ModeNested {
			writeUint32(buf, len(v.Bytes))
		}
		buf.Write(v.Bytes)

	case KindOption:
		if mode == ModeNested {
			if !v.Some {
				buf.WriteByte(0x00)
				return nil
			}
			buf.WriteByte(0x01)
			if err := encodeValue(buf, v.Inner, t.Inner, ModeNested); err != nil {
				return xerrors.Errorf("option value: %w", err)
			}
			return nil
		}
		// At top level the slot boundary stands in for the
		// discriminant: none is the empty sequence, some is the bare
		// inner value.
		if !v.Some {
			return nil
		}
		if err := encodeValue(buf, v.Inner, t.Inner, ModeTop); err != nil {
			return xerrors.Errorf("option value: %w", err)
		}

	case KindList:
		var elems bytes.Buffer
		for i, item := range v.Items {
			err := encodeValue(&elems, item, t.Inner, ModeNested)
			if err != nil {
				return xerrors.Errorf("list element %d: %w", i, err)
			}
		}
		if mode == ModeNested {
			writeUint32(buf, elems.Len())
		}
		buf.Write(elems.Bytes())

	case KindTuple:
		if len(v.Items) != len(t.Elems) {
			return xerrors.Errorf("tuple %s expects %d elements, value "+
				"has %d: %w", t, len(t.Elems), len(v.Items), ErrTypeMismatch)
		}
		for i, et := range t.Elems {
			if err := encodeValue(buf, v.Items[i], et, ModeNested); err != nil {
				return xerrors.Errorf("tuple element %d: %w", i, err)
			}
		}

	case KindStruct:
		if len(v.Fields) != len(t.Fields) {
			return xerrors.Errorf("struct %s expects %d fields, value "+
				"has %d: %w", t, len(t.Fields), len(v.Fields), ErrTypeMismatch)
		}
		for _, f := range t.Fields {
			fv, ok := v.field(f.Name)
			if !ok {
				return xerrors.Errorf("struct %s value misses field %s: %w",
					t, f.Name, ErrTypeMismatch)
			}
			if err := encodeValue(buf, fv, f.Type, ModeNested); err != nil {
				return xerrors.Errorf("field %s: %w", f.Name, err)
			}
		}

	case KindEnum:
		variant, ok := t.variant(v.Discriminant)
		if !ok {
			return xerrors.Errorf("enum %s has no variant with "+
				"discriminant %d: %w", t, v.Discriminant, ErrTypeMismatch)
		}
		if variant.Payload == nil && v.Payload != nil {
			return xerrors.Errorf("variant %s of enum %s takes no "+
				"payload: %w", variant.Name, t, ErrTypeMismatch)
		}
		buf.WriteByte(v.Discriminant)
		if variant.Payload != nil {
			err := encodeValue(buf, v.Payload, variant.Payload, ModeNested)
			if err != nil {
				return xerrors.Errorf("payload of variant %s: %w",
					variant.Name, err)
			}
		}

	default:
		return xerrors.Errorf("unsupported type kind %d: %w",
			t.Kind, ErrTypeMismatch)
	}

	return nil
}

// writeNumber emits the minimal big-endian representation of a number,
// length-prefixed in nested mode since arbitrary-precision integers have
// no fixed size.
func writeNumber(buf *bytes.Buffer, b []byte, mode Mode) {
	if mode == ModeNested {
		writeUint32(buf, len(b))
	}
	buf.Write(b)
}

func writeUint32(buf *bytes.Buffer, n int) {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(n))
	buf.Write(lenBuf[:])
}

// signedBytes returns the minimal two's complement representation of i,
// preserving the sign: zero is empty, positive numbers keep a leading
// 0x00 when their top bit is set, negative numbers use the smallest
// width that still has the top bit set.
func signedBytes(i *big.Int) []byte {
	switch i.Sign() {
	case 0:
		return nil
	case 1:
		b := i.Bytes()
		if b[0]&0x80 != 0 {
			return append([]byte{0x00}, b...)
		}
		return b
	}

	n := 1
	for {
		limit := new(big.Int).Lsh(big.NewInt(1), uint(8*n-1))
		if i.Cmp(limit.Neg(limit)) >= 0 {
			break
		}
		n++
	}
	tc := new(big.Int).Lsh(big.NewInt(1), uint(8*n))
	return tc.Add(tc, i).Bytes()
}
