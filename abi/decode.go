package abi

import (
	"encoding/binary"
	"math/big"

	"golang.org/x/xerrors"
)

// Decode deserializes a value of the given type from data. In top mode
// the whole input must be consumed: leftover bytes yield
// ErrTrailingBytes, which usually signals a mismatch between the
// declared return type and the contract's actual ABI. Failures are
// reported as ErrDecode (wrapped with the reason) and are definitive -
// a decode is never retried.
func Decode(data []byte, t *Type, mode Mode) (*Value, error) {
	r := &reader{buf: data}
	v, err := decodeValue(r, t, mode)
	if err != nil {
		return nil, err
	}
	if r.remaining() > 0 {
		return nil, xerrors.Errorf("%d bytes left after decoding %s: %w",
			r.remaining(), t, ErrTrailingBytes)
	}
	return v, nil
}

// reader is a cursor over the input buffer. Nested decodes consume
// exactly what their type requires and leave the rest for the caller.
type reader struct {
	buf []byte
	off int
}

func (r *reader) remaining() int {
	return len(r.buf) - r.off
}

// take consumes the next n bytes, failing on truncated input.
func (r *reader) take(n int, what string) ([]byte, error) {
	if r.remaining() < n {
		return nil, xerrors.Errorf("truncated input: %s needs %d bytes, "+
			"%d available: %w", what, n, r.remaining(), ErrDecode)
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

// rest consumes and returns all remaining bytes.
func (r *reader) rest() []byte {
	b := r.buf[r.off:]
	r.off = len(r.buf)
	return b
}

func (r *reader) takeUint32(what string) (int, error) {
	b, err := r.take(4, what+" length prefix")
	if err != nil {
		return 0, err
	}
	return int(binary.BigEndian.Uint32(b)), nil
}

func decodeValue(r *reader, t *Type, mode Mode) (*Value, error) {
	switch t.Kind {
	case KindBigUint:
		b, err := readNumber(r, mode, "BigUint")
		if err != nil {
			return nil, err
		}
		return NewBigUint(new(big.Int).SetBytes(b)), nil

	case KindBigInt:
		b, err := readNumber(r, mode, "BigInt")
		if err != nil {
			return nil, err
		}
		return NewBigInt(signedFromBytes(b)), nil

	case KindBool:
		b, err := r.take(1, "boolean")
		if err != nil {
			return nil, err
		}
		switch b[0] {
		case 0x00:
			return NewBool(false), nil
		case 0x01:
			return NewBool(true), nil
		default:
			return nil, xerrors.Errorf("invalid boolean byte 0x%02x: %w",
				b[0], ErrDecode)
		}

	case KindAddress:
		b, err := r.take(AddressLength, "address")
		if err != nil {
			return nil, err
		}
		addr, err := NewAddress(b)
		if err != nil {
			return nil, xerrors.Errorf("address: %v: %w", err, ErrDecode)
		}
		return NewAddressValue(addr), nil

	case KindBytes:
		if mode == ModeTop {
			return NewBytes(r.rest()), nil
		}
		size, err := r.takeUint32("byte string")
		if err != nil {
			return nil, err
		}
		b, err := r.take(size, "byte string")
		if err != nil {
			return nil, err
		}
		return NewBytes(b), nil

	case KindOption:
		if mode == ModeTop {
			// The slot boundary carries the discriminant: an empty
			// slot is none, anything else is the bare inner value.
			if r.remaining() == 0 {
				return NewNone(), nil
			}
			inner, err := decodeValue(r, t.Inner, ModeTop)
			if err != nil {
				return nil, xerrors.Errorf("option value: %w", err)
			}
			return NewSome(inner), nil
		}
		b, err := r.take(1, "option discriminant")
		if err != nil {
			return nil, err
		}
		switch b[0] {
		case 0x00:
			return NewNone(), nil
		case 0x01:
			inner, err := decodeValue(r, t.Inner, ModeNested)
			if err != nil {
				return nil, xerrors.Errorf("option value: %w", err)
			}
			return NewSome(inner), nil
		default:
			return nil, xerrors.Errorf("invalid option discriminant "+
				"0x%02x: %w", b[0], ErrDecode)
		}

	case KindList:
		elems := r
		if mode == ModeNested {
			size, err := r.takeUint32("list")
			if err != nil {
				return nil, err
			}
			b, err := r.take(size, "list content")
			if err != nil {
				return nil, err
			}
			elems = &reader{buf: b}
		}
		var items []*Value
		for elems.remaining() > 0 {
			item, err := decodeValue(elems, t.Inner, ModeNested)
			if err != nil {
				return nil, xerrors.Errorf("list element %d: %w",
					len(items), err)
			}
			items = append(items, item)
		}
		return NewList(items...), nil

	case KindTuple:
		items := make([]*Value, len(t.Elems))
		for i, et := range t.Elems {
			item, err := decodeValue(r, et, ModeNested)
			if err != nil {
				return nil, xerrors.Errorf("tuple element %d: %w", i, err)
			}
			items[i] = item
		}
		return NewTuple(items...), nil

	case KindStruct:
		fields := make([]FieldValue, len(t.Fields))
		for i, f := range t.Fields {
			fv, err := decodeValue(r, f.Type, ModeNested)
			if err != nil {
				return nil, xerrors.Errorf("field %s: %w", f.Name, err)
			}
			fields[i] = FieldValue{Name: f.Name, Value: fv}
		}
		return NewStruct(fields...), nil

	case KindEnum:
		b, err := r.take(1, "enum discriminant")
		if err != nil {
			return nil, err
		}
		variant, ok := t.variant(b[0])
		if !ok {
			return nil, xerrors.Errorf("enum %s has no variant with "+
				"discriminant %d: %w", t, b[0], ErrDecode)
		}
		if variant.Payload == nil {
			return NewEnum(b[0], nil), nil
		}
		payload, err := decodeValue(r, variant.Payload, ModeNested)
		if err != nil {
			return nil, xerrors.Errorf("payload of variant %s: %w",
				variant.Name, err)
		}
		return NewEnum(b[0], payload), nil

	default:
		return nil, xerrors.Errorf("unsupported type kind %d: %w",
			t.Kind, ErrDecode)
	}
}

func readNumber(r *reader, mode Mode, what string) ([]byte, error) {
	if mode == ModeTop {
		return r.rest(), nil
	}
	size, err := r.takeUint32(what)
	if err != nil {
		return nil, err
	}
	return r.take(size, what)
}

// signedFromBytes interprets b as a big-endian two's complement number.
func signedFromBytes(b []byte) *big.Int {
	i := new(big.Int).SetBytes(b)
	if len(b) > 0 && b[0]&0x80 != 0 {
		offset := new(big.Int).Lsh(big.NewInt(1), uint(8*len(b)))
		i.Sub(i, offset)
	}
	return i
}
