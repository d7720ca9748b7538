package abi

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
)

// FieldValue is the concrete value of one named struct field.
type FieldValue struct {
	Name  string
	Value *Value
}

// Value is the concrete counterpart of a Type: a tagged tree carrying
// the data of one ABI value. Construction never validates against a
// type; a Value only becomes well-formed relative to a Type when the
// two are paired during encode or decode.
type Value struct {
	Kind Kind

	// Int carries the data of a BigUint or BigInt value.
	Int *big.Int

	// Flag carries the data of a Bool value.
	Flag bool

	// Addr carries the data of an Address value.
	Addr Address

	// Bytes carries the data of a Bytes value.
	Bytes []byte

	// Some is true when an Option value holds an inner value.
	Some bool

	// Inner is the payload of a set Option value.
	Inner *Value

	// Items are the elements of a List or Tuple value.
	Items []*Value

	// Fields are the named field values of a Struct value.
	Fields []FieldValue

	// Discriminant selects the variant of an Enum value, Payload holds
	// its data when the variant carries some.
	Discriminant byte
	Payload      *Value
}

// NewBigUint returns an unsigned big integer value. A nil argument is
// treated as zero.
func NewBigUint(i *big.Int) *Value {
	if i == nil {
		i = new(big.Int)
	}
	return &Value{Kind: KindBigUint, Int: new(big.Int).Set(i)}
}

// NewUint returns an unsigned big integer value from a uint64.
func NewUint(i uint64) *Value {
	return &Value{Kind: KindBigUint, Int: new(big.Int).SetUint64(i)}
}

// NewBigInt returns a signed big integer value. A nil argument is
// treated as zero.
func NewBigInt(i *big.Int) *Value {
	if i == nil {
		i = new(big.Int)
	}
	return &Value{Kind: KindBigInt, Int: new(big.Int).Set(i)}
}

// NewInt returns a signed big integer value from an int64.
func NewInt(i int64) *Value {
	return &Value{Kind: KindBigInt, Int: big.NewInt(i)}
}

// NewBool returns a boolean value.
func NewBool(b bool) *Value {
	return &Value{Kind: KindBool, Flag: b}
}

// NewAddressValue returns an address value.
func NewAddressValue(a Address) *Value {
	return &Value{Kind: KindAddress, Addr: a}
}

// NewBytes returns a raw byte-string value. The buffer is copied, the
// caller keeps ownership of its slice.
func NewBytes(buf []byte) *Value {
	out := make([]byte, len(buf))
	copy(out, buf)
	return &Value{Kind: KindBytes, Bytes: out}
}

// NewNone returns an empty option value.
func NewNone() *Value {
	return &Value{Kind: KindOption}
}

// NewSome returns an option value holding the given inner value.
func NewSome(inner *Value) *Value {
	return &Value{Kind: KindOption, Some: true, Inner: inner}
}

// NewList returns a list value with the given elements.
func NewList(items ...*Value) *Value {
	return &Value{Kind: KindList, Items: items}
}

// NewTuple returns a tuple value with the given ordered elements.
func NewTuple(items ...*Value) *Value {
	return &Value{Kind: KindTuple, Items: items}
}

// NewStruct returns a struct value with the given named fields.
func NewStruct(fields ...FieldValue) *Value {
	return &Value{Kind: KindStruct, Fields: fields}
}

// NewEnum returns an enum value selecting the variant with the given
// discriminant. Payload must be nil for variants carrying no data.
func NewEnum(discriminant byte, payload *Value) *Value {
	return &Value{Kind: KindEnum, Discriminant: discriminant, Payload: payload}
}

// field returns the value of the named struct field.
func (v *Value) field(name string) (*Value, bool) {
	for _, f := range v.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Equal compares two values structurally, descending into composites.
// It is the notion of equality used by the round-trip tests.
func (v *Value) Equal(o *Value) bool {
	if v == nil || o == nil {
		return v == o
	}
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindBigUint, KindBigInt:
		return bigEqual(v.Int, o.Int)
	case KindBool:
		return v.Flag == o.Flag
	case KindAddress:
		return v.Addr == o.Addr
	case KindBytes:
		return bytes.Equal(v.Bytes, o.Bytes)
	case KindOption:
		if v.Some != o.Some {
			return false
		}
		return !v.Some || v.Inner.Equal(o.Inner)
	case KindList, KindTuple:
		if len(v.Items) != len(o.Items) {
			return false
		}
		for i := range v.Items {
			if !v.Items[i].Equal(o.Items[i]) {
				return false
			}
		}
		return true
	case KindStruct:
		if len(v.Fields) != len(o.Fields) {
			return false
		}
		for i := range v.Fields {
			if v.Fields[i].Name != o.Fields[i].Name ||
				!v.Fields[i].Value.Equal(o.Fields[i].Value) {
				return false
			}
		}
		return true
	case KindEnum:
		if v.Discriminant != o.Discriminant {
			return false
		}
		if (v.Payload == nil) != (o.Payload == nil) {
			return false
		}
		return v.Payload == nil || v.Payload.Equal(o.Payload)
	default:
		return false
	}
}

// String renders the value for logs and error messages.
func (v *Value) String() string {
	if v == nil {
		return "<nil>"
	}
	switch v.Kind {
	case KindBigUint, KindBigInt:
		return v.Int.String()
	case KindBool:
		return fmt.Sprintf("%v", v.Flag)
	case KindAddress:
		return v.Addr.String()
	case KindBytes:
		return "0x" + hex.EncodeToString(v.Bytes)
	case KindOption:
		if !v.Some {
			return "None"
		}
		return fmt.Sprintf("Some(%s)", v.Inner)
	case KindList, KindTuple:
		items := make([]string, len(v.Items))
		for i, it := range v.Items {
			items[i] = it.String()
		}
		if v.Kind == KindTuple {
			return "(" + strings.Join(items, ",") + ")"
		}
		return "[" + strings.Join(items, ",") + "]"
	case KindStruct:
		fields := make([]string, len(v.Fields))
		for i, f := range v.Fields {
			fields[i] = f.Name + ":" + f.Value.String()
		}
		return "{" + strings.Join(fields, ",") + "}"
	case KindEnum:
		if v.Payload == nil {
			return fmt.Sprintf("variant(%d)", v.Discriminant)
		}
		return fmt.Sprintf("variant(%d,%s)", v.Discriminant, v.Payload)
	default:
		return fmt.Sprintf("unknown kind %d", v.Kind)
	}
}

func bigEqual(a, b *big.Int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Cmp(b) == 0
}
