package abi

import (
	"fmt"
	"strings"
)

// Kind enumerates the shapes a type or value can take.
type Kind int

// The supported type kinds. The first five are primitives, the rest are
// composites built out of other types.
const (
	KindBigUint Kind = iota
	KindBigInt
	KindBool
	KindAddress
	KindBytes
	KindOption
	KindList
	KindTuple
	KindStruct
	KindEnum
)

// Field is a named field of a struct type.
type Field struct {
	Name string
	Type *Type
}

// Variant is one alternative of an enum type. Payload is nil for
// variants that carry no data.
type Variant struct {
	Name         string
	Discriminant byte
	Payload      *Type
}

// Type describes the shape of an ABI value. Types are immutable once
// constructed and are shared by reference across any number of encode
// and decode calls; a contract's type graph is typically built once from
// its published ABI description and lives for the process duration.
type Type struct {
	Kind Kind

	// Name is the user-defined name of a struct or enum type. It is
	// informational only and does not influence the encoding.
	Name string

	// Inner is the element type of an Option or List.
	Inner *Type

	// Elems are the ordered element types of a Tuple.
	Elems []*Type

	// Fields are the ordered named fields of a Struct.
	Fields []Field

	// Variants are the ordered variants of an Enum.
	Variants []Variant
}

// The primitive types, shared by all callers.
var (
	TypeBigUint = &Type{Kind: KindBigUint}
	TypeBigInt  = &Type{Kind: KindBigInt}
	TypeBool    = &Type{Kind: KindBool}
	TypeAddress = &Type{Kind: KindAddress}
	TypeBytes   = &Type{Kind: KindBytes}
)

// OptionOf returns the type of an optional inner value.
func OptionOf(inner *Type) *Type {
	return &Type{Kind: KindOption, Inner: inner}
}

// ListOf returns the type of a variable-length list of inner values.
func ListOf(inner *Type) *Type {
	return &Type{Kind: KindList, Inner: inner}
}

// TupleOf returns the type of a fixed sequence of heterogeneous values.
func TupleOf(elems ...*Type) *Type {
	return &Type{Kind: KindTuple, Elems: elems}
}

// StructOf returns a named struct type with the given ordered fields.
func StructOf(name string, fields ...Field) *Type {
	return &Type{Kind: KindStruct, Name: name, Fields: fields}
}

// EnumOf returns a named enum type with the given ordered variants.
func EnumOf(name string, variants ...Variant) *Type {
	return &Type{Kind: KindEnum, Name: name, Variants: variants}
}

// variant returns the declared variant matching the given discriminant.
func (t *Type) variant(discriminant byte) (Variant, bool) {
	for _, v := range t.Variants {
		if v.Discriminant == discriminant {
			return v, true
		}
	}
	return Variant{}, false
}

// String renders a readable type expression, used in error messages.
func (t *Type) String() string {
	switch t.Kind {
	case KindBigUint:
		return "BigUint"
	case KindBigInt:
		return "BigInt"
	case KindBool:
		return "Bool"
	case KindAddress:
		return "Address"
	case KindBytes:
		return "Bytes"
	case KindOption:
		return fmt.Sprintf("Option<%s>", t.Inner)
	case KindList:
		return fmt.Sprintf("List<%s>", t.Inner)
	case KindTuple:
		elems := make([]string, len(t.Elems))
		for i, e := range t.Elems {
			elems[i] = e.String()
		}
		return fmt.Sprintf("Tuple<%s>", strings.Join(elems, ","))
	case KindStruct:
		if t.Name != "" {
			return t.Name
		}
		return "struct"
	case KindEnum:
		if t.Name != "" {
			return t.Name
		}
		return "enum"
	default:
		return fmt.Sprintf("unknown kind %d", t.Kind)
	}
}
