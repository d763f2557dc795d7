package value

import (
	"fmt"
	"math"
	"strconv"
)

// Type is the discriminant of a Value.
type Type uint8

const (
	TypeUndefined Type = iota
	TypeNull
	TypeBoolean
	TypeNumber
	TypeBigInt
	TypeString
	TypeSymbol
	TypeObject
	TypeFunction
	TypeArray
	TypeDate
	TypeRegExp
	TypePromise
	TypeArrayBuffer
	TypeMap
	TypeSet
	TypeError
)

// String returns a human-readable name for the type tag
func (t Type) String() string {
	switch t {
	case TypeUndefined:
		return "undefined"
	case TypeNull:
		return "null"
	case TypeBoolean:
		return "boolean"
	case TypeNumber:
		return "number"
	case TypeBigInt:
		return "bigint"
	case TypeString:
		return "string"
	case TypeSymbol:
		return "symbol"
	case TypeObject:
		return "object"
	case TypeFunction:
		return "function"
	case TypeArray:
		return "array"
	case TypeDate:
		return "date"
	case TypeRegExp:
		return "regexp"
	case TypePromise:
		return "promise"
	case TypeArrayBuffer:
		return "arraybuffer"
	case TypeMap:
		return "map"
	case TypeSet:
		return "set"
	case TypeError:
		return "error"
	default:
		return fmt.Sprintf("type(%d)", uint8(t))
	}
}

// Value is a tagged runtime value. Booleans and numbers live inline in num;
// everything else is a reference held in ref. The zero Value is Undefined.
type Value struct {
	ref any
	num float64
	typ Type
}

// Constructors

// Undefined returns the undefined value.
func Undefined() Value {
	return Value{typ: TypeUndefined}
}

// Null returns the null value.
func Null() Value {
	return Value{typ: TypeNull}
}

// Boolean returns a boolean value.
func Boolean(b bool) Value {
	n := 0.0
	if b {
		n = 1.0
	}
	return Value{typ: TypeBoolean, num: n}
}

// Number returns a number value.
func Number(f float64) Value {
	return Value{typ: TypeNumber, num: f}
}

// String returns a string value. Strings are immutable; every transformation
// produces a new value.
func String(s string) Value {
	return Value{typ: TypeString, ref: s}
}

// ObjectValue wraps an object reference.
func ObjectValue(o *Object) Value {
	return Value{typ: TypeObject, ref: o}
}

// FunctionValue wraps a function reference.
func FunctionValue(f *Function) Value {
	return Value{typ: TypeFunction, ref: f}
}

// ArrayValue wraps an array reference.
func ArrayValue(a *Array) Value {
	return Value{typ: TypeArray, ref: a}
}

// BufferValue wraps a byte buffer reference.
func BufferValue(b *ArrayBuffer) Value {
	return Value{typ: TypeArrayBuffer, ref: b}
}

// Accessors. These trust the caller to have checked Type first.

// Type returns the type tag.
func (v Value) Type() Type {
	return v.typ
}

// AsBoolean reads the payload as a boolean. Valid only when Type is TypeBoolean.
func (v Value) AsBoolean() bool {
	return v.num != 0
}

// AsNumber reads the payload as a float64. Valid only when Type is TypeNumber.
func (v Value) AsNumber() float64 {
	return v.num
}

// AsString reads the payload as a string. Valid only when Type is TypeString.
func (v Value) AsString() string {
	s, _ := v.ref.(string)
	return s
}

// AsObject reads the payload as an object reference. Valid only when Type is
// TypeObject.
func (v Value) AsObject() *Object {
	o, _ := v.ref.(*Object)
	return o
}

// AsFunction reads the payload as a function reference. Valid only when Type
// is TypeFunction.
func (v Value) AsFunction() *Function {
	f, _ := v.ref.(*Function)
	return f
}

// AsArray reads the payload as an array reference. Valid only when Type is
// TypeArray.
func (v Value) AsArray() *Array {
	a, _ := v.ref.(*Array)
	return a
}

// AsBuffer reads the payload as a buffer reference. Valid only when Type is
// TypeArrayBuffer.
func (v Value) AsBuffer() *ArrayBuffer {
	b, _ := v.ref.(*ArrayBuffer)
	return b
}

// Predicates

// IsUndefined reports whether the value is undefined.
func (v Value) IsUndefined() bool {
	return v.typ == TypeUndefined
}

// IsNumber reports whether the value is a number.
func (v Value) IsNumber() bool {
	return v.typ == TypeNumber
}

// IsString reports whether the value is a string.
func (v Value) IsString() bool {
	return v.typ == TypeString
}

// IsCallable reports whether the value is a function.
func (v Value) IsCallable() bool {
	return v.typ == TypeFunction
}

// StrictEquals compares two values without coercion. Reference types compare
// by identity, numbers by IEEE-754 equality (NaN != NaN).
func StrictEquals(a, b Value) bool {
	if a.typ != b.typ {
		return false
	}
	switch a.typ {
	case TypeUndefined, TypeNull:
		return true
	case TypeBoolean:
		return a.AsBoolean() == b.AsBoolean()
	case TypeNumber:
		return a.num == b.num
	case TypeString:
		return a.AsString() == b.AsString()
	default:
		return a.ref == b.ref
	}
}

// Inspect renders the value for diagnostics and the REPL.
func (v Value) Inspect() string {
	switch v.typ {
	case TypeUndefined:
		return "undefined"
	case TypeNull:
		return "null"
	case TypeBoolean:
		if v.AsBoolean() {
			return "true"
		}
		return "false"
	case TypeNumber:
		return formatNumber(v.num)
	case TypeString:
		return strconv.Quote(v.AsString())
	case TypeFunction:
		f := v.AsFunction()
		if f != nil && f.Name != "" {
			return "[function " + f.Name + "]"
		}
		return "[function]"
	case TypeObject:
		return "[object]"
	case TypeArray:
		return "[array]"
	case TypeArrayBuffer:
		return "[arraybuffer]"
	default:
		return "[" + v.typ.String() + "]"
	}
}

func formatNumber(f float64) string {
	if math.IsNaN(f) {
		return "NaN"
	}
	if math.IsInf(f, 1) {
		return "Infinity"
	}
	if math.IsInf(f, -1) {
		return "-Infinity"
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
