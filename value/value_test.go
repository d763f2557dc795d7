package value_test

import (
	"math"
	"testing"

	"github.com/lumabrowser/script-engine/value"
)

func TestZeroValueIsUndefined(t *testing.T) {
	var v value.Value
	if v.Type() != value.TypeUndefined {
		t.Errorf("zero Value type = %v, want undefined", v.Type())
	}
	if !v.IsUndefined() {
		t.Error("zero Value should report IsUndefined")
	}
}

func TestConstructorsAndAccessors(t *testing.T) {
	tests := []struct {
		name string
		v    value.Value
		typ  value.Type
	}{
		{"undefined", value.Undefined(), value.TypeUndefined},
		{"null", value.Null(), value.TypeNull},
		{"boolean true", value.Boolean(true), value.TypeBoolean},
		{"boolean false", value.Boolean(false), value.TypeBoolean},
		{"number", value.Number(3.5), value.TypeNumber},
		{"string", value.String("abc"), value.TypeString},
		{"object", value.ObjectValue(value.NewObject(nil)), value.TypeObject},
		{"function", value.FunctionValue(value.NewNative("f", 0, nil)), value.TypeFunction},
		{"array", value.ArrayValue(value.NewArray(0)), value.TypeArray},
		{"buffer", value.BufferValue(&value.ArrayBuffer{}), value.TypeArrayBuffer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.v.Type() != tt.typ {
				t.Errorf("Type() = %v, want %v", tt.v.Type(), tt.typ)
			}
		})
	}

	if got := value.Number(2.5).AsNumber(); got != 2.5 {
		t.Errorf("AsNumber = %v, want 2.5", got)
	}
	if !value.Boolean(true).AsBoolean() {
		t.Error("AsBoolean(true) = false")
	}
	if got := value.String("hi").AsString(); got != "hi" {
		t.Errorf("AsString = %q, want %q", got, "hi")
	}
	obj := value.NewObject(nil)
	if value.ObjectValue(obj).AsObject() != obj {
		t.Error("AsObject did not round-trip the reference")
	}
}

func TestStrictEquals(t *testing.T) {
	obj := value.NewObject(nil)
	other := value.NewObject(nil)

	tests := []struct {
		name string
		a, b value.Value
		want bool
	}{
		{"numbers equal", value.Number(1), value.Number(1), true},
		{"numbers unequal", value.Number(1), value.Number(2), false},
		{"NaN never equal", value.Number(math.NaN()), value.Number(math.NaN()), false},
		{"strings equal", value.String("a"), value.String("a"), true},
		{"different types", value.Number(0), value.Boolean(false), false},
		{"undefined equals undefined", value.Undefined(), value.Undefined(), true},
		{"null equals null", value.Null(), value.Null(), true},
		{"same object identity", value.ObjectValue(obj), value.ObjectValue(obj), true},
		{"distinct objects", value.ObjectValue(obj), value.ObjectValue(other), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := value.StrictEquals(tt.a, tt.b); got != tt.want {
				t.Errorf("StrictEquals = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInspect(t *testing.T) {
	tests := []struct {
		v    value.Value
		want string
	}{
		{value.Undefined(), "undefined"},
		{value.Null(), "null"},
		{value.Boolean(true), "true"},
		{value.Number(3), "3"},
		{value.Number(2.5), "2.5"},
		{value.Number(math.Inf(1)), "Infinity"},
		{value.String("hi"), `"hi"`},
		{value.FunctionValue(value.NewNative("print", 1, nil)), "[function print]"},
	}

	for _, tt := range tests {
		if got := tt.v.Inspect(); got != tt.want {
			t.Errorf("Inspect(%v) = %q, want %q", tt.v.Type(), got, tt.want)
		}
	}
}

func TestArray(t *testing.T) {
	a := value.NewArray(2)
	if a.Len() != 0 {
		t.Errorf("new array length = %d, want 0", a.Len())
	}

	a.Push(value.Number(1))
	a.Push(value.Number(2))
	if a.Len() != 2 {
		t.Errorf("length after push = %d, want 2", a.Len())
	}
	if got := a.Get(1).AsNumber(); got != 2 {
		t.Errorf("Get(1) = %v, want 2", got)
	}
	if !a.Get(5).IsUndefined() {
		t.Error("out of range Get should be undefined")
	}

	a.Set(4, value.Number(9))
	if a.Len() != 5 {
		t.Errorf("length after sparse Set = %d, want 5", a.Len())
	}
	if !a.Get(3).IsUndefined() {
		t.Error("hole should read as undefined")
	}

	a.Resize(2)
	if a.Len() != 2 {
		t.Errorf("length after Resize(2) = %d, want 2", a.Len())
	}
	a.Resize(4)
	if !a.Get(3).IsUndefined() {
		t.Error("Resize growth should fill with undefined")
	}
}
