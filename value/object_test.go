package value_test

import (
	stderrors "errors"
	"reflect"
	"testing"

	"github.com/lumabrowser/script-engine/errors"
	"github.com/lumabrowser/script-engine/value"
)

func TestObjectInsertionOrder(t *testing.T) {
	o := value.NewObject(nil)
	for _, k := range []string{"z", "a", "m"} {
		if err := o.Set(k, value.Number(1)); err != nil {
			t.Fatalf("Set(%q): %v", k, err)
		}
	}

	want := []string{"z", "a", "m"}
	if got := o.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}

	// Overwriting must not reorder
	if err := o.Set("a", value.Number(2)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got := o.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() after overwrite = %v, want %v", got, want)
	}
}

func TestObjectPrototypeChain(t *testing.T) {
	proto := value.NewObject(nil)
	if err := proto.Set("inherited", value.Number(7)); err != nil {
		t.Fatal(err)
	}
	o := value.NewObject(proto)

	if _, ok := o.GetOwn("inherited"); ok {
		t.Error("GetOwn should not see prototype properties")
	}
	v, ok := o.Get("inherited")
	if !ok || v.AsNumber() != 7 {
		t.Errorf("Get through prototype = (%v, %v), want (7, true)", v, ok)
	}
	if _, ok := o.Get("missing"); ok {
		t.Error("Get of absent key should report false")
	}
}

func TestObjectFreeze(t *testing.T) {
	o := value.NewObject(nil)
	if err := o.Set("x", value.Number(1)); err != nil {
		t.Fatal(err)
	}

	o.Freeze()
	if o.Extensible() {
		t.Error("frozen object should not be extensible")
	}

	// New keys are rejected
	err := o.Set("y", value.Number(2))
	if err == nil {
		t.Fatal("Set of new key on frozen object should fail")
	}
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseExecute, Kind: errors.KindNotExtensible}) {
		t.Errorf("error = %v, want not_extensible", err)
	}

	// Existing keys remain writable
	if err := o.Set("x", value.Number(3)); err != nil {
		t.Errorf("overwrite on frozen object should succeed, got %v", err)
	}
	v, _ := o.Get("x")
	if v.AsNumber() != 3 {
		t.Errorf("x = %v, want 3", v.AsNumber())
	}
}

func TestObjectDelete(t *testing.T) {
	o := value.NewObject(nil)
	_ = o.Set("a", value.Number(1))
	_ = o.Set("b", value.Number(2))

	if !o.Delete("a") {
		t.Error("Delete of existing key should report true")
	}
	if o.Delete("a") {
		t.Error("Delete of absent key should report false")
	}
	if got := o.Keys(); !reflect.DeepEqual(got, []string{"b"}) {
		t.Errorf("Keys() = %v, want [b]", got)
	}
	if o.Len() != 1 {
		t.Errorf("Len() = %d, want 1", o.Len())
	}
}
