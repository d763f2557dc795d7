package value

import "github.com/lumabrowser/script-engine/errors"

// Object is an insertion-ordered property map with a non-owning prototype
// reference and an extensibility flag.
type Object struct {
	props      map[string]Value
	keys       []string
	proto      *Object
	extensible bool
}

// NewObject creates an empty extensible object. proto may be nil.
func NewObject(proto *Object) *Object {
	return &Object{
		props:      make(map[string]Value),
		proto:      proto,
		extensible: true,
	}
}

// Prototype returns the prototype reference, which may be nil.
func (o *Object) Prototype() *Object {
	return o.proto
}

// GetOwn looks up an own property, ignoring the prototype chain.
func (o *Object) GetOwn(name string) (Value, bool) {
	v, ok := o.props[name]
	return v, ok
}

// Get looks up a property, walking the prototype chain.
func (o *Object) Get(name string) (Value, bool) {
	for cur := o; cur != nil; cur = cur.proto {
		if v, ok := cur.props[name]; ok {
			return v, true
		}
	}
	return Undefined(), false
}

// Set writes a property. Inserting a new key into a frozen object fails;
// overwriting an existing key is always allowed.
func (o *Object) Set(name string, v Value) error {
	if _, exists := o.props[name]; !exists {
		if !o.extensible {
			return errors.NotExtensible(name)
		}
		o.keys = append(o.keys, name)
	}
	o.props[name] = v
	return nil
}

// Delete removes an own property and reports whether it was present.
func (o *Object) Delete(name string) bool {
	if _, ok := o.props[name]; !ok {
		return false
	}
	delete(o.props, name)
	for i, k := range o.keys {
		if k == name {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
	return true
}

// Keys returns the own property names in insertion order.
func (o *Object) Keys() []string {
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

// Len returns the number of own properties.
func (o *Object) Len() int {
	return len(o.keys)
}

// Freeze disables new-key insertion. Existing keys remain writable.
func (o *Object) Freeze() {
	o.extensible = false
}

// Extensible reports whether new keys may be inserted.
func (o *Object) Extensible() bool {
	return o.extensible
}
