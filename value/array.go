package value

// Array is a growable ordered sequence of values. Its length tracks the
// backing store except across an explicit Resize, which may leave spare
// capacity behind or fill new slots with undefined.
type Array struct {
	elems []Value
}

// NewArray creates an array with the given initial capacity.
func NewArray(capacity int) *Array {
	return &Array{elems: make([]Value, 0, capacity)}
}

// Len returns the array length.
func (a *Array) Len() int {
	return len(a.elems)
}

// Get returns the element at i, or undefined when out of range.
func (a *Array) Get(i int) Value {
	if i < 0 || i >= len(a.elems) {
		return Undefined()
	}
	return a.elems[i]
}

// Set writes the element at i, growing the array with undefined holes when
// i is past the current length.
func (a *Array) Set(i int, v Value) {
	if i < 0 {
		return
	}
	for len(a.elems) <= i {
		a.elems = append(a.elems, Undefined())
	}
	a.elems[i] = v
}

// Push appends a value and returns the new length.
func (a *Array) Push(v Value) int {
	a.elems = append(a.elems, v)
	return len(a.elems)
}

// Resize sets the length explicitly. Growing fills with undefined;
// shrinking truncates.
func (a *Array) Resize(n int) {
	if n < 0 {
		n = 0
	}
	for len(a.elems) < n {
		a.elems = append(a.elems, Undefined())
	}
	a.elems = a.elems[:n]
}

// ArrayBuffer is a raw byte buffer. The linker exposes instance memory
// through it; the buffer aliases, not copies, the underlying storage.
type ArrayBuffer struct {
	Data []byte
}
