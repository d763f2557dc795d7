package value

// FuncFlags carries function modifiers.
type FuncFlags uint8

const (
	FlagArrow FuncFlags = 1 << iota
	FlagAsync
	FlagGenerator
)

// Ctx is the execution context a native callback receives. The VM's context
// satisfies it; the value model only needs the global object surface.
type Ctx interface {
	GlobalObject() *Object
}

// NativeFunc is a host callback bridged into the value model.
type NativeFunc func(ctx Ctx, args []Value) (Value, error)

// NoRegion marks a function without compiled bytecode.
const NoRegion = -1

// Function is a callable value. Exactly one of Region/Native is meaningful:
// a scripted function addresses its compiled code region by index, a native
// function carries a host callback.
type Function struct {
	Native NativeFunc
	Env    *Object // optional closure environment
	Name   string
	Arity  int
	Region int
	Flags  FuncFlags
}

// NewScripted creates a function backed by a compiled code region.
func NewScripted(name string, arity, region int) *Function {
	return &Function{Name: name, Arity: arity, Region: region, Env: nil}
}

// NewNative creates a function backed by a host callback.
func NewNative(name string, arity int, fn NativeFunc) *Function {
	return &Function{Name: name, Arity: arity, Region: NoRegion, Native: fn}
}

// IsNative reports whether the function dispatches to a host callback.
func (f *Function) IsNative() bool {
	return f.Native != nil
}
