package vm

import (
	"time"

	"github.com/lumabrowser/script-engine/errors"
	"github.com/lumabrowser/script-engine/value"
)

// Context owns exactly one global object and the per-context execution
// settings. A context is not safe for concurrent use.
type Context struct {
	global  *value.Object
	timeout time.Duration
}

// NewContext creates a context with a fresh, empty global object.
func NewContext() *Context {
	return &Context{global: value.NewObject(nil)}
}

// GlobalObject returns the context's global object. It satisfies value.Ctx
// so native callbacks receive the context directly.
func (c *Context) GlobalObject() *value.Object {
	return c.global
}

// SetTimeout sets the execution deadline applied to each Run. Zero disables
// the check.
func (c *Context) SetTimeout(d time.Duration) {
	c.timeout = d
}

// Timeout returns the configured execution timeout.
func (c *Context) Timeout() time.Duration {
	return c.timeout
}

// Global resolves a name against the global object.
func (c *Context) Global(name string) (value.Value, bool) {
	return c.global.Get(name)
}

// SetGlobal binds a name in the global object.
func (c *Context) SetGlobal(name string, v value.Value) error {
	return c.global.Set(name, v)
}

// RegisterNative binds a host callback as a global function value. This is
// the only path by which surrounding subsystems call into or are called
// from the engine.
func (c *Context) RegisterNative(name string, arity int, fn value.NativeFunc) error {
	if fn == nil {
		return errors.InvalidData(errors.PhaseHost, "nil native callback")
	}
	f := value.NewNative(name, arity, fn)
	if err := c.global.Set(name, value.FunctionValue(f)); err != nil {
		return errors.Wrap(errors.PhaseHost, errors.KindNotExtensible, err, "bind native "+name)
	}
	return nil
}
