package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lumabrowser/script-engine/compiler"
	"github.com/lumabrowser/script-engine/errors"
	"github.com/lumabrowser/script-engine/linker"
	"github.com/lumabrowser/script-engine/parser"
	"github.com/lumabrowser/script-engine/value"
	"github.com/lumabrowser/script-engine/vm"
	"github.com/lumabrowser/script-engine/wasm"
)

// Engine owns one script Context and exposes the narrow surface the
// surrounding subsystems call: script execution, module compilation and
// native-function registration.
//
// NOT thread-safe for concurrent script execution: callers needing
// parallelism run one Engine per goroutine.
type Engine struct {
	mu          sync.Mutex
	opts        Options
	ctx         *vm.Context
	initialized bool

	gcRuns  uint64
	lastGC  time.Time
	scripts uint64
}

// New creates an Engine with the given options. The engine is usable
// after Initialize; ExecuteScript initializes lazily on first use.
func New(opts Options) *Engine {
	return &Engine{opts: opts}
}

var (
	defaultEngine *Engine
	defaultOnce   sync.Once
)

// Default returns the process-wide engine, constructing it with
// DefaultOptions on first use.
func Default() *Engine {
	defaultOnce.Do(func() {
		defaultEngine = New(DefaultOptions())
	})
	return defaultEngine
}

// Initialize builds the script context and installs builtins. Calling it
// on an initialized engine is a no-op.
func (e *Engine) Initialize() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.initLocked()
}

func (e *Engine) initLocked() error {
	if e.initialized {
		return nil
	}
	e.ctx = vm.NewContext()
	e.ctx.SetTimeout(e.opts.ExecutionTimeout)
	if err := e.installBuiltins(); err != nil {
		e.ctx = nil
		return err
	}
	e.initialized = true
	Logger().Info("engine initialized",
		zap.Bool("wasm", e.opts.EnableWasm),
		zap.Duration("timeout", e.opts.ExecutionTimeout))
	return nil
}

// Shutdown tears the context down. Calling it on a fresh or already
// shut-down engine is a no-op.
func (e *Engine) Shutdown() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialized {
		return nil
	}
	e.ctx = nil
	e.initialized = false
	Logger().Info("engine shut down", zap.Uint64("scripts_executed", e.scripts))
	return nil
}

// ExecuteScript runs source through parse, compile and execute and
// returns the completion value. name labels the script in errors. The
// first failure from any stage propagates unchanged.
func (e *Engine) ExecuteScript(source []byte, name string) (value.Value, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.initLocked(); err != nil {
		return value.Undefined(), err
	}

	ast, err := parser.Parse(source)
	if err != nil {
		return value.Undefined(), scriptError(err, name)
	}
	prog, err := compiler.Compile(ast)
	if err != nil {
		return value.Undefined(), scriptError(err, name)
	}
	result, err := vm.New(e.ctx).Run(prog)
	if err != nil {
		return value.Undefined(), scriptError(err, name)
	}
	e.scripts++
	return result, nil
}

// scriptError stamps the script name onto structured errors that carry
// no path yet.
func scriptError(err error, name string) error {
	if name == "" {
		return err
	}
	if se, ok := err.(*errors.Error); ok && len(se.Path) == 0 {
		se.Path = []string{name}
	}
	return err
}

// RegisterNative installs a host function under name in the global
// object.
func (e *Engine) RegisterNative(name string, arity int, fn value.NativeFunc) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.initLocked(); err != nil {
		return err
	}
	return e.ctx.RegisterNative(name, arity, fn)
}

// Global reads a binding from the global object.
func (e *Engine) Global(name string) (value.Value, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialized {
		return value.Undefined(), false
	}
	return e.ctx.Global(name)
}

// CompileWasm decodes a binary module. It fails with a wasm-disabled
// error when the feature flag is off.
func (e *Engine) CompileWasm(data []byte) (*wasm.Module, error) {
	if !e.opts.EnableWasm {
		return nil, errors.WasmDisabled()
	}
	return wasm.ParseModule(data)
}

// InstantiateWasm links a compiled module against imports. With
// EnableWasmExec set, function exports dispatch through a wazero
// backend; otherwise they are present but not callable.
func (e *Engine) InstantiateWasm(ctx context.Context, mod *wasm.Module, imports *value.Object) (*linker.Instance, error) {
	if !e.opts.EnableWasm {
		return nil, errors.WasmDisabled()
	}
	e.mu.Lock()
	if err := e.initLocked(); err != nil {
		e.mu.Unlock()
		return nil, err
	}
	callCtx := e.ctx
	e.mu.Unlock()

	if !e.opts.EnableWasmExec {
		return linker.Instantiate(ctx, mod, imports)
	}
	exec, err := linker.NewWazeroExecutor(ctx, mod, imports, callCtx)
	if err != nil {
		return nil, err
	}
	return linker.InstantiateWithExecutor(ctx, mod, imports, exec)
}

// CollectGarbage records a collection request. Reclamation itself is not
// implemented; the script heap is managed by the host runtime, so this
// only bumps the run counter and timestamp surfaced by GCStats.
func (e *Engine) CollectGarbage() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.gcRuns++
	e.lastGC = time.Now()
}

// GCStats reports how many collections were requested and when the last
// one ran.
func (e *Engine) GCStats() (runs uint64, last time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gcRuns, e.lastGC
}

// installBuiltins populates the global object. print writes its
// arguments to the configured writer, space separated.
func (e *Engine) installBuiltins() error {
	out := e.opts.Stdout
	return e.ctx.RegisterNative("print", 1, func(_ value.Ctx, args []value.Value) (value.Value, error) {
		if out == nil {
			return value.Undefined(), nil
		}
		for i, a := range args {
			if i > 0 {
				fmt.Fprint(out, " ")
			}
			if a.IsString() {
				fmt.Fprint(out, a.AsString())
			} else {
				fmt.Fprint(out, a.Inspect())
			}
		}
		fmt.Fprintln(out)
		return value.Undefined(), nil
	})
}
