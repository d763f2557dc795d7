package linker

import (
	"context"

	"go.uber.org/zap"

	"github.com/lumabrowser/script-engine/errors"
	"github.com/lumabrowser/script-engine/value"
	"github.com/lumabrowser/script-engine/wasm"
)

// Executor runs a module's function exports. Call arguments and results
// travel as float64, matching the engine's single numeric representation;
// the executor converts to and from the wasm value types at the boundary.
type Executor interface {
	Call(ctx context.Context, name string, args []float64) ([]float64, error)
	Close(ctx context.Context) error
}

// Instance is a live module instance. It shares the Module read-only and
// privately owns memory, globals and the export object.
//
// NOT thread-safe: each goroutine should use its own Instance.
type Instance struct {
	module  *wasm.Module
	exec    Executor
	memory  []byte
	globals []float64
	exports *value.Object
	funcs   []*value.Function
	closed  bool
}

// Instantiate links mod against the import object and returns a new
// instance. Function exports are present but not callable; use
// InstantiateWithExecutor to make them dispatch into a backend.
func Instantiate(ctx context.Context, mod *wasm.Module, imports *value.Object) (*Instance, error) {
	return InstantiateWithExecutor(ctx, mod, imports, nil)
}

// InstantiateWithExecutor links mod with an execution backend attached.
// The instance takes ownership of exec and closes it on teardown.
func InstantiateWithExecutor(ctx context.Context, mod *wasm.Module, imports *value.Object, exec Executor) (*Instance, error) {
	if mod == nil {
		return nil, errors.NotInitialized(errors.PhaseLink, "module")
	}
	if err := checkImports(mod, imports); err != nil {
		if exec != nil {
			exec.Close(ctx)
		}
		return nil, err
	}

	inst := &Instance{
		module:  mod,
		exec:    exec,
		globals: make([]float64, len(mod.Globals)),
	}
	// Instances never share memory, even when backed by the same Module.
	if mod.Memory != nil {
		inst.memory = make([]byte, len(mod.Memory.Data))
		copy(inst.memory, mod.Memory.Data)
	}
	for i, g := range mod.Globals {
		inst.globals[i] = g.Value
	}

	if err := inst.buildExports(); err != nil {
		if exec != nil {
			exec.Close(ctx)
		}
		return nil, err
	}

	Logger().Debug("module instantiated",
		zap.String("module", mod.Name),
		zap.Int("exports", mod.NumExports()),
		zap.Bool("executable", exec != nil))
	return inst, nil
}

// checkImports verifies every declared import resolves against the import
// object by (module, name) with a kind-appropriate value.
func checkImports(mod *wasm.Module, imports *value.Object) error {
	for _, imp := range mod.Imports {
		ref := imp.Module + "." + imp.Name
		if imports == nil {
			return errors.NotFound(errors.PhaseLink, "import", ref)
		}
		nsVal, ok := imports.Get(imp.Module)
		if !ok || nsVal.Type() != value.TypeObject {
			return errors.NotFound(errors.PhaseLink, "import module", imp.Module)
		}
		v, ok := nsVal.AsObject().Get(imp.Name)
		if !ok {
			return errors.NotFound(errors.PhaseLink, "import", ref)
		}
		switch imp.Kind {
		case wasm.KindFunc:
			if !v.IsCallable() {
				return errors.NotCallable(errors.PhaseLink, v.Type().String())
			}
		case wasm.KindGlobal:
			if !v.IsNumber() {
				return errors.New(errors.PhaseLink, errors.KindTypeMismatch).
					Path(imp.Module, imp.Name).
					Detail("global import must be a number, got %s", v.Type()).
					Build()
			}
		case wasm.KindMemory:
			if v.Type() != value.TypeArrayBuffer {
				return errors.New(errors.PhaseLink, errors.KindTypeMismatch).
					Path(imp.Module, imp.Name).
					Detail("memory import must be a buffer, got %s", v.Type()).
					Build()
			}
		case wasm.KindTable:
			if v.Type() != value.TypeObject {
				return errors.New(errors.PhaseLink, errors.KindTypeMismatch).
					Path(imp.Module, imp.Name).
					Detail("table import must be an object, got %s", v.Type()).
					Build()
			}
		}
	}
	return nil
}

// importFunc resolves the function import at funcIndex. checkImports has
// already validated presence and callability.
func importFunc(mod *wasm.Module, imports *value.Object, funcIndex uint32) *value.Function {
	for _, imp := range mod.Imports {
		if imp.Kind == wasm.KindFunc && imp.Index == funcIndex {
			nsVal, _ := imports.Get(imp.Module)
			v, _ := nsVal.AsObject().Get(imp.Name)
			return v.AsFunction()
		}
	}
	return nil
}

func (inst *Instance) buildExports() error {
	exports := value.NewObject(nil)
	for _, exp := range inst.module.Exports {
		var v value.Value
		switch exp.Kind {
		case wasm.KindFunc:
			fn, err := inst.wrapFunction(exp)
			if err != nil {
				return err
			}
			inst.funcs = append(inst.funcs, fn)
			v = value.FunctionValue(fn)
		case wasm.KindMemory:
			if inst.memory == nil {
				return errors.InvalidWasm("export %q references a memory the module does not declare", exp.Name)
			}
			v = value.BufferValue(&value.ArrayBuffer{Data: inst.memory})
		case wasm.KindGlobal:
			if int(exp.Index) >= len(inst.globals) {
				return errors.InvalidWasm("export %q references global %d of %d", exp.Name, exp.Index, len(inst.globals))
			}
			v = value.Number(inst.globals[exp.Index])
		case wasm.KindTable:
			// No call-indirection surface yet; tables export as bare objects.
			v = value.ObjectValue(value.NewObject(nil))
		}
		if err := exports.Set(exp.Name, v); err != nil {
			return err
		}
	}
	inst.exports = exports
	return nil
}

// wrapFunction builds the Function value for a function export. The
// wrapper dispatches into the executor, converting arguments to numbers
// on the way in and the first result to a Number on the way out.
func (inst *Instance) wrapFunction(exp wasm.Export) (*value.Function, error) {
	ft, err := inst.funcType(exp.Index)
	if err != nil {
		return nil, err
	}
	name := exp.Name
	arity := len(ft.Params)
	fn := value.NewNative(name, arity, func(_ value.Ctx, args []value.Value) (value.Value, error) {
		if inst.closed {
			return value.Undefined(), errors.New(errors.PhaseLink, errors.KindNotInitialized).
				Detail("instance is closed").Build()
		}
		if inst.exec == nil {
			return value.Undefined(), errors.Unsupported(errors.PhaseLink, "calling a wasm export without an execution backend")
		}
		raw := make([]float64, len(args))
		for i, a := range args {
			if !a.IsNumber() {
				return value.Undefined(), errors.New(errors.PhaseExecute, errors.KindTypeMismatch).
					Detail("wasm call %q: argument %d must be a number, got %s", name, i, a.Type()).
					Build()
			}
			raw[i] = a.AsNumber()
		}
		results, err := inst.exec.Call(context.Background(), name, raw)
		if err != nil {
			return value.Undefined(), err
		}
		if len(results) == 0 {
			return value.Undefined(), nil
		}
		return value.Number(results[0]), nil
	})
	return fn, nil
}

// funcType returns the signature for the function at index in the
// combined import+local function index space.
func (inst *Instance) funcType(index uint32) (wasm.FuncType, error) {
	mod := inst.module
	numImported := uint32(0)
	for _, imp := range mod.Imports {
		if imp.Kind == wasm.KindFunc {
			if imp.Index == index {
				if int(imp.TypeIndex) >= len(mod.Types) {
					return wasm.FuncType{}, errors.InvalidWasm("import %q.%q references type %d of %d",
						imp.Module, imp.Name, imp.TypeIndex, len(mod.Types))
				}
				return mod.Types[imp.TypeIndex], nil
			}
			numImported++
		}
	}
	local := int(index) - int(numImported)
	if local < 0 || local >= len(mod.Funcs) {
		return wasm.FuncType{}, errors.InvalidWasm("function index %d out of range", index)
	}
	return mod.Types[mod.Funcs[local].TypeIndex], nil
}

// Exports returns the instance's export object.
func (inst *Instance) Exports() *value.Object {
	return inst.exports
}

// Export looks up a single export by name.
func (inst *Instance) Export(name string) (value.Value, error) {
	if inst.exports == nil {
		return value.Undefined(), errors.New(errors.PhaseLink, errors.KindNotInitialized).
			Detail("instance is closed").Build()
	}
	v, ok := inst.exports.GetOwn(name)
	if !ok {
		return value.Undefined(), errors.ExportNotFound(name)
	}
	return v, nil
}

// Memory exposes the instance's private linear memory. Mutations are
// visible through memory exports of this instance only.
func (inst *Instance) Memory() []byte {
	return inst.memory
}

// Global returns the instance's value for global index i.
func (inst *Instance) Global(i int) (float64, bool) {
	if i < 0 || i >= len(inst.globals) {
		return 0, false
	}
	return inst.globals[i], true
}

// Close tears the instance down. Owned resources go before the export
// object: the backend is shut down and every wrapped export Function is
// invalidated first, so a stale Function held by a caller fails cleanly
// instead of touching freed state. Close is idempotent.
func (inst *Instance) Close(ctx context.Context) error {
	if inst.closed {
		return nil
	}
	inst.closed = true

	var firstErr error
	if inst.exec != nil {
		if err := inst.exec.Close(ctx); err != nil {
			firstErr = err
		}
		inst.exec = nil
	}
	for _, fn := range inst.funcs {
		fn.Native = closedFunction(fn.Name)
	}
	inst.funcs = nil
	inst.memory = nil
	inst.globals = nil
	inst.exports = nil

	Logger().Debug("instance closed", zap.String("module", inst.module.Name))
	return firstErr
}

func closedFunction(name string) value.NativeFunc {
	return func(_ value.Ctx, _ []value.Value) (value.Value, error) {
		return value.Undefined(), errors.New(errors.PhaseLink, errors.KindNotInitialized).
			Detail("call to %q on a closed instance", name).Build()
	}
}
