package linker

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/lumabrowser/script-engine/errors"
	"github.com/lumabrowser/script-engine/value"
	"github.com/lumabrowser/script-engine/wasm"
)

// wazeroExecutor runs function exports on a wazero runtime compiled from
// the module's original bytes.
type wazeroExecutor struct {
	runtime wazero.Runtime
	mod     api.Module
}

// NewWazeroExecutor compiles mod.Raw with wazero and instantiates it,
// bridging each function import to the matching Function in the import
// object. Imported functions must be native; a scripted function cannot
// be re-entered from inside a wasm call.
//
// callCtx is handed to host callbacks; pass the engine's call context so
// host functions see the live global object.
func NewWazeroExecutor(ctx context.Context, mod *wasm.Module, imports *value.Object, callCtx value.Ctx) (Executor, error) {
	if len(mod.Raw) == 0 {
		return nil, errors.NotInitialized(errors.PhaseLink, "module bytes")
	}

	r := wazero.NewRuntime(ctx)
	compiled, err := r.CompileModule(ctx, mod.Raw)
	if err != nil {
		r.Close(ctx)
		return nil, errors.Wrap(errors.PhaseLink, errors.KindInvalidWasm, err, "compile module")
	}

	if err := instantiateHostModules(ctx, r, mod, imports, callCtx); err != nil {
		r.Close(ctx)
		return nil, err
	}

	instance, err := r.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName(mod.Name))
	if err != nil {
		r.Close(ctx)
		return nil, errors.Wrap(errors.PhaseLink, errors.KindInvalidWasm, err, "instantiate module")
	}

	return &wazeroExecutor{runtime: r, mod: instance}, nil
}

// instantiateHostModules builds one wazero host module per import module
// name, exporting a bridge for every imported function.
func instantiateHostModules(ctx context.Context, r wazero.Runtime, mod *wasm.Module, imports *value.Object, callCtx value.Ctx) error {
	byModule := make(map[string][]wasm.Import)
	var order []string
	for _, imp := range mod.Imports {
		if imp.Kind != wasm.KindFunc {
			continue
		}
		if _, seen := byModule[imp.Module]; !seen {
			order = append(order, imp.Module)
		}
		byModule[imp.Module] = append(byModule[imp.Module], imp)
	}

	for _, modName := range order {
		builder := r.NewHostModuleBuilder(modName)
		for _, imp := range byModule[modName] {
			if int(imp.TypeIndex) >= len(mod.Types) {
				return errors.InvalidWasm("import %q.%q references type %d of %d",
					imp.Module, imp.Name, imp.TypeIndex, len(mod.Types))
			}
			ft := mod.Types[imp.TypeIndex]
			fn := importFunc(mod, imports, imp.Index)
			if fn == nil || !fn.IsNative() {
				return errors.Unsupported(errors.PhaseLink, "scripted function as wasm import")
			}
			builder = builder.NewFunctionBuilder().
				WithGoModuleFunction(hostBridge(imp.Module, imp.Name, fn, ft, callCtx),
					valueTypes(ft.Params), valueTypes(ft.Results)).
				Export(imp.Name)
		}
		if _, err := builder.Instantiate(ctx); err != nil {
			return errors.Wrap(errors.PhaseLink, errors.KindInvalidWasm, err, "instantiate host module")
		}
	}
	return nil
}

// hostBridge adapts a native Function to wazero's stack calling
// convention. Host errors cannot propagate through the wasm frame, so
// they are logged and the results zeroed.
func hostBridge(module, name string, fn *value.Function, ft wasm.FuncType, callCtx value.Ctx) api.GoModuleFunc {
	return func(_ context.Context, _ api.Module, stack []uint64) {
		args := make([]value.Value, len(ft.Params))
		for i, t := range ft.Params {
			args[i] = value.Number(decodeScalar(t, stack[i]))
		}
		result, err := fn.Native(callCtx, args)
		if err != nil {
			Logger().Warn("host import failed",
				zap.String("module", module),
				zap.String("name", name),
				zap.Error(err))
			for i := range ft.Results {
				stack[i] = 0
			}
			return
		}
		if len(ft.Results) > 0 {
			out := 0.0
			if result.IsNumber() {
				out = result.AsNumber()
			}
			stack[0] = encodeScalar(ft.Results[0], out)
		}
	}
}

func (e *wazeroExecutor) Call(ctx context.Context, name string, args []float64) ([]float64, error) {
	fn := e.mod.ExportedFunction(name)
	if fn == nil {
		return nil, errors.ExportNotFound(name)
	}
	def := fn.Definition()
	params := def.ParamTypes()

	raw := make([]uint64, len(params))
	for i, t := range params {
		// Missing arguments default to zero, surplus ones are dropped.
		if i < len(args) {
			raw[i] = encodeRaw(t, args[i])
		}
	}

	results, err := fn.Call(ctx, raw...)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseRuntime, errors.KindInvalidData, err, "module trap")
	}

	out := make([]float64, len(results))
	for i, t := range def.ResultTypes() {
		if i < len(out) {
			out[i] = decodeRaw(t, results[i])
		}
	}
	return out, nil
}

func (e *wazeroExecutor) Close(ctx context.Context) error {
	return e.runtime.Close(ctx)
}

func valueTypes(ts []wasm.ValType) []api.ValueType {
	out := make([]api.ValueType, len(ts))
	for i, t := range ts {
		out[i] = toAPIType(t)
	}
	return out
}

func toAPIType(t wasm.ValType) api.ValueType {
	switch t {
	case wasm.ValI32:
		return api.ValueTypeI32
	case wasm.ValI64:
		return api.ValueTypeI64
	case wasm.ValF32:
		return api.ValueTypeF32
	default:
		return api.ValueTypeF64
	}
}

func encodeScalar(t wasm.ValType, f float64) uint64 {
	return encodeRaw(toAPIType(t), f)
}

func decodeScalar(t wasm.ValType, raw uint64) float64 {
	return decodeRaw(toAPIType(t), raw)
}

func encodeRaw(t api.ValueType, f float64) uint64 {
	switch t {
	case api.ValueTypeI32:
		return api.EncodeI32(int32(f))
	case api.ValueTypeI64:
		return api.EncodeI64(int64(f))
	case api.ValueTypeF32:
		return api.EncodeF32(float32(f))
	default:
		return api.EncodeF64(f)
	}
}

func decodeRaw(t api.ValueType, raw uint64) float64 {
	switch t {
	case api.ValueTypeI32:
		return float64(api.DecodeI32(raw))
	case api.ValueTypeI64:
		return float64(int64(raw))
	case api.ValueTypeF32:
		return float64(api.DecodeF32(raw))
	default:
		return api.DecodeF64(raw)
	}
}
