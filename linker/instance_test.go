package linker_test

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/lumabrowser/script-engine/errors"
	"github.com/lumabrowser/script-engine/linker"
	"github.com/lumabrowser/script-engine/value"
	"github.com/lumabrowser/script-engine/wasm"
)

func kindIs(err error, phase errors.Phase, kind errors.Kind) bool {
	return stderrors.Is(err, &errors.Error{Phase: phase, Kind: kind})
}

// memoryModule builds a module exporting one page of memory and a global.
func memoryModule(t *testing.T) *wasm.Module {
	t.Helper()
	src := &wasm.Module{
		Globals: []wasm.Global{{Type: wasm.ValI32, Value: 7}},
		Exports: []wasm.Export{
			{Name: "mem", Kind: wasm.KindMemory, Index: 0},
			{Name: "answer", Kind: wasm.KindGlobal, Index: 0},
			{Name: "tab", Kind: wasm.KindTable, Index: 0},
		},
		Memory: &wasm.Memory{MinPages: 1},
	}
	m, err := wasm.ParseModule(src.Encode())
	if err != nil {
		t.Fatalf("ParseModule: %v", err)
	}
	return m
}

func TestInstanceMemoryIndependence(t *testing.T) {
	ctx := context.Background()
	mod := memoryModule(t)

	a, err := linker.Instantiate(ctx, mod, nil)
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}
	b, err := linker.Instantiate(ctx, mod, nil)
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}

	a.Memory()[0] = 0xFF
	if b.Memory()[0] != 0 {
		t.Error("mutating one instance's memory leaked into another")
	}
	if mod.Memory.Data[0] != 0 {
		t.Error("mutating instance memory leaked into the module")
	}
}

func TestInstanceExportBridge(t *testing.T) {
	ctx := context.Background()
	inst, err := linker.Instantiate(ctx, memoryModule(t), nil)
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}

	mem, err := inst.Export("mem")
	if err != nil {
		t.Fatalf("Export(mem): %v", err)
	}
	if mem.Type() != value.TypeArrayBuffer {
		t.Fatalf("mem export type = %s, want arraybuffer", mem.Type())
	}
	// The buffer aliases instance memory, it is not a copy.
	inst.Memory()[3] = 42
	if mem.AsBuffer().Data[3] != 42 {
		t.Error("memory export does not alias instance memory")
	}

	answer, err := inst.Export("answer")
	if err != nil {
		t.Fatalf("Export(answer): %v", err)
	}
	if !answer.IsNumber() || answer.AsNumber() != 7 {
		t.Errorf("answer = %s, want Number(7)", answer.Inspect())
	}

	tab, err := inst.Export("tab")
	if err != nil {
		t.Fatalf("Export(tab): %v", err)
	}
	if tab.Type() != value.TypeObject {
		t.Errorf("tab export type = %s, want object", tab.Type())
	}

	if _, err := inst.Export("missing"); !kindIs(err, errors.PhaseLink, errors.KindExportNotFound) {
		t.Errorf("expected export_not_found, got %v", err)
	}
}

func TestFunctionExportWithoutBackend(t *testing.T) {
	src := &wasm.Module{
		Types: []wasm.FuncType{
			{Params: []wasm.ValType{wasm.ValI32, wasm.ValI32}, Results: []wasm.ValType{wasm.ValI32}},
		},
		Funcs: []wasm.Function{
			{TypeIndex: 0, Body: []byte{0x00, 0x20, 0x00, 0x20, 0x01, 0x6A, 0x0B}},
		},
		Exports: []wasm.Export{{Name: "add", Kind: wasm.KindFunc, Index: 0}},
	}
	mod, err := wasm.ParseModule(src.Encode())
	if err != nil {
		t.Fatalf("ParseModule: %v", err)
	}

	inst, err := linker.Instantiate(context.Background(), mod, nil)
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}

	add, err := inst.Export("add")
	if err != nil {
		t.Fatalf("Export(add): %v", err)
	}
	if !add.IsCallable() {
		t.Fatal("function export is not callable")
	}
	if got := add.AsFunction().Arity; got != 2 {
		t.Errorf("arity = %d, want 2", got)
	}

	_, err = add.AsFunction().Native(nil, []value.Value{value.Number(1), value.Number(2)})
	if !kindIs(err, errors.PhaseLink, errors.KindUnsupported) {
		t.Errorf("expected unsupported error without a backend, got %v", err)
	}
}

func TestImportResolution(t *testing.T) {
	src := &wasm.Module{
		Types: []wasm.FuncType{
			{Params: []wasm.ValType{wasm.ValI32}, Results: []wasm.ValType{wasm.ValI32}},
		},
		Imports: []wasm.Import{
			{Module: "env", Name: "inc", Kind: wasm.KindFunc, TypeIndex: 0},
		},
	}
	mod, err := wasm.ParseModule(src.Encode())
	if err != nil {
		t.Fatalf("ParseModule: %v", err)
	}
	ctx := context.Background()

	if _, err := linker.Instantiate(ctx, mod, nil); !kindIs(err, errors.PhaseLink, errors.KindNotFound) {
		t.Errorf("missing import object: expected not_found, got %v", err)
	}

	empty := value.NewObject(nil)
	if _, err := linker.Instantiate(ctx, mod, empty); !kindIs(err, errors.PhaseLink, errors.KindNotFound) {
		t.Errorf("missing module namespace: expected not_found, got %v", err)
	}

	wrong := value.NewObject(nil)
	env := value.NewObject(nil)
	env.Set("inc", value.Number(3))
	wrong.Set("env", value.ObjectValue(env))
	if _, err := linker.Instantiate(ctx, mod, wrong); !kindIs(err, errors.PhaseLink, errors.KindNotCallable) {
		t.Errorf("non-callable import: expected not_callable, got %v", err)
	}

	good := value.NewObject(nil)
	envOK := value.NewObject(nil)
	envOK.Set("inc", value.FunctionValue(value.NewNative("inc", 1, func(_ value.Ctx, args []value.Value) (value.Value, error) {
		return value.Number(args[0].AsNumber() + 1), nil
	})))
	good.Set("env", value.ObjectValue(envOK))
	if _, err := linker.Instantiate(ctx, mod, good); err != nil {
		t.Errorf("satisfied import: %v", err)
	}
}

func TestInstanceClose(t *testing.T) {
	ctx := context.Background()
	src := &wasm.Module{
		Types:   []wasm.FuncType{{}},
		Funcs:   []wasm.Function{{TypeIndex: 0}},
		Exports: []wasm.Export{{Name: "run", Kind: wasm.KindFunc, Index: 0}},
	}
	mod, err := wasm.ParseModule(src.Encode())
	if err != nil {
		t.Fatalf("ParseModule: %v", err)
	}
	inst, err := linker.Instantiate(ctx, mod, nil)
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}
	run, err := inst.Export("run")
	if err != nil {
		t.Fatalf("Export(run): %v", err)
	}

	if err := inst.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := inst.Close(ctx); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	// A Function held across Close must fail cleanly, not touch freed state.
	_, err = run.AsFunction().Native(nil, nil)
	if !kindIs(err, errors.PhaseLink, errors.KindNotInitialized) {
		t.Errorf("call after close: expected not_initialized, got %v", err)
	}
	if _, err := inst.Export("run"); !kindIs(err, errors.PhaseLink, errors.KindNotInitialized) {
		t.Errorf("export after close: expected not_initialized, got %v", err)
	}
}

func TestWazeroExecutorCall(t *testing.T) {
	ctx := context.Background()
	src := &wasm.Module{
		Types: []wasm.FuncType{
			{Params: []wasm.ValType{wasm.ValI32, wasm.ValI32}, Results: []wasm.ValType{wasm.ValI32}},
		},
		Funcs: []wasm.Function{
			{TypeIndex: 0, Body: []byte{0x00, 0x20, 0x00, 0x20, 0x01, 0x6A, 0x0B}},
		},
		Exports: []wasm.Export{{Name: "add", Kind: wasm.KindFunc, Index: 0}},
	}
	mod, err := wasm.ParseModule(src.Encode())
	if err != nil {
		t.Fatalf("ParseModule: %v", err)
	}

	exec, err := linker.NewWazeroExecutor(ctx, mod, nil, nil)
	if err != nil {
		t.Fatalf("NewWazeroExecutor: %v", err)
	}
	inst, err := linker.InstantiateWithExecutor(ctx, mod, nil, exec)
	if err != nil {
		t.Fatalf("InstantiateWithExecutor: %v", err)
	}
	defer inst.Close(ctx)

	add, err := inst.Export("add")
	if err != nil {
		t.Fatalf("Export(add): %v", err)
	}
	result, err := add.AsFunction().Native(nil, []value.Value{value.Number(40), value.Number(2)})
	if err != nil {
		t.Fatalf("call add: %v", err)
	}
	if !result.IsNumber() || result.AsNumber() != 42 {
		t.Errorf("add(40, 2) = %s, want Number(42)", result.Inspect())
	}
}

func TestWazeroExecutorHostImport(t *testing.T) {
	ctx := context.Background()
	src := &wasm.Module{
		Types: []wasm.FuncType{
			{Params: []wasm.ValType{wasm.ValI32}, Results: []wasm.ValType{wasm.ValI32}},
		},
		Imports: []wasm.Import{
			{Module: "env", Name: "inc", Kind: wasm.KindFunc, TypeIndex: 0},
		},
		Funcs: []wasm.Function{
			// call env.inc with the argument, return its result
			{TypeIndex: 0, Body: []byte{0x00, 0x20, 0x00, 0x10, 0x00, 0x0B}},
		},
		Exports: []wasm.Export{{Name: "bump", Kind: wasm.KindFunc, Index: 1}},
	}
	mod, err := wasm.ParseModule(src.Encode())
	if err != nil {
		t.Fatalf("ParseModule: %v", err)
	}

	imports := value.NewObject(nil)
	env := value.NewObject(nil)
	env.Set("inc", value.FunctionValue(value.NewNative("inc", 1, func(_ value.Ctx, args []value.Value) (value.Value, error) {
		return value.Number(args[0].AsNumber() + 1), nil
	})))
	imports.Set("env", value.ObjectValue(env))

	exec, err := linker.NewWazeroExecutor(ctx, mod, imports, nil)
	if err != nil {
		t.Fatalf("NewWazeroExecutor: %v", err)
	}
	inst, err := linker.InstantiateWithExecutor(ctx, mod, imports, exec)
	if err != nil {
		t.Fatalf("InstantiateWithExecutor: %v", err)
	}
	defer inst.Close(ctx)

	bump, err := inst.Export("bump")
	if err != nil {
		t.Fatalf("Export(bump): %v", err)
	}
	result, err := bump.AsFunction().Native(nil, []value.Value{value.Number(9)})
	if err != nil {
		t.Fatalf("call bump: %v", err)
	}
	if !result.IsNumber() || result.AsNumber() != 10 {
		t.Errorf("bump(9) = %s, want Number(10)", result.Inspect())
	}
}
