package engine_test

import (
	"bytes"
	"context"
	stderrors "errors"
	"testing"

	"github.com/lumabrowser/script-engine/engine"
	"github.com/lumabrowser/script-engine/errors"
	"github.com/lumabrowser/script-engine/value"
	"github.com/lumabrowser/script-engine/wasm"
)

func kindIs(err error, phase errors.Phase, kind errors.Kind) bool {
	return stderrors.Is(err, &errors.Error{Phase: phase, Kind: kind})
}

func newEngine(t *testing.T) *engine.Engine {
	t.Helper()
	e := engine.New(engine.Options{EnableWasm: true})
	if err := e.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return e
}

func TestInitializeIdempotent(t *testing.T) {
	e := newEngine(t)
	if err := e.Initialize(); err != nil {
		t.Fatalf("second Initialize: %v", err)
	}
	if _, err := e.ExecuteScript([]byte("x = 1;"), "boot"); err == nil {
		// assignment is not in the grammar; a syntax error is expected
		t.Fatal("expected syntax error")
	}
	if err := e.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if err := e.Shutdown(); err != nil {
		t.Fatalf("second Shutdown: %v", err)
	}
}

func TestExecuteScriptPipeline(t *testing.T) {
	e := newEngine(t)
	result, err := e.ExecuteScript([]byte("1 + 2 * 3;"), "inline")
	if err != nil {
		t.Fatalf("ExecuteScript: %v", err)
	}
	// One precedence level, left associative: (1 + 2) * 3.
	if !result.IsNumber() || result.AsNumber() != 9 {
		t.Errorf("result = %s, want Number(9)", result.Inspect())
	}
}

func TestExecuteScriptTopLevelReturn(t *testing.T) {
	e := newEngine(t)
	result, err := e.ExecuteScript([]byte("return 5;"), "inline")
	if err != nil {
		t.Fatalf("ExecuteScript: %v", err)
	}
	if !result.IsNumber() || result.AsNumber() != 5 {
		t.Errorf("result = %s, want Number(5)", result.Inspect())
	}
}

func TestExecuteScriptSyntaxError(t *testing.T) {
	e := newEngine(t)
	srcs := []string{
		"function (",
		"\"unterminated",
		"1 + ;",
	}
	for _, src := range srcs {
		_, err := e.ExecuteScript([]byte(src), "bad")
		if !kindIs(err, errors.PhaseParse, errors.KindSyntax) {
			t.Errorf("%q: expected syntax error, got %v", src, err)
		}
	}
}

func TestExecuteScriptNamesErrors(t *testing.T) {
	e := newEngine(t)
	_, err := e.ExecuteScript([]byte("1 +"), "startup.js")
	var se *errors.Error
	if !stderrors.As(err, &se) {
		t.Fatalf("expected structured error, got %v", err)
	}
	if len(se.Path) == 0 || se.Path[0] != "startup.js" {
		t.Errorf("error path = %v, want [startup.js]", se.Path)
	}
}

func TestExecuteScriptLazyInit(t *testing.T) {
	e := engine.New(engine.Options{})
	result, err := e.ExecuteScript([]byte("2 + 2;"), "")
	if err != nil {
		t.Fatalf("ExecuteScript: %v", err)
	}
	if result.AsNumber() != 4 {
		t.Errorf("result = %s, want Number(4)", result.Inspect())
	}
}

func TestRegisterNative(t *testing.T) {
	e := newEngine(t)
	err := e.RegisterNative("double", 1, func(_ value.Ctx, args []value.Value) (value.Value, error) {
		return value.Number(args[0].AsNumber() * 2), nil
	})
	if err != nil {
		t.Fatalf("RegisterNative: %v", err)
	}
	result, err := e.ExecuteScript([]byte("double(21);"), "")
	if err != nil {
		t.Fatalf("ExecuteScript: %v", err)
	}
	if result.AsNumber() != 42 {
		t.Errorf("double(21) = %s, want Number(42)", result.Inspect())
	}
}

func TestPrintBuiltin(t *testing.T) {
	var buf bytes.Buffer
	e := engine.New(engine.Options{Stdout: &buf})
	if _, err := e.ExecuteScript([]byte(`print("hello", 1 + 1);`), ""); err != nil {
		t.Fatalf("ExecuteScript: %v", err)
	}
	if got := buf.String(); got != "hello 2\n" {
		t.Errorf("print output = %q, want %q", got, "hello 2\n")
	}
}

func TestCompileWasmDisabled(t *testing.T) {
	e := engine.New(engine.Options{})
	_, err := e.CompileWasm([]byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00})
	if !kindIs(err, errors.PhaseRuntime, errors.KindWasmDisabled) {
		t.Errorf("expected wasm_disabled, got %v", err)
	}
}

func TestCompileWasmBadMagic(t *testing.T) {
	e := newEngine(t)
	_, err := e.CompileWasm([]byte{0xDE, 0xAD, 0xBE, 0xEF, 0x01, 0x00, 0x00, 0x00})
	if !kindIs(err, errors.PhaseDecode, errors.KindInvalidWasm) {
		t.Errorf("expected invalid_wasm, got %v", err)
	}
}

func TestCompileWasmEmptyModule(t *testing.T) {
	e := newEngine(t)
	m, err := e.CompileWasm([]byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00})
	if err != nil {
		t.Fatalf("CompileWasm: %v", err)
	}
	if m.NumFunctions() != 0 || m.NumExports() != 0 {
		t.Error("expected empty module")
	}
}

func TestInstantiateWasm(t *testing.T) {
	e := newEngine(t)
	src := &wasm.Module{
		Globals: []wasm.Global{{Type: wasm.ValF64, Value: 6.5}},
		Exports: []wasm.Export{{Name: "g", Kind: wasm.KindGlobal, Index: 0}},
	}
	mod, err := e.CompileWasm(src.Encode())
	if err != nil {
		t.Fatalf("CompileWasm: %v", err)
	}
	inst, err := e.InstantiateWasm(context.Background(), mod, nil)
	if err != nil {
		t.Fatalf("InstantiateWasm: %v", err)
	}
	defer inst.Close(context.Background())
	g, err := inst.Export("g")
	if err != nil {
		t.Fatalf("Export(g): %v", err)
	}
	if g.AsNumber() != 6.5 {
		t.Errorf("g = %s, want Number(6.5)", g.Inspect())
	}
}

func TestCollectGarbageCounts(t *testing.T) {
	e := newEngine(t)
	runs, _ := e.GCStats()
	if runs != 0 {
		t.Fatalf("initial gc runs = %d", runs)
	}
	e.CollectGarbage()
	e.CollectGarbage()
	runs, last := e.GCStats()
	if runs != 2 {
		t.Errorf("gc runs = %d, want 2", runs)
	}
	if last.IsZero() {
		t.Error("last gc timestamp not set")
	}
}

func TestDefaultSingleton(t *testing.T) {
	if engine.Default() != engine.Default() {
		t.Error("Default must return the same engine")
	}
}
