// Package scriptengine is the script-execution core of a browser engine:
// a value model, a recursive-descent parser, a single-pass bytecode
// compiler, a stack virtual machine, and a WebAssembly-style binary
// module loader sharing the same value model.
//
// # Architecture Overview
//
// The module is organized into packages with distinct responsibilities:
//
//	scriptengine/        Root package with the Run convenience entry point
//	├── engine/          Facade: lifecycle, script pipeline, wasm gating
//	├── parser/          Lexer and recursive-descent parser producing an AST
//	├── compiler/        Single-pass AST to bytecode with a constant pool
//	├── vm/              Stack machine executing compiled programs
//	├── value/           Tagged values, objects, functions, arrays
//	├── wasm/            Binary module decoding and encoding
//	├── linker/          Module instantiation and import resolution
//	└── errors/          Structured error taxonomy shared by every stage
//
// # Quick Start
//
// Run a script against the process-wide default engine:
//
//	result, err := scriptengine.Run([]byte("1 + 2;"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Inspect()) // "3"
//
// Or hold your own engine for isolated globals and configuration:
//
//	eng := engine.New(engine.Options{EnableWasm: true})
//	defer eng.Shutdown()
//
//	eng.RegisterNative("now", 0, func(_ value.Ctx, _ []value.Value) (value.Value, error) {
//	    return value.Number(float64(time.Now().UnixMilli())), nil
//	})
//	result, err := eng.ExecuteScript([]byte("now();"), "clock.js")
//
// # Error Handling
//
// Every stage returns the first failure to its caller as a structured
// *errors.Error carrying the pipeline phase and an error kind; nothing
// is retried or swallowed. errors.Is matches on phase and kind, so
// callers can branch on the taxonomy without string matching.
//
// # Thread Safety
//
// An Engine runs scripts single-threaded; use one Engine per goroutine.
// A decoded wasm Module is read-only and may back many instances, each
// of which privately owns its memory.
package scriptengine
