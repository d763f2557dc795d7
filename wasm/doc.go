// Package wasm decodes WebAssembly binary modules into the in-memory
// structures the linker instantiates.
//
// The decoder covers the sections the engine links against: types,
// imports, functions, memory, globals with constant initializers,
// exports, function bodies, and the name custom section. Sections the
// engine has no use for are skipped; a module carrying them still
// decodes, only the recognized sections populate the result.
//
// # Parsing
//
// Parse a module from binary:
//
//	data, _ := os.ReadFile("module.wasm")
//	module, err := wasm.ParseModule(data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Every structural rule is enforced during the single pass: the 8-byte
// header, per-section length accounting, index bounds, a matching
// function/code section count, and unique export names. A module that
// parses is safe to hand to the linker.
//
// # Encoding
//
// Encode renders a module back to binary. It covers the same subset the
// decoder reads and exists mainly for building fixtures:
//
//	encoded := module.Encode()
//	roundtrip, _ := wasm.ParseModule(encoded)
//
// # Module Structure
//
// A parsed module keeps the original bytes alongside the decoded view:
//
//	module.Types    []FuncType  // function signatures
//	module.Imports  []Import    // required external definitions
//	module.Funcs    []Function  // type index plus body bytes
//	module.Globals  []Global    // evaluated constant initializers
//	module.Exports  []Export    // name to (kind, index)
//	module.Memory   *Memory     // linear memory limits and backing
//	module.Raw      []byte      // the bytes ParseModule was given
//
// Raw lets an execution backend recompile the module without the
// decoder having to reproduce a byte-exact encoding.
package wasm
