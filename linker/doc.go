// Package linker turns decoded wasm modules into live instances.
//
// Instantiate resolves a module's declared imports against a host-supplied
// import object, copies linear memory and globals into the instance, and
// builds an export object whose entries live in the engine's value model:
// function exports become callable Function values, memory exports become
// ArrayBuffer values aliasing the instance's private memory, and global
// exports become Numbers.
//
// A Module is read-only and may back any number of instances; each instance
// owns a private copy of memory and globals, so mutating one never shows
// through another.
//
// Function exports only become callable when an execution backend is
// attached (see NewWazeroExecutor). Without one the export object still
// carries Function values, but calling them reports that execution is
// unavailable.
package linker
