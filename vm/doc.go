// Package vm executes compiled bytecode against an operand stack and a
// single global object.
//
// The machine is a flat switch over the opcode byte, advancing the
// instruction pointer by each opcode's fixed operand width. Calls push a
// frame recording the return region, return offset and caller stack depth;
// Return pops one. Every function body executes in its own code region, so
// control transfer never shares an instruction array between functions.
//
// Execution is single-threaded and runs to completion with no suspension
// points. A per-context execution timeout, when set, is checked every 1024
// dispatched instructions and surfaces as a timeout error.
//
// Operand typing is strict: arithmetic and ordering opcodes require number
// operands and fail with a type-mismatch error otherwise. Equality compares
// any two values without coercion. An unrecognized opcode aborts execution
// with no partial result.
package vm
