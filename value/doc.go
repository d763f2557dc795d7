// Package value implements the tagged value and object model shared by the
// script pipeline and the wasm linker.
//
// A Value is a small struct: a type tag plus a payload. Booleans and numbers
// are stored inline; strings, objects, functions, arrays and buffers are
// heap references. Accessors trust the caller to have checked the tag first
// and do not self-validate — reading a payload under the wrong tag yields
// garbage, not an error. This unsafe-by-default contract keeps the hot VM
// paths free of redundant checks; coercion and type errors are the VM's
// responsibility, not this package's.
//
// Objects are insertion-ordered property maps with a non-owning prototype
// reference and an extensibility flag. Freezing an object disables new-key
// insertion; existing keys remain writable.
package value
