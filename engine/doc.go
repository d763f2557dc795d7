// Package engine is the façade the rest of the browser talks to.
//
// An Engine owns one script Context and drives the full pipeline:
// ExecuteScript runs parse, compile and execute in order and returns the
// first failure from any stage untouched. CompileWasm decodes a binary
// module when the wasm feature flag is on, and InstantiateWasm links it
// into a live instance, optionally with an execution backend.
//
// Initialize and Shutdown are idempotent; both log a single lifecycle
// message at Info and otherwise stay out of the error path. Default
// returns a lazily constructed process-wide Engine for callers that do
// not manage their own.
package engine
