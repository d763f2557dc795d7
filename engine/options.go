package engine

import (
	"io"
	"os"
	"time"
)

// Options is the engine's static configuration record. Several knobs are
// reserved: they are carried and validated but drive no behavior in this
// core yet, and say so in their doc comment.
type Options struct {
	// HeapLimit caps script heap usage in bytes. Reserved: allocation
	// accounting is not implemented, the value is stored only.
	HeapLimit uint64

	// GCInterval is the intended automatic collection period. Reserved:
	// CollectGarbage only updates counters, nothing schedules it.
	GCInterval time.Duration

	// EnableJIT requests tiered compilation. Reserved: only the bytecode
	// interpreter exists.
	EnableJIT bool

	// WorkerCount sizes a script worker pool. Reserved: execution is
	// single-threaded per Context.
	WorkerCount int

	// EnableWasm gates CompileWasm and InstantiateWasm.
	EnableWasm bool

	// EnableWasmExec attaches a wazero execution backend to instances
	// created through InstantiateWasm, making function exports callable.
	EnableWasmExec bool

	// ExecutionTimeout bounds a single ExecuteScript call. Zero means
	// no deadline.
	ExecutionTimeout time.Duration

	// Sandbox and EnforceCSP are reserved for the surrounding browser's
	// security layers; no code path in this core consults them.
	Sandbox    bool
	EnforceCSP bool

	// Stdout receives output from the print builtin. Defaults to
	// os.Stdout.
	Stdout io.Writer
}

// DefaultOptions returns the configuration Default() runs with.
func DefaultOptions() Options {
	return Options{
		HeapLimit:   256 << 20,
		GCInterval:  30 * time.Second,
		WorkerCount: 1,
		EnableWasm:  true,
		Stdout:      os.Stdout,
	}
}
