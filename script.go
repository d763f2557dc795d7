package scriptengine

import (
	"github.com/lumabrowser/script-engine/engine"
	"github.com/lumabrowser/script-engine/value"
)

// Run executes source on the process-wide default engine and returns the
// script's completion value. Globals persist across calls; use
// engine.New for isolated state.
func Run(source []byte) (value.Value, error) {
	return engine.Default().ExecuteScript(source, "")
}
