package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/lumabrowser/script-engine/engine"
	"github.com/lumabrowser/script-engine/linker"
	"github.com/lumabrowser/script-engine/value"
)

func main() {
	var (
		expr        = flag.String("e", "", "Script expression to evaluate")
		scriptFile  = flag.String("script", "", "Path to script file")
		wasmFile    = flag.String("wasm", "", "Path to wasm module")
		callName    = flag.String("call", "", "Wasm export to call (with -wasm)")
		callArgs    = flag.String("args", "", "Comma-separated numeric arguments for -call")
		timeout     = flag.Duration("timeout", 0, "Per-script execution deadline (0 = none)")
		verbose     = flag.Bool("v", false, "Enable debug logging")
		interactive = flag.Bool("i", false, "Interactive REPL")
	)
	flag.Parse()

	if *verbose {
		log, err := zap.NewDevelopment()
		if err == nil {
			engine.SetLogger(log)
			linker.SetLogger(log)
		}
	}

	opts := engine.Options{
		EnableWasm:       true,
		EnableWasmExec:   true,
		ExecutionTimeout: *timeout,
		Stdout:           os.Stdout,
	}

	if err := run(opts, *expr, *scriptFile, *wasmFile, *callName, *callArgs, *interactive); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(opts engine.Options, expr, scriptFile, wasmFile, callName, callArgs string, interactive bool) error {
	switch {
	case interactive:
		return runInteractive(opts)
	case expr != "":
		return runScript(engine.New(opts), []byte(expr), "<expr>")
	case scriptFile != "":
		data, err := os.ReadFile(scriptFile)
		if err != nil {
			return fmt.Errorf("read script: %w", err)
		}
		return runScript(engine.New(opts), data, scriptFile)
	case wasmFile != "":
		return runWasm(engine.New(opts), wasmFile, callName, callArgs)
	default:
		// No inputs: a terminal gets the REPL, a pipe gets executed.
		if term.IsTerminal(int(os.Stdin.Fd())) {
			return runInteractive(opts)
		}
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		return runScript(engine.New(opts), data, "<stdin>")
	}
}

func runScript(eng *engine.Engine, source []byte, name string) error {
	result, err := eng.ExecuteScript(source, name)
	if err != nil {
		return err
	}
	if !result.IsUndefined() {
		fmt.Println(result.Inspect())
	}
	return nil
}

func runWasm(eng *engine.Engine, wasmFile, callName, callArgs string) error {
	ctx := context.Background()

	data, err := os.ReadFile(wasmFile)
	if err != nil {
		return fmt.Errorf("read module: %w", err)
	}
	mod, err := eng.CompileWasm(data)
	if err != nil {
		return err
	}

	name := mod.Name
	if name == "" {
		name = wasmFile
	}
	fmt.Printf("Module: %s\n", name)
	fmt.Printf("Types: %d  Imports: %d  Functions: %d  Globals: %d\n",
		len(mod.Types), mod.NumImports(), mod.NumFunctions(), mod.NumGlobals())
	if mod.Memory != nil {
		fmt.Printf("Memory: %d page(s)\n", mod.Memory.MinPages)
	}
	fmt.Println("\nExports:")
	for _, exp := range mod.Exports {
		fmt.Printf("  %-8s %s\n", exp.Kind, exp.Name)
	}

	if callName == "" {
		return nil
	}

	inst, err := eng.InstantiateWasm(ctx, mod, nil)
	if err != nil {
		return err
	}
	defer inst.Close(ctx)

	fn, err := inst.Export(callName)
	if err != nil {
		return err
	}
	if !fn.IsCallable() {
		return fmt.Errorf("export %q is a %s, not a function", callName, fn.Type())
	}

	args, err := parseArgs(callArgs)
	if err != nil {
		return err
	}
	start := time.Now()
	result, err := fn.AsFunction().Native(nil, args)
	if err != nil {
		return err
	}
	fmt.Printf("\n%s(%s) = %s (%s)\n", callName, callArgs, result.Inspect(), time.Since(start))
	return nil
}

func parseArgs(s string) ([]value.Value, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	args := make([]value.Value, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		args[i] = value.Number(f)
	}
	return args, nil
}
