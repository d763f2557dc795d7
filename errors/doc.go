// Package errors provides structured error types for the script engine.
//
// Errors are categorized by Phase (which pipeline stage produced the error)
// and Kind (error category). The Error type includes context: a source
// position for parse errors, a path for link errors, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseParse, errors.KindSyntax).
//		Pos(line, col).
//		Detail("unterminated string literal").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Syntax(line, col, "unexpected token %q", tok)
//	err := errors.NotCallable(errors.PhaseExecute, "number")
//
// All errors implement the standard error interface and support errors.Is/As;
// Is matches on Phase and Kind so callers can test a category without
// reconstructing the message.
package errors
