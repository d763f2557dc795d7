package errors

import (
	"fmt"
	"strings"
)

// Phase indicates which pipeline stage produced the error
type Phase string

const (
	PhaseParse   Phase = "parse"   // source text to AST
	PhaseCompile Phase = "compile" // AST to bytecode
	PhaseExecute Phase = "execute" // bytecode execution
	PhaseDecode  Phase = "decode"  // wasm binary parsing
	PhaseLink    Phase = "link"    // module instantiation
	PhaseRuntime Phase = "runtime" // engine lifecycle
	PhaseHost    Phase = "host"    // native function registration
)

// Kind categorizes the error
type Kind string

const (
	KindSyntax         Kind = "syntax"
	KindNotCallable    Kind = "not_callable"
	KindNotExtensible  Kind = "not_extensible"
	KindExportNotFound Kind = "export_not_found"
	KindUnknownOpcode  Kind = "unknown_opcode"
	KindWasmDisabled   Kind = "wasm_disabled"
	KindInvalidWasm    Kind = "invalid_wasm"
	KindOutOfMemory    Kind = "out_of_memory"
	KindTimeout        Kind = "timeout"
	KindTypeMismatch   Kind = "type_mismatch"
	KindOverflow       Kind = "overflow"
	KindNotFound       Kind = "not_found"
	KindInvalidData    Kind = "invalid_data"
	KindUnsupported    Kind = "unsupported"
	KindNotInitialized Kind = "not_initialized"

	// Reserved for the integrating subsystems (content security,
	// networking). Nothing in this core raises them.
	KindSecurity Kind = "security"
	KindNetwork  Kind = "network"
	KindCORS     Kind = "cors"
	KindCSP      Kind = "csp"
)

// Error is the structured error type used throughout the engine
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
	Path   []string
	Line   int
	Col    int
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Line > 0 {
		fmt.Fprintf(&b, " at %d:%d", e.Line, e.Col)
	} else if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the item path (export name, import pair, section name)
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Pos sets the source position
func (b *Builder) Pos(line, col int) *Builder {
	b.err.Line = line
	b.err.Col = col
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Syntax creates a parse error at a source position
func Syntax(line, col int, detail string, args ...any) *Error {
	if len(args) > 0 {
		detail = fmt.Sprintf(detail, args...)
	}
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindSyntax,
		Line:   line,
		Col:    col,
		Detail: detail,
	}
}

// NotCallable creates an error for invoking a non-function value
func NotCallable(phase Phase, typeName string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotCallable,
		Detail: fmt.Sprintf("value of type %s is not callable", typeName),
	}
}

// NotExtensible creates an error for inserting into a frozen object
func NotExtensible(key string) *Error {
	return &Error{
		Phase:  PhaseExecute,
		Kind:   KindNotExtensible,
		Detail: fmt.Sprintf("cannot add property %q to a non-extensible object", key),
	}
}

// ExportNotFound creates an error for a missing module export
func ExportNotFound(name string) *Error {
	return &Error{
		Phase:  PhaseLink,
		Kind:   KindExportNotFound,
		Path:   []string{name},
		Detail: fmt.Sprintf("export %q not found", name),
	}
}

// UnknownOpcode creates a fatal execution error for an unrecognized opcode
func UnknownOpcode(op byte, offset int) *Error {
	return &Error{
		Phase:  PhaseExecute,
		Kind:   KindUnknownOpcode,
		Detail: fmt.Sprintf("unknown opcode 0x%02x at offset %d", op, offset),
		Value:  op,
	}
}

// WasmDisabled creates an error for wasm compilation with the feature off
func WasmDisabled() *Error {
	return &Error{
		Phase:  PhaseRuntime,
		Kind:   KindWasmDisabled,
		Detail: "wasm support is disabled in engine options",
	}
}

// InvalidWasm creates a wasm binary decoding error
func InvalidWasm(detail string, args ...any) *Error {
	if len(args) > 0 {
		detail = fmt.Sprintf(detail, args...)
	}
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindInvalidWasm,
		Detail: detail,
	}
}

// TypeMismatch creates an operand type error
func TypeMismatch(phase Phase, op, got string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		Detail: fmt.Sprintf("%s requires number operands, got %s", op, got),
	}
}

// Timeout creates an execution deadline error
func Timeout(detail string) *Error {
	return &Error{
		Phase:  PhaseExecute,
		Kind:   KindTimeout,
		Detail: detail,
	}
}

// Overflow creates an overflow error
func Overflow(phase Phase, what string, limit int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOverflow,
		Detail: fmt.Sprintf("%s exceeds limit of %d", what, limit),
	}
}

// OutOfMemory creates an allocation failure error
func OutOfMemory(phase Phase, size uint64) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfMemory,
		Detail: fmt.Sprintf("failed to allocate %d bytes", size),
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Detail: detail,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// NotInitialized creates a not-initialized error for a missing component
func NotInitialized(phase Phase, component string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotInitialized,
		Detail: fmt.Sprintf("%s not initialized", component),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
