package wasm

// Module is a parsed, immutable wasm binary. A Module carries no execution
// state: it may back any number of instances concurrently because nothing
// mutates it after parsing.
type Module struct {
	// Name is the module name from the custom "name" section, when present.
	Name string

	Types   []FuncType
	Imports []Import
	Funcs   []Function
	Globals []Global
	Exports []Export

	// Memory is the optional single linear memory declaration.
	Memory *Memory

	// Raw is the original binary, retained for execution backends that
	// compile the module themselves.
	Raw []byte

	exportIndex map[string]int
}

// FuncType is a function signature.
type FuncType struct {
	Params  []ValType
	Results []ValType
}

// Import is a declared external dependency, resolved at instantiation
// against the host import object by (Module, Name).
type Import struct {
	Module string
	Name   string
	Kind   ExternKind
	// Index is auto-assigned per kind in declaration order.
	Index uint32
	// TypeIndex is the signature index for function imports.
	TypeIndex uint32
}

// Function pairs a signature index with its raw body from the code section.
// Bodies are matched to declarations positionally.
type Function struct {
	TypeIndex uint32
	Body      []byte
}

// Global is a declared global with its const-expression initial value.
type Global struct {
	Type    ValType
	Mutable bool
	// Value holds the initializer converted to float64. For i64 globals the
	// conversion can lose precision past 2^53; the value-model bridge is
	// number-tagged either way.
	Value float64
}

// Export is an externally visible item.
type Export struct {
	Name  string
	Kind  ExternKind
	Index uint32
}

// Memory is the single linear memory declaration. Data is the zero-filled
// initial contents, MinPages*PageSize long.
type Memory struct {
	MinPages uint32
	MaxPages *uint32
	Data     []byte
}

// ExportNamed looks up an export by name.
func (m *Module) ExportNamed(name string) (Export, bool) {
	i, ok := m.exportIndex[name]
	if !ok {
		return Export{}, false
	}
	return m.Exports[i], true
}

// NumFunctions returns the count of locally declared functions.
func (m *Module) NumFunctions() int { return len(m.Funcs) }

// NumImports returns the count of declared imports.
func (m *Module) NumImports() int { return len(m.Imports) }

// NumExports returns the count of declared exports.
func (m *Module) NumExports() int { return len(m.Exports) }

// NumGlobals returns the count of declared globals.
func (m *Module) NumGlobals() int { return len(m.Globals) }
