package wasm

// WebAssembly binary format magic number and version.
const (
	// Magic is the binary magic number ("\0asm" in little-endian).
	Magic uint32 = 0x6D736100

	// Version is the supported binary format version.
	Version uint32 = 0x01
)

// PageSize is the linear memory page granularity in bytes.
const PageSize = 65536

// Section IDs define the binary identifiers for each module section.
const (
	SectionCustom   byte = 0  // Custom section (skipped except for the name section)
	SectionType     byte = 1  // Function signatures
	SectionImport   byte = 2  // Imports
	SectionFunction byte = 3  // Per-function type indices
	SectionTable    byte = 4  // Tables (unsupported, skipped)
	SectionMemory   byte = 5  // Linear memory limits
	SectionGlobal   byte = 6  // Globals with const initializers
	SectionExport   byte = 7  // Exports
	SectionStart    byte = 8  // Start function (unsupported, skipped)
	SectionElement  byte = 9  // Element segments (unsupported, skipped)
	SectionCode     byte = 10 // Function bodies
	SectionData     byte = 11 // Data segments (unsupported, skipped)
)

// ExternKind identifies the kind of an imported or exported item.
type ExternKind byte

const (
	KindFunc   ExternKind = 0
	KindTable  ExternKind = 1
	KindMemory ExternKind = 2
	KindGlobal ExternKind = 3
)

// String returns the kind name used in the text format.
func (k ExternKind) String() string {
	switch k {
	case KindFunc:
		return "func"
	case KindTable:
		return "table"
	case KindMemory:
		return "memory"
	case KindGlobal:
		return "global"
	default:
		return "unknown"
	}
}

// ValType is a wasm value type encoding.
type ValType byte

const (
	ValI32 ValType = 0x7F
	ValI64 ValType = 0x7E
	ValF32 ValType = 0x7D
	ValF64 ValType = 0x7C
)

// String returns the type name used in the text format.
func (v ValType) String() string {
	switch v {
	case ValI32:
		return "i32"
	case ValI64:
		return "i64"
	case ValF32:
		return "f32"
	case ValF64:
		return "f64"
	default:
		return "unknown"
	}
}

// Const-expression opcodes recognized in global initializers.
const (
	opI32Const byte = 0x41
	opI64Const byte = 0x42
	opF32Const byte = 0x43
	opF64Const byte = 0x44
	opEnd      byte = 0x0B
)
