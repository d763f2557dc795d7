package wasm

import (
	stdbinary "encoding/binary"

	"github.com/lumabrowser/script-engine/errors"
	"github.com/lumabrowser/script-engine/wasm/internal/binary"
)

// headerSize is the fixed magic+version prefix.
const headerSize = 8

// ParseModule parses a wasm binary module.
//
// Sections are length-prefixed; each section's consumed bytes must equal its
// declared length or parsing aborts. Unknown section ids are skipped for
// forward compatibility. A section whose declared length overruns the buffer
// fails immediately.
func ParseModule(data []byte) (*Module, error) {
	if len(data) < headerSize {
		return nil, errors.InvalidWasm("truncated header: %d bytes", len(data))
	}
	if stdbinary.LittleEndian.Uint32(data[0:4]) != Magic {
		return nil, errors.InvalidWasm("invalid magic number")
	}
	if v := stdbinary.LittleEndian.Uint32(data[4:8]); v != Version {
		return nil, errors.InvalidWasm("unsupported version %d", v)
	}

	m := &Module{Raw: data, exportIndex: make(map[string]int)}
	r := binary.NewReader(data[headerSize:])

	for r.Remaining() > 0 {
		id, err := r.ReadByte()
		if err != nil {
			return nil, errors.Wrap(errors.PhaseDecode, errors.KindInvalidWasm, err, "section id")
		}
		size, err := r.ReadU32()
		if err != nil {
			return nil, errors.Wrap(errors.PhaseDecode, errors.KindInvalidWasm, err, "section size")
		}
		if int(size) > r.Remaining() {
			return nil, errors.InvalidWasm("section %d declares %d bytes, %d remain", id, size, r.Remaining())
		}
		payload, err := r.ReadBytes(int(size))
		if err != nil {
			return nil, errors.Wrap(errors.PhaseDecode, errors.KindInvalidWasm, err, "section data")
		}

		sr := binary.NewReader(payload)
		switch id {
		case SectionCustom:
			// Best effort: pull the module name out of a "name" section,
			// ignore everything else.
			parseNameSection(sr, m)
			continue
		case SectionType:
			err = parseTypeSection(sr, m)
		case SectionImport:
			err = parseImportSection(sr, m)
		case SectionFunction:
			err = parseFunctionSection(sr, m)
		case SectionMemory:
			err = parseMemorySection(sr, m)
		case SectionGlobal:
			err = parseGlobalSection(sr, m)
		case SectionExport:
			err = parseExportSection(sr, m)
		case SectionCode:
			err = parseCodeSection(sr, m)
		default:
			// Unknown or unsupported ids skip their payload entirely.
			continue
		}
		if err != nil {
			return nil, err
		}
		if sr.Remaining() != 0 {
			return nil, errors.InvalidWasm("section %d consumed %d of %d declared bytes",
				id, sr.Position(), size)
		}
	}

	return m, nil
}

func parseTypeSection(r *binary.Reader, m *Module) error {
	count, err := r.ReadU32()
	if err != nil {
		return errors.Wrap(errors.PhaseDecode, errors.KindInvalidWasm, err, "type count")
	}
	m.Types = make([]FuncType, 0, count)
	for i := uint32(0); i < count; i++ {
		form, err := r.ReadByte()
		if err != nil {
			return errors.Wrap(errors.PhaseDecode, errors.KindInvalidWasm, err, "type form")
		}
		if form != 0x60 {
			return errors.InvalidWasm("type %d: expected functype (0x60), got 0x%02x", i, form)
		}
		params, err := readValTypes(r)
		if err != nil {
			return err
		}
		results, err := readValTypes(r)
		if err != nil {
			return err
		}
		m.Types = append(m.Types, FuncType{Params: params, Results: results})
	}
	return nil
}

func readValTypes(r *binary.Reader) ([]ValType, error) {
	count, err := r.ReadU32()
	if err != nil {
		return nil, errors.Wrap(errors.PhaseDecode, errors.KindInvalidWasm, err, "valtype count")
	}
	types := make([]ValType, 0, count)
	for i := uint32(0); i < count; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return nil, errors.Wrap(errors.PhaseDecode, errors.KindInvalidWasm, err, "valtype")
		}
		vt := ValType(b)
		switch vt {
		case ValI32, ValI64, ValF32, ValF64:
		default:
			return nil, errors.InvalidWasm("unsupported value type 0x%02x", b)
		}
		types = append(types, vt)
	}
	return types, nil
}

func parseImportSection(r *binary.Reader, m *Module) error {
	count, err := r.ReadU32()
	if err != nil {
		return errors.Wrap(errors.PhaseDecode, errors.KindInvalidWasm, err, "import count")
	}
	perKind := make(map[ExternKind]uint32)
	for i := uint32(0); i < count; i++ {
		module, err := r.ReadName()
		if err != nil {
			return errors.Wrap(errors.PhaseDecode, errors.KindInvalidWasm, err, "import module")
		}
		field, err := r.ReadName()
		if err != nil {
			return errors.Wrap(errors.PhaseDecode, errors.KindInvalidWasm, err, "import name")
		}
		kindByte, err := r.ReadByte()
		if err != nil {
			return errors.Wrap(errors.PhaseDecode, errors.KindInvalidWasm, err, "import kind")
		}
		kind := ExternKind(kindByte)

		// Consume the kind-specific descriptor.
		var typeIdx uint32
		switch kind {
		case KindFunc:
			typeIdx, err = r.ReadU32()
			if err != nil {
				return errors.Wrap(errors.PhaseDecode, errors.KindInvalidWasm, err, "import type index")
			}
		case KindTable:
			if _, err := r.ReadByte(); err != nil { // reftype
				return errors.Wrap(errors.PhaseDecode, errors.KindInvalidWasm, err, "import table type")
			}
			if _, _, err := readLimits(r); err != nil {
				return err
			}
		case KindMemory:
			if _, _, err := readLimits(r); err != nil {
				return err
			}
		case KindGlobal:
			if _, err := r.ReadByte(); err != nil { // valtype
				return errors.Wrap(errors.PhaseDecode, errors.KindInvalidWasm, err, "import global type")
			}
			if _, err := r.ReadByte(); err != nil { // mutability
				return errors.Wrap(errors.PhaseDecode, errors.KindInvalidWasm, err, "import global mut")
			}
		default:
			return errors.InvalidWasm("import %d: unknown kind 0x%02x", i, kindByte)
		}

		m.Imports = append(m.Imports, Import{
			Module:    module,
			Name:      field,
			Kind:      kind,
			Index:     perKind[kind],
			TypeIndex: typeIdx,
		})
		perKind[kind]++
	}
	return nil
}

func parseFunctionSection(r *binary.Reader, m *Module) error {
	count, err := r.ReadU32()
	if err != nil {
		return errors.Wrap(errors.PhaseDecode, errors.KindInvalidWasm, err, "function count")
	}
	m.Funcs = make([]Function, 0, count)
	for i := uint32(0); i < count; i++ {
		typeIdx, err := r.ReadU32()
		if err != nil {
			return errors.Wrap(errors.PhaseDecode, errors.KindInvalidWasm, err, "function type index")
		}
		if int(typeIdx) >= len(m.Types) {
			return errors.InvalidWasm("function %d references type %d of %d", i, typeIdx, len(m.Types))
		}
		m.Funcs = append(m.Funcs, Function{TypeIndex: typeIdx})
	}
	return nil
}

func readLimits(r *binary.Reader) (min uint32, max *uint32, err error) {
	flags, err := r.ReadByte()
	if err != nil {
		return 0, nil, errors.Wrap(errors.PhaseDecode, errors.KindInvalidWasm, err, "limits flags")
	}
	min, err = r.ReadU32()
	if err != nil {
		return 0, nil, errors.Wrap(errors.PhaseDecode, errors.KindInvalidWasm, err, "limits min")
	}
	// Flag bit 0 selects an optional upper bound.
	if flags&0x01 != 0 {
		v, err := r.ReadU32()
		if err != nil {
			return 0, nil, errors.Wrap(errors.PhaseDecode, errors.KindInvalidWasm, err, "limits max")
		}
		max = &v
	}
	return min, max, nil
}

func parseMemorySection(r *binary.Reader, m *Module) error {
	count, err := r.ReadU32()
	if err != nil {
		return errors.Wrap(errors.PhaseDecode, errors.KindInvalidWasm, err, "memory count")
	}
	if count > 1 {
		return errors.InvalidWasm("multiple memories are not supported")
	}
	if count == 0 {
		return nil
	}
	min, max, err := readLimits(r)
	if err != nil {
		return err
	}
	m.Memory = &Memory{
		MinPages: min,
		MaxPages: max,
		Data:     make([]byte, int(min)*PageSize),
	}
	return nil
}

func parseGlobalSection(r *binary.Reader, m *Module) error {
	count, err := r.ReadU32()
	if err != nil {
		return errors.Wrap(errors.PhaseDecode, errors.KindInvalidWasm, err, "global count")
	}
	for i := uint32(0); i < count; i++ {
		typeByte, err := r.ReadByte()
		if err != nil {
			return errors.Wrap(errors.PhaseDecode, errors.KindInvalidWasm, err, "global type")
		}
		vt := ValType(typeByte)
		switch vt {
		case ValI32, ValI64, ValF32, ValF64:
		default:
			return errors.InvalidWasm("global %d: unsupported type 0x%02x", i, typeByte)
		}
		mut, err := r.ReadByte()
		if err != nil {
			return errors.Wrap(errors.PhaseDecode, errors.KindInvalidWasm, err, "global mutability")
		}
		if mut > 1 {
			return errors.InvalidWasm("global %d: invalid mutability %d", i, mut)
		}
		val, err := readConstExpr(r, vt)
		if err != nil {
			return err
		}
		m.Globals = append(m.Globals, Global{Type: vt, Mutable: mut == 1, Value: val})
	}
	return nil
}

// readConstExpr evaluates a single const instruction followed by end. Only
// the four numeric const opcodes are accepted as initializers.
func readConstExpr(r *binary.Reader, want ValType) (float64, error) {
	op, err := r.ReadByte()
	if err != nil {
		return 0, errors.Wrap(errors.PhaseDecode, errors.KindInvalidWasm, err, "init expression")
	}
	var val float64
	switch op {
	case opI32Const:
		v, err := r.ReadS32()
		if err != nil {
			return 0, errors.Wrap(errors.PhaseDecode, errors.KindInvalidWasm, err, "i32.const")
		}
		val = float64(v)
	case opI64Const:
		v, err := r.ReadS64()
		if err != nil {
			return 0, errors.Wrap(errors.PhaseDecode, errors.KindInvalidWasm, err, "i64.const")
		}
		val = float64(v)
	case opF32Const:
		v, err := r.ReadF32()
		if err != nil {
			return 0, errors.Wrap(errors.PhaseDecode, errors.KindInvalidWasm, err, "f32.const")
		}
		val = float64(v)
	case opF64Const:
		v, err := r.ReadF64()
		if err != nil {
			return 0, errors.Wrap(errors.PhaseDecode, errors.KindInvalidWasm, err, "f64.const")
		}
		val = v
	default:
		return 0, errors.InvalidWasm("unsupported init expression opcode 0x%02x", op)
	}
	if constOpcode(want) != op {
		return 0, errors.InvalidWasm("init expression type does not match global type %s", want)
	}
	end, err := r.ReadByte()
	if err != nil || end != opEnd {
		return 0, errors.InvalidWasm("init expression missing end marker")
	}
	return val, nil
}

func constOpcode(t ValType) byte {
	switch t {
	case ValI32:
		return opI32Const
	case ValI64:
		return opI64Const
	case ValF32:
		return opF32Const
	default:
		return opF64Const
	}
}

func parseExportSection(r *binary.Reader, m *Module) error {
	count, err := r.ReadU32()
	if err != nil {
		return errors.Wrap(errors.PhaseDecode, errors.KindInvalidWasm, err, "export count")
	}
	for i := uint32(0); i < count; i++ {
		name, err := r.ReadName()
		if err != nil {
			return errors.Wrap(errors.PhaseDecode, errors.KindInvalidWasm, err, "export name")
		}
		kindByte, err := r.ReadByte()
		if err != nil {
			return errors.Wrap(errors.PhaseDecode, errors.KindInvalidWasm, err, "export kind")
		}
		kind := ExternKind(kindByte)
		if kind > KindGlobal {
			return errors.InvalidWasm("export %q: unknown kind 0x%02x", name, kindByte)
		}
		index, err := r.ReadU32()
		if err != nil {
			return errors.Wrap(errors.PhaseDecode, errors.KindInvalidWasm, err, "export index")
		}
		if _, dup := m.exportIndex[name]; dup {
			return errors.InvalidWasm("duplicate export %q", name)
		}
		m.exportIndex[name] = len(m.Exports)
		m.Exports = append(m.Exports, Export{Name: name, Kind: kind, Index: index})
	}
	return nil
}

func parseCodeSection(r *binary.Reader, m *Module) error {
	count, err := r.ReadU32()
	if err != nil {
		return errors.Wrap(errors.PhaseDecode, errors.KindInvalidWasm, err, "code count")
	}
	if int(count) != len(m.Funcs) {
		return errors.InvalidWasm("code section has %d bodies for %d declared functions", count, len(m.Funcs))
	}
	for i := uint32(0); i < count; i++ {
		size, err := r.ReadU32()
		if err != nil {
			return errors.Wrap(errors.PhaseDecode, errors.KindInvalidWasm, err, "body size")
		}
		body, err := r.ReadBytes(int(size))
		if err != nil {
			return errors.Wrap(errors.PhaseDecode, errors.KindInvalidWasm, err, "body")
		}
		// Bodies match declarations positionally.
		m.Funcs[i].Body = body
	}
	return nil
}

// parseNameSection extracts the module name subsection when the custom
// section is the standard "name" section. Malformed name data is ignored;
// custom sections never fail the parse.
func parseNameSection(r *binary.Reader, m *Module) {
	name, err := r.ReadName()
	if err != nil || name != "name" {
		return
	}
	for r.Remaining() > 0 {
		id, err := r.ReadByte()
		if err != nil {
			return
		}
		size, err := r.ReadU32()
		if err != nil || int(size) > r.Remaining() {
			return
		}
		payload, err := r.ReadBytes(int(size))
		if err != nil {
			return
		}
		if id == 0 { // module name subsection
			sub := binary.NewReader(payload)
			if modName, err := sub.ReadName(); err == nil {
				m.Name = modName
			}
			return
		}
	}
}
