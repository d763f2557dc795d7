package wasm

import (
	"bytes"
	"encoding/binary"
)

// Encode renders the module back to binary form. The encoder covers the
// decoded subset only; it exists for tooling and for constructing test
// fixtures, not for round-tripping arbitrary modules.
func (m *Module) Encode() []byte {
	var w bytes.Buffer

	var header [8]byte
	binary.LittleEndian.PutUint32(header[0:4], Magic)
	binary.LittleEndian.PutUint32(header[4:8], Version)
	w.Write(header[:])

	if len(m.Types) > 0 {
		var sec bytes.Buffer
		WriteLEB128u(&sec, uint32(len(m.Types)))
		for _, ft := range m.Types {
			sec.WriteByte(0x60)
			writeValTypes(&sec, ft.Params)
			writeValTypes(&sec, ft.Results)
		}
		writeSection(&w, SectionType, sec.Bytes())
	}

	if len(m.Imports) > 0 {
		var sec bytes.Buffer
		WriteLEB128u(&sec, uint32(len(m.Imports)))
		for _, imp := range m.Imports {
			writeName(&sec, imp.Module)
			writeName(&sec, imp.Name)
			sec.WriteByte(byte(imp.Kind))
			switch imp.Kind {
			case KindFunc:
				WriteLEB128u(&sec, imp.TypeIndex)
			case KindTable:
				sec.WriteByte(0x70) // funcref
				sec.WriteByte(0x00)
				WriteLEB128u(&sec, 0)
			case KindMemory:
				sec.WriteByte(0x00)
				WriteLEB128u(&sec, 0)
			case KindGlobal:
				sec.WriteByte(byte(ValI32))
				sec.WriteByte(0x00)
			}
		}
		writeSection(&w, SectionImport, sec.Bytes())
	}

	if len(m.Funcs) > 0 {
		var sec bytes.Buffer
		WriteLEB128u(&sec, uint32(len(m.Funcs)))
		for _, fn := range m.Funcs {
			WriteLEB128u(&sec, fn.TypeIndex)
		}
		writeSection(&w, SectionFunction, sec.Bytes())
	}

	if m.Memory != nil {
		var sec bytes.Buffer
		WriteLEB128u(&sec, 1)
		if m.Memory.MaxPages != nil {
			sec.WriteByte(0x01)
			WriteLEB128u(&sec, m.Memory.MinPages)
			WriteLEB128u(&sec, *m.Memory.MaxPages)
		} else {
			sec.WriteByte(0x00)
			WriteLEB128u(&sec, m.Memory.MinPages)
		}
		writeSection(&w, SectionMemory, sec.Bytes())
	}

	if len(m.Globals) > 0 {
		var sec bytes.Buffer
		WriteLEB128u(&sec, uint32(len(m.Globals)))
		for _, g := range m.Globals {
			sec.WriteByte(byte(g.Type))
			if g.Mutable {
				sec.WriteByte(0x01)
			} else {
				sec.WriteByte(0x00)
			}
			writeConstExpr(&sec, g)
		}
		writeSection(&w, SectionGlobal, sec.Bytes())
	}

	if len(m.Exports) > 0 {
		var sec bytes.Buffer
		WriteLEB128u(&sec, uint32(len(m.Exports)))
		for _, exp := range m.Exports {
			writeName(&sec, exp.Name)
			sec.WriteByte(byte(exp.Kind))
			WriteLEB128u(&sec, exp.Index)
		}
		writeSection(&w, SectionExport, sec.Bytes())
	}

	if len(m.Funcs) > 0 {
		var sec bytes.Buffer
		WriteLEB128u(&sec, uint32(len(m.Funcs)))
		for _, fn := range m.Funcs {
			body := fn.Body
			if len(body) == 0 {
				// No locals, bare end.
				body = []byte{0x00, opEnd}
			}
			WriteLEB128u(&sec, uint32(len(body)))
			sec.Write(body)
		}
		writeSection(&w, SectionCode, sec.Bytes())
	}

	return w.Bytes()
}

func writeSection(w *bytes.Buffer, id byte, payload []byte) {
	w.WriteByte(id)
	WriteLEB128u(w, uint32(len(payload)))
	w.Write(payload)
}

func writeName(w *bytes.Buffer, name string) {
	WriteLEB128u(w, uint32(len(name)))
	w.WriteString(name)
}

func writeValTypes(w *bytes.Buffer, types []ValType) {
	WriteLEB128u(w, uint32(len(types)))
	for _, t := range types {
		w.WriteByte(byte(t))
	}
}

func writeConstExpr(w *bytes.Buffer, g Global) {
	switch g.Type {
	case ValI32:
		w.WriteByte(opI32Const)
		WriteLEB128s(w, int32(g.Value))
	case ValI64:
		w.WriteByte(opI64Const)
		WriteLEB128s64(w, int64(g.Value))
	case ValF32:
		w.WriteByte(opF32Const)
		WriteFloat32(w, float32(g.Value))
	case ValF64:
		w.WriteByte(opF64Const)
		WriteFloat64(w, g.Value)
	}
	w.WriteByte(opEnd)
}
