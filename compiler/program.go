package compiler

import (
	"fmt"
	"strings"

	"github.com/lumabrowser/script-engine/value"
)

// Region is one addressable bytecode stream: a flat instruction array plus
// the constant pool its operands index. Regions are produced once by the
// compiler and read-only thereafter.
type Region struct {
	Name      string
	Params    []string
	Code      []byte
	Constants []value.Value
}

// Program is the compiler output. Region 0 is the top-level script;
// function bodies follow in declaration order.
type Program struct {
	Regions []*Region
}

// Main returns the top-level region.
func (p *Program) Main() *Region {
	return p.Regions[0]
}

// Disassemble renders the whole program for diagnostics.
func (p *Program) Disassemble() string {
	var b strings.Builder
	for i, r := range p.Regions {
		name := r.Name
		if name == "" {
			name = "<main>"
		}
		fmt.Fprintf(&b, "== region %d %s ==\n", i, name)
		r.disassemble(&b)
	}
	return b.String()
}

func (r *Region) disassemble(b *strings.Builder) {
	for ip := 0; ip < len(r.Code); {
		op := Opcode(r.Code[ip])
		fmt.Fprintf(b, "%04d %s", ip, op)
		width := op.OperandWidth()
		if ip+width >= len(r.Code) {
			b.WriteString(" <truncated>\n")
			return
		}
		switch op {
		case OpLoadConstant, OpLoadGlobal:
			idx := int(r.Code[ip+1])
			fmt.Fprintf(b, " %d", idx)
			if idx < len(r.Constants) {
				fmt.Fprintf(b, " (%s)", r.Constants[idx].Inspect())
			}
		case OpCall:
			fmt.Fprintf(b, " %d", r.Code[ip+1])
		case OpDefineFunction:
			idx := int(r.Code[ip+1])
			fmt.Fprintf(b, " %d %d", idx, r.Code[ip+2])
			if idx < len(r.Constants) {
				fmt.Fprintf(b, " (%s)", r.Constants[idx].Inspect())
			}
		}
		b.WriteByte('\n')
		ip += 1 + width
	}
}
