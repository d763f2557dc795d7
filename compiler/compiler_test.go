package compiler_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/lumabrowser/script-engine/compiler"
	scripterrors "github.com/lumabrowser/script-engine/errors"
	"github.com/lumabrowser/script-engine/parser"
)

func compileSource(t *testing.T, src string) *compiler.Program {
	t.Helper()
	ast, err := parser.Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	prog, err := compiler.Compile(ast)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return prog
}

func TestCompileExpressionStatement(t *testing.T) {
	prog := compileSource(t, "1 + 2;")
	main := prog.Main()

	want := []byte{
		byte(compiler.OpLoadConstant), 0,
		byte(compiler.OpLoadConstant), 1,
		byte(compiler.OpAdd),
		byte(compiler.OpPop),
	}
	if string(main.Code) != string(want) {
		t.Errorf("code = %v, want %v\n%s", main.Code, want, prog.Disassemble())
	}
	if len(main.Constants) != 2 {
		t.Fatalf("constant pool size = %d, want 2", len(main.Constants))
	}
	if main.Constants[0].AsNumber() != 1 || main.Constants[1].AsNumber() != 2 {
		t.Errorf("constants = %v %v, want 1 2", main.Constants[0], main.Constants[1])
	}
}

func TestCompileBinaryOperators(t *testing.T) {
	tests := []struct {
		op   string
		want compiler.Opcode
	}{
		{"+", compiler.OpAdd},
		{"-", compiler.OpSubtract},
		{"*", compiler.OpMultiply},
		{"/", compiler.OpDivide},
		{"==", compiler.OpEqual},
		{"!=", compiler.OpNotEqual},
		{"<", compiler.OpLessThan},
		{">", compiler.OpGreaterThan},
	}

	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			prog := compileSource(t, fmt.Sprintf("1 %s 2;", tt.op))
			code := prog.Main().Code
			// load, load, op, pop
			if len(code) != 6 || compiler.Opcode(code[4]) != tt.want {
				t.Errorf("code = %v, want operator %v at offset 4", code, tt.want)
			}
		})
	}
}

func TestCompileOperandOrder(t *testing.T) {
	// left emits before right: 10 - 4 loads 10 then 4
	prog := compileSource(t, "10 - 4;")
	main := prog.Main()
	if main.Constants[0].AsNumber() != 10 || main.Constants[1].AsNumber() != 4 {
		t.Errorf("constants = %v, want [10 4]", main.Constants)
	}
	if main.Code[1] != 0 || main.Code[3] != 1 {
		t.Errorf("load order = %v, want left before right", main.Code)
	}
}

func TestCompileCallShape(t *testing.T) {
	// Arguments left to right, then the callee, then Call(argc).
	prog := compileSource(t, "f(1, 2, 3);")
	main := prog.Main()

	want := []byte{
		byte(compiler.OpLoadConstant), 0,
		byte(compiler.OpLoadConstant), 1,
		byte(compiler.OpLoadConstant), 2,
		byte(compiler.OpLoadGlobal), 3,
		byte(compiler.OpCall), 3,
		byte(compiler.OpPop),
	}
	if string(main.Code) != string(want) {
		t.Errorf("code = %v, want %v\n%s", main.Code, want, prog.Disassemble())
	}
	if got := main.Constants[3].AsString(); got != "f" {
		t.Errorf("callee constant = %q, want f", got)
	}
}

func TestCompileIdentifierLoadsGlobal(t *testing.T) {
	prog := compileSource(t, "x;")
	main := prog.Main()
	if compiler.Opcode(main.Code[0]) != compiler.OpLoadGlobal {
		t.Fatalf("opcode = %v, want LoadGlobal", compiler.Opcode(main.Code[0]))
	}
	if got := main.Constants[main.Code[1]].AsString(); got != "x" {
		t.Errorf("name constant = %q, want x", got)
	}
}

func TestCompileReturn(t *testing.T) {
	prog := compileSource(t, "return 5;")
	main := prog.Main()
	want := []byte{
		byte(compiler.OpLoadConstant), 0,
		byte(compiler.OpReturn),
	}
	if string(main.Code) != string(want) {
		t.Errorf("code = %v, want %v", main.Code, want)
	}
}

func TestCompileBareReturnLoadsUndefined(t *testing.T) {
	prog := compileSource(t, "return;")
	main := prog.Main()
	if compiler.Opcode(main.Code[0]) != compiler.OpLoadConstant {
		t.Fatalf("first opcode = %v, want LoadConstant", compiler.Opcode(main.Code[0]))
	}
	if !main.Constants[main.Code[1]].IsUndefined() {
		t.Error("bare return should load an undefined constant")
	}
	if compiler.Opcode(main.Code[2]) != compiler.OpReturn {
		t.Errorf("second opcode = %v, want Return", compiler.Opcode(main.Code[2]))
	}
}

func TestCompileFunctionGetsOwnRegion(t *testing.T) {
	prog := compileSource(t, "function add(a, b) { return a + b; } add(1, 2);")

	if len(prog.Regions) != 2 {
		t.Fatalf("region count = %d, want 2", len(prog.Regions))
	}

	body := prog.Regions[1]
	if body.Name != "add" {
		t.Errorf("region name = %q, want add", body.Name)
	}
	if len(body.Params) != 2 {
		t.Errorf("params = %v, want [a b]", body.Params)
	}
	// Body: load a, load b, add, return
	want := []byte{
		byte(compiler.OpLoadGlobal), 0,
		byte(compiler.OpLoadGlobal), 1,
		byte(compiler.OpAdd),
		byte(compiler.OpReturn),
	}
	if string(body.Code) != string(want) {
		t.Errorf("body code = %v, want %v\n%s", body.Code, want, prog.Disassemble())
	}

	main := prog.Main()
	if compiler.Opcode(main.Code[0]) != compiler.OpDefineFunction {
		t.Fatalf("main starts with %v, want DefineFunction", compiler.Opcode(main.Code[0]))
	}
	if main.Code[2] != 1 {
		t.Errorf("DefineFunction region operand = %d, want 1", main.Code[2])
	}
}

func TestCompileConstantDedup(t *testing.T) {
	prog := compileSource(t, "1 + 1;")
	main := prog.Main()
	if len(main.Constants) != 1 {
		t.Errorf("constant pool = %v, want single deduped entry", main.Constants)
	}
	if main.Code[1] != 0 || main.Code[3] != 0 {
		t.Errorf("both loads should index constant 0, got %v", main.Code)
	}
}

func TestCompileConstantPoolOverflow(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 300; i++ {
		fmt.Fprintf(&b, "%d;", i)
	}
	ast, err := parser.Parse([]byte(b.String()))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	_, err = compiler.Compile(ast)
	if err == nil {
		t.Fatal("expected constant pool overflow error")
	}
	target := &scripterrors.Error{Phase: scripterrors.PhaseCompile, Kind: scripterrors.KindOverflow}
	if !errors.Is(err, target) {
		t.Errorf("error = %v, want compile overflow", err)
	}
}

func TestDisassemble(t *testing.T) {
	prog := compileSource(t, "function f() { return 1; } f();")
	out := prog.Disassemble()
	for _, want := range []string{"region 0 <main>", "region 1 f", "DefineFunction", "Call 0", "Return"} {
		if !strings.Contains(out, want) {
			t.Errorf("disassembly missing %q:\n%s", want, out)
		}
	}
}

func TestDisassembleTruncatedRegion(t *testing.T) {
	// A stream ending on an operand-carrying opcode renders a marker rather
	// than indexing past the code slice.
	prog := &compiler.Program{Regions: []*compiler.Region{{
		Code: []byte{byte(compiler.OpAdd), byte(compiler.OpLoadConstant)},
	}}}
	out := prog.Disassemble()
	if !strings.Contains(out, "<truncated>") {
		t.Errorf("disassembly missing truncation marker:\n%s", out)
	}
	if !strings.Contains(out, "Add") {
		t.Errorf("disassembly missing leading instruction:\n%s", out)
	}
}
