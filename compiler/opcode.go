package compiler

import "fmt"

// Opcode is a single bytecode instruction discriminant.
type Opcode byte

const (
	// OpLoadConstant pushes constants[operand].
	OpLoadConstant Opcode = iota
	// OpLoadGlobal resolves constants[operand] as a name against the global
	// object and pushes the result; an unset global pushes undefined.
	OpLoadGlobal
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpEqual
	OpNotEqual
	OpLessThan
	OpGreaterThan
	// OpPop discards the stack top. The VM records the discarded value as
	// the statement completion value.
	OpPop
	// OpDefineFunction binds a function value for region operand2 to the
	// global named by constants[operand1].
	OpDefineFunction
	// OpCall pops the callee then operand arguments and transfers control.
	OpCall
	// OpReturn pops the result, unwinds one call frame if present and
	// pushes the result back.
	OpReturn
)

// String returns the mnemonic.
func (op Opcode) String() string {
	switch op {
	case OpLoadConstant:
		return "LoadConstant"
	case OpLoadGlobal:
		return "LoadGlobal"
	case OpAdd:
		return "Add"
	case OpSubtract:
		return "Subtract"
	case OpMultiply:
		return "Multiply"
	case OpDivide:
		return "Divide"
	case OpEqual:
		return "Equal"
	case OpNotEqual:
		return "NotEqual"
	case OpLessThan:
		return "LessThan"
	case OpGreaterThan:
		return "GreaterThan"
	case OpPop:
		return "Pop"
	case OpDefineFunction:
		return "DefineFunction"
	case OpCall:
		return "Call"
	case OpReturn:
		return "Return"
	default:
		return fmt.Sprintf("Opcode(0x%02x)", byte(op))
	}
}

// OperandWidth returns the fixed operand byte count for the opcode. The VM
// advances the instruction pointer by 1 + OperandWidth.
func (op Opcode) OperandWidth() int {
	switch op {
	case OpLoadConstant, OpLoadGlobal, OpCall:
		return 1
	case OpDefineFunction:
		return 2
	default:
		return 0
	}
}
