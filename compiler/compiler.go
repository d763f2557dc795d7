package compiler

import (
	"fmt"

	"github.com/lumabrowser/script-engine/errors"
	"github.com/lumabrowser/script-engine/parser"
	"github.com/lumabrowser/script-engine/value"
)

const (
	maxConstants = 256
	maxRegions   = 256
	maxArgs      = 255
)

// Compile lowers a program AST to bytecode.
func Compile(prog *parser.Program) (*Program, error) {
	c := &compiler{out: &Program{}}
	main := c.newRegion("", nil)
	if err := c.compileBlock(main, prog.Body); err != nil {
		return nil, err
	}
	return c.out, nil
}

type compiler struct {
	out *Program
}

func (c *compiler) newRegion(name string, params []string) *Region {
	r := &Region{Name: name, Params: params}
	c.out.Regions = append(c.out.Regions, r)
	return r
}

func (c *compiler) compileBlock(r *Region, body []parser.Stmt) error {
	for _, stmt := range body {
		if err := c.compileStatement(r, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (c *compiler) compileStatement(r *Region, stmt parser.Stmt) error {
	switch n := stmt.(type) {
	case *parser.ExpressionStatement:
		if err := c.compileExpression(r, n.Expression); err != nil {
			return err
		}
		r.emit(OpPop)
		return nil

	case *parser.ReturnStatement:
		if n.Argument != nil {
			if err := c.compileExpression(r, n.Argument); err != nil {
				return err
			}
		} else {
			idx, err := r.addConstant(value.Undefined())
			if err != nil {
				return err
			}
			r.emit(OpLoadConstant, idx)
		}
		r.emit(OpReturn)
		return nil

	case *parser.FunctionDeclaration:
		return c.compileFunctionDeclaration(r, n)

	default:
		return errors.InvalidData(errors.PhaseCompile,
			fmt.Sprintf("unsupported statement node %T", stmt))
	}
}

// compileFunctionDeclaration compiles the body into its own region and emits
// a DefineFunction binding the region to the global name.
func (c *compiler) compileFunctionDeclaration(r *Region, n *parser.FunctionDeclaration) error {
	if len(c.out.Regions) >= maxRegions {
		return errors.Overflow(errors.PhaseCompile, "function count", maxRegions)
	}
	body := c.newRegion(n.Name, n.Params)
	region := len(c.out.Regions) - 1
	if err := c.compileBlock(body, n.Body); err != nil {
		return err
	}

	nameIdx, err := r.addConstant(value.String(n.Name))
	if err != nil {
		return err
	}
	r.emit(OpDefineFunction, nameIdx, byte(region))
	return nil
}

func (c *compiler) compileExpression(r *Region, expr parser.Expr) error {
	switch n := expr.(type) {
	case *parser.Literal:
		var v value.Value
		switch n.Kind {
		case parser.LiteralNumber:
			v = value.Number(n.Number)
		case parser.LiteralString:
			v = value.String(n.Str)
		}
		idx, err := r.addConstant(v)
		if err != nil {
			return err
		}
		r.emit(OpLoadConstant, idx)
		return nil

	case *parser.Identifier:
		idx, err := r.addConstant(value.String(n.Name))
		if err != nil {
			return err
		}
		r.emit(OpLoadGlobal, idx)
		return nil

	case *parser.BinaryExpression:
		if err := c.compileExpression(r, n.Left); err != nil {
			return err
		}
		if err := c.compileExpression(r, n.Right); err != nil {
			return err
		}
		op, ok := binaryOpcode(n.Operator)
		if !ok {
			return errors.InvalidData(errors.PhaseCompile,
				fmt.Sprintf("unsupported operator %q", n.Operator))
		}
		r.emit(op)
		return nil

	case *parser.CallExpression:
		if len(n.Arguments) > maxArgs {
			return errors.Overflow(errors.PhaseCompile, "argument count", maxArgs)
		}
		for _, arg := range n.Arguments {
			if err := c.compileExpression(r, arg); err != nil {
				return err
			}
		}
		if err := c.compileExpression(r, n.Callee); err != nil {
			return err
		}
		r.emit(OpCall, byte(len(n.Arguments)))
		return nil

	default:
		return errors.InvalidData(errors.PhaseCompile,
			fmt.Sprintf("unsupported expression node %T", expr))
	}
}

func binaryOpcode(op string) (Opcode, bool) {
	switch op {
	case "+":
		return OpAdd, true
	case "-":
		return OpSubtract, true
	case "*":
		return OpMultiply, true
	case "/":
		return OpDivide, true
	case "==":
		return OpEqual, true
	case "!=":
		return OpNotEqual, true
	case "<":
		return OpLessThan, true
	case ">":
		return OpGreaterThan, true
	}
	return 0, false
}

func (r *Region) emit(op Opcode, operands ...byte) {
	r.Code = append(r.Code, byte(op))
	r.Code = append(r.Code, operands...)
}

// addConstant appends v to the pool and returns its single-byte index.
// Identical primitive constants are reused.
func (r *Region) addConstant(v value.Value) (byte, error) {
	for i, existing := range r.Constants {
		if sameConstant(existing, v) {
			return byte(i), nil
		}
	}
	if len(r.Constants) >= maxConstants {
		return 0, errors.Overflow(errors.PhaseCompile, "constant pool", maxConstants)
	}
	r.Constants = append(r.Constants, v)
	return byte(len(r.Constants) - 1), nil
}

// sameConstant reports whether two pool entries are interchangeable. Only
// primitives dedupe; reference constants keep distinct slots.
func sameConstant(a, b value.Value) bool {
	switch a.Type() {
	case value.TypeUndefined, value.TypeNull, value.TypeBoolean, value.TypeNumber, value.TypeString:
		return value.StrictEquals(a, b)
	}
	return false
}
