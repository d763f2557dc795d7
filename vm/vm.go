package vm

import (
	"time"

	"github.com/lumabrowser/script-engine/compiler"
	"github.com/lumabrowser/script-engine/errors"
	"github.com/lumabrowser/script-engine/value"
)

const (
	// deadlineInterval is how many dispatched instructions pass between
	// execution deadline checks.
	deadlineInterval = 1024

	maxCallDepth = 1024
)

// frame is a saved execution context pushed at Call and popped at Return.
type frame struct {
	saved  []savedGlobal
	region int
	retIP  int
	base   int
}

// savedGlobal remembers a global binding shadowed by a parameter for the
// duration of a call. Identifier resolution is global-only; parameters are
// bound as globals on entry and restored on return.
type savedGlobal struct {
	name    string
	val     value.Value
	present bool
}

// VM executes one Program at a time against a Context.
type VM struct {
	ctx        *Context
	prog       *compiler.Program
	stack      []value.Value
	frames     []frame
	lastPopped value.Value
}

// New creates a VM bound to a context.
func New(ctx *Context) *VM {
	return &VM{ctx: ctx}
}

// Run executes a compiled program to completion and returns its result: the
// value of a top-level Return if one executes, otherwise the completion
// value of the last expression statement, otherwise undefined.
func (m *VM) Run(prog *compiler.Program) (value.Value, error) {
	m.prog = prog
	m.stack = m.stack[:0]
	m.frames = m.frames[:0]
	m.lastPopped = value.Undefined()

	var deadline time.Time
	if m.ctx.timeout > 0 {
		deadline = time.Now().Add(m.ctx.timeout)
	}

	region := prog.Main()
	regionIdx := 0
	ip := 0
	steps := 0

	for {
		if ip >= len(region.Code) {
			// Pointer exhausted. A function body falling off its end
			// returns undefined to its caller; the top level finishes.
			if len(m.frames) == 0 {
				return m.lastPopped, nil
			}
			regionIdx, ip = m.unwind(value.Undefined())
			region = prog.Regions[regionIdx]
			continue
		}

		steps++
		if steps%deadlineInterval == 0 && !deadline.IsZero() && time.Now().After(deadline) {
			return value.Undefined(), errors.Timeout("execution exceeded " + m.ctx.timeout.String())
		}

		op := compiler.Opcode(region.Code[ip])
		if ip+op.OperandWidth() >= len(region.Code) {
			return value.Undefined(), errors.InvalidData(errors.PhaseExecute, "truncated instruction stream")
		}

		switch op {
		case compiler.OpLoadConstant:
			idx := int(region.Code[ip+1])
			if idx >= len(region.Constants) {
				return value.Undefined(), errors.InvalidData(errors.PhaseExecute, "constant index out of range")
			}
			m.push(region.Constants[idx])
			ip += 2

		case compiler.OpLoadGlobal:
			idx := int(region.Code[ip+1])
			if idx >= len(region.Constants) {
				return value.Undefined(), errors.InvalidData(errors.PhaseExecute, "constant index out of range")
			}
			name := region.Constants[idx].AsString()
			// An unset global reads as undefined, never an error.
			v, _ := m.ctx.global.Get(name)
			m.push(v)
			ip += 2

		case compiler.OpAdd, compiler.OpSubtract, compiler.OpMultiply, compiler.OpDivide,
			compiler.OpLessThan, compiler.OpGreaterThan:
			// Right popped first, then left; order matters for - and /.
			right, err := m.pop()
			if err != nil {
				return value.Undefined(), err
			}
			left, err := m.pop()
			if err != nil {
				return value.Undefined(), err
			}
			result, err := numericOp(op, left, right)
			if err != nil {
				return value.Undefined(), err
			}
			m.push(result)
			ip++

		case compiler.OpEqual, compiler.OpNotEqual:
			right, err := m.pop()
			if err != nil {
				return value.Undefined(), err
			}
			left, err := m.pop()
			if err != nil {
				return value.Undefined(), err
			}
			eq := value.StrictEquals(left, right)
			if op == compiler.OpNotEqual {
				eq = !eq
			}
			m.push(value.Boolean(eq))
			ip++

		case compiler.OpPop:
			v, err := m.pop()
			if err != nil {
				return value.Undefined(), err
			}
			m.lastPopped = v
			ip++

		case compiler.OpDefineFunction:
			nameIdx := int(region.Code[ip+1])
			target := int(region.Code[ip+2])
			if nameIdx >= len(region.Constants) || target >= len(prog.Regions) {
				return value.Undefined(), errors.InvalidData(errors.PhaseExecute, "define operand out of range")
			}
			name := region.Constants[nameIdx].AsString()
			body := prog.Regions[target]
			fn := value.NewScripted(name, len(body.Params), target)
			if err := m.ctx.SetGlobal(name, value.FunctionValue(fn)); err != nil {
				return value.Undefined(), err
			}
			ip += 3

		case compiler.OpCall:
			argc := int(region.Code[ip+1])
			next, nextIP, err := m.call(argc, regionIdx, ip+2)
			if err != nil {
				return value.Undefined(), err
			}
			regionIdx, ip = next, nextIP
			region = prog.Regions[regionIdx]

		case compiler.OpReturn:
			result, err := m.pop()
			if err != nil {
				return value.Undefined(), err
			}
			if len(m.frames) == 0 {
				// Top-level return ends the program with its value.
				return result, nil
			}
			regionIdx, ip = m.unwind(result)
			region = prog.Regions[regionIdx]

		default:
			return value.Undefined(), errors.UnknownOpcode(byte(op), ip)
		}
	}
}

// call pops the callee and arguments and either invokes a native callback
// in place or pushes a frame and transfers control to the callee's region.
// It returns the region and offset execution continues at.
func (m *VM) call(argc, callerRegion, retIP int) (int, int, error) {
	callee, err := m.pop()
	if err != nil {
		return 0, 0, err
	}
	if !callee.IsCallable() {
		return 0, 0, errors.NotCallable(errors.PhaseExecute, callee.Type().String())
	}

	// Arguments were pushed left to right; pop in reverse to restore
	// source order.
	args := make([]value.Value, argc)
	for i := argc - 1; i >= 0; i-- {
		args[i], err = m.pop()
		if err != nil {
			return 0, 0, err
		}
	}

	fn := callee.AsFunction()
	if fn.IsNative() {
		result, err := fn.Native(m.ctx, args)
		if err != nil {
			return 0, 0, err
		}
		m.push(result)
		return callerRegion, retIP, nil
	}

	if len(m.frames) >= maxCallDepth {
		return 0, 0, errors.Overflow(errors.PhaseExecute, "call depth", maxCallDepth)
	}

	body := m.prog.Regions[fn.Region]
	f := frame{region: callerRegion, retIP: retIP, base: len(m.stack)}

	// Bind parameters as globals, remembering what they shadow. Missing
	// arguments bind as undefined; extras are dropped.
	for i, name := range body.Params {
		prev, present := m.ctx.global.GetOwn(name)
		f.saved = append(f.saved, savedGlobal{name: name, val: prev, present: present})
		arg := value.Undefined()
		if i < len(args) {
			arg = args[i]
		}
		if err := m.ctx.SetGlobal(name, arg); err != nil {
			return 0, 0, err
		}
	}

	m.frames = append(m.frames, f)
	return fn.Region, 0, nil
}

// unwind pops the top frame, restores shadowed globals and the caller's
// stack depth, and pushes the return value.
func (m *VM) unwind(result value.Value) (int, int) {
	f := m.frames[len(m.frames)-1]
	m.frames = m.frames[:len(m.frames)-1]

	for i := len(f.saved) - 1; i >= 0; i-- {
		s := f.saved[i]
		if s.present {
			// Restoring an existing key never trips the extensibility check.
			_ = m.ctx.global.Set(s.name, s.val)
		} else {
			m.ctx.global.Delete(s.name)
		}
	}

	m.stack = m.stack[:f.base]
	m.push(result)
	return f.region, f.retIP
}

func (m *VM) push(v value.Value) {
	m.stack = append(m.stack, v)
}

func (m *VM) pop() (value.Value, error) {
	if len(m.stack) == 0 {
		return value.Undefined(), errors.InvalidData(errors.PhaseExecute, "operand stack underflow")
	}
	v := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	return v, nil
}

// numericOp applies an arithmetic or ordering opcode to two operands. Both
// must be numbers; anything else is a type-mismatch error rather than a
// silent undefined.
func numericOp(op compiler.Opcode, left, right value.Value) (value.Value, error) {
	if !left.IsNumber() || !right.IsNumber() {
		bad := left
		if left.IsNumber() {
			bad = right
		}
		return value.Undefined(), errors.TypeMismatch(errors.PhaseExecute, op.String(), bad.Type().String())
	}
	l, r := left.AsNumber(), right.AsNumber()
	switch op {
	case compiler.OpAdd:
		return value.Number(l + r), nil
	case compiler.OpSubtract:
		return value.Number(l - r), nil
	case compiler.OpMultiply:
		return value.Number(l * r), nil
	case compiler.OpDivide:
		// IEEE-754 semantics: division by zero yields an infinity.
		return value.Number(l / r), nil
	case compiler.OpLessThan:
		return value.Boolean(l < r), nil
	case compiler.OpGreaterThan:
		return value.Boolean(l > r), nil
	}
	return value.Undefined(), errors.UnknownOpcode(byte(op), 0)
}
