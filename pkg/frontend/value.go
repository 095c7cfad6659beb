package frontend

import (
	"math"

	"github.com/lance-lang/lancec/pkg/diagnostics"
	"github.com/lance-lang/lancec/pkg/ir"
)

// value is an expression result that has not yet committed to a register:
// either a compile-time constant or a value already sitting in a vreg.
// Mirrors expressions.c's t_expressionValue {type: CONSTANT|REGISTER}.
type value struct {
	isConst bool
	imm     int32
	reg     ir.VReg
}

func constValue(imm int32) value { return value{isConst: true, imm: imm} }
func regValue(reg ir.VReg) value { return value{reg: reg} }

// materialize forces v into a register, emitting a single LI if it was a
// compile-time constant.
func (p *Parser) materialize(v value) ir.VReg {
	if !v.isConst {
		return v.reg
	}
	rd := p.prog.GetNewRegister()
	p.prog.NewLI(rd, v.imm)
	return rd
}

type binop int

const (
	opAdd binop = iota
	opSub
	opMul
	opDiv
	opAnd
	opOr
	opXor
	opShl
	opShr
)

// foldConstant evaluates op over two compile-time constants, matching
// computeBinaryOperation's special handling of division and shifts: a
// shift amount outside [0,31] is masked to its low 5 bits with a warning,
// a division by zero warns and yields MaxInt32, and the one division that
// overflows a 32-bit quotient (MinInt32 / -1) warns and saturates back to
// MinInt32 instead of panicking the host Go runtime.
func (p *Parser) foldConstant(loc diagnostics.Location, v1, v2 int32, op binop) int32 {
	switch op {
	case opAdd:
		return v1 + v2
	case opSub:
		return v1 - v2
	case opMul:
		return v1 * v2
	case opAnd:
		return v1 & v2
	case opOr:
		return v1 | v2
	case opXor:
		return v1 ^ v2
	case opShl:
		amt := maskShiftAmount(p, loc, v2)
		return v1 << amt
	case opShr:
		amt := maskShiftAmount(p, loc, v2)
		return v1 >> amt
	case opDiv:
		if v2 == 0 {
			p.sink.Warnf(loc, "division by zero")
			return math.MaxInt32
		}
		if v1 == math.MinInt32 && v2 == -1 {
			p.sink.Warnf(loc, "division overflow")
			return math.MinInt32
		}
		return v1 / v2
	}
	panic("frontend: unhandled binop in foldConstant")
}

// maskShiftAmount warns when a constant shift amount falls outside the
// 5-bit range a register-format shift instruction actually reads, then
// returns the masked amount so constant folding (which runs before target
// lowering ever sees the instruction) matches the masked runtime result.
func maskShiftAmount(p *Parser, loc diagnostics.Location, amount int32) uint32 {
	if amount < 0 || amount >= 32 {
		p.sink.Warnf(loc, "shift amount %d out of range, truncated to 5 bits", amount)
	}
	return uint32(amount) & 0x1F
}

// emitBinary implements handleBinaryOperator: fold two constants outright,
// prefer the immediate-form instruction when exactly one side is constant,
// and fall back to materialising both operands when both are dynamic.
func (p *Parser) emitBinary(loc diagnostics.Location, lhs value, op binop, rhs value) value {
	if lhs.isConst && rhs.isConst {
		return constValue(p.foldConstant(loc, lhs.imm, rhs.imm, op))
	}

	if !lhs.isConst && rhs.isConst {
		return regValue(p.emitRegImm(loc, lhs.reg, op, rhs.imm))
	}

	if lhs.isConst && !rhs.isConst && commutative(op) {
		return regValue(p.emitRegImm(loc, rhs.reg, op, lhs.imm))
	}

	r1 := p.materialize(lhs)
	r2 := p.materialize(rhs)
	return regValue(p.emitRegReg(r1, op, r2))
}

func commutative(op binop) bool {
	switch op {
	case opAdd, opMul, opAnd, opOr, opXor:
		return true
	default:
		return false
	}
}

// emitRegImm emits the immediate-form instruction for op, matching
// genBinaryOperationWithImmediate; shift amounts still get the front-end
// out-of-range warning even though FixUnsupportedImmediates will also mask
// them before printing.
func (p *Parser) emitRegImm(loc diagnostics.Location, r1 ir.VReg, op binop, imm int32) ir.VReg {
	rd := p.prog.GetNewRegister()
	switch op {
	case opAdd:
		p.prog.NewADDI(rd, r1, imm)
	case opSub:
		p.prog.NewSUBI(rd, r1, imm)
	case opMul:
		p.prog.NewMULI(rd, r1, imm)
	case opDiv:
		p.prog.NewDIVI(rd, r1, imm)
	case opAnd:
		p.prog.NewANDI(rd, r1, imm)
	case opOr:
		p.prog.NewORI(rd, r1, imm)
	case opXor:
		p.prog.NewXORI(rd, r1, imm)
	case opShl:
		p.prog.NewSLLI(rd, r1, int32(maskShiftAmount(p, loc, imm)))
	case opShr:
		p.prog.NewSRAI(rd, r1, int32(maskShiftAmount(p, loc, imm)))
	}
	return rd
}

// emitRegReg emits the register-register form of op, matching
// genBinaryOperation.
func (p *Parser) emitRegReg(r1 ir.VReg, op binop, r2 ir.VReg) ir.VReg {
	rd := p.prog.GetNewRegister()
	switch op {
	case opAdd:
		p.prog.NewADD(rd, r1, r2)
	case opSub:
		p.prog.NewSUB(rd, r1, r2)
	case opMul:
		p.prog.NewMUL(rd, r1, r2)
	case opDiv:
		p.prog.NewDIV(rd, r1, r2)
	case opAnd:
		p.prog.NewAND(rd, r1, r2)
	case opOr:
		p.prog.NewOR(rd, r1, r2)
	case opXor:
		p.prog.NewXOR(rd, r1, r2)
	case opShl:
		p.prog.NewSLL(rd, r1, r2)
	case opShr:
		p.prog.NewSRA(rd, r1, r2)
	}
	return rd
}
