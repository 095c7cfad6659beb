package regalloc

import (
	"github.com/lance-lang/lancec/pkg/ir"
	"github.com/lance-lang/lancec/pkg/target"
)

// ApplyBindings rewrites every operand of every instruction in prog that
// was NOT spilled to its final physical register, encoded via
// target.AsVReg. Spilled operands are left holding their original vreg id
// for MaterializeSpills to resolve next; x0 operands are rewritten
// unconditionally since the zero register never appears in result.Bindings
// (cflow's newNode excludes it from def/use extraction).
func ApplyBindings(prog *ir.Program, result *Result) {
	for _, instr := range prog.Instructions {
		rewriteOperand(&instr.Rd, result)
		rewriteOperand(&instr.Rs1, result)
		rewriteOperand(&instr.Rs2, result)
	}
}

func rewriteOperand(op *ir.RegArg, result *Result) {
	if !op.Valid() {
		return
	}
	if op.Reg == ir.RegZero {
		op.Reg = target.AsVReg(target.RegZero)
		return
	}
	binding, ok := result.Bindings[op.Reg]
	if !ok || binding.Spilled {
		return
	}
	op.Reg = target.AsVReg(binding.Reg)
	op.Whitelist = nil
}
