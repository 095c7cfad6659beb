package target

import "github.com/lance-lang/lancec/pkg/ir"

// IsHaltOrRet reports whether instr terminates execution, matching
// target_info.c's isHaltOrRetInstruction. Only the EXIT_0 syscall
// placeholder qualifies; the LI+ECALL sequence FixSyscalls expands it into
// is not recognised as a halt.
func IsHaltOrRet(instr *ir.Instruction) bool {
	return instr.Opcode == ir.OpExit0
}

// IsUnconditionalJump reports whether instr is a plain jump with no
// condition, matching target_info.c's isUnconditionalJump.
func IsUnconditionalJump(instr *ir.Instruction) bool {
	return instr.Opcode == ir.OpJ
}

// IsJumpInstruction reports whether instr is any jump or branch (the set
// CFG construction treats as a terminator), matching
// target_info.c's isJumpInstruction.
func IsJumpInstruction(instr *ir.Instruction) bool {
	switch instr.Opcode {
	case ir.OpJ, ir.OpBEQ, ir.OpBNE, ir.OpBLT, ir.OpBLTU, ir.OpBGE, ir.OpBGEU,
		ir.OpBGT, ir.OpBGTU, ir.OpBLE, ir.OpBLEU,
		ir.OpBEQZ, ir.OpBNEZ, ir.OpBLEZ, ir.OpBGEZ, ir.OpBLTZ, ir.OpBGTZ:
		return true
	default:
		return false
	}
}

// IsCallInstruction reports whether instr is a syscall-invoking ECALL,
// matching target_info.c's isCallInstruction.
func IsCallInstruction(instr *ir.Instruction) bool {
	return instr.Opcode == ir.OpECALL
}

// IsTerminator reports whether instr ends a basic block: any jump/branch
// or a halt/return.
func IsTerminator(instr *ir.Instruction) bool {
	return IsHaltOrRet(instr) || IsJumpInstruction(instr)
}

// UsesPSW and DefinesPSW are always false for RV32IM: the flag-variable
// machinery CFG construction carries for targets with a condition-code
// register is present but inert here, matching target_info.c's
// instructionUsesPSW/instructionDefinesPSW (both hardcoded false).
func UsesPSW(instr *ir.Instruction) bool    { return false }
func DefinesPSW(instr *ir.Instruction) bool { return false }

// fitsInt12 reports whether imm fits in a signed 12-bit immediate field,
// matching target_transform.c's isInt12.
func fitsInt12(imm int32) bool {
	return imm < 2048 && imm >= -2048
}
