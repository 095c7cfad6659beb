// Package target carries RV32IM-specific facts and lowering passes: the
// register file and its ABI names, the general-purpose/caller-save/spill
// register sets, instruction predicates used by CFG construction, and the
// three target-specific lowering passes that rewrite pseudo-instructions
// and syscall placeholders into the physical subset the assembler accepts.
package target

import "github.com/lance-lang/lancec/pkg/ir"

// Physical register ids, in the same x0..x31 order as the ABI name table
// below. Grounded on target_asm_print.c's registerIDToString.
const (
	RegZero ir.PhysReg = iota
	RegRA
	RegSP
	RegGP
	RegTP
	RegT0
	RegT1
	RegT2
	RegS0
	RegS1
	RegA0
	RegA1
	RegA2
	RegA3
	RegA4
	RegA5
	RegA6
	RegA7
	RegS2
	RegS3
	RegS4
	RegS5
	RegS6
	RegS7
	RegS8
	RegS9
	RegS10
	RegS11
	RegT3
	RegT4
	RegT5
	RegT6
)

// abiNames is the 32-entry ABI register name table, in x0..x31 order,
// transcribed from target_asm_print.c's registerIDToString.
var abiNames = [...]string{
	"zero", "ra", "sp", "gp", "tp", "t0", "t1", "t2", "s0", "s1",
	"a0", "a1", "a2", "a3", "a4", "a5", "a6", "a7",
	"s2", "s3", "s4", "s5", "s6", "s7", "s8",
	"s9", "s10", "s11",
	"t3", "t4", "t5", "t6",
}

// RegisterName returns the ABI name of a physical register (e.g. "a0").
func RegisterName(r ir.PhysReg) string {
	if int(r) < 0 || int(r) >= len(abiNames) {
		return "?"
	}
	return abiNames[r]
}

// NumSpillRegs is the count of physical registers withheld from the
// allocator's free set and dedicated to staging spilled operands, per
// spec §4.6.
const NumSpillRegs = 3

// SpillRegister returns the i'th scratch register reserved for spill
// traffic (i in [0, NumSpillRegs)), matching target_info.c's
// getSpillRegister: i + REG_S9.
func SpillRegister(i int) ir.PhysReg {
	if i < 0 || i >= NumSpillRegs {
		panic("target: spill register index out of range")
	}
	return RegS9 + ir.PhysReg(i)
}

// GeneralPurposeRegisters is the allocator's free pool, in preference
// order (saved, then temp, then arg), excluding the three spill scratch
// registers (s9-s11) and the always-reserved zero/ra/sp/gp/tp. Grounded on
// target_info.c's getListOfGenPurposeRegisters.
func GeneralPurposeRegisters() []ir.PhysReg {
	return []ir.PhysReg{
		RegS0, RegS1, RegS2, RegS3, RegS4, RegS5, RegS6, RegS7, RegS8,
		RegT0, RegT1, RegT2, RegT3, RegT4, RegT5,
		RegA0, RegA1, RegA2, RegA3, RegA4, RegA5, RegA6, RegA7,
	}
}

// CallerSaveRegisters is the set clobbered across an ECALL: t0-t5 and
// every argument register (t6 is not listed). Grounded on target_info.c's
// getListOfCallerSaveRegisters.
func CallerSaveRegisters() []ir.PhysReg {
	return []ir.PhysReg{
		RegT0, RegT1, RegT2, RegT3, RegT4, RegT5,
		RegA0, RegA1, RegA2, RegA3, RegA4, RegA5, RegA6, RegA7,
	}
}

// Syscall ABI register constraints, used by FixSyscalls to pin the
// function-number and single-argument/return operands.
const (
	SyscallFuncReg = RegA7
	SyscallArgReg  = RegA0
)

// PhysRegBase offsets physical register ids into a numeric range disjoint
// from any virtual register id a real program will ever allocate, so a
// RegArg.Reg field can unambiguously carry either a not-yet-allocated
// virtual register or a final physical register without a separate type.
// Once the register allocator and spill materialiser finish, every
// operand in the program is in this space (P4's spill-containment
// property: no vreg id leaks into the printed output).
const PhysRegBase ir.VReg = 1 << 20

// AsVReg encodes a physical register as the VReg value that represents it
// post-allocation.
func AsVReg(r ir.PhysReg) ir.VReg { return PhysRegBase + ir.VReg(r) }

// PhysRegFromVReg decodes a VReg back into a physical register, reporting
// false if v is still an unallocated virtual register.
func PhysRegFromVReg(v ir.VReg) (ir.PhysReg, bool) {
	if v >= PhysRegBase {
		return ir.PhysReg(v - PhysRegBase), true
	}
	return ir.NoPhysReg, false
}
