package target

import (
	"fmt"
	"math"

	"github.com/lance-lang/lancec/pkg/ir"
)

// rewriteEach replaces every instruction in prog with the result of
// rewrite, preserving the original instruction's Label and Comment on the
// first instruction of its replacement (or synthesising a NOP to host an
// orphaned label, mirroring ir.Program.RemoveInstructionAt's rule). A pass
// that wants to leave an instruction untouched should return
// []*ir.Instruction{instr} unchanged.
func rewriteEach(prog *ir.Program, rewrite func(*ir.Instruction) []*ir.Instruction) {
	out := make([]*ir.Instruction, 0, len(prog.Instructions))
	for _, instr := range prog.Instructions {
		replacement := rewrite(instr)
		if len(replacement) == 0 {
			if instr.Label != nil {
				replacement = []*ir.Instruction{{Opcode: ir.OpNOP, Label: instr.Label, Comment: instr.Comment}}
			}
		} else if replacement[0] != instr {
			if instr.Label != nil {
				replacement[0].Label = instr.Label
			}
			if replacement[0].Comment == "" {
				replacement[0].Comment = instr.Comment
			}
		}
		out = append(out, replacement...)
	}
	prog.Instructions = out
}

// FixPseudoInstructions rewrites every comparison/subtraction pseudo-op
// into one or two physical RV32IM instructions, grounded on
// target_transform.c's fixPseudoInstructions.
func FixPseudoInstructions(prog *ir.Program) error {
	var passErr error
	rewriteEach(prog, func(instr *ir.Instruction) []*ir.Instruction {
		out, err := lowerPseudo(prog, instr)
		if err != nil && passErr == nil {
			passErr = err
		}
		return out
	})
	return passErr
}

func lowerPseudo(prog *ir.Program, instr *ir.Instruction) ([]*ir.Instruction, error) {
	rd := instr.Rd.Reg
	rs1 := instr.Rs1.Reg
	rs2 := instr.Rs2.Reg
	imm := instr.Imm

	switch instr.Opcode {
	case ir.OpSUBI:
		return []*ir.Instruction{{Opcode: ir.OpADDI, Rd: ir.Arg(rd), Rs1: ir.Arg(rs1), Imm: -imm}}, nil

	case ir.OpSEQ:
		sub := &ir.Instruction{Opcode: ir.OpSUB, Rd: ir.Arg(rd), Rs1: ir.Arg(rs1), Rs2: ir.Arg(rs2)}
		sltiu := &ir.Instruction{Opcode: ir.OpSLTIU, Rd: ir.Arg(rd), Rs1: ir.Arg(rd), Imm: 1}
		return []*ir.Instruction{sub, sltiu}, nil
	case ir.OpSNE:
		sub := &ir.Instruction{Opcode: ir.OpSUB, Rd: ir.Arg(rd), Rs1: ir.Arg(rs1), Rs2: ir.Arg(rs2)}
		sltu := &ir.Instruction{Opcode: ir.OpSLTU, Rd: ir.Arg(rd), Rs1: ir.Arg(ir.RegZero), Rs2: ir.Arg(rd)}
		return []*ir.Instruction{sub, sltu}, nil
	case ir.OpSEQI:
		addi := &ir.Instruction{Opcode: ir.OpADDI, Rd: ir.Arg(rd), Rs1: ir.Arg(rs1), Imm: -imm}
		sltiu := &ir.Instruction{Opcode: ir.OpSLTIU, Rd: ir.Arg(rd), Rs1: ir.Arg(rd), Imm: 1}
		return []*ir.Instruction{addi, sltiu}, nil
	case ir.OpSNEI:
		addi := &ir.Instruction{Opcode: ir.OpADDI, Rd: ir.Arg(rd), Rs1: ir.Arg(rs1), Imm: -imm}
		sltu := &ir.Instruction{Opcode: ir.OpSLTU, Rd: ir.Arg(rd), Rs1: ir.Arg(ir.RegZero), Rs2: ir.Arg(rd)}
		return []*ir.Instruction{addi, sltu}, nil

	case ir.OpSGTI:
		if imm == math.MaxInt32 {
			return []*ir.Instruction{{Opcode: ir.OpLI, Rd: ir.Arg(rd), Imm: 0}}, nil
		}
		slt := &ir.Instruction{Opcode: ir.OpSLTI, Rd: ir.Arg(rd), Rs1: ir.Arg(rs1), Imm: imm + 1}
		xori := &ir.Instruction{Opcode: ir.OpXORI, Rd: ir.Arg(rd), Rs1: ir.Arg(rd), Imm: 1}
		return []*ir.Instruction{slt, xori}, nil
	case ir.OpSGTIU:
		if uint32(imm) == math.MaxUint32 {
			return []*ir.Instruction{{Opcode: ir.OpLI, Rd: ir.Arg(rd), Imm: 0}}, nil
		}
		slt := &ir.Instruction{Opcode: ir.OpSLTIU, Rd: ir.Arg(rd), Rs1: ir.Arg(rs1), Imm: imm + 1}
		xori := &ir.Instruction{Opcode: ir.OpXORI, Rd: ir.Arg(rd), Rs1: ir.Arg(rd), Imm: 1}
		return []*ir.Instruction{slt, xori}, nil

	case ir.OpSLEI:
		if imm == math.MaxInt32 {
			return []*ir.Instruction{{Opcode: ir.OpLI, Rd: ir.Arg(rd), Imm: 1}}, nil
		}
		return []*ir.Instruction{{Opcode: ir.OpSLTI, Rd: ir.Arg(rd), Rs1: ir.Arg(rs1), Imm: imm + 1}}, nil
	case ir.OpSLEIU:
		if uint32(imm) == math.MaxUint32 {
			return []*ir.Instruction{{Opcode: ir.OpLI, Rd: ir.Arg(rd), Imm: 1}}, nil
		}
		return []*ir.Instruction{{Opcode: ir.OpSLTIU, Rd: ir.Arg(rd), Rs1: ir.Arg(rs1), Imm: imm + 1}}, nil

	case ir.OpSGE:
		slt := &ir.Instruction{Opcode: ir.OpSLT, Rd: ir.Arg(rd), Rs1: ir.Arg(rs1), Rs2: ir.Arg(rs2)}
		xori := &ir.Instruction{Opcode: ir.OpXORI, Rd: ir.Arg(rd), Rs1: ir.Arg(rd), Imm: 1}
		return []*ir.Instruction{slt, xori}, nil
	case ir.OpSGEU:
		slt := &ir.Instruction{Opcode: ir.OpSLTU, Rd: ir.Arg(rd), Rs1: ir.Arg(rs1), Rs2: ir.Arg(rs2)}
		xori := &ir.Instruction{Opcode: ir.OpXORI, Rd: ir.Arg(rd), Rs1: ir.Arg(rd), Imm: 1}
		return []*ir.Instruction{slt, xori}, nil
	case ir.OpSGEI:
		slt := &ir.Instruction{Opcode: ir.OpSLTI, Rd: ir.Arg(rd), Rs1: ir.Arg(rs1), Imm: imm}
		xori := &ir.Instruction{Opcode: ir.OpXORI, Rd: ir.Arg(rd), Rs1: ir.Arg(rd), Imm: 1}
		return []*ir.Instruction{slt, xori}, nil
	case ir.OpSGEIU:
		slt := &ir.Instruction{Opcode: ir.OpSLTIU, Rd: ir.Arg(rd), Rs1: ir.Arg(rs1), Imm: imm}
		xori := &ir.Instruction{Opcode: ir.OpXORI, Rd: ir.Arg(rd), Rs1: ir.Arg(rd), Imm: 1}
		return []*ir.Instruction{slt, xori}, nil

	case ir.OpSLE:
		// rs1 <= rs2  <=>  !(rs2 < rs1)
		slt := &ir.Instruction{Opcode: ir.OpSLT, Rd: ir.Arg(rd), Rs1: ir.Arg(rs2), Rs2: ir.Arg(rs1)}
		xori := &ir.Instruction{Opcode: ir.OpXORI, Rd: ir.Arg(rd), Rs1: ir.Arg(rd), Imm: 1}
		return []*ir.Instruction{slt, xori}, nil
	case ir.OpSLEU:
		slt := &ir.Instruction{Opcode: ir.OpSLTU, Rd: ir.Arg(rd), Rs1: ir.Arg(rs2), Rs2: ir.Arg(rs1)}
		xori := &ir.Instruction{Opcode: ir.OpXORI, Rd: ir.Arg(rd), Rs1: ir.Arg(rd), Imm: 1}
		return []*ir.Instruction{slt, xori}, nil

	case ir.OpSGT:
		return []*ir.Instruction{{Opcode: ir.OpSLT, Rd: ir.Arg(rd), Rs1: ir.Arg(rs2), Rs2: ir.Arg(rs1)}}, nil
	case ir.OpSGTU:
		return []*ir.Instruction{{Opcode: ir.OpSLTU, Rd: ir.Arg(rd), Rs1: ir.Arg(rs2), Rs2: ir.Arg(rs1)}}, nil
	case ir.OpBGT:
		return []*ir.Instruction{{Opcode: ir.OpBLT, Rs1: ir.Arg(rs2), Rs2: ir.Arg(rs1), Addr: instr.Addr}}, nil
	case ir.OpBGTU:
		return []*ir.Instruction{{Opcode: ir.OpBLTU, Rs1: ir.Arg(rs2), Rs2: ir.Arg(rs1), Addr: instr.Addr}}, nil
	case ir.OpBLE:
		return []*ir.Instruction{{Opcode: ir.OpBGE, Rs1: ir.Arg(rs2), Rs2: ir.Arg(rs1), Addr: instr.Addr}}, nil
	case ir.OpBLEU:
		return []*ir.Instruction{{Opcode: ir.OpBGEU, Rs1: ir.Arg(rs2), Rs2: ir.Arg(rs1), Addr: instr.Addr}}, nil

	case ir.OpBEQZ:
		return []*ir.Instruction{{Opcode: ir.OpBEQ, Rs1: ir.Arg(rs1), Rs2: ir.Arg(ir.RegZero), Addr: instr.Addr}}, nil
	case ir.OpBNEZ:
		return []*ir.Instruction{{Opcode: ir.OpBNE, Rs1: ir.Arg(rs1), Rs2: ir.Arg(ir.RegZero), Addr: instr.Addr}}, nil
	case ir.OpBLTZ:
		return []*ir.Instruction{{Opcode: ir.OpBLT, Rs1: ir.Arg(rs1), Rs2: ir.Arg(ir.RegZero), Addr: instr.Addr}}, nil
	case ir.OpBGEZ:
		return []*ir.Instruction{{Opcode: ir.OpBGE, Rs1: ir.Arg(rs1), Rs2: ir.Arg(ir.RegZero), Addr: instr.Addr}}, nil
	case ir.OpBGTZ:
		// rs1 > 0  <=>  0 < rs1
		return []*ir.Instruction{{Opcode: ir.OpBLT, Rs1: ir.Arg(ir.RegZero), Rs2: ir.Arg(rs1), Addr: instr.Addr}}, nil
	case ir.OpBLEZ:
		// rs1 <= 0  <=>  0 >= rs1
		return []*ir.Instruction{{Opcode: ir.OpBGE, Rs1: ir.Arg(ir.RegZero), Rs2: ir.Arg(rs1), Addr: instr.Addr}}, nil

	default:
		return []*ir.Instruction{instr}, nil
	}
}

// FixSyscalls expands the four syscall placeholders into the LI
// a7/ADDI-to-a0/ECALL/ADDI-from-a0 sequence the real ISA requires,
// grounded on target_transform.c's fixSyscalls. The syscall numbers are
// the closed ABI the original source defines: EXIT_0=10, READ_INT=5,
// PRINT_INT=1, PRINT_CHAR=11.
func FixSyscalls(prog *ir.Program) error {
	rewriteEach(prog, func(instr *ir.Instruction) []*ir.Instruction {
		return lowerSyscall(prog, instr)
	})
	return nil
}

const (
	syscallExit0     = 10
	syscallReadInt   = 5
	syscallPrintInt  = 1
	syscallPrintChar = 11
)

func lowerSyscall(prog *ir.Program, instr *ir.Instruction) []*ir.Instruction {
	var num int32
	switch instr.Opcode {
	case ir.OpExit0:
		num = syscallExit0
	case ir.OpReadInt:
		num = syscallReadInt
	case ir.OpPrintInt:
		num = syscallPrintInt
	case ir.OpPrintChar:
		num = syscallPrintChar
	default:
		return []*ir.Instruction{instr}
	}

	var out []*ir.Instruction
	out = append(out, &ir.Instruction{
		Opcode: ir.OpLI,
		Rd:     ir.ConstrainedArg(syscallFuncTemp(prog), SyscallFuncReg),
		Imm:    num,
	})

	// An unset operand slot reads as x0, which Valid accepts, so the opcode
	// decides which copies apply: only PRINT_INT/PRINT_CHAR take an argument
	// and only READ_INT returns a result.
	takesArg := instr.Opcode == ir.OpPrintInt || instr.Opcode == ir.OpPrintChar
	if takesArg && instr.Rs1.Valid() {
		out = append(out, &ir.Instruction{
			Opcode: ir.OpADDI,
			Rd:     ir.ConstrainedArg(syscallArgTemp(prog), SyscallArgReg),
			Rs1:    ir.Arg(instr.Rs1.Reg),
			Imm:    0,
		})
	}

	out = append(out, &ir.Instruction{Opcode: ir.OpECALL})

	if instr.Opcode == ir.OpReadInt && instr.Rd.Valid() {
		out = append(out, &ir.Instruction{
			Opcode: ir.OpADDI,
			Rd:     ir.Arg(instr.Rd.Reg),
			Rs1:    ir.ConstrainedArg(syscallRetTemp(prog), SyscallArgReg),
			Imm:    0,
		})
	}
	return out
}

// syscallFuncTemp/syscallArgTemp/syscallRetTemp allocate the temporaries
// FixSyscalls pins to a7/a0 via single-element whitelists. Kept as plain
// GetNewRegister calls rather than a shared vreg across occurrences: each
// call site gets its own temporary, matching how target_transform.c treats
// every ECALL site independently.
func syscallFuncTemp(prog *ir.Program) ir.VReg { return prog.GetNewRegister() }
func syscallArgTemp(prog *ir.Program) ir.VReg  { return prog.GetNewRegister() }
func syscallRetTemp(prog *ir.Program) ir.VReg  { return prog.GetNewRegister() }

// FixUnsupportedImmediates rewrites any I-format instruction whose
// immediate cannot be encoded directly: ADDI from x0 with an out-of-range
// immediate becomes a single LI; MULI/DIVI or any other out-of-range
// immediate is materialised with LI into a fresh register and the
// instruction switches to its register-register form; shift immediates
// are masked to 5 bits. Grounded on
// target_transform.c's fixUnsupportedImmediates.
func FixUnsupportedImmediates(prog *ir.Program) error {
	rewriteEach(prog, func(instr *ir.Instruction) []*ir.Instruction {
		return lowerImmediate(prog, instr)
	})
	return nil
}

func lowerImmediate(prog *ir.Program, instr *ir.Instruction) []*ir.Instruction {
	switch instr.Opcode {
	case ir.OpSLLI, ir.OpSRLI, ir.OpSRAI:
		masked := instr.Imm & 0x1F
		return []*ir.Instruction{{Opcode: instr.Opcode, Rd: instr.Rd, Rs1: instr.Rs1, Imm: masked}}
	}

	if !instr.Opcode.IsImmediate() {
		return []*ir.Instruction{instr}
	}

	if instr.Opcode == ir.OpADDI && instr.Rs1.Reg == ir.RegZero && !fitsInt12(instr.Imm) {
		return []*ir.Instruction{{Opcode: ir.OpLI, Rd: instr.Rd, Imm: instr.Imm}}
	}

	mustMaterialize := instr.Opcode == ir.OpMULI || instr.Opcode == ir.OpDIVI || !fitsInt12(instr.Imm)
	if !mustMaterialize {
		return []*ir.Instruction{instr}
	}

	nonImm, err := nonImmediateForm(instr.Opcode)
	if err != nil {
		// Unreachable for any opcode produced by this compiler; a
		// malformed IR reaching this point is a compile-time invariant
		// violation (spec §7 kind 2), not a recoverable condition.
		panic(err)
	}
	temp := prog.GetNewRegister()
	li := &ir.Instruction{Opcode: ir.OpLI, Rd: ir.Arg(temp), Imm: instr.Imm}
	rr := &ir.Instruction{Opcode: nonImm, Rd: instr.Rd, Rs1: instr.Rs1, Rs2: ir.Arg(temp)}
	return []*ir.Instruction{li, rr}
}

// nonImmediateForm maps an I-format opcode to its register-register
// counterpart, matching target_transform.c's getMatchingNonImmediateOpcode.
func nonImmediateForm(op ir.Opcode) (ir.Opcode, error) {
	switch op {
	case ir.OpADDI:
		return ir.OpADD, nil
	case ir.OpANDI:
		return ir.OpAND, nil
	case ir.OpORI:
		return ir.OpOR, nil
	case ir.OpXORI:
		return ir.OpXOR, nil
	case ir.OpMULI:
		return ir.OpMUL, nil
	case ir.OpDIVI:
		return ir.OpDIV, nil
	case ir.OpSLTI:
		return ir.OpSLT, nil
	case ir.OpSLTIU:
		return ir.OpSLTU, nil
	default:
		return ir.OpInvalid, fmt.Errorf("target: no register-register form for immediate opcode %s", op)
	}
}
