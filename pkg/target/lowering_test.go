package target

import (
	"testing"

	"github.com/lance-lang/lancec/pkg/ir"
)

func TestFixPseudoInstructionsSUBI(t *testing.T) {
	p := ir.NewProgram()
	rd := p.GetNewRegister()
	rs1 := p.GetNewRegister()
	p.NewSUBI(rd, rs1, 5)

	if err := FixPseudoInstructions(p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Instructions) != 1 {
		t.Fatalf("expected SUBI to lower to exactly one ADDI, got %d instructions", len(p.Instructions))
	}
	got := p.Instructions[0]
	if got.Opcode != ir.OpADDI || got.Imm != -5 {
		t.Fatalf("expected ADDI with imm -5, got %s imm=%d", got.Opcode, got.Imm)
	}
}

func TestFixPseudoInstructionsSEQ(t *testing.T) {
	p := ir.NewProgram()
	rd, rs1, rs2 := p.GetNewRegister(), p.GetNewRegister(), p.GetNewRegister()
	p.NewSEQ(rd, rs1, rs2)

	if err := FixPseudoInstructions(p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Instructions) != 2 {
		t.Fatalf("expected SEQ to lower to SUB+SLTIU, got %d instructions", len(p.Instructions))
	}
	if p.Instructions[0].Opcode != ir.OpSUB {
		t.Fatalf("expected first instruction SUB, got %s", p.Instructions[0].Opcode)
	}
	if p.Instructions[1].Opcode != ir.OpSLTIU || p.Instructions[1].Imm != 1 {
		t.Fatalf("expected second instruction SLTIU imm=1, got %s imm=%d",
			p.Instructions[1].Opcode, p.Instructions[1].Imm)
	}
}

func TestFixPseudoInstructionsBGTSwapsOperands(t *testing.T) {
	p := ir.NewProgram()
	rs1, rs2 := p.GetNewRegister(), p.GetNewRegister()
	target := p.CreateLabel()
	p.NewBGT(rs1, rs2, target)

	if err := FixPseudoInstructions(p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := p.Instructions[0]
	if got.Opcode != ir.OpBLT {
		t.Fatalf("expected BGT to become BLT, got %s", got.Opcode)
	}
	if got.Rs1.Reg != rs2 || got.Rs2.Reg != rs1 {
		t.Fatalf("expected operands swapped, got rs1=%d rs2=%d", got.Rs1.Reg, got.Rs2.Reg)
	}
}

func TestFixPseudoInstructionsSGTIAtMax(t *testing.T) {
	p := ir.NewProgram()
	rd, rs1 := p.GetNewRegister(), p.GetNewRegister()
	p.NewSGTI(rd, rs1, 2147483647)

	if err := FixPseudoInstructions(p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Instructions) != 1 || p.Instructions[0].Opcode != ir.OpLI || p.Instructions[0].Imm != 0 {
		t.Fatalf("expected LI rd, 0 for SGTI at INT32_MAX, got %+v", p.Instructions)
	}
}

func TestFixPseudoPreservesLabelOnMultiInstructionExpansion(t *testing.T) {
	p := ir.NewProgram()
	rd, rs1, rs2 := p.GetNewRegister(), p.GetNewRegister(), p.GetNewRegister()
	p.NewNOP() // consumes the pending _start label
	l := p.CreateLabel()
	p.SetLabelName(l, "here")
	p.AssignLabel(l)
	p.NewSEQ(rd, rs1, rs2)

	if err := FixPseudoInstructions(p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Instructions[1].Label != l {
		t.Fatalf("expected label to stay on first instruction of the expansion")
	}
	if p.Instructions[2].Label != nil {
		t.Fatalf("expected no label on the second instruction of the expansion")
	}
}

func TestFixSyscallsExit0(t *testing.T) {
	p := ir.NewProgram()
	p.NewExit0()

	if err := FixSyscalls(p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Instructions) != 2 {
		t.Fatalf("expected EXIT_0 -> LI a7,10 + ECALL, got %d instructions: %v", len(p.Instructions), p.Instructions)
	}
	if p.Instructions[0].Opcode != ir.OpLI || p.Instructions[0].Imm != syscallExit0 {
		t.Fatalf("expected LI with imm %d, got %s imm=%d", syscallExit0, p.Instructions[0].Opcode, p.Instructions[0].Imm)
	}
	if len(p.Instructions[0].Rd.Whitelist) != 1 || p.Instructions[0].Rd.Whitelist[0] != SyscallFuncReg {
		t.Fatalf("expected the syscall number to be pinned to a7, got whitelist %v", p.Instructions[0].Rd.Whitelist)
	}
	if p.Instructions[1].Opcode != ir.OpECALL {
		t.Fatalf("expected ECALL, got %s", p.Instructions[1].Opcode)
	}
}

func TestFixSyscallsPrintIntCopiesArgToA0(t *testing.T) {
	p := ir.NewProgram()
	src := p.GetNewRegister()
	p.NewPrintInt(src)

	if err := FixSyscalls(p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Instructions) != 3 {
		t.Fatalf("expected LI+ADDI+ECALL, got %d instructions", len(p.Instructions))
	}
	copyIn := p.Instructions[1]
	if copyIn.Opcode != ir.OpADDI || copyIn.Rs1.Reg != src {
		t.Fatalf("expected ADDI copying %d into a0, got %+v", src, copyIn)
	}
	if len(copyIn.Rd.Whitelist) != 1 || copyIn.Rd.Whitelist[0] != SyscallArgReg {
		t.Fatalf("expected destination pinned to a0, got %v", copyIn.Rd.Whitelist)
	}
}

func TestFixSyscallsReadIntCopiesResultBack(t *testing.T) {
	p := ir.NewProgram()
	dst := p.GetNewRegister()
	p.NewReadInt(dst)

	if err := FixSyscalls(p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	last := p.Instructions[len(p.Instructions)-1]
	if last.Opcode != ir.OpADDI || last.Rd.Reg != dst {
		t.Fatalf("expected a trailing ADDI copying a0 into %d, got %+v", dst, last)
	}
	if len(last.Rs1.Whitelist) != 1 || last.Rs1.Whitelist[0] != SyscallArgReg {
		t.Fatalf("expected source pinned to a0, got %v", last.Rs1.Whitelist)
	}
}

func TestFixUnsupportedImmediatesMasksShift(t *testing.T) {
	p := ir.NewProgram()
	rd, rs1 := p.GetNewRegister(), p.GetNewRegister()
	p.NewSLLI(rd, rs1, 33)

	if err := FixUnsupportedImmediates(p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Instructions[0].Imm != 1 {
		t.Fatalf("expected shift amount masked to 1 (33 & 0x1F), got %d", p.Instructions[0].Imm)
	}
}

func TestFixUnsupportedImmediatesADDIFromZeroBecomesLI(t *testing.T) {
	p := ir.NewProgram()
	rd := p.GetNewRegister()
	p.NewADDI(rd, ir.RegZero, 100000)

	if err := FixUnsupportedImmediates(p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Instructions) != 1 || p.Instructions[0].Opcode != ir.OpLI || p.Instructions[0].Imm != 100000 {
		t.Fatalf("expected a single LI, got %+v", p.Instructions)
	}
}

func TestFixUnsupportedImmediatesMuliAlwaysMaterializes(t *testing.T) {
	p := ir.NewProgram()
	rd, rs1 := p.GetNewRegister(), p.GetNewRegister()
	p.NewMULI(rd, rs1, 3)

	if err := FixUnsupportedImmediates(p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Instructions) != 2 {
		t.Fatalf("expected MULI to always materialize its immediate, got %d instructions", len(p.Instructions))
	}
	if p.Instructions[0].Opcode != ir.OpLI || p.Instructions[0].Imm != 3 {
		t.Fatalf("expected LI with imm 3, got %+v", p.Instructions[0])
	}
	if p.Instructions[1].Opcode != ir.OpMUL {
		t.Fatalf("expected MUL register-register form, got %s", p.Instructions[1].Opcode)
	}
}

func TestFixUnsupportedImmediatesLeavesSmallAddiAlone(t *testing.T) {
	p := ir.NewProgram()
	rd, rs1 := p.GetNewRegister(), p.GetNewRegister()
	p.NewADDI(rd, rs1, 5)

	if err := FixUnsupportedImmediates(p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Instructions) != 1 || p.Instructions[0].Opcode != ir.OpADDI || p.Instructions[0].Imm != 5 {
		t.Fatalf("expected ADDI left untouched, got %+v", p.Instructions)
	}
}
