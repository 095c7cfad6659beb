package ir

// This file is the Consumer API's gen* suite: typed constructors that
// append an instruction to the program and return it so callers may stash
// a pointer for later patching (e.g. fixing up a branch target once the
// destination label exists). Callers pass only VRegs obtained from this
// program's GetNewRegister, RegZero or RegNone; the constructors do not
// check this, and a foreign VReg is a compiler bug, never a
// front-end-reachable error.

// rFormat appends a three-register instruction: rd = rs1 OP rs2.
func (p *Program) rFormat(op Opcode, rd, rs1, rs2 VReg) *Instruction {
	return p.AddInstruction(&Instruction{Opcode: op, Rd: Arg(rd), Rs1: Arg(rs1), Rs2: Arg(rs2)})
}

// iFormat appends a register-immediate instruction: rd = rs1 OP imm.
func (p *Program) iFormat(op Opcode, rd, rs1 VReg, imm int32) *Instruction {
	return p.AddInstruction(&Instruction{Opcode: op, Rd: Arg(rd), Rs1: Arg(rs1), Imm: imm})
}

// bFormat appends a conditional branch: if rs1 OP rs2, jump to target.
func (p *Program) bFormat(op Opcode, rs1, rs2 VReg, target *Label) *Instruction {
	return p.AddInstruction(&Instruction{Opcode: op, Rs1: Arg(rs1), Rs2: Arg(rs2), Addr: target})
}

// zFormat appends a zero-comparison branch: if rs1 OP 0, jump to target.
func (p *Program) zFormat(op Opcode, rs1 VReg, target *Label) *Instruction {
	return p.AddInstruction(&Instruction{Opcode: op, Rs1: Arg(rs1), Addr: target})
}

func (p *Program) NewADD(rd, rs1, rs2 VReg) *Instruction  { return p.rFormat(OpADD, rd, rs1, rs2) }
func (p *Program) NewSUB(rd, rs1, rs2 VReg) *Instruction  { return p.rFormat(OpSUB, rd, rs1, rs2) }
func (p *Program) NewAND(rd, rs1, rs2 VReg) *Instruction  { return p.rFormat(OpAND, rd, rs1, rs2) }
func (p *Program) NewOR(rd, rs1, rs2 VReg) *Instruction   { return p.rFormat(OpOR, rd, rs1, rs2) }
func (p *Program) NewXOR(rd, rs1, rs2 VReg) *Instruction  { return p.rFormat(OpXOR, rd, rs1, rs2) }
func (p *Program) NewMUL(rd, rs1, rs2 VReg) *Instruction  { return p.rFormat(OpMUL, rd, rs1, rs2) }
func (p *Program) NewDIV(rd, rs1, rs2 VReg) *Instruction  { return p.rFormat(OpDIV, rd, rs1, rs2) }
func (p *Program) NewDIVU(rd, rs1, rs2 VReg) *Instruction { return p.rFormat(OpDIVU, rd, rs1, rs2) }
func (p *Program) NewREM(rd, rs1, rs2 VReg) *Instruction  { return p.rFormat(OpREM, rd, rs1, rs2) }
func (p *Program) NewREMU(rd, rs1, rs2 VReg) *Instruction { return p.rFormat(OpREMU, rd, rs1, rs2) }
func (p *Program) NewSLL(rd, rs1, rs2 VReg) *Instruction  { return p.rFormat(OpSLL, rd, rs1, rs2) }
func (p *Program) NewSRL(rd, rs1, rs2 VReg) *Instruction  { return p.rFormat(OpSRL, rd, rs1, rs2) }
func (p *Program) NewSRA(rd, rs1, rs2 VReg) *Instruction  { return p.rFormat(OpSRA, rd, rs1, rs2) }
func (p *Program) NewSLT(rd, rs1, rs2 VReg) *Instruction  { return p.rFormat(OpSLT, rd, rs1, rs2) }
func (p *Program) NewSLTU(rd, rs1, rs2 VReg) *Instruction { return p.rFormat(OpSLTU, rd, rs1, rs2) }

func (p *Program) NewADDI(rd, rs1 VReg, imm int32) *Instruction { return p.iFormat(OpADDI, rd, rs1, imm) }
func (p *Program) NewANDI(rd, rs1 VReg, imm int32) *Instruction { return p.iFormat(OpANDI, rd, rs1, imm) }
func (p *Program) NewORI(rd, rs1 VReg, imm int32) *Instruction  { return p.iFormat(OpORI, rd, rs1, imm) }
func (p *Program) NewXORI(rd, rs1 VReg, imm int32) *Instruction {
	return p.iFormat(OpXORI, rd, rs1, imm)
}
func (p *Program) NewMULI(rd, rs1 VReg, imm int32) *Instruction { return p.iFormat(OpMULI, rd, rs1, imm) }
func (p *Program) NewDIVI(rd, rs1 VReg, imm int32) *Instruction { return p.iFormat(OpDIVI, rd, rs1, imm) }
func (p *Program) NewSLLI(rd, rs1 VReg, imm int32) *Instruction { return p.iFormat(OpSLLI, rd, rs1, imm) }
func (p *Program) NewSRLI(rd, rs1 VReg, imm int32) *Instruction { return p.iFormat(OpSRLI, rd, rs1, imm) }
func (p *Program) NewSRAI(rd, rs1 VReg, imm int32) *Instruction { return p.iFormat(OpSRAI, rd, rs1, imm) }
func (p *Program) NewSLTI(rd, rs1 VReg, imm int32) *Instruction {
	return p.iFormat(OpSLTI, rd, rs1, imm)
}
func (p *Program) NewSLTIU(rd, rs1 VReg, imm int32) *Instruction {
	return p.iFormat(OpSLTIU, rd, rs1, imm)
}

// NewLW appends rd = MEM[rs1 + imm].
func (p *Program) NewLW(rd, rs1 VReg, imm int32) *Instruction { return p.iFormat(OpLW, rd, rs1, imm) }

// NewSW appends MEM[rs1 + imm] = rs2.
func (p *Program) NewSW(rs1, rs2 VReg, imm int32) *Instruction {
	return p.AddInstruction(&Instruction{Opcode: OpSW, Rs1: Arg(rs1), Rs2: Arg(rs2), Imm: imm})
}

// NewLWG appends rd = MEM[label] (global load, no base register).
func (p *Program) NewLWG(rd VReg, label *Label) *Instruction {
	return p.AddInstruction(&Instruction{Opcode: OpLWG, Rd: Arg(rd), Addr: label})
}

// NewSWG appends MEM[label] = rs2, using scratch as the address temp.
func (p *Program) NewSWG(rs2, scratch VReg, label *Label) *Instruction {
	return p.AddInstruction(&Instruction{Opcode: OpSWG, Rs1: Arg(scratch), Rs2: Arg(rs2), Addr: label})
}

// NewJ appends an unconditional jump to target.
func (p *Program) NewJ(target *Label) *Instruction {
	return p.AddInstruction(&Instruction{Opcode: OpJ, Addr: target})
}

// NewLI appends rd = imm.
func (p *Program) NewLI(rd VReg, imm int32) *Instruction {
	return p.AddInstruction(&Instruction{Opcode: OpLI, Rd: Arg(rd), Imm: imm})
}

// NewLA appends rd = &label.
func (p *Program) NewLA(rd VReg, label *Label) *Instruction {
	return p.AddInstruction(&Instruction{Opcode: OpLA, Rd: Arg(rd), Addr: label})
}

func (p *Program) NewNOP() *Instruction    { return p.AddInstruction(&Instruction{Opcode: OpNOP}) }
func (p *Program) NewECALL() *Instruction  { return p.AddInstruction(&Instruction{Opcode: OpECALL}) }
func (p *Program) NewEBREAK() *Instruction { return p.AddInstruction(&Instruction{Opcode: OpEBREAK}) }

// Branch constructors. Each owns a distinct, correct opcode: spec.md's
// Open Questions call out a copy-paste bug in the original source where
// every genBxx function forwarded to OPC_BEQ regardless of the requested
// mnemonic. There is no such bug here to replicate.
func (p *Program) NewBEQ(rs1, rs2 VReg, target *Label) *Instruction {
	return p.bFormat(OpBEQ, rs1, rs2, target)
}
func (p *Program) NewBNE(rs1, rs2 VReg, target *Label) *Instruction {
	return p.bFormat(OpBNE, rs1, rs2, target)
}
func (p *Program) NewBLT(rs1, rs2 VReg, target *Label) *Instruction {
	return p.bFormat(OpBLT, rs1, rs2, target)
}
func (p *Program) NewBLTU(rs1, rs2 VReg, target *Label) *Instruction {
	return p.bFormat(OpBLTU, rs1, rs2, target)
}
func (p *Program) NewBGE(rs1, rs2 VReg, target *Label) *Instruction {
	return p.bFormat(OpBGE, rs1, rs2, target)
}
func (p *Program) NewBGEU(rs1, rs2 VReg, target *Label) *Instruction {
	return p.bFormat(OpBGEU, rs1, rs2, target)
}
func (p *Program) NewBGT(rs1, rs2 VReg, target *Label) *Instruction {
	return p.bFormat(OpBGT, rs1, rs2, target)
}
func (p *Program) NewBGTU(rs1, rs2 VReg, target *Label) *Instruction {
	return p.bFormat(OpBGTU, rs1, rs2, target)
}
func (p *Program) NewBLE(rs1, rs2 VReg, target *Label) *Instruction {
	return p.bFormat(OpBLE, rs1, rs2, target)
}
func (p *Program) NewBLEU(rs1, rs2 VReg, target *Label) *Instruction {
	return p.bFormat(OpBLEU, rs1, rs2, target)
}

// Zero-comparison branch constructors, rewritten by FixPseudoInstructions
// into the matching two-register physical branch against x0.
func (p *Program) NewBEQZ(rs1 VReg, target *Label) *Instruction {
	return p.zFormat(OpBEQZ, rs1, target)
}
func (p *Program) NewBNEZ(rs1 VReg, target *Label) *Instruction {
	return p.zFormat(OpBNEZ, rs1, target)
}
func (p *Program) NewBLEZ(rs1 VReg, target *Label) *Instruction {
	return p.zFormat(OpBLEZ, rs1, target)
}
func (p *Program) NewBGEZ(rs1 VReg, target *Label) *Instruction {
	return p.zFormat(OpBGEZ, rs1, target)
}
func (p *Program) NewBLTZ(rs1 VReg, target *Label) *Instruction {
	return p.zFormat(OpBLTZ, rs1, target)
}
func (p *Program) NewBGTZ(rs1 VReg, target *Label) *Instruction {
	return p.zFormat(OpBGTZ, rs1, target)
}

// Comparison pseudo-ops (set-if), rewritten by FixPseudoInstructions.
func (p *Program) NewSEQ(rd, rs1, rs2 VReg) *Instruction  { return p.rFormat(OpSEQ, rd, rs1, rs2) }
func (p *Program) NewSNE(rd, rs1, rs2 VReg) *Instruction  { return p.rFormat(OpSNE, rd, rs1, rs2) }
func (p *Program) NewSGE(rd, rs1, rs2 VReg) *Instruction  { return p.rFormat(OpSGE, rd, rs1, rs2) }
func (p *Program) NewSGEU(rd, rs1, rs2 VReg) *Instruction { return p.rFormat(OpSGEU, rd, rs1, rs2) }
func (p *Program) NewSGT(rd, rs1, rs2 VReg) *Instruction  { return p.rFormat(OpSGT, rd, rs1, rs2) }
func (p *Program) NewSGTU(rd, rs1, rs2 VReg) *Instruction { return p.rFormat(OpSGTU, rd, rs1, rs2) }
func (p *Program) NewSLE(rd, rs1, rs2 VReg) *Instruction  { return p.rFormat(OpSLE, rd, rs1, rs2) }
func (p *Program) NewSLEU(rd, rs1, rs2 VReg) *Instruction { return p.rFormat(OpSLEU, rd, rs1, rs2) }

func (p *Program) NewSEQI(rd, rs1 VReg, imm int32) *Instruction {
	return p.iFormat(OpSEQI, rd, rs1, imm)
}
func (p *Program) NewSNEI(rd, rs1 VReg, imm int32) *Instruction {
	return p.iFormat(OpSNEI, rd, rs1, imm)
}
func (p *Program) NewSGEI(rd, rs1 VReg, imm int32) *Instruction {
	return p.iFormat(OpSGEI, rd, rs1, imm)
}
func (p *Program) NewSGEIU(rd, rs1 VReg, imm int32) *Instruction {
	return p.iFormat(OpSGEIU, rd, rs1, imm)
}
func (p *Program) NewSGTI(rd, rs1 VReg, imm int32) *Instruction {
	return p.iFormat(OpSGTI, rd, rs1, imm)
}
func (p *Program) NewSGTIU(rd, rs1 VReg, imm int32) *Instruction {
	return p.iFormat(OpSGTIU, rd, rs1, imm)
}
func (p *Program) NewSLEI(rd, rs1 VReg, imm int32) *Instruction {
	return p.iFormat(OpSLEI, rd, rs1, imm)
}
func (p *Program) NewSLEIU(rd, rs1 VReg, imm int32) *Instruction {
	return p.iFormat(OpSLEIU, rd, rs1, imm)
}

func (p *Program) NewSUBI(rd, rs1 VReg, imm int32) *Instruction {
	return p.iFormat(OpSUBI, rd, rs1, imm)
}

// Syscall placeholder constructors, expanded by FixSyscalls.
func (p *Program) NewExit0() *Instruction {
	return p.AddInstruction(&Instruction{Opcode: OpExit0})
}
func (p *Program) NewReadInt(rd VReg) *Instruction {
	return p.AddInstruction(&Instruction{Opcode: OpReadInt, Rd: Arg(rd)})
}
func (p *Program) NewPrintInt(rs1 VReg) *Instruction {
	return p.AddInstruction(&Instruction{Opcode: OpPrintInt, Rs1: Arg(rs1)})
}
func (p *Program) NewPrintChar(rs1 VReg) *Instruction {
	return p.AddInstruction(&Instruction{Opcode: OpPrintChar, Rs1: Arg(rs1)})
}
