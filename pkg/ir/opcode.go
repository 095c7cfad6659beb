// Package ir implements the LANCE compiler's intermediate representation:
// the Program, its symbol and label tables, and the closed Opcode sum type
// the rest of the back end lowers and allocates registers for.
package ir

// Opcode identifies the operation an Instruction performs. The set covers
// every physical RV32IM integer instruction the back end can emit plus the
// pseudo-ops target lowering expands before assembly printing runs.
type Opcode uint8

const (
	OpInvalid Opcode = iota

	// Physical R-format (register-register) arithmetic/logic.
	OpADD
	OpSUB
	OpAND
	OpOR
	OpXOR
	OpMUL
	OpDIV
	OpDIVU
	OpREM
	OpREMU
	OpSLL
	OpSRL
	OpSRA
	OpSLT
	OpSLTU

	// Physical I-format (register-immediate) arithmetic/logic.
	OpADDI
	OpANDI
	OpORI
	OpXORI
	OpMULI
	OpDIVI
	OpSLLI
	OpSRLI
	OpSRAI
	OpSLTI
	OpSLTIU

	// Memory access.
	OpLW
	OpSW
	OpLWG // load by label, with an auxiliary address temp
	OpSWG // store by label, with an auxiliary address temp

	// Control flow: unconditional jump, conditional branches.
	OpJ
	OpBEQ
	OpBNE
	OpBLT
	OpBLTU
	OpBGE
	OpBGEU
	OpBGT  // pseudo: rs1 > rs2, lowered to BLT with swapped operands
	OpBGTU // pseudo: unsigned variant of OpBGT
	OpBLE  // pseudo: rs1 <= rs2, lowered to BGE with swapped operands
	OpBLEU // pseudo: unsigned variant of OpBLE

	// Zero-comparison branch pseudo-ops: a single register operand,
	// compared implicitly against x0.
	OpBEQZ // pseudo: rs1 == 0, lowered to BEQ rs1, x0
	OpBNEZ // pseudo: rs1 != 0, lowered to BNE rs1, x0
	OpBLEZ // pseudo: rs1 <= 0, lowered to BGE x0, rs1
	OpBGEZ // pseudo: rs1 >= 0, lowered to BGE rs1, x0
	OpBLTZ // pseudo: rs1 < 0,  lowered to BLT rs1, x0
	OpBGTZ // pseudo: rs1 > 0,  lowered to BLT x0, rs1

	// Immediate/address materialisation.
	OpLI
	OpLA

	// System.
	OpECALL
	OpEBREAK
	OpNOP

	// Syscall placeholders, expanded by FixSyscalls.
	OpExit0
	OpReadInt
	OpPrintInt
	OpPrintChar

	// Pseudo-ops expanded by FixPseudoInstructions.
	OpSUBI
	OpSEQ
	OpSNE
	OpSEQI
	OpSNEI
	OpSGE
	OpSGEU
	OpSGEI
	OpSGEIU
	OpSGT
	OpSGTU
	OpSGTI
	OpSGTIU
	OpSLE
	OpSLEU
	OpSLEI
	OpSLEIU
)

var opcodeNames = map[Opcode]string{
	OpInvalid: "<invalid>",

	OpADD: "add", OpSUB: "sub", OpAND: "and", OpOR: "or", OpXOR: "xor",
	OpMUL: "mul", OpDIV: "div", OpDIVU: "divu", OpREM: "rem", OpREMU: "remu",
	OpSLL: "sll", OpSRL: "srl", OpSRA: "sra", OpSLT: "slt", OpSLTU: "sltu",

	OpADDI: "addi", OpANDI: "andi", OpORI: "ori", OpXORI: "xori",
	OpMULI: "muli", OpDIVI: "divi",
	OpSLLI: "slli", OpSRLI: "srli", OpSRAI: "srai",
	OpSLTI: "slti", OpSLTIU: "sltiu",

	OpLW: "lw", OpSW: "sw", OpLWG: "lw", OpSWG: "sw",

	OpJ: "j", OpBEQ: "beq", OpBNE: "bne",
	OpBLT: "blt", OpBLTU: "bltu", OpBGE: "bge", OpBGEU: "bgeu",
	OpBGT: "bgt", OpBGTU: "bgtu", OpBLE: "ble", OpBLEU: "bleu",

	OpBEQZ: "beqz", OpBNEZ: "bnez", OpBLEZ: "blez",
	OpBGEZ: "bgez", OpBLTZ: "bltz", OpBGTZ: "bgtz",

	OpLI: "li", OpLA: "la",

	OpECALL: "ecall", OpEBREAK: "ebreak", OpNOP: "nop",

	OpExit0: "exit0", OpReadInt: "read_int",
	OpPrintInt: "print_int", OpPrintChar: "print_char",

	OpSUBI: "subi",
	OpSEQ:  "seq", OpSNE: "sne", OpSEQI: "seqi", OpSNEI: "snei",
	OpSGE: "sge", OpSGEU: "sgeu", OpSGEI: "sgei", OpSGEIU: "sgeiu",
	OpSGT: "sgt", OpSGTU: "sgtu", OpSGTI: "sgti", OpSGTIU: "sgtiu",
	OpSLE: "sle", OpSLEU: "sleu", OpSLEI: "slei", OpSLEIU: "sleiu",
}

func (op Opcode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return "<unknown opcode>"
}

// IsPseudo reports whether op must be expanded by FixPseudoInstructions
// before it can be printed as real RV32IM assembly.
func (op Opcode) IsPseudo() bool {
	switch op {
	case OpSUBI, OpSEQ, OpSNE, OpSEQI, OpSNEI,
		OpSGE, OpSGEU, OpSGEI, OpSGEIU,
		OpSGT, OpSGTU, OpSGTI, OpSGTIU,
		OpSLE, OpSLEU, OpSLEI, OpSLEIU,
		OpBGT, OpBGTU, OpBLE, OpBLEU,
		OpBEQZ, OpBNEZ, OpBLEZ, OpBGEZ, OpBLTZ, OpBGTZ:
		return true
	default:
		return false
	}
}

// IsSyscallPlaceholder reports whether op is one of the four syscall
// placeholders FixSyscalls expands into LI/ECALL sequences.
func (op Opcode) IsSyscallPlaceholder() bool {
	switch op {
	case OpExit0, OpReadInt, OpPrintInt, OpPrintChar:
		return true
	default:
		return false
	}
}

// IsImmediate reports whether op takes an Imm operand (as opposed to an
// rs2 register), matching target_transform.c's isImmediateArgumentInstrOpcode.
func (op Opcode) IsImmediate() bool {
	switch op {
	case OpADDI, OpANDI, OpORI, OpXORI, OpMULI, OpDIVI,
		OpSLLI, OpSRLI, OpSRAI, OpSLTI, OpSLTIU,
		OpSEQI, OpSNEI, OpSGEI, OpSGEIU, OpSGTI, OpSGTIU, OpSLEI, OpSLEIU:
		return true
	default:
		return false
	}
}
