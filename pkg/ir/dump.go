package ir

import (
	"fmt"
	"strings"
)

func regString(a RegArg) string {
	switch a.Reg {
	case RegNone:
		return "-"
	case RegZero:
		return "x0"
	default:
		return fmt.Sprintf("t%d", a.Reg)
	}
}

// String renders a debug form of the instruction, in the same switch-per-
// opcode spirit as the teacher's Instruction.String() dumper. It is never
// used for the bit-exact assembly grammar; see pkg/asmprint for that.
func (i *Instruction) String() string {
	var b strings.Builder
	if i.Label != nil {
		fmt.Fprintf(&b, "%s: ", i.Label.GetLabelName())
	}

	switch {
	case i.Opcode.IsImmediate():
		fmt.Fprintf(&b, "%s = %s %s %d", regString(i.Rd), regString(i.Rs1), i.Opcode, i.Imm)
	case i.Opcode == OpLI:
		fmt.Fprintf(&b, "%s = %d", regString(i.Rd), i.Imm)
	case i.Opcode == OpLA || i.Opcode == OpJ:
		fmt.Fprintf(&b, "%s %s", i.Opcode, i.addrName())
	case i.Opcode == OpLW:
		fmt.Fprintf(&b, "%s = MEM[%s + %d]", regString(i.Rd), regString(i.Rs1), i.Imm)
	case i.Opcode == OpSW:
		fmt.Fprintf(&b, "MEM[%s + %d] = %s", regString(i.Rs1), i.Imm, regString(i.Rs2))
	case i.Opcode == OpLWG:
		fmt.Fprintf(&b, "%s = MEM[%s]", regString(i.Rd), i.addrName())
	case i.Opcode == OpSWG:
		fmt.Fprintf(&b, "MEM[%s] = %s", i.addrName(), regString(i.Rs2))
	case isBranchOpcode(i.Opcode):
		fmt.Fprintf(&b, "%s %s, %s, %s", i.Opcode, regString(i.Rs1), regString(i.Rs2), i.addrName())
	case i.Opcode.IsSyscallPlaceholder():
		fmt.Fprintf(&b, "%s(%s)%s", i.Opcode, regString(i.Rs1), i.destSuffix())
	case i.Rd.Valid() && i.Rs1.Valid() && i.Rs2.Valid():
		fmt.Fprintf(&b, "%s = %s %s %s", regString(i.Rd), regString(i.Rs1), i.Opcode, regString(i.Rs2))
	default:
		fmt.Fprint(&b, i.Opcode)
	}

	if i.Comment != "" {
		fmt.Fprintf(&b, "  # %s", i.Comment)
	}
	return b.String()
}

func (i *Instruction) addrName() string {
	if i.Addr == nil {
		return "?"
	}
	return i.Addr.GetLabelName()
}

func (i *Instruction) destSuffix() string {
	if i.Rd.Valid() {
		return " -> " + regString(i.Rd)
	}
	return ""
}

func isBranchOpcode(op Opcode) bool {
	switch op {
	case OpBEQ, OpBNE, OpBLT, OpBLTU, OpBGE, OpBGEU, OpBGT, OpBGTU, OpBLE, OpBLEU:
		return true
	default:
		return false
	}
}

// Dump writes a human-readable listing of the whole program, used by the
// driver's debug logs.
func (p *Program) Dump() string {
	var b strings.Builder
	for _, instr := range p.Instructions {
		b.WriteString(instr.String())
		b.WriteByte('\n')
	}
	return b.String()
}
