// Package asmprint renders a fully allocated ir.Program as RV32IM GNU
// assembler text: forward .global declarations, the .data segment (one
// .space directive per symbol), and the .text segment (one line per
// instruction). Grounded on target_asm_print.c's writeAssembly pipeline;
// there is no teacher analogue since oisee-minz targets Z80 binary
// encoding rather than textual RISC-V assembly.
package asmprint

import (
	"fmt"
	"io"

	"github.com/lance-lang/lancec/pkg/ir"
	"github.com/lance-lang/lancec/pkg/target"
)

const wordSize = 4

// Print writes prog's full assembly listing to w, in the same section
// order as target_asm_print.c's writeAssembly: forward declarations, data
// segment, code segment.
func Print(w io.Writer, prog *ir.Program) error {
	if err := printForwardDeclarations(w, prog); err != nil {
		return fmt.Errorf("asmprint: forward declarations: %w", err)
	}
	if err := printDataSegment(w, prog); err != nil {
		return fmt.Errorf("asmprint: data segment: %w", err)
	}
	if err := printCodeSegment(w, prog); err != nil {
		return fmt.Errorf("asmprint: code segment: %w", err)
	}
	return nil
}

func printForwardDeclarations(w io.Writer, prog *ir.Program) error {
	for _, l := range prog.Labels() {
		if l.IsAlias || !l.Global {
			continue
		}
		if _, err := fmt.Fprintf(w, "        .global %s\n", l.GetLabelName()); err != nil {
			return err
		}
	}
	return nil
}

func printDataSegment(w io.Writer, prog *ir.Program) error {
	symbols := prog.Symbols()
	if len(symbols) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "        .data"); err != nil {
		return err
	}
	for _, sym := range symbols {
		label := fmt.Sprintf("%s:", sym.Label.GetLabelName())
		if _, err := fmt.Fprintf(w, "%-8s.space %d\n", label, sym.SizeWords()*wordSize); err != nil {
			return err
		}
	}
	return nil
}

func printCodeSegment(w io.Writer, prog *ir.Program) error {
	if len(prog.Instructions) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "        .text"); err != nil {
		return err
	}
	for _, instr := range prog.Instructions {
		line, err := formatInstruction(instr)
		if err != nil {
			return err
		}

		label := ""
		if instr.Label != nil {
			label = instr.Label.GetLabelName() + ":"
		}
		if _, err := fmt.Fprintf(w, "%-8s", label); err != nil {
			return err
		}

		if instr.Comment != "" {
			if _, err := fmt.Fprintf(w, "%-24s# %s", line, instr.Comment); err != nil {
				return err
			}
		} else if _, err := fmt.Fprint(w, line); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}

// reg decodes a final operand to its ABI name, erroring if it was never
// resolved to a physical register — a program reaching asmprint.Print
// must already be through regalloc.Finish.
func reg(op ir.RegArg) (string, error) {
	if !op.Valid() {
		return "", fmt.Errorf("asmprint: missing required register operand")
	}
	phys, ok := target.PhysRegFromVReg(op.Reg)
	if !ok {
		return "", fmt.Errorf("asmprint: operand vreg %d was never assigned a physical register", op.Reg)
	}
	return target.RegisterName(phys), nil
}

func label(instr *ir.Instruction) (string, error) {
	if instr.Addr == nil {
		return "", fmt.Errorf("asmprint: %s instruction missing its address parameter", instr.Opcode)
	}
	return instr.Addr.GetLabelName(), nil
}

func formatInstruction(instr *ir.Instruction) (string, error) {
	opc := instr.Opcode.String()

	switch instr.Opcode {
	case ir.OpADD, ir.OpSUB, ir.OpAND, ir.OpOR, ir.OpXOR, ir.OpMUL, ir.OpDIV, ir.OpDIVU,
		ir.OpREM, ir.OpREMU, ir.OpSLL, ir.OpSRL, ir.OpSRA, ir.OpSLT, ir.OpSLTU:
		rd, err := reg(instr.Rd)
		if err != nil {
			return "", err
		}
		rs1, err := reg(instr.Rs1)
		if err != nil {
			return "", err
		}
		rs2, err := reg(instr.Rs2)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%-6s %s, %s, %s", opc, rd, rs1, rs2), nil

	case ir.OpADDI, ir.OpANDI, ir.OpORI, ir.OpXORI, ir.OpMULI, ir.OpDIVI,
		ir.OpSLLI, ir.OpSRLI, ir.OpSRAI, ir.OpSLTI, ir.OpSLTIU:
		rd, err := reg(instr.Rd)
		if err != nil {
			return "", err
		}
		rs1, err := reg(instr.Rs1)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%-6s %s, %s, %d", opc, rd, rs1, instr.Imm), nil

	case ir.OpLW:
		rd, err := reg(instr.Rd)
		if err != nil {
			return "", err
		}
		rs1, err := reg(instr.Rs1)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%-6s %s, %d(%s)", opc, rd, instr.Imm, rs1), nil

	case ir.OpSW:
		rs1, err := reg(instr.Rs1)
		if err != nil {
			return "", err
		}
		rs2, err := reg(instr.Rs2)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%-6s %s, %d(%s)", opc, rs2, instr.Imm, rs1), nil

	case ir.OpLWG:
		rd, err := reg(instr.Rd)
		if err != nil {
			return "", err
		}
		lbl, err := label(instr)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%-6s %s, %s", opc, rd, lbl), nil

	case ir.OpSWG:
		value, err := reg(instr.Rs2)
		if err != nil {
			return "", err
		}
		addrTemp, err := reg(instr.Rs1)
		if err != nil {
			return "", err
		}
		lbl, err := label(instr)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%-6s %s, %s, %s", opc, value, lbl, addrTemp), nil

	case ir.OpJ:
		lbl, err := label(instr)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%-6s %s", opc, lbl), nil

	case ir.OpBEQ, ir.OpBNE, ir.OpBLT, ir.OpBLTU, ir.OpBGE, ir.OpBGEU,
		ir.OpBGT, ir.OpBGTU, ir.OpBLE, ir.OpBLEU:
		rs1, err := reg(instr.Rs1)
		if err != nil {
			return "", err
		}
		rs2, err := reg(instr.Rs2)
		if err != nil {
			return "", err
		}
		lbl, err := label(instr)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%-6s %s, %s, %s", opc, rs1, rs2, lbl), nil

	case ir.OpLI:
		rd, err := reg(instr.Rd)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%-6s %s, %d", opc, rd, instr.Imm), nil

	case ir.OpLA:
		rd, err := reg(instr.Rd)
		if err != nil {
			return "", err
		}
		lbl, err := label(instr)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%-6s %s, %s", opc, rd, lbl), nil

	case ir.OpNOP, ir.OpECALL, ir.OpEBREAK:
		return opc, nil

	default:
		if instr.Opcode.IsPseudo() || instr.Opcode.IsSyscallPlaceholder() {
			return "", fmt.Errorf("asmprint: %s reached printing unlowered; run target.FixPseudoInstructions/FixSyscalls first", opc)
		}
		return "", fmt.Errorf("asmprint: unprintable opcode %s", opc)
	}
}
