// Command lanceasm is a thin stand-in for the companion assembler spec.md
// treats as an external collaborator: it tokenises lancec's assembly
// text back into the pkg/asmfmt object-record shape well enough to
// confirm the text parses without error (spec §8's P6 round-trip
// property), without building a full lexer/parser/ELF writer.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/lance-lang/lancec/pkg/asmfmt"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: lanceasm <file.s>")
		os.Exit(1)
	}
	f, err := os.Open(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	obj, err := Assemble(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("OK: %d text item(s), %d data item(s)\n", len(obj.Text.Items), len(obj.Data.Items))
}

// Assemble tokenises asmprint's assembly text format into an
// asmfmt.Object, matching the ".global" / ".data" / ".text" / "<label>:
// <mnemonic> <operands> [# comment]" shape pkg/asmprint.Print emits. It
// is deliberately line-oriented rather than a real tokenizer/grammar:
// enough structure to prove the text round-trips through a consumer
// without implementing operand-level semantic checking (register-name
// validity, immediate range), which is the companion assembler's job.
func Assemble(r *os.File) (*asmfmt.Object, error) {
	obj := asmfmt.NewObject()
	sec := &obj.Text // default section before any directive is seen

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := stripComment(scanner.Text())
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		switch {
		case line == ".data":
			sec = &obj.Data
			continue
		case line == ".text":
			sec = &obj.Text
			continue
		case strings.HasPrefix(line, ".global "):
			continue // forward declaration only, no section item
		}

		label, rest := splitLabel(line)
		if label != "" {
			if _, err := obj.DeclareLabel(sec, label); err != nil {
				return nil, fmt.Errorf("lanceasm: line %d: %w", lineNo, err)
			}
		}
		rest = strings.TrimSpace(rest)
		if rest == "" {
			continue
		}

		if strings.HasPrefix(rest, ".space ") {
			item, err := parseSpace(rest)
			if err != nil {
				return nil, fmt.Errorf("lanceasm: line %d: %w", lineNo, err)
			}
			sec.Items = append(sec.Items, item)
			continue
		}

		item, err := parseInstruction(rest)
		if err != nil {
			return nil, fmt.Errorf("lanceasm: line %d: %w", lineNo, err)
		}
		sec.Items = append(sec.Items, item)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("lanceasm: read input: %w", err)
	}

	obj.MaterializeAddresses(0)
	return obj, nil
}

func stripComment(line string) string {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		return line[:i]
	}
	return line
}

// splitLabel recognises an optional "name:" prefix on a line, matching
// asmprint's "%-8s" label column.
func splitLabel(line string) (label, rest string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", line
	}
	if strings.HasSuffix(fields[0], ":") {
		label = strings.TrimSuffix(fields[0], ":")
		idx := strings.Index(line, fields[0]) + len(fields[0])
		return label, line[idx:]
	}
	return "", line
}

func parseSpace(rest string) (asmfmt.SectionItem, error) {
	fields := strings.Fields(rest)
	if len(fields) != 2 {
		return asmfmt.SectionItem{}, fmt.Errorf("malformed .space directive %q", rest)
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil {
		return asmfmt.SectionItem{}, fmt.Errorf("malformed .space size %q: %w", fields[1], err)
	}
	return asmfmt.SectionItem{Class: asmfmt.ItemData, Data: asmfmt.Data{Bytes: make([]byte, n)}}, nil
}

func parseInstruction(rest string) (asmfmt.SectionItem, error) {
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return asmfmt.SectionItem{}, fmt.Errorf("empty instruction line")
	}
	mnemonic := fields[0]
	operands := strings.Split(strings.Join(fields[1:], " "), ",")
	for i, op := range operands {
		operands[i] = strings.TrimSpace(op)
	}
	instr := asmfmt.Instruction{Mnemonic: mnemonic}
	if len(operands) > 0 && operands[0] != "" {
		instr.Rd = operands[0]
	}
	if len(operands) > 1 {
		instr.Rs1 = operands[1]
	}
	if len(operands) > 2 {
		instr.Rs2 = operands[2]
	}
	return asmfmt.SectionItem{Class: asmfmt.ItemInstruction, Instruction: instr}, nil
}
