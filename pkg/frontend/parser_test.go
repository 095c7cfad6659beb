package frontend

import (
	"strings"
	"testing"

	"github.com/lance-lang/lancec/pkg/diagnostics"
	"github.com/lance-lang/lancec/pkg/ir"
)

func parse(t *testing.T, src string) (*ir.Program, *diagnostics.Sink) {
	t.Helper()
	var out strings.Builder
	sink := diagnostics.NewSink(&out)
	prog, err := Parse(src, "t.lance", sink)
	if err != nil {
		t.Fatalf("unexpected parse error: %v\noutput so far:\n%s", err, out.String())
	}
	return prog, sink
}

func opcodes(prog *ir.Program) []ir.Opcode {
	out := make([]ir.Opcode, len(prog.Instructions))
	for i, instr := range prog.Instructions {
		out[i] = instr.Opcode
	}
	return out
}

func requireOpcodeSequence(t *testing.T, prog *ir.Program, want ...ir.Opcode) {
	t.Helper()
	got := opcodes(prog)
	if len(got) != len(want) {
		t.Fatalf("expected %d instructions %v, got %d: %v", len(want), want, len(got), got)
	}
	for i, op := range want {
		if got[i] != op {
			t.Fatalf("instruction %d: expected %s, got %s (full: %v)", i, op, got[i], got)
		}
	}
}

// Scenario 1: int a; read a; write a;
func TestParseReadWriteEmitsSyscallSequence(t *testing.T) {
	prog, sink := parse(t, "int a; read a; write a;")
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %d", sink.Errors)
	}
	requireOpcodeSequence(t, prog,
		ir.OpReadInt, ir.OpSWG, ir.OpLWG, ir.OpPrintInt, ir.OpExit0,
	)
	if _, ok := prog.GetSymbol("a"); !ok {
		t.Fatal("expected symbol \"a\" to be declared")
	}
}

// Scenario 2: int a; a = 3 + 4; folds to a single LI of 7, no ADD emitted.
func TestParseConstantFoldsAddition(t *testing.T) {
	prog, sink := parse(t, "int a; a = 3 + 4;")
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %d", sink.Errors)
	}
	requireOpcodeSequence(t, prog, ir.OpLI, ir.OpSWG, ir.OpExit0)
	if prog.Instructions[0].Imm != 7 {
		t.Fatalf("expected folded immediate 7, got %d", prog.Instructions[0].Imm)
	}
}

// Scenario 3: int a,b; b = a - 5; emits a SUBI pseudo-op for target
// lowering to rewrite into ADDI with a negated immediate.
func TestParseSubtractionEmitsSUBIWithPositiveImmediate(t *testing.T) {
	prog, sink := parse(t, "int a, b; b = a - 5;")
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %d", sink.Errors)
	}
	requireOpcodeSequence(t, prog, ir.OpLWG, ir.OpSUBI, ir.OpSWG, ir.OpExit0)
	if prog.Instructions[1].Imm != 5 {
		t.Fatalf("expected SUBI immediate 5 (not yet negated), got %d", prog.Instructions[1].Imm)
	}
}

// Scenario 4: int a; a = a << 33; warns and masks the shift amount to 1.
func TestParseShiftWarnsAndMasksAmount(t *testing.T) {
	prog, sink := parse(t, "int a; a = a << 33;")
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %d", sink.Errors)
	}
	if sink.Warnings != 1 {
		t.Fatalf("expected exactly one warning, got %d", sink.Warnings)
	}
	requireOpcodeSequence(t, prog, ir.OpLWG, ir.OpSLLI, ir.OpSWG, ir.OpExit0)
	if prog.Instructions[1].Imm != 1 {
		t.Fatalf("expected shift amount masked to 1 (33 & 0x1F), got %d", prog.Instructions[1].Imm)
	}
}

// Scenario 5: int x[4]; x[2] = 9; stores through a constant-folded base +
// byte offset, no runtime index arithmetic.
func TestParseConstantArrayIndexUsesOffsetStore(t *testing.T) {
	prog, sink := parse(t, "int x[4]; x[2] = 9;")
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %d", sink.Errors)
	}
	requireOpcodeSequence(t, prog, ir.OpLA, ir.OpLI, ir.OpSW, ir.OpExit0)
	sw := prog.Instructions[2]
	if sw.Imm != 8 {
		t.Fatalf("expected byte offset 8 (2*4), got %d", sw.Imm)
	}
}

func TestParseDynamicArrayIndexComputesAddress(t *testing.T) {
	prog, sink := parse(t, "int x[4]; int i; x[i] = 1;")
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %d", sink.Errors)
	}
	got := opcodes(prog)
	want := []ir.Opcode{ir.OpLWG, ir.OpLA, ir.OpSLLI, ir.OpADD, ir.OpLI, ir.OpSW, ir.OpExit0}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i, op := range want {
		if got[i] != op {
			t.Fatalf("instruction %d: expected %s, got %s", i, op, got[i])
		}
	}
}

func TestParseIfEmitsInvertedBranchAroundThenBlock(t *testing.T) {
	prog, sink := parse(t, "int a; if (a < 1) { a = 2; }")
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %d", sink.Errors)
	}
	found := false
	for _, instr := range prog.Instructions {
		if instr.Opcode == ir.OpBGE {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a BGE branch inverting '<', got %v", opcodes(prog))
	}
}

func TestParseIfElseJumpsPastElseBlock(t *testing.T) {
	prog, sink := parse(t, "int a; if (a == 1) { a = 2; } else { a = 3; }")
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %d", sink.Errors)
	}
	var branches, jumps int
	for _, instr := range prog.Instructions {
		switch instr.Opcode {
		case ir.OpBNE:
			branches++
		case ir.OpJ:
			jumps++
		}
	}
	if branches != 1 || jumps != 1 {
		t.Fatalf("expected exactly one inverted branch and one jump past the else block, got branches=%d jumps=%d", branches, jumps)
	}
}

func TestParseWhileJumpsBackToLoopStart(t *testing.T) {
	prog, sink := parse(t, "int a; while (a != 0) { a = a - 1; }")
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %d", sink.Errors)
	}
	var backJumps int
	for _, instr := range prog.Instructions {
		if instr.Opcode == ir.OpJ {
			backJumps++
		}
	}
	if backJumps != 1 {
		t.Fatalf("expected exactly one back-edge jump, got %d", backJumps)
	}
}

func TestParseUndeclaredVariableReportsErrorWithoutCrashing(t *testing.T) {
	prog, sink := parse(t, "int a; b = 1;")
	if !sink.HasErrors() {
		t.Fatal("expected an error for the undeclared variable")
	}
	if prog == nil {
		t.Fatal("expected a non-nil program even after a front-end error")
	}
}

func TestParseDivisionByZeroWarnsAndSaturates(t *testing.T) {
	prog, sink := parse(t, "int a; a = 1 / 0;")
	if sink.Warnings != 1 {
		t.Fatalf("expected one warning for division by zero, got %d", sink.Warnings)
	}
	requireOpcodeSequence(t, prog, ir.OpLI, ir.OpSWG, ir.OpExit0)
	if prog.Instructions[0].Imm != int32(1<<31-1) {
		t.Fatalf("expected folded division by zero to saturate to MaxInt32, got %d", prog.Instructions[0].Imm)
	}
}

func TestParseCommutativeConstantLeftOperandUsesImmediateForm(t *testing.T) {
	prog, sink := parse(t, "int a, b; b = 5 + a;")
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %d", sink.Errors)
	}
	requireOpcodeSequence(t, prog, ir.OpLWG, ir.OpADDI, ir.OpSWG, ir.OpExit0)
	if prog.Instructions[1].Imm != 5 {
		t.Fatalf("expected ADDI immediate 5, got %d", prog.Instructions[1].Imm)
	}
}
