package frontend

import (
	"fmt"
	"strings"

	"github.com/lance-lang/lancec/pkg/ir"
)

// Dump renders a human-readable listing of everything Parse recovered from
// source before target lowering runs: the declared symbol table followed by
// the generated instruction stream in declaration/emission order. Matches
// the style of pkg/cflow.Dump and pkg/regalloc's Result.Dump, used by
// pkg/driver's debug logs.
func Dump(prog *ir.Program) string {
	var b strings.Builder

	fmt.Fprintf(&b, "symbols (%d):\n", len(prog.Symbols()))
	for _, sym := range prog.Symbols() {
		switch sym.Kind {
		case ir.SymIntArray:
			fmt.Fprintf(&b, "  int %s[%d] -> %s\n", sym.Name, sym.ArraySize, sym.Label.GetLabelName())
		default:
			fmt.Fprintf(&b, "  int %s -> %s\n", sym.Name, sym.Label.GetLabelName())
		}
	}

	fmt.Fprintf(&b, "instructions (%d):\n", len(prog.Instructions))
	for _, instr := range prog.Instructions {
		fmt.Fprintf(&b, "  %s\n", instr.String())
	}

	return b.String()
}
