package regalloc

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lance-lang/lancec/pkg/ir"
	"github.com/lance-lang/lancec/pkg/target"
)

// Dump renders the binding table, one line per vreg, matching
// reg_alloc.c's dumpRegAllocInfos.
func (r *Result) Dump() string {
	vregs := make([]ir.VReg, 0, len(r.Bindings))
	for v := range r.Bindings {
		vregs = append(vregs, v)
	}
	sort.Slice(vregs, func(i, j int) bool { return vregs[i] < vregs[j] })

	var b strings.Builder
	for _, v := range vregs {
		bind := r.Bindings[v]
		if bind.Spilled {
			fmt.Fprintf(&b, "t%d -> SPILL\n", v)
		} else {
			fmt.Fprintf(&b, "t%d -> %s\n", v, target.RegisterName(bind.Reg))
		}
	}
	return b.String()
}
