package cflow

import (
	"fmt"
	"strings"
)

// Dump renders a human-readable listing of the CFG, one block per
// section with its predecessor/successor ids and instructions; when
// withLiveness is true, each instruction's live-in/live-out sets are
// listed alongside it. Matches cflow_graph.c's cfgDump(graph, file,
// bool) signature, used by pkg/driver's debug logs.
func Dump(cfg *CFG, withLiveness bool) string {
	var b strings.Builder
	for _, blk := range cfg.Blocks {
		if blk.ID == cfg.End {
			fmt.Fprintf(&b, "block %d (end)\n", blk.ID)
			continue
		}
		fmt.Fprintf(&b, "block %d: pred=%v succ=%v\n", blk.ID, blk.Pred, blk.Succ)
		for _, n := range blk.Nodes {
			fmt.Fprintf(&b, "  %s\n", n.Instr.String())
			if withLiveness {
				fmt.Fprintf(&b, "    live_in=%s live_out=%s\n", dumpVarSet(n.LiveIn), dumpVarSet(n.LiveOut))
			}
		}
	}
	return b.String()
}

func dumpVarSet(s VarSet) string {
	vars := s.Slice()
	parts := make([]string, len(vars))
	for i, v := range vars {
		parts[i] = fmt.Sprintf("t%d", v.VReg)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
