package cflow

import "github.com/lance-lang/lancec/pkg/ir"

// ComputeLiveness runs the backward fixed-point data-flow iteration of
// spec.md §4.4 over cfg, populating every node's LiveIn/LiveOut. Grounded
// on cflow_graph.c's cfgComputeLiveness (the do-while fixed-point loop
// over cfgPerformLivenessIteration, which itself sweeps blocks in reverse
// order and, within each block, nodes in reverse via
// cfgUpdateLivenessOfNodesInBlock).
func ComputeLiveness(cfg *CFG) {
	for {
		changed := false
		for i := len(cfg.Blocks) - 1; i >= 0; i-- {
			b := cfg.Blocks[i]
			if b.ID == cfg.End {
				continue
			}
			if updateBlockLiveness(cfg, b) {
				changed = true
			}
		}
		if !changed {
			return
		}
	}
}

// updateBlockLiveness sweeps b's nodes back to front, cascading each
// node's LiveIn into the previous node's LiveOut, and seeding the last
// node's LiveOut from the union of successor blocks' entry LiveIn
// (cfgComputeLiveOutOfBlock). Reports whether any node's LiveIn changed.
func updateBlockLiveness(cfg *CFG, b *BasicBlock) bool {
	changed := false
	for i := len(b.Nodes) - 1; i >= 0; i-- {
		node := b.Nodes[i]

		var out VarSet
		if i == len(b.Nodes)-1 {
			out = liveOutOfBlock(cfg, b)
		} else {
			out = b.Nodes[i+1].LiveIn
		}
		node.LiveOut = out

		in := NewVarSet()
		in.AddAll(node.Uses)
		for vreg, v := range out {
			if !isDefinedBy(node, vreg) {
				in[vreg] = v
			}
		}

		if node.LiveIn == nil || !node.LiveIn.Equal(in) {
			changed = true
		}
		node.LiveIn = in
	}
	return changed
}

// liveOutOfBlock unions the entry LiveIn set of every successor block
// (the successor's first node), excluding the sentinel end block, which
// always contributes nothing since it has no nodes.
func liveOutOfBlock(cfg *CFG, b *BasicBlock) VarSet {
	out := NewVarSet()
	for _, succID := range b.Succ {
		if succID == cfg.End {
			continue
		}
		succ := cfg.Blocks[succID]
		if len(succ.Nodes) == 0 {
			continue
		}
		if entry := succ.Nodes[0].LiveIn; entry != nil {
			out.Union(entry)
		}
	}
	return out
}

func isDefinedBy(node *CfgNode, vreg ir.VReg) bool {
	for _, d := range node.Defs {
		if d.VReg == vreg {
			return true
		}
	}
	return false
}
