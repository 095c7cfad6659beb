// Package regalloc implements the constraint-aware linear-scan register
// allocator of spec.md §4.5 and the spill materialisation pass of §4.6: it
// consumes a built, liveness-annotated cflow.CFG and produces a binding
// from every virtual register to either a physical register or a spill
// slot, then rewrites the CFG in place to stage spilled operands through a
// fixed pool of scratch registers.
package regalloc

import (
	"sort"

	"github.com/lance-lang/lancec/pkg/cflow"
	"github.com/lance-lang/lancec/pkg/ir"
)

// LiveInterval is the inclusive range [Start, End] of global instruction
// indices during which a vreg is live, plus its ordered, mutable list of acceptable
// physical registers.
type LiveInterval struct {
	VReg        ir.VReg
	Constraints []ir.PhysReg
	Start, End  int
}

// indexedNode pairs a CfgNode with its position in the global preorder
// traversal used for interval bounds, matching spec §4.5's "stable global
// order" requirement.
type indexedNode struct {
	idx  int
	node *cflow.CfgNode
}

// orderNodes walks cfg.Blocks in arena order (which is already the order
// blocks were created during partitioning, i.e. program order) and
// flattens every block's nodes into one global preorder sequence.
func orderNodes(cfg *cflow.CFG) []indexedNode {
	var out []indexedNode
	idx := 0
	for _, b := range cfg.Blocks {
		if b.ID == cfg.End {
			continue
		}
		for _, n := range b.Nodes {
			out = append(out, indexedNode{idx: idx, node: n})
			idx++
		}
	}
	return out
}

// collectIntervals builds one LiveInterval per distinct vreg appearing in
// cfg, extending its [Start,End] to cover every index where the vreg is in
// LiveIn, LiveOut or Defs — matching spec §4.5's live-interval collection
// rule ("indices are monotonically increasing, so extending is always a
// right-end update").
func collectIntervals(cfg *cflow.CFG) []*LiveInterval {
	byVReg := make(map[ir.VReg]*LiveInterval)
	order := orderNodes(cfg)

	touch := func(vreg ir.VReg, whitelist []ir.PhysReg, idx int) {
		iv, ok := byVReg[vreg]
		if !ok {
			iv = &LiveInterval{VReg: vreg, Start: idx, End: idx}
			if whitelist != nil {
				iv.Constraints = append([]ir.PhysReg(nil), whitelist...)
			}
			byVReg[vreg] = iv
			return
		}
		if idx < iv.Start {
			iv.Start = idx
		}
		if idx > iv.End {
			iv.End = idx
		}
	}

	for _, in := range order {
		n := in.node
		for _, v := range n.LiveIn {
			touch(v.VReg, v.Whitelist, in.idx)
		}
		for _, v := range n.LiveOut {
			touch(v.VReg, v.Whitelist, in.idx)
		}
		for _, v := range n.Defs {
			touch(v.VReg, v.Whitelist, in.idx)
		}
	}

	out := make([]*LiveInterval, 0, len(byVReg))
	for _, iv := range byVReg {
		out = append(out, iv)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Start != out[j].Start {
			return out[i].Start < out[j].Start
		}
		return out[i].VReg < out[j].VReg
	})
	return out
}

func (iv *LiveInterval) overlaps(other *LiveInterval) bool {
	return iv.Start <= other.End && other.Start <= iv.End
}
