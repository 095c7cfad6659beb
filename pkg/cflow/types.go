// Package cflow builds the control-flow graph over an ir.Program and
// computes liveness over it. The CFG is represented as an arena of blocks
// addressed by index (BlockID), per spec.md's design note on keeping
// cyclic graphs mutable without reference counting.
package cflow

import "github.com/lance-lang/lancec/pkg/ir"

// BlockID indexes into CFG.Blocks. CFG.End is the sentinel empty block
// every halt path and the last block's fallthrough link to.
type BlockID int

// CfgVar is a CFG-local interned variable: a virtual register plus
// whatever physical-register whitelist has been observed for it so far.
// When two occurrences of the same vreg intern to one CfgVar, the
// whitelist becomes their intersection (spec §3); an empty intersection
// from two genuinely incompatible constraints is a compile-time bug the
// register allocator's constraint seeding must never encounter for a
// well-formed program.
type CfgVar struct {
	VReg      ir.VReg
	Whitelist []ir.PhysReg // nil means "unconstrained so far"
}

// CfgNode wraps one instruction with its def/use sets (in terms of
// interned CfgVars) and the liveness sets computed over it.
type CfgNode struct {
	Instr   *ir.Instruction
	Defs    []*CfgVar
	Uses    []*CfgVar
	LiveIn  VarSet
	LiveOut VarSet
}

// BasicBlock is a maximal straight-line run of CfgNodes.
type BasicBlock struct {
	ID    BlockID
	Nodes []*CfgNode
	Pred  []BlockID
	Succ  []BlockID
}

// CFG is the whole graph: an arena of blocks plus the table of interned
// variables shared across all of them.
type CFG struct {
	Blocks    []*BasicBlock
	Start     BlockID
	End       BlockID // sentinel, always empty
	Registers map[ir.VReg]*CfgVar
}

// VarSet is a small set of CfgVars keyed by the underlying vreg — the
// "sparse vector over vreg ids" representation spec.md's design notes call
// for liveness, as opposed to the dense bitset constraint sets use.
type VarSet map[ir.VReg]*CfgVar

func NewVarSet() VarSet { return make(VarSet) }

func (s VarSet) Has(v *CfgVar) bool {
	_, ok := s[v.VReg]
	return ok
}

// HasVReg reports whether vreg is a member of s, without requiring a
// *CfgVar handle.
func (s VarSet) HasVReg(vreg ir.VReg) bool {
	_, ok := s[vreg]
	return ok
}

func (s VarSet) Add(v *CfgVar) { s[v.VReg] = v }

func (s VarSet) AddAll(vs []*CfgVar) {
	for _, v := range vs {
		s[v.VReg] = v
	}
}

// Clone returns a shallow copy safe to mutate independently.
func (s VarSet) Clone() VarSet {
	out := make(VarSet, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Equal reports whether s and other contain exactly the same vregs.
func (s VarSet) Equal(other VarSet) bool {
	if len(s) != len(other) {
		return false
	}
	for k := range s {
		if _, ok := other[k]; !ok {
			return false
		}
	}
	return true
}

// Union mutates s to include every element of other, reporting whether s
// changed.
func (s VarSet) Union(other VarSet) (changed bool) {
	for k, v := range other {
		if _, ok := s[k]; !ok {
			s[k] = v
			changed = true
		}
	}
	return changed
}

// Slice returns the set's members in a stable order (sorted by vreg id),
// keeping every consumer's iteration order deterministic (spec §5).
func (s VarSet) Slice() []*CfgVar {
	out := make([]*CfgVar, 0, len(s))
	for _, v := range s {
		out = append(out, v)
	}
	sortVars(out)
	return out
}

func sortVars(vs []*CfgVar) {
	for i := 1; i < len(vs); i++ {
		for j := i; j > 0 && vs[j-1].VReg > vs[j].VReg; j-- {
			vs[j-1], vs[j] = vs[j], vs[j-1]
		}
	}
}
