package cflow

import (
	"fmt"

	"github.com/lance-lang/lancec/pkg/ir"
	"github.com/lance-lang/lancec/pkg/target"
)

// Build partitions prog's instruction list into basic blocks and links
// predecessor/successor edges, matching cflow_graph.c's programToCFG and
// cfgComputeTransitions.
func Build(prog *ir.Program) (*CFG, error) {
	cfg := &CFG{Registers: make(map[ir.VReg]*CfgVar)}
	if err := partition(cfg, prog); err != nil {
		return nil, err
	}
	if err := linkEdges(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// partition walks the instruction list once, opening a fresh block at
// every instruction that carries a label or follows a terminator.
func partition(cfg *CFG, prog *ir.Program) error {
	if len(prog.Instructions) == 0 {
		cfg.Blocks = append(cfg.Blocks, &BasicBlock{ID: 0})
		cfg.Start = 0
		cfg.End = 0
		return nil
	}

	var current *BasicBlock
	afterTerminator := true // force a fresh block at the very first instruction

	for _, instr := range prog.Instructions {
		startsNewBlock := instr.Label != nil || afterTerminator
		if startsNewBlock || current == nil {
			current = &BasicBlock{ID: BlockID(len(cfg.Blocks))}
			cfg.Blocks = append(cfg.Blocks, current)
		}

		node, err := cfg.newNode(instr)
		if err != nil {
			return err
		}
		current.Nodes = append(current.Nodes, node)

		afterTerminator = target.IsTerminator(instr)
	}

	cfg.Start = 0
	cfg.End = BlockID(len(cfg.Blocks))
	cfg.Blocks = append(cfg.Blocks, &BasicBlock{ID: cfg.End})
	return nil
}

// newNode extracts the def/use sets for instr, interning each operand into
// cfg.Registers. x0 is excluded from both sets: RV32IM is configured
// "x0 always live", matching cflow_graph.c's def/use extraction which
// never reports REG_0 as a def or use.
//
// target.UsesPSW/target.DefinesPSW are consulted here alongside the
// register operands: on a target with a condition-code register they would
// contribute an extra use/def, but on RV32IM they're hardcoded false, so
// the flag-variable machinery stays wired into def/use extraction without
// ever widening either set.
func (cfg *CFG) newNode(instr *ir.Instruction) (*CfgNode, error) {
	node := &CfgNode{Instr: instr}

	if instr.Rd.Valid() && instr.Rd.Reg != ir.RegZero {
		v, err := cfg.intern(instr.Rd)
		if err != nil {
			return nil, err
		}
		node.Defs = append(node.Defs, v)
	}
	for _, arg := range []ir.RegArg{instr.Rs1, instr.Rs2} {
		if arg.Valid() && arg.Reg != ir.RegZero {
			v, err := cfg.intern(arg)
			if err != nil {
				return nil, err
			}
			node.Uses = append(node.Uses, v)
		}
	}

	if target.DefinesPSW(instr) {
		node.Defs = append(node.Defs, cfg.pswVar())
	}
	if target.UsesPSW(instr) {
		node.Uses = append(node.Uses, cfg.pswVar())
	}

	return node, nil
}

// pswVar returns the singleton CfgVar standing in for the flag register on
// targets where UsesPSW/DefinesPSW can report true. RV32IM has no
// condition-code register, so this is never actually interned into a
// node's def/use sets, but it gives the (always-false) branches in newNode
// somewhere to point were a future target to need it.
func (cfg *CFG) pswVar() *CfgVar {
	const pswReg = ir.VReg(-1)
	if v, ok := cfg.Registers[pswReg]; ok {
		return v
	}
	v := &CfgVar{VReg: pswReg}
	cfg.Registers[pswReg] = v
	return v
}

func (cfg *CFG) intern(arg ir.RegArg) (*CfgVar, error) {
	existing, ok := cfg.Registers[arg.Reg]
	if !ok {
		v := &CfgVar{VReg: arg.Reg, Whitelist: cloneWhitelist(arg.Whitelist)}
		cfg.Registers[arg.Reg] = v
		return v, nil
	}
	if arg.Whitelist == nil {
		return existing, nil
	}
	if existing.Whitelist == nil {
		existing.Whitelist = cloneWhitelist(arg.Whitelist)
		return existing, nil
	}
	merged := intersectWhitelists(existing.Whitelist, arg.Whitelist)
	if len(merged) == 0 {
		return nil, fmt.Errorf("cflow: register %d has incompatible constraints %v and %v",
			arg.Reg, existing.Whitelist, arg.Whitelist)
	}
	existing.Whitelist = merged
	return existing, nil
}

func cloneWhitelist(w []ir.PhysReg) []ir.PhysReg {
	if w == nil {
		return nil
	}
	return append([]ir.PhysReg(nil), w...)
}

func intersectWhitelists(a, b []ir.PhysReg) []ir.PhysReg {
	var out []ir.PhysReg
	for _, x := range a {
		for _, y := range b {
			if x == y {
				out = append(out, x)
				break
			}
		}
	}
	return out
}

// labelOwner maps a label id to the block whose first instruction carries
// it, used by linkEdges to resolve jump/branch targets.
func (cfg *CFG) labelOwner() map[ir.LabelID]BlockID {
	owners := make(map[ir.LabelID]BlockID)
	for _, b := range cfg.Blocks {
		if len(b.Nodes) == 0 {
			continue
		}
		if l := b.Nodes[0].Instr.Label; l != nil {
			owners[l.ID] = b.ID
		}
	}
	return owners
}

// linkEdges wires predecessor/successor edges for every block, matching
// cflow_graph.c's cfgComputeTransitions.
func linkEdges(cfg *CFG) error {
	owners := cfg.labelOwner()

	for i, b := range cfg.Blocks {
		if b.ID == cfg.End || len(b.Nodes) == 0 {
			continue
		}
		last := b.Nodes[len(b.Nodes)-1].Instr

		switch {
		case target.IsHaltOrRet(last):
			addEdge(cfg, b.ID, cfg.End)

		case target.IsJumpInstruction(last):
			if last.Addr == nil {
				return fmt.Errorf("cflow: jump/branch instruction with no target label")
			}
			dest, ok := owners[last.Addr.ID]
			if !ok {
				return fmt.Errorf("cflow: branch target label %d is not defined in this program", last.Addr.ID)
			}
			addEdge(cfg, b.ID, dest)
			if !target.IsUnconditionalJump(last) {
				addEdge(cfg, b.ID, fallthroughBlock(cfg, BlockID(i)))
			}

		default:
			addEdge(cfg, b.ID, fallthroughBlock(cfg, BlockID(i)))
		}
	}
	return nil
}

// fallthroughBlock returns the lexically next block after index i, or the
// end sentinel if there is none.
func fallthroughBlock(cfg *CFG, i BlockID) BlockID {
	if int(i)+1 < len(cfg.Blocks) {
		return cfg.Blocks[i+1].ID
	}
	return cfg.End
}

// addEdge links from->to in both directions, deduplicating.
func addEdge(cfg *CFG, from, to BlockID) {
	fb := cfg.Blocks[from]
	tb := cfg.Blocks[to]
	if !containsBlock(fb.Succ, to) {
		fb.Succ = append(fb.Succ, to)
	}
	if !containsBlock(tb.Pred, from) {
		tb.Pred = append(tb.Pred, from)
	}
}

func containsBlock(list []BlockID, id BlockID) bool {
	for _, b := range list {
		if b == id {
			return true
		}
	}
	return false
}

// ToProgram rebuilds a linear instruction list from the CFG's blocks in
// order, matching cflow_graph.c's cfgToProgram. Used after spill
// materialisation rewrites the CFG in place.
func ToProgram(cfg *CFG) []*ir.Instruction {
	var out []*ir.Instruction
	for _, b := range cfg.Blocks {
		if b.ID == cfg.End {
			continue
		}
		for _, n := range b.Nodes {
			out = append(out, n.Instr)
		}
	}
	return out
}
