package regalloc

import (
	"fmt"

	"github.com/lance-lang/lancec/pkg/cflow"
	"github.com/lance-lang/lancec/pkg/ir"
	"github.com/lance-lang/lancec/pkg/target"
)

// slotState tracks one of the NumSpillRegs scratch registers across a
// block: which spilled vreg currently sits in it, and whether that value
// still needs to be written back to memory before it is evicted or the
// block ends. Reset to empty at the top of every block, matching spec
// §4.6 ("a block carries no spill state in from its predecessors").
type slotState struct {
	held           ir.VReg
	needsWriteback bool
}

// Finish applies non-spilled bindings, materialises spill traffic, and
// rewrites prog.Instructions from the resulting CFG. This is the single
// entry point pkg/driver calls once Allocate has produced a Result.
func Finish(prog *ir.Program, cfg *cflow.CFG, result *Result) error {
	ApplyBindings(prog, result)
	if err := MaterializeSpills(prog, cfg, result); err != nil {
		return err
	}
	prog.Instructions = cflow.ToProgram(cfg)
	return nil
}

// MaterializeSpills reserves a data-segment slot per spilled vreg and
// walks cfg block by block, inserting LW_G/SW_G around the three
// reserved scratch registers so that every remaining operand becomes a
// physical register reference. Grounded on reg_alloc.c's
// materializeRegAllocInCFG/materializeSpillMemory family; there is no
// direct teacher analogue for this pass.
func MaterializeSpills(prog *ir.Program, cfg *cflow.CFG, result *Result) error {
	slotOf := make(map[ir.VReg]*ir.Symbol, len(result.SpilledVRegs))
	for _, v := range result.SpilledVRegs {
		sym, err := prog.CreateSymbol(fmt.Sprintf("__spill_t%d", v), ir.SymInt, 0)
		if err != nil {
			return err
		}
		slotOf[v] = sym
	}

	for _, b := range cfg.Blocks {
		if b.ID == cfg.End {
			continue
		}
		if err := materializeBlock(b, result, slotOf); err != nil {
			return err
		}
	}
	return nil
}

type spillOperand struct {
	op    *ir.RegArg
	isDef bool
}

// operandsOf orders uses before the definition so that an instruction
// reading and writing the same spilled vreg (e.g. an in-place update like
// "x = x + 1") resolves the read against the old value before the
// definition claims (and marks dirty) the same slot.
func operandsOf(instr *ir.Instruction) []spillOperand {
	return []spillOperand{
		{op: &instr.Rs1, isDef: false},
		{op: &instr.Rs2, isDef: false},
		{op: &instr.Rd, isDef: true},
	}
}

func materializeBlock(b *cflow.BasicBlock, result *Result, slotOf map[ir.VReg]*ir.Symbol) error {
	slots := make([]slotState, target.NumSpillRegs)
	for i := range slots {
		slots[i].held = ir.RegNone
	}

	var nodes []*cflow.CfgNode

	flush := func(slot int) *ir.Instruction {
		if slots[slot].held == ir.RegNone || !slots[slot].needsWriteback {
			return nil
		}
		// t6 is never handed out by GeneralPurposeRegisters or
		// CallerSaveRegisters; it is reserved purely as the address
		// scratch for expanding the SW_G pseudo-instruction, mirroring
		// how real RV32 assemblers keep a temp (t6/x31) set aside for
		// expanding pseudo-ops without disturbing any live register.
		addrTemp := target.AsVReg(target.RegT6)
		value := target.AsVReg(target.SpillRegister(slot))
		instr := &ir.Instruction{
			Opcode: ir.OpSWG,
			Rs1:    ir.Arg(addrTemp),
			Rs2:    ir.Arg(value),
			Addr:   slotOf[slots[slot].held].Label,
		}
		slots[slot].needsWriteback = false
		return instr
	}

	for _, node := range b.Nodes {
		instr := node.Instr
		ops := operandsOf(instr)
		claimedBy := map[int]bool{} // slot indices already in use by this instruction

		// Pass 1: reuse a slot already holding this operand's vreg.
		for _, so := range ops {
			if !so.op.Valid() {
				continue
			}
			bind, spilled := result.Bindings[so.op.Reg]
			if !spilled || !bind.Spilled {
				continue
			}
			for i, s := range slots {
				if s.held == so.op.Reg {
					claimedBy[i] = true
					break
				}
			}
		}

		// Pass 2: assign fresh slots to whatever is left, flushing and
		// loading as needed, then rewrite every spilled operand to its
		// scratch register.
		for _, so := range ops {
			if !so.op.Valid() {
				continue
			}
			bind, spilled := result.Bindings[so.op.Reg]
			if !spilled || !bind.Spilled {
				continue
			}
			vreg := so.op.Reg

			slot := -1
			for i, s := range slots {
				if s.held == vreg {
					slot = i
					break
				}
			}
			if slot == -1 {
				slot = pickSlot(slots, claimedBy)
				claimedBy[slot] = true
				if w := flush(slot); w != nil {
					nodes = append(nodes, &cflow.CfgNode{Instr: w})
				}
				if !so.isDef {
					load := &ir.Instruction{
						Opcode: ir.OpLWG,
						Rd:     ir.Arg(target.AsVReg(target.SpillRegister(slot))),
						Addr:   slotOf[vreg].Label,
					}
					nodes = migrateLabelIfFirst(nodes, node, load)
				}
				slots[slot] = slotState{held: vreg}
			}

			so.op.Reg = target.AsVReg(target.SpillRegister(slot))
			so.op.Whitelist = nil
			if so.isDef {
				slots[slot].needsWriteback = true
			}
		}

		nodes = append(nodes, node)
	}

	// Flush whatever is still dirty before the block's terminator (or at
	// the end, if the block falls through with no terminator node).
	var writebacks []*ir.Instruction
	for i := range slots {
		if w := flush(i); w != nil {
			writebacks = append(writebacks, w)
		}
	}
	nodes = insertWritebacks(nodes, writebacks)

	b.Nodes = nodes
	return nil
}

// pickSlot prefers a slot this instruction hasn't already claimed and
// that currently holds nothing; failing that, the first not already
// claimed.
func pickSlot(slots []slotState, claimed map[int]bool) int {
	for i, s := range slots {
		if !claimed[i] && s.held == ir.RegNone {
			return i
		}
	}
	for i := range slots {
		if !claimed[i] {
			return i
		}
	}
	return 0
}

// migrateLabelIfFirst inserts load ahead of the original node's
// instruction. If the original instruction still carries a label (it
// hasn't already been moved onto an earlier inserted load for a
// different spilled operand of the same instruction), the label moves to
// load so branches into this point still land on the right instruction.
func migrateLabelIfFirst(nodes []*cflow.CfgNode, original *cflow.CfgNode, load *ir.Instruction) []*cflow.CfgNode {
	if original.Instr.Label != nil {
		load.Label = original.Instr.Label
		original.Instr.Label = nil
	}
	return append(nodes, &cflow.CfgNode{Instr: load})
}

// insertWritebacks appends writebacks before nodes' terminator, or at the
// very end if the last node isn't a control-flow exit.
func insertWritebacks(nodes []*cflow.CfgNode, writebacks []*ir.Instruction) []*cflow.CfgNode {
	if len(writebacks) == 0 {
		return nodes
	}
	wrapped := make([]*cflow.CfgNode, len(writebacks))
	for i, w := range writebacks {
		wrapped[i] = &cflow.CfgNode{Instr: w}
	}
	if len(nodes) == 0 {
		return wrapped
	}
	last := nodes[len(nodes)-1].Instr
	if target.IsTerminator(last) {
		out := append([]*cflow.CfgNode(nil), nodes[:len(nodes)-1]...)
		out = append(out, wrapped...)
		out = append(out, nodes[len(nodes)-1])
		return out
	}
	return append(nodes, wrapped...)
}
