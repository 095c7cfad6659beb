package regalloc

import (
	"fmt"

	"github.com/lance-lang/lancec/pkg/cflow"
	"github.com/lance-lang/lancec/pkg/ir"
	"github.com/lance-lang/lancec/pkg/target"
)

// seedConstraints fills in the constraint list for every interval that did
// not already arrive with an explicit whitelist (i.e. everything except
// the syscall-pinned a0/a7 temporaries FixSyscalls created), matching
// spec §4.5's constraint-seeding algorithm and reg_alloc.c's
// initializeRegisterConstraints.
func seedConstraints(intervals []*LiveInterval) error {
	var explicit []*LiveInterval
	for _, iv := range intervals {
		if iv.Constraints != nil {
			explicit = append(explicit, iv)
		}
	}

	for _, iv := range intervals {
		if iv.Constraints != nil {
			continue // already pinned at creation time; left untouched here
		}
		iv.Constraints = append([]ir.PhysReg(nil), target.GeneralPurposeRegisters()...)

		for _, other := range explicit {
			if !iv.overlaps(other) {
				continue
			}
			if other.Start == iv.End {
				// iv is a source consumed exactly by the instruction that
				// defines other: float other's register to the front so
				// source=destination allocation becomes possible.
				iv.Constraints = floatToFront(iv.Constraints, other.Constraints)
			} else {
				iv.Constraints = subtract(iv.Constraints, other.Constraints)
			}
		}

		if len(iv.Constraints) == 0 {
			return fmt.Errorf("regalloc: empty constraint intersection for vreg %d", iv.VReg)
		}
	}
	return nil
}

// applyCallerSaveClobbers subtracts the caller-save register set (minus
// whatever is already pinned for the call's own ABI operands) from every
// interval straddling each ECALL site, matching reg_alloc.c's
// handleCallerSaveRegisters.
func applyCallerSaveClobbers(cfg *cflow.CFG, intervals []*LiveInterval) error {
	for _, in := range orderNodes(cfg) {
		if !target.IsCallInstruction(in.node.Instr) {
			continue
		}
		idx := in.idx

		var overlapping []*LiveInterval
		for _, iv := range intervals {
			if iv.Start <= idx && idx <= iv.End {
				overlapping = append(overlapping, iv)
			}
		}

		pinned := make(map[ir.PhysReg]bool)
		for _, iv := range overlapping {
			if len(iv.Constraints) == 1 {
				pinned[iv.Constraints[0]] = true
			}
		}

		var clobber []ir.PhysReg
		for _, r := range target.CallerSaveRegisters() {
			if !pinned[r] {
				clobber = append(clobber, r)
			}
		}

		for _, iv := range overlapping {
			iv.Constraints = subtract(iv.Constraints, clobber)
			if len(iv.Constraints) == 0 {
				return fmt.Errorf("regalloc: vreg %d has no register left after caller-save clobber at instruction %d",
					iv.VReg, idx)
			}
		}
	}
	return nil
}

// floatToFront reorders list so that every register also present in
// preferred comes first (in preferred's order), followed by the rest of
// list in its original order.
func floatToFront(list, preferred []ir.PhysReg) []ir.PhysReg {
	inList := make(map[ir.PhysReg]bool, len(list))
	for _, r := range list {
		inList[r] = true
	}
	out := make([]ir.PhysReg, 0, len(list))
	seen := make(map[ir.PhysReg]bool, len(list))
	for _, r := range preferred {
		if inList[r] && !seen[r] {
			out = append(out, r)
			seen[r] = true
		}
	}
	for _, r := range list {
		if !seen[r] {
			out = append(out, r)
			seen[r] = true
		}
	}
	return out
}

// subtract returns list with every register in remove filtered out,
// preserving list's order.
func subtract(list, remove []ir.PhysReg) []ir.PhysReg {
	if len(remove) == 0 {
		return list
	}
	gone := make(map[ir.PhysReg]bool, len(remove))
	for _, r := range remove {
		gone[r] = true
	}
	out := make([]ir.PhysReg, 0, len(list))
	for _, r := range list {
		if !gone[r] {
			out = append(out, r)
		}
	}
	return out
}
