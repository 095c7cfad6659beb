package regalloc

import (
	"fmt"

	"github.com/lance-lang/lancec/pkg/cflow"
	"github.com/lance-lang/lancec/pkg/ir"
	"github.com/lance-lang/lancec/pkg/target"
)

// Binding is where one vreg ended up: either a physical register, or
// spilled (in which case regalloc.MaterializeSpills assigns it a data
// segment slot and rewrites its uses through a scratch register).
type Binding struct {
	Reg     ir.PhysReg
	Spilled bool
}

// Result is the allocator's output: spec §4.5's "bindings map from vreg to
// PhysReg(id) or Spill, plus the list of spilled vregs".
type Result struct {
	Bindings     map[ir.VReg]Binding
	SpilledVRegs []ir.VReg // in the deterministic order spilling occurred
	Intervals    []*LiveInterval
}

// Allocate runs live-interval collection, constraint seeding, caller-save
// clobber handling and linear scan over cfg, in that order (spec §4.5).
func Allocate(cfg *cflow.CFG) (*Result, error) {
	intervals := collectIntervals(cfg)
	if err := seedConstraints(intervals); err != nil {
		return nil, err
	}
	if err := applyCallerSaveClobbers(cfg, intervals); err != nil {
		return nil, err
	}
	return linearScan(intervals)
}

func linearScan(intervals []*LiveInterval) (*Result, error) {
	res := &Result{Bindings: make(map[ir.VReg]Binding), Intervals: intervals}

	free := make(map[ir.PhysReg]bool)
	for _, r := range target.GeneralPurposeRegisters() {
		free[r] = true
	}

	var active []*LiveInterval // kept sorted ascending by End

	for _, iv := range intervals {
		preferred := ir.NoPhysReg
		var stillActive []*LiveInterval
		for _, a := range active {
			if a.End <= iv.Start {
				reg := res.Bindings[a.VReg].Reg
				free[reg] = true
				if a.End == iv.Start {
					preferred = reg
				}
			} else {
				stillActive = append(stillActive, a)
			}
		}
		active = stillActive

		constraints := iv.Constraints
		if preferred != ir.NoPhysReg {
			constraints = floatToFront(constraints, []ir.PhysReg{preferred})
		}

		if reg, ok := firstFree(constraints, free); ok {
			free[reg] = false
			res.Bindings[iv.VReg] = Binding{Reg: reg}
			active = insertByEnd(active, iv)
			continue
		}

		if len(active) > 0 {
			last := active[len(active)-1]
			lastReg := res.Bindings[last.VReg].Reg
			if last.End > iv.End && containsReg(constraints, lastReg) {
				res.Bindings[iv.VReg] = Binding{Reg: lastReg}
				res.Bindings[last.VReg] = Binding{Spilled: true}
				res.SpilledVRegs = append(res.SpilledVRegs, last.VReg)
				active = replaceLast(active, iv)
				continue
			}
		}

		res.Bindings[iv.VReg] = Binding{Spilled: true}
		res.SpilledVRegs = append(res.SpilledVRegs, iv.VReg)
	}

	if err := checkSoundness(res); err != nil {
		return nil, err
	}
	return res, nil
}

func firstFree(constraints []ir.PhysReg, free map[ir.PhysReg]bool) (ir.PhysReg, bool) {
	for _, r := range constraints {
		if free[r] {
			return r, true
		}
	}
	return ir.NoPhysReg, false
}

func containsReg(list []ir.PhysReg, r ir.PhysReg) bool {
	for _, x := range list {
		if x == r {
			return true
		}
	}
	return false
}

func insertByEnd(active []*LiveInterval, iv *LiveInterval) []*LiveInterval {
	i := 0
	for i < len(active) && active[i].End <= iv.End {
		i++
	}
	active = append(active, nil)
	copy(active[i+1:], active[i:])
	active[i] = iv
	return active
}

func replaceLast(active []*LiveInterval, iv *LiveInterval) []*LiveInterval {
	if len(active) == 0 {
		return insertByEnd(active, iv)
	}
	active = active[:len(active)-1]
	return insertByEnd(active, iv)
}

// checkSoundness verifies P3: no two overlapping, non-spilled intervals
// share a physical register (other than x0, which is never allocated).
// Two intervals that only touch where one ends and the other starts do not
// conflict: that is the source=destination reuse linearScan's expiry rule
// prefers.
func checkSoundness(res *Result) error {
	for _, a := range res.Intervals {
		ba := res.Bindings[a.VReg]
		if ba.Spilled {
			continue
		}
		for _, b := range res.Intervals {
			if a == b {
				continue
			}
			bb := res.Bindings[b.VReg]
			if bb.Spilled || bb.Reg != ba.Reg {
				continue
			}
			if a.overlaps(b) && a.End != b.Start && b.End != a.Start {
				return fmt.Errorf("regalloc: unsound allocation, vreg %d and %d both bound to register %d while overlapping",
					a.VReg, b.VReg, ba.Reg)
			}
		}
	}
	return nil
}
