package regalloc

import (
	"fmt"
	"testing"

	"github.com/lance-lang/lancec/pkg/ir"
	"github.com/lance-lang/lancec/pkg/target"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildSpillingProgram returns a program whose register pressure is
// guaranteed to exceed target.GeneralPurposeRegisters, so Allocate is
// guaranteed to produce at least one spilled vreg.
func buildSpillingProgram(t *testing.T) (*ir.Program, []ir.VReg, ir.VReg) {
	t.Helper()
	p := ir.NewProgram()
	n := len(target.GeneralPurposeRegisters()) + 4
	vregs := make([]ir.VReg, n)
	for i := range vregs {
		vregs[i] = p.GetNewRegister()
		p.NewADDI(vregs[i], ir.RegZero, int32(i))
	}
	acc := p.GetNewRegister()
	p.NewADDI(acc, vregs[0], 0)
	for i := 1; i < n; i++ {
		p.NewADD(acc, acc, vregs[i])
	}
	p.NewExit0()
	return p, vregs, acc
}

func TestFinishLeavesNoVRegOperandsBehind(t *testing.T) {
	p, _, _ := buildSpillingProgram(t)
	cfg := buildCFG(t, p)
	res, err := Allocate(cfg)
	require.NoError(t, err)
	require.NotEmpty(t, res.SpilledVRegs)

	require.NoError(t, Finish(p, cfg, res))

	for _, instr := range p.Instructions {
		for _, op := range []ir.RegArg{instr.Rd, instr.Rs1, instr.Rs2} {
			if !op.Valid() {
				continue
			}
			_, ok := target.PhysRegFromVReg(op.Reg)
			assert.True(t, ok, "operand %v in %v should have been resolved to a physical register", op, instr)
		}
	}
}

func TestFinishReservesADataSlotPerSpilledVReg(t *testing.T) {
	p, _, _ := buildSpillingProgram(t)
	cfg := buildCFG(t, p)
	res, err := Allocate(cfg)
	require.NoError(t, err)
	before := len(p.Symbols())

	require.NoError(t, Finish(p, cfg, res))

	assert.Equal(t, before+len(res.SpilledVRegs), len(p.Symbols()))
}

func TestFinishWritesBackDirtySlotBeforeBlockTerminator(t *testing.T) {
	// buildSpillingProgram is one block ending in the EXIT_0 terminator and
	// every spilled vreg is defined inside it, so each dirty slot must be
	// flushed before that terminator rather than silently carried past the
	// block (materializeBlock resets slot state per block).
	p, _, _ := buildSpillingProgram(t)
	cfg := buildCFG(t, p)
	res, err := Allocate(cfg)
	require.NoError(t, err)
	require.NoError(t, Finish(p, cfg, res))

	require.NotEmpty(t, res.SpilledVRegs)
	spilled := res.SpilledVRegs[len(res.SpilledVRegs)-1]
	sym, ok := p.GetSymbol(fmt.Sprintf("__spill_t%d", spilled))
	require.True(t, ok, "expected a reserved data slot for the spilled vreg")

	sawStoreToSlot := false
	for _, instr := range p.Instructions {
		if instr.Opcode == ir.OpExit0 {
			break
		}
		if instr.Opcode == ir.OpSWG && instr.Addr != nil && instr.Addr.ID == sym.Label.ID {
			sawStoreToSlot = true
		}
	}
	assert.True(t, sawStoreToSlot, "expected a writeback to the spilled vreg's slot before the block's terminator")
}
