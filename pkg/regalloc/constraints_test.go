package regalloc

import (
	"testing"

	"github.com/lance-lang/lancec/pkg/ir"
	"github.com/lance-lang/lancec/pkg/target"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedConstraintsUnpinnedGetsFullGeneralPurposePool(t *testing.T) {
	iv := &LiveInterval{VReg: 1, Start: 0, End: 5}
	require.NoError(t, seedConstraints([]*LiveInterval{iv}))
	assert.ElementsMatch(t, target.GeneralPurposeRegisters(), iv.Constraints)
}

func TestSeedConstraintsSubtractsNonAdjacentPinned(t *testing.T) {
	pinned := &LiveInterval{VReg: 1, Start: 0, End: 10, Constraints: []ir.PhysReg{target.RegA0}}
	iv := &LiveInterval{VReg: 2, Start: 2, End: 4}
	require.NoError(t, seedConstraints([]*LiveInterval{pinned, iv}))
	assert.NotContains(t, iv.Constraints, target.RegA0)
}

func TestSeedConstraintsFloatsAdjacentPinnedToFront(t *testing.T) {
	// pinned starts exactly where iv ends (iv is a source of the instruction
	// defining pinned): a0 should float to the front so the allocator can
	// reuse the same physical register source=dest.
	pinned := &LiveInterval{VReg: 1, Start: 3, End: 6, Constraints: []ir.PhysReg{target.RegA0}}
	iv := &LiveInterval{VReg: 2, Start: 0, End: 3}
	require.NoError(t, seedConstraints([]*LiveInterval{pinned, iv}))
	require.NotEmpty(t, iv.Constraints)
	assert.Equal(t, target.RegA0, iv.Constraints[0])
}

func TestSeedConstraintsErrorsOnEmptyIntersection(t *testing.T) {
	gp := target.GeneralPurposeRegisters()
	var pins []*LiveInterval
	for i, r := range gp {
		pins = append(pins, &LiveInterval{
			VReg:        ir.VReg(100 + i),
			Start:       1,
			End:         1,
			Constraints: []ir.PhysReg{r},
		})
	}
	iv := &LiveInterval{VReg: 1, Start: 0, End: 2}
	all := append(pins, iv)
	err := seedConstraints(all)
	require.Error(t, err)
}
