package asmprint

import (
	"strings"
	"testing"

	"github.com/lance-lang/lancec/pkg/cflow"
	"github.com/lance-lang/lancec/pkg/ir"
	"github.com/lance-lang/lancec/pkg/regalloc"
	"github.com/lance-lang/lancec/pkg/target"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fullyLower runs the whole back end over p, matching the order
// pkg/driver's DoRegisterAllocation/DoTargetSpecificTransformations use.
func fullyLower(t *testing.T, p *ir.Program) {
	t.Helper()
	require.NoError(t, target.FixPseudoInstructions(p))
	require.NoError(t, target.FixSyscalls(p))
	require.NoError(t, target.FixUnsupportedImmediates(p))

	cfg, err := cflow.Build(p)
	require.NoError(t, err)
	cflow.ComputeLiveness(cfg)

	res, err := regalloc.Allocate(cfg)
	require.NoError(t, err)
	require.NoError(t, regalloc.Finish(p, cfg, res))
}

func TestPrintEmitsDataAndTextSections(t *testing.T) {
	p := ir.NewProgram()
	_, err := p.CreateSymbol("counter", ir.SymInt, 0)
	require.NoError(t, err)
	t1 := p.GetNewRegister()
	p.NewADDI(t1, ir.RegZero, 5)
	p.NewExit0()
	fullyLower(t, p)

	var buf strings.Builder
	require.NoError(t, Print(&buf, p))
	out := buf.String()

	assert.Contains(t, out, ".data")
	assert.Contains(t, out, ".space 4")
	assert.Contains(t, out, ".text")
	assert.Contains(t, out, "addi")
	assert.Contains(t, out, "ecall")
}

func TestPrintUsesABIRegisterNames(t *testing.T) {
	p := ir.NewProgram()
	t1 := p.GetNewRegister()
	p.NewADDI(t1, ir.RegZero, 1)
	p.NewExit0()
	fullyLower(t, p)

	var buf strings.Builder
	require.NoError(t, Print(&buf, p))
	out := buf.String()

	assert.NotContains(t, out, "t1,", "operand names must be ABI register names, not vreg debug names")
	found := false
	for _, name := range []string{"s0", "s1", "s2", "s3", "s4", "s5", "s6", "s7", "s8", "t0", "t1", "t2", "t3", "t4", "t5", "a0", "a1", "a2", "a3", "a4", "a5", "a6", "a7"} {
		if strings.Contains(out, "addi   "+name+", zero, 1") {
			found = true
		}
	}
	assert.True(t, found, "expected the addi to use an ABI register name:\n%s", out)
}

func TestPrintRejectsUnloweredPseudoOps(t *testing.T) {
	p := ir.NewProgram()
	t1 := p.GetNewRegister()
	p.NewSUBI(t1, ir.RegZero, 1) // pseudo-op, never lowered
	p.NewExit0()

	var buf strings.Builder
	err := Print(&buf, p)
	require.Error(t, err)
}

func TestPrintEmitsGlobalDeclarationForStartLabel(t *testing.T) {
	p := ir.NewProgram()
	p.NewExit0()
	fullyLower(t, p)

	var buf strings.Builder
	require.NoError(t, Print(&buf, p))
	assert.Contains(t, buf.String(), ".global _start")
}
