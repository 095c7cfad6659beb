// Package driver orchestrates the back end's pipeline stages —
// target-specific lowering, register allocation, assembly printing —
// the way cmd/minzc/main.go's compile() chains parse/analyze/codegen,
// and writes the same debug logs reg_alloc.c's doRegisterAllocation
// writes under #ifndef NDEBUG, plus a front-end trace of its own.
package driver

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/lance-lang/lancec/pkg/asmprint"
	"github.com/lance-lang/lancec/pkg/cflow"
	"github.com/lance-lang/lancec/pkg/frontend"
	"github.com/lance-lang/lancec/pkg/ir"
	"github.com/lance-lang/lancec/pkg/regalloc"
	"github.com/lance-lang/lancec/pkg/target"
)

// Driver holds the options that shape one compilation run.
type Driver struct {
	// Debug, when true, writes the _frontend.log/_controlFlow.log/
	// _dataFlow.log/_regAlloc.log debug dumps under LogBaseName,
	// matching the C compiler's #ifndef NDEBUG dumps.
	Debug bool
	// LogBaseName is the path prefix debug logs are written under (e.g.
	// "/tmp/foo" produces "/tmp/foo_controlFlow.log" etc).
	LogBaseName string
}

// New returns a Driver with the given options.
func New(debug bool, logBaseName string) *Driver {
	return &Driver{Debug: debug, LogBaseName: logBaseName}
}

// WriteFrontendLog writes the _frontend.log debug dump of prog as Parse
// left it, before any target-specific lowering runs. The caller is
// expected to call this right after a successful parse, since Compile
// below immediately starts rewriting prog in place.
func (d *Driver) WriteFrontendLog(prog *ir.Program) error {
	return d.writeLog("frontend", frontend.Dump(prog))
}

// Compile runs the whole back end over prog: target-specific lowering,
// register allocation (with spill materialisation), and assembly
// printing to w. Matches cmd/minzc/main.go's compile() staging, wrapping
// each stage's error with fmt.Errorf("...: %w", err).
func (d *Driver) Compile(prog *ir.Program, w io.Writer) error {
	if err := d.DoTargetSpecificTransformations(prog); err != nil {
		return fmt.Errorf("driver: target-specific transformations: %w", err)
	}

	cfg, result, err := d.DoRegisterAllocation(prog)
	if err != nil {
		return fmt.Errorf("driver: register allocation: %w", err)
	}

	if err := regalloc.Finish(prog, cfg, result); err != nil {
		return fmt.Errorf("driver: spill materialisation: %w", err)
	}

	if err := d.WriteAssembly(prog, w); err != nil {
		return fmt.Errorf("driver: assembly printing: %w", err)
	}
	return nil
}

// DoTargetSpecificTransformations runs the three target lowering passes
// in the fixed order FixPseudoInstructions, then FixSyscalls, then
// FixUnsupportedImmediates must run in (syscalls and pseudo-ops must be
// gone before immediate-range fixups see their expansions).
func (d *Driver) DoTargetSpecificTransformations(prog *ir.Program) error {
	if err := target.FixPseudoInstructions(prog); err != nil {
		return fmt.Errorf("fix pseudo-instructions: %w", err)
	}
	if err := target.FixSyscalls(prog); err != nil {
		return fmt.Errorf("fix syscalls: %w", err)
	}
	if err := target.FixUnsupportedImmediates(prog); err != nil {
		return fmt.Errorf("fix unsupported immediates: %w", err)
	}
	return nil
}

// DoRegisterAllocation builds the CFG, computes liveness, and runs the
// constraint-aware linear scan, writing the three debug logs in between
// each stage when d.Debug is set — matching reg_alloc.c's
// doRegisterAllocation. The caller still owns calling regalloc.Finish to
// materialise spills and rewrite prog, since Compile needs to sequence
// that after this returns.
func (d *Driver) DoRegisterAllocation(prog *ir.Program) (*cflow.CFG, *regalloc.Result, error) {
	cfg, err := cflow.Build(prog)
	if err != nil {
		return nil, nil, fmt.Errorf("build control-flow graph: %w", err)
	}
	if err := d.writeLog("controlFlow", cflow.Dump(cfg, false)); err != nil {
		return nil, nil, err
	}

	cflow.ComputeLiveness(cfg)
	if err := d.writeLog("dataFlow", cflow.Dump(cfg, true)); err != nil {
		return nil, nil, err
	}

	result, err := regalloc.Allocate(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("linear scan: %w", err)
	}
	if err := d.writeLog("regAlloc", result.Dump()); err != nil {
		return nil, nil, err
	}

	return cfg, result, nil
}

// WriteAssembly prints prog's final assembly listing to w.
func (d *Driver) WriteAssembly(prog *ir.Program, w io.Writer) error {
	return asmprint.Print(w, prog)
}

func (d *Driver) writeLog(name, content string) error {
	if !d.Debug {
		return nil
	}
	path := fmt.Sprintf("%s_%s.log", d.LogBaseName, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create log directory for %s: %w", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s log: %w", name, err)
	}
	return nil
}
