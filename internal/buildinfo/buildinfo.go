// Package buildinfo tracks this toolchain's own version and the
// compatibility range it claims for the on-disk assembly/object formats it
// reads and writes, mirroring pkg/version's build-time ldflags variables
// but adding the semver range checks none of spec.md's "not part of the
// compatibility surface" disclaimers actually enforce anywhere else.
package buildinfo

import (
	"fmt"
	"runtime"

	"github.com/Masterminds/semver/v3"
)

// Version information, overridable at build time via -ldflags, exactly as
// pkg/version.Version/GitCommit/BuildDate are.
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = runtime.Version()
)

// AssemblyFormatRange is the semver constraint this build's asmprint
// output and pkg/asmfmt object records satisfy. cmd/lancec's
// --require-toolchain flag checks a caller-supplied constraint against
// Version; no tool checks AssemblyFormatRange, and object records carry
// no format header.
const AssemblyFormatRange = ">=0.1.0, <1.0.0"

// String returns a single-line build summary, matching
// pkg/version.GetBuildInfo's "Name version (commit, built date)" shape.
func String() string {
	return fmt.Sprintf("lancec %s (%s, built %s, %s)", Version, GitCommit, BuildDate, GoVersion)
}

// CheckToolchain parses constraint as a semver range and reports whether
// this build's Version satisfies it. Used by --require-toolchain to let a
// build script refuse to run against an incompatible compiler rather than
// fail confusingly partway through.
func CheckToolchain(constraint string) error {
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return fmt.Errorf("buildinfo: invalid toolchain constraint %q: %w", constraint, err)
	}
	v, err := semver.NewVersion(Version)
	if err != nil {
		return fmt.Errorf("buildinfo: invalid build version %q: %w", Version, err)
	}
	if !c.Check(v) {
		return fmt.Errorf("buildinfo: this build (%s) does not satisfy required toolchain constraint %q", Version, constraint)
	}
	return nil
}
