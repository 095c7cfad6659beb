// Command lancesim is a thin stand-in for the companion RV32IM
// simulator spec.md treats as an external collaborator: it drives
// pkg/simfacts.Dispatch once against an in-memory register file whose
// a7/a0 come from its two command-line arguments, using the process's
// real stdin/stdout. It does not load or execute a program.
package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/lance-lang/lancec/pkg/simfacts"
)

// registers is the minimal simfacts.RegisterFile a syscall dispatch
// needs: just the 32-register file, no program counter or memory, since
// this stub never executes arithmetic instructions itself.
type registers struct {
	values [simfacts.NumRegisters]int32
}

func (r *registers) Register(reg simfacts.Register) int32      { return r.values[reg] }
func (r *registers) SetRegister(reg simfacts.Register, v int32) { r.values[reg] = v }

// stdio implements simfacts.IO against the process's real stdin/stdout,
// matching supervisor.c's handleSyscall reading/writing them directly.
type stdio struct {
	in  *bufio.Reader
	out *bufio.Writer
}

func (s *stdio) WriteInt(v int32) { fmt.Fprintf(s.out, "%d", v); s.out.Flush() }
func (s *stdio) WriteChar(c byte) { s.out.WriteByte(c); s.out.Flush() }

func (s *stdio) ReadInt() (int32, error) {
	var v int32
	_, err := fmt.Fscan(s.in, &v)
	return v, err
}

func (s *stdio) ReadChar() (byte, error) { return s.in.ReadByte() }

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintln(os.Stderr, "usage: lancesim <syscall-number> <a0-value>")
		os.Exit(1)
	}

	var syscallNum, a0 int32
	if _, err := fmt.Sscanf(os.Args[1], "%d", &syscallNum); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid syscall number %q: %v\n", os.Args[1], err)
		os.Exit(1)
	}
	if _, err := fmt.Sscanf(os.Args[2], "%d", &a0); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid a0 value %q: %v\n", os.Args[2], err)
		os.Exit(1)
	}

	regs := &registers{}
	regs.SetRegister(simfacts.FuncRegister, syscallNum)
	regs.SetRegister(simfacts.ArgRegister, a0)

	io := &stdio{in: bufio.NewReader(os.Stdin), out: bufio.NewWriter(os.Stdout)}
	effect, err := simfacts.Dispatch(regs, io)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if effect.Halt {
		os.Exit(int(effect.ExitCode))
	}
}
