package simfacts

import (
	"errors"
	"testing"
)

type fakeRegs struct {
	regs [NumRegisters]int32
}

func (f *fakeRegs) Register(r Register) int32      { return f.regs[r] }
func (f *fakeRegs) SetRegister(r Register, v int32) { f.regs[r] = v }

type fakeIO struct {
	written   []int32
	chars     []byte
	nextInt   int32
	nextChar  byte
	readError error
}

func (f *fakeIO) WriteInt(v int32)  { f.written = append(f.written, v) }
func (f *fakeIO) WriteChar(c byte)  { f.chars = append(f.chars, c) }
func (f *fakeIO) ReadInt() (int32, error) {
	if f.readError != nil {
		return 0, f.readError
	}
	return f.nextInt, nil
}
func (f *fakeIO) ReadChar() (byte, error) {
	if f.readError != nil {
		return 0, f.readError
	}
	return f.nextChar, nil
}

func TestDispatchPrintIntWritesA0(t *testing.T) {
	regs := &fakeRegs{}
	regs.SetRegister(FuncRegister, int32(SyscallPrintInt))
	regs.SetRegister(ArgRegister, 42)
	io := &fakeIO{}

	effect, err := Dispatch(regs, io)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if effect.Halt {
		t.Fatal("print_int should not halt")
	}
	if len(io.written) != 1 || io.written[0] != 42 {
		t.Fatalf("expected [42] written, got %v", io.written)
	}
}

func TestDispatchReadIntSetsA0(t *testing.T) {
	regs := &fakeRegs{}
	regs.SetRegister(FuncRegister, int32(SyscallReadInt))
	io := &fakeIO{nextInt: 7}

	if _, err := Dispatch(regs, io); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if regs.Register(ArgRegister) != 7 {
		t.Fatalf("expected a0=7, got %d", regs.Register(ArgRegister))
	}
}

func TestDispatchExit0Halts(t *testing.T) {
	regs := &fakeRegs{}
	regs.SetRegister(FuncRegister, int32(SyscallExit0))

	effect, err := Dispatch(regs, &fakeIO{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !effect.Halt || effect.ExitCode != 0 {
		t.Fatalf("expected Halt=true ExitCode=0, got %+v", effect)
	}
}

func TestDispatchExitUsesA0AsExitCode(t *testing.T) {
	regs := &fakeRegs{}
	regs.SetRegister(FuncRegister, int32(SyscallExit))
	regs.SetRegister(ArgRegister, 3)

	effect, err := Dispatch(regs, &fakeIO{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !effect.Halt || effect.ExitCode != 3 {
		t.Fatalf("expected Halt=true ExitCode=3, got %+v", effect)
	}
}

func TestDispatchUnknownSyscallReturnsError(t *testing.T) {
	regs := &fakeRegs{}
	regs.SetRegister(FuncRegister, 999)

	if _, err := Dispatch(regs, &fakeIO{}); err == nil {
		t.Fatal("expected an error for an unrecognised syscall number")
	}
}

func TestDispatchReadIntPropagatesIOError(t *testing.T) {
	regs := &fakeRegs{}
	regs.SetRegister(FuncRegister, int32(SyscallReadInt))
	wantErr := errors.New("eof")
	io := &fakeIO{readError: wantErr}

	if _, err := Dispatch(regs, io); !errors.Is(err, wantErr) {
		t.Fatalf("expected wrapped %v, got %v", wantErr, err)
	}
}
