package main

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/lance-lang/lancec/pkg/diagnostics"
	"github.com/lance-lang/lancec/pkg/driver"
	"github.com/lance-lang/lancec/pkg/frontend"
)

// TestAssembleRoundTripsCompilerOutput exercises spec §8's P6 property:
// everything lancec emits for a representative program assembles without
// error.
func TestAssembleRoundTripsCompilerOutput(t *testing.T) {
	sink := diagnostics.NewSink(&strings.Builder{})
	prog, err := frontend.Parse(`
		int a, b, x[4];
		read a;
		if (a < 10) { b = a + 1; } else { b = a - 1; }
		while (a != 0) { a = a - 1; }
		x[2] = b * 2;
		write b;
	`, "roundtrip.lance", sink)
	if err != nil || sink.HasErrors() {
		t.Fatalf("unexpected front-end failure: %v (errors=%d)", err, sink.Errors)
	}

	var asm bytes.Buffer
	if err := driver.New(false, "").Compile(prog, &asm); err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}

	tmp := writeTempFile(t, asm.String())
	defer os.Remove(tmp.Name())

	obj, err := Assemble(tmp)
	if err != nil {
		t.Fatalf("expected the compiler's own output to assemble cleanly, got: %v\nassembly:\n%s", err, asm.String())
	}
	if len(obj.Text.Items) == 0 {
		t.Fatal("expected at least one text-section item")
	}
	if len(obj.Data.Items) == 0 {
		t.Fatal("expected at least one data-section item for the declared globals")
	}
}

func writeTempFile(t *testing.T, contents string) *os.File {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "asm-*.s")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.WriteString(contents); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.Seek(0, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return f
}

func TestAssembleRejectsDuplicateLabel(t *testing.T) {
	src := "loop:   addi   t0, zero, 1\nloop:   addi   t0, zero, 2\n"
	tmp := writeTempFile(t, ".text\n"+src)
	defer os.Remove(tmp.Name())

	if _, err := Assemble(tmp); err == nil {
		t.Fatal("expected an error for a duplicate label")
	}
}
