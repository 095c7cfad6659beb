package main

import "testing"

func TestDestinationForDefaultsToSExtension(t *testing.T) {
	outputFile = ""
	if got := destinationFor("prog.lance"); got != "prog.s" {
		t.Fatalf("expected prog.s, got %s", got)
	}
}

func TestDestinationForHonorsOutputFlag(t *testing.T) {
	outputFile = "out.s"
	defer func() { outputFile = "" }()
	if got := destinationFor("prog.lance"); got != "out.s" {
		t.Fatalf("expected out.s, got %s", got)
	}
}
