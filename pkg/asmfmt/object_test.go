package asmfmt

import "testing"

func TestDeclareLabelRejectsDuplicate(t *testing.T) {
	o := NewObject()
	if _, err := o.DeclareLabel(&o.Text, "loop"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := o.DeclareLabel(&o.Data, "loop"); err == nil {
		t.Fatal("expected an error declaring the same label twice")
	}
}

func TestMaterializeAddressesPlacesDataAfterText(t *testing.T) {
	o := NewObject()
	o.Text.Items = append(o.Text.Items,
		SectionItem{Class: ItemInstruction, Instruction: Instruction{Mnemonic: "addi"}},
		SectionItem{Class: ItemInstruction, Instruction: Instruction{Mnemonic: "ecall"}},
	)
	o.Data.Items = append(o.Data.Items,
		SectionItem{Class: ItemData, Data: Data{Bytes: make([]byte, 4), Initialized: true}},
	)

	o.MaterializeAddresses(0x1000)

	if o.Text.Start != 0x1000 {
		t.Fatalf("expected text start 0x1000, got 0x%x", o.Text.Start)
	}
	if o.Data.Start != 0x1008 {
		t.Fatalf("expected data start 0x1008 (two 4-byte instructions later), got 0x%x", o.Data.Start)
	}
	if o.Text.Items[1].Address != 0x1004 {
		t.Fatalf("expected second instruction at 0x1004, got 0x%x", o.Text.Items[1].Address)
	}
}

func TestSectionSizeSumsInstructionsAndData(t *testing.T) {
	sec := Section{Items: []SectionItem{
		{Class: ItemInstruction},
		{Class: ItemData, Data: Data{Bytes: make([]byte, 4)}},
	}}
	if got := sec.Size(); got != 8 {
		t.Fatalf("expected size 8, got %d", got)
	}
}
