// Package asmfmt defines the object-record shape an external assembler
// would consume once lowered assembly text is tokenised back into
// structured form: sections, labels, and the instruction/data items they
// hold. Grounded on original_source/asrv32im/object.c's t_object/
// t_objSection/t_objSecItem/t_instruction, translated from the original's
// mutable linked list into immutable Go slices/structs — this package
// only describes the shape cmd/lanceasm exercises; it does not implement
// a full lexer/parser/ELF writer, which spec.md treats as an external
// collaborator's concern.
package asmfmt

// SectionID identifies one of the two sections asrv32im's object format
// recognises, matching t_objSectionID's OBJ_SECTION_TEXT/OBJ_SECTION_DATA.
type SectionID int

const (
	SectionText SectionID = iota
	SectionData
)

func (id SectionID) String() string {
	switch id {
	case SectionText:
		return ".text"
	case SectionData:
		return ".data"
	default:
		return "unknown"
	}
}

// ItemClass distinguishes an instruction item from a raw data item within
// a section, matching t_objSecItemClass.
type ItemClass int

const (
	ItemInstruction ItemClass = iota
	ItemData
)

// Label is a named position within a section, resolved to an address once
// the whole object is materialised. Matches t_objLabel, minus object.c's
// mutable linked-list bookkeeping.
type Label struct {
	Name    string
	Section SectionID
	Offset  uint32 // byte offset within the section; an absolute address after MaterializeAddresses
}

// Instruction is one physical RV32IM instruction as the assembler would
// see it: a mnemonic plus up to three register operands, an immediate, and
// an optional label reference for branch/jump/load-address targets.
// Matches t_instruction, with the opcode enum replaced by the mnemonic
// string asmprint already emits so this package doesn't need its own
// opcode table kept in sync with pkg/ir's.
type Instruction struct {
	Mnemonic string
	Rd, Rs1, Rs2 string // empty when the operand doesn't apply
	Immediate    int32
	LabelRef     string // empty when the instruction has no label operand
}

// Data is a fixed-size, optionally zero-initialised data item, matching
// t_data's dataSize/initialized/data[DATA_MAX] triple. Bytes holds the
// item's full length: 4 for a word, the declared byte count for a reserved
// block such as an array.
type Data struct {
	Bytes       []byte
	Initialized bool
}

// SectionItem is one entry in a section's item list: either an
// Instruction or a Data value, matching t_objSecItem's class-tagged union.
type SectionItem struct {
	Class       ItemClass
	Address     uint32
	Instruction Instruction
	Data        Data
}

// Section holds one section's labels and ordered items, matching
// t_objSection plus object.c's objSecAppendData/objSecAppendInstruction/
// objSecDeclareLabel mutators, expressed as plain field access since Go
// doesn't need the opaque pointer-handle API the C header exposes.
type Section struct {
	ID     SectionID
	Start  uint32
	Items  []SectionItem
	Labels []*Label
}

// Size returns the section's size in bytes: 4 per instruction, and each
// data item's declared byte length.
func (s *Section) Size() uint32 {
	var size uint32
	for _, item := range s.Items {
		switch item.Class {
		case ItemInstruction:
			size += 4
		case ItemData:
			size += uint32(len(item.Data.Bytes))
		}
	}
	return size
}

// Object is a whole assembled unit: its two sections, each holding the
// labels declared in it, matching t_object. Label searches both sections.
type Object struct {
	Text Section
	Data Section
}

// NewObject returns an empty object with both sections present,
// matching newObject's allocation of both OBJ_SECTION_TEXT/DATA up front.
func NewObject() *Object {
	return &Object{
		Text: Section{ID: SectionText},
		Data: Section{ID: SectionData},
	}
}

// Section returns the section identified by id, matching objGetSection.
func (o *Object) Section(id SectionID) *Section {
	switch id {
	case SectionText:
		return &o.Text
	case SectionData:
		return &o.Data
	default:
		return nil
	}
}

// Label looks up a label by name across both sections, matching
// objGetLabel's "find or create" semantics minus the implicit creation:
// callers that want creation use DeclareLabel.
func (o *Object) Label(name string) (*Label, bool) {
	for _, l := range o.Text.Labels {
		if l.Name == name {
			return l, true
		}
	}
	for _, l := range o.Data.Labels {
		if l.Name == name {
			return l, true
		}
	}
	return nil, false
}

// DeclareLabel records that name is defined at the current end of sec's
// item list, matching objSecDeclareLabel's "attach label to the next
// item appended" contract — it fails if the label is already declared
// anywhere in the object, matching object.c's duplicate-label rejection.
func (o *Object) DeclareLabel(sec *Section, name string) (*Label, error) {
	if _, ok := o.Label(name); ok {
		return nil, errDuplicateLabel(name)
	}
	l := &Label{Name: name, Section: sec.ID, Offset: sec.Size()}
	sec.Labels = append(sec.Labels, l)
	return l, nil
}

// MaterializeAddresses assigns absolute addresses to every item and label
// once both sections' contents are final, matching
// objMaterializeAddresses/objMaterializeInstructions: .text is placed at
// base, .data immediately after it.
func (o *Object) MaterializeAddresses(base uint32) {
	o.Text.Start = base
	addr := base
	for i := range o.Text.Items {
		o.Text.Items[i].Address = addr
		addr += itemSize(o.Text.Items[i])
	}
	o.Data.Start = addr
	for i := range o.Data.Items {
		o.Data.Items[i].Address = addr
		addr += itemSize(o.Data.Items[i])
	}
	for _, l := range o.Text.Labels {
		l.Offset += o.Text.Start
	}
	for _, l := range o.Data.Labels {
		l.Offset += o.Data.Start
	}
}

func itemSize(item SectionItem) uint32 {
	if item.Class == ItemInstruction {
		return 4
	}
	return uint32(len(item.Data.Bytes))
}

type duplicateLabelError string

func (e duplicateLabelError) Error() string { return "asmfmt: duplicate label " + string(e) }

func errDuplicateLabel(name string) error { return duplicateLabelError(name) }
