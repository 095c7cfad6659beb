package ir

import "fmt"

// Program owns everything the back end operates on: the ordered
// instruction list, the symbol table, the label table, the virtual
// register counter and the pending-label slot.
type Program struct {
	Instructions []*Instruction
	symbols      map[string]*Symbol
	symbolOrder  []*Symbol
	labels       []*Label
	nextVReg     VReg
	nextLabelID  LabelID

	pendingLabel *Label // consumed by the next AddInstruction, per I3
}

// startLabelName is the name ACSE gives the program's entry label; every
// Program begins with it already reserved as a global label, matching
// newProgram's immediate creation of _start.
const startLabelName = "_start"

// NewProgram constructs an empty Program with its entry label already
// reserved, mirroring program.c's newProgram.
func NewProgram() *Program {
	p := &Program{
		symbols:  make(map[string]*Symbol),
		nextVReg: 1, // 0 is RegZero, never allocated to a temporary
	}
	start := p.CreateLabel()
	p.SetLabelName(start, startLabelName)
	start.Global = true
	p.AssignLabel(start)
	return p
}

// GetNewRegister allocates and returns a fresh virtual register, keeping
// invariant I1 (nextVReg always exceeds every used VReg).
func (p *Program) GetNewRegister() VReg {
	r := p.nextVReg
	p.nextVReg++
	return r
}

// CreateLabel reserves a new label id with no name and no pending
// attachment point. The label must later be attached via AssignLabel.
func (p *Program) CreateLabel() *Label {
	l := &Label{ID: p.nextLabelID}
	p.nextLabelID++
	p.labels = append(p.labels, l)
	return l
}

// setRawLabelName rewrites the name of every label record sharing l.ID,
// keeping aliases in sync (program.c's setRawLabelName).
func (p *Program) setRawLabelName(id LabelID, name string, global bool) {
	for _, other := range p.labels {
		if other.ID == id {
			other.Name = name
			other.Global = global
		}
	}
}

// SetLabelName sanitises name to [A-Za-z0-9_], then disambiguates it
// against every other label's name by appending _0, _1, ... until unique,
// matching program.c's setLabelName.
func (p *Program) SetLabelName(l *Label, name string) {
	clean := sanitizeLabelName(name)
	candidate := clean
	for suffix := 0; p.nameTaken(candidate, l.ID); suffix++ {
		candidate = fmt.Sprintf("%s_%d", clean, suffix)
	}
	p.setRawLabelName(l.ID, candidate, l.Global)
}

func (p *Program) nameTaken(name string, exceptID LabelID) bool {
	if name == "" {
		return false
	}
	for _, other := range p.labels {
		if other.ID != exceptID && other.Name == name {
			return true
		}
	}
	return false
}

// AssignLabel attaches l to the next instruction appended via
// AddInstruction. If another label is already pending, the two unify into
// aliases: the lower id wins, names merge (prefer whichever is named,
// otherwise the lower id's name), and Global flags OR together. Every
// existing record sharing either id is rewritten to match.
func (p *Program) AssignLabel(l *Label) {
	if p.pendingLabel == nil {
		p.pendingLabel = l
		return
	}
	existing := p.pendingLabel
	if existing.ID == l.ID {
		return
	}

	winner, loser := existing, l
	if loser.ID < winner.ID {
		winner, loser = loser, winner
	}

	name := winner.Name
	if name == "" {
		name = loser.Name
	}
	global := winner.Global || loser.Global

	keepID := winner.ID
	dropID := loser.ID
	p.setRawLabelName(keepID, name, global)

	for _, other := range p.labels {
		if other.ID == dropID {
			other.ID = keepID
			other.IsAlias = true
			other.Name = name
			other.Global = global
		}
	}
	p.pendingLabel = winner
	winner.Name = name
	winner.Global = global
}

// CreateSymbol declares a new scalar or array variable with a fresh
// backing label, matching program.c's createSymbol. Returns an error
// (front-end emitError territory) on a duplicate name or invalid array
// size rather than panicking, since this is reachable from untrusted
// front-end input.
func (p *Program) CreateSymbol(name string, kind SymbolKind, arraySize int) (*Symbol, error) {
	if _, exists := p.symbols[name]; exists {
		return nil, fmt.Errorf("duplicate symbol declaration: %q", name)
	}
	if kind == SymIntArray && arraySize <= 0 {
		return nil, fmt.Errorf("array %q must have a positive size, got %d", name, arraySize)
	}
	label := p.CreateLabel()
	p.SetLabelName(label, "l_"+name)
	sym := &Symbol{Name: name, Kind: kind, ArraySize: arraySize, Label: label}
	p.symbols[name] = sym
	p.symbolOrder = append(p.symbolOrder, sym)
	return sym, nil
}

// GetSymbol looks up a previously declared symbol by name.
func (p *Program) GetSymbol(name string) (*Symbol, bool) {
	s, ok := p.symbols[name]
	return s, ok
}

// Symbols returns the symbol table in declaration order.
func (p *Program) Symbols() []*Symbol { return p.symbolOrder }

// Labels returns every label record, including aliases, in creation order.
func (p *Program) Labels() []*Label { return p.labels }

// AddInstruction appends instr to the program, consuming any pending
// label (I3) and attaching it to instr.
func (p *Program) AddInstruction(instr *Instruction) *Instruction {
	if p.pendingLabel != nil {
		instr.Label = p.pendingLabel
		p.pendingLabel = nil
	}
	p.Instructions = append(p.Instructions, instr)
	return instr
}

// RemoveInstructionAt removes the instruction at index idx, migrating its
// label and comment to the following instruction so branch targets and
// annotations survive. If there is no following instruction, or it already
// carries a label, a NOP is synthesised to host the migrated label,
// matching program.c's removeInstructionAt.
func (p *Program) RemoveInstructionAt(idx int) {
	if idx < 0 || idx >= len(p.Instructions) {
		return
	}
	removed := p.Instructions[idx]
	rest := append(p.Instructions[:idx:idx], p.Instructions[idx+1:]...)

	if removed.Label == nil {
		p.Instructions = rest
		return
	}

	if idx < len(rest) {
		next := rest[idx]
		if next.Label == nil {
			next.Label = removed.Label
			if next.Comment == "" {
				next.Comment = removed.Comment
			}
			p.Instructions = rest
			return
		}
	}

	nop := &Instruction{Opcode: OpNOP, Label: removed.Label, Comment: removed.Comment}
	rest = append(rest[:idx:idx], append([]*Instruction{nop}, rest[idx:]...)...)
	p.Instructions = rest
}

// GenProgramEpilog anchors any pending label and ensures the program ends
// with an EXIT_0 syscall, matching program.c's genProgramEpilog.
func (p *Program) GenProgramEpilog() {
	needsExit := len(p.Instructions) == 0
	if !needsExit {
		last := p.Instructions[len(p.Instructions)-1]
		needsExit = last.Opcode != OpExit0
	}
	if p.pendingLabel != nil || needsExit {
		p.AddInstruction(&Instruction{Opcode: OpExit0})
	}
}
