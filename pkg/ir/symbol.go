package ir

// SymbolKind distinguishes a scalar integer from an integer array. Both are
// addressed through their backing Label; the distinction is purely semantic.
type SymbolKind uint8

const (
	SymInt SymbolKind = iota
	SymIntArray
)

// Symbol is a declared scalar or array variable, backed by a unique data
// segment label.
type Symbol struct {
	Name      string
	Kind      SymbolKind
	ArraySize int // > 0 only when Kind == SymIntArray
	Label     *Label
}

// SizeWords returns the number of 4-byte words the symbol occupies in the
// data segment.
func (s *Symbol) SizeWords() int {
	if s.Kind == SymIntArray {
		return s.ArraySize
	}
	return 1
}
