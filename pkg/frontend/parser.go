package frontend

import (
	"fmt"

	"github.com/lance-lang/lancec/pkg/diagnostics"
	"github.com/lance-lang/lancec/pkg/ir"
)

// Parser drives pkg/ir's Consumer API directly from LANCE source text: there
// is no intermediate AST, matching how a one-pass recursive-descent LANCE
// front end would call straight into genADD/genLW/createSymbol as it
// recognises each production. All LANCE variables are global (the data
// model has no notion of a stack frame), so declarations are only
// recognised before the first statement.
type Parser struct {
	file string
	lex  *lexer
	cur  token

	prog *ir.Program
	sink *diagnostics.Sink
}

// NewParser constructs a Parser ready to consume src, reporting diagnostics
// to sink and attributing them to file.
func NewParser(src, file string, sink *diagnostics.Sink) (*Parser, error) {
	p := &Parser{file: file, lex: newLexer(src), prog: ir.NewProgram(), sink: sink}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Parser) loc() diagnostics.Location {
	return diagnostics.Location{File: p.file, Line: p.cur.line}
}

func (p *Parser) advance() error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.cur = tok
	return nil
}

func (p *Parser) expect(k tokenKind) (token, error) {
	if p.cur.kind != k {
		return token{}, fmt.Errorf("%s:%d: expected %s, found %s", p.file, p.cur.line, tokenNames[k], p.cur)
	}
	tok := p.cur
	if err := p.advance(); err != nil {
		return token{}, err
	}
	return tok, nil
}

// Parse runs the whole program: declarations, then statements, then anchors
// the epilogue. Returns the populated Program; the caller still owns
// checking sink.HasErrors() before handing it to the back end, since a
// front-end error here is recoverable (parsing continues) rather than
// fatal.
func Parse(src, file string, sink *diagnostics.Sink) (*ir.Program, error) {
	p, err := NewParser(src, file, sink)
	if err != nil {
		return nil, err
	}
	if err := p.parseDeclarations(); err != nil {
		return nil, err
	}
	for p.cur.kind != tokEOF {
		if err := p.parseStatement(); err != nil {
			return nil, err
		}
	}
	p.prog.GenProgramEpilog()
	return p.prog, nil
}

func (p *Parser) parseDeclarations() error {
	for p.cur.kind == tokInt {
		if err := p.parseDeclaration(); err != nil {
			return err
		}
	}
	return nil
}

// parseDeclaration consumes "int" name ("[" size "]")? ("," name (...)?)* ";".
func (p *Parser) parseDeclaration() error {
	if _, err := p.expect(tokInt); err != nil {
		return err
	}
	for {
		loc := p.loc()
		nameTok, err := p.expect(tokIdent)
		if err != nil {
			return err
		}
		kind := ir.SymInt
		size := 0
		if p.cur.kind == tokLBracket {
			if err := p.advance(); err != nil {
				return err
			}
			sizeTok, err := p.expect(tokNumber)
			if err != nil {
				return err
			}
			if _, err := p.expect(tokRBracket); err != nil {
				return err
			}
			kind = ir.SymIntArray
			size = int(sizeTok.num)
		}
		if _, err := p.prog.CreateSymbol(nameTok.text, kind, size); err != nil {
			p.sink.Errorf(loc, "%s", err.Error())
		}
		if p.cur.kind != tokComma {
			break
		}
		if err := p.advance(); err != nil {
			return err
		}
	}
	_, err := p.expect(tokSemi)
	return err
}

func (p *Parser) parseStatement() error {
	switch p.cur.kind {
	case tokRead:
		return p.parseRead()
	case tokWrite:
		return p.parseWrite()
	case tokIf:
		return p.parseIf()
	case tokWhile:
		return p.parseWhile()
	case tokLBrace:
		return p.parseBlock()
	case tokIdent:
		return p.parseAssignment()
	default:
		return fmt.Errorf("%s:%d: unexpected token %s at start of statement", p.file, p.cur.line, p.cur)
	}
}

func (p *Parser) parseBlock() error {
	if _, err := p.expect(tokLBrace); err != nil {
		return err
	}
	for p.cur.kind != tokRBrace {
		if p.cur.kind == tokEOF {
			return fmt.Errorf("%s:%d: unterminated block", p.file, p.cur.line)
		}
		if err := p.parseStatement(); err != nil {
			return err
		}
	}
	_, err := p.expect(tokRBrace)
	return err
}

// parseRead consumes "read" name ";" and stores the read_int syscall's
// result directly into name's backing storage.
func (p *Parser) parseRead() error {
	loc := p.loc()
	if _, err := p.expect(tokRead); err != nil {
		return err
	}
	nameTok, err := p.expect(tokIdent)
	if err != nil {
		return err
	}
	if _, err := p.expect(tokSemi); err != nil {
		return err
	}

	sym, ok := p.prog.GetSymbol(nameTok.text)
	if !ok {
		p.sink.Errorf(loc, "undeclared variable %q", nameTok.text)
		return nil
	}
	rd := p.prog.GetNewRegister()
	p.prog.NewReadInt(rd)
	p.storeScalar(sym, rd)
	return nil
}

// parseWrite consumes "write" expr ";" and prints it via the print_int
// syscall.
func (p *Parser) parseWrite() error {
	if _, err := p.expect(tokWrite); err != nil {
		return err
	}
	v, err := p.parseExpr()
	if err != nil {
		return err
	}
	if _, err := p.expect(tokSemi); err != nil {
		return err
	}
	p.prog.NewPrintInt(p.materialize(v))
	return nil
}

// parseAssignment consumes name ("[" index "]")? "=" expr ";".
func (p *Parser) parseAssignment() error {
	loc := p.loc()
	nameTok, err := p.expect(tokIdent)
	if err != nil {
		return err
	}

	sym, ok := p.prog.GetSymbol(nameTok.text)
	if !ok {
		p.sink.Errorf(loc, "undeclared variable %q", nameTok.text)
	}

	var index *value
	if p.cur.kind == tokLBracket {
		if err := p.advance(); err != nil {
			return err
		}
		idx, err := p.parseExpr()
		if err != nil {
			return err
		}
		if _, err := p.expect(tokRBracket); err != nil {
			return err
		}
		index = &idx
	}

	if _, err := p.expect(tokAssign); err != nil {
		return err
	}
	rhs, err := p.parseExpr()
	if err != nil {
		return err
	}
	if _, err := p.expect(tokSemi); err != nil {
		return err
	}
	if sym == nil {
		return nil
	}

	if index == nil {
		p.storeScalar(sym, p.materialize(rhs))
		return nil
	}
	return p.storeIndexed(loc, sym, *index, rhs)
}

// parseIf consumes "if" "(" cond ")" block ("else" block)?, emitting an
// inverted branch around the then-block (and, if present, a jump past the
// else-block).
func (p *Parser) parseIf() error {
	if _, err := p.expect(tokIf); err != nil {
		return err
	}
	if _, err := p.expect(tokLParen); err != nil {
		return err
	}
	afterThen := p.prog.CreateLabel()
	if err := p.parseCondition(afterThen); err != nil {
		return err
	}
	if _, err := p.expect(tokRParen); err != nil {
		return err
	}
	if err := p.parseBlock(); err != nil {
		return err
	}

	if p.cur.kind != tokElse {
		p.prog.AssignLabel(afterThen)
		return nil
	}

	afterElse := p.prog.CreateLabel()
	p.prog.NewJ(afterElse)
	p.prog.AssignLabel(afterThen)
	if err := p.advance(); err != nil {
		return err
	}
	if err := p.parseBlock(); err != nil {
		return err
	}
	p.prog.AssignLabel(afterElse)
	return nil
}

// parseWhile consumes "while" "(" cond ")" block, looping back to
// re-evaluate the condition after the body runs.
func (p *Parser) parseWhile() error {
	if _, err := p.expect(tokWhile); err != nil {
		return err
	}
	loopStart := p.prog.CreateLabel()
	p.prog.AssignLabel(loopStart)

	if _, err := p.expect(tokLParen); err != nil {
		return err
	}
	afterLoop := p.prog.CreateLabel()
	if err := p.parseCondition(afterLoop); err != nil {
		return err
	}
	if _, err := p.expect(tokRParen); err != nil {
		return err
	}
	if err := p.parseBlock(); err != nil {
		return err
	}
	p.prog.NewJ(loopStart)
	p.prog.AssignLabel(afterLoop)
	return nil
}

// parseCondition consumes expr relop expr and emits the branch that skips
// to onFalse when the condition does not hold (the inverse of the relation
// actually written), since the back end only has "branch if true" opcodes.
func (p *Parser) parseCondition(onFalse *ir.Label) error {
	lhs, err := p.parseExpr()
	if err != nil {
		return err
	}
	rel, err := p.expectRelop()
	if err != nil {
		return err
	}
	rhs, err := p.parseExpr()
	if err != nil {
		return err
	}

	r1 := p.materialize(lhs)
	r2 := p.materialize(rhs)
	switch rel.kind {
	case tokEq:
		p.prog.NewBNE(r1, r2, onFalse)
	case tokNotEq:
		p.prog.NewBEQ(r1, r2, onFalse)
	case tokLt:
		p.prog.NewBGE(r1, r2, onFalse)
	case tokLtEq:
		p.prog.NewBGT(r1, r2, onFalse)
	case tokGt:
		p.prog.NewBLE(r1, r2, onFalse)
	case tokGtEq:
		p.prog.NewBLT(r1, r2, onFalse)
	}
	return nil
}

func (p *Parser) expectRelop() (token, error) {
	switch p.cur.kind {
	case tokEq, tokNotEq, tokLt, tokLtEq, tokGt, tokGtEq:
		tok := p.cur
		return tok, p.advance()
	default:
		return token{}, fmt.Errorf("%s:%d: expected a comparison operator, found %s", p.file, p.cur.line, p.cur)
	}
}

// storeScalar writes val into sym's backing global, matching how genSW_G
// needs a scratch vreg for its address computation.
func (p *Parser) storeScalar(sym *ir.Symbol, val ir.VReg) {
	scratch := p.prog.GetNewRegister()
	p.prog.NewSWG(val, scratch, sym.Label)
}

// loadScalar reads sym's backing global into a fresh register.
func (p *Parser) loadScalar(sym *ir.Symbol) ir.VReg {
	rd := p.prog.GetNewRegister()
	p.prog.NewLWG(rd, sym.Label)
	return rd
}

// storeIndexed writes rhs into sym[index]. A constant index is folded
// straight into the word-store's byte offset (base + index*4); a dynamic
// index is scaled at runtime with a shift-by-2 and added to the array's
// base address.
func (p *Parser) storeIndexed(loc diagnostics.Location, sym *ir.Symbol, index, rhs value) error {
	if sym.Kind != ir.SymIntArray {
		p.sink.Errorf(loc, "%q is not an array", sym.Name)
	}
	if index.isConst {
		base := p.prog.GetNewRegister()
		p.prog.NewLA(base, sym.Label)
		val := p.materialize(rhs)
		p.prog.NewSW(base, val, index.imm*4)
		return nil
	}
	addr := p.indexAddress(sym, index)
	val := p.materialize(rhs)
	p.prog.NewSW(addr, val, 0)
	return nil
}

// loadIndexed is storeIndexed's mirror for reads of sym[index].
func (p *Parser) loadIndexed(loc diagnostics.Location, sym *ir.Symbol, index value) ir.VReg {
	if sym.Kind != ir.SymIntArray {
		p.sink.Errorf(loc, "%q is not an array", sym.Name)
	}
	rd := p.prog.GetNewRegister()
	if index.isConst {
		base := p.prog.GetNewRegister()
		p.prog.NewLA(base, sym.Label)
		p.prog.NewLW(rd, base, index.imm*4)
		return rd
	}
	addr := p.indexAddress(sym, index)
	p.prog.NewLW(rd, addr, 0)
	return rd
}

// indexAddress computes &sym[index] for a dynamic index: base + (index<<2).
func (p *Parser) indexAddress(sym *ir.Symbol, index value) ir.VReg {
	base := p.prog.GetNewRegister()
	p.prog.NewLA(base, sym.Label)
	idxReg := p.materialize(index)
	offset := p.prog.GetNewRegister()
	p.prog.NewSLLI(offset, idxReg, 2)
	addr := p.prog.GetNewRegister()
	p.prog.NewADD(addr, base, offset)
	return addr
}
