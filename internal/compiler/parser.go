package compiler

import (
	"fmt"
	"strconv"

	"github.com/chrlang/chr/internal/model"
)

// ParseError is a syntax error with its source position.
type ParseError struct {
	Pos     model.Position
	Message string
}

func (e ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Message)
}

// Parser is a recursive-descent, precedence-climbing parser over the CHR
// surface grammar:
//
//	program   := "class" IDENT "." "constraints" sigList "." rule*
//	sigList   := sig ("," sig)*
//	sig       := IDENT "/" INT
//	rule      := [IDENT "@"] head ("<=>" | "==>") [guard "|"] body "."
//	           | head "\" head "<=>" [guard "|"] body "."
//	head      := atom ("," atom)*
//	atom      := IDENT "(" [term ("," term)*] ")"  |  IDENT
//	guard     := term ("," term)*
//	body      := "true" | term ("," term)*
//
// Terms use the fixed precedence table in precedenceOf; functor-call
// syntax and list/tuple/dict literals are parsed as primaries.
type Parser struct {
	toks     []Token
	pos      int
	filename string
	errors   []ParseError

	ruleCounter int
}

// NewParser builds a parser over an already-tokenized source.
func NewParser(toks []Token, filename string) *Parser {
	return &Parser{toks: toks, filename: filename}
}

// ParseSource lexes and parses source in one step.
func ParseSource(source, filename string) (*model.Program, []error) {
	lx := NewLexer(source, filename)
	toks, lexErrs := lx.Tokenize()
	p := NewParser(toks, filename)
	prog := p.ParseProgram()
	var errs []error
	for _, e := range lexErrs {
		errs = append(errs, e)
	}
	for _, e := range p.errors {
		errs = append(errs, e)
	}
	return prog, errs
}

func (p *Parser) cur() Token  { return p.toks[p.pos] }
func (p *Parser) prev() Token { return p.toks[p.pos-1] }

func (p *Parser) check(k TokenKind) bool { return p.cur().Kind == k }

func (p *Parser) advance() Token {
	if !p.check(TkEOF) {
		p.pos++
	}
	return p.prev()
}

func (p *Parser) matchKind(k TokenKind) bool {
	if p.check(k) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expect(k TokenKind, what string) Token {
	if p.check(k) {
		return p.advance()
	}
	p.errorf("expected %s, found %q", what, p.cur().Text)
	return p.cur()
}

func (p *Parser) errorf(format string, args ...any) {
	p.errors = append(p.errors, ParseError{Pos: p.cur().Position, Message: fmt.Sprintf(format, args...)})
}

// synchronize discards tokens up to and including the next ".", so one
// malformed rule does not cascade into spurious errors for the rest of
// the file.
func (p *Parser) synchronize() {
	for !p.check(TkEOF) {
		if p.check(TkDot) {
			p.advance()
			return
		}
		p.advance()
	}
}

// ParseProgram parses a whole CHR source file.
func (p *Parser) ParseProgram() *model.Program {
	prog := &model.Program{Position: p.cur().Position}

	p.expect(TkClass, "'class'")
	name := p.expect(TkIdentifier, "class name")
	prog.ClassName = name.Text
	p.expect(TkDot, "'.' after class declaration")

	p.expect(TkConstraints, "'constraints'")
	prog.Constraints = p.parseSignatureList()
	p.expect(TkDot, "'.' after constraints declaration")

	for !p.check(TkEOF) {
		r := p.parseRule()
		if r != nil {
			prog.Rules = append(prog.Rules, r)
		}
	}
	return prog
}

func (p *Parser) parseSignatureList() []model.Signature {
	var sigs []model.Signature
	sigs = append(sigs, p.parseSignature())
	for p.matchKind(TkComma) {
		sigs = append(sigs, p.parseSignature())
	}
	return sigs
}

func (p *Parser) parseSignature() model.Signature {
	name := p.expect(TkIdentifier, "constraint symbol")
	p.expect(TkSlashArrow, "'/'")
	arityTok := p.expect(TkIntLit, "arity")
	arity, _ := strconv.Atoi(arityTok.Text)
	return model.Signature{Symbol: name.Text, Arity: arity}
}

func (p *Parser) parseRule() *model.Rule {
	start := p.cur().Position
	name := ""
	// name @ head ...  — distinguished by lookahead past the comma-separated
	// head for an '@' before any of <=>, \, ==>.
	if p.check(TkIdentifier) && p.peekIsRuleName() {
		name = p.advance().Text
		p.expect(TkAt, "'@'")
	}

	firstHead := p.parseHead()

	var kept, removed []*model.Functor
	switch {
	case p.matchKind(TkSlashArrow):
		kept = firstHead
		removed = p.parseHead()
		p.expect(TkSimpArrow, "'<=>'")
	case p.matchKind(TkSimpArrow):
		removed = firstHead
	case p.matchKind(TkPropArrow):
		kept = firstHead
	default:
		p.errorf("expected '<=>', '==>', or '\\' in rule")
		p.synchronize()
		return nil
	}

	var guard []model.Term
	body := []model.Term{}
	terms := p.parseTermList()
	if p.matchKind(TkPipe) {
		guard = terms
		body = p.parseBody()
	} else {
		body = p.bodyFromTerms(terms)
	}
	p.expect(TkDot, "'.' to terminate rule")

	if name == "" {
		name = fmt.Sprintf("rule_%d", p.ruleCounter)
		p.ruleCounter++
	}

	return &model.Rule{
		Name:     name,
		Kept:     kept,
		Removed:  removed,
		Guard:    guard,
		Body:     body,
		Position: start,
	}
}

// bodyFromTerms drops a lone `true` literal body down to the empty body.
func (p *Parser) bodyFromTerms(terms []model.Term) []model.Term {
	if len(terms) == 1 {
		if b, ok := terms[0].(*model.BoolConst); ok && b.Value {
			return nil
		}
	}
	return terms
}

func (p *Parser) parseBody() []model.Term {
	if p.check(TkTrue) {
		p.advance()
		return nil
	}
	return p.parseTermList()
}

// peekIsRuleName scans ahead for "@" terminating a bare identifier that
// is not itself a functor call, i.e. `name @`.
func (p *Parser) peekIsRuleName() bool {
	return p.pos+1 < len(p.toks) && p.toks[p.pos+1].Kind == TkAt
}

func (p *Parser) parseHead() []*model.Functor {
	var atoms []*model.Functor
	atoms = append(atoms, p.parseAtom())
	for p.matchKind(TkComma) {
		atoms = append(atoms, p.parseAtom())
	}
	return atoms
}

func (p *Parser) parseAtom() *model.Functor {
	pos := p.cur().Position
	name := p.expect(TkIdentifier, "constraint symbol")
	f := &model.Functor{Symbol: name.Text, Position: pos}
	if p.matchKind(TkLParen) {
		if !p.check(TkRParen) {
			f.Args = p.parseTermList()
		}
		p.expect(TkRParen, "')'")
	}
	return f
}

func (p *Parser) parseTermList() []model.Term {
	var terms []model.Term
	terms = append(terms, p.parseTerm())
	for p.matchKind(TkComma) {
		terms = append(terms, p.parseTerm())
	}
	return terms
}

// precedence table, lowest to highest binding — per spec.md §4.1's
// tight-to-loose list read in reverse: `=` (unification) binds loosest of
// all, looser even than `and`/`or`; `and` and `or` share a single tier
// (the spec lists them together as one combined tier, not a further
// sub-hierarchy with `and` binding tighter), so `$A or $B and $C` parses
// left-associatively as `($A or $B) and $C`, same as `$A or $B or $C`
// would; `==`/`!=`/`<=`/`<`/`>=`/`>` likewise share one precedence tier.
const (
	precNone = iota
	precUnify          // =
	precAndOr          // and, or
	precComparison     // == != <= < >= >
	precAdditive       // + -
	precMultiplicative // * %  (a lone '/' lexes as TkSlashArrow and is not a binary operator)
)

func precedenceOf(k TokenKind) int {
	switch k {
	case TkEq:
		return precUnify
	case TkOr, TkAnd:
		return precAndOr
	case TkEqEq, TkNotEq, TkLe, TkLt, TkGe, TkGt:
		return precComparison
	case TkPlus, TkMinus:
		return precAdditive
	case TkStar, TkPercent:
		return precMultiplicative
	default:
		return precNone
	}
}

func symbolOf(k TokenKind, text string) string {
	switch k {
	case TkOr:
		return "or"
	case TkAnd:
		return "and"
	case TkEqEq:
		return "=="
	case TkNotEq:
		return "!="
	case TkEq:
		return "="
	case TkLe:
		return "<="
	case TkLt:
		return "<"
	case TkGe:
		return ">="
	case TkGt:
		return ">"
	case TkPlus:
		return "+"
	case TkMinus:
		return "-"
	case TkStar:
		return "*"
	case TkPercent:
		return "%"
	default:
		return text
	}
}

// parseTerm parses one comma-delimited term via precedence climbing.
func (p *Parser) parseTerm() model.Term {
	return p.parseBinary(precUnify)
}

func (p *Parser) parseBinary(minPrec int) model.Term {
	lhs := p.parseUnary()
	for {
		prec := precedenceOf(p.cur().Kind)
		if prec == precNone || prec < minPrec {
			return lhs
		}
		opTok := p.advance()
		rhs := p.parseBinary(prec + 1)
		lhs = &model.Functor{
			Symbol:   symbolOf(opTok.Kind, opTok.Text),
			Args:     []model.Term{lhs, rhs},
			Position: opTok.Position,
		}
	}
}

func (p *Parser) parseUnary() model.Term {
	if p.check(TkMinus) {
		tok := p.advance()
		operand := p.parseUnary()
		return &model.Functor{Symbol: "-", Args: []model.Term{operand}, Position: tok.Position}
	}
	if p.check(TkNot) {
		tok := p.advance()
		operand := p.parseUnary()
		return &model.Functor{Symbol: "not", Args: []model.Term{operand}, Position: tok.Position}
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() model.Term {
	tok := p.cur()
	switch tok.Kind {
	case TkVariable:
		p.advance()
		return &model.Variable{Name: tok.Text, Position: tok.Position}
	case TkIntLit:
		p.advance()
		v, _ := strconv.ParseInt(tok.Text, 10, 64)
		return &model.IntConst{Value: v, Position: tok.Position}
	case TkFloatLit:
		p.advance()
		v, _ := strconv.ParseFloat(tok.Text, 64)
		return &model.FloatConst{Value: v, Position: tok.Position}
	case TkStringLit:
		p.advance()
		return &model.StringConst{Value: tok.Text, Position: tok.Position}
	case TkTrue:
		p.advance()
		return &model.BoolConst{Value: true, Position: tok.Position}
	case TkFalse:
		p.advance()
		return &model.BoolConst{Value: false, Position: tok.Position}
	case TkLParen:
		p.advance()
		items := p.parseTermListUntil(TkRParen)
		p.expect(TkRParen, "')'")
		// A single parenthesized term is grouping, not a one-element
		// tuple (§4.1: "single parens are grouping"); only two-or-more
		// comma-separated terms form a TupleTerm.
		if len(items) == 1 {
			return items[0]
		}
		return &model.TupleTerm{Items: items, Position: tok.Position}
	case TkLBracket:
		p.advance()
		items := p.parseTermListUntil(TkRBracket)
		p.expect(TkRBracket, "']'")
		return &model.ListTerm{Items: items, Position: tok.Position}
	case TkLBrace:
		p.advance()
		return p.parseDictLiteral(tok.Position)
	case TkIdentifier, TkQuote:
		p.advance()
		f := &model.Functor{Symbol: tok.Text, Position: tok.Position}
		if p.matchKind(TkLParen) {
			if !p.check(TkRParen) {
				f.Args = p.parseTermList()
			}
			p.expect(TkRParen, "')'")
		}
		return f
	default:
		p.errorf("expected a term, found %q", tok.Text)
		p.advance()
		return &model.BoolConst{Value: false, Position: tok.Position}
	}
}

func (p *Parser) parseTermListUntil(closing TokenKind) []model.Term {
	var items []model.Term
	if p.check(closing) {
		return items
	}
	items = append(items, p.parseTerm())
	for p.matchKind(TkComma) {
		if p.check(closing) {
			break
		}
		items = append(items, p.parseTerm())
	}
	return items
}

func (p *Parser) parseDictLiteral(pos model.Position) model.Term {
	d := &model.DictTerm{Position: pos}
	if p.check(TkRBrace) {
		p.advance()
		return d
	}
	for {
		key := p.parseTerm()
		if !model.IsGround(key) {
			p.errors = append(p.errors, ParseError{Pos: key.Pos(), Message: "dict key must be ground"})
		}
		p.expect(TkColon, "':'")
		val := p.parseTerm()
		d.Keys = append(d.Keys, key)
		d.Values = append(d.Values, val)
		if !p.matchKind(TkComma) {
			break
		}
		if p.check(TkRBrace) {
			break
		}
	}
	p.expect(TkRBrace, "'}'")
	return d
}
