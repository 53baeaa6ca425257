package parse

import (
	"fmt"
	"strings"

	"github.com/dekarrin/ictogen/internal/grammar"
	"github.com/dekarrin/ictogen/internal/icerrors"
	"github.com/dekarrin/ictogen/internal/lexgen"
	"github.com/dekarrin/ictogen/internal/symtab"
	"github.com/dekarrin/ictogen/internal/tac"
	"github.com/dekarrin/ictogen/internal/util"
)

// Parser runs one predictive parse-and-translate pass over a token stream.
// It is built fresh for every compile call -- spec.md 5: "each compile
// invocation owns its scanner state, parser state, symbol table, and emitter
// buffer."
type Parser struct {
	g      *grammar.Grammar
	table  grammar.LL1Table
	meta   Metadata
	tokens []lexgen.Token
	pos    int

	lines   []string
	symbols *symtab.Table
	emitter *tac.Emitter

	semanticErrs []error
}

// New returns a Parser ready to run over tokens against g/table, using
// source's text to render error snippets.
func New(g *grammar.Grammar, table grammar.LL1Table, meta Metadata, tokens []lexgen.Token, source string) *Parser {
	return &Parser{
		g:       g,
		table:   table,
		meta:    meta,
		tokens:  tokens,
		lines:   strings.Split(source, "\n"),
		symbols: symtab.New(),
		emitter: tac.New(),
	}
}

// Result is the outcome of a successful parse-and-translate pass.
type Result struct {
	TAC     string
	Symbols *symtab.Table
}

// Run parses the whole token stream against g's start symbol, requires EOF
// immediately afterward, and returns the emitted TAC. Semantic errors are
// accumulated during the parse and surfaced together at the end (spec.md
// §7: "Accumulated; aborts compile after parse finishes"); a lexical token
// stream is assumed already validated by internal/lexgen, so any failure
// here is syntactic or semantic.
func (p *Parser) Run() (Result, error) {
	_, err := p.parseSymbol(p.g.StartSymbol())
	if err != nil {
		return Result{}, err
	}

	if p.current().Type != lexgen.EOF {
		return Result{}, p.syntaxErrorf(nil, "expected end of input, found %s %q", p.current().Type, p.current().Lexeme)
	}

	if len(p.semanticErrs) > 0 {
		var sb strings.Builder
		for i, e := range p.semanticErrs {
			if i > 0 {
				sb.WriteString("\n")
			}
			sb.WriteString(icerrors.Diagnostic(e))
		}
		return Result{}, icerrors.New(icerrors.KindSemantic, sb.String(), sb.String())
	}

	return Result{TAC: p.emitter.Output(), Symbols: p.symbols}, nil
}

func (p *Parser) current() lexgen.Token {
	return p.tokens[p.pos]
}

func (p *Parser) lineText(line int) string {
	if line-1 >= 0 && line-1 < len(p.lines) {
		return p.lines[line-1]
	}
	return ""
}

func (p *Parser) syntaxErrorf(expected []string, format string, args ...any) error {
	tok := p.current()
	msg := fmt.Sprintf(format, args...)
	if len(expected) > 0 {
		msg = msg + "; expected one of: " + strings.Join(util.Alphabetized(expected), ", ")
	}
	return icerrors.AtPosition(icerrors.KindSyntax, tok.Line, tok.Column, p.lineText(tok.Line), msg)
}

// consumeTerminal matches and advances past a terminal of the given type,
// without running any semantic check (used for keyword/punctuation
// terminals and for identifiers consumed in declaration/assignment-target
// position, which are checked explicitly by their own reduce handler
// instead of the generic leaf path).
func (p *Parser) consumeTerminal(symType string) (lexgen.Token, error) {
	tok := p.current()
	if tok.Type != symType {
		return lexgen.Token{}, p.syntaxErrorf([]string{symType}, "unexpected token %s %q", tok.Type, tok.Lexeme)
	}
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok, nil
}

// parseSymbol parses one grammar symbol (terminal or nonterminal),
// performing its translation action for nonterminals.
func (p *Parser) parseSymbol(sym string) (*Node, error) {
	if p.g.IsTerminal(sym) || sym == grammar.EOFSymbol {
		tok, err := p.consumeTerminal(sym)
		if err != nil {
			return nil, err
		}
		node := &Node{Kind: sym, Token: &tok, Synthesized: tok.Lexeme}
		if isIDLeaf(sym) {
			if semErr := p.symbols.CheckUse(tok.Lexeme, tok.Line, tok.Column, p.lineText(tok.Line), p.meta.RequireExplicitDeclaration); semErr != nil {
				p.semanticErrs = append(p.semanticErrs, semErr)
			}
		}
		return node, nil
	}

	lookahead := p.current().Type
	prod, ok := p.table.Get(sym, lookahead)
	if !ok {
		return nil, p.syntaxErrorf(p.expectedTerminals(sym), "unexpected token %s %q while parsing %s", p.current().Type, p.current().Lexeme, sym)
	}

	return p.reduce(sym, prod)
}

// expectedTerminals lists the terminals (and EOF) that would have selected
// some alternative of nt, for the syntax-error diagnostic.
func (p *Parser) expectedTerminals(nt string) []string {
	rule, ok := p.g.Rule(nt)
	if !ok {
		return nil
	}
	set := map[string]bool{}
	for _, prod := range rule.Productions {
		for _, term := range p.g.SELECT(nt, prod).Elements() {
			set[term] = true
		}
	}
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	return out
}

// reduce runs the translation action for nt's chosen production, parsing
// prod's symbols (in whatever order the shape requires -- most shapes parse
// strictly left to right, but WHILE/IF interleave label emission between
// children) and returning the completed node.
func (p *Parser) reduce(nt string, prod grammar.Production) (*Node, error) {
	switch classify(p.g, prod, p.meta.KeywordWrite) {
	case shapeEpsilon:
		return &Node{Kind: nt}, nil

	case shapeSinglePassthrough:
		child, err := p.parseSymbol(prod[0])
		if err != nil {
			return nil, err
		}
		return &Node{Kind: nt, Children: []*Node{child}, Synthesized: child.Synthesized}, nil

	case shapeTwoNonTermFold:
		return p.reduceTwoNonTermFold(nt, prod)

	case shapeParen:
		return p.reduceParen(nt, prod)

	case shapeAssign:
		return p.reduceAssign(nt, prod)

	case shapeWrite:
		return p.reduceWrite(nt, prod)

	case shapeRead:
		return p.reduceRead(nt, prod)

	case shapeWhile:
		return p.reduceWhile(nt, prod)

	case shapeIf:
		return p.reduceIf(nt, prod)

	case shapeBinaryOp:
		return p.reduceBinaryOp(nt, prod)

	case shapeDecl:
		return p.reduceDecl(nt, prod)

	case shapeListTail:
		return p.reduceListTail(nt, prod)

	default:
		return p.reduceGeneric(nt, prod)
	}
}

// reduceGeneric parses every symbol left to right with no special emission,
// for grammar helper productions outside the canonical shape catalogue
// (e.g. a bracketing nonterminal introduced purely by left-factoring). Its
// synthesized value is its last child's, a reasonable default for a
// passthrough wrapper.
func (p *Parser) reduceGeneric(nt string, prod grammar.Production) (*Node, error) {
	children := make([]*Node, 0, len(prod))
	var last string
	for _, sym := range prod {
		child, err := p.parseSymbol(sym)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
		last = child.Synthesized
	}
	return &Node{Kind: nt, Children: children, Synthesized: last}, nil
}

// reduceTwoNonTermFold handles "X -> A B": A is parsed for its synthesized
// value, which becomes B's inherited accumulator (spec.md 4.5.1's "t := A.v;
// fold B as tail").
func (p *Parser) reduceTwoNonTermFold(nt string, prod grammar.Production) (*Node, error) {
	a, err := p.parseSymbol(prod[0])
	if err != nil {
		return nil, err
	}
	b, err := p.parseTailFold(prod[1], a.Synthesized)
	if err != nil {
		return nil, err
	}
	return &Node{Kind: nt, Children: []*Node{a, b}, Synthesized: b.Synthesized}, nil
}

// parseTailFold parses nt with acc as an inherited left-fold accumulator
// (spec.md 4.5.1's Tail-recursion row): if nt's selected production is
// "op Operand nt" (a terminal operator, an operand nonterminal, then a
// recursive call to nt itself), a new temporary folds acc and Operand.v
// together and the fold continues; any other production (including ε) ends
// the fold, returning acc unchanged.
func (p *Parser) parseTailFold(nt string, acc string) (*Node, error) {
	lookahead := p.current().Type
	prod, ok := p.table.Get(nt, lookahead)
	if !ok {
		// No alternative selects on this lookahead. Per LL(1) construction
		// this can only happen when nt's own ε alternative's SELECT (i.e.
		// FOLLOW(nt)) contains the lookahead, which the table already
		// encodes -- so in practice this branch means lookahead is outside
		// FOLLOW(nt) too, a genuine syntax error.
		return nil, p.syntaxErrorf(p.expectedTerminals(nt), "unexpected token %s %q while parsing %s", p.current().Type, p.current().Lexeme, nt)
	}
	if prod.IsEpsilon() || len(prod) != 3 || !p.g.IsTerminal(prod[0]) || !p.g.IsNonTerminal(prod[1]) || prod[2] != nt {
		return &Node{Kind: nt, Synthesized: acc}, nil
	}

	opTok, err := p.consumeTerminal(prod[0])
	if err != nil {
		return nil, err
	}
	operand, err := p.parseSymbol(prod[1])
	if err != nil {
		return nil, err
	}

	t := p.emitter.NewTemp()
	p.emitter.Emitf("%s = %s %s %s", t, acc, opTok.Lexeme, operand.Synthesized)

	return p.parseTailFold(nt, t)
}

// reduceParen handles "X -> '(' E ')'": X.v := E.v.
func (p *Parser) reduceParen(nt string, prod grammar.Production) (*Node, error) {
	if _, err := p.consumeTerminal(prod[0]); err != nil {
		return nil, err
	}
	e, err := p.parseSymbol(prod[1])
	if err != nil {
		return nil, err
	}
	if _, err := p.consumeTerminal(prod[2]); err != nil {
		return nil, err
	}
	return &Node{Kind: nt, Children: []*Node{e}, Synthesized: e.Synthesized}, nil
}

// reduceAssign handles "X -> 'ID' 'ASSIGN' E ';'": the target is declared
// (or, under explicit-declaration mode, checked) and an assignment
// instruction is emitted.
func (p *Parser) reduceAssign(nt string, prod grammar.Production) (*Node, error) {
	idTok, err := p.consumeTerminal(prod[0])
	if err != nil {
		return nil, err
	}
	if _, err := p.consumeTerminal(prod[1]); err != nil {
		return nil, err
	}
	e, err := p.parseSymbol(prod[2])
	if err != nil {
		return nil, err
	}
	if _, err := p.consumeTerminal(prod[3]); err != nil {
		return nil, err
	}

	p.declareOrCheckTarget(idTok)
	p.emitter.Emitf("%s = %s", idTok.Lexeme, e.Synthesized)

	return &Node{Kind: nt, Synthesized: idTok.Lexeme}, nil
}

// declareOrCheckTarget resolves an assignment target per spec.md 4.6: under
// explicit-declaration mode the target must already be declared (an
// undeclared use is reported); otherwise assignment implicitly declares it.
func (p *Parser) declareOrCheckTarget(idTok lexgen.Token) {
	if p.meta.RequireExplicitDeclaration {
		if err := p.symbols.CheckUse(idTok.Lexeme, idTok.Line, idTok.Column, p.lineText(idTok.Line), true); err != nil {
			p.semanticErrs = append(p.semanticErrs, err)
		}
		return
	}
	p.symbols.Declare(idTok.Lexeme, idTok.Line)
}

// reduceWrite handles "X -> WRITE-keyword '(' E ')' ';'".
func (p *Parser) reduceWrite(nt string, prod grammar.Production) (*Node, error) {
	if _, err := p.consumeTerminal(prod[0]); err != nil {
		return nil, err
	}
	if _, err := p.consumeTerminal(prod[1]); err != nil {
		return nil, err
	}
	e, err := p.parseSymbol(prod[2])
	if err != nil {
		return nil, err
	}
	if _, err := p.consumeTerminal(prod[3]); err != nil {
		return nil, err
	}
	if _, err := p.consumeTerminal(prod[4]); err != nil {
		return nil, err
	}

	p.emitter.Emitf("param %s", e.Synthesized)
	p.emitter.Emit("call write, 1")

	return &Node{Kind: nt}, nil
}

// reduceRead handles "X -> 'READ' 'ID' ';'".
func (p *Parser) reduceRead(nt string, prod grammar.Production) (*Node, error) {
	if _, err := p.consumeTerminal(prod[0]); err != nil {
		return nil, err
	}
	idTok, err := p.consumeTerminal(prod[1])
	if err != nil {
		return nil, err
	}
	if _, err := p.consumeTerminal(prod[2]); err != nil {
		return nil, err
	}

	t := p.emitter.NewTemp()
	p.emitter.Emitf("%s = call read, 0", t)
	p.declareOrCheckTarget(idTok)
	p.emitter.Emitf("%s = %s", idTok.Lexeme, t)

	return &Node{Kind: nt}, nil
}

// reduceWhile handles "X -> 'WHILE' '(' C ')' S", interleaving label and
// branch emission around the condition and body reductions per spec.md
// 4.5.1's worked semantics.
func (p *Parser) reduceWhile(nt string, prod grammar.Production) (*Node, error) {
	if _, err := p.consumeTerminal(prod[0]); err != nil {
		return nil, err
	}
	if _, err := p.consumeTerminal(prod[1]); err != nil {
		return nil, err
	}

	loopLabel := p.emitter.NewLabel()
	exitLabel := p.emitter.NewLabel()
	p.emitter.EmitLabel(loopLabel)

	cond, err := p.parseSymbol(prod[2])
	if err != nil {
		return nil, err
	}

	if _, err := p.consumeTerminal(prod[3]); err != nil {
		return nil, err
	}

	notT := p.emitter.NewTemp()
	p.emitter.Emitf("%s = not %s", notT, cond.Synthesized)
	p.emitter.Emitf("if %s goto %s", notT, exitLabel)

	if _, err := p.parseSymbol(prod[4]); err != nil {
		return nil, err
	}

	p.emitter.Emitf("goto %s", loopLabel)
	p.emitter.EmitLabel(exitLabel)

	return &Node{Kind: nt}, nil
}

// reduceIf handles "X -> 'IF' '(' C ')' S".
func (p *Parser) reduceIf(nt string, prod grammar.Production) (*Node, error) {
	if _, err := p.consumeTerminal(prod[0]); err != nil {
		return nil, err
	}
	if _, err := p.consumeTerminal(prod[1]); err != nil {
		return nil, err
	}

	cond, err := p.parseSymbol(prod[2])
	if err != nil {
		return nil, err
	}

	if _, err := p.consumeTerminal(prod[3]); err != nil {
		return nil, err
	}

	exitLabel := p.emitter.NewLabel()
	notT := p.emitter.NewTemp()
	p.emitter.Emitf("%s = not %s", notT, cond.Synthesized)
	p.emitter.Emitf("if %s goto %s", notT, exitLabel)

	if _, err := p.parseSymbol(prod[4]); err != nil {
		return nil, err
	}

	p.emitter.EmitLabel(exitLabel)

	return &Node{Kind: nt}, nil
}

// reduceBinaryOp handles "X -> E op E": a single operator terminal between
// two nonterminal operands, identified purely by shape (spec.md 4.5.1: "the
// translator avoids naming specific operator token types in its rules").
func (p *Parser) reduceBinaryOp(nt string, prod grammar.Production) (*Node, error) {
	lhs, err := p.parseSymbol(prod[0])
	if err != nil {
		return nil, err
	}
	opTok, err := p.consumeTerminal(prod[1])
	if err != nil {
		return nil, err
	}
	rhs, err := p.parseSymbol(prod[2])
	if err != nil {
		return nil, err
	}

	t := p.emitter.NewTemp()
	p.emitter.Emitf("%s = %s %s %s", t, lhs.Synthesized, opTok.Lexeme, rhs.Synthesized)

	return &Node{Kind: nt, Children: []*Node{lhs, rhs}, Synthesized: t}, nil
}

// reduceDecl handles "X -> 'ID' IDListTail": register every name declared
// in this production (the leading ID plus whatever the tail collects) and
// emit no code.
func (p *Parser) reduceDecl(nt string, prod grammar.Production) (*Node, error) {
	idTok, err := p.consumeTerminal(prod[0])
	if err != nil {
		return nil, err
	}
	p.symbols.Declare(idTok.Lexeme, idTok.Line)

	if _, err := p.parseSymbol(prod[1]); err != nil {
		return nil, err
	}

	return &Node{Kind: nt, Synthesized: idTok.Lexeme}, nil
}

// reduceListTail handles "X -> sep 'ID' X" (and its ε base case, handled
// before classify ever reaches here), declaring each further name in the
// list.
func (p *Parser) reduceListTail(nt string, prod grammar.Production) (*Node, error) {
	if _, err := p.consumeTerminal(prod[0]); err != nil {
		return nil, err
	}
	idTok, err := p.consumeTerminal(prod[1])
	if err != nil {
		return nil, err
	}
	p.symbols.Declare(idTok.Lexeme, idTok.Line)

	if _, err := p.parseSymbol(prod[2]); err != nil {
		return nil, err
	}

	return &Node{Kind: nt, Synthesized: idTok.Lexeme}, nil
}
