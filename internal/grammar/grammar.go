// Package grammar implements the grammar transformer (spec.md C4): left
// recursion elimination, left factoring, FIRST/FOLLOW/SELECT set
// computation, and the LL(1) conflict check that either produces a parse
// table or aborts the build.
//
// The Grammar/Rule/Production API shape here (AddTerm/AddRule, Validate,
// RemoveLeftRecursion, FIRST/FOLLOW, IsLL1, LLParseTable) is grounded on
// github.com/dekarrin/tunaq's internal/ictiobus/grammar package as exercised
// by its grammar_test.go -- the package's own grammar.go implementation was
// not present in the retrieved source, so this is an original implementation
// built to match that test file's documented input/output pairs and to
// satisfy spec.md 4.4's algorithm description directly.
package grammar

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dekarrin/ictogen/internal/icerrors"
	"github.com/dekarrin/ictogen/internal/util"
)

// EpsilonSymbol is the sentinel symbol representing the empty string inside a
// Production.
const EpsilonSymbol = "ε"

// EOFSymbol is the reserved terminal marking end of input in FOLLOW sets and
// the LL(1) parse table, matching the scanner's lexgen.EOF token type.
const EOFSymbol = "EOF"

// Production is an ordered sequence of symbols (terminal token-type names or
// nonterminal names) making up one alternative of a rule. An epsilon
// alternative is stored as Production{EpsilonSymbol}, never as a nil or
// empty slice, so table lookups and equality checks never have to special
// case length zero.
type Production []string

// Epsilon is the canonical epsilon production value.
var Epsilon = Production{EpsilonSymbol}

// IsEpsilon reports whether p is the epsilon production.
func (p Production) IsEpsilon() bool {
	return len(p) == 1 && p[0] == EpsilonSymbol
}

// Equal reports whether p and o contain the same symbols in the same order.
func (p Production) Equal(o Production) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if p[i] != o[i] {
			return false
		}
	}
	return true
}

func (p Production) String() string {
	if len(p) == 0 {
		return EpsilonSymbol
	}
	return strings.Join(p, " ")
}

// normalizeProduction converts a caller-supplied empty production into the
// canonical Epsilon value.
func normalizeProduction(p Production) Production {
	if len(p) == 0 {
		return Epsilon
	}
	return p
}

// Rule is one nonterminal's complete set of alternatives, in the order they
// were added -- order matters for predictive parsing (it is the order
// candidate productions are tried against SELECT sets) and for left
// recursion elimination (it fixes the nonterminal ordering Paull's algorithm
// runs over).
type Rule struct {
	NonTerminal string
	Productions []Production
}

// Grammar is a context-free grammar: a terminal vocabulary and an ordered
// list of rules. The zero value is an empty grammar ready to use.
type Grammar struct {
	terminals map[string]bool
	rules     []Rule
	index     map[string]int // nonterminal -> index into rules
	start     string

	// lfCounter is the global left-factoring tail counter (spec.md 4.4 step
	// 3: "k is a global counter"). It must survive across repeated calls to
	// LeftFactor on copies derived from the same original Grammar, so it
	// lives on the struct and is carried by Copy.
	lfCounter int
}

// New returns an empty grammar.
func New() *Grammar {
	return &Grammar{terminals: map[string]bool{}, index: map[string]int{}}
}

// AddTerm registers tokenType as part of the terminal vocabulary.
func (g *Grammar) AddTerm(tokenType string) {
	if g.terminals == nil {
		g.terminals = map[string]bool{}
	}
	g.terminals[tokenType] = true
}

// AddRule appends one alternative to nonTerminal's rule, creating the rule
// (and, if none has been set yet, the start symbol) if this is the first
// alternative seen for it.
func (g *Grammar) AddRule(nonTerminal string, prod Production) {
	if g.index == nil {
		g.index = map[string]int{}
	}
	prod = normalizeProduction(prod)

	if idx, ok := g.index[nonTerminal]; ok {
		g.rules[idx].Productions = append(g.rules[idx].Productions, prod)
		return
	}

	g.index[nonTerminal] = len(g.rules)
	g.rules = append(g.rules, Rule{NonTerminal: nonTerminal, Productions: []Production{prod}})
	if g.start == "" {
		g.start = nonTerminal
	}
}

// SetStartSymbol overrides the inferred start symbol (the first nonterminal
// added). spec.md 6: a grammar-rule file's start symbol is the first
// nonterminal defined unless one named Program/program/S/Start/start exists.
func (g *Grammar) SetStartSymbol(nt string) {
	g.start = nt
}

// StartSymbol returns the grammar's start symbol.
func (g *Grammar) StartSymbol() string {
	return g.start
}

// IsTerminal reports whether sym is part of the declared terminal
// vocabulary.
func (g *Grammar) IsTerminal(sym string) bool {
	return g.terminals[sym]
}

// IsNonTerminal reports whether sym has a rule.
func (g *Grammar) IsNonTerminal(sym string) bool {
	_, ok := g.index[sym]
	return ok
}

// Rule returns the rule for nonTerminal and whether it exists.
func (g *Grammar) Rule(nonTerminal string) (Rule, bool) {
	idx, ok := g.index[nonTerminal]
	if !ok {
		return Rule{}, false
	}
	return g.rules[idx], true
}

// NonTerminals returns every nonterminal, in the order its rule was first
// added.
func (g *Grammar) NonTerminals() []string {
	names := make([]string, len(g.rules))
	for i, r := range g.rules {
		names[i] = r.NonTerminal
	}
	return names
}

// Terminals returns the declared terminal vocabulary, alphabetized.
func (g *Grammar) Terminals() []string {
	return util.OrderedKeys(g.terminals)
}

// Copy returns a deep copy of g.
func (g *Grammar) Copy() *Grammar {
	cp := &Grammar{
		terminals: make(map[string]bool, len(g.terminals)),
		index:     make(map[string]int, len(g.index)),
		start:     g.start,
		lfCounter: g.lfCounter,
	}
	for k, v := range g.terminals {
		cp.terminals[k] = v
	}
	for k, v := range g.index {
		cp.index[k] = v
	}
	cp.rules = make([]Rule, len(g.rules))
	for i, r := range g.rules {
		prods := make([]Production, len(r.Productions))
		for j, p := range r.Productions {
			prodCopy := make(Production, len(p))
			copy(prodCopy, p)
			prods[j] = prodCopy
		}
		cp.rules[i] = Rule{NonTerminal: r.NonTerminal, Productions: prods}
	}
	return cp
}

// Validate checks that the grammar is minimally well-formed: it has at least
// one terminal, at least one rule, a start symbol, and every symbol
// mentioned in a production is either a declared terminal, EOFSymbol, the
// epsilon sentinel, or a nonterminal with its own rule.
func (g *Grammar) Validate() error {
	if len(g.terminals) == 0 {
		return icerrors.Newf(icerrors.KindGrammar, "grammar declares no terminals")
	}
	if len(g.rules) == 0 {
		return icerrors.Newf(icerrors.KindGrammar, "grammar has no rules")
	}
	if g.start == "" {
		return icerrors.Newf(icerrors.KindGrammar, "grammar has no start symbol")
	}
	if !g.IsNonTerminal(g.start) {
		return icerrors.Newf(icerrors.KindGrammar, "start symbol %q has no rule", g.start)
	}

	for _, r := range g.rules {
		for _, p := range r.Productions {
			if p.IsEpsilon() {
				continue
			}
			for _, sym := range p {
				if sym == EOFSymbol {
					continue
				}
				if g.IsTerminal(sym) || g.IsNonTerminal(sym) {
					continue
				}
				return icerrors.Newf(icerrors.KindGrammar,
					"rule %q references undeclared symbol %q", r.NonTerminal, sym)
			}
		}
	}
	return nil
}

func (g *Grammar) String() string {
	var sb strings.Builder
	for _, r := range g.rules {
		fmt.Fprintf(&sb, "%s ->", r.NonTerminal)
		for i, p := range r.Productions {
			if i > 0 {
				sb.WriteString(" |")
			}
			fmt.Fprintf(&sb, " %s", p.String())
		}
		sb.WriteRune('\n')
	}
	return sb.String()
}

// sortedNonTerminalSet is a small helper used by several transform passes
// that need a deterministic iteration order over a set of nonterminal names.
func sortedNonTerminalSet(names []string) []string {
	out := append([]string(nil), names...)
	sort.Strings(out)
	return out
}
