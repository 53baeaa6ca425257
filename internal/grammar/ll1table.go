package grammar

import (
	"fmt"
	"strings"

	"github.com/dekarrin/ictogen/internal/icerrors"
	"github.com/dekarrin/ictogen/internal/util"
)

// LL1Table is a predictive parse table: for a nonterminal and a lookahead
// terminal (or EOFSymbol), it gives the single production to expand.
type LL1Table struct {
	g      *Grammar
	table  map[string]map[string]Production
}

// Get returns the production to use when parsing nonTerminal with lookahead
// terminal, and whether an entry exists.
func (t LL1Table) Get(nonTerminal, terminal string) (Production, bool) {
	row, ok := t.table[nonTerminal]
	if !ok {
		return nil, false
	}
	p, ok := row[terminal]
	return p, ok
}

// NonTerminals returns the nonterminals the table has rows for, in grammar
// order.
func (t LL1Table) NonTerminals() []string {
	return t.g.NonTerminals()
}

func (t LL1Table) String() string {
	var sb strings.Builder
	for _, nt := range t.NonTerminals() {
		row := t.table[nt]
		for _, term := range util.OrderedKeys(row) {
			fmt.Fprintf(&sb, "[%s, %s] = %s\n", nt, term, row[term].String())
		}
	}
	return sb.String()
}

// LLParseTable builds the LL(1) parse table for g. It first checks IsLL1 and
// returns a single build-time error enumerating every SELECT-set conflict
// found if the grammar is not LL(1) -- spec.md 4.4 step 7: "If any conflicts
// exist, compilation aborts with a build-time error listing every
// conflicting pair."
func (g *Grammar) LLParseTable() (LL1Table, error) {
	ok, conflicts := g.IsLL1()
	if !ok {
		var sb strings.Builder
		sb.WriteString("grammar is not LL(1):\n")
		for _, c := range conflicts {
			fmt.Fprintf(&sb, "  %s: productions %q and %q both select on %v\n",
				c.NonTerminal, c.ProductionA.String(), c.ProductionB.String(), util.Alphabetized(c.SharedSymbols))
		}
		return LL1Table{}, icerrors.Newf(icerrors.KindGrammar, "%s", strings.TrimRight(sb.String(), "\n"))
	}

	table := make(map[string]map[string]Production, len(g.rules))
	for _, r := range g.rules {
		row := make(map[string]Production)
		for _, p := range r.Productions {
			sel := g.SELECT(r.NonTerminal, p)
			for _, term := range sel.Elements() {
				row[term] = p
			}
		}
		table[r.NonTerminal] = row
	}

	return LL1Table{g: g, table: table}, nil
}

// Transform runs the complete spec.md 4.4 pipeline: indirect and immediate
// left recursion elimination, left factoring to a fixpoint, then the LL(1)
// conflict check. It returns the transformed grammar, any unreachability
// defects recorded along the way, and an error if the result is not LL(1).
func (g *Grammar) Transform() (*Grammar, []Defect, error) {
	noLeftRecursion, defects := g.RemoveLeftRecursion()
	factored := noLeftRecursion.LeftFactor()

	if _, err := factored.LLParseTable(); err != nil {
		return factored, defects, err
	}
	return factored, defects, nil
}
