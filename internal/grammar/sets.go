package grammar

import "github.com/dekarrin/ictogen/internal/util"

// FIRST returns FIRST(sym): {sym} if sym is a terminal or EOFSymbol, the
// epsilon set if sym is the epsilon sentinel, or the fixpoint FIRST set of
// sym's rule if sym is a nonterminal.
func (g *Grammar) FIRST(sym string) util.StringSet {
	if sym == EpsilonSymbol {
		return util.StringSetOf([]string{EpsilonSymbol})
	}
	if g.IsTerminal(sym) || sym == EOFSymbol {
		return util.StringSetOf([]string{sym})
	}
	all := g.firstSets()
	return all[sym]
}

// FIRSTOfSequence returns FIRST(X1 X2 ... Xn) for a symbol sequence,
// following the standard rule: FIRST of the sequence's symbols are unioned
// in, stopping at the first symbol whose FIRST set does not contain epsilon;
// if every symbol's FIRST set contains epsilon (or the sequence is empty),
// epsilon is included in the result.
func (g *Grammar) FIRSTOfSequence(seq []string) util.StringSet {
	all := g.firstSets()
	return firstOfSequence(seq, all, g)
}

// firstSets computes FIRST(A) for every nonterminal A via iterative
// fixpoint (spec.md 4.4 step 4: "no recursion on the grammar data").
func (g *Grammar) firstSets() map[string]util.StringSet {
	sets := make(map[string]util.StringSet, len(g.rules))
	for _, r := range g.rules {
		sets[r.NonTerminal] = util.NewStringSet()
	}

	changed := true
	for changed {
		changed = false
		for _, r := range g.rules {
			for _, p := range r.Productions {
				var seq []string
				if !p.IsEpsilon() {
					seq = p
				}
				add := firstOfSequence(seq, sets, g)
				before := sets[r.NonTerminal].Len()
				sets[r.NonTerminal] = sets[r.NonTerminal].Union(add)
				if sets[r.NonTerminal].Len() != before {
					changed = true
				}
			}
		}
	}
	return sets
}

// firstOfSequence computes FIRST of a symbol sequence given already-computed
// (possibly partial, mid-fixpoint) nonterminal FIRST sets.
func firstOfSequence(seq []string, firstSets map[string]util.StringSet, g *Grammar) util.StringSet {
	result := util.NewStringSet()
	if len(seq) == 0 {
		result.Add(EpsilonSymbol)
		return result
	}

	for _, sym := range seq {
		var symFirst util.StringSet
		if g.IsTerminal(sym) || sym == EOFSymbol {
			symFirst = util.StringSetOf([]string{sym})
		} else {
			symFirst = firstSets[sym]
		}

		for _, t := range symFirst.Elements() {
			if t != EpsilonSymbol {
				result.Add(t)
			}
		}

		if !symFirst.Has(EpsilonSymbol) {
			return result
		}
	}

	// every symbol in seq could derive epsilon
	result.Add(EpsilonSymbol)
	return result
}

// FOLLOW returns FOLLOW(nt): the set of terminals (plus EOFSymbol) that can
// immediately follow nt in some derivation from the start symbol.
func (g *Grammar) FOLLOW(nt string) util.StringSet {
	return g.followSets()[nt]
}

func (g *Grammar) followSets() map[string]util.StringSet {
	first := g.firstSets()
	follow := make(map[string]util.StringSet, len(g.rules))
	for _, r := range g.rules {
		follow[r.NonTerminal] = util.NewStringSet()
	}
	if g.start != "" {
		follow[g.start] = util.StringSetOf([]string{EOFSymbol})
	}

	changed := true
	for changed {
		changed = false
		for _, r := range g.rules {
			for _, p := range r.Productions {
				if p.IsEpsilon() {
					continue
				}
				for i, sym := range p {
					if !g.IsNonTerminal(sym) {
						continue
					}
					before := follow[sym].Len()

					rest := p[i+1:]
					restFirst := firstOfSequence(rest, first, g)
					for _, t := range restFirst.Elements() {
						if t != EpsilonSymbol {
							follow[sym] = follow[sym].Union(util.StringSetOf([]string{t}))
						}
					}
					if len(rest) == 0 || restFirst.Has(EpsilonSymbol) {
						follow[sym] = follow[sym].Union(follow[r.NonTerminal])
					}

					if follow[sym].Len() != before {
						changed = true
					}
				}
			}
		}
	}
	return follow
}

// SELECT returns SELECT(nt -> prod): FIRST(prod) with epsilon replaced by
// FOLLOW(nt) when prod is (or can derive) epsilon.
func (g *Grammar) SELECT(nt string, prod Production) util.StringSet {
	first := g.firstSets()
	follow := g.followSets()

	var seq []string
	if !prod.IsEpsilon() {
		seq = prod
	}
	f := firstOfSequence(seq, first, g)

	result := util.NewStringSet()
	for _, t := range f.Elements() {
		if t != EpsilonSymbol {
			result.Add(t)
		}
	}
	if f.Has(EpsilonSymbol) {
		result = result.Union(follow[nt])
	}
	return result
}

// Conflict describes two alternatives of the same nonterminal whose SELECT
// sets are not disjoint, the reason an LL1Table cannot be built.
type Conflict struct {
	NonTerminal   string
	ProductionA   Production
	ProductionB   Production
	SharedSymbols []string
}

// IsLL1 reports whether every nonterminal's alternatives have pairwise
// disjoint SELECT sets, and returns every conflict found (spec.md 4.4 step
// 6).
func (g *Grammar) IsLL1() (bool, []Conflict) {
	var conflicts []Conflict
	for _, r := range g.rules {
		selects := make([]util.StringSet, len(r.Productions))
		for i, p := range r.Productions {
			selects[i] = g.SELECT(r.NonTerminal, p)
		}
		for i := 0; i < len(r.Productions); i++ {
			for j := i + 1; j < len(r.Productions); j++ {
				shared := selects[i].Intersection(selects[j])
				if shared.Len() > 0 {
					conflicts = append(conflicts, Conflict{
						NonTerminal:   r.NonTerminal,
						ProductionA:   r.Productions[i],
						ProductionB:   r.Productions[j],
						SharedSymbols: shared.Elements(),
					})
				}
			}
		}
	}
	return len(conflicts) == 0, conflicts
}
