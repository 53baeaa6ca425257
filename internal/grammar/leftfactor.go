package grammar

import "fmt"

const leftFactorTailTemplate = "%s_LF_TAIL_%d"

// LeftFactor returns a copy of g with left factoring applied to a fixpoint:
// repeatedly, for each nonterminal, productions sharing a first symbol are
// grouped, the longest prefix common to the whole group is factored out into
// a fresh nonterminal (named "<NonTerminal>_LF_TAIL_<k>" for a counter k
// shared across the whole grammar), and the fresh nonterminal is itself
// queued for further factoring. The process is bounded by twice the
// nonterminal count at the start of the pass (spec.md 4.4 step 3) so a
// pathological grammar cannot loop forever.
func (g *Grammar) LeftFactor() *Grammar {
	out := g.Copy()

	maxIter := 2 * len(out.rules)
	if maxIter == 0 {
		return out
	}

	worklist := append([]string(nil), out.NonTerminals()...)
	iter := 0
	for len(worklist) > 0 && iter < maxIter {
		nt := worklist[0]
		worklist = worklist[1:]
		iter++

		newTails := out.factorOne(nt)
		worklist = append(worklist, newTails...)
	}

	return out
}

// factorOne left-factors nt's productions one level, returning the names of
// any fresh tail nonterminals created so the caller can queue them for
// further factoring.
func (out *Grammar) factorOne(nt string) []string {
	idx, ok := out.index[nt]
	if !ok {
		return nil
	}
	prods := out.rules[idx].Productions

	groups := map[string][]Production{}
	for _, p := range prods {
		if p.IsEpsilon() {
			groups[""] = append(groups[""], p)
			continue
		}
		key := p[0]
		groups[key] = append(groups[key], p)
	}

	var rebuilt []Production
	var newTails []string

	// preserve original relative order: walk prods again, emitting each
	// group's rewritten form exactly once, the first time one of its
	// members is encountered.
	emitted := map[string]bool{}
	for _, p := range prods {
		key := ""
		if !p.IsEpsilon() {
			key = p[0]
		}
		if emitted[key] {
			continue
		}
		emitted[key] = true

		group := groups[key]
		if key == "" || len(group) < 2 {
			rebuilt = append(rebuilt, group...)
			continue
		}

		prefixLen := commonPrefixLen(group)
		if prefixLen == 0 {
			rebuilt = append(rebuilt, group...)
			continue
		}

		prefix := append(Production(nil), group[0][:prefixLen]...)
		tailName := fmt.Sprintf(leftFactorTailTemplate, nt, out.lfCounter)
		out.lfCounter++

		rebuilt = append(rebuilt, append(append(Production(nil), prefix...), tailName))

		for _, p := range group {
			rest := p[prefixLen:]
			out.AddRule(tailName, normalizeProduction(append(Production(nil), rest...)))
		}
		newTails = append(newTails, tailName)
	}

	out.rules[idx].Productions = rebuilt
	return newTails
}

// commonPrefixLen returns the length of the longest symbol sequence common
// to every production in group. Callers only invoke this on groups whose
// members already share the same first symbol, so the result is always >=
// 1.
func commonPrefixLen(group []Production) int {
	n := 1
	for {
		if len(group[0]) <= n {
			return n
		}
		sym := group[0][n]
		for _, p := range group[1:] {
			if len(p) <= n || p[n] != sym {
				return n
			}
		}
		n++
	}
}
