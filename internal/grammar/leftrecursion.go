package grammar

import "fmt"

// Defect records a grammar transformation that left a nonterminal
// unreachable rather than aborting the build -- spec.md 4.4 step 2: a
// nonterminal whose every alternative is left-recursive (no non-recursive
// alternative to seed expansion with) is left as-is and flagged, since the
// rest of the grammar may still be perfectly buildable.
type Defect struct {
	NonTerminal string
	Reason      string
}

func (d Defect) String() string {
	return fmt.Sprintf("%s: %s", d.NonTerminal, d.Reason)
}

// tailSuffix is the immediate-left-recursion renaming suffix (spec.md 4.4
// step 2's worked example renames A to "A" and "A-P").
const tailSuffix = "-P"

// RemoveLeftRecursion returns a copy of g with indirect left recursion
// eliminated by Paull's algorithm (ordered over NonTerminals(), substituting
// Ai -> Aj gamma productions with Aj's own alternatives only when Aj can
// reach Ai through a chain of first-symbols -- the reachability guard that
// keeps the substitution from rewriting productions that could never
// actually close a left-recursive cycle) followed by immediate left
// recursion elimination on each nonterminal in turn.
//
// Grounded on the Paull's-algorithm-plus-renaming description in spec.md 4.4
// steps 1-2; the teacher's retrieved source does not implement grammar
// transformation at all (grammar.go itself was missing from the pack), so
// this is an original implementation against the classic algorithm.
func (g *Grammar) RemoveLeftRecursion() (*Grammar, []Defect) {
	out := g.Copy()
	order := out.NonTerminals()
	var defects []Defect

	for i, Ai := range order {
		for j := 0; j < i; j++ {
			Aj := order[j]
			if !out.leftCornerReaches(Aj, Ai) {
				continue
			}
			out.substituteLeftCorner(Ai, Aj)
		}
		if d, ok := out.eliminateImmediate(Ai); ok {
			defects = append(defects, d)
		}
	}

	return out, defects
}

// leftCorners returns, for each nonterminal, the set of nonterminal symbols
// that appear as the first symbol of one of its productions.
func (g *Grammar) leftCorners() map[string][]string {
	out := make(map[string][]string, len(g.rules))
	for _, r := range g.rules {
		seen := map[string]bool{}
		for _, p := range r.Productions {
			if p.IsEpsilon() || len(p) == 0 {
				continue
			}
			first := p[0]
			if g.IsNonTerminal(first) && !seen[first] {
				seen[first] = true
				out[r.NonTerminal] = append(out[r.NonTerminal], first)
			}
		}
	}
	return out
}

// leftCornerReaches reports whether to is reachable from from by following
// zero or more left-corner edges (from's own productions' first symbols,
// and so on transitively). from reaches itself trivially only through an
// actual cycle, not by definition.
func (g *Grammar) leftCornerReaches(from, to string) bool {
	corners := g.leftCorners()
	visited := map[string]bool{}
	queue := append([]string(nil), corners[from]...)
	for len(queue) > 0 {
		nt := queue[0]
		queue = queue[1:]
		if nt == to {
			return true
		}
		if visited[nt] {
			continue
		}
		visited[nt] = true
		queue = append(queue, corners[nt]...)
	}
	return false
}

// substituteLeftCorner replaces every production of Ai that begins with Aj
// with one production per alternative of Aj, the Aj prefix swapped out for
// Aj's expansion (Paull's algorithm's core step).
func (g *Grammar) substituteLeftCorner(Ai, Aj string) {
	idxAi, ok := g.index[Ai]
	if !ok {
		return
	}
	idxAj, ok := g.index[Aj]
	if !ok {
		return
	}
	ajProds := g.rules[idxAj].Productions

	var rewritten []Production
	for _, p := range g.rules[idxAi].Productions {
		if len(p) > 0 && !p.IsEpsilon() && p[0] == Aj {
			gamma := p[1:]
			for _, beta := range ajProds {
				var combined Production
				if !beta.IsEpsilon() {
					combined = append(combined, beta...)
				}
				combined = append(combined, gamma...)
				rewritten = append(rewritten, normalizeProduction(combined))
			}
		} else {
			rewritten = append(rewritten, p)
		}
	}
	g.rules[idxAi].Productions = rewritten
}

// eliminateImmediate rewrites Ai -> Ai alpha1 | Ai alpha2 | ... | beta1 |
// beta2 | ... into:
//
//	Ai     -> beta1 Ai-P | beta2 Ai-P | ...
//	Ai-P   -> alpha1 Ai-P | alpha2 Ai-P | ... | ε
//
// If Ai has no non-recursive alternative at all, it is left unchanged and a
// Defect is reported: the nonterminal's recursive alternatives can never be
// seeded, so it is unreachable, but the rest of the grammar still builds.
func (g *Grammar) eliminateImmediate(Ai string) (Defect, bool) {
	idx, ok := g.index[Ai]
	if !ok {
		return Defect{}, false
	}

	var alphas, betas []Production
	for _, p := range g.rules[idx].Productions {
		if len(p) > 0 && !p.IsEpsilon() && p[0] == Ai {
			alphas = append(alphas, p[1:])
		} else {
			betas = append(betas, p)
		}
	}

	if len(alphas) == 0 {
		return Defect{}, false
	}
	if len(betas) == 0 {
		return Defect{NonTerminal: Ai, Reason: "every alternative is left-recursive; no base case to seed expansion"}, true
	}

	tailName := Ai + tailSuffix
	for g.IsNonTerminal(tailName) {
		tailName += tailSuffix
	}

	var newAiProds []Production
	for _, beta := range betas {
		var combined Production
		if !beta.IsEpsilon() {
			combined = append(combined, beta...)
		}
		combined = append(combined, tailName)
		newAiProds = append(newAiProds, combined)
	}
	g.rules[idx].Productions = newAiProds

	var tailProds []Production
	for _, alpha := range alphas {
		var combined Production
		combined = append(combined, alpha...)
		combined = append(combined, tailName)
		tailProds = append(tailProds, combined)
	}
	tailProds = append(tailProds, Epsilon)

	// insert immediately after Ai so that printed/iterated order keeps
	// related rules adjacent, matching the worked examples in spec.md.
	newRules := make([]Rule, 0, len(g.rules)+1)
	newRules = append(newRules, g.rules[:idx+1]...)
	newRules = append(newRules, Rule{NonTerminal: tailName, Productions: tailProds})
	newRules = append(newRules, g.rules[idx+1:]...)
	g.rules = newRules

	g.index = make(map[string]int, len(g.rules))
	for i, r := range g.rules {
		g.index[r.NonTerminal] = i
	}

	return Defect{}, false
}
