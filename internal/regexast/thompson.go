package regexast

import (
	"github.com/dekarrin/ictogen/internal/automaton"
)

// Rule is one lexical rule: a token type name and the pattern text that
// recognizes it. Order matters -- Rule[i]'s priority is i, and lower
// priority numbers win ties in the DFA (spec.md C1: "priority = position of
// the token rule in the input list; lower is stronger").
type Rule struct {
	TokenType string
	Pattern   string
}

// Build compiles rules into a single NFA: a fresh global start state with an
// epsilon edge to each rule's Thompson-constructed fragment, every fragment's
// accept state tagged with (TokenType, priority=index).
//
// This is the "combining rule" from spec.md C1: one NFA per token merged by
// epsilon transitions under a shared start, with priority-tagged accepts.
func Build(rules []Rule) (*automaton.NFA, error) {
	nfa := automaton.New()

	for i, rule := range rules {
		node, err := Parse(rule.Pattern)
		if err != nil {
			return nil, err
		}
		start, accept := build(node, nfa)
		nfa.AddTransition(nfa.Start, automaton.Epsilon, start)
		nfa.SetTag(accept, automaton.Tag{TokenType: rule.TokenType, Priority: i})
	}

	return nfa, nil
}

// build lays out node's Thompson fragment directly into nfa and returns its
// (start, accept) state pair. This follows the five-constructor recipe in
// spec.md 4.1 exactly; unlike the teacher's stubbed fragment-combinator
// functions (which built a standalone NFA per fragment and spliced it in via
// NFA.Join), fragments are built in place on the shared automaton since every
// state name here is already unique for the life of the build.
func build(n *Node, nfa *automaton.NFA) (start, accept string) {
	switch n.Kind {
	case KindLit:
		s := nfa.AddState(false)
		e := nfa.AddState(false)
		nfa.AddTransition(s, string(n.Char), e)
		return s, e

	case KindEps:
		s := nfa.AddState(false)
		e := nfa.AddState(false)
		nfa.AddTransition(s, automaton.Epsilon, e)
		return s, e

	case KindConcat:
		var firstStart, prevAccept string
		for i, child := range n.Children {
			cs, ce := build(child, nfa)
			if i == 0 {
				firstStart = cs
			} else {
				nfa.AddTransition(prevAccept, automaton.Epsilon, cs)
			}
			prevAccept = ce
		}
		return firstStart, prevAccept

	case KindAlt:
		s := nfa.AddState(false)
		e := nfa.AddState(false)
		for _, child := range n.Children {
			cs, ce := build(child, nfa)
			nfa.AddTransition(s, automaton.Epsilon, cs)
			nfa.AddTransition(ce, automaton.Epsilon, e)
		}
		return s, e

	case KindStar:
		s := nfa.AddState(false)
		e := nfa.AddState(false)
		cs, ce := build(n.Children[0], nfa)
		nfa.AddTransition(s, automaton.Epsilon, cs)
		nfa.AddTransition(s, automaton.Epsilon, e)
		nfa.AddTransition(ce, automaton.Epsilon, cs)
		nfa.AddTransition(ce, automaton.Epsilon, e)
		return s, e

	default:
		panic("unreachable regex AST kind")
	}
}
