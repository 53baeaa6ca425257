package automaton_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/ictogen/internal/automaton"
	"github.com/dekarrin/ictogen/internal/util"
)

// buildAB builds a tiny Thompson-style NFA by hand for "a(b|c)", tagged as
// token type "AB" at priority 0, to exercise MOVE/EpsilonClosure/ToDFA
// without going through internal/regexast.
func buildAB() *automaton.NFA {
	nfa := automaton.New()

	s0 := nfa.AddState(false) // after consuming 'a'
	s1 := nfa.AddState(false) // branch point
	s2 := nfa.AddState(false) // after 'b'
	s3 := nfa.AddState(false) // after 'c'
	accept := nfa.AddState(false)

	nfa.AddTransition(nfa.Start, "a", s0)
	nfa.AddTransition(s0, automaton.Epsilon, s1)
	nfa.AddTransition(s1, "b", s2)
	nfa.AddTransition(s1, "c", s3)
	nfa.AddTransition(s2, automaton.Epsilon, accept)
	nfa.AddTransition(s3, automaton.Epsilon, accept)
	nfa.SetTag(accept, automaton.Tag{TokenType: "AB", Priority: 0})

	return nfa
}

func Test_NFA_EpsilonClosure(t *testing.T) {
	assert := assert.New(t)
	nfa := buildAB()

	closure := nfa.EpsilonClosure(nfa.Start)
	assert.True(closure.Has(nfa.Start))
	assert.Equal(1, closure.Len(), "start has no outgoing epsilon edges in this fragment")
}

func Test_NFA_MOVE(t *testing.T) {
	assert := assert.New(t)
	nfa := buildAB()

	moved := nfa.MOVE(util.StringSetOf([]string{nfa.Start}), "a")
	assert.Equal(1, moved.Len())

	closed := nfa.EpsilonClosureOfSet(moved)
	assert.True(closed.Len() >= 2, "closure over the post-'a' state must include the branch point")
}

func Test_NFA_ToDFA_AcceptsBothBranches(t *testing.T) {
	assert := assert.New(t)
	nfa := buildAB()
	dfa := nfa.ToDFA()

	assert.NotEmpty(dfa.Start)

	walk := func(input string) (accepting bool, tokenType string) {
		state := dfa.Start
		for _, r := range input {
			st, ok := dfa.States[state]
			if !ok {
				return false, ""
			}
			next, ok := st.Transitions[string(r)]
			if !ok {
				return false, ""
			}
			state = next
		}
		st := dfa.States[state]
		if st.Tag == nil {
			return st.Accepting, ""
		}
		return st.Accepting, st.Tag.TokenType
	}

	for _, in := range []string{"ab", "ac"} {
		accepting, tokenType := walk(in)
		assert.True(accepting, "%q should be accepted", in)
		assert.Equal("AB", tokenType)
	}

	accepting, _ := walk("ad")
	assert.False(accepting, "%q should not be accepted", "ad")
}

// Test_NFA_ToDFA_NoDanglingAccepts asserts the invariant that every state
// reachable from the DFA's start is recorded in its States map (no
// transition points at a state that was never built).
func Test_NFA_ToDFA_NoDanglingAccepts(t *testing.T) {
	assert := assert.New(t)
	nfa := buildAB()
	dfa := nfa.ToDFA()

	reachable := dfa.Reachable()
	for name := range reachable {
		_, ok := dfa.States[name]
		assert.True(ok, "state %q is reachable but missing from States", name)
	}
}

// Test_NFA_ToDFA_PriorityBreaksTies builds two overlapping rules ("a" and
// "a+") and checks the DFA's accept state after one 'a' carries the
// lower-priority (stronger) tag even though both NFA fragments' accept
// states fold into the same subset.
func Test_NFA_ToDFA_PriorityBreaksTies(t *testing.T) {
	assert := assert.New(t)

	nfa := automaton.New()

	// Rule 0: exactly "a"
	a0 := nfa.AddState(false)
	nfa.AddTransition(nfa.Start, "a", a0)
	nfa.SetTag(a0, automaton.Tag{TokenType: "SINGLE_A", Priority: 0})

	// Rule 1: "a" "a"* (also accepts after one 'a', plus loops)
	a1 := nfa.AddState(false)
	nfa.AddTransition(nfa.Start, "a", a1)
	nfa.AddTransition(a1, "a", a1)
	nfa.SetTag(a1, automaton.Tag{TokenType: "A_PLUS", Priority: 1})

	dfa := nfa.ToDFA()

	state := dfa.States[dfa.Start].Transitions["a"]
	st := dfa.States[state]
	assert.True(st.Accepting)
	assert.Equal("SINGLE_A", st.Tag.TokenType, "lower priority number must win the tie")
}
