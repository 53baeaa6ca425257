package automaton

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/cnf/structhash"
	"github.com/emirpasic/gods/stacks/linkedliststack"

	"github.com/dekarrin/ictogen/internal/util"
)

// DFAState is one state of a deterministic finite automaton: a set of
// transitions keyed by input symbol, and -- if the state is accepting -- the
// token type and priority it was tagged with.
type DFAState struct {
	Name        string
	NFASubset   util.StringSet
	Transitions map[string]string
	Accepting   bool
	Tag         *Tag
}

// DFA is a deterministic finite automaton built from an NFA by subset
// construction (ToDFA). Every state is reachable from Start via the
// Transitions table; there is never more than one transition per input
// symbol from any state.
type DFA struct {
	States map[string]DFAState
	Start  string
}

// subsetKey interns a state-subset by a stable hash of its alphabetized
// elements, the way github.com/cnf/structhash content-hashes a struct for
// deduplication -- this is faster than repeatedly rebuilding and comparing
// the teacher's StringOrdered() set-to-string key for large lexical
// grammars, while StringOrdered remains available on NFASubset for
// diagnostics and tests.
func subsetKey(subset util.StringSet) string {
	ordered := util.OrderedKeys(subset)
	hash, err := structhash.Hash(ordered, 1)
	if err != nil {
		// structhash only fails on unhashable types; []string is always
		// hashable, so fall back to the ordered form itself if it somehow
		// does (never observed in practice).
		return strings.Join(ordered, ",")
	}
	sum := sha256.Sum256([]byte(hash))
	return hex.EncodeToString(sum[:8])
}

// ToDFA converts nfa into a DFA accepting the same language, via subset
// construction (Purple Dragon Book algorithm 3.20). Each DFA state is the
// epsilon-closure of a set of NFA states; a DFA state is accepting iff its
// subset contains at least one accepting NFA state, and its Tag is the tag of
// the lowest-priority (strongest) tagged NFA state in that subset.
func (nfa *NFA) ToDFA() DFA {
	inputSymbols := nfa.InputSymbols()

	dStart := nfa.EpsilonClosure(nfa.Start)
	startKey := subsetKey(dStart)

	subsets := map[string]util.StringSet{startKey: dStart}
	marked := util.NewStringSet()

	dfa := DFA{States: map[string]DFAState{}, Start: startKey}

	// The subset-construction worklist is backed by github.com/emirpasic/gods'
	// linked-list stack (the npillmayer-gorgo example's container library)
	// rather than this package's own util.Stack, to exercise it the way that
	// example wires gods containers into its own LR table construction.
	worklist := linkedliststack.New()
	worklist.Push(startKey)

	for !worklist.Empty() {
		top, _ := worklist.Pop()
		key := top.(string)
		if marked.Has(key) {
			continue
		}
		marked.Add(key)

		subset := subsets[key]
		state := DFAState{
			Name:        key,
			NFASubset:   subset,
			Transitions: map[string]string{},
			Tag:         nfa.strongestTag(subset),
		}
		state.Accepting = state.Tag != nil

		for a := range inputSymbols {
			target := nfa.EpsilonClosureOfSet(nfa.MOVE(subset, a))
			if target.Empty() {
				continue
			}
			targetKey := subsetKey(target)
			if _, seen := subsets[targetKey]; !seen {
				subsets[targetKey] = target
				worklist.Push(targetKey)
			}
			state.Transitions[a] = targetKey
		}

		dfa.States[key] = state
	}

	return dfa
}

// Reachable returns the set of state names reachable from the DFA's start
// state, used to assert the "no dangling accepts" invariant.
func (dfa DFA) Reachable() util.StringSet {
	seen := util.NewStringSet()
	var stack util.Stack[string]
	stack.Push(dfa.Start)

	for !stack.Empty() {
		cur := stack.Pop()
		if seen.Has(cur) {
			continue
		}
		seen.Add(cur)
		for _, to := range dfa.States[cur].Transitions {
			stack.Push(to)
		}
	}
	return seen
}

func (dfa DFA) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "<START: %q, STATES:", dfa.Start)
	names := make([]string, 0, len(dfa.States))
	for n := range dfa.States {
		names = append(names, n)
	}
	sort.Strings(names)
	for i, n := range names {
		st := dfa.States[n]
		fmt.Fprintf(&sb, "\n\t%s accepting=%v tag=%v", n, st.Accepting, st.Tag)
		if i+1 < len(names) {
			sb.WriteRune(',')
		}
	}
	sb.WriteString("\n>")
	return sb.String()
}
