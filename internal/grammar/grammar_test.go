package grammar_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/ictogen/internal/grammar"
)

func Test_Grammar_AddRule_Validate(t *testing.T) {
	assert := assert.New(t)

	g := grammar.New()
	g.AddTerm("a")
	g.AddTerm("b")
	g.AddRule("S", grammar.Production{"a", "S", "b"})
	g.AddRule("S", grammar.Epsilon)

	assert.NoError(g.Validate())
	assert.Equal("S", g.StartSymbol())
	assert.True(g.IsNonTerminal("S"))
	assert.True(g.IsTerminal("a"))
	assert.False(g.IsTerminal("S"))

	rule, ok := g.Rule("S")
	assert.True(ok)
	assert.Len(rule.Productions, 2)
}

func Test_Grammar_Validate_RejectsUndeclaredSymbol(t *testing.T) {
	assert := assert.New(t)

	g := grammar.New()
	g.AddTerm("a")
	g.AddRule("S", grammar.Production{"a", "T"})

	err := g.Validate()
	assert.Error(err)
}

func Test_Grammar_Validate_RejectsEmptyGrammar(t *testing.T) {
	assert := assert.New(t)
	g := grammar.New()
	assert.Error(g.Validate())
}

// Test_RemoveLeftRecursion_Immediate exercises spec.md 4.4 step 2's worked
// example shape: E -> E '+' T | T rewrites to E -> T E-P, E-P -> '+' T E-P | ε.
func Test_RemoveLeftRecursion_Immediate(t *testing.T) {
	assert := assert.New(t)

	g := grammar.New()
	g.AddTerm("+")
	g.AddTerm("id")
	g.AddRule("E", grammar.Production{"E", "+", "T"})
	g.AddRule("E", grammar.Production{"T"})
	g.AddRule("T", grammar.Production{"id"})

	out, defects := g.RemoveLeftRecursion()
	assert.Empty(defects)

	eRule, ok := out.Rule("E")
	assert.True(ok)
	for _, p := range eRule.Productions {
		assert.False(len(p) > 0 && p[0] == "E", "E must no longer be left-recursive, got %v", p)
	}

	tailRule, ok := out.Rule("E-P")
	assert.True(ok, "expected a generated E-P tail nonterminal")
	foundEpsilon := false
	for _, p := range tailRule.Productions {
		if p.IsEpsilon() {
			foundEpsilon = true
		}
	}
	assert.True(foundEpsilon, "E-P must retain a base case")
}

// Test_RemoveLeftRecursion_AllRecursive_ReportsDefect covers the case where a
// nonterminal has no non-recursive alternative to seed expansion with.
func Test_RemoveLeftRecursion_AllRecursive_ReportsDefect(t *testing.T) {
	assert := assert.New(t)

	g := grammar.New()
	g.AddTerm("a")
	g.AddRule("A", grammar.Production{"A", "a"})

	_, defects := g.RemoveLeftRecursion()
	assert.Len(defects, 1)
	assert.Equal("A", defects[0].NonTerminal)
}

// Test_RemoveLeftRecursion_Indirect exercises Paull's algorithm's substitution
// step: A -> B a, B -> A b | c has an indirect cycle A -> B a -> A b a that
// must be resolved into directly left-recursive form on A, then eliminated.
func Test_RemoveLeftRecursion_Indirect(t *testing.T) {
	assert := assert.New(t)

	g := grammar.New()
	g.AddTerm("a")
	g.AddTerm("b")
	g.AddTerm("c")
	g.AddRule("A", grammar.Production{"B", "a"})
	g.AddRule("B", grammar.Production{"A", "b"})
	g.AddRule("B", grammar.Production{"c"})

	out, defects := g.RemoveLeftRecursion()
	assert.Empty(defects)

	// Paull's algorithm turns B's "A b" alternative into a direct
	// self-recursion on B ("B a b", A's own expansion substituted in), which
	// eliminateImmediate must then also remove.
	bRule, ok := out.Rule("B")
	assert.True(ok)
	for _, p := range bRule.Productions {
		assert.False(len(p) > 0 && p[0] == "B", "B must no longer be left-recursive, got %v", p)
		assert.False(len(p) > 0 && p[0] == "A", "B must no longer reference A as a left corner, got %v", p)
	}
}

// Test_LeftFactor_CommonPrefix exercises spec.md 4.4 step 3: two alternatives
// sharing a prefix are factored into a fresh tail nonterminal.
func Test_LeftFactor_CommonPrefix(t *testing.T) {
	assert := assert.New(t)

	g := grammar.New()
	g.AddTerm("if")
	g.AddTerm("then")
	g.AddTerm("else")
	g.AddRule("S", grammar.Production{"if", "then"})
	g.AddRule("S", grammar.Production{"if", "then", "else"})

	out := g.LeftFactor()

	sRule, ok := out.Rule("S")
	assert.True(ok)
	assert.Len(sRule.Productions, 1, "both alternatives should collapse into one factored production")

	found := false
	for _, nt := range out.NonTerminals() {
		if nt != "S" {
			found = true
		}
	}
	assert.True(found, "expected a generated tail nonterminal")
}

func Test_LeftFactor_NoCommonPrefix_Unchanged(t *testing.T) {
	assert := assert.New(t)

	g := grammar.New()
	g.AddTerm("a")
	g.AddTerm("b")
	g.AddRule("S", grammar.Production{"a"})
	g.AddRule("S", grammar.Production{"b"})

	out := g.LeftFactor()
	sRule, _ := out.Rule("S")
	assert.Len(sRule.Productions, 2)
	assert.ElementsMatch(g.NonTerminals(), out.NonTerminals())
}

// Test_FirstFollowSelect exercises the textbook expression grammar from
// spec.md 4.4 step 4's description: E -> T E', E' -> + T E' | ε,
// T -> F T', T' -> * F T' | ε, F -> ( E ) | id.
func Test_FirstFollowSelect(t *testing.T) {
	assert := assert.New(t)

	g := grammar.New()
	for _, term := range []string{"+", "*", "(", ")", "id"} {
		g.AddTerm(term)
	}
	g.AddRule("E", grammar.Production{"T", "Ep"})
	g.AddRule("Ep", grammar.Production{"+", "T", "Ep"})
	g.AddRule("Ep", grammar.Epsilon)
	g.AddRule("T", grammar.Production{"F", "Tp"})
	g.AddRule("Tp", grammar.Production{"*", "F", "Tp"})
	g.AddRule("Tp", grammar.Epsilon)
	g.AddRule("F", grammar.Production{"(", "E", ")"})
	g.AddRule("F", grammar.Production{"id"})
	g.SetStartSymbol("E")

	assert.NoError(g.Validate())

	first := g.FIRST("E")
	assert.True(first.Has("("))
	assert.True(first.Has("id"))
	assert.False(first.Has(grammar.EpsilonSymbol))

	firstEp := g.FIRST("Ep")
	assert.True(firstEp.Has("+"))
	assert.True(firstEp.Has(grammar.EpsilonSymbol))

	followE := g.FOLLOW("E")
	assert.True(followE.Has(")"))
	assert.True(followE.Has(grammar.EOFSymbol))

	followEp := g.FOLLOW("Ep")
	assert.True(followEp.Equal(followE))

	ok, conflicts := g.IsLL1()
	assert.True(ok, "expected conflicts: %v", conflicts)

	table, err := g.LLParseTable()
	assert.NoError(err)

	prod, found := table.Get("Ep", "+")
	assert.True(found)
	assert.Equal(grammar.Production{"+", "T", "Ep"}, prod)

	prod, found = table.Get("Ep", grammar.EOFSymbol)
	assert.True(found)
	assert.True(prod.IsEpsilon())
}

// Test_IsLL1_DetectsAmbiguousGrammar exercises spec.md 4.4 step 6: a
// nonterminal with two alternatives whose SELECT sets overlap is rejected.
func Test_IsLL1_DetectsAmbiguousGrammar(t *testing.T) {
	assert := assert.New(t)

	g := grammar.New()
	g.AddTerm("a")
	g.AddTerm("b")
	g.AddRule("S", grammar.Production{"a", "b"})
	g.AddRule("S", grammar.Production{"a"})
	g.SetStartSymbol("S")

	ok, conflicts := g.IsLL1()
	assert.False(ok)
	assert.NotEmpty(conflicts)

	_, err := g.LLParseTable()
	assert.Error(err)
}

// Test_Transform_EndToEnd runs the full left-recursion + left-factoring +
// LL(1) pipeline over a grammar that needs both transformations.
func Test_Transform_EndToEnd(t *testing.T) {
	assert := assert.New(t)

	g := grammar.New()
	g.AddTerm("+")
	g.AddTerm("id")
	g.AddRule("E", grammar.Production{"E", "+", "id"})
	g.AddRule("E", grammar.Production{"id"})

	transformed, defects, err := g.Transform()
	assert.NoError(err)
	assert.Empty(defects)

	ok, conflicts := transformed.IsLL1()
	assert.True(ok, "expected conflicts: %v", conflicts)
}
