package lexgen_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/ictogen/internal/icerrors"
	"github.com/dekarrin/ictogen/internal/lexgen"
	"github.com/dekarrin/ictogen/internal/regexast"
)

// buildScanner compiles rules (in priority order) all the way down to a
// lexgen.Scanner, the same way internal/pipeline does.
func buildScanner(t *testing.T, rules []regexast.Rule) *lexgen.Scanner {
	t.Helper()
	nfa, err := regexast.Build(rules)
	assert.NoError(t, err)
	return lexgen.New(nfa.ToDFA())
}

func Test_Scanner_Tokenize_LongestMatch(t *testing.T) {
	assert := assert.New(t)

	// ASSIGN (=) has higher priority (earlier) than EQ (==); longest match
	// must still prefer "==" over "=" followed by "=" since the DFA consumes
	// greedily and only falls back to the last accepting position.
	scanner := buildScanner(t, []regexast.Rule{
		{TokenType: "ASSIGN", Pattern: "="},
		{TokenType: "EQ", Pattern: "=="},
		{TokenType: "ID", Pattern: "[a-z]+"},
	})

	toks, err := scanner.Tokenize("a == b = c")
	assert.NoError(err)

	var types []string
	for _, tok := range toks {
		types = append(types, tok.Type)
	}
	assert.Equal([]string{"ID", "EQ", "ID", "ASSIGN", "ID", "EOF"}, types)
}

func Test_Scanner_Tokenize_PriorityBreaksTies(t *testing.T) {
	assert := assert.New(t)

	// "if" matches both a keyword rule and the general identifier rule at
	// the same length; the keyword rule (declared first, lower priority
	// number) must win.
	scanner := buildScanner(t, []regexast.Rule{
		{TokenType: "IF", Pattern: "if"},
		{TokenType: "ID", Pattern: "[a-z]+"},
	})

	toks, err := scanner.Tokenize("if iffy")
	assert.NoError(err)
	assert.Equal("IF", toks[0].Type)
	assert.Equal("ID", toks[1].Type)
	assert.Equal("iffy", toks[1].Lexeme)
}

func Test_Scanner_Tokenize_SkipsWhitespaceAndComments(t *testing.T) {
	assert := assert.New(t)

	scanner := buildScanner(t, []regexast.Rule{
		{TokenType: "ID", Pattern: "[a-z]+"},
	})

	toks, err := scanner.Tokenize("a // a line comment\n  b")
	assert.NoError(err)
	assert.Len(toks, 3) // a, b, EOF
	assert.Equal("a", toks[0].Lexeme)
	assert.Equal(1, toks[0].Line)
	assert.Equal("b", toks[1].Lexeme)
	assert.Equal(2, toks[1].Line)
}

func Test_Scanner_Tokenize_TracksLineAndColumn(t *testing.T) {
	assert := assert.New(t)

	scanner := buildScanner(t, []regexast.Rule{
		{TokenType: "ID", Pattern: "[a-z]+"},
	})

	toks, err := scanner.Tokenize("ab\ncd")
	assert.NoError(err)
	assert.Equal(1, toks[0].Line)
	assert.Equal(1, toks[0].Column)
	assert.Equal(2, toks[1].Line)
	assert.Equal(1, toks[1].Column)
}

func Test_Scanner_Tokenize_UnrecognizedCharacter(t *testing.T) {
	assert := assert.New(t)

	scanner := buildScanner(t, []regexast.Rule{
		{TokenType: "ID", Pattern: "[a-z]+"},
	})

	_, err := scanner.Tokenize("ab @ cd")
	assert.Error(err)
	assert.Equal(icerrors.KindLexical, icerrors.KindOf(err))

	line, col, ok := icerrors.Position(err)
	assert.True(ok)
	assert.Equal(1, line)
	assert.Equal(4, col)
}

func Test_Scanner_Tokenize_Empty(t *testing.T) {
	assert := assert.New(t)

	scanner := buildScanner(t, []regexast.Rule{
		{TokenType: "ID", Pattern: "[a-z]+"},
	})

	toks, err := scanner.Tokenize("")
	assert.NoError(err)
	assert.Len(toks, 1)
	assert.True(toks[0].IsEOF())
}
