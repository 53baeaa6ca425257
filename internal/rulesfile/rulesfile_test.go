package rulesfile_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/ictogen/internal/rulesfile"
)

func Test_ParseLexerRules_OrderAndFields(t *testing.T) {
	assert := assert.New(t)

	rules, err := rulesfile.ParseLexerRules(`
# a comment line, ignored

ID = [a-z]+
NUM = [0-9]+
`)
	assert.NoError(err)
	assert.Len(rules, 2)
	assert.Equal("ID", rules[0].TokenType)
	assert.Equal("[a-z]+", rules[0].Pattern)
	assert.Equal("NUM", rules[1].TokenType)
}

func Test_ParseLexerRules_RejectsMalformedLine(t *testing.T) {
	assert := assert.New(t)
	_, err := rulesfile.ParseLexerRules("ID [a-z]+")
	assert.Error(err)
}

func Test_ParseLexerRules_RejectsEmpty(t *testing.T) {
	assert := assert.New(t)
	_, err := rulesfile.ParseLexerRules("   \n# only a comment\n")
	assert.Error(err)
}

func Test_ParseGrammarRules_MetadataAndStartSymbol(t *testing.T) {
	assert := assert.New(t)

	g, meta, err := rulesfile.ParseGrammarRules(`
# @REQUIRE_EXPLICIT_DECLARATION: false
# @KEYWORD_WRITE: WRITE

Stmt -> 'ID' 'ASSIGN' Stmt
Stmt -> 'NUM'

Program -> Stmt
`)
	assert.NoError(err)
	assert.False(meta.RequireExplicitDeclaration)
	assert.Equal("WRITE", meta.KeywordWrite)
	assert.Equal("Program", g.StartSymbol(), "Program must win over first-declared Stmt")
}

func Test_ParseGrammarRules_DefaultStartIsFirstDeclared(t *testing.T) {
	assert := assert.New(t)

	g, _, err := rulesfile.ParseGrammarRules(`
Expr -> 'NUM'
Other -> 'NUM'
`)
	assert.NoError(err)
	assert.Equal("Expr", g.StartSymbol())
}

func Test_ParseGrammarRules_AutoDetectsDeclarationShape(t *testing.T) {
	assert := assert.New(t)

	g, meta, err := rulesfile.ParseGrammarRules(`
Program -> Decl
Decl -> 'ID' Tail
Tail -> 'NUM'
`)
	assert.NoError(err)
	assert.True(meta.RequireExplicitDeclaration, "a declaration-shaped production should auto-enable explicit declaration")
	assert.NotNil(g)
}

func Test_ParseGrammarRules_EpsilonAlternative(t *testing.T) {
	assert := assert.New(t)

	g, _, err := rulesfile.ParseGrammarRules(`
Program -> 'NUM' Program |
`)
	assert.NoError(err)

	rule, ok := g.Rule("Program")
	assert.True(ok)
	assert.Len(rule.Productions, 2)
	assert.True(rule.Productions[1].IsEpsilon())
}

func Test_ParseGrammarRules_RejectsUndeclaredSymbol(t *testing.T) {
	assert := assert.New(t)

	_, _, err := rulesfile.ParseGrammarRules(`
Program -> 'NUM' Missing
`)
	assert.Error(err)
}

func Test_ParseGrammarRules_RejectsMalformedLine(t *testing.T) {
	assert := assert.New(t)
	_, _, err := rulesfile.ParseGrammarRules("Program 'NUM'")
	assert.Error(err)
}
