package artifact

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/ictogen/internal/automaton"
	"github.com/dekarrin/ictogen/internal/grammar"
	"github.com/dekarrin/ictogen/internal/parse"
)

func testPayload() Payload {
	g := grammar.New()
	g.AddTerm("ID")
	g.AddTerm("ASSIGN")
	g.AddRule("S", grammar.Production{"ID", "ASSIGN", "ID"})

	dfa := automaton.DFA{
		Start: "s0",
		States: map[string]automaton.DFAState{
			"s0": {
				Name:        "s0",
				Transitions: map[string]string{"a": "s1"},
			},
			"s1": {
				Name:      "s1",
				Accepting: true,
				Tag:       &automaton.Tag{TokenType: "ID", Priority: 1},
			},
		},
	}

	return Payload{
		DFA:     dfa,
		Grammar: g,
		Meta:    parse.Metadata{RequireExplicitDeclaration: true, KeywordWrite: "WRITE"},
		Defects: []grammar.Defect{{NonTerminal: "X", Reason: "unreachable after substitution"}},
	}
}

func Test_Payload_MarshalBinary_RoundTrip(t *testing.T) {
	assert := assert.New(t)

	p := testPayload()
	data, err := p.MarshalBinary()
	assert.NoError(err)

	var decoded Payload
	assert.NoError(decoded.UnmarshalBinary(data))

	assert.Equal(p.DFA.Start, decoded.DFA.Start)
	assert.Equal(len(p.DFA.States), len(decoded.DFA.States))
	assert.Equal(p.Meta, decoded.Meta)
	assert.Equal(p.Defects, decoded.Defects)
	assert.ElementsMatch(p.Grammar.NonTerminals(), decoded.Grammar.NonTerminals())
}

func Test_Save_Load_RoundTrip(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	p := testPayload()

	manifest, err := Save(dir, p, "ID = [a-z]+\n", "S -> 'ID' 'ASSIGN' 'ID'\n")
	assert.NoError(err)
	assert.NotEmpty(manifest.BuildID)

	loadedPayload, loadedManifest, err := Load(dir)
	assert.NoError(err)
	assert.Equal(manifest.BuildID, loadedManifest.BuildID)
	assert.Equal(manifest.LexerRuleHash, loadedManifest.LexerRuleHash)
	assert.Equal(p.Meta, loadedPayload.Meta)
	assert.False(loadedManifest.Stale("ID = [a-z]+\n", "S -> 'ID' 'ASSIGN' 'ID'\n"))
	assert.True(loadedManifest.Stale("ID = [a-z]+\n", "S -> 'ID'\n"))
}
