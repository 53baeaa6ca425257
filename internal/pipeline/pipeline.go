// Package pipeline wires the build-time and compile-time stages together
// (spec.md C8): generate_compiler builds a DFA and a transformed,
// LL(1)-verified grammar once; compile drives the scanner and parser over
// one source string using that built state.
//
// Grounded on the single coordinating entry point github.com/dekarrin/
// tunaq's fishi.go's ProcessFishiMd provides over its own lex/grammar/parse
// stages, generalized from that file's hard-coded bootstrap lexer/grammar to
// this package's build-from-rule-files flow.
package pipeline

import (
	"github.com/dekarrin/ictogen/internal/automaton"
	"github.com/dekarrin/ictogen/internal/grammar"
	"github.com/dekarrin/ictogen/internal/lexgen"
	"github.com/dekarrin/ictogen/internal/parse"
	"github.com/dekarrin/ictogen/internal/regexast"
)

// Compiler is the artifact generate_compiler produces: an immutable DFA and
// transformed grammar, safely shareable across concurrent compile calls
// (spec.md §5: "immutable after construction and safely shareable across
// threads... per-compile state must not be shared").
type Compiler struct {
	DFA     automaton.DFA
	Grammar *grammar.Grammar
	Table   grammar.LL1Table
	Meta    parse.Metadata
	Defects []grammar.Defect
}

// GenerateCompiler runs C1->C2 over lexerRules to build a DFA and C4 over
// grammarRules to produce a transformed, LL(1)-verified grammar and parse
// table. It returns a build-time error (never tied to a single source
// position) if the regex rules fail to compile or the grammar is not LL(1)
// after transformation.
func GenerateCompiler(lexerRules []regexast.Rule, grammarRules *grammar.Grammar, meta parse.Metadata) (*Compiler, error) {
	nfa, err := regexast.Build(lexerRules)
	if err != nil {
		return nil, err
	}
	dfa := nfa.ToDFA()

	transformed, defects, err := grammarRules.Transform()
	if err != nil {
		return nil, err
	}

	table, err := transformed.LLParseTable()
	if err != nil {
		return nil, err
	}

	return &Compiler{
		DFA:     dfa,
		Grammar: transformed,
		Table:   table,
		Meta:    meta,
		Defects: defects,
	}, nil
}

// Compile runs C3->C5 (which internally drives C6 and C7) over source,
// returning the emitted TAC text or an error describing the lexical,
// syntactic, or semantic failure with position. Every call builds fresh
// scanner and parser state; nothing here is shared across calls (spec.md
// §5).
func (c *Compiler) Compile(source string) (string, error) {
	scanner := lexgen.New(c.DFA)
	tokens, err := scanner.Tokenize(source)
	if err != nil {
		return "", err
	}

	p := parse.New(c.Grammar, c.Table, c.Meta, tokens, source)
	result, err := p.Run()
	if err != nil {
		return "", err
	}

	return result.TAC, nil
}
