// Package parse is the predictive recursive-descent parser with inline
// syntax-directed translation (spec.md C5): it drives production choice from
// a precomputed grammar.LL1Table, builds an AST of synthesized attributes,
// and emits three-address code through an internal/tac.Emitter as each
// production reduces.
//
// Grounded on the SELECT-set-driven production dispatch in
// github.com/dekarrin/tunaq's internal/ictiobus/parse/ll1.go (a complete,
// table-driven LL(1) parser) -- reshaped here from a bottom-of-stack table
// walk into an explicit recursive-descent walk, since syntax-directed
// translation needs a call stack to thread inherited attributes (the
// left-operand accumulator folded into an expression tail) through in a way
// a flat table-driven loop cannot express as directly.
package parse

import "github.com/dekarrin/ictogen/internal/lexgen"

// Node is an AST node carrying a synthesized attribute, following spec.md
// 3's "either attach a mutable synthesized field or return out-of-band"
// choice: a mutable field, set once by the production's translation action
// and never touched again once parsing of the node completes (spec.md 3:
// "AST nodes produced by the parser are never mutated after being handed to
// the emitter").
type Node struct {
	Kind        string
	Children    []*Node
	Token       *lexgen.Token
	Synthesized string
}
