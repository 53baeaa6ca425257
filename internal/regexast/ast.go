// Package regexast parses the restricted regular-expression syntax a lexical
// rule's pattern is written in into a small tagged-variant AST, then compiles
// that AST into an NFA fragment via Thompson's construction.
//
// Grounded on spec.md C1 and on the fragment-combinator shapes sketched (but
// never wired up) in github.com/dekarrin/tunaq's internal/ictiobus/lex/regex.go
// -- createSingleSymbolFA, createJuxtapositionFA, createKleeneStarFA, and
// createAlternationFA. That file's own RegexToNFA is an explicit TODO stub
// that always returns an empty NFA; this package is the completed version of
// what it was meant to become, built directly against a shared
// automaton.NFA rather than via per-fragment NFA.Join splicing.
package regexast

// Kind tags which of the five regex-AST variants a Node is. Match on Kind,
// never on a type switch -- the AST is a sum type, not a class hierarchy.
type Kind int

const (
	KindLit Kind = iota
	KindEps
	KindConcat
	KindAlt
	KindStar
)

// Node is one node of the regex AST. Which fields are meaningful depends on
// Kind:
//
//	KindLit:    Char
//	KindEps:    (no fields)
//	KindConcat: Children, in order
//	KindAlt:    Children, in any order
//	KindStar:   Children[0] is the repeated expression
type Node struct {
	Kind     Kind
	Char     rune
	Children []*Node
}

func lit(c rune) *Node            { return &Node{Kind: KindLit, Char: c} }
func eps() *Node                  { return &Node{Kind: KindEps} }
func concat(nodes ...*Node) *Node {
	flat := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		if n.Kind == KindConcat {
			flat = append(flat, n.Children...)
		} else {
			flat = append(flat, n)
		}
	}
	if len(flat) == 1 {
		return flat[0]
	}
	return &Node{Kind: KindConcat, Children: flat}
}
func alt(nodes ...*Node) *Node {
	if len(nodes) == 1 {
		return nodes[0]
	}
	return &Node{Kind: KindAlt, Children: nodes}
}
func star(n *Node) *Node { return &Node{Kind: KindStar, Children: []*Node{n}} }

// plus desugars a+ to a a* (concatenation of one copy and a Kleene star over
// a deep copy, since the two occurrences must be distinct AST nodes).
func plus(n *Node) *Node { return concat(n, star(n.clone())) }

// optional desugars a? to a | ε.
func optional(n *Node) *Node { return alt(n, eps()) }

func (n *Node) clone() *Node {
	if n == nil {
		return nil
	}
	cp := &Node{Kind: n.Kind, Char: n.Char}
	if n.Children != nil {
		cp.Children = make([]*Node, len(n.Children))
		for i, c := range n.Children {
			cp.Children[i] = c.clone()
		}
	}
	return cp
}
