package regexast

import (
	"fmt"

	"github.com/dekarrin/ictogen/internal/icerrors"
)

// Parse compiles a lexical rule's pattern text into a regex AST.
//
// Accepted syntax: literals, '|', concatenation by juxtaposition, '*', '+',
// '?', grouping '(...)' and non-capturing '(?:...)', character classes
// '[...]' with ranges ('a-z') and backslash escapes, and '\x' escaping any
// single character x. Negated classes ('[^...]') and anything resembling a
// Unicode property escape ('\p{...}') are rejected.
func Parse(pattern string) (*Node, error) {
	p := &parser{runes: []rune(pattern)}
	node, err := p.parseAlt()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.runes) {
		return nil, icerrors.Newf(icerrors.KindRegex, "unexpected %q at position %d in pattern %q", p.runes[p.pos], p.pos, pattern)
	}
	return node, nil
}

type parser struct {
	runes []rune
	pos   int
}

func (p *parser) peek() (rune, bool) {
	if p.pos >= len(p.runes) {
		return 0, false
	}
	return p.runes[p.pos], true
}

func (p *parser) advance() rune {
	r := p.runes[p.pos]
	p.pos++
	return r
}

// parseAlt := concat ('|' concat)*
func (p *parser) parseAlt() (*Node, error) {
	first, err := p.parseConcat()
	if err != nil {
		return nil, err
	}
	alts := []*Node{first}
	for {
		c, ok := p.peek()
		if !ok || c != '|' {
			break
		}
		p.advance()
		next, err := p.parseConcat()
		if err != nil {
			return nil, err
		}
		alts = append(alts, next)
	}
	return alt(alts...), nil
}

// parseConcat := repeat*
func (p *parser) parseConcat() (*Node, error) {
	var parts []*Node
	for {
		c, ok := p.peek()
		if !ok || c == '|' || c == ')' {
			break
		}
		n, err := p.parseRepeat()
		if err != nil {
			return nil, err
		}
		parts = append(parts, n)
	}
	if len(parts) == 0 {
		return eps(), nil
	}
	return concat(parts...), nil
}

// parseRepeat := atom ('*' | '+' | '?')?
func (p *parser) parseRepeat() (*Node, error) {
	n, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	for {
		c, ok := p.peek()
		if !ok {
			break
		}
		switch c {
		case '*':
			p.advance()
			n = star(n)
			continue
		case '+':
			p.advance()
			n = plus(n)
			continue
		case '?':
			p.advance()
			n = optional(n)
			continue
		}
		break
	}
	return n, nil
}

// parseAtom := LIT | '(' alt ')' | '(?:' alt ')' | '[' class ']' | '\' ESC
func (p *parser) parseAtom() (*Node, error) {
	c, ok := p.peek()
	if !ok {
		return nil, icerrors.Newf(icerrors.KindRegex, "unexpected end of pattern")
	}

	switch c {
	case '(':
		p.advance()
		if c2, ok := p.peek(); ok && c2 == '?' {
			// only "(?:" non-capturing groups are accepted; anything else
			// after "(?" (lookaround, named groups) is rejected.
			save := p.pos
			p.advance()
			if c3, ok := p.peek(); ok && c3 == ':' {
				p.advance()
			} else {
				p.pos = save
				return nil, icerrors.Newf(icerrors.KindRegex, "unsupported group syntax '(?%c' at position %d", c3, p.pos)
			}
		}
		inner, err := p.parseAlt()
		if err != nil {
			return nil, err
		}
		if c2, ok := p.peek(); !ok || c2 != ')' {
			return nil, icerrors.Newf(icerrors.KindRegex, "unclosed '(' at position %d", p.pos)
		}
		p.advance()
		return inner, nil
	case '[':
		return p.parseClass()
	case '\\':
		p.advance()
		return p.parseEscape()
	case '.':
		return nil, icerrors.Newf(icerrors.KindRegex, "'.' wildcard is not supported; use an explicit character class")
	default:
		p.advance()
		return lit(c), nil
	}
}

// parseEscape handles '\x' for any single character x. Unicode property
// escapes ('\p', '\P') are explicitly rejected per spec.md's Non-goals.
func (p *parser) parseEscape() (*Node, error) {
	c, ok := p.peek()
	if !ok {
		return nil, icerrors.Newf(icerrors.KindRegex, "dangling '\\' at end of pattern")
	}
	if c == 'p' || c == 'P' {
		return nil, icerrors.Newf(icerrors.KindRegex, "unicode property escape '\\%c' is not supported", c)
	}
	p.advance()
	return lit(unescape(c)), nil
}

// unescape maps the small set of backslash shorthand this language supports
// to their literal characters; anything not in the table escapes to itself.
func unescape(c rune) rune {
	switch c {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	default:
		return c
	}
}

// parseClass parses '[...]' into an Alt of Lits, expanding 'a-z' ranges.
// Negated classes ('[^...]') are rejected.
func (p *parser) parseClass() (*Node, error) {
	p.advance() // consume '['
	if c, ok := p.peek(); ok && c == '^' {
		return nil, icerrors.Newf(icerrors.KindRegex, "negated character classes are not supported (position %d)", p.pos)
	}

	var alts []*Node
	first := true
	for {
		c, ok := p.peek()
		if !ok {
			return nil, icerrors.Newf(icerrors.KindRegex, "unclosed '[' character class")
		}
		if c == ']' && !first {
			p.advance()
			break
		}
		first = false

		var lo rune
		if c == '\\' {
			p.advance()
			esc, ok := p.peek()
			if !ok {
				return nil, icerrors.Newf(icerrors.KindRegex, "dangling '\\' in character class")
			}
			p.advance()
			lo = unescape(esc)
		} else {
			p.advance()
			lo = c
		}

		// look for a '-hi' range suffix, but not when '-' is immediately
		// followed by ']' (a literal trailing hyphen).
		if nc, ok := p.peek(); ok && nc == '-' {
			savedPos := p.pos
			p.advance()
			if hic, ok := p.peek(); ok && hic != ']' {
				var hi rune
				if hic == '\\' {
					p.advance()
					esc, ok := p.peek()
					if !ok {
						return nil, icerrors.Newf(icerrors.KindRegex, "dangling '\\' in character class")
					}
					p.advance()
					hi = unescape(esc)
				} else {
					p.advance()
					hi = hic
				}
				if hi < lo {
					return nil, icerrors.Newf(icerrors.KindRegex, "invalid range '%c-%c' in character class: end before start", lo, hi)
				}
				for r := lo; r <= hi; r++ {
					alts = append(alts, lit(r))
				}
				continue
			}
			p.pos = savedPos
		}

		alts = append(alts, lit(lo))
	}

	if len(alts) == 0 {
		return nil, icerrors.Newf(icerrors.KindRegex, "empty character class")
	}
	return alt(alts...), nil
}

// String gives a debug representation of the node, used in build-time
// diagnostics when a rule's regex fails to compile to a sane fragment.
func (n *Node) String() string {
	switch n.Kind {
	case KindLit:
		return fmt.Sprintf("Lit(%q)", n.Char)
	case KindEps:
		return "Eps"
	case KindConcat:
		return fmt.Sprintf("Concat%v", n.Children)
	case KindAlt:
		return fmt.Sprintf("Alt%v", n.Children)
	case KindStar:
		return fmt.Sprintf("Star(%v)", n.Children[0])
	default:
		return "?"
	}
}
