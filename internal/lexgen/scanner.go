package lexgen

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/dekarrin/ictogen/internal/automaton"
	"github.com/dekarrin/ictogen/internal/icerrors"
)

// Scanner runs a built DFA over source text, emitting a longest-match token
// stream. It is immutable and safe to reuse across many Tokenize calls.
type Scanner struct {
	dfa automaton.DFA
}

// New returns a Scanner driven by dfa, as built by regexast.Build followed by
// NFA.ToDFA.
func New(dfa automaton.DFA) *Scanner {
	return &Scanner{dfa: dfa}
}

// Tokenize scans source into a token stream (spec.md C3). Before each token
// attempt, runs of whitespace and "//"-to-end-of-line comments are skipped.
// Matching is longest-match: the DFA is simulated from its start state one
// character at a time, and the last position at which the current state was
// accepting is remembered; scanning a token stops when no transition exists
// for the next character or the input ends, and the remembered longest
// accept (if any) is emitted. If no accept was ever recorded, Tokenize fails
// with a lexical error citing the offending character and its position.
//
// The returned stream always ends with exactly one EOF token.
func (s *Scanner) Tokenize(source string) ([]Token, error) {
	runes := []rune(source)
	sourceLines := strings.Split(source, "\n")

	pos, line, col := 0, 1, 1

	lineText := func(lineNum int) string {
		if lineNum-1 >= 0 && lineNum-1 < len(sourceLines) {
			return sourceLines[lineNum-1]
		}
		return ""
	}

	var tokens []Token

	for {
		// skip whitespace and line comments, possibly interleaved, until a
		// pass makes no further progress.
		for {
			progressed := false
			for pos < len(runes) && unicode.IsSpace(runes[pos]) {
				if runes[pos] == '\n' {
					line++
					col = 1
				} else {
					col++
				}
				pos++
				progressed = true
			}
			if pos+1 < len(runes) && runes[pos] == '/' && runes[pos+1] == '/' {
				for pos < len(runes) && runes[pos] != '\n' {
					pos++
					col++
				}
				progressed = true
			}
			if !progressed {
				break
			}
		}

		if pos >= len(runes) {
			tokens = append(tokens, Token{Type: EOF, Line: line, Column: col})
			return tokens, nil
		}

		tok, newPos, newLine, newCol, err := s.matchOne(runes, pos, line, col, lineText)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		pos, line, col = newPos, newLine, newCol
	}
}

// matchOne performs one longest-match DFA simulation starting at runes[pos].
func (s *Scanner) matchOne(runes []rune, pos, line, col int, lineText func(int) string) (Token, int, int, int, error) {
	state := s.dfa.Start
	curPos, curLine, curCol := pos, line, col

	lastAcceptPos := -1
	lastAcceptLine, lastAcceptCol := 0, 0
	var lastTag *automaton.Tag

	checkAccept := func() {
		st, ok := s.dfa.States[state]
		if ok && st.Accepting {
			lastAcceptPos, lastAcceptLine, lastAcceptCol = curPos, curLine, curCol
			lastTag = st.Tag
		}
	}
	checkAccept()

	for curPos < len(runes) {
		c := runes[curPos]
		st, ok := s.dfa.States[state]
		if !ok {
			break
		}
		next, ok := st.Transitions[string(c)]
		if !ok {
			break
		}
		state = next
		curPos++
		if c == '\n' {
			curLine++
			curCol = 1
		} else {
			curCol++
		}
		checkAccept()
	}

	if lastAcceptPos < 0 {
		offending := runes[pos]
		err := icerrors.AtPosition(icerrors.KindLexical, line, col, lineText(line),
			fmt.Sprintf("unexpected character %q", offending))
		return Token{}, 0, 0, 0, err
	}

	lexeme := string(runes[pos:lastAcceptPos])
	tok := Token{Type: lastTag.TokenType, Lexeme: lexeme, Line: line, Column: col}
	return tok, lastAcceptPos, lastAcceptLine, lastAcceptCol, nil
}
