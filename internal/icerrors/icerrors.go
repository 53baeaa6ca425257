// Package icerrors defines the error kinds raised by ictogen's build-time and
// compile-time stages and formats them into human-readable diagnostics.
//
// Every error returned by internal/regexast, internal/grammar,
// internal/lexgen, internal/parse, and internal/symtab is (or wraps) a
// *diagnosticError so that internal/pipeline and cmd/ictogen can uniformly
// extract a position and a formatted message regardless of which stage
// failed.
package icerrors

import (
	"fmt"
	"strings"

	"github.com/dekarrin/rosed"
)

// Kind identifies which of the five error kinds in the spec (regex syntax,
// grammar/LL(1), lexical, syntactic, semantic) a diagnosticError represents.
type Kind string

const (
	KindRegex    Kind = "regex"
	KindGrammar  Kind = "grammar"
	KindLexical  Kind = "lexical"
	KindSyntax   Kind = "syntax"
	KindSemantic Kind = "semantic"
)

// diagnosticError is an error caused by a malformed rule file, a grammar that
// fails LL(1) analysis, or a bad source program. It carries both a
// human-readable message (suitable for a terminal) and a shorter technical
// message for Error().
type diagnosticError struct {
	kind      Kind
	msg       string
	human     string
	line, col int
	hasPos    bool
	wrap      error
}

func (e *diagnosticError) Error() string { return e.msg }

// Diagnostic returns the full human-facing message for the error, including
// any source snippet and caret the constructor attached.
func (e *diagnosticError) Diagnostic() string { return e.human }

func (e *diagnosticError) Unwrap() error { return e.wrap }

// Kind returns which of the five error kinds this diagnosticError represents.
func (e *diagnosticError) Kind() Kind { return e.kind }

// New returns a new error of the given kind with both a technical message
// (for Error()) and a human-facing diagnostic (for Diagnostic()).
func New(kind Kind, technical, human string) error {
	if human == "" {
		human = technical
	}
	return &diagnosticError{kind: kind, msg: technical, human: human}
}

// Newf is like New but builds the technical message with fmt.Sprintf; the
// human message is the same as the technical one.
func Newf(kind Kind, format string, a ...any) error {
	msg := fmt.Sprintf(format, a...)
	return New(kind, msg, msg)
}

// AtPosition returns a new error of the given kind, positioned at line/col
// (both 1-indexed per the spec's Token contract), with a source snippet and
// caret marker appended to the human-facing message.
func AtPosition(kind Kind, line, col int, sourceLine, technical string) error {
	human := formatSnippet(line, col, sourceLine, technical)
	return &diagnosticError{
		kind:   kind,
		msg:    fmt.Sprintf("line %d, column %d: %s", line, col, technical),
		human:  human,
		line:   line,
		col:    col,
		hasPos: true,
	}
}

// Wrap returns a new error of the given kind that wraps cause, keeping cause
// reachable via errors.Unwrap.
func Wrap(kind Kind, cause error, technical string) error {
	return &diagnosticError{kind: kind, msg: technical, human: technical, wrap: cause}
}

// formatSnippet lays out the "line L, column C" header, the offending source
// line (reflowed to a terminal-friendly width the way the teacher reflows
// long room/NPC descriptions), and a caret marker under the named column.
func formatSnippet(line, col int, sourceLine, technical string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "line %d, column %d: %s\n", line, col, technical)

	trimmed := rosed.Edit(sourceLine).Wrap(120).String()
	sb.WriteString(trimmed)
	sb.WriteRune('\n')

	caretCol := col
	if caretCol < 1 {
		caretCol = 1
	}
	sb.WriteString(strings.Repeat(" ", caretCol-1))
	sb.WriteRune('^')

	return sb.String()
}

// Position extracts the 1-indexed line/column a diagnosticError (anywhere in
// err's Unwrap chain) was raised at. ok is false if no wrapped error carries
// a position, e.g. build-time regex/grammar errors, which are not tied to a
// single source position.
func Position(err error) (line, col int, ok bool) {
	for err != nil {
		if de, isDiag := err.(*diagnosticError); isDiag {
			if de.hasPos {
				return de.line, de.col, true
			}
		}
		unwrapper, isUnwrapper := err.(interface{ Unwrap() error })
		if !isUnwrapper {
			break
		}
		err = unwrapper.Unwrap()
	}
	return 0, 0, false
}

// Diagnostic returns the human-facing diagnostic text for err. If err does
// not carry one (it's a plain error from outside this package), err.Error()
// is returned instead.
func Diagnostic(err error) string {
	if de, ok := err.(*diagnosticError); ok {
		return de.Diagnostic()
	}
	return err.Error()
}

// KindOf returns the Kind of err, or "" if err does not carry one.
func KindOf(err error) Kind {
	if de, ok := err.(*diagnosticError); ok {
		return de.Kind()
	}
	return ""
}
