// Package tac is the three-address-code emitter (spec.md C7): monotonic
// temporary/label allocation and a line buffer, reset fresh for every
// compile call.
//
// Grounded on the counter-plus-buffer shape of code generation helpers
// scattered through github.com/dekarrin/tunaq's translation package
// (internal/ictiobus/translation/*.go manage similarly small pieces of
// per-translation mutable state passed through a binding.Tree), simplified
// here to the flat struct spec.md 4.7 calls for since this system has no
// attribute-binding graph to walk.
package tac

import (
	"fmt"
	"strings"
)

// Emitter owns the temporary/label counters and the accumulated instruction
// buffer for one compile call.
type Emitter struct {
	tempCount  int
	labelCount int
	lines      []string
}

// New returns a fresh Emitter with counters at zero and an empty buffer.
func New() *Emitter {
	return &Emitter{}
}

// NewTemp allocates the next temporary name: t1, t2, ...
func (e *Emitter) NewTemp() string {
	e.tempCount++
	return fmt.Sprintf("t%d", e.tempCount)
}

// NewLabel allocates the next label name: L1, L2, ...
func (e *Emitter) NewLabel() string {
	e.labelCount++
	return fmt.Sprintf("L%d", e.labelCount)
}

// Emit appends one already-formatted instruction line to the buffer.
func (e *Emitter) Emit(line string) {
	e.lines = append(e.lines, line)
}

// EmitLabel appends a label definition line ("Li:").
func (e *Emitter) EmitLabel(label string) {
	e.Emit(label + ":")
}

// Emitf formats and appends one instruction line.
func (e *Emitter) Emitf(format string, args ...any) {
	e.Emit(fmt.Sprintf(format, args...))
}

// Output joins the buffered instructions, one per line, with a trailing
// newline and no blank lines between instructions (spec.md 6).
func (e *Emitter) Output() string {
	if len(e.lines) == 0 {
		return ""
	}
	return strings.Join(e.lines, "\n") + "\n"
}

// Lines returns the buffered instructions without joining them, for tests
// that want to assert on individual lines.
func (e *Emitter) Lines() []string {
	return append([]string(nil), e.lines...)
}

// Reset clears the buffer and both counters, returning the Emitter to its
// New() state. generate_compiler never needs this -- it exists so a single
// Emitter value can be reused across repeated compile calls instead of
// allocating a fresh one each time, should a caller prefer that.
func (e *Emitter) Reset() {
	e.tempCount = 0
	e.labelCount = 0
	e.lines = nil
}
