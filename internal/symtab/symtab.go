// Package symtab is the semantic checker (spec.md C6): a single flat symbol
// table plus undeclared-variable detection with Levenshtein-distance
// suggestions.
//
// Grounded on the flat-map declaration tracking in
// github.com/dekarrin/tunaq's internal/ictiobus/types (SymbolTable-shaped
// helpers around Token/ParseTree), generalized here from tunaq's grammar
// bookkeeping to a PL/0-style variable table with insertion-order error
// listing (spec.md 9: "deterministic choice must be documented
// (insertion order recommended)").
package symtab

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/dekarrin/ictogen/internal/icerrors"
)

// caseFold normalizes a name for case-insensitive comparison. Grounded on
// the teacher's golang.org/x/text dependency (declared in its go.mod but
// otherwise unexercised by ictiobus itself); cases.Fold is the library's
// documented case-insensitive-compare primitive, used here instead of
// strings.ToLower so the suggestion lookup handles more than ASCII casing.
var caseFold = cases.Fold()

const undeclaredSuggestionThreshold = 2

// Entry is one declared identifier.
type Entry struct {
	Name      string
	FirstLine int
}

// Table is a single flat, unscoped symbol table. The zero value is ready to
// use.
type Table struct {
	entries map[string]Entry
	order   []string // insertion order, for deterministic error listings
}

// New returns an empty symbol table.
func New() *Table {
	return &Table{entries: map[string]Entry{}}
}

// Declare inserts name if it is not already present (spec.md 3:
// "re-declaration is silently idempotent"). Returns true if this call
// actually added a new entry.
func (t *Table) Declare(name string, line int) bool {
	if t.entries == nil {
		t.entries = map[string]Entry{}
	}
	if _, ok := t.entries[name]; ok {
		return false
	}
	t.entries[name] = Entry{Name: name, FirstLine: line}
	t.order = append(t.order, name)
	return true
}

// Has reports whether name has been declared.
func (t *Table) Has(name string) bool {
	_, ok := t.entries[name]
	return ok
}

// Names returns every declared name in insertion order.
func (t *Table) Names() []string {
	return append([]string(nil), t.order...)
}

// CheckUse validates that name, referenced at line/col on sourceLine, is
// declared. requireDeclaration mirrors the grammar-rule metadata flag
// REQUIRE_EXPLICIT_DECLARATION; when false, undeclared uses are never
// flagged (the language treats first assignment as implicit declaration,
// handled by the caller invoking Declare instead of CheckUse for assignment
// targets).
func (t *Table) CheckUse(name string, line, col int, sourceLine string, requireDeclaration bool) error {
	if !requireDeclaration || t.Has(name) {
		return nil
	}
	return icerrors.AtPosition(icerrors.KindSemantic, line, col, sourceLine, t.suggestionMessage(name))
}

// suggestionMessage builds the technical message for an undeclared-name
// error: the closest declared name if within undeclaredSuggestionThreshold
// edits, otherwise the full list of declared names.
func (t *Table) suggestionMessage(name string) string {
	closest, dist, ok := t.closest(name)

	var sb strings.Builder
	fmt.Fprintf(&sb, "undeclared variable %q", name)
	if ok && dist <= undeclaredSuggestionThreshold {
		fmt.Fprintf(&sb, "; did you mean %q?", closest)
	} else if len(t.order) > 0 {
		fmt.Fprintf(&sb, "; declared names are: %s", strings.Join(t.order, ", "))
	}
	return sb.String()
}

// closest returns the declared name with the smallest case-insensitive
// Levenshtein distance to name, and that distance.
func (t *Table) closest(name string) (string, int, bool) {
	if len(t.order) == 0 {
		return "", 0, false
	}

	lowered := caseFold.String(name)
	best := t.order[0]
	bestDist := levenshtein(lowered, caseFold.String(t.order[0]))

	for _, candidate := range t.order[1:] {
		d := levenshtein(lowered, caseFold.String(candidate))
		if d < bestDist {
			bestDist = d
			best = candidate
		}
	}
	return best, bestDist, true
}

// levenshtein computes the edit distance between a and b using the classic
// two-row dynamic-programming recurrence (spec.md 4.6/9: O(|a|*|b|) time,
// O(min(|a|,|b|)) space).
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) < len(rb) {
		ra, rb = rb, ra
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost
			curr[j] = min3(del, ins, sub)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
