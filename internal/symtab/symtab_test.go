package symtab_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/ictogen/internal/icerrors"
	"github.com/dekarrin/ictogen/internal/symtab"
)

func Test_Table_DeclareAndHas(t *testing.T) {
	assert := assert.New(t)

	tbl := symtab.New()
	assert.True(tbl.Declare("x", 1))
	assert.False(tbl.Declare("x", 2), "re-declaration is silently idempotent")
	assert.True(tbl.Has("x"))
	assert.False(tbl.Has("y"))
	assert.Equal([]string{"x"}, tbl.Names())
}

func Test_Table_CheckUse_NotRequired(t *testing.T) {
	assert := assert.New(t)

	tbl := symtab.New()
	err := tbl.CheckUse("y", 1, 1, "y = 1;", false)
	assert.NoError(err, "undeclared uses are never flagged when declaration is not required")
}

func Test_Table_CheckUse_RequiredAndMissing(t *testing.T) {
	assert := assert.New(t)

	tbl := symtab.New()
	tbl.Declare("count", 1)
	tbl.Declare("total", 2)

	err := tbl.CheckUse("coutn", 3, 5, "coutn = 1;", true)
	assert.Error(err)
	assert.Equal(icerrors.KindSemantic, icerrors.KindOf(err))
	assert.Contains(icerrors.Diagnostic(err), `"coutn"`)
	assert.Contains(icerrors.Diagnostic(err), `"count"`, "a one-transposition typo should suggest the close match")

	line, col, ok := icerrors.Position(err)
	assert.True(ok)
	assert.Equal(3, line)
	assert.Equal(5, col)
}

func Test_Table_CheckUse_NoCloseMatch_ListsAll(t *testing.T) {
	assert := assert.New(t)

	tbl := symtab.New()
	tbl.Declare("alpha", 1)
	tbl.Declare("beta", 2)

	err := tbl.CheckUse("zzzzzzzzzz", 1, 1, "zzzzzzzzzz = 1;", true)
	assert.Error(err)
	diag := icerrors.Diagnostic(err)
	assert.Contains(diag, "alpha")
	assert.Contains(diag, "beta")
}

func Test_Table_CheckUse_CaseInsensitiveSuggestion(t *testing.T) {
	assert := assert.New(t)

	tbl := symtab.New()
	tbl.Declare("Count", 1)

	err := tbl.CheckUse("count", 2, 1, "count = 1;", true)
	assert.Error(err)
	assert.Contains(icerrors.Diagnostic(err), `"Count"`)
}
