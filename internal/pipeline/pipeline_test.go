package pipeline_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/ictogen/internal/icerrors"
	"github.com/dekarrin/ictogen/internal/pipeline"
	"github.com/dekarrin/ictogen/internal/rulesfile"
)

// lexerRuleText and grammarRuleText describe a small PL/0-style language:
// variable declarations, assignment, while/write/read, and arithmetic
// expressions with the usual +,-,*,/ precedence and parenthesization --
// exactly the worked-example language spec.md §8's end-to-end scenarios are
// written against.
const lexerRuleText = `
VAR = var
WHILE = while
READ = read
WRITE = write
ID = [a-zA-Z_][a-zA-Z0-9_]*
NUM = [0-9]+
ASSIGN = =
( = \(
) = \)
{ = \{
} = \}
; = ;
, = ,
+ = \+
- = \-
* = \*
/ = \/
< = <
`

const grammarRuleText = `
# @REQUIRE_EXPLICIT_DECLARATION: true
# @KEYWORD_WRITE: WRITE

Program -> StmtList

StmtList -> Stmt StmtList |

Stmt -> 'VAR' Decl ';'
Stmt -> 'ID' 'ASSIGN' E ';'
Stmt -> 'WRITE' '(' E ')' ';'
Stmt -> 'READ' 'ID' ';'
Stmt -> 'WHILE' '(' C ')' Stmt
Stmt -> '{' StmtList '}'

Decl -> 'ID' IDListTail
IDListTail -> ',' 'ID' IDListTail |

C -> E '<' E

E -> T ETail
ETail -> '+' T ETail | '-' T ETail |

T -> F TTail
TTail -> '*' F TTail | '/' F TTail |

F -> '(' E ')'
F -> 'ID'
F -> 'NUM'
`

func buildTestCompiler(t *testing.T) *pipeline.Compiler {
	t.Helper()

	lexerRules, err := rulesfile.ParseLexerRules(lexerRuleText)
	assert.NoError(t, err)

	grammarRules, meta, err := rulesfile.ParseGrammarRules(grammarRuleText)
	assert.NoError(t, err)

	compiler, err := pipeline.GenerateCompiler(lexerRules, grammarRules, meta)
	assert.NoError(t, err)
	assert.Empty(t, compiler.Defects)

	return compiler
}

// Test_Compile_WorkedExamples exercises spec.md §8 scenarios 1-4: simple
// assignment, operator precedence, parenthesization, and a full
// declare/assign/while/write/read program, asserting the exact TAC text
// (temps and labels monotonic from a fresh compile call).
func Test_Compile_WorkedExamples(t *testing.T) {
	compiler := buildTestCompiler(t)

	testCases := []struct {
		name   string
		source string
		want   string
	}{
		{
			name:   "simple assignment",
			source: "x = 1 + 2 ;",
			want:   "t1 = 1 + 2\nx = t1\n",
		},
		{
			name:   "operator precedence",
			source: "x = 1 + 2 * 3 ;",
			want:   "t1 = 2 * 3\nt2 = 1 + t1\nx = t2\n",
		},
		{
			name:   "parenthesized expression",
			source: "x = ( 1 + 2 ) * 3 ;",
			want:   "t1 = 1 + 2\nt2 = t1 * 3\nx = t2\n",
		},
		{
			name: "while loop with declared variable, write, and read",
			source: `var i ;
i = 0 ;
while ( i < 3 ) { write(i); i = i + 1 ; }`,
			want: "i = 0\n" +
				"L1:\n" +
				"t1 = i < 3\n" +
				"t2 = not t1\n" +
				"if t2 goto L2\n" +
				"param i\n" +
				"call write, 1\n" +
				"t3 = i + 1\n" +
				"i = t3\n" +
				"goto L1\n" +
				"L2:\n",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			got, err := compiler.Compile(tc.source)
			assert.NoError(err)
			assert.Equal(tc.want, got)
		})
	}
}

// Test_Compile_LexicalError exercises spec.md §8 scenario 5: an
// unrecognized character aborts compilation with a position-carrying
// lexical error.
func Test_Compile_LexicalError(t *testing.T) {
	assert := assert.New(t)
	compiler := buildTestCompiler(t)

	_, err := compiler.Compile("x = 1 + @ ;")
	assert.Error(err)
	assert.Equal(icerrors.KindLexical, icerrors.KindOf(err))

	line, col, ok := icerrors.Position(err)
	assert.True(ok)
	assert.Equal(1, line)
	assert.Equal(9, col)
}

// Test_Compile_SemanticError exercises spec.md §8 scenario 6: referencing an
// undeclared variable under REQUIRE_EXPLICIT_DECLARATION fails after parsing
// with a suggestion naming the closest declared name.
func Test_Compile_SemanticError(t *testing.T) {
	assert := assert.New(t)
	compiler := buildTestCompiler(t)

	_, err := compiler.Compile("var x ; y = 1 ;")
	assert.Error(err)
	assert.Equal(icerrors.KindSemantic, icerrors.KindOf(err))
	assert.Contains(icerrors.Diagnostic(err), `"y"`)
	assert.Contains(icerrors.Diagnostic(err), `"x"`)
}

// Test_Compile_EmptySource exercises spec.md §8's empty-source boundary
// behavior: tokenizing empty input yields just EOF, and since Program does
// not derive ε here (StmtList does, but Program -> StmtList still requires
// at least reaching EOF immediately after), an empty source compiles to
// empty TAC.
func Test_Compile_EmptySource(t *testing.T) {
	assert := assert.New(t)
	compiler := buildTestCompiler(t)

	got, err := compiler.Compile("")
	assert.NoError(err)
	assert.Equal("", got)
}

// Test_Compile_Determinism exercises spec.md §8's determinism invariant:
// recompiling the same source from the same built Compiler yields identical
// TAC, with temp/label counters reset each call rather than carried over.
func Test_Compile_Determinism(t *testing.T) {
	assert := assert.New(t)
	compiler := buildTestCompiler(t)

	const source = "x = 1 + 2 * 3 ;"
	first, err := compiler.Compile(source)
	assert.NoError(err)
	second, err := compiler.Compile(source)
	assert.NoError(err)
	assert.Equal(first, second)
}
