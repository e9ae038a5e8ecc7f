package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/pohlang/internal/parser"
)

func Test_Parse_RequiresStartProgram(t *testing.T) {
	_, err := parser.Parse("x.poh", "Write 1\nEnd Program")
	assert.Error(t, err)
}

func Test_Parse_RequiresEndProgram(t *testing.T) {
	_, err := parser.Parse("x.poh", "Start Program\nWrite 1")
	assert.Error(t, err)
}

func Test_Parse_RejectsContentAfterEndProgram(t *testing.T) {
	_, err := parser.Parse("x.poh", "Start Program\nWrite 1\nEnd Program\nWrite 2")
	assert.Error(t, err)
}

func Test_Parse_IgnoresBlankLinesAndComments(t *testing.T) {
	src := "\n// leading comment\nStart Program\n\n# another comment\nWrite 1 plus 2\n\nEnd Program\n"
	prog, err := parser.Parse("x.poh", src)
	require.NoError(t, err)
	assert.Len(t, prog.Stmts, 1)
}

func Test_Parse_DesugarsIncreaseAndDecrease(t *testing.T) {
	prog, err := parser.Parse("x.poh", "Start Program\nSet x to 5\nIncrease x by 3\nEnd Program")
	require.NoError(t, err)
	require.Len(t, prog.Stmts, 2)
	// Increase desugars at parse time to an ordinary Set (§4.1), so the
	// parser never emits a distinct Increase/Decrease AST node.
	assert.IsType(t, prog.Stmts[0], prog.Stmts[1])
}
