package perr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jcorbin/pohlang/internal/perr"
)

func Test_Error_BasicForm(t *testing.T) {
	e := perr.New(perr.TypeError, "expected %s, got %s", "number", "string")
	assert.Equal(t, "[TypeError] expected number, got string", e.Error())
}

func Test_Error_FormatWithTrace(t *testing.T) {
	e := perr.New(perr.MathError, "division by zero")
	e.WithFrame("divide", "main.poh", 4)
	e.WithFrame("main", "main.poh", 10)

	got := e.FormatWithTrace()
	assert.Contains(t, got, "[MathError] Error occurred: a math error - division by zero")
	assert.Contains(t, got, "Call stack:")
	assert.Contains(t, got, "in main at main.poh:10")
	assert.Contains(t, got, "in divide at main.poh:4")
}

func Test_NewCustom_TypeName(t *testing.T) {
	e := perr.NewCustom("OutOfStock", "no more widgets")
	assert.Equal(t, "OutOfStock", e.TypeName())
	assert.Equal(t, "[OutOfStock] no more widgets", e.Error())
}

func Test_ExtractKind(t *testing.T) {
	kind, rest := perr.ExtractKind("[FileError] could not open file")
	assert.Equal(t, "FileError", kind)
	assert.Equal(t, "could not open file", rest)

	kind, rest = perr.ExtractKind("no marker here")
	assert.Equal(t, "", kind)
	assert.Equal(t, "no marker here", rest)
}

func Test_MatchesType(t *testing.T) {
	e := perr.New(perr.NetworkError, "timed out")
	assert.True(t, perr.MatchesType(e, ""))
	assert.True(t, perr.MatchesType(e, "networkerror"))
	assert.False(t, perr.MatchesType(e, "TypeError"))
}
