package lexutil_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jcorbin/pohlang/internal/lexutil"
)

func Test_TopLevelSplit_IgnoresSeparatorsInsideQuotesAndBrackets(t *testing.T) {
	before, after, ok := lexutil.TopLevelSplit(`"a, b", c`, ",")
	assert.True(t, ok)
	assert.Equal(t, `"a, b"`, before)
	assert.Equal(t, " c", after)

	_, _, ok = lexutil.TopLevelSplit(`[1, 2, 3]`, ",")
	assert.False(t, ok, "commas inside brackets are not top-level")
}

func Test_TopLevelSplitAll_SplitsEveryTopLevelSeparator(t *testing.T) {
	parts := lexutil.TopLevelSplitAll(`a, "b, c", [d, e]`, ",")
	assert.Equal(t, []string{`a`, ` "b, c"`, ` [d, e]`}, parts)
}

func Test_ScanIdentifier(t *testing.T) {
	ident, rest := lexutil.ScanIdentifier("greet(name)")
	assert.Equal(t, "greet", ident)
	assert.Equal(t, "(name)", rest)
}

func Test_ScanQuotedString(t *testing.T) {
	content, rest, ok := lexutil.ScanQuotedString(`"hello" plus x`)
	assert.True(t, ok)
	assert.Equal(t, "hello", content)
	assert.Equal(t, " plus x", rest)

	_, _, ok = lexutil.ScanQuotedString("no quote here")
	assert.False(t, ok)
}

func Test_Balanced(t *testing.T) {
	assert.True(t, lexutil.Balanced(`[1, 2, "a]b"]`))
	assert.False(t, lexutil.Balanced(`[1, 2`))
}
