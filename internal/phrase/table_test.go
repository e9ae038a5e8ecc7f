package phrase_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jcorbin/pohlang/internal/phrase"
)

func Test_Comparisons_LongestFirstOrdering(t *testing.T) {
	// The parser relies on a longest-match scan, so the ambiguous-prefix
	// comparisons must appear before their shorter prefixes.
	indexOf := func(text string) int {
		for i, e := range phrase.Comparisons {
			if e.Text == text {
				return i
			}
		}
		return -1
	}
	assert.Less(t, indexOf("is greater than or equal to"), indexOf("is greater than"))
	assert.Less(t, indexOf("is greater than"), indexOf("is"))
	assert.Less(t, indexOf("is not equal to"), indexOf("is"))
}

func Test_HasPrefixFold_CaseInsensitiveMatch(t *testing.T) {
	rest, ok := phrase.HasPrefixFold("Start Program", "start program")
	assert.True(t, ok)
	assert.Equal(t, "", rest)

	rest, ok = phrase.HasPrefixFold("WRITE 1 plus 2", "write")
	assert.True(t, ok)
	assert.Equal(t, " 1 plus 2", rest)

	_, ok = phrase.HasPrefixFold("short", "shorter than this")
	assert.False(t, ok)

	_, ok = phrase.HasPrefixFold("nope", "write")
	assert.False(t, ok)
}

func Test_UnaryPrefixBuiltins_CoverDocumentedPhrases(t *testing.T) {
	for _, phraseName := range []string{"count of", "total of", "sum of", "min of", "max of",
		"abs of", "round of", "floor of", "ceil of", "reverse of", "first in", "last in",
		"make uppercase", "make lowercase"} {
		builtin, ok := phrase.UnaryPrefixBuiltins[phraseName]
		assert.Truef(t, ok, "missing unary prefix builtin for %q", phraseName)
		assert.NotEmpty(t, builtin)
	}
}

func Test_BinaryBuiltins_CoverDocumentedForms(t *testing.T) {
	leads := map[string]string{}
	for _, f := range phrase.BinaryBuiltins {
		leads[f.Lead] = f.Mid
	}
	assert.Equal(t, "with", leads["join"])
	assert.Equal(t, "by", leads["split"])
	assert.Equal(t, "in", leads["contains"])
	assert.Equal(t, "from", leads["remove"])
	assert.Equal(t, "to", leads["append"])
}

func Test_TernaryBuiltins_InsertAtIn(t *testing.T) {
	require := phrase.TernaryBuiltins[0]
	assert.Equal(t, "insert", require.Lead)
	assert.Equal(t, "at", require.Mid1)
	assert.Equal(t, "in", require.Mid2)
	assert.Equal(t, "insert_at_in", require.Builtin)
}
