package interp_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/pohlang/internal/host"
	"github.com/jcorbin/pohlang/internal/interp"
	"github.com/jcorbin/pohlang/internal/parser"
)

// runProgram parses and tree-walks src, returning stdout and any
// top-level error.
func runProgram(t *testing.T, src string) (string, error) {
	t.Helper()
	prog, err := parser.Parse("test.poh", src)
	require.NoError(t, err)

	var out bytes.Buffer
	in := interp.New(host.New(), interp.WithOutput(&out))
	err = in.Run("test.poh", prog)
	return out.String(), err
}

// These scenarios are lifted directly from the language's own worked
// examples, so the tree interpreter's observable behavior is pinned to
// the documented contract rather than to implementation detail.
func Test_WorkedScenarios(t *testing.T) {
	for _, tc := range []struct {
		name string
		src  string
		want string
	}{
		{
			name: "arithmetic precedence",
			src:  "Start Program\nWrite 10 plus 5 times 2\nEnd Program",
			want: "20\n",
		},
		{
			name: "inline function with default",
			src: "Start Program\n" +
				`Define function greet with parameter name defaulting to "World" as "Hello " plus name` + "\n" +
				"Write greet\n" +
				`Write greet with "Ada"` + "\n" +
				"End Program",
			want: "Hello World\nHello Ada\n",
		},
		{
			name: "block function with early return",
			src: "Start Program\n" +
				"Make add with a, b set to 1\n" +
				"    Return a plus b\n" +
				"End\n" +
				"Write add(1, 2)\n" +
				"Write add(5)\n" +
				"End Program",
			want: "3\n6\n",
		},
		{
			name: "closure capture",
			src: "Start Program\n" +
				"Set base to 10\n" +
				"Make adder with y Write base plus y\n" +
				"Write adder(5)\n" +
				"End Program",
			want: "15\n",
		},
		{
			name: "bytecode pipeline equivalence program runs under the tree interpreter too",
			src: "Start Program\n" +
				"Set x to 15\n" +
				`If x is greater than 10 Write "big" Otherwise Write "small"` + "\n" +
				"End Program",
			want: "big\n",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			out, err := runProgram(t, tc.src)
			require.NoError(t, err)
			assert.Equal(t, tc.want, out)
		})
	}
}

func Test_TryCatch_TypedFilterAndBoundVariable(t *testing.T) {
	src := "Start Program\n" +
		"Set x to 10\n" +
		"try\n" +
		"    Set y to x divided by 0\n" +
		"if error of type MathError as msg\n" +
		`    Write "caught: " plus msg` + "\n" +
		"end try\n" +
		"End Program"

	out, err := runProgram(t, src)
	require.NoError(t, err)
	assert.Contains(t, out, "caught:")
}

func Test_IncreaseDecrease_DesugarToSetPlusMinus(t *testing.T) {
	src := "Start Program\n" +
		"Set x to 5\n" +
		"Increase x by 3\n" +
		"Decrease x by 1\n" +
		"Write x\n" +
		"End Program"

	out, err := runProgram(t, src)
	require.NoError(t, err)
	assert.Equal(t, "7\n", out)
}

func Test_DivisionByZero_IsMathError(t *testing.T) {
	src := "Start Program\nWrite 1 divided by 0\nEnd Program"
	_, err := runProgram(t, src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "[MathError]")
}
