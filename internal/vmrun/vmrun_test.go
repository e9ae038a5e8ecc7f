package vmrun_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/pohlang/internal/bccodec"
	"github.com/jcorbin/pohlang/internal/compiler"
	"github.com/jcorbin/pohlang/internal/host"
	"github.com/jcorbin/pohlang/internal/parser"
	"github.com/jcorbin/pohlang/internal/vmrun"
)

// compileAndRun drives the same compile-then-run pipeline -compile/-vm
// use from the CLI, minus the .pbc round trip.
func compileAndRun(t *testing.T, src string) string {
	t.Helper()
	prog, err := parser.Parse("test.poh", src)
	require.NoError(t, err)
	chunk, err := compiler.Compile(prog)
	require.NoError(t, err)

	var out bytes.Buffer
	vm := vmrun.New(host.New(), vmrun.WithOutput(&out))
	_, err = vm.Run(chunk)
	require.NoError(t, err)
	return out.String()
}

// This is spec scenario 6 verbatim: the tree interpreter and the
// compile-then-VM pipeline must agree on the same program.
func Test_BytecodePipeline_MatchesTreeInterpreter(t *testing.T) {
	src := "Start Program\n" +
		"Set x to 15\n" +
		`If x is greater than 10 Write "big" Otherwise Write "small"` + "\n" +
		"End Program"

	assert.Equal(t, "big\n", compileAndRun(t, src))
}

func Test_ArithmeticAndFunctionCall(t *testing.T) {
	src := "Start Program\n" +
		"Make add with a, b set to 1\n" +
		"    Return a plus b\n" +
		"End\n" +
		"Write add(1, 2)\n" +
		"Write add(5)\n" +
		"End Program"

	assert.Equal(t, "3\n6\n", compileAndRun(t, src))
}

func Test_WhileLoop(t *testing.T) {
	src := "Start Program\n" +
		"Set i to 0\n" +
		"Set total to 0\n" +
		"while i is less than 5\n" +
		"    Set total to total plus i\n" +
		"    Increase i by 1\n" +
		"End\n" +
		"Write total\n" +
		"End Program"

	assert.Equal(t, "10\n", compileAndRun(t, src))
}

// Test_EncodeDecodeRoundTrip exercises the .pbc codec the -compile/-dump
// CLI flags use: a chunk compiled from source, encoded to bytes, decoded
// back, and run, must behave identically to running the chunk directly.
func Test_EncodeDecodeRoundTrip(t *testing.T) {
	src := "Start Program\nWrite 10 plus 5 times 2\nEnd Program"
	prog, err := parser.Parse("test.poh", src)
	require.NoError(t, err)
	chunk, err := compiler.Compile(prog)
	require.NoError(t, err)

	data, err := bccodec.Encode(chunk)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	decoded, err := bccodec.Decode(data)
	require.NoError(t, err)

	var out bytes.Buffer
	vm := vmrun.New(host.New(), vmrun.WithOutput(&out))
	_, err = vm.Run(decoded)
	require.NoError(t, err)
	assert.Equal(t, "20\n", out.String())
}

func Test_Disassemble_ListsConstantsAndCode(t *testing.T) {
	src := "Start Program\nWrite 10 plus 5 times 2\nEnd Program"
	prog, err := parser.Parse("test.poh", src)
	require.NoError(t, err)
	chunk, err := compiler.Compile(prog)
	require.NoError(t, err)

	var out bytes.Buffer
	bccodec.Disassemble(&out, "test.poh", chunk)

	listing := out.String()
	assert.Contains(t, listing, "chunk test.poh")
	assert.Contains(t, listing, "constants:")
	assert.Contains(t, listing, "code:")
	assert.Contains(t, listing, "Halt")
}
