package compiler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/pohlang/internal/bytecode"
	"github.com/jcorbin/pohlang/internal/compiler"
	"github.com/jcorbin/pohlang/internal/parser"
)

func compile(t *testing.T, src string) *bytecode.Chunk {
	t.Helper()
	prog, err := parser.Parse("test.poh", src)
	require.NoError(t, err)
	chunk, err := compiler.Compile(prog)
	require.NoError(t, err)
	return chunk
}

func Test_Compile_EndsWithHalt(t *testing.T) {
	chunk := compile(t, "Start Program\nWrite 1\nEnd Program")
	require.NotEmpty(t, chunk.Code)
	assert.Equal(t, bytecode.OpHalt, chunk.Code[len(chunk.Code)-1].Op)
}

func Test_Compile_RepeatedLiteralsShareOneConstantSlot(t *testing.T) {
	chunk := compile(t, "Start Program\nWrite 5\nWrite 5\nEnd Program")
	loadConsts := 0
	var firstOperand, secondOperand int32
	seen := 0
	for _, ins := range chunk.Code {
		if ins.Op == bytecode.OpLoadConst {
			loadConsts++
			if seen == 0 {
				firstOperand = ins.Operand
			} else if seen == 1 {
				secondOperand = ins.Operand
			}
			seen++
		}
	}
	assert.Equal(t, 2, loadConsts)
	assert.Equal(t, firstOperand, secondOperand)
}

func Test_Compile_IfBlockEmitsJumpIfFalse(t *testing.T) {
	chunk := compile(t, "Start Program\nIf 1 is equal to 1\nWrite 1\nEnd If\nEnd Program")
	found := false
	for _, ins := range chunk.Code {
		if ins.Op == bytecode.OpJumpIfFalse {
			found = true
			break
		}
	}
	assert.True(t, found)
}

func Test_Compile_WhileLoopEmitsLoopBackJump(t *testing.T) {
	chunk := compile(t, "Start Program\nSet x to 0\nWhile x is less than 3\nIncrease x by 1\nEnd\nEnd Program")
	foundJump, foundLoop := false, false
	for _, ins := range chunk.Code {
		switch ins.Op {
		case bytecode.OpJumpIfFalse:
			foundJump = true
		case bytecode.OpJump, bytecode.OpLoop:
			foundLoop = true
		}
	}
	assert.True(t, foundJump)
	assert.True(t, foundLoop)
}

func Test_Compile_FunctionDefinitionPopulatesFuncProtoTable(t *testing.T) {
	chunk := compile(t, "Start Program\nMake double with n\nReturn n times 2\nEnd\nEnd Program")
	require.Len(t, chunk.Funcs, 1)
	assert.Equal(t, "double", chunk.Funcs[0].Name)
	assert.Equal(t, []string{"n"}, chunk.Funcs[0].ParamNames)
}
