package bytecode_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jcorbin/pohlang/internal/bytecode"
)

func Test_ConstantPool_DedupesEqualLiterals(t *testing.T) {
	pool := bytecode.NewConstantPool()
	a := pool.AddNumber(1)
	b := pool.AddNumber(1)
	c := pool.AddNumber(2)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, 2, pool.Len())

	s1 := pool.AddString("hi")
	s2 := pool.AddString("hi")
	assert.Equal(t, s1, s2)

	bl1 := pool.AddBoolean(true)
	bl2 := pool.AddBoolean(true)
	bl3 := pool.AddBoolean(false)
	assert.Equal(t, bl1, bl2)
	assert.NotEqual(t, bl1, bl3)

	n1 := pool.AddNull()
	n2 := pool.AddNull()
	assert.Equal(t, n1, n2)
}

func Test_ConstantPool_GetOutOfRangeIsFalse(t *testing.T) {
	pool := bytecode.NewConstantPool()
	pool.AddNumber(1)
	_, ok := pool.Get(5)
	assert.False(t, ok)
	got, ok := pool.Get(0)
	assert.True(t, ok)
	assert.Equal(t, bytecode.ConstNumber, got.Kind)
	assert.Equal(t, float64(1), got.Num)
}

func Test_Chunk_EmitReturnsIndex(t *testing.T) {
	c := bytecode.NewChunk()
	i0 := c.Emit(bytecode.Instruction{Op: bytecode.OpLoadConst, Operand: 0})
	i1 := c.Emit(bytecode.Instruction{Op: bytecode.OpHalt})
	assert.Equal(t, 0, i0)
	assert.Equal(t, 1, i1)
	assert.Len(t, c.Code, 2)
}

func Test_Chunk_PatchJump_ComputesRelativeOffset(t *testing.T) {
	c := bytecode.NewChunk()
	jmp := c.Emit(bytecode.Instruction{Op: bytecode.OpJumpIfFalse})
	c.Emit(bytecode.Instruction{Op: bytecode.OpLoadConst})
	c.Emit(bytecode.Instruction{Op: bytecode.OpHalt})
	c.PatchJump(jmp)
	// offset = len(Code) - pos - 1 = 3 - 0 - 1 = 2
	assert.Equal(t, int32(2), c.Code[jmp].Operand)
}

func Test_Chunk_PatchJumpTo_TargetsExplicitIndex(t *testing.T) {
	c := bytecode.NewChunk()
	jmp := c.Emit(bytecode.Instruction{Op: bytecode.OpJump})
	c.Emit(bytecode.Instruction{Op: bytecode.OpLoadConst})
	c.Emit(bytecode.Instruction{Op: bytecode.OpLoadConst})
	c.PatchJumpTo(jmp, 1)
	assert.Equal(t, int32(0), c.Code[jmp].Operand)
}

func Test_Op_Name_MatchesMnemonicTable(t *testing.T) {
	assert.Equal(t, "Halt", bytecode.OpHalt.Name())
	assert.Equal(t, "LoadConst", bytecode.OpLoadConst.Name())
}
