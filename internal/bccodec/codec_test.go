package bccodec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/pohlang/internal/bccodec"
	"github.com/jcorbin/pohlang/internal/bytecode"
	"github.com/jcorbin/pohlang/internal/compiler"
	"github.com/jcorbin/pohlang/internal/parser"
)

func compileSample(t *testing.T) *bytecode.Chunk {
	t.Helper()
	prog, err := parser.Parse("sample.poh", "Start Program\nWrite 1 plus 2\nEnd Program")
	require.NoError(t, err)
	chunk, err := compiler.Compile(prog)
	require.NoError(t, err)
	return chunk
}

func Test_EncodeDecode_RoundTripsConstantsAndCode(t *testing.T) {
	chunk := compileSample(t)
	data, err := bccodec.Encode(chunk)
	require.NoError(t, err)

	decoded, err := bccodec.Decode(data)
	require.NoError(t, err)

	assert.Equal(t, chunk.Version, decoded.Version)
	assert.Equal(t, len(chunk.Code), len(decoded.Code))
	assert.Equal(t, chunk.Pool.All(), decoded.Pool.All())
}

func Test_Decode_RejectsBadMagic(t *testing.T) {
	_, err := bccodec.Decode([]byte("NOPE0000"))
	assert.Error(t, err)
}

func Test_Decode_RejectsTruncatedData(t *testing.T) {
	chunk := compileSample(t)
	data, err := bccodec.Encode(chunk)
	require.NoError(t, err)

	_, err = bccodec.Decode(data[:len(data)/2])
	assert.Error(t, err)
}
