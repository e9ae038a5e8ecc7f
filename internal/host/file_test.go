package host_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/pohlang/internal/host"
)

func Test_File_WriteReadAppendDelete(t *testing.T) {
	s := host.New()
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")

	require.NoError(t, s.WriteFile(path, "hello"))
	assert.True(t, s.FileExists(path))

	got, err := s.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", got)

	require.NoError(t, s.AppendFile(path, " world"))
	got, err = s.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello world", got)

	require.NoError(t, s.DeleteFile(path))
	assert.False(t, s.FileExists(path))
}

func Test_File_CopyMoveListDirectory(t *testing.T) {
	s := host.New()
	dir := t.TempDir()
	src := filepath.Join(dir, "a.txt")
	require.NoError(t, s.WriteFile(src, "data"))

	copyDst := filepath.Join(dir, "b.txt")
	require.NoError(t, s.CopyFile(src, copyDst))
	got, err := s.ReadFile(copyDst)
	require.NoError(t, err)
	assert.Equal(t, "data", got)

	sub := filepath.Join(dir, "sub")
	require.NoError(t, s.CreateDirectory(sub))
	moveDst := filepath.Join(sub, "c.txt")
	require.NoError(t, s.MoveFile(copyDst, moveDst))
	assert.False(t, s.FileExists(copyDst))
	assert.True(t, s.FileExists(moveDst))

	names, err := s.ListDirectory(dir)
	require.NoError(t, err)
	assert.Contains(t, names, "a.txt")
	assert.Contains(t, names, "sub")
}

func Test_File_ReadLines(t *testing.T) {
	s := host.New()
	path := filepath.Join(t.TempDir(), "lines.txt")
	require.NoError(t, s.WriteFile(path, "one\ntwo\nthree"))

	lines, err := s.ReadLines(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two", "three"}, lines)
}
