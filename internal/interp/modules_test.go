package interp_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/pohlang/internal/host"
	"github.com/jcorbin/pohlang/internal/interp"
	"github.com/jcorbin/pohlang/internal/parser"
)

func Test_ImportLocal_RunsModuleOnceRelativeToImportingFile(t *testing.T) {
	dir := t.TempDir()
	helperPath := filepath.Join(dir, "helper.poh")
	mainPath := filepath.Join(dir, "main.poh")

	require.NoError(t, os.WriteFile(helperPath,
		[]byte("Start Program\nSet greeting to \"hi\"\nEnd Program"), 0o644))
	require.NoError(t, os.WriteFile(mainPath,
		[]byte("Start Program\nimport \"helper\"\nWrite greeting\nEnd Program"), 0o644))

	src, err := os.ReadFile(mainPath)
	require.NoError(t, err)
	prog, err := parser.Parse(mainPath, string(src))
	require.NoError(t, err)

	var out bytes.Buffer
	in := interp.New(host.New(), interp.WithOutput(&out))
	require.NoError(t, in.Run(mainPath, prog))
	assert.Equal(t, "hi\n", out.String())
}

func Test_ImportLocal_CircularImportIsError(t *testing.T) {
	dir := t.TempDir()
	aPath := filepath.Join(dir, "a.poh")
	bPath := filepath.Join(dir, "b.poh")

	require.NoError(t, os.WriteFile(aPath,
		[]byte("Start Program\nimport \"b\"\nEnd Program"), 0o644))
	require.NoError(t, os.WriteFile(bPath,
		[]byte("Start Program\nimport \"a\"\nEnd Program"), 0o644))

	src, err := os.ReadFile(aPath)
	require.NoError(t, err)
	prog, err := parser.Parse(aPath, string(src))
	require.NoError(t, err)

	in := interp.New(host.New())
	err = in.Run(aPath, prog)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Circular import")
}
