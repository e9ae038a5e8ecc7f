package host_test

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/pohlang/internal/host"
)

func Test_ServeStatic_ServesFilesUnderPrefix(t *testing.T) {
	s := host.New()
	server, err := s.CreateWebServer(18126)
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>hi</h1>"), 0o644))
	require.NoError(t, s.ServeStatic(server, "/static/", dir))

	go s.StartServer(server)

	resp := waitFor(t, "http://127.0.0.1:18126/static/index.html")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "<h1>hi</h1>", string(body))
}

func Test_ServeStatic_UnknownDirectoryIsError(t *testing.T) {
	s := host.New()
	server, err := s.CreateWebServer(18127)
	require.NoError(t, err)
	assert.Error(t, s.ServeStatic(server, "/static/", filepath.Join(t.TempDir(), "missing")))
}
