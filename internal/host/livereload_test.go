package host_test

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/pohlang/internal/host"
)

func Test_EnableHotReload_GenerationBumpsOnFileChange(t *testing.T) {
	s := host.New()
	server, err := s.CreateWebServer(18125)
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, s.EnableHotReload(dir, server))

	go s.StartServer(server)

	resp := waitFor(t, "http://127.0.0.1:18125/__reload_check")
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var first struct{ Generation uint64 }
	require.NoError(t, json.Unmarshal(body, &first))
	assert.Equal(t, uint64(0), first.Generation)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.poh"), []byte("x"), 0o644))

	deadline := time.Now().Add(2 * time.Second)
	var second struct{ Generation uint64 }
	for time.Now().Before(deadline) {
		resp2, err := http.Get("http://127.0.0.1:18125/__reload_check")
		require.NoError(t, err)
		b, _ := io.ReadAll(resp2.Body)
		resp2.Body.Close()
		require.NoError(t, json.Unmarshal(b, &second))
		if second.Generation > first.Generation {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	assert.Greater(t, second.Generation, first.Generation)
}

func Test_EnableHotReload_RequiresWebServerHandle(t *testing.T) {
	s := host.New()
	err := s.EnableHotReload(t.TempDir(), nil)
	assert.Error(t, err)
}
