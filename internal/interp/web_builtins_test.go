package interp_test

import (
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/pohlang/internal/host"
	"github.com/jcorbin/pohlang/internal/interp"
	"github.com/jcorbin/pohlang/internal/parser"
)

// Test_WebBuiltins_EndToEnd drives create_web_server/add_route/
// start_server/get_path_param/html_response through a real program,
// confirming the interpreter only ever passes opaque handles across the
// host boundary (§1's non-goals) while still producing real HTTP
// behavior.
func Test_WebBuiltins_EndToEnd(t *testing.T) {
	src := "Start Program\n" +
		`Make greet with req Return html_response("hello " plus get_path_param("name"))` + "\n" +
		`Set server to create_web_server(18222)` + "\n" +
		`Call add_route with server, "/hello/{name}", "GET", greet` + "\n" +
		"Call start_server with server\n" +
		"End Program"

	prog, err := parser.Parse("web.poh", src)
	require.NoError(t, err)

	in := interp.New(host.New())
	done := make(chan error, 1)
	go func() { done <- in.Run("web.poh", prog) }()

	var resp *http.Response
	deadline := time.Now().Add(2 * time.Second)
	var getErr error
	for time.Now().Before(deadline) {
		resp, getErr = http.Get("http://127.0.0.1:18222/hello/ada")
		if getErr == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	require.NoError(t, getErr)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "hello ada", string(body))
}
