package host_test

import (
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/pohlang/internal/host"
	"github.com/jcorbin/pohlang/internal/value"
)

// waitFor polls url until it responds or the deadline passes, since
// StartServer only returns once the listener itself fails.
func waitFor(t *testing.T, url string) *http.Response {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	var lastErr error
	for time.Now().Before(deadline) {
		resp, err := http.Get(url)
		if err == nil {
			return resp
		}
		lastErr = err
		time.Sleep(20 * time.Millisecond)
	}
	require.NoError(t, lastErr)
	return nil
}

func Test_WebServer_RouteAndPathParam(t *testing.T) {
	s := host.New()
	server, err := s.CreateWebServer(18123)
	require.NoError(t, err)

	err = s.AddRoute(server, "/hello/{name}", http.MethodGet, func(req *value.HandleRef) (value.Value, error) {
		name, err := s.GetPathParam(req, "name")
		if err != nil {
			return value.Value{}, err
		}
		return s.HTMLResponse("hello " + name), nil
	})
	require.NoError(t, err)

	go s.StartServer(server)

	resp := waitFor(t, "http://127.0.0.1:18123/hello/ada")
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "hello ada", string(body))
	assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))
}

func Test_WebServer_JSONAndErrorResponse(t *testing.T) {
	s := host.New()
	server, err := s.CreateWebServer(18124)
	require.NoError(t, err)

	err = s.AddRoute(server, "/json", http.MethodGet, func(req *value.HandleRef) (value.Value, error) {
		d := value.NewDict()
		d.Set("ok", value.Bool_(true))
		return s.JSONResponse(value.DictV(d), http.StatusCreated), nil
	})
	require.NoError(t, err)
	err = s.AddRoute(server, "/fail", http.MethodGet, func(req *value.HandleRef) (value.Value, error) {
		return s.ErrorResponse(http.StatusBadRequest, "nope"), nil
	})
	require.NoError(t, err)

	go s.StartServer(server)

	resp := waitFor(t, "http://127.0.0.1:18124/json")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `"ok":true`)

	resp2 := waitFor(t, "http://127.0.0.1:18124/fail")
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp2.StatusCode)
	body2, _ := io.ReadAll(resp2.Body)
	assert.Equal(t, "nope", string(body2))
}

func Test_AddRoute_RequiresWebServerKind(t *testing.T) {
	s := host.New()
	bogus := &value.HandleRef{Kind: "request"}
	err := s.AddRoute(bogus, "/x", http.MethodGet, func(*value.HandleRef) (value.Value, error) {
		return value.NullV(), nil
	})
	assert.Error(t, err)
}

func Test_GetPathParam_RejectsNonRequestHandle(t *testing.T) {
	s := host.New()
	_, err := s.GetPathParam(&value.HandleRef{Kind: "web_server"}, "x")
	assert.Error(t, err)
}
