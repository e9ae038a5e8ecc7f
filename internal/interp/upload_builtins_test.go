package interp_test

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/pohlang/internal/host"
	"github.com/jcorbin/pohlang/internal/interp"
	"github.com/jcorbin/pohlang/internal/parser"
)

// Test_ParseUpload_ExposesMultipartFieldsAsADict drives parse_upload
// through a real multipart/form-data POST (SPEC_FULL.md §4's restored
// upload-parsing feature), confirming a plain form field round-trips
// through the opaque request handle into an indexable dict value.
func Test_ParseUpload_ExposesMultipartFieldsAsADict(t *testing.T) {
	src := "Start Program\n" +
		"Make echo with req\n" +
		"Set form to parse_upload()\n" +
		`Return form["note"]` + "\n" +
		"End\n" +
		`Set server to create_web_server(18223)` + "\n" +
		`Call add_route with server, "/upload", "POST", echo` + "\n" +
		"Call start_server with server\n" +
		"End Program"

	prog, err := parser.Parse("upload.poh", src)
	require.NoError(t, err)

	in := interp.New(host.New())
	done := make(chan error, 1)
	go func() { done <- in.Run("upload.poh", prog) }()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	require.NoError(t, w.WriteField("note", "hello upload"))
	require.NoError(t, w.Close())

	var resp *http.Response
	var postErr error
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		req, err := http.NewRequest("POST", "http://127.0.0.1:18223/upload", bytes.NewReader(body.Bytes()))
		require.NoError(t, err)
		req.Header.Set("Content-Type", w.FormDataContentType())
		resp, postErr = http.DefaultClient.Do(req)
		if postErr == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	require.NoError(t, postErr)
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "hello upload", string(respBody))
}
