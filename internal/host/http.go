package host

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/jcorbin/pohlang/internal/value"
)

// httpResponse is the Data payload carried by a "response"-kind HandleRef:
// the core treats it as opaque (§3), so the shape only matters to the
// request-dispatch glue below.
type httpResponse struct {
	status      int
	body        string
	contentType string
}

func responseValue(status int, body, contentType string) value.Value {
	return value.HandleV(&HandleRef{Kind: "response", ID: newHandleID(), Data: &httpResponse{
		status:      status,
		body:        body,
		contentType: contentType,
	}})
}

// HandleRef is a local alias for value.HandleRef, used only to shorten
// the composite literals below.
type HandleRef = value.HandleRef

// HTMLResponse builds an opaque "response" handle carrying an HTML body.
func (s *Services) HTMLResponse(body string) value.Value {
	return responseValue(http.StatusOK, body, "text/html; charset=utf-8")
}

// JSONResponse builds an opaque "response" handle carrying a JSON body at
// the given status code.
func (s *Services) JSONResponse(v value.Value, status int) value.Value {
	body, err := s.ToJSON(v)
	if err != nil {
		return responseValue(http.StatusInternalServerError, fmt.Sprintf(`{"error":%q}`, err.Error()), "application/json")
	}
	return responseValue(status, body, "application/json")
}

// ErrorResponse builds an opaque "response" handle carrying a plain-text
// error message at the given status code.
func (s *Services) ErrorResponse(status int, message string) value.Value {
	return responseValue(status, message, "text/plain; charset=utf-8")
}

// CreateWebServer allocates a chi router behind a new opaque handle; the
// server isn't listening until StartServer is called (§6).
func (s *Services) CreateWebServer(port int) (*value.HandleRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	srv := &webServer{port: port, router: chi.NewRouter()}
	ref := &value.HandleRef{Kind: "web_server", ID: newHandleID(), Data: srv}
	s.servers[ref.ID] = srv
	return ref, nil
}

func (s *Services) lookupServer(server *value.HandleRef) (*webServer, error) {
	if server == nil || server.Kind != "web_server" {
		return nil, fmt.Errorf("not a web server handle")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	srv, ok := s.servers[server.ID]
	if !ok {
		return nil, fmt.Errorf("unknown web server handle %q", server.ID)
	}
	return srv, nil
}

// AddRoute registers handler for method+path on server's router. Each
// request re-enters the interpreter via handler on its own goroutine
// (§5): the request itself is wrapped in an opaque "request" handle so
// the core never inspects *http.Request directly.
func (s *Services) AddRoute(server *value.HandleRef, path, method string, handler RouteHandler) error {
	srv, err := s.lookupServer(server)
	if err != nil {
		return err
	}
	wrapped := func(w http.ResponseWriter, r *http.Request) {
		req := &value.HandleRef{Kind: "request", ID: newHandleID(), Data: r}
		result, err := handler(req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeResponse(w, result)
	}
	srv.router.MethodFunc(method, path, wrapped)
	return nil
}

// writeResponse renders a builtin response value (§4.6's "response"
// handle, or any other value stringified as a plain-text fallback) to w.
func writeResponse(w http.ResponseWriter, v value.Value) {
	if v.Kind == value.Handle && v.Hdl != nil && v.Hdl.Kind == "response" {
		if resp, ok := v.Hdl.Data.(*httpResponse); ok {
			if resp.contentType != "" {
				w.Header().Set("Content-Type", resp.contentType)
			}
			if resp.status != 0 {
				w.WriteHeader(resp.status)
			}
			io.WriteString(w, resp.body)
			return
		}
	}
	io.WriteString(w, v.String())
}

// StartServer blocks serving server's router until the listener fails;
// the caller (the interpreter, itself on a dedicated goroutine when
// invoked from a route or from the program's top level) is expected to run this
// as the last statement of a program that wants to stay up.
func (s *Services) StartServer(server *value.HandleRef) error {
	srv, err := s.lookupServer(server)
	if err != nil {
		return err
	}
	addr := fmt.Sprintf(":%d", srv.port)
	return http.ListenAndServe(addr, srv.router)
}

// GetPathParam reads a chi URL parameter from the request wrapped by req.
func (s *Services) GetPathParam(req *value.HandleRef, name string) (string, error) {
	if req == nil || req.Kind != "request" {
		return "", fmt.Errorf("not a request handle")
	}
	r, ok := req.Data.(*http.Request)
	if !ok {
		return "", fmt.Errorf("request handle has no underlying *http.Request")
	}
	return chi.URLParam(r, name), nil
}

// ServeStatic mounts dir as a static-file tree under urlPrefix on
// server's router (SPEC_FULL.md §4's restored static-file-server
// feature), using chi's http.FileServer wiring.
func (s *Services) ServeStatic(server *value.HandleRef, urlPrefix, dir string) error {
	srv, err := s.lookupServer(server)
	if err != nil {
		return err
	}
	if _, err := os.Stat(dir); err != nil {
		return err
	}
	fs := http.StripPrefix(urlPrefix, http.FileServer(http.Dir(dir)))
	pattern := urlPrefix
	if pattern == "" || pattern[len(pattern)-1] != '/' {
		pattern += "/"
	}
	srv.router.Handle(pattern+"*", fs)
	return nil
}

// ParseUpload reads a multipart/form-data request body into a Value
// dictionary of field name -> uploaded file content (SPEC_FULL.md §4's
// restored upload-parsing feature). Non-file fields are included as
// plain strings.
func (s *Services) ParseUpload(req *value.HandleRef) (value.Value, error) {
	if req == nil || req.Kind != "request" {
		return value.Value{}, fmt.Errorf("not a request handle")
	}
	r, ok := req.Data.(*http.Request)
	if !ok {
		return value.Value{}, fmt.Errorf("request handle has no underlying *http.Request")
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return value.Value{}, err
	}
	d := value.NewDict()
	for key, vals := range r.MultipartForm.Value {
		if len(vals) > 0 {
			d.Set(key, value.Str(vals[0]))
		}
	}
	for key, headers := range r.MultipartForm.File {
		if len(headers) == 0 {
			continue
		}
		f, err := headers[0].Open()
		if err != nil {
			return value.Value{}, err
		}
		content, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return value.Value{}, err
		}
		d.Set(key, value.Str(string(content)))
	}
	return value.DictV(d), nil
}
