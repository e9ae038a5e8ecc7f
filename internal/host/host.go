// Package host defines the narrow interface the interpreter core calls
// through for every external-service builtin (§1's non-goals, §6's
// signature list): file I/O, JSON, and the HTTP/live-reload surface. The
// core never performs a syscall or opens a socket itself -- it only
// evaluates the invocation and stores the opaque handle or value the host
// returns.
package host

import "github.com/jcorbin/pohlang/internal/value"

// Services is implemented by internal/host's concrete Services and backs
// every builtin the core cannot itself perform.
type Services interface {
	FileServices
	JSONServices
	WebServices
}

// FileServices covers §6's file-I/O builtin list.
type FileServices interface {
	ReadFile(path string) (string, error)
	WriteFile(path, content string) error
	AppendFile(path, content string) error
	FileExists(path string) bool
	DeleteFile(path string) error
	CreateDirectory(path string) error
	ListDirectory(path string) ([]string, error)
	ReadLines(path string) ([]string, error)
	CopyFile(src, dst string) error
	MoveFile(src, dst string) error
}

// JSONServices covers §6's JSON builtin list, backed by gjson/sjson for
// path get/set/push.
type JSONServices interface {
	ParseJSON(s string) (value.Value, error)
	ToJSON(v value.Value) (string, error)
	ToPrettyJSON(v value.Value) (string, error)
	JSONGet(obj value.Value, path string) (value.Value, error)
	JSONSet(obj value.Value, path string, v value.Value) (value.Value, error)
	JSONPush(obj value.Value, path string, v value.Value) (value.Value, error)
	JSONLength(obj value.Value) (int, error)
	NewJSONObject() value.Value
	NewJSONArray() value.Value
}

// WebServices covers §6's HTTP-service opaque-handle builtins: the core
// stores the returned handle values without inspecting them. handler is a
// callback the host invokes (on its own goroutine, per request) to
// re-enter the interpreter for a route's program body.
type WebServices interface {
	CreateWebServer(port int) (*value.HandleRef, error)
	AddRoute(server *value.HandleRef, path, method string, handler RouteHandler) error
	StartServer(server *value.HandleRef) error
	HTMLResponse(body string) value.Value
	JSONResponse(v value.Value, status int) value.Value
	ErrorResponse(status int, message string) value.Value
	RenderTemplate(name string, data value.Value) (value.Value, error)
	GetPathParam(req *value.HandleRef, name string) (string, error)
	EnableHotReload(watchDir string, server *value.HandleRef) error
	ServeStatic(server *value.HandleRef, urlPrefix, dir string) error
	ParseUpload(req *value.HandleRef) (value.Value, error)
}

// RouteHandler re-enters the interpreter to run a route's program body
// against an incoming request handle, returning the response value it
// produces.
type RouteHandler func(req *value.HandleRef) (value.Value, error)
