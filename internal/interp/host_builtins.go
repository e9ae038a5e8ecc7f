package interp

import (
	"github.com/jcorbin/pohlang/internal/host"
	"github.com/jcorbin/pohlang/internal/panicerr"
	"github.com/jcorbin/pohlang/internal/perr"
	"github.com/jcorbin/pohlang/internal/value"
)

// The builtins below are thin wrappers translating host.Services errors
// into the typed error model (§7): file failures become FileError, JSON
// failures become JsonError. The core never touches a filesystem or JSON
// parser directly (§1's non-goals).

func (in *Interp) builtinReadFile(args []value.Value) (value.Value, bool, error) {
	s, err := in.host.ReadFile(argAt(args, 0).String())
	if err != nil {
		return value.NullV(), true, perr.New(perr.FileError, "%v", err)
	}
	return value.Str(s), true, nil
}

func (in *Interp) builtinWriteFile(args []value.Value) (value.Value, bool, error) {
	if err := in.host.WriteFile(argAt(args, 0).String(), argAt(args, 1).String()); err != nil {
		return value.NullV(), true, perr.New(perr.FileError, "%v", err)
	}
	return value.NullV(), true, nil
}

func (in *Interp) builtinAppendFile(args []value.Value) (value.Value, bool, error) {
	if err := in.host.AppendFile(argAt(args, 0).String(), argAt(args, 1).String()); err != nil {
		return value.NullV(), true, perr.New(perr.FileError, "%v", err)
	}
	return value.NullV(), true, nil
}

func (in *Interp) builtinFileExists(args []value.Value) (value.Value, bool, error) {
	return value.Bool_(in.host.FileExists(argAt(args, 0).String())), true, nil
}

func (in *Interp) builtinDeleteFile(args []value.Value) (value.Value, bool, error) {
	if err := in.host.DeleteFile(argAt(args, 0).String()); err != nil {
		return value.NullV(), true, perr.New(perr.FileError, "%v", err)
	}
	return value.NullV(), true, nil
}

func (in *Interp) builtinCreateDirectory(args []value.Value) (value.Value, bool, error) {
	if err := in.host.CreateDirectory(argAt(args, 0).String()); err != nil {
		return value.NullV(), true, perr.New(perr.FileError, "%v", err)
	}
	return value.NullV(), true, nil
}

func (in *Interp) builtinListDirectory(args []value.Value) (value.Value, bool, error) {
	names, err := in.host.ListDirectory(argAt(args, 0).String())
	if err != nil {
		return value.NullV(), true, perr.New(perr.FileError, "%v", err)
	}
	items := make([]value.Value, len(names))
	for i, n := range names {
		items[i] = value.Str(n)
	}
	return value.ListV(items), true, nil
}

func (in *Interp) builtinReadLines(args []value.Value) (value.Value, bool, error) {
	lines, err := in.host.ReadLines(argAt(args, 0).String())
	if err != nil {
		return value.NullV(), true, perr.New(perr.FileError, "%v", err)
	}
	items := make([]value.Value, len(lines))
	for i, l := range lines {
		items[i] = value.Str(l)
	}
	return value.ListV(items), true, nil
}

func (in *Interp) builtinCopyFile(args []value.Value) (value.Value, bool, error) {
	if err := in.host.CopyFile(argAt(args, 0).String(), argAt(args, 1).String()); err != nil {
		return value.NullV(), true, perr.New(perr.FileError, "%v", err)
	}
	return value.NullV(), true, nil
}

func (in *Interp) builtinMoveFile(args []value.Value) (value.Value, bool, error) {
	if err := in.host.MoveFile(argAt(args, 0).String(), argAt(args, 1).String()); err != nil {
		return value.NullV(), true, perr.New(perr.FileError, "%v", err)
	}
	return value.NullV(), true, nil
}

func (in *Interp) builtinParseJSON(args []value.Value) (value.Value, bool, error) {
	v, err := in.host.ParseJSON(argAt(args, 0).String())
	if err != nil {
		return value.NullV(), true, perr.New(perr.JsonError, "%v", err)
	}
	return v, true, nil
}

func (in *Interp) builtinToJSON(args []value.Value) (value.Value, bool, error) {
	s, err := in.host.ToJSON(argAt(args, 0))
	if err != nil {
		return value.NullV(), true, perr.New(perr.JsonError, "%v", err)
	}
	return value.Str(s), true, nil
}

func (in *Interp) builtinToPrettyJSON(args []value.Value) (value.Value, bool, error) {
	s, err := in.host.ToPrettyJSON(argAt(args, 0))
	if err != nil {
		return value.NullV(), true, perr.New(perr.JsonError, "%v", err)
	}
	return value.Str(s), true, nil
}

func (in *Interp) builtinJSONGet(args []value.Value) (value.Value, bool, error) {
	v, err := in.host.JSONGet(argAt(args, 0), argAt(args, 1).String())
	if err != nil {
		return value.NullV(), true, perr.New(perr.JsonError, "%v", err)
	}
	return v, true, nil
}

func (in *Interp) builtinJSONSet(args []value.Value) (value.Value, bool, error) {
	v, err := in.host.JSONSet(argAt(args, 0), argAt(args, 1).String(), argAt(args, 2))
	if err != nil {
		return value.NullV(), true, perr.New(perr.JsonError, "%v", err)
	}
	return v, true, nil
}

func (in *Interp) builtinJSONPush(args []value.Value) (value.Value, bool, error) {
	v, err := in.host.JSONPush(argAt(args, 0), argAt(args, 1).String(), argAt(args, 2))
	if err != nil {
		return value.NullV(), true, perr.New(perr.JsonError, "%v", err)
	}
	return v, true, nil
}

func (in *Interp) builtinJSONLength(args []value.Value) (value.Value, bool, error) {
	n, err := in.host.JSONLength(argAt(args, 0))
	if err != nil {
		return value.NullV(), true, perr.New(perr.JsonError, "%v", err)
	}
	return value.Num(float64(n)), true, nil
}

// The builtins below back §6's HTTP-service surface: the core only
// evaluates the invocation and stores or forwards the opaque handle the
// host returns (§1's non-goals), never inspecting its contents itself.

func (in *Interp) builtinCreateWebServer(args []value.Value) (value.Value, bool, error) {
	h, err := in.host.CreateWebServer(int(argAt(args, 0).Num))
	if err != nil {
		return value.NullV(), true, perr.New(perr.NetworkError, "%v", err)
	}
	if in.watchDir != "" {
		if err := in.host.EnableHotReload(in.watchDir, h); err != nil {
			return value.NullV(), true, perr.New(perr.NetworkError, "%v", err)
		}
	}
	return value.HandleV(h), true, nil
}

func (in *Interp) builtinAddRoute(args []value.Value) (value.Value, bool, error) {
	server := argAt(args, 0)
	if server.Kind != value.Handle {
		return value.NullV(), true, perr.New(perr.TypeError, "add_route requires a web server handle")
	}
	handler := argAt(args, 3)
	if handler.Kind != value.Func {
		return value.NullV(), true, perr.New(perr.TypeError, "add_route requires a function handler")
	}
	err := in.host.AddRoute(server.Hdl, argAt(args, 1).String(), argAt(args, 2).String(), in.routeHandler(handler.Fn))
	if err != nil {
		return value.NullV(), true, perr.New(perr.NetworkError, "%v", err)
	}
	return value.NullV(), true, nil
}

// routeHandler bridges a host.RouteHandler callback to a re-entrant
// interpreter call (§5: each request re-enters the interpreter, here on
// the host's own per-request goroutine). panicerr.Recover turns a
// handler panic into a returned error instead of crashing the listener,
// matching the teacher's isolate.go boundary; a Throw inside the handler
// is converted to its typed error rather than left as a bare panic value.
func (in *Interp) routeHandler(fn *value.Function) host.RouteHandler {
	return func(req *value.HandleRef) (value.Value, error) {
		var result value.Value
		err := panicerr.Recover("http-handler", func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					if ts, ok := r.(throwSignal); ok {
						err = ts.Err
						return
					}
					panic(r)
				}
			}()
			prevReq := in.currentReq
			in.currentReq = req
			defer func() { in.currentReq = prevReq }()
			result = in.callUserFunction(fn, []value.Value{value.HandleV(req)})
			return nil
		})
		return result, err
	}
}

func (in *Interp) builtinStartServer(args []value.Value) (value.Value, bool, error) {
	server := argAt(args, 0)
	if server.Kind != value.Handle {
		return value.NullV(), true, perr.New(perr.TypeError, "start_server requires a web server handle")
	}
	if err := in.host.StartServer(server.Hdl); err != nil {
		return value.NullV(), true, perr.New(perr.NetworkError, "%v", err)
	}
	return value.NullV(), true, nil
}

func (in *Interp) builtinHTMLResponse(args []value.Value) (value.Value, bool, error) {
	return in.host.HTMLResponse(argAt(args, 0).String()), true, nil
}

func (in *Interp) builtinJSONResponse(args []value.Value) (value.Value, bool, error) {
	status := 200
	if len(args) > 1 {
		status = int(argAt(args, 1).Num)
	}
	return in.host.JSONResponse(argAt(args, 0), status), true, nil
}

func (in *Interp) builtinErrorResponse(args []value.Value) (value.Value, bool, error) {
	return in.host.ErrorResponse(int(argAt(args, 0).Num), argAt(args, 1).String()), true, nil
}

func (in *Interp) builtinRenderTemplate(args []value.Value) (value.Value, bool, error) {
	v, err := in.host.RenderTemplate(argAt(args, 0).String(), argAt(args, 1))
	if err != nil {
		return value.NullV(), true, perr.New(perr.RuntimeError, "%v", err)
	}
	return v, true, nil
}

func (in *Interp) builtinGetPathParam(args []value.Value) (value.Value, bool, error) {
	if in.currentReq == nil {
		return value.NullV(), true, perr.New(perr.RuntimeError, "get_path_param called outside a request handler")
	}
	s, err := in.host.GetPathParam(in.currentReq, argAt(args, 0).String())
	if err != nil {
		return value.NullV(), true, perr.New(perr.RuntimeError, "%v", err)
	}
	return value.Str(s), true, nil
}

func (in *Interp) builtinEnableHotReload(args []value.Value) (value.Value, bool, error) {
	server := argAt(args, 1)
	if server.Kind != value.Handle {
		return value.NullV(), true, perr.New(perr.TypeError, "enable_hot_reload requires a web server handle")
	}
	if err := in.host.EnableHotReload(argAt(args, 0).String(), server.Hdl); err != nil {
		return value.NullV(), true, perr.New(perr.NetworkError, "%v", err)
	}
	return value.NullV(), true, nil
}

func (in *Interp) builtinServeStatic(args []value.Value) (value.Value, bool, error) {
	server := argAt(args, 0)
	if server.Kind != value.Handle {
		return value.NullV(), true, perr.New(perr.TypeError, "serve_static_files requires a web server handle")
	}
	if err := in.host.ServeStatic(server.Hdl, argAt(args, 1).String(), argAt(args, 2).String()); err != nil {
		return value.NullV(), true, perr.New(perr.NetworkError, "%v", err)
	}
	return value.NullV(), true, nil
}

func (in *Interp) builtinParseUpload(args []value.Value) (value.Value, bool, error) {
	if in.currentReq == nil {
		return value.NullV(), true, perr.New(perr.RuntimeError, "parse_upload called outside a request handler")
	}
	v, err := in.host.ParseUpload(in.currentReq)
	if err != nil {
		return value.NullV(), true, perr.New(perr.RuntimeError, "%v", err)
	}
	return v, true, nil
}
