package interp

import (
	"math"
	"strings"
	"time"

	"github.com/jcorbin/pohlang/internal/ast"
	"github.com/jcorbin/pohlang/internal/perr"
	"github.com/jcorbin/pohlang/internal/value"
)

// evalBuiltin dispatches a phrasal builtin expression (§4.2's Term-level
// catalog) by its canonical internal/phrase name.
func (in *Interp) evalBuiltin(lf *localFrame, b *ast.Builtin) value.Value {
	args := make([]value.Value, len(b.Args))
	for i, a := range b.Args {
		args[i] = in.eval(lf, a)
	}
	v, ok, err := in.callBuiltin(b.Name, args)
	if err != nil {
		panic(throwSignal{err})
	}
	if !ok {
		panic(in.newErr(perr.RuntimeError, "unknown builtin %q", b.Name))
	}
	return v
}

// callBuiltin is the fixed small table consulted first by call_function
// (§4.3), shared with evalBuiltin's phrasal dispatch: numeric/string/
// collection primitives, plus the host-backed file/JSON/web surface.
func (in *Interp) callBuiltin(name string, args []value.Value) (value.Value, bool, error) {
	switch name {
	case "now":
		return value.Str(time.Now().Format(time.RFC3339)), true, nil
	case "range":
		return builtinRange(args)
	case "length", "len", "count":
		return builtinLength(args)
	case "total", "sum":
		return builtinTotal(args)
	case "min":
		return builtinMinMax(args, true)
	case "max":
		return builtinMinMax(args, false)
	case "abs":
		return requireOneNumber(args, math.Abs)
	case "round":
		return requireOneNumber(args, math.Round)
	case "floor":
		return requireOneNumber(args, math.Floor)
	case "ceil":
		return requireOneNumber(args, math.Ceil)
	case "reverse":
		return builtinReverse(args)
	case "first":
		return builtinFirstLast(args, true)
	case "last":
		return builtinFirstLast(args, false)
	case "uppercase":
		return requireOneString(args, strings.ToUpper)
	case "lowercase":
		return requireOneString(args, strings.ToLower)
	case "trim":
		return requireOneString(args, strings.TrimSpace)
	case "join":
		return builtinJoin(args)
	case "split":
		return builtinSplit(args)
	case "contains":
		return builtinContains(args)
	case "remove":
		return builtinRemove(args)
	case "append":
		return builtinAppend(args)
	case "insert_at_in":
		return builtinInsertAtIn(args)
	case "read_file":
		return in.builtinReadFile(args)
	case "write_file":
		return in.builtinWriteFile(args)
	case "append_file":
		return in.builtinAppendFile(args)
	case "file_exists":
		return in.builtinFileExists(args)
	case "delete_file":
		return in.builtinDeleteFile(args)
	case "create_directory":
		return in.builtinCreateDirectory(args)
	case "list_directory":
		return in.builtinListDirectory(args)
	case "read_lines":
		return in.builtinReadLines(args)
	case "copy_file":
		return in.builtinCopyFile(args)
	case "move_file":
		return in.builtinMoveFile(args)
	case "parse_json":
		return in.builtinParseJSON(args)
	case "to_json":
		return in.builtinToJSON(args)
	case "to_pretty_json":
		return in.builtinToPrettyJSON(args)
	case "json_get":
		return in.builtinJSONGet(args)
	case "json_set":
		return in.builtinJSONSet(args)
	case "json_push":
		return in.builtinJSONPush(args)
	case "json_length":
		return in.builtinJSONLength(args)
	case "new_json_object":
		return in.host.NewJSONObject(), true, nil
	case "new_json_array":
		return in.host.NewJSONArray(), true, nil
	case "create_web_server":
		return in.builtinCreateWebServer(args)
	case "add_route":
		return in.builtinAddRoute(args)
	case "start_server":
		return in.builtinStartServer(args)
	case "html_response":
		return in.builtinHTMLResponse(args)
	case "json_response", "json_response_status":
		return in.builtinJSONResponse(args)
	case "error_response":
		return in.builtinErrorResponse(args)
	case "render_template":
		return in.builtinRenderTemplate(args)
	case "get_path_param":
		return in.builtinGetPathParam(args)
	case "enable_hot_reload":
		return in.builtinEnableHotReload(args)
	case "serve_static_files":
		return in.builtinServeStatic(args)
	case "parse_upload":
		return in.builtinParseUpload(args)
	}
	return value.NullV(), false, nil
}

func argAt(args []value.Value, i int) value.Value {
	if i < len(args) {
		return args[i]
	}
	return value.NullV()
}

func builtinRange(args []value.Value) (value.Value, bool, error) {
	if len(args) == 0 {
		return value.NullV(), true, perr.New(perr.RuntimeError, "range requires at least one argument")
	}
	start, end, step := 0.0, argAt(args, 0).Num, 1.0
	if len(args) >= 2 {
		start, end = argAt(args, 0).Num, argAt(args, 1).Num
	}
	if len(args) >= 3 {
		step = argAt(args, 2).Num
	}
	if step == 0 {
		return value.NullV(), true, perr.New(perr.MathError, "range step cannot be zero")
	}
	var items []value.Value
	if step > 0 {
		for n := start; n < end; n += step {
			items = append(items, value.Num(n))
		}
	} else {
		for n := start; n > end; n += step {
			items = append(items, value.Num(n))
		}
	}
	return value.ListV(items), true, nil
}

func builtinLength(args []value.Value) (value.Value, bool, error) {
	v := argAt(args, 0)
	switch v.Kind {
	case value.List:
		return value.Num(float64(len(v.Lst))), true, nil
	case value.Dict:
		return value.Num(float64(v.Dct.Len())), true, nil
	case value.String:
		return value.Num(float64(len([]rune(v.Str)))), true, nil
	}
	return value.NullV(), true, perr.New(perr.TypeError, "length/count requires a list, dictionary, or string")
}

func builtinTotal(args []value.Value) (value.Value, bool, error) {
	v := argAt(args, 0)
	if v.Kind != value.List {
		return value.NullV(), true, perr.New(perr.TypeError, "total/sum requires a list")
	}
	sum := 0.0
	for _, it := range v.Lst {
		if it.Kind == value.Number {
			sum += it.Num
		}
	}
	return value.Num(sum), true, nil
}

func builtinMinMax(args []value.Value, wantMin bool) (value.Value, bool, error) {
	v := argAt(args, 0)
	if v.Kind != value.List || len(v.Lst) == 0 {
		return value.NullV(), true, perr.New(perr.TypeError, "min/max requires a non-empty list")
	}
	best := v.Lst[0].Num
	for _, it := range v.Lst[1:] {
		if (wantMin && it.Num < best) || (!wantMin && it.Num > best) {
			best = it.Num
		}
	}
	return value.Num(best), true, nil
}

func requireOneNumber(args []value.Value, f func(float64) float64) (value.Value, bool, error) {
	v := argAt(args, 0)
	if v.Kind != value.Number {
		return value.NullV(), true, perr.New(perr.TypeError, "expected a number")
	}
	return value.Num(f(v.Num)), true, nil
}

func requireOneString(args []value.Value, f func(string) string) (value.Value, bool, error) {
	v := argAt(args, 0)
	return value.Str(f(v.String())), true, nil
}

func builtinReverse(args []value.Value) (value.Value, bool, error) {
	v := argAt(args, 0)
	switch v.Kind {
	case value.List:
		out := make([]value.Value, len(v.Lst))
		for i, it := range v.Lst {
			out[len(v.Lst)-1-i] = it
		}
		return value.ListV(out), true, nil
	case value.String:
		runes := []rune(v.Str)
		for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
			runes[i], runes[j] = runes[j], runes[i]
		}
		return value.Str(string(runes)), true, nil
	}
	return value.NullV(), true, perr.New(perr.TypeError, "reverse requires a list or string")
}

func builtinFirstLast(args []value.Value, first bool) (value.Value, bool, error) {
	v := argAt(args, 0)
	if v.Kind != value.List || len(v.Lst) == 0 {
		return value.NullV(), true, perr.New(perr.RuntimeError, "first/last requires a non-empty list")
	}
	if first {
		return v.Lst[0], true, nil
	}
	return v.Lst[len(v.Lst)-1], true, nil
}

func builtinJoin(args []value.Value) (value.Value, bool, error) {
	lst := argAt(args, 0)
	sep := argAt(args, 1)
	if lst.Kind != value.List {
		return value.NullV(), true, perr.New(perr.TypeError, "join requires a list")
	}
	parts := make([]string, len(lst.Lst))
	for i, it := range lst.Lst {
		parts[i] = it.String()
	}
	return value.Str(strings.Join(parts, sep.String())), true, nil
}

func builtinSplit(args []value.Value) (value.Value, bool, error) {
	s := argAt(args, 0)
	sep := argAt(args, 1)
	parts := strings.Split(s.String(), sep.String())
	items := make([]value.Value, len(parts))
	for i, p := range parts {
		items[i] = value.Str(p)
	}
	return value.ListV(items), true, nil
}

func builtinContains(args []value.Value) (value.Value, bool, error) {
	needle := argAt(args, 0)
	haystack := argAt(args, 1)
	switch haystack.Kind {
	case value.List:
		for _, it := range haystack.Lst {
			if it.String() == needle.String() {
				return value.Bool_(true), true, nil
			}
		}
		return value.Bool_(false), true, nil
	case value.String:
		return value.Bool_(strings.Contains(haystack.Str, needle.String())), true, nil
	case value.Dict:
		_, ok := haystack.Dct.Get(needle.String())
		return value.Bool_(ok), true, nil
	}
	return value.Bool_(false), true, nil
}

func builtinRemove(args []value.Value) (value.Value, bool, error) {
	needle := argAt(args, 0)
	lst := argAt(args, 1)
	if lst.Kind != value.List {
		return value.NullV(), true, perr.New(perr.TypeError, "remove requires a list")
	}
	out := make([]value.Value, 0, len(lst.Lst))
	removed := false
	for _, it := range lst.Lst {
		if !removed && it.String() == needle.String() {
			removed = true
			continue
		}
		out = append(out, it)
	}
	return value.ListV(out), true, nil
}

func builtinAppend(args []value.Value) (value.Value, bool, error) {
	item := argAt(args, 0)
	lst := argAt(args, 1)
	if lst.Kind != value.List {
		return value.NullV(), true, perr.New(perr.TypeError, "append requires a list")
	}
	out := make([]value.Value, len(lst.Lst), len(lst.Lst)+1)
	copy(out, lst.Lst)
	out = append(out, item)
	return value.ListV(out), true, nil
}

func builtinInsertAtIn(args []value.Value) (value.Value, bool, error) {
	item := argAt(args, 0)
	idx := argAt(args, 1)
	lst := argAt(args, 2)
	if lst.Kind != value.List {
		return value.NullV(), true, perr.New(perr.TypeError, "insert requires a list")
	}
	i := int(idx.Num)
	if i < 0 || i > len(lst.Lst) {
		return value.NullV(), true, perr.New(perr.RuntimeError, "index out of range")
	}
	out := make([]value.Value, 0, len(lst.Lst)+1)
	out = append(out, lst.Lst[:i]...)
	out = append(out, item)
	out = append(out, lst.Lst[i:]...)
	return value.ListV(out), true, nil
}

