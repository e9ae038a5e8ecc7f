// Package value defines the runtime value representation shared by the
// tree interpreter and the bytecode VM (§3): a tagged union over string,
// number, boolean, null, list, dict, function, error, and opaque host
// handles. Values are copy-on-bind; there is no aliasing that permits
// observable mutation through two names for the scalar/collection kinds
// below (lists/dicts are cloned on Set to preserve that guarantee).
package value

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jcorbin/pohlang/internal/ast"
	"github.com/jcorbin/pohlang/internal/perr"
)

// Kind tags a Value's dynamic type.
type Kind int

const (
	Null Kind = iota
	Number
	String
	Bool
	List
	Dict
	Func
	ErrorVal
	Handle
)

// Value is the runtime tagged union. Only the field matching Kind is
// meaningful.
type Value struct {
	Kind Kind
	Num  float64
	Str  string
	Bl   bool
	Lst  []Value
	Dct  *Dict
	Fn   *Function
	Err  *perr.Error
	Hdl  *HandleRef
}

// HandleRef is an opaque host-service handle (web server, request,
// response, file watcher, ...); the core never inspects its contents.
type HandleRef struct {
	Kind string // "web_server", "request", "response", "watcher", ...
	ID   string
	Data interface{}
}

// Dict is an ordered string-keyed map: iteration order follows insertion
// order and duplicate keys are last-write-wins (§3).
type Dict struct {
	keys   []string
	values map[string]Value
}

func NewDict() *Dict {
	return &Dict{values: make(map[string]Value)}
}

func (d *Dict) Set(key string, v Value) {
	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.values[key] = v
}

func (d *Dict) Get(key string) (Value, bool) {
	v, ok := d.values[key]
	return v, ok
}

func (d *Dict) Keys() []string {
	out := make([]string, len(d.keys))
	copy(out, d.keys)
	return out
}

func (d *Dict) Len() int { return len(d.keys) }

// Clone deep-copies the dict so binds never alias.
func (d *Dict) Clone() *Dict {
	nd := NewDict()
	for _, k := range d.keys {
		nd.Set(k, d.values[k].Clone())
	}
	return nd
}

// Function is a callable value: name, parameters, body (either a single
// expression or a statement list, per the tagged FuncBody union), and a
// captured environment chain frozen at closure-creation time.
type Function struct {
	Name      string
	Params    []ast.Param
	Body      ast.FuncBody
	Captured  []map[string]Value // innermost first, frozen snapshots
}

func Num(n float64) Value    { return Value{Kind: Number, Num: n} }
func Str(s string) Value     { return Value{Kind: String, Str: s} }
func Bool_(b bool) Value     { return Value{Kind: Bool, Bl: b} }
func NullV() Value           { return Value{Kind: Null} }
func ListV(items []Value) Value { return Value{Kind: List, Lst: items} }
func DictV(d *Dict) Value    { return Value{Kind: Dict, Dct: d} }
func FuncV(f *Function) Value { return Value{Kind: Func, Fn: f} }
func ErrV(e *perr.Error) Value { return Value{Kind: ErrorVal, Err: e} }
func HandleV(h *HandleRef) Value { return Value{Kind: Handle, Hdl: h} }

// Clone returns a value safe to bind independently: lists and dicts are
// deep-copied, everything else is already immutable/value-typed.
func (v Value) Clone() Value {
	switch v.Kind {
	case List:
		items := make([]Value, len(v.Lst))
		for i, it := range v.Lst {
			items[i] = it.Clone()
		}
		return Value{Kind: List, Lst: items}
	case Dict:
		return Value{Kind: Dict, Dct: v.Dct.Clone()}
	default:
		return v
	}
}

// Truthy implements §4.3's truthiness law: numbers non-zero; non-empty
// strings; true booleans; non-empty lists and dicts; any function, error,
// or handle. Null is false.
func (v Value) Truthy() bool {
	switch v.Kind {
	case Null:
		return false
	case Number:
		return v.Num != 0
	case String:
		return v.Str != ""
	case Bool:
		return v.Bl
	case List:
		return len(v.Lst) > 0
	case Dict:
		return v.Dct.Len() > 0
	case Func, ErrorVal, Handle:
		return true
	}
	return false
}

// String renders a value's display form, used by Write, string
// concatenation, and equality-by-stringification (§4.3).
func (v Value) String() string {
	switch v.Kind {
	case Null:
		return "null"
	case Number:
		return formatNumber(v.Num)
	case String:
		return v.Str
	case Bool:
		if v.Bl {
			return "true"
		}
		return "false"
	case List:
		parts := make([]string, len(v.Lst))
		for i, it := range v.Lst {
			parts[i] = it.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case Dict:
		keys := v.Dct.Keys()
		parts := make([]string, len(keys))
		for i, k := range keys {
			val, _ := v.Dct.Get(k)
			parts[i] = fmt.Sprintf("%q: %s", k, val.String())
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case Func:
		return fmt.Sprintf("<function %s>", v.Fn.Name)
	case ErrorVal:
		return v.Err.FormatWithTrace()
	case Handle:
		return fmt.Sprintf("<%s:%s>", v.Hdl.Kind, v.Hdl.ID)
	}
	return ""
}

func formatNumber(n float64) string {
	if n == float64(int64(n)) {
		return strconv.FormatInt(int64(n), 10)
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// SortedDictKeys is a helper for builtins that need stable key ordering
// distinct from insertion order (e.g. pretty-printing).
func SortedDictKeys(d *Dict) []string {
	keys := d.Keys()
	sort.Strings(keys)
	return keys
}
