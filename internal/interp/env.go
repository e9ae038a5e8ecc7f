package interp

import (
	"strings"

	"github.com/jcorbin/pohlang/internal/value"
)

// localFrame is a runtime frame (§3): local bindings plus the captured
// chain frozen at closure-creation time. A nil *localFrame means
// top-level scope (globals only).
type localFrame struct {
	locals   map[string]value.Value
	captured []map[string]value.Value
}

func newLocalFrame() *localFrame {
	return &localFrame{locals: make(map[string]value.Value)}
}

// lookup implements §4.3's read resolution order: current locals, then
// each captured frame innermost-to-outermost, then process globals, then
// module-qualified lookup if name contains "::".
func (in *Interp) lookup(lf *localFrame, name string) (value.Value, bool) {
	if idx := strings.Index(name, "::"); idx >= 0 {
		alias, symbol := name[:idx], name[idx+2:]
		return in.lookupQualified(alias, symbol)
	}
	if lf != nil {
		if v, ok := lf.locals[name]; ok {
			return v, true
		}
		for _, cap := range lf.captured {
			if v, ok := cap[name]; ok {
				return v, true
			}
		}
	}
	if v, ok := in.globals[name]; ok {
		return v, true
	}
	return value.NullV(), false
}

func (in *Interp) lookupQualified(alias, symbol string) (value.Value, bool) {
	module := alias
	if m, ok := in.alias[alias]; ok {
		module = m
	}
	if exports, ok := in.exports[module]; ok {
		if v, ok := exports[symbol]; ok {
			return v, true
		}
	}
	return value.NullV(), false
}

// bind sets name in the current scope: globals at top level, current
// frame's locals inside a function.
func (in *Interp) bind(lf *localFrame, name string, v value.Value) {
	if lf != nil {
		lf.locals[name] = v.Clone()
		return
	}
	in.globals[name] = v.Clone()
}

// lookupFunction resolves a callable name for Call/Use/indexed-call
// dispatch: current scope, then globals, then module exports -- distinct
// from fixed-table builtins, which are tried first by the caller.
func (in *Interp) lookupFunction(lf *localFrame, name string) (*value.Function, bool) {
	v, ok := in.lookup(lf, name)
	if !ok || v.Kind != value.Func {
		return nil, false
	}
	return v.Fn, true
}
