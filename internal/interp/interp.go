// Package interp implements the tree-walking interpreter (§4.3): lexical
// scoping via a frame/captured-chain environment model, closures, block
// functions with early return, a structured typed error model propagated
// through try/catch, and a module system with local and system imports.
package interp

import (
	"bufio"
	"fmt"
	"io"

	"github.com/jcorbin/pohlang/internal/ast"
	"github.com/jcorbin/pohlang/internal/host"
	"github.com/jcorbin/pohlang/internal/perr"
	"github.com/jcorbin/pohlang/internal/value"
)

// Interp is the single process-level execution object: globals, module
// state, a call stack (for error traces), and the current source file.
type Interp struct {
	globals map[string]value.Value

	loading      []string // canonical paths currently being loaded, for cycle detection
	loadedLocal  map[string]bool
	loadedSystem map[string]bool
	alias        map[string]string            // alias -> module name
	exports      map[string]map[string]value.Value // module name -> symbol -> value
	exposedFrom  map[string]string            // exposed symbol -> source module name

	callStack []frame
	baseDir   string
	file      string

	input  io.Reader
	bufin  *bufio.Reader
	output io.Writer

	stdlibPath       string
	allowPlaceholder bool
	log              Logf

	host host.Services

	// currentReq is the request handle in scope for get_path_param (§6:
	// "reads from the request handle currently in scope"), set around
	// each route handler invocation in host_builtins.go.
	currentReq *value.HandleRef

	// watchDir, when non-empty (CLI -watch, SPEC_FULL.md §4), is
	// auto-enabled for hot reload on every web server the program
	// creates, so a program never has to call enable_hot_reload itself
	// just to pick up -watch.
	watchDir string
}

// frame is one entry in the call stack carried for error stack traces
// (§3's Frame: function name, file name, line number).
type frame struct {
	Func string
	File string
	Line int
}

// New constructs an Interp. Options are flattened the same way the VM's
// options are (internal/interp/options.go).
func New(h host.Services, opts ...Option) *Interp {
	in := &Interp{
		globals:          make(map[string]value.Value),
		loadedLocal:      make(map[string]bool),
		loadedSystem:     make(map[string]bool),
		alias:            make(map[string]string),
		exports:          make(map[string]map[string]value.Value),
		exposedFrom:      make(map[string]string),
		allowPlaceholder: true,
		host:             h,
	}
	defaultOptions.apply(in)
	Options(opts...).apply(in)
	if in.input != nil {
		in.bufin = bufio.NewReader(in.input)
	}
	return in
}

func (in *Interp) logf(level int, mess string, args ...interface{}) {
	if in.log != nil {
		in.log(level, mess, args...)
	}
}

// returnSignal and throwSignal are internal control-transfer values,
// panicked and recovered at well-defined boundaries (function-call for
// Return, try/catch for Throw) -- the same panic-as-control-transfer idiom
// used by the bytecode VM's halt path, just scoped to non-fatal signals.
type returnSignal struct{ Value value.Value }
type throwSignal struct{ Err *perr.Error }

// Run executes a parsed program at top level (globals as the only scope).
// Any unhandled Throw propagates out as the process-level result, per
// §7's propagation policy.
func (in *Interp) Run(file string, prog *ast.Program) (err error) {
	in.file = file
	defer func() {
		if r := recover(); r != nil {
			if ts, ok := r.(throwSignal); ok {
				err = ts.Err
				return
			}
			panic(r)
		}
	}()
	in.execStmts(nil, prog.Stmts)
	return nil
}

func (in *Interp) write(s string) {
	if in.output != nil {
		fmt.Fprint(in.output, s)
	}
}

func (in *Interp) writeln(s string) {
	if in.output != nil {
		fmt.Fprintln(in.output, s)
	}
}

func (in *Interp) readLine() (string, error) {
	if in.bufin == nil {
		return "", io.EOF
	}
	line, err := in.bufin.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	for len(line) > 0 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r') {
		line = line[:len(line)-1]
	}
	return line, nil
}

func (in *Interp) pushFrame(fn, file string, line int) {
	in.callStack = append(in.callStack, frame{Func: fn, File: file, Line: line})
}

func (in *Interp) popFrame() {
	if len(in.callStack) > 0 {
		in.callStack = in.callStack[:len(in.callStack)-1]
	}
}

func (in *Interp) stackTrace() []perr.Frame {
	out := make([]perr.Frame, len(in.callStack))
	for i, f := range in.callStack {
		out[i] = perr.Frame{Func: f.Func, File: f.File, Line: f.Line}
	}
	return out
}

func (in *Interp) newErr(kind perr.Kind, format string, args ...interface{}) *perr.Error {
	e := perr.New(kind, format, args...)
	e.Stack = in.stackTrace()
	return e
}
