// Package vmrun implements the stack machine that executes
// internal/bytecode chunks (§4.5): a bounded value stack, per-call local
// slots, and a dynamic try/catch handler stack, grounded on the
// teacher VM's push/pop/haltif dispatch-loop idiom (first.go,
// internals.go) generalized from integer cells to tagged Values.
package vmrun

import (
	"bufio"
	"fmt"
	"io"

	"github.com/jcorbin/pohlang/internal/bytecode"
	"github.com/jcorbin/pohlang/internal/host"
	"github.com/jcorbin/pohlang/internal/perr"
	"github.com/jcorbin/pohlang/internal/value"
)

const (
	maxStack  = 1024
	maxLocals = 256
)

var (
	errStackOverflow  = fmt.Errorf("vm: stack overflow (limit %d)", maxStack)
	errStackUnderflow = fmt.Errorf("vm: stack underflow")
)

// callFrame is one active chunk execution: its own instruction pointer
// and local-slot array.
type callFrame struct {
	chunk  *bytecode.Chunk
	ip     int
	locals []value.Value
}

// tryHandler is a pending catch target, recorded globally (not per
// frame) so a throw inside a called function can still unwind to a
// handler installed by a caller -- matching the tree interpreter's
// dynamic-scope try/catch.
type tryHandler struct {
	frameDepth int // index into vm.frames this handler belongs to
	targetIP   int
	stackDepth int
}

// vmThrow is the internal control-transfer signal for both OpThrow and
// built-in runtime errors; it unwinds to the nearest try handler, or to
// Run's own recover if none remains.
type vmThrow struct{ Value value.Value }

// VM is one bytecode execution: its value stack, call frames, globals,
// and the host services boundary for file/JSON/web opcodes.
type VM struct {
	stack   []value.Value
	frames  []*callFrame
	handlers []tryHandler
	globals map[string]value.Value

	host host.Services

	input  io.Reader
	bufin  *bufio.Reader
	output io.Writer

	log Logf
}

// Logf mirrors the tree interpreter's logging hook (internal/interp/options.go).
type Logf func(level int, mess string, args ...interface{})

// New constructs a VM. Options are flattened the same way as the tree
// interpreter's (internal/interp/options.go) and the teacher's root-level
// functional-options constructors (options.go).
func New(h host.Services, opts ...Option) *VM {
	vm := &VM{
		globals: make(map[string]value.Value),
		host:    h,
	}
	defaultOptions.apply(vm)
	Options(opts...).apply(vm)
	if vm.input != nil {
		vm.bufin = bufio.NewReader(vm.input)
	}
	return vm
}

func (vm *VM) logf(level int, mess string, args ...interface{}) {
	if vm.log != nil {
		vm.log(level, mess, args...)
	}
}

func (vm *VM) push(v value.Value) {
	if len(vm.stack) >= maxStack {
		panic(errStackOverflow)
	}
	vm.stack = append(vm.stack, v)
}

func (vm *VM) pop() value.Value {
	if len(vm.stack) == 0 {
		panic(errStackUnderflow)
	}
	v := vm.stack[len(vm.stack)-1]
	vm.stack = vm.stack[:len(vm.stack)-1]
	return v
}

func (vm *VM) peek() value.Value {
	if len(vm.stack) == 0 {
		panic(errStackUnderflow)
	}
	return vm.stack[len(vm.stack)-1]
}

func (vm *VM) frame() *callFrame { return vm.frames[len(vm.frames)-1] }

func (vm *VM) newErr(kind perr.Kind, format string, args ...interface{}) *perr.Error {
	return perr.New(kind, format, args...)
}

// raise delivers a thrown Value to the innermost pending handler,
// truncating the frame and value stacks to the point they were at when
// that handler was installed (§4.4/§4.5's try/catch unwinding). With no
// pending handler it panics vmThrow, which Run's recover turns into a
// final error.
func (vm *VM) raise(v value.Value) {
	if len(vm.handlers) == 0 {
		panic(vmThrow{v})
	}
	h := vm.handlers[len(vm.handlers)-1]
	vm.handlers = vm.handlers[:len(vm.handlers)-1]
	vm.frames = vm.frames[:h.frameDepth+1]
	vm.frames[h.frameDepth].ip = h.targetIP
	if len(vm.stack) > h.stackDepth {
		vm.stack = vm.stack[:h.stackDepth]
	}
	vm.push(v)
}

// throwRuntime builds a typed error the way internal/interp's eval.go
// does for the same conditions, then raises it.
func (vm *VM) throwRuntime(kind perr.Kind, format string, args ...interface{}) {
	vm.raise(value.ErrV(vm.newErr(kind, format, args...)))
}
