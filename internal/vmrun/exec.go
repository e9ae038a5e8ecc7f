package vmrun

import (
	"fmt"
	"strings"

	"github.com/jcorbin/pohlang/internal/bytecode"
	"github.com/jcorbin/pohlang/internal/perr"
	"github.com/jcorbin/pohlang/internal/value"
)

// Run executes chunk from its first instruction and returns its final
// top-of-stack value (conventionally Null for a top-level program that
// never explicitly Returns).
func (vm *VM) Run(chunk *bytecode.Chunk) (result value.Value, err error) {
	vm.frames = append(vm.frames, &callFrame{chunk: chunk})
	return vm.execFrames(0)
}

// execFrames runs frames until the frame stack unwinds back to
// baseDepth, returning the value an OpReturn at that depth produced (or
// Null if the chunk ran off the end via OpHalt without an explicit
// Return). A vmThrow that escapes every installed handler becomes the
// returned error, formatted with its stack trace the same way
// internal/interp's top-level Run does.
func (vm *VM) execFrames(baseDepth int) (result value.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			switch t := r.(type) {
			case vmThrow:
				err = vm.uncaughtError(t.Value)
			case error:
				err = t
			default:
				panic(r)
			}
		}
	}()

	for len(vm.frames) > baseDepth {
		f := vm.frame()
		if f.ip >= len(f.chunk.Code) {
			vm.frames = vm.frames[:len(vm.frames)-1]
			if len(vm.frames) <= baseDepth {
				return value.NullV(), nil
			}
			continue
		}
		ins := f.chunk.Code[f.ip]
		vm.logf(0, "%04d %s", f.ip, ins.Op.Name())
		f.ip++

		if done, retVal := vm.step(ins, baseDepth); done {
			return retVal, nil
		}
	}
	return value.NullV(), nil
}

// step executes one instruction against the current top frame. It
// returns done=true with retVal set when an OpReturn has unwound the
// frame stack back to baseDepth, signaling execFrames to stop.
func (vm *VM) step(ins bytecode.Instruction, baseDepth int) (done bool, retVal value.Value) {
	f := vm.frame()
	switch ins.Op {
	case bytecode.OpLoadConst:
		c, ok := f.chunk.Pool.Get(int(ins.Operand))
		if !ok {
			vm.throwRuntime(perr.RuntimeError, "invalid constant index %d", ins.Operand)
			return false, value.Value{}
		}
		vm.push(constToValue(c))
	case bytecode.OpLoadTrue:
		vm.push(value.Bool_(true))
	case bytecode.OpLoadFalse:
		vm.push(value.Bool_(false))
	case bytecode.OpLoadNull:
		vm.push(value.NullV())
	case bytecode.OpLoadLocal:
		vm.push(f.locals[ins.Operand])
	case bytecode.OpStoreLocal:
		f.locals[ins.Operand] = vm.pop().Clone()
	case bytecode.OpLoadGlobal:
		v, ok := vm.globals[ins.Str]
		if !ok {
			vm.throwRuntime(perr.RuntimeError, "Undefined variable '%s'", ins.Str)
			return false, value.Value{}
		}
		vm.push(v)
	case bytecode.OpStoreGlobal:
		vm.globals[ins.Str] = vm.pop().Clone()

	case bytecode.OpAdd, bytecode.OpSubtract, bytecode.OpMultiply, bytecode.OpDivide:
		vm.binaryArith(ins.Op)
	case bytecode.OpNegate:
		v := vm.pop()
		if v.Kind != value.Number {
			vm.throwRuntime(perr.TypeError, "negate requires a numeric operand")
			return false, value.Value{}
		}
		vm.push(value.Num(-v.Num))

	case bytecode.OpEqual, bytecode.OpNotEqual, bytecode.OpGreater,
		bytecode.OpGreaterEqual, bytecode.OpLess, bytecode.OpLessEqual:
		vm.compare(ins.Op)
	case bytecode.OpNot:
		vm.push(numBool(!vm.pop().Truthy()))
	case bytecode.OpAnd:
		r, l := vm.pop(), vm.pop()
		vm.push(numBool(l.Truthy() && r.Truthy()))
	case bytecode.OpOr:
		r, l := vm.pop(), vm.pop()
		vm.push(numBool(l.Truthy() || r.Truthy()))

	case bytecode.OpJump:
		f.ip += int(ins.Operand)
	case bytecode.OpJumpIfFalse:
		if !vm.pop().Truthy() {
			f.ip += int(ins.Operand)
		}
	case bytecode.OpJumpIfTrue:
		if vm.pop().Truthy() {
			f.ip += int(ins.Operand)
		}
	case bytecode.OpLoop:
		f.ip -= int(ins.Operand)

	case bytecode.OpCall:
		vm.call(int(ins.Argc))
	case bytecode.OpReturn:
		v := vm.pop()
		vm.frames = vm.frames[:len(vm.frames)-1]
		if len(vm.frames) <= baseDepth {
			return true, v
		}
		vm.push(v)
	case bytecode.OpPop:
		vm.pop()
	case bytecode.OpDuplicate:
		vm.push(vm.peek())
	case bytecode.OpSwap:
		a, b := vm.pop(), vm.pop()
		vm.push(a)
		vm.push(b)

	case bytecode.OpPrint:
		fmt.Fprintln(vm.output, vm.pop().String())
	case bytecode.OpInput:
		vm.push(value.Str(vm.readLine()))

	case bytecode.OpBuildList:
		n := int(ins.Operand)
		items := make([]value.Value, n)
		for i := n - 1; i >= 0; i-- {
			items[i] = vm.pop()
		}
		vm.push(value.ListV(items))
	case bytecode.OpBuildDict:
		n := int(ins.Operand)
		d := value.NewDict()
		pairs := make([][2]value.Value, n)
		for i := n - 1; i >= 0; i-- {
			v := vm.pop()
			k := vm.pop()
			pairs[i] = [2]value.Value{k, v}
		}
		for _, kv := range pairs {
			d.Set(kv[0].String(), kv[1])
		}
		vm.push(value.DictV(d))
	case bytecode.OpIndex:
		vm.index()
	case bytecode.OpIndexStore:
		vm.indexStore()

	case bytecode.OpPushTryHandler:
		vm.handlers = append(vm.handlers, tryHandler{
			frameDepth: len(vm.frames) - 1,
			targetIP:   f.ip + int(ins.Operand),
			stackDepth: len(vm.stack),
		})
	case bytecode.OpPopTryHandler:
		if len(vm.handlers) > 0 {
			vm.handlers = vm.handlers[:len(vm.handlers)-1]
		}
	case bytecode.OpThrow:
		v := vm.pop()
		if v.Kind != value.ErrorVal {
			v = value.ErrV(perr.NewCustom("", v.String()))
		}
		vm.raise(v)

	case bytecode.OpWriteFile:
		path := vm.pop().String()
		content := vm.pop().String()
		if err := vm.host.WriteFile(path, content); err != nil {
			vm.throwRuntime(perr.FileError, "%v", err)
			return false, value.Value{}
		}
		vm.push(value.NullV())
	case bytecode.OpReadFile:
		path := vm.pop().String()
		content, err := vm.host.ReadFile(path)
		if err != nil {
			vm.throwRuntime(perr.FileError, "%v", err)
			return false, value.Value{}
		}
		vm.push(value.Str(content))

	case bytecode.OpLoadFunc:
		proto := f.chunk.Funcs[ins.Operand]
		vm.push(value.HandleV(&value.HandleRef{Kind: "bytecode_func", Data: proto}))

	case bytecode.OpHalt:
		vm.frames = vm.frames[:0]
		return true, value.NullV()

	default:
		vm.throwRuntime(perr.RuntimeError, "unimplemented opcode %s", ins.Op.Name())
	}
	return false, value.Value{}
}

func numBool(b bool) value.Value {
	if b {
		return value.Num(1)
	}
	return value.Num(0)
}

func constToValue(c bytecode.Const) value.Value {
	switch c.Kind {
	case bytecode.ConstNumber:
		return value.Num(c.Num)
	case bytecode.ConstString:
		return value.Str(c.Str)
	case bytecode.ConstBoolean:
		return value.Bool_(c.Bl)
	default:
		return value.NullV()
	}
}

// binaryArith mirrors internal/interp/eval.go's evalBinary coercion
// rules exactly: plus adds numbers or concatenates string forms;
// the rest require numeric operands.
func (vm *VM) binaryArith(op bytecode.Op) {
	r, l := vm.pop(), vm.pop()
	if op == bytecode.OpAdd {
		if l.Kind == value.Number && r.Kind == value.Number {
			vm.push(value.Num(l.Num + r.Num))
			return
		}
		vm.push(value.Str(l.String() + r.String()))
		return
	}
	if l.Kind != value.Number || r.Kind != value.Number {
		vm.throwRuntime(perr.TypeError, "operator requires numeric operands")
		return
	}
	switch op {
	case bytecode.OpSubtract:
		vm.push(value.Num(l.Num - r.Num))
	case bytecode.OpMultiply:
		vm.push(value.Num(l.Num * r.Num))
	case bytecode.OpDivide:
		if r.Num == 0 {
			vm.throwRuntime(perr.MathError, "division by zero")
			return
		}
		vm.push(value.Num(l.Num / r.Num))
	}
}

// compare mirrors internal/interp/eval.go's evalCompare: = and != on
// stringified form across types, ordered comparisons require numeric
// operands and yield false (never an error) otherwise.
func (vm *VM) compare(op bytecode.Op) {
	r, l := vm.pop(), vm.pop()
	switch op {
	case bytecode.OpEqual:
		vm.push(value.Bool_(l.String() == r.String()))
		return
	case bytecode.OpNotEqual:
		vm.push(value.Bool_(l.String() != r.String()))
		return
	}
	if l.Kind != value.Number || r.Kind != value.Number {
		vm.push(value.Bool_(false))
		return
	}
	switch op {
	case bytecode.OpGreater:
		vm.push(value.Bool_(l.Num > r.Num))
	case bytecode.OpGreaterEqual:
		vm.push(value.Bool_(l.Num >= r.Num))
	case bytecode.OpLess:
		vm.push(value.Bool_(l.Num < r.Num))
	case bytecode.OpLessEqual:
		vm.push(value.Bool_(l.Num <= r.Num))
	}
}

// index implements the same negative-indexing convenience as
// internal/interp/eval.go's evalIndex/resolveIndex.
func (vm *VM) index() {
	iv := vm.pop()
	base := vm.pop()
	switch base.Kind {
	case value.List:
		i := resolveIndex(int(iv.Num), len(base.Lst))
		if i < 0 || i >= len(base.Lst) {
			vm.throwRuntime(perr.RuntimeError, "index out of range")
			return
		}
		vm.push(base.Lst[i])
	case value.String:
		runes := []rune(base.Str)
		i := resolveIndex(int(iv.Num), len(runes))
		if i < 0 || i >= len(runes) {
			vm.throwRuntime(perr.RuntimeError, "index out of range")
			return
		}
		vm.push(value.Str(string(runes[i])))
	case value.Dict:
		if v, ok := base.Dct.Get(iv.String()); ok {
			vm.push(v)
			return
		}
		vm.throwRuntime(perr.RuntimeError, "key %q not found", iv.String())
	default:
		vm.throwRuntime(perr.TypeError, "cannot index a %v", base.Kind)
	}
}

func (vm *VM) indexStore() {
	newVal := vm.pop()
	iv := vm.pop()
	base := vm.pop()
	switch base.Kind {
	case value.List:
		i := resolveIndex(int(iv.Num), len(base.Lst))
		if i < 0 || i >= len(base.Lst) {
			vm.throwRuntime(perr.RuntimeError, "index out of range")
			return
		}
		base.Lst[i] = newVal.Clone()
	case value.Dict:
		base.Dct.Set(iv.String(), newVal.Clone())
	default:
		vm.throwRuntime(perr.TypeError, "cannot assign into a %v", base.Kind)
		return
	}
	vm.push(base)
}

func resolveIndex(i, length int) int {
	if i < 0 {
		return length + i
	}
	return i
}

// call pops the callee then argc arguments (in push order), resolves
// missing trailing parameters from FuncProto's per-parameter default
// sub-chunks, and pushes a new call frame.
func (vm *VM) call(argc int) {
	args := make([]value.Value, argc)
	for i := argc - 1; i >= 0; i-- {
		args[i] = vm.pop()
	}
	callee := vm.pop()
	if callee.Kind != value.Handle || callee.Hdl == nil || callee.Hdl.Kind != "bytecode_func" {
		vm.throwRuntime(perr.TypeError, "value is not callable")
		return
	}
	proto := callee.Hdl.Data.(*bytecode.FuncProto)
	if len(args) > len(proto.ParamNames) {
		vm.throwRuntime(perr.RuntimeError,
			"Function '%s' expects at most %d arguments, got %d", proto.Name, len(proto.ParamNames), len(args))
		return
	}

	// make zero-initializes each slot to the Value{} zero value, which is
	// Kind Null (iota 0) -- no explicit Null fill needed.
	locals := make([]value.Value, proto.NLocals)
	for i, a := range args {
		locals[i] = a.Clone()
	}
	for i := len(args); i < len(proto.ParamNames); i++ {
		if d := proto.Defaults[i]; d != nil {
			v, err := vm.runSubChunk(d)
			if err != nil {
				vm.throwRuntime(perr.RuntimeError, "%v", err)
				return
			}
			locals[i] = v
		}
	}

	vm.frames = append(vm.frames, &callFrame{chunk: proto.Body, locals: locals})
}

// runSubChunk executes a standalone chunk (a parameter default
// expression) to completion and returns its value, without disturbing
// the caller's own frame.
func (vm *VM) runSubChunk(chunk *bytecode.Chunk) (value.Value, error) {
	vm.frames = append(vm.frames, &callFrame{chunk: chunk})
	return vm.execFrames(len(vm.frames) - 1)
}

func (vm *VM) readLine() string {
	if vm.bufin == nil {
		return ""
	}
	line, err := vm.bufin.ReadString('\n')
	if err != nil && line == "" {
		return ""
	}
	return strings.TrimRight(line, "\r\n")
}

// uncaughtError converts a thrown Value that escaped every handler into
// a process-level error, formatted with its trace the same way
// internal/interp reports an uncaught Throw (§7).
func (vm *VM) uncaughtError(v value.Value) error {
	if v.Kind == value.ErrorVal && v.Err != nil {
		return fmt.Errorf("%s", v.Err.FormatWithTrace())
	}
	return fmt.Errorf("uncaught throw: %s", v.String())
}
