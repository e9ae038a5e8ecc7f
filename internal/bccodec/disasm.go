package bccodec

import (
	"fmt"
	"io"

	"github.com/jcorbin/pohlang/internal/bytecode"
)

// Disassemble writes a human-readable listing of chunk to out: one line
// per instruction (address, mnemonic, decoded operand), the constant
// pool, and -- recursively -- any function sub-chunks, adapted from the
// teacher's vmDumper (dumper.go) onto this ISA's opcodes instead of
// Forth's memory cells.
func Disassemble(out io.Writer, name string, chunk *bytecode.Chunk) {
	fmt.Fprintf(out, "# chunk %s (version %d)\n", name, chunk.Version)

	fmt.Fprintf(out, "  constants:\n")
	for i, c := range chunk.Pool.All() {
		fmt.Fprintf(out, "    %4d  %s\n", i, formatConst(c))
	}

	fmt.Fprintf(out, "  code:\n")
	for addr, ins := range chunk.Code {
		fmt.Fprintf(out, "    %4d  %s\n", addr, formatInstruction(chunk, addr, ins))
	}

	if chunk.Debug != nil {
		fmt.Fprintf(out, "  debug: source=%q locals=%v\n", chunk.Debug.SourceFile, chunk.Debug.Locals)
	}

	for _, fn := range chunk.Funcs {
		fmt.Fprintf(out, "\n# function %s(%v)\n", fn.Name, fn.ParamNames)
		if fn.Body != nil {
			Disassemble(out, fn.Name+".body", fn.Body)
		}
		for i, def := range fn.Defaults {
			if def != nil {
				Disassemble(out, fmt.Sprintf("%s.default[%d]", fn.Name, i), def)
			}
		}
	}
}

func formatConst(c bytecode.Const) string {
	switch c.Kind {
	case bytecode.ConstNumber:
		return fmt.Sprintf("number %v", c.Num)
	case bytecode.ConstString:
		return fmt.Sprintf("string %q", c.Str)
	case bytecode.ConstBoolean:
		return fmt.Sprintf("boolean %v", c.Bl)
	case bytecode.ConstNull:
		return "null"
	}
	return "unknown"
}

func formatInstruction(chunk *bytecode.Chunk, addr int, ins bytecode.Instruction) string {
	name := ins.Op.Name()
	switch {
	case ins.Op.HasStringOperand():
		return fmt.Sprintf("%-14s %q", name, ins.Str)
	case ins.Op == bytecode.OpCall:
		return fmt.Sprintf("%-14s argc=%d", name, ins.Argc)
	case ins.Op == bytecode.OpLoadConst:
		if c, ok := chunk.Pool.Get(int(ins.Operand)); ok {
			return fmt.Sprintf("%-14s %d  ; %s", name, ins.Operand, formatConst(c))
		}
		return fmt.Sprintf("%-14s %d", name, ins.Operand)
	case ins.Op == bytecode.OpJump, ins.Op == bytecode.OpJumpIfFalse,
		ins.Op == bytecode.OpJumpIfTrue, ins.Op == bytecode.OpLoop,
		ins.Op == bytecode.OpPushTryHandler:
		target := addr + 1 + int(ins.Operand)
		if ins.Op == bytecode.OpLoop {
			target = addr + 1 - int(ins.Operand)
		}
		return fmt.Sprintf("%-14s %+d  ; -> %d", name, ins.Operand, target)
	case ins.Op.OperandSize() > 1:
		return fmt.Sprintf("%-14s %d", name, ins.Operand)
	default:
		return name
	}
}
