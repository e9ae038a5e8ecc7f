// Package compiler lowers an internal/ast tree to internal/bytecode
// (§4.4): a per-scope local-slot allocator, jump-patching for control
// flow, constant interning, and sub-chunk compilation for function
// bodies (completing the reference's "currently lowered as placeholders"
// gap).
package compiler

import (
	"fmt"

	"github.com/jcorbin/pohlang/internal/ast"
	"github.com/jcorbin/pohlang/internal/bytecode"
)

const maxLocals = 256

// Compiler owns the target chunk and the current scope's local-slot
// table.
type Compiler struct {
	chunk  *bytecode.Chunk
	slots  map[string]int32
	nslots int32
}

// Compile lowers a whole program to a top-level chunk. Top-level Set
// statements bind globals (StoreGlobal), matching the tree interpreter's
// globals-at-top-level semantics; function bodies get their own local
// scope and are compiled into chunk.Funcs.
func Compile(prog *ast.Program) (*bytecode.Chunk, error) {
	c := &Compiler{chunk: bytecode.NewChunk(), slots: make(map[string]int32)}
	if err := c.compileStmts(prog.Stmts, true); err != nil {
		return nil, err
	}
	c.chunk.Emit(bytecode.Simple(bytecode.OpHalt))
	return c.chunk, nil
}

func (c *Compiler) compileStmts(stmts []ast.Stmt, topLevel bool) error {
	for _, s := range stmts {
		if err := c.compileStmt(s, topLevel); err != nil {
			return err
		}
	}
	return nil
}

func (c *Compiler) compileStmt(s ast.Stmt, topLevel bool) error {
	switch s := s.(type) {
	case *ast.Write:
		if err := c.compileExpr(s.Value); err != nil {
			return err
		}
		c.chunk.Emit(bytecode.Simple(bytecode.OpPrint))
		return nil
	case *ast.Set:
		if err := c.compileExpr(s.Value); err != nil {
			return err
		}
		return c.emitStore(s.Name, topLevel)
	case *ast.IfInline:
		return c.compileIfInline(s)
	case *ast.IfBlock:
		return c.compileIfBlock(s, topLevel)
	case *ast.While:
		return c.compileWhile(s, topLevel)
	case *ast.Repeat:
		return c.compileRepeat(s, topLevel)
	case *ast.TryCatch:
		return c.compileTryCatch(s, topLevel)
	case *ast.Throw:
		if err := c.compileExpr(s.Value); err != nil {
			return err
		}
		c.chunk.Emit(bytecode.Simple(bytecode.OpThrow))
		return nil
	case *ast.Return:
		if s.Value != nil {
			if err := c.compileExpr(s.Value); err != nil {
				return err
			}
		} else {
			c.chunk.Emit(bytecode.Simple(bytecode.OpLoadNull))
		}
		c.chunk.Emit(bytecode.Simple(bytecode.OpReturn))
		return nil
	case *ast.FuncDef:
		return c.compileFuncDef(s, topLevel)
	case *ast.Use:
		return c.compileUse(s, topLevel)
	case *ast.WriteToFile:
		if err := c.compileExpr(s.Content); err != nil {
			return err
		}
		if err := c.compileExpr(s.Path); err != nil {
			return err
		}
		c.chunk.Emit(bytecode.Simple(bytecode.OpWriteFile))
		return nil
	case *ast.AskFor:
		c.chunk.Emit(bytecode.Simple(bytecode.OpInput))
		return c.emitStore(s.Name, topLevel)
	case *ast.ImportLocal, *ast.ImportSystem:
		// Module loading is a host/interpreter concern (§1); the compiled
		// path does not re-enter the module loader.
		return nil
	}
	return fmt.Errorf("compiler: unsupported statement %T", s)
}

// compileIfInline implements §4.4's If-inline lowering: lower cond;
// JumpIfFalse placeholder; lower then+Print; if else present, Jump
// placeholder then patch JumpIfFalse; lower else+Print; patch Jump.
func (c *Compiler) compileIfInline(s *ast.IfInline) error {
	if err := c.compileExpr(s.Cond); err != nil {
		return err
	}
	jf := c.chunk.Emit(bytecode.JumpIfFalse(0))
	if err := c.compileExpr(s.Then); err != nil {
		return err
	}
	c.chunk.Emit(bytecode.Simple(bytecode.OpPrint))
	if s.Else != nil {
		j := c.chunk.Emit(bytecode.Jump(0))
		c.chunk.PatchJump(jf)
		if err := c.compileExpr(s.Else); err != nil {
			return err
		}
		c.chunk.Emit(bytecode.Simple(bytecode.OpPrint))
		c.chunk.PatchJump(j)
	} else {
		c.chunk.PatchJump(jf)
	}
	return nil
}

func (c *Compiler) compileIfBlock(s *ast.IfBlock, topLevel bool) error {
	if err := c.compileExpr(s.Cond); err != nil {
		return err
	}
	jf := c.chunk.Emit(bytecode.JumpIfFalse(0))
	if err := c.compileStmts(s.Then, topLevel); err != nil {
		return err
	}
	if s.Else != nil {
		j := c.chunk.Emit(bytecode.Jump(0))
		c.chunk.PatchJump(jf)
		if err := c.compileStmts(s.Else, topLevel); err != nil {
			return err
		}
		c.chunk.PatchJump(j)
	} else {
		c.chunk.PatchJump(jf)
	}
	return nil
}

// compileWhile follows §4.4 exactly: record loop-start offset, lower
// cond, JumpIfFalse placeholder, lower body, Loop back, patch the exit.
func (c *Compiler) compileWhile(s *ast.While, topLevel bool) error {
	loopStart := len(c.chunk.Code)
	if err := c.compileExpr(s.Cond); err != nil {
		return err
	}
	jf := c.chunk.Emit(bytecode.JumpIfFalse(0))
	if err := c.compileStmts(s.Body, topLevel); err != nil {
		return err
	}
	back := int32(len(c.chunk.Code) - loopStart + 1)
	c.chunk.Emit(bytecode.Loop(back))
	c.chunk.PatchJump(jf)
	return nil
}

// compileRepeat follows §4.4's hidden-counter-slot lowering.
func (c *Compiler) compileRepeat(s *ast.Repeat, topLevel bool) error {
	if err := c.compileExpr(s.Count); err != nil {
		return err
	}
	counter := c.allocSlot("$repeat_counter")
	c.chunk.Emit(bytecode.StoreLocal(counter))

	loopStart := len(c.chunk.Code)
	c.chunk.Emit(bytecode.LoadLocal(counter))
	c.chunk.Emit(bytecode.LoadConst(int32(c.chunk.Pool.AddNumber(0))))
	c.chunk.Emit(bytecode.Simple(bytecode.OpGreater))
	jf := c.chunk.Emit(bytecode.JumpIfFalse(0))

	if err := c.compileStmts(s.Body, topLevel); err != nil {
		return err
	}

	c.chunk.Emit(bytecode.LoadLocal(counter))
	c.chunk.Emit(bytecode.LoadConst(int32(c.chunk.Pool.AddNumber(1))))
	c.chunk.Emit(bytecode.Simple(bytecode.OpSubtract))
	c.chunk.Emit(bytecode.StoreLocal(counter))

	back := int32(len(c.chunk.Code) - loopStart + 1)
	c.chunk.Emit(bytecode.Loop(back))
	c.chunk.PatchJump(jf)
	return nil
}

// compileTryCatch follows §4.4: PushTryHandler placeholder; try-body;
// PopTryHandler; Jump to end; patch handler; per catch handler, bind or
// Pop the thrown value, lower its body, merge; patch end; finally inline
// after the merge.
func (c *Compiler) compileTryCatch(s *ast.TryCatch, topLevel bool) error {
	handlerPos := c.chunk.Emit(bytecode.PushTryHandler(0))
	if err := c.compileStmts(s.Try, topLevel); err != nil {
		return err
	}
	c.chunk.Emit(bytecode.Simple(bytecode.OpPopTryHandler))
	endJump := c.chunk.Emit(bytecode.Jump(0))
	c.chunk.PatchJump(handlerPos)

	var merges []int
	for _, h := range s.Catches {
		if h.Var != "" {
			slot := c.allocSlot(h.Var)
			c.chunk.Emit(bytecode.StoreLocal(slot))
		} else {
			c.chunk.Emit(bytecode.Simple(bytecode.OpPop))
		}
		if err := c.compileStmts(h.Body, topLevel); err != nil {
			return err
		}
		merges = append(merges, c.chunk.Emit(bytecode.Jump(0)))
	}
	for _, m := range merges {
		c.chunk.PatchJump(m)
	}
	c.chunk.PatchJump(endJump)
	return c.compileStmts(s.Finally, topLevel)
}

// compileUse evaluates the call for effect and discards the result; §4.4
// leaves function-call statements a placeholder -- completed here via the
// same name-lookup-then-Call sequence evalCall uses for expressions.
func (c *Compiler) compileUse(s *ast.Use, topLevel bool) error {
	if err := c.emitCall(s.Name, s.Args); err != nil {
		return err
	}
	c.chunk.Emit(bytecode.Simple(bytecode.OpPop))
	return nil
}

func (c *Compiler) emitStore(name string, topLevel bool) error {
	if topLevel {
		c.chunk.Emit(bytecode.StoreGlobal(name))
		return nil
	}
	slot := c.allocSlot(name)
	c.chunk.Emit(bytecode.StoreLocal(slot))
	return nil
}

// allocSlot returns name's local slot, allocating one if needed. Panics
// past maxLocals rather than returning an error: callers lower
// expressions/statements with (err error) signatures already threaded
// through everywhere else, and a function with 256+ locals is a
// programmer error the parser's own limits make unreachable in practice.
func (c *Compiler) allocSlot(name string) int32 {
	if slot, ok := c.slots[name]; ok {
		return slot
	}
	if c.nslots >= maxLocals {
		panic(fmt.Sprintf("compiler: too many locals in scope (limit %d)", maxLocals))
	}
	slot := c.nslots
	c.slots[name] = slot
	c.nslots++
	return slot
}
