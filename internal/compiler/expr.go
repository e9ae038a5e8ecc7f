package compiler

import (
	"fmt"

	"github.com/jcorbin/pohlang/internal/ast"
	"github.com/jcorbin/pohlang/internal/bytecode"
)

func (c *Compiler) compileExpr(e ast.Expr) error {
	switch e := e.(type) {
	case *ast.NumberLit:
		c.chunk.Emit(bytecode.LoadConst(int32(c.chunk.Pool.AddNumber(e.Value))))
		return nil
	case *ast.StringLit:
		c.chunk.Emit(bytecode.LoadConst(int32(c.chunk.Pool.AddString(e.Value))))
		return nil
	case *ast.BoolLit:
		if e.Value {
			c.chunk.Emit(bytecode.Simple(bytecode.OpLoadTrue))
		} else {
			c.chunk.Emit(bytecode.Simple(bytecode.OpLoadFalse))
		}
		return nil
	case *ast.NullLit:
		c.chunk.Emit(bytecode.Simple(bytecode.OpLoadNull))
		return nil
	case *ast.Identifier:
		if slot, ok := c.slots[e.Name]; ok {
			c.chunk.Emit(bytecode.LoadLocal(slot))
			return nil
		}
		c.chunk.Emit(bytecode.LoadGlobal(e.Name))
		return nil
	case *ast.Binary:
		if err := c.compileExpr(e.Left); err != nil {
			return err
		}
		if err := c.compileExpr(e.Right); err != nil {
			return err
		}
		switch e.Op {
		case ast.OpAdd:
			c.chunk.Emit(bytecode.Simple(bytecode.OpAdd))
		case ast.OpSub:
			c.chunk.Emit(bytecode.Simple(bytecode.OpSubtract))
		case ast.OpMul:
			c.chunk.Emit(bytecode.Simple(bytecode.OpMultiply))
		case ast.OpDiv:
			c.chunk.Emit(bytecode.Simple(bytecode.OpDivide))
		default:
			return fmt.Errorf("compiler: unsupported binary op %v", e.Op)
		}
		return nil
	case *ast.Compare:
		if err := c.compileExpr(e.Left); err != nil {
			return err
		}
		if err := c.compileExpr(e.Right); err != nil {
			return err
		}
		switch e.Op {
		case ast.CmpEq:
			c.chunk.Emit(bytecode.Simple(bytecode.OpEqual))
		case ast.CmpNe:
			c.chunk.Emit(bytecode.Simple(bytecode.OpNotEqual))
		case ast.CmpGt:
			c.chunk.Emit(bytecode.Simple(bytecode.OpGreater))
		case ast.CmpGe:
			c.chunk.Emit(bytecode.Simple(bytecode.OpGreaterEqual))
		case ast.CmpLt:
			c.chunk.Emit(bytecode.Simple(bytecode.OpLess))
		case ast.CmpLe:
			c.chunk.Emit(bytecode.Simple(bytecode.OpLessEqual))
		default:
			return fmt.Errorf("compiler: unsupported compare op %v", e.Op)
		}
		return nil
	case *ast.Logical:
		if err := c.compileExpr(e.Left); err != nil {
			return err
		}
		if err := c.compileExpr(e.Right); err != nil {
			return err
		}
		if e.Op == ast.LogAnd {
			c.chunk.Emit(bytecode.Simple(bytecode.OpAnd))
		} else {
			c.chunk.Emit(bytecode.Simple(bytecode.OpOr))
		}
		return nil
	case *ast.Not:
		if err := c.compileExpr(e.X); err != nil {
			return err
		}
		c.chunk.Emit(bytecode.Simple(bytecode.OpNot))
		return nil
	case *ast.Index:
		if err := c.compileExpr(e.Base); err != nil {
			return err
		}
		if err := c.compileExpr(e.Idx); err != nil {
			return err
		}
		c.chunk.Emit(bytecode.Simple(bytecode.OpIndex))
		return nil
	case *ast.ListLit:
		for _, it := range e.Items {
			if err := c.compileExpr(it); err != nil {
				return err
			}
		}
		c.chunk.Emit(bytecode.BuildList(int32(len(e.Items))))
		return nil
	case *ast.DictLit:
		for i := range e.Keys {
			c.chunk.Emit(bytecode.LoadConst(int32(c.chunk.Pool.AddString(e.Keys[i]))))
			if err := c.compileExpr(e.Values[i]); err != nil {
				return err
			}
		}
		c.chunk.Emit(bytecode.BuildDict(int32(len(e.Keys))))
		return nil
	case *ast.ErrorLit:
		c.chunk.Emit(bytecode.LoadConst(int32(c.chunk.Pool.AddString(e.Type))))
		if err := c.compileExpr(e.Message); err != nil {
			return err
		}
		c.chunk.Emit(bytecode.BuildDict(1))
		return nil
	case *ast.Builtin:
		for _, a := range e.Args {
			if err := c.compileExpr(a); err != nil {
				return err
			}
		}
		c.chunk.Emit(bytecode.LoadGlobal(e.Name))
		c.chunk.Emit(bytecode.Call(byte(len(e.Args))))
		return nil
	case *ast.Call:
		return c.emitCall(e.Name, e.Args)
	}
	return fmt.Errorf("compiler: unsupported expression %T", e)
}

// emitCall lowers a call by name: push the callee (local slot if bound
// as one -- e.g. a closure stored in a variable -- else a global lookup),
// then each argument, then Call(argc), per §4.4's compiler notes.
func (c *Compiler) emitCall(name string, args []ast.Expr) error {
	if slot, ok := c.slots[name]; ok {
		c.chunk.Emit(bytecode.LoadLocal(slot))
	} else {
		c.chunk.Emit(bytecode.LoadGlobal(name))
	}
	for _, a := range args {
		if err := c.compileExpr(a); err != nil {
			return err
		}
	}
	c.chunk.Emit(bytecode.Call(byte(len(args))))
	return nil
}

// compileFuncDef compiles s.Body into its own sub-chunk with a fresh
// local-slot scope (one slot per parameter, in order), registers a
// FuncProto in the parent chunk's Funcs table, and emits OpLoadFunc
// followed by a bind (StoreGlobal at top level, StoreLocal for a nested
// definition) -- completing the "function bodies are currently lowered as
// placeholders" gap.
func (c *Compiler) compileFuncDef(s *ast.FuncDef, topLevel bool) error {
	fc := &Compiler{chunk: bytecode.NewChunk(), slots: make(map[string]int32)}
	paramNames := make([]string, len(s.Params))
	defaults := make([]*bytecode.Chunk, len(s.Params))
	for i, p := range s.Params {
		paramNames[i] = p.Name
		fc.allocSlot(p.Name)
		if p.Default != nil {
			dc := &Compiler{chunk: bytecode.NewChunk(), slots: make(map[string]int32)}
			if err := dc.compileExpr(p.Default); err != nil {
				return err
			}
			dc.chunk.Emit(bytecode.Simple(bytecode.OpReturn))
			defaults[i] = dc.chunk
		}
	}

	isExprBody := false
	switch body := s.Body.(type) {
	case *ast.ExprBody:
		isExprBody = true
		if err := fc.compileExpr(body.Expr); err != nil {
			return err
		}
		fc.chunk.Emit(bytecode.Simple(bytecode.OpReturn))
	case *ast.BlockBody:
		if err := fc.compileStmts(body.Stmts, false); err != nil {
			return err
		}
		fc.chunk.Emit(bytecode.Simple(bytecode.OpLoadNull))
		fc.chunk.Emit(bytecode.Simple(bytecode.OpReturn))
	default:
		return fmt.Errorf("compiler: unsupported function body %T", s.Body)
	}

	proto := &bytecode.FuncProto{
		Name:       s.Name,
		ParamNames: paramNames,
		Defaults:   defaults,
		Body:       fc.chunk,
		IsExprBody: isExprBody,
		NLocals:    fc.nslots,
	}
	c.chunk.Funcs = append(c.chunk.Funcs, proto)
	c.chunk.Emit(bytecode.LoadFunc(int32(len(c.chunk.Funcs) - 1)))
	return c.emitStore(s.Name, topLevel)
}
