package interp

import (
	"github.com/jcorbin/pohlang/internal/ast"
	"github.com/jcorbin/pohlang/internal/perr"
	"github.com/jcorbin/pohlang/internal/value"
)

// maxRepeatIterations is the silent guard cap on Repeat/While-style
// iteration the reference language applies to Repeat (§9's Open Question
// disposition: the cap stays silent rather than becoming a RuntimeError).
const maxRepeatIterations = 1_000_000

func (in *Interp) execStmts(lf *localFrame, stmts []ast.Stmt) {
	for _, s := range stmts {
		in.execStmt(lf, s)
	}
}

func (in *Interp) execStmt(lf *localFrame, s ast.Stmt) {
	switch s := s.(type) {
	case *ast.Write:
		in.execWrite(lf, s)
	case *ast.WriteToFile:
		in.execWriteToFile(lf, s)
	case *ast.AskFor:
		in.execAskFor(lf, s)
	case *ast.Set:
		v := in.eval(lf, s.Value)
		in.bind(lf, s.Name, v)
	case *ast.IfInline:
		in.execIfInline(lf, s)
	case *ast.IfBlock:
		in.execIfBlock(lf, s)
	case *ast.While:
		in.execWhile(lf, s)
	case *ast.Repeat:
		in.execRepeat(lf, s)
	case *ast.FuncDef:
		in.execFuncDef(lf, s)
	case *ast.Use:
		in.execUse(lf, s)
	case *ast.Return:
		in.execReturn(lf, s)
	case *ast.ImportLocal:
		in.importLocal(s.Path)
	case *ast.ImportSystem:
		in.importSystem(s)
	case *ast.TryCatch:
		in.execTryCatch(lf, s)
	case *ast.Throw:
		in.execThrow(lf, s)
	default:
		panic(in.newErr(perr.RuntimeError, "unsupported statement node %T", s))
	}
}

// execWrite implements the bare-identifier-naming-a-function convenience
// (§9): `Write greet` invokes greet as a nullary call rather than printing
// "<function greet>".
func (in *Interp) execWrite(lf *localFrame, w *ast.Write) {
	if id, ok := w.Value.(*ast.Identifier); ok {
		if fn, ok := in.lookupFunction(lf, id.Name); ok {
			result := in.callUserFunction(fn, nil)
			in.writeln(result.String())
			return
		}
	}
	v := in.eval(lf, w.Value)
	in.writeln(v.String())
}

func (in *Interp) execWriteToFile(lf *localFrame, w *ast.WriteToFile) {
	content := in.eval(lf, w.Content)
	path := in.eval(lf, w.Path)
	if err := in.host.WriteFile(path.String(), content.String()); err != nil {
		panic(throwSignal{in.newErr(perr.FileError, "%v", err)})
	}
}

func (in *Interp) execAskFor(lf *localFrame, a *ast.AskFor) {
	line, _ := in.readLine()
	in.bind(lf, a.Name, value.Str(line))
}

func (in *Interp) execIfInline(lf *localFrame, s *ast.IfInline) {
	cond := in.eval(lf, s.Cond)
	if cond.Truthy() {
		v := in.eval(lf, s.Then)
		in.writeln(v.String())
	} else if s.Else != nil {
		v := in.eval(lf, s.Else)
		in.writeln(v.String())
	}
}

func (in *Interp) execIfBlock(lf *localFrame, s *ast.IfBlock) {
	cond := in.eval(lf, s.Cond)
	if cond.Truthy() {
		in.execStmts(lf, s.Then)
	} else if s.Else != nil {
		in.execStmts(lf, s.Else)
	}
}

func (in *Interp) execWhile(lf *localFrame, s *ast.While) {
	for i := 0; i < maxRepeatIterations; i++ {
		cond := in.eval(lf, s.Cond)
		if !cond.Truthy() {
			return
		}
		in.execStmts(lf, s.Body)
	}
}

// execRepeat treats a non-number count as 0 (§4.3).
func (in *Interp) execRepeat(lf *localFrame, s *ast.Repeat) {
	cv := in.eval(lf, s.Count)
	n := 0
	if cv.Kind == value.Number {
		n = int(cv.Num)
	}
	if n > maxRepeatIterations {
		n = maxRepeatIterations
	}
	for i := 0; i < n; i++ {
		in.execStmts(lf, s.Body)
	}
}

// execFuncDef binds a Function value into the current scope, snapshotting
// the defining frame's locals plus its own captured chain as the new
// function's captured chain (§4.3).
func (in *Interp) execFuncDef(lf *localFrame, f *ast.FuncDef) {
	fn := &value.Function{Name: f.Name, Params: f.Params, Body: f.Body}
	if lf != nil {
		snap := make(map[string]value.Value, len(lf.locals))
		for k, v := range lf.locals {
			snap[k] = v
		}
		fn.Captured = append([]map[string]value.Value{snap}, lf.captured...)
	}
	in.bind(lf, f.Name, value.FuncV(fn))
}

// execUse invokes a function by name for effect; the result is printed
// unless it is the empty string or null (§9: the empty-string-as-void
// sentinel is kept rather than replaced with a dedicated void value).
func (in *Interp) execUse(lf *localFrame, u *ast.Use) {
	args := make([]value.Value, len(u.Args))
	for i, a := range u.Args {
		args[i] = in.eval(lf, a)
	}
	result := in.callFunction(lf, u.Name, args)
	if result.Kind == value.String && result.Str == "" {
		return
	}
	if result.Kind == value.Null {
		return
	}
	in.writeln(result.String())
}

// execReturn is a no-op at top level (§4.3); inside a function it unwinds
// the current call via panic/recover, matching the VM's internal
// control-transfer idiom.
func (in *Interp) execReturn(lf *localFrame, r *ast.Return) {
	if lf == nil {
		return
	}
	if r.Value == nil {
		panic(returnSignal{value.NullV()})
	}
	panic(returnSignal{in.eval(lf, r.Value)})
}

func (in *Interp) execThrow(lf *localFrame, t *ast.Throw) {
	v := in.eval(lf, t.Value)
	var e *perr.Error
	if v.Kind == value.ErrorVal {
		e = v.Err
	} else {
		e = in.newErr(perr.RuntimeError, "%s", v.String())
	}
	e.Stack = in.stackTrace()
	panic(throwSignal{e})
}

// execTryCatch implements §4.3's try/catch/finally semantics, completing
// in-function try/catch fully rather than leaving it an incomplete stub
// (the reference implementation's gap, per design notes): finally runs on
// every path, including one where a Return or a genuine panic propagates
// through.
func (in *Interp) execTryCatch(lf *localFrame, t *ast.TryCatch) {
	var caught *perr.Error
	func() {
		defer func() {
			if r := recover(); r != nil {
				if ts, ok := r.(throwSignal); ok {
					caught = ts.Err
					return
				}
				in.execStmts(lf, t.Finally)
				panic(r)
			}
		}()
		in.execStmts(lf, t.Try)
	}()
	if caught == nil {
		in.execStmts(lf, t.Finally)
		return
	}

	for _, c := range t.Catches {
		if c.Type != "" && !perr.MatchesType(caught, c.Type) {
			continue
		}
		if c.Var != "" {
			in.bind(lf, c.Var, value.Str(caught.Message))
		}
		func() {
			defer func() {
				if r := recover(); r != nil {
					in.execStmts(lf, t.Finally)
					panic(r)
				}
			}()
			in.execStmts(lf, c.Body)
		}()
		in.execStmts(lf, t.Finally)
		return
	}
	in.execStmts(lf, t.Finally)
	panic(throwSignal{caught})
}
