package interp

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/jcorbin/pohlang/internal/ast"
	"github.com/jcorbin/pohlang/internal/parser"
	"github.com/jcorbin/pohlang/internal/perr"
	"github.com/jcorbin/pohlang/internal/value"
)

// importLocal resolves path relative to the executing file's directory,
// adds .poh if missing, and executes it exactly once (§4.3's module-
// load-once guarantee), guarding against circular imports.
func (in *Interp) importLocal(path string) {
	if !strings.HasSuffix(path, ".poh") {
		path += ".poh"
	}
	dir := filepath.Dir(in.file)
	full := filepath.Join(dir, path)
	canonical, err := filepath.Abs(full)
	if err != nil {
		canonical = full
	}

	if in.loadedLocal[canonical] {
		return
	}
	for _, loading := range in.loading {
		if loading == canonical {
			panic(throwSignal{in.newErr(perr.RuntimeError, "Circular import")})
		}
	}

	src, err := os.ReadFile(canonical)
	if err != nil {
		panic(throwSignal{in.newErr(perr.FileError, "%v", err)})
	}
	prog, parseErr := parser.Parse(canonical, string(src))
	if parseErr != nil {
		panic(throwSignal{in.newErr(perr.RuntimeError, "%v", parseErr)})
	}

	in.loading = append(in.loading, canonical)
	savedFile := in.file
	in.file = canonical
	defer func() {
		in.file = savedFile
		in.loading = in.loading[:len(in.loading)-1]
	}()

	in.execStmts(nil, prog.Stmts)
	in.loadedLocal[canonical] = true
}

// importSystem resolves a named system module by searching the
// WithStdlibPath directory (if set), then POHLANG_STDLIB (if set), then walking upward from the base directory
// for a conventional stdlib folder, then the current working directory
// (§4.3, §6). The module executes against a fresh globals snapshot whose
// new bindings become its exports table; alias and exposing are then
// applied.
func (in *Interp) importSystem(s *ast.ImportSystem) {
	if !in.loadedSystem[s.Name] {
		path, ok := in.resolveSystemModule(s.Name)
		if !ok {
			panic(throwSignal{in.newErr(perr.FileError, "system module '%s' not found", s.Name)})
		}
		src, err := os.ReadFile(path)
		if err != nil {
			panic(throwSignal{in.newErr(perr.FileError, "%v", err)})
		}
		prog, parseErr := parser.Parse(path, string(src))
		if parseErr != nil {
			panic(throwSignal{in.newErr(perr.RuntimeError, "%v", parseErr)})
		}

		savedGlobals := in.globals
		savedFile := in.file
		in.globals = make(map[string]value.Value)
		in.file = path
		func() {
			defer func() {
				in.exports[s.Name] = in.globals
				in.globals = savedGlobals
				in.file = savedFile
			}()
			in.execStmts(nil, prog.Stmts)
		}()
		in.loadedSystem[s.Name] = true
	}
	in.applyImportBindings(s)
}

func (in *Interp) applyImportBindings(s *ast.ImportSystem) {
	if s.Alias != "" {
		in.alias[s.Alias] = s.Name
	}
	exports := in.exports[s.Name]
	for _, sym := range s.Exposing {
		v, ok := exports[sym]
		if !ok {
			panic(throwSignal{in.newErr(perr.RuntimeError, "system module '%s' does not export '%s'", s.Name, sym)})
		}
		if existingSrc, conflict := in.exposedFrom[sym]; conflict && existingSrc != s.Name {
			panic(throwSignal{in.newErr(perr.RuntimeError, "exposed symbol '%s' conflicts between '%s' and '%s'", sym, existingSrc, s.Name)})
		}
		in.globals[sym] = v
		in.exposedFrom[sym] = s.Name
	}
}

func (in *Interp) resolveSystemModule(name string) (string, bool) {
	candidates := []string{}
	if in.stdlibPath != "" {
		candidates = append(candidates, in.stdlibPath)
	}
	if override := os.Getenv("POHLANG_STDLIB"); override != "" {
		candidates = append(candidates, override)
	}
	dir := filepath.Dir(in.file)
	for d := dir; ; {
		candidates = append(candidates, filepath.Join(d, "stdlib"))
		parent := filepath.Dir(d)
		if parent == d {
			break
		}
		d = parent
	}
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, cwd)
	}
	for _, base := range candidates {
		full := filepath.Join(base, name+".poh")
		if st, err := os.Stat(full); err == nil && !st.IsDir() {
			return full, true
		}
	}
	return "", false
}
