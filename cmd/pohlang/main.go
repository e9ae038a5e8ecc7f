// Command pohlang runs, compiles, or disassembles a phrase-oriented
// program (SPEC_FULL.md §0/§4): by default on the tree-walking
// path, -vm to execute through the bytecode compiler and stack
// machine instead, -compile to emit a .pbc file, -dump to list a
// chunk's bytecode, and -watch to auto-enable hot reload for any web
// server the program starts.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jcorbin/pohlang/internal/bccodec"
	"github.com/jcorbin/pohlang/internal/compiler"
	"github.com/jcorbin/pohlang/internal/host"
	"github.com/jcorbin/pohlang/internal/interp"
	"github.com/jcorbin/pohlang/internal/logio"
	"github.com/jcorbin/pohlang/internal/parser"
	"github.com/jcorbin/pohlang/internal/vmrun"
)

func main() {
	var (
		compileOut  string
		dump        bool
		trace       bool
		useVM       bool
		watch       bool
		timeout     time.Duration
		templateDir string
		stdlibPath  string
	)
	flag.StringVar(&compileOut, "compile", "", "compile the program to a .pbc bytecode file instead of running it")
	flag.BoolVar(&dump, "dump", false, "print a bytecode disassembly of the compiled program")
	flag.BoolVar(&trace, "trace", false, "enable trace logging")
	flag.BoolVar(&useVM, "vm", false, "run the bytecode compiler and stack machine instead of the tree interpreter")
	flag.BoolVar(&watch, "watch", false, "auto-enable hot reload for any web server the program starts")
	flag.DurationVar(&timeout, "timeout", 0, "specify a time limit")
	flag.StringVar(&templateDir, "templates", "", "directory of html templates for render_template")
	flag.StringVar(&stdlibPath, "stdlib", "", "override the system-module search path (POHLANG_STDLIB)")
	flag.Parse()

	log := logio.Logger{}
	log.SetOutput(os.Stderr)
	defer os.Exit(log.ExitCode())

	args := flag.Args()
	if len(args) != 1 {
		log.Errorf("usage: pohlang [flags] <program.poh|program.pbc>")
		return
	}
	path := args[0]

	var hostOpts []host.Option
	if templateDir != "" {
		hostOpts = append(hostOpts, host.WithTemplateDir(templateDir))
	}
	services := host.New(hostOpts...)

	ctx := context.Background()
	if timeout != 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if strings.HasSuffix(path, ".pbc") {
		log.ErrorIf(runChunkFile(ctx, &log, services, path, dump, trace))
		return
	}

	src, err := os.ReadFile(path)
	if err != nil {
		log.Errorf("%v", err)
		return
	}
	prog, err := parser.Parse(path, string(src))
	if err != nil {
		log.Errorf("%v", err)
		return
	}

	if useVM || dump || compileOut != "" {
		chunk, err := compiler.Compile(prog)
		if err != nil {
			log.Errorf("%v", err)
			return
		}
		if dump {
			bccodec.Disassemble(os.Stdout, path, chunk)
		}
		if compileOut != "" {
			data, err := bccodec.Encode(chunk)
			if err != nil {
				log.Errorf("%v", err)
				return
			}
			if err := os.WriteFile(compileOut, data, 0o644); err != nil {
				log.Errorf("%v", err)
				return
			}
		}
		if useVM {
			vmOpts := []vmrun.Option{
				vmrun.WithInput(os.Stdin),
				vmrun.WithOutput(os.Stdout),
			}
			if trace {
				vmOpts = append(vmOpts, vmrun.WithLogf(leveledIntf(log.Leveledf("TRACE"))))
			}
			vm := vmrun.New(services, vmOpts...)
			log.ErrorIf(runWithTimeout(ctx, func() error {
				_, err := vm.Run(chunk)
				return err
			}))
		}
		return
	}

	inOpts := []interp.Option{
		interp.WithInput(os.Stdin),
		interp.WithOutput(os.Stdout),
		interp.WithStdlibPath(stdlibPath),
	}
	if watch {
		inOpts = append(inOpts, interp.WithWatchDir(dirOf(path)))
	}
	if trace {
		inOpts = append(inOpts, interp.WithLogf(leveledIntf(log.Leveledf("TRACE"))))
	}
	in := interp.New(services, inOpts...)
	log.ErrorIf(runWithTimeout(ctx, func() error {
		return in.Run(path, prog)
	}))
}

// runChunkFile loads a previously-compiled .pbc file and either lists
// it (-dump) or executes it on the stack machine.
func runChunkFile(ctx context.Context, log *logio.Logger, services *host.Services, path string, dump, trace bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	chunk, err := bccodec.Decode(data)
	if err != nil {
		return err
	}
	if dump {
		bccodec.Disassemble(os.Stdout, path, chunk)
		return nil
	}
	vmOpts := []vmrun.Option{
		vmrun.WithInput(os.Stdin),
		vmrun.WithOutput(os.Stdout),
	}
	if trace {
		vmOpts = append(vmOpts, vmrun.WithLogf(leveledIntf(log.Leveledf("TRACE"))))
	}
	vm := vmrun.New(services, vmOpts...)
	return runWithTimeout(ctx, func() error {
		_, err := vm.Run(chunk)
		return err
	})
}

// runWithTimeout races f against ctx's deadline (§4's execution-core
// Non-goal on preemptive cancellation means f itself isn't interrupted
// mid-step; this only bounds how long main waits for it).
func runWithTimeout(ctx context.Context, f func() error) error {
	if _, ok := ctx.Deadline(); !ok {
		return f()
	}
	done := make(chan error, 1)
	go func() { done <- f() }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("timed out: %w", ctx.Err())
	}
}

// leveledIntf adapts logio.Logger's string-leveled printf shape to the
// int-leveled Logf hook interp/vmrun expect; every trace call here is
// already scoped to a single "TRACE" sink, so the int level is unused.
func leveledIntf(f func(mess string, args ...interface{})) func(level int, mess string, args ...interface{}) {
	return func(level int, mess string, args ...interface{}) { f(mess, args...) }
}

func dirOf(path string) string {
	i := strings.LastIndexByte(path, '/')
	if i < 0 {
		return "."
	}
	return path[:i]
}
