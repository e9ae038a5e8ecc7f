package interp

import (
	"bytes"
	"io"
	"io/ioutil"
)

// Option configures an Interp at construction time, following the same
// flattening convention as the bytecode VM's options: Options(opts...)
// collapses nested option lists into one value so New can accept a single
// variadic slice uniformly.
type Option interface{ apply(in *Interp) }

var defaultOptions = Options(
	withInput(bytes.NewReader(nil)),
	withOutput(ioutil.Discard),
)

func Options(opts ...Option) Option {
	var res options
	for _, opt := range opts {
		switch impl := opt.(type) {
		case nil, noption:
		case options:
			res = append(res, impl...)
		default:
			res = append(res, opt)
		}
	}
	switch len(res) {
	case 0:
		return noption{}
	case 1:
		return res[0]
	default:
		return res
	}
}

type noption struct{}

func (noption) apply(*Interp) {}

type options []Option

func (opts options) apply(in *Interp) {
	for _, opt := range opts {
		if opt != nil {
			opt.apply(in)
		}
	}
}

type inputOption struct{ io.Reader }
type outputOption struct{ io.Writer }
type stdlibPathOption string
type allowPlaceholderOption bool
type loggerOption struct{ log Logf }
type watchDirOption string

// WithInput sets the reader Ask for consumes lines from.
func WithInput(r io.Reader) Option { return inputOption{r} }

// WithOutput sets the writer Write prints to.
func WithOutput(w io.Writer) Option { return outputOption{w} }

// WithStdlibPath overrides the system-module search path (§6's
// POHLANG_STDLIB override), taking precedence over the environment
// variable when both are set.
func WithStdlibPath(path string) Option { return stdlibPathOption(path) }

// WithMissingNamePlaceholder toggles whether a missing identifier
// resolves to a "<name>" placeholder string (true, the historical
// default, §9) or raises a RuntimeError (false).
func WithMissingNamePlaceholder(allow bool) Option { return allowPlaceholderOption(allow) }

// WithLogf installs a log sink for diagnostic tracing of builtin/module
// dispatch, independent of program stdout.
func WithLogf(log Logf) Option { return loggerOption{log} }

// WithWatchDir enables the CLI's -watch mode (SPEC_FULL.md §4): every
// web server the program creates has hot reload auto-enabled against
// dir, without the program having to call enable_hot_reload itself.
func WithWatchDir(dir string) Option { return watchDirOption(dir) }

func (o inputOption) apply(in *Interp)  { in.input = o.Reader }
func (o outputOption) apply(in *Interp) { in.output = o.Writer }
func (o stdlibPathOption) apply(in *Interp) { in.stdlibPath = string(o) }
func (o allowPlaceholderOption) apply(in *Interp) { in.allowPlaceholder = bool(o) }
func (o loggerOption) apply(in *Interp) { in.log = o.log }
func (o watchDirOption) apply(in *Interp) { in.watchDir = string(o) }

// Logf is the logging hook shape shared with internal/logio.Logger.Leveledf.
type Logf func(level int, mess string, args ...interface{})
