package vmrun

import (
	"bytes"
	"io"
	"io/ioutil"
)

// Option configures a VM at construction time, flattened the same way
// internal/interp's Option is.
type Option interface{ apply(vm *VM) }

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

func (noption) apply(*VM) {}

type options []Option

func (opts options) apply(vm *VM) {
	for _, opt := range opts {
		if opt != nil {
			opt.apply(vm)
		}
	}
}

type inputOption struct{ io.Reader }
type outputOption struct{ io.Writer }
type loggerOption struct{ log Logf }

func withInput(r io.Reader) Option  { return inputOption{r} }
func withOutput(w io.Writer) Option { return outputOption{w} }

// WithInput sets the reader Input opcodes read lines from.
func WithInput(r io.Reader) Option { return inputOption{r} }

// WithOutput sets the writer Print opcodes write to.
func WithOutput(w io.Writer) Option { return outputOption{w} }

// WithLogf installs a log sink for step tracing, grounded on the
// teacher VM's vm.logfn-gated step() tracing (internals.go).
func WithLogf(log Logf) Option { return loggerOption{log} }

func (o inputOption) apply(vm *VM)  { vm.input = o.Reader }
func (o outputOption) apply(vm *VM) { vm.output = o.Writer }
func (o loggerOption) apply(vm *VM) { vm.log = o.log }
