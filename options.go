package forth

import (
	"bytes"
	"io"
	"os"

	"github.com/jcorbin/goforth/internal/flushio"
)

// Option configures a VM under construction.
type Option interface{ apply(vm *VM) }

// Options combines options into one.
func Options(opts ...Option) Option {
	return options(opts)
}

type options []Option

func (opts options) apply(vm *VM) {
	for _, opt := range opts {
		if opt != nil {
			opt.apply(vm)
		}
	}
}

var defaultOptions = Options(
	WithInput(bytes.NewReader(nil)),
	WithOutput(io.Discard),
	WithDiagnostics(os.Stderr),
)

type optFunc func(vm *VM)

func (f optFunc) apply(vm *VM) { f(vm) }

// WithInput sets the machine's input stream.
func WithInput(r io.Reader) Option {
	return optFunc(func(vm *VM) { vm.in.Reset(r) })
}

// WithOutput sets the machine's output stream.
func WithOutput(w io.Writer) Option {
	return optFunc(func(vm *VM) {
		if vm.out != nil {
			vm.out.Flush()
		}
		vm.out = flushio.NewWriteFlusher(w)
	})
}

// WithTee copies machine output to an additional writer.
func WithTee(w io.Writer) Option {
	return optFunc(func(vm *VM) {
		vm.out = flushio.Multi(vm.out, flushio.NewWriteFlusher(w))
	})
}

// WithDiagnostics sets the stream for `( error ... )` and `( fatal ... )`
// lines; defaults to stderr.
func WithDiagnostics(w io.Writer) Option {
	return optFunc(func(vm *VM) { vm.diag = w })
}

// WithSize sets the core image size in cells; below MinimumCoreSize New
// fails.
func WithSize(cells uint) Option {
	return optFunc(func(vm *VM) { vm.coreSize = Cell(cells) })
}

// WithLogf enables trace logging of every dispatch.
func WithLogf(logfn func(mess string, args ...interface{})) Option {
	return optFunc(func(vm *VM) { vm.logfn = logfn })
}

// WithStepFunc installs a hook called before every dispatch; the machine is
// quiescent for the duration of the call, so the hook may inspect it (or
// park it, as the viewer does). Note that a hook given at construction also
// sees the bootstrap run; SetStepFunc attaches one afterward.
func WithStepFunc(stepfn func(ev StepEvent)) Option {
	return optFunc(func(vm *VM) { vm.stepfn = stepfn })
}

// SetStepFunc replaces the dispatch hook; see WithStepFunc.
func (vm *VM) SetStepFunc(stepfn func(ev StepEvent)) { vm.stepfn = stepfn }
