package forth

import (
	"context"
	"errors"
	"io"

	"github.com/jcorbin/goforth/internal/panicerr"
)

// Run drives the interpreter against the current input source until it is
// exhausted or the context is canceled. A fatal error (bounds check or
// illegal opcode) poisons the machine: every later Run returns the same
// error without dispatching anything.
func (vm *VM) Run(ctx context.Context) error {
	if vm.fatal != nil {
		return vm.fatal
	}

	err := panicerr.Recover("forth.VM", func() error {
		return vm.run(ctx)
	})
	if vm.out != nil {
		if ferr := vm.out.Flush(); err == nil {
			err = ferr
		}
	}
	if err == nil {
		return nil
	}

	var fatal fatalError
	if errors.As(err, &fatal) {
		vm.fatal = fatal
		return fatal
	}
	var halted haltError
	if errors.As(err, &halted) {
		err = halted.error
	}
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// Eval runs the machine over the given source text. The machine stays in
// string input mode after; use SetInput to hand it back a stream.
func (vm *VM) Eval(src string) error {
	vm.SetStringInput(src)
	return vm.Run(context.Background())
}
