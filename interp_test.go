package forth

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_fatal_bounds(t *testing.T) {
	var out, diag strings.Builder
	vm, err := New(WithOutput(&out), WithDiagnostics(&diag))
	require.NoError(t, err)
	defer vm.Close()

	err = vm.Eval(`999999 @`)
	require.Error(t, err)
	assert.ErrorContains(t, err, "bounds check failed")
	assert.Contains(t, diag.String(), "( fatal \"bounds check failed: 999999 >= 32768\" )")

	// the escape is sticky: no further opcode runs on this machine
	out.Reset()
	again := vm.Eval(`2 3 + .`)
	assert.Equal(t, err, again, "expected the stored fatal error")
	assert.Equal(t, "", out.String(), "poisoned machine must not execute")
}

func Test_fatal_store(t *testing.T) {
	vm, err := New()
	require.NoError(t, err)
	defer vm.Close()

	err = vm.Eval(`1 999999 !`)
	assert.ErrorContains(t, err, "bounds check failed")
}

func Test_fatal_stack_underflow(t *testing.T) {
	vm, err := New()
	require.NoError(t, err)
	defer vm.Close()

	err = vm.Eval(`drop`)
	assert.ErrorContains(t, err, "variable stack out of bounds")
}

func Test_fatal_illegal_opcode(t *testing.T) {
	var diag strings.Builder
	vm, err := New(WithDiagnostics(&diag))
	require.NoError(t, err)
	defer vm.Close()

	// build a word, then smash a body cell to call into a cell holding an
	// opcode past the dispatch table
	require.NoError(t, vm.Eval(`: bad ;`))
	var bad Word
	for _, word := range vm.Words() {
		if word.Name == "bad" {
			bad = word
			break
		}
	}
	require.NotZero(t, bad.Addr)

	vm.m[30] = opLast + 37 // unused register-area cell
	vm.m[bad.Addr+3] = 30  // overwrite the exit call

	err = vm.Eval(`bad`)
	assert.ErrorContains(t, err, "illegal opcode")
	assert.Contains(t, diag.String(), "( fatal 'illegal-op )")
}

func Test_parse_error_keeps_dictionary(t *testing.T) {
	var out, diag strings.Builder
	vm, err := New(WithOutput(&out), WithDiagnostics(&diag))
	require.NoError(t, err)
	defer vm.Close()

	// an unknown token mid-definition reports and reads on; the definition
	// still terminates usable
	require.NoError(t, vm.Eval(`: odd 1 bogus + ; 2 odd .`))
	assert.Contains(t, diag.String(), "( error \"bogus is not a word\" )")
	assert.Equal(t, "3", out.String())
}

func Test_context_cancellation(t *testing.T) {
	vm, err := New()
	require.NoError(t, err)
	defer vm.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	vm.SetStringInput(`1 2 +`)
	err = vm.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	// cancellation is not fatal: the machine still runs afterward
	var out strings.Builder
	WithOutput(&out).apply(vm)
	require.NoError(t, vm.Eval(`2 3 + .`))
	assert.Equal(t, "5", out.String())
}
