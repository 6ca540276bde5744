package forth

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_readWord(t *testing.T) {
	vm, err := New()
	require.NoError(t, err)
	defer vm.Close()

	scan := func() (int, string) {
		n := vm.readWord()
		return n, vm.scratchString()
	}

	t.Run("skips leading whitespace including newlines", func(t *testing.T) {
		vm.SetStringInput(" \t\n\r  foo bar")
		n, tok := scan()
		assert.Equal(t, 3, n)
		assert.Equal(t, "foo", tok)
		n, tok = scan()
		assert.Equal(t, 3, n)
		assert.Equal(t, "bar", tok)
		assert.Equal(t, -1, vm.readWord(), "expected end of input")
	})

	t.Run("does not consume the delimiter", func(t *testing.T) {
		vm.SetStringInput("ab cd")
		scan()
		assert.Equal(t, ' ', rune(vm.sin[vm.sidx]), "delimiter must remain unread")
		assert.Equal(t, 32, vm.readByte())
	})

	t.Run("long tokens split at 31 bytes", func(t *testing.T) {
		long := strings.Repeat("x", 40)
		vm.SetStringInput(long)
		n, tok := scan()
		assert.Equal(t, 31, n)
		assert.Equal(t, strings.Repeat("x", 31), tok)
		n, tok = scan()
		assert.Equal(t, 9, n)
		assert.Equal(t, strings.Repeat("x", 9), tok)
	})

	t.Run("empty input", func(t *testing.T) {
		vm.SetStringInput("")
		assert.Equal(t, -1, vm.readWord())
	})

	t.Run("stream input behaves the same", func(t *testing.T) {
		vm.SetInput(strings.NewReader("  one  two\nthree"))
		for _, want := range []string{"one", "two", "three"} {
			n, tok := scan()
			assert.Equal(t, len(want), n)
			assert.Equal(t, want, tok)
		}
		assert.Equal(t, -1, vm.readWord())
	})
}

func Test_skipLine(t *testing.T) {
	vm, err := New()
	require.NoError(t, err)
	defer vm.Close()

	vm.SetStringInput("junk to discard\nnext")
	assert.Equal(t, int('\n'), vm.skipLine())
	n := vm.readWord()
	assert.Equal(t, 4, n)
	assert.Equal(t, "next", vm.scratchString())

	vm.SetStringInput("no newline")
	assert.Equal(t, -1, vm.skipLine())
}

func Test_input_queue(t *testing.T) {
	var out strings.Builder
	vm, err := New(WithOutput(&out))
	require.NoError(t, err)
	defer vm.Close()

	// queued sources read back to back, as the CLI queues script files
	vm.SetInput(strings.NewReader(": double dup + ; "))
	vm.PushInput(strings.NewReader("21 double . "))
	require.NoError(t, vm.Run(context.Background()))
	assert.Equal(t, "42", out.String())
}
