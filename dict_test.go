package forth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_isNumber(t *testing.T) {
	for _, tc := range []struct {
		token string
		want  bool
	}{
		{"0", true},
		{"7", true},
		{"123", true},
		{"-1", true},
		{"-123", true},
		{"0x1f", true},
		{"0xABC", true},
		{"-0x10", true},
		{"0123", true},
		{"0755", true},
		{"", false},
		{"-", false},
		{"0x", false},
		{"0xg", false},
		{"12a", false},
		{"0129", false},
		{"abc", false},
		{"--1", false},
		{"1-", false},
	} {
		assert.Equal(t, tc.want, isNumber(tc.token), "isNumber(%q)", tc.token)
	}
}

func Test_parseNumber(t *testing.T) {
	for _, tc := range []struct {
		token string
		want  Cell
	}{
		{"0", 0},
		{"42", 42},
		{"-1", 0xffffffff},
		{"-2", 0xfffffffe},
		{"0x10", 16},
		{"0xffffffff", 0xffffffff},
		{"010", 8},
		{"0755", 493},
		{"4294967295", 0xffffffff},
		{"4294967296", 0}, // wraps modulo cell width
		{"-0x1", 0xffffffff},
	} {
		assert.Equal(t, tc.want, parseNumber(tc.token), "parseNumber(%q)", tc.token)
	}
}

func Test_find(t *testing.T) {
	vm, err := New()
	require.NoError(t, err)
	defer vm.Close()

	lookup := func(name string) Cell {
		vm.SetStringInput(name)
		require.Less(t, 0, vm.readWord(), "must scan %q", name)
		return vm.find()
	}

	w := lookup("dup")
	require.NotZero(t, w, "must find dup")
	assert.Equal(t, opCompile, vm.At(w+1)&instructionMask, "dup is a compiling word")
	assert.Equal(t, opDup, vm.At(w+2), "dup's body is its opcode")

	assert.Zero(t, lookup("no-such-word"))

	// hidden words are skipped by lookup
	vm.m[w+1] |= wordHiddenFlag
	assert.Zero(t, lookup("dup"), "hidden word must not be found")
	vm.m[w+1] &^= wordHiddenFlag
	assert.Equal(t, w, lookup("dup"))

	// redefinition shadows: the chain is searched newest-first
	require.NoError(t, vm.Eval(`: dup 0 ;`))
	w2 := lookup("dup")
	require.NotZero(t, w2)
	assert.NotEqual(t, w, w2, "redefinition must shadow the original")
	assert.Less(t, w, w2)
}

func Test_scratch_packing(t *testing.T) {
	vm, err := New()
	require.NoError(t, err)
	defer vm.Close()

	vm.SetStringInput("example")
	require.Equal(t, 7, vm.readWord())
	assert.Equal(t, "example", vm.scratchString())

	// bytes pack little-endian into cells at the scratch offset
	assert.Equal(t, Cell(0x6d617865), vm.m[stringOffset], "exam")
	assert.Equal(t, Cell(0x00656c70), vm.m[stringOffset+1], "ple NUL")
}
