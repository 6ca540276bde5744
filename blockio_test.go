package forth

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) {
	dir := t.TempDir()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { require.NoError(t, os.Chdir(prev)) })
}

func Test_block_save_load(t *testing.T) {
	chdirTemp(t)

	var out strings.Builder
	vm, err := New(WithOutput(&out))
	require.NoError(t, err)
	defer vm.Close()

	// save 1024 bytes from byte offset 8192 (cells 2048..2303) to 0003.blk
	require.NoError(t, vm.Eval(`8192 3 save .`))
	assert.Equal(t, "0", out.String())

	info, err := os.Stat("0003.blk")
	require.NoError(t, err, "expected block file")
	assert.Equal(t, int64(BlockSize), info.Size())

	// clobber a cell in the saved range, then load the block back over it
	out.Reset()
	require.NoError(t, vm.Eval(`42 2100 ! 2100 @ .`))
	assert.Equal(t, "42", out.String())

	out.Reset()
	require.NoError(t, vm.Eval(`8192 3 load . 2100 @ .`))
	assert.Equal(t, "00", out.String())
}

func Test_block_failures(t *testing.T) {
	chdirTemp(t)

	var out, diag strings.Builder
	vm, err := New(WithOutput(&out), WithDiagnostics(&diag))
	require.NoError(t, err)
	defer vm.Close()

	// missing block file
	require.NoError(t, vm.Eval(`0 9 load .`))
	assert.Equal(t, "4294967295", out.String(), "expected -1 status")
	assert.Contains(t, diag.String(), "( error 'file-open \"0009.blk")

	// short block file
	out.Reset()
	require.NoError(t, os.WriteFile("000a.blk", []byte("short"), 0o644))
	require.NoError(t, vm.Eval(`0 10 load .`))
	assert.Equal(t, "4294967295", out.String())

	// offset out of range; checked against the core size in cells
	out.Reset()
	require.NoError(t, vm.Eval(`0 invert 7 save .`))
	assert.Equal(t, "4294967295", out.String())
	_, err = os.Stat("0007.blk")
	assert.True(t, os.IsNotExist(err), "no file for a rejected offset")

	// execution continues after block errors
	out.Reset()
	require.NoError(t, vm.Eval(`2 3 + .`))
	assert.Equal(t, "5", out.String())
}
