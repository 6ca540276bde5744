package fileinput

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, in *Input) string {
	var sb strings.Builder
	for {
		b, err := in.ReadByte()
		if err == io.EOF {
			return sb.String()
		}
		require.NoError(t, err)
		sb.WriteByte(b)
	}
}

func TestInput_queue(t *testing.T) {
	var in Input
	in.Reset(
		NamedReader("first", strings.NewReader("ab")),
		NamedReader("second", strings.NewReader("cd")),
	)
	assert.Equal(t, "abcd", readAll(t, &in))

	_, err := in.ReadByte()
	assert.Equal(t, io.EOF, err)

	in.Push(strings.NewReader("ef"))
	assert.Equal(t, "ef", readAll(t, &in))
}

func TestInput_locations(t *testing.T) {
	var in Input
	in.Reset(NamedReader("script.fs", strings.NewReader("one\ntwo\n")))

	for i := 0; i < 3; i++ {
		in.ReadByte()
	}
	assert.Equal(t, "script.fs:1", in.Loc().String())

	in.ReadByte() // newline
	in.ReadByte()
	assert.Equal(t, "script.fs:2", in.Loc().String())
}

func TestInput_unread(t *testing.T) {
	var in Input
	in.Reset(strings.NewReader("xy"))

	b, err := in.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte('x'), b)

	require.NoError(t, in.UnreadByte())
	b, err = in.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte('x'), b, "unread byte reads again")

	b, _ = in.ReadByte()
	assert.Equal(t, byte('y'), b)
}

func TestInput_unread_newline_line_tracking(t *testing.T) {
	var in Input
	in.Reset(NamedReader("f", strings.NewReader("a\nb")))

	in.ReadByte()
	in.ReadByte() // newline; line is now 2
	assert.Equal(t, 2, in.Loc().Line)
	require.NoError(t, in.UnreadByte())
	assert.Equal(t, 1, in.Loc().Line)
	in.ReadByte()
	assert.Equal(t, 2, in.Loc().Line)
}

func TestInput_reset_mid_stream(t *testing.T) {
	var in Input
	in.Reset(strings.NewReader("abcdef"))
	in.ReadByte()
	in.Reset(strings.NewReader("z"))
	assert.Equal(t, "z", readAll(t, &in))
}
