package forth

import (
	"fmt"
	"io"
)

// The input source is either an in-memory byte buffer with an index, or a
// queue of host streams; exactly one mode is active at a time.

// SetInput replaces the input source with the given stream and leaves string
// mode.
func (vm *VM) SetInput(r io.Reader) {
	vm.stringin = false
	vm.in.Reset(r)
}

// PushInput queues another stream after the current input and leaves string
// mode.
func (vm *VM) PushInput(r io.Reader) {
	vm.stringin = false
	vm.in.Push(r)
}

// SetStringInput switches the machine to reading from the given string.
func (vm *VM) SetStringInput(s string) {
	vm.sin = append(vm.sin[:0], s...)
	vm.sidx = 0
	vm.stringin = true
}

// InputLocation describes where the machine is currently reading from, for
// diagnostics and inspection tools.
func (vm *VM) InputLocation() string {
	if vm.stringin {
		return fmt.Sprintf("<string>:%v", vm.sidx)
	}
	return vm.in.Loc().String()
}

// readByte reads one input byte, or -1 at end of input.
func (vm *VM) readByte() int {
	if vm.stringin {
		if vm.sidx >= len(vm.sin) {
			return -1
		}
		b := vm.sin[vm.sidx]
		vm.sidx++
		return int(b)
	}
	// flush pending output before a potentially blocking read
	if err := vm.out.Flush(); err != nil {
		vm.halt(err)
	}
	b, err := vm.in.ReadByte()
	if err == io.EOF {
		return -1
	} else if err != nil {
		vm.halt(err)
	}
	return int(b)
}

// unreadByte puts the last read byte back.
func (vm *VM) unreadByte() {
	if vm.stringin {
		if vm.sidx > 0 {
			vm.sidx--
		}
		return
	}
	vm.in.UnreadByte()
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

// readWord scans one whitespace-delimited token of up to 31 bytes into the
// scratch buffer, NUL-terminated. Longer runs are split: the remainder
// becomes the next token. Returns the number of bytes read, or -1 when the
// input is exhausted before any token starts.
func (vm *VM) readWord() int {
	c := vm.readByte()
	for c >= 0 && isSpace(byte(c)) {
		c = vm.readByte()
	}
	if c < 0 {
		return -1
	}

	n := 0
	for c >= 0 && !isSpace(byte(c)) {
		vm.setScratchByte(n, byte(c))
		n++
		if n == maxWordLength-1 {
			break
		}
		c = vm.readByte()
	}
	if c >= 0 && isSpace(byte(c)) {
		vm.unreadByte()
	}
	vm.setScratchByte(n, 0)
	return n
}

// skipLine discards input through the next newline; returns the last byte
// read, or -1 at end of input.
func (vm *VM) skipLine() int {
	for {
		c := vm.readByte()
		if c < 0 || c == '\n' {
			return c
		}
	}
}
