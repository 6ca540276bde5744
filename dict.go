package forth

import "strings"

// Names are stored as NUL-terminated byte strings packed little-endian into
// cells, so the image has a byte-addressed view alongside the cell one.

// byteAt returns the byte at byte offset off, or 0 beyond the image.
func (vm *VM) byteAt(off Cell) byte {
	i := off / CellBytes
	if i >= vm.coreSize {
		return 0
	}
	sh := (off % CellBytes) * 8
	return byte(vm.m[i] >> sh)
}

// setByte stores one byte at byte offset off; out-of-image offsets are
// fatal.
func (vm *VM) setByte(off Cell, b byte) {
	i := vm.ck(off / CellBytes)
	sh := (off % CellBytes) * 8
	vm.m[i] = vm.m[i]&^(0xff<<sh) | Cell(b)<<sh
}

// storeString packs s, NUL-terminated, into the image starting at cell
// index.
func (vm *VM) storeString(index Cell, s string) {
	off := index * CellBytes
	for i := 0; i < len(s); i++ {
		vm.setByte(off+Cell(i), s[i])
	}
	vm.setByte(off+Cell(len(s)), 0)
}

// cStringAt reads the NUL-terminated string at byte offset off. Reads past
// the image terminate as if NUL.
func (vm *VM) cStringAt(off Cell) string {
	var sb strings.Builder
	for {
		b := vm.byteAt(off)
		if b == 0 {
			return sb.String()
		}
		sb.WriteByte(b)
		off++
	}
}

func (vm *VM) setScratchByte(i int, b byte) {
	vm.setByte(stringOffset*CellBytes+Cell(i), b)
}

// scratchString returns the last parsed token from the scratch buffer.
func (vm *VM) scratchString() string {
	return vm.cStringAt(stringOffset * CellBytes)
}

// find walks the dictionary link chain from PWD looking for the name held in
// the scratch buffer. Hidden words are skipped. Returns the link cell index,
// or 0 when the name is absent; the chain terminates at the sentinel below
// DictionaryStart.
func (vm *VM) find() Cell {
	m := vm.m
	query := vm.scratchString()
	w := m[RegPWD]
	l := wordLength(m[vm.ck(w+1)])
	for w > DictionaryStart && (wordHidden(m[w+1]) || query != vm.cStringAt((w-l)*CellBytes)) {
		w = m[vm.ck(w)]
		l = wordLength(m[vm.ck(w+1)])
	}
	if w > DictionaryStart {
		return w
	}
	return 0
}

// isNumber recognizes an optional leading minus, then one of: 0x followed by
// at least one hex digit; 0 followed by octal digits (bare 0 is valid); or
// at least one decimal digit.
func isNumber(s string) bool {
	if len(s) > 0 && s[0] == '-' {
		s = s[1:]
	}
	if s == "" {
		return false
	}
	if s[0] == '0' {
		if len(s) >= 2 && s[1] == 'x' {
			return len(s) > 2 && allIn(s[2:], "0123456789abcdefABCDEF")
		}
		return allIn(s, "01234567")
	}
	return allIn(s, "0123456789")
}

func allIn(s, digits string) bool {
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(digits, s[i]) < 0 {
			return false
		}
	}
	return true
}

// parseNumber converts a token isNumber accepted, with prefix-driven base
// detection. Accumulation wraps modulo the cell width.
func parseNumber(s string) Cell {
	neg := false
	if len(s) > 0 && s[0] == '-' {
		neg = true
		s = s[1:]
	}
	base := Cell(10)
	if len(s) >= 2 && s[0] == '0' && s[1] == 'x' {
		base, s = 16, s[2:]
	} else if len(s) >= 1 && s[0] == '0' {
		base = 8
	}
	var v Cell
	for i := 0; i < len(s); i++ {
		d := digitVal(s[i])
		if d < 0 || Cell(d) >= base {
			break
		}
		v = v*base + Cell(d)
	}
	if neg {
		return -v
	}
	return v
}

func digitVal(b byte) int {
	switch {
	case b >= '0' && b <= '9':
		return int(b - '0')
	case b >= 'a' && b <= 'f':
		return int(b-'a') + 10
	case b >= 'A' && b <= 'F':
		return int(b-'A') + 10
	}
	return -1
}
