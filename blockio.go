package forth

import (
	"fmt"
	"io"
	"os"
)

// blockio implements the save/load primitives: block id maps to a file
// named %04x.blk in the current directory holding exactly BlockSize bytes,
// copied from/to the image starting at byte offset poffset. Returns 0 on
// success, all-ones (-1) on failure. The offset is bound-checked against the
// core size in cells, which over-rejects high byte offsets; callers count on
// the rejection, not the unit.
func (vm *VM) blockio(poffset, id Cell, rw byte) Cell {
	const failed = ^Cell(0)
	if poffset > vm.coreSize-BlockSize {
		return failed
	}
	name := fmt.Sprintf("%04x.blk", uint32(id))

	if rw == 'w' {
		file, err := os.Create(name)
		if err != nil {
			fmt.Fprintf(vm.diag, "( error 'file-open \"%s : could not open file\" )\n", name)
			return failed
		}
		defer file.Close()
		buf := make([]byte, BlockSize)
		for i := range buf {
			buf[i] = vm.byteAt(poffset + Cell(i))
		}
		if n, err := file.Write(buf); err != nil || n != BlockSize {
			return failed
		}
		return 0
	}

	file, err := os.Open(name)
	if err != nil {
		fmt.Fprintf(vm.diag, "( error 'file-open \"%s : could not open file\" )\n", name)
		return failed
	}
	defer file.Close()
	buf := make([]byte, BlockSize)
	if _, err := io.ReadFull(file, buf); err != nil {
		return failed
	}
	for i, b := range buf {
		vm.setByte(poffset+Cell(i), b)
	}
	return 0
}
