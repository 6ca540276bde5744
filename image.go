package forth

import (
	"encoding/binary"
	"fmt"
	"io"
)

// A core image on disk is a fixed little-endian header followed by the raw
// cell array. Images are not portable across cell widths; loading checks the
// recorded width against this build's.

var coreMagic = [4]byte{'4', 'T', 'H', 'c'}

const coreFlagInvalid = 1 << 0

type coreHeader struct {
	Magic     [4]byte
	CellSize  uint32
	CoreSize  uint32
	StackSize uint32
	IP        uint32
	Top       uint32
	SP        uint32
	Flags     uint32
}

// DumpCore writes the machine state: header then the full cell array.
// Dumping and reloading round-trips exactly.
func (vm *VM) DumpCore(w io.Writer) error {
	hdr := coreHeader{
		Magic:     coreMagic,
		CellSize:  CellBytes,
		CoreSize:  uint32(vm.coreSize),
		StackSize: uint32(vm.stackSize),
		IP:        uint32(vm.I),
		Top:       uint32(vm.top),
		SP:        uint32(vm.S),
	}
	if vm.fatal != nil {
		hdr.Flags |= coreFlagInvalid
	}
	if err := binary.Write(w, binary.LittleEndian, hdr); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, vm.m)
}

// LoadCore reconstructs a machine from a dumped image. Host I/O is not part
// of an image, so the usual options still apply. An image recorded with a
// different cell width, or whose INFO register disagrees with this build, is
// refused.
func LoadCore(r io.Reader, opts ...Option) (*VM, error) {
	var hdr coreHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("reading core header: %w", err)
	}
	if hdr.Magic != coreMagic {
		return nil, fmt.Errorf("not a core image")
	}
	if hdr.CellSize != CellBytes {
		return nil, fmt.Errorf("core image cell width %d, this build uses %d", hdr.CellSize, CellBytes)
	}
	if hdr.CoreSize < MinimumCoreSize || hdr.StackSize != hdr.CoreSize/64 {
		return nil, fmt.Errorf("malformed core geometry: size %d stack %d", hdr.CoreSize, hdr.StackSize)
	}

	vm := &VM{}
	defaultOptions.apply(vm)
	Options(opts...).apply(vm)
	vm.coreSize = Cell(hdr.CoreSize)
	vm.stackSize = Cell(hdr.StackSize)
	vm.I = Cell(hdr.IP)
	vm.top = Cell(hdr.Top)
	vm.S = Cell(hdr.SP)
	vm.m = make([]Cell, vm.coreSize)
	if err := binary.Read(r, binary.LittleEndian, vm.m); err != nil {
		return nil, fmt.Errorf("reading core cells: %w", err)
	}
	if vm.m[RegInfo] != CellBytes {
		return nil, fmt.Errorf("core image INFO width %d, this build uses %d", vm.m[RegInfo], CellBytes)
	}
	if vm.m[RegInfo+1] != vm.coreSize {
		return nil, fmt.Errorf("core image INFO size %d disagrees with header %d", vm.m[RegInfo+1], vm.coreSize)
	}
	if hdr.Flags&coreFlagInvalid != 0 {
		vm.fatal = errInvalid
	}
	vm.stringin = false
	return vm, nil
}
