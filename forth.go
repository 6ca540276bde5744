package forth

import (
	"fmt"
	"io"

	"github.com/jcorbin/goforth/internal/fileinput"
	"github.com/jcorbin/goforth/internal/flushio"
)

// Cell is the machine word of the virtual machine. All memory, stacks, and
// registers hold cells; arithmetic wraps modulo 2^32.
type Cell uint32

// Core geometry. The image is a single contiguous array of cells: registers
// first, then the scratch string buffer, then the dictionary growing upward,
// and finally the return and variable stacks at the top.
const (
	CellBytes       = 4     // recorded at RegInfo so dumped images know their format
	DefaultCoreSize = 32768 // cells
	MinimumCoreSize = 2048  // cells
	BlockSize       = 1024  // bytes per block file

	stringOffset  = 32 // cells; scratch word buffer
	maxWordLength = 32 // bytes, including the terminating NUL
)

// DictionaryStart is the first dictionary cell, just past the registers and
// the scratch buffer.
const DictionaryStart Cell = stringOffset + maxWordLength

// VM registers live at fixed low indices of the image.
const (
	RegDIC   Cell = 0  // dictionary pointer: next free cell
	RegRSTK  Cell = 1  // return stack pointer
	RegState Cell = 8  // 0 interpret, 1 compile
	RegHex   Cell = 9  // nonzero selects hex output
	RegPWD   Cell = 10 // link cell of the most recent word
	RegInfo  Cell = 11 // cell width in bytes; RegInfo+1 holds the core size
)

// Word header code cell layout: low 7 bits opcode, bit 7 hidden flag, upper
// bits the packed name length in cells.
const (
	instructionMask  Cell = 0x7f
	wordHiddenFlag   Cell = 0x80
	wordLengthOffset      = 8
)

func wordLength(field Cell) Cell { return (field >> wordLengthOffset) & 0xff }
func wordHidden(field Cell) bool { return field&wordHiddenFlag != 0 }

// Primitive opcodes. These exact numbers are embedded in compiled
// dictionaries and in saved core images, so the order is load-bearing.
const (
	opPush Cell = iota
	opCompile
	opRun
	opDefine
	opImmediate
	opComment
	opRead
	opLoad
	opStore
	opSub
	opAdd
	opAnd
	opOr
	opXor
	opInv
	opShl
	opShr
	opMul
	opLess
	opExit
	opEmit
	opKey
	opFromR
	opToR
	opJmp
	opJmpZ
	opPnum
	opQuote
	opComma
	opEqual
	opSwap
	opDup
	opDrop
	opOver
	opTail
	opBsave
	opBload
	opFind
	opPrint
	opPstk
	opLast
)

// wordNames are the dictionary names of the compiling primitives, in opcode
// order starting at opRead.
var wordNames = []string{
	"read", "@", "!", "-", "+", "and", "or", "xor", "invert",
	"lshift", "rshift", "*", "<", "exit", "emit", "key", "r>", ">r",
	"j", "jz", ".", "'", ",", "=", "swap", "dup", "drop", "over",
	"tail", "save", "load", "find", "print", ".s",
}

var opNames = [opLast]string{
	"push", "compile", "run", "define", "immediate", "comment", "read",
	"@", "!", "-", "+", "and", "or", "xor", "invert", "lshift", "rshift",
	"*", "<", "exit", "emit", "key", "r>", ">r", "j", "jz", ".", "'",
	",", "=", "swap", "dup", "drop", "over", "tail", "save", "load",
	"find", "print", ".s",
}

// OpName returns the display name of a primitive opcode.
func OpName(code Cell) string {
	if code < opLast {
		return opNames[code]
	}
	return fmt.Sprintf("op%d", code)
}

// StepEvent describes one inner-interpreter dispatch about to happen.
type StepEvent struct {
	I  Cell // interpreter pointer, past the fetched thread cell
	PC Cell // cell being decoded
	Op Cell // decoded opcode
}

// VM is a Forth virtual machine: one flat image of cells holding registers,
// the scratch word buffer, the dictionary, and both stacks, plus the host
// I/O plumbing. The machine has no state outside the image other than the
// instruction pointer, the cached top of stack, and the variable stack
// pointer; dumping those with the image fully describes it.
type VM struct {
	coreSize  Cell
	stackSize Cell

	in       fileinput.Input
	sin      []byte // string input buffer, active when stringin
	sidx     int
	stringin bool

	out  flushio.WriteFlusher
	diag io.Writer

	logfn  func(mess string, args ...interface{})
	stepfn func(ev StepEvent)

	fatal error // sticky after a fatal escape; Run refuses to dispatch

	I   Cell   // interpreter pointer into the current thread
	top Cell   // cached top of the variable stack
	S   Cell   // image index of the cell below top
	m   []Cell // the image
}

// New allocates a core image, seeds the primitives, and compiles the rest of
// the system by evaluating the embedded startup program against the fresh
// machine's own reader. The returned VM reads from the configured input
// stream.
func New(opts ...Option) (*VM, error) {
	vm := &VM{coreSize: DefaultCoreSize}
	defaultOptions.apply(vm)
	Options(opts...).apply(vm)

	if vm.coreSize < MinimumCoreSize {
		return nil, fmt.Errorf("core size %d below minimum %d", vm.coreSize, MinimumCoreSize)
	}
	vm.stackSize = vm.coreSize / 64
	vm.m = make([]Cell, vm.coreSize)
	vm.S = vm.coreSize - vm.stackSize

	if err := vm.boot(); err != nil {
		return nil, err
	}
	vm.stringin = false
	return vm, nil
}

// boot lays down the registers, the self-invoking READ thread, and the
// primitive words, then evaluates the startup program to define the rest of
// the language.
func (vm *VM) boot() error {
	m := vm.m
	m[RegDIC] = DictionaryStart
	m[RegPWD] = 1 // terminating sentinel, below the dictionary
	m[RegInfo] = CellBytes
	m[RegInfo+1] = vm.coreSize

	// A special word that reads in Forth, and a thread that calls it then
	// calls itself, so that the machine loops on its input forever.
	w := m[RegDIC]
	m[m[RegDIC]] = opRead
	m[RegDIC]++
	m[m[RegDIC]] = opRun
	m[RegDIC]++
	vm.I = m[RegDIC]
	m[m[RegDIC]] = w
	m[RegDIC]++
	m[m[RegDIC]] = vm.I - 1
	m[RegDIC]++

	vm.compileWord(opDefine, ":")
	vm.compileWord(opImmediate, "immediate")
	vm.compileWord(opComment, `\`)
	for i, name := range wordNames {
		vm.compileWord(opCompile, name)
		m[m[RegDIC]] = opRead + Cell(i)
		m[RegDIC]++
	}

	m[RegRSTK] = vm.coreSize - 2*vm.stackSize
	vm.S = vm.coreSize - vm.stackSize

	if err := vm.Eval(startupProgram); err != nil {
		return fmt.Errorf("startup program failed: %w", err)
	}
	return nil
}

// compileWord installs a new header at the dictionary pointer: the packed
// NUL-terminated name, a link cell, and a code cell carrying the opcode and
// the name's length in cells. With an empty name one token is parsed from
// the input source; an exhausted input is reported as io.EOF.
func (vm *VM) compileWord(op Cell, name string) error {
	if name == "" {
		if vm.readWord() < 0 {
			return io.EOF
		}
		name = vm.scratchString()
	}
	m := vm.m
	header := m[RegDIC]
	l := (Cell(len(name)) + 1 + CellBytes - 1) / CellBytes
	vm.storeString(header, name)
	m[RegDIC] += l

	m[vm.ck(m[RegDIC])] = m[RegPWD]
	m[RegPWD] = m[RegDIC]
	m[RegDIC]++
	m[vm.ck(m[RegDIC])] = (l << wordLengthOffset) | (op & instructionMask)
	m[RegDIC]++
	return nil
}

// Size returns the image size in cells.
func (vm *VM) Size() Cell { return vm.coreSize }

// StackSize returns the per-stack size in cells.
func (vm *VM) StackSize() Cell { return vm.stackSize }

// At returns the cell at addr, or 0 when addr is out of the image. Meant for
// inspection tools; the interpreter itself treats out-of-image indices as
// fatal.
func (vm *VM) At(addr Cell) Cell {
	if addr >= vm.coreSize {
		return 0
	}
	return vm.m[addr]
}

// IP returns the interpreter pointer.
func (vm *VM) IP() Cell { return vm.I }

// Push pushes a cell onto the variable stack, for host code driving the VM.
func (vm *VM) Push(f Cell) {
	if vm.S+1 >= vm.coreSize {
		return
	}
	vm.S++
	vm.m[vm.S] = vm.top
	vm.top = f
}

// Pop pops the top of the variable stack.
func (vm *VM) Pop() Cell {
	f := vm.top
	if vm.S > vm.coreSize-vm.stackSize {
		vm.top = vm.m[vm.S]
		vm.S--
	}
	return f
}

// StackDepth returns the number of cells on the variable stack.
func (vm *VM) StackDepth() Cell {
	base := vm.coreSize - vm.stackSize
	if vm.S < base {
		return 0
	}
	return vm.S - base
}

// Stack returns the variable stack bottom-to-top, including the cached top.
func (vm *VM) Stack() []Cell {
	base := vm.coreSize - vm.stackSize
	if vm.S <= base {
		return nil
	}
	out := make([]Cell, 0, vm.S-base)
	for p := base + 2; p <= vm.S; p++ {
		out = append(out, vm.m[p])
	}
	return append(out, vm.top)
}

// ReturnStack returns the live return stack bottom-to-top.
func (vm *VM) ReturnStack() []Cell {
	base := vm.coreSize - 2*vm.stackSize
	r := vm.m[RegRSTK]
	if r < base || r >= vm.coreSize {
		return nil
	}
	out := make([]Cell, 0, r-base+1)
	for p := base; p <= r; p++ {
		out = append(out, vm.m[p])
	}
	return out
}

// Word describes one dictionary entry for inspection tools.
type Word struct {
	Addr      Cell // image index of the link cell
	Name      string
	Code      Cell // opcode field of the code cell
	Immediate bool // executes even in compile state
	Hidden    bool
}

// Words returns the dictionary newest-first by walking the link chain from
// the PWD register.
func (vm *VM) Words() []Word {
	var out []Word
	for w := vm.m[RegPWD]; w > DictionaryStart && w < vm.coreSize; {
		field := vm.At(w + 1)
		l := wordLength(field)
		name := vm.cStringAt((w - l) * CellBytes)
		out = append(out, Word{
			Addr:      w,
			Name:      name,
			Code:      field & instructionMask,
			Immediate: field&instructionMask != opCompile,
			Hidden:    wordHidden(field),
		})
		w = vm.At(w)
	}
	return out
}

func (vm *VM) logf(mess string, args ...interface{}) {
	if vm.logfn != nil {
		vm.logfn(mess, args...)
	}
}

// Close flushes output and releases any owned input sources.
func (vm *VM) Close() (err error) {
	if vm.out != nil {
		err = vm.out.Flush()
	}
	vm.in.Close()
	return err
}
