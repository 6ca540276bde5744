package forth

import (
	"fmt"
	"io"
	"sort"
	"strconv"
)

// Dumper renders a human-readable picture of a machine: pointers, stacks,
// and the dictionary decoded back into words. Used by tests; it only
// inspects, never mutates.
type Dumper struct {
	VM  *VM
	Out io.Writer

	words []Word // ascending by address
}

func (dump Dumper) Dump() {
	vm := dump.VM
	dump.scanWords()

	fmt.Fprintf(dump.Out, "# VM Dump\n")
	fmt.Fprintf(dump.Out, "  I: %v\n", vm.I)
	fmt.Fprintf(dump.Out, "  stack: %v\n", vm.Stack())
	fmt.Fprintf(dump.Out, "  rstack: %v\n", vm.ReturnStack())

	dump.dumpRegisters()
	dump.DumpDict()
}

func (dump Dumper) dumpRegisters() {
	vm := dump.VM
	fmt.Fprintf(dump.Out, "# Registers\n")
	for _, reg := range []struct {
		addr Cell
		name string
	}{
		{RegDIC, "dic"},
		{RegRSTK, "rstk"},
		{RegState, "state"},
		{RegHex, "hex"},
		{RegPWD, "pwd"},
		{RegInfo, "info"},
		{RegInfo + 1, "size"},
	} {
		fmt.Fprintf(dump.Out, "  @%v %v %v\n", reg.addr, vm.At(reg.addr), reg.name)
	}
	if tok := vm.scratchString(); tok != "" {
		fmt.Fprintf(dump.Out, "  scratch: %q\n", tok)
	}
}

// DumpDict decodes every dictionary word: header address, name, immediate
// marker, and the body rendered as opcodes, word calls, and literals.
func (dump *Dumper) DumpDict() {
	vm := dump.VM
	if dump.words == nil {
		dump.scanWords()
	}
	fmt.Fprintf(dump.Out, "# Dictionary @%v\n", DictionaryStart)
	for i, word := range dump.words {
		end := vm.At(RegDIC)
		if i+1 < len(dump.words) {
			next := dump.words[i+1]
			end = next.Addr - wordLength(vm.At(next.Addr+1))
		}
		fmt.Fprintf(dump.Out, "  @%v : %v", word.Addr, dump.wordLabel(word))
		if word.Immediate {
			fmt.Fprintf(dump.Out, " immediate")
		}
		for addr := word.Addr + 2; addr < end; {
			var s string
			s, addr = dump.formatCode(addr)
			fmt.Fprintf(dump.Out, " %v", s)
		}
		fmt.Fprintf(dump.Out, "\n")
	}
}

func (dump *Dumper) wordLabel(word Word) string {
	if word.Name == "" {
		return "ø"
	}
	return word.Name
}

// formatCode renders the body cell at addr, returning the rendering and the
// next address; push literals and branch offsets consume their operand cell.
func (dump *Dumper) formatCode(addr Cell) (string, Cell) {
	vm := dump.VM
	code := vm.At(addr)
	addr++

	// raw primitive opcode (a primitive body, or the RUN cell starting a
	// colon word); any other 2 cell in a thread is the literal-push
	// encoding, including at the start of an immediate word, whose RUN cell
	// was rewound over
	if code < opLast {
		start := dump.wordBodyStart(addr - 1)
		immediate := vm.At(start-1)&instructionMask == opRun
		if code == opRun && (addr-1 > start || immediate) {
			return fmt.Sprintf("push(%v)", vm.At(addr)), addr + 1
		}
		return OpName(code), addr
	}

	// call to a word body
	if i := sort.Search(len(dump.words), func(i int) bool {
		return dump.words[i].Addr+2 > code
	}); i > 0 {
		word := dump.words[i-1]
		label := dump.wordLabel(word)
		if offset := code - (word.Addr + 2); offset > 0 {
			label += "+" + strconv.FormatUint(uint64(offset), 10)
		}
		if name := word.Name; name == "j" || name == "jz" {
			return fmt.Sprintf("%v(%v)", label, int32(vm.At(addr))), addr + 1
		}
		return label, addr
	}

	return strconv.FormatUint(uint64(code), 10), addr
}

// wordBodyStart returns the first body cell of the word containing addr.
func (dump *Dumper) wordBodyStart(addr Cell) Cell {
	i := sort.Search(len(dump.words), func(i int) bool {
		return dump.words[i].Addr+2 > addr
	})
	if i == 0 {
		return DictionaryStart
	}
	return dump.words[i-1].Addr + 2
}

func (dump *Dumper) scanWords() {
	dump.words = dump.VM.Words()
	sort.Slice(dump.words, func(i, j int) bool {
		return dump.words[i].Addr < dump.words[j].Addr
	})
}
