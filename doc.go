/*
Package forth implements a small, self-hosting FORTH virtual machine.

The machine is one flat address space of 32-bit cells. The low cells are
registers (dictionary pointer, return stack pointer, state, output base, the
most recent word, and the image's own format info); after them comes a small
scratch buffer holding the last parsed word; then the dictionary, growing
upward; and at the top of the image the return stack and the variable stack.
Because the registers live in the image, Forth programs can reach all of the
machinery with nothing but @ and ! - `here` is just `0 @`.

Execution is indirect threaded. A compiled word's body is a sequence of
cells, each the address of another word's code; the inner interpreter
alternates between fetching the next thread cell and decoding the primitive
opcode it leads to. Only forty primitive opcodes are native; everything else is
compiled by the machine itself. At boot the primitives are seeded, a
two-cell thread is laid down that calls the read word and then itself, and
an embedded startup program is fed through that loop to define `;`, control
flow, and the rest of the system before user input is accepted.

The reader is the heart of it: parse one whitespace-delimited word, look it
up in the dictionary, and either execute it, let it compile itself, or
failing both parse it as a number. Words defined with `:` compile by
default; `immediate` words run even while compiling, which is how the
control flow words do their branch arithmetic at compile time.

The cmd/forth binary wraps the package as the traditional CLI, and
cmd/forth-viewer runs the machine under a terminal UI that single-steps the
inner interpreter.
*/
package forth
