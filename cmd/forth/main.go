package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jcorbin/goforth"
	"github.com/jcorbin/goforth/internal/fileinput"
	"github.com/jcorbin/goforth/internal/panicerr"
)

const coreFile = "forth.core"

func main() {
	ctx := context.Background()

	var dump bool
	var trace bool
	var timeout time.Duration
	var size uint
	flag.BoolVar(&dump, "d", false, "dump "+coreFile+" on exit")
	flag.BoolVar(&trace, "trace", false, "enable trace logging")
	flag.DurationVar(&timeout, "timeout", 0, "specify a time limit")
	flag.UintVar(&size, "size", forth.DefaultCoreSize, "core size in cells")
	flag.Parse()

	opts := []forth.Option{
		forth.WithOutput(os.Stdout),
		forth.WithSize(size),
	}
	if trace {
		opts = append(opts, forth.WithLogf(log.Printf))
	}

	vm, err := forth.New(opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %+v\n", err)
		os.Exit(1)
	}

	if timeout != 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	rval := 0
	if args := flag.Args(); len(args) > 0 {
		rval = runFiles(ctx, vm, args)
	} else {
		vm.SetInput(os.Stdin)
		if err := vm.Run(ctx); err != nil {
			reportError(err)
			rval = 1
		}
	}

	if dump {
		if err := dumpCore(vm); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %+v\n", err)
			rval = 1
		}
	}
	vm.Close()
	os.Exit(rval)
}

// runFiles evaluates each script in order against the same machine. A
// leading line starting with # is consumed so scripts can carry a shebang.
func runFiles(ctx context.Context, vm *forth.VM, names []string) int {
	for _, name := range names {
		file, err := os.Open(name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "( fatal 'file-open \"%v\" )\n", err)
			return 1
		}

		br := bufio.NewReader(file)
		if b, err := br.ReadByte(); err != nil {
			file.Close() // empty file
			continue
		} else if b == '#' {
			br.ReadString('\n')
		} else {
			br.UnreadByte()
		}

		vm.SetInput(fileinput.NamedReader(name, br))
		err = vm.Run(ctx)
		file.Close()
		if err != nil {
			reportError(err)
			return 1
		}
	}
	return 0
}

func reportError(err error) {
	fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
	if stack := panicerr.PanicStack(err); stack != "" {
		fmt.Fprintf(os.Stderr, "%s\n", stack)
	}
}

func dumpCore(vm *forth.VM) error {
	file, err := os.Create(coreFile)
	if err != nil {
		return err
	}
	if err := vm.DumpCore(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
