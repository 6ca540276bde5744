// Command forth-viewer runs a Forth machine under a terminal UI that
// single-steps the inner interpreter: a memory grid, the registers and both
// stacks, the decoded dictionary, and captured output.
//
// Keys: space pauses/resumes, n steps one dispatch while paused, q or
// Escape quits.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/jcorbin/goforth"
	"github.com/jcorbin/goforth/internal/fileinput"
)

// demoProgram gives the viewer something to chew on when no scripts are
// named on the command line.
const demoProgram = `
.( forth-viewer demo)
cr
: square dup * ;
: count-squares 1 begin dup square . tab 1+ dup 16 = until drop cr ;
count-squares
words
1 2 3 .s cr
`

func main() {
	var delay time.Duration
	flag.DurationVar(&delay, "delay", 50*time.Millisecond, "redraw interval while running")
	flag.Parse()

	g := newDebugger(context.Background(), delay)

	vm, err := forth.New(
		forth.WithOutput(g.outView),
		forth.WithDiagnostics(g.outView),
	)
	if err != nil {
		log.Fatalf("Failed to boot machine: %s.", err)
	}
	vm.SetStepFunc(g.hook) // attached after boot so the UI only sees user input run
	g.vm = vm

	if args := flag.Args(); len(args) > 0 {
		for _, name := range args {
			file, err := os.Open(name)
			if err != nil {
				log.Fatalf("Failed to open %q: %s.", name, err)
			}
			vm.PushInput(fileinput.NamedReader(name, file))
		}
	} else {
		vm.SetInput(strings.NewReader(demoProgram))
	}

	go g.runMachine()
	go g.drive()

	if err := g.app.SetRoot(g.root, true).SetFocus(g.root).Run(); err != nil {
		panic(err)
	}
}

type debugger struct {
	app  *tview.Application
	root *tview.Flex
	vm   *forth.VM

	memView   *tview.Table
	stateView *tview.TextView
	wordsView *tview.TextView
	outView   *tview.TextView

	ready chan forth.StepEvent
	step  chan struct{}

	mu     sync.Mutex
	paused bool
	next   bool

	cur forth.StepEvent

	ctx    context.Context
	cancel context.CancelFunc
	delay  time.Duration
}

func newDebugger(ctx context.Context, delay time.Duration) *debugger {
	ctx, cancel := context.WithCancel(ctx)
	g := &debugger{
		app:    tview.NewApplication(),
		ready:  make(chan forth.StepEvent),
		step:   make(chan struct{}),
		paused: true,
		ctx:    ctx,
		cancel: cancel,
		delay:  delay,
	}

	g.memView = tview.NewTable().SetBorders(false)
	g.stateView = tview.NewTextView().SetDynamicColors(true)
	g.stateView.SetTitle("Machine").SetBorder(true)
	g.wordsView = tview.NewTextView()
	g.wordsView.SetTitle("Words").SetBorder(true)
	g.outView = tview.NewTextView()
	g.outView.SetTitle("Output").SetBorder(true)
	g.outView.ScrollToEnd()

	memPane := tview.NewFlex()
	memPane.SetTitle("Core").SetBorder(true)
	memPane.AddItem(g.memView, 0, 1, false)

	rightPane := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(g.stateView, 0, 2, false).
		AddItem(g.wordsView, 0, 3, false).
		AddItem(g.outView, 0, 2, false)

	g.root = tview.NewFlex().
		AddItem(memPane, 0, 3, true).
		AddItem(rightPane, 0, 2, false)

	g.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyCtrlC, tcell.KeyEscape:
			g.quit()
			return nil
		}
		switch event.Rune() {
		case ' ':
			g.mu.Lock()
			g.paused = !g.paused
			g.mu.Unlock()
			return nil
		case 'n':
			g.mu.Lock()
			g.next = true
			g.mu.Unlock()
			return nil
		case 'q':
			g.quit()
			return nil
		}
		return event
	})

	return g
}

func (g *debugger) quit() {
	g.cancel()
	g.app.Stop()
}

// hook parks the machine between dispatches: announce the event, then wait
// for the driver to release one step.
func (g *debugger) hook(ev forth.StepEvent) {
	select {
	case g.ready <- ev:
	case <-g.ctx.Done():
		return
	}
	select {
	case <-g.step:
	case <-g.ctx.Done():
	}
}

func (g *debugger) runMachine() {
	err := g.vm.Run(g.ctx)
	if g.ctx.Err() == nil {
		mess := "( machine halted )"
		if err != nil {
			mess = fmt.Sprintf("( machine halted: %v )", err)
		}
		fmt.Fprintf(g.outView, "\n%s\n", mess)
		g.app.QueueUpdateDraw(g.draw)
	}
}

func (g *debugger) isPaused() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.paused
}

func (g *debugger) takeNext() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.next {
		g.next = false
		return true
	}
	return false
}

// drive consumes step events: while the machine is parked in its hook it is
// quiescent, so all drawing happens before the release.
func (g *debugger) drive() {
	drawWait := func() bool {
		done := make(chan struct{})
		g.app.QueueUpdateDraw(func() { g.draw(); close(done) })
		select {
		case <-done:
			return true
		case <-g.ctx.Done():
			return false
		}
	}
	lastDraw := time.Time{}
	for {
		select {
		case <-g.ctx.Done():
			return
		case ev := <-g.ready:
			g.cur = ev

			if g.isPaused() && !g.takeNext() {
				if !drawWait() {
					return
				}
				for g.isPaused() && !g.takeNext() {
					select {
					case <-time.After(30 * time.Millisecond):
					case <-g.ctx.Done():
						return
					}
				}
			} else if time.Since(lastDraw) >= g.delay {
				if !drawWait() {
					return
				}
				lastDraw = time.Now()
			}

			select {
			case g.step <- struct{}{}:
			case <-g.ctx.Done():
				return
			}
		}
	}
}

func (g *debugger) draw() {
	g.drawState()
	g.drawWords()
	g.drawMem()
}

func (g *debugger) drawState() {
	vm := g.vm
	sv := g.stateView
	sv.Clear()
	fmt.Fprintf(sv, "I: %d  pc: %d  op: %s\n", g.cur.I, g.cur.PC, forth.OpName(g.cur.Op))
	fmt.Fprintf(sv, "dic: %d\n", vm.At(forth.RegDIC))
	fmt.Fprintf(sv, "rstk: %d\n", vm.At(forth.RegRSTK))
	fmt.Fprintf(sv, "state: %d  hex: %d\n", vm.At(forth.RegState), vm.At(forth.RegHex))
	fmt.Fprintf(sv, "pwd: %d\n", vm.At(forth.RegPWD))
	fmt.Fprintf(sv, "stack: %v\n", vm.Stack())
	fmt.Fprintf(sv, "rstack: %v\n", vm.ReturnStack())
	fmt.Fprintf(sv, "input: %s\n", vm.InputLocation())
	mode := "running (space pauses)"
	if g.isPaused() {
		mode = "paused (n steps, space resumes)"
	}
	fmt.Fprintf(sv, "%s\n", mode)
}

func (g *debugger) drawWords() {
	wv := g.wordsView
	wv.Clear()
	for _, word := range g.vm.Words() {
		mark := " "
		if word.Immediate {
			mark = "*"
		}
		fmt.Fprintf(wv, "%s @%-5d %-10s %s\n", mark, word.Addr, word.Name, forth.OpName(word.Code))
	}
}

func (g *debugger) drawMem() {
	const width = 8
	const maxCells = 4096

	vm := g.vm
	end := vm.At(forth.RegDIC) + 2*width
	if end > vm.Size() {
		end = vm.Size()
	}
	if end > maxCells {
		end = maxCells
	}

	dic := vm.At(forth.RegDIC)
	for addr := forth.Cell(0); addr < end; addr++ {
		row, col := int(addr/width), int(addr%width)+1
		if col == 1 {
			head := tview.NewTableCell(fmt.Sprintf("@%04x", addr)).
				SetAttributes(tcell.AttrBold).
				SetAlign(tview.AlignRight)
			g.memView.SetCell(row, 0, head)
		}
		cell := tview.NewTableCell(fmt.Sprintf("%08x", vm.At(addr))).
			SetAlign(tview.AlignRight)
		switch {
		case addr == g.cur.PC:
			cell.SetAttributes(tcell.AttrReverse)
		case addr == g.cur.I:
			cell.SetAttributes(tcell.AttrUnderline)
		case addr == dic:
			cell.SetAttributes(tcell.AttrBold)
		case vm.At(addr) == 0:
			cell.SetTextColor(tcell.ColorDimGray).SetAttributes(tcell.AttrDim)
		}
		g.memView.SetCell(row, col, cell)
	}
}
