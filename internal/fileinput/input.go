package fileinput

import (
	"bufio"
	"fmt"
	"io"
)

// Location names a line in an Input source.
type Location struct {
	Name string
	Line int
}

func (loc Location) String() string { return fmt.Sprintf("%v:%v", loc.Name, loc.Line) }

// Input implements sequential byte reading through a queue of one or more
// input streams. The current source name and line number are tracked so that
// diagnostics can say where input came from.
type Input struct {
	br    *bufio.Reader
	cl    io.Closer
	queue []io.Reader
	loc   Location
	last  byte
}

// Reset discards any current source and queued sources, replacing them with
// the given readers.
func (in *Input) Reset(rs ...io.Reader) {
	in.closeCurrent()
	in.queue = append(in.queue[:0], rs...)
}

// Push appends more sources to the queue.
func (in *Input) Push(rs ...io.Reader) {
	in.queue = append(in.queue, rs...)
}

// Loc returns the location of the byte most recently read.
func (in *Input) Loc() Location { return in.loc }

// ReadByte reads one byte from the current source, rolling over to the next
// queued source at EOF. Returns io.EOF once the queue is exhausted.
func (in *Input) ReadByte() (byte, error) {
	for {
		if in.br == nil && !in.next() {
			return 0, io.EOF
		}
		b, err := in.br.ReadByte()
		if err == io.EOF {
			in.closeCurrent()
			continue
		} else if err != nil {
			return 0, err
		}
		if b == '\n' {
			in.loc.Line++
		}
		in.last = b
		return b, nil
	}
}

// UnreadByte puts the last read byte back so the next ReadByte returns it
// again.
func (in *Input) UnreadByte() error {
	if in.br == nil {
		return nil
	}
	if err := in.br.UnreadByte(); err != nil {
		return err
	}
	if in.last == '\n' {
		in.loc.Line--
	}
	return nil
}

func (in *Input) next() bool {
	if len(in.queue) == 0 {
		return false
	}
	r := in.queue[0]
	in.queue = in.queue[1:]
	if br, ok := r.(*bufio.Reader); ok {
		in.br = br
	} else {
		in.br = bufio.NewReader(r)
	}
	if cl, ok := r.(io.Closer); ok {
		in.cl = cl
	}
	in.loc = Location{Name: nameOf(r), Line: 1}
	return true
}

func (in *Input) closeCurrent() {
	if in.cl != nil {
		in.cl.Close()
		in.cl = nil
	}
	in.br = nil
}

// Close releases the current source and drops any queued ones.
func (in *Input) Close() error {
	in.Reset()
	return nil
}

func nameOf(obj interface{}) string {
	if nom, ok := obj.(interface{ Name() string }); ok {
		return nom.Name()
	}
	return fmt.Sprintf("<unnamed %T>", obj)
}

// NamedReader attaches a name to a reader so Input can report it in
// locations.
func NamedReader(name string, r io.Reader) io.Reader {
	return namedReader{r, name}
}

type namedReader struct {
	io.Reader
	name string
}

func (nr namedReader) Name() string { return nr.name }
