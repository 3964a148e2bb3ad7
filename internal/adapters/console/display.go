package console

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Display writes lines to an output stream.
type Display struct {
	mu  sync.Mutex
	out io.Writer
}

// New creates a display writing to out; nil means stdout.
func New(out io.Writer) *Display {
	if out == nil {
		out = os.Stdout
	}
	return &Display{out: out}
}

// DisplayLine writes text followed by a newline.
func (d *Display) DisplayLine(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprintln(d.out, text)
}
