package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/handiism/webdl/internal/tracker"
)

// promptDialog asks for save paths on the terminal. An empty answer keeps
// the default, "-" or end of input cancels.
type promptDialog struct {
	mu  sync.Mutex
	in  *bufio.Reader
	out io.Writer
}

func newPromptDialog(in io.Reader, out io.Writer) *promptDialog {
	return &promptDialog{in: bufio.NewReader(in), out: out}
}

func (d *promptDialog) ShowSaveDialog(ctx context.Context, _ tracker.Surface, defaultPath string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if ctx.Err() != nil {
		return "", false
	}

	fmt.Fprintf(d.out, "Save as [%s]: ", defaultPath)
	line, err := d.in.ReadString('\n')
	line = strings.TrimSpace(line)
	if err != nil && line == "" {
		return "", false
	}

	switch line {
	case "":
		return defaultPath, true
	case "-":
		return "", false
	}
	return line, true
}
