package desktop

import (
	"fmt"
	"io"
	"sync"
)

// TitleBadge shows the active download count in the terminal title,
// the closest thing a terminal has to an application badge.
//
// TitleBadge is meant to be shared by every tracker of the process.
type TitleBadge struct {
	// Output is the terminal.
	Output io.Writer

	// Title is the application name shown next to the count.
	Title string

	mu    sync.Mutex
	count int
}

// SetBadgeCount updates the title. A count of 0 shows the plain title.
func (b *TitleBadge) SetBadgeCount(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if n < 0 {
		n = 0
	}
	b.count = n

	title := b.Title
	if n > 0 {
		title = fmt.Sprintf("(%d) %s", n, b.Title)
	}
	// OSC 0: set icon name and window title.
	fmt.Fprintf(b.Output, "\033]0;%s\007", title)
}

// Count returns the last count written.
func (b *TitleBadge) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}
