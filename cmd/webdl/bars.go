package main

import (
	"sync"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/handiism/webdl/internal/tracker"
)

// itemBar is the progress bar of one remote request. It is created when
// the transfer starts and completed or aborted when the request resolves.
type itemBar struct {
	progress *mpb.Progress

	mu     sync.Mutex
	item   tracker.Item
	bar    *mpb.Bar
	closed bool
}

func newItemBar(p *mpb.Progress) *itemBar {
	return &itemBar{progress: p}
}

func (b *itemBar) start(item tracker.Item) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed || b.progress == nil {
		return
	}

	b.item = item
	b.bar = b.progress.AddBar(item.TotalBytes(),
		mpb.PrependDecorators(
			decor.Name(item.Filename(), decor.WCSyncSpaceR),
		),
		mpb.AppendDecorators(
			decor.CountersKibiByte("% .1f / % .1f", decor.WCSyncSpace),
			decor.Percentage(decor.WCSyncSpace),
		),
	)
}

func (b *itemBar) update() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.bar != nil {
		b.bar.SetCurrent(b.item.ReceivedBytes())
	}
}

// finish releases the bar. Later starts are ignored.
func (b *itemBar) finish(completed bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	if b.bar == nil {
		return
	}
	if completed {
		b.bar.SetCurrent(b.item.ReceivedBytes())
		b.bar.SetTotal(-1, true)
	} else {
		b.bar.Abort(false)
	}
}
