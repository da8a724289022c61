package host

import (
	"sync"

	"github.com/handiism/webdl/internal/tracker"
)

// Window is a host window. It implements tracker.Surface and
// download.Window.
type Window struct {
	session *Session

	mu        sync.Mutex
	destroyed bool
	progress  float64

	// OnProgressBar, if set, is called whenever the progress bar changes.
	OnProgressBar func(ratio float64)
}

// Session returns the browsing context of the window.
func (w *Window) Session() tracker.Session {
	return w.session
}

// HostSession returns the concrete session, e.g. to cancel transfers.
func (w *Window) HostSession() *Session {
	return w.session
}

// DownloadURL starts transferring url in the window's session. Items
// created for it carry tag.
func (w *Window) DownloadURL(url, tag string) {
	w.session.download(url, tag, w)
}

// SetProgressBar records ratio; tracker.Idle clears the bar.
// Calls on a closed window are ignored.
func (w *Window) SetProgressBar(ratio float64) {
	w.mu.Lock()
	if w.destroyed {
		w.mu.Unlock()
		return
	}
	w.progress = ratio
	hook := w.OnProgressBar
	w.mu.Unlock()

	if hook != nil {
		hook(ratio)
	}
}

// ProgressBar returns the last ratio set, tracker.Idle if none.
func (w *Window) ProgressBar() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.progress
}

// Destroyed reports whether the window was closed.
func (w *Window) Destroyed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.destroyed
}

// Close destroys the window. Running transfers continue.
func (w *Window) Close() {
	w.mu.Lock()
	w.destroyed = true
	w.mu.Unlock()
}
