package tracker

import (
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/handiism/webdl/internal/model"
)

// Idle is the progress value reported when no download is active.
// Surfaces receiving it remove their progress bar.
const Idle = -1.0

// Item is the tracker's view of a transfer owned by the host runtime.
type Item interface {
	ID() string
	Tag() string
	URL() string
	Filename() string
	TotalBytes() int64
	ReceivedBytes() int64
	SavePath() string
	SetSavePath(path string)
}

// Surface is the display surface (window) that owns a transfer.
type Surface interface {
	// Destroyed reports whether the surface has been torn down.
	Destroyed() bool

	// SetProgressBar shows ratio in the surface's progress bar.
	// Idle removes the bar.
	SetProgressBar(ratio float64)
}

// Indicator is the process-wide badge sink shared by every tracker.
type Indicator interface {
	SetBadgeCount(n int)
}

// Desktop groups the platform affordances used when a transfer ends.
type Desktop interface {
	// ShowErrorBox presents a blocking error to the user.
	ShowErrorBox(title, message string)

	// DownloadFinished signals the dock that a file finished downloading.
	DownloadFinished(path string)

	// ShowItemInFolder reveals path in the platform file manager.
	ShowItemInFolder(path string)
}

// ItemHandler receives the lifecycle signals of one observed transfer.
type ItemHandler interface {
	// Updated is called on every progress tick.
	Updated()

	// Done is called once with the terminal outcome.
	Done(outcome model.Outcome)
}

// StartFunc is called by a Session for every new transfer. A nil return
// means the listener is not interested in the transfer.
type StartFunc func(item Item, owner Surface) ItemHandler

// Session is a browsing context of the host runtime.
//
// Hosts must deliver the signals of one session serially: the StartFunc
// for an item precedes its Updated calls, which precede exactly one Done.
type Session interface {
	// OnWillDownload registers fn for new transfers and returns a function
	// removing it. Removal only stops observation of new transfers.
	OnWillDownload(fn StartFunc) (remove func())
}

// Callback receives the terminal signal of a tracked transfer.
//
// For OutcomeCompleted and OutcomeCancelled err is nil. For
// OutcomeInterrupted err is an *InterruptedError.
type Callback func(item Item, outcome model.Outcome, err error)

// Tracker multiplexes the transfers of one session into a single
// aggregate progress ratio and badge count.
//
// Counters follow these rules:
//   - total is the sum of TotalBytes over every item started while busy
//   - completed is the sum of TotalBytes over finished items
//   - received is completed plus ReceivedBytes of the active items
//
// When the last active item finishes all three reset to zero and the
// progress indicator is set to Idle.
type Tracker struct {
	session   Session
	indicator Indicator
	desktop   Desktop
	opts      Options
	cb        Callback
	logger    *slog.Logger

	mu        sync.Mutex
	items     map[string]*entry
	expected  map[string]*expectation
	received  int64
	completed int64
	total     int64
	remove    func()
	detached  bool
}

type entry struct {
	item  Item
	owner Surface
	exp   *expectation
}

// expectation holds the per-request options and callback of an item
// that has not started yet.
type expectation struct {
	opts Options
	cb   Callback
}

// options returns the options governing e: those of its expectation,
// or the tracker's own.
func (t *Tracker) options(e *entry) Options {
	if e.exp != nil {
		return e.exp.opts
	}
	return t.opts
}

func (t *Tracker) callbackFor(e *entry) Callback {
	if e.exp != nil {
		return e.exp.cb
	}
	return t.cb
}

// Register attaches a new Tracker to session.
//
// indicator, desktop and cb may be nil. Options left empty fall back to
// the values of DefaultOptions.
//
// Example:
//
//	t := tracker.Register(session, badge, shell, opts, func(item tracker.Item, o model.Outcome, err error) {
//	    if err != nil {
//	        log.Println(err)
//	    }
//	})
//	defer t.Unregister()
func Register(session Session, indicator Indicator, desktop Desktop, opts Options, cb Callback) *Tracker {
	opts = opts.withDefaults()

	t := &Tracker{
		session:   session,
		indicator: indicator,
		desktop:   desktop,
		opts:      opts,
		cb:        cb,
		logger:    opts.Logger,
		items:     make(map[string]*entry),
		expected:  make(map[string]*expectation),
	}

	remove := session.OnWillDownload(t.itemStarted)

	t.mu.Lock()
	if t.detached {
		t.mu.Unlock()
		remove()
		return t
	}
	t.remove = remove
	t.mu.Unlock()

	return t
}

// Unregister stops observing new transfers. Transfers already being
// tracked keep reporting until they finish. Calling it again is a no-op.
func (t *Tracker) Unregister() {
	t.mu.Lock()
	if t.detached {
		t.mu.Unlock()
		return
	}
	t.detached = true
	remove := t.remove
	t.remove = nil
	t.mu.Unlock()

	if remove != nil {
		remove()
	}
}

// Expect routes the item started with tag to opts and cb instead of the
// tracker's own options and callback. The save path, the OnStarted,
// OnProgress and OnCancel hooks, the interruption message, the
// OpenFolderWhenDone flag and the terminal callback are taken from opts.
// The badge, the progress bar and the counters stay aggregated over
// every item of the session.
//
// Expect must be called before the transfer is requested. The
// expectation is consumed by the first item carrying tag.
func (t *Tracker) Expect(tag string, opts Options, cb Callback) {
	if opts.ErrorMessage == "" {
		opts.ErrorMessage = t.opts.ErrorMessage
	}
	if opts.ErrorTitle == "" {
		opts.ErrorTitle = t.opts.ErrorTitle
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.expected[tag] = &expectation{opts: opts, cb: cb}
}

// Progress returns the aggregate ratio, or Idle when nothing is active
// or the total size is unknown.
func (t *Tracker) Progress() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ratioLocked()
}

// Counters returns the received, completed and total byte counters.
func (t *Tracker) Counters() (received, completed, total int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.received, t.completed, t.total
}

// Active returns the number of transfers in flight.
func (t *Tracker) Active() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.items)
}

func (t *Tracker) itemStarted(item Item, owner Surface) ItemHandler {
	t.mu.Lock()
	if t.detached {
		t.mu.Unlock()
		return nil
	}
	if t.opts.Tag != "" && item.Tag() != t.opts.Tag {
		t.mu.Unlock()
		return nil
	}
	if _, ok := t.items[item.ID()]; ok {
		t.mu.Unlock()
		return &handler{t: t, item: item}
	}
	e := &entry{item: item, owner: owner}
	if exp, ok := t.expected[item.Tag()]; ok && item.Tag() != "" {
		delete(t.expected, item.Tag())
		e.exp = exp
	}
	t.items[item.ID()] = e
	t.total += item.TotalBytes()
	t.mu.Unlock()

	opts := t.options(e)
	switch {
	case opts.SavePath != "":
		item.SetSavePath(opts.SavePath)
	case opts.Directory != "":
		item.SetSavePath(filepath.Join(opts.Directory, item.Filename()))
	}

	t.logger.Debug("download started",
		"id", item.ID(),
		"url", item.URL(),
		"path", item.SavePath(),
		"total", item.TotalBytes(),
	)

	if opts.OnStarted != nil {
		opts.OnStarted(item)
	}

	return &handler{t: t, item: item}
}

func (t *Tracker) itemUpdated(item Item) {
	t.mu.Lock()
	e, ok := t.items[item.ID()]
	if !ok {
		t.mu.Unlock()
		return
	}
	received := t.completed
	for _, active := range t.items {
		received += active.item.ReceivedBytes()
	}
	t.received = received
	ratio := t.ratioLocked()
	active := len(t.items)
	t.mu.Unlock()

	t.setBadge(active)
	t.setProgressBar(e.owner, ratio)

	if fn := t.options(e).OnProgress; fn != nil {
		fn(ratio)
	}
}

func (t *Tracker) itemDone(item Item, outcome model.Outcome) {
	t.mu.Lock()
	e, ok := t.items[item.ID()]
	if !ok {
		// Unknown or already finished.
		t.mu.Unlock()
		return
	}
	delete(t.items, item.ID())
	t.completed += item.TotalBytes()
	received := t.completed
	for _, other := range t.items {
		received += other.item.ReceivedBytes()
	}
	t.received = received
	active := len(t.items)
	if active == 0 {
		t.received = 0
		t.completed = 0
		t.total = 0
	}
	t.mu.Unlock()

	opts := t.options(e)
	cb := t.callbackFor(e)

	t.setBadge(active)
	if active == 0 {
		t.setProgressBar(e.owner, Idle)
	}

	if t.opts.UnregisterWhenDone {
		t.Unregister()
	}

	t.logger.Debug("download done",
		"id", item.ID(),
		"outcome", outcome.String(),
		"active", active,
	)

	var err error
	switch outcome {
	case model.OutcomeCancelled:
		if opts.OnCancel != nil {
			opts.OnCancel(item)
		}

	case model.OutcomeInterrupted:
		message := FormatMessage(opts.ErrorMessage, map[string]string{
			"filename": item.Filename(),
		})
		if t.desktop != nil {
			t.desktop.ShowErrorBox(opts.ErrorTitle, message)
		}
		t.logger.Warn("download interrupted", "id", item.ID(), "url", item.URL())
		err = &InterruptedError{Item: item, Message: message}

	case model.OutcomeCompleted:
		path := item.SavePath()
		if t.desktop != nil {
			if t.opts.Platform == "darwin" {
				t.desktop.DownloadFinished(path)
			}
			if opts.OpenFolderWhenDone {
				t.desktop.ShowItemInFolder(path)
			}
		}
	}

	if cb != nil {
		cb(item, outcome, err)
	}
}

func (t *Tracker) ratioLocked() float64 {
	if len(t.items) == 0 || t.total <= 0 {
		return Idle
	}
	return float64(t.received) / float64(t.total)
}

func (t *Tracker) setBadge(n int) {
	if t.indicator == nil || t.opts.HideBadge || !BadgeSupported(t.opts.Platform) {
		return
	}
	t.indicator.SetBadgeCount(n)
}

func (t *Tracker) setProgressBar(owner Surface, ratio float64) {
	if owner == nil || owner.Destroyed() {
		return
	}
	owner.SetProgressBar(ratio)
}

// BadgeSupported reports whether goos has an application badge.
func BadgeSupported(goos string) bool {
	return goos == "darwin" || goos == "linux"
}

// handler routes the signals of one item back to its tracker.
type handler struct {
	t    *Tracker
	item Item
}

func (h *handler) Updated() { h.t.itemUpdated(h.item) }

func (h *handler) Done(outcome model.Outcome) { h.t.itemDone(h.item, outcome) }
