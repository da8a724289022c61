package download

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/google/uuid"
	"github.com/handiism/webdl/internal/desktop"
	"github.com/handiism/webdl/internal/http"
	ioutils "github.com/handiism/webdl/internal/io"
	"github.com/handiism/webdl/internal/model"
	"github.com/handiism/webdl/internal/tracker"
)

// ErrNoSession is returned when a window has no session to download in.
var ErrNoSession = errors.New("window has no session")

// Window is the host window a download is requested from.
type Window interface {
	tracker.Surface

	// Session returns the browsing context of the window.
	Session() tracker.Session

	// DownloadURL asks the host runtime to transfer url. Items created
	// for it carry tag.
	DownloadURL(url, tag string)
}

// SaveDialog asks the user where to save a file.
type SaveDialog interface {
	// ShowSaveDialog blocks until the user picks a destination. It
	// returns false when the user cancelled.
	ShowSaveDialog(ctx context.Context, owner tracker.Surface, defaultPath string) (string, bool)
}

// Options configures a single request. The save location, the OnStarted,
// OnProgress and OnCancel hooks, the interruption message and
// OpenFolderWhenDone apply to the request's own transfer. Badge and
// platform settings are taken from Dispatcher.Tracking.
type Options struct {
	tracker.Options

	// Filename overrides the derived filename. For local files it is the
	// base name; the source extension is appended.
	Filename string
}

// Dispatcher routes download requests to the host runtime or to the
// local copy path.
//
// Remote requests made in the same session share one tracker, so the
// badge and the window's progress bar aggregate every transfer in
// flight. Each request is still resolved with its own item.
//
// Example:
//
//	d := download.NewDispatcher(dialog, badge, shell, slog.Default())
//	res, err := d.Download(ctx, win, "https://example.com/report.pdf", download.Options{
//	    Options: tracker.DefaultOptions(),
//	})
//	var ierr *download.InterruptedError
//	if errors.As(err, &ierr) {
//	    fmt.Println(ierr.Message)
//	}
type Dispatcher struct {
	// Dialog picks destinations. A nil Dialog accepts the default path.
	Dialog SaveDialog

	// Indicator is the shared badge sink passed to every tracker.
	Indicator tracker.Indicator

	// Desktop receives completion and error feedback.
	Desktop tracker.Desktop

	// Logger records aborted requests and copy failures.
	Logger *slog.Logger

	// Platform is the GOOS used for local path normalization and for
	// the session trackers.
	// Default: runtime.GOOS
	Platform string

	// Tracking configures the shared session trackers. Its per-item
	// fields are ignored; those come from each request's Options. An
	// empty Platform falls back to Platform above.
	Tracking tracker.Options

	mu       sync.Mutex
	trackers map[tracker.Session]*tracker.Tracker
}

// NewDispatcher creates a Dispatcher for the current platform.
func NewDispatcher(dialog SaveDialog, indicator tracker.Indicator, desk tracker.Desktop, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		Dialog:    dialog,
		Indicator: indicator,
		Desktop:   desk,
		Logger:    logger,
		Platform:  runtime.GOOS,
	}
}

// Close detaches the session trackers. Transfers in flight keep
// reporting until they finish.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	trackers := d.trackers
	d.trackers = nil
	d.mu.Unlock()

	for _, t := range trackers {
		t.Unregister()
	}
}

// trackerFor returns the tracker of session, registering it on first use.
func (d *Dispatcher) trackerFor(session tracker.Session) *tracker.Tracker {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.trackers[session]; ok {
		return t
	}

	topts := tracker.Options{
		HideBadge:    d.Tracking.HideBadge,
		ErrorMessage: d.Tracking.ErrorMessage,
		ErrorTitle:   d.Tracking.ErrorTitle,
		Platform:     d.Tracking.Platform,
		Logger:       d.Tracking.Logger,
	}
	if topts.Platform == "" {
		topts.Platform = d.platform()
	}
	if topts.Logger == nil {
		topts.Logger = d.logger()
	}

	// Untagged transfers are not ours to resolve; they still count
	// towards the session's badge and progress bar.
	t := tracker.Register(session, d.Indicator, d.Desktop, topts, nil)
	if d.trackers == nil {
		d.trackers = make(map[tracker.Session]*tracker.Tracker)
	}
	d.trackers[session] = t
	return t
}

// Download dispatches ref and waits for the result.
//
// The error is non-nil only when the transfer was interrupted or ctx
// ended first. Cancellation, a cancelled dialog and local copy failures
// are reported through Result.Status.
func (d *Dispatcher) Download(ctx context.Context, win Window, ref string, opts Options) (Result, error) {
	return d.Start(ctx, win, ref, opts).Wait(ctx)
}

// Start dispatches ref and returns without waiting for the transfer.
//
// The save dialog is shown before Start returns. http, https and data:
// references are handed to the host runtime and tracked; anything else
// is treated as a local file and copied.
func (d *Dispatcher) Start(ctx context.Context, win Window, ref string, opts Options) *Future {
	if http.IsRemote(ref) {
		return d.startRemote(ctx, win, ref, opts)
	}
	return d.startLocal(ctx, win, ref, opts)
}

func (d *Dispatcher) startRemote(ctx context.Context, win Window, ref string, opts Options) *Future {
	dir := d.directory(opts)
	name := opts.Filename
	if name == "" {
		name = model.FilenameFromURL(ref)
	}

	savePath, ok := d.askSavePath(ctx, win, filepath.Join(dir, ioutils.SanitizeFileName(name)))
	if !ok {
		d.logger().Debug("download aborted", "url", ref, "reason", "dialog cancelled")
		return resolved(Result{Status: StatusAborted}, nil)
	}

	var session tracker.Session
	if win != nil {
		session = win.Session()
	}
	if session == nil {
		return resolved(Result{Status: StatusAborted}, ErrNoSession)
	}

	req := opts.Options
	req.Directory = dir
	req.SavePath = savePath
	tag := uuid.NewString()

	f := newFuture()
	d.trackerFor(session).Expect(tag, req, func(item tracker.Item, outcome model.Outcome, err error) {
		switch outcome {
		case model.OutcomeCompleted:
			f.resolve(Result{Status: StatusCompleted, Item: item, Path: item.SavePath()}, nil)
		case model.OutcomeCancelled:
			f.resolve(Result{Status: StatusCancelled, Item: item, Path: item.SavePath()}, nil)
		case model.OutcomeInterrupted:
			f.resolve(Result{Status: StatusInterrupted, Item: item, Path: item.SavePath()}, err)
		}
	})

	win.DownloadURL(ref, tag)
	return f
}

func (d *Dispatcher) askSavePath(ctx context.Context, owner tracker.Surface, defaultPath string) (string, bool) {
	if d.Dialog == nil {
		return defaultPath, true
	}
	p, ok := d.Dialog.ShowSaveDialog(ctx, owner, defaultPath)
	if !ok || p == "" {
		return "", false
	}
	return p, true
}

func (d *Dispatcher) directory(opts Options) string {
	if opts.Directory != "" {
		return opts.Directory
	}
	return desktop.DownloadsDir()
}

func (d *Dispatcher) platform() string {
	if d.Platform == "" {
		return runtime.GOOS
	}
	return d.Platform
}

func (d *Dispatcher) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.Default()
	}
	return d.Logger
}
