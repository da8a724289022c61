package host

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/handiism/webdl/internal/desktop"
	"github.com/handiism/webdl/internal/http"
	"github.com/handiism/webdl/internal/tracker"
)

// Options configures a Runtime.
type Options struct {
	// HTTP configures the client used for transfers.
	HTTP http.Options

	// ProgressInterval is the minimum time between two progress ticks of
	// one item. 0 reports every chunk.
	ProgressInterval time.Duration

	// DownloadsDir is used for items nobody assigned a save path to.
	// Default: desktop.DownloadsDir()
	DownloadsDir string

	// Logger records transfer failures.
	// Default: slog.Default()
	Logger *slog.Logger
}

// Runtime is an in-process host: it owns the sessions, performs the
// transfers and emits their lifecycle signals.
//
// Example:
//
//	rt := host.NewRuntime(host.Options{})
//	defer rt.Shutdown()
//
//	win := rt.NewWindow("default")
//	t := tracker.Register(win.Session(), nil, nil, tracker.DefaultOptions(), cb)
//	win.DownloadURL("https://example.com/a.pdf", "")
//	rt.Wait()
type Runtime struct {
	client *http.Client
	opts   Options
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRuntime creates a Runtime.
func NewRuntime(opts Options) *Runtime {
	if opts.DownloadsDir == "" {
		opts.DownloadsDir = desktop.DownloadsDir()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Runtime{
		client:   http.NewClient(opts.HTTP),
		opts:     opts,
		logger:   opts.Logger,
		ctx:      ctx,
		cancel:   cancel,
		sessions: make(map[string]*Session),
	}
}

// Session returns the session of partition, creating it on first use.
func (r *Runtime) Session(partition string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[partition]
	if !ok {
		s = newSession(r, partition)
		r.sessions[partition] = s
	}
	return s
}

// NewWindow opens a window browsing in partition.
func (r *Runtime) NewWindow(partition string) *Window {
	return &Window{session: r.Session(partition), progress: tracker.Idle}
}

// Wait blocks until every transfer started so far has finished.
func (r *Runtime) Wait() {
	r.wg.Wait()
}

// Shutdown cancels all transfers and waits for their done signals.
func (r *Runtime) Shutdown() {
	r.cancel()
	r.wg.Wait()
}
