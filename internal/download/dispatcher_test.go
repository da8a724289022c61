package download

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/handiism/webdl/internal/host"
	"github.com/handiism/webdl/internal/tracker"
)

type fakeSession struct {
	mu        sync.Mutex
	listeners int
}

func (s *fakeSession) OnWillDownload(fn tracker.StartFunc) func() {
	s.mu.Lock()
	s.listeners++
	s.mu.Unlock()
	return func() {}
}

type fakeWindow struct {
	session   *fakeSession
	requested []string
}

func (w *fakeWindow) Destroyed() bool              { return false }
func (w *fakeWindow) SetProgressBar(float64)       {}
func (w *fakeWindow) Session() tracker.Session     { return w.session }
func (w *fakeWindow) DownloadURL(url, tag string) { w.requested = append(w.requested, url) }

type fakeDialog struct {
	path    string
	ok      bool
	offered string
}

func (d *fakeDialog) ShowSaveDialog(_ context.Context, _ tracker.Surface, defaultPath string) (string, bool) {
	d.offered = defaultPath
	return d.path, d.ok
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestDispatcher(dialog SaveDialog) *Dispatcher {
	d := NewDispatcher(dialog, nil, nil, quietLogger())
	d.Platform = "linux"
	return d
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestDispatcher_RemoteDialogCancelled(t *testing.T) {
	win := &fakeWindow{session: &fakeSession{}}
	dialog := &fakeDialog{ok: false}
	d := newTestDispatcher(dialog)

	called := false
	opts := Options{Options: tracker.DefaultOptions()}
	opts.Directory = "/tmp/downloads"
	opts.OnStarted = func(tracker.Item) { called = true }

	res, err := d.Download(testContext(t), win, "https://example.com/a.pdf", opts)
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	if res.Status != StatusAborted {
		t.Errorf("Status = %v, want aborted", res.Status)
	}
	if dialog.offered != filepath.Join("/tmp/downloads", "a.pdf") {
		t.Errorf("dialog offered %q", dialog.offered)
	}
	if win.session.listeners != 0 || len(win.requested) != 0 || called {
		t.Errorf("nothing should be registered or requested: listeners=%d requested=%v", win.session.listeners, win.requested)
	}
}

func TestDispatcher_RemoteNoSession(t *testing.T) {
	d := newTestDispatcher(nil)
	_, err := d.Download(testContext(t), nil, "https://example.com/a.pdf", Options{})
	if !errors.Is(err, ErrNoSession) {
		t.Errorf("err = %v, want ErrNoSession", err)
	}
}

func TestDispatcher_RemoteRequestsTaggedTransfer(t *testing.T) {
	win := &fakeWindow{session: &fakeSession{}}
	d := newTestDispatcher(nil)

	opts := Options{Options: tracker.DefaultOptions()}
	opts.Directory = t.TempDir()
	f := d.Start(testContext(t), win, "https://example.com/a.pdf", opts)
	d.Start(testContext(t), win, "https://example.com/b.pdf", opts)

	select {
	case <-f.Done():
		t.Fatal("future resolved before the transfer ended")
	default:
	}
	// Requests in one session share a tracker.
	if win.session.listeners != 1 {
		t.Errorf("listeners = %d, want 1", win.session.listeners)
	}
	if len(win.requested) != 2 || win.requested[0] != "https://example.com/a.pdf" {
		t.Errorf("requested = %v", win.requested)
	}
}

func newHostWindow(t *testing.T) (*host.Runtime, *host.Window) {
	t.Helper()
	rt := host.NewRuntime(host.Options{DownloadsDir: t.TempDir(), Logger: quietLogger()})
	t.Cleanup(rt.Shutdown)
	return rt, rt.NewWindow("main")
}

func TestDispatcher_RemoteCompleted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "payload")
	}))
	defer srv.Close()

	_, win := newHostWindow(t)
	dir := t.TempDir()
	chosen := filepath.Join(dir, "chosen.bin")
	d := newTestDispatcher(&fakeDialog{path: chosen, ok: true})

	opts := Options{Options: tracker.DefaultOptions()}
	opts.Directory = dir
	res, err := d.Download(testContext(t), win, srv.URL+"/file.bin", opts)
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	if res.Status != StatusCompleted || res.Path != chosen {
		t.Errorf("got %v at %q, want completed at %q", res.Status, res.Path, chosen)
	}
	data, _ := os.ReadFile(chosen)
	if string(data) != "payload" {
		t.Errorf("saved %q, want payload", data)
	}
	if win.ProgressBar() != tracker.Idle {
		t.Errorf("ProgressBar() = %v, want Idle", win.ProgressBar())
	}
}

func TestDispatcher_RemoteInterrupted(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, win := newHostWindow(t)
	d := newTestDispatcher(nil)

	opts := Options{Options: tracker.DefaultOptions()}
	opts.Directory = t.TempDir()
	opts.ErrorMessage = "lost {filename}"
	res, err := d.Download(testContext(t), win, srv.URL+"/x.zip", opts)

	var ierr *InterruptedError
	if !errors.As(err, &ierr) {
		t.Fatalf("err = %v, want *InterruptedError", err)
	}
	if ierr.Message != "lost x.zip" {
		t.Errorf("Message = %q, want %q", ierr.Message, "lost x.zip")
	}
	if res.Status != StatusInterrupted {
		t.Errorf("Status = %v, want interrupted", res.Status)
	}
}

func TestDispatcher_RemoteCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "100000")
		w.Write(make([]byte, 512))
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	}))
	defer srv.Close()

	_, win := newHostWindow(t)
	d := newTestDispatcher(nil)

	opts := Options{Options: tracker.DefaultOptions()}
	opts.Directory = t.TempDir()
	var id string
	opts.OnStarted = func(item tracker.Item) { id = item.ID() }
	opts.OnProgress = func(float64) { win.HostSession().Cancel(id) }

	res, err := d.Download(testContext(t), win, srv.URL+"/slow.iso", opts)
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	if res.Status != StatusCancelled {
		t.Errorf("Status = %v, want cancelled", res.Status)
	}
}

func TestDispatcher_RemoteResolvesEachRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, r.URL.Path)
	}))
	defer srv.Close()

	_, win := newHostWindow(t)
	d := newTestDispatcher(nil)
	ctx := testContext(t)

	dir := t.TempDir()
	opts := Options{Options: tracker.DefaultOptions()}
	opts.Directory = dir
	fa := d.Start(ctx, win, srv.URL+"/a.txt", opts)
	fb := d.Start(ctx, win, srv.URL+"/b.txt", opts)

	ra, errA := fa.Wait(ctx)
	rb, errB := fb.Wait(ctx)
	if errA != nil || errB != nil {
		t.Fatalf("errors = %v, %v", errA, errB)
	}
	if ra.Path != filepath.Join(dir, "a.txt") || rb.Path != filepath.Join(dir, "b.txt") {
		t.Errorf("paths = %q, %q", ra.Path, rb.Path)
	}
	if ra.Item.ID() == rb.Item.ID() {
		t.Error("each request should resolve with its own item")
	}
}

type recordingIndicator struct {
	mu     sync.Mutex
	counts []int
}

func (i *recordingIndicator) SetBadgeCount(n int) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.counts = append(i.counts, n)
}

func (i *recordingIndicator) snapshot() []int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return append([]int(nil), i.counts...)
}

func TestDispatcher_RemoteOverlappingRequestsAggregate(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/fast.bin" {
			io.WriteString(w, "0123456789")
			return
		}
		w.Header().Set("Content-Length", "100")
		w.Write(make([]byte, 50))
		w.(http.Flusher).Flush()
		select {
		case <-release:
			w.Write(make([]byte, 50))
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	var once sync.Once
	releaseSlow := func() { once.Do(func() { close(release) }) }
	defer releaseSlow()

	_, win := newHostWindow(t)
	var (
		mu   sync.Mutex
		bars []float64
	)
	win.OnProgressBar = func(ratio float64) {
		mu.Lock()
		bars = append(bars, ratio)
		mu.Unlock()
	}
	idleWrites := func() (n int, last bool) {
		mu.Lock()
		defer mu.Unlock()
		for _, r := range bars {
			if r == tracker.Idle {
				n++
			}
		}
		return n, len(bars) > 0 && bars[len(bars)-1] == tracker.Idle
	}

	badge := &recordingIndicator{}
	d := NewDispatcher(nil, badge, nil, quietLogger())
	d.Platform = "linux"
	t.Cleanup(d.Close)
	ctx := testContext(t)

	started := make(chan struct{}, 1)
	slowOpts := Options{Options: tracker.DefaultOptions()}
	slowOpts.Directory = t.TempDir()
	slowOpts.OnStarted = func(tracker.Item) { started <- struct{}{} }
	slow := d.Start(ctx, win, srv.URL+"/slow.bin", slowOpts)
	select {
	case <-started:
	case <-ctx.Done():
		t.Fatal("slow transfer never started")
	}

	fastOpts := Options{Options: tracker.DefaultOptions()}
	fastOpts.Directory = t.TempDir()
	res, err := d.Download(ctx, win, srv.URL+"/fast.bin", fastOpts)
	if err != nil || res.Status != StatusCompleted {
		t.Fatalf("fast Download() = %v, %v", res.Status, err)
	}

	counts := badge.snapshot()
	if !slices.Contains(counts, 2) || counts[len(counts)-1] != 1 {
		t.Errorf("badge counts while slow is active = %v, want a 2 and last 1", counts)
	}
	if n, _ := idleWrites(); n != 0 {
		t.Errorf("progress bar cleared %d times while a transfer is active", n)
	}

	releaseSlow()
	res, err = slow.Wait(ctx)
	if err != nil || res.Status != StatusCompleted {
		t.Fatalf("slow Wait() = %v, %v", res.Status, err)
	}

	counts = badge.snapshot()
	if counts[len(counts)-1] != 0 {
		t.Errorf("badge counts = %v, want last 0", counts)
	}
	if n, last := idleWrites(); n != 1 || !last {
		t.Errorf("Idle written %d times (last %v), want once at the end", n, last)
	}
}

func TestDispatcher_LocalCopied(t *testing.T) {
	src := filepath.Join(t.TempDir(), "photo.png")
	if err := os.WriteFile(src, []byte("png-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	d := newTestDispatcher(nil)

	opts := Options{Filename: "holiday"}
	opts.Directory = dir
	res, err := d.Download(testContext(t), &fakeWindow{session: &fakeSession{}}, "file://"+src, opts)
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	want := filepath.Join(dir, "holiday.png")
	if res.Status != StatusCopied || res.Path != want || res.Bytes != 9 {
		t.Errorf("got %+v, want copied to %q with 9 bytes", res, want)
	}
	if data, _ := os.ReadFile(want); string(data) != "png-bytes" {
		t.Errorf("copied %q", data)
	}
}

func TestDispatcher_LocalUnreadable(t *testing.T) {
	d := newTestDispatcher(&fakeDialog{ok: true, path: "/unused"})
	res, err := d.Download(testContext(t), nil, filepath.Join(t.TempDir(), "missing.png"), Options{})
	if err != nil || res.Status != StatusAborted {
		t.Errorf("got %v, %v, want aborted with nil error", res.Status, err)
	}
}

func TestDispatcher_LocalDialogCancelled(t *testing.T) {
	src := filepath.Join(t.TempDir(), "a.txt")
	os.WriteFile(src, []byte("a"), 0o644)

	d := newTestDispatcher(&fakeDialog{ok: false})
	res, err := d.Download(testContext(t), nil, src, Options{})
	if err != nil || res.Status != StatusAborted {
		t.Errorf("got %v, %v, want aborted with nil error", res.Status, err)
	}
}

func TestDispatcher_LocalCopyFailed(t *testing.T) {
	src := filepath.Join(t.TempDir(), "a.txt")
	os.WriteFile(src, []byte("a"), 0o644)

	// A regular file where the destination directory should be.
	blocker := filepath.Join(t.TempDir(), "blocker")
	os.WriteFile(blocker, nil, 0o644)

	d := newTestDispatcher(&fakeDialog{ok: true, path: filepath.Join(blocker, "out.txt")})
	res, err := d.Download(testContext(t), nil, src, Options{})
	if err != nil {
		t.Fatalf("copy failures should not surface as errors, got %v", err)
	}
	if res.Status != StatusCopyFailed || res.Err == nil {
		t.Errorf("got %v (Err %v), want copy failed with a cause", res.Status, res.Err)
	}
}

func TestResolveLocalPath(t *testing.T) {
	tests := []struct {
		ref  string
		goos string
		want string
	}{
		{"file:///home/me/a%20b.png", "linux", "/home/me/a b.png"},
		{"file:///Users/me/a.png", "darwin", "/Users/me/a.png"},
		{"file:///C:/Users/me/a.png", "windows", "C:/Users/me/a.png"},
		{"/srv/data/x.bin", "linux", "/srv/data/x.bin"},
		{"/srv/data/100%25.txt", "linux", "/srv/data/100%.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			if got := ResolveLocalPath(tt.ref, tt.goos); got != tt.want {
				t.Errorf("ResolveLocalPath(%q, %q) = %q, want %q", tt.ref, tt.goos, got, tt.want)
			}
		})
	}
}

func TestLocalFilename(t *testing.T) {
	tests := []struct {
		src  string
		base string
		want string
	}{
		{"/a/photo.jpg", "", "photo.jpg"},
		{"/a/photo.jpg", "renamed", "renamed.jpg"},
		{"/a/archive.tar.gz", "", "archive.tar.gz"},
		{"/a/missing", "", "missing"},
	}

	for _, tt := range tests {
		t.Run(tt.src+"/"+tt.base, func(t *testing.T) {
			if got := localFilename(tt.src, tt.base); got != tt.want {
				t.Errorf("localFilename(%q, %q) = %q, want %q", tt.src, tt.base, got, tt.want)
			}
		})
	}
}

func TestFuture_ResolveOnce(t *testing.T) {
	f := newFuture()
	f.resolve(Result{Status: StatusCopied}, nil)
	f.resolve(Result{Status: StatusAborted}, errors.New("late"))

	res, err := f.Wait(context.Background())
	if res.Status != StatusCopied || err != nil {
		t.Errorf("got %v, %v, want the first result", res.Status, err)
	}
}

func TestFuture_WaitContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newFuture().Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestStatus_String(t *testing.T) {
	if StatusCopyFailed.String() != "copy failed" || Status(99).String() != "unknown" {
		t.Error("unexpected Status names")
	}
}
