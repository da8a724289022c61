package host

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"time"

	ioutils "github.com/handiism/webdl/internal/io"
	"github.com/handiism/webdl/internal/model"
	"github.com/handiism/webdl/internal/tracker"
)

// Session is a browsing context. It implements tracker.Session.
//
// Signals of one session are delivered serially, never concurrently with
// each other, even when several transfers run at once.
type Session struct {
	runtime   *Runtime
	partition string

	lmu       sync.Mutex
	next      int
	listeners map[int]tracker.StartFunc

	// emu serializes signal delivery.
	emu sync.Mutex

	cmu     sync.Mutex
	cancels map[string]context.CancelFunc
}

func newSession(r *Runtime, partition string) *Session {
	return &Session{
		runtime:   r,
		partition: partition,
		listeners: make(map[int]tracker.StartFunc),
		cancels:   make(map[string]context.CancelFunc),
	}
}

// Partition returns the name the session was created with.
func (s *Session) Partition() string {
	return s.partition
}

// OnWillDownload registers fn for new transfers. The returned function
// removes it and may be called from inside a signal handler.
func (s *Session) OnWillDownload(fn tracker.StartFunc) func() {
	s.lmu.Lock()
	defer s.lmu.Unlock()

	id := s.next
	s.next++
	s.listeners[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			s.lmu.Lock()
			delete(s.listeners, id)
			s.lmu.Unlock()
		})
	}
}

// Cancel cancels the in-flight transfer with the given item ID. It
// reports false if no such transfer is running.
func (s *Session) Cancel(id string) bool {
	s.cmu.Lock()
	cancel, ok := s.cancels[id]
	s.cmu.Unlock()
	if ok {
		cancel()
	}
	return ok
}

// download runs one transfer in the background.
func (s *Session) download(url, tag string, owner tracker.Surface) {
	r := s.runtime
	r.wg.Add(1)
	ctx, cancel := context.WithCancel(r.ctx)

	go func() {
		defer r.wg.Done()
		defer cancel()
		s.transfer(ctx, cancel, url, tag, owner)
	}()
}

func (s *Session) transfer(ctx context.Context, cancel context.CancelFunc, url, tag string, owner tracker.Surface) {
	r := s.runtime

	t, openErr := r.client.Open(ctx, url)

	var size int64
	if openErr == nil && t.ContentLength > 0 {
		size = t.ContentLength
	}
	item := model.NewItem(url, tag, size)
	if openErr == nil {
		item.SetFilename(ioutils.SanitizeFileName(t.Filename))
	}

	s.cmu.Lock()
	s.cancels[item.ID()] = cancel
	s.cmu.Unlock()
	defer func() {
		s.cmu.Lock()
		delete(s.cancels, item.ID())
		s.cmu.Unlock()
	}()

	handlers := s.emitStarted(item, owner)

	if item.SavePath() == "" {
		item.SetSavePath(filepath.Join(r.opts.DownloadsDir, ioutils.SanitizeFileName(item.Filename())))
	}
	item.FixSavePath()

	if openErr != nil {
		s.finish(ctx, item, handlers, openErr)
		return
	}

	var last time.Time
	var prev int64
	err := r.client.Save(ctx, t, item.SavePath(), func(written, total int64) {
		item.AddReceivedBytes(written - prev)
		prev = written
		if now := time.Now(); now.Sub(last) >= r.opts.ProgressInterval {
			last = now
			s.emitUpdated(handlers)
		}
	})
	if err == nil && r.opts.ProgressInterval > 0 {
		// Make sure the last tick reflects every byte.
		s.emitUpdated(handlers)
	}

	s.finish(ctx, item, handlers, err)
}

func (s *Session) finish(ctx context.Context, item *model.Item, handlers []tracker.ItemHandler, err error) {
	outcome := model.OutcomeCompleted
	switch {
	case err == nil:
	case ctx.Err() != nil || errors.Is(err, context.Canceled):
		outcome = model.OutcomeCancelled
	default:
		outcome = model.OutcomeInterrupted
		s.runtime.logger.Warn("transfer failed", "url", item.URL(), "err", err)
	}

	if !item.Finish(outcome) {
		return
	}
	s.emitDone(handlers, outcome)
}

func (s *Session) emitStarted(item *model.Item, owner tracker.Surface) []tracker.ItemHandler {
	s.lmu.Lock()
	fns := make([]tracker.StartFunc, 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.lmu.Unlock()

	s.emu.Lock()
	defer s.emu.Unlock()

	var handlers []tracker.ItemHandler
	for _, fn := range fns {
		if h := fn(item, owner); h != nil {
			handlers = append(handlers, h)
		}
	}
	return handlers
}

func (s *Session) emitUpdated(handlers []tracker.ItemHandler) {
	if len(handlers) == 0 {
		return
	}
	s.emu.Lock()
	defer s.emu.Unlock()
	for _, h := range handlers {
		h.Updated()
	}
}

func (s *Session) emitDone(handlers []tracker.ItemHandler, outcome model.Outcome) {
	if len(handlers) == 0 {
		return
	}
	s.emu.Lock()
	defer s.emu.Unlock()
	for _, h := range handlers {
		h.Done(outcome)
	}
}
