package download

import (
	"context"
	"sync"

	"github.com/handiism/webdl/internal/tracker"
)

// Status is how a dispatched request ended.
type Status int

const (
	// StatusCompleted means the remote transfer finished; Item is set.
	StatusCompleted Status = iota

	// StatusCancelled means the host cancelled the remote transfer.
	StatusCancelled

	// StatusInterrupted means the remote transfer failed. The error
	// returned alongside is an *InterruptedError.
	StatusInterrupted

	// StatusAborted means nothing happened: the save dialog was cancelled
	// or the local source was unreadable.
	StatusAborted

	// StatusCopied means a local file was copied to Path.
	StatusCopied

	// StatusCopyFailed means a local copy failed. Err holds the cause;
	// it is logged but not returned as an error.
	StatusCopyFailed
)

// String returns a short lowercase name.
func (s Status) String() string {
	switch s {
	case StatusCompleted:
		return "completed"
	case StatusCancelled:
		return "cancelled"
	case StatusInterrupted:
		return "interrupted"
	case StatusAborted:
		return "aborted"
	case StatusCopied:
		return "copied"
	case StatusCopyFailed:
		return "copy failed"
	default:
		return "unknown"
	}
}

// Result describes the end of a dispatched request.
type Result struct {
	Status Status

	// Item is the tracked transfer for remote requests.
	Item tracker.Item

	// Path is the destination that was written (or attempted).
	Path string

	// Bytes is the number of bytes copied by the local path.
	Bytes int64

	// Err is the swallowed cause of StatusCopyFailed.
	Err error
}

// InterruptedError is returned when the host interrupts a transfer.
type InterruptedError = tracker.InterruptedError

// Future resolves once with the result of a dispatched request.
type Future struct {
	done chan struct{}
	once sync.Once
	res  Result
	err  error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

func resolved(res Result, err error) *Future {
	f := newFuture()
	f.resolve(res, err)
	return f
}

// resolve sets the outcome. Later calls are ignored.
func (f *Future) resolve(res Result, err error) {
	f.once.Do(func() {
		f.res = res
		f.err = err
		close(f.done)
	})
}

// Done is closed once the result is available.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the result is available or ctx is done.
func (f *Future) Wait(ctx context.Context) (Result, error) {
	select {
	case <-f.done:
		return f.res, f.err
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}
