package model

import (
	"mime"
	"net/url"
	"path"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// DefaultFilename is used when no name can be derived from a reference.
const DefaultFilename = "download"

// Item is a single transfer owned by the host runtime.
//
// The host creates an Item when a transfer begins, updates ReceivedBytes on
// every chunk and finishes it exactly once. Trackers only hold a reference
// to it for the duration of the transfer.
//
// Item is safe for concurrent use: the host writes from its transfer
// goroutine while trackers and UIs read.
//
// Example:
//
//	item := NewItem("https://example.com/report.pdf", "", 1024)
//	item.SetSavePath("/home/me/Downloads/report.pdf")
//	item.AddReceivedBytes(512)
//	item.Finish(OutcomeCompleted)
type Item struct {
	id       string
	tag      string
	url      string
	filename string

	mu            sync.RWMutex
	totalBytes    int64
	receivedBytes int64
	savePath      string
	pathFixed     bool
	outcome       Outcome
	finished      bool
}

// NewItem creates an Item with a fresh identity.
//
// Parameters:
//   - rawURL: the reference being downloaded
//   - tag: the tag of the request that started the transfer (may be empty)
//   - totalBytes: the declared size, 0 when unknown
func NewItem(rawURL, tag string, totalBytes int64) *Item {
	if totalBytes < 0 {
		totalBytes = 0
	}
	return &Item{
		id:         uuid.NewString(),
		tag:        tag,
		url:        rawURL,
		filename:   FilenameFromURL(rawURL),
		totalBytes: totalBytes,
	}
}

// ID returns the opaque handle of this transfer.
func (i *Item) ID() string { return i.id }

// Tag returns the request tag the transfer was started with.
func (i *Item) Tag() string { return i.tag }

// URL returns the reference being downloaded.
func (i *Item) URL() string { return i.url }

// Filename returns the display name derived from the URL.
func (i *Item) Filename() string { return i.filename }

// SetFilename overrides the derived display name, e.g. from a
// Content-Disposition header.
func (i *Item) SetFilename(name string) {
	if name != "" {
		i.filename = name
	}
}

// TotalBytes returns the declared size, 0 when unknown.
func (i *Item) TotalBytes() int64 {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.totalBytes
}

// ReceivedBytes returns the bytes received so far.
func (i *Item) ReceivedBytes() int64 {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.receivedBytes
}

// AddReceivedBytes records n more received bytes.
// Negative values are ignored so the counter never decreases.
func (i *Item) AddReceivedBytes(n int64) {
	if n <= 0 {
		return
	}
	i.mu.Lock()
	i.receivedBytes += n
	i.mu.Unlock()
}

// SavePath returns the destination path.
func (i *Item) SavePath() string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.savePath
}

// SetSavePath sets the destination. It has no effect once FixSavePath
// has been called.
func (i *Item) SetSavePath(p string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.pathFixed {
		return
	}
	i.savePath = p
}

// FixSavePath freezes the destination. Hosts call it once the transfer
// starts writing.
func (i *Item) FixSavePath() {
	i.mu.Lock()
	i.pathFixed = true
	i.mu.Unlock()
}

// Finish assigns the terminal outcome. It reports false if the item
// already had one, in which case the outcome is left unchanged.
func (i *Item) Finish(o Outcome) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.finished {
		return false
	}
	i.outcome = o
	i.finished = true
	return true
}

// Outcome returns the terminal outcome and whether one has been assigned.
func (i *Item) Outcome() (Outcome, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.outcome, i.finished
}

// FilenameFromURL derives a display filename from a reference.
//
// The trailing path segment is used for http(s) and file references,
// without query or fragment. data: URIs have no path, so they become
// "download" plus an extension guessed from the media type.
//
// Example:
//
//	FilenameFromURL("https://example.com/a/report.pdf?x=1") // "report.pdf"
//	FilenameFromURL("data:image/png;base64,iVBO...")       // "download.png"
func FilenameFromURL(ref string) string {
	if strings.HasPrefix(ref, "data:") {
		return DefaultFilename + dataURIExt(ref)
	}

	u, err := url.Parse(ref)
	if err != nil {
		name := ref[strings.LastIndex(ref, "/")+1:]
		if name == "" {
			return DefaultFilename
		}
		return name
	}

	name := path.Base(u.Path)
	if name == "/" || name == "." {
		return DefaultFilename
	}
	return name
}

func dataURIExt(ref string) string {
	meta, _, ok := strings.Cut(strings.TrimPrefix(ref, "data:"), ",")
	if !ok {
		return ""
	}
	mediaType, _, _ := strings.Cut(meta, ";")
	if mediaType == "" {
		return ".txt"
	}
	exts, err := mime.ExtensionsByType(mediaType)
	if err != nil || len(exts) == 0 {
		return ""
	}
	// Prefer the conventional extension where the mime table lists several.
	for _, ext := range exts {
		switch ext {
		case ".jpg", ".png", ".gif", ".txt", ".html", ".svg", ".pdf", ".json":
			return ext
		}
	}
	return exts[0]
}
