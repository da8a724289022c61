package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	ioutils "github.com/handiism/webdl/internal/io"
	"github.com/vincent-petithory/dataurl"
)

// Options configures a Client.
type Options struct {
	// UserAgent is sent with every request.
	// Default: "webdl"
	UserAgent string

	// Timeout bounds the wait for response headers. The body itself is
	// not time limited, large files may take as long as they need.
	// Default: 60s
	Timeout time.Duration
}

// Client opens remote references for the host runtime.
//
// Client provides:
//   - http and https GET with a configured User-Agent
//   - in-memory decoding of data: URIs
//   - streaming of a transfer to disk with progress callbacks
//
// Example usage:
//
//	client := NewClient(Options{})
//
//	t, err := client.Open(ctx, "https://example.com/report.pdf")
//	if err != nil {
//	    return err
//	}
//	err = client.Save(ctx, t, "/tmp/report.pdf", func(written, total int64) {
//	    fmt.Printf("%d / %d\n", written, total)
//	})
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// NewClient creates a new Client.
func NewClient(opts Options) *Client {
	if opts.UserAgent == "" {
		opts.UserAgent = "webdl"
	}
	if opts.Timeout == 0 {
		opts.Timeout = 60 * time.Second
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = opts.Timeout

	return &Client{
		httpClient: &http.Client{Transport: transport},
		userAgent:  opts.UserAgent,
	}
}

// Transfer is an opened reference whose body has not been read yet.
type Transfer struct {
	// Body is the content. Save closes it.
	Body io.ReadCloser

	// ContentLength is the declared size, -1 when unknown.
	ContentLength int64

	// Filename is the name suggested by the server
	// (Content-Disposition), empty if none.
	Filename string

	// MediaType is the content type without parameters.
	MediaType string
}

// ProgressWriter wraps a writer to track download progress.
//
// Example:
//
//	pw := &ProgressWriter{
//	    Writer: file,
//	    Total:  contentLength,
//	    OnUpdate: func(written, total int64) {
//	        fmt.Printf("%d / %d bytes\n", written, total)
//	    },
//	}
//	io.Copy(pw, response.Body)
type ProgressWriter struct {
	// Writer is the underlying writer to write data to.
	Writer io.Writer

	// Total is the expected total bytes, -1 when unknown.
	Total int64

	// Written is the current number of bytes written.
	Written int64

	// OnUpdate is called after each Write with (bytesWritten, totalExpected).
	OnUpdate func(written, total int64)
}

// Write implements io.Writer, tracking progress and calling OnUpdate.
func (pw *ProgressWriter) Write(p []byte) (int, error) {
	n, err := pw.Writer.Write(p)
	pw.Written += int64(n)
	if pw.OnUpdate != nil && n > 0 {
		pw.OnUpdate(pw.Written, pw.Total)
	}
	return n, err
}

// IsRemote reports whether ref is fetched through Open rather than
// copied from the local file system.
func IsRemote(ref string) bool {
	return strings.HasPrefix(ref, "http://") ||
		strings.HasPrefix(ref, "https://") ||
		strings.HasPrefix(ref, "data:")
}

// Open starts fetching ref.
//
// Returns an error if:
//   - the reference is neither http(s) nor a data: URI
//   - the request fails or the status is not 200 OK
//   - the data: URI is malformed
func (c *Client) Open(ctx context.Context, ref string) (*Transfer, error) {
	switch {
	case strings.HasPrefix(ref, "data:"):
		return openDataURI(ref)
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return c.openHTTP(ctx, ref)
	default:
		return nil, fmt.Errorf("unsupported reference %q", ref)
	}
}

func (c *Client) openHTTP(ctx context.Context, url string) (*Transfer, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	t := &Transfer{
		Body:          resp.Body,
		ContentLength: resp.ContentLength,
	}
	if mediaType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type")); err == nil {
		t.MediaType = mediaType
	}
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		t.Filename = filepath.Base(params["filename"])
		if t.Filename == "." || t.Filename == string(filepath.Separator) {
			t.Filename = ""
		}
	}
	return t, nil
}

func openDataURI(ref string) (*Transfer, error) {
	du, err := dataurl.DecodeString(ref)
	if err != nil {
		return nil, fmt.Errorf("decode data URI: %w", err)
	}
	return &Transfer{
		Body:          io.NopCloser(bytes.NewReader(du.Data)),
		ContentLength: int64(len(du.Data)),
		MediaType:     du.MediaType.ContentType(),
	}, nil
}

// Save streams t to destPath and closes its body.
//
// The parent directory is created if needed and the file is truncated if
// it exists. A known ContentLength larger than the free space of the
// volume fails before anything is written. onProgress may be nil. Cancelling ctx stops the copy; the
// partial file is removed in that case and on any other error.
func (c *Client) Save(ctx context.Context, t *Transfer, destPath string, onProgress func(written, total int64)) error {
	defer t.Body.Close()

	dir := filepath.Dir(destPath)
	if err := ioutils.EnsureDir(dir); err != nil {
		return err
	}
	if err := ioutils.EnsureFreeSpace(dir, t.ContentLength); err != nil {
		return err
	}

	file, err := os.Create(destPath)
	if err != nil {
		return err
	}

	var writer io.Writer = file
	if onProgress != nil {
		writer = &ProgressWriter{
			Writer:   file,
			Total:    t.ContentLength,
			OnUpdate: onProgress,
		}
	}

	_, err = io.Copy(writer, ioutils.NewContextReader(ctx, t.Body))
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(destPath)
		return err
	}
	return nil
}
