package download

import (
	"context"
	"net/url"
	"path/filepath"
	"strings"

	ioutils "github.com/handiism/webdl/internal/io"
)

// ResolveLocalPath turns a file reference into a path on goos.
//
// The reference is URL-decoded and a leading file:/// is stripped. On
// windows the remainder already starts with a drive letter; elsewhere
// the root separator is put back. Plain paths pass through.
//
// Example:
//
//	ResolveLocalPath("file:///home/me/a%20b.png", "linux")     // "/home/me/a b.png"
//	ResolveLocalPath("file:///C:/Users/me/a.png", "windows")   // "C:/Users/me/a.png"
func ResolveLocalPath(ref, goos string) string {
	if decoded, err := url.PathUnescape(ref); err == nil {
		ref = decoded
	}
	rest, ok := strings.CutPrefix(ref, "file:///")
	if !ok {
		return ref
	}
	if goos == "windows" {
		return rest
	}
	return "/" + rest
}

// localFilename builds the destination name from the requested base name
// and the extension of src.
func localFilename(src, base string) string {
	ext := filepath.Ext(src)
	if ext == "" {
		ext = ioutils.DetectImageExt(src)
	}
	if base == "" {
		base = strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	}
	return ioutils.SanitizeFileName(base + ext)
}

func (d *Dispatcher) startLocal(ctx context.Context, win Window, ref string, opts Options) *Future {
	src := ResolveLocalPath(ref, d.platform())
	if !ioutils.Readable(src) {
		d.logger().Debug("download aborted", "path", src, "reason", "source not readable")
		return resolved(Result{Status: StatusAborted}, nil)
	}

	name := localFilename(src, opts.Filename)
	dst, ok := d.askSavePath(ctx, win, filepath.Join(d.directory(opts), name))
	if !ok {
		d.logger().Debug("download aborted", "path", src, "reason", "dialog cancelled")
		return resolved(Result{Status: StatusAborted}, nil)
	}

	f := newFuture()
	go func() {
		n, err := ioutils.CopyFile(ctx, src, dst)
		if err != nil {
			d.logger().Error("copy failed", "src", src, "dst", dst, "err", err)
			f.resolve(Result{Status: StatusCopyFailed, Path: dst, Bytes: n, Err: err}, nil)
			return
		}
		d.logger().Debug("copied", "src", src, "dst", dst, "bytes", n)
		f.resolve(Result{Status: StatusCopied, Path: dst, Bytes: n}, nil)
	}()
	return f
}
