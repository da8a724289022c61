// Package ioutils provides file system utilities for webdl.
//
// This package contains functions for:
//   - File copying
//   - Filename sanitization
//   - Directory creation
//   - Image format detection
//
// Functions that accept a context.Context stop copying once it is done.
package ioutils

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	invalidChars  = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	trailingDots  = regexp.MustCompile(`\.+$`)
	repeatedSpace = regexp.MustCompile(`\s+`)
)

// CopyFile copies a file from source to destination.
//
// The destination file is created with mode 0644 if it doesn't exist,
// or truncated if it does. Its parent directory is created as needed.
// The source file must exist and be readable.
//
// Parameters:
//   - ctx: Context for cancellation, checked between reads
//   - src: Source file path (must exist)
//   - dst: Destination file path (will be created/overwritten)
//
// Returns the number of bytes copied and an error if:
//   - Source file cannot be opened
//   - Destination file cannot be created
//   - Copy operation fails or ctx is done
//
// Example:
//
//	n, err := CopyFile(ctx, "/path/to/source.png", "/path/to/dest.png")
func CopyFile(ctx context.Context, src, dst string) (int64, error) {
	sourceFile, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer sourceFile.Close()

	if err := EnsureDir(filepath.Dir(dst)); err != nil {
		return 0, err
	}

	destFile, err := os.Create(dst)
	if err != nil {
		return 0, err
	}

	n, err := io.Copy(destFile, NewContextReader(ctx, sourceFile))
	if cerr := destFile.Close(); err == nil {
		err = cerr
	}
	return n, err
}

// Readable reports whether path names a regular file that can be opened
// for reading.
func Readable(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	info, err := f.Stat()
	return err == nil && info.Mode().IsRegular()
}

// NewContextReader returns a reader that fails with ctx.Err() once ctx is
// done. The check happens before every Read.
func NewContextReader(ctx context.Context, r io.Reader) io.Reader {
	return &contextReader{ctx: ctx, r: r}
}

type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (cr *contextReader) Read(p []byte) (int, error) {
	if err := cr.ctx.Err(); err != nil {
		return 0, err
	}
	return cr.r.Read(p)
}

// SanitizeFileName removes or replaces characters that are invalid in file/folder names.
//
// This function ensures filenames are valid across different operating systems,
// particularly Windows which has the most restrictive naming rules.
//
// The following transformations are applied:
//   - Invalid characters (<>:"/\|?* and control chars 0x00-0x1f) → underscore
//   - Trailing dots → removed (Windows limitation)
//   - Multiple whitespace → single space
//   - Trailing whitespace → removed
//
// Example:
//
//	SanitizeFileName("Report: Q1/Q2.pdf") // Returns "Report_ Q1_Q2.pdf"
//	SanitizeFileName("notes...")          // Returns "notes"
func SanitizeFileName(name string) string {
	name = invalidChars.ReplaceAllString(name, "_")
	name = trailingDots.ReplaceAllString(name, "")
	name = repeatedSpace.ReplaceAllString(name, " ")
	return strings.TrimRight(name, " ")
}

// EnsureDir creates a directory and all parent directories if they don't exist.
//
// Directories are created with mode 0755 (rwxr-xr-x).
// If the directory already exists, no error is returned.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}
