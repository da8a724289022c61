// Package ioutils provides file system helpers for the local copy path
// and the host runtime.
//
// # File Operations
//
//	// Copy a file, stopping when ctx is cancelled
//	n, err := ioutils.CopyFile(ctx, "/src/photo.png", "/dst/photo.png")
//
//	// Check that a local source can be read
//	ok := ioutils.Readable("/src/photo.png")
//
//	// Ensure directory exists
//	err := ioutils.EnsureDir("/path/to/new/directory")
//
// # Filename Sanitization
//
// Use SanitizeFileName to remove invalid characters from filenames:
//
//	safe := ioutils.SanitizeFileName("Q3: report/final") // Returns "Q3_ report_final"
//
// # Image Formats
//
// DetectImageExt sniffs JPEG, PNG, GIF, BMP, TIFF and WebP headers so that
// files without an extension can be saved under a meaningful name:
//
//	ext := ioutils.DetectImageExt("/cache/f_00a1b2") // ".webp"
//
// # Disk Space
//
// EnsureFreeSpace fails with ErrInsufficientSpace when a transfer of known
// size would not fit on the destination volume.
package ioutils
