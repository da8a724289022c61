package ioutils

import (
	"image"
	_ "image/gif"  // GIF decoder registration
	_ "image/jpeg" // JPEG decoder registration
	_ "image/png"  // PNG decoder registration
	"os"

	_ "golang.org/x/image/bmp"  // BMP decoder registration
	_ "golang.org/x/image/tiff" // TIFF decoder registration
	_ "golang.org/x/image/webp" // WebP decoder registration
)

var imageExtensions = map[string]string{
	"jpeg": ".jpg",
	"png":  ".png",
	"gif":  ".gif",
	"bmp":  ".bmp",
	"tiff": ".tiff",
	"webp": ".webp",
}

// DetectImageExt sniffs the image format of the file at path and returns
// the matching extension, including the dot.
//
// Only the header is decoded. Returns "" if the file cannot be read or is
// not an image in a known format.
//
// Example:
//
//	// A PNG saved without extension by a browser cache
//	ext := DetectImageExt("/cache/f_00a1b2") // ".png"
func DetectImageExt(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	_, format, err := image.DecodeConfig(f)
	if err != nil {
		return ""
	}
	return imageExtensions[format]
}
