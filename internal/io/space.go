package ioutils

import (
	"errors"
	"fmt"

	"github.com/shirou/gopsutil/v3/disk"
)

// ErrInsufficientSpace is returned by EnsureFreeSpace when the volume
// holding dir cannot fit the requested number of bytes.
var ErrInsufficientSpace = errors.New("insufficient disk space")

// EnsureFreeSpace checks that the volume of dir has at least need bytes
// free. need <= 0 always passes. If the volume cannot be queried the
// check passes and the write itself reports the problem.
func EnsureFreeSpace(dir string, need int64) error {
	if need <= 0 {
		return nil
	}
	usage, err := disk.Usage(dir)
	if err != nil {
		return nil
	}
	if usage.Free < uint64(need) {
		return fmt.Errorf("%w: need %d bytes, %d free in %s", ErrInsufficientSpace, need, usage.Free, dir)
	}
	return nil
}
