//go:build linux

package imager

import (
	"os"

	"golang.org/x/sys/unix"
)

// reserve asks the filesystem to back the file with real blocks up front so
// the zero-fill pass cannot run out of space halfway through. KEEP_SIZE
// leaves the file length at zero; the write path still sizes the file.
func reserve(f *os.File, size int64) error {
	return unix.Fallocate(int(f.Fd()), unix.FALLOC_FL_KEEP_SIZE, 0, size)
}
