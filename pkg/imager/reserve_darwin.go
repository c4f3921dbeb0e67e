//go:build darwin

package imager

import (
	"os"

	"golang.org/x/sys/unix"
)

// reserve asks the filesystem to back the file with real blocks up front so
// the zero-fill pass cannot run out of space halfway through. F_PREALLOCATE
// reserves space without changing the file length.
func reserve(f *os.File, size int64) error {
	fst := unix.Fstore_t{
		Flags:   unix.F_ALLOCATEALL,
		Posmode: unix.F_PEOFPOSMODE,
		Offset:  0,
		Length:  size,
	}
	return unix.FcntlFstore(f.Fd(), unix.F_PREALLOCATE, &fst)
}
