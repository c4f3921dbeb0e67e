//go:build !linux && !darwin

package imager

import (
	"errors"
	"os"
)

// reserve has no portable equivalent on this platform; the zero-fill pass
// allocates as it writes.
func reserve(_ *os.File, _ int64) error {
	return errors.ErrUnsupported
}
