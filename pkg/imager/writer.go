package imager

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/Rudd3r/hddimg/pkg/domain"
)

const (
	// MiB is the unit of progress reporting and cancellation checks, coarser
	// than the underlying write chunk for efficiency.
	MiB = 1024 * 1024

	chunkSize    = 4 * 1024
	chunksPerMiB = MiB / chunkSize
)

// writer owns the target file exclusively while it runs. It publishes
// whole-mebibyte progress into the shared state and observes the canceled
// flag at mebibyte boundaries. Every failure is terminal for the run: the
// partial file is deleted, errored is set and the typed reason returned.
type writer struct {
	state          *progressState
	log            *slog.Logger
	reportInterval time.Duration

	// write performs file writes; nil means (*os.File).Write. Tests swap
	// it to inject write failures.
	write func(f *os.File, p []byte) (int, error)
}

func (w *writer) fileWrite(f *os.File, p []byte) (int, error) {
	if w.write != nil {
		return w.write(f, p)
	}
	return f.Write(p)
}

func (w *writer) run(path string, sizeBytes int64) error {
	var buf [chunkSize]byte

	if _, err := os.Lstat(path); err == nil {
		return w.fail(fmt.Errorf("%w: %s", domain.ErrImageExists, path))
	} else if !os.IsNotExist(err) {
		return w.fail(fmt.Errorf("%w: %s: %v", domain.ErrCannotCreate, path, err))
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0644)
	if err != nil {
		if os.IsExist(err) {
			// Lost a race with another creator of the same path.
			return w.fail(fmt.Errorf("%w: %s", domain.ErrImageExists, path))
		}
		return w.fail(fmt.Errorf("%w: %s: %v", domain.ErrCannotCreate, path, err))
	}

	// Best effort only; the seek+write below is what sizes the file.
	if err := reserve(f, sizeBytes); err != nil {
		w.log.Debug("block reservation unavailable", "path", path, "error", err)
	}

	// Force the filesystem to allocate the full extent by writing a single
	// zero byte at the final offset.
	if _, err = f.Seek(sizeBytes-1, io.SeekStart); err != nil {
		return w.fail(w.cleanup(f, path, err))
	}
	if _, err = w.fileWrite(f, buf[:1]); err != nil {
		return w.fail(w.cleanup(f, path, err))
	}
	if _, err = f.Seek(0, io.SeekStart); err != nil {
		return w.fail(w.cleanup(f, path, err))
	}

	reqMiB := (sizeBytes + MiB - 1) / MiB
	lastReport := time.Now()

	for i := int64(0); i < reqMiB; i++ {
		whole := min(int64(chunksPerMiB), sizeBytes/chunkSize-i*chunksPerMiB)
		for j := int64(0); j < whole; j++ {
			if _, err = w.fileWrite(f, buf[:]); err != nil {
				return w.fail(w.cleanup(f, path, err))
			}
		}
		if whole != chunksPerMiB {
			// Partial final mebibyte: write the true byte remainder, not a
			// chunk-rounded count, so the file ends at exactly sizeBytes.
			remaining := sizeBytes - (i*MiB + whole*chunkSize)
			if _, err = w.fileWrite(f, buf[:remaining]); err != nil {
				return w.fail(w.cleanup(f, path, err))
			}
		}

		if time.Since(lastReport) >= w.reportInterval || i+1 == reqMiB {
			lastReport = time.Now()
			w.state.written.Store(i + 1)
		}
		if w.state.canceled.Load() {
			_ = f.Close()
			_ = os.Remove(path)
			return w.fail(fmt.Errorf("%w: %s", domain.ErrCanceled, path))
		}
	}

	if err = f.Sync(); err != nil {
		return w.fail(w.cleanup(f, path, err))
	}
	if err = f.Close(); err != nil {
		_ = os.Remove(path)
		return w.fail(fmt.Errorf("%w: %s: %v", domain.ErrWriteFailed, path, err))
	}
	return nil
}

// cleanup closes and removes a partially written file. Only files this run
// itself created are ever removed; deletion failure is not reported.
func (w *writer) cleanup(f *os.File, path string, cause error) error {
	_ = f.Close()
	_ = os.Remove(path)
	return fmt.Errorf("%w: %s: %v", domain.ErrWriteFailed, path, cause)
}

func (w *writer) fail(err error) error {
	w.state.errored.Store(true)
	return err
}
