package imager

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/Rudd3r/hddimg/pkg/domain"
)

const verifyBufSize = 64 * 1024

// Verify checks that the image at path has exactly sizeBytes bytes and that
// every byte is zero, scanning disjoint ranges across workers goroutines.
// A non-zero byte is reported with its offset, wrapped in
// domain.ErrWriteFailed.
func Verify(ctx context.Context, path string, sizeBytes int64, workers int) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrCannotCreate, path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrCannotCreate, path, err)
	}
	if info.Size() != sizeBytes {
		return fmt.Errorf("%w: %s: size is %d, want %d",
			domain.ErrWriteFailed, path, info.Size(), sizeBytes)
	}

	if workers < 1 {
		workers = 1
	}
	span := (sizeBytes + int64(workers) - 1) / int64(workers)

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		start := int64(w) * span
		if start >= sizeBytes {
			break
		}
		end := min(start+span, sizeBytes)
		g.Go(func() error {
			return scanZero(ctx, f, path, start, end)
		})
	}
	return g.Wait()
}

var zeroBuf [verifyBufSize]byte

// scanZero reads [start, end) and fails on the first non-zero byte.
func scanZero(ctx context.Context, f *os.File, path string, start, end int64) error {
	var buf [verifyBufSize]byte
	for off := start; off < end; {
		if err := ctx.Err(); err != nil {
			return err
		}
		n := min(int64(verifyBufSize), end-off)
		read, err := f.ReadAt(buf[:n], off)
		if err != nil && err != io.EOF {
			return fmt.Errorf("%w: %s: read at %d: %v", domain.ErrWriteFailed, path, off, err)
		}
		if int64(read) != n {
			return fmt.Errorf("%w: %s: short read at %d", domain.ErrWriteFailed, path, off)
		}
		if !bytes.Equal(buf[:n], zeroBuf[:n]) {
			i := bytes.IndexFunc(buf[:n], func(r rune) bool { return r != 0 })
			return fmt.Errorf("%w: %s: non-zero byte at offset %d",
				domain.ErrWriteFailed, path, off+int64(i))
		}
		off += n
	}
	return nil
}
