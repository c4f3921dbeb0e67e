package imager

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rudd3r/hddimg/pkg/domain"
	"github.com/Rudd3r/hddimg/pkg/progress"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fastOptions() []Option {
	return []Option{
		WithPollInterval(time.Millisecond),
		WithReportInterval(time.Millisecond),
	}
}

func TestCreatorSuccess(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disk.img")
	collector := progress.NewCollector()
	c := NewCreator(discardLogger(), collector.Reporter(), fastOptions()...)

	err := c.Start(Request{Path: path, SizeBytes: 1_500_000})
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(1_500_000), info.Size())

	events := collector.Events()
	require.NotEmpty(t, events)
	assert.Equal(t, progress.EventCreateStart, events[0].Type)
	assert.Equal(t, int64(2), events[0].TotalMiB)
	assert.Equal(t, progress.EventComplete, events[len(events)-1].Type)

	var last int64
	for _, e := range events {
		if e.Type != progress.EventProgress {
			continue
		}
		assert.GreaterOrEqual(t, e.WrittenMiB, last)
		assert.LessOrEqual(t, e.WrittenMiB, e.TotalMiB)
		last = e.WrittenMiB
	}
}

func TestCreatorWaitUnblocks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disk.img")
	c := NewCreator(discardLogger(), nil, fastOptions()...)

	waited := make(chan struct{})
	go func() {
		c.Wait()
		close(waited)
	}()

	require.NoError(t, c.Start(Request{Path: path, SizeBytes: MiB}))

	select {
	case <-waited:
	case <-time.After(5 * time.Second):
		t.Fatal("Wait did not unblock after Start completed")
	}
}

func TestCreatorCancel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disk.img")
	collector := progress.NewCollector()
	opts := append(fastOptions(), WithCancelRequested(func() bool { return true }))
	c := NewCreator(discardLogger(), collector.Reporter(), opts...)

	err := c.Start(Request{Path: path, SizeBytes: 64 * MiB})
	require.ErrorIs(t, err, domain.ErrCanceled)
	assert.NoFileExists(t, path)

	events := collector.Events()
	require.NotEmpty(t, events)
	assert.Equal(t, progress.EventCanceled, events[len(events)-1].Type)
}

func TestCreatorCancelMethod(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disk.img")
	c := NewCreator(discardLogger(), nil, fastOptions()...)
	c.Cancel()

	err := c.Start(Request{Path: path, SizeBytes: 64 * MiB})
	require.ErrorIs(t, err, domain.ErrCanceled)
	assert.NoFileExists(t, path)
}

func TestCreatorRejectsNonPositiveSize(t *testing.T) {
	for _, size := range []int64{0, -1} {
		path := filepath.Join(t.TempDir(), "disk.img")
		c := NewCreator(discardLogger(), nil, fastOptions()...)

		err := c.Start(Request{Path: path, SizeBytes: size})
		require.ErrorIs(t, err, domain.ErrCannotCreate)
		assert.NoFileExists(t, path)
	}
}

func TestCreatorSingleUse(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disk.img")
	c := NewCreator(discardLogger(), nil, fastOptions()...)

	require.NoError(t, c.Start(Request{Path: path, SizeBytes: MiB}))

	err := c.Start(Request{Path: path, SizeBytes: MiB})
	require.ErrorIs(t, err, domain.ErrInFlight)
}

func TestCreatorErrorEvent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "no", "such", "dir", "disk.img")
	collector := progress.NewCollector()
	c := NewCreator(discardLogger(), collector.Reporter(), fastOptions()...)

	err := c.Start(Request{Path: path, SizeBytes: MiB})
	require.ErrorIs(t, err, domain.ErrCannotCreate)

	events := collector.Events()
	require.NotEmpty(t, events)
	last := events[len(events)-1]
	assert.Equal(t, progress.EventError, last.Type)
	assert.ErrorIs(t, last.Err, domain.ErrCannotCreate)
}

func TestCreatorWaitAfterFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "no", "such", "dir", "disk.img")
	c := NewCreator(discardLogger(), nil, fastOptions()...)

	err := c.Start(Request{Path: path, SizeBytes: MiB})
	require.Error(t, err)

	waited := make(chan struct{})
	go func() {
		c.Wait()
		close(waited)
	}()
	select {
	case <-waited:
	case <-time.After(5 * time.Second):
		t.Fatal("Wait did not unblock after failed Start")
	}
}
