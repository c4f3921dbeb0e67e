package imager

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherDoBlocksUntilExecuted(t *testing.T) {
	d := NewDispatcher()
	go d.Run()
	defer d.Close()

	executed := false
	d.Do(func() { executed = true })
	assert.True(t, executed)
}

func TestDispatcherSerializesTasks(t *testing.T) {
	d := NewDispatcher()
	go d.Run()
	defer d.Close()

	// The counter is unguarded on purpose: the designated goroutine is the
	// only one that touches it, so the race detector stays quiet.
	var counter int
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				d.Do(func() { counter++ })
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 800, counter)
}

func TestDispatcherCloseStopsRun(t *testing.T) {
	d := NewDispatcher()
	stopped := make(chan struct{})
	go func() {
		d.Run()
		close(stopped)
	}()

	d.Do(func() {})
	d.Close()
	<-stopped
}

func TestCreatorStartOn(t *testing.T) {
	d := NewDispatcher()
	go d.Run()
	defer d.Close()

	path := filepath.Join(t.TempDir(), "disk.img")
	c := NewCreator(discardLogger(), nil, fastOptions()...)

	err := c.StartOn(d, Request{Path: path, SizeBytes: 1_500_000})
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(1_500_000), info.Size())
}
