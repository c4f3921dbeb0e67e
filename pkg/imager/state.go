package imager

import "sync/atomic"

// progressState is shared between one Creator and one worker for the
// duration of a single operation. Each field has exactly one writer:
// written and errored belong to the worker, canceled to the Creator.
// Readers must tolerate stale values; visibility is eventual.
type progressState struct {
	written  atomic.Int64
	errored  atomic.Bool
	canceled atomic.Bool
}
