package imager

import (
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/Rudd3r/hddimg/pkg/domain"
	"github.com/Rudd3r/hddimg/pkg/progress"
	"github.com/google/uuid"
)

const (
	defaultPollInterval   = 50 * time.Millisecond
	defaultReportInterval = 100 * time.Millisecond
)

// Request describes one image to create. It is never mutated after Start.
type Request struct {
	Path      string
	SizeBytes int64
}

// Creator orchestrates a single image creation: it launches the worker on
// its own goroutine, polls the shared progress state, relays cancellation
// requests, and unblocks waiters once the whole operation has finished.
// A Creator is single use; build a fresh one per operation.
type Creator struct {
	log      *slog.Logger
	reporter *progress.Reporter

	pollInterval    time.Duration
	reportInterval  time.Duration
	cancelRequested func() bool

	started   atomic.Bool
	cancelReq atomic.Bool
	completed *completion
}

// Option configures a Creator.
type Option func(*Creator)

// WithPollInterval overrides how often the Creator samples worker progress.
func WithPollInterval(d time.Duration) Option {
	return func(c *Creator) { c.pollInterval = d }
}

// WithReportInterval overrides the worker's minimum interval between
// progress publications.
func WithReportInterval(d time.Duration) Option {
	return func(c *Creator) { c.reportInterval = d }
}

// WithCancelRequested installs a hook sampled once per progress poll. When
// it returns true the operation is canceled, same as calling Cancel.
func WithCancelRequested(fn func() bool) Option {
	return func(c *Creator) { c.cancelRequested = fn }
}

func NewCreator(log *slog.Logger, reporter *progress.Reporter, opts ...Option) *Creator {
	if log == nil {
		log = slog.Default()
	}
	if reporter == nil {
		reporter = progress.NoOpReporter()
	}
	c := &Creator{
		log:            log,
		reporter:       reporter,
		pollInterval:   defaultPollInterval,
		reportInterval: defaultReportInterval,
		completed:      newCompletion(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start creates the image described by req and blocks until the worker has
// finished. It returns nil on success; on any failure or cancellation the
// target path does not exist afterwards and the typed reason is returned.
// Success is also observable through the reporter and through Wait.
func (c *Creator) Start(req Request) error {
	if !c.started.CompareAndSwap(false, true) {
		return domain.ErrInFlight
	}
	defer c.completed.set()

	if req.SizeBytes <= 0 {
		err := fmt.Errorf("%w: size must be positive, got %d", domain.ErrCannotCreate, req.SizeBytes)
		c.log.Error("image creation rejected", "path", req.Path, "error", err)
		return err
	}

	opID := uuid.New()
	reqMiB := (req.SizeBytes + MiB - 1) / MiB
	c.log.Debug("creating image",
		"op", opID,
		"path", req.Path,
		"size_bytes", req.SizeBytes,
		"total_mib", reqMiB)
	c.reporter.CreateStart(opID, req.Path, reqMiB)

	st := &progressState{}
	w := &writer{state: st, log: c.log, reportInterval: c.reportInterval}

	done := make(chan struct{})
	var writeErr error
	go func() {
		defer close(done)
		writeErr = w.run(req.Path, req.SizeBytes)
	}()

	for {
		written := st.written.Load()
		if st.errored.Load() || written == reqMiB {
			break
		}
		c.reporter.Progress(opID, req.Path, written, reqMiB)
		if c.cancelReq.Load() || (c.cancelRequested != nil && c.cancelRequested()) {
			// Advisory: the worker observes this at the next mebibyte
			// boundary, so the loop keeps polling until it terminates.
			st.canceled.Store(true)
		}
		time.Sleep(c.pollInterval)
	}

	<-done

	if writeErr != nil {
		if errors.Is(writeErr, domain.ErrCanceled) {
			c.reporter.Canceled(opID, req.Path)
		} else {
			c.reporter.Error(opID, req.Path, writeErr)
		}
		c.log.Error("image creation failed", "op", opID, "path", req.Path, "error", writeErr)
		return writeErr
	}

	c.reporter.Complete(opID, req.Path, reqMiB)
	c.log.Info("image created", "op", opID, "path", req.Path, "size_bytes", req.SizeBytes)
	return nil
}

// Cancel requests cooperative cancellation. The in-flight write is not
// aborted; the worker notices at the next mebibyte boundary and deletes the
// partial file.
func (c *Creator) Cancel() {
	c.cancelReq.Store(true)
}

// Wait blocks until Start has run to completion, whatever the outcome. It
// may be called from any goroutine, before or after Start returns.
func (c *Creator) Wait() {
	c.completed.wait()
}

// StartOn hands the blocking Start sequence to d's designated goroutine and
// blocks the calling goroutine until it has finished.
func (c *Creator) StartOn(d *Dispatcher, req Request) error {
	var err error
	d.Do(func() { err = c.Start(req) })
	return err
}
