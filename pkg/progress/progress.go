package progress

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// Event represents a progress event during image creation
type Event struct {
	Type       EventType
	OpID       uuid.UUID
	Path       string
	WrittenMiB int64
	TotalMiB   int64
	Err        error
	Timestamp  time.Time
}

// EventType represents the type of progress event
type EventType int

const (
	// EventCreateStart indicates an image creation is starting
	EventCreateStart EventType = iota
	// EventProgress indicates forward progress in whole mebibytes
	EventProgress
	// EventComplete indicates the image was fully written
	EventComplete
	// EventCanceled indicates the operation was canceled by the caller
	EventCanceled
	// EventError indicates the operation failed
	EventError
)

func (t EventType) String() string {
	switch t {
	case EventCreateStart:
		return "CreateStart"
	case EventProgress:
		return "Progress"
	case EventComplete:
		return "Complete"
	case EventCanceled:
		return "Canceled"
	case EventError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Reporter provides progress reporting functionality
type Reporter struct {
	callback func(Event)
	mu       sync.RWMutex
}

// NewReporter creates a new progress reporter with the given callback
func NewReporter(callback func(Event)) *Reporter {
	return &Reporter{
		callback: callback,
	}
}

// NoOpReporter returns a reporter that doesn't report anything
func NoOpReporter() *Reporter {
	return &Reporter{
		callback: func(Event) {},
	}
}

// Report sends a progress event
func (r *Reporter) Report(event Event) {
	event.Timestamp = time.Now()

	r.mu.RLock()
	callback := r.callback
	r.mu.RUnlock()

	if callback != nil {
		callback(event)
	}
}

// CreateStart reports the start of an image creation
func (r *Reporter) CreateStart(op uuid.UUID, path string, totalMiB int64) {
	r.Report(Event{
		Type:     EventCreateStart,
		OpID:     op,
		Path:     path,
		TotalMiB: totalMiB,
	})
}

// Progress reports forward progress of an image creation
func (r *Reporter) Progress(op uuid.UUID, path string, writtenMiB, totalMiB int64) {
	r.Report(Event{
		Type:       EventProgress,
		OpID:       op,
		Path:       path,
		WrittenMiB: writtenMiB,
		TotalMiB:   totalMiB,
	})
}

// Complete reports a fully written image
func (r *Reporter) Complete(op uuid.UUID, path string, totalMiB int64) {
	r.Report(Event{
		Type:       EventComplete,
		OpID:       op,
		Path:       path,
		WrittenMiB: totalMiB,
		TotalMiB:   totalMiB,
	})
}

// Canceled reports a canceled operation
func (r *Reporter) Canceled(op uuid.UUID, path string) {
	r.Report(Event{
		Type: EventCanceled,
		OpID: op,
		Path: path,
	})
}

// Error reports a failed operation
func (r *Reporter) Error(op uuid.UUID, path string, err error) {
	r.Report(Event{
		Type: EventError,
		OpID: op,
		Path: path,
		Err:  err,
	})
}

// SlogReporter creates a reporter that logs using slog. Progress events are
// rate limited so a fast worker cannot flood the log.
func SlogReporter(log *slog.Logger) *Reporter {
	throttle := rate.Sometimes{Interval: 100 * time.Millisecond}
	return NewReporter(func(e Event) {
		switch e.Type {
		case EventCreateStart:
			log.Info("creating image", "op", e.OpID, "path", e.Path, "total_mib", e.TotalMiB)
		case EventProgress:
			throttle.Do(func() {
				log.Info("image progress",
					"op", e.OpID,
					"path", e.Path,
					"written_mib", e.WrittenMiB,
					"total_mib", e.TotalMiB)
			})
		case EventComplete:
			log.Info("image created", "op", e.OpID, "path", e.Path, "total_mib", e.TotalMiB)
		case EventCanceled:
			log.Warn("image creation canceled", "op", e.OpID, "path", e.Path)
		case EventError:
			log.Error("image creation failed", "op", e.OpID, "path", e.Path, "error", e.Err)
		}
	})
}

// Collector collects all events for later analysis
type Collector struct {
	mu     sync.RWMutex
	events []Event
}

// NewCollector creates a new event collector
func NewCollector() *Collector {
	return &Collector{
		events: make([]Event, 0),
	}
}

// Reporter returns a reporter that collects events
func (c *Collector) Reporter() *Reporter {
	return NewReporter(func(e Event) {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.events = append(c.events, e)
	})
}

// Events returns all collected events
func (c *Collector) Events() []Event {
	c.mu.RLock()
	defer c.mu.RUnlock()

	events := make([]Event, len(c.events))
	copy(events, c.events)
	return events
}

// Clear clears all collected events
func (c *Collector) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = c.events[:0]
}
