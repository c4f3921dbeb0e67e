package progress

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestReporter_CreateStart(t *testing.T) {
	var captured Event
	reporter := NewReporter(func(e Event) {
		captured = e
	})

	op := uuid.New()
	reporter.CreateStart(op, "/tmp/disk.img", 40)

	if captured.Type != EventCreateStart {
		t.Errorf("Expected EventCreateStart, got %v", captured.Type)
	}
	if captured.OpID != op {
		t.Errorf("Expected op %s, got %s", op, captured.OpID)
	}
	if captured.Path != "/tmp/disk.img" {
		t.Errorf("Expected path /tmp/disk.img, got %q", captured.Path)
	}
	if captured.TotalMiB != 40 {
		t.Errorf("Expected 40 MiB total, got %d", captured.TotalMiB)
	}
}

func TestReporter_Progress(t *testing.T) {
	var captured Event
	reporter := NewReporter(func(e Event) {
		captured = e
	})

	reporter.Progress(uuid.New(), "/tmp/disk.img", 12, 40)

	if captured.Type != EventProgress {
		t.Errorf("Expected EventProgress, got %v", captured.Type)
	}
	if captured.WrittenMiB != 12 {
		t.Errorf("Expected 12 MiB written, got %d", captured.WrittenMiB)
	}
	if captured.TotalMiB != 40 {
		t.Errorf("Expected 40 MiB total, got %d", captured.TotalMiB)
	}
}

func TestReporter_Complete(t *testing.T) {
	var captured Event
	reporter := NewReporter(func(e Event) {
		captured = e
	})

	reporter.Complete(uuid.New(), "/tmp/disk.img", 40)

	if captured.Type != EventComplete {
		t.Errorf("Expected EventComplete, got %v", captured.Type)
	}
	if captured.WrittenMiB != captured.TotalMiB {
		t.Errorf("Expected written to equal total, got %d/%d", captured.WrittenMiB, captured.TotalMiB)
	}
}

func TestReporter_Error(t *testing.T) {
	var captured Event
	reporter := NewReporter(func(e Event) {
		captured = e
	})

	testErr := errors.New("test error")
	reporter.Error(uuid.New(), "/tmp/disk.img", testErr)

	if captured.Type != EventError {
		t.Errorf("Expected EventError, got %v", captured.Type)
	}
	if captured.Err != testErr {
		t.Errorf("Expected error %v, got %v", testErr, captured.Err)
	}
}

func TestNoOpReporter(t *testing.T) {
	reporter := NoOpReporter()

	// Should not panic
	op := uuid.New()
	reporter.CreateStart(op, "/tmp/disk.img", 10)
	reporter.Progress(op, "/tmp/disk.img", 5, 10)
	reporter.Complete(op, "/tmp/disk.img", 10)
	reporter.Canceled(op, "/tmp/disk.img")
	reporter.Error(op, "/tmp/disk.img", errors.New("test"))
}

func TestCollector(t *testing.T) {
	collector := NewCollector()
	reporter := collector.Reporter()

	op := uuid.New()
	reporter.CreateStart(op, "/tmp/disk.img", 3)
	reporter.Progress(op, "/tmp/disk.img", 1, 3)
	reporter.Progress(op, "/tmp/disk.img", 2, 3)
	reporter.Complete(op, "/tmp/disk.img", 3)

	events := collector.Events()
	if len(events) != 4 {
		t.Fatalf("Expected 4 events, got %d", len(events))
	}
	if events[0].Type != EventCreateStart {
		t.Errorf("Expected first event to be CreateStart, got %v", events[0].Type)
	}
	if events[len(events)-1].Type != EventComplete {
		t.Errorf("Expected last event to be Complete, got %v", events[len(events)-1].Type)
	}

	collector.Clear()
	if len(collector.Events()) != 0 {
		t.Error("Expected empty events after clear")
	}
}

func TestEventType_String(t *testing.T) {
	tests := []struct {
		eventType EventType
		expected  string
	}{
		{EventCreateStart, "CreateStart"},
		{EventProgress, "Progress"},
		{EventComplete, "Complete"},
		{EventCanceled, "Canceled"},
		{EventError, "Error"},
		{EventType(99), "Unknown"},
	}

	for _, tt := range tests {
		got := tt.eventType.String()
		if got != tt.expected {
			t.Errorf("EventType.String() = %q, want %q", got, tt.expected)
		}
	}
}

func TestEventTimestamp(t *testing.T) {
	before := time.Now()

	var captured Event
	reporter := NewReporter(func(e Event) {
		captured = e
	})

	reporter.CreateStart(uuid.New(), "/tmp/disk.img", 1)

	after := time.Now()

	if captured.Timestamp.Before(before) || captured.Timestamp.After(after) {
		t.Error("Event timestamp not in expected range")
	}
}

func TestSlogReporter(t *testing.T) {
	// Just verify it doesn't panic and throttles without dropping the
	// terminal events.
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	reporter := SlogReporter(log)

	op := uuid.New()
	reporter.CreateStart(op, "/tmp/disk.img", 100)
	for i := int64(1); i <= 100; i++ {
		reporter.Progress(op, "/tmp/disk.img", i, 100)
	}
	reporter.Complete(op, "/tmp/disk.img", 100)
	reporter.Canceled(op, "/tmp/disk.img")
	reporter.Error(op, "/tmp/disk.img", errors.New("test error"))
}
