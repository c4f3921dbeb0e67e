package domain

import (
	"fmt"
	"time"

	"github.com/docker/go-units"
)

// ParseSizeBytes parses a human-readable size such as "40g", "512MiB" or a
// bare byte count. All suffixes are interpreted as binary (1024-based) units.
func ParseSizeBytes(s string) (int64, error) {
	size, err := units.RAMInBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	return size, nil
}

// FormatSizeBytes renders a byte count in binary units, e.g. "40GiB".
func FormatSizeBytes(bytes int64) string {
	return units.BytesSize(float64(bytes))
}

func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		minutes := int(d.Minutes())
		seconds := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%ds", minutes, seconds)
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh%dm", hours, minutes)
}
