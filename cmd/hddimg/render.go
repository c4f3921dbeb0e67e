package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/Rudd3r/hddimg/pkg/progress"
	"golang.org/x/term"
)

// barRenderer draws an in-place progress bar on a terminal. Events may
// arrive from several creator goroutines, so rendering is locked.
type barRenderer struct {
	mu    sync.Mutex
	out   *os.File
	width int
	dirty bool
}

// newBarRenderer returns nil when out is not a terminal; the caller falls
// back to log-based reporting.
func newBarRenderer(out *os.File) *barRenderer {
	fd := int(out.Fd())
	if !term.IsTerminal(fd) {
		return nil
	}
	width, _, err := term.GetSize(fd)
	if err != nil || width < 20 {
		width = 80
	}
	return &barRenderer{out: out, width: width}
}

func (b *barRenderer) render(e progress.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	name := filepath.Base(e.Path)
	switch e.Type {
	case progress.EventCreateStart:
		b.line(fmt.Sprintf("%s: 0/%d MiB", name, e.TotalMiB))
	case progress.EventProgress:
		b.line(fmt.Sprintf("%s: %s %d/%d MiB", name, b.bar(e.WrittenMiB, e.TotalMiB), e.WrittenMiB, e.TotalMiB))
	case progress.EventComplete:
		b.line(fmt.Sprintf("%s: %s %d/%d MiB done", name, b.bar(e.TotalMiB, e.TotalMiB), e.TotalMiB, e.TotalMiB))
		b.newline()
	case progress.EventCanceled:
		b.line(fmt.Sprintf("%s: canceled", name))
		b.newline()
	case progress.EventError:
		b.line(fmt.Sprintf("%s: failed: %s", name, e.Err))
		b.newline()
	}
}

func (b *barRenderer) bar(written, total int64) string {
	const cells = 20
	filled := 0
	if total > 0 {
		filled = int(written * cells / total)
	}
	return "[" + strings.Repeat("=", filled) + strings.Repeat(" ", cells-filled) + "]"
}

// line redraws the current terminal line, padding to clear stale text.
// Truncation happens on rune boundaries so multi-byte filenames are never
// cut mid-character.
func (b *barRenderer) line(s string) {
	if utf8.RuneCountInString(s) > b.width {
		s = string([]rune(s)[:b.width])
	}
	_, _ = fmt.Fprintf(b.out, "\r%-*s", b.width, s)
	b.dirty = true
}

func (b *barRenderer) newline() {
	_, _ = fmt.Fprintln(b.out)
	b.dirty = false
}

// flush terminates a partially drawn line so later output starts clean.
func (b *barRenderer) flush() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.dirty {
		b.newline()
	}
}
