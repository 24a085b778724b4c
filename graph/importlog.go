package graph

import (
	"fmt"
	"log/slog"
	"sync"
)

// ImportLog is the ordered, append-only sequence of human-readable progress
// lines produced during an import. It is the only per-step feedback surface
// the UI gets; each line is also mirrored to slog for operators.
type ImportLog struct {
	mu     sync.Mutex
	lines  []string
	logger *slog.Logger
}

// NewImportLog returns an empty log. logger may be nil.
func NewImportLog(logger *slog.Logger) *ImportLog {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImportLog{logger: logger}
}

// Append adds one formatted line to the sequence.
func (l *ImportLog) Append(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	l.mu.Lock()
	l.lines = append(l.lines, line)
	l.mu.Unlock()
	l.logger.Info(line)
}

// Warn adds one formatted line and mirrors it at warning level.
func (l *ImportLog) Warn(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	l.mu.Lock()
	l.lines = append(l.lines, line)
	l.mu.Unlock()
	l.logger.Warn(line)
}

// Lines returns a snapshot of the sequence in append order.
func (l *ImportLog) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.lines))
	copy(out, l.lines)
	return out
}

// Reset clears the sequence for a new batch.
func (l *ImportLog) Reset() {
	l.mu.Lock()
	l.lines = nil
	l.mu.Unlock()
}
