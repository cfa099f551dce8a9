package runlog

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"sync"

	errs "github.com/matzehuels/sbhasm/pkg/errors"
)

// DefaultPath is the log file used when none is configured.
const DefaultPath = "results.txt"

// FileSink appends "source | elapsed_seconds | score" lines to a file.
// Elapsed seconds use six significant digits.
type FileSink struct {
	mu   sync.Mutex
	path string
}

// NewFileSink returns a sink appending to path. The file is opened per
// write, so a sink never holds a descriptor between runs.
func NewFileSink(path string) *FileSink {
	if path == "" {
		path = DefaultPath
	}
	return &FileSink{path: path}
}

// Path returns the log file path.
func (s *FileSink) Path() string { return s.path }

// Write appends rec as one line.
func (s *FileSink) Write(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return errs.Wrap(errs.ErrCodeIO, err, "open run log %s", s.path)
	}
	if _, err := fmt.Fprint(f, FormatLine(rec)); err != nil {
		f.Close()
		return errs.Wrap(errs.ErrCodeIO, err, "write run log %s", s.path)
	}
	return f.Close()
}

// Close does nothing for file sinks.
func (s *FileSink) Close() error { return nil }

// FormatLine renders rec in the file sink's line format, newline included.
func FormatLine(rec Record) string {
	secs := strconv.FormatFloat(rec.Elapsed.Seconds(), 'g', 6, 64)
	return fmt.Sprintf("%s | %s | %d\n", rec.Source, secs, rec.Score)
}

var _ Sink = (*FileSink)(nil)
