// Package runlog keeps an append-only record of assembly runs.
//
// Each finished run produces one [Record], which is handed to a [Sink].
// Two sinks are provided:
//
//   - [FileSink] appends one line per run to a text file in the
//     "source | elapsed_seconds | score" format used by earlier tooling,
//     so existing result tables keep working.
//   - [MongoSink] inserts one document per run into a MongoDB collection.
//
// Sinks are best effort from the caller's point of view: the CLI reports a
// failed write as a warning and still prints the result.
package runlog

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Record describes one finished run.
type Record struct {
	ID        string        `json:"id" bson:"_id"`
	Source    string        `json:"source" bson:"source"`
	Elapsed   time.Duration `json:"elapsed" bson:"elapsed_ns"`
	Score     int           `json:"score" bson:"score"`
	Length    int           `json:"length" bson:"length"`
	MaxLen    int           `json:"max_len" bson:"max_len"`
	Fragments int           `json:"fragments" bson:"fragments"`
	Seed      uint64        `json:"seed" bson:"seed"`
	Sequence  string        `json:"sequence" bson:"sequence"`
	CreatedAt time.Time     `json:"created_at" bson:"created_at"`
}

// NewRecord returns a record with a fresh ID and the current time.
func NewRecord(source string) Record {
	return Record{
		ID:        uuid.NewString(),
		Source:    source,
		CreatedAt: time.Now().UTC(),
	}
}

// Sink stores run records.
type Sink interface {
	Write(ctx context.Context, rec Record) error
	Close() error
}

// Multi fans a record out to several sinks. Every sink is attempted; the
// errors are joined.
type Multi []Sink

// Write implements Sink.
func (m Multi) Write(ctx context.Context, rec Record) error {
	var errs []error
	for _, s := range m {
		if err := s.Write(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close implements Sink.
func (m Multi) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
