// Package event implements the non-blocking event sink (spec.md §4.9): a
// Sink interface called as a provider observes transient faults, retries,
// soft-delete version advances, purges, and state transitions. The default
// implementation logs via charmbracelet/log and never blocks a data
// operation beyond a bounded buffered channel.
package event

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
)

// Kind identifies what happened.
type Kind int

const (
	TransientFault Kind = iota
	RetryScheduled
	RetryExhausted
	VersionAdvanced
	RowPurged
	StateTransition
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case TransientFault:
		return "transient_fault"
	case RetryScheduled:
		return "retry_scheduled"
	case RetryExhausted:
		return "retry_exhausted"
	case VersionAdvanced:
		return "version_advanced"
	case RowPurged:
		return "row_purged"
	case StateTransition:
		return "state_transition"
	default:
		return "unknown"
	}
}

// Event is one occurrence reported to a Sink.
type Event struct {
	Kind   Kind
	Entity string
	Detail string
	Err    error
}

// Sink observes Events. Emit must not block the caller on anything slower
// than filling Sink's own internal buffer.
type Sink interface {
	Emit(e Event)
}

// LogSink is the default Sink, logging each Event via charmbracelet/log at
// a level matching its severity: Debug for scheduled retries and version
// advances, Warn for transient faults and purges, Error for exhausted
// retries.
type LogSink struct {
	logger *log.Logger
	ch     chan Event
	done   chan struct{}
}

// NewLogSink starts a background goroutine draining a bounded channel of
// Events into logger, so Emit never blocks on I/O.
func NewLogSink(logger *log.Logger, bufferSize int) *LogSink {
	if logger == nil {
		logger = log.New(os.Stderr)
	}
	if bufferSize <= 0 {
		bufferSize = 256
	}
	s := &LogSink{logger: logger, ch: make(chan Event, bufferSize), done: make(chan struct{})}
	go s.run()
	return s
}

func (s *LogSink) run() {
	defer close(s.done)
	for e := range s.ch {
		s.log(e)
	}
}

func (s *LogSink) log(e Event) {
	fields := []any{"entity", e.Entity, "detail", e.Detail}
	if e.Err != nil {
		fields = append(fields, "error", e.Err)
	}
	switch e.Kind {
	case RetryScheduled, VersionAdvanced:
		s.logger.Debug(e.Kind.String(), fields...)
	case TransientFault, RowPurged:
		s.logger.Warn(e.Kind.String(), fields...)
	case RetryExhausted:
		s.logger.Error(e.Kind.String(), fields...)
	default:
		s.logger.Info(e.Kind.String(), fields...)
	}
}

// Emit enqueues e, dropping it (and logging a warning for each drop) only if the
// background drain can't keep up — preferred over blocking a data
// operation on logging.
func (s *LogSink) Emit(e Event) {
	select {
	case s.ch <- e:
	default:
		s.logger.Warn("event dropped: sink buffer full", "kind", e.Kind.String())
	}
}

// Close stops accepting events and waits for the drain goroutine to finish
// logging whatever was already queued.
func (s *LogSink) Close(ctx context.Context) error {
	close(s.ch)
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

var _ Sink = (*LogSink)(nil)
