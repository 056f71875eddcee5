package sink

import (
	"context"
	"errors"

	"github.com/c360studio/sawari/assembly"
)

// MultiSink fans each record out to every sink in order. All sinks
// are attempted even when an earlier one fails; the errors are
// joined.
type MultiSink struct {
	sinks []assembly.Sink
}

// NewMultiSink combines the given sinks. Nil entries are skipped.
func NewMultiSink(sinks ...assembly.Sink) *MultiSink {
	m := &MultiSink{}
	for _, s := range sinks {
		if s != nil {
			m.sinks = append(m.sinks, s)
		}
	}
	return m
}

// Write implements assembly.Sink.
func (m *MultiSink) Write(ctx context.Context, rec *assembly.Record) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Write(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
