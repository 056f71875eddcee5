package assembly

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// Emitter hands completed records to the sink exactly once per entity.
// It never retries and never buffers beyond the hand-off; a sink error is
// logged and the record is gone.
type Emitter struct {
	sink    Sink
	logger  *slog.Logger
	emitted atomic.Int64
	errors  atomic.Int64
}

// NewEmitter creates an emitter writing to the given sink.
func NewEmitter(sink Sink, logger *slog.Logger) *Emitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Emitter{sink: sink, logger: logger}
}

// Emit writes one completed record to the sink.
func (e *Emitter) Emit(ctx context.Context, rec *Record) {
	if err := e.sink.Write(ctx, rec); err != nil {
		e.errors.Add(1)
		e.logger.Error("Sink rejected record", "entity_id", rec.EntityID, "error", err)
		return
	}
	e.emitted.Add(1)
	e.logger.Debug("Record emitted", "entity_id", rec.EntityID, "failed_fields", len(rec.Failed))
}

// Emitted returns the number of records successfully handed to the sink.
func (e *Emitter) Emitted() int64 { return e.emitted.Load() }

// Errors returns the number of records the sink rejected.
func (e *Emitter) Errors() int64 { return e.errors.Load() }
