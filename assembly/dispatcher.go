package assembly

import (
	"context"
	"log/slog"
	"sync"
)

const defaultFetchConcurrency = 8

// Dispatcher issues one concurrent fetch+extract operation per sub-task,
// bounded by a shared semaphore. Exactly one completion event reaches the
// handler per descriptor regardless of outcome; a sub-task is never
// silently dropped.
type Dispatcher struct {
	gateway Gateway
	events  CompletionHandler
	sem     chan struct{}
	logger  *slog.Logger
	wg      sync.WaitGroup
}

// NewDispatcher creates a dispatcher fetching through the given gateway
// and routing completion events to the handler. Concurrency bounds the
// number of in-flight fetches; values below one fall back to the default.
func NewDispatcher(gateway Gateway, events CompletionHandler, concurrency int, logger *slog.Logger) *Dispatcher {
	if concurrency < 1 {
		concurrency = defaultFetchConcurrency
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		gateway: gateway,
		events:  events,
		sem:     make(chan struct{}, concurrency),
		logger:  logger,
	}
}

// Dispatch starts one sub-task per descriptor. Unrecognized fields (nil
// Extract) are resolved synchronously without fetching so the key still
// reaches a terminal state.
func (d *Dispatcher) Dispatch(ctx context.Context, entityID string, tasks []SubTask) {
	for _, task := range tasks {
		if task.Extract == nil {
			d.logger.Warn("No adapter registered for field, recording warning outcome",
				"entity_id", entityID, "key", task.Key)
			d.events.OnCompletion(ctx, CompletionEvent{
				EntityID: entityID,
				Key:      task.Key,
				Outcome:  Outcome{Err: ErrUnrecognizedField, Target: task.Target},
			})
			continue
		}

		d.wg.Add(1)
		go func(t SubTask) {
			defer d.wg.Done()
			outcome := d.run(ctx, t)
			d.events.OnCompletion(ctx, CompletionEvent{
				EntityID: entityID,
				Key:      t.Key,
				Outcome:  outcome,
			})
		}(task)
	}
}

// run executes one fetch+extract under the concurrency semaphore.
func (d *Dispatcher) run(ctx context.Context, t SubTask) Outcome {
	select {
	case d.sem <- struct{}{}:
		defer func() { <-d.sem }()
	case <-ctx.Done():
		return Outcome{Err: ctx.Err(), Target: t.Target}
	}

	content, err := d.gateway.Fetch(ctx, t.Target)
	if err != nil {
		return Outcome{Err: err, Target: t.Target}
	}

	value, err := t.Extract(content)
	if err != nil {
		return Outcome{Err: err, Target: t.Target}
	}
	return Outcome{Value: value, Target: t.Target}
}

// Wait blocks until every dispatched sub-task has delivered its event.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
