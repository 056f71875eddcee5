package assembly

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// entityState is the per-entity assembly state. It is owned exclusively by
// the Coordinator and only ever touched under the Coordinator's lock.
type entityState struct {
	base    map[string]any
	fields  map[string]any
	pending map[string]string // field key -> target URL
	failed  map[string]struct{}
	timer   *time.Timer
}

// Coordinator owns per-entity assembly state, consumes completion events
// from the Dispatcher and emits each entity exactly once when its pending
// set empties.
type Coordinator struct {
	emitter  *Emitter
	deadline time.Duration
	logger   *slog.Logger

	mu       sync.Mutex
	entities map[string]*entityState
	wg       sync.WaitGroup

	assembled atomic.Int64
	rejected  atomic.Int64
}

// NewCoordinator creates a coordinator emitting through the given emitter.
// A deadline of zero disables force-completion; every positive deadline
// guarantees that an entity retires even when a sub-task never completes.
func NewCoordinator(emitter *Emitter, deadline time.Duration, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		emitter:  emitter,
		deadline: deadline,
		logger:   logger,
		entities: make(map[string]*entityState),
	}
}

// OnDiscovered initializes assembly state for an entity whose discovery
// just finished. An entity with no sub-tasks emits immediately with base
// fields only. Duplicate sub-task keys are a discovery contract violation;
// the first descriptor wins and the rest are dropped with a warning.
func (c *Coordinator) OnDiscovered(ctx context.Context, id string, base map[string]any, tasks []SubTask) {
	c.mu.Lock()
	if _, exists := c.entities[id]; exists {
		c.mu.Unlock()
		c.logger.Warn("Entity already under assembly, ignoring rediscovery", "entity_id", id)
		c.rejected.Add(1)
		return
	}

	st := &entityState{
		base:    base,
		fields:  make(map[string]any, len(tasks)),
		pending: make(map[string]string, len(tasks)),
		failed:  make(map[string]struct{}),
	}
	for _, t := range tasks {
		if _, dup := st.pending[t.Key]; dup {
			c.logger.Warn("Duplicate sub-task key from discovery, keeping first",
				"entity_id", id, "key", t.Key, "target", t.Target)
			continue
		}
		st.pending[t.Key] = t.Target
	}

	c.wg.Add(1)

	if len(st.pending) == 0 {
		c.mu.Unlock()
		c.finish(ctx, id, st)
		return
	}

	c.entities[id] = st
	if c.deadline > 0 {
		st.timer = time.AfterFunc(c.deadline, func() {
			c.forceComplete(id)
		})
	}
	c.mu.Unlock()

	c.logger.Debug("Entity entered assembly", "entity_id", id, "sub_tasks", len(st.pending))
}

// OnCompletion merges one sub-task outcome. Events for unknown entities or
// keys no longer pending are dropped with a warning; they indicate a late
// or duplicate dispatch and must never alter state.
func (c *Coordinator) OnCompletion(ctx context.Context, ev CompletionEvent) {
	c.mu.Lock()
	st, ok := c.entities[ev.EntityID]
	if !ok {
		c.mu.Unlock()
		c.rejected.Add(1)
		c.logger.Warn("Completion event for unknown entity, dropping",
			"entity_id", ev.EntityID, "key", ev.Key)
		return
	}
	if _, pending := st.pending[ev.Key]; !pending {
		c.mu.Unlock()
		c.rejected.Add(1)
		c.logger.Warn("Completion event for non-pending key, dropping",
			"entity_id", ev.EntityID, "key", ev.Key)
		return
	}

	if ev.Outcome.Failed() {
		st.fields[ev.Key] = FieldError{Error: ev.Outcome.Err.Error(), URL: ev.Outcome.Target}
		st.failed[ev.Key] = struct{}{}
	} else {
		st.fields[ev.Key] = ev.Outcome.Value
	}
	delete(st.pending, ev.Key)

	if len(st.pending) > 0 {
		c.mu.Unlock()
		return
	}

	delete(c.entities, ev.EntityID)
	if st.timer != nil {
		st.timer.Stop()
	}
	c.mu.Unlock()

	c.finish(ctx, ev.EntityID, st)
}

// forceComplete resolves every still-pending key as a failure when the
// entity deadline fires. A no-op if the entity already retired.
func (c *Coordinator) forceComplete(id string) {
	c.mu.Lock()
	st, ok := c.entities[id]
	if !ok {
		c.mu.Unlock()
		return
	}
	for key, target := range st.pending {
		st.fields[key] = FieldError{Error: "deadline exceeded", URL: target}
		st.failed[key] = struct{}{}
	}
	forced := len(st.pending)
	st.pending = map[string]string{}
	delete(c.entities, id)
	c.mu.Unlock()

	c.logger.Warn("Entity deadline exceeded, force-completing",
		"entity_id", id, "forced_keys", forced)
	c.finish(context.Background(), id, st)
}

// finish merges base over collected fields and hands the record to the
// emitter. Called exactly once per entity, always outside the lock.
func (c *Coordinator) finish(ctx context.Context, id string, st *entityState) {
	defer c.wg.Done()

	fields := make(map[string]any, len(st.fields)+len(st.base))
	for k, v := range st.fields {
		fields[k] = v
	}
	for k, v := range st.base {
		if _, clash := fields[k]; clash {
			c.logger.Warn("Collected field collides with base field, base wins",
				"entity_id", id, "key", k)
		}
		fields[k] = v
	}

	failed := make([]string, 0, len(st.failed))
	for k := range st.failed {
		failed = append(failed, k)
	}
	sort.Strings(failed)

	rec := &Record{
		EntityID:    id,
		Fields:      fields,
		Failed:      failed,
		AssembledAt: time.Now().UTC(),
	}

	c.assembled.Add(1)
	c.emitter.Emit(ctx, rec)
}

// Wait blocks until every entity handed to OnDiscovered has retired.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

// Pending returns the number of entities currently under assembly.
func (c *Coordinator) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entities)
}

// Assembled returns the number of entities emitted so far.
func (c *Coordinator) Assembled() int64 { return c.assembled.Load() }

// Rejected returns the number of dropped protocol-violation events.
func (c *Coordinator) Rejected() int64 { return c.rejected.Load() }
