package assembly

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

const defaultEntityConcurrency = 4

// Source produces parent entities for assembly as a bounded stream.
type Source interface {
	Entities(ctx context.Context) (<-chan Entity, error)
}

// Assembler drives the full pipeline: it consumes entities from a source,
// runs discovery on each, dispatches the discovered sub-tasks and waits
// for every entity to drain. Entities failing discovery never enter
// assembly and are reported separately.
type Assembler struct {
	gateway     Gateway
	discovery   *Discovery
	dispatcher  *Dispatcher
	coordinator *Coordinator
	logger      *slog.Logger

	entitySem chan struct{}

	mu       sync.Mutex
	failures []DiscoveryFailure
}

// NewAssembler wires the pipeline stages together. entityConcurrency
// bounds how many entities run their discovery fetch at once; sub-task
// fetches are bounded separately by the dispatcher.
func NewAssembler(gateway Gateway, discovery *Discovery, dispatcher *Dispatcher, coordinator *Coordinator, entityConcurrency int, logger *slog.Logger) *Assembler {
	if entityConcurrency < 1 {
		entityConcurrency = defaultEntityConcurrency
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{
		gateway:     gateway,
		discovery:   discovery,
		dispatcher:  dispatcher,
		coordinator: coordinator,
		logger:      logger,
		entitySem:   make(chan struct{}, entityConcurrency),
	}
}

// Run assembles every entity the source produces and blocks until all of
// them have either emitted or been reported as discovery failures. The
// returned slice holds the discovery failures in no particular order.
func (a *Assembler) Run(ctx context.Context, src Source) ([]DiscoveryFailure, error) {
	entities, err := src.Entities(ctx)
	if err != nil {
		return nil, err
	}

	var wg sync.WaitGroup
	for ent := range entities {
		select {
		case a.entitySem <- struct{}{}:
		case <-ctx.Done():
			a.reportFailure(ent, ctx.Err())
			continue
		}

		wg.Add(1)
		go func(ent Entity) {
			defer wg.Done()
			defer func() { <-a.entitySem }()
			a.assemble(ctx, ent)
		}(ent)
	}

	wg.Wait()
	a.dispatcher.Wait()
	a.coordinator.Wait()

	a.mu.Lock()
	failures := a.failures
	a.failures = nil
	a.mu.Unlock()

	a.logger.Info("Assembly run complete",
		"assembled", a.coordinator.Assembled(),
		"discovery_failures", len(failures))
	return failures, nil
}

// Assemble runs discovery for a single entity and dispatches its
// sub-tasks. It returns without waiting for the sub-tasks to complete.
func (a *Assembler) Assemble(ctx context.Context, ent Entity) error {
	return a.assemble(ctx, ent)
}

func (a *Assembler) assemble(ctx context.Context, ent Entity) error {
	content, err := a.gateway.Fetch(ctx, ent.SeedURL)
	if err != nil {
		a.reportFailure(ent, err)
		return err
	}

	tasks, err := a.discovery.Discover(ent.SeedURL, content)
	if err != nil {
		a.reportFailure(ent, err)
		return err
	}

	a.coordinator.OnDiscovered(ctx, ent.ID, ent.Base, tasks)
	a.dispatcher.Dispatch(ctx, ent.ID, tasks)
	return nil
}

// reportFailure records a discovery failure; the entity never assembles.
func (a *Assembler) reportFailure(ent Entity, err error) {
	reason := "discovery failed"
	if errors.Is(err, ErrNoNavigation) {
		reason = "no navigable items"
	}
	a.logger.Error("Discovery failed, entity will not assemble",
		"entity_id", ent.ID, "seed_url", ent.SeedURL, "error", err)

	a.mu.Lock()
	a.failures = append(a.failures, DiscoveryFailure{
		EntityID: ent.ID,
		SeedURL:  ent.SeedURL,
		Err:      err,
		Reason:   reason,
	})
	a.mu.Unlock()
}
