// Package assembly implements the scatter/gather engine that turns one
// vehicle seed into one completed detail record.
//
// # Overview
//
// For each entity the engine fetches a first page, discovers the set of
// detail tabs it links to, dispatches one concurrent fetch+extract
// sub-task per tab, and merges the outcomes into a single record that is
// emitted exactly once when no sub-task remains pending. Individual
// sub-task failures never abort an entity; they are recorded as error
// placeholders and the entity still completes.
//
// # Architecture
//
// The package consists of several key components:
//
//   - Discovery: enumerates sub-tasks from the entity's first-fetched page
//   - Dispatcher: issues one bounded-concurrency fetch+extract per sub-task
//   - Coordinator: owns per-entity pending/field state and detects completion
//   - Emitter: hands completed records to the configured sink exactly once
//   - Assembler: drives the pipeline for a stream of entities
//
// # Correctness
//
// The Coordinator serializes all mutations of an entity's pending set
// behind a single lock, so concurrent completion events cannot double-emit
// or lose the completion trigger. Late or duplicate events (unknown entity,
// key no longer pending) are dropped with a warning. Every entity carries a
// deadline; when it fires, still-pending keys are force-resolved as
// failures so no entity stays resident forever.
//
// External collaborators (HTTP fetching, field extraction, record
// persistence) are consumed through the Gateway, ExtractFunc and Sink
// interfaces and are implemented by the scrape and sink packages.
package assembly
