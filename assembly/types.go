package assembly

import (
	"context"
	"errors"
	"time"
)

// ErrUnrecognizedField marks a discovered tab that no adapter is registered
// for. The key still reaches a terminal state, but nothing is fetched.
var ErrUnrecognizedField = errors.New("unrecognized field")

// ErrNoNavigation is returned by Discovery when the first-fetched page
// contains no navigable tab items at all.
var ErrNoNavigation = errors.New("no navigable items found")

// ExtractFunc turns fetched page content into a field value.
// Implementations must be side-effect free.
type ExtractFunc func(content []byte) (any, error)

// Gateway performs network fetches for sub-task targets. Implementations
// may retry or cache internally; any returned outcome is terminal for the
// dispatch attempt.
type Gateway interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Sink receives completed records. No ordering is guaranteed across
// entities.
type Sink interface {
	Write(ctx context.Context, rec *Record) error
}

// Entity is one parent object under assembly, produced by an entity source.
type Entity struct {
	// ID uniquely identifies the entity for the duration of assembly.
	ID string `json:"id"`
	// Base holds immutable seed fields known before discovery. Base keys
	// take precedence over collected field keys in the merged record.
	Base map[string]any `json:"base"`
	// SeedURL is the page fetched first, from which sub-tasks are
	// discovered.
	SeedURL string `json:"seed_url"`
}

// SubTask is one discovered fetch+extract unit contributing one field.
type SubTask struct {
	// Key is the field key the outcome is stored under. Unique within one
	// entity's discovery result.
	Key string
	// Target is the absolute URL to fetch.
	Target string
	// Extract produces the field value from fetched content. A nil Extract
	// marks an unrecognized field: the dispatcher resolves it immediately
	// with ErrUnrecognizedField instead of fetching.
	Extract ExtractFunc
}

// Outcome is the terminal result of one sub-task.
type Outcome struct {
	Value  any
	Err    error
	Target string
}

// Failed reports whether the outcome is a failure.
func (o Outcome) Failed() bool { return o.Err != nil }

// CompletionEvent carries a sub-task outcome back to the Coordinator.
// It holds only the entity identity, never a mutable handle on its state.
type CompletionEvent struct {
	EntityID string
	Key      string
	Outcome  Outcome
}

// CompletionHandler consumes completion events. Implemented by the
// Coordinator; implementations must be safe for concurrent use.
type CompletionHandler interface {
	OnCompletion(ctx context.Context, ev CompletionEvent)
}

// FieldError is the placeholder value stored for a field whose sub-task
// failed.
type FieldError struct {
	Error string `json:"error"`
	URL   string `json:"url,omitempty"`
}

// Record is the merged result for one completed entity.
type Record struct {
	EntityID string `json:"entity_id"`
	// Fields is the flat merge of base and collected fields. Failed
	// sub-tasks appear as FieldError placeholders.
	Fields map[string]any `json:"fields"`
	// Failed lists the field keys that resolved to a failure outcome.
	Failed      []string  `json:"failed,omitempty"`
	AssembledAt time.Time `json:"assembled_at"`
}

// DiscoveryFailure reports an entity that never entered assembly because
// its first fetch failed or its page enumerated no sub-tasks.
type DiscoveryFailure struct {
	EntityID string `json:"entity_id"`
	SeedURL  string `json:"seed_url"`
	Err      error  `json:"-"`
	Reason   string `json:"reason"`
}
