// Package assembler provides a component that assembles complete
// vehicle records from assembly requests arriving over JetStream.
//
// Each request carries one catalog car. The component fetches the
// car's detail pages concurrently, merges the extracted tab data with
// the listing information, and publishes exactly one assembled record
// per request.
package assembler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/c360studio/semstreams/component"
	"github.com/c360studio/semstreams/natsclient"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/c360studio/sawari/assembly"
	"github.com/c360studio/sawari/catalog"
	"github.com/c360studio/sawari/scrape"
	"github.com/c360studio/sawari/sink"
)

// assemblerSchema defines the configuration schema.
var assemblerSchema = component.GenerateConfigSchema(reflect.TypeOf(Config{}))

// defaultTabKeys maps navigation tab identifiers to record field keys
// where the two differ.
var defaultTabKeys = map[string]string{
	"specs": "specifications",
	"range": "mileage",
}

// Component implements the assembler processor.
type Component struct {
	name       string
	config     Config
	natsClient *natsclient.Client
	logger     *slog.Logger
	platform   component.PlatformMeta

	// Assembly pipeline, built on Start
	fetcher     *scrape.Fetcher
	discovery   *assembly.Discovery
	dispatcher  *assembly.Dispatcher
	coordinator *assembly.Coordinator

	// Lifecycle management
	running   bool
	startTime time.Time
	mu        sync.RWMutex
	cancel    context.CancelFunc
	wg        sync.WaitGroup

	// Metrics
	requested      atomic.Int64
	errors         atomic.Int64
	lastActivityMu sync.RWMutex
	lastActivity   time.Time
}

// NewComponent creates a new assembler processor component.
func NewComponent(rawConfig json.RawMessage, deps component.Dependencies) (component.Discoverable, error) {
	var config Config
	if err := json.Unmarshal(rawConfig, &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Use default config if ports not set
	if config.Ports == nil {
		config = DefaultConfig()
		// Re-unmarshal to get user-provided values
		if err := json.Unmarshal(rawConfig, &config); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	c := &Component{
		name:       "assembler",
		config:     config,
		natsClient: deps.NATSClient,
		logger:     deps.GetLogger(),
		platform:   deps.Platform,
	}

	return c, nil
}

// Initialize prepares the component.
func (c *Component) Initialize() error {
	return nil
}

// Start begins consuming assembly requests.
func (c *Component) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return fmt.Errorf("component already running")
	}
	if c.natsClient == nil {
		c.mu.Unlock()
		return fmt.Errorf("NATS client required")
	}
	c.running = true
	c.startTime = time.Now()
	c.mu.Unlock()

	c.fetcher = scrape.NewFetcher(scrape.FetcherOptions{
		Timeout:        c.config.GetFetchTimeout(),
		UserAgent:      c.config.GetUserAgent(),
		MaxContentSize: c.config.GetMaxContentSize(),
		Retries:        c.config.Retries,
		RetryBackoff:   c.config.GetRetryBackoff(),
		CacheTTL:       c.config.GetCacheTTL(),
	})

	registry := scrape.NewRegistry()
	c.discovery = assembly.NewDiscovery(
		assembly.DefaultNavSelector,
		c.config.GetExcludeTabs(),
		defaultTabKeys,
		registry,
		c.logger,
	)

	recordSink := sink.NewStreamSink(c.natsClient, c.config.RecordSubject, c.name)
	emitter := assembly.NewEmitter(recordSink, c.logger)
	c.coordinator = assembly.NewCoordinator(emitter, c.config.GetEntityDeadline(), c.logger)
	c.dispatcher = assembly.NewDispatcher(c.fetcher, c.coordinator, c.config.FetchConcurrency, c.logger)

	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.consumeMessages(runCtx)
	}()

	c.logger.Info("Assembler started",
		"stream", c.config.StreamName,
		"consumer", c.config.ConsumerName,
		"record_subject", c.config.RecordSubject)

	return nil
}

// consumeMessages processes incoming assembly requests.
func (c *Component) consumeMessages(ctx context.Context) {
	js, err := c.natsClient.JetStream()
	if err != nil {
		c.logger.Error("Failed to get JetStream context", "error", err)
		return
	}

	consumer, err := js.Consumer(ctx, c.config.StreamName, c.config.ConsumerName)
	if err != nil {
		c.logger.Error("Failed to get consumer", "error", err,
			"stream", c.config.StreamName, "consumer", c.config.ConsumerName)
		return
	}

	c.logger.Info("Consumer connected", "stream", c.config.StreamName, "consumer", c.config.ConsumerName)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		msgs, err := consumer.Fetch(1, jetstream.FetchMaxWait(5*time.Second))
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			continue // Timeout, try again
		}

		for msg := range msgs.Messages() {
			select {
			case <-ctx.Done():
				// NAK the current message so it can be redelivered
				_ = msg.Nak()
				for remaining := range msgs.Messages() {
					_ = remaining.Nak()
				}
				return
			default:
				c.handleMessage(ctx, msg)
			}
		}
	}
}

// handleMessage starts assembly for a single request. The record is
// published asynchronously once all detail fetches complete, so the
// message is acked as soon as discovery succeeds.
func (c *Component) handleMessage(ctx context.Context, msg jetstream.Msg) {
	c.updateLastActivity()

	var req AssembleRequest
	if err := json.Unmarshal(msg.Data(), &req); err != nil {
		c.logger.Warn("Failed to parse assembly request", "error", err)
		c.errors.Add(1)
		_ = msg.Nak()
		return
	}
	if err := req.Car.Validate(); err != nil {
		c.logger.Warn("Invalid assembly request", "error", err)
		c.errors.Add(1)
		// Malformed forever; redelivery cannot help
		_ = msg.Ack()
		return
	}

	if req.RequestID == "" {
		req.RequestID = uuid.New().String()
	}

	entity := req.Car.Entity()
	c.logger.Info("Processing assembly request",
		"request_id", req.RequestID, "entity_id", entity.ID, "seed_url", entity.SeedURL)

	content, err := c.fetcher.Fetch(ctx, entity.SeedURL)
	if err != nil {
		c.logger.Error("Failed to fetch seed page", "entity_id", entity.ID, "error", err)
		c.errors.Add(1)
		_ = msg.Nak()
		return
	}

	tasks, err := c.discovery.Discover(entity.SeedURL, content)
	if err != nil {
		c.logger.Error("Discovery failed", "entity_id", entity.ID, "error", err)
		c.errors.Add(1)
		_ = msg.Nak()
		return
	}

	c.coordinator.OnDiscovered(ctx, entity.ID, entity.Base, tasks)
	c.dispatcher.Dispatch(ctx, entity.ID, tasks)

	c.requested.Add(1)
	_ = msg.Ack()
}

// updateLastActivity safely updates the last activity timestamp.
func (c *Component) updateLastActivity() {
	c.lastActivityMu.Lock()
	c.lastActivity = time.Now()
	c.lastActivityMu.Unlock()
}

// getLastActivity safely retrieves the last activity timestamp.
func (c *Component) getLastActivity() time.Time {
	c.lastActivityMu.RLock()
	defer c.lastActivityMu.RUnlock()
	return c.lastActivity
}

// Stop gracefully stops the component within the given timeout.
// In-flight assemblies are allowed to drain; stragglers are bounded
// by the entity deadline.
func (c *Component) Stop(timeout time.Duration) error {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return nil
	}

	if c.cancel != nil {
		c.cancel()
	}
	c.mu.Unlock()

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		if c.dispatcher != nil {
			c.dispatcher.Wait()
		}
		if c.coordinator != nil {
			c.coordinator.Wait()
		}
		close(done)
	}()

	var err error
	select {
	case <-done:
		// Graceful shutdown completed
	case <-time.After(timeout):
		err = fmt.Errorf("stop timed out after %v", timeout)
	}

	c.mu.Lock()
	c.running = false
	c.mu.Unlock()

	var assembled, rejected int64
	if c.coordinator != nil {
		assembled = c.coordinator.Assembled()
		rejected = c.coordinator.Rejected()
	}
	c.logger.Info("Assembler stopped",
		"requested", c.requested.Load(),
		"assembled", assembled,
		"rejected_events", rejected,
		"errors", c.errors.Load())

	return err
}

// Discoverable interface implementation

// Meta returns component metadata.
func (c *Component) Meta() component.Metadata {
	return component.Metadata{
		Name:        "assembler",
		Type:        "processor",
		Description: "Vehicle record assembler for catalog detail pages",
		Version:     "0.1.0",
	}
}

// InputPorts returns configured input port definitions.
func (c *Component) InputPorts() []component.Port {
	if c.config.Ports == nil {
		return []component.Port{}
	}

	ports := make([]component.Port, len(c.config.Ports.Inputs))
	for i, portDef := range c.config.Ports.Inputs {
		ports[i] = buildPort(portDef, component.DirectionInput)
	}
	return ports
}

// OutputPorts returns configured output port definitions.
func (c *Component) OutputPorts() []component.Port {
	if c.config.Ports == nil {
		return []component.Port{}
	}

	ports := make([]component.Port, len(c.config.Ports.Outputs))
	for i, portDef := range c.config.Ports.Outputs {
		ports[i] = buildPort(portDef, component.DirectionOutput)
	}
	return ports
}

// buildPort creates a component.Port from a PortDefinition.
func buildPort(portDef component.PortDefinition, direction component.Direction) component.Port {
	port := component.Port{
		Name:        portDef.Name,
		Direction:   direction,
		Required:    portDef.Required,
		Description: portDef.Description,
	}
	if portDef.Type == "jetstream" {
		port.Config = component.JetStreamPort{
			StreamName: portDef.StreamName,
			Subjects:   []string{portDef.Subject},
		}
	} else {
		port.Config = component.NATSPort{
			Subject: portDef.Subject,
		}
	}
	return port
}

// ConfigSchema returns the configuration schema.
func (c *Component) ConfigSchema() component.ConfigSchema {
	return assemblerSchema
}

// Health returns the current health status.
func (c *Component) Health() component.HealthStatus {
	c.mu.RLock()
	running := c.running
	startTime := c.startTime
	c.mu.RUnlock()

	return component.HealthStatus{
		Healthy:    running,
		LastCheck:  time.Now(),
		ErrorCount: int(c.errors.Load()),
		Uptime:     time.Since(startTime),
		Status:     c.getStatusString(running),
	}
}

// getStatusString returns a status string based on running state.
func (c *Component) getStatusString(running bool) string {
	if running {
		return "running"
	}
	return "stopped"
}

// DataFlow returns current data flow metrics.
func (c *Component) DataFlow() component.FlowMetrics {
	return component.FlowMetrics{
		MessagesPerSecond: 0,
		BytesPerSecond:    0,
		ErrorRate:         0,
		LastActivity:      c.getLastActivity(),
	}
}

// AssembleRequest is the inbound message payload: one catalog car to
// assemble. RequestID is generated when the sender leaves it empty.
type AssembleRequest struct {
	RequestID string      `json:"request_id,omitempty"`
	Car       catalog.Car `json:"car"`
}
