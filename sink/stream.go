package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"

	"github.com/c360studio/sawari/assembly"
	"github.com/c360studio/semstreams/message"
)

// Publisher abstracts the JetStream publish call so tests can stub
// the NATS client.
type Publisher interface {
	PublishToStream(ctx context.Context, subject string, data []byte) error
}

// StreamSink publishes assembled records to a JetStream subject. Each
// record becomes one message on <subjectPrefix>.<entityID>.
type StreamSink struct {
	publisher     Publisher
	subjectPrefix string
	source        string
	published     atomic.Int64
}

// NewStreamSink creates a sink publishing through the given client.
// source identifies the producer in the message envelope.
func NewStreamSink(publisher Publisher, subjectPrefix, source string) *StreamSink {
	if source == "" {
		source = "sawari"
	}
	return &StreamSink{
		publisher:     publisher,
		subjectPrefix: subjectPrefix,
		source:        source,
	}
}

// Write implements assembly.Sink.
func (s *StreamSink) Write(ctx context.Context, rec *assembly.Record) error {
	payload := &VehicleRecordPayload{
		EntityID:    rec.EntityID,
		Fields:      rec.Fields,
		Failed:      rec.Failed,
		AssembledAt: rec.AssembledAt,
	}

	msg := message.NewBaseMessage(VehicleRecordType, payload, s.source)
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal record message: %w", err)
	}

	subject := s.subjectPrefix + "." + rec.EntityID
	if err := s.publisher.PublishToStream(ctx, subject, data); err != nil {
		return fmt.Errorf("publish record %s: %w", rec.EntityID, err)
	}
	s.published.Add(1)
	return nil
}

// Published reports how many records have been published.
func (s *StreamSink) Published() int64 {
	return s.published.Load()
}
