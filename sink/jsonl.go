package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/c360studio/sawari/assembly"
)

// JSONLSink appends assembled records to a file, one JSON document
// per line. Writes are serialized and flushed per record so a crash
// loses at most the record being written.
type JSONLSink struct {
	mu      sync.Mutex
	file    *os.File
	enc     *json.Encoder
	written atomic.Int64
}

// NewJSONLSink opens (or creates) the output file for appending.
func NewJSONLSink(path string) (*JSONLSink, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open output file %s: %w", path, err)
	}
	return &JSONLSink{file: f, enc: json.NewEncoder(f)}, nil
}

// Write implements assembly.Sink.
func (s *JSONLSink) Write(_ context.Context, rec *assembly.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return fmt.Errorf("sink is closed")
	}
	if err := s.enc.Encode(recordDocument(rec)); err != nil {
		return fmt.Errorf("encode record %s: %w", rec.EntityID, err)
	}
	s.written.Add(1)
	return nil
}

// Written reports how many records have been appended.
func (s *JSONLSink) Written() int64 {
	return s.written.Load()
}

// Close syncs and closes the underlying file. Further writes fail.
func (s *JSONLSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return nil
	}
	f := s.file
	s.file = nil

	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("sync output file: %w", err)
	}
	return f.Close()
}

// recordDocument flattens a record into the line format: the merged
// fields plus bookkeeping keys that cannot collide with scraped data.
func recordDocument(rec *assembly.Record) map[string]any {
	doc := make(map[string]any, len(rec.Fields)+3)
	for k, v := range rec.Fields {
		doc[k] = v
	}
	doc["entity_id"] = rec.EntityID
	doc["assembled_at"] = rec.AssembledAt
	if len(rec.Failed) > 0 {
		doc["failed_fields"] = rec.Failed
	}
	return doc
}
