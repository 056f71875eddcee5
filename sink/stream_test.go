package sink

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/sawari/assembly"
)

type fakePublisher struct {
	mu       sync.Mutex
	subjects []string
	payloads [][]byte
	err      error
}

func (f *fakePublisher) PublishToStream(_ context.Context, subject string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.subjects = append(f.subjects, subject)
	f.payloads = append(f.payloads, data)
	return nil
}

func TestStreamSinkPublishesPerEntitySubject(t *testing.T) {
	pub := &fakePublisher{}
	s := NewStreamSink(pub, "vehicle.assembled", "")

	err := s.Write(context.Background(), testRecord("tata-nexon"))
	require.NoError(t, err)
	require.Len(t, pub.subjects, 1)
	assert.Equal(t, "vehicle.assembled.tata-nexon", pub.subjects[0])
	assert.Equal(t, int64(1), s.Published())

	require.True(t, json.Valid(pub.payloads[0]), "published message must be JSON")
	body := string(pub.payloads[0])
	assert.Contains(t, body, `"tata-nexon"`)
	assert.Contains(t, body, `"reviews"`)
	assert.Contains(t, body, `"Tata"`)
}

func TestStreamSinkPublishError(t *testing.T) {
	pub := &fakePublisher{err: errors.New("stream unavailable")}
	s := NewStreamSink(pub, "vehicle.assembled", "sawari")

	err := s.Write(context.Background(), testRecord("tata-nexon"))
	require.Error(t, err)
	assert.Equal(t, int64(0), s.Published())
}

func TestVehicleRecordPayloadValidate(t *testing.T) {
	p := &VehicleRecordPayload{}
	assert.Error(t, p.Validate())

	p.EntityID = "tata-nexon"
	p.AssembledAt = time.Now()
	assert.NoError(t, p.Validate())
	assert.Equal(t, VehicleRecordType, p.Schema())
}

func TestMultiSinkFansOutAndJoinsErrors(t *testing.T) {
	good := &captureSink{}
	bad := sinkFunc(func(context.Context, *assembly.Record) error {
		return errors.New("disk full")
	})

	m := NewMultiSink(good, nil, bad)
	err := m.Write(context.Background(), testRecord("tata-nexon"))
	require.Error(t, err)
	assert.Len(t, good.records, 1, "healthy sink still receives the record")

	ok := NewMultiSink(good)
	require.NoError(t, ok.Write(context.Background(), testRecord("tata-tiago")))
	assert.Len(t, good.records, 2)
}

type captureSink struct {
	mu      sync.Mutex
	records []*assembly.Record
}

func (c *captureSink) Write(_ context.Context, rec *assembly.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, rec)
	return nil
}

type sinkFunc func(context.Context, *assembly.Record) error

func (f sinkFunc) Write(ctx context.Context, rec *assembly.Record) error {
	return f(ctx, rec)
}
