package sink

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/c360studio/semstreams/component"
	"github.com/c360studio/semstreams/message"
)

func init() {
	err := component.RegisterPayload(&component.PayloadRegistration{
		Domain:      "vehicle",
		Category:    "record",
		Version:     "v1",
		Description: "Assembled vehicle record payload",
		Factory:     func() any { return &VehicleRecordPayload{} },
	})
	if err != nil {
		panic("failed to register VehicleRecordPayload: " + err.Error())
	}
}

// VehicleRecordType is the message type for assembled vehicle records.
var VehicleRecordType = message.Type{Domain: "vehicle", Category: "record", Version: "v1"}

// VehicleRecordPayload implements message.Payload for an assembled
// vehicle record.
type VehicleRecordPayload struct {
	EntityID    string         `json:"entity_id"`
	Fields      map[string]any `json:"fields"`
	Failed      []string       `json:"failed,omitempty"`
	AssembledAt time.Time      `json:"assembled_at"`
}

// Schema returns the message type for Payload interface.
func (p *VehicleRecordPayload) Schema() message.Type { return VehicleRecordType }

// Validate validates the payload for Payload interface.
func (p *VehicleRecordPayload) Validate() error {
	if p.EntityID == "" {
		return errors.New("entity ID is required")
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (p *VehicleRecordPayload) MarshalJSON() ([]byte, error) {
	type Alias VehicleRecordPayload
	return json.Marshal((*Alias)(p))
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *VehicleRecordPayload) UnmarshalJSON(data []byte) error {
	type Alias VehicleRecordPayload
	return json.Unmarshal(data, (*Alias)(p))
}
