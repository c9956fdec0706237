package outbox

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CurrentEnvelopeVersion is written on new rows. Readers accept any version
// from 1 up to this one.
const CurrentEnvelopeVersion = 1

// ErrEmptyData marks an envelope whose data is missing or JSON null.
var ErrEmptyData = errors.New("envelope data is empty")

// ActorRef identifies the operator who produced the event.
type ActorRef struct {
	UserID uuid.UUID `json:"userId"`
	Role   string    `json:"role,omitempty"`
}

// PayloadEnvelope is what outbox_events.payload holds and what subscribers
// receive as the message body.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Actor      *ActorRef       `json:"actor,omitempty"`
	Data       json.RawMessage `json:"data"`
}

// DecodeEnvelope parses a stored payload and checks the fields every
// consumer relies on.
func DecodeEnvelope(raw []byte) (PayloadEnvelope, error) {
	var envelope PayloadEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return PayloadEnvelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	if envelope.Version < 1 || envelope.Version > CurrentEnvelopeVersion {
		return PayloadEnvelope{}, fmt.Errorf("unsupported envelope version %d", envelope.Version)
	}
	if _, err := uuid.Parse(envelope.EventID); err != nil {
		return PayloadEnvelope{}, fmt.Errorf("invalid envelope event id %q", envelope.EventID)
	}
	return envelope, nil
}

// DecodeData unmarshals the event body into dest.
func (e PayloadEnvelope) DecodeData(dest any) error {
	trimmed := bytes.TrimSpace(e.Data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ErrEmptyData
	}
	if err := json.Unmarshal(trimmed, dest); err != nil {
		return fmt.Errorf("decode envelope data: %w", err)
	}
	return nil
}
