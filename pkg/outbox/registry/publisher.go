package registry

import (
	"fmt"

	"github.com/angelmondragon/importops-backend/pkg/config"
	"github.com/angelmondragon/importops-backend/pkg/db/models"
	"github.com/angelmondragon/importops-backend/pkg/enums"
	"github.com/angelmondragon/importops-backend/pkg/outbox"
	"github.com/angelmondragon/importops-backend/pkg/outbox/payloads"
	"github.com/google/uuid"
)

// EventDescriptor links an event type to its aggregate, topic and payload schema.
type EventDescriptor struct {
	EventType      enums.OutboxEventType
	AggregateType  enums.OutboxAggregateType
	Topic          string
	PayloadFactory func() any
}

// ResolvedEvent is the result of decoding an outbox row.
type ResolvedEvent struct {
	Descriptor EventDescriptor
	Envelope   outbox.PayloadEnvelope
	Payload    any
}

type EventRegistry struct {
	entries map[enums.OutboxEventType]EventDescriptor
}

// NonRetryableError signals the publisher should stop retrying a row.
type NonRetryableError struct {
	Err error
}

func (e NonRetryableError) Error() string {
	if e.Err == nil {
		return "non-retryable error"
	}
	return e.Err.Error()
}

func (e NonRetryableError) Unwrap() error {
	return e.Err
}

func NewNonRetryableError(err error) NonRetryableError {
	return NonRetryableError{Err: err}
}

// NewEventRegistry routes dispatch order events to the dispatch topic and
// ledger movements to the ledger topic.
func NewEventRegistry(cfg config.PubSubConfig) (*EventRegistry, error) {
	if cfg.DispatchTopic == "" {
		return nil, fmt.Errorf("dispatch topic is required")
	}
	if cfg.LedgerTopic == "" {
		return nil, fmt.Errorf("ledger topic is required")
	}

	reg := &EventRegistry{entries: make(map[enums.OutboxEventType]EventDescriptor)}
	statusEvent := func() any { return &payloads.DispatchOrderStatusEvent{} }

	for _, desc := range []EventDescriptor{
		{EventType: enums.EventDispatchOrderSubmitted, PayloadFactory: statusEvent},
		{EventType: enums.EventDispatchOrderReverted, PayloadFactory: statusEvent},
		{EventType: enums.EventDispatchOrderCancelled, PayloadFactory: statusEvent},
		{EventType: enums.EventDispatchOrderConfirmed, PayloadFactory: func() any { return &payloads.DispatchOrderConfirmedEvent{} }},
		{EventType: enums.EventDispatchOrderReturned, PayloadFactory: func() any { return &payloads.DispatchOrderReturnedEvent{} }},
	} {
		desc.AggregateType = enums.AggregateDispatchOrder
		desc.Topic = cfg.DispatchTopic
		reg.register(desc)
	}
	for _, desc := range []EventDescriptor{
		{EventType: enums.EventPartyPaymentRecorded, PayloadFactory: func() any { return &payloads.PartyPaymentRecordedEvent{} }},
		{EventType: enums.EventLedgerEntryRecorded, PayloadFactory: func() any { return &payloads.LedgerEntryRecordedEvent{} }},
	} {
		desc.AggregateType = enums.AggregateLedgerEntry
		desc.Topic = cfg.LedgerTopic
		reg.register(desc)
	}

	return reg, nil
}

func (r *EventRegistry) register(desc EventDescriptor) {
	if desc.PayloadFactory == nil {
		return
	}
	r.entries[desc.EventType] = desc
}

// Descriptor returns the registration for an event type.
func (r *EventRegistry) Descriptor(eventType enums.OutboxEventType) (EventDescriptor, bool) {
	desc, ok := r.entries[eventType]
	return desc, ok
}

// Resolve validates the row and decodes its typed payload.
func (r *EventRegistry) Resolve(event models.OutboxEvent) (*ResolvedEvent, error) {
	desc, ok := r.entries[event.EventType]
	if !ok {
		return nil, NewNonRetryableError(fmt.Errorf("unsupported event type %s", event.EventType))
	}
	if desc.AggregateType != event.AggregateType {
		return nil, NewNonRetryableError(fmt.Errorf("aggregate mismatch: expected %s got %s", desc.AggregateType, event.AggregateType))
	}
	if event.AggregateID == uuid.Nil {
		return nil, NewNonRetryableError(fmt.Errorf("missing aggregate_id"))
	}

	envelope, err := outbox.DecodeEnvelope(event.Payload)
	if err != nil {
		return nil, NewNonRetryableError(err)
	}

	payload := desc.PayloadFactory()
	if err := envelope.DecodeData(payload); err != nil {
		return nil, NewNonRetryableError(fmt.Errorf("decode %s payload: %w", event.EventType, err))
	}

	return &ResolvedEvent{
		Descriptor: desc,
		Envelope:   envelope,
		Payload:    payload,
	}, nil
}
