package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type column of outbox_events.
type OutboxAggregateType string

const (
	AggregateDispatchOrder OutboxAggregateType = "dispatch_order"
	AggregateLedgerEntry   OutboxAggregateType = "ledger_entry"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateDispatchOrder,
	AggregateLedgerEntry,
}

// IsValid reports whether the value matches a known aggregate type.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type column of outbox_events.
type OutboxEventType string

const (
	EventDispatchOrderSubmitted OutboxEventType = "dispatch_order_submitted"
	EventDispatchOrderReverted  OutboxEventType = "dispatch_order_reverted"
	EventDispatchOrderConfirmed OutboxEventType = "dispatch_order_confirmed"
	EventDispatchOrderReturned  OutboxEventType = "dispatch_order_returned"
	EventDispatchOrderCancelled OutboxEventType = "dispatch_order_cancelled"
	EventPartyPaymentRecorded   OutboxEventType = "party_payment_recorded"
	EventLedgerEntryRecorded    OutboxEventType = "ledger_entry_recorded"
)

var validOutboxEventTypes = []OutboxEventType{
	EventDispatchOrderSubmitted,
	EventDispatchOrderReverted,
	EventDispatchOrderConfirmed,
	EventDispatchOrderReturned,
	EventDispatchOrderCancelled,
	EventPartyPaymentRecorded,
	EventLedgerEntryRecorded,
}

// IsValid reports whether the value matches a known event type.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}

// OutboxDLQErrorReason records why an outbox row was dead-lettered.
type OutboxDLQErrorReason string

const (
	OutboxDLQReasonNonRetryable OutboxDLQErrorReason = "non_retryable"
	OutboxDLQReasonMaxAttempts  OutboxDLQErrorReason = "max_attempts"
)
