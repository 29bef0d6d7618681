package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateQuoteRequest  OutboxAggregateType = "quote_request"
	AggregateQuoteResponse OutboxAggregateType = "quote_response"
	AggregateCounterOffer  OutboxAggregateType = "counter_offer"
	AggregateProduct       OutboxAggregateType = "product"
	AggregateNotification  OutboxAggregateType = "notification"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateQuoteRequest,
	AggregateQuoteResponse,
	AggregateCounterOffer,
	AggregateProduct,
	AggregateNotification,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
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

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventQuoteRequestSubmitted  OutboxEventType = "quote_request_submitted"
	EventQuoteRequestCancelled  OutboxEventType = "quote_request_cancelled"
	EventQuoteRequestExpired    OutboxEventType = "quote_request_expired"
	EventQuoteRequestDeleted    OutboxEventType = "quote_request_deleted"
	EventQuoteResponseSubmitted OutboxEventType = "quote_response_submitted"
	EventQuoteResponseAccepted  OutboxEventType = "quote_response_accepted"
	EventQuoteResponseRejected  OutboxEventType = "quote_response_rejected"
	EventCounterOfferSubmitted  OutboxEventType = "counter_offer_submitted"
	EventPrivatePriceChanged    OutboxEventType = "private_price_changed"
	EventNotificationRequested  OutboxEventType = "notification_requested"
)

var validOutboxEventTypes = []OutboxEventType{
	EventQuoteRequestSubmitted,
	EventQuoteRequestCancelled,
	EventQuoteRequestExpired,
	EventQuoteRequestDeleted,
	EventQuoteResponseSubmitted,
	EventQuoteResponseAccepted,
	EventQuoteResponseRejected,
	EventCounterOfferSubmitted,
	EventPrivatePriceChanged,
	EventNotificationRequested,
}

// IsValid reports whether the value matches the canonical event_type enum.
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
