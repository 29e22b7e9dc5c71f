package enums

import "fmt"

// OutboxAggregateType names the record an outbox event describes.
type OutboxAggregateType string

const (
	AggregatePartner    OutboxAggregateType = "partner"
	AggregateOrder      OutboxAggregateType = "order"
	AggregateAssignment OutboxAggregateType = "assignment"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregatePartner,
	AggregateOrder,
	AggregateAssignment,
}

// IsValid reports whether the value is a known aggregate type.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// OutboxEventType names a domain event written to the outbox.
type OutboxEventType string

const (
	EventPartnerCreated    OutboxEventType = "partner_created"
	EventPartnerUpdated    OutboxEventType = "partner_updated"
	EventOrderCreated      OutboxEventType = "order_created"
	EventOrderUpdated      OutboxEventType = "order_updated"
	EventAssignmentUpdated OutboxEventType = "assignment_updated"
)

var validOutboxEventTypes = []OutboxEventType{
	EventPartnerCreated,
	EventPartnerUpdated,
	EventOrderCreated,
	EventOrderUpdated,
	EventAssignmentUpdated,
}

// IsValid reports whether the value is a known event type.
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
