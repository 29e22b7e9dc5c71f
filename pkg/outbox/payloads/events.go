package payloads

import (
	"github.com/google/uuid"

	"github.com/dispatchline/delivery-console/pkg/enums"
)

// PartnerChangedEvent is emitted when a partner is added or edited.
type PartnerChangedEvent struct {
	PartnerID uuid.UUID           `json:"partnerId"`
	Email     string              `json:"email"`
	Status    enums.PartnerStatus `json:"status"`
	Fields    []string            `json:"fields,omitempty"`
}

// OrderCreatedEvent is emitted with the companion assignment of a new order.
type OrderCreatedEvent struct {
	OrderID          uuid.UUID              `json:"orderId"`
	OrderNumber      string                 `json:"orderNumber"`
	AssignmentID     uuid.UUID              `json:"assignmentId"`
	PartnerID        uuid.UUID              `json:"partnerId"`
	Area             string                 `json:"area"`
	TotalAmount      string                 `json:"totalAmount"`
	AssignmentStatus enums.AssignmentStatus `json:"assignmentStatus"`
}

// OrderUpdatedEvent is emitted after an order and its assignment are edited.
type OrderUpdatedEvent struct {
	OrderID        uuid.UUID         `json:"orderId"`
	OrderNumber    string            `json:"orderNumber"`
	PreviousStatus enums.OrderStatus `json:"previousStatus"`
	Status         enums.OrderStatus `json:"status"`
	AssignedTo     *uuid.UUID        `json:"assignedTo,omitempty"`
	TotalAmount    string            `json:"totalAmount"`
}

// AssignmentUpdatedEvent is emitted after a standalone assignment edit.
type AssignmentUpdatedEvent struct {
	AssignmentID uuid.UUID              `json:"assignmentId"`
	OrderID      uuid.UUID              `json:"orderId"`
	PartnerID    uuid.UUID              `json:"partnerId"`
	Status       enums.AssignmentStatus `json:"status"`
	Reason       *string                `json:"reason,omitempty"`
}
