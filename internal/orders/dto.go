package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/dispatchline/delivery-console/internal/partners"
	"github.com/dispatchline/delivery-console/pkg/db/models"
	"github.com/dispatchline/delivery-console/pkg/enums"
	"github.com/dispatchline/delivery-console/pkg/types"
)

// OrderDTO is the order record as the dashboard reads it. AssignedTo renders
// as the full partner when it was loaded.
type OrderDTO struct {
	ID           uuid.UUID                      `json:"_id"`
	OrderNumber  string                         `json:"orderNumber"`
	Customer     types.Customer                 `json:"customer"`
	Area         string                         `json:"area"`
	Items        []types.OrderItem              `json:"items"`
	Status       enums.OrderStatus              `json:"status"`
	ScheduledFor string                         `json:"scheduledFor"`
	AssignedTo   types.Ref[partners.PartnerDTO] `json:"assignedTo"`
	TotalAmount  float64                        `json:"totalAmount"`
	CreatedAt    time.Time                      `json:"createdAt"`
	UpdatedAt    time.Time                      `json:"updatedAt"`
}

// AssignmentDTO is the assignment record as the dashboard reads it.
type AssignmentDTO struct {
	ID        uuid.UUID                      `json:"_id"`
	OrderID   types.Ref[OrderDTO]            `json:"orderId"`
	PartnerID types.Ref[partners.PartnerDTO] `json:"partnerId"`
	Status    enums.AssignmentStatus         `json:"status"`
	Reason    *string                        `json:"reason"`
	Timestamp time.Time                      `json:"timestamp"`
	CreatedAt time.Time                      `json:"createdAt"`
	UpdatedAt time.Time                      `json:"updatedAt"`
}

// FromOrder maps a stored order onto its response shape.
func FromOrder(o models.Order) OrderDTO {
	items := o.Items
	if items == nil {
		items = []types.OrderItem{}
	}

	dto := OrderDTO{
		ID:           o.ID,
		OrderNumber:  o.OrderNumber,
		Customer:     o.Customer,
		Area:         o.Area,
		Items:        items,
		Status:       o.Status,
		ScheduledFor: o.ScheduledFor,
		TotalAmount:  o.TotalAmount.InexactFloat64(),
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
	if o.AssignedTo != nil {
		dto.AssignedTo = types.RefTo[partners.PartnerDTO](*o.AssignedTo)
		if o.Partner != nil {
			dto.AssignedTo = types.Populated(*o.AssignedTo, partners.FromModel(*o.Partner))
		}
	}
	return dto
}

// FromAssignment maps a stored assignment onto its response shape, expanding
// whichever of Order and Partner were loaded.
func FromAssignment(a models.Assignment) AssignmentDTO {
	dto := AssignmentDTO{
		ID:        a.ID,
		OrderID:   types.RefTo[OrderDTO](a.OrderID),
		PartnerID: types.RefTo[partners.PartnerDTO](a.PartnerID),
		Status:    a.Status,
		Reason:    a.Reason,
		Timestamp: a.AssignedAt,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
	if a.Order != nil {
		dto.OrderID = types.Populated(a.OrderID, FromOrder(*a.Order))
	}
	if a.Partner != nil {
		dto.PartnerID = types.Populated(a.PartnerID, partners.FromModel(*a.Partner))
	}
	return dto
}

// CreateOrderInput carries a new order and the outcome of assigning it.
type CreateOrderInput struct {
	Customer         types.Customer
	Area             string
	Items            []types.OrderItem
	ScheduledFor     string
	PartnerID        uuid.UUID
	Reason           *string
	AssignmentStatus enums.AssignmentStatus
}

// CreateOrderResult is the order together with its companion assignment.
type CreateOrderResult struct {
	Order         OrderDTO      `json:"order"`
	AssignmentDoc AssignmentDTO `json:"assignmentDoc"`
}

// UpdateOrderInput lists the editable order and assignment fields. Nil fields
// are left untouched. TotalAmount only counts toward the presence check; the
// stored total is always recomputed from the items.
type UpdateOrderInput struct {
	Customer         *types.Customer
	Area             *string
	Items            *[]types.OrderItem
	ScheduledFor     *string
	TotalAmount      *float64
	PartnerID        *uuid.UUID
	OrderStatus      *enums.OrderStatus
	Reason           *string
	AssignmentStatus *enums.AssignmentStatus
}

// IsEmpty reports whether no field was supplied.
func (in UpdateOrderInput) IsEmpty() bool {
	return in.Customer == nil && in.Area == nil && in.Items == nil && in.ScheduledFor == nil &&
		in.TotalAmount == nil && in.PartnerID == nil && in.OrderStatus == nil &&
		in.Reason == nil && in.AssignmentStatus == nil
}

// UpdateOrderResult is the edited order and its edited assignment.
type UpdateOrderResult struct {
	Order      OrderDTO
	Assignment AssignmentDTO
}
