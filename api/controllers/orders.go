package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dispatchline/delivery-console/api/responses"
	"github.com/dispatchline/delivery-console/api/validators"
	"github.com/dispatchline/delivery-console/internal/orders"
	"github.com/dispatchline/delivery-console/pkg/enums"
	pkgerrors "github.com/dispatchline/delivery-console/pkg/errors"
	"github.com/dispatchline/delivery-console/pkg/logger"
	"github.com/dispatchline/delivery-console/pkg/types"
)

// createOrderRequest mirrors the dashboard's create form. totalAmount is
// accepted but the stored total is always computed from the items.
type createOrderRequest struct {
	CustomerDetails  *types.Customer        `json:"customerDetails" validate:"required"`
	Area             string                 `json:"area" validate:"required"`
	Items            []types.OrderItem      `json:"items" validate:"required,min=1,dive"`
	ScheduledFor     string                 `json:"scheduledFor" validate:"required"`
	TotalAmount      *float64               `json:"totalAmount"`
	PartnerID        string                 `json:"partnerId" validate:"required,uuid"`
	Reason           *string                `json:"reason"`
	AssignmentStatus enums.AssignmentStatus `json:"assignmentStatus" validate:"omitempty,oneof=success failed"`
}

func (r createOrderRequest) toInput() orders.CreateOrderInput {
	input := orders.CreateOrderInput{
		Area:             r.Area,
		Items:            r.Items,
		ScheduledFor:     r.ScheduledFor,
		PartnerID:        uuid.MustParse(r.PartnerID),
		Reason:           r.Reason,
		AssignmentStatus: r.AssignmentStatus,
	}
	if r.CustomerDetails != nil {
		input.Customer = *r.CustomerDetails
	}
	return input
}

// updateOrderRequest carries the editable order and assignment fields. The
// dashboard echoes orderId and partnerDetails back with its edits; both are
// read and ignored.
type updateOrderRequest struct {
	CustomerDetails  *types.Customer         `json:"customerDetails"`
	Area             *string                 `json:"area" validate:"omitempty,min=1"`
	Items            *[]types.OrderItem      `json:"items" validate:"omitempty,min=1,dive"`
	ScheduledFor     *string                 `json:"scheduledFor" validate:"omitempty,min=1"`
	TotalAmount      *float64                `json:"totalAmount"`
	PartnerID        *string                 `json:"partnerId" validate:"omitempty,uuid"`
	OrderStatus      *enums.OrderStatus      `json:"orderStatus"`
	Reason           *string                 `json:"reason"`
	AssignmentStatus *enums.AssignmentStatus `json:"assignmentStatus"`
	OrderID          json.RawMessage         `json:"orderId"`
	PartnerDetails   json.RawMessage         `json:"partnerDetails"`
}

func (r updateOrderRequest) toInput() orders.UpdateOrderInput {
	input := orders.UpdateOrderInput{
		Customer:         r.CustomerDetails,
		Area:             r.Area,
		Items:            r.Items,
		ScheduledFor:     r.ScheduledFor,
		TotalAmount:      r.TotalAmount,
		OrderStatus:      r.OrderStatus,
		Reason:           r.Reason,
		AssignmentStatus: r.AssignmentStatus,
	}
	if r.PartnerID != nil {
		id := uuid.MustParse(*r.PartnerID)
		input.PartnerID = &id
	}
	return input
}

type orderLookupRequest struct {
	OrderID string `json:"orderId"`
}

// CreateOrder records an order together with its companion assignment.
func CreateOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		var req createOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Create(r.Context(), req.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, "Order created successfully.", types.Member("data", result))
	}
}

// UpdateOrder edits the order in the path and its companion assignment.
func UpdateOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		id, err := validators.ParseID(chi.URLParam(r, "orderId"), "orderId", "Order ID is required.")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req updateOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Update(r.Context(), id, req.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, "Order and Assignment updated successfully.",
			types.Member("order", result.Order),
			types.Member("assigment", result.Assignment),
		)
	}
}

// GetSpecificOrderDetails returns the order named by orderId in the body.
func GetSpecificOrderDetails(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		var req orderLookupRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := validators.ParseID(req.OrderID, "orderId", "Order ID is required.")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, "Order details retrieved successfully.", types.Member("order", order))
	}
}

// GetAllOrders lists every order with its partner expanded.
func GetAllOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, "all orders details retrieved successfully.", types.Member("orders", list))
	}
}
