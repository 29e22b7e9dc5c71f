package orders

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dispatchline/delivery-console/pkg/db"
	"github.com/dispatchline/delivery-console/pkg/db/models"
	"github.com/dispatchline/delivery-console/pkg/enums"
	pkgerrors "github.com/dispatchline/delivery-console/pkg/errors"
	"github.com/dispatchline/delivery-console/pkg/logger"
	"github.com/dispatchline/delivery-console/pkg/outbox"
	"github.com/dispatchline/delivery-console/pkg/outbox/payloads"
	"github.com/dispatchline/delivery-console/pkg/types"
)

const (
	orderNumberConstraint = "order_number"
	assignmentConstraint  = "order_id"
	orderNumberLayout     = "20060102150405"
)

var errNoItems = errors.New("order has no items to total")

// totalScale matches the numeric(12,2) total_amount column.
const totalScale = 2

// orderClock is the zone order numbers are stamped in.
var orderClock = loadOrderClock()

func loadOrderClock() *time.Location {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		return time.FixedZone("IST", 5*60*60+30*60)
	}
	return loc
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo     Repository
	partners PartnerFinder
	tx       txRunner
	outbox   outbox.Emitter
	logg     *logger.Logger
	now      func() time.Time
}

// NewService builds the order ledger service.
func NewService(repo Repository, partners PartnerFinder, tx txRunner, emitter outbox.Emitter, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if partners == nil {
		return nil, fmt.Errorf("partner finder required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if emitter == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:     repo,
		partners: partners,
		tx:       tx,
		outbox:   emitter,
		logg:     logg,
		now:      time.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateOrderInput) (*CreateOrderResult, error) {
	input.Area = strings.TrimSpace(input.Area)
	input.ScheduledFor = strings.TrimSpace(input.ScheduledFor)
	if !customerComplete(input.Customer) || input.Area == "" || len(input.Items) == 0 ||
		input.ScheduledFor == "" || input.PartnerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Please fill in all fields")
	}
	if err := validateItems(input.Items); err != nil {
		return nil, err
	}

	status := input.AssignmentStatus
	if status == "" {
		status = enums.AssignmentStatusSuccess
	}
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "assignmentStatus must be success or failed")
	}

	total, err := totalOf(input.Items)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, err.Error())
	}
	if err := s.ensurePartner(ctx, input.PartnerID); err != nil {
		return nil, err
	}

	now := s.now()
	partnerID := input.PartnerID
	order := models.Order{
		ID:           uuid.New(),
		OrderNumber:  newOrderNumber(now, uuid.New()),
		Customer:     input.Customer,
		Area:         input.Area,
		Items:        input.Items,
		Status:       enums.OrderStatusPending,
		ScheduledFor: input.ScheduledFor,
		AssignedTo:   &partnerID,
		TotalAmount:  total,
	}
	assignment := models.Assignment{
		ID:         uuid.New(),
		OrderID:    order.ID,
		PartnerID:  partnerID,
		Status:     status,
		Reason:     normalizeReason(input.Reason),
		AssignedAt: now.UTC(),
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateOrder(ctx, &order); err != nil {
			if db.IsUniqueViolation(err, orderNumberConstraint) {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "order number already in use")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
		}
		if err := repo.CreateAssignment(ctx, &assignment); err != nil {
			if db.IsUniqueViolation(err, assignmentConstraint) {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "order already has an assignment")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create assignment")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Data: payloads.OrderCreatedEvent{
				OrderID:          order.ID,
				OrderNumber:      order.OrderNumber,
				AssignmentID:     assignment.ID,
				PartnerID:        partnerID,
				Area:             order.Area,
				TotalAmount:      order.TotalAmount.StringFixed(2),
				AssignmentStatus: assignment.Status,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithOrderID(ctx, order.ID.String())
	logCtx = s.logg.WithFields(logCtx, map[string]any{
		"order_number":  order.OrderNumber,
		"assignment_id": assignment.ID.String(),
		"partner_id":    partnerID.String(),
	})
	s.logg.Info(logCtx, "order.created")

	return &CreateOrderResult{
		Order:         FromOrder(order),
		AssignmentDoc: FromAssignment(assignment),
	}, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateOrderInput) (*UpdateOrderResult, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.MissingID("Order")
	}
	if input.IsEmpty() {
		return nil, pkgerrors.NothingToUpdate()
	}
	if err := validateUpdate(input); err != nil {
		return nil, err
	}
	if input.PartnerID != nil {
		if err := s.ensurePartner(ctx, *input.PartnerID); err != nil {
			return nil, err
		}
	}

	var (
		order             *models.Order
		assignment        *models.Assignment
		missingAssignment bool
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		found, err := repo.FindOrderByID(ctx, id)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.NotFound("Order")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
		}
		order = found
		previous := order.Status

		if err := applyOrderUpdate(order, input); err != nil {
			return err
		}
		total, err := totalOf(order.Items)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, err.Error())
		}
		order.TotalAmount = total

		if err := repo.SaveOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save order")
		}
		err = s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderUpdated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Data: payloads.OrderUpdatedEvent{
				OrderID:        order.ID,
				OrderNumber:    order.OrderNumber,
				PreviousStatus: previous,
				Status:         order.Status,
				AssignedTo:     order.AssignedTo,
				TotalAmount:    order.TotalAmount.StringFixed(2),
			},
		})
		if err != nil {
			return err
		}

		assignment, err = repo.FindAssignmentByOrderID(ctx, order.ID)
		if err != nil {
			if db.IsNotFound(err) {
				// the order edit still lands; the missing companion is reported after commit
				missingAssignment = true
				return nil
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load assignment")
		}
		applyAssignmentUpdate(assignment, input.PartnerID, input.Reason, input.AssignmentStatus)
		if err := repo.SaveAssignment(ctx, assignment); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save assignment")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithOrderID(ctx, order.ID.String())
	if missingAssignment {
		s.logg.Warn(logCtx, "order.updated.assignment_missing")
		return nil, pkgerrors.NotFound("Assignment")
	}
	s.logg.Info(s.logg.WithAssignmentID(logCtx, assignment.ID.String()), "order.updated")

	return &UpdateOrderResult{
		Order:      FromOrder(*order),
		Assignment: FromAssignment(*assignment),
	}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*OrderDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.MissingID("Order")
	}
	order, err := s.repo.FindOrderWithPartner(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.NotFound("Order")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	dto := FromOrder(*order)
	return &dto, nil
}

func (s *service) List(ctx context.Context) ([]OrderDTO, error) {
	rows, err := s.repo.ListOrdersWithPartner(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	out := make([]OrderDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromOrder(row))
	}
	return out, nil
}

func (s *service) ensurePartner(ctx context.Context, id uuid.UUID) error {
	if _, err := s.partners.FindByID(ctx, id); err != nil {
		if db.IsNotFound(err) {
			return pkgerrors.NotFound("Partner")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load partner")
	}
	return nil
}

// newOrderNumber stamps ORD<yyyyMMddHHmmss>-<6 hex> using the order clock zone.
func newOrderNumber(now time.Time, entropy uuid.UUID) string {
	suffix := strings.ToUpper(hex.EncodeToString(entropy[:3]))
	return "ORD" + now.In(orderClock).Format(orderNumberLayout) + "-" + suffix
}

// totalOf sums quantity x price over items, rounded to the stored cent scale.
func totalOf(items []types.OrderItem) (decimal.Decimal, error) {
	if len(items) == 0 {
		return decimal.Zero, errNoItems
	}
	total := decimal.Zero
	for _, item := range items {
		line := decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(line)
	}
	return total.Round(totalScale), nil
}

func customerComplete(c types.Customer) bool {
	return strings.TrimSpace(c.Name) != "" &&
		strings.TrimSpace(c.Phone) != "" &&
		strings.TrimSpace(c.Address) != ""
}

func validateItems(items []types.OrderItem) error {
	for i, item := range items {
		if strings.TrimSpace(item.Name) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("items[%d].name is required", i))
		}
		if item.Quantity < 1 {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("items[%d].quantity must be at least 1", i))
		}
		if item.Price < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("items[%d].price cannot be negative", i))
		}
	}
	return nil
}

func validateUpdate(input UpdateOrderInput) error {
	if input.Customer != nil && !customerComplete(*input.Customer) {
		return pkgerrors.New(pkgerrors.CodeValidation, "customerDetails requires name, phone and address")
	}
	if input.Area != nil && strings.TrimSpace(*input.Area) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "area cannot be empty")
	}
	if input.ScheduledFor != nil && strings.TrimSpace(*input.ScheduledFor) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "scheduledFor cannot be empty")
	}
	if input.Items != nil {
		if len(*input.Items) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "items must contain at least one item")
		}
		if err := validateItems(*input.Items); err != nil {
			return err
		}
	}
	if input.PartnerID != nil && *input.PartnerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "partnerId is invalid")
	}
	if input.OrderStatus != nil && !input.OrderStatus.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "orderStatus must be one of pending, assigned, picked, delivered")
	}
	if input.AssignmentStatus != nil && !input.AssignmentStatus.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "assignmentStatus must be success or failed")
	}
	return nil
}

func applyOrderUpdate(order *models.Order, input UpdateOrderInput) error {
	if input.Customer != nil {
		order.Customer = *input.Customer
	}
	if input.Area != nil {
		order.Area = strings.TrimSpace(*input.Area)
	}
	if input.Items != nil {
		order.Items = *input.Items
	}
	if input.ScheduledFor != nil {
		order.ScheduledFor = strings.TrimSpace(*input.ScheduledFor)
	}
	if input.PartnerID != nil {
		partnerID := *input.PartnerID
		order.AssignedTo = &partnerID
	}
	if input.OrderStatus != nil {
		next := *input.OrderStatus
		if !order.Status.CanTransitionTo(next) {
			return pkgerrors.IllegalTransition("order", order.Status, next)
		}
		order.Status = next
	}
	return nil
}

// applyAssignmentUpdate merges the supplied assignment fields. An empty reason clears it.
func applyAssignmentUpdate(a *models.Assignment, partnerID *uuid.UUID, reason *string, status *enums.AssignmentStatus) {
	if partnerID != nil {
		a.PartnerID = *partnerID
	}
	if reason != nil {
		a.Reason = normalizeReason(reason)
	}
	if status != nil {
		a.Status = *status
	}
}

func normalizeReason(reason *string) *string {
	if reason == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*reason)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
