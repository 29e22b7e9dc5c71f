package orders

import (
	"context"
	"errors"
	"io"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dispatchline/delivery-console/internal/partners"
	"github.com/dispatchline/delivery-console/pkg/db"
	"github.com/dispatchline/delivery-console/pkg/db/dbtest"
	"github.com/dispatchline/delivery-console/pkg/db/models"
	"github.com/dispatchline/delivery-console/pkg/enums"
	pkgerrors "github.com/dispatchline/delivery-console/pkg/errors"
	"github.com/dispatchline/delivery-console/pkg/logger"
	"github.com/dispatchline/delivery-console/pkg/outbox"
	"github.com/dispatchline/delivery-console/pkg/types"
)

type fixture struct {
	conn    *gorm.DB
	svc     *service
	partner models.Partner
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	return newFixtureWithRepo(t, nil)
}

func newFixtureWithRepo(t *testing.T, wrap func(Repository) Repository) fixture {
	t.Helper()
	conn := dbtest.Open(t)
	logg := logger.New(logger.Options{ServiceName: "orders-test", Output: io.Discard})

	partner := models.Partner{
		ID:     uuid.New(),
		Name:   "A",
		Email:  "a@x.com",
		Phone:  "1",
		Status: enums.PartnerStatusActive,
		Areas:  []string{"north"},
		Shift:  types.Shift{Start: "09:00", End: "17:00"},
	}
	require.NoError(t, conn.Create(&partner).Error)

	var repo Repository = NewRepository(conn)
	if wrap != nil {
		repo = wrap(repo)
	}
	built, err := NewService(repo, partners.NewRepository(conn), db.NewFromConn(conn), outbox.NewService(outbox.NewRepository(conn), logg), logg)
	require.NoError(t, err)
	return fixture{conn: conn, svc: built.(*service), partner: partner}
}

func (f fixture) createInput() CreateOrderInput {
	return CreateOrderInput{
		Customer:     types.Customer{Name: "C", Phone: "2", Address: "Street 1"},
		Area:         "north",
		Items:        []types.OrderItem{{Name: "x", Quantity: 2, Price: 50}, {Name: "y", Quantity: 1, Price: 30}},
		ScheduledFor: "2026-01-10T10:00",
		PartnerID:    f.partner.ID,
	}
}

func count(t *testing.T, conn *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, conn.Model(model).Count(&n).Error)
	return n
}

type failingAssignmentRepo struct {
	Repository
}

func (r failingAssignmentRepo) WithTx(tx *gorm.DB) Repository {
	return failingAssignmentRepo{Repository: r.Repository.WithTx(tx)}
}

func (r failingAssignmentRepo) CreateAssignment(context.Context, *models.Assignment) error {
	return errors.New("disk full")
}

func TestNewOrderNumberFormat(t *testing.T) {
	now := time.Date(2026, 1, 5, 4, 30, 7, 0, time.UTC)
	entropy := uuid.MustParse("abcdef01-0000-4000-8000-000000000000")

	assert.Equal(t, "ORD20260105100007-ABCDEF", newOrderNumber(now, entropy))
	assert.Regexp(t, regexp.MustCompile(`^ORD\d{14}-[0-9A-F]{6}$`), newOrderNumber(time.Now(), uuid.New()))
}

func TestTotalOf(t *testing.T) {
	total, err := totalOf([]types.OrderItem{{Quantity: 3, Price: 0.1}, {Quantity: 1, Price: 0.2}})
	require.NoError(t, err)
	assert.Equal(t, "0.5", total.String())

	total, err = totalOf([]types.OrderItem{{Quantity: 2, Price: 0.3333}})
	require.NoError(t, err)
	assert.Equal(t, "0.67", total.String())

	_, err = totalOf(nil)
	assert.ErrorIs(t, err, errNoItems)
}

func TestCreateWritesOrderAssignmentAndEvent(t *testing.T) {
	f := newFixture(t)
	f.svc.now = func() time.Time { return time.Date(2026, 1, 5, 4, 30, 7, 0, time.UTC) }

	input := f.createInput()
	result, err := f.svc.Create(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, 130.0, result.Order.TotalAmount)
	assert.Equal(t, enums.OrderStatusPending, result.Order.Status)
	assert.Contains(t, result.Order.OrderNumber, "ORD20260105100007-")
	assert.Equal(t, f.partner.ID, result.Order.AssignedTo.ID)
	assert.False(t, result.Order.AssignedTo.IsPopulated())

	assert.Equal(t, result.Order.ID, result.AssignmentDoc.OrderID.ID)
	assert.Equal(t, f.partner.ID, result.AssignmentDoc.PartnerID.ID)
	assert.Equal(t, enums.AssignmentStatusSuccess, result.AssignmentDoc.Status)
	assert.Nil(t, result.AssignmentDoc.Reason)

	assert.Equal(t, int64(1), count(t, f.conn, &models.Order{}))
	assert.Equal(t, int64(1), count(t, f.conn, &models.Assignment{}))

	var events []models.OutboxEvent
	require.NoError(t, f.conn.Find(&events).Error)
	require.Len(t, events, 1)
	assert.Equal(t, enums.EventOrderCreated, events[0].EventType)
}

func TestCreateKeepsFailedStatusAndReason(t *testing.T) {
	f := newFixture(t)
	input := f.createInput()
	input.AssignmentStatus = enums.AssignmentStatusFailed
	reason := "partner unavailable"
	input.Reason = &reason

	result, err := f.svc.Create(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, enums.AssignmentStatusFailed, result.AssignmentDoc.Status)
	require.NotNil(t, result.AssignmentDoc.Reason)
	assert.Equal(t, "partner unavailable", *result.AssignmentDoc.Reason)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)

	cases := map[string]func(*CreateOrderInput){
		"customer": func(in *CreateOrderInput) { in.Customer.Address = "" },
		"area":     func(in *CreateOrderInput) { in.Area = "" },
		"items":    func(in *CreateOrderInput) { in.Items = nil },
		"schedule": func(in *CreateOrderInput) { in.ScheduledFor = "" },
		"partner":  func(in *CreateOrderInput) { in.PartnerID = uuid.Nil },
		"quantity": func(in *CreateOrderInput) { in.Items[0].Quantity = 0 },
		"price":    func(in *CreateOrderInput) { in.Items[1].Price = -1 },
		"status":   func(in *CreateOrderInput) { in.AssignmentStatus = "maybe" },
	}
	for name, mutate := range cases {
		input := f.createInput()
		mutate(&input)
		_, err := f.svc.Create(context.Background(), input)
		require.Error(t, err, name)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), name)
	}
	assert.Zero(t, count(t, f.conn, &models.Order{}))
}

func TestCreateUnknownPartner(t *testing.T) {
	f := newFixture(t)
	input := f.createInput()
	input.PartnerID = uuid.New()

	_, err := f.svc.Create(context.Background(), input)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	assert.Zero(t, count(t, f.conn, &models.Order{}))
}

func TestCreateAssignmentFailureLeavesNoOrder(t *testing.T) {
	f := newFixtureWithRepo(t, func(r Repository) Repository { return failingAssignmentRepo{Repository: r} })

	_, err := f.svc.Create(context.Background(), f.createInput())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInternal))

	assert.Zero(t, count(t, f.conn, &models.Order{}))
	assert.Zero(t, count(t, f.conn, &models.Assignment{}))
	assert.Zero(t, count(t, f.conn, &models.OutboxEvent{}))
}

func TestUpdateAppliesFieldsAndRecomputesTotal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created, err := f.svc.Create(ctx, f.createInput())
	require.NoError(t, err)

	items := []types.OrderItem{{Name: "z", Quantity: 4, Price: 12.5}}
	area := "south"
	bogusTotal := 1.0
	status := enums.OrderStatusAssigned
	failed := enums.AssignmentStatusFailed
	reason := "late"
	result, err := f.svc.Update(ctx, created.Order.ID, UpdateOrderInput{
		Items:            &items,
		Area:             &area,
		TotalAmount:      &bogusTotal,
		OrderStatus:      &status,
		AssignmentStatus: &failed,
		Reason:           &reason,
	})
	require.NoError(t, err)

	assert.Equal(t, 50.0, result.Order.TotalAmount)
	assert.Equal(t, "south", result.Order.Area)
	assert.Equal(t, enums.OrderStatusAssigned, result.Order.Status)
	assert.Equal(t, enums.AssignmentStatusFailed, result.Assignment.Status)
	require.NotNil(t, result.Assignment.Reason)
	assert.Equal(t, "late", *result.Assignment.Reason)

	var stored models.Order
	require.NoError(t, f.conn.First(&stored, "id = ?", created.Order.ID).Error)
	assert.Equal(t, "50", stored.TotalAmount.String())
	assert.Equal(t, created.Order.OrderNumber, stored.OrderNumber)
}

func TestUpdatePartnerMovesOrderAndAssignment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created, err := f.svc.Create(ctx, f.createInput())
	require.NoError(t, err)

	other := models.Partner{ID: uuid.New(), Name: "B", Email: "b@x.com", Phone: "3", Status: enums.PartnerStatusActive, Areas: []string{}}
	require.NoError(t, f.conn.Create(&other).Error)

	result, err := f.svc.Update(ctx, created.Order.ID, UpdateOrderInput{PartnerID: &other.ID})
	require.NoError(t, err)
	assert.Equal(t, other.ID, result.Order.AssignedTo.ID)
	assert.Equal(t, other.ID, result.Assignment.PartnerID.ID)

	missing := uuid.New()
	_, err = f.svc.Update(ctx, created.Order.ID, UpdateOrderInput{PartnerID: &missing})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestUpdateStatusTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created, err := f.svc.Create(ctx, f.createInput())
	require.NoError(t, err)

	unknown := enums.OrderStatus("lost")
	_, err = f.svc.Update(ctx, created.Order.ID, UpdateOrderInput{OrderStatus: &unknown})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	same := enums.OrderStatusPending
	_, err = f.svc.Update(ctx, created.Order.ID, UpdateOrderInput{OrderStatus: &same})
	require.NoError(t, err)

	skip := enums.OrderStatusPicked
	_, err = f.svc.Update(ctx, created.Order.ID, UpdateOrderInput{OrderStatus: &skip})
	require.NoError(t, err)

	back := enums.OrderStatusAssigned
	_, err = f.svc.Update(ctx, created.Order.ID, UpdateOrderInput{OrderStatus: &back})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))

	done := enums.OrderStatusDelivered
	_, err = f.svc.Update(ctx, created.Order.ID, UpdateOrderInput{OrderStatus: &done})
	require.NoError(t, err)

	reopen := enums.OrderStatusPending
	_, err = f.svc.Update(ctx, created.Order.ID, UpdateOrderInput{OrderStatus: &reopen})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))
}

func TestUpdateRequiresFieldsAndExistingOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Update(ctx, uuid.New(), UpdateOrderInput{})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	assert.Equal(t, "Please provide at least one field to update.", pkgerrors.As(err).Message())

	area := "south"
	_, err = f.svc.Update(ctx, uuid.New(), UpdateOrderInput{Area: &area})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	assert.Equal(t, "Order not found.", pkgerrors.As(err).Message())

	_, err = f.svc.Update(ctx, uuid.Nil, UpdateOrderInput{Area: &area})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestUpdateWithoutAssignmentPersistsOrderEdit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created, err := f.svc.Create(ctx, f.createInput())
	require.NoError(t, err)
	require.NoError(t, f.conn.Exec("DELETE FROM assignments").Error)

	area := "east"
	_, err = f.svc.Update(ctx, created.Order.ID, UpdateOrderInput{Area: &area})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	assert.Equal(t, "Assignment not found.", pkgerrors.As(err).Message())

	var stored models.Order
	require.NoError(t, f.conn.First(&stored, "id = ?", created.Order.ID).Error)
	assert.Equal(t, "east", stored.Area)
}

func TestUpdateOrderRejectsEmptyItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created, err := f.svc.Create(ctx, f.createInput())
	require.NoError(t, err)

	empty := []types.OrderItem{}
	_, err = f.svc.Update(ctx, created.Order.ID, UpdateOrderInput{Items: &empty})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	var stored models.Order
	require.NoError(t, f.conn.First(&stored, "id = ?", created.Order.ID).Error)
	assert.Len(t, stored.Items, 2)
}

func TestUpdateOrderWithoutStoredItemsFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created, err := f.svc.Create(ctx, f.createInput())
	require.NoError(t, err)
	require.NoError(t, f.conn.Exec("UPDATE orders SET items = ? WHERE id = ?", "[]", created.Order.ID).Error)

	area := "south"
	_, err = f.svc.Update(ctx, created.Order.ID, UpdateOrderInput{Area: &area})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInternal))
	assert.Equal(t, "order has no items to total", pkgerrors.As(err).Message())

	var stored models.Order
	require.NoError(t, f.conn.First(&stored, "id = ?", created.Order.ID).Error)
	assert.Equal(t, "north", stored.Area)
}

func TestGetAndListPopulatePartner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created, err := f.svc.Create(ctx, f.createInput())
	require.NoError(t, err)

	got, err := f.svc.Get(ctx, created.Order.ID)
	require.NoError(t, err)
	require.True(t, got.AssignedTo.IsPopulated())
	assert.Equal(t, "a@x.com", got.AssignedTo.Value.Email)

	list, err := f.svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.True(t, list[0].AssignedTo.IsPopulated())
	assert.Equal(t, f.partner.ID, list[0].AssignedTo.Value.ID)

	_, err = f.svc.Get(ctx, uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
