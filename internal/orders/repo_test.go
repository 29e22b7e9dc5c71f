package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dispatchline/delivery-console/pkg/db"
	"github.com/dispatchline/delivery-console/pkg/db/dbtest"
	"github.com/dispatchline/delivery-console/pkg/db/models"
	"github.com/dispatchline/delivery-console/pkg/enums"
	"github.com/dispatchline/delivery-console/pkg/types"
)

func seedOrder(t *testing.T, repo Repository, number string) models.Order {
	t.Helper()
	order := models.Order{
		ID:           uuid.New(),
		OrderNumber:  number,
		Customer:     types.Customer{Name: "C", Phone: "2", Address: "Street 1"},
		Area:         "north",
		Items:        []types.OrderItem{{Name: "x", Quantity: 1, Price: 10}},
		Status:       enums.OrderStatusPending,
		ScheduledFor: "tomorrow",
		TotalAmount:  decimal.NewFromInt(10),
	}
	require.NoError(t, repo.CreateOrder(context.Background(), &order))
	return order
}

func TestRepositoryOrderNumberIsUnique(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	seedOrder(t, repo, "ORD1")

	dup := models.Order{ID: uuid.New(), OrderNumber: "ORD1", Area: "n", ScheduledFor: "s", TotalAmount: decimal.Zero}
	err := repo.CreateOrder(context.Background(), &dup)
	require.Error(t, err)
	assert.True(t, db.IsUniqueViolation(err, orderNumberConstraint))
}

func TestRepositoryOneAssignmentPerOrder(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	ctx := context.Background()
	order := seedOrder(t, repo, "ORD2")

	first := models.Assignment{ID: uuid.New(), OrderID: order.ID, PartnerID: uuid.New(), Status: enums.AssignmentStatusSuccess, AssignedAt: time.Now().UTC()}
	require.NoError(t, repo.CreateAssignment(ctx, &first))

	second := models.Assignment{ID: uuid.New(), OrderID: order.ID, PartnerID: uuid.New(), Status: enums.AssignmentStatusFailed, AssignedAt: time.Now().UTC()}
	err := repo.CreateAssignment(ctx, &second)
	require.Error(t, err)
	assert.True(t, db.IsUniqueViolation(err, assignmentConstraint))

	found, err := repo.FindAssignmentByOrderID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)
}

func TestRepositoryRoundTripsJSONColumns(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	ctx := context.Background()
	order := seedOrder(t, repo, "ORD3")

	found, err := repo.FindOrderByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.Customer, found.Customer)
	assert.Equal(t, order.Items, found.Items)
	assert.True(t, found.TotalAmount.Equal(decimal.NewFromInt(10)))
	assert.Nil(t, found.AssignedTo)

	found.Area = "south"
	require.NoError(t, repo.SaveOrder(ctx, found))
	reloaded, err := repo.FindOrderWithPartner(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "south", reloaded.Area)
	assert.Nil(t, reloaded.Partner)
}
