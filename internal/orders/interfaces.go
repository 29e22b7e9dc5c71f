package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dispatchline/delivery-console/pkg/db/models"
)

// Repository persists orders and the assignment written alongside each one.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) error
	FindOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindOrderWithPartner(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListOrdersWithPartner(ctx context.Context) ([]models.Order, error)
	SaveOrder(ctx context.Context, order *models.Order) error
	CreateAssignment(ctx context.Context, assignment *models.Assignment) error
	FindAssignmentByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Assignment, error)
	SaveAssignment(ctx context.Context, assignment *models.Assignment) error
}

// PartnerFinder resolves the partner an order is assigned to.
type PartnerFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Partner, error)
}

// Service exposes the order ledger operations.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*CreateOrderResult, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateOrderInput) (*UpdateOrderResult, error)
	Get(ctx context.Context, id uuid.UUID) (*OrderDTO, error)
	List(ctx context.Context) ([]OrderDTO, error)
}
