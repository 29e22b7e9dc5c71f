package orders

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dispatchline/delivery-console/internal/repo"
	"github.com/dispatchline/delivery-console/pkg/db/models"
)

type repository struct {
	base repo.Base
}

// NewRepository builds an order repository bound to db.
func NewRepository(db *gorm.DB) Repository {
	return &repository{base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{base: r.base.WithTx(tx)}
}

func (r *repository) CreateOrder(ctx context.Context, order *models.Order) error {
	if order == nil {
		return errors.New("order is required")
	}
	return r.base.DB(ctx).Omit(clause.Associations).Create(order).Error
}

func (r *repository) FindOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.base.DB(ctx).Where("id = ?", id).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindOrderWithPartner(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.base.DB(ctx).
		Preload("Partner").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListOrdersWithPartner(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := r.base.DB(ctx).
		Preload("Partner").
		Order("created_at ASC").
		Order("id ASC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// SaveOrder writes every column of order. Loaded associations are not touched.
func (r *repository) SaveOrder(ctx context.Context, order *models.Order) error {
	if order == nil {
		return errors.New("order is required")
	}
	return r.base.DB(ctx).Omit(clause.Associations).Save(order).Error
}

func (r *repository) CreateAssignment(ctx context.Context, assignment *models.Assignment) error {
	if assignment == nil {
		return errors.New("assignment is required")
	}
	return r.base.DB(ctx).Omit(clause.Associations).Create(assignment).Error
}

func (r *repository) FindAssignmentByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Assignment, error) {
	var assignment models.Assignment
	if err := r.base.DB(ctx).Where("order_id = ?", orderID).First(&assignment).Error; err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *repository) SaveAssignment(ctx context.Context, assignment *models.Assignment) error {
	if assignment == nil {
		return errors.New("assignment is required")
	}
	return r.base.DB(ctx).Omit(clause.Associations).Save(assignment).Error
}
