package assignments

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

// NewRepository builds an assignment repository bound to db.
func NewRepository(db *gorm.DB) Repository {
	return &repository{base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{base: r.base.WithTx(tx)}
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Assignment, error) {
	var assignment models.Assignment
	if err := r.base.DB(ctx).Where("id = ?", id).First(&assignment).Error; err != nil {
		return nil, err
	}
	return &assignment, nil
}

// FindWithRefs loads the assignment with its order and partner.
func (r *repository) FindWithRefs(ctx context.Context, id uuid.UUID) (*models.Assignment, error) {
	var assignment models.Assignment
	err := r.base.DB(ctx).
		Preload("Order").
		Preload("Partner").
		Where("id = ?", id).
		First(&assignment).Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *repository) ListWithRefs(ctx context.Context) ([]models.Assignment, error) {
	var rows []models.Assignment
	err := r.base.DB(ctx).
		Preload("Order").
		Preload("Partner").
		Order("assigned_at ASC").
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) Save(ctx context.Context, assignment *models.Assignment) error {
	if assignment == nil {
		return errors.New("assignment is required")
	}
	return r.base.DB(ctx).Omit(clause.Associations).Save(assignment).Error
}
