package partners

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dispatchline/delivery-console/internal/repo"
	"github.com/dispatchline/delivery-console/pkg/db/models"
)

type repository struct {
	base repo.Base
}

// NewRepository builds a partner repository bound to db.
func NewRepository(db *gorm.DB) Repository {
	return &repository{base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{base: r.base.WithTx(tx)}
}

func (r *repository) Create(ctx context.Context, partner *models.Partner) error {
	if partner == nil {
		return errors.New("partner is required")
	}
	return r.base.DB(ctx).Create(partner).Error
}

func (r *repository) List(ctx context.Context) ([]models.Partner, error) {
	var partners []models.Partner
	err := r.base.DB(ctx).
		Order("created_at ASC").
		Order("id ASC").
		Find(&partners).Error
	if err != nil {
		return nil, err
	}
	return partners, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Partner, error) {
	var partner models.Partner
	if err := r.base.DB(ctx).Where("id = ?", id).First(&partner).Error; err != nil {
		return nil, err
	}
	return &partner, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*models.Partner, error) {
	var partner models.Partner
	if err := r.base.DB(ctx).Where("email = ?", email).First(&partner).Error; err != nil {
		return nil, err
	}
	return &partner, nil
}

// Update writes only the named columns of partner; updated_at is always refreshed.
func (r *repository) Update(ctx context.Context, partner *models.Partner, columns []string) error {
	if partner == nil {
		return errors.New("partner is required")
	}
	if len(columns) == 0 {
		return nil
	}
	selected := append(append([]string{}, columns...), "updated_at")
	return r.base.DB(ctx).
		Model(partner).
		Select(selected).
		Updates(partner).Error
}
