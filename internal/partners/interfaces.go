package partners

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dispatchline/delivery-console/pkg/db/models"
)

// Repository persists delivery partners.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, partner *models.Partner) error
	List(ctx context.Context) ([]models.Partner, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Partner, error)
	FindByEmail(ctx context.Context, email string) (*models.Partner, error)
	Update(ctx context.Context, partner *models.Partner, columns []string) error
}

// Service exposes the partner directory operations.
type Service interface {
	Create(ctx context.Context, input CreatePartnerInput) (*PartnerDTO, error)
	List(ctx context.Context) ([]PartnerDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*PartnerDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdatePartnerInput) (*PartnerDTO, error)
}
