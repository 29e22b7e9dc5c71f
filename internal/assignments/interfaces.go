package assignments

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dispatchline/delivery-console/internal/orders"
	"github.com/dispatchline/delivery-console/pkg/db/models"
	"github.com/dispatchline/delivery-console/pkg/enums"
)

// Repository reads and edits the assignment log.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.Assignment, error)
	FindWithRefs(ctx context.Context, id uuid.UUID) (*models.Assignment, error)
	ListWithRefs(ctx context.Context) ([]models.Assignment, error)
	Save(ctx context.Context, assignment *models.Assignment) error
}

// PartnerFinder resolves the partner an assignment points at.
type PartnerFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Partner, error)
}

// Service exposes the standalone assignment operations.
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*orders.AssignmentDTO, error)
	List(ctx context.Context) ([]orders.AssignmentDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateAssignmentInput) (*orders.AssignmentDTO, error)
}

// UpdateAssignmentInput lists the editable assignment fields. An empty Reason clears it.
type UpdateAssignmentInput struct {
	PartnerID *uuid.UUID
	Reason    *string
	Status    *enums.AssignmentStatus
}

// IsEmpty reports whether no field was supplied.
func (in UpdateAssignmentInput) IsEmpty() bool {
	return in.PartnerID == nil && in.Reason == nil && in.Status == nil
}
