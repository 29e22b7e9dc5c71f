package partners

import (
	"time"

	"github.com/google/uuid"

	"github.com/dispatchline/delivery-console/pkg/db/models"
	"github.com/dispatchline/delivery-console/pkg/enums"
	"github.com/dispatchline/delivery-console/pkg/types"
)

// PartnerDTO is the partner record as the dashboard reads it.
type PartnerDTO struct {
	ID          uuid.UUID            `json:"_id"`
	Name        string               `json:"name"`
	Email       string               `json:"email"`
	Phone       string               `json:"phone"`
	Status      enums.PartnerStatus  `json:"status"`
	CurrentLoad int                  `json:"currentLoad"`
	Areas       []string             `json:"areas"`
	Shift       types.Shift          `json:"shift"`
	Metrics     types.PartnerMetrics `json:"metrics"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

// FromModel maps a stored partner onto its response shape.
func FromModel(p models.Partner) PartnerDTO {
	areas := p.Areas
	if areas == nil {
		areas = []string{}
	}
	return PartnerDTO{
		ID:          p.ID,
		Name:        p.Name,
		Email:       p.Email,
		Phone:       p.Phone,
		Status:      p.Status,
		CurrentLoad: p.CurrentLoad,
		Areas:       areas,
		Shift:       p.Shift,
		Metrics:     p.Metrics,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// CreatePartnerInput carries a new partner. Metrics default to zeros when nil.
type CreatePartnerInput struct {
	Name    string
	Email   string
	Phone   string
	Status  enums.PartnerStatus
	Areas   []string
	Shift   types.Shift
	Metrics *types.PartnerMetrics
}

// UpdatePartnerInput lists every mutable partner field. Nil fields are left untouched.
type UpdatePartnerInput struct {
	Name        *string
	Email       *string
	Phone       *string
	Status      *enums.PartnerStatus
	CurrentLoad *int
	Areas       *[]string
	Shift       *types.Shift
	Metrics     *types.PartnerMetrics
}

// IsEmpty reports whether no field was supplied.
func (in UpdatePartnerInput) IsEmpty() bool {
	return in.Name == nil && in.Email == nil && in.Phone == nil && in.Status == nil &&
		in.CurrentLoad == nil && in.Areas == nil && in.Shift == nil && in.Metrics == nil
}
