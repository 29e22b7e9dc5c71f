package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dispatchline/delivery-console/api/responses"
	"github.com/dispatchline/delivery-console/api/validators"
	"github.com/dispatchline/delivery-console/internal/partners"
	"github.com/dispatchline/delivery-console/pkg/enums"
	pkgerrors "github.com/dispatchline/delivery-console/pkg/errors"
	"github.com/dispatchline/delivery-console/pkg/logger"
	"github.com/dispatchline/delivery-console/pkg/types"
)

type addPartnerRequest struct {
	Name    string                `json:"name" validate:"required"`
	Email   string                `json:"email" validate:"required,email"`
	Phone   string                `json:"phone" validate:"required"`
	Status  enums.PartnerStatus   `json:"status" validate:"required,oneof=active inactive"`
	Areas   []string              `json:"areas" validate:"required"`
	Shift   *types.Shift          `json:"shift" validate:"required"`
	Metrics *types.PartnerMetrics `json:"metrics"`
}

func (r addPartnerRequest) toInput() partners.CreatePartnerInput {
	input := partners.CreatePartnerInput{
		Name:    r.Name,
		Email:   r.Email,
		Phone:   r.Phone,
		Status:  r.Status,
		Areas:   r.Areas,
		Metrics: r.Metrics,
	}
	if r.Shift != nil {
		input.Shift = *r.Shift
	}
	return input
}

// updatePartnerRequest is the allow-list of partner fields an edit may touch.
type updatePartnerRequest struct {
	PartnerID   string                `json:"partnerId"`
	Name        *string               `json:"name" validate:"omitempty,min=1"`
	Email       *string               `json:"email" validate:"omitempty,email"`
	Phone       *string               `json:"phone" validate:"omitempty,min=1"`
	Status      *enums.PartnerStatus  `json:"status" validate:"omitempty,oneof=active inactive"`
	CurrentLoad *int                  `json:"currentLoad" validate:"omitempty,gte=0"`
	Areas       *[]string             `json:"areas"`
	Shift       *types.Shift          `json:"shift"`
	Metrics     *types.PartnerMetrics `json:"metrics"`
}

func (r updatePartnerRequest) toInput() partners.UpdatePartnerInput {
	return partners.UpdatePartnerInput{
		Name:        r.Name,
		Email:       r.Email,
		Phone:       r.Phone,
		Status:      r.Status,
		CurrentLoad: r.CurrentLoad,
		Areas:       r.Areas,
		Shift:       r.Shift,
		Metrics:     r.Metrics,
	}
}

// AddPartner registers a delivery partner.
func AddPartner(svc partners.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "partner service unavailable"))
			return
		}

		var req addPartnerRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		partner, err := svc.Create(r.Context(), req.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, "Partner added successfully.", types.Member("partner", partner))
	}
}

// GetAllPartners lists every partner.
func GetAllPartners(svc partners.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "partner service unavailable"))
			return
		}

		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, "All partners retrieved successfully", types.Member("partners", list))
	}
}

// GetPartnerDetails returns the partner named in the path.
func GetPartnerDetails(svc partners.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "partner service unavailable"))
			return
		}

		id, err := validators.ParseID(chi.URLParam(r, "partnerId"), "partnerId", "Partner ID is required.")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		partner, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, "Partner data retrieved successfully", types.Member("partner", partner))
	}
}

// UpdatePartner edits the allow-listed fields of the partner named by partnerId.
func UpdatePartner(svc partners.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "partner service unavailable"))
			return
		}

		var req updatePartnerRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := validators.ParseID(req.PartnerID, "partnerId", "Partner ID is required for updating.")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		partner, err := svc.Update(r.Context(), id, req.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, "Partner updated successfully.", types.Member("partner", partner))
	}
}
