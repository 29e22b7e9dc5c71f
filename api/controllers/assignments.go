package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dispatchline/delivery-console/api/responses"
	"github.com/dispatchline/delivery-console/api/validators"
	"github.com/dispatchline/delivery-console/internal/assignments"
	"github.com/dispatchline/delivery-console/pkg/enums"
	pkgerrors "github.com/dispatchline/delivery-console/pkg/errors"
	"github.com/dispatchline/delivery-console/pkg/logger"
	"github.com/dispatchline/delivery-console/pkg/types"
)

type updateAssignmentRequest struct {
	PartnerID        *string                 `json:"partnerId" validate:"omitempty,uuid"`
	Reason           *string                 `json:"reason"`
	AssignmentStatus *enums.AssignmentStatus `json:"assignmentStatus"`
}

func (r updateAssignmentRequest) toInput() assignments.UpdateAssignmentInput {
	input := assignments.UpdateAssignmentInput{
		Reason: r.Reason,
		Status: r.AssignmentStatus,
	}
	if r.PartnerID != nil {
		id := uuid.MustParse(*r.PartnerID)
		input.PartnerID = &id
	}
	return input
}

type assignmentLookupRequest struct {
	AssignmentID string `json:"assignmentId"`
}

// GetSpecificAssignmentDetails returns the assignment named by assignmentId in the body.
func GetSpecificAssignmentDetails(svc assignments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "assignment service unavailable"))
			return
		}

		var req assignmentLookupRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := validators.ParseID(req.AssignmentID, "assignmentId", "Assignment ID is required.")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		assignment, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, "ASSIGNMENT details retrieved successfully.", types.Member("assignment", assignment))
	}
}

// GetAllAssignmentsDetails lists every assignment with order and partner expanded.
func GetAllAssignmentsDetails(svc assignments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "assignment service unavailable"))
			return
		}

		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, "assignments details retrieved successfully.", types.Member("assignments", list))
	}
}

// UpdateAssignment edits the assignment named in the path.
func UpdateAssignment(svc assignments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "assignment service unavailable"))
			return
		}

		id, err := validators.ParseID(chi.URLParam(r, "assignmentId"), "assignmentId", "Assignment ID is required.")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req updateAssignmentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		assignment, err := svc.Update(r.Context(), id, req.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, "Assignment Details updated successfully.", types.Member("data", assignment))
	}
}
