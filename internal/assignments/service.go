package assignments

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dispatchline/delivery-console/internal/orders"
	"github.com/dispatchline/delivery-console/pkg/db"
	"github.com/dispatchline/delivery-console/pkg/db/models"
	"github.com/dispatchline/delivery-console/pkg/enums"
	pkgerrors "github.com/dispatchline/delivery-console/pkg/errors"
	"github.com/dispatchline/delivery-console/pkg/logger"
	"github.com/dispatchline/delivery-console/pkg/outbox"
	"github.com/dispatchline/delivery-console/pkg/outbox/payloads"
)

const msgLookupNotFound = "ASSIGNMENT not found."

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo     Repository
	partners PartnerFinder
	tx       txRunner
	outbox   outbox.Emitter
	logg     *logger.Logger
}

// NewService builds the assignment log service.
func NewService(repo Repository, partners PartnerFinder, tx txRunner, emitter outbox.Emitter, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("assignments repository required")
	}
	if partners == nil {
		return nil, fmt.Errorf("partner finder required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if emitter == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, partners: partners, tx: tx, outbox: emitter, logg: logg}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*orders.AssignmentDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.MissingID("Assignment")
	}
	assignment, err := s.repo.FindWithRefs(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgLookupNotFound)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load assignment")
	}
	dto := orders.FromAssignment(*assignment)
	return &dto, nil
}

func (s *service) List(ctx context.Context) ([]orders.AssignmentDTO, error) {
	rows, err := s.repo.ListWithRefs(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list assignments")
	}
	out := make([]orders.AssignmentDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, orders.FromAssignment(row))
	}
	return out, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateAssignmentInput) (*orders.AssignmentDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.MissingID("Assignment")
	}
	if input.IsEmpty() {
		return nil, pkgerrors.NothingToUpdate()
	}
	if input.Status != nil && !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "assignmentStatus must be success or failed")
	}
	if input.PartnerID != nil {
		if *input.PartnerID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "partnerId is invalid")
		}
		if _, err := s.partners.FindByID(ctx, *input.PartnerID); err != nil {
			if db.IsNotFound(err) {
				return nil, pkgerrors.NotFound("Partner")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load partner")
		}
	}

	var assignment *models.Assignment
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		found, err := repo.FindByID(ctx, id)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.NotFound("Assignment")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load assignment")
		}
		assignment = found

		if input.PartnerID != nil {
			assignment.PartnerID = *input.PartnerID
		}
		if input.Reason != nil {
			assignment.Reason = nil
			if reason := strings.TrimSpace(*input.Reason); reason != "" {
				assignment.Reason = &reason
			}
		}
		if input.Status != nil {
			assignment.Status = *input.Status
		}

		if err := repo.Save(ctx, assignment); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save assignment")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventAssignmentUpdated,
			AggregateType: enums.AggregateAssignment,
			AggregateID:   assignment.ID,
			Data: payloads.AssignmentUpdatedEvent{
				AssignmentID: assignment.ID,
				OrderID:      assignment.OrderID,
				PartnerID:    assignment.PartnerID,
				Status:       assignment.Status,
				Reason:       assignment.Reason,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithAssignmentID(ctx, assignment.ID.String())
	s.logg.Info(s.logg.WithOrderID(logCtx, assignment.OrderID.String()), "assignment.updated")
	dto := orders.FromAssignment(*assignment)
	return &dto, nil
}
