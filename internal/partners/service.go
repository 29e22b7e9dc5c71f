package partners

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dispatchline/delivery-console/pkg/db"
	"github.com/dispatchline/delivery-console/pkg/db/models"
	"github.com/dispatchline/delivery-console/pkg/enums"
	pkgerrors "github.com/dispatchline/delivery-console/pkg/errors"
	"github.com/dispatchline/delivery-console/pkg/logger"
	"github.com/dispatchline/delivery-console/pkg/outbox"
	"github.com/dispatchline/delivery-console/pkg/outbox/payloads"
	"github.com/dispatchline/delivery-console/pkg/types"
)

const (
	msgDuplicateEmail = "Partner already exists with the given email"
	emailConstraint   = "email"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outbox.Emitter
	logg   *logger.Logger
}

// NewService builds the partner directory service.
func NewService(repo Repository, tx txRunner, emitter outbox.Emitter, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("partners repository required")
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
	return &service{repo: repo, tx: tx, outbox: emitter, logg: logg}, nil
}

func (s *service) Create(ctx context.Context, input CreatePartnerInput) (*PartnerDTO, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	input.Phone = strings.TrimSpace(input.Phone)
	if input.Name == "" || input.Email == "" || input.Phone == "" || input.Status == "" || input.Areas == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Please fill in all fields")
	}
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "status must be active or inactive")
	}

	metrics := types.PartnerMetrics{}
	if input.Metrics != nil {
		metrics = *input.Metrics
	}

	partner := models.Partner{
		ID:      uuid.New(),
		Name:    input.Name,
		Email:   input.Email,
		Phone:   input.Phone,
		Status:  input.Status,
		Areas:   input.Areas,
		Shift:   input.Shift,
		Metrics: metrics,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := s.ensureEmailFree(ctx, repo, partner.Email, uuid.Nil); err != nil {
			return err
		}
		if err := repo.Create(ctx, &partner); err != nil {
			if db.IsUniqueViolation(err, emailConstraint) {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, msgDuplicateEmail)
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create partner")
		}
		return s.outbox.Emit(ctx, tx, partnerEvent(enums.EventPartnerCreated, partner, nil))
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithPartnerID(ctx, partner.ID.String()), "partner.created")
	dto := FromModel(partner)
	return &dto, nil
}

func (s *service) List(ctx context.Context) ([]PartnerDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list partners")
	}
	out := make([]PartnerDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromModel(row))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*PartnerDTO, error) {
	partner, err := s.load(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	dto := FromModel(*partner)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdatePartnerInput) (*PartnerDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Partner ID is required for updating.")
	}

	var updated *models.Partner
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		partner, err := s.load(ctx, repo, id)
		if err != nil {
			return err
		}

		columns, err := applyUpdate(partner, input)
		if err != nil {
			return err
		}
		updated = partner
		if len(columns) == 0 {
			return nil
		}

		if input.Email != nil {
			if err := s.ensureEmailFree(ctx, repo, partner.Email, partner.ID); err != nil {
				return err
			}
		}
		if err := repo.Update(ctx, partner, columns); err != nil {
			if db.IsUniqueViolation(err, emailConstraint) {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, msgDuplicateEmail)
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update partner")
		}
		return s.outbox.Emit(ctx, tx, partnerEvent(enums.EventPartnerUpdated, *partner, columns))
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithPartnerID(ctx, updated.ID.String()), "partner.updated")
	dto := FromModel(*updated)
	return &dto, nil
}

func (s *service) load(ctx context.Context, repo Repository, id uuid.UUID) (*models.Partner, error) {
	partner, err := repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.NotFound("Partner")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load partner")
	}
	return partner, nil
}

// ensureEmailFree fails with a conflict when email belongs to a partner other than self.
func (s *service) ensureEmailFree(ctx context.Context, repo Repository, email string, self uuid.UUID) error {
	existing, err := repo.FindByEmail(ctx, email)
	if err != nil {
		if db.IsNotFound(err) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check partner email")
	}
	if existing.ID == self {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeConflict, msgDuplicateEmail)
}

// applyUpdate copies supplied fields onto partner and returns the touched columns.
func applyUpdate(partner *models.Partner, input UpdatePartnerInput) ([]string, error) {
	var columns []string

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		partner.Name = name
		columns = append(columns, "name")
	}
	if input.Email != nil {
		email := strings.TrimSpace(*input.Email)
		if email == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "email cannot be empty")
		}
		partner.Email = email
		columns = append(columns, "email")
	}
	if input.Phone != nil {
		phone := strings.TrimSpace(*input.Phone)
		if phone == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone cannot be empty")
		}
		partner.Phone = phone
		columns = append(columns, "phone")
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "status must be active or inactive")
		}
		partner.Status = *input.Status
		columns = append(columns, "status")
	}
	if input.CurrentLoad != nil {
		if *input.CurrentLoad < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "currentLoad cannot be negative")
		}
		partner.CurrentLoad = *input.CurrentLoad
		columns = append(columns, "current_load")
	}
	if input.Areas != nil {
		areas := *input.Areas
		if areas == nil {
			areas = []string{}
		}
		partner.Areas = areas
		columns = append(columns, "areas")
	}
	if input.Shift != nil {
		partner.Shift = *input.Shift
		columns = append(columns, "shift")
	}
	if input.Metrics != nil {
		partner.Metrics = *input.Metrics
		columns = append(columns, "metrics")
	}
	return columns, nil
}

func partnerEvent(eventType enums.OutboxEventType, partner models.Partner, fields []string) outbox.DomainEvent {
	return outbox.DomainEvent{
		EventType:     eventType,
		AggregateType: enums.AggregatePartner,
		AggregateID:   partner.ID,
		Data: payloads.PartnerChangedEvent{
			PartnerID: partner.ID,
			Email:     partner.Email,
			Status:    partner.Status,
			Fields:    fields,
		},
	}
}
