package prescription

import (
	"context"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
	"github.com/jwalitptl/hospital-api/internal/service/timeline"
	"github.com/jwalitptl/hospital-api/internal/workflow"
	"github.com/jwalitptl/hospital-api/pkg/logger"
	"github.com/jwalitptl/hospital-api/pkg/metrics"
	"github.com/jwalitptl/hospital-api/pkg/validator"
)

const kind = "prescription"

type Service struct {
	store     repository.Store
	projector *timeline.Projector
	validator *validator.Validator
	logger    *logger.Logger
	metrics   *metrics.Metrics
}

func NewService(
	store repository.Store,
	projector *timeline.Projector,
	v *validator.Validator,
	log *logger.Logger,
	m *metrics.Metrics,
) *Service {
	return &Service{
		store:     store,
		projector: projector,
		validator: v,
		logger:    log,
		metrics:   m,
	}
}

func (s *Service) List(ctx context.Context, filters *model.PrescriptionFilters) ([]*model.Prescription, error) {
	return s.store.Prescriptions().List(ctx, filters)
}

func (s *Service) Issue(ctx context.Context, req *model.CreatePrescriptionRequest) (*model.Prescription, error) {
	to := string(req.Status)
	if to == "" {
		to = string(workflow.Prescriptions.Initial())
	}

	if err := s.validator.Validate(req); err != nil {
		s.metrics.ObserveTransition(kind, to, err)
		return nil, err
	}

	var created *model.Prescription
	err := s.projector.Apply(ctx, func(ctx context.Context, tx repository.Store) (*model.TimelineEvent, error) {
		if err := repository.CheckPatient(ctx, tx, req.PatientID); err != nil {
			return nil, err
		}
		if err := repository.CheckDoctor(ctx, tx, req.DoctorID); err != nil {
			return nil, err
		}

		rx, ev, err := workflow.PlanPrescriptionCreate(req)
		if err != nil {
			return nil, err
		}
		if err := tx.Prescriptions().Create(ctx, rx); err != nil {
			return nil, err
		}
		created = rx
		return ev, nil
	})
	s.metrics.ObserveTransition(kind, to, err)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update records pharmacy progress. The stored status always follows the
// medicine list; a repeated "all dispensed" update is accepted and logged
// to the timeline again.
func (s *Service) Update(ctx context.Context, id int64, req *model.UpdatePrescriptionRequest) (*model.Prescription, error) {
	if err := s.validator.Validate(req); err != nil {
		s.metrics.ObserveTransition(kind, "none", err)
		return nil, err
	}

	var updated *model.Prescription
	err := s.projector.Apply(ctx, func(ctx context.Context, tx repository.Store) (*model.TimelineEvent, error) {
		cur, err := tx.Prescriptions().Get(ctx, id)
		if err != nil {
			return nil, err
		}

		next, ev, err := workflow.PlanPrescriptionUpdate(cur, req)
		if err != nil {
			return nil, err
		}
		if err := tx.Prescriptions().Update(ctx, next); err != nil {
			return nil, err
		}
		updated = next
		return ev, nil
	})

	to := "none"
	if updated != nil {
		to = string(updated.Status)
	} else if req.Status != nil {
		to = string(*req.Status)
	}
	s.metrics.ObserveTransition(kind, to, err)
	if err != nil {
		return nil, err
	}

	if updated.Status == model.PrescriptionStatusDispensed {
		s.logger.Info("Prescription dispensed",
			"prescription_id", updated.ID,
			"patient_id", updated.PatientID)
	}
	return updated, nil
}
