package patient

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

const kind = "patient"

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

func (s *Service) List(ctx context.Context) ([]*model.Patient, error) {
	return s.store.Patients().List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (*model.Patient, error) {
	return s.store.Patients().Get(ctx, id)
}

// Admit registers a patient and opens their timeline.
func (s *Service) Admit(ctx context.Context, req *model.CreatePatientRequest) (*model.Patient, error) {
	if err := s.validator.Validate(req); err != nil {
		s.metrics.ObserveTransition(kind, "admitted", err)
		return nil, err
	}

	var created *model.Patient
	err := s.projector.Apply(ctx, func(ctx context.Context, tx repository.Store) (*model.TimelineEvent, error) {
		p, ev, err := workflow.PlanPatientAdmit(req)
		if err != nil {
			return nil, err
		}
		if err := tx.Patients().Create(ctx, p); err != nil {
			return nil, err
		}
		ev.PatientID = p.ID
		created = p
		return ev, nil
	})
	s.metrics.ObserveTransition(kind, "admitted", err)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Patient admitted", "patient_id", created.ID)
	return created, nil
}

// Update merges the patch over the stored record. Vitals and status are
// free-form; the only rejection is an empty patch.
func (s *Service) Update(ctx context.Context, id int64, req *model.UpdatePatientRequest) (*model.Patient, error) {
	// patient status is free text, so the label only says what changed
	to := "none"
	switch {
	case req.Vitals != nil:
		to = "vitals"
	case req.Status != nil:
		to = "status"
	}

	if err := s.validator.Validate(req); err != nil {
		s.metrics.ObserveTransition(kind, to, err)
		return nil, err
	}

	var updated *model.Patient
	err := s.projector.Apply(ctx, func(ctx context.Context, tx repository.Store) (*model.TimelineEvent, error) {
		cur, err := tx.Patients().Get(ctx, id)
		if err != nil {
			return nil, err
		}

		next, ev, err := workflow.PlanPatientUpdate(cur, req)
		if err != nil {
			return nil, err
		}
		if err := tx.Patients().Update(ctx, next); err != nil {
			return nil, err
		}
		updated = next
		return ev, nil
	})
	s.metrics.ObserveTransition(kind, to, err)
	if err != nil {
		return nil, err
	}
	return updated, nil
}
