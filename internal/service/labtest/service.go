package labtest

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

const kind = "lab test"

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

func (s *Service) List(ctx context.Context, filters *model.LabTestFilters) ([]*model.LabTest, error) {
	return s.store.LabTests().List(ctx, filters)
}

func (s *Service) Request(ctx context.Context, req *model.CreateLabTestRequest) (*model.LabTest, error) {
	to := string(req.Status)
	if to == "" {
		to = string(workflow.LabTests.Initial())
	}

	if err := s.validator.Validate(req); err != nil {
		s.metrics.ObserveTransition(kind, to, err)
		return nil, err
	}

	var created *model.LabTest
	err := s.projector.Apply(ctx, func(ctx context.Context, tx repository.Store) (*model.TimelineEvent, error) {
		if err := repository.CheckPatient(ctx, tx, req.PatientID); err != nil {
			return nil, err
		}
		if err := repository.CheckDoctor(ctx, tx, req.DoctorID); err != nil {
			return nil, err
		}

		lt, ev, err := workflow.PlanLabTestCreate(req)
		if err != nil {
			return nil, err
		}
		if err := tx.LabTests().Create(ctx, lt); err != nil {
			return nil, err
		}
		created = lt
		return ev, nil
	})
	s.metrics.ObserveTransition(kind, to, err)
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *Service) Update(ctx context.Context, id int64, req *model.UpdateLabTestRequest) (*model.LabTest, error) {
	to := "none"
	if req.Status != nil {
		to = string(*req.Status)
	}

	if err := s.validator.Validate(req); err != nil {
		s.metrics.ObserveTransition(kind, to, err)
		return nil, err
	}

	var updated *model.LabTest
	err := s.projector.Apply(ctx, func(ctx context.Context, tx repository.Store) (*model.TimelineEvent, error) {
		cur, err := tx.LabTests().Get(ctx, id)
		if err != nil {
			return nil, err
		}

		next, ev, err := workflow.PlanLabTestUpdate(cur, req)
		if err != nil {
			return nil, err
		}
		if err := tx.LabTests().Update(ctx, next); err != nil {
			return nil, err
		}
		updated = next
		return ev, nil
	})
	s.metrics.ObserveTransition(kind, to, err)
	if err != nil {
		return nil, err
	}

	if updated.Status == model.LabTestStatusCompleted {
		s.logger.Info("Lab report ready",
			"lab_test_id", updated.ID,
			"patient_id", updated.PatientID,
			"test_name", updated.TestName)
	}
	return updated, nil
}
