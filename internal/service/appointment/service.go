package appointment

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

const kind = "appointment"

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

func (s *Service) List(ctx context.Context) ([]*model.Appointment, error) {
	return s.store.Appointments().List(ctx)
}

// Schedule creates an appointment for an existing patient and doctor.
func (s *Service) Schedule(ctx context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	to := string(req.Status)
	if to == "" {
		to = string(workflow.Appointments.Initial())
	}

	if err := s.validator.Validate(req); err != nil {
		s.metrics.ObserveTransition(kind, to, err)
		return nil, err
	}

	var created *model.Appointment
	err := s.projector.Apply(ctx, func(ctx context.Context, tx repository.Store) (*model.TimelineEvent, error) {
		if err := repository.CheckPatient(ctx, tx, req.PatientID); err != nil {
			return nil, err
		}
		if err := repository.CheckDoctor(ctx, tx, req.DoctorID); err != nil {
			return nil, err
		}

		apt, ev, err := workflow.PlanAppointmentCreate(req)
		if err != nil {
			return nil, err
		}
		if err := tx.Appointments().Create(ctx, apt); err != nil {
			return nil, err
		}
		created = apt
		return ev, nil
	})
	s.metrics.ObserveTransition(kind, to, err)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Appointment scheduled",
		"appointment_id", created.ID,
		"patient_id", created.PatientID,
		"doctor_id", created.DoctorID)
	return created, nil
}

// Update moves an appointment along the queue or reschedules it.
func (s *Service) Update(ctx context.Context, id int64, req *model.UpdateAppointmentRequest) (*model.Appointment, error) {
	to := "none"
	if req.Status != nil {
		to = string(*req.Status)
	}

	if err := s.validator.Validate(req); err != nil {
		s.metrics.ObserveTransition(kind, to, err)
		return nil, err
	}

	var updated *model.Appointment
	err := s.projector.Apply(ctx, func(ctx context.Context, tx repository.Store) (*model.TimelineEvent, error) {
		cur, err := tx.Appointments().Get(ctx, id)
		if err != nil {
			return nil, err
		}

		next, ev, err := workflow.PlanAppointmentUpdate(cur, req)
		if err != nil {
			return nil, err
		}
		if req.DoctorID != nil {
			if err := repository.CheckDoctor(ctx, tx, *req.DoctorID); err != nil {
				return nil, err
			}
		}

		if err := tx.Appointments().Update(ctx, next); err != nil {
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
