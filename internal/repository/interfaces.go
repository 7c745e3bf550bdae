package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/hospital-api/internal/model"
)

// All repository interfaces in one file. Get returns a NotFound
// *errors.AppError when the id has no row. Inside Store.WithTx, Get
// locks the row until the transaction ends.
type (
	DoctorRepository interface {
		Create(ctx context.Context, doctor *model.Doctor) error
		Get(ctx context.Context, id int64) (*model.Doctor, error)
		List(ctx context.Context) ([]*model.Doctor, error)
		Count(ctx context.Context) (int, error)
	}

	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id int64) (*model.Patient, error)
		Update(ctx context.Context, patient *model.Patient) error
		List(ctx context.Context) ([]*model.Patient, error)
	}

	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id int64) (*model.Appointment, error)
		Update(ctx context.Context, appointment *model.Appointment) error
		List(ctx context.Context) ([]*model.Appointment, error)
	}

	PrescriptionRepository interface {
		Create(ctx context.Context, prescription *model.Prescription) error
		Get(ctx context.Context, id int64) (*model.Prescription, error)
		Update(ctx context.Context, prescription *model.Prescription) error
		List(ctx context.Context, filters *model.PrescriptionFilters) ([]*model.Prescription, error)
	}

	LabTestRepository interface {
		Create(ctx context.Context, labTest *model.LabTest) error
		Get(ctx context.Context, id int64) (*model.LabTest, error)
		Update(ctx context.Context, labTest *model.LabTest) error
		List(ctx context.Context, filters *model.LabTestFilters) ([]*model.LabTest, error)
	}

	// TimelineRepository has no update or delete.
	TimelineRepository interface {
		Append(ctx context.Context, event *model.TimelineEvent) error
		ListByPatient(ctx context.Context, patientID int64) ([]*model.TimelineEvent, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		// ClaimPending returns pending events oldest first. Inside a
		// transaction the rows stay locked and are skipped by other claimers.
		ClaimPending(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errorMessage *string) error
		CountPending(ctx context.Context) (int, error)
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}

	// Store groups the repositories over one connection or transaction.
	Store interface {
		Doctors() DoctorRepository
		Patients() PatientRepository
		Appointments() AppointmentRepository
		Prescriptions() PrescriptionRepository
		LabTests() LabTestRepository
		Timeline() TimelineRepository
		Outbox() OutboxRepository

		// WithTx runs fn against a transactional Store. fn's error rolls
		// everything back; nil commits.
		WithTx(ctx context.Context, fn func(Store) error) error
		Ping(ctx context.Context) error
	}
)
