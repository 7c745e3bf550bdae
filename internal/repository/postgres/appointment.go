package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/hospital-api/internal/model"
)

type appointmentRepository struct {
	BaseRepository
}

const appointmentColumns = `id, patient_id, doctor_id, "time", status`

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (patient_id, doctor_id, "time", status)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := sqlx.GetContext(ctx, r.ext, &appointment.ID, query,
		appointment.PatientID,
		appointment.DoctorID,
		appointment.Time,
		appointment.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id int64) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1` + r.lockClause()
	var appointment model.Appointment
	if err := sqlx.GetContext(ctx, r.ext, &appointment, query, id); err != nil {
		return nil, notFound(err, "appointment", id)
	}
	return &appointment, nil
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *model.Appointment) error {
	query := `
		UPDATE appointments
		SET doctor_id = $1, "time" = $2, status = $3
		WHERE id = $4
	`
	result, err := r.ext.ExecContext(ctx, query,
		appointment.DoctorID,
		appointment.Time,
		appointment.Status,
		appointment.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}
	return checkAffected(result, "appointment", appointment.ID)
}

func (r *appointmentRepository) List(ctx context.Context) ([]*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments ORDER BY id ASC`
	appointments := []*model.Appointment{}
	if err := sqlx.SelectContext(ctx, r.ext, &appointments, query); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}
