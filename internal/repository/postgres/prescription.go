package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/hospital-api/internal/model"
)

type prescriptionRepository struct {
	BaseRepository
}

const prescriptionColumns = `id, patient_id, doctor_id, medicines, status, created_at`

func (r *prescriptionRepository) Create(ctx context.Context, rx *model.Prescription) error {
	query := `
		INSERT INTO prescriptions (patient_id, doctor_id, medicines, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := r.ext.QueryRowxContext(ctx, query,
		rx.PatientID,
		rx.DoctorID,
		rx.Medicines,
		rx.Status,
	).Scan(&rx.ID, &rx.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create prescription: %w", err)
	}
	return nil
}

func (r *prescriptionRepository) Get(ctx context.Context, id int64) (*model.Prescription, error) {
	query := `SELECT ` + prescriptionColumns + ` FROM prescriptions WHERE id = $1` + r.lockClause()
	var rx model.Prescription
	if err := sqlx.GetContext(ctx, r.ext, &rx, query, id); err != nil {
		return nil, notFound(err, "prescription", id)
	}
	return &rx, nil
}

func (r *prescriptionRepository) Update(ctx context.Context, rx *model.Prescription) error {
	query := `UPDATE prescriptions SET medicines = $1, status = $2 WHERE id = $3`
	result, err := r.ext.ExecContext(ctx, query, rx.Medicines, rx.Status, rx.ID)
	if err != nil {
		return fmt.Errorf("failed to update prescription: %w", err)
	}
	return checkAffected(result, "prescription", rx.ID)
}

func (r *prescriptionRepository) List(ctx context.Context, filters *model.PrescriptionFilters) ([]*model.Prescription, error) {
	query := `SELECT ` + prescriptionColumns + ` FROM prescriptions`
	args := []interface{}{}

	if filters != nil && filters.PatientID != nil {
		query += ` WHERE patient_id = $1`
		args = append(args, *filters.PatientID)
	}
	query += ` ORDER BY id ASC`

	prescriptions := []*model.Prescription{}
	if err := sqlx.SelectContext(ctx, r.ext, &prescriptions, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list prescriptions: %w", err)
	}
	return prescriptions, nil
}
