package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/hospital-api/internal/model"
)

type patientRepository struct {
	BaseRepository
}

const patientColumns = `id, name, age, gender, condition, history, vitals, status, admission_date`

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	query := `
		INSERT INTO patients (name, age, gender, condition, history, vitals, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, admission_date
	`
	err := r.ext.QueryRowxContext(ctx, query,
		patient.Name,
		patient.Age,
		patient.Gender,
		patient.Condition,
		patient.History,
		patient.Vitals,
		patient.Status,
	).Scan(&patient.ID, &patient.AdmissionDate)
	if err != nil {
		return fmt.Errorf("failed to create patient: %w", err)
	}
	return nil
}

func (r *patientRepository) Get(ctx context.Context, id int64) (*model.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE id = $1` + r.lockClause()
	var patient model.Patient
	if err := sqlx.GetContext(ctx, r.ext, &patient, query, id); err != nil {
		return nil, notFound(err, "patient", id)
	}
	return &patient, nil
}

func (r *patientRepository) Update(ctx context.Context, patient *model.Patient) error {
	query := `
		UPDATE patients
		SET name = $1, age = $2, gender = $3, condition = $4, history = $5, vitals = $6, status = $7
		WHERE id = $8
	`
	result, err := r.ext.ExecContext(ctx, query,
		patient.Name,
		patient.Age,
		patient.Gender,
		patient.Condition,
		patient.History,
		patient.Vitals,
		patient.Status,
		patient.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update patient: %w", err)
	}
	return checkAffected(result, "patient", patient.ID)
}

func (r *patientRepository) List(ctx context.Context) ([]*model.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients ORDER BY id ASC`
	patients := []*model.Patient{}
	if err := sqlx.SelectContext(ctx, r.ext, &patients, query); err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}
