package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/hospital-api/internal/model"
)

type labTestRepository struct {
	BaseRepository
}

const labTestColumns = `id, patient_id, doctor_id, test_name, status, result, created_at`

func (r *labTestRepository) Create(ctx context.Context, lt *model.LabTest) error {
	query := `
		INSERT INTO lab_tests (patient_id, doctor_id, test_name, status, result)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := r.ext.QueryRowxContext(ctx, query,
		lt.PatientID,
		lt.DoctorID,
		lt.TestName,
		lt.Status,
		lt.Result,
	).Scan(&lt.ID, &lt.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create lab test: %w", err)
	}
	return nil
}

func (r *labTestRepository) Get(ctx context.Context, id int64) (*model.LabTest, error) {
	query := `SELECT ` + labTestColumns + ` FROM lab_tests WHERE id = $1` + r.lockClause()
	var lt model.LabTest
	if err := sqlx.GetContext(ctx, r.ext, &lt, query, id); err != nil {
		return nil, notFound(err, "lab test", id)
	}
	return &lt, nil
}

func (r *labTestRepository) Update(ctx context.Context, lt *model.LabTest) error {
	query := `UPDATE lab_tests SET test_name = $1, status = $2, result = $3 WHERE id = $4`
	result, err := r.ext.ExecContext(ctx, query, lt.TestName, lt.Status, lt.Result, lt.ID)
	if err != nil {
		return fmt.Errorf("failed to update lab test: %w", err)
	}
	return checkAffected(result, "lab test", lt.ID)
}

func (r *labTestRepository) List(ctx context.Context, filters *model.LabTestFilters) ([]*model.LabTest, error) {
	query := `SELECT ` + labTestColumns + ` FROM lab_tests`
	args := []interface{}{}

	if filters != nil && filters.PatientID != nil {
		query += ` WHERE patient_id = $1`
		args = append(args, *filters.PatientID)
	}
	query += ` ORDER BY id ASC`

	labTests := []*model.LabTest{}
	if err := sqlx.SelectContext(ctx, r.ext, &labTests, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list lab tests: %w", err)
	}
	return labTests, nil
}
