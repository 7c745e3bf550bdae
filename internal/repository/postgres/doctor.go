package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/hospital-api/internal/model"
)

type doctorRepository struct {
	BaseRepository
}

const doctorColumns = `id, name, qualification, specialization, experience, department, image_url`

func (r *doctorRepository) Create(ctx context.Context, doctor *model.Doctor) error {
	query := `
		INSERT INTO doctors (
			name, qualification, specialization, experience, department, image_url
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := sqlx.GetContext(ctx, r.ext, &doctor.ID, query,
		doctor.Name,
		doctor.Qualification,
		doctor.Specialization,
		doctor.Experience,
		doctor.Department,
		doctor.ImageURL,
	)
	if err != nil {
		return fmt.Errorf("failed to create doctor: %w", err)
	}
	return nil
}

func (r *doctorRepository) Get(ctx context.Context, id int64) (*model.Doctor, error) {
	query := `SELECT ` + doctorColumns + ` FROM doctors WHERE id = $1`
	var doctor model.Doctor
	if err := sqlx.GetContext(ctx, r.ext, &doctor, query, id); err != nil {
		return nil, notFound(err, "doctor", id)
	}
	return &doctor, nil
}

func (r *doctorRepository) List(ctx context.Context) ([]*model.Doctor, error) {
	query := `SELECT ` + doctorColumns + ` FROM doctors ORDER BY id ASC`
	doctors := []*model.Doctor{}
	if err := sqlx.SelectContext(ctx, r.ext, &doctors, query); err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	return doctors, nil
}

func (r *doctorRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := sqlx.GetContext(ctx, r.ext, &n, `SELECT COUNT(*) FROM doctors`); err != nil {
		return 0, fmt.Errorf("failed to count doctors: %w", err)
	}
	return n, nil
}
