package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/hospital-api/internal/model"
)

type timelineRepository struct {
	BaseRepository
}

func (r *timelineRepository) Append(ctx context.Context, event *model.TimelineEvent) error {
	query := `
		INSERT INTO timeline (patient_id, title, description, "type")
		VALUES ($1, $2, $3, $4)
		RETURNING id, "timestamp"
	`
	err := r.ext.QueryRowxContext(ctx, query,
		event.PatientID,
		event.Title,
		event.Description,
		event.Type,
	).Scan(&event.ID, &event.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to append timeline event: %w", err)
	}
	return nil
}

// ListByPatient returns events in insertion order.
func (r *timelineRepository) ListByPatient(ctx context.Context, patientID int64) ([]*model.TimelineEvent, error) {
	query := `
		SELECT id, patient_id, title, description, "type", "timestamp"
		FROM timeline
		WHERE patient_id = $1
		ORDER BY id ASC
	`
	events := []*model.TimelineEvent{}
	if err := sqlx.SelectContext(ctx, r.ext, &events, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list timeline: %w", err)
	}
	return events, nil
}
