package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/hospital-api/internal/repository"
	apperrors "github.com/jwalitptl/hospital-api/pkg/errors"
)

// BaseRepository provides common functionality for all repositories.
// ext is the pool outside a transaction and the *sqlx.Tx inside one.
type BaseRepository struct {
	db  *sqlx.DB
	ext sqlx.ExtContext
	tx  *sqlx.Tx
}

// NewBaseRepository creates a new base repository
func NewBaseRepository(db *sqlx.DB) BaseRepository {
	return BaseRepository{db: db, ext: db}
}

// GetDB returns the database instance
func (r *BaseRepository) GetDB() *sqlx.DB {
	return r.db
}

// lockClause makes single-row reads inside a transaction hold the row.
func (r *BaseRepository) lockClause() string {
	if r.tx != nil {
		return " FOR UPDATE"
	}
	return ""
}

// WithTx executes a function within a transaction
func (r *BaseRepository) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Store is the postgres-backed repository.Store.
type Store struct {
	BaseRepository
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{NewBaseRepository(db)}
}

func (s *Store) Doctors() repository.DoctorRepository { return &doctorRepository{s.BaseRepository} }

func (s *Store) Patients() repository.PatientRepository { return &patientRepository{s.BaseRepository} }

func (s *Store) Appointments() repository.AppointmentRepository {
	return &appointmentRepository{s.BaseRepository}
}

func (s *Store) Prescriptions() repository.PrescriptionRepository {
	return &prescriptionRepository{s.BaseRepository}
}

func (s *Store) LabTests() repository.LabTestRepository { return &labTestRepository{s.BaseRepository} }

func (s *Store) Timeline() repository.TimelineRepository { return &timelineRepository{s.BaseRepository} }

func (s *Store) Outbox() repository.OutboxRepository { return &outboxRepository{s.BaseRepository} }

// WithTx joins the current transaction when already inside one.
func (s *Store) WithTx(ctx context.Context, fn func(repository.Store) error) error {
	if s.tx != nil {
		return fn(s)
	}
	return s.BaseRepository.WithTx(ctx, func(tx *sqlx.Tx) error {
		return fn(&Store{BaseRepository{db: s.db, ext: tx, tx: tx}})
	})
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func notFound(err error, resource string, id interface{}) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NotFound(resource, id)
	}
	return fmt.Errorf("failed to get %s: %w", resource, err)
}

func checkAffected(result sql.Result, resource string, id interface{}) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound(resource, id)
	}
	return nil
}
