package repository

import (
	"context"
	"fmt"

	"github.com/jwalitptl/hospital-api/pkg/errors"
)

// CheckPatient reports a missing patient as a validation error on the
// request field that referenced it.
func CheckPatient(ctx context.Context, s Store, id int64) error {
	if _, err := s.Patients().Get(ctx, id); err != nil {
		return reference(err, "patientId", "patient", id)
	}
	return nil
}

func CheckDoctor(ctx context.Context, s Store, id int64) error {
	if _, err := s.Doctors().Get(ctx, id); err != nil {
		return reference(err, "doctorId", "doctor", id)
	}
	return nil
}

func reference(err error, field, resource string, id int64) error {
	if errors.IsNotFound(err) {
		return errors.Validationf(field, "%s %d does not exist", resource, id)
	}
	return fmt.Errorf("failed to check %s: %w", resource, err)
}
