package workflow

import (
	"github.com/go-playground/validator/v10"

	"github.com/jwalitptl/hospital-api/internal/model"
	pkgvalidator "github.com/jwalitptl/hospital-api/pkg/validator"
)

// NewValidator returns a request validator that knows the status tags
// backed by the transition tables.
func NewValidator() *pkgvalidator.Validator {
	v := pkgvalidator.New()
	for tag, fn := range StatusValidators() {
		if err := v.Register(tag, fn); err != nil {
			panic(err)
		}
	}
	return v
}

// StatusValidators maps validation tags to membership checks on the
// transition tables.
func StatusValidators() map[string]validator.Func {
	return map[string]validator.Func{
		"appointment_status": func(fl validator.FieldLevel) bool {
			return Appointments.Valid(model.AppointmentStatus(fl.Field().String()))
		},
		"prescription_status": func(fl validator.FieldLevel) bool {
			return Prescriptions.Valid(model.PrescriptionStatus(fl.Field().String()))
		},
		"labtest_status": func(fl validator.FieldLevel) bool {
			return LabTests.Valid(model.LabTestStatus(fl.Field().String()))
		},
	}
}
