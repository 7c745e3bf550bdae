package model

import (
	"database/sql/driver"
	"time"
)

type PrescriptionStatus string

const (
	PrescriptionStatusPending   PrescriptionStatus = "pending"
	PrescriptionStatusDispensed PrescriptionStatus = "dispensed"
)

type Medicine struct {
	Name        string `json:"name" validate:"required"`
	Dosage      string `json:"dosage"`
	Timing      string `json:"timing"`
	Dispensed   bool   `json:"dispensed"`
	Unavailable bool   `json:"unavailable,omitempty"`
}

// Processed reports whether the pharmacy has acted on the item.
func (m Medicine) Processed() bool {
	return m.Dispensed || m.Unavailable
}

// Medicines keeps item order; updates replace the whole list.
type Medicines []Medicine

func (m Medicines) Value() (driver.Value, error) {
	if m == nil {
		m = Medicines{}
	}
	return jsonValue(m)
}

func (m *Medicines) Scan(src interface{}) error {
	return scanJSON(src, m)
}

type Prescription struct {
	ID        int64              `db:"id" json:"id"`
	PatientID int64              `db:"patient_id" json:"patientId"`
	DoctorID  int64              `db:"doctor_id" json:"doctorId"`
	Medicines Medicines          `db:"medicines" json:"medicines"`
	Status    PrescriptionStatus `db:"status" json:"status"`
	CreatedAt time.Time          `db:"created_at" json:"createdAt"`
}

type PrescriptionFilters struct {
	PatientID *int64
}

type CreatePrescriptionRequest struct {
	PatientID int64              `json:"patientId" validate:"required,gt=0"`
	DoctorID  int64              `json:"doctorId" validate:"required,gt=0"`
	Medicines Medicines          `json:"medicines" validate:"required,min=1,dive"`
	Status    PrescriptionStatus `json:"status" validate:"omitempty,prescription_status"`
}

type UpdatePrescriptionRequest struct {
	Medicines Medicines           `json:"medicines" validate:"omitempty,min=1,dive"`
	Status    *PrescriptionStatus `json:"status" validate:"omitempty,prescription_status"`
}
