package model

import (
	"database/sql/driver"
	"time"
)

// Patient status is free text; these are the values the dashboards use.
const (
	PatientStatusWaiting    = "waiting"
	PatientStatusConsulting = "consulting"
	PatientStatusDischarged = "discharged"
)

// Vitals is the latest snapshot recorded by nursing staff. Values are
// kept as entered ("120/80", "98.6").
type Vitals struct {
	BP     string `json:"bp"`
	HR     string `json:"hr"`
	Temp   string `json:"temp"`
	Weight string `json:"weight"`
}

func (v Vitals) Value() (driver.Value, error) {
	return jsonValue(v)
}

func (v *Vitals) Scan(src interface{}) error {
	return scanJSON(src, v)
}

type Patient struct {
	ID            int64     `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	Age           int       `db:"age" json:"age"`
	Gender        string    `db:"gender" json:"gender"`
	Condition     *string   `db:"condition" json:"condition"`
	History       *string   `db:"history" json:"history"`
	Vitals        Vitals    `db:"vitals" json:"vitals"`
	Status        string    `db:"status" json:"status"`
	AdmissionDate time.Time `db:"admission_date" json:"admissionDate"`
}

type CreatePatientRequest struct {
	Name      string  `json:"name" validate:"required"`
	Age       int     `json:"age" validate:"gte=0,lte=150"`
	Gender    string  `json:"gender" validate:"required"`
	Condition *string `json:"condition"`
	History   *string `json:"history"`
	Vitals    *Vitals `json:"vitals"`
	Status    string  `json:"status"`
}

// UpdatePatientRequest is a shallow patch: nil fields keep their stored
// value, a non-nil Vitals replaces the whole snapshot.
type UpdatePatientRequest struct {
	Name      *string `json:"name" validate:"omitempty,min=1"`
	Age       *int    `json:"age" validate:"omitempty,gte=0,lte=150"`
	Gender    *string `json:"gender" validate:"omitempty,min=1"`
	Condition *string `json:"condition"`
	History   *string `json:"history"`
	Vitals    *Vitals `json:"vitals"`
	Status    *string `json:"status" validate:"omitempty,min=1"`
}

// Apply merges the patch over p.
func (r *UpdatePatientRequest) Apply(p *Patient) {
	if r.Name != nil {
		p.Name = *r.Name
	}
	if r.Age != nil {
		p.Age = *r.Age
	}
	if r.Gender != nil {
		p.Gender = *r.Gender
	}
	if r.Condition != nil {
		p.Condition = r.Condition
	}
	if r.History != nil {
		p.History = r.History
	}
	if r.Vitals != nil {
		p.Vitals = *r.Vitals
	}
	if r.Status != nil {
		p.Status = *r.Status
	}
}
