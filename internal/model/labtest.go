package model

import "time"

type LabTestStatus string

const (
	LabTestStatusRequested LabTestStatus = "requested"
	LabTestStatusCollected LabTestStatus = "collected"
	LabTestStatusTesting   LabTestStatus = "testing"
	LabTestStatusCompleted LabTestStatus = "completed"
)

type LabTest struct {
	ID        int64         `db:"id" json:"id"`
	PatientID int64         `db:"patient_id" json:"patientId"`
	DoctorID  int64         `db:"doctor_id" json:"doctorId"`
	TestName  string        `db:"test_name" json:"testName"`
	Status    LabTestStatus `db:"status" json:"status"`
	Result    *string       `db:"result" json:"result"`
	CreatedAt time.Time     `db:"created_at" json:"createdAt"`
}

type LabTestFilters struct {
	PatientID *int64
}

type CreateLabTestRequest struct {
	PatientID int64         `json:"patientId" validate:"required,gt=0"`
	DoctorID  int64         `json:"doctorId" validate:"required,gt=0"`
	TestName  string        `json:"testName" validate:"required"`
	Status    LabTestStatus `json:"status" validate:"omitempty,labtest_status"`
	Result    *string       `json:"result"`
}

type UpdateLabTestRequest struct {
	TestName *string        `json:"testName" validate:"omitempty,min=1"`
	Status   *LabTestStatus `json:"status" validate:"omitempty,labtest_status"`
	Result   *string        `json:"result"`
}
