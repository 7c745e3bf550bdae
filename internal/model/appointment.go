package model

type AppointmentStatus string

const (
	AppointmentStatusWaiting    AppointmentStatus = "waiting"
	AppointmentStatusInProgress AppointmentStatus = "in-progress"
	AppointmentStatusCompleted  AppointmentStatus = "completed"
)

// Appointment is a queue slot. Time is a display label such as "11:00 AM".
type Appointment struct {
	ID        int64             `db:"id" json:"id"`
	PatientID int64             `db:"patient_id" json:"patientId"`
	DoctorID  int64             `db:"doctor_id" json:"doctorId"`
	Time      string            `db:"time" json:"time"`
	Status    AppointmentStatus `db:"status" json:"status"`
}

type CreateAppointmentRequest struct {
	PatientID int64             `json:"patientId" validate:"required,gt=0"`
	DoctorID  int64             `json:"doctorId" validate:"required,gt=0"`
	Time      string            `json:"time" validate:"required"`
	Status    AppointmentStatus `json:"status" validate:"omitempty,appointment_status"`
}

type UpdateAppointmentRequest struct {
	Time     *string            `json:"time" validate:"omitempty,min=1"`
	DoctorID *int64             `json:"doctorId" validate:"omitempty,gt=0"`
	Status   *AppointmentStatus `json:"status" validate:"omitempty,appointment_status"`
}
