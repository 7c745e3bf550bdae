package workflow

import (
	"fmt"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/pkg/errors"
)

// PlanAppointmentCreate builds a new appointment and its scheduling event.
func PlanAppointmentCreate(req *model.CreateAppointmentRequest) (*model.Appointment, *model.TimelineEvent, error) {
	status, err := Appointments.CheckInitial(req.Status)
	if err != nil {
		return nil, nil, err
	}

	apt := &model.Appointment{
		PatientID: req.PatientID,
		DoctorID:  req.DoctorID,
		Time:      req.Time,
		Status:    status,
	}
	ev := newEvent(apt.PatientID, model.TimelineTypeReferral,
		"Appointment Scheduled", fmt.Sprintf("Scheduled for %s", apt.Time))
	return apt, ev, nil
}

// PlanAppointmentUpdate applies req to a copy of cur. A status change
// takes precedence over a reschedule when deciding the event.
func PlanAppointmentUpdate(cur *model.Appointment, req *model.UpdateAppointmentRequest) (*model.Appointment, *model.TimelineEvent, error) {
	if req.Status == nil && req.Time == nil && req.DoctorID == nil {
		return nil, nil, errors.Validation("", "update must change at least one field")
	}
	if Appointments.Frozen(cur.Status) {
		return nil, nil, errors.Validationf("status", "appointment %d is %s and can no longer change", cur.ID, cur.Status)
	}

	next := *cur
	if req.Time != nil {
		next.Time = *req.Time
	}
	if req.DoctorID != nil {
		next.DoctorID = *req.DoctorID
	}

	if req.Status != nil {
		if err := Appointments.Check(cur.Status, *req.Status); err != nil {
			return nil, nil, err
		}
		next.Status = *req.Status
		ev := newEvent(next.PatientID, model.TimelineTypeDoctor,
			fmt.Sprintf("Appointment %s", next.Status),
			fmt.Sprintf("Status changed to %s", next.Status))
		return &next, ev, nil
	}

	if req.Time == nil {
		ev := newEvent(next.PatientID, model.TimelineTypeDoctor,
			"Appointment Reassigned", fmt.Sprintf("Assigned to doctor %d", next.DoctorID))
		return &next, ev, nil
	}

	ev := newEvent(next.PatientID, model.TimelineTypeDoctor,
		"Appointment Rescheduled", fmt.Sprintf("Moved to %s", next.Time))
	return &next, ev, nil
}
