package workflow

import (
	"fmt"
	"strings"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/pkg/errors"
)

// FormatVitals renders the snapshot used in "Vitals Updated" events.
func FormatVitals(v model.Vitals) string {
	return fmt.Sprintf("BP: %s, HR: %s, Temp: %s, Weight: %s", v.BP, v.HR, v.Temp, v.Weight)
}

// PlanPatientAdmit leaves the event's PatientID unset; it is known only
// once the row has been inserted.
func PlanPatientAdmit(req *model.CreatePatientRequest) (*model.Patient, *model.TimelineEvent, error) {
	p := &model.Patient{
		Name:      req.Name,
		Age:       req.Age,
		Gender:    req.Gender,
		Condition: req.Condition,
		History:   req.History,
		Status:    req.Status,
	}
	if req.Vitals != nil {
		p.Vitals = *req.Vitals
	}
	if p.Status == "" {
		p.Status = model.PatientStatusWaiting
	}

	desc := fmt.Sprintf("%s admitted", p.Name)
	if p.Condition != nil && *p.Condition != "" {
		desc = fmt.Sprintf("%s admitted with %s", p.Name, *p.Condition)
	}
	return p, newEvent(0, model.TimelineTypeReferral, "Patient Admitted", desc), nil
}

// PlanPatientUpdate never rejects values; vitals and status are free.
// The single event prefers vitals, then status, then a generic summary.
func PlanPatientUpdate(cur *model.Patient, req *model.UpdatePatientRequest) (*model.Patient, *model.TimelineEvent, error) {
	changed := changedPatientFields(req)
	if len(changed) == 0 {
		return nil, nil, errors.Validation("", "update must change at least one field")
	}

	next := *cur
	req.Apply(&next)

	switch {
	case req.Vitals != nil:
		return &next, newEvent(next.ID, model.TimelineTypeDoctor, "Vitals Updated", FormatVitals(next.Vitals)), nil
	case req.Status != nil:
		return &next, newEvent(next.ID, model.TimelineTypeDoctor,
			fmt.Sprintf("Patient %s", next.Status), fmt.Sprintf("Status changed to %s", next.Status)), nil
	default:
		return &next, newEvent(next.ID, model.TimelineTypeDoctor,
			"Patient Record Updated", fmt.Sprintf("Updated %s", strings.Join(changed, ", "))), nil
	}
}

func changedPatientFields(req *model.UpdatePatientRequest) []string {
	var fields []string
	if req.Name != nil {
		fields = append(fields, "name")
	}
	if req.Age != nil {
		fields = append(fields, "age")
	}
	if req.Gender != nil {
		fields = append(fields, "gender")
	}
	if req.Condition != nil {
		fields = append(fields, "condition")
	}
	if req.History != nil {
		fields = append(fields, "history")
	}
	if req.Vitals != nil {
		fields = append(fields, "vitals")
	}
	if req.Status != nil {
		fields = append(fields, "status")
	}
	return fields
}
