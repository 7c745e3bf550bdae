package workflow

import (
	"fmt"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/pkg/errors"
)

// DerivePrescriptionStatus returns dispensed once every medicine has been
// either dispensed or marked unavailable, regardless of the mix.
func DerivePrescriptionStatus(meds model.Medicines) model.PrescriptionStatus {
	if len(meds) == 0 {
		return model.PrescriptionStatusPending
	}
	for _, m := range meds {
		if !m.Processed() {
			return model.PrescriptionStatusPending
		}
	}
	return model.PrescriptionStatusDispensed
}

func countMedicines(meds model.Medicines) (dispensed, unavailable, processed int) {
	for _, m := range meds {
		switch {
		case m.Dispensed:
			dispensed++
		case m.Unavailable:
			unavailable++
		}
	}
	return dispensed, unavailable, dispensed + unavailable
}

func PlanPrescriptionCreate(req *model.CreatePrescriptionRequest) (*model.Prescription, *model.TimelineEvent, error) {
	status, err := Prescriptions.CheckInitial(req.Status)
	if err != nil {
		return nil, nil, err
	}
	if len(req.Medicines) == 0 {
		return nil, nil, errors.Validation("medicines", "prescription needs at least one medicine")
	}
	for i, m := range req.Medicines {
		if m.Name == "" {
			return nil, nil, errors.Validationf(fmt.Sprintf("medicines[%d].name", i), "medicine %d has no name", i+1)
		}
		if m.Processed() {
			return nil, nil, errors.Validationf(fmt.Sprintf("medicines[%d]", i), "medicine %q cannot be processed before the prescription is issued", m.Name)
		}
	}

	rx := &model.Prescription{
		PatientID: req.PatientID,
		DoctorID:  req.DoctorID,
		Medicines: append(model.Medicines(nil), req.Medicines...),
		Status:    status,
	}
	ev := newEvent(rx.PatientID, model.TimelineTypePharmacy,
		"Prescription Issued", fmt.Sprintf("Prescribed %s.", pluralize(len(rx.Medicines), "medicine")))
	return rx, ev, nil
}

// PlanPrescriptionUpdate replaces the medicine list when one is given and
// re-derives the status from it. A caller-supplied status must agree
// with the derived one.
func PlanPrescriptionUpdate(cur *model.Prescription, req *model.UpdatePrescriptionRequest) (*model.Prescription, *model.TimelineEvent, error) {
	if req.Medicines == nil && req.Status == nil {
		return nil, nil, errors.Validation("", "update must change at least one field")
	}

	if req.Medicines != nil && len(req.Medicines) == 0 {
		return nil, nil, errors.Validation("medicines", "medicines cannot be emptied; send the full list")
	}

	next := *cur
	if req.Medicines != nil {
		next.Medicines = append(model.Medicines(nil), req.Medicines...)
	}

	derived := DerivePrescriptionStatus(next.Medicines)
	_, _, processed := countMedicines(next.Medicines)
	if req.Status != nil && *req.Status != derived {
		return nil, nil, errors.Validationf("status", "status %s does not match medicines (%d of %d processed)",
			*req.Status, processed, len(next.Medicines))
	}
	if err := Prescriptions.Check(cur.Status, derived); err != nil {
		return nil, nil, err
	}
	next.Status = derived

	if derived == model.PrescriptionStatusDispensed {
		dispensed, unavailable, _ := countMedicines(next.Medicines)
		ev := newEvent(next.PatientID, model.TimelineTypePharmacy,
			"Medicines Dispensed", fmt.Sprintf("%d dispensed, %d unavailable.", dispensed, unavailable))
		return &next, ev, nil
	}

	ev := newEvent(next.PatientID, model.TimelineTypePharmacy,
		"Prescription Updated", fmt.Sprintf("%d of %s processed.", processed, pluralize(len(next.Medicines), "medicine")))
	return &next, ev, nil
}
