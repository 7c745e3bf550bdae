package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/pkg/errors"
)

func requireValidation(t *testing.T, err error, field string) {
	t.Helper()
	appErr, ok := errors.As(err)
	require.True(t, ok, "expected *AppError, got %v", err)
	assert.Equal(t, errors.ErrValidation, appErr.Code)
	assert.Equal(t, field, appErr.Field)
}

func TestPlanAppointmentCreate(t *testing.T) {
	apt, ev, err := PlanAppointmentCreate(&model.CreateAppointmentRequest{PatientID: 1, DoctorID: 2, Time: "10:00 AM"})
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusWaiting, apt.Status)
	assert.Equal(t, int64(1), ev.PatientID)
	assert.Equal(t, model.TimelineTypeReferral, ev.Type)
	assert.Equal(t, "Appointment Scheduled", ev.Title)

	_, _, err = PlanAppointmentCreate(&model.CreateAppointmentRequest{PatientID: 1, DoctorID: 2, Time: "x", Status: model.AppointmentStatusCompleted})
	requireValidation(t, err, "status")
}

func TestPlanAppointmentUpdateStatus(t *testing.T) {
	cur := &model.Appointment{ID: 5, PatientID: 9, DoctorID: 1, Time: "10:00 AM", Status: model.AppointmentStatusWaiting}

	next, ev, err := PlanAppointmentUpdate(cur, &model.UpdateAppointmentRequest{Status: statusPtr(model.AppointmentStatusInProgress)})
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusInProgress, next.Status)
	assert.Equal(t, model.AppointmentStatusWaiting, cur.Status, "current row must not be mutated")
	assert.Equal(t, model.TimelineTypeDoctor, ev.Type)
	assert.Equal(t, "Appointment in-progress", ev.Title)
	assert.Equal(t, "Status changed to in-progress", model.StringValue(ev.Description))
	assert.Equal(t, int64(9), ev.PatientID)
}

func TestPlanAppointmentUpdateRejectsSkipsAndReversals(t *testing.T) {
	waiting := &model.Appointment{ID: 1, Status: model.AppointmentStatusWaiting}
	_, _, err := PlanAppointmentUpdate(waiting, &model.UpdateAppointmentRequest{Status: statusPtr(model.AppointmentStatusCompleted)})
	requireValidation(t, err, "status")

	_, _, err = PlanAppointmentUpdate(waiting, &model.UpdateAppointmentRequest{Status: statusPtr(model.AppointmentStatusWaiting)})
	requireValidation(t, err, "status")

	inProgress := &model.Appointment{ID: 1, Status: model.AppointmentStatusInProgress}
	_, _, err = PlanAppointmentUpdate(inProgress, &model.UpdateAppointmentRequest{Status: statusPtr(model.AppointmentStatusWaiting)})
	requireValidation(t, err, "status")
}

func TestPlanAppointmentCompletedIsFrozen(t *testing.T) {
	done := &model.Appointment{ID: 1, Status: model.AppointmentStatusCompleted}
	newTime := "12:00 PM"
	_, _, err := PlanAppointmentUpdate(done, &model.UpdateAppointmentRequest{Time: &newTime})
	requireValidation(t, err, "status")
}

func TestPlanAppointmentReschedule(t *testing.T) {
	cur := &model.Appointment{ID: 1, PatientID: 3, Time: "10:00 AM", Status: model.AppointmentStatusWaiting}
	newTime := "02:30 PM"
	next, ev, err := PlanAppointmentUpdate(cur, &model.UpdateAppointmentRequest{Time: &newTime})
	require.NoError(t, err)
	assert.Equal(t, "02:30 PM", next.Time)
	assert.Equal(t, model.AppointmentStatusWaiting, next.Status)
	assert.Equal(t, "Appointment Rescheduled", ev.Title)
	assert.Equal(t, "Moved to 02:30 PM", model.StringValue(ev.Description))
}

func TestPlanAppointmentReassign(t *testing.T) {
	cur := &model.Appointment{ID: 1, PatientID: 3, DoctorID: 1, Time: "10:00 AM", Status: model.AppointmentStatusWaiting}
	doctorID := int64(2)
	next, ev, err := PlanAppointmentUpdate(cur, &model.UpdateAppointmentRequest{DoctorID: &doctorID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), next.DoctorID)
	assert.Equal(t, "10:00 AM", next.Time)
	assert.Equal(t, "Appointment Reassigned", ev.Title)
	assert.Equal(t, "Assigned to doctor 2", model.StringValue(ev.Description))

	newTime := "11:00 AM"
	_, ev, err = PlanAppointmentUpdate(cur, &model.UpdateAppointmentRequest{DoctorID: &doctorID, Time: &newTime})
	require.NoError(t, err)
	assert.Equal(t, "Appointment Rescheduled", ev.Title)
}

func TestPlanAppointmentEmptyPatch(t *testing.T) {
	_, _, err := PlanAppointmentUpdate(&model.Appointment{}, &model.UpdateAppointmentRequest{})
	requireValidation(t, err, "")
}

func meds(states ...string) model.Medicines {
	out := make(model.Medicines, 0, len(states))
	for i, s := range states {
		m := model.Medicine{Name: string(rune('A' + i)), Dosage: "1 tab", Timing: "morning"}
		switch s {
		case "d":
			m.Dispensed = true
		case "u":
			m.Unavailable = true
		}
		out = append(out, m)
	}
	return out
}

func TestDerivePrescriptionStatus(t *testing.T) {
	tests := []struct {
		name string
		meds model.Medicines
		want model.PrescriptionStatus
	}{
		{"empty", nil, model.PrescriptionStatusPending},
		{"none processed", meds("-", "-"), model.PrescriptionStatusPending},
		{"partial", meds("d", "-"), model.PrescriptionStatusPending},
		{"all dispensed", meds("d", "d"), model.PrescriptionStatusDispensed},
		{"mixed processed", meds("d", "u"), model.PrescriptionStatusDispensed},
		{"all unavailable", meds("u", "u"), model.PrescriptionStatusDispensed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DerivePrescriptionStatus(tt.meds))
		})
	}
}

func TestPlanPrescriptionCreate(t *testing.T) {
	rx, ev, err := PlanPrescriptionCreate(&model.CreatePrescriptionRequest{PatientID: 4, DoctorID: 1, Medicines: meds("-", "-")})
	require.NoError(t, err)
	assert.Equal(t, model.PrescriptionStatusPending, rx.Status)
	assert.Equal(t, "Prescription Issued", ev.Title)
	assert.Equal(t, "Prescribed 2 medicines.", model.StringValue(ev.Description))
	assert.Equal(t, model.TimelineTypePharmacy, ev.Type)

	_, _, err = PlanPrescriptionCreate(&model.CreatePrescriptionRequest{PatientID: 4, DoctorID: 1})
	requireValidation(t, err, "medicines")

	_, _, err = PlanPrescriptionCreate(&model.CreatePrescriptionRequest{PatientID: 4, DoctorID: 1, Medicines: meds("d")})
	requireValidation(t, err, "medicines[0]")

	_, _, err = PlanPrescriptionCreate(&model.CreatePrescriptionRequest{PatientID: 4, DoctorID: 1, Medicines: meds("-"), Status: model.PrescriptionStatusDispensed})
	requireValidation(t, err, "status")
}

func TestPlanPrescriptionPartialThenDispensed(t *testing.T) {
	cur := &model.Prescription{ID: 2, PatientID: 4, Medicines: meds("-", "-"), Status: model.PrescriptionStatusPending}

	next, ev, err := PlanPrescriptionUpdate(cur, &model.UpdatePrescriptionRequest{Medicines: meds("d", "-")})
	require.NoError(t, err)
	assert.Equal(t, model.PrescriptionStatusPending, next.Status)
	assert.Equal(t, "Prescription Updated", ev.Title)
	assert.Equal(t, "1 of 2 medicines processed.", model.StringValue(ev.Description))

	done, ev, err := PlanPrescriptionUpdate(next, &model.UpdatePrescriptionRequest{Medicines: meds("d", "u")})
	require.NoError(t, err)
	assert.Equal(t, model.PrescriptionStatusDispensed, done.Status)
	assert.Equal(t, "Medicines Dispensed", ev.Title)
	assert.Equal(t, "1 dispensed, 1 unavailable.", model.StringValue(ev.Description))
	assert.Equal(t, int64(4), ev.PatientID)
}

func TestPlanPrescriptionStatusMustMatchMedicines(t *testing.T) {
	cur := &model.Prescription{ID: 2, Medicines: meds("-", "-"), Status: model.PrescriptionStatusPending}
	dispensed := model.PrescriptionStatusDispensed

	_, _, err := PlanPrescriptionUpdate(cur, &model.UpdatePrescriptionRequest{Status: &dispensed})
	requireValidation(t, err, "status")

	_, _, err = PlanPrescriptionUpdate(cur, &model.UpdatePrescriptionRequest{Medicines: meds("d", "-"), Status: &dispensed})
	requireValidation(t, err, "status")
}

func TestPlanPrescriptionRejectsEmptyMedicines(t *testing.T) {
	cur := &model.Prescription{ID: 2, Medicines: meds("d", "-"), Status: model.PrescriptionStatusPending}
	_, _, err := PlanPrescriptionUpdate(cur, &model.UpdatePrescriptionRequest{Medicines: model.Medicines{}})
	requireValidation(t, err, "medicines")
	assert.Len(t, cur.Medicines, 2)
}

func TestPlanPrescriptionCannotRevert(t *testing.T) {
	cur := &model.Prescription{ID: 2, Medicines: meds("d", "d"), Status: model.PrescriptionStatusDispensed}
	_, _, err := PlanPrescriptionUpdate(cur, &model.UpdatePrescriptionRequest{Medicines: meds("d", "-")})
	requireValidation(t, err, "status")
}

func TestPlanPrescriptionRedispenseIsIdentical(t *testing.T) {
	cur := &model.Prescription{ID: 2, PatientID: 4, Medicines: meds("-", "-"), Status: model.PrescriptionStatusPending}
	dispensed := model.PrescriptionStatusDispensed
	req := &model.UpdatePrescriptionRequest{Medicines: meds("d", "d"), Status: &dispensed}

	first, ev1, err := PlanPrescriptionUpdate(cur, req)
	require.NoError(t, err)
	second, ev2, err := PlanPrescriptionUpdate(first, req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, ev1, ev2)
}

func TestPlanLabTestProgression(t *testing.T) {
	lt, ev, err := PlanLabTestCreate(&model.CreateLabTestRequest{PatientID: 7, DoctorID: 1, TestName: "CBC"})
	require.NoError(t, err)
	assert.Equal(t, model.LabTestStatusRequested, lt.Status)
	assert.Equal(t, "Lab Test Requested", ev.Title)
	assert.Equal(t, "Requested test: CBC", model.StringValue(ev.Description))

	steps := []struct {
		to     model.LabTestStatus
		result *string
		title  string
	}{
		{model.LabTestStatusCollected, nil, "Sample Collected"},
		{model.LabTestStatusTesting, nil, "Processing Started"},
		{model.LabTestStatusCompleted, model.StringPtr("Hb 13.5 g/dL"), "Lab Report Ready"},
	}
	for _, step := range steps {
		to := step.to
		lt, ev, err = PlanLabTestUpdate(lt, &model.UpdateLabTestRequest{Status: &to, Result: step.result})
		require.NoError(t, err, "to %s", to)
		assert.Equal(t, to, lt.Status)
		assert.Equal(t, step.title, ev.Title)
		assert.Equal(t, model.TimelineTypeLab, ev.Type)
		assert.Contains(t, model.StringValue(ev.Description), "CBC")
	}
	assert.Equal(t, "Hb 13.5 g/dL", model.StringValue(lt.Result))
}

func TestPlanLabTestCompletionNeedsResult(t *testing.T) {
	inTesting := &model.LabTest{ID: 1, TestName: "Lipid", Status: model.LabTestStatusTesting}
	completed := model.LabTestStatusCompleted

	_, _, err := PlanLabTestUpdate(inTesting, &model.UpdateLabTestRequest{Status: &completed})
	requireValidation(t, err, "result")

	_, _, err = PlanLabTestUpdate(inTesting, &model.UpdateLabTestRequest{Status: &completed, Result: model.StringPtr("   ")})
	requireValidation(t, err, "result")
}

func TestPlanLabTestCompletedFromRequestedRejected(t *testing.T) {
	requested := &model.LabTest{ID: 1, TestName: "CBC", Status: model.LabTestStatusRequested}
	completed := model.LabTestStatusCompleted

	_, _, err := PlanLabTestUpdate(requested, &model.UpdateLabTestRequest{Status: &completed})
	requireValidation(t, err, "status")
}

func TestPlanLabTestResultOnlyAtCompletion(t *testing.T) {
	requested := &model.LabTest{ID: 1, TestName: "CBC", Status: model.LabTestStatusRequested}
	collected := model.LabTestStatusCollected

	_, _, err := PlanLabTestUpdate(requested, &model.UpdateLabTestRequest{Status: &collected, Result: model.StringPtr("early")})
	requireValidation(t, err, "result")

	_, _, err = PlanLabTestUpdate(requested, &model.UpdateLabTestRequest{Result: model.StringPtr("early")})
	requireValidation(t, err, "result")

	_, _, err = PlanLabTestCreate(&model.CreateLabTestRequest{PatientID: 1, DoctorID: 1, TestName: "CBC", Result: model.StringPtr("early")})
	requireValidation(t, err, "result")
}

func TestPlanLabTestBlankResultIsEmptyPatch(t *testing.T) {
	requested := &model.LabTest{ID: 1, PatientID: 2, TestName: "CBC", Status: model.LabTestStatusRequested}
	for _, blank := range []string{"", "   "} {
		_, ev, err := PlanLabTestUpdate(requested, &model.UpdateLabTestRequest{Result: model.StringPtr(blank)})
		requireValidation(t, err, "")
		assert.Nil(t, ev)
	}
}

func TestPlanLabTestRenameAndFreeze(t *testing.T) {
	requested := &model.LabTest{ID: 1, PatientID: 2, TestName: "CBC", Status: model.LabTestStatusRequested}
	next, ev, err := PlanLabTestUpdate(requested, &model.UpdateLabTestRequest{TestName: model.StringPtr("Complete Blood Count")})
	require.NoError(t, err)
	assert.Equal(t, "Complete Blood Count", next.TestName)
	assert.Equal(t, "Lab Test Updated", ev.Title)

	done := &model.LabTest{ID: 1, TestName: "CBC", Status: model.LabTestStatusCompleted, Result: model.StringPtr("ok")}
	_, _, err = PlanLabTestUpdate(done, &model.UpdateLabTestRequest{TestName: model.StringPtr("x")})
	requireValidation(t, err, "status")
}

func TestPlanPatientAdmit(t *testing.T) {
	p, ev, err := PlanPatientAdmit(&model.CreatePatientRequest{Name: "John Doe", Age: 45, Gender: "Male", Condition: model.StringPtr("Hypertension")})
	require.NoError(t, err)
	assert.Equal(t, model.PatientStatusWaiting, p.Status)
	assert.Equal(t, "Patient Admitted", ev.Title)
	assert.Equal(t, model.TimelineTypeReferral, ev.Type)
	assert.Equal(t, "John Doe admitted with Hypertension", model.StringValue(ev.Description))
}

func TestPlanPatientUpdateEventPriority(t *testing.T) {
	cur := &model.Patient{ID: 3, Name: "Alice", Status: model.PatientStatusWaiting}
	vitals := &model.Vitals{BP: "120/80", HR: "92", Temp: "101.2", Weight: "62kg"}
	status := model.PatientStatusConsulting

	next, ev, err := PlanPatientUpdate(cur, &model.UpdatePatientRequest{Vitals: vitals, Status: &status})
	require.NoError(t, err)
	assert.Equal(t, "Vitals Updated", ev.Title)
	assert.Equal(t, "BP: 120/80, HR: 92, Temp: 101.2, Weight: 62kg", model.StringValue(ev.Description))
	assert.Equal(t, *vitals, next.Vitals)
	assert.Equal(t, status, next.Status)
	assert.Equal(t, int64(3), ev.PatientID)

	_, ev, err = PlanPatientUpdate(cur, &model.UpdatePatientRequest{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, "Patient consulting", ev.Title)

	age := 33
	_, ev, err = PlanPatientUpdate(cur, &model.UpdatePatientRequest{Age: &age, History: model.StringPtr("Asthma")})
	require.NoError(t, err)
	assert.Equal(t, "Patient Record Updated", ev.Title)
	assert.Equal(t, "Updated age, history", model.StringValue(ev.Description))

	_, _, err = PlanPatientUpdate(cur, &model.UpdatePatientRequest{})
	requireValidation(t, err, "")
}

func TestPlanPatientVitalsReplacedWhole(t *testing.T) {
	cur := &model.Patient{ID: 1, Vitals: model.Vitals{BP: "140/90", HR: "80", Temp: "98.6", Weight: "85kg"}}
	next, _, err := PlanPatientUpdate(cur, &model.UpdatePatientRequest{Vitals: &model.Vitals{BP: "130/85"}})
	require.NoError(t, err)
	assert.Equal(t, model.Vitals{BP: "130/85"}, next.Vitals)
}
