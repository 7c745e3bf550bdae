package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/pkg/errors"
)

func TestAppointmentTable(t *testing.T) {
	all := []model.AppointmentStatus{
		model.AppointmentStatusWaiting,
		model.AppointmentStatusInProgress,
		model.AppointmentStatusCompleted,
	}
	allowed := map[[2]model.AppointmentStatus]bool{
		{model.AppointmentStatusWaiting, model.AppointmentStatusInProgress}:   true,
		{model.AppointmentStatusInProgress, model.AppointmentStatusCompleted}: true,
	}

	for _, from := range all {
		for _, to := range all {
			err := Appointments.Check(from, to)
			if allowed[[2]model.AppointmentStatus{from, to}] {
				assert.NoError(t, err, "%s -> %s", from, to)
				continue
			}
			require.Error(t, err, "%s -> %s", from, to)
			appErr, ok := errors.As(err)
			require.True(t, ok)
			assert.Equal(t, errors.ErrValidation, appErr.Code)
			assert.Equal(t, "status", appErr.Field)
		}
	}
}

func TestLabTestTableIsStrictlyOrdered(t *testing.T) {
	order := []model.LabTestStatus{
		model.LabTestStatusRequested,
		model.LabTestStatusCollected,
		model.LabTestStatusTesting,
		model.LabTestStatusCompleted,
	}
	for i, from := range order {
		for j, to := range order {
			assert.Equal(t, j == i+1, LabTests.Allows(from, to), "%s -> %s", from, to)
		}
	}
	assert.True(t, LabTests.Frozen(model.LabTestStatusCompleted))
	assert.False(t, LabTests.Frozen(model.LabTestStatusTesting))
}

func TestNext(t *testing.T) {
	next, ok := LabTests.Next(model.LabTestStatusCollected)
	assert.True(t, ok)
	assert.Equal(t, model.LabTestStatusTesting, next)

	_, ok = LabTests.Next(model.LabTestStatusCompleted)
	assert.False(t, ok)

	// the self-loop on pending is skipped
	nextRx, ok := Prescriptions.Next(model.PrescriptionStatusPending)
	assert.True(t, ok)
	assert.Equal(t, model.PrescriptionStatusDispensed, nextRx)
}

func TestPrescriptionTable(t *testing.T) {
	assert.True(t, Prescriptions.Allows(model.PrescriptionStatusPending, model.PrescriptionStatusDispensed))
	assert.True(t, Prescriptions.Allows(model.PrescriptionStatusDispensed, model.PrescriptionStatusDispensed))
	assert.False(t, Prescriptions.Allows(model.PrescriptionStatusDispensed, model.PrescriptionStatusPending))
	assert.False(t, Prescriptions.Frozen(model.PrescriptionStatusDispensed))
}

func TestCheckRejectsUnknownValue(t *testing.T) {
	err := Appointments.Check(model.AppointmentStatusWaiting, "cancelled")
	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Contains(t, appErr.Message, "not a valid appointment status")
}

func TestCheckInitial(t *testing.T) {
	s, err := LabTests.CheckInitial("")
	require.NoError(t, err)
	assert.Equal(t, model.LabTestStatusRequested, s)

	_, err = LabTests.CheckInitial(model.LabTestStatusTesting)
	assert.True(t, errors.IsValidation(err))

	_, err = Appointments.CheckInitial("lost")
	assert.True(t, errors.IsValidation(err))
}

func TestStates(t *testing.T) {
	assert.Equal(t, []model.AppointmentStatus{"completed", "in-progress", "waiting"}, Appointments.States())
	assert.Len(t, LabTests.States(), 4)
	assert.Len(t, Prescriptions.States(), 2)
}

func TestValidatorKnowsStatusTags(t *testing.T) {
	v := NewValidator()

	ok := &model.UpdateAppointmentRequest{Status: statusPtr(model.AppointmentStatusCompleted)}
	assert.NoError(t, v.Validate(ok))

	bad := &model.UpdateLabTestRequest{Status: labStatusPtr("lost")}
	err := v.Validate(bad)
	appErr, isApp := errors.As(err)
	require.True(t, isApp)
	assert.Equal(t, "status", appErr.Field)
}

func statusPtr(s model.AppointmentStatus) *model.AppointmentStatus { return &s }

func labStatusPtr(s model.LabTestStatus) *model.LabTestStatus { return &s }
