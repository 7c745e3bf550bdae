package patient

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository/memory"
	"github.com/jwalitptl/hospital-api/internal/service/timeline"
	"github.com/jwalitptl/hospital-api/internal/workflow"
	apperrors "github.com/jwalitptl/hospital-api/pkg/errors"
	"github.com/jwalitptl/hospital-api/pkg/logger"
	"github.com/jwalitptl/hospital-api/pkg/metrics"
)

func newService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	m := metrics.NewMetrics("test", prometheus.NewRegistry())
	projector := timeline.NewProjector(store, timeline.Config{Atomic: true}, logger.Nop(), m)
	return NewService(store, projector, workflow.NewValidator(), logger.Nop(), m), store
}

func admitJohn(t *testing.T, svc *Service) *model.Patient {
	t.Helper()
	p, err := svc.Admit(context.Background(), &model.CreatePatientRequest{
		Name:      "John Doe",
		Age:       45,
		Gender:    "Male",
		Condition: model.StringPtr("Hypertension"),
		Vitals:    &model.Vitals{BP: "140/90", HR: "80", Temp: "98.6", Weight: "85kg"},
	})
	require.NoError(t, err)
	return p
}

func events(t *testing.T, store *memory.Store, patientID int64) []*model.TimelineEvent {
	t.Helper()
	list, err := store.Timeline().ListByPatient(context.Background(), patientID)
	require.NoError(t, err)
	return list
}

func TestAdmit(t *testing.T) {
	svc, store := newService(t)
	p := admitJohn(t, svc)

	assert.NotZero(t, p.ID)
	assert.Equal(t, model.PatientStatusWaiting, p.Status)
	assert.False(t, p.AdmissionDate.IsZero())

	list := events(t, store, p.ID)
	require.Len(t, list, 1)
	assert.Equal(t, "Patient Admitted", list[0].Title)
	assert.Equal(t, model.TimelineTypeReferral, list[0].Type)
	assert.Equal(t, p.ID, list[0].PatientID)
	assert.Equal(t, "John Doe admitted with Hypertension", model.StringValue(list[0].Description))
}

func TestAdmit_RequiresName(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.Admit(context.Background(), &model.CreatePatientRequest{Age: 30, Gender: "Female"})
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, "name", appErr.Field)
}

func TestUpdate_VitalsWinOverStatus(t *testing.T) {
	svc, store := newService(t)
	p := admitJohn(t, svc)

	consulting := model.PatientStatusConsulting
	updated, err := svc.Update(context.Background(), p.ID, &model.UpdatePatientRequest{
		Vitals: &model.Vitals{BP: "130/85", HR: "76", Temp: "98.4", Weight: "84kg"},
		Status: &consulting,
	})
	require.NoError(t, err)
	assert.Equal(t, "130/85", updated.Vitals.BP)
	assert.Equal(t, model.PatientStatusConsulting, updated.Status)

	list := events(t, store, p.ID)
	require.Len(t, list, 2)
	assert.Equal(t, "Vitals Updated", list[1].Title)
	assert.Equal(t, "BP: 130/85, HR: 76, Temp: 98.4, Weight: 84kg", model.StringValue(list[1].Description))
}

func TestUpdate_StatusOnly(t *testing.T) {
	svc, store := newService(t)
	p := admitJohn(t, svc)

	discharged := model.PatientStatusDischarged
	_, err := svc.Update(context.Background(), p.ID, &model.UpdatePatientRequest{Status: &discharged})
	require.NoError(t, err)

	list := events(t, store, p.ID)
	require.Len(t, list, 2)
	assert.Equal(t, "Patient discharged", list[1].Title)
	assert.Equal(t, model.TimelineTypeDoctor, list[1].Type)
}

func TestUpdate_ShallowMergeKeepsOtherFields(t *testing.T) {
	svc, _ := newService(t)
	p := admitJohn(t, svc)

	history := "Appendectomy 2019"
	updated, err := svc.Update(context.Background(), p.ID, &model.UpdatePatientRequest{History: &history})
	require.NoError(t, err)
	assert.Equal(t, "Appendectomy 2019", model.StringValue(updated.History))
	assert.Equal(t, "Hypertension", model.StringValue(updated.Condition))
	assert.Equal(t, "140/90", updated.Vitals.BP)

	got, err := svc.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, updated.History, got.History)
}

func TestUpdate_EmptyPatchRejected(t *testing.T) {
	svc, store := newService(t)
	p := admitJohn(t, svc)

	_, err := svc.Update(context.Background(), p.ID, &model.UpdatePatientRequest{})
	assert.True(t, apperrors.IsValidation(err))
	assert.Len(t, events(t, store, p.ID), 1)
}

func TestUpdate_NotFound(t *testing.T) {
	svc, _ := newService(t)
	discharged := model.PatientStatusDischarged
	_, err := svc.Update(context.Background(), 8, &model.UpdatePatientRequest{Status: &discharged})
	assert.True(t, apperrors.IsNotFound(err))
}
