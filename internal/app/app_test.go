package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/xuri/excelize/v2"

	"github.com/jwalitptl/hospital-api/config"
	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository/memory"
	"github.com/jwalitptl/hospital-api/pkg/httputil"
	"github.com/jwalitptl/hospital-api/pkg/logger"
)

type FlowSuite struct {
	suite.Suite
	app *App
}

func TestFlowSuite(t *testing.T) {
	suite.Run(t, new(FlowSuite))
}

func (s *FlowSuite) SetupTest() {
	cfg := &config.Config{
		Server:      config.ServerConfig{Port: 8080, Mode: gin.TestMode, MaxBodyBytes: 1 << 20, MaxHeaderBytes: 1 << 14},
		Storage:     config.StorageConfig{Driver: config.StorageMemory},
		Workflow:    config.WorkflowConfig{Atomic: true},
		CORS:        config.CORSConfig{AllowOrigins: []string{"*"}},
		DoctorCache: config.DoctorCacheConfig{MaxAge: 60},
	}
	s.app = New(memory.NewStore(), cfg, logger.Nop(), prometheus.NewRegistry())
}

func (s *FlowSuite) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.app.Router.Engine().ServeHTTP(w, req)
	return w
}

func (s *FlowSuite) decode(w *httptest.ResponseRecorder, dst interface{}) {
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), dst), w.Body.String())
}

func (s *FlowSuite) errorBody(w *httptest.ResponseRecorder) httputil.Error {
	var e httputil.Error
	s.decode(w, &e)
	return e
}

func (s *FlowSuite) admitPatientAndDoctor() (patientID, doctorID int64) {
	w := s.do(http.MethodPost, "/api/doctors", map[string]interface{}{
		"name": "Dr. James Wilson", "qualification": "MBBS, MD", "specialization": "Neurologist",
		"experience": 8, "department": "Neurology",
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var d model.Doctor
	s.decode(w, &d)

	w = s.do(http.MethodPost, "/api/patients", map[string]interface{}{
		"name": "John Doe", "age": 45, "gender": "Male", "condition": "Hypertension",
		"vitals": map[string]string{"bp": "140/90", "hr": "82", "temp": "98.6", "weight": "80kg"},
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var p model.Patient
	s.decode(w, &p)
	return p.ID, d.ID
}

func (s *FlowSuite) timeline(patientID int64) []model.TimelineEvent {
	w := s.do(http.MethodGet, "/api/timeline?patientId="+itoa(patientID), nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var events []model.TimelineEvent
	s.decode(w, &events)
	return events
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func (s *FlowSuite) TestAppointmentLifecycle() {
	patientID, doctorID := s.admitPatientAndDoctor()

	w := s.do(http.MethodPost, "/api/appointments", map[string]interface{}{
		"patientId": patientID, "doctorId": doctorID, "time": "11:00 AM",
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var apt model.Appointment
	s.decode(w, &apt)
	s.Equal(model.AppointmentStatusWaiting, apt.Status)

	// skipping in-progress is rejected and leaves no trace
	w = s.do(http.MethodPatch, "/api/appointments/"+itoa(apt.ID), map[string]string{"status": "completed"})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("VALIDATION", s.errorBody(w).Kind)
	s.Len(s.timeline(patientID), 2)

	for _, status := range []string{"in-progress", "completed"} {
		w = s.do(http.MethodPatch, "/api/appointments/"+itoa(apt.ID), map[string]string{"status": status})
		s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	}

	events := s.timeline(patientID)
	s.Require().Len(events, 4)
	s.Equal("Patient Admitted", events[0].Title)
	s.Equal("Appointment Scheduled", events[1].Title)
	s.Equal("Appointment in-progress", events[2].Title)
	s.Equal("Appointment completed", events[3].Title)

	// every event is queued for relay
	pending, err := s.app.Store.Outbox().CountPending(context.Background())
	s.Require().NoError(err)
	s.Equal(4, pending)
}

func (s *FlowSuite) TestPrescriptionAndLabFilters() {
	patientID, doctorID := s.admitPatientAndDoctor()

	w := s.do(http.MethodPost, "/api/prescriptions", map[string]interface{}{
		"patientId": patientID, "doctorId": doctorID,
		"medicines": []map[string]string{{"name": "Amlodipine", "dosage": "5mg", "timing": "morning"}},
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/api/lab-tests", map[string]interface{}{
		"patientId": patientID, "doctorId": doctorID, "testName": "Lipid Panel",
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var list []model.Prescription
	s.decode(s.do(http.MethodGet, "/api/prescriptions?patientId="+itoa(patientID), nil), &list)
	s.Len(list, 1)
	s.decode(s.do(http.MethodGet, "/api/prescriptions?patientId=999", nil), &list)
	s.Empty(list)

	var labs []model.LabTest
	s.decode(s.do(http.MethodGet, "/api/lab-tests", nil), &labs)
	s.Len(labs, 1)

	w = s.do(http.MethodGet, "/api/lab-tests?patientId=abc", nil)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("patientId", s.errorBody(w).Field)
}

func (s *FlowSuite) TestErrors() {
	w := s.do(http.MethodGet, "/api/patients/42", nil)
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal("NOT_FOUND", s.errorBody(w).Kind)

	w = s.do(http.MethodGet, "/api/timeline", nil)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("patientId", s.errorBody(w).Field)

	w = s.do(http.MethodPost, "/api/patients", map[string]interface{}{"name": "X", "age": "old", "gender": "F"})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("age", s.errorBody(w).Field)

	w = s.do(http.MethodPost, "/api/appointments", map[string]interface{}{
		"patientId": 7, "doctorId": 1, "time": "09:00 AM",
	})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("patientId", s.errorBody(w).Field)

	w = s.do(http.MethodPatch, "/api/appointments/nope", map[string]string{"status": "completed"})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("id", s.errorBody(w).Field)
}

func (s *FlowSuite) TestDoctorReadsAreCacheable() {
	s.admitPatientAndDoctor()

	w := s.do(http.MethodGet, "/api/doctors", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Header().Get("Cache-Control"), "max-age=60")

	w = s.do(http.MethodGet, "/api/doctors/1", nil)
	s.Equal(http.StatusOK, w.Code)
}

func (s *FlowSuite) TestTimelineExport() {
	patientID, _ := s.admitPatientAndDoctor()

	w := s.do(http.MethodGet, "/api/timeline/export?patientId="+itoa(patientID), nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.Contains(w.Header().Get("Content-Disposition"), "patient-1-timeline.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	s.Require().NoError(err)
	defer f.Close()
	title, err := f.GetCellValue("Timeline", "D7")
	s.Require().NoError(err)
	s.Equal("Patient Admitted", title)
}

func (s *FlowSuite) TestHealthAndMetrics() {
	w := s.do(http.MethodGet, "/health/ready", nil)
	s.Equal(http.StatusOK, w.Code)

	s.do(http.MethodGet, "/api/patients", nil)
	w = s.do(http.MethodGet, "/metrics", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "hospital_http_requests_total")
}

func TestSeed(t *testing.T) {
	cfg := &config.Config{Server: config.ServerConfig{Mode: gin.TestMode}, Workflow: config.WorkflowConfig{Atomic: true}}
	a := New(memory.NewStore(), cfg, logger.Nop(), prometheus.NewRegistry())

	seeded, err := a.Seed(context.Background())
	require.NoError(t, err)
	assert.True(t, seeded)

	patients, err := a.Services.Patients.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, patients, 2)
}
