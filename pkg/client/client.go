// Package client is a typed REST client for the hospital API, used by
// hospitalctl and by dashboards written in Go.
package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/jwalitptl/hospital-api/internal/model"
)

// APIError is the decoded error body of a failed request.
type APIError struct {
	Status  int    `json:"code"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	TraceID string `json:"trace_id,omitempty"`
}

func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s (%d): %s [field %s]", e.Kind, e.Status, e.Message, e.Field)
	}
	return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, e.Message)
}

type Config struct {
	BaseURL    string
	Timeout    time.Duration
	RetryCount int
}

type Client struct {
	http *resty.Client
}

// New builds a client for the API rooted at config.BaseURL. Only GET
// requests are retried.
func New(config Config) *Client {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}

	c := resty.New().
		SetBaseURL(config.BaseURL).
		SetTimeout(config.Timeout).
		SetRetryCount(config.RetryCount).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetHeader("Accept", "application/json").
		SetError(&APIError{}).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if r == nil || r.Request == nil || r.Request.Method != http.MethodGet {
				return false
			}
			return err != nil || r.StatusCode() >= http.StatusBadGateway
		})

	return &Client{http: c}
}

func (c *Client) do(ctx context.Context, method, path string, body, result interface{}, query map[string]string) error {
	req := c.http.R().SetContext(ctx).SetQueryParams(query)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	if result != nil {
		req.SetResult(result)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.IsError() {
		if apiErr, ok := resp.Error().(*APIError); ok && apiErr.Kind != "" {
			return apiErr
		}
		return &APIError{Status: resp.StatusCode(), Kind: "HTTP", Message: resp.Status()}
	}
	return nil
}

func patientQuery(patientID int64) map[string]string {
	if patientID <= 0 {
		return nil
	}
	return map[string]string{"patientId": strconv.FormatInt(patientID, 10)}
}

func idPath(base string, id int64) string {
	return base + "/" + strconv.FormatInt(id, 10)
}

func (c *Client) ListDoctors(ctx context.Context) ([]*model.Doctor, error) {
	var out []*model.Doctor
	if err := c.do(ctx, http.MethodGet, "/api/doctors", nil, &out, nil); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListPatients(ctx context.Context) ([]*model.Patient, error) {
	var out []*model.Patient
	if err := c.do(ctx, http.MethodGet, "/api/patients", nil, &out, nil); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetPatient(ctx context.Context, id int64) (*model.Patient, error) {
	var out model.Patient
	if err := c.do(ctx, http.MethodGet, idPath("/api/patients", id), nil, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdatePatient(ctx context.Context, id int64, req *model.UpdatePatientRequest) (*model.Patient, error) {
	var out model.Patient
	if err := c.do(ctx, http.MethodPatch, idPath("/api/patients", id), req, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListAppointments(ctx context.Context) ([]*model.Appointment, error) {
	var out []*model.Appointment
	if err := c.do(ctx, http.MethodGet, "/api/appointments", nil, &out, nil); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UpdateAppointment(ctx context.Context, id int64, req *model.UpdateAppointmentRequest) (*model.Appointment, error) {
	var out model.Appointment
	if err := c.do(ctx, http.MethodPatch, idPath("/api/appointments", id), req, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListPrescriptions returns every prescription when patientID is zero.
func (c *Client) ListPrescriptions(ctx context.Context, patientID int64) ([]*model.Prescription, error) {
	var out []*model.Prescription
	if err := c.do(ctx, http.MethodGet, "/api/prescriptions", nil, &out, patientQuery(patientID)); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UpdatePrescription(ctx context.Context, id int64, req *model.UpdatePrescriptionRequest) (*model.Prescription, error) {
	var out model.Prescription
	if err := c.do(ctx, http.MethodPatch, idPath("/api/prescriptions", id), req, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListLabTests(ctx context.Context, patientID int64) ([]*model.LabTest, error) {
	var out []*model.LabTest
	if err := c.do(ctx, http.MethodGet, "/api/lab-tests", nil, &out, patientQuery(patientID)); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UpdateLabTest(ctx context.Context, id int64, req *model.UpdateLabTestRequest) (*model.LabTest, error) {
	var out model.LabTest
	if err := c.do(ctx, http.MethodPatch, idPath("/api/lab-tests", id), req, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Timeline(ctx context.Context, patientID int64) ([]*model.TimelineEvent, error) {
	var out []*model.TimelineEvent
	if err := c.do(ctx, http.MethodGet, "/api/timeline", nil, &out, map[string]string{
		"patientId": strconv.FormatInt(patientID, 10),
	}); err != nil {
		return nil, err
	}
	return out, nil
}

// ExportTimeline streams the patient's XLSX export into w.
func (c *Client) ExportTimeline(ctx context.Context, patientID int64, w io.Writer) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		SetQueryParam("patientId", strconv.FormatInt(patientID, 10)).
		Get("/api/timeline/export")
	if err != nil {
		return fmt.Errorf("export timeline: %w", err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() != http.StatusOK {
		return &APIError{Status: resp.StatusCode(), Kind: "HTTP", Message: resp.Status()}
	}
	_, err = io.Copy(w, body)
	return err
}
