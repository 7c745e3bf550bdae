package workflow

import (
	"fmt"
	"strings"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/pkg/errors"
)

var errResultTooEarly = errors.Validation("result", "a result can only be attached when completing the test")

func hasText(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}

func PlanLabTestCreate(req *model.CreateLabTestRequest) (*model.LabTest, *model.TimelineEvent, error) {
	status, err := LabTests.CheckInitial(req.Status)
	if err != nil {
		return nil, nil, err
	}
	if hasText(req.Result) {
		return nil, nil, errResultTooEarly
	}

	lt := &model.LabTest{
		PatientID: req.PatientID,
		DoctorID:  req.DoctorID,
		TestName:  req.TestName,
		Status:    status,
	}
	ev := newEvent(lt.PatientID, model.TimelineTypeLab,
		"Lab Test Requested", fmt.Sprintf("Requested test: %s", lt.TestName))
	return lt, ev, nil
}

// PlanLabTestUpdate advances a lab test one step. Completion requires a
// non-empty result, either in the request or already stored.
func PlanLabTestUpdate(cur *model.LabTest, req *model.UpdateLabTestRequest) (*model.LabTest, *model.TimelineEvent, error) {
	if req.Status == nil && req.TestName == nil && !hasText(req.Result) {
		return nil, nil, errors.Validation("", "update must change at least one field")
	}
	if LabTests.Frozen(cur.Status) {
		return nil, nil, errors.Validationf("status", "lab test %d is %s and can no longer change", cur.ID, cur.Status)
	}

	next := *cur
	if req.TestName != nil {
		next.TestName = *req.TestName
	}

	if req.Status == nil {
		if hasText(req.Result) {
			return nil, nil, errResultTooEarly
		}
		ev := newEvent(next.PatientID, model.TimelineTypeLab,
			"Lab Test Updated", fmt.Sprintf("Test renamed to %s", next.TestName))
		return &next, ev, nil
	}

	to := *req.Status
	if err := LabTests.Check(cur.Status, to); err != nil {
		return nil, nil, err
	}

	if to == model.LabTestStatusCompleted {
		result := req.Result
		if result == nil {
			result = cur.Result
		}
		if !hasText(result) {
			return nil, nil, errors.Validation("result", "a non-empty result is required to complete a lab test")
		}
		r := strings.TrimSpace(*result)
		next.Result = &r
	} else if hasText(req.Result) {
		return nil, nil, errResultTooEarly
	}
	next.Status = to

	ev := newEvent(next.PatientID, model.TimelineTypeLab,
		labTitles[to], fmt.Sprintf("Status for %s updated to %s", next.TestName, to))
	return &next, ev, nil
}
