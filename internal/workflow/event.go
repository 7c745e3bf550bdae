package workflow

import (
	"fmt"

	"github.com/jwalitptl/hospital-api/internal/model"
)

func newEvent(patientID int64, typ model.TimelineType, title, description string) *model.TimelineEvent {
	ev := &model.TimelineEvent{
		PatientID: patientID,
		Title:     title,
		Type:      typ,
	}
	if description != "" {
		ev.Description = model.StringPtr(description)
	}
	return ev
}

func pluralize(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
