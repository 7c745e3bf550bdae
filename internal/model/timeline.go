package model

import "time"

type TimelineType string

const (
	TimelineTypeDoctor   TimelineType = "doctor"
	TimelineTypePharmacy TimelineType = "pharmacy"
	TimelineTypeLab      TimelineType = "lab"
	TimelineTypeReferral TimelineType = "referral"
)

// TimelineEvent is an immutable entry in a patient's history. Rows are
// only ever inserted.
type TimelineEvent struct {
	ID          int64        `db:"id" json:"id"`
	PatientID   int64        `db:"patient_id" json:"patientId"`
	Title       string       `db:"title" json:"title"`
	Description *string      `db:"description" json:"description"`
	Type        TimelineType `db:"type" json:"type"`
	Timestamp   time.Time    `db:"timestamp" json:"timestamp"`
}
