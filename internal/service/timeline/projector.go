package timeline

import (
	"context"
	"fmt"
	"io"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/report"
	"github.com/jwalitptl/hospital-api/internal/repository"
	"github.com/jwalitptl/hospital-api/pkg/errors"
	"github.com/jwalitptl/hospital-api/pkg/logger"
	"github.com/jwalitptl/hospital-api/pkg/metrics"
)

type Config struct {
	// Atomic commits the entity write and its timeline event together.
	// When false the entity write commits first and a failed append is
	// reported as a partial failure.
	Atomic bool
}

// StepFunc performs one entity mutation against store and returns the
// timeline event it produced.
type StepFunc func(ctx context.Context, store repository.Store) (*model.TimelineEvent, error)

// Projector owns the patient timeline. It is the only writer of timeline
// rows and never updates or deletes them.
type Projector struct {
	store   repository.Store
	config  Config
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewProjector(store repository.Store, config Config, log *logger.Logger, m *metrics.Metrics) *Projector {
	return &Projector{
		store:   store,
		config:  config,
		logger:  log,
		metrics: m,
	}
}

// Apply runs a workflow step and appends its event.
func (p *Projector) Apply(ctx context.Context, step StepFunc) error {
	if p.config.Atomic {
		return p.store.WithTx(ctx, func(tx repository.Store) error {
			ev, err := step(ctx, tx)
			if err != nil {
				return err
			}
			return p.Append(ctx, tx, ev)
		})
	}

	var ev *model.TimelineEvent
	err := p.store.WithTx(ctx, func(tx repository.Store) error {
		var err error
		ev, err = step(ctx, tx)
		if err != nil {
			return err
		}
		// the event is checked before the entity write commits
		return validateEvent(ev)
	})
	if err != nil {
		return err
	}

	if err := p.store.WithTx(ctx, func(tx repository.Store) error {
		return p.Append(ctx, tx, ev)
	}); err != nil {
		p.logger.Error(err, "Timeline append failed after entity write",
			"patient_id", ev.PatientID,
			"title", ev.Title)
		return errors.PartialFailure(err)
	}
	return nil
}

// Append stores ev and queues a timeline.appended outbox record through
// the same store, so both land in the caller's transaction.
func (p *Projector) Append(ctx context.Context, store repository.Store, ev *model.TimelineEvent) error {
	if err := validateEvent(ev); err != nil {
		return err
	}

	if err := store.Timeline().Append(ctx, ev); err != nil {
		return fmt.Errorf("failed to append timeline event: %w", err)
	}

	out, err := model.NewOutboxEvent(model.EventTimelineAppended, ev)
	if err != nil {
		return fmt.Errorf("failed to encode outbox event: %w", err)
	}
	if err := store.Outbox().Create(ctx, out); err != nil {
		return fmt.Errorf("failed to queue outbox event: %w", err)
	}

	p.metrics.ObserveTimelineAppend(string(ev.Type))
	p.logger.Debug("Timeline event appended",
		"patient_id", ev.PatientID,
		"event_id", ev.ID,
		"type", string(ev.Type))
	return nil
}

func validateEvent(ev *model.TimelineEvent) error {
	if ev == nil {
		return errors.Internal(fmt.Errorf("workflow step produced no timeline event"))
	}
	if ev.PatientID <= 0 {
		return errors.Validation("patientId", "timeline event needs a patient")
	}
	if ev.Title == "" {
		return errors.Validation("title", "timeline event needs a title")
	}
	switch ev.Type {
	case model.TimelineTypeDoctor, model.TimelineTypePharmacy, model.TimelineTypeLab, model.TimelineTypeReferral:
		return nil
	default:
		return errors.Validationf("type", "unknown timeline type %q", ev.Type)
	}
}

// ListByPatient returns the patient's events in insertion order.
func (p *Projector) ListByPatient(ctx context.Context, patientID int64) ([]*model.TimelineEvent, error) {
	if patientID <= 0 {
		return nil, errors.Validation("patientId", "patientId is required")
	}
	return p.store.Timeline().ListByPatient(ctx, patientID)
}

// Export writes the patient's timeline as an XLSX workbook to w.
func (p *Projector) Export(ctx context.Context, patientID int64, w io.Writer) error {
	if patientID <= 0 {
		return errors.Validation("patientId", "patientId is required")
	}

	patient, err := p.store.Patients().Get(ctx, patientID)
	if err != nil {
		return err
	}
	events, err := p.store.Timeline().ListByPatient(ctx, patientID)
	if err != nil {
		return err
	}

	f, err := report.TimelineWorkbook(patient, events)
	if err != nil {
		return errors.Internal(err)
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
