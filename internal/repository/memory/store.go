// Package memory is a process-local repository.Store used for demos and
// tests. Transactions take the store lock for their whole duration and
// restore a snapshot when fn fails.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
	apperrors "github.com/jwalitptl/hospital-api/pkg/errors"
)

type state struct {
	seq           map[string]int64
	doctors       map[int64]model.Doctor
	patients      map[int64]model.Patient
	appointments  map[int64]model.Appointment
	prescriptions map[int64]model.Prescription
	labTests      map[int64]model.LabTest
	timeline      []model.TimelineEvent
	outbox        map[uuid.UUID]model.OutboxEvent
}

func newState() *state {
	return &state{
		seq:           map[string]int64{},
		doctors:       map[int64]model.Doctor{},
		patients:      map[int64]model.Patient{},
		appointments:  map[int64]model.Appointment{},
		prescriptions: map[int64]model.Prescription{},
		labTests:      map[int64]model.LabTest{},
		outbox:        map[uuid.UUID]model.OutboxEvent{},
	}
}

func (s *state) next(table string) int64 {
	s.seq[table]++
	return s.seq[table]
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.seq {
		c.seq[k] = v
	}
	for k, v := range s.doctors {
		c.doctors[k] = v
	}
	for k, v := range s.patients {
		c.patients[k] = v
	}
	for k, v := range s.appointments {
		c.appointments[k] = v
	}
	for k, v := range s.prescriptions {
		c.prescriptions[k] = copyPrescription(v)
	}
	for k, v := range s.labTests {
		c.labTests[k] = v
	}
	c.timeline = append([]model.TimelineEvent(nil), s.timeline...)
	for k, v := range s.outbox {
		c.outbox[k] = v
	}
	return c
}

func copyPrescription(p model.Prescription) model.Prescription {
	if p.Medicines != nil {
		p.Medicines = append(model.Medicines(nil), p.Medicines...)
	}
	return p
}

// Store implements repository.Store.
type Store struct {
	mu   *sync.Mutex
	st   *state
	inTx bool
}

func NewStore() *Store {
	return &Store{mu: &sync.Mutex{}, st: newState()}
}

// lock is a no-op inside WithTx, which already holds the mutex.
func (s *Store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) Doctors() repository.DoctorRepository             { return doctorRepository{s} }
func (s *Store) Patients() repository.PatientRepository           { return patientRepository{s} }
func (s *Store) Appointments() repository.AppointmentRepository   { return appointmentRepository{s} }
func (s *Store) Prescriptions() repository.PrescriptionRepository { return prescriptionRepository{s} }
func (s *Store) LabTests() repository.LabTestRepository           { return labTestRepository{s} }
func (s *Store) Timeline() repository.TimelineRepository          { return timelineRepository{s} }
func (s *Store) Outbox() repository.OutboxRepository              { return outboxRepository{s} }

func (s *Store) WithTx(ctx context.Context, fn func(repository.Store) error) (err error) {
	if s.inTx {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	defer func() {
		if p := recover(); p != nil {
			*s.st = *snapshot
			panic(p)
		}
		if err != nil {
			*s.st = *snapshot
		}
	}()

	return fn(&Store{mu: s.mu, st: s.st, inTx: true})
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

type doctorRepository struct{ s *Store }

func (r doctorRepository) Create(ctx context.Context, doctor *model.Doctor) error {
	defer r.s.lock()()
	doctor.ID = r.s.st.next("doctors")
	r.s.st.doctors[doctor.ID] = *doctor
	return nil
}

func (r doctorRepository) Get(ctx context.Context, id int64) (*model.Doctor, error) {
	defer r.s.lock()()
	d, ok := r.s.st.doctors[id]
	if !ok {
		return nil, apperrors.NotFound("doctor", id)
	}
	return &d, nil
}

func (r doctorRepository) List(ctx context.Context) ([]*model.Doctor, error) {
	defer r.s.lock()()
	out := []*model.Doctor{}
	for _, id := range sortedKeys(r.s.st.doctors) {
		d := r.s.st.doctors[id]
		out = append(out, &d)
	}
	return out, nil
}

func (r doctorRepository) Count(ctx context.Context) (int, error) {
	defer r.s.lock()()
	return len(r.s.st.doctors), nil
}

type patientRepository struct{ s *Store }

func (r patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	defer r.s.lock()()
	patient.ID = r.s.st.next("patients")
	patient.AdmissionDate = time.Now().UTC()
	r.s.st.patients[patient.ID] = *patient
	return nil
}

func (r patientRepository) Get(ctx context.Context, id int64) (*model.Patient, error) {
	defer r.s.lock()()
	p, ok := r.s.st.patients[id]
	if !ok {
		return nil, apperrors.NotFound("patient", id)
	}
	return &p, nil
}

func (r patientRepository) Update(ctx context.Context, patient *model.Patient) error {
	defer r.s.lock()()
	if _, ok := r.s.st.patients[patient.ID]; !ok {
		return apperrors.NotFound("patient", patient.ID)
	}
	r.s.st.patients[patient.ID] = *patient
	return nil
}

func (r patientRepository) List(ctx context.Context) ([]*model.Patient, error) {
	defer r.s.lock()()
	out := []*model.Patient{}
	for _, id := range sortedKeys(r.s.st.patients) {
		p := r.s.st.patients[id]
		out = append(out, &p)
	}
	return out, nil
}

type appointmentRepository struct{ s *Store }

func (r appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	defer r.s.lock()()
	appointment.ID = r.s.st.next("appointments")
	r.s.st.appointments[appointment.ID] = *appointment
	return nil
}

func (r appointmentRepository) Get(ctx context.Context, id int64) (*model.Appointment, error) {
	defer r.s.lock()()
	a, ok := r.s.st.appointments[id]
	if !ok {
		return nil, apperrors.NotFound("appointment", id)
	}
	return &a, nil
}

func (r appointmentRepository) Update(ctx context.Context, appointment *model.Appointment) error {
	defer r.s.lock()()
	if _, ok := r.s.st.appointments[appointment.ID]; !ok {
		return apperrors.NotFound("appointment", appointment.ID)
	}
	r.s.st.appointments[appointment.ID] = *appointment
	return nil
}

func (r appointmentRepository) List(ctx context.Context) ([]*model.Appointment, error) {
	defer r.s.lock()()
	out := []*model.Appointment{}
	for _, id := range sortedKeys(r.s.st.appointments) {
		a := r.s.st.appointments[id]
		out = append(out, &a)
	}
	return out, nil
}

type prescriptionRepository struct{ s *Store }

func (r prescriptionRepository) Create(ctx context.Context, rx *model.Prescription) error {
	defer r.s.lock()()
	rx.ID = r.s.st.next("prescriptions")
	rx.CreatedAt = time.Now().UTC()
	r.s.st.prescriptions[rx.ID] = copyPrescription(*rx)
	return nil
}

func (r prescriptionRepository) Get(ctx context.Context, id int64) (*model.Prescription, error) {
	defer r.s.lock()()
	rx, ok := r.s.st.prescriptions[id]
	if !ok {
		return nil, apperrors.NotFound("prescription", id)
	}
	rx = copyPrescription(rx)
	return &rx, nil
}

func (r prescriptionRepository) Update(ctx context.Context, rx *model.Prescription) error {
	defer r.s.lock()()
	if _, ok := r.s.st.prescriptions[rx.ID]; !ok {
		return apperrors.NotFound("prescription", rx.ID)
	}
	r.s.st.prescriptions[rx.ID] = copyPrescription(*rx)
	return nil
}

func (r prescriptionRepository) List(ctx context.Context, filters *model.PrescriptionFilters) ([]*model.Prescription, error) {
	defer r.s.lock()()
	out := []*model.Prescription{}
	for _, id := range sortedKeys(r.s.st.prescriptions) {
		rx := r.s.st.prescriptions[id]
		if filters != nil && filters.PatientID != nil && rx.PatientID != *filters.PatientID {
			continue
		}
		rx = copyPrescription(rx)
		out = append(out, &rx)
	}
	return out, nil
}

type labTestRepository struct{ s *Store }

func (r labTestRepository) Create(ctx context.Context, lt *model.LabTest) error {
	defer r.s.lock()()
	lt.ID = r.s.st.next("lab_tests")
	lt.CreatedAt = time.Now().UTC()
	r.s.st.labTests[lt.ID] = *lt
	return nil
}

func (r labTestRepository) Get(ctx context.Context, id int64) (*model.LabTest, error) {
	defer r.s.lock()()
	lt, ok := r.s.st.labTests[id]
	if !ok {
		return nil, apperrors.NotFound("lab test", id)
	}
	return &lt, nil
}

func (r labTestRepository) Update(ctx context.Context, lt *model.LabTest) error {
	defer r.s.lock()()
	if _, ok := r.s.st.labTests[lt.ID]; !ok {
		return apperrors.NotFound("lab test", lt.ID)
	}
	r.s.st.labTests[lt.ID] = *lt
	return nil
}

func (r labTestRepository) List(ctx context.Context, filters *model.LabTestFilters) ([]*model.LabTest, error) {
	defer r.s.lock()()
	out := []*model.LabTest{}
	for _, id := range sortedKeys(r.s.st.labTests) {
		lt := r.s.st.labTests[id]
		if filters != nil && filters.PatientID != nil && lt.PatientID != *filters.PatientID {
			continue
		}
		out = append(out, &lt)
	}
	return out, nil
}

type timelineRepository struct{ s *Store }

func (r timelineRepository) Append(ctx context.Context, event *model.TimelineEvent) error {
	defer r.s.lock()()
	event.ID = r.s.st.next("timeline")
	event.Timestamp = time.Now().UTC()
	r.s.st.timeline = append(r.s.st.timeline, *event)
	return nil
}

func (r timelineRepository) ListByPatient(ctx context.Context, patientID int64) ([]*model.TimelineEvent, error) {
	defer r.s.lock()()
	out := []*model.TimelineEvent{}
	for _, ev := range r.s.st.timeline {
		if ev.PatientID == patientID {
			ev := ev
			out = append(out, &ev)
		}
	}
	return out, nil
}

type outboxRepository struct{ s *Store }

func (r outboxRepository) Create(ctx context.Context, event *model.OutboxEvent) error {
	defer r.s.lock()()
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Status == "" {
		event.Status = model.OutboxStatusPending
	}
	now := time.Now().UTC()
	event.CreatedAt = now
	event.UpdatedAt = now
	r.s.st.outbox[event.ID] = *event
	return nil
}

func (r outboxRepository) ClaimPending(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	defer r.s.lock()()
	out := []*model.OutboxEvent{}
	for _, ev := range r.s.st.outbox {
		if ev.Status == model.OutboxStatusPending {
			ev := ev
			out = append(out, &ev)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r outboxRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errorMessage *string) error {
	defer r.s.lock()()
	ev, ok := r.s.st.outbox[id]
	if !ok {
		return apperrors.NotFound("outbox event", id)
	}
	now := time.Now().UTC()
	ev.Status = status
	ev.ErrorMessage = errorMessage
	if errorMessage != nil {
		ev.RetryCount++
	}
	if status == model.OutboxStatusProcessed {
		ev.ProcessedAt = &now
	}
	ev.UpdatedAt = now
	r.s.st.outbox[id] = ev
	return nil
}

func (r outboxRepository) CountPending(ctx context.Context) (int, error) {
	defer r.s.lock()()
	n := 0
	for _, ev := range r.s.st.outbox {
		if ev.Status == model.OutboxStatusPending {
			n++
		}
	}
	return n, nil
}

func (r outboxRepository) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	defer r.s.lock()()
	var n int64
	for id, ev := range r.s.st.outbox {
		if ev.Status == model.OutboxStatusProcessed && ev.ProcessedAt != nil && ev.ProcessedAt.Before(before) {
			delete(r.s.st.outbox, id)
			n++
		}
	}
	return n, nil
}
