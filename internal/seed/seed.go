// Package seed loads a small demo roster into an empty store. It goes
// through the services so the demo patients get a real timeline.
package seed

import (
	"context"
	"fmt"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/service/appointment"
	"github.com/jwalitptl/hospital-api/internal/service/doctor"
	"github.com/jwalitptl/hospital-api/internal/service/patient"
	"github.com/jwalitptl/hospital-api/pkg/logger"
)

type Services struct {
	Doctors      *doctor.Service
	Patients     *patient.Service
	Appointments *appointment.Service
}

// Run seeds only when the doctor directory is empty. It reports whether
// anything was written.
func Run(ctx context.Context, svc Services, log *logger.Logger) (bool, error) {
	n, err := svc.Doctors.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to count doctors: %w", err)
	}
	if n > 0 {
		log.Debug("Seed skipped, doctors already present", "doctors", n)
		return false, nil
	}

	smith, err := svc.Doctors.Create(ctx, &model.CreateDoctorRequest{
		Name:           "Dr. Sarah Smith",
		Qualification:  "MD, PhD (Cardiology)",
		Specialization: "Cardiologist",
		Experience:     12,
		Department:     "Cardiology",
		ImageURL:       model.StringPtr("https://images.unsplash.com/photo-1559839734-2b71ea197ec2?auto=format&fit=crop&q=80&w=300&h=300"),
	})
	if err != nil {
		return false, fmt.Errorf("failed to seed doctor: %w", err)
	}
	wilson, err := svc.Doctors.Create(ctx, &model.CreateDoctorRequest{
		Name:           "Dr. James Wilson",
		Qualification:  "MBBS, MD",
		Specialization: "General Physician",
		Experience:     8,
		Department:     "General Medicine",
		ImageURL:       model.StringPtr("https://images.unsplash.com/photo-1612349317150-e413f6a5b16d?auto=format&fit=crop&q=80&w=300&h=300"),
	})
	if err != nil {
		return false, fmt.Errorf("failed to seed doctor: %w", err)
	}

	john, err := svc.Patients.Admit(ctx, &model.CreatePatientRequest{
		Name:      "John Doe",
		Age:       45,
		Gender:    "Male",
		Condition: model.StringPtr("Hypertension"),
		History:   model.StringPtr("None"),
		Status:    model.PatientStatusWaiting,
		Vitals:    &model.Vitals{BP: "140/90", HR: "80", Temp: "98.6", Weight: "85kg"},
	})
	if err != nil {
		return false, fmt.Errorf("failed to seed patient: %w", err)
	}
	alice, err := svc.Patients.Admit(ctx, &model.CreatePatientRequest{
		Name:      "Alice Johnson",
		Age:       32,
		Gender:    "Female",
		Condition: model.StringPtr("Flu Symptoms"),
		History:   model.StringPtr("Asthma"),
		Status:    model.PatientStatusConsulting,
		Vitals:    &model.Vitals{BP: "120/80", HR: "92", Temp: "101.2", Weight: "62kg"},
	})
	if err != nil {
		return false, fmt.Errorf("failed to seed patient: %w", err)
	}

	if _, err := svc.Appointments.Schedule(ctx, &model.CreateAppointmentRequest{
		PatientID: john.ID,
		DoctorID:  smith.ID,
		Time:      "10:00 AM",
	}); err != nil {
		return false, fmt.Errorf("failed to seed appointment: %w", err)
	}

	// appointments always start waiting; the second one is walked forward
	apt, err := svc.Appointments.Schedule(ctx, &model.CreateAppointmentRequest{
		PatientID: alice.ID,
		DoctorID:  wilson.ID,
		Time:      "11:30 AM",
	})
	if err != nil {
		return false, fmt.Errorf("failed to seed appointment: %w", err)
	}
	inProgress := model.AppointmentStatusInProgress
	if _, err := svc.Appointments.Update(ctx, apt.ID, &model.UpdateAppointmentRequest{Status: &inProgress}); err != nil {
		return false, fmt.Errorf("failed to seed appointment: %w", err)
	}

	log.Info("Seeded demo data", "doctors", 2, "patients", 2, "appointments", 2)
	return true, nil
}
