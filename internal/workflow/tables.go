package workflow

import (
	"github.com/jwalitptl/hospital-api/internal/model"
)

// Appointments moves strictly forward: waiting, in-progress, completed.
var Appointments = newMachine("appointment", model.AppointmentStatusWaiting,
	Edge[model.AppointmentStatus]{model.AppointmentStatusWaiting, model.AppointmentStatusInProgress},
	Edge[model.AppointmentStatus]{model.AppointmentStatusInProgress, model.AppointmentStatusCompleted},
)

// Prescriptions stay pending while items are partially processed and
// become dispensed once every item is. Re-dispensing is accepted.
var Prescriptions = newMachine("prescription", model.PrescriptionStatusPending,
	Edge[model.PrescriptionStatus]{model.PrescriptionStatusPending, model.PrescriptionStatusPending},
	Edge[model.PrescriptionStatus]{model.PrescriptionStatusPending, model.PrescriptionStatusDispensed},
	Edge[model.PrescriptionStatus]{model.PrescriptionStatusDispensed, model.PrescriptionStatusDispensed},
)

var LabTests = newMachine("lab test", model.LabTestStatusRequested,
	Edge[model.LabTestStatus]{model.LabTestStatusRequested, model.LabTestStatusCollected},
	Edge[model.LabTestStatus]{model.LabTestStatusCollected, model.LabTestStatusTesting},
	Edge[model.LabTestStatus]{model.LabTestStatusTesting, model.LabTestStatusCompleted},
)

var labTitles = map[model.LabTestStatus]string{
	model.LabTestStatusCollected: "Sample Collected",
	model.LabTestStatusTesting:   "Processing Started",
	model.LabTestStatusCompleted: "Lab Report Ready",
}
