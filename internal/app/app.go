// Package app wires stores, services, handlers and the router into one
// object graph shared by the API binary and the HTTP tests.
package app

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jwalitptl/hospital-api/config"
	appointmenth "github.com/jwalitptl/hospital-api/internal/handler/appointment"
	doctorh "github.com/jwalitptl/hospital-api/internal/handler/doctor"
	"github.com/jwalitptl/hospital-api/internal/handler/health"
	labtesth "github.com/jwalitptl/hospital-api/internal/handler/labtest"
	patienth "github.com/jwalitptl/hospital-api/internal/handler/patient"
	prescriptionh "github.com/jwalitptl/hospital-api/internal/handler/prescription"
	timelineh "github.com/jwalitptl/hospital-api/internal/handler/timeline"
	"github.com/jwalitptl/hospital-api/internal/repository"
	"github.com/jwalitptl/hospital-api/internal/router"
	"github.com/jwalitptl/hospital-api/internal/seed"
	"github.com/jwalitptl/hospital-api/internal/service/appointment"
	"github.com/jwalitptl/hospital-api/internal/service/doctor"
	"github.com/jwalitptl/hospital-api/internal/service/labtest"
	"github.com/jwalitptl/hospital-api/internal/service/patient"
	"github.com/jwalitptl/hospital-api/internal/service/prescription"
	"github.com/jwalitptl/hospital-api/internal/service/timeline"
	"github.com/jwalitptl/hospital-api/internal/workflow"
	"github.com/jwalitptl/hospital-api/pkg/logger"
	"github.com/jwalitptl/hospital-api/pkg/metrics"
)

const metricsNamespace = "hospital"

type Services struct {
	Doctors       *doctor.Service
	Patients      *patient.Service
	Appointments  *appointment.Service
	Prescriptions *prescription.Service
	LabTests      *labtest.Service
	Timeline      *timeline.Projector
}

type App struct {
	Store    repository.Store
	Services Services
	Router   *router.Router
	Metrics  *metrics.Metrics
	log      *logger.Logger
}

// New builds the application over store. Metrics register on reg, which
// also backs /metrics.
func New(store repository.Store, cfg *config.Config, log *logger.Logger, reg *prometheus.Registry) *App {
	m := metrics.NewMetrics(metricsNamespace, reg)
	v := workflow.NewValidator()
	projector := timeline.NewProjector(store, cfg.Workflow.ToProjectorConfig(), log, m)

	svc := Services{
		Doctors:       doctor.NewService(store, cfg.DoctorCache.ToCacheConfig(), v, log, m),
		Patients:      patient.NewService(store, projector, v, log, m),
		Appointments:  appointment.NewService(store, projector, v, log, m),
		Prescriptions: prescription.NewService(store, projector, v, log, m),
		LabTests:      labtest.NewService(store, projector, v, log, m),
		Timeline:      projector,
	}

	handlers := router.Handlers{
		Doctor:       doctorh.NewHandler(svc.Doctors),
		Patient:      patienth.NewHandler(svc.Patients),
		Appointment:  appointmenth.NewHandler(svc.Appointments),
		Prescription: prescriptionh.NewHandler(svc.Prescriptions),
		LabTest:      labtesth.NewHandler(svc.LabTests),
		Timeline:     timelineh.NewHandler(projector),
		Health:       health.NewHandler(store),
	}

	return &App{
		Store:    store,
		Services: svc,
		Router:   router.NewRouter(handlers, cfg.RouterConfig(), log.Zerolog(), m, reg),
		Metrics:  m,
		log:      log,
	}
}

// Seed loads the demo roster when the doctor directory is empty.
func (a *App) Seed(ctx context.Context) (bool, error) {
	return seed.Run(ctx, seed.Services{
		Doctors:      a.Services.Doctors,
		Patients:     a.Services.Patients,
		Appointments: a.Services.Appointments,
	}, a.log)
}
