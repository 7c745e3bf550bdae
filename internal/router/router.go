package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/hospital-api/internal/handler/appointment"
	"github.com/jwalitptl/hospital-api/internal/handler/doctor"
	"github.com/jwalitptl/hospital-api/internal/handler/health"
	"github.com/jwalitptl/hospital-api/internal/handler/labtest"
	"github.com/jwalitptl/hospital-api/internal/handler/patient"
	"github.com/jwalitptl/hospital-api/internal/handler/prescription"
	"github.com/jwalitptl/hospital-api/internal/handler/timeline"
	"github.com/jwalitptl/hospital-api/internal/middleware"
	"github.com/jwalitptl/hospital-api/pkg/metrics"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Handlers struct {
	Doctor       *doctor.Handler
	Patient      *patient.Handler
	Appointment  *appointment.Handler
	Prescription *prescription.Handler
	LabTest      *labtest.Handler
	Timeline     *timeline.Handler
	Health       *health.Handler
}

type Config struct {
	Mode        string
	RateLimit   middleware.RateLimiterConfig
	CORS        middleware.CORSConfig
	SizeLimit   middleware.SizeLimitConfig
	DoctorCache middleware.CacheConfig
}

type Router struct {
	engine *gin.Engine
}

// NewRouter builds the engine with the full middleware chain and every
// route mounted. gatherer backs /metrics.
func NewRouter(h Handlers, config Config, log *zerolog.Logger, m *metrics.Metrics, gatherer prometheus.Gatherer) *Router {
	if config.Mode != "" {
		gin.SetMode(config.Mode)
	}

	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		middleware.Logger(log),
		middleware.Metrics(m),
		middleware.Recovery(log),
		middleware.CORS(config.CORS),
		middleware.ErrorHandler(log),
	)

	h.Health.RegisterRoutes(engine)
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	api := engine.Group("/api")
	api.Use(middleware.SizeLimit(config.SizeLimit))
	if config.RateLimit.Enabled {
		api.Use(middleware.NewRateLimiter(config.RateLimit).RateLimit())
	}

	h.Doctor.RegisterRoutes(api, middleware.Cache(config.DoctorCache))
	for _, handler := range []Handler{h.Patient, h.Appointment, h.Prescription, h.LabTest, h.Timeline} {
		handler.RegisterRoutes(api)
	}

	return &Router{engine: engine}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
