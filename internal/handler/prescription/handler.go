package prescription

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hospital-api/internal/handler"
	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/service/prescription"
	"github.com/jwalitptl/hospital-api/pkg/httputil"
)

type Handler struct {
	service *prescription.Service
}

func NewHandler(service *prescription.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	prescriptions := r.Group("/prescriptions")
	{
		prescriptions.GET("", h.ListPrescriptions)
		prescriptions.POST("", h.IssuePrescription)
		prescriptions.PATCH("/:id", h.UpdatePrescription)
	}
}

func (h *Handler) ListPrescriptions(c *gin.Context) {
	patientID, err := handler.QueryID(c, "patientId")
	if err != nil {
		_ = c.Error(err)
		return
	}

	prescriptions, err := h.service.List(c.Request.Context(), &model.PrescriptionFilters{PatientID: patientID})
	if err != nil {
		_ = c.Error(err)
		return
	}
	httputil.RespondWithSuccess(c, prescriptions)
}

func (h *Handler) IssuePrescription(c *gin.Context) {
	var req model.CreatePrescriptionRequest
	if err := handler.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	p, err := h.service.Issue(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	httputil.RespondWithCreated(c, p)
}

// UpdatePrescription applies pharmacy changes: per-medicine availability
// and the overall status.
func (h *Handler) UpdatePrescription(c *gin.Context) {
	id, err := handler.ParseID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req model.UpdatePrescriptionRequest
	if err := handler.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	p, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	httputil.RespondWithSuccess(c, p)
}
