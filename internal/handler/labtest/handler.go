package labtest

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hospital-api/internal/handler"
	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/service/labtest"
	"github.com/jwalitptl/hospital-api/pkg/httputil"
)

type Handler struct {
	service *labtest.Service
}

func NewHandler(service *labtest.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	labTests := r.Group("/lab-tests")
	{
		labTests.GET("", h.ListLabTests)
		labTests.POST("", h.RequestLabTest)
		labTests.PATCH("/:id", h.UpdateLabTest)
	}
}

func (h *Handler) ListLabTests(c *gin.Context) {
	patientID, err := handler.QueryID(c, "patientId")
	if err != nil {
		_ = c.Error(err)
		return
	}

	tests, err := h.service.List(c.Request.Context(), &model.LabTestFilters{PatientID: patientID})
	if err != nil {
		_ = c.Error(err)
		return
	}
	httputil.RespondWithSuccess(c, tests)
}

func (h *Handler) RequestLabTest(c *gin.Context) {
	var req model.CreateLabTestRequest
	if err := handler.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	lt, err := h.service.Request(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	httputil.RespondWithCreated(c, lt)
}

func (h *Handler) UpdateLabTest(c *gin.Context) {
	id, err := handler.ParseID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req model.UpdateLabTestRequest
	if err := handler.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	lt, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	httputil.RespondWithSuccess(c, lt)
}
