package timeline

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hospital-api/internal/handler"
	"github.com/jwalitptl/hospital-api/internal/report"
	"github.com/jwalitptl/hospital-api/internal/service/timeline"
	"github.com/jwalitptl/hospital-api/pkg/errors"
	"github.com/jwalitptl/hospital-api/pkg/httputil"
)

// Handler serves the read side of the timeline. Events are only ever
// written by the other services.
type Handler struct {
	projector *timeline.Projector
}

func NewHandler(projector *timeline.Projector) *Handler {
	return &Handler{projector: projector}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	events := r.Group("/timeline")
	{
		events.GET("", h.ListTimeline)
		events.GET("/export", h.ExportTimeline)
	}
}

func patientID(c *gin.Context) (int64, error) {
	id, err := handler.QueryID(c, "patientId")
	if err != nil {
		return 0, err
	}
	if id == nil {
		return 0, errors.Validation("patientId", "patientId is required")
	}
	return *id, nil
}

func (h *Handler) ListTimeline(c *gin.Context) {
	id, err := patientID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	events, err := h.projector.ListByPatient(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	httputil.RespondWithSuccess(c, events)
}

func (h *Handler) ExportTimeline(c *gin.Context) {
	id, err := patientID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var buf bytes.Buffer
	if err := h.projector.Export(c.Request.Context(), id, &buf); err != nil {
		_ = c.Error(err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+report.TimelineFilename(id)+`"`)
	c.Data(http.StatusOK, report.ContentTypeXLSX, buf.Bytes())
}
