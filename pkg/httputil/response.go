package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hospital-api/pkg/errors"
)

const contextRequestID = "request_id"

// Error is the body written for every failed request.
type Error struct {
	Code    int    `json:"code"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	TraceID string `json:"trace_id,omitempty"`
}

// RespondWithSuccess writes data as the raw response body.
func RespondWithSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

func RespondWithCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// RespondWithError sends an error response
func RespondWithError(c *gin.Context, err error) {
	appErr := errors.Wrap(err)
	status := appErr.StatusCode()

	message := appErr.Message
	if appErr.Code == errors.ErrInternal {
		message = "Internal server error"
	}

	c.JSON(status, Error{
		Code:    status,
		Kind:    appErr.Code.String(),
		Message: message,
		Field:   appErr.Field,
		TraceID: c.GetString(contextRequestID),
	})
}
