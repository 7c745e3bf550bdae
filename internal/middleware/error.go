package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/hospital-api/pkg/errors"
	"github.com/jwalitptl/hospital-api/pkg/httputil"
)

// ErrorHandler renders the last error a handler attached with c.Error,
// unless the handler already wrote a response.
func ErrorHandler(log *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		appErr := errors.Wrap(err)
		if appErr.StatusCode() >= 500 {
			log.Error().
				Err(err).
				Str("request_id", c.GetString(ContextRequestID)).
				Str("kind", appErr.Code.String()).
				Str("path", c.Request.URL.Path).
				Msg("Request failed")
		}

		httputil.RespondWithError(c, appErr)
	}
}
