// Package handler holds the request helpers shared by the per-entity
// handler packages.
package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hospital-api/pkg/errors"
	"github.com/jwalitptl/hospital-api/pkg/validator"
)

// ParseID reads the :id path parameter.
func ParseID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.Validationf("id", "invalid id %q", c.Param("id"))
	}
	return id, nil
}

// QueryID reads an optional positive integer query parameter. It returns
// nil when the parameter is absent.
func QueryID(c *gin.Context, name string) (*int64, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, errors.Validationf(name, "%s must be a positive integer", name)
	}
	return &id, nil
}

// BindJSON decodes the request body into dst and reports decoding
// problems as validation errors on the offending field.
func BindJSON(c *gin.Context, dst interface{}) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return validator.Translate(err)
	}
	return nil
}
