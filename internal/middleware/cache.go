package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

type CacheConfig struct {
	MaxAge               int
	Private              bool
	MustRevalidate       bool
	StaleWhileRevalidate int
	Vary                 []string
}

// DefaultCacheConfig suits the doctor directory, which only grows.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		MaxAge:               60,
		Private:              true,
		StaleWhileRevalidate: 30,
		Vary:                 []string{"Accept"},
	}
}

// Cache sets Cache-Control on successful GET responses. Everything else
// is marked no-store.
func Cache(config CacheConfig) gin.HandlerFunc {
	directives := []string{"public"}
	if config.Private {
		directives[0] = "private"
	}
	if config.MaxAge > 0 {
		directives = append(directives, "max-age="+strconv.Itoa(config.MaxAge))
	}
	if config.MustRevalidate {
		directives = append(directives, "must-revalidate")
	}
	if config.StaleWhileRevalidate > 0 {
		directives = append(directives, "stale-while-revalidate="+strconv.Itoa(config.StaleWhileRevalidate))
	}
	value := strings.Join(directives, ", ")

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Header("Cache-Control", "no-store")
			c.Next()
			return
		}

		// Headers must be set before the handler writes the body.
		c.Header("Cache-Control", value)
		if len(config.Vary) > 0 {
			c.Header("Vary", strings.Join(config.Vary, ", "))
		}
		c.Next()

		if c.Writer.Status() >= 400 && !c.Writer.Written() {
			c.Header("Cache-Control", "no-store")
		}
	}
}
