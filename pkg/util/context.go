package util

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	RequestIDHeader = "X-Request-ID"
	RequestIDKey    = "request_id"
)

// GetRequestID returns the id set by the request logging middleware.
func GetRequestID(c *gin.Context) (string, bool) {
	v, ok := c.Get(RequestIDKey)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

// WantsJSON reports whether the client asked for a JSON answer rather than
// an HTML page.
func WantsJSON(c *gin.Context) bool {
	if strings.Contains(c.GetHeader("Accept"), "application/json") {
		return true
	}
	return c.GetHeader("X-Requested-With") == "XMLHttpRequest"
}
