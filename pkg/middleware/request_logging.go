package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"seungpyo.lee/ImageGallery/pkg/logger"
	"seungpyo.lee/ImageGallery/pkg/metrics"
	"seungpyo.lee/ImageGallery/pkg/util"
)

// RequestLogger tags every request with an X-Request-ID, logs it once it is
// served and counts it in reg.
func RequestLogger(log *logger.Logger, reg *metrics.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		rid := c.GetHeader(util.RequestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(util.RequestIDKey, rid)
		c.Header(util.RequestIDHeader, rid)

		c.Next()

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		labels := map[string]string{
			"method": c.Request.Method,
			"path":   path,
			"status": metrics.StatusClass(status),
		}
		reg.Inc(c.Request.Context(), "http_requests_total", labels, 1)

		fields := []interface{}{
			"request_id", rid,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration", time.Since(start),
			"remote_ip", c.ClientIP(),
		}
		if status >= 500 || len(c.Errors) > 0 {
			reg.Inc(c.Request.Context(), "http_requests_errors_total", labels, 1)
			log.Error("http request failed", append(fields, "errors", c.Errors.String())...)
			return
		}
		log.Info("http request served", fields...)
	}
}
