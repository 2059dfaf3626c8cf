package middleware

import (
	"time"

	"github.com/daffahilmyf/go-impl-audit-trail/internal/domain/actor"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Logger writes one entry per request. Probe endpoints are logged at debug
// so scrapes and health checks do not drown the audit API traffic.
func Logger(log *logrus.Logger, quiet ...string) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(quiet))
	for _, p := range quiet {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		fields := logrus.Fields{
			"status":     status,
			"method":     c.Request.Method,
			"route":      route,
			"path":       c.Request.URL.Path,
			"ip":         c.ClientIP(),
			"latency":    time.Since(start).String(),
			"request_id": c.GetString(RequestIDKey),
		}
		if q := c.Request.URL.RawQuery; q != "" {
			fields["query"] = q
		}
		if id, ok := actor.FromContext(c.Request.Context()); ok {
			fields["actor_id"] = id
		}
		if errs := c.Errors.ByType(gin.ErrorTypePrivate).String(); errs != "" {
			fields["error"] = errs
		}
		entry := log.WithFields(fields)

		switch {
		case status >= 500:
			entry.Error("request failed")
		case status >= 400:
			entry.Warn("request client error")
		default:
			if _, ok := skip[route]; ok {
				entry.Debug("request handled")
				return
			}
			entry.Info("request handled")
		}
	}
}
