package middleware

import (
	"github.com/daffahilmyf/go-impl-audit-trail/internal/domain/actor"
	"github.com/gin-gonic/gin"
)

// Actor reads the acting user id set by the upstream authentication layer and
// attaches it to the request context. Requests without one stay anonymous.
func Actor(header string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if id, ok := actor.Parse(c.GetHeader(header)); ok {
			c.Request = c.Request.WithContext(actor.WithID(c.Request.Context(), id))
		}
		c.Next()
	}
}
