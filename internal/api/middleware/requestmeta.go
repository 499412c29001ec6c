package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/chapterhq/election-api/internal/domain"
)

// RequestMeta stashes caller origin and user agent on the request
// context so the audit trail can record them without the handlers
// threading them through every call.
func RequestMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := domain.WithRequestMeta(c.Request.Context(), domain.RequestMeta{
			Origin:    c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		})
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
