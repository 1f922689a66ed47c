package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"library-admin/internal/utils"
)

// InjectTrace tags the request with a trace id. It is stored on the gin context and on the request
// context, the latter reaches net/http handlers such as the CSRF error handler.
func InjectTrace() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceId := utils.GenerateTraceId()
		c.Set(utils.TraceIdKey.String(), traceId)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), utils.TraceIdKey, traceId))
		c.Header("X-Trace-Id", traceId)
		c.Next()
	}
}
