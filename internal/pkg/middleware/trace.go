package middleware

import (
	"social_moderation/internal/pkg/trace"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TraceMiddleware 添加请求追踪ID，并写入 request context 供远端调用透传
func TraceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(trace.Header)
		if traceID == "" || len(traceID) > 128 {
			traceID = uuid.New().String()
		}

		c.Set("traceID", traceID)
		c.Header(trace.Header, traceID)
		c.Request = c.Request.WithContext(trace.WithID(c.Request.Context(), traceID))

		c.Next()
	}
}
