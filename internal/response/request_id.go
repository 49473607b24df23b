package response

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContextKeyRequestID is where the per-request ID lives in the Gin context.
const ContextKeyRequestID = "request_id"

// RequestIDMiddleware stamps every request with an ID, honoring an inbound
// X-Request-ID so a proxy's trace carries through, and echoes it on the
// response header. The envelope metadata reads it back from the context.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader("X-Request-ID")
		if reqID == "" {
			reqID = uuid.New().String()
		}
		c.Set(ContextKeyRequestID, reqID)
		c.Header("X-Request-ID", reqID)
		c.Next()
	}
}
