package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/cbl-backend/internal/realtime"
	"github.com/yungbote/cbl-backend/internal/services"
)

// AttachRequestContext gives every request an SSE buffer and flushes it to
// emit once the handler returned, so clients never see an event before the
// response that caused it.
func AttachRequestContext(emit services.SSEEmitter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, buf := realtime.WithBuffer(c.Request.Context())
		c.Request = c.Request.WithContext(ctx)
		c.Next()

		if emit == nil {
			return
		}
		flushCtx := c.Request.Context()
		for _, msg := range buf.Drain() {
			emit.Emit(flushCtx, msg)
		}
	}
}
