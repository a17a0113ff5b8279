package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"recipes-backend/internal/shared/server/respond"
	"recipes-backend/internal/shared/telemetry"
)

// Recovery turns a panic into a 500 error envelope and logs the stack. Upload
// keys already stored by the request are logged so the objects can be traced.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			fields := map[string]any{
				"request_id": RequestIDFromContext(c),
				"error":      rec,
				"stack":      string(debug.Stack()),
				"path":       c.Request.URL.Path,
				"route":      c.FullPath(),
				"method":     c.Request.Method,
			}
			if keys, ok := c.Get(UploadKeysKey); ok {
				fields["upload_keys"] = keys
			}
			telemetry.Error("panic", fields)
			respond.Error(c, http.StatusInternalServerError, "internal_error", "Unexpected server error", nil)
		}()
		c.Next()
	}
}
