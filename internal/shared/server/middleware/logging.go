package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"recipes-backend/internal/shared/telemetry"
)

// Context keys handlers may set to enrich the request log line.
const (
	RecipeIDKey    = "recipeId"
	UserIDKey      = "userId"
	UploadKeysKey  = "uploadKeys"
	UploadErrorKey = "uploadError"
)

// Logging emits a structured log per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.EqualFold(c.Request.Method, "OPTIONS") {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()
		reqID := RequestIDFromContext(c)

		recipeID, _ := c.Get(RecipeIDKey)
		userID, _ := c.Get(UserIDKey)
		uploadKeys, _ := c.Get(UploadKeysKey)
		uploadErr := ""
		if raw, ok := c.Get(UploadErrorKey); ok {
			if s, ok := raw.(string); ok {
				uploadErr = s
			}
		}

		telemetry.Info("request.complete", map[string]any{
			"request_id":   reqID,
			"method":       c.Request.Method,
			"path":         c.Request.URL.Path,
			"route":        c.FullPath(),
			"status":       status,
			"duration_ms":  float64(latency.Microseconds()) / 1000.0,
			"recipe_id":    recipeID,
			"user_id":      userID,
			"upload_keys":  uploadKeys,
			"upload_error": uploadErr,
			"client_ip":    c.ClientIP(),
			"user_agent":   c.Request.UserAgent(),
		})
	}
}
