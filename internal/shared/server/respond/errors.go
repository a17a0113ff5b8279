package respond

import (
	"github.com/gin-gonic/gin"

	"recipes-backend/internal/shared/telemetry"
)

// ErrorBody defines the standardized error object.
type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// ErrorResponse wraps the error body.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// Error sends a standardized error response.
func Error(c *gin.Context, status int, code, message string, details interface{}) {
	logHTTPError(c, status, map[string]any{"code": code, "message": message})

	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// Message is the {"message", "data"} envelope used by the resource endpoints.
type Message struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// Fail aborts with a Message envelope carrying data as diagnostic detail.
func Fail(c *gin.Context, status int, message string, data interface{}) {
	logHTTPError(c, status, map[string]any{"message": message})
	c.AbortWithStatusJSON(status, Message{Message: message, Data: data})
}

func logHTTPError(c *gin.Context, status int, fields map[string]any) {
	fields["status"] = status
	fields["path"] = c.Request.URL.Path
	fields["method"] = c.Request.Method
	fields["request_id"] = c.GetString("requestId")
	if status >= 500 {
		telemetry.Error("http.error", fields)
		return
	}
	telemetry.Warn("http.error", fields)
}
