package devserver

import (
	"github.com/gin-gonic/gin"
)

const requestIDKey = "RequestID"

// Response standardizes the JSON body of every endpoint. Errors uses the
// field keyed shape the submission controller maps onto inline errors.
type Response struct {
	Success   bool                `json:"success"`
	Message   string              `json:"message"`
	Data      any                 `json:"data,omitempty"`
	Errors    map[string][]string `json:"errors,omitempty"`
	RequestID string              `json:"request_id,omitempty"`
}

func success(c *gin.Context, code int, message string, data any) {
	c.JSON(code, Response{
		Success:   true,
		Message:   message,
		Data:      data,
		RequestID: c.GetString(requestIDKey),
	})
}

func failure(c *gin.Context, code int, message string, fields map[string][]string) {
	c.JSON(code, Response{
		Success:   false,
		Message:   message,
		Errors:    fields,
		RequestID: c.GetString(requestIDKey),
	})
}
