package devserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HTTPError is attached to a gin context by handlers and rendered by
// errorHandler.
type HTTPError struct {
	Code    int
	Message string
	Fields  map[string][]string
	Err     error
}

func (e *HTTPError) Error() string {
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func badRequest(message string, err error) *HTTPError {
	return &HTTPError{Code: http.StatusBadRequest, Message: message, Err: err}
}

func unprocessable(message string, fields map[string][]string) *HTTPError {
	return &HTTPError{Code: http.StatusUnprocessableEntity, Message: message, Fields: fields}
}

func errorHandler(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err
		var httpErr *HTTPError
		if errors.As(err, &httpErr) {
			logger.Debug("request rejected",
				zap.String("request_id", c.GetString(requestIDKey)),
				zap.Int("status", httpErr.Code),
				zap.Error(err),
			)
			failure(c, httpErr.Code, httpErr.Message, httpErr.Fields)
			return
		}
		logger.Error("request failed",
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.Error(err),
		)
		failure(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.", nil)
	}
}
