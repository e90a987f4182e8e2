// internal/api/errors.go
package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	apperrors "swipe-screening/internal/common/errors"
)

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error     string                 `json:"error"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	RequestID string                 `json:"requestId,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// handleError renders service errors and echo's own routing errors in one shape.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var (
		status int
		body   ErrorResponse
	)
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		status = httpErr.Code
		body = ErrorResponse{Error: routingCode(status), Message: http.StatusText(status)}
		if msg, ok := httpErr.Message.(string); ok && msg != "" {
			body.Message = msg
		}
	} else {
		var stdErr *apperrors.StandardError
		status, stdErr = s.errs.Handle(err, map[string]interface{}{
			"requestId": requestID(c),
			"method":    c.Request().Method,
			"path":      c.Path(),
		})
		body = ErrorResponse{
			Error:    string(stdErr.Code),
			Message:  stdErr.Message,
			Details:  stdErr.Details,
			Metadata: stdErr.Metadata,
		}
		if secs, ok := stdErr.Metadata["retryAfterSeconds"].(int); ok {
			c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
		}
		if status >= http.StatusInternalServerError {
			// internals stay in the log
			body.Details = ""
		}
	}
	body.RequestID = requestID(c)
	body.Timestamp = now()

	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(status)
	} else {
		werr = c.JSON(status, body)
	}
	if werr != nil {
		s.log.Error("Failed to write error response", map[string]interface{}{"error": werr})
	}
}

func routingCode(status int) string {
	switch status {
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case http.StatusRequestEntityTooLarge:
		return "REQUEST_TOO_LARGE"
	case http.StatusUnsupportedMediaType:
		return "UNSUPPORTED_MEDIA_TYPE"
	}
	if status >= http.StatusInternalServerError {
		return string(apperrors.ErrCodeInternal)
	}
	return "BAD_REQUEST"
}
