// internal/common/errors/handler.go
package errors

// ErrorHandler normalizes errors leaving a request and logs them by severity.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Handle returns the HTTP status and normalized error for err. Server-side failures
// are logged at error level, client mistakes at warn.
func (h *ErrorHandler) Handle(err error, fields map[string]interface{}) (int, *StandardError) {
	stdErr := As(err)
	status := HTTPStatus(stdErr.Code)
	h.logError(status, stdErr, fields)
	return status, stdErr
}

func (h *ErrorHandler) logError(status int, stdErr *StandardError, extra map[string]interface{}) {
	fields := map[string]interface{}{
		"errorCode":     string(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"retryable":     stdErr.Retryable,
		"errorCategory": GetErrorCategory(stdErr.Code),
		"status":        status,
	}
	for k, v := range extra {
		fields[k] = v
	}

	if status >= 500 {
		h.logger.Error("Request failed", fields)
		return
	}
	h.logger.Warn("Request rejected", fields)
}
