package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helpers
// ==========================

type recordingLogger struct {
	warns  []map[string]interface{}
	errors []map[string]interface{}
}

func (l *recordingLogger) Warn(_ string, fields map[string]interface{}) {
	l.warns = append(l.warns, fields)
}

func (l *recordingLogger) Error(_ string, fields map[string]interface{}) {
	l.errors = append(l.errors, fields)
}

// ==========================
// Tests
// ==========================

func TestAs_PassesThroughWrappedStandardError(t *testing.T) {
	orig := NewJobNotFoundError("job-9")
	wrapped := fmt.Errorf("open session: %w", orig)

	got := As(wrapped)
	assert.Same(t, orig, got)
	assert.True(t, HasCode(wrapped, ErrCodeJobNotFound))
	assert.False(t, HasCode(wrapped, ErrCodeSessionNotFound))
}

func TestAs_WrapsPlainError(t *testing.T) {
	cause := stderrors.New("connection reset")
	got := As(cause)

	require.NotNil(t, got)
	assert.Equal(t, ErrCodeInternal, got.Code)
	assert.Equal(t, "connection reset", got.Details)
	assert.ErrorIs(t, got, cause)
	assert.Nil(t, As(nil))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{ErrCodeValidationFailed, http.StatusBadRequest},
		{ErrCodeInvalidCredentials, http.StatusUnauthorized},
		{ErrCodeForbidden, http.StatusForbidden},
		{ErrCodeJobNotFound, http.StatusNotFound},
		{ErrCodeSessionNotFound, http.StatusNotFound},
		{ErrCodeDuplicateApplication, http.StatusConflict},
		{ErrCodeEmailTaken, http.StatusConflict},
		{ErrCodeCandidateNotInSession, http.StatusUnprocessableEntity},
		{ErrCodeCandidatesUnavailable, http.StatusUnprocessableEntity},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		{ErrCodeSessionLimitReached, http.StatusServiceUnavailable},
		{ErrCodeDatabaseWriteFailed, http.StatusInternalServerError},
		{ErrCodeInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.code))
		})
	}
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "AUTH", GetErrorCategory(ErrCodeInvalidCredentials))
	assert.Equal(t, "AUTH", GetErrorCategory(ErrCodeRateLimited))
	assert.Equal(t, "SCREENING", GetErrorCategory(ErrCodeSessionNotFound))
	assert.Equal(t, "SCREENING", GetErrorCategory(ErrCodeCandidateNotInSession))
	assert.Equal(t, "DATABASE", GetErrorCategory(ErrCodeQueryExecutionFailed))
	assert.Equal(t, "NOTIFICATION", GetErrorCategory(ErrCodeNotificationSendFailed))
	assert.Equal(t, "HIRING", GetErrorCategory(ErrCodeDuplicateApplication))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeInvalidStatus))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))
}

func TestRateLimitedError_Metadata(t *testing.T) {
	err := NewRateLimitedError(1500 * time.Millisecond)
	assert.True(t, err.Retryable)
	assert.Equal(t, 2, err.Metadata["retryAfterSeconds"])
	assert.True(t, IsRetryableErrorCode(err.Code))
	assert.False(t, IsRetryableErrorCode(ErrCodeEmailTaken))
}

func TestErrorHandler_LogsBySeverity(t *testing.T) {
	log := &recordingLogger{}
	h := NewErrorHandler(log)

	status, stdErr := h.Handle(NewDuplicateApplicationError("job-1"), map[string]interface{}{"requestId": "r-1"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, ErrCodeDuplicateApplication, stdErr.Code)
	require.Len(t, log.warns, 1)
	assert.Equal(t, "r-1", log.warns[0]["requestId"])
	assert.Equal(t, "HIRING", log.warns[0]["errorCategory"])

	status, _ = h.Handle(stderrors.New("boom"), nil)
	assert.Equal(t, http.StatusInternalServerError, status)
	require.Len(t, log.errors, 1)
	assert.Equal(t, "INTERNAL_ERROR", log.errors[0]["errorCode"])
}
