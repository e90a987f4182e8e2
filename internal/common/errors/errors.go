// internal/common/errors/errors.go

// Package errors provides the standardized error taxonomy shared by services and the HTTP API.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Screening / hiring errors
const (
	ErrCodeJobNotFound           ErrorCode = "JOB_NOT_FOUND"
	ErrCodeJobClosed             ErrorCode = "JOB_CLOSED"
	ErrCodeApplicationNotFound   ErrorCode = "APPLICATION_NOT_FOUND"
	ErrCodeDuplicateApplication  ErrorCode = "DUPLICATE_APPLICATION"
	ErrCodeInvalidStatus         ErrorCode = "INVALID_STATUS_TRANSITION"
	ErrCodeCandidatesUnavailable ErrorCode = "CANDIDATES_UNAVAILABLE"
	ErrCodeProfileNotFound       ErrorCode = "PROFILE_NOT_FOUND"

	ErrCodeSessionNotFound       ErrorCode = "SESSION_NOT_FOUND"
	ErrCodeSessionLimitReached   ErrorCode = "SESSION_LIMIT_REACHED"
	ErrCodeCandidateNotInSession ErrorCode = "CANDIDATE_NOT_IN_SESSION"

	ErrCodeConversationNotFound ErrorCode = "CONVERSATION_NOT_FOUND"
)

// Auth errors
const (
	ErrCodeEmailTaken         ErrorCode = "EMAIL_TAKEN"
	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeUnauthorized       ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden          ErrorCode = "FORBIDDEN"
	ErrCodeRateLimited        ErrorCode = "RATE_LIMITED"
)

// Technical errors
const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeDatabaseWriteFailed      ErrorCode = "DATABASE_WRITE_FAILED"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata attaches a metadata entry and returns the same error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = map[string]interface{}{}
	}
	e.Metadata[key] = value
	return e
}

func newError(code ErrorCode, message, details string, retryable bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

func causeDetails(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// ==========================
// 2. Error Constructors
// ==========================

// NewJobNotFoundError creates a non-retryable error for an unknown job.
func NewJobNotFoundError(jobID string) *StandardError {
	return newError(ErrCodeJobNotFound, "Job not found", fmt.Sprintf("job_id: %s", jobID), false, nil)
}

// NewJobClosedError reports an application attempt on a job that is not active.
func NewJobClosedError(jobID string) *StandardError {
	return newError(ErrCodeJobClosed, "Job is not accepting applications", fmt.Sprintf("job_id: %s", jobID), false, nil)
}

func NewApplicationNotFoundError(applicationID string) *StandardError {
	return newError(ErrCodeApplicationNotFound, "Application not found", fmt.Sprintf("application_id: %s", applicationID), false, nil)
}

// NewDuplicateApplicationError reports a second application to the same job.
func NewDuplicateApplicationError(jobID string) *StandardError {
	return newError(ErrCodeDuplicateApplication, "Already applied to this job", fmt.Sprintf("job_id: %s", jobID), false, nil)
}

func NewInvalidStatusError(err error) *StandardError {
	return newError(ErrCodeInvalidStatus, "Invalid application status change", causeDetails(err), false, err)
}

// NewCandidatesUnavailableError reports that the candidate list for a job could not be loaded.
func NewCandidatesUnavailableError(jobID string, err error) *StandardError {
	return newError(ErrCodeCandidatesUnavailable, "Candidates for job could not be loaded", causeDetails(err), true, err).
		WithMetadata("jobId", jobID)
}

func NewProfileNotFoundError(profileID string) *StandardError {
	return newError(ErrCodeProfileNotFound, "Profile not found", fmt.Sprintf("profile_id: %s", profileID), false, nil)
}

func NewSessionNotFoundError(sessionID string) *StandardError {
	return newError(ErrCodeSessionNotFound, "Screening session not found", fmt.Sprintf("session_id: %s", sessionID), false, nil)
}

// NewSessionLimitReachedError is returned when the registry holds the configured maximum of sessions.
func NewSessionLimitReachedError(limit int) *StandardError {
	return newError(ErrCodeSessionLimitReached, "Too many open screening sessions", fmt.Sprintf("limit: %d", limit), true, nil)
}

func NewCandidateNotInSessionError(candidateID string) *StandardError {
	return newError(ErrCodeCandidateNotInSession, "Candidate is not part of this screening session", fmt.Sprintf("candidate_id: %s", candidateID), false, nil)
}

func NewConversationNotFoundError(conversationID string) *StandardError {
	return newError(ErrCodeConversationNotFound, "Conversation not found", fmt.Sprintf("conversation_id: %s", conversationID), false, nil)
}

func NewEmailTakenError(email string) *StandardError {
	return newError(ErrCodeEmailTaken, "Email already registered", fmt.Sprintf("email: %s", email), false, nil)
}

// NewInvalidCredentialsError never says which of email or password was wrong.
func NewInvalidCredentialsError() *StandardError {
	return newError(ErrCodeInvalidCredentials, "Invalid email or password", "", false, nil)
}

func NewUnauthorizedError(details string) *StandardError {
	return newError(ErrCodeUnauthorized, "Authentication required", details, false, nil)
}

func NewForbiddenError(details string) *StandardError {
	return newError(ErrCodeForbidden, "Not allowed", details, false, nil)
}

func NewRateLimitedError(retryAfter time.Duration) *StandardError {
	return newError(ErrCodeRateLimited, "Too many attempts", fmt.Sprintf("retry_after: %s", retryAfter), true, nil).
		WithMetadata("retryAfterSeconds", int(retryAfter.Round(time.Second).Seconds()))
}

func NewValidationFailedError(details string) *StandardError {
	return newError(ErrCodeValidationFailed, "Request validation failed", details, false, nil)
}

func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnectionFailed, "Failed to connect to database", causeDetails(err), true, err)
}

func NewQueryExecutionFailedError(operation string, err error) *StandardError {
	return newError(ErrCodeQueryExecutionFailed, "Database query failed", fmt.Sprintf("%s: %s", operation, causeDetails(err)), true, err)
}

func NewDatabaseWriteFailedError(operation string, err error) *StandardError {
	return newError(ErrCodeDatabaseWriteFailed, "Failed to write record", fmt.Sprintf("%s: %s", operation, causeDetails(err)), true, err)
}

func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return newError(ErrCodeNotificationSendFailed, "Failed to send notification", fmt.Sprintf("%s: %s", channel, causeDetails(err)), true, err)
}

func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", causeDetails(err), false, err)
}

// ==========================
// 3. Normalisation and HTTP mapping
// ==========================

// As returns err as a StandardError, wrapping anything else as INTERNAL_ERROR.
func As(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return NewInternalError(err)
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code ErrorCode) bool {
	var stdErr *StandardError
	return stderrors.As(err, &stdErr) && stdErr.Code == code
}

// HTTPStatus maps an error code to the HTTP status the API answers with.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeValidationFailed, ErrCodeInvalidStatus:
		return http.StatusBadRequest
	case ErrCodeInvalidCredentials, ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeJobNotFound, ErrCodeApplicationNotFound, ErrCodeProfileNotFound,
		ErrCodeSessionNotFound, ErrCodeConversationNotFound:
		return http.StatusNotFound
	case ErrCodeDuplicateApplication, ErrCodeEmailTaken:
		return http.StatusConflict
	case ErrCodeJobClosed, ErrCodeCandidateNotInSession, ErrCodeCandidatesUnavailable:
		return http.StatusUnprocessableEntity
	case ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case ErrCodeSessionLimitReached, ErrCodeDatabaseConnectionFailed:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ==========================
// 4. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeDatabaseWriteFailed,
		ErrCodeNotificationSendFailed,
		ErrCodeCandidatesUnavailable,
		ErrCodeRateLimited,
		ErrCodeSessionLimitReached:
		return true
	}
	return false
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "CREDENTIALS") || strings.Contains(codeStr, "AUTHORIZED") ||
		strings.Contains(codeStr, "FORBIDDEN") || strings.Contains(codeStr, "EMAIL") ||
		strings.Contains(codeStr, "RATE"):
		return "AUTH"
	case strings.Contains(codeStr, "SESSION") || strings.Contains(codeStr, "CANDIDATE"):
		return "SCREENING"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY"):
		return "DATABASE"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "JOB") || strings.Contains(codeStr, "APPLICATION") ||
		strings.Contains(codeStr, "PROFILE") || strings.Contains(codeStr, "CONVERSATION"):
		return "HIRING"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
