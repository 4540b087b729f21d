package errors

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrorTypeValidation    ErrorType = "validation"
	ErrorTypeDatabase      ErrorType = "database"
	ErrorTypeAuthorization ErrorType = "authorization"
	ErrorTypeNotFound      ErrorType = "not_found"
	ErrorTypeConflict      ErrorType = "conflict"
	ErrorTypeRateLimit     ErrorType = "rate_limit"
	ErrorTypeExternal      ErrorType = "external"
	ErrorTypeInternal      ErrorType = "internal"
	ErrorTypeTimeout       ErrorType = "timeout"
)

// AppError represents a custom application error
type AppError struct {
	Type       ErrorType              `json:"type"`
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	StatusCode int                    `json:"status_code"`
	Timestamp  time.Time              `json:"timestamp"`
	RequestID  string                 `json:"request_id,omitempty"`
	StackTrace string                 `json:"stack_trace,omitempty"`
	Retryable  bool                   `json:"retryable"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target
func (e *AppError) Is(target error) bool {
	if target == nil {
		return false
	}

	if appErr, ok := target.(*AppError); ok {
		return e.Type == appErr.Type && e.Code == appErr.Code
	}

	return errors.Is(e.Cause, target)
}

// WithDetails adds details to the error
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

// WithCause adds a cause to the error
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithRequestID adds a request ID to the error
func (e *AppError) WithRequestID(requestID string) *AppError {
	e.RequestID = requestID
	return e
}

// WithStackTrace adds stack trace to the error
func (e *AppError) WithStackTrace() *AppError {
	if e.StackTrace == "" {
		e.StackTrace = getStackTrace()
	}
	return e
}

// NewAppError creates a new application error
func NewAppError(errorType ErrorType, code, message string, statusCode int) *AppError {
	return &AppError{
		Type:       errorType,
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Timestamp:  time.Now(),
		Retryable:  isRetryableType(errorType),
	}
}

// Validation errors
func NewValidationError(message string, details map[string]interface{}) *AppError {
	return NewAppError(ErrorTypeValidation, "VALIDATION_ERROR", message, http.StatusBadRequest).
		WithDetails(details)
}

func NewRequiredFieldError(field string) *AppError {
	return NewValidationError(
		fmt.Sprintf("%s is required", field),
		map[string]interface{}{"field": field},
	)
}

func NewInvalidFieldError(field, value string) *AppError {
	return NewValidationError(
		fmt.Sprintf("Invalid value for %s: %s", field, value),
		map[string]interface{}{"field": field, "value": value},
	)
}

func NewBlankNoteError() *AppError {
	return NewRequiredFieldError("note")
}

func NewBlankCommentError() *AppError {
	return NewRequiredFieldError("text")
}

func NewInvalidStatusError(status string) *AppError {
	return NewInvalidFieldError("status", status)
}

// Authorization errors
func NewAuthorizationError(message string) *AppError {
	return NewAppError(ErrorTypeAuthorization, "AUTHORIZATION_ERROR", message, http.StatusForbidden)
}

func NewInsufficientPermissionsError() *AppError {
	return NewAuthorizationError("Insufficient permissions")
}

func NewNotReportAuthorError() *AppError {
	return NewAuthorizationError("Only the report author may perform this action")
}

// Not found errors
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrorTypeNotFound, "NOT_FOUND", fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

func NewReportNotFoundError() *AppError {
	return NewNotFoundError("Report")
}

func NewCommentNotFoundError() *AppError {
	return NewNotFoundError("Comment")
}

func NewPresetNotFoundError() *AppError {
	return NewNotFoundError("Filter preset")
}

func NewUserNotFoundError() *AppError {
	return NewNotFoundError("User")
}

// Conflict errors
func NewConflictError(message string) *AppError {
	return NewAppError(ErrorTypeConflict, "CONFLICT", message, http.StatusConflict)
}

func NewPresetNameTakenError() *AppError {
	return NewConflictError("Preset name already taken")
}

// NewTransientConflictError marks a concurrent-write collision. Unlike a plain
// conflict it is retryable: the caller may reissue the whole operation.
func NewTransientConflictError(resource string) *AppError {
	err := NewAppError(ErrorTypeConflict, "TRANSIENT_CONFLICT",
		fmt.Sprintf("%s was modified concurrently", resource),
		http.StatusConflict)
	err.Retryable = true
	return err
}

// IsTransientConflict reports whether err is a retryable concurrent-write collision.
func IsTransientConflict(err error) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Code == "TRANSIENT_CONFLICT"
}

// Rate limit errors
func NewRateLimitError(message string) *AppError {
	return NewAppError(ErrorTypeRateLimit, "RATE_LIMIT_EXCEEDED", message, http.StatusTooManyRequests)
}

func NewTooManyRequestsError() *AppError {
	return NewRateLimitError("Too many requests, please try again later")
}

// Database errors
func NewDatabaseError(message string, cause error) *AppError {
	return NewAppError(ErrorTypeDatabase, "DATABASE_ERROR", message, http.StatusInternalServerError).
		WithCause(cause).
		WithStackTrace()
}

func NewDatabaseQueryError(cause error) *AppError {
	return NewDatabaseError("Database query failed", cause)
}

// Timeout errors
func NewTimeoutError(operation string) *AppError {
	return NewAppError(ErrorTypeTimeout, "TIMEOUT_ERROR",
		fmt.Sprintf("Operation timed out: %s", operation),
		http.StatusRequestTimeout).
		WithDetails(map[string]interface{}{"operation": operation})
}

// Internal errors
func NewInternalError(message string, cause error) *AppError {
	return NewAppError(ErrorTypeInternal, "INTERNAL_ERROR", message, http.StatusInternalServerError).
		WithCause(cause).
		WithStackTrace()
}

func NewUnexpectedError(cause error) *AppError {
	return NewInternalError("An unexpected error occurred", cause)
}

// Business logic errors
func NewBusinessLogicError(message string) *AppError {
	return NewAppError(ErrorTypeValidation, "BUSINESS_LOGIC_ERROR", message, http.StatusBadRequest)
}

func NewSystemPresetDeleteError() *AppError {
	return NewBusinessLogicError("The system default preset cannot be deleted")
}

// Helper functions
func isRetryableType(errorType ErrorType) bool {
	retryableTypes := map[ErrorType]bool{
		ErrorTypeTimeout:  true,
		ErrorTypeExternal: true,
		ErrorTypeDatabase: true,
	}
	return retryableTypes[errorType]
}

func getStackTrace() string {
	buf := make([]byte, 1024*4)
	n := runtime.Stack(buf, false)
	return string(buf[:n])
}

// WrapError wraps an existing error into an AppError
func WrapError(err error, errorType ErrorType, code, message string, statusCode int) *AppError {
	if err == nil {
		return nil
	}

	// If it's already an AppError, return it
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}

	return NewAppError(errorType, code, message, statusCode).WithCause(err)
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

// IsNotFound checks if an error is a not-found AppError
func IsNotFound(err error) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Type == ErrorTypeNotFound
}

// IsValidation checks if an error is a validation AppError
func IsValidation(err error) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Type == ErrorTypeValidation
}

// GetStatusCode returns the HTTP status code for an error
func GetStatusCode(err error) int {
	if appErr, ok := err.(*AppError); ok {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}

// GetErrorCode returns the error code for an error
func GetErrorCode(err error) string {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return "UNKNOWN_ERROR"
}
