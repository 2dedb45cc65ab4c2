package errors

import (
	"fmt"
	"net/http"
)

// ErrorCode represents application-specific error codes
type ErrorCode string

const (
	// Authentication errors (1xxx)
	ErrCodeUnauthorized       ErrorCode = "E1001"
	ErrCodeInvalidCredentials ErrorCode = "E1002"
	ErrCodeInvalidToken       ErrorCode = "E1003"
	ErrCodeAccessDenied       ErrorCode = "E1004"

	// Validation errors (2xxx)
	ErrCodeValidation   ErrorCode = "E2001"
	ErrCodeMissingField ErrorCode = "E2002"
	ErrCodeInvalidEmail ErrorCode = "E2003"

	// Resource errors (3xxx)
	ErrCodeNotFound       ErrorCode = "E3001"
	ErrCodeDuplicateEmail ErrorCode = "E3002"

	// Business logic errors (4xxx)
	ErrCodeInvalidOrExpiredOTP ErrorCode = "E4001"

	// External service errors (5xxx)
	ErrCodeNotification ErrorCode = "E5001"

	// Internal errors (9xxx)
	ErrCodeInternal ErrorCode = "E9001"
	ErrCodeDatabase ErrorCode = "E9002"
	ErrCodeConfig   ErrorCode = "E9003"
)

// AppError represents an application error with context
type AppError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	HTTPStatus int                    `json:"-"`
	Cause      error                  `json:"-"`
	Fields     map[string]interface{} `json:"fields,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCause wraps an underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

// WithField adds a field to the error
func (e *AppError) WithField(key string, value interface{}) *AppError {
	if e.Fields == nil {
		e.Fields = make(map[string]interface{})
	}
	e.Fields[key] = value
	return e
}

// New creates a new AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: getHTTPStatus(code),
	}
}

// Wrap wraps an existing error with AppError
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: getHTTPStatus(code),
		Cause:      err,
	}
}

// ============================================================
// Predefined error constructors
// ============================================================

func Unauthorized(message string) *AppError {
	return New(ErrCodeUnauthorized, message)
}

func InvalidCredentials() *AppError {
	return New(ErrCodeInvalidCredentials, "Invalid admin credentials")
}

func AccessDenied() *AppError {
	return New(ErrCodeAccessDenied, "You do not have permission to access this resource")
}

func ValidationError(message string) *AppError {
	return New(ErrCodeValidation, message)
}

func MissingField(field string) *AppError {
	return New(ErrCodeMissingField, fmt.Sprintf("%s is required", field)).WithField("field", field)
}

func NotFound(resource string) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found", resource))
}

func DuplicateEmail() *AppError {
	return New(ErrCodeDuplicateEmail, "Email already registered")
}

func InvalidOrExpiredOTP() *AppError {
	return New(ErrCodeInvalidOrExpiredOTP, "Invalid or expired OTP")
}

func NotificationError(err error) *AppError {
	return Wrap(err, ErrCodeNotification, "Failed to send OTP email. Please try again later.")
}

func ConfigError(message string) *AppError {
	return New(ErrCodeConfig, message)
}

func Internal(message string) *AppError {
	return New(ErrCodeInternal, message)
}

func DatabaseError(err error) *AppError {
	return Wrap(err, ErrCodeDatabase, "Database error")
}

// ============================================================
// Helper functions
// ============================================================

func getHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeUnauthorized, ErrCodeInvalidCredentials, ErrCodeInvalidToken:
		return http.StatusUnauthorized
	case ErrCodeAccessDenied:
		return http.StatusForbidden
	case ErrCodeValidation, ErrCodeMissingField, ErrCodeInvalidEmail, ErrCodeInvalidOrExpiredOTP:
		return http.StatusBadRequest
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeDuplicateEmail:
		return http.StatusConflict
	case ErrCodeNotification:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// AsAppError converts an error to AppError if possible
func AsAppError(err error) (*AppError, bool) {
	appErr, ok := err.(*AppError)
	return appErr, ok
}

// ToAppError converts any error to AppError
func ToAppError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return Wrap(err, ErrCodeInternal, err.Error())
}
