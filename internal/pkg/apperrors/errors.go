package apperrors

import "errors"

// Common errors
var (
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
	ErrConflict              = errors.New("conflict")

	ErrUnauthorized     = errors.New("unauthorized")
	ErrTokenExpired     = errors.New("token expired")
	ErrTokenInvalid     = errors.New("invalid token")
	ErrPermissionDenied = errors.New("permission denied")

	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")
	ErrRateLimited      = errors.New("too many requests")
)

// Application review errors
var (
	ErrApplicationNotFound = errors.New("application not found")
	ErrIllegalTransition   = errors.New("illegal status transition")
	ErrInvalidTarget       = errors.New("invalid redirection target")
	ErrDeleteNotAllowed    = errors.New("application cannot be deleted once an interview is scheduled")
	ErrApplicationExists   = errors.New("an application for this track already exists")
)

// Mail errors are reported to callers but never fail a committed change
var (
	ErrMail = errors.New("mail delivery failed")
)

// User and EB profile errors
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrEBProfileNotFound = errors.New("eb profile not found")
)

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) error {
	return &CustomError{Err: ErrConflict, Message: message}
}

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) error {
	return &CustomError{Err: ErrPermissionDenied, Message: message}
}

// NewBadRequestError creates a new custom error for bad request with a message
func NewBadRequestError(message string) error {
	return &CustomError{Err: ErrBadRequest, Message: message}
}

// NewValidationError creates a validation error carrying per-field details
func NewValidationError(message string, fields map[string]interface{}) error {
	return (&CustomError{Err: ErrValidationFailed, Message: message}).WithDetails(fields)
}

// NewIllegalTransitionError reports an action that is not valid from the current status
func NewIllegalTransitionError(message string, details map[string]interface{}) error {
	return (&CustomError{Err: ErrIllegalTransition, Message: message}).WithDetails(details)
}

// NewInvalidTargetError reports a redirect without a resolvable target
func NewInvalidTargetError(message string) error {
	return &CustomError{Err: ErrInvalidTarget, Message: message}
}

// Is returns whether target matches any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{Err: err, Message: message}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// DetailsOf returns the details attached to err, if any
func DetailsOf(err error) map[string]interface{} {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.Details
	}
	return nil
}
