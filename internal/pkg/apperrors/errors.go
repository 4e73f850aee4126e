package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
	ErrConflict              = errors.New("conflict")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrInvalidFormat      = errors.New("invalid token format")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrInvalidEmail     = errors.New("invalid email")
	ErrInvalidPassword  = errors.New("invalid password")
	ErrBadRequest       = errors.New("bad request")

	// Profile errors
	ErrProfileNotFound    = errors.New("profile not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
)

// Group errors
var (
	ErrGroupNotFound        = errors.New("group not found")
	ErrAlreadyInGroup       = errors.New("profile already belongs to a group")
	ErrAlreadyCoordinator   = errors.New("profile already coordinates a group")
	ErrJoinRequestNotFound  = errors.New("join request not found")
	ErrDuplicateJoinRequest = errors.New("join request already posted")
)

// Reflection errors
var (
	ErrReflectionNotFound = errors.New("reflection not found")
	ErrAlreadyFavourited  = errors.New("reflection already favourited")
	ErrNotFavourited      = errors.New("reflection is not favourited")
)

// Confirmation code errors
var (
	ErrCodeNotFound = errors.New("confirmation code is invalid")
	ErrCodeCooldown = errors.New("a confirmation code was already sent recently")
)

// Attachment errors
var (
	ErrAttachmentNotFound = errors.New("attachment not found")
	ErrFileUnavailable    = errors.New("the backing file is not available")
)

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
	}
}

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) error {
	return &CustomError{
		Err:     ErrPermissionDenied,
		Message: message,
	}
}

// NewValidationError creates a new custom error for failed input validation with a message
func NewValidationError(message string) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
	}
}

// NewUnauthorizedError creates a new custom error for failed authentication with a message
func NewUnauthorizedError(message string) error {
	return &CustomError{
		Err:     ErrInvalidCredentials,
		Message: message,
	}
}

// NewBadRequestError creates a new custom error for bad request with a message
func NewBadRequestError(message string) error {
	return &CustomError{
		Err:     ErrBadRequest,
		Message: message,
	}
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
	Code    string
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
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}
