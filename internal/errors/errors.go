package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrEmailTaken is returned when signing up with an email that already exists.
	ErrEmailTaken = errors.New("email is already registered")
	// ErrNotRegistered is returned when logging in with an unknown email.
	ErrNotRegistered = errors.New("you are not registered in our app")
	// ErrInvalidCredentials is returned when the password does not match.
	ErrInvalidCredentials = errors.New("email or password doesn't match or exist")
	// ErrWrongOldPassword is returned when the old password check fails on change.
	ErrWrongOldPassword = errors.New("old password is incorrect")
	// ErrUserNotFound is returned when a user lookup comes up empty.
	ErrUserNotFound = errors.New("no user found")
	// ErrResetTokenInvalid is returned for an unknown or expired reset token.
	ErrResetTokenInvalid = errors.New("token is invalid or expired")
	// ErrPasswordMismatch is returned when password and confirmation differ.
	ErrPasswordMismatch = errors.New("password and confirm password do not match")
	// ErrInvalidRole is returned when an admin update carries an unknown role.
	ErrInvalidRole = errors.New("invalid role")
	// ErrMailDelivery is returned when the reset email could not be sent.
	ErrMailDelivery = errors.New("password reset email could not be sent")
)

// ErrorResponse is the JSON error envelope shared by all endpoints.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Success: false,
		Error:   e.Message,
		Code:    e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Validation, auth,
// not-found and token errors all carry 400; mail delivery failures carry
// 500 because the fault is on the server side.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrPasswordMismatch), errors.Is(err, ErrInvalidRole):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
	case errors.Is(err, ErrNotRegistered), errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrWrongOldPassword):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "AUTH_ERROR")
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "NOT_FOUND")
	case errors.Is(err, ErrResetTokenInvalid):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "TOKEN_ERROR")
	case errors.Is(err, ErrEmailTaken):
		return NewHTTPError(http.StatusConflict, err.Error(), "EMAIL_TAKEN")
	case errors.Is(err, ErrMailDelivery):
		return NewHTTPError(http.StatusInternalServerError, err.Error(), "DELIVERY_ERROR")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
