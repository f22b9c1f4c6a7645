package errors

import (
	stderrors "errors"
	"fmt"
)

type ErrorCode string

const (
	ErrInternalServer             ErrorCode = "INTERNAL_SERVER_ERROR"
	ErrInvalidInput               ErrorCode = "INVALID_INPUT"
	ErrInvalidRequestData         ErrorCode = "INVALID_REQUEST_DATA"
	ErrUnauthorized               ErrorCode = "UNAUTHORIZED"
	ErrForbidden                  ErrorCode = "FORBIDDEN"
	ErrNotFound                   ErrorCode = "NOT_FOUND"
	ErrAlreadyExists              ErrorCode = "ALREADY_EXISTS"
	ErrTokenExpired               ErrorCode = "TOKEN_EXPIRED"
	ErrInvalidTokenFormat         ErrorCode = "INVALID_TOKEN_FORMAT"
	ErrMissingAuthorizationHeader ErrorCode = "MISSING_AUTHORIZATION_HEADER"
	ErrGetFailed                  ErrorCode = "GET_FAILED"
	ErrCreateFailed               ErrorCode = "CREATE_FAILED"
	ErrUpdateFailed               ErrorCode = "UPDATE_FAILED"
	ErrDeleteFailed               ErrorCode = "DELETE_FAILED"

	// Availability & booking
	ErrInvalidTimeRange        ErrorCode = "INVALID_TIME_RANGE"
	ErrPastStartTime           ErrorCode = "PAST_START_TIME"
	ErrOverlappingSlot         ErrorCode = "OVERLAPPING_SLOT"
	ErrSlotLocked              ErrorCode = "SLOT_LOCKED"
	ErrSlotUnavailable         ErrorCode = "SLOT_UNAVAILABLE"
	ErrDuplicateBooking        ErrorCode = "DUPLICATE_BOOKING"
	ErrInvalidStatusTransition ErrorCode = "INVALID_STATUS_TRANSITION"
	ErrExternalProvider        ErrorCode = "EXTERNAL_PROVIDER_FAILURE"
)

// AppError is the error type returned by services. Err carries the underlying
// cause for logging and is never serialized to clients.
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches any *AppError carrying the same code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

func New(message string) error {
	return stderrors.New(message)
}

// CodeOf returns the code of the first AppError in err's chain, or "" if none.
func CodeOf(err error) ErrorCode {
	var ae *AppError
	if stderrors.As(err, &ae) {
		return ae.Code
	}
	return ""
}

// AsAppError returns the AppError in err's chain, or wraps err with the
// fallback code and message.
func AsAppError(err error, fallback ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	var ae *AppError
	if stderrors.As(err, &ae) {
		return ae
	}
	return NewAppError(fallback, message, err)
}
