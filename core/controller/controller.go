package controller

import (
	"net/http"
	"time"

	"nuon-api/core/constants"
	"nuon-api/core/errors"
	"nuon-api/core/logger"
	"nuon-api/core/utils"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Response types
type (
	SuccessResponse struct {
		Success   bool      `json:"success"`
		Message   string    `json:"message"`
		Data      any       `json:"data,omitempty"`
		Timestamp time.Time `json:"timestamp"`
	}

	ErrorResponse struct {
		Success   bool             `json:"success"`
		Code      errors.ErrorCode `json:"code"`
		Message   string           `json:"message"`
		Error     any              `json:"error,omitempty"`
		Timestamp time.Time        `json:"timestamp"`
	}

	ValidationError struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	}
)

// Response handler interface and implementation
type BaseController interface {
	BadRequest(appErrCode errors.ErrorCode, message string, details ...any) *echo.HTTPError
	NotFound(appErrCode errors.ErrorCode, message string, details ...any) *echo.HTTPError
	Unauthorized(appErrCode errors.ErrorCode, message string, details ...any) *echo.HTTPError
	Forbidden(appErrCode errors.ErrorCode, message string, details ...any) *echo.HTTPError
	InternalServerError(appErrCode errors.ErrorCode, message string, details ...any) *echo.HTTPError
	SuccessResponse(c echo.Context, data any, message string) error
	CreatedResponse(c echo.Context, data any, message string) error
	ErrorResponse(c echo.Context, err error) error
}

type responseHandler struct{}

func NewBaseController() BaseController {
	return &responseHandler{}
}

// Success response functions
func NewSuccessResponse(data any, message string) *SuccessResponse {
	return &SuccessResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	}
}

func newErrorBody(appErrCode errors.ErrorCode, message string, details ...any) *ErrorResponse {
	resp := &ErrorResponse{
		Success:   false,
		Code:      appErrCode,
		Message:   message,
		Timestamp: time.Now(),
	}
	if len(details) > 0 && details[0] != nil {
		resp.Error = details[0]
	}
	return resp
}

// NewErrorResponse wraps the error body in an *echo.HTTPError; echo's error
// handler renders the body with the given status.
func NewErrorResponse(httpStatusCode int, appErrCode errors.ErrorCode, message string, details ...any) *echo.HTTPError {
	return echo.NewHTTPError(httpStatusCode, newErrorBody(appErrCode, message, details...))
}

// Validation functions
func NewValidationError(field, message string) ValidationError {
	return ValidationError{
		Field:   field,
		Message: message,
	}
}

// HTTP Error handlers
func (h *responseHandler) BadRequest(appErrCode errors.ErrorCode, message string, details ...any) *echo.HTTPError {
	return NewErrorResponse(http.StatusBadRequest, appErrCode, message, details...)
}

func (h *responseHandler) NotFound(appErrCode errors.ErrorCode, message string, details ...any) *echo.HTTPError {
	return NewErrorResponse(http.StatusNotFound, appErrCode, message, details...)
}

func (h *responseHandler) Unauthorized(appErrCode errors.ErrorCode, message string, details ...any) *echo.HTTPError {
	return NewErrorResponse(http.StatusUnauthorized, appErrCode, message, details...)
}

func (h *responseHandler) Forbidden(appErrCode errors.ErrorCode, message string, details ...any) *echo.HTTPError {
	return NewErrorResponse(http.StatusForbidden, appErrCode, message, details...)
}

func (h *responseHandler) InternalServerError(appErrCode errors.ErrorCode, message string, details ...any) *echo.HTTPError {
	if len(details) > 0 {
		if err, ok := details[0].(error); ok {
			logger.Error("BaseController:InternalServerError", "code", appErrCode, "error", err)
		}
	}
	return NewErrorResponse(http.StatusInternalServerError, appErrCode, "internal server error")
}

func (h *responseHandler) SuccessResponse(c echo.Context, data any, message string) error {
	return c.JSON(http.StatusOK, NewSuccessResponse(data, message))
}

func (h *responseHandler) CreatedResponse(c echo.Context, data any, message string) error {
	return c.JSON(http.StatusCreated, NewSuccessResponse(data, message))
}

// StatusFor maps an application error code to its HTTP status.
func StatusFor(code errors.ErrorCode) int {
	switch code {
	case errors.ErrInvalidInput, errors.ErrInvalidRequestData,
		errors.ErrInvalidTimeRange, errors.ErrPastStartTime, errors.ErrOverlappingSlot,
		errors.ErrSlotLocked, errors.ErrSlotUnavailable, errors.ErrDuplicateBooking,
		errors.ErrInvalidStatusTransition:
		return http.StatusBadRequest
	case errors.ErrUnauthorized, errors.ErrTokenExpired, errors.ErrInvalidTokenFormat, errors.ErrMissingAuthorizationHeader:
		return http.StatusUnauthorized
	case errors.ErrForbidden:
		return http.StatusForbidden
	case errors.ErrNotFound:
		return http.StatusNotFound
	case errors.ErrAlreadyExists:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// ErrorResponse renders err. 5xx responses never expose the underlying cause.
func (h *responseHandler) ErrorResponse(c echo.Context, err error) error {
	appCode := errors.ErrInternalServer
	msg := "internal server error"
	var cause error = err

	if ae, ok := err.(*errors.AppError); ok && ae != nil {
		appCode = ae.Code
		cause = ae.Err
		if ae.Message != "" {
			msg = ae.Message
		}
	}

	httpStatus := StatusFor(appCode)
	if httpStatus >= http.StatusInternalServerError {
		msg = "internal server error"
		logger.Error("BaseController:ErrorResponse",
			"status", httpStatus,
			"code", appCode,
			"path", c.Path(),
			"error", cause,
		)
	} else {
		logger.Debug("BaseController:ErrorResponse",
			"status", httpStatus,
			"code", appCode,
			"message", msg,
		)
	}
	return c.JSON(httpStatus, newErrorBody(appCode, msg))
}

// HTTPErrorHandler renders errors that escape handlers (bad routes, binder
// failures, middleware aborts) in the same envelope as ErrorResponse.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	he, ok := err.(*echo.HTTPError)
	if !ok {
		if ae, isApp := err.(*errors.AppError); isApp {
			_ = NewBaseController().ErrorResponse(c, ae)
			return
		}
		logger.Error("HTTPErrorHandler:Unhandled", "path", c.Path(), "error", err)
		he = NewErrorResponse(http.StatusInternalServerError, errors.ErrInternalServer, "internal server error")
	}

	body, isBody := he.Message.(*ErrorResponse)
	if !isBody {
		code := errors.ErrInvalidRequestData
		switch he.Code {
		case http.StatusNotFound:
			code = errors.ErrNotFound
		case http.StatusUnauthorized:
			code = errors.ErrUnauthorized
		case http.StatusForbidden:
			code = errors.ErrForbidden
		case http.StatusInternalServerError:
			code = errors.ErrInternalServer
		}
		body = newErrorBody(code, http.StatusText(he.Code))
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(he.Code)
		return
	}
	_ = c.JSON(he.Code, body)
}

// GetUserClaims returns the claims stored by the auth middleware.
func GetUserClaims(c echo.Context) (*utils.TokenClaims, bool) {
	claims, ok := c.Get(constants.ContextTokenData).(*utils.TokenClaims)
	if !ok || claims == nil {
		return nil, false
	}
	return claims, true
}

func GetUserID(c echo.Context) (uuid.UUID, bool) {
	claims, ok := GetUserClaims(c)
	if !ok {
		return uuid.Nil, false
	}
	return claims.UserID, true
}
