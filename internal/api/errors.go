// errors.go - Structured error handling for API responses
package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ctutil/backend/internal/common"
	"github.com/ctutil/backend/internal/logging"
	"github.com/ctutil/backend/internal/response"
	"github.com/labstack/echo/v4"
)

// APIError represents a failure with an explicit HTTP status and envelope state
type APIError struct {
	Status  int
	State   response.State
	Message string
	Cause   error
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Cause
}

// NewBadRequestError creates a 400 Bad Request error
func NewBadRequestError(message string, cause error) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		State:   response.StateInvalidArgument,
		Message: message,
		Cause:   cause,
	}
}

// NewValidationError creates a 400 validation error for a specific field
func NewValidationError(field string) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		State:   response.StateInvalidArgument,
		Message: fmt.Sprintf("validation failed for field: %s", field),
	}
}

// NewInternalError creates a 500 Internal Server Error
func NewInternalError(message string, cause error) *APIError {
	return &APIError{
		Status:  http.StatusInternalServerError,
		State:   response.StateNormalError,
		Message: message,
		Cause:   cause,
	}
}

// classify maps any handler error to an APIError
func classify(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return &APIError{
			Status:  httpErr.Code,
			State:   response.StateNormalError,
			Message: fmt.Sprintf("%v", httpErr.Message),
		}
	}

	switch {
	case errors.Is(err, common.ErrInvalidArgument):
		return &APIError{Status: http.StatusBadRequest, State: response.StateInvalidArgument, Message: err.Error()}
	case errors.Is(err, common.ErrTokenExpired), errors.Is(err, common.ErrInvalidToken):
		return &APIError{Status: http.StatusUnauthorized, State: response.StateLoginRequired, Message: err.Error()}
	case errors.Is(err, common.ErrAuthentication), errors.Is(err, common.ErrIntegrity):
		return &APIError{Status: http.StatusBadGateway, State: response.StateVendorError, Message: err.Error()}
	}

	return &APIError{
		Status:  http.StatusInternalServerError,
		State:   response.StateNormalError,
		Message: "An unexpected error occurred",
		Cause:   err,
	}
}

// NewErrorHandler returns the echo error handler that renders every error
// as an envelope.
// Usage: e.HTTPErrorHandler = api.NewErrorHandler(log)
func NewErrorHandler(log logging.Logger) echo.HTTPErrorHandler {
	if log == nil {
		log = logging.Nop()
	}
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		apiErr := classify(err)
		if apiErr.Status >= http.StatusInternalServerError {
			log.Error(c.Request().Context(), "request failed",
				"method", c.Request().Method, "path", c.Path(), "error", err)
		}

		resp := response.Error(apiErr.Message, apiErr.State).WithStatus(apiErr.Status)
		if c.Request().Method == http.MethodHead {
			c.NoContent(apiErr.Status)
			return
		}
		if sendErr := resp.Send(c); sendErr != nil {
			log.Error(c.Request().Context(), "writing error response", "error", sendErr)
		}
	}
}
