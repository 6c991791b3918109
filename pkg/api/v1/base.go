package apiv1

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/loopmsg/wabridge/pkg/types"
)

const (
	HttpServerBaseRoute string = "/api/v1"
)

// ErrorBody is the standard error response shape
type ErrorBody struct {
	Error         string `json:"error"`
	AlreadyPinned bool   `json:"alreadyPinned,omitempty"`
}

// ErrorResponse returns an error response
func ErrorResponse(c echo.Context, code int, message string) error {
	return c.JSON(code, ErrorBody{Error: message})
}

// MapDomainError translates the shared error taxonomy into HTTP responses.
// Anything unrecognized becomes a sanitized 500; callers log the underlying
// error before returning it here.
func MapDomainError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, types.ErrUnauthorized):
		return ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, types.ErrNotConnected):
		return ErrorResponse(c, http.StatusBadRequest, "platform not connected, connect your account first")
	case errors.Is(err, types.ErrAuthExpired):
		return ErrorResponse(c, http.StatusUnauthorized, "authorization expired, please reconnect your account")
	case errors.Is(err, types.ErrDuplicatePin):
		return c.JSON(http.StatusBadRequest, ErrorBody{Error: "message already pinned", AlreadyPinned: true})
	default:
		return ErrorResponse(c, http.StatusInternalServerError, "internal error")
	}
}
