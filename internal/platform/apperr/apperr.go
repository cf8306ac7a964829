// Package apperr defines the error kinds shared by every domain service and
// their mapping onto HTTP status codes.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrBadRequest      = errors.New("bad request")
	ErrInternal        = errors.New("internal error")
)

// Error carries a caller-facing message and the kind it belongs to.
type Error struct {
	Kind  error
	Msg   string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Cause)
	}
	return e.Msg
}

// Is lets errors.Is match on the kind as well as the cause chain.
func (e *Error) Is(target error) bool {
	return e.Kind == target
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func Unauthenticated(msg string) error { return &Error{Kind: ErrUnauthenticated, Msg: msg} }
func Forbidden(msg string) error       { return &Error{Kind: ErrForbidden, Msg: msg} }
func NotFound(msg string) error        { return &Error{Kind: ErrNotFound, Msg: msg} }
func Conflict(msg string) error        { return &Error{Kind: ErrConflict, Msg: msg} }
func BadRequest(msg string) error      { return &Error{Kind: ErrBadRequest, Msg: msg} }

// BadRequestf formats a BadRequest message.
func BadRequestf(format string, args ...interface{}) error {
	return BadRequest(fmt.Sprintf(format, args...))
}

// Internal wraps a storage or unexpected failure. The cause message is kept
// in the response body for diagnostics.
func Internal(msg string, cause error) error {
	return &Error{Kind: ErrInternal, Msg: msg, Cause: cause}
}

// StatusCode returns the HTTP status for err.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// HTTP converts err into an echo.HTTPError. Errors that already are
// echo.HTTPError pass through unchanged.
func HTTP(err error) error {
	if err == nil {
		return nil
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}
	return echo.NewHTTPError(StatusCode(err), err.Error())
}
