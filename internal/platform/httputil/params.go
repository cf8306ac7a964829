// Package httputil holds small request parsing helpers shared by handlers.
package httputil

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/dentix/dentix/internal/platform/apperr"
)

// ParamID parses the named path parameter as a positive integer id.
func ParamID(c echo.Context, name string) (int64, error) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.BadRequestf("invalid %s: %q", name, raw)
	}
	return id, nil
}

// Message is the body of responses that carry no record.
type Message struct {
	Message string `json:"message"`
}
