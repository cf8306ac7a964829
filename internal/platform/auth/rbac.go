package auth

import (
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/dentix/dentix/internal/platform/apperr"
)

const (
	RoleAdmin        = "admin"
	RoleDentist      = "dentist"
	RoleAssistant    = "assistant"
	RoleReceptionist = "receptionist"
)

// ClinicRoles is every role allowed to read clinic data.
var ClinicRoles = []string{RoleAdmin, RoleDentist, RoleAssistant, RoleReceptionist}

// HasAnyRole reports whether granted and allowed intersect.
func HasAnyRole(granted, allowed []string) bool {
	for _, want := range allowed {
		for _, has := range granted {
			if has == want {
				return true
			}
		}
	}
	return false
}

// RequireRole allows the request only when the caller holds at least one of
// roles. There is no implicit superuser: admin must be listed to pass.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if HasAnyRole(RolesFromContext(c.Request().Context()), roles) {
				return next(c)
			}
			return apperr.HTTP(apperr.Forbidden(
				fmt.Sprintf("required role: %s", strings.Join(roles, " or "))))
		}
	}
}
