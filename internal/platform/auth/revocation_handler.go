package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dentix/dentix/internal/platform/apperr"
)

// revokeTokenRequest is the request body for POST /auth/revoke.
type revokeTokenRequest struct {
	Token string `json:"token"`
}

// RegisterRevocationRoutes mounts administrative revocation of another
// caller's credential. Requires the admin role.
func RegisterRevocationRoutes(g *echo.Group, tokens *TokenService) {
	authGroup := g.Group("/auth", RequireRole(RoleAdmin))
	authGroup.POST("/revoke", handleRevokeToken(tokens))
}

func handleRevokeToken(tokens *TokenService) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req revokeTokenRequest
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
		}
		if req.Token == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "token is required")
		}
		if err := tokens.Revoke(c.Request().Context(), req.Token); err != nil {
			return apperr.HTTP(err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}
