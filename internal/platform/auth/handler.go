package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/dentix/dentix/internal/platform/apperr"
	"github.com/dentix/dentix/internal/platform/validation"
)

// Authenticator checks login credentials against the user store.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (Subject, error)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Handler serves login, logout and the current identity.
type Handler struct {
	tokens   *TokenService
	users    Authenticator
	validate *validator.Validate
}

func NewHandler(tokens *TokenService, users Authenticator, v *validator.Validate) *Handler {
	return &Handler{tokens: tokens, users: users, validate: v}
}

// RegisterPublicRoutes mounts login and logout, which authenticate
// themselves. loginMW wraps only the login route.
func (h *Handler) RegisterPublicRoutes(e *echo.Echo, loginMW ...echo.MiddlewareFunc) {
	e.POST("/api/login", h.Login, loginMW...)
	e.POST("/api/logout", h.Logout)
}

// RegisterRoutes mounts routes that need a verified caller.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/me", h.Me)
}

func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validation.Struct(h.validate, &req); err != nil {
		return apperr.HTTP(err)
	}

	sub, err := h.users.Authenticate(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return apperr.HTTP(err)
	}

	token, claims, err := h.tokens.Issue(sub)
	if err != nil {
		return apperr.HTTP(apperr.Internal("issue token", err))
	}
	log.Info().Str("user_id", sub.ID).Str("tenant_id", sub.TenantID).Msg("user logged in")

	return c.JSON(http.StatusOK, loginResponse{Token: token, ExpiresAt: claims.ExpiresAt.Time})
}

// Logout revokes the presented bearer token. Repeating it with the same
// token succeeds.
func (h *Handler) Logout(c echo.Context) error {
	token, err := BearerToken(c.Request().Header.Get("Authorization"))
	if err != nil {
		return apperr.HTTP(err)
	}
	if err := h.tokens.Revoke(c.Request().Context(), token); err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "logged out"})
}

func (h *Handler) Me(c echo.Context) error {
	claims := ClaimsFromContext(c.Request().Context())
	if claims == nil {
		return apperr.HTTP(apperr.Unauthenticated("no claims in context"))
	}
	return c.JSON(http.StatusOK, claims)
}
