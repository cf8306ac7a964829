package auth

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/dentix/dentix/internal/platform/apperr"
)

type contextKey string

const (
	UserIDKey    contextKey = "user_id"
	UserRolesKey contextKey = "user_roles"
	UserEmailKey contextKey = "user_email"
	ClaimsKey    contextKey = "claims"
)

// Verifier validates a raw bearer credential.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Claims, error)
}

type JWTConfig struct {
	Verifier Verifier
}

// BearerToken extracts the credential from an Authorization header.
func BearerToken(header string) (string, error) {
	if header == "" {
		return "", apperr.Unauthenticated("missing authorization header")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", apperr.Unauthenticated("invalid authorization format")
	}
	return strings.TrimSpace(parts[1]), nil
}

// JWTMiddleware verifies the bearer credential and stores the decoded claims
// on both the echo context and the request context.
func JWTMiddleware(cfg JWTConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenStr, err := BearerToken(c.Request().Header.Get("Authorization"))
			if err != nil {
				return apperr.HTTP(err)
			}

			claims, err := cfg.Verifier.Verify(c.Request().Context(), tokenStr)
			if err != nil {
				return apperr.HTTP(err)
			}

			c.Set("jwt_subject", claims.Subject)
			c.Set("jwt_tenant_id", claims.TenantID)

			ctx := c.Request().Context()
			ctx = context.WithValue(ctx, UserIDKey, claims.Subject)
			ctx = context.WithValue(ctx, UserRolesKey, claims.Roles)
			ctx = context.WithValue(ctx, UserEmailKey, claims.Email)
			ctx = context.WithValue(ctx, ClaimsKey, claims)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

func UserIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(UserIDKey).(string)
	return v
}

func RolesFromContext(ctx context.Context) []string {
	v, _ := ctx.Value(UserRolesKey).([]string)
	return v
}

func EmailFromContext(ctx context.Context) string {
	v, _ := ctx.Value(UserEmailKey).(string)
	return v
}

func ClaimsFromContext(ctx context.Context) *Claims {
	v, _ := ctx.Value(ClaimsKey).(*Claims)
	return v
}

// WithClaims returns ctx carrying claims the way JWTMiddleware stores them.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, claims.Subject)
	ctx = context.WithValue(ctx, UserRolesKey, claims.Roles)
	ctx = context.WithValue(ctx, UserEmailKey, claims.Email)
	return context.WithValue(ctx, ClaimsKey, claims)
}
