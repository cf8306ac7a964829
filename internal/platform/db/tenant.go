package db

import (
	"context"
	"net/http"
	"regexp"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"

	"github.com/dentix/dentix/internal/platform/apperr"
)

type contextKey string

const (
	TenantIDKey contextKey = "tenant_id"
	DBConnKey   contextKey = "db_conn"
)

// TenantHeader lets callers whose token carries no tenant claim pick one.
const TenantHeader = "X-Tenant-ID"

var tenantIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidTenantID reports whether id is an acceptable partition key.
func ValidTenantID(id string) bool {
	return tenantIDPattern.MatchString(id)
}

// ResolveTenant decides the tenant for an authenticated request. The token
// claim wins; the header may only repeat it or fill in when the claim is
// empty.
func ResolveTenant(claimTenant string, authenticated bool, header string) (string, error) {
	if !authenticated {
		return "", apperr.Unauthenticated("authentication required")
	}

	var tenantID string
	switch {
	case claimTenant != "" && header != "" && header != claimTenant:
		return "", apperr.Forbidden("tenant does not match token")
	case claimTenant != "":
		tenantID = claimTenant
	case header != "":
		tenantID = header
	default:
		return "", apperr.BadRequest("tenant id required")
	}

	if !ValidTenantID(tenantID) {
		return "", apperr.BadRequest("invalid tenant identifier")
	}
	return tenantID, nil
}

// TenantMiddleware resolves the tenant from the claims the auth middleware
// left on the echo context and stores it on the request context.
func TenantMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			subject, _ := c.Get("jwt_subject").(string)
			claimTenant, _ := c.Get("jwt_tenant_id").(string)

			tenantID, err := ResolveTenant(claimTenant, subject != "", c.Request().Header.Get(TenantHeader))
			if err != nil {
				return apperr.HTTP(err)
			}

			ctx := context.WithValue(c.Request().Context(), TenantIDKey, tenantID)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Set("tenant_id", tenantID)

			return next(c)
		}
	}
}

// ConnMiddleware borrows one pooled connection for the lifetime of the
// request. Repositories pick it up through Conn.
func ConnMiddleware(pool *pgxpool.Pool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			conn, err := pool.Acquire(ctx)
			if err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "database unavailable")
			}
			defer conn.Release()

			ctx = context.WithValue(ctx, DBConnKey, conn)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// ConnFromContext retrieves the request's borrowed connection.
func ConnFromContext(ctx context.Context) *pgxpool.Conn {
	conn, _ := ctx.Value(DBConnKey).(*pgxpool.Conn)
	return conn
}

// TenantFromContext retrieves the tenant ID from context.
func TenantFromContext(ctx context.Context) string {
	tid, _ := ctx.Value(TenantIDKey).(string)
	return tid
}

// WithTenant returns a context scoped to tenantID. Used by the CLI and tests
// where no request is in flight.
func WithTenant(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, TenantIDKey, tenantID)
}

// RequireTenant returns the tenant carried by ctx. Repositories call it so a
// query can never run unscoped.
func RequireTenant(ctx context.Context) (string, error) {
	tid := TenantFromContext(ctx)
	if tid == "" {
		return "", apperr.BadRequest("tenant id required")
	}
	return tid, nil
}
