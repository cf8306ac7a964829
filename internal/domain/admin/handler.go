package admin

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dentix/dentix/internal/platform/apperr"
	"github.com/dentix/dentix/internal/platform/auth"
	"github.com/dentix/dentix/internal/platform/db"
	"github.com/dentix/dentix/internal/platform/httputil"
	"github.com/dentix/dentix/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	cfg := api.Group("/config", auth.RequireRole(auth.ClinicRoles...))
	cfg.GET("/blood-types", h.BloodTypes)
	cfg.GET("/specialty-dentists", h.SpecialtyDentists)
	cfg.GET("/offices", h.Offices)

	users := api.Group("/admin/users", auth.RequireRole(auth.RoleAdmin))
	users.GET("", h.ListUsers)
	users.POST("", h.CreateUser)
	users.DELETE("/:id", h.DeactivateUser)
}

func (h *Handler) BloodTypes(c echo.Context) error {
	items, err := h.svc.BloodTypes(c.Request().Context())
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) SpecialtyDentists(c echo.Context) error {
	items, err := h.svc.SpecialtyDentists(c.Request().Context())
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) Offices(c echo.Context) error {
	items, err := h.svc.Offices(c.Request().Context())
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) ListUsers(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListUsers(c.Request().Context(), pg.Limit, pg.Offset())
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, pagination.Response("users", items, pg, total))
}

// CreateUser adds an account to the caller's tenant.
func (h *Handler) CreateUser(c echo.Context) error {
	var in UserInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	ctx := c.Request().Context()
	tenantID, err := db.RequireTenant(ctx)
	if err != nil {
		return apperr.HTTP(err)
	}
	u, err := h.svc.CreateUser(ctx, tenantID, &in)
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusCreated, u)
}

func (h *Handler) DeactivateUser(c echo.Context) error {
	id, err := httputil.ParamID(c, "id")
	if err != nil {
		return apperr.HTTP(err)
	}
	if err := h.svc.DeactivateUser(c.Request().Context(), id); err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, httputil.Message{Message: "user deactivated"})
}
