package identity

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
	read := api.Group("/patients", auth.RequireRole(auth.ClinicRoles...))
	read.GET("", h.ListPatients)
	read.GET("/:id", h.GetPatient)

	write := api.Group("/patients", auth.RequireRole(auth.RoleAdmin, auth.RoleReceptionist, auth.RoleDentist))
	write.POST("", h.CreatePatient)
	write.PUT("/:id", h.UpdatePatient)

	del := api.Group("/patients", auth.RequireRole(auth.RoleAdmin))
	del.DELETE("/:id", h.DeletePatient)
}

func (h *Handler) CreatePatient(c echo.Context) error {
	var in PatientInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	p, err := h.svc.CreatePatient(c.Request().Context(), &in)
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) GetPatient(c echo.Context) error {
	id, err := httputil.ParamID(c, "id")
	if err != nil {
		return apperr.HTTP(err)
	}
	p, err := h.svc.GetPatient(c.Request().Context(), id)
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) ListPatients(c echo.Context) error {
	pg := pagination.FromContext(c)
	patients, total, err := h.svc.ListPatients(c.Request().Context(),
		db.ParamsFromQuery(c.QueryParams()), pg.Limit, pg.Offset())
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, pagination.Response("patients", patients, pg, total))
}

func (h *Handler) UpdatePatient(c echo.Context) error {
	id, err := httputil.ParamID(c, "id")
	if err != nil {
		return apperr.HTTP(err)
	}
	var in PatientInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	p, err := h.svc.UpdatePatient(c.Request().Context(), id, &in)
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) DeletePatient(c echo.Context) error {
	id, err := httputil.ParamID(c, "id")
	if err != nil {
		return apperr.HTTP(err)
	}
	if err := h.svc.DeletePatient(c.Request().Context(), id); err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, httputil.Message{Message: "patient deleted"})
}
