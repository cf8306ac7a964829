package scheduling

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
	read := api.Group("/appointments", auth.RequireRole(auth.ClinicRoles...))
	read.GET("", h.ListAppointments)
	read.GET("/stats/summary", h.Stats)
	read.GET("/patient/:patient_id", h.ListByPatient)
	read.GET("/dentist/:dentist_id", h.ListByDentist)
	read.GET("/:id", h.GetAppointment)

	write := api.Group("/appointments", auth.RequireRole(auth.RoleAdmin, auth.RoleReceptionist, auth.RoleDentist))
	write.POST("", h.CreateAppointment)
	write.PUT("/:id", h.UpdateAppointment)
	write.DELETE("/:id", h.DeleteAppointment)
}

func (h *Handler) CreateAppointment(c echo.Context) error {
	var in AppointmentInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	a, err := h.svc.CreateAppointment(c.Request().Context(), &in)
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) GetAppointment(c echo.Context) error {
	id, err := httputil.ParamID(c, "id")
	if err != nil {
		return apperr.HTTP(err)
	}
	a, err := h.svc.GetAppointment(c.Request().Context(), id)
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) ListAppointments(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListAppointments(c.Request().Context(),
		db.ParamsFromQuery(c.QueryParams()), pg.Limit, pg.Offset())
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, pagination.Response("appointments", items, pg, total))
}

func (h *Handler) ListByPatient(c echo.Context) error {
	id, err := httputil.ParamID(c, "patient_id")
	if err != nil {
		return apperr.HTTP(err)
	}
	res, err := h.svc.ListByPatient(c.Request().Context(), id)
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) ListByDentist(c echo.Context) error {
	id, err := httputil.ParamID(c, "dentist_id")
	if err != nil {
		return apperr.HTTP(err)
	}
	res, err := h.svc.ListByDentist(c.Request().Context(), id, db.ParamsFromQuery(c.QueryParams()))
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) UpdateAppointment(c echo.Context) error {
	id, err := httputil.ParamID(c, "id")
	if err != nil {
		return apperr.HTTP(err)
	}
	var in AppointmentInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	a, err := h.svc.UpdateAppointment(c.Request().Context(), id, &in)
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) DeleteAppointment(c echo.Context) error {
	id, err := httputil.ParamID(c, "id")
	if err != nil {
		return apperr.HTTP(err)
	}
	if err := h.svc.DeleteAppointment(c.Request().Context(), id); err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, httputil.Message{Message: "appointment deleted"})
}

func (h *Handler) Stats(c echo.Context) error {
	st, err := h.svc.Stats(c.Request().Context(), db.ParamsFromQuery(c.QueryParams()))
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, st)
}
