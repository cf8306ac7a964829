package treatment

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
	read := api.Group("/treatments", auth.RequireRole(auth.ClinicRoles...))
	read.GET("", h.ListTreatments)
	read.GET("/stats/summary", h.Stats)
	read.GET("/appointment/:appointment_id", h.ListByAppointment)
	read.GET("/patient/:patient_id", h.ListByPatient)
	read.GET("/:id", h.GetTreatment)

	write := api.Group("/treatments", auth.RequireRole(auth.RoleAdmin, auth.RoleDentist))
	write.POST("", h.CreateTreatment)
	write.PUT("/:id", h.UpdateTreatment)
	write.PATCH("/:id/complete", h.CompleteTreatment)
	write.DELETE("/:id", h.DeleteTreatment)
}

func (h *Handler) CreateTreatment(c echo.Context) error {
	var in TreatmentInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	t, err := h.svc.CreateTreatment(c.Request().Context(), &in)
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusCreated, t)
}

func (h *Handler) GetTreatment(c echo.Context) error {
	id, err := httputil.ParamID(c, "id")
	if err != nil {
		return apperr.HTTP(err)
	}
	t, err := h.svc.GetTreatment(c.Request().Context(), id)
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) ListTreatments(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListTreatments(c.Request().Context(),
		db.ParamsFromQuery(c.QueryParams()), pg.Limit, pg.Offset())
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, pagination.Response("treatments", items, pg, total))
}

func (h *Handler) ListByAppointment(c echo.Context) error {
	id, err := httputil.ParamID(c, "appointment_id")
	if err != nil {
		return apperr.HTTP(err)
	}
	res, err := h.svc.ListByAppointment(c.Request().Context(), id)
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) ListByPatient(c echo.Context) error {
	id, err := httputil.ParamID(c, "patient_id")
	if err != nil {
		return apperr.HTTP(err)
	}
	res, err := h.svc.ListByPatient(c.Request().Context(), id, db.ParamsFromQuery(c.QueryParams()))
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) UpdateTreatment(c echo.Context) error {
	id, err := httputil.ParamID(c, "id")
	if err != nil {
		return apperr.HTTP(err)
	}
	var in TreatmentInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	t, err := h.svc.UpdateTreatment(c.Request().Context(), id, &in)
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) CompleteTreatment(c echo.Context) error {
	id, err := httputil.ParamID(c, "id")
	if err != nil {
		return apperr.HTTP(err)
	}
	t, err := h.svc.CompleteTreatment(c.Request().Context(), id)
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) DeleteTreatment(c echo.Context) error {
	id, err := httputil.ParamID(c, "id")
	if err != nil {
		return apperr.HTTP(err)
	}
	if err := h.svc.DeleteTreatment(c.Request().Context(), id); err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, httputil.Message{Message: "treatment deleted"})
}

func (h *Handler) Stats(c echo.Context) error {
	st, err := h.svc.Stats(c.Request().Context(), db.ParamsFromQuery(c.QueryParams()))
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, st)
}
