package clinical

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

// RegisterRoutes mounts /clinical-history. The static /attachments routes are
// registered alongside /:id; echo prefers static segments over parameters.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("/clinical-history", auth.RequireRole(auth.ClinicRoles...))
	read.GET("", h.ListHistories)
	read.GET("/patient/:patient_id", h.ListByPatient)
	read.GET("/attachments/:id", h.GetAttachment)
	read.GET("/:id", h.GetHistory)
	read.GET("/:id/with-attachments", h.GetWithAttachments)
	read.GET("/:history_id/attachments", h.ListAttachments)

	write := api.Group("/clinical-history", auth.RequireRole(auth.RoleAdmin, auth.RoleDentist))
	write.POST("", h.CreateHistory)
	write.PUT("/:id", h.UpdateHistory)
	write.DELETE("/:id", h.DeleteHistory)
	write.POST("/:history_id/attachments", h.CreateAttachment)
	write.PUT("/attachments/:id", h.UpdateAttachment)
	write.DELETE("/attachments/:id", h.DeleteAttachment)

	admin := api.Group("/clinical-history", auth.RequireRole(auth.RoleAdmin))
	admin.GET("/attachments", h.ListAllAttachments)
}

// -- Clinical History --

func (h *Handler) CreateHistory(c echo.Context) error {
	var in HistoryInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	res, err := h.svc.CreateHistory(c.Request().Context(), &in)
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusCreated, res)
}

func (h *Handler) GetHistory(c echo.Context) error {
	id, err := httputil.ParamID(c, "id")
	if err != nil {
		return apperr.HTTP(err)
	}
	res, err := h.svc.GetHistory(c.Request().Context(), id)
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) ListHistories(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListHistories(c.Request().Context(),
		db.ParamsFromQuery(c.QueryParams()), pg.Limit, pg.Offset())
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, pagination.Response("clinical_histories", items, pg, total))
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

func (h *Handler) UpdateHistory(c echo.Context) error {
	id, err := httputil.ParamID(c, "id")
	if err != nil {
		return apperr.HTTP(err)
	}
	var in HistoryInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	res, err := h.svc.UpdateHistory(c.Request().Context(), id, &in)
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) DeleteHistory(c echo.Context) error {
	id, err := httputil.ParamID(c, "id")
	if err != nil {
		return apperr.HTTP(err)
	}
	if err := h.svc.DeleteHistory(c.Request().Context(), id); err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, httputil.Message{Message: "clinical history deleted"})
}

func (h *Handler) GetWithAttachments(c echo.Context) error {
	id, err := httputil.ParamID(c, "id")
	if err != nil {
		return apperr.HTTP(err)
	}
	res, err := h.svc.GetWithAttachments(c.Request().Context(), id)
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, res)
}

// -- Attachments --

func (h *Handler) CreateAttachment(c echo.Context) error {
	historyID, err := httputil.ParamID(c, "history_id")
	if err != nil {
		return apperr.HTTP(err)
	}
	var in AttachmentInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	res, err := h.svc.CreateAttachment(c.Request().Context(), historyID, &in)
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusCreated, res)
}

func (h *Handler) ListAttachments(c echo.Context) error {
	historyID, err := httputil.ParamID(c, "history_id")
	if err != nil {
		return apperr.HTTP(err)
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListAttachments(c.Request().Context(), historyID, pg.Limit, pg.Offset())
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, pagination.Response("attachments", items, pg, total))
}

func (h *Handler) ListAllAttachments(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListAllAttachments(c.Request().Context(), pg.Limit, pg.Offset())
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, pagination.Response("attachments", items, pg, total))
}

func (h *Handler) GetAttachment(c echo.Context) error {
	id, err := httputil.ParamID(c, "id")
	if err != nil {
		return apperr.HTTP(err)
	}
	res, err := h.svc.GetAttachment(c.Request().Context(), id)
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) UpdateAttachment(c echo.Context) error {
	id, err := httputil.ParamID(c, "id")
	if err != nil {
		return apperr.HTTP(err)
	}
	var in AttachmentInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	res, err := h.svc.UpdateAttachment(c.Request().Context(), id, &in)
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) DeleteAttachment(c echo.Context) error {
	id, err := httputil.ParamID(c, "id")
	if err != nil {
		return apperr.HTTP(err)
	}
	if err := h.svc.DeleteAttachment(c.Request().Context(), id); err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, httputil.Message{Message: "attachment deleted"})
}
