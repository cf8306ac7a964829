package inventory

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
	read := api.Group("/inventory", auth.RequireRole(auth.ClinicRoles...))
	read.GET("/supplies", h.ListSupplies)
	read.GET("/supplies/:id", h.GetSupply)
	read.GET("/supplies/:filterField/:value", h.LookupSupplies)
	read.GET("/suppliers", h.ListSuppliers)
	read.GET("/suppliers/:id", h.GetSupplier)
	read.GET("/suppliers/:filterField/:value", h.LookupSuppliers)
	read.GET("/incoming", h.ListIncoming)
	read.GET("/incoming/:id", h.GetIncoming)
	read.GET("/outgoing", h.ListOutgoing)
	read.GET("/outgoing/:id", h.GetOutgoing)
	read.GET("/stock", h.CurrentStock)
	read.GET("/stock/low", h.LowStock)
	read.GET("/stock/:supply_id", h.StockBySupply)
	read.GET("/movements", h.Movements)
	read.GET("/categories", h.Categories)
	read.GET("/units", h.Units)

	write := api.Group("/inventory", auth.RequireRole(auth.RoleAdmin, auth.RoleAssistant))
	write.POST("/supplies", h.CreateSupply)
	write.PUT("/supplies/:id", h.UpdateSupply)
	write.DELETE("/supplies/:id", h.DeleteSupply)
	write.POST("/suppliers", h.CreateSupplier)
	write.PUT("/suppliers/:id", h.UpdateSupplier)
	write.DELETE("/suppliers/:id", h.DeleteSupplier)
	write.POST("/incoming", h.PostIncoming)
	write.POST("/outgoing", h.PostOutgoing)
}

// -- Supplies --

func (h *Handler) CreateSupply(c echo.Context) error {
	var in SupplyInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	sp, err := h.svc.CreateSupply(c.Request().Context(), &in)
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusCreated, sp)
}

func (h *Handler) GetSupply(c echo.Context) error {
	id, err := httputil.ParamID(c, "id")
	if err != nil {
		return apperr.HTTP(err)
	}
	sp, err := h.svc.GetSupply(c.Request().Context(), id)
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, sp)
}

func (h *Handler) LookupSupplies(c echo.Context) error {
	items, err := h.svc.LookupSupplies(c.Request().Context(), c.Param("filterField"), c.Param("value"))
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) ListSupplies(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListSupplies(c.Request().Context(),
		db.ParamsFromQuery(c.QueryParams()), pg.Limit, pg.Offset())
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, pagination.Response("supplies", items, pg, total))
}

func (h *Handler) UpdateSupply(c echo.Context) error {
	id, err := httputil.ParamID(c, "id")
	if err != nil {
		return apperr.HTTP(err)
	}
	var in SupplyInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	sp, err := h.svc.UpdateSupply(c.Request().Context(), id, &in)
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, sp)
}

func (h *Handler) DeleteSupply(c echo.Context) error {
	id, err := httputil.ParamID(c, "id")
	if err != nil {
		return apperr.HTTP(err)
	}
	if err := h.svc.DeleteSupply(c.Request().Context(), id); err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, httputil.Message{Message: "supply deactivated"})
}

// -- Suppliers --

func (h *Handler) CreateSupplier(c echo.Context) error {
	var in SupplierInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	sp, err := h.svc.CreateSupplier(c.Request().Context(), &in)
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusCreated, sp)
}

func (h *Handler) GetSupplier(c echo.Context) error {
	id, err := httputil.ParamID(c, "id")
	if err != nil {
		return apperr.HTTP(err)
	}
	sp, err := h.svc.GetSupplier(c.Request().Context(), id)
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, sp)
}

func (h *Handler) LookupSuppliers(c echo.Context) error {
	items, err := h.svc.LookupSuppliers(c.Request().Context(), c.Param("filterField"), c.Param("value"))
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) ListSuppliers(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListSuppliers(c.Request().Context(),
		db.ParamsFromQuery(c.QueryParams()), pg.Limit, pg.Offset())
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, pagination.Response("suppliers", items, pg, total))
}

func (h *Handler) UpdateSupplier(c echo.Context) error {
	id, err := httputil.ParamID(c, "id")
	if err != nil {
		return apperr.HTTP(err)
	}
	var in SupplierInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	sp, err := h.svc.UpdateSupplier(c.Request().Context(), id, &in)
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, sp)
}

func (h *Handler) DeleteSupplier(c echo.Context) error {
	id, err := httputil.ParamID(c, "id")
	if err != nil {
		return apperr.HTTP(err)
	}
	if err := h.svc.DeleteSupplier(c.Request().Context(), id); err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, httputil.Message{Message: "supplier deactivated"})
}

// -- Postings --

func (h *Handler) PostIncoming(c echo.Context) error {
	var in IncomingInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	t, err := h.svc.PostIncoming(c.Request().Context(), &in)
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusCreated, t)
}

func (h *Handler) GetIncoming(c echo.Context) error {
	id, err := httputil.ParamID(c, "id")
	if err != nil {
		return apperr.HTTP(err)
	}
	t, err := h.svc.GetIncoming(c.Request().Context(), id)
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) ListIncoming(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListIncoming(c.Request().Context(),
		db.ParamsFromQuery(c.QueryParams()), pg.Limit, pg.Offset())
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, pagination.Response("transactions", items, pg, total))
}

func (h *Handler) PostOutgoing(c echo.Context) error {
	var in OutgoingInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	t, err := h.svc.PostOutgoing(c.Request().Context(), &in)
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusCreated, t)
}

func (h *Handler) GetOutgoing(c echo.Context) error {
	id, err := httputil.ParamID(c, "id")
	if err != nil {
		return apperr.HTTP(err)
	}
	t, err := h.svc.GetOutgoing(c.Request().Context(), id)
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) ListOutgoing(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListOutgoing(c.Request().Context(),
		db.ParamsFromQuery(c.QueryParams()), pg.Limit, pg.Offset())
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, pagination.Response("transactions", items, pg, total))
}

// -- Stock --

func (h *Handler) CurrentStock(c echo.Context) error {
	items, err := h.svc.CurrentStock(c.Request().Context())
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) LowStock(c echo.Context) error {
	items, err := h.svc.LowStock(c.Request().Context())
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) StockBySupply(c echo.Context) error {
	id, err := httputil.ParamID(c, "supply_id")
	if err != nil {
		return apperr.HTTP(err)
	}
	items, err := h.svc.StockBySupply(c.Request().Context(), id)
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) Movements(c echo.Context) error {
	items, err := h.svc.Movements(c.Request().Context(), db.ParamsFromQuery(c.QueryParams()))
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) Categories(c echo.Context) error {
	items, err := h.svc.Categories(c.Request().Context())
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) Units(c echo.Context) error {
	items, err := h.svc.Units(c.Request().Context())
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, items)
}
