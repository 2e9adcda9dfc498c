package invoice

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/alexiosg111/pflegedms/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/invoices", h.ListInvoices)
	api.GET("/invoices/stats", h.GetStats)
	api.GET("/invoices/reminders-due", h.RemindersDue)
	api.GET("/invoices/:id", h.GetInvoice)
	api.POST("/invoices", h.CreateInvoice)
	api.PUT("/invoices/:id", h.UpdateInvoice)
	api.POST("/invoices/:id/pay", h.MarkPaid)
	api.POST("/invoices/:id/reminder", h.MarkReminderSent)
}

func (h *Handler) CreateInvoice(c echo.Context) error {
	var i Invoice
	if err := c.Bind(&i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateInvoice(c.Request().Context(), &i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, i)
}

func (h *Handler) GetInvoice(c echo.Context) error {
	i, err := h.svc.GetInvoice(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "invoice not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, i)
}

func (h *Handler) ListInvoices(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListInvoices(c.Request().Context(), c.QueryParam("status"), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateInvoice(c echo.Context) error {
	var i Invoice
	if err := c.Bind(&i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	i.ID = c.Param("id")
	if err := h.svc.UpdateInvoice(c.Request().Context(), &i); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "invoice not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, i)
}

func (h *Handler) MarkPaid(c echo.Context) error {
	var body struct {
		PaymentMethod *string `json:"payment_method"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.MarkPaid(c.Request().Context(), c.Param("id"), body.PaymentMethod); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "invoice not found")
		}
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) MarkReminderSent(c echo.Context) error {
	if err := h.svc.MarkReminderSent(c.Request().Context(), c.Param("id")); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "invoice not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) RemindersDue(c echo.Context) error {
	items, err := h.svc.RemindersDue(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) GetStats(c echo.Context) error {
	st, err := h.svc.GetStats(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, st)
}
