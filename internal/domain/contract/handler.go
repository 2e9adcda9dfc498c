package contract

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
	api.GET("/contracts", h.ListContracts)
	api.GET("/contracts/expiring", h.ExpiringSoon)
	api.GET("/contracts/:id", h.GetContract)
	api.POST("/contracts", h.CreateContract)
	api.PUT("/contracts/:id", h.UpdateContract)
	api.POST("/contracts/:id/cancel", h.CancelContract)
	api.POST("/contracts/:id/reminder", h.MarkReminderSent)
}

func (h *Handler) CreateContract(c echo.Context) error {
	var m Contract
	if err := c.Bind(&m); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateContract(c.Request().Context(), &m); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *Handler) GetContract(c echo.Context) error {
	m, err := h.svc.GetContract(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "contract not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) ListContracts(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListContracts(c.Request().Context(), c.QueryParam("status"), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ExpiringSoon(c echo.Context) error {
	items, err := h.svc.ExpiringSoon(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) UpdateContract(c echo.Context) error {
	var m Contract
	if err := c.Bind(&m); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	m.ID = c.Param("id")
	if err := h.svc.UpdateContract(c.Request().Context(), &m); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "contract not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) CancelContract(c echo.Context) error {
	if err := h.svc.CancelContract(c.Request().Context(), c.Param("id")); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "contract not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) MarkReminderSent(c echo.Context) error {
	if err := h.svc.MarkReminderSent(c.Request().Context(), c.Param("id")); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "contract not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
