package mailbox

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
	api.GET("/mailbox", h.ListItems)
	api.GET("/mailbox/stats", h.GetStats)
	api.GET("/mailbox/:id", h.GetItem)
	api.POST("/mailbox", h.CreateItem)
	api.PUT("/mailbox/:id/status", h.UpdateStatus)
	api.POST("/mailbox/:id/assign-patient", h.AssignToPatient)
	api.POST("/mailbox/:id/assign-module", h.AssignToModule)
	api.POST("/mailbox/:id/complete", h.Complete)
	api.POST("/mailbox/:id/reject", h.Reject)
}

func actor(c echo.Context) *string {
	if v := c.QueryParam("user_id"); v != "" {
		return &v
	}
	return nil
}

func (h *Handler) CreateItem(c echo.Context) error {
	var item Item
	if err := c.Bind(&item); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateFromDocument(c.Request().Context(), &item, actor(c)); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, item)
}

func (h *Handler) GetItem(c echo.Context) error {
	item, err := h.svc.GetItem(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "mailbox item not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, item)
}

func (h *Handler) ListItems(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, err := h.svc.ListItems(c.Request().Context(), c.QueryParam("status"), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) GetStats(c echo.Context) error {
	stats, err := h.svc.GetStats(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	item, err := h.svc.UpdateStatus(c.Request().Context(), c.Param("id"), body.Status, actor(c))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "mailbox item not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, item)
}

func (h *Handler) AssignToPatient(c echo.Context) error {
	var body struct {
		PatientID string `json:"patient_id"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.AssignToPatient(c.Request().Context(), c.Param("id"), body.PatientID, actor(c)); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "mailbox item not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) AssignToModule(c echo.Context) error {
	var body struct {
		Module string `json:"module"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.AssignToModule(c.Request().Context(), c.Param("id"), body.Module, actor(c)); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "mailbox item not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Complete(c echo.Context) error {
	item, err := h.svc.Complete(c.Request().Context(), c.Param("id"), actor(c))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "mailbox item not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, item)
}

func (h *Handler) Reject(c echo.Context) error {
	item, err := h.svc.Reject(c.Request().Context(), c.Param("id"), actor(c))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "mailbox item not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, item)
}
