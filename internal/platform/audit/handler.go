package audit

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/alexiosg111/pflegedms/pkg/pagination"
)

type Handler struct {
	rec *Recorder
}

func NewHandler(rec *Recorder) *Handler {
	return &Handler{rec: rec}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/audit-logs", h.List)
	api.GET("/audit-logs/count", h.Count)
}

func (h *Handler) filterFromQuery(c echo.Context) Filter {
	var f Filter
	if v := c.QueryParam("user_id"); v != "" {
		f.UserID = &v
	}
	f.Action = c.QueryParam("action")
	f.TableName = c.QueryParam("table_name")
	if v := c.QueryParam("from"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			f.From = &t
		}
	}
	if v := c.QueryParam("to"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			f.To = &t
		}
	}
	return f
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	f := h.filterFromQuery(c)
	f.Limit = pg.Limit
	f.Offset = pg.Offset

	entries, err := h.rec.List(c.Request().Context(), f)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	total, err := h.rec.Count(c.Request().Context(), f)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(entries, total, pg.Limit, pg.Offset))
}

func (h *Handler) Count(c echo.Context) error {
	count, err := h.rec.Count(c.Request().Context(), h.filterFromQuery(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]int{"count": count})
}
