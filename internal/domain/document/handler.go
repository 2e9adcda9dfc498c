package document

import (
	"errors"
	"net/http"
	"strconv"

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
	api.GET("/documents", h.ListDocuments)
	api.GET("/documents/:id", h.GetDocument)
	api.POST("/documents", h.CreateDocument)
	api.PUT("/documents/:id", h.UpdateDocument)
	api.GET("/documents/:id/versions", h.ListVersions)
	api.POST("/documents/:id/restore/:version", h.RestoreVersion)
	api.POST("/documents/:id/status", h.ChangeStatus)
	api.GET("/documents/:id/approvals", h.ListApprovals)
	api.POST("/documents/:id/approvals", h.AddApproval)
	api.POST("/documents/:id/ocr", h.AttachOCRText)
}

func actor(c echo.Context) *string {
	if v := c.QueryParam("user_id"); v != "" {
		return &v
	}
	return nil
}

func httpError(err error) *echo.HTTPError {
	var vnf *VersionNotFoundError
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "document not found")
	case errors.As(err, &vnf):
		return echo.NewHTTPError(http.StatusNotFound, vnf.Error())
	case errors.Is(err, ErrDocumentTerminal):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
}

func (h *Handler) CreateDocument(c echo.Context) error {
	var d Document
	if err := c.Bind(&d); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateDocument(c.Request().Context(), &d); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *Handler) GetDocument(c echo.Context) error {
	d, err := h.svc.GetDocument(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) ListDocuments(c echo.Context) error {
	pg := pagination.FromContext(c)
	f := ListFilter{
		Status:     c.QueryParam("status"),
		Category:   c.QueryParam("category"),
		PatientID:  c.QueryParam("patient_id"),
		EntityType: c.QueryParam("entity_type"),
		EntityID:   c.QueryParam("entity_id"),
	}
	items, total, err := h.svc.ListDocuments(c.Request().Context(), f, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateDocument(c echo.Context) error {
	var body struct {
		Document
		ChangeLog string `json:"change_log"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	body.Document.ID = c.Param("id")
	if err := h.svc.UpdateDocument(c.Request().Context(), &body.Document, body.ChangeLog, actor(c)); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, body.Document)
}

func (h *Handler) ListVersions(c echo.Context) error {
	versions, err := h.svc.ListVersions(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, versions)
}

func (h *Handler) RestoreVersion(c echo.Context) error {
	version, err := strconv.Atoi(c.Param("version"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid version number")
	}
	d, err := h.svc.RestoreVersion(c.Request().Context(), c.Param("id"), version, actor(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) ChangeStatus(c echo.Context) error {
	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.ChangeStatus(c.Request().Context(), c.Param("id"), body.Status, actor(c)); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListApprovals(c echo.Context) error {
	approvals, err := h.svc.ListApprovals(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, approvals)
}

func (h *Handler) AddApproval(c echo.Context) error {
	var a Approval
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a.DocumentID = c.Param("id")
	if err := h.svc.AddApproval(c.Request().Context(), &a, actor(c)); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) AttachOCRText(c echo.Context) error {
	var body struct {
		Text       string  `json:"text"`
		Confidence float64 `json:"confidence"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.AttachOCRText(c.Request().Context(), c.Param("id"), body.Text, body.Confidence, actor(c)); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
