package qm

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/qm/folders", h.FolderTree)
	api.GET("/qm/folders/:id", h.GetFolder)
	api.POST("/qm/folders", h.CreateFolder)
	api.PUT("/qm/folders/:id", h.UpdateFolder)
	api.GET("/qm/folders/:id/documents", h.ListFolderDocuments)
	api.POST("/qm/documents", h.CreateDocument)
	api.GET("/qm/documents/:document_id/versions", h.VersionHistory)
	api.GET("/qm/documents/:document_id/current", h.GetCurrentVersion)
	api.POST("/qm/documents/:document_id/versions", h.CreateNewVersion)
	api.POST("/qm/versions/:row_id/approve", h.ApproveDocument)
}

func httpError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, ErrFolderNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "qm folder not found")
	case errors.Is(err, ErrDocumentNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "qm document not found")
	default:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
}

func (h *Handler) FolderTree(c echo.Context) error {
	tree, err := h.svc.FolderTree(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, tree)
}

func (h *Handler) GetFolder(c echo.Context) error {
	f, err := h.svc.GetFolder(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, f)
}

func (h *Handler) CreateFolder(c echo.Context) error {
	var f Folder
	if err := c.Bind(&f); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateFolder(c.Request().Context(), &f); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, f)
}

func (h *Handler) UpdateFolder(c echo.Context) error {
	var f Folder
	if err := c.Bind(&f); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	f.ID = c.Param("id")
	if err := h.svc.UpdateFolder(c.Request().Context(), &f); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, f)
}

func (h *Handler) ListFolderDocuments(c echo.Context) error {
	docs, err := h.svc.ListFolderDocuments(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, docs)
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

func (h *Handler) CreateNewVersion(c echo.Context) error {
	var d Document
	if err := c.Bind(&d); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	next, err := h.svc.CreateNewVersion(c.Request().Context(), c.Param("document_id"), &d)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, next)
}

func (h *Handler) GetCurrentVersion(c echo.Context) error {
	d, err := h.svc.GetCurrentVersion(c.Request().Context(), c.Param("document_id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) VersionHistory(c echo.Context) error {
	versions, err := h.svc.VersionHistory(c.Request().Context(), c.Param("document_id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, versions)
}

func (h *Handler) ApproveDocument(c echo.Context) error {
	var body struct {
		ApproverID string `json:"approver_id"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.ApproveDocument(c.Request().Context(), c.Param("row_id"), body.ApproverID); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
