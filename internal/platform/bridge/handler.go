package bridge

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/alexiosg111/pflegedms/internal/platform/backup"
	"github.com/alexiosg111/pflegedms/internal/platform/db"
	"github.com/alexiosg111/pflegedms/internal/platform/search"
)

// Version is the application release reported to the presentation process.
const Version = "1.0.0"

// Paths tells the presentation process where the store and backups live.
type Paths struct {
	Database  string `json:"database"`
	BackupDir string `json:"backup_dir"`
	DataDir   string `json:"data_dir"`
}

type statementRequest struct {
	SQL    string `json:"sql"`
	Params []any  `json:"params"`
}

type queryResponse struct {
	Success bool             `json:"success"`
	Data    []map[string]any `json:"data,omitempty"`
	Error   string           `json:"error,omitempty"`
}

type executeResponse struct {
	Success      bool   `json:"success"`
	Changes      int64  `json:"changes"`
	LastInsertID int64  `json:"last_insert_id"`
	Error        string `json:"error,omitempty"`
}

// Handler exposes the raw statement surface and the app-level operations
// the presentation process calls across the process boundary.
type Handler struct {
	gw     *db.Gateway
	coord  *backup.Coordinator
	engine *search.Engine
	paths  Paths
	log    zerolog.Logger
}

func NewHandler(gw *db.Gateway, coord *backup.Coordinator, engine *search.Engine, paths Paths, logger zerolog.Logger) *Handler {
	return &Handler{gw: gw, coord: coord, engine: engine, paths: paths, log: logger}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/db/query", h.Query)
	api.POST("/db/execute", h.Execute)
	api.POST("/backup", h.CreateBackup)
	api.GET("/backup/status", h.BackupStatus)
	api.GET("/version", h.AppVersion)
	api.GET("/paths", h.AppPaths)
	api.GET("/search", h.Search)
}

// Query runs a read statement and returns rows as column-keyed objects.
// This is the one surface that stays dynamically shaped; everything
// internal scans into typed structs.
func (h *Handler) Query(c echo.Context) error {
	var req statementRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, queryResponse{Error: "invalid request body"})
	}
	if req.SQL == "" {
		return c.JSON(http.StatusBadRequest, queryResponse{Error: "sql is required"})
	}

	data, err := h.runQuery(c.Request().Context(), req.SQL, req.Params...)
	if err != nil {
		h.log.Error().Err(err).Msg("bridge query failed")
		return c.JSON(http.StatusOK, queryResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, queryResponse{Success: true, Data: data})
}

func (h *Handler) runQuery(ctx context.Context, query string, args ...any) ([]map[string]any, error) {
	rows, err := h.gw.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	data := []map[string]any{}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(map[string]any, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		data = append(data, row)
	}
	return data, rows.Err()
}

// Execute runs a write statement and reports affected rows.
func (h *Handler) Execute(c echo.Context) error {
	var req statementRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, executeResponse{Error: "invalid request body"})
	}
	if req.SQL == "" {
		return c.JSON(http.StatusBadRequest, executeResponse{Error: "sql is required"})
	}

	res, err := h.gw.Execute(c.Request().Context(), req.SQL, req.Params...)
	if err != nil {
		h.log.Error().Err(err).Msg("bridge execute failed")
		return c.JSON(http.StatusOK, executeResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, executeResponse{
		Success:      true,
		Changes:      res.Changes,
		LastInsertID: res.LastInsertID,
	})
}

func (h *Handler) CreateBackup(c echo.Context) error {
	ok := h.coord.ExecuteBackup(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusOK, map[string]any{"success": false, "error": "backup failed"})
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true})
}

func (h *Handler) BackupStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, h.coord.Status())
}

func (h *Handler) AppVersion(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"version": Version})
}

func (h *Handler) AppPaths(c echo.Context) error {
	return c.JSON(http.StatusOK, h.paths)
}

func (h *Handler) Search(c echo.Context) error {
	limit := search.DefaultLimit
	if v := c.QueryParam("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	results := h.engine.Search(c.Request().Context(), c.QueryParam("q"), limit)
	return c.JSON(http.StatusOK, map[string]any{"results": results, "count": len(results)})
}
