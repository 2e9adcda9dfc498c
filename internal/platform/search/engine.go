package search

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

// DefaultLimit bounds a search when the caller does not supply a limit.
const DefaultLimit = 20

// Result is one ranked search hit. Relevance is an integer weight used for
// ordering only.
type Result struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Type           string `json:"type"`
	ContentPreview string `json:"content_preview"`
	CreatedAt      string `json:"created_at"`
	Relevance      int    `json:"relevance"`
}

// Querier is the slice of the Statement Gateway the engine needs.
type Querier interface {
	Query(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Engine fans a query out across the domain tables, scores matches per
// category and merges the ranked union.
type Engine struct {
	gw  Querier
	log zerolog.Logger
}

func NewEngine(gw Querier, logger zerolog.Logger) *Engine {
	return &Engine{gw: gw, log: logger}
}

// Search returns up to limit results ordered by descending relevance; ties
// keep category concatenation order. Queries shorter than two characters
// after trimming return empty without touching the store. A failing
// category degrades to an empty contribution instead of failing the whole
// search.
func (e *Engine) Search(ctx context.Context, query string, limit int) []Result {
	q := strings.TrimSpace(query)
	if len([]rune(q)) < 2 {
		return []Result{}
	}
	q = escapeQuery(q)
	if limit <= 0 {
		limit = DefaultLimit
	}

	categories := []struct {
		name string
		run  func(context.Context, string, int) ([]Result, error)
	}{
		{"documents", e.searchDocuments},
		{"patients", e.searchPatients},
		{"contracts", e.searchContracts},
		{"invoices", e.searchInvoices},
		{"qm_folders", e.searchQMFolders},
	}

	combined := []Result{}
	for _, cat := range categories {
		results, err := cat.run(ctx, q, limit)
		if err != nil {
			e.log.Error().Err(err).Str("category", cat.name).Msg("search category failed")
			continue
		}
		combined = append(combined, results...)
	}

	sort.SliceStable(combined, func(i, j int) bool {
		return combined[i].Relevance > combined[j].Relevance
	})
	if len(combined) > limit {
		combined = combined[:limit]
	}
	return combined
}

// escapeQuery strips characters that are syntactically special to the
// matcher. Conservative denylist; values are still parameter-bound.
func escapeQuery(q string) string {
	return strings.TrimSpace(strings.NewReplacer(`"`, "", "(", "", ")", "").Replace(q))
}

func (e *Engine) collect(ctx context.Context, query string, args ...any) ([]Result, error) {
	rows, err := e.gw.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var preview, createdAt sql.NullString
		if err := rows.Scan(&r.ID, &r.Title, &r.Type, &preview, &createdAt, &r.Relevance); err != nil {
			return nil, fmt.Errorf("scan search result: %w", err)
		}
		r.ContentPreview = preview.String
		r.CreatedAt = createdAt.String
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate search results: %w", err)
	}
	return results, nil
}

func (e *Engine) searchDocuments(ctx context.Context, q string, limit int) ([]Result, error) {
	const query = `
		SELECT d.id, d.title, 'document',
			substr(COALESCE(d.ocr_text, d.notes), 1, 100),
			d.created_at,
			CASE
				WHEN d.title LIKE '%' || ? || '%' THEN 50
				WHEN d.filename LIKE '%' || ? || '%' THEN 50
				ELSE 10
			END AS relevance
		FROM documents d
		WHERE d.status != 'deleted'
		  AND (d.title LIKE '%' || ? || '%'
		   OR d.filename LIKE '%' || ? || '%'
		   OR d.ocr_text LIKE '%' || ? || '%')
		LIMIT ?`
	return e.collect(ctx, query, q, q, q, q, q, limit)
}

func (e *Engine) searchPatients(ctx context.Context, q string, limit int) ([]Result, error) {
	const query = `
		SELECT p.id, p.first_name || ' ' || p.last_name, 'patient',
			COALESCE(p.address, '') || ' ' || COALESCE(p.postal_code, ''),
			p.created_at,
			CASE
				WHEN p.first_name LIKE '%' || ? || '%' THEN 60
				WHEN p.last_name LIKE '%' || ? || '%' THEN 60
				WHEN p.phone LIKE '%' || ? || '%' THEN 30
				WHEN p.email LIKE '%' || ? || '%' THEN 30
				ELSE 10
			END AS relevance
		FROM patients p
		WHERE p.status = 'active'
		  AND (p.first_name LIKE '%' || ? || '%'
		   OR p.last_name LIKE '%' || ? || '%'
		   OR p.phone LIKE '%' || ? || '%'
		   OR p.email LIKE '%' || ? || '%')
		LIMIT ?`
	return e.collect(ctx, query, q, q, q, q, q, q, q, q, limit)
}

func (e *Engine) searchContracts(ctx context.Context, q string, limit int) ([]Result, error) {
	const query = `
		SELECT c.id, c.contract_name, 'contract', c.partner_name, c.created_at,
			CASE
				WHEN c.contract_name LIKE '%' || ? || '%' THEN 50
				WHEN c.partner_name LIKE '%' || ? || '%' THEN 50
				WHEN c.description LIKE '%' || ? || '%' THEN 20
				ELSE 10
			END AS relevance
		FROM contracts c
		WHERE c.contract_name LIKE '%' || ? || '%'
		   OR c.partner_name LIKE '%' || ? || '%'
		   OR c.description LIKE '%' || ? || '%'
		LIMIT ?`
	return e.collect(ctx, query, q, q, q, q, q, q, limit)
}

func (e *Engine) searchInvoices(ctx context.Context, q string, limit int) ([]Result, error) {
	const query = `
		SELECT i.id, i.invoice_number, 'invoice', i.partner_name, i.created_at,
			CASE
				WHEN i.invoice_number LIKE '%' || ? || '%' THEN 50
				WHEN i.partner_name LIKE '%' || ? || '%' THEN 50
				WHEN i.description LIKE '%' || ? || '%' THEN 20
				ELSE 10
			END AS relevance
		FROM invoices i
		WHERE i.invoice_number LIKE '%' || ? || '%'
		   OR i.partner_name LIKE '%' || ? || '%'
		   OR i.description LIKE '%' || ? || '%'
		LIMIT ?`
	return e.collect(ctx, query, q, q, q, q, q, q, limit)
}

func (e *Engine) searchQMFolders(ctx context.Context, q string, limit int) ([]Result, error) {
	const query = `
		SELECT qf.id, qf.name, 'qm_folder', qf.description, qf.created_at,
			CASE
				WHEN qf.name LIKE '%' || ? || '%' THEN 50
				WHEN qf.description LIKE '%' || ? || '%' THEN 20
				ELSE 10
			END AS relevance
		FROM qm_folders qf
		WHERE qf.status = 'active'
		  AND (qf.name LIKE '%' || ? || '%'
		   OR qf.description LIKE '%' || ? || '%')
		LIMIT ?`
	return e.collect(ctx, query, q, q, q, q, limit)
}
