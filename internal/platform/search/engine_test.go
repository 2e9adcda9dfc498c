package search

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/alexiosg111/pflegedms/internal/platform/db"
)

// countingQuerier records how often the store is touched.
type countingQuerier struct {
	calls int
}

func (c *countingQuerier) Query(context.Context, string, ...any) (*sql.Rows, error) {
	c.calls++
	return nil, errors.New("should not be reached")
}

func TestSearch_FloorSkipsStore(t *testing.T) {
	q := &countingQuerier{}
	engine := NewEngine(q, zerolog.Nop())
	ctx := context.Background()

	for _, input := range []string{"", "a", " a ", "  "} {
		results := engine.Search(ctx, input, 20)
		if len(results) != 0 {
			t.Errorf("Search(%q) returned %d results, want 0", input, len(results))
		}
	}
	if q.calls != 0 {
		t.Errorf("short queries issued %d store calls, want 0", q.calls)
	}
}

func TestSearch_FailingCategoryDegrades(t *testing.T) {
	q := &countingQuerier{}
	engine := NewEngine(q, zerolog.Nop())

	results := engine.Search(context.Background(), "anna", 20)
	if len(results) != 0 {
		t.Errorf("expected empty results when every category fails, got %d", len(results))
	}
	if q.calls != 5 {
		t.Errorf("expected all 5 categories attempted, got %d", q.calls)
	}
}

func TestEscapeQuery(t *testing.T) {
	cases := map[string]string{
		`anna`:          "anna",
		`"anna"`:        "anna",
		`an(na)`:        "anna",
		` (x) `:         "x",
		`a"b(c)d`:       "abcd",
	}
	for in, want := range cases {
		if got := escapeQuery(in); got != want {
			t.Errorf("escapeQuery(%q) = %q, want %q", in, got, want)
		}
	}
}

func openSeededGateway(t *testing.T) *db.Gateway {
	t.Helper()
	conn := db.NewConn(filepath.Join(t.TempDir(), "search.db"), zerolog.Nop())
	if err := conn.Open("secret"); err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if _, err := db.NewMigrator(conn, db.EmbeddedMigrations(), zerolog.Nop()).Up(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db.NewGateway(conn, zerolog.Nop())
}

func TestSearch_TruncationAndOrdering(t *testing.T) {
	gw := openSeededGateway(t)
	engine := NewEngine(gw, zerolog.Nop())
	ctx := context.Background()

	// 30 synthetic matches: 10 patients (first-name hit, 60), 10 documents
	// (title hit, 50), 10 contracts (name hit, 50).
	for i := 0; i < 10; i++ {
		if _, err := gw.Execute(ctx,
			`INSERT INTO patients (id, first_name, last_name) VALUES (?, ?, ?)`,
			uuid.NewString(), fmt.Sprintf("Probe%02d", i), "Muster"); err != nil {
			t.Fatalf("seed patient: %v", err)
		}
		if _, err := gw.Execute(ctx,
			`INSERT INTO documents (id, title, status) VALUES (?, ?, 'active')`,
			uuid.NewString(), fmt.Sprintf("probe report %02d", i)); err != nil {
			t.Fatalf("seed document: %v", err)
		}
		if _, err := gw.Execute(ctx,
			`INSERT INTO contracts (id, partner_name, contract_name, start_date) VALUES (?, 'Partner', ?, '2025-01-01')`,
			uuid.NewString(), fmt.Sprintf("probe contract %02d", i)); err != nil {
			t.Fatalf("seed contract: %v", err)
		}
	}

	results := engine.Search(ctx, "probe", 10)
	if len(results) != 10 {
		t.Fatalf("expected exactly 10 results, got %d", len(results))
	}
	for i := 1; i < len(results); i++ {
		if results[i].Relevance > results[i-1].Relevance {
			t.Errorf("results not sorted by descending relevance at %d", i)
		}
	}
	// Patients score 60 and must occupy the head of the list.
	for i := 0; i < 10; i++ {
		if results[i].Type != "patient" {
			t.Errorf("result %d: expected patient (60), got %s (%d)", i, results[i].Type, results[i].Relevance)
		}
	}

	// Ties preserve concatenation order: documents come before contracts.
	all := engine.Search(ctx, "probe", 30)
	if len(all) != 30 {
		t.Fatalf("expected 30 results, got %d", len(all))
	}
	sawContract := false
	for _, r := range all[10:] {
		if r.Relevance != 50 {
			t.Errorf("expected tied relevance 50, got %d", r.Relevance)
		}
		if r.Type == "contract" {
			sawContract = true
		}
		if r.Type == "document" && sawContract {
			t.Error("tie order broken: document after contract")
		}
	}
}

func TestSearch_MatchesAcrossFields(t *testing.T) {
	gw := openSeededGateway(t)
	engine := NewEngine(gw, zerolog.Nop())
	ctx := context.Background()

	if _, err := gw.Execute(ctx,
		`INSERT INTO documents (id, title, ocr_text, status) VALUES (?, 'Befund', 'Diagnose: Hypertonie', 'active')`,
		uuid.NewString()); err != nil {
		t.Fatalf("seed: %v", err)
	}

	results := engine.Search(ctx, "Hypertonie", 20)
	if len(results) != 1 {
		t.Fatalf("expected 1 OCR-text hit, got %d", len(results))
	}
	if results[0].Relevance != 10 {
		t.Errorf("secondary-field hit should score 10, got %d", results[0].Relevance)
	}
	if !strings.Contains(results[0].ContentPreview, "Hypertonie") {
		t.Errorf("preview should carry matched text, got %q", results[0].ContentPreview)
	}
}
