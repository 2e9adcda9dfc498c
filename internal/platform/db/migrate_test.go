package db

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/rs/zerolog"
)

func migrationFS(files map[string]string) fstest.MapFS {
	fsys := fstest.MapFS{}
	for name, sql := range files {
		fsys[name] = &fstest.MapFile{Data: []byte(sql)}
	}
	return fsys
}

func openTestConn(t *testing.T) *Conn {
	t.Helper()
	conn := testConn(t)
	if err := conn.Open("secret"); err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func tableNames(t *testing.T, conn *Conn) map[string]bool {
	t.Helper()
	handle, err := conn.DB()
	if err != nil {
		t.Fatalf("db: %v", err)
	}
	rows, err := handle.Query(`SELECT name FROM sqlite_master WHERE type = 'table'`)
	if err != nil {
		t.Fatalf("sqlite_master: %v", err)
	}
	defer rows.Close()

	names := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("scan: %v", err)
		}
		names[name] = true
	}
	return names
}

func TestMigrator_AppliesInNameOrder(t *testing.T) {
	conn := openTestConn(t)
	fsys := migrationFS(map[string]string{
		"002_second.sql": `CREATE TABLE second (id INTEGER, first_id INTEGER REFERENCES first(id));`,
		"001_first.sql":  `CREATE TABLE first (id INTEGER PRIMARY KEY);`,
	})

	m := NewMigrator(conn, fsys, zerolog.Nop())
	count, err := m.Up(context.Background())
	if err != nil {
		t.Fatalf("up: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 applied, got %d", count)
	}

	names := tableNames(t, conn)
	if !names["first"] || !names["second"] {
		t.Errorf("expected both tables, got %v", names)
	}
}

func TestMigrator_Idempotent(t *testing.T) {
	conn := openTestConn(t)
	fsys := migrationFS(map[string]string{
		"001_first.sql": `CREATE TABLE first (id INTEGER PRIMARY KEY);`,
	})
	m := NewMigrator(conn, fsys, zerolog.Nop())
	ctx := context.Background()

	if _, err := m.Up(ctx); err != nil {
		t.Fatalf("first up: %v", err)
	}
	count, err := m.Up(ctx)
	if err != nil {
		t.Fatalf("second up: %v", err)
	}
	if count != 0 {
		t.Errorf("second run applied %d units, want 0", count)
	}

	handle, _ := conn.DB()
	var ledgerRows int
	if err := handle.QueryRow(`SELECT COUNT(*) FROM migrations`).Scan(&ledgerRows); err != nil {
		t.Fatalf("count ledger: %v", err)
	}
	if ledgerRows != 1 {
		t.Errorf("expected 1 ledger row, got %d", ledgerRows)
	}
}

func TestMigrator_FailedUnitRollsBack(t *testing.T) {
	conn := openTestConn(t)
	fsys := migrationFS(map[string]string{
		"001_broken.sql": `CREATE TABLE half (id INTEGER PRIMARY KEY);
THIS IS NOT SQL;`,
	})
	m := NewMigrator(conn, fsys, zerolog.Nop())

	_, err := m.Up(context.Background())
	var merr *MigrationError
	if !errors.As(err, &merr) {
		t.Fatalf("expected MigrationError, got %v", err)
	}
	if merr.Name != "001_broken.sql" {
		t.Errorf("expected failing unit name, got %s", merr.Name)
	}

	// Neither the unit's first statement nor its ledger row may survive.
	if tableNames(t, conn)["half"] {
		t.Error("partial schema effect left behind after rollback")
	}
	handle, _ := conn.DB()
	var ledgerRows int
	if err := handle.QueryRow(`SELECT COUNT(*) FROM migrations`).Scan(&ledgerRows); err != nil {
		t.Fatalf("count ledger: %v", err)
	}
	if ledgerRows != 0 {
		t.Errorf("ledger row written for failed unit")
	}
}

func TestMigrator_RetryAfterFailure(t *testing.T) {
	conn := openTestConn(t)
	ctx := context.Background()

	broken := migrationFS(map[string]string{
		"001_ok.sql":  `CREATE TABLE ok (id INTEGER PRIMARY KEY);`,
		"002_bad.sql": `NOT SQL;`,
	})
	m := NewMigrator(conn, broken, zerolog.Nop())
	if _, err := m.Up(ctx); err == nil {
		t.Fatal("expected failure")
	}

	// Fix the bad unit and re-run: the ledgered unit is skipped, the
	// failed one retries.
	fixed := migrationFS(map[string]string{
		"001_ok.sql":  `CREATE TABLE ok (id INTEGER PRIMARY KEY);`,
		"002_bad.sql": `CREATE TABLE fixed (id INTEGER PRIMARY KEY);`,
	})
	m = NewMigrator(conn, fixed, zerolog.Nop())
	count, err := m.Up(ctx)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if count != 1 {
		t.Errorf("expected exactly the failed unit to apply, got %d", count)
	}
	if !tableNames(t, conn)["fixed"] {
		t.Error("retried unit not applied")
	}
}

func TestMigrator_Status(t *testing.T) {
	conn := openTestConn(t)
	ctx := context.Background()
	fsys := migrationFS(map[string]string{
		"001_first.sql":  `CREATE TABLE first (id INTEGER PRIMARY KEY);`,
		"002_second.sql": `CREATE TABLE second (id INTEGER PRIMARY KEY);`,
	})

	m := NewMigrator(conn, migrationFS(map[string]string{
		"001_first.sql": `CREATE TABLE first (id INTEGER PRIMARY KEY);`,
	}), zerolog.Nop())
	if _, err := m.Up(ctx); err != nil {
		t.Fatalf("up: %v", err)
	}

	m = NewMigrator(conn, fsys, zerolog.Nop())
	statuses, err := m.Status(ctx)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if len(statuses) != 2 {
		t.Fatalf("expected 2 statuses, got %d", len(statuses))
	}
	if !statuses[0].Applied || statuses[0].ExecutedAt == nil {
		t.Error("first unit should be applied with timestamp")
	}
	if statuses[1].Applied {
		t.Error("second unit should be pending")
	}
}

func TestEmbeddedMigrations_ApplyCleanly(t *testing.T) {
	conn := openTestConn(t)

	m := NewMigrator(conn, EmbeddedMigrations(), zerolog.Nop())
	count, err := m.Up(context.Background())
	if err != nil {
		t.Fatalf("up: %v", err)
	}
	if count == 0 {
		t.Fatal("expected embedded units to apply")
	}

	names := tableNames(t, conn)
	for _, table := range []string{
		"patients", "staff", "appointments", "audit_logs",
		"documents", "document_versions", "document_approvals",
		"invoices", "contracts", "qm_folders", "qm_documents", "mailbox_items",
	} {
		if !names[table] {
			t.Errorf("missing table %s", table)
		}
	}
}
