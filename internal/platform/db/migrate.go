package db

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// EmbeddedMigrations returns the schema units compiled into the binary.
func EmbeddedMigrations() fs.FS {
	sub, err := fs.Sub(embeddedMigrations, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

// Migration is a single schema-change unit loaded from a SQL file. Units are
// identified by filename; callers name files so that lexicographic order
// equals intended apply order (zero-padded sequence prefixes).
type Migration struct {
	Name string
	SQL  string
}

// MigrationStatus reports whether a known unit has been applied.
type MigrationStatus struct {
	Name       string
	Applied    bool
	ExecutedAt *time.Time
}

// Migrator applies ordered schema units against the open store exactly once
// each, recording them in an append-only ledger table.
type Migrator struct {
	conn *Conn
	fsys fs.FS
	log  zerolog.Logger
}

func NewMigrator(conn *Conn, fsys fs.FS, logger zerolog.Logger) *Migrator {
	return &Migrator{conn: conn, fsys: fsys, log: logger}
}

// EnsureLedger creates the migrations ledger if it does not already exist.
func (m *Migrator) EnsureLedger(ctx context.Context) error {
	handle, err := m.conn.DB()
	if err != nil {
		return err
	}
	_, err = handle.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS migrations (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT UNIQUE NOT NULL,
    executed_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`)
	if err != nil {
		return fmt.Errorf("create migrations ledger: %w", err)
	}
	return nil
}

// LoadMigrations reads all .sql units from the source, sorted by name
// ascending. Non-SQL entries are skipped.
func (m *Migrator) LoadMigrations() ([]Migration, error) {
	entries, err := fs.ReadDir(m.fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read migrations source: %w", err)
	}

	var migrations []Migration
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}
		content, err := fs.ReadFile(m.fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read migration file %s: %w", name, err)
		}
		migrations = append(migrations, Migration{Name: name, SQL: string(content)})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Name < migrations[j].Name
	})
	return migrations, nil
}

// AppliedNames returns the set of unit names already recorded in the ledger.
func (m *Migrator) AppliedNames(ctx context.Context) (map[string]bool, error) {
	handle, err := m.conn.DB()
	if err != nil {
		return nil, err
	}
	rows, err := handle.QueryContext(ctx, `SELECT name FROM migrations`)
	if err != nil {
		return nil, fmt.Errorf("query applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan migration name: %w", err)
		}
		applied[name] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate applied migrations: %w", err)
	}
	return applied, nil
}

// Up applies all pending units in name order. Each unit runs in its own
// transaction together with its ledger row; a failed unit rolls back fully
// and aborts the run, so re-running retries it and everything after it.
// Returns the count of applied units.
func (m *Migrator) Up(ctx context.Context) (int, error) {
	if err := m.EnsureLedger(ctx); err != nil {
		return 0, err
	}
	migrations, err := m.LoadMigrations()
	if err != nil {
		return 0, err
	}
	applied, err := m.AppliedNames(ctx)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, mig := range migrations {
		if applied[mig.Name] {
			continue
		}
		if err := m.apply(ctx, mig); err != nil {
			return count, &MigrationError{Name: mig.Name, Err: err}
		}
		m.log.Info().Str("migration", mig.Name).Msg("migration applied")
		count++
	}
	return count, nil
}

func (m *Migrator) apply(ctx context.Context, mig Migration) error {
	handle, err := m.conn.DB()
	if err != nil {
		return err
	}
	tx, err := handle.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, mig.SQL); err != nil {
		return fmt.Errorf("execute SQL: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO migrations (name) VALUES (?)`, mig.Name); err != nil {
		return fmt.Errorf("record migration: %w", err)
	}
	return tx.Commit()
}

// Status returns applied/pending state for all known units.
func (m *Migrator) Status(ctx context.Context) ([]MigrationStatus, error) {
	if err := m.EnsureLedger(ctx); err != nil {
		return nil, err
	}
	migrations, err := m.LoadMigrations()
	if err != nil {
		return nil, err
	}

	handle, err := m.conn.DB()
	if err != nil {
		return nil, err
	}
	rows, err := handle.QueryContext(ctx, `SELECT name, executed_at FROM migrations`)
	if err != nil {
		return nil, fmt.Errorf("query migration status: %w", err)
	}
	defer rows.Close()

	executed := make(map[string]time.Time)
	for rows.Next() {
		var name string
		var at time.Time
		if err := rows.Scan(&name, &at); err != nil {
			return nil, fmt.Errorf("scan migration status: %w", err)
		}
		executed[name] = at
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate migration status: %w", err)
	}

	var statuses []MigrationStatus
	for _, mig := range migrations {
		status := MigrationStatus{Name: mig.Name}
		if at, ok := executed[mig.Name]; ok {
			status.Applied = true
			executedAt := at
			status.ExecutedAt = &executedAt
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}
