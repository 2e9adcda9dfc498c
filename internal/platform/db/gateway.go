package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"
)

// ExecResult reports the outcome of a write statement.
type ExecResult struct {
	Changes      int64 `json:"changes"`
	LastInsertID int64 `json:"last_insert_id"`
}

// Gateway is the sole path by which domain code touches persisted data.
// Every parameter is bound positionally; no call site interpolates values
// into SQL text.
type Gateway struct {
	conn *Conn
	log  zerolog.Logger
}

func NewGateway(conn *Conn, logger zerolog.Logger) *Gateway {
	return &Gateway{conn: conn, log: logger}
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type txKey struct{}

// TxFromContext returns the transaction carried by ctx, if any. Repositories
// never unwrap this themselves; the Gateway joins the ambient transaction
// transparently.
func TxFromContext(ctx context.Context) *sql.Tx {
	tx, _ := ctx.Value(txKey{}).(*sql.Tx)
	return tx
}

func (g *Gateway) runner(ctx context.Context) (querier, error) {
	if tx := TxFromContext(ctx); tx != nil {
		return tx, nil
	}
	return g.conn.DB()
}

// Query executes a SELECT and returns the rows. The caller owns Close.
func (g *Gateway) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	r, err := g.runner(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		g.log.Error().Err(err).Str("query", query).Msg("query failed")
		return nil, fmt.Errorf("query: %w", err)
	}
	return rows, nil
}

// Row is the single-row result of QueryRow. *sql.Row satisfies it; a closed
// connection yields a row whose Scan reports the error.
type Row interface {
	Scan(dest ...any) error
}

type errRow struct{ err error }

func (r errRow) Scan(...any) error { return r.err }

// QueryRow executes a single-row SELECT. Errors surface on Scan.
func (g *Gateway) QueryRow(ctx context.Context, query string, args ...any) Row {
	r, err := g.runner(ctx)
	if err != nil {
		return errRow{err: err}
	}
	return r.QueryRowContext(ctx, query, args...)
}

// Execute runs an INSERT/UPDATE/DELETE and reports affected rows and the
// last insert rowid.
func (g *Gateway) Execute(ctx context.Context, query string, args ...any) (ExecResult, error) {
	r, err := g.runner(ctx)
	if err != nil {
		return ExecResult{}, err
	}
	res, err := r.ExecContext(ctx, query, args...)
	if err != nil {
		g.log.Error().Err(err).Str("query", query).Msg("execute failed")
		return ExecResult{}, fmt.Errorf("execute: %w", err)
	}
	changes, _ := res.RowsAffected()
	lastID, _ := res.LastInsertId()
	return ExecResult{Changes: changes, LastInsertID: lastID}, nil
}

// Transaction runs fn atomically. All Gateway calls made with the context
// passed to fn join the same transaction; if fn returns an error everything
// rolls back. A Transaction call inside an open transaction flattens into
// the outer one rather than partially committing.
func (g *Gateway) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if TxFromContext(ctx) != nil {
		return fn(ctx)
	}

	handle, err := g.conn.DB()
	if err != nil {
		return err
	}
	tx, err := handle.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	// The store runs on one connection; a transaction left open by a
	// panicking fn would block every later statement. Rolling back after
	// a successful commit is a no-op.
	defer tx.Rollback()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
