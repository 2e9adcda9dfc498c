package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/alexiosg111/pflegedms/internal/platform/db"
)

// Actions recorded in the audit trail.
const (
	ActionCreate  = "create"
	ActionEdit    = "edit"
	ActionDelete  = "delete"
	ActionApprove = "approve"
	ActionReject  = "reject"
)

// Entry is one immutable audit record. Old/new values are snapshots taken
// at log time; later mutation of the source objects cannot alter them.
type Entry struct {
	ID        int64           `json:"id"`
	UserID    *string         `json:"user_id"`
	Action    string          `json:"action"`
	TableName *string         `json:"table_name"`
	RecordID  *string         `json:"record_id"`
	OldValues json.RawMessage `json:"old_values"`
	NewValues json.RawMessage `json:"new_values"`
	CreatedAt time.Time       `json:"created_at"`
}

// Executor is the slice of the Statement Gateway the recorder needs.
type Executor interface {
	Execute(ctx context.Context, query string, args ...any) (db.ExecResult, error)
	Query(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) db.Row
}

// Recorder appends immutable action records through the Gateway. By default
// it is best-effort: a failed insert is logged, never escalated to the
// business operation that triggered it.
type Recorder struct {
	gw  Executor
	log zerolog.Logger
}

func NewRecorder(gw Executor, logger zerolog.Logger) *Recorder {
	return &Recorder{gw: gw, log: logger}
}

// Log records an action. oldValues/newValues are serialized immediately; nil
// stays NULL. Failures are logged and swallowed.
func (r *Recorder) Log(ctx context.Context, userID *string, action string, tableName, recordID *string, oldValues, newValues any) {
	if err := r.LogStrict(ctx, userID, action, tableName, recordID, oldValues, newValues); err != nil {
		r.log.Error().Err(err).Str("action", action).Msg("audit write failed")
	}
}

// LogStrict records an action and reports failure to the caller. Use it for
// compliance-critical mutations that must not proceed unaudited.
func (r *Recorder) LogStrict(ctx context.Context, userID *string, action string, tableName, recordID *string, oldValues, newValues any) error {
	oldJSON, err := snapshot(oldValues)
	if err != nil {
		return fmt.Errorf("serialize old values: %w", err)
	}
	newJSON, err := snapshot(newValues)
	if err != nil {
		return fmt.Errorf("serialize new values: %w", err)
	}

	_, err = r.gw.Execute(ctx, `
		INSERT INTO audit_logs (user_id, action, table_name, record_id, old_values, new_values)
		VALUES (?, ?, ?, ?, ?, ?)`,
		userID, action, tableName, recordID, oldJSON, newJSON)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

func snapshot(v any) (*string, error) {
	if v == nil {
		return nil, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	s := string(raw)
	return &s, nil
}

// List returns entries matching the filter, newest first.
func (r *Recorder) List(ctx context.Context, filter Filter) ([]Entry, error) {
	where, args := filter.where().SQL()
	query := `SELECT id, user_id, action, table_name, record_id, old_values, new_values, created_at
		FROM audit_logs` + where + ` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	// LIMIT -1 means unbounded, so an offset works without a limit.
	limit := filter.Limit
	if limit <= 0 {
		limit = -1
	}
	args = append(args, limit, filter.Offset)

	rows, err := r.gw.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var oldV, newV sql.NullString
		if err := rows.Scan(&e.ID, &e.UserID, &e.Action, &e.TableName, &e.RecordID, &oldV, &newV, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		if oldV.Valid {
			e.OldValues = json.RawMessage(oldV.String)
		}
		if newV.Valid {
			e.NewValues = json.RawMessage(newV.String)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit logs: %w", err)
	}
	return entries, nil
}

// Count returns the number of entries matching the filter.
func (r *Recorder) Count(ctx context.Context, filter Filter) (int, error) {
	where, args := filter.where().SQL()
	var count int
	if err := r.gw.QueryRow(ctx, `SELECT COUNT(*) FROM audit_logs`+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count audit logs: %w", err)
	}
	return count, nil
}
