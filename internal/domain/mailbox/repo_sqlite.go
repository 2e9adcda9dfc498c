package mailbox

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/alexiosg111/pflegedms/internal/platform/db"
)

type itemRepoSQLite struct{ gw *db.Gateway }

func NewItemRepoSQLite(gw *db.Gateway) ItemRepository {
	return &itemRepoSQLite{gw: gw}
}

const itemCols = `id, document_id, status, priority, item_type, assigned_to_patient_id,
	assigned_to_module, reminder_date, notes, completed_at, created_at, updated_at`

func (r *itemRepoSQLite) scan(row db.Row) (*Item, error) {
	var i Item
	err := row.Scan(&i.ID, &i.DocumentID, &i.Status, &i.Priority, &i.ItemType,
		&i.AssignedToPatientID, &i.AssignedToModule, &i.ReminderDate, &i.Notes,
		&i.CompletedAt, &i.CreatedAt, &i.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &i, err
}

func (r *itemRepoSQLite) Create(ctx context.Context, item *Item) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	_, err := r.gw.Execute(ctx, `
		INSERT INTO mailbox_items (id, document_id, status, priority, item_type,
			assigned_to_patient_id, assigned_to_module, reminder_date, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.DocumentID, item.Status, item.Priority, item.ItemType,
		item.AssignedToPatientID, item.AssignedToModule, item.ReminderDate, item.Notes)
	return err
}

func (r *itemRepoSQLite) GetByID(ctx context.Context, id string) (*Item, error) {
	return r.scan(r.gw.QueryRow(ctx, `SELECT `+itemCols+` FROM mailbox_items WHERE id = ?`, id))
}

func (r *itemRepoSQLite) List(ctx context.Context, status string, limit, offset int) ([]*Item, error) {
	if limit <= 0 {
		limit = -1
	}
	query := `SELECT ` + itemCols + ` FROM mailbox_items`
	args := []any{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := r.gw.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		i, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

func (r *itemRepoSQLite) SetStatus(ctx context.Context, id, status string, completedAt *time.Time) error {
	res, err := r.gw.Execute(ctx, `
		UPDATE mailbox_items SET status = ?, completed_at = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, status, completedAt, id)
	if err != nil {
		return err
	}
	if res.Changes == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *itemRepoSQLite) AssignToPatient(ctx context.Context, id, patientID string) error {
	res, err := r.gw.Execute(ctx, `
		UPDATE mailbox_items SET assigned_to_patient_id = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, patientID, id)
	if err != nil {
		return err
	}
	if res.Changes == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *itemRepoSQLite) AssignToModule(ctx context.Context, id, module string) error {
	res, err := r.gw.Execute(ctx, `
		UPDATE mailbox_items SET assigned_to_module = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, module, id)
	if err != nil {
		return err
	}
	if res.Changes == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *itemRepoSQLite) Count(ctx context.Context, status string) (int, error) {
	var count int
	var err error
	if status == "" {
		err = r.gw.QueryRow(ctx, `SELECT COUNT(*) FROM mailbox_items`).Scan(&count)
	} else {
		err = r.gw.QueryRow(ctx, `SELECT COUNT(*) FROM mailbox_items WHERE status = ?`, status).Scan(&count)
	}
	return count, err
}

func (r *itemRepoSQLite) CountByPriority(ctx context.Context) (map[string]int, error) {
	rows, err := r.gw.Query(ctx, `
		SELECT priority, COUNT(*) FROM mailbox_items
		WHERE status IN (?, ?) GROUP BY priority`, StatusNew, StatusInProgress)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var priority string
		var n int
		if err := rows.Scan(&priority, &n); err != nil {
			return nil, err
		}
		counts[priority] = n
	}
	return counts, rows.Err()
}
