package contract

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/alexiosg111/pflegedms/internal/platform/db"
)

type contractRepoSQLite struct{ gw *db.Gateway }

func NewContractRepoSQLite(gw *db.Gateway) ContractRepository {
	return &contractRepoSQLite{gw: gw}
}

const contractCols = `id, partner_type, partner_id, partner_name, contract_name, description,
	start_date, end_date, renewal_date, cancellation_period_days, status,
	contract_document_id, reminder_days_before_expiry, reminder_sent, created_at, updated_at`

func (r *contractRepoSQLite) scanContract(row db.Row) (*Contract, error) {
	var c Contract
	err := row.Scan(&c.ID, &c.PartnerType, &c.PartnerID, &c.PartnerName, &c.ContractName, &c.Description,
		&c.StartDate, &c.EndDate, &c.RenewalDate, &c.CancellationPeriodDays, &c.Status,
		&c.ContractDocumentID, &c.ReminderDaysBeforeExpiry, &c.ReminderSent, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &c, err
}

func (r *contractRepoSQLite) Create(ctx context.Context, c *Contract) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	_, err := r.gw.Execute(ctx, `
		INSERT INTO contracts (id, partner_type, partner_id, partner_name, contract_name, description,
			start_date, end_date, renewal_date, cancellation_period_days, status,
			contract_document_id, reminder_days_before_expiry)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.PartnerType, c.PartnerID, c.PartnerName, c.ContractName, c.Description,
		c.StartDate, c.EndDate, c.RenewalDate, c.CancellationPeriodDays, c.Status,
		c.ContractDocumentID, c.ReminderDaysBeforeExpiry)
	return err
}

func (r *contractRepoSQLite) GetByID(ctx context.Context, id string) (*Contract, error) {
	return r.scanContract(r.gw.QueryRow(ctx, `SELECT `+contractCols+` FROM contracts WHERE id = ?`, id))
}

func (r *contractRepoSQLite) Update(ctx context.Context, c *Contract) error {
	res, err := r.gw.Execute(ctx, `
		UPDATE contracts SET partner_type=?, partner_id=?, partner_name=?, contract_name=?,
			description=?, start_date=?, end_date=?, renewal_date=?, cancellation_period_days=?,
			status=?, contract_document_id=?, reminder_days_before_expiry=?,
			updated_at=CURRENT_TIMESTAMP
		WHERE id = ?`,
		c.PartnerType, c.PartnerID, c.PartnerName, c.ContractName,
		c.Description, c.StartDate, c.EndDate, c.RenewalDate, c.CancellationPeriodDays,
		c.Status, c.ContractDocumentID, c.ReminderDaysBeforeExpiry, c.ID)
	if err != nil {
		return err
	}
	if res.Changes == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *contractRepoSQLite) List(ctx context.Context, f ListFilter, limit, offset int) ([]*Contract, int, error) {
	var (
		where string
		args  []any
	)
	and := func(cond string, v any) {
		if where == "" {
			where = ` WHERE ` + cond
		} else {
			where += ` AND ` + cond
		}
		args = append(args, v)
	}
	if f.Status != "" {
		and(`status = ?`, f.Status)
	}
	if f.EndsBefore != "" {
		and(`(end_date IS NOT NULL AND end_date < ?)`, f.EndsBefore)
	}
	if f.RunningOn != "" {
		and(`(end_date IS NULL OR end_date >= ?)`, f.RunningOn)
	}

	var total int
	if err := r.gw.QueryRow(ctx, `SELECT COUNT(*) FROM contracts`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = -1
	}
	rows, err := r.gw.Query(ctx, `SELECT `+contractCols+` FROM contracts`+where+
		` ORDER BY partner_name, contract_name LIMIT ? OFFSET ?`, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Contract
	for rows.Next() {
		c, err := r.scanContract(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, c)
	}
	return items, total, rows.Err()
}

func (r *contractRepoSQLite) ListActiveEndingBetween(ctx context.Context, from, to string) ([]*Contract, error) {
	rows, err := r.gw.Query(ctx, `SELECT `+contractCols+` FROM contracts
		WHERE status = 'active' AND end_date IS NOT NULL AND end_date BETWEEN ? AND ?
		ORDER BY end_date`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Contract
	for rows.Next() {
		c, err := r.scanContract(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

func (r *contractRepoSQLite) MarkReminderSent(ctx context.Context, id string) error {
	res, err := r.gw.Execute(ctx, `
		UPDATE contracts SET reminder_sent=1, updated_at=CURRENT_TIMESTAMP WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if res.Changes == 0 {
		return ErrNotFound
	}
	return nil
}
