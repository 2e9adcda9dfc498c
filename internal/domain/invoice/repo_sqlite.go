package invoice

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/alexiosg111/pflegedms/internal/platform/db"
)

type invoiceRepoSQLite struct{ gw *db.Gateway }

func NewInvoiceRepoSQLite(gw *db.Gateway) InvoiceRepository {
	return &invoiceRepoSQLite{gw: gw}
}

const invoiceCols = `id, invoice_type, invoice_number, invoice_date, due_date,
	partner_type, partner_id, partner_name, description, amount, currency,
	document_id, status, paid_date, payment_method, notes,
	reminder_sent, reminder_sent_at, created_at, updated_at`

func (r *invoiceRepoSQLite) scanInvoice(row db.Row) (*Invoice, error) {
	var i Invoice
	err := row.Scan(&i.ID, &i.InvoiceType, &i.InvoiceNumber, &i.InvoiceDate, &i.DueDate,
		&i.PartnerType, &i.PartnerID, &i.PartnerName, &i.Description, &i.Amount, &i.Currency,
		&i.DocumentID, &i.Status, &i.PaidDate, &i.PaymentMethod, &i.Notes,
		&i.ReminderSent, &i.ReminderSentAt, &i.CreatedAt, &i.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &i, err
}

func (r *invoiceRepoSQLite) Create(ctx context.Context, i *Invoice) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	_, err := r.gw.Execute(ctx, `
		INSERT INTO invoices (id, invoice_type, invoice_number, invoice_date, due_date,
			partner_type, partner_id, partner_name, description, amount, currency,
			document_id, status, paid_date, payment_method, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		i.ID, i.InvoiceType, i.InvoiceNumber, i.InvoiceDate, i.DueDate,
		i.PartnerType, i.PartnerID, i.PartnerName, i.Description, i.Amount, i.Currency,
		i.DocumentID, i.Status, i.PaidDate, i.PaymentMethod, i.Notes)
	return err
}

func (r *invoiceRepoSQLite) GetByID(ctx context.Context, id string) (*Invoice, error) {
	return r.scanInvoice(r.gw.QueryRow(ctx, `SELECT `+invoiceCols+` FROM invoices WHERE id = ?`, id))
}

func (r *invoiceRepoSQLite) Update(ctx context.Context, i *Invoice) error {
	res, err := r.gw.Execute(ctx, `
		UPDATE invoices SET invoice_type=?, invoice_number=?, invoice_date=?, due_date=?,
			partner_type=?, partner_id=?, partner_name=?, description=?, amount=?, currency=?,
			document_id=?, status=?, paid_date=?, payment_method=?, notes=?,
			updated_at=CURRENT_TIMESTAMP
		WHERE id = ?`,
		i.InvoiceType, i.InvoiceNumber, i.InvoiceDate, i.DueDate,
		i.PartnerType, i.PartnerID, i.PartnerName, i.Description, i.Amount, i.Currency,
		i.DocumentID, i.Status, i.PaidDate, i.PaymentMethod, i.Notes, i.ID)
	if err != nil {
		return err
	}
	if res.Changes == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *invoiceRepoSQLite) List(ctx context.Context, f ListFilter, limit, offset int) ([]*Invoice, int, error) {
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
	if f.DueBefore != "" {
		and(`due_date < ?`, f.DueBefore)
	}
	if f.DueOnOrAfter != "" {
		and(`due_date >= ?`, f.DueOnOrAfter)
	}

	var total int
	if err := r.gw.QueryRow(ctx, `SELECT COUNT(*) FROM invoices`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	// LIMIT -1 means unbounded; stats aggregation passes limit 0.
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.gw.Query(ctx, `SELECT `+invoiceCols+` FROM invoices`+where+
		` ORDER BY due_date, invoice_number LIMIT ? OFFSET ?`, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Invoice
	for rows.Next() {
		i, err := r.scanInvoice(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, i)
	}
	return items, total, rows.Err()
}

func (r *invoiceRepoSQLite) ListOpenDueBefore(ctx context.Context, date string) ([]*Invoice, error) {
	rows, err := r.gw.Query(ctx, `SELECT `+invoiceCols+` FROM invoices
		WHERE status = 'open' AND due_date < ? ORDER BY due_date`, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Invoice
	for rows.Next() {
		i, err := r.scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

func (r *invoiceRepoSQLite) MarkReminderSent(ctx context.Context, id string) error {
	res, err := r.gw.Execute(ctx, `
		UPDATE invoices SET reminder_sent=1, reminder_sent_at=CURRENT_TIMESTAMP,
			updated_at=CURRENT_TIMESTAMP
		WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if res.Changes == 0 {
		return ErrNotFound
	}
	return nil
}
