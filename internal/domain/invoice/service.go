package invoice

import (
	"context"
	"fmt"
	"time"

	"github.com/alexiosg111/pflegedms/internal/platform/audit"
)

type AuditLog interface {
	Log(ctx context.Context, userID *string, action string, tableName, recordID *string, oldValues, newValues any)
}

type Service struct {
	invoices InvoiceRepository
	auditLog AuditLog
	now      func() time.Time
}

func NewService(invoices InvoiceRepository, auditLog AuditLog) *Service {
	return &Service{invoices: invoices, auditLog: auditLog, now: time.Now}
}

var storedStatuses = map[string]bool{
	StatusOpen:      true,
	StatusPaid:      true,
	StatusCancelled: true,
}

func tableRef(id string) (*string, *string) {
	table := "invoices"
	return &table, &id
}

func (s *Service) today() string {
	return s.now().Format("2006-01-02")
}

func (s *Service) validate(i *Invoice) error {
	if i.InvoiceNumber == "" {
		return fmt.Errorf("invoice_number is required")
	}
	if i.Amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}
	for _, d := range []string{i.InvoiceDate, i.DueDate} {
		if _, err := time.Parse("2006-01-02", d); err != nil {
			return fmt.Errorf("dates must be YYYY-MM-DD: %w", err)
		}
	}
	// Overdue is derived, never stored.
	if i.Status != "" && !storedStatuses[i.Status] {
		return fmt.Errorf("invalid stored status: %s", i.Status)
	}
	return nil
}

func (s *Service) CreateInvoice(ctx context.Context, i *Invoice) error {
	if i.InvoiceType == "" {
		i.InvoiceType = "outgoing"
	}
	if i.Status == "" {
		i.Status = StatusOpen
	}
	if i.Currency == "" {
		i.Currency = "EUR"
	}
	if err := s.validate(i); err != nil {
		return err
	}
	if err := s.invoices.Create(ctx, i); err != nil {
		return err
	}
	table, record := tableRef(i.ID)
	s.auditLog.Log(ctx, nil, audit.ActionCreate, table, record, nil, i)
	return nil
}

// GetInvoice returns the invoice with its derived status applied.
func (s *Service) GetInvoice(ctx context.Context, id string) (*Invoice, error) {
	i, err := s.invoices.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	i.Status = i.EffectiveStatus(s.today())
	return i, nil
}

func (s *Service) UpdateInvoice(ctx context.Context, i *Invoice) error {
	if err := s.validate(i); err != nil {
		return err
	}
	old, err := s.invoices.GetByID(ctx, i.ID)
	if err != nil {
		return err
	}
	if i.Status == "" {
		i.Status = old.Status
	}
	if err := s.invoices.Update(ctx, i); err != nil {
		return err
	}
	table, record := tableRef(i.ID)
	s.auditLog.Log(ctx, nil, audit.ActionEdit, table, record, old, i)
	return nil
}

// ListInvoices filters on the DERIVED status: asking for overdue returns
// open invoices past their due date, and asking for open excludes them.
func (s *Service) ListInvoices(ctx context.Context, status string, limit, offset int) ([]*Invoice, int, error) {
	if status != "" && !storedStatuses[status] && status != StatusOverdue {
		return nil, 0, fmt.Errorf("invalid status: %s", status)
	}

	// The derived split happens in the store so LIMIT/OFFSET and the
	// total count apply to the effective set, not the stored one.
	today := s.today()
	f := ListFilter{Status: status}
	switch status {
	case StatusOverdue:
		f = ListFilter{Status: StatusOpen, DueBefore: today}
	case StatusOpen:
		f = ListFilter{Status: StatusOpen, DueOnOrAfter: today}
	}
	items, total, err := s.invoices.List(ctx, f, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	for _, i := range items {
		i.Status = i.EffectiveStatus(today)
	}
	return items, total, nil
}

// MarkPaid settles an open or overdue invoice.
func (s *Service) MarkPaid(ctx context.Context, id string, paymentMethod *string) error {
	i, err := s.invoices.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if i.Status != StatusOpen {
		return fmt.Errorf("only open invoices can be marked paid, status is %s", i.Status)
	}
	old := *i
	today := s.today()
	i.Status = StatusPaid
	i.PaidDate = &today
	i.PaymentMethod = paymentMethod
	if err := s.invoices.Update(ctx, i); err != nil {
		return err
	}
	table, record := tableRef(id)
	s.auditLog.Log(ctx, nil, audit.ActionEdit, table, record, old, i)
	return nil
}

func (s *Service) MarkReminderSent(ctx context.Context, id string) error {
	return s.invoices.MarkReminderSent(ctx, id)
}

// RemindersDue lists overdue invoices that have not been reminded yet.
func (s *Service) RemindersDue(ctx context.Context) ([]*Invoice, error) {
	items, err := s.invoices.ListOpenDueBefore(ctx, s.today())
	if err != nil {
		return nil, err
	}
	due := make([]*Invoice, 0, len(items))
	for _, i := range items {
		if !i.ReminderSent {
			due = append(due, i)
		}
	}
	return due, nil
}

// GetStats aggregates counts and amounts by derived status.
func (s *Service) GetStats(ctx context.Context) (*Stats, error) {
	items, _, err := s.invoices.List(ctx, ListFilter{}, 0, 0)
	if err != nil {
		return nil, err
	}

	today := s.today()
	var st Stats
	for _, i := range items {
		switch i.EffectiveStatus(today) {
		case StatusOpen:
			st.OpenCount++
			st.OpenAmount += i.Amount
		case StatusOverdue:
			st.OverdueCount++
			st.OverdueAmount += i.Amount
		case StatusPaid:
			st.PaidCount++
			st.PaidAmount += i.Amount
		}
	}
	return &st, nil
}
