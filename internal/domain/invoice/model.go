package invoice

import "time"

// Stored invoice statuses. StatusOverdue is never written to the store: it
// is derived on read from an open invoice whose due date has passed, so a
// stale flag can never survive a correction of the due date.
const (
	StatusOpen      = "open"
	StatusPaid      = "paid"
	StatusCancelled = "cancelled"
	StatusOverdue   = "overdue"
)

// Invoice maps to the invoices table. Dates are "YYYY-MM-DD" strings.
type Invoice struct {
	ID             string     `db:"id" json:"id"`
	InvoiceType    string     `db:"invoice_type" json:"invoice_type"`
	InvoiceNumber  string     `db:"invoice_number" json:"invoice_number"`
	InvoiceDate    string     `db:"invoice_date" json:"invoice_date"`
	DueDate        string     `db:"due_date" json:"due_date"`
	PartnerType    *string    `db:"partner_type" json:"partner_type,omitempty"`
	PartnerID      *string    `db:"partner_id" json:"partner_id,omitempty"`
	PartnerName    *string    `db:"partner_name" json:"partner_name,omitempty"`
	Description    *string    `db:"description" json:"description,omitempty"`
	Amount         float64    `db:"amount" json:"amount"`
	Currency       string     `db:"currency" json:"currency"`
	DocumentID     *string    `db:"document_id" json:"document_id,omitempty"`
	Status         string     `db:"status" json:"status"`
	PaidDate       *string    `db:"paid_date" json:"paid_date,omitempty"`
	PaymentMethod  *string    `db:"payment_method" json:"payment_method,omitempty"`
	Notes          *string    `db:"notes" json:"notes,omitempty"`
	ReminderSent   bool       `db:"reminder_sent" json:"reminder_sent"`
	ReminderSentAt *time.Time `db:"reminder_sent_at" json:"reminder_sent_at,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// EffectiveStatus derives the presented status for a reference date.
func (i *Invoice) EffectiveStatus(today string) string {
	if i.Status == StatusOpen && i.DueDate < today {
		return StatusOverdue
	}
	return i.Status
}

// Stats summarizes the ledger for the dashboard.
type Stats struct {
	OpenCount     int     `json:"open_count"`
	OverdueCount  int     `json:"overdue_count"`
	PaidCount     int     `json:"paid_count"`
	OpenAmount    float64 `json:"open_amount"`
	OverdueAmount float64 `json:"overdue_amount"`
	PaidAmount    float64 `json:"paid_amount"`
}
