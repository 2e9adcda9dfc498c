package contract

import "time"

// Stored contract statuses. StatusExpired is derived on read from an
// active contract whose end date has passed; it is never written, so
// extending the end date revives the contract without a status repair.
const (
	StatusActive    = "active"
	StatusCancelled = "cancelled"
	StatusExpired   = "expired"
)

// Contract maps to the contracts table. Dates are "YYYY-MM-DD" strings;
// a nil EndDate means open-ended.
type Contract struct {
	ID                       string    `db:"id" json:"id"`
	PartnerType              *string   `db:"partner_type" json:"partner_type,omitempty"`
	PartnerID                *string   `db:"partner_id" json:"partner_id,omitempty"`
	PartnerName              string    `db:"partner_name" json:"partner_name"`
	ContractName             string    `db:"contract_name" json:"contract_name"`
	Description              *string   `db:"description" json:"description,omitempty"`
	StartDate                string    `db:"start_date" json:"start_date"`
	EndDate                  *string   `db:"end_date" json:"end_date,omitempty"`
	RenewalDate              *string   `db:"renewal_date" json:"renewal_date,omitempty"`
	CancellationPeriodDays   *int      `db:"cancellation_period_days" json:"cancellation_period_days,omitempty"`
	Status                   string    `db:"status" json:"status"`
	ContractDocumentID       *string   `db:"contract_document_id" json:"contract_document_id,omitempty"`
	ReminderDaysBeforeExpiry int       `db:"reminder_days_before_expiry" json:"reminder_days_before_expiry"`
	ReminderSent             bool      `db:"reminder_sent" json:"reminder_sent"`
	CreatedAt                time.Time `db:"created_at" json:"created_at"`
	UpdatedAt                time.Time `db:"updated_at" json:"updated_at"`
}

// EffectiveStatus derives the presented status for a reference date.
func (c *Contract) EffectiveStatus(today string) string {
	if c.Status == StatusActive && c.EndDate != nil && *c.EndDate < today {
		return StatusExpired
	}
	return c.Status
}
