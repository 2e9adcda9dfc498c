package patient

import "time"

// Patient statuses. Deleted patients stay in the store for the audit trail
// and are filtered from every list and search surface.
const (
	StatusActive   = "active"
	StatusArchived = "archived"
	StatusDeleted  = "deleted"
)

// Patient maps to the patients table.
type Patient struct {
	ID         string    `db:"id" json:"id"`
	FirstName  string    `db:"first_name" json:"first_name"`
	LastName   string    `db:"last_name" json:"last_name"`
	BirthDate  *string   `db:"birth_date" json:"birth_date,omitempty"`
	Address    *string   `db:"address" json:"address,omitempty"`
	PostalCode *string   `db:"postal_code" json:"postal_code,omitempty"`
	Phone      *string   `db:"phone" json:"phone,omitempty"`
	Email      *string   `db:"email" json:"email,omitempty"`
	Insurance  *string   `db:"insurance" json:"insurance,omitempty"`
	Diagnosis  *string   `db:"diagnosis" json:"diagnosis,omitempty"`
	Notes      *string   `db:"notes" json:"notes,omitempty"`
	Status     string    `db:"status" json:"status"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
	CreatedBy  *string   `db:"created_by" json:"created_by,omitempty"`
	UpdatedBy  *string   `db:"updated_by" json:"updated_by,omitempty"`
}

// FullName is "first last" as shown in lists and search results.
func (p *Patient) FullName() string {
	return p.FirstName + " " + p.LastName
}
