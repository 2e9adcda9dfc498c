package staff

import "time"

// Staff maps to the staff table.
type Staff struct {
	ID             string    `db:"id" json:"id"`
	FirstName      string    `db:"first_name" json:"first_name"`
	LastName       string    `db:"last_name" json:"last_name"`
	Position       *string   `db:"position" json:"position,omitempty"`
	Phone          *string   `db:"phone" json:"phone,omitempty"`
	Email          *string   `db:"email" json:"email,omitempty"`
	Qualifications *string   `db:"qualifications" json:"qualifications,omitempty"`
	Notes          *string   `db:"notes" json:"notes,omitempty"`
	IsActive       bool      `db:"is_active" json:"is_active"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
	CreatedBy      *string   `db:"created_by" json:"created_by,omitempty"`
	UpdatedBy      *string   `db:"updated_by" json:"updated_by,omitempty"`
}
