package mailbox

import "time"

// Mailbox item statuses. Completed and rejected are terminal.
const (
	StatusNew        = "new"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusRejected   = "rejected"
)

const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
)

// Item routes an ingested document to the person or module that has to
// act on it. Items are transient; the document itself stays put.
type Item struct {
	ID                  string     `db:"id" json:"id"`
	DocumentID          string     `db:"document_id" json:"document_id"`
	Status              string     `db:"status" json:"status"`
	Priority            string     `db:"priority" json:"priority"`
	ItemType            string     `db:"item_type" json:"item_type"`
	AssignedToPatientID *string    `db:"assigned_to_patient_id" json:"assigned_to_patient_id,omitempty"`
	AssignedToModule    *string    `db:"assigned_to_module" json:"assigned_to_module,omitempty"`
	ReminderDate        *string    `db:"reminder_date" json:"reminder_date,omitempty"`
	Notes               *string    `db:"notes" json:"notes,omitempty"`
	CompletedAt         *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	CreatedAt           time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at" json:"updated_at"`
}

// Terminal reports whether the item can no longer change state.
func (i *Item) Terminal() bool {
	return i.Status == StatusCompleted || i.Status == StatusRejected
}

// Stats summarizes the mailbox for the dashboard badge.
type Stats struct {
	Total      int            `json:"total"`
	New        int            `json:"new"`
	InProgress int            `json:"in_progress"`
	ByPriority map[string]int `json:"by_priority"`
}
