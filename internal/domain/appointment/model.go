package appointment

import "time"

const (
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Appointment maps to the appointments table. Date is "YYYY-MM-DD", time
// "HH:MM"; both stay as text so the presentation layer renders them
// without timezone shifts.
type Appointment struct {
	ID              string    `db:"id" json:"id"`
	Title           string    `db:"title" json:"title"`
	AppointmentDate string    `db:"appointment_date" json:"appointment_date"`
	AppointmentTime *string   `db:"appointment_time" json:"appointment_time,omitempty"`
	PatientID       *string   `db:"patient_id" json:"patient_id,omitempty"`
	StaffID         *string   `db:"staff_id" json:"staff_id,omitempty"`
	Notes           *string   `db:"notes" json:"notes,omitempty"`
	Status          string    `db:"status" json:"status"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
	CreatedBy       *string   `db:"created_by" json:"created_by,omitempty"`
	UpdatedBy       *string   `db:"updated_by" json:"updated_by,omitempty"`
}
