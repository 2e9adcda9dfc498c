package appointment

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("appointment not found")

type AppointmentRepository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id string) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	Delete(ctx context.Context, id string) error
	ListByPatient(ctx context.Context, patientID string, limit, offset int) ([]*Appointment, int, error)
	ListByDateRange(ctx context.Context, from, to string, limit, offset int) ([]*Appointment, int, error)
}
